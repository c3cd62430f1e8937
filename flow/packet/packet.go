// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package packet implements the value carrier and control-marker types
// that flow through connections: Packet, the bracket tags, and the
// end-of-stream sentinel.
package packet

import (
	"github.com/pkg/errors"
)

// ErrImmutableValue is returned by SetValue, which always fails: packet
// values are immutable once created so that fan-out (e.g. a splitter)
// cannot mutate a value another component is concurrently reading.
var ErrImmutableValue = errors.New("packet: value is immutable")

// Owner is the minimal view of a component a Packet needs in order to keep
// its owned-packet count accurate. flow/component.Base implements it.
type Owner interface {
	Name() string
	IncOwned()
	DecOwned()
}

// endOfStream is the unexported sentinel type; EndOfStream is its sole
// instance. Receivers compare by identity (==), never by value equality,
// since a Packet can never legally equal it.
type endOfStream struct{}

// EndOfStream is returned by receive when the input port is permanently
// drained. It is not a Packet.
var EndOfStream = &endOfStream{}

// Tag identifies a control packet's bracket kind. The zero Tag (data)
// means "not a control packet".
type Tag int

const (
	// Data means the packet carries an ordinary value, not a bracket.
	Data Tag = iota
	StartSubStream
	EndSubStream
	StartMap
	EndMap
	SwitchMapNamespace
)

func (t Tag) String() string {
	switch t {
	case Data:
		return "Data"
	case StartSubStream:
		return "StartSubStream"
	case EndSubStream:
		return "EndSubStream"
	case StartMap:
		return "StartMap"
	case EndMap:
		return "EndMap"
	case SwitchMapNamespace:
		return "SwitchMapNamespace"
	default:
		return "Unknown"
	}
}

// IsBracket reports whether the tag delimits a substream/map rather than
// carrying data.
func (t Tag) IsBracket() bool { return t != Data }

// IsOpen reports whether the tag opens a bracket (increments depth).
func (t Tag) IsOpen() bool { return t == StartSubStream || t == StartMap }

// IsClose reports whether the tag closes a bracket (decrements depth).
func (t Tag) IsClose() bool { return t == EndSubStream || t == EndMap }

// Packet carries one opaque value, an optional owner, optional named
// attributes, and (if it is a control packet) a Tag and namespace key for
// SwitchMapNamespace. A Packet is owned by exactly one component at a
// time; the sender keeps ownership while the packet sits in a queue, and
// ownership transfers to the receiver on dequeue (see Transfer).
type Packet struct {
	tag   Tag
	nskey any
	value any
	owner Owner
	attrs map[string]any
}

// New creates a data packet owned by owner, incrementing owner's
// owned-packet count. owner may be nil for packets created outside any
// component; such a packet is not counted against any owner.
func New(owner Owner, value any) *Packet {
	p := &Packet{value: value, owner: owner}
	if owner != nil {
		owner.IncOwned()
	}
	return p
}

// NewControl creates a bracket control packet carrying tag (and, for
// SwitchMapNamespace, key) and no value.
func NewControl(owner Owner, tag Tag, key any) *Packet {
	p := &Packet{tag: tag, nskey: key, owner: owner}
	if owner != nil {
		owner.IncOwned()
	}
	return p
}

// SetValue always fails: see ErrImmutableValue.
func (p *Packet) SetValue(any) error {
	return ErrImmutableValue
}

// Tag returns Data for an ordinary packet, or the bracket tag otherwise.
func (p *Packet) Tag() Tag { return p.tag }

// IsControl reports whether this packet is a bracket marker.
func (p *Packet) IsControl() bool { return p.tag.IsBracket() }

// NamespaceKey returns the key carried by a SwitchMapNamespace packet.
func (p *Packet) NamespaceKey() any { return p.nskey }

// Value returns the carried value. Value is immutable: there is no
// setter. Calling Value on a control packet returns nil.
func (p *Packet) Value() any { return p.value }

// Owner returns the packet's current owning component, or nil.
func (p *Packet) Owner() Owner { return p.owner }

// Attr returns a named attribute and whether it was set.
func (p *Packet) Attr(key string) (any, bool) {
	if p.attrs == nil {
		return nil, false
	}
	v, ok := p.attrs[key]
	return v, ok
}

// WithAttr returns p after setting a named attribute. Attributes are not
// part of the immutable value and may be set any number of times; they
// exist for out-of-band metadata (e.g. trace correlation) that should
// travel with the packet without becoming part of its payload.
func (p *Packet) WithAttr(key string, value any) *Packet {
	if p.attrs == nil {
		p.attrs = make(map[string]any)
	}
	p.attrs[key] = value
	return p
}

// Transfer moves ownership of p from its current owner to next,
// decrementing the old owner's count and incrementing the new one's. This
// is called by flow/port's InputPort.ReceivePacket on dequeue; component
// code never calls it directly.
func (p *Packet) Transfer(next Owner) {
	if p.owner != nil {
		p.owner.DecOwned()
	}
	p.owner = next
	if next != nil {
		next.IncOwned()
	}
}

// Drop releases p, decrementing the current owner's owned-packet count. A
// component that forgets to Drop a packet it consumed (without handing it
// downstream) leaks, which is diagnosed by the executor at shutdown (see
// flow/executor).
func Drop(p *Packet) {
	if p == nil {
		return
	}
	if p.owner != nil {
		p.owner.DecOwned()
		p.owner = nil
	}
}
