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

package port

import (
	"context"
	"sync"
	"time"

	"github.com/packetd/flowengine/flow/ferr"
	"github.com/packetd/flowengine/flow/lifecycle"
	"github.com/packetd/flowengine/flow/packet"
)

// pollInterval bounds how long a single suspended receive attempt blocks
// before re-checking whether the source component has since terminated.
// This is what lets receive_port (spec.md §4.5) notice upstream
// termination without a wakeup signal from the producer.
var pollInterval = 20 * time.Millisecond

// InputPort is a named input endpoint of exactly one component. At most
// one Connect (or SetInitialPacket) may bind a source to it (spec.md I1).
type InputPort struct {
	mu sync.Mutex

	name    string
	opts    Options
	owner   ComponentRef
	source  *OutputPort
	q       *queue
	closed  bool
}

// NewInput constructs an unconnected input port owned by owner.
func NewInput(owner ComponentRef, name string, opts Options) *InputPort {
	return &InputPort{name: name, opts: opts, owner: owner}
}

func (p *InputPort) Name() string               { return p.name }
func (p *InputPort) Description() string        { return p.opts.Description }
func (p *InputPort) Optional() bool              { return p.opts.Optional }
func (p *InputPort) Default() (any, bool)        { return p.opts.Default, p.opts.HasDefault }
func (p *InputPort) MaxQueueSize() int           { return p.opts.MaxQueueSize }

// Connected reports whether a source has been bound (spec.md I1).
func (p *InputPort) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.source != nil
}

// Owner returns the component this port belongs to.
func (p *InputPort) Owner() ComponentRef { return p.owner }

// Source returns the connected output port, or nil if unconnected. Used
// by flow/graph to walk edges (spec.md §4.4 "get_upstream").
func (p *InputPort) Source() *OutputPort {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.source
}

// bind attaches src as this port's source and allocates the connection
// queue, sized by MaxQueueSize. Called by Connect, which is responsible
// for enforcing I1 (at most one source) before calling this.
func (p *InputPort) bind(src *OutputPort) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.source = src
	p.q = newQueue(p.opts.MaxQueueSize)
	src.attach(p.q, p)
}

// unbind detaches the source, closing the queue. Called by Disconnect.
func (p *InputPort) unbind() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.q != nil {
		p.q.Close()
	}
	p.source = nil
	p.q = nil
	p.closed = false
}

// QueueLen reports the number of packets currently buffered, for
// backpressure observation (spec.md §8 "Backpressure").
func (p *InputPort) QueueLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.q == nil {
		return 0
	}
	return p.q.Len()
}

// sourceState returns the State of the component producing into this
// port (the upstream side of spec.md §4.5's "all upstream components are
// terminated" check — an input port has exactly one source per I1, so
// that check reduces to this one component's state).
func (p *InputPort) sourceState() (lifecycle.State, bool) {
	p.mu.Lock()
	src := p.source
	p.mu.Unlock()
	if src == nil {
		return 0, false
	}
	return src.owner.State(), true
}

// ReceivePacket returns the next packet, EndOfStream if the source is
// drained and terminated, or a PortTimeout error if timeout elapses
// first. Implements spec.md §4.5 "Receive". An optional, unconnected
// input port returns EndOfStream immediately (spec.md §8 "Optionality").
// A data value whose type is not in Options.AllowedTypes is dropped and
// fails with a PortError.
func (p *InputPort) ReceivePacket(ctx context.Context, timeout time.Duration) (*packet.Packet, error) {
	p.mu.Lock()
	closed := p.closed
	q := p.q
	p.mu.Unlock()

	if closed || (q == nil && p.opts.Optional) {
		return nil, nil // nil, nil signals EndOfStream to callers in this package
	}
	if q == nil {
		return nil, ferr.NewPortError(p.owner.Name(), p.name, "receive on unconnected required input")
	}

	if err := p.owner.TransitionTo(lifecycle.SuspRecv); err != nil {
		return nil, err
	}

	deadline := time.Time{}
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	for {
		popCtx, cancel := context.WithTimeout(ctx, pollInterval)
		pkt, ok := q.Pop(popCtx)
		cancel()

		if ok {
			if pkt == nil {
				// queue closed and drained: permanent end-of-stream.
				p.Close()
				_ = p.owner.TransitionTo(lifecycle.Active)
				return nil, nil
			}
			if err := p.owner.TransitionTo(lifecycle.Active); err != nil {
				return nil, err
			}
			pkt.Transfer(p.owner)
			if !pkt.IsControl() && !checkType(p.opts.AllowedTypes, pkt.Value()) {
				packet.Drop(pkt)
				return nil, ferr.NewPortError(p.owner.Name(), p.name, "value type not in AllowedTypes")
			}
			return pkt, nil
		}

		if !deadline.IsZero() && time.Now().After(deadline) {
			_ = p.owner.TransitionTo(lifecycle.Active)
			return nil, ferr.NewPortTimeout(p.owner.Name(), p.name)
		}
		if st, ok := p.sourceState(); ok && lifecycle.IsTerminal(st) && q.Len() == 0 {
			p.Close()
			_ = p.owner.TransitionTo(lifecycle.Active)
			return nil, nil
		}
		if ctx.Err() != nil {
			_ = p.owner.TransitionTo(lifecycle.Active)
			return nil, ctx.Err()
		}
	}
}

// Receive unpacks the next packet to its value and drops the packet,
// returning packet.EndOfStream when the port is drained.
func (p *InputPort) Receive(ctx context.Context, timeout time.Duration) (any, error) {
	pkt, err := p.ReceivePacket(ctx, timeout)
	if err != nil {
		return nil, err
	}
	if pkt == nil {
		return packet.EndOfStream, nil
	}
	v := pkt.Value()
	packet.Drop(pkt)
	return v, nil
}

// Close marks the port closed and releases its queue.
func (p *InputPort) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	if p.q != nil {
		p.q.Close()
	}
}

func (p *InputPort) IsClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
