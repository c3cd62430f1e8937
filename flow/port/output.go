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
	"sync/atomic"
	"time"

	"github.com/packetd/flowengine/flow/ferr"
	"github.com/packetd/flowengine/flow/lifecycle"
	"github.com/packetd/flowengine/flow/packet"
)

// OutputPort is a named output endpoint of exactly one component. At most
// one Connect may bind a target to it (spec.md I2).
type OutputPort struct {
	mu sync.Mutex

	name   string
	opts   Options
	owner  ComponentRef
	q      *queue     // the target input port's queue, once connected
	target *InputPort // the connected input port, once connected
	closed bool
	depth  atomic.Int64 // bracket depth; writer-only, per spec.md §5
}

// NewOutput constructs an unconnected output port owned by owner.
func NewOutput(owner ComponentRef, name string, opts Options) *OutputPort {
	return &OutputPort{name: name, opts: opts, owner: owner}
}

func (p *OutputPort) Name() string        { return p.name }
func (p *OutputPort) Description() string { return p.opts.Description }
func (p *OutputPort) Optional() bool      { return p.opts.Optional }

func (p *OutputPort) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.q != nil
}

// Owner returns the component this port belongs to.
func (p *OutputPort) Owner() ComponentRef { return p.owner }

// Target returns the connected input port, or nil if unconnected. Used
// by flow/graph to walk edges (spec.md §4.4 "get_downstream").
func (p *OutputPort) Target() *InputPort {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.target
}

func (p *OutputPort) attach(q *queue, in *InputPort) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.q = q
	p.target = in
}

func (p *OutputPort) detach() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.q = nil
	p.target = nil
}

// BracketDepth reports the output port's current nesting depth (spec.md
// I6: must be zero when the port closes).
func (p *OutputPort) BracketDepth() int64 { return p.depth.Load() }

// SendPacket forwards p into the connected input port's queue, blocking
// (SUSP_SEND) while the queue is at capacity. A closed port fails with
// PortClosedError; an optional, unconnected port is a no-op (returns nil)
// per spec.md §8 "Optionality".
func (p *OutputPort) SendPacket(ctx context.Context, pkt *packet.Packet, timeout time.Duration) error {
	p.mu.Lock()
	closed := p.closed
	q := p.q
	p.mu.Unlock()

	if closed {
		return ferr.NewPortClosedError(p.owner.Name(), p.name)
	}
	if q == nil {
		if p.opts.Optional {
			return nil
		}
		return ferr.NewPortError(p.owner.Name(), p.name, "send on unconnected required output")
	}

	if err := p.owner.TransitionTo(lifecycle.SuspSend); err != nil {
		return err
	}

	sendCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		sendCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if !q.Push(sendCtx, pkt) {
		_ = p.owner.TransitionTo(lifecycle.Active)
		if timeout > 0 && sendCtx.Err() != nil {
			return ferr.NewPortTimeout(p.owner.Name(), p.name)
		}
		return ferr.NewPortClosedError(p.owner.Name(), p.name)
	}

	// Fairness: yield once so a cooperative scheduler gets a chance to
	// run the consumer before the producer races ahead (spec.md §4.5
	// step 4, "Yield once to the scheduler").
	runtimeGosched()

	return p.owner.TransitionTo(lifecycle.Active)
}

// Send wraps value in a new packet owned by the sending component, then
// SendPacket.
func (p *OutputPort) Send(ctx context.Context, value any, timeout time.Duration) error {
	pkt := packet.New(p.owner, value)
	return p.SendPacket(ctx, pkt, timeout)
}

func (p *OutputPort) control(ctx context.Context, tag packet.Tag, key any) error {
	if tag.IsOpen() {
		p.depth.Add(1)
	} else if tag.IsClose() {
		if p.depth.Add(-1) < 0 {
			return ferr.NewPortError(p.owner.Name(), p.name, "unbalanced bracket close")
		}
	}
	pkt := packet.NewControl(p.owner, tag, key)
	return p.SendPacket(ctx, pkt, 0)
}

func (p *OutputPort) StartSubStream(ctx context.Context) error {
	return p.control(ctx, packet.StartSubStream, nil)
}

func (p *OutputPort) EndSubStream(ctx context.Context) error {
	return p.control(ctx, packet.EndSubStream, nil)
}

func (p *OutputPort) StartMap(ctx context.Context) error {
	return p.control(ctx, packet.StartMap, nil)
}

func (p *OutputPort) EndMap(ctx context.Context) error {
	return p.control(ctx, packet.EndMap, nil)
}

func (p *OutputPort) SwitchMapNamespace(ctx context.Context, key any) error {
	return p.control(ctx, packet.SwitchMapNamespace, key)
}

// Close fails if bracket depth is non-zero (spec.md I6); otherwise
// releases the queue, which signals end-of-stream to the receiver once
// drained.
func (p *OutputPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	if p.depth.Load() != 0 {
		return ferr.NewPortError(p.owner.Name(), p.name, "close with non-zero bracket depth")
	}
	p.closed = true
	if p.q != nil {
		p.q.Close()
	}
	return nil
}

func (p *OutputPort) IsClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
