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

// Package component implements the per-component lifecycle state machine,
// port registries, and ownership accounting (spec.md §3 "Component",
// §4.3).
package component

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/packetd/flowengine/flow/ferr"
	"github.com/packetd/flowengine/flow/lifecycle"
	"github.com/packetd/flowengine/flow/packet"
	"github.com/packetd/flowengine/flow/port"
	"github.com/packetd/flowengine/logger"
)

// Base is embedded by every component instance. It implements
// port.ComponentRef (so ports can suspend/resume it and query its state)
// and packet.Owner (so it can create and own packets), and carries the
// input/output port registries a Runner declares during Initialize.
type Base struct {
	mu    sync.Mutex
	name  string
	state lifecycle.State
	owned atomic.Int64

	log logger.Logger

	Inputs  *port.InputRegistry
	Outputs *port.OutputRegistry
}

// NewBase constructs an unstarted Base in NOT_INITIALIZED. log is scoped
// with the component name field so every line it emits is attributable
// (SPEC_FULL.md §4, grounded on pflow/core.py's per-component logging
// context and the teacher's structured-field convention).
func NewBase(name string, log logger.Logger) *Base {
	b := &Base{name: name, log: log.With("component", name)}
	b.Inputs = port.NewInputRegistry(b)
	b.Outputs = port.NewOutputRegistry(b)
	return b
}

func (b *Base) Name() string { return b.name }

func (b *Base) Logger() logger.Logger { return b.log }

func (b *Base) State() lifecycle.State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// TransitionTo drives the lifecycle state machine (spec.md §3). Called
// both by port send/receive (SUSP_SEND/SUSP_RECV) and by Terminate.
func (b *Base) TransitionTo(to lifecycle.State) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := lifecycle.CheckTransition(b.name, b.state, to); err != nil {
		return err
	}
	b.state = to
	return nil
}

// IsAlive reports whether the component has not yet reached a terminal
// state (spec.md §4.3 "is_alive").
func (b *Base) IsAlive() bool {
	return !lifecycle.IsTerminal(b.State())
}

// IncOwned and DecOwned implement packet.Owner, the ownership-accounting
// half of spec.md §4.1.
func (b *Base) IncOwned() { b.owned.Add(1) }
func (b *Base) DecOwned() { b.owned.Add(-1) }

// OwnedCount reports the component's current owned-packet count. A
// non-zero value at termination is a leak (spec.md §3 "Packet").
func (b *Base) OwnedCount() int64 { return b.owned.Load() }

// CreatePacket makes a new packet owned by this component.
func (b *Base) CreatePacket(v any) *packet.Packet { return packet.New(b, v) }

// DropPacket releases ownership of p.
func (b *Base) DropPacket(p *packet.Packet) { packet.Drop(p) }

// Suspend yields the activity for at least d (cooperative-mode
// equivalent of spec.md §4.3 "suspend(seconds?)"). Must only be called
// while ACTIVE.
func (b *Base) Suspend(ctx context.Context, d time.Duration) error {
	if b.State() != lifecycle.Active {
		return ferr.NewComponentStateError(b.name, b.State().String(), "", "suspend called while not ACTIVE")
	}
	if d <= 0 {
		runtime.Gosched()
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Terminate transitions the component to TERMINATED (err == nil) or
// ERROR (err != nil). Idempotent: calling it again on an already-terminal
// component is a no-op (spec.md §4.3 "Termination").
func (b *Base) Terminate(err error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if lifecycle.IsTerminal(b.state) {
		return nil
	}
	to := lifecycle.Terminated
	if err != nil {
		to = lifecycle.Error
	}
	if cerr := lifecycle.CheckTransition(b.name, b.state, to); cerr != nil {
		return cerr
	}
	b.state = to
	if err != nil {
		b.log.Errorw("component terminated with error", "error", err)
	}
	return nil
}

// IsSelfStarter reports whether the component has no inputs, or every
// input is optional and unconnected (spec.md §4.3 "Self-starter").
func (b *Base) IsSelfStarter() bool {
	for _, in := range b.Inputs.All() {
		if !(in.Optional() && !in.Connected()) {
			return false
		}
	}
	return true
}

// CheckLeaks logs (but does not fail on) a non-zero owned-packet count at
// teardown (spec.md §3 "A non-zero count at termination time indicates a
// leak"). Called by flow/executor once per component after the activity
// body returns.
func (b *Base) CheckLeaks() {
	if n := b.OwnedCount(); n != 0 {
		b.log.Warnw("component terminated with unreleased packets", "owned_packets_leaked", n)
	}
}

// ClosePorts closes every still-open input and output port (spec.md §4.5
// "Tear-down: close still-open ports"). A non-zero bracket depth on an
// output port fails Close; teardown logs and otherwise ignores it, since
// the component is already past the point where it could balance the
// bracket itself.
func (b *Base) ClosePorts() {
	for _, in := range b.Inputs.All() {
		in.Close()
	}
	for _, out := range b.Outputs.All() {
		if err := out.Close(); err != nil {
			b.log.Warnw("port did not close cleanly", "port", out.Name(), "error", err)
		}
	}
}

// ResetState returns the component to INITIALIZED once its activity has
// fully exited (spec.md §4.5 "Tear-down: reset state to INITIALIZED").
// This bypasses the legal-transition table in flow/lifecycle on purpose:
// it is a privileged executor-only operation, not a transition a running
// component or port can trigger on itself.
func (b *Base) ResetState() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = lifecycle.Initialized
}
