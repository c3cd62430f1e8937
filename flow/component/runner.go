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

package component

import (
	"context"

	"github.com/packetd/flowengine/flow/lifecycle"
)

// Runner is the behavior a component author provides (spec.md §6
// "Component authoring API"). Initialize declares ports; Run is the body.
// The executor calls Run exactly once per activity — keepalive bodies
// reach this single-shot shape through Keepalive below (see SPEC_FULL.md
// §D.2).
type Runner interface {
	Initialize(b *Base) error
	Run(ctx context.Context, b *Base) error
}

// PerPacketRunner is a component body invoked once per packet arrival
// instead of looping over receive itself. pflow's run() bodies tagged
// `@keepalive` have this shape; Keepalive adapts one into a Runner so the
// executor only ever deals with a single invocation contract.
type PerPacketRunner interface {
	Initialize(b *Base) error
	RunOnce(ctx context.Context, b *Base) error
}

type keepaliveAdapter struct{ p PerPacketRunner }

// Keepalive adapts p into a Runner whose Run loops calling RunOnce until
// the component reaches a terminal state, resolving the keepalive/
// single-shot duality at registration time rather than at call time
// (spec.md §4.3 "Run-body contract"; SPEC_FULL.md §C "Keepalive
// adaptation boundary").
func Keepalive(p PerPacketRunner) Runner {
	return &keepaliveAdapter{p: p}
}

func (k *keepaliveAdapter) Initialize(b *Base) error { return k.p.Initialize(b) }

func (k *keepaliveAdapter) Run(ctx context.Context, b *Base) error {
	for b.IsAlive() {
		if err := k.p.RunOnce(ctx, b); err != nil {
			return err
		}
	}
	return nil
}

// Instance couples a Runner with its Base, giving flow/graph and
// flow/executor a single handle that is simultaneously a
// port.ComponentRef (via Base) and a runnable component.
type Instance struct {
	*Base
	runner Runner
}

// NewInstance constructs an Instance in NOT_INITIALIZED, wrapping runner
// with a Base scoped under name.
func NewInstance(base *Base, runner Runner) *Instance {
	return &Instance{Base: base, runner: runner}
}

// Initialize declares the component's ports via the wrapped Runner, then
// transitions NOT_INITIALIZED -> INITIALIZED.
func (c *Instance) Initialize() error {
	if c.State() != lifecycle.NotInitialized {
		return c.TransitionTo(lifecycle.Initialized) // surfaces the illegal-transition error
	}
	if err := c.runner.Initialize(c.Base); err != nil {
		return err
	}
	return c.TransitionTo(lifecycle.Initialized)
}

// Run executes the component body exactly once, per the executor's
// activity contract (spec.md §4.5 "Activity body").
func (c *Instance) Run(ctx context.Context) error {
	return c.runner.Run(ctx, c.Base)
}
