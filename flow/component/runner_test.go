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

package component_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/packetd/flowengine/flow/component"
	"github.com/packetd/flowengine/flow/lifecycle"
	"github.com/packetd/flowengine/flow/packet"
	"github.com/packetd/flowengine/flow/port"
)

// countingRunner is a trivial single-shot Runner with no ports.
type countingRunner struct{ ran int }

func (r *countingRunner) Initialize(b *component.Base) error { return nil }
func (r *countingRunner) Run(ctx context.Context, b *component.Base) error {
	r.ran++
	return nil
}

func TestInstanceLifecycle(t *testing.T) {
	r := &countingRunner{}
	inst := component.NewInstance(newBase(t, "c1"), r)
	require.Equal(t, lifecycle.NotInitialized, inst.State())
	require.NoError(t, inst.Initialize())
	require.Equal(t, lifecycle.Initialized, inst.State())
	require.NoError(t, inst.Run(context.Background()))
	require.Equal(t, 1, r.ran)
}

func TestInstanceInitializeTwiceFails(t *testing.T) {
	inst := component.NewInstance(newBase(t, "c1"), &countingRunner{})
	require.NoError(t, inst.Initialize())
	require.Error(t, inst.Initialize())
}

// perPacket emits one value per RunOnce call until budget is exhausted,
// then terminates, exercising the Keepalive adapter.
type perPacket struct {
	budget int
}

func (p *perPacket) Initialize(b *component.Base) error {
	_, err := b.Outputs.Add("out", port.Options{Optional: true})
	return err
}

func (p *perPacket) RunOnce(ctx context.Context, b *component.Base) error {
	out, _ := b.Outputs.Get("out")
	if p.budget <= 0 {
		return b.Terminate(nil)
	}
	p.budget--
	return out.Send(ctx, p.budget, 0)
}

func TestKeepaliveAdapterLoopsUntilTerminated(t *testing.T) {
	p := &perPacket{budget: 3}
	runner := component.Keepalive(p)
	inst := component.NewInstance(newBase(t, "gen"), runner)
	require.NoError(t, inst.Initialize())
	require.NoError(t, inst.TransitionTo(lifecycle.Active))
	require.NoError(t, inst.Run(context.Background()))
	require.Equal(t, lifecycle.Terminated, inst.State())
}

func TestIIPGeneratorEmitsOnceThenCloses(t *testing.T) {
	gen := component.NewIIPGenerator("hello")
	inst := component.NewInstance(newBase(t, "iip"), gen)
	require.NoError(t, inst.Initialize())

	consumer := newBase(t, "sink")
	in, err := consumer.Inputs.Add("in", port.Options{MaxQueueSize: 1})
	require.NoError(t, err)
	out, ok := inst.Outputs.Get("out")
	require.True(t, ok)
	require.NoError(t, port.Connect(out, in))

	require.NoError(t, consumer.TransitionTo(lifecycle.Initialized))
	require.NoError(t, consumer.TransitionTo(lifecycle.Active))
	require.NoError(t, inst.TransitionTo(lifecycle.Active))
	require.NoError(t, inst.Run(context.Background()))

	v, err := in.Receive(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, "hello", v)

	v, err = in.Receive(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, packet.EndOfStream, v)
}
