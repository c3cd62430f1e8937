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

package split_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/packetd/flowengine/components/split"
	"github.com/packetd/flowengine/flow/component"
	"github.com/packetd/flowengine/flow/lifecycle"
	"github.com/packetd/flowengine/flow/option"
	"github.com/packetd/flowengine/flow/packet"
	"github.com/packetd/flowengine/flow/port"
	"github.com/packetd/flowengine/logger"
)

func testLog() logger.Logger {
	return logger.New(logger.Options{Stdout: true, Level: "debug"})
}

// TestSplitBroadcastsSubstreamToBothBranches drives spec.md §8 scenario
// 5: a producer emits StartSubStream, 1, 2, EndSubStream, and each of
// split's two branches must observe that exact sequence in order.
func TestSplitBroadcastsSubstreamToBothBranches(t *testing.T) {
	runner, err := split.New(option.Options{})
	require.NoError(t, err)

	inst := component.NewInstance(component.NewBase("split", testLog()), runner)
	require.NoError(t, inst.Initialize())

	producer := component.NewBase("src", testLog())
	out, err := producer.Outputs.Add("out", port.Options{})
	require.NoError(t, err)
	in, ok := inst.Inputs.Get("in")
	require.True(t, ok)
	require.NoError(t, port.Connect(out, in))

	left := component.NewBase("left", testLog())
	lin, err := left.Inputs.Add("in", port.Options{MaxQueueSize: 8})
	require.NoError(t, err)
	a, ok := inst.Outputs.Get("a")
	require.True(t, ok)
	require.NoError(t, port.Connect(a, lin))

	right := component.NewBase("right", testLog())
	rin, err := right.Inputs.Add("in", port.Options{MaxQueueSize: 8})
	require.NoError(t, err)
	b, ok := inst.Outputs.Get("b")
	require.True(t, ok)
	require.NoError(t, port.Connect(b, rin))

	require.NoError(t, producer.TransitionTo(lifecycle.Initialized))
	require.NoError(t, producer.TransitionTo(lifecycle.Active))
	require.NoError(t, left.TransitionTo(lifecycle.Initialized))
	require.NoError(t, left.TransitionTo(lifecycle.Active))
	require.NoError(t, right.TransitionTo(lifecycle.Initialized))
	require.NoError(t, right.TransitionTo(lifecycle.Active))
	require.NoError(t, inst.TransitionTo(lifecycle.Active))

	ctx := context.Background()
	done := make(chan error, 1)
	go func() { done <- inst.Run(ctx) }()

	require.NoError(t, out.StartSubStream(ctx))
	require.NoError(t, out.Send(ctx, 1, 0))
	require.NoError(t, out.Send(ctx, 2, 0))
	require.NoError(t, out.EndSubStream(ctx))
	require.NoError(t, out.Close())
	require.NoError(t, <-done)

	for _, branch := range []*port.InputPort{lin, rin} {
		pkt, err := branch.ReceivePacket(ctx, 0)
		require.NoError(t, err)
		require.Equal(t, packet.StartSubStream, pkt.Tag())
		packet.Drop(pkt)

		v, err := branch.Receive(ctx, 0)
		require.NoError(t, err)
		require.Equal(t, 1, v)

		v, err = branch.Receive(ctx, 0)
		require.NoError(t, err)
		require.Equal(t, 2, v)

		pkt, err = branch.ReceivePacket(ctx, 0)
		require.NoError(t, err)
		require.Equal(t, packet.EndSubStream, pkt.Tag())
		packet.Drop(pkt)

		v, err = branch.Receive(ctx, 0)
		require.NoError(t, err)
		require.Equal(t, packet.EndOfStream, v)
	}
}
