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

package graph_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/packetd/flowengine/flow/component"
	"github.com/packetd/flowengine/flow/graph"
	"github.com/packetd/flowengine/flow/port"
	"github.com/packetd/flowengine/logger"
)

// passthrough has one required input and one output; it is not itself
// under test beyond port declaration for graph wiring tests.
type passthrough struct{}

func (passthrough) Initialize(b *component.Base) error {
	if _, err := b.Inputs.Add("in", port.Options{MaxQueueSize: 4}); err != nil {
		return err
	}
	_, err := b.Outputs.Add("out", port.Options{})
	return err
}

func (passthrough) Run(ctx context.Context, b *component.Base) error { return nil }

func newLog() logger.Logger { return logger.New(logger.Options{Stdout: true, Level: "debug"}) }

func TestAddComponentDeclaresPortsImmediately(t *testing.T) {
	g := graph.New("g", newLog())
	inst, err := g.AddComponent("a", passthrough{})
	require.NoError(t, err)
	_, ok := inst.Inputs.Get("in")
	require.True(t, ok)
	_, ok = inst.Outputs.Get("out")
	require.True(t, ok)
}

func TestAddComponentDuplicateNameFails(t *testing.T) {
	g := graph.New("g", newLog())
	_, err := g.AddComponent("a", passthrough{})
	require.NoError(t, err)
	_, err = g.AddComponent("a", passthrough{})
	require.Error(t, err)
}

func TestConnectAndQueryEdges(t *testing.T) {
	g := graph.New("g", newLog())
	_, err := g.AddComponent("a", passthrough{})
	require.NoError(t, err)
	_, err = g.AddComponent("b", passthrough{})
	require.NoError(t, err)

	require.NoError(t, g.Connect("a", "out", "b", "in"))

	up, err := g.GetUpstream("b")
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, up)

	down, err := g.GetDownstream("a")
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, down)
}

func TestConnectAlreadySourcedInputFails(t *testing.T) {
	g := graph.New("g", newLog())
	_, err := g.AddComponent("a", passthrough{})
	require.NoError(t, err)
	_, err = g.AddComponent("b", passthrough{})
	require.NoError(t, err)
	_, err = g.AddComponent("c", passthrough{})
	require.NoError(t, err)

	require.NoError(t, g.Connect("a", "out", "b", "in"))
	require.Error(t, g.Connect("c", "out", "b", "in"))
}

func TestSetInitialPacketInjectsIIP(t *testing.T) {
	g := graph.New("g", newLog())
	_, err := g.AddComponent("b", passthrough{})
	require.NoError(t, err)

	require.NoError(t, g.SetInitialPacket("b", "in", 7))

	up, err := g.GetUpstream("b")
	require.NoError(t, err)
	require.Len(t, up, 1)
}

func TestUnsetInitialPacketRemovesIIP(t *testing.T) {
	g := graph.New("g", newLog())
	_, err := g.AddComponent("b", passthrough{})
	require.NoError(t, err)
	require.NoError(t, g.SetInitialPacket("b", "in", 7))
	require.NoError(t, g.UnsetInitialPacket("b", "in"))

	up, err := g.GetUpstream("b")
	require.NoError(t, err)
	require.Empty(t, up)
}

func TestDisconnectedInputIsNoLongerUpstream(t *testing.T) {
	g := graph.New("g", newLog())
	_, err := g.AddComponent("a", passthrough{})
	require.NoError(t, err)
	_, err = g.AddComponent("b", passthrough{})
	require.NoError(t, err)
	require.NoError(t, g.Connect("a", "out", "b", "in"))
	require.NoError(t, g.DisconnectInput("b", "in"))

	up, err := g.GetUpstream("b")
	require.NoError(t, err)
	require.Empty(t, up)
}

func TestFrozenGraphRejectsMutation(t *testing.T) {
	g := graph.New("g", newLog())
	_, err := g.AddComponent("a", passthrough{})
	require.NoError(t, err)
	g.Freeze()
	_, err = g.AddComponent("b", passthrough{})
	require.Error(t, err)
}

func TestComponentNotFoundSurfacesFerr(t *testing.T) {
	g := graph.New("g", newLog())
	_, err := g.GetUpstream("nope")
	require.Error(t, err)
}
