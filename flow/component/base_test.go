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
	"time"

	"github.com/stretchr/testify/require"

	"github.com/packetd/flowengine/flow/component"
	"github.com/packetd/flowengine/flow/lifecycle"
	"github.com/packetd/flowengine/flow/port"
	"github.com/packetd/flowengine/logger"
)

func newBase(t *testing.T, name string) *component.Base {
	t.Helper()
	return component.NewBase(name, logger.New(logger.Options{Stdout: true, Level: "debug"}))
}

func TestOwnershipAccounting(t *testing.T) {
	b := newBase(t, "c1")
	p := b.CreatePacket(42)
	require.EqualValues(t, 1, b.OwnedCount())
	b.DropPacket(p)
	require.EqualValues(t, 0, b.OwnedCount())
}

func TestTerminateIsIdempotent(t *testing.T) {
	b := newBase(t, "c1")
	require.NoError(t, b.TransitionTo(lifecycle.Initialized))
	require.NoError(t, b.TransitionTo(lifecycle.Active))
	require.NoError(t, b.Terminate(nil))
	require.Equal(t, lifecycle.Terminated, b.State())
	require.NoError(t, b.Terminate(nil)) // idempotent
}

func TestTerminateWithErrorReachesErrorState(t *testing.T) {
	b := newBase(t, "c1")
	require.NoError(t, b.TransitionTo(lifecycle.Initialized))
	require.NoError(t, b.TransitionTo(lifecycle.Active))
	require.NoError(t, b.Terminate(errBoom))
	require.Equal(t, lifecycle.Error, b.State())
}

var errBoom = &boomErr{}

type boomErr struct{}

func (*boomErr) Error() string { return "boom" }

func TestSuspendRequiresActive(t *testing.T) {
	b := newBase(t, "c1")
	err := b.Suspend(context.Background(), 0)
	require.Error(t, err)
}

func TestIsSelfStarterNoInputs(t *testing.T) {
	b := newBase(t, "c1")
	require.True(t, b.IsSelfStarter())
}

func TestIsSelfStarterOptionalUnconnected(t *testing.T) {
	b := newBase(t, "c1")
	_, err := b.Inputs.Add("in", port.Options{Optional: true})
	require.NoError(t, err)
	require.True(t, b.IsSelfStarter())
}

func TestIsSelfStarterFalseWhenRequiredInput(t *testing.T) {
	b := newBase(t, "c1")
	_, err := b.Inputs.Add("in", port.Options{})
	require.NoError(t, err)
	require.False(t, b.IsSelfStarter())
}

func TestIsSelfStarterFalseWhenOptionalButConnected(t *testing.T) {
	producer := newBase(t, "p")
	consumer := newBase(t, "c")
	out, err := producer.Outputs.Add("out", port.Options{})
	require.NoError(t, err)
	in, err := consumer.Inputs.Add("in", port.Options{Optional: true, MaxQueueSize: 1})
	require.NoError(t, err)
	require.NoError(t, port.Connect(out, in))
	require.False(t, consumer.IsSelfStarter())
}

func TestSuspendWithDurationHonorsContextCancel(t *testing.T) {
	b := newBase(t, "c1")
	require.NoError(t, b.TransitionTo(lifecycle.Initialized))
	require.NoError(t, b.TransitionTo(lifecycle.Active))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := b.Suspend(ctx, time.Second)
	require.Error(t, err)
}
