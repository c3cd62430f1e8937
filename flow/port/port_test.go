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

package port_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/packetd/flowengine/flow/ferr"
	"github.com/packetd/flowengine/flow/lifecycle"
	"github.com/packetd/flowengine/flow/packet"
	"github.com/packetd/flowengine/flow/port"
)

// fakeComponent is a minimal port.ComponentRef for port-level tests.
type fakeComponent struct {
	mu    sync.Mutex
	name  string
	state lifecycle.State
	owned int
}

func newFake(name string) *fakeComponent {
	return &fakeComponent{name: name, state: lifecycle.Active}
}

func (f *fakeComponent) Name() string { return f.name }
func (f *fakeComponent) IncOwned()    { f.mu.Lock(); f.owned++; f.mu.Unlock() }
func (f *fakeComponent) DecOwned()    { f.mu.Lock(); f.owned--; f.mu.Unlock() }
func (f *fakeComponent) State() lifecycle.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}
func (f *fakeComponent) TransitionTo(to lifecycle.State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := lifecycle.CheckTransition(f.name, f.state, to); err != nil {
		return err
	}
	f.state = to
	return nil
}

func connect(t *testing.T, maxQueue int) (*port.OutputPort, *port.InputPort, *fakeComponent, *fakeComponent) {
	t.Helper()
	producer := newFake("producer")
	consumer := newFake("consumer")
	out, err := port.NewOutputRegistry(producer).Add("out", port.Options{})
	require.NoError(t, err)
	in, err := port.NewInputRegistry(consumer).Add("in", port.Options{MaxQueueSize: maxQueue})
	require.NoError(t, err)
	require.NoError(t, port.Connect(out, in))
	return out, in, producer, consumer
}

func TestFIFOOrdering(t *testing.T) {
	out, in, _, _ := connect(t, 10)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, out.Send(ctx, i, 0))
	}
	for i := 0; i < 5; i++ {
		v, err := in.Receive(ctx, 0)
		require.NoError(t, err)
		require.Equal(t, i, v)
	}
}

func TestBackpressureBlocksSender(t *testing.T) {
	out, in, _, consumer := connect(t, 1)
	ctx := context.Background()

	require.NoError(t, out.Send(ctx, 1, 0))
	require.Equal(t, lifecycle.Active, consumer.State())

	done := make(chan struct{})
	go func() {
		require.NoError(t, out.Send(ctx, 2, 0))
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("second send should have blocked while queue is full")
	default:
	}

	v, err := in.Receive(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, 1, v)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("send should unblock once queue has room")
	}
}

func TestReceiveTimesOutWhenEmpty(t *testing.T) {
	_, in, _, _ := connect(t, 1)
	_, err := in.Receive(context.Background(), 30*time.Millisecond)
	require.True(t, ferr.IsPortTimeout(err))
}

func TestEndOfStreamAfterSourceTerminates(t *testing.T) {
	out, in, producer, _ := connect(t, 1)
	require.NoError(t, producer.TransitionTo(lifecycle.Terminated))

	v, err := in.Receive(context.Background(), time.Second)
	require.NoError(t, err)
	require.Equal(t, packet.EndOfStream, v)
	require.True(t, in.IsClosed())
	_ = out
}

func TestOptionalUnconnectedOutputIsNoop(t *testing.T) {
	producer := newFake("p")
	out, err := port.NewOutputRegistry(producer).Add("out", port.Options{Optional: true})
	require.NoError(t, err)
	require.NoError(t, out.Send(context.Background(), 1, 0))
}

func TestOptionalUnconnectedInputReturnsEndOfStream(t *testing.T) {
	consumer := newFake("c")
	in, err := port.NewInputRegistry(consumer).Add("in", port.Options{Optional: true})
	require.NoError(t, err)
	v, err := in.Receive(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, packet.EndOfStream, v)
}

func TestBracketBalanceEnforcedOnClose(t *testing.T) {
	producer := newFake("p")
	consumer := newFake("c")
	out, err := port.NewOutputRegistry(producer).Add("out", port.Options{})
	require.NoError(t, err)
	in, err := port.NewInputRegistry(consumer).Add("in", port.Options{MaxQueueSize: 4})
	require.NoError(t, err)
	require.NoError(t, port.Connect(out, in))

	ctx := context.Background()
	require.NoError(t, out.StartSubStream(ctx))
	require.Error(t, out.Close())
	require.NoError(t, out.EndSubStream(ctx))
	require.NoError(t, out.Close())
}
