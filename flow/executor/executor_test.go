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

package executor_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/packetd/flowengine/flow/component"
	"github.com/packetd/flowengine/flow/executor"
	"github.com/packetd/flowengine/flow/ferr"
	"github.com/packetd/flowengine/flow/graph"
	"github.com/packetd/flowengine/flow/packet"
	"github.com/packetd/flowengine/flow/port"
	"github.com/packetd/flowengine/logger"
)

func testLog() logger.Logger {
	return logger.New(logger.Options{Stdout: true, Level: "debug"})
}

// drain is a single-shot consumer: it reads from "in" until end-of-stream,
// collecting every value, then terminates.
type drain struct {
	got *[]any
}

func (d *drain) Initialize(b *component.Base) error {
	_, err := b.Inputs.Add("in", port.Options{MaxQueueSize: 4})
	return err
}

func (d *drain) Run(ctx context.Context, b *component.Base) error {
	in, _ := b.Inputs.Get("in")
	for {
		v, err := in.Receive(ctx, 0)
		if err != nil {
			return err
		}
		if v == packet.EndOfStream {
			return b.Terminate(nil)
		}
		*d.got = append(*d.got, v)
	}
}

func TestExecuteCleanGraphTerminatesWithoutError(t *testing.T) {
	g := graph.New("clean", testLog())
	var got []any
	_, err := g.AddComponent("sink", &drain{got: &got})
	require.NoError(t, err)
	require.NoError(t, g.SetInitialPacket("sink", "in", 42))

	ex := executor.New(g, testLog(), executor.WithPollInterval(5*time.Millisecond))
	require.NoError(t, ex.Execute(context.Background()))
	require.Equal(t, []any{42}, got)
}

// boom is a self-starter whose Run fails immediately.
type boom struct{}

func (boom) Initialize(*component.Base) error { return nil }
func (boom) Run(context.Context, *component.Base) error {
	return errors.New("boom: intentional failure")
}

// bystander is a self-starter that suspends until its context is
// cancelled, at which point it returns cleanly — the behavior spec.md §7
// expects of a component observing the executor's error-propagation
// cancellation rather than failing on its own.
type bystander struct{}

func (bystander) Initialize(*component.Base) error { return nil }
func (bystander) Run(ctx context.Context, b *component.Base) error {
	for {
		if err := b.Suspend(ctx, 5*time.Millisecond); err != nil {
			return nil
		}
	}
}

func TestExecuteErrorPropagatesToEveryComponent(t *testing.T) {
	g := graph.New("faulty", testLog())
	_, err := g.AddComponent("boom", boom{})
	require.NoError(t, err)
	_, err = g.AddComponent("bystander", bystander{})
	require.NoError(t, err)

	ex := executor.New(g, testLog(), executor.WithPollInterval(5*time.Millisecond))
	execErr := ex.Execute(context.Background())
	require.Error(t, execErr)

	var cerr *ferr.ComponentError
	require.True(t, errors.As(execErr, &cerr))
	require.Equal(t, "boom", cerr.Component)
}

func TestExecuteIsNotReentrantWhileRunning(t *testing.T) {
	g := graph.New("slow", testLog())
	_, err := g.AddComponent("bystander", bystander{})
	require.NoError(t, err)

	ex := executor.New(g, testLog())
	done := make(chan error, 1)
	go func() { done <- ex.Execute(context.Background()) }()

	require.Eventually(t, ex.IsRunning, time.Second, time.Millisecond)
	require.Error(t, ex.Execute(context.Background()))

	ex.Stop()
	require.NoError(t, <-done)
}
