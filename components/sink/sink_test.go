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

package sink_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/packetd/flowengine/components/sink"
	"github.com/packetd/flowengine/flow/component"
	"github.com/packetd/flowengine/flow/lifecycle"
	"github.com/packetd/flowengine/flow/option"
	"github.com/packetd/flowengine/flow/port"
	"github.com/packetd/flowengine/logger"
)

func testLog() logger.Logger {
	return logger.New(logger.Options{Stdout: true, Level: "debug"})
}

func TestSinkInvokesOnValueForEachPacketThenTerminates(t *testing.T) {
	var got []any
	runner, err := sink.New(option.Options{"ON_VALUE": func(v any) { got = append(got, v) }})
	require.NoError(t, err)

	inst := component.NewInstance(component.NewBase("sink", testLog()), runner)
	require.NoError(t, inst.Initialize())

	producer := component.NewBase("src", testLog())
	out, err := producer.Outputs.Add("out", port.Options{})
	require.NoError(t, err)
	in, ok := inst.Inputs.Get("in")
	require.True(t, ok)
	require.NoError(t, port.Connect(out, in))

	require.NoError(t, producer.TransitionTo(lifecycle.Initialized))
	require.NoError(t, producer.TransitionTo(lifecycle.Active))
	require.NoError(t, inst.TransitionTo(lifecycle.Active))

	ctx := context.Background()
	done := make(chan error, 1)
	go func() { done <- inst.Run(ctx) }()

	require.NoError(t, out.Send(ctx, 1, 0))
	require.NoError(t, out.Send(ctx, 2, 0))
	require.NoError(t, out.Close())
	require.NoError(t, <-done)

	require.Equal(t, lifecycle.Terminated, inst.State())
	require.Equal(t, []any{1, 2}, got)
}
