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

package generator_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/packetd/flowengine/components/generator"
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

func TestGeneratorEmitsLimitValuesThenCloses(t *testing.T) {
	runner, err := generator.New(option.Options{"SEED": 7, "LIMIT": 3, "MIN": 0, "MAX": 10})
	require.NoError(t, err)

	inst := component.NewInstance(component.NewBase("gen", testLog()), runner)
	require.NoError(t, inst.Initialize())

	consumer := component.NewBase("sink", testLog())
	in, err := consumer.Inputs.Add("in", port.Options{MaxQueueSize: 8})
	require.NoError(t, err)
	out, ok := inst.Outputs.Get("out")
	require.True(t, ok)
	require.NoError(t, port.Connect(out, in))

	require.NoError(t, consumer.TransitionTo(lifecycle.Initialized))
	require.NoError(t, consumer.TransitionTo(lifecycle.Active))
	require.NoError(t, inst.TransitionTo(lifecycle.Active))
	require.NoError(t, inst.Run(context.Background()))
	require.Equal(t, lifecycle.Terminated, inst.State())

	var got []any
	for {
		v, err := in.Receive(context.Background(), 0)
		require.NoError(t, err)
		if v == packet.EndOfStream {
			break
		}
		got = append(got, v)
	}
	require.Len(t, got, 3)
	for _, v := range got {
		n, ok := v.(int)
		require.True(t, ok)
		require.GreaterOrEqual(t, n, 0)
		require.Less(t, n, 10)
	}
}
