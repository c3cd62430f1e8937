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

// Package multiply implements the "multiply" component kind: a binary
// operator that receives one value from each of "x" and "y", emits their
// product on "out", and terminates as soon as either upstream drains —
// spec.md §8 scenario 3's "Binary operator upstream failure" seed test.
package multiply

import (
	"context"

	"github.com/spf13/cast"

	"github.com/packetd/flowengine/flow/component"
	"github.com/packetd/flowengine/flow/option"
	"github.com/packetd/flowengine/flow/packet"
	"github.com/packetd/flowengine/flow/port"
)

const Kind = "multiply"

func init() {
	component.Register(Kind, New)
}

type multiply struct{}

// New builds a multiply component. It takes no construction options: the
// operands arrive as packets on its two inputs, not as configuration.
func New(option.Options) (component.Runner, error) {
	return component.Keepalive(&multiply{}), nil
}

func (m *multiply) Initialize(b *component.Base) error {
	if _, err := b.Inputs.Add("x", port.Options{MaxQueueSize: 16}); err != nil {
		return err
	}
	if _, err := b.Inputs.Add("y", port.Options{MaxQueueSize: 16}); err != nil {
		return err
	}
	_, err := b.Outputs.Add("out", port.Options{})
	return err
}

// RunOnce receives one value from each of x and y and sends their
// product to out, terminating as soon as either input is drained
// (grounded on original_source/pflow/components.py's Multiply.run,
// which receives X then Y and terminates on either EndOfStream without
// waiting on the other).
func (m *multiply) RunOnce(ctx context.Context, b *component.Base) error {
	x, _ := b.Inputs.Get("x")
	y, _ := b.Inputs.Get("y")
	out, _ := b.Outputs.Get("out")

	xv, err := x.Receive(ctx, 0)
	if err != nil {
		return err
	}
	if xv == packet.EndOfStream {
		return b.Terminate(out.Close())
	}

	yv, err := y.Receive(ctx, 0)
	if err != nil {
		return err
	}
	if yv == packet.EndOfStream {
		return b.Terminate(out.Close())
	}

	xi, err := cast.ToIntE(xv)
	if err != nil {
		return err
	}
	yi, err := cast.ToIntE(yv)
	if err != nil {
		return err
	}

	b.Logger().Debugw("multiply", "x", xi, "y", yi, "result", xi*yi)
	return out.Send(ctx, xi*yi, 0)
}
