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

	"github.com/packetd/flowengine/flow/port"
)

// iipGenerator is the synthetic "no inputs, one output" component spec.md
// §3 "Initial Information Packet (IIP) generator" describes: it emits
// exactly one configured value on its sole output, then terminates. It
// lives in flow/component (not flow/graph) purely so
// flow/graph.SetInitialPacket can reuse the same Instance/Base plumbing every other component uses,
// rather than special-casing IIPs as a different kind of graph node.
type iipGenerator struct {
	value any
}

// NewIIPGenerator returns a Runner that emits value once on its "out"
// port and terminates. flow/graph.SetInitialPacket wires one of these in
// place of a real upstream component.
func NewIIPGenerator(value any) Runner {
	return &iipGenerator{value: value}
}

func (g *iipGenerator) Initialize(b *Base) error {
	_, err := b.Outputs.Add("out", port.Options{})
	return err
}

func (g *iipGenerator) Run(ctx context.Context, b *Base) error {
	out, _ := b.Outputs.Get("out")
	if err := out.Send(ctx, g.value, 0); err != nil {
		return err
	}
	return out.Close()
}
