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

// Package repeat implements the "repeat" component kind: every data
// packet received on "in" is re-emitted COUNT times on "out"; bracket
// packets pass through once, unduplicated, so a substream's contents are
// inflated without disturbing its boundaries.
package repeat

import (
	"context"

	"github.com/packetd/flowengine/flow/component"
	"github.com/packetd/flowengine/flow/option"
	"github.com/packetd/flowengine/flow/packet"
	"github.com/packetd/flowengine/flow/port"
)

const Kind = "repeat"

func init() {
	component.Register(Kind, New)
}

type repeat struct {
	count int
}

// New builds a repeat component. Recognized option: COUNT (int, default 2).
func New(opts option.Options) (component.Runner, error) {
	count := opts.GetIntOr("COUNT", 2)
	if count < 1 {
		count = 1
	}
	return component.Keepalive(&repeat{count: count}), nil
}

func (r *repeat) Initialize(b *component.Base) error {
	if _, err := b.Inputs.Add("in", port.Options{MaxQueueSize: 16}); err != nil {
		return err
	}
	_, err := b.Outputs.Add("out", port.Options{})
	return err
}

func (r *repeat) RunOnce(ctx context.Context, b *component.Base) error {
	in, _ := b.Inputs.Get("in")
	out, _ := b.Outputs.Get("out")

	pkt, err := in.ReceivePacket(ctx, 0)
	if err != nil {
		return err
	}
	if pkt == nil {
		return b.Terminate(out.Close())
	}

	if pkt.IsControl() {
		tag, key := pkt.Tag(), pkt.NamespaceKey()
		packet.Drop(pkt)
		switch tag {
		case packet.StartSubStream:
			return out.StartSubStream(ctx)
		case packet.EndSubStream:
			return out.EndSubStream(ctx)
		case packet.StartMap:
			return out.StartMap(ctx)
		case packet.EndMap:
			return out.EndMap(ctx)
		case packet.SwitchMapNamespace:
			return out.SwitchMapNamespace(ctx, key)
		default:
			return nil
		}
	}

	v := pkt.Value()
	packet.Drop(pkt)
	for i := 0; i < r.count; i++ {
		if err := out.Send(ctx, v, 0); err != nil {
			return err
		}
	}
	return nil
}
