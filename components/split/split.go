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

// Package split implements the "split" component kind: every packet
// received on "in" — data and brackets alike — is broadcast to both "a"
// and "b", so each branch independently sees the same substream
// structure end to end. This is the fan-out spec.md §8 scenario 5's
// bracket round-trip seed test needs (grounded on
// original_source/pflow/components.py's Splitter.run, which sends every
// value to both OUT_A and OUT_B).
package split

import (
	"context"

	"github.com/packetd/flowengine/flow/component"
	"github.com/packetd/flowengine/flow/option"
	"github.com/packetd/flowengine/flow/packet"
	"github.com/packetd/flowengine/flow/port"
)

const Kind = "split"

func init() {
	component.Register(Kind, New)
}

type split struct{}

func New(option.Options) (component.Runner, error) {
	return component.Keepalive(&split{}), nil
}

func (s *split) Initialize(b *component.Base) error {
	if _, err := b.Inputs.Add("in", port.Options{MaxQueueSize: 16}); err != nil {
		return err
	}
	if _, err := b.Outputs.Add("a", port.Options{}); err != nil {
		return err
	}
	_, err := b.Outputs.Add("b", port.Options{})
	return err
}

func (s *split) RunOnce(ctx context.Context, b *component.Base) error {
	in, _ := b.Inputs.Get("in")
	a, _ := b.Outputs.Get("a")
	bo, _ := b.Outputs.Get("b")

	pkt, err := in.ReceivePacket(ctx, 0)
	if err != nil {
		return err
	}
	if pkt == nil {
		if err := a.Close(); err != nil {
			return err
		}
		return b.Terminate(bo.Close())
	}

	if pkt.IsControl() {
		tag, key := pkt.Tag(), pkt.NamespaceKey()
		packet.Drop(pkt)
		if err := forwardBracket(ctx, a, tag, key); err != nil {
			return err
		}
		return forwardBracket(ctx, bo, tag, key)
	}

	v := pkt.Value()
	packet.Drop(pkt)
	if err := a.Send(ctx, v, 0); err != nil {
		return err
	}
	return bo.Send(ctx, v, 0)
}

func forwardBracket(ctx context.Context, out *port.OutputPort, tag packet.Tag, key any) error {
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
