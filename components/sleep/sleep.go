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

// Package sleep implements the "sleep" component kind: a single-input,
// single-output passthrough that suspends for a configured delay before
// forwarding each packet, used by spec.md §8's fairness-watchdog seed
// test to manufacture a component that legitimately sits in SUSP_SEND /
// a long Suspend without that being a bug.
package sleep

import (
	"context"
	"time"

	"github.com/spf13/cast"

	"github.com/packetd/flowengine/flow/component"
	"github.com/packetd/flowengine/flow/option"
	"github.com/packetd/flowengine/flow/packet"
	"github.com/packetd/flowengine/flow/port"
)

const Kind = "sleep"

func init() {
	component.Register(Kind, New)
}

type sleep struct {
	delay time.Duration
}

// New builds a sleep component. Recognized option: DELAY (a
// time.ParseDuration-compatible string or duration value, default 10ms).
func New(opts option.Options) (component.Runner, error) {
	d := 10 * time.Millisecond
	if opts.Has("DELAY") {
		parsed, err := cast.ToDurationE(opts["DELAY"])
		if err != nil {
			return nil, err
		}
		d = parsed
	}
	return component.Keepalive(&sleep{delay: d}), nil
}

func (s *sleep) Initialize(b *component.Base) error {
	if _, err := b.Inputs.Add("in", port.Options{MaxQueueSize: 1}); err != nil {
		return err
	}
	_, err := b.Outputs.Add("out", port.Options{})
	return err
}

func (s *sleep) RunOnce(ctx context.Context, b *component.Base) error {
	in, _ := b.Inputs.Get("in")
	out, _ := b.Outputs.Get("out")

	pkt, err := in.ReceivePacket(ctx, 0)
	if err != nil {
		return err
	}
	if pkt == nil {
		return b.Terminate(out.Close())
	}

	if err := b.Suspend(ctx, s.delay); err != nil {
		packet.Drop(pkt)
		return err
	}

	if pkt.IsControl() {
		defer packet.Drop(pkt)
		return forwardControl(ctx, out, pkt)
	}
	v := pkt.Value()
	packet.Drop(pkt)
	return out.Send(ctx, v, 0)
}

// forwardControl replays a received bracket on out, since OutputPort's
// bracket-depth accounting (flow/port.OutputPort.control) only triggers
// through StartSubStream/EndSubStream/StartMap/EndMap/SwitchMapNamespace,
// not through a raw SendPacket of someone else's control packet.
func forwardControl(ctx context.Context, out *port.OutputPort, pkt *packet.Packet) error {
	switch pkt.Tag() {
	case packet.StartSubStream:
		return out.StartSubStream(ctx)
	case packet.EndSubStream:
		return out.EndSubStream(ctx)
	case packet.StartMap:
		return out.StartMap(ctx)
	case packet.EndMap:
		return out.EndMap(ctx)
	case packet.SwitchMapNamespace:
		return out.SwitchMapNamespace(ctx, pkt.NamespaceKey())
	default:
		return nil
	}
}
