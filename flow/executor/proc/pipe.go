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

package proc

import (
	"context"
	"io"

	"github.com/packetd/flowengine/flow/component"
	"github.com/packetd/flowengine/flow/packet"
	"github.com/packetd/flowengine/flow/port"
	"github.com/packetd/flowengine/internal/wire"
)

// pipeSource is a synthetic single-output component that reads
// internal/wire frames off an inherited pipe fd and replays them onto
// its "out" port, reconstructing brackets via the same Tag switch the
// in-process passthrough components (components/repeat,
// components/sleep, components/split) use. It exists purely so the real component
// inside a child process can receive from flow/port like any other
// component, instead of the real component's Runner needing to know
// anything about pipes or wire frames itself.
type pipeSource struct {
	r io.ReadCloser
}

func (s *pipeSource) Initialize(b *component.Base) error {
	_, err := b.Outputs.Add("out", port.Options{})
	return err
}

func (s *pipeSource) Run(ctx context.Context, b *component.Base) error {
	defer s.r.Close()
	out, _ := b.Outputs.Get("out")
	reader := wire.NewReader(s.r)

	for {
		f, err := reader.ReadFrame()
		if err == io.EOF {
			return out.Close()
		}
		if err != nil {
			return err
		}
		if f.EOS {
			return out.Close()
		}
		if f.Tag != packet.Data {
			if err := forwardTag(ctx, out, f.Tag, f.NSKey); err != nil {
				return err
			}
			continue
		}
		if err := out.Send(ctx, f.Value, 0); err != nil {
			return err
		}
	}
}

// pipeSink is a synthetic single-input component that receives whatever
// the real component sends on its "in" port and writes each packet as
// an internal/wire frame onto an inherited pipe fd, terminating the
// frame stream with wire.EndOfStreamFrame once the real component's
// output closes.
type pipeSink struct {
	w        io.WriteCloser
	maxQueue int
}

func (s *pipeSink) Initialize(b *component.Base) error {
	_, err := b.Inputs.Add("in", port.Options{MaxQueueSize: s.maxQueue})
	return err
}

func (s *pipeSink) Run(ctx context.Context, b *component.Base) error {
	defer s.w.Close()
	in, _ := b.Inputs.Get("in")
	writer := wire.NewWriter(s.w)

	for {
		pkt, err := in.ReceivePacket(ctx, 0)
		if err != nil {
			return err
		}
		if pkt == nil {
			return writer.WriteFrame(wire.EndOfStreamFrame)
		}

		f := wire.Frame{Tag: pkt.Tag(), NSKey: pkt.NamespaceKey()}
		if !pkt.IsControl() {
			f.Value = pkt.Value()
		}
		packet.Drop(pkt)
		if err := writer.WriteFrame(f); err != nil {
			return err
		}
	}
}

func forwardTag(ctx context.Context, out *port.OutputPort, tag packet.Tag, key any) error {
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
