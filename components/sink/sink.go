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

// Package sink implements the "sink" component kind: a terminal,
// single-input component that logs every value it receives and drops it.
// An optional ON_VALUE callback lets tests observe what
// passed through without reaching into the graph's internals.
package sink

import (
	"context"

	"github.com/packetd/flowengine/flow/component"
	"github.com/packetd/flowengine/flow/option"
	"github.com/packetd/flowengine/flow/packet"
	"github.com/packetd/flowengine/flow/port"
)

const Kind = "sink"

func init() {
	component.Register(Kind, New)
}

type sink struct {
	onValue func(any)
}

// New builds a sink component. Recognized option: ON_VALUE
// (func(any), optional), invoked once per received value.
func New(opts option.Options) (component.Runner, error) {
	s := &sink{}
	if cb, ok := opts["ON_VALUE"].(func(any)); ok {
		s.onValue = cb
	}
	return s, nil
}

func (s *sink) Initialize(b *component.Base) error {
	_, err := b.Inputs.Add("in", port.Options{MaxQueueSize: 16})
	return err
}

func (s *sink) Run(ctx context.Context, b *component.Base) error {
	in, _ := b.Inputs.Get("in")
	for {
		v, err := in.Receive(ctx, 0)
		if err != nil {
			return err
		}
		if v == packet.EndOfStream {
			return b.Terminate(nil)
		}
		b.Logger().Infow("sink received value", "value", v)
		if s.onValue != nil {
			s.onValue(v)
		}
	}
}
