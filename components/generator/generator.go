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

// Package generator implements the "generator" component kind: a
// self-starter that emits a bounded stream of pseudo-random integers,
// used to drive the throughput/backpressure seed tests of spec.md §8
// without depending on any real upstream data source.
package generator

import (
	"context"
	"math/rand"

	"github.com/packetd/flowengine/flow/component"
	"github.com/packetd/flowengine/flow/option"
	"github.com/packetd/flowengine/flow/port"
)

const Kind = "generator"

func init() {
	component.Register(Kind, New)
}

type generator struct {
	rnd   *rand.Rand
	limit int
	min   int
	span  int
	sent  int
}

// New builds a generator. Recognized options: SEED (int64, default 1),
// LIMIT (int, default 10, total packets to emit), MIN and MAX (int,
// default 0 and 100, the half-open range values are drawn from).
func New(opts option.Options) (component.Runner, error) {
	seed := int64(opts.GetIntOr("SEED", 1))
	min := opts.GetIntOr("MIN", 0)
	max := opts.GetIntOr("MAX", 100)
	if max <= min {
		max = min + 1
	}
	return component.Keepalive(&generator{
		rnd:   rand.New(rand.NewSource(seed)),
		limit: opts.GetIntOr("LIMIT", 10),
		min:   min,
		span:  max - min,
	}), nil
}

func (g *generator) Initialize(b *component.Base) error {
	_, err := b.Outputs.Add("out", port.Options{Description: "pseudo-random integers"})
	return err
}

func (g *generator) RunOnce(ctx context.Context, b *component.Base) error {
	if g.sent >= g.limit {
		return b.Terminate(nil)
	}
	out, _ := b.Outputs.Get("out")
	v := g.min + g.rnd.Intn(g.span)
	if err := out.Send(ctx, v, 0); err != nil {
		return err
	}
	g.sent++
	if g.sent >= g.limit {
		return out.Close()
	}
	return nil
}
