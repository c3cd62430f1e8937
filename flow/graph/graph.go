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

// Package graph implements graph topology: component registration,
// connection, IIP injection, and structural validation (spec.md §3
// "Graph", §4.4).
package graph

import (
	"context"
	"sync"

	"github.com/packetd/flowengine/flow/component"
	"github.com/packetd/flowengine/flow/ferr"
	"github.com/packetd/flowengine/logger"
)

// Graph owns a set of uniquely-named components and the edges between
// their ports. A Graph is itself buildable as a component.Runner (its
// *component.Base is embedded) so it can be nested as a composite
// component inside another Graph (spec.md §3 "A graph may appear as a
// node inside another graph").
type Graph struct {
	*component.Base

	mu         sync.Mutex
	log        logger.Logger
	order      []string
	components map[string]*component.Instance
	iips       map[string]*component.Instance
	iipSeq     int
	frozen     bool

	// RunFunc, if set, is invoked by Run when this Graph is used as a
	// composite component nested inside a parent graph. flow/executor
	// sets this when constructing a nested run, keeping flow/graph free
	// of any import on flow/executor (which itself imports flow/graph).
	RunFunc func(ctx context.Context) error
}

// New constructs an empty, mutable graph named name.
func New(name string, log logger.Logger) *Graph {
	return &Graph{
		Base:       component.NewBase(name, log),
		log:        log,
		components: make(map[string]*component.Instance),
		iips:       make(map[string]*component.Instance),
	}
}

func (g *Graph) mustBeMutable(op string) error {
	if g.frozen {
		return ferr.NewGraphError(g.Name(), "cannot "+op+": graph is frozen for execution")
	}
	return nil
}

// Freeze forbids further structural mutation. Called by flow/executor
// before spawning activities (spec.md §4.4 "Mutation operations are
// legal only while the graph is in state NOT_INITIALIZED").
func (g *Graph) Freeze() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.frozen = true
}

// AddComponent registers a new component built from runner, declares its
// ports by running Initialize immediately (so Connect below has ports to
// bind — spec.md §4.4's connect/export operate on already-declared
// ports), and returns the live Instance.
func (g *Graph) AddComponent(name string, runner component.Runner) (*component.Instance, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.mustBeMutable("add component"); err != nil {
		return nil, err
	}
	if _, exists := g.components[name]; exists {
		return nil, ferr.NewFlowError("graph.add_component", "duplicate component name "+name)
	}
	base := component.NewBase(name, g.log)
	inst := component.NewInstance(base, runner)
	if err := inst.Initialize(); err != nil {
		return nil, err
	}
	g.components[name] = inst
	g.order = append(g.order, name)
	return inst, nil
}

// Get resolves a registered component instance by name.
func (g *Graph) Get(name string) (*component.Instance, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	inst, ok := g.components[name]
	return inst, ok
}

// Components returns every instance (including injected IIP generators)
// in registration order, which is also self-starter start order (spec.md
// SPEC_FULL.md §C "Self-starter ordering").
func (g *Graph) Components() []*component.Instance {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*component.Instance, 0, len(g.order))
	for _, n := range g.order {
		out = append(out, g.components[n])
	}
	return out
}

// IsTerminated reports whether every component has reached a terminal
// state (spec.md I4).
func (g *Graph) IsTerminated() bool {
	for _, inst := range g.Components() {
		if inst.IsAlive() {
			return false
		}
	}
	return true
}
