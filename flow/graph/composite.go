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

package graph

import (
	"context"

	"github.com/packetd/flowengine/flow/component"
	"github.com/packetd/flowengine/flow/ferr"
)

// ExportInput exposes childComp.childPort as one of this graph's own
// input ports, named name, so a parent graph can connect to it without
// reaching into the composite's internals (spec.md §4.4 "Composite
// graphs": "Export of an input port copies port metadata and routes
// sends received on the proxy to the child's input queue").
func (g *Graph) ExportInput(name, childComp, childPort string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.mustBeMutable("export input"); err != nil {
		return err
	}
	child, err := g.inputPort(childComp, childPort)
	if err != nil {
		return err
	}
	_, err = g.Inputs.Export(name, child)
	return err
}

// ExportOutput is the output-side counterpart of ExportInput.
func (g *Graph) ExportOutput(name, childComp, childPort string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.mustBeMutable("export output"); err != nil {
		return err
	}
	child, err := g.outputPort(childComp, childPort)
	if err != nil {
		return err
	}
	_, err = g.Outputs.Export(name, child)
	return err
}

// Initialize satisfies component.Runner for the case where this Graph is
// itself nested as a composite component inside a parent graph. It
// registers every port exported via ExportInput/ExportOutput on b, the
// Base the parent graph created for this node, so the parent's Connect
// can bind to them; exports made after nesting are not registered.
func (g *Graph) Initialize(b *component.Base) error {
	for _, name := range g.Inputs.Names() {
		p, _ := g.Inputs.Get(name)
		if _, err := b.Inputs.Export(name, p); err != nil {
			return err
		}
	}
	for _, name := range g.Outputs.Names() {
		p, _ := g.Outputs.Get(name)
		if _, err := b.Outputs.Export(name, p); err != nil {
			return err
		}
	}
	return nil
}

// Run satisfies component.Runner for a nested composite: it drives
// RunFunc, which flow/executor binds to a nested Executor.Execute over
// this same Graph (kept as a late-bound hook so flow/graph never imports
// flow/executor).
func (g *Graph) Run(ctx context.Context, _ *component.Base) error {
	if g.RunFunc == nil {
		return ferr.NewGraphError(g.Name(), "composite graph has no RunFunc bound; construct via executor.NewComposite")
	}
	return g.RunFunc(ctx)
}

var _ component.Runner = (*Graph)(nil)
