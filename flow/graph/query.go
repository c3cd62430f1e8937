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

import "github.com/packetd/flowengine/flow/ferr"

// GetUpstream returns the distinct names of components feeding compName's
// connected inputs (spec.md §4.4 "get_upstream").
func (g *Graph) GetUpstream(compName string) ([]string, error) {
	g.mu.Lock()
	inst, ok := g.components[compName]
	g.mu.Unlock()
	if !ok {
		return nil, ferr.NewComponentNotFoundError(compName)
	}

	seen := make(map[string]bool)
	var names []string
	for _, in := range inst.Inputs.All() {
		src := in.Source()
		if src == nil {
			continue
		}
		name := src.Owner().Name()
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names, nil
}

// GetDownstream returns the distinct names of components fed by
// compName's connected outputs (spec.md §4.4 "get_downstream").
func (g *Graph) GetDownstream(compName string) ([]string, error) {
	g.mu.Lock()
	inst, ok := g.components[compName]
	g.mu.Unlock()
	if !ok {
		return nil, ferr.NewComponentNotFoundError(compName)
	}

	seen := make(map[string]bool)
	var names []string
	for _, out := range inst.Outputs.All() {
		tgt := out.Target()
		if tgt == nil {
			continue
		}
		name := tgt.Owner().Name()
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names, nil
}

// IsUpstreamTerminated reports whether every upstream component of
// compName has reached a terminal state (spec.md §4.4
// "is_upstream_terminated"). A self-starter (no upstream) is vacuously
// true.
func (g *Graph) IsUpstreamTerminated(compName string) (bool, error) {
	upstream, err := g.GetUpstream(compName)
	if err != nil {
		return false, err
	}
	for _, name := range upstream {
		g.mu.Lock()
		inst, ok := g.components[name]
		g.mu.Unlock()
		if !ok || inst.IsAlive() {
			return false, nil
		}
	}
	return true, nil
}
