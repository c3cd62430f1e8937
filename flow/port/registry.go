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

package port

import (
	"sync"

	"github.com/packetd/flowengine/flow/ferr"
)

// InputRegistry is the per-component, ordered mapping from port name to
// InputPort (spec.md §4.2 "Port registry").
type InputRegistry struct {
	owner ComponentRef
	mu    sync.RWMutex
	order []string
	ports map[string]*InputPort
}

func NewInputRegistry(owner ComponentRef) *InputRegistry {
	return &InputRegistry{owner: owner, ports: make(map[string]*InputPort)}
}

// Add creates and attaches a new input port, failing if name is already
// used on this side (spec.md "Names must be unique within a graph" is
// enforced at the component-name level by flow/graph; uniqueness within
// a side is enforced here).
func (r *InputRegistry) Add(name string, opts Options) (*InputPort, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ports[name]; exists {
		return nil, ferr.NewFlowError("input.add", "duplicate input port name "+name)
	}
	p := NewInput(r.owner, name, opts)
	r.ports[name] = p
	r.order = append(r.order, name)
	return p, nil
}

// Export registers child itself under name (no separate proxy port is
// created), so reads and connections made through name go straight to
// child; used by composite graphs (spec.md §4.4 "Composite graphs").
func (r *InputRegistry) Export(name string, child *InputPort) (*InputPort, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ports[name]; exists {
		return nil, ferr.NewFlowError("input.export", "duplicate input port name "+name)
	}
	if child.Connected() {
		return nil, ferr.NewFlowError("input.export", "cannot export an already-connected port")
	}
	r.ports[name] = child
	r.order = append(r.order, name)
	return child, nil
}

func (r *InputRegistry) Get(name string) (*InputPort, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.ports[name]
	return p, ok
}

// Names returns port names in declaration order.
func (r *InputRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *InputRegistry) All() []*InputPort {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*InputPort, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.ports[n])
	}
	return out
}

// OutputRegistry is the output-side counterpart of InputRegistry.
type OutputRegistry struct {
	owner ComponentRef
	mu    sync.RWMutex
	order []string
	ports map[string]*OutputPort
}

func NewOutputRegistry(owner ComponentRef) *OutputRegistry {
	return &OutputRegistry{owner: owner, ports: make(map[string]*OutputPort)}
}

func (r *OutputRegistry) Add(name string, opts Options) (*OutputPort, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ports[name]; exists {
		return nil, ferr.NewFlowError("output.add", "duplicate output port name "+name)
	}
	p := NewOutput(r.owner, name, opts)
	r.ports[name] = p
	r.order = append(r.order, name)
	return p, nil
}

func (r *OutputRegistry) Export(name string, child *OutputPort) (*OutputPort, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ports[name]; exists {
		return nil, ferr.NewFlowError("output.export", "duplicate output port name "+name)
	}
	if child.Connected() {
		return nil, ferr.NewFlowError("output.export", "cannot export an already-connected port")
	}
	r.ports[name] = child
	r.order = append(r.order, name)
	return child, nil
}

func (r *OutputRegistry) Get(name string) (*OutputPort, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.ports[name]
	return p, ok
}

func (r *OutputRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *OutputRegistry) All() []*OutputPort {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*OutputPort, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.ports[n])
	}
	return out
}
