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

// Package proc implements the process-per-component executor (spec.md
// §9 "process isolation mode"): every component in a GraphSpec runs in
// its own OS process, connected to its neighbors by OS pipes carrying
// internal/wire frames instead of in-memory channels.
//
// pflow/executors/multi_process.py's MultiProcessGraphExecutor gets away
// with spawning bare functions via Python's fork-based
// multiprocessing.Process: the child inherits the already-constructed
// component object by virtue of the fork, so the parent never needs to
// describe how to rebuild it. Go's exec-only process model has no
// equivalent — a freshly exec'd child starts with nothing but argv and
// inherited file descriptors — so this package works from a declarative
// GraphSpec (component kind + options, not a live Runner) that each child
// reconstructs for itself via flow/component.Get, the same factory
// function its parent-side twin would have used in flow/executor.
package proc

import "github.com/packetd/flowengine/flow/option"

// NodeSpec names one component instance by the registered kind that
// builds it (flow/component.Register) and the construction options
// passed to that factory.
type NodeSpec struct {
	Name    string
	Kind    string
	Options option.Options
}

// EdgeSpec is one directed connection between two nodes' ports. MaxQueue
// bounds the consuming pipeSink's local input queue (pipe writes
// themselves aren't flow-controlled by the OS beyond its own pipe
// buffer); 0 selects DefaultMaxQueue.
type EdgeSpec struct {
	FromComponent, FromPort string
	ToComponent, ToPort     string
	MaxQueue                int
}

// IIPSpec injects a constant value into one node's input at start.
// Unlike a real node, an IIP never gets its own child process: the
// parent just runs a goroutine that writes the value (then an
// end-of-stream frame) directly onto the edge's pipe, since spawning a
// process to emit one constant is pure overhead.
type IIPSpec struct {
	Component, Port string
	Value           any
}

// GraphSpec is the serializable description of a process-isolated graph.
type GraphSpec struct {
	Name  string
	Nodes []NodeSpec
	Edges []EdgeSpec
	IIPs  []IIPSpec
}
