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

// Package ferr defines the error taxonomy shared by every flow package.
//
// Structural (FlowError, GraphError) faults are raised synchronously at
// graph build time. State (ComponentStateError) faults signal illegal
// lifecycle usage, also synchronous. Port faults (PortError,
// PortClosedError, PortTimeout) and ComponentError are runtime faults that
// terminate the offending component with ERROR and propagate (see
// flow/executor).
package ferr

import (
	"fmt"

	"github.com/pkg/errors"
)

// FlowError is the base structural error: duplicate component name,
// connecting an already-sourced input, disconnecting a disconnected port,
// exporting a connected port, an IIP attached to a non-input. Mutating a
// graph that is no longer NOT_INITIALIZED is reported as a GraphError.
type FlowError struct {
	Op  string
	Msg string
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("flow: %s: %s", e.Op, e.Msg)
}

func NewFlowError(op, msg string) error {
	return &FlowError{Op: op, Msg: msg}
}

// GraphError reports a structural fault scoped to graph topology
// resolution, kept distinct from FlowError per pflow/exc.py's
// GraphError/GraphNotFoundError hierarchy (see SPEC_FULL.md §C).
type GraphError struct {
	Graph string
	Msg   string
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("graph %q: %s", e.Graph, e.Msg)
}

func NewGraphError(graph, msg string) error {
	return &GraphError{Graph: graph, Msg: msg}
}

// ComponentNotFoundError is raised when a graph operation names a
// component that was never added.
type ComponentNotFoundError struct {
	Name string
}

func (e *ComponentNotFoundError) Error() string {
	return fmt.Sprintf("component %q not found", e.Name)
}

func NewComponentNotFoundError(name string) error {
	return &ComponentNotFoundError{Name: name}
}

// ComponentStateError signals an illegal lifecycle transition or a method
// invoked while the component is in a state that forbids it. This is
// always a bug in the component or the executor driving it.
type ComponentStateError struct {
	Component string
	From      string
	To        string
	Msg       string
}

func (e *ComponentStateError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("component %q: %s", e.Component, e.Msg)
	}
	return fmt.Sprintf("component %q: illegal transition %s -> %s", e.Component, e.From, e.To)
}

func NewComponentStateError(component, from, to, msg string) error {
	return &ComponentStateError{Component: component, From: from, To: to, Msg: msg}
}

// ComponentError wraps an error raised out of a component's run() body.
type ComponentError struct {
	Component string
	Cause     error
}

func (e *ComponentError) Error() string {
	return fmt.Sprintf("component %q: %v", e.Component, e.Cause)
}

func (e *ComponentError) Unwrap() error { return e.Cause }

func NewComponentError(component string, cause error) error {
	return &ComponentError{Component: component, Cause: errors.WithStack(cause)}
}

// PortError is the base runtime port fault: send on a closed output,
// receive on a closed input that has not yet observed end-of-stream, or a
// type-assertion failure at a port boundary.
type PortError struct {
	Component string
	Port      string
	Msg       string
}

func (e *PortError) Error() string {
	return fmt.Sprintf("port %s.%s: %s", e.Component, e.Port, e.Msg)
}

func NewPortError(component, port, msg string) error {
	return &PortError{Component: component, Port: port, Msg: msg}
}

// PortClosedError is returned by send_packet when the output port is
// closed (and not optional-unconnected, which is a no-op instead).
type PortClosedError struct {
	Component string
	Port      string
}

func (e *PortClosedError) Error() string {
	return fmt.Sprintf("port %s.%s is closed", e.Component, e.Port)
}

func NewPortClosedError(component, port string) error {
	return &PortClosedError{Component: component, Port: port}
}

// PortTimeout is returned when a per-call timeout on send/receive elapses
// before the operation could complete.
type PortTimeout struct {
	Component string
	Port      string
}

func (e *PortTimeout) Error() string {
	return fmt.Sprintf("port %s.%s: timed out", e.Component, e.Port)
}

func NewPortTimeout(component, port string) error {
	return &PortTimeout{Component: component, Port: port}
}

// IsPortTimeout reports whether err is (or wraps) a PortTimeout.
func IsPortTimeout(err error) bool {
	var t *PortTimeout
	return errors.As(err, &t)
}

// IsPortClosed reports whether err is (or wraps) a PortClosedError.
func IsPortClosed(err error) bool {
	var c *PortClosedError
	return errors.As(err, &c)
}
