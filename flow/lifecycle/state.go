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

package lifecycle

import "github.com/packetd/flowengine/flow/ferr"

// State is one node of the component lifecycle state machine (spec.md §3).
type State int

const (
	NotInitialized State = iota
	Initialized
	Active
	SuspSend
	SuspRecv
	Terminated
	Error
)

func (s State) String() string {
	switch s {
	case NotInitialized:
		return "NOT_INITIALIZED"
	case Initialized:
		return "INITIALIZED"
	case Active:
		return "ACTIVE"
	case SuspSend:
		return "SUSP_SEND"
	case SuspRecv:
		return "SUSP_RECV"
	case Terminated:
		return "TERMINATED"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// legalTransitions is the state-machine graph from spec.md §3. Any
// transition not listed here is a bug and must fail loudly.
var legalTransitions = map[State]map[State]bool{
	NotInitialized: {Initialized: true},
	Initialized:    {Active: true, Terminated: true},
	Active:         {SuspSend: true, SuspRecv: true, Terminated: true, Error: true},
	SuspSend:       {Active: true, Error: true},
	SuspRecv:       {Active: true, Error: true, Terminated: true},
}

// CheckTransition reports an error if moving from -> to is not a legal
// transition of the component lifecycle.
func CheckTransition(componentName string, from, to State) error {
	if legalTransitions[from][to] {
		return nil
	}
	return ferr.NewComponentStateError(componentName, from.String(), to.String(), "")
}

// IsTerminal reports whether s is TERMINATED or ERROR, the two states an
// input port's source component must reach before the port can infer
// end-of-stream (spec.md §4.5 "Termination detection").
func IsTerminal(s State) bool {
	return s == Terminated || s == Error
}

// Holder is implemented by anything that exposes a lifecycle State,
// structurally satisfied by flow/component.Base without flow/port
// needing to import flow/component (which itself depends on flow/port).
type Holder interface {
	State() State
}
