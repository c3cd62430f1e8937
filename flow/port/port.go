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

// Package port implements named port endpoints and the bounded
// connection queue between them (spec.md §3 "Port", "Connection", §4.2).
package port

import (
	"reflect"

	"github.com/packetd/flowengine/flow/lifecycle"
	"github.com/packetd/flowengine/flow/packet"
)

// ComponentRef is the view of an owning/peer component a port needs: it
// can own packets and it exposes a lifecycle State for termination
// detection. flow/component.Base satisfies this structurally; port never
// imports flow/component (which imports port), avoiding a cycle.
type ComponentRef interface {
	packet.Owner
	lifecycle.Holder
	// TransitionTo moves the component to the given state, validating the
	// transition against the lifecycle state machine (spec.md §3).
	TransitionTo(lifecycle.State) error
}

// Options configures a port at Registry.Add time, mirroring spec.md §6
// "initialize(): inputs.add(name, **opts)".
type Options struct {
	Description  string
	Optional     bool
	AllowedTypes []reflect.Type
	Default      any
	HasDefault   bool
	MaxQueueSize int // input ports only; <= 0 means unbounded
}

func checkType(allowed []reflect.Type, v any) bool {
	if len(allowed) == 0 || v == nil {
		return true
	}
	vt := reflect.TypeOf(v)
	for _, t := range allowed {
		if vt == t || (t.Kind() == reflect.Interface && vt.Implements(t)) {
			return true
		}
	}
	return false
}
