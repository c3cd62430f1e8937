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

package component

import (
	"github.com/pkg/errors"

	"github.com/packetd/flowengine/flow/option"
)

// CreateFunc builds a Runner from its construction options. Registered
// factories are keyed by component kind, the same map[string]CreateFunc
// shape the teacher uses for processor.Register/processor.Get, here
// generalized from Processor to Runner.
type CreateFunc func(opts option.Options) (Runner, error)

var factory = map[string]CreateFunc{}

// Register adds a component kind to the global factory map. Called from
// an init() in the package implementing the kind (components/generator,
// components/sink, ...).
func Register(kind string, f CreateFunc) {
	factory[kind] = f
}

// Get resolves a registered factory by kind.
func Get(kind string) (CreateFunc, error) {
	f, ok := factory[kind]
	if !ok {
		return nil, errors.Errorf("component factory %q not found", kind)
	}
	return f, nil
}
