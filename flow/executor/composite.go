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

package executor

import (
	"context"

	"github.com/packetd/flowengine/flow/graph"
	"github.com/packetd/flowengine/logger"
)

// NewComposite binds child's RunFunc so that, once child has been added
// as a component inside a parent graph (spec.md §3 "A graph may appear as
// a node inside another graph"), the parent executor's activity for it
// drives a fresh nested Executor over child to completion. Exports
// (ExportInput/ExportOutput) must be set up on child before it is added to
// the parent, since AddComponent freezes nothing but Connect on the
// parent side requires the exported proxy ports to already exist.
func NewComposite(child *graph.Graph, log logger.Logger, opts ...Option) {
	child.RunFunc = func(ctx context.Context) error {
		return New(child, log, opts...).Execute(ctx)
	}
}
