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
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/packetd/flowengine/logger"
)

const (
	// DefaultFairnessThreshold is the wall-clock gap between scheduler
	// observations after which the watchdog logs a stalled component
	// (spec.md §4.5 "Fairness ... default 1 s").
	DefaultFairnessThreshold = time.Second

	// DefaultPollInterval is how often the watchdog samples component
	// state and queue/bracket depth.
	DefaultPollInterval = 100 * time.Millisecond
)

// Option configures an Executor at construction.
type Option func(*Executor)

// WithFairnessThreshold overrides DefaultFairnessThreshold.
func WithFairnessThreshold(d time.Duration) Option {
	return func(e *Executor) { e.fairnessThreshold = d }
}

// WithPollInterval overrides DefaultPollInterval.
func WithPollInterval(d time.Duration) Option {
	return func(e *Executor) { e.pollInterval = d }
}

// WithTracer overrides the default otel.Tracer, useful for tests that
// want a no-op or recording tracer instead of the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(e *Executor) { e.tracer = t }
}

// WithLogger overrides the logger derived from New's log argument, e.g.
// to add extra scoping fields before the run_id/graph fields are applied.
func WithLogger(l logger.Logger) Option {
	return func(e *Executor) { e.log = l.With("graph", e.g.Name(), "run_id", e.runID) }
}
