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

// Package executor implements the single-process, cooperative-goroutine
// scheduler (spec.md §4.5, §5): it spawns one activity per component,
// drives each to completion, detects termination, propagates errors, and
// tears components down. The bounded-queue backpressure and termination
// inference themselves live in flow/port (an input port already closes
// itself once its source is terminal and its queue drained); this package
// owns activity lifecycle, fairness, and error/metrics aggregation on top
// of that substrate.
package executor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/packetd/flowengine/flow/component"
	"github.com/packetd/flowengine/flow/ferr"
	"github.com/packetd/flowengine/flow/graph"
	"github.com/packetd/flowengine/internal/telemetry"
	"github.com/packetd/flowengine/logger"
)

// Executor drives one Graph to completion. It is grounded on the
// teacher's processor.Register/Get-style "build once, run many times"
// shape, generalized from the request-scoped packetd processors to a
// whole-graph activity supervisor: construct with New, run with Execute,
// cancel early with Stop.
type Executor struct {
	g      *graph.Graph
	log    logger.Logger
	tracer trace.Tracer
	runID  string

	fairnessThreshold time.Duration
	pollInterval      time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	errs   []error

	running atomic.Bool
}

// New constructs an Executor bound to g. g must not yet have been run;
// New does not mutate g (Execute freezes it).
func New(g *graph.Graph, log logger.Logger, opts ...Option) *Executor {
	runID := uuid.New().String()
	e := &Executor{
		g:                 g,
		log:               log.With("graph", g.Name(), "run_id", runID),
		tracer:            otel.Tracer("github.com/packetd/flowengine/flow/executor"),
		runID:             runID,
		fairnessThreshold: DefaultFairnessThreshold,
		pollInterval:      DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunID returns the UUID assigned to this Executor at construction,
// correlating the span and the executor's log lines of one run
// (component loggers carry only the component name) (SPEC_FULL.md §B,
// grounded on internal/pubsub.newChannel's uuid.New() convention and
// bassosimone-nop's span-correlation idiom).
func (e *Executor) RunID() string { return e.runID }

// IsRunning reports whether Execute is currently driving the graph
// (spec.md §6 "Executor API").
func (e *Executor) IsRunning() bool { return e.running.Load() }

// Stop requests early termination of every component (spec.md §6
// "stop()"). It is safe to call from any goroutine, including one racing
// with Execute's return. A Stop before or after a run with no in-flight
// Execute is a no-op.
func (e *Executor) Stop() {
	e.mu.Lock()
	cancel := e.cancel
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// orderedComponents returns every graph component with self-starters
// first, preserving registration order within each group (SPEC_FULL.md
// §C "Self-starter ordering": self-starters run first, deterministically,
// grounded on pflow/runtimes/base.py).
func (e *Executor) orderedComponents() []*component.Instance {
	all := e.g.Components()
	ordered := make([]*component.Instance, 0, len(all))
	var rest []*component.Instance
	for _, inst := range all {
		if inst.IsSelfStarter() {
			ordered = append(ordered, inst)
		} else {
			rest = append(rest, inst)
		}
	}
	return append(ordered, rest...)
}

// Execute runs every component to completion (spec.md §4.5). It returns
// nil iff every component terminated without error. Otherwise it returns
// an aggregate (via hashicorp/go-multierror) of every error recorded
// during the run, in occurrence order — Errors[0] is the fault spec.md §6
// calls "the first recorded error"; later entries are the knock-on
// failures other components hit once Execute began tearing them down
// (spec.md §7 "Propagation").
func (e *Executor) Execute(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return ferr.NewGraphError(e.g.Name(), "executor is already running")
	}
	defer e.running.Store(false)

	e.g.Freeze()
	insts := e.orderedComponents()

	runCtx, cancel := context.WithCancel(ctx)
	e.mu.Lock()
	e.cancel = cancel
	e.errs = nil
	e.mu.Unlock()
	defer cancel()

	stopWatchdog := e.watch(insts)
	defer stopWatchdog()

	grp, gctx := errgroup.WithContext(runCtx)
	for _, inst := range insts {
		inst := inst
		grp.Go(func() error {
			return e.runActivity(gctx, inst)
		})
	}
	_ = grp.Wait()

	e.mu.Lock()
	errs := append([]error(nil), e.errs...)
	e.mu.Unlock()

	if len(errs) == 0 {
		telemetry.RunsTotal.WithLabelValues("ok").Inc()
		e.log.Debugw("graph execution finished", "components", len(insts))
		return nil
	}

	telemetry.RunsTotal.WithLabelValues("error").Inc()
	var result *multierror.Error
	for _, err := range errs {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

func (e *Executor) recordError(err error) {
	if err == nil {
		return
	}
	e.mu.Lock()
	e.errs = append(e.errs, err)
	e.mu.Unlock()
	e.log.Errorw("component activity failed", "error", err)
}
