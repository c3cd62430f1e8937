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

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/packetd/flowengine/flow/component"
	"github.com/packetd/flowengine/flow/ferr"
	"github.com/packetd/flowengine/flow/lifecycle"
	"github.com/packetd/flowengine/internal/rescue"
	"github.com/packetd/flowengine/internal/telemetry"
)

// runActivity drives one component through the activity body of spec.md
// §4.5:
//
//	assert state == INITIALIZED
//	state = ACTIVE
//	try:
//	    run()
//	    if is_alive(): terminate()
//	finally:
//	    destroy()
//
// "destroy()" is teardown below: close remaining ports, check for leaks,
// and reset to INITIALIZED so a terminated graph could in principle be
// re-run (spec.md §4.5 "Tear-down").
func (e *Executor) runActivity(ctx context.Context, inst *component.Instance) error {
	name := inst.Name()

	if inst.State() != lifecycle.Initialized {
		err := ferr.NewComponentStateError(name, inst.State().String(), lifecycle.Active.String(),
			"activity started from a non-INITIALIZED state")
		e.recordError(err)
		return err
	}

	spanCtx, span := e.tracer.Start(ctx, "component.run", trace.WithAttributes(
		attribute.String("flow.component", name),
		attribute.String("flow.run_id", e.runID),
	))
	defer span.End()

	if err := inst.TransitionTo(lifecycle.Active); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.recordError(err)
		return err
	}

	runErr := e.invoke(spanCtx, inst)
	if runErr != nil {
		span.RecordError(runErr)
		span.SetStatus(codes.Error, runErr.Error())
	}

	e.teardown(inst, runErr)

	if runErr != nil {
		e.recordError(runErr)
		return runErr
	}
	return nil
}

// invoke calls the component's Run body, converting both a returned error
// and a recovered panic into a ComponentError (spec.md §7 "Component:
// exception thrown out of run"). Panics are additionally routed through
// internal/rescue so they are logged and counted exactly like any other
// recovered executor-activity panic.
func (e *Executor) invoke(ctx context.Context, inst *component.Instance) (err error) {
	defer func() {
		if r := recover(); r != nil {
			rescue.Observe(r)
			err = ferr.NewComponentError(inst.Name(), errors.Errorf("panic: %v", r))
		}
	}()
	if runErr := inst.Run(ctx); runErr != nil {
		return ferr.NewComponentError(inst.Name(), runErr)
	}
	return nil
}

// teardown implements spec.md §4.5 "Tear-down": terminate (if the
// component did not terminate itself), close any still-open ports, log
// and count leaks, record the terminal-state metric, and reset state to
// INITIALIZED.
func (e *Executor) teardown(inst *component.Instance, runErr error) {
	if runErr != nil {
		_ = inst.Terminate(runErr)
	} else if inst.IsAlive() {
		_ = inst.Terminate(nil)
	}

	inst.ClosePorts()
	inst.CheckLeaks()

	state := inst.State()
	telemetry.ComponentTerminated.WithLabelValues(inst.Name(), state.String()).Inc()
	if n := inst.OwnedCount(); n != 0 {
		telemetry.PacketsLeaked.WithLabelValues(inst.Name()).Inc()
	}

	inst.ResetState()
}
