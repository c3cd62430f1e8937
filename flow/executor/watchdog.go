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

	"github.com/packetd/flowengine/flow/component"
	"github.com/packetd/flowengine/flow/lifecycle"
	"github.com/packetd/flowengine/internal/telemetry"
)

// watch starts the fairness watchdog (spec.md §4.5 "Fairness"): a ticker
// samples every component's state and, once a component has sat in
// SUSP_SEND/SUSP_RECV longer than fairnessThreshold, logs one warning per
// stall (not one per tick) identifying the offending component. It also
// doubles as the sampler for the queue-depth and bracket-depth gauges
// (SPEC_FULL.md §B), since both concerns need the same per-tick walk over
// every component's ports. Purely advisory, per spec.md §4.5 — it never
// affects scheduling decisions.
//
// The returned stop function blocks until the watchdog goroutine has
// exited; it does not depend on the run's own context; it is keyed to its
// own stop channel precisely so it can be told to stop once the run
// finishes, independent of when the caller cancels the run's context.
func (e *Executor) watch(insts []*component.Instance) (stop func()) {
	stopCh := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)

		ticker := time.NewTicker(e.pollInterval)
		defer ticker.Stop()

		lastState := make(map[string]lifecycle.State, len(insts))
		lastChange := make(map[string]time.Time, len(insts))
		warned := make(map[string]bool, len(insts))
		now := time.Now()
		for _, inst := range insts {
			lastState[inst.Name()] = inst.State()
			lastChange[inst.Name()] = now
		}

		for {
			select {
			case <-stopCh:
				return
			case t := <-ticker.C:
				e.tick(insts, t, lastState, lastChange, warned)
			}
		}
	}()

	return func() {
		close(stopCh)
		<-done
	}
}

func (e *Executor) tick(
	insts []*component.Instance,
	now time.Time,
	lastState map[string]lifecycle.State,
	lastChange map[string]time.Time,
	warned map[string]bool,
) {
	for _, inst := range insts {
		name := inst.Name()
		st := inst.State()

		if st != lastState[name] {
			lastState[name] = st
			lastChange[name] = now
			warned[name] = false
		} else if isBlocking(st) && !warned[name] && now.Sub(lastChange[name]) > e.fairnessThreshold {
			warned[name] = true
			blockedFor := now.Sub(lastChange[name])
			e.log.Warnw("component blocked the scheduler past the fairness threshold",
				"component", name, "state", st.String(), "blocked_for", blockedFor.String())
			telemetry.WatchdogStalls.WithLabelValues(name, st.String()).Inc()
		}

		for _, in := range inst.Inputs.All() {
			telemetry.QueueDepth.WithLabelValues(name, in.Name()).Set(float64(in.QueueLen()))
		}
		for _, out := range inst.Outputs.All() {
			telemetry.BracketDepth.WithLabelValues(name, out.Name()).Set(float64(out.BracketDepth()))
		}
	}
}

// isBlocking reports whether a component in state s is a candidate for a
// fairness warning. ACTIVE components doing CPU-bound work without
// suspending are, by spec.md §4.5's own admission, out of scope for this
// watchdog ("not an idle/hub task" in the source in practice meant "not
// suspended at all"); only the two suspended states are actionable here.
func isBlocking(s lifecycle.State) bool {
	return s == lifecycle.SuspSend || s == lifecycle.SuspRecv
}
