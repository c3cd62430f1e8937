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

// Package telemetry holds the Prometheus metrics recorded by
// flow/executor: queue depth, bracket balance,
// component termination outcomes, and fairness-watchdog stalls. Grounded
// on packetd/controller.go's recordMetrics and internal/rescue's
// panicTotal counter, generalized from per-protocol roundtrip metrics to
// per-component/per-port FBP metrics.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/packetd/flowengine/common"
)

var (
	// QueueDepth reports the number of packets currently buffered on a
	// connection, sampled by the executor's monitor loop (spec.md §8
	// "Backpressure").
	QueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: common.App,
			Name:      "connection_queue_depth",
			Help:      "packets currently buffered on a connection's input port",
		},
		[]string{"component", "port"},
	)

	// BracketDepth mirrors an output port's current nesting depth (spec.md
	// I6), sampled alongside QueueDepth.
	BracketDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: common.App,
			Name:      "output_bracket_depth",
			Help:      "current substream/map bracket nesting depth of an output port",
		},
		[]string{"component", "port"},
	)

	// ComponentTerminated counts activity completions by terminal state
	// (TERMINATED vs ERROR), one increment per component per run.
	ComponentTerminated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: common.App,
			Name:      "component_terminated_total",
			Help:      "component activities that reached a terminal state",
		},
		[]string{"component", "state"},
	)

	// PacketsLeaked counts non-zero owned-packet counts observed at
	// component teardown (spec.md §3 "a non-zero count ... indicates a
	// leak").
	PacketsLeaked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: common.App,
			Name:      "component_packets_leaked_total",
			Help:      "components torn down with a non-zero owned-packet count",
		},
		[]string{"component"},
	)

	// WatchdogStalls counts fairness-watchdog warnings, one per component
	// per observed stall (spec.md §4.5 "Fairness").
	WatchdogStalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: common.App,
			Name:      "watchdog_stall_total",
			Help:      "components observed blocking longer than the fairness threshold",
		},
		[]string{"component", "state"},
	)

	// RunsTotal counts Executor.Execute invocations by outcome.
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: common.App,
			Name:      "executor_runs_total",
			Help:      "graph executions by outcome",
		},
		[]string{"outcome"},
	)
)
