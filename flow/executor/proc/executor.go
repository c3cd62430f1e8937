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

package proc

import (
	"context"
	"os"
	"os/exec"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/packetd/flowengine/internal/wire"
	"github.com/packetd/flowengine/logger"
)

// Executor runs a GraphSpec with one OS process per node (spec.md §9
// "process isolation mode"), connected by internal/wire frames over OS
// pipes instead of in-process channels.
type Executor struct {
	spec GraphSpec
	log  logger.Logger
	bin  string
}

// New builds a process Executor for spec. bin is the path to this same
// binary (os.Executable()), re-exec'd with WorkerArg for each node —
// there is no separate "worker binary" to ship; every built artifact can
// run either as the orchestrator or, hidden behind this subcommand, as a
// single component's host process.
func New(spec GraphSpec, log logger.Logger) (*Executor, error) {
	bin, err := os.Executable()
	if err != nil {
		return nil, errors.Wrap(err, "proc: resolve self executable")
	}
	return &Executor{spec: spec, log: log, bin: bin}, nil
}

// Execute spawns one process per node, wires their pipes per spec.Edges
// and spec.IIPs, and blocks until every process exits. A node process
// exiting non-zero contributes one error to the aggregated result,
// mirroring flow/executor.Executor.Execute's go-multierror aggregation.
func (e *Executor) Execute(ctx context.Context) error {
	nodeExtra := map[string][]*os.File{}
	nodeInputFDs := map[string]map[string]int{}
	nodeOutputFDs := map[string]map[string]int{}
	nodeMaxQueue := map[string]map[string]int{}
	var edgeFiles []*os.File

	addExtra := func(node string, f *os.File) int {
		nodeExtra[node] = append(nodeExtra[node], f)
		return 2 + len(nodeExtra[node]) // fd 3, 4, 5, ... (stdin/stdout/stderr occupy 0-2)
	}

	for _, edge := range e.spec.Edges {
		r, w, err := os.Pipe()
		if err != nil {
			return errors.Wrap(err, "proc: open edge pipe")
		}
		edgeFiles = append(edgeFiles, r, w)

		wfd := addExtra(edge.FromComponent, w)
		if nodeOutputFDs[edge.FromComponent] == nil {
			nodeOutputFDs[edge.FromComponent] = map[string]int{}
		}
		nodeOutputFDs[edge.FromComponent][edge.FromPort] = wfd

		rfd := addExtra(edge.ToComponent, r)
		if nodeInputFDs[edge.ToComponent] == nil {
			nodeInputFDs[edge.ToComponent] = map[string]int{}
		}
		nodeInputFDs[edge.ToComponent][edge.ToPort] = rfd

		mq := edge.MaxQueue
		if mq <= 0 {
			mq = DefaultMaxQueue
		}
		if nodeMaxQueue[edge.FromComponent] == nil {
			nodeMaxQueue[edge.FromComponent] = map[string]int{}
		}
		nodeMaxQueue[edge.FromComponent][edge.FromPort] = mq
	}

	var iipWriters []*os.File
	for _, iip := range e.spec.IIPs {
		r, w, err := os.Pipe()
		if err != nil {
			return errors.Wrap(err, "proc: open iip pipe")
		}
		edgeFiles = append(edgeFiles, r)
		iipWriters = append(iipWriters, w)

		rfd := addExtra(iip.Component, r)
		if nodeInputFDs[iip.Component] == nil {
			nodeInputFDs[iip.Component] = map[string]int{}
		}
		nodeInputFDs[iip.Component][iip.Port] = rfd

		go writeIIP(w, iip.Value, e.log)
	}

	cmds := make([]*exec.Cmd, 0, len(e.spec.Nodes))
	for _, node := range e.spec.Nodes {
		m := manifest{
			Node:      node,
			InputFDs:  nodeInputFDs[node.Name],
			OutputFDs: nodeOutputFDs[node.Name],
			MaxQueue:  nodeMaxQueue[node.Name],
		}
		encoded, err := encodeManifest(m)
		if err != nil {
			return err
		}

		cmd := exec.CommandContext(ctx, e.bin, WorkerArg, "--manifest", encoded)
		cmd.ExtraFiles = nodeExtra[node.Name]
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Start(); err != nil {
			return errors.Wrapf(err, "proc: start process for %q", node.Name)
		}
		cmds = append(cmds, cmd)
	}

	// The fork+exec under cmd.Start dup'd every ExtraFiles entry into its
	// child; the parent's own copies must close now; otherwise a
	// producer's write end staying open in the parent would stop the
	// consumer from ever observing EOF once the real producer exits.
	for _, f := range edgeFiles {
		_ = f.Close()
	}

	var result *multierror.Error
	for i, cmd := range cmds {
		if err := cmd.Wait(); err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "proc: component %q exited with error", e.spec.Nodes[i].Name))
		}
	}
	for _, w := range iipWriters {
		_ = w.Close()
	}

	return result.ErrorOrNil()
}

func writeIIP(w *os.File, value any, log logger.Logger) {
	defer w.Close()
	writer := wire.NewWriter(w)
	if err := writer.WriteFrame(wire.Frame{Value: value}); err != nil {
		log.Warnw("failed to write initial packet over pipe", "error", err)
		return
	}
	if err := writer.WriteFrame(wire.EndOfStreamFrame); err != nil {
		log.Warnw("failed to write end-of-stream for initial packet", "error", err)
	}
}
