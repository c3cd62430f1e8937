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
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/packetd/flowengine/flow/component"
	"github.com/packetd/flowengine/flow/executor"
	"github.com/packetd/flowengine/flow/graph"
	"github.com/packetd/flowengine/logger"
)

// WorkerArg is the hidden CLI subcommand name cmd/worker.go registers;
// kept here so the parent (proc.Executor) and the worker entrypoint
// agree on it without either importing cmd.
const WorkerArg = "__procworker"

// RunWorker is the child process's entire body: decode the manifest
// passed by the parent, rebuild the one real component it's responsible
// for via its registered factory (flow/component.Get), wrap it with a
// pipeSource per input and a pipeSink per output bound to the fds the
// parent already opened, and drive all of it with an ordinary
// flow/executor.Executor — the same one flow/executor/proc's parent side
// would have used had the whole graph stayed in one process.
func RunWorker(ctx context.Context, manifestB64 string, log logger.Logger) error {
	m, err := decodeManifest(manifestB64)
	if err != nil {
		return err
	}

	factory, err := component.Get(m.Node.Kind)
	if err != nil {
		return err
	}
	runner, err := factory(m.Node.Options)
	if err != nil {
		return errors.Wrapf(err, "proc: build component %q", m.Node.Name)
	}

	g := graph.New(fmt.Sprintf("worker:%s", m.Node.Name), log)
	if _, err := g.AddComponent(m.Node.Name, runner); err != nil {
		return err
	}

	for portName, fd := range m.InputFDs {
		srcName := m.Node.Name + "#in#" + portName
		src := &pipeSource{r: os.NewFile(uintptr(fd), srcName)}
		if _, err := g.AddComponent(srcName, src); err != nil {
			return err
		}
		if err := g.Connect(srcName, "out", m.Node.Name, portName); err != nil {
			return err
		}
	}

	for portName, fd := range m.OutputFDs {
		sinkName := m.Node.Name + "#out#" + portName
		mq := m.MaxQueue[portName]
		if mq <= 0 {
			mq = DefaultMaxQueue
		}
		sink := &pipeSink{w: os.NewFile(uintptr(fd), sinkName), maxQueue: mq}
		if _, err := g.AddComponent(sinkName, sink); err != nil {
			return err
		}
		if err := g.Connect(m.Node.Name, portName, sinkName, "in"); err != nil {
			return err
		}
	}

	return executor.New(g, log).Execute(ctx)
}
