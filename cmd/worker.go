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

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// components register their kinds with flow/component on import; the
	// worker re-exec only needs component.Get to already know about every
	// kind that might appear in a manifest, so every built-in component
	// package is imported here for its side effect, same as cmd/run.go.
	_ "github.com/packetd/flowengine/components/generator"
	_ "github.com/packetd/flowengine/components/multiply"
	_ "github.com/packetd/flowengine/components/repeat"
	_ "github.com/packetd/flowengine/components/sink"
	_ "github.com/packetd/flowengine/components/sleep"
	_ "github.com/packetd/flowengine/components/split"

	"github.com/packetd/flowengine/flow/executor/proc"
	"github.com/packetd/flowengine/internal/sigs"
	"github.com/packetd/flowengine/logger"
)

var manifestFlag string

// workerCmd is the hidden subcommand flow/executor/proc.Executor re-execs
// this same binary with, one process per graph node. It is never invoked
// directly by an operator.
var workerCmd = &cobra.Command{
	Use:    proc.WorkerArg,
	Hidden: true,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			<-sigs.Terminate()
			cancel()
		}()

		log := logger.New(logger.Options{Stdout: true})
		if err := proc.RunWorker(ctx, manifestFlag, log); err != nil {
			fmt.Fprintf(os.Stderr, "worker failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	workerCmd.Flags().StringVar(&manifestFlag, "manifest", "", "base64-encoded node manifest")
	rootCmd.AddCommand(workerCmd)
}
