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

// Package cmd wires flowengine's subcommands: run (drive a graph
// in-process), worker (the hidden per-component host re-exec'd by
// flow/executor/proc.Executor), and version.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "flowengine",
	Short: "flowengine runs flow-based-programming graphs",
}

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "flowengine.yaml", "Configuration file path")
}

// Execute runs the root command, exiting the process on error the same
// way the teacher's cmd.Execute did.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
