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
	"time"

	"github.com/spf13/cobra"

	_ "github.com/packetd/flowengine/components/generator"
	_ "github.com/packetd/flowengine/components/multiply"
	_ "github.com/packetd/flowengine/components/repeat"
	_ "github.com/packetd/flowengine/components/sink"
	_ "github.com/packetd/flowengine/components/sleep"
	_ "github.com/packetd/flowengine/components/split"

	"github.com/packetd/flowengine/confengine"
	"github.com/packetd/flowengine/flow/component"
	"github.com/packetd/flowengine/flow/executor"
	"github.com/packetd/flowengine/flow/graph"
	"github.com/packetd/flowengine/flow/option"
	"github.com/packetd/flowengine/internal/sigs"
	"github.com/packetd/flowengine/logger"
	"github.com/packetd/flowengine/server"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the built-in demo graph in process",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := confengine.LoadConfigPath(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}

		var logOpt logger.Options
		if err := cfg.UnpackChild("logger", &logOpt); err != nil {
			fmt.Fprintf(os.Stderr, "failed to load logger config: %v\n", err)
			os.Exit(1)
		}
		logger.SetOptions(logOpt)
		log := logger.New(logOpt)

		srv, err := server.New(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create server: %v\n", err)
			os.Exit(1)
		}
		if srv != nil {
			srv.SetupAdmin()
			go func() {
				if err := srv.ListenAndServe(); err != nil {
					logger.Errorf("server stopped: %v", err)
				}
			}()
		}

		g, err := buildDemoGraph(log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to build graph: %v\n", err)
			os.Exit(1)
		}

		ex := executor.New(g, log)
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- ex.Execute(ctx) }()

		select {
		case err := <-done:
			cancel()
			if err != nil {
				fmt.Fprintf(os.Stderr, "graph run failed: %v\n", err)
				os.Exit(1)
			}
		case <-sigs.Terminate():
			cancel()
			<-done
		}
	},
	Example: "# flowengine run --config flowengine.yaml",
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// buildDemoGraph wires two independent generators into multiply's "x" and
// "y" inputs and multiply's "out" into sink, the same shape
// components/multiply/multiply_test.go exercises in isolation under
// TestMultiplyProductsTwoUpstreams, here connected end to end as the
// runnable example of spec.md §8 scenario 3's binary-operator pipeline.
func buildDemoGraph(log logger.Logger) (*graph.Graph, error) {
	g := graph.New("demo", log)

	genFactory, err := component.Get("generator")
	if err != nil {
		return nil, err
	}
	genX, err := genFactory(option.Options{"SEED": int64(time.Now().UnixNano()), "MIN": 0, "MAX": 10, "LIMIT": 20})
	if err != nil {
		return nil, err
	}
	if _, err := g.AddComponent("genX", genX); err != nil {
		return nil, err
	}

	genY, err := genFactory(option.Options{"SEED": int64(time.Now().UnixNano()) + 1, "MIN": 0, "MAX": 10, "LIMIT": 20})
	if err != nil {
		return nil, err
	}
	if _, err := g.AddComponent("genY", genY); err != nil {
		return nil, err
	}

	mulFactory, err := component.Get("multiply")
	if err != nil {
		return nil, err
	}
	mul, err := mulFactory(option.Options{})
	if err != nil {
		return nil, err
	}
	if _, err := g.AddComponent("mul", mul); err != nil {
		return nil, err
	}

	sinkFactory, err := component.Get("sink")
	if err != nil {
		return nil, err
	}
	sink, err := sinkFactory(option.Options{})
	if err != nil {
		return nil, err
	}
	if _, err := g.AddComponent("sink", sink); err != nil {
		return nil, err
	}

	if err := g.Connect("genX", "out", "mul", "x"); err != nil {
		return nil, err
	}
	if err := g.Connect("genY", "out", "mul", "y"); err != nil {
		return nil, err
	}
	if err := g.Connect("mul", "out", "sink", "in"); err != nil {
		return nil, err
	}
	return g, nil
}
