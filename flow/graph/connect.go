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

package graph

import (
	"fmt"

	"github.com/packetd/flowengine/flow/component"
	"github.com/packetd/flowengine/flow/ferr"
	"github.com/packetd/flowengine/flow/port"
)

func (g *Graph) outputPort(compName, portName string) (*port.OutputPort, error) {
	inst, ok := g.components[compName]
	if !ok {
		return nil, ferr.NewComponentNotFoundError(compName)
	}
	p, ok := inst.Outputs.Get(portName)
	if !ok {
		return nil, ferr.NewFlowError("graph", "component "+compName+" has no output port "+portName)
	}
	return p, nil
}

func (g *Graph) inputPort(compName, portName string) (*port.InputPort, error) {
	inst, ok := g.components[compName]
	if !ok {
		return nil, ferr.NewComponentNotFoundError(compName)
	}
	p, ok := inst.Inputs.Get(portName)
	if !ok {
		return nil, ferr.NewFlowError("graph", "component "+compName+" has no input port "+portName)
	}
	return p, nil
}

// Connect binds outComp.outPort -> inComp.inPort (spec.md §4.4
// "connect(out, in)").
func (g *Graph) Connect(outComp, outPort, inComp, inPort string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.mustBeMutable("connect"); err != nil {
		return err
	}
	out, err := g.outputPort(outComp, outPort)
	if err != nil {
		return err
	}
	in, err := g.inputPort(inComp, inPort)
	if err != nil {
		return err
	}
	return port.Connect(out, in)
}

// DisconnectInput removes the edge feeding compName.portName.
func (g *Graph) DisconnectInput(compName, portName string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.mustBeMutable("disconnect"); err != nil {
		return err
	}
	in, err := g.inputPort(compName, portName)
	if err != nil {
		return err
	}
	return port.Disconnect(in)
}

// DisconnectOutput removes the edge leaving compName.portName.
func (g *Graph) DisconnectOutput(compName, portName string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.mustBeMutable("disconnect"); err != nil {
		return err
	}
	out, err := g.outputPort(compName, portName)
	if err != nil {
		return err
	}
	return port.Disconnect(out)
}

// SetInitialPacket constructs an IIP generator component and connects it
// to compName.portName (spec.md §3 "IIP generator", §4.4
// "set_initial_packet").
func (g *Graph) SetInitialPacket(compName, portName string, value any) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.mustBeMutable("set_initial_packet"); err != nil {
		return err
	}
	in, err := g.inputPort(compName, portName)
	if err != nil {
		return err
	}
	if in.Connected() {
		return ferr.NewFlowError("graph.set_initial_packet", "input "+compName+"."+portName+" already has a source")
	}

	g.iipSeq++
	key := compName + "." + portName
	name := fmt.Sprintf("%s#iip%d", key, g.iipSeq)

	base := component.NewBase(name, g.log)
	inst := component.NewInstance(base, component.NewIIPGenerator(value))
	if err := inst.Initialize(); err != nil {
		return err
	}
	out, _ := inst.Outputs.Get("out")
	if err := port.Connect(out, in); err != nil {
		return err
	}

	g.components[name] = inst
	g.order = append(g.order, name)
	g.iips[key] = inst
	return nil
}

// UnsetInitialPacket removes a previously-set IIP from compName.portName
// (spec.md §6 "unset_initial_packet").
func (g *Graph) UnsetInitialPacket(compName, portName string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.mustBeMutable("unset_initial_packet"); err != nil {
		return err
	}
	key := compName + "." + portName
	inst, ok := g.iips[key]
	if !ok {
		return ferr.NewFlowError("graph.unset_initial_packet", "no IIP set on "+key)
	}
	in, err := g.inputPort(compName, portName)
	if err != nil {
		return err
	}
	if err := port.Disconnect(in); err != nil {
		return err
	}
	delete(g.iips, key)
	delete(g.components, inst.Name())
	for i, n := range g.order {
		if n == inst.Name() {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	return nil
}

// SetPortDefaults installs an IIP carrying the configured default on
// every optional, unconnected, default-bearing input of compName (spec.md
// §4.4 "set_port_defaults").
func (g *Graph) SetPortDefaults(compName string) error {
	g.mu.Lock()
	inst, ok := g.components[compName]
	g.mu.Unlock()
	if !ok {
		return ferr.NewComponentNotFoundError(compName)
	}
	for _, in := range inst.Inputs.All() {
		if !in.Optional() || in.Connected() {
			continue
		}
		def, has := in.Default()
		if !has {
			continue
		}
		if err := g.SetInitialPacket(compName, in.Name(), def); err != nil {
			return err
		}
	}
	return nil
}
