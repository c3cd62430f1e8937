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

package port

import "github.com/packetd/flowengine/flow/ferr"

// Connect binds out -> in, allocating the connection's bounded queue.
// Fails if either side is already bound (spec.md I1/I2). flow/graph
// (Connect and SetInitialPacket) is the only intended caller outside of
// tests.
func Connect(out *OutputPort, in *InputPort) error {
	if out.Connected() {
		return ferr.NewFlowError("connect", "output port "+out.owner.Name()+"."+out.name+" already has a target")
	}
	if in.Connected() {
		return ferr.NewFlowError("connect", "input port "+in.owner.Name()+"."+in.name+" already has a source")
	}
	in.bind(out)
	return nil
}

// Disconnect removes the edge bound to p, whichever side it is. Passing
// an unconnected port is a structural error (spec.md §7 "disconnecting a
// disconnected port").
func Disconnect(p any) error {
	switch v := p.(type) {
	case *InputPort:
		if !v.Connected() {
			return ferr.NewFlowError("disconnect", "input port "+v.owner.Name()+"."+v.name+" is not connected")
		}
		src := v.source
		v.unbind()
		src.detach()
		return nil
	case *OutputPort:
		if !v.Connected() {
			return ferr.NewFlowError("disconnect", "output port "+v.owner.Name()+"."+v.name+" is not connected")
		}
		in := v.target
		v.detach()
		in.unbind()
		return nil
	default:
		return ferr.NewFlowError("disconnect", "not a port")
	}
}
