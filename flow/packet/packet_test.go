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

package packet_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/packetd/flowengine/flow/packet"
)

type fakeOwner struct {
	name  string
	owned int
}

func (o *fakeOwner) Name() string { return o.name }
func (o *fakeOwner) IncOwned()    { o.owned++ }
func (o *fakeOwner) DecOwned()    { o.owned-- }

func TestNewIncrementsOwnerCount(t *testing.T) {
	owner := &fakeOwner{name: "a"}
	p := packet.New(owner, 42)
	require.Equal(t, 1, owner.owned)
	require.Equal(t, 42, p.Value())
}

func TestDropDecrementsCurrentOwner(t *testing.T) {
	owner := &fakeOwner{name: "a"}
	p := packet.New(owner, "x")
	packet.Drop(p)
	require.Equal(t, 0, owner.owned)
	require.Nil(t, p.Owner())
}

func TestTransferMovesOwnership(t *testing.T) {
	a := &fakeOwner{name: "a"}
	b := &fakeOwner{name: "b"}
	p := packet.New(a, "x")
	p.Transfer(b)
	require.Equal(t, 0, a.owned)
	require.Equal(t, 1, b.owned)
	require.Equal(t, b, p.Owner())
}

func TestSetValueAlwaysFails(t *testing.T) {
	p := packet.New(nil, 1)
	require.ErrorIs(t, p.SetValue(2), packet.ErrImmutableValue)
	require.Equal(t, 1, p.Value())
}

func TestEndOfStreamIsNotAPacket(t *testing.T) {
	require.NotEqual(t, packet.EndOfStream, packet.New(nil, nil))
}

func TestControlPacketCarriesNoValue(t *testing.T) {
	p := packet.NewControl(nil, packet.StartSubStream, nil)
	require.True(t, p.IsControl())
	require.Nil(t, p.Value())
	require.True(t, packet.StartSubStream.IsOpen())
	require.True(t, packet.EndSubStream.IsClose())
	require.False(t, packet.Data.IsBracket())
}

func TestSwitchMapNamespaceCarriesKey(t *testing.T) {
	p := packet.NewControl(nil, packet.SwitchMapNamespace, "k1")
	require.Equal(t, "k1", p.NamespaceKey())
}
