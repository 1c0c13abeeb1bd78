// SPDX-License-Identifier: AGPL-3.0-or-later
// voiced - a group-voice control-plane server
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

package privilege_test

import (
	"testing"

	"github.com/soliloque-go/voiced/internal/privilege"
	"github.com/soliloque-go/voiced/internal/voiceconst"
	"github.com/soliloque-go/voiced/internal/world"
	"github.com/stretchr/testify/assert"
)

func newChannelWithPrivilege(playerID uint32, bits voiceconst.ChannelPrivilege) *world.Channel {
	srv := world.NewServer(world.Config{})
	c, err := srv.CreateDefaultChannel("Lobby")
	if err != nil {
		panic(err)
	}
	if bits != 0 {
		c.Privileges[world.PlayerKey(playerID)] = bits
	}
	return c
}

func TestMayServerAdminAllowsEverything(t *testing.T) {
	t.Parallel()
	eng := privilege.New()
	admin := &world.Player{PublicID: 1, GlobalFlags: voiceconst.FlagServerAdmin}
	assert.True(t, eng.May(admin, world.OpDeleteRegistration, nil))
	assert.True(t, eng.May(admin, world.OpGrantChannelAdmin, newChannelWithPrivilege(1, 0)))
}

func TestMayServerScopedRequiresServerAdmin(t *testing.T) {
	t.Parallel()
	eng := privilege.New()
	plain := &world.Player{PublicID: 2}
	assert.False(t, eng.May(plain, world.OpKickServer, nil))
}

func TestMayAllowRegGatedByOwnFlag(t *testing.T) {
	t.Parallel()
	eng := privilege.New()
	p := &world.Player{PublicID: 3, GlobalFlags: voiceconst.FlagAllowReg}
	assert.True(t, eng.May(p, world.OpGrantAllowReg, nil))

	noFlag := &world.Player{PublicID: 4}
	assert.False(t, eng.May(noFlag, world.OpGrantAllowReg, nil))
}

func TestMayChannelAdminImpliesSubOps(t *testing.T) {
	t.Parallel()
	eng := privilege.New()
	p := &world.Player{PublicID: 5}
	ch := newChannelWithPrivilege(5, voiceconst.ChanPrivAdmin)
	assert.True(t, eng.May(p, world.OpGrantVoice, ch))
	assert.True(t, eng.May(p, world.OpKickChannel, ch))
}

func TestMayOperatorImpliesKickAndEdit(t *testing.T) {
	t.Parallel()
	eng := privilege.New()
	p := &world.Player{PublicID: 6}
	ch := newChannelWithPrivilege(6, voiceconst.ChanPrivOperator)
	assert.True(t, eng.May(p, world.OpKickChannel, ch))
	assert.True(t, eng.May(p, world.OpEditChannelInfo, ch))
	assert.False(t, eng.May(p, world.OpGrantChannelAdmin, ch))
}

func TestMayVoiceIsOnlySpeechPermission(t *testing.T) {
	t.Parallel()
	eng := privilege.New()
	p := &world.Player{PublicID: 7}
	ch := newChannelWithPrivilege(7, voiceconst.ChanPrivVoice)
	assert.True(t, eng.May(p, world.OpGrantVoice, ch))
	assert.False(t, eng.May(p, world.OpKickChannel, ch))
}

func TestMayChannelScopedWithNilContextDenies(t *testing.T) {
	t.Parallel()
	eng := privilege.New()
	p := &world.Player{PublicID: 8}
	assert.False(t, eng.May(p, world.OpGrantVoice, nil))
}

func TestMaySelfOpsAlwaysAllowed(t *testing.T) {
	t.Parallel()
	eng := privilege.New()
	p := &world.Player{PublicID: 9}
	assert.True(t, eng.May(p, world.OpChangeOwnNickname, nil))
	assert.True(t, eng.May(p, world.OpChangeOwnAttributes, nil))
}

func TestMayDefaultDeny(t *testing.T) {
	t.Parallel()
	eng := privilege.New()
	p := &world.Player{PublicID: 10}
	ch := newChannelWithPrivilege(10, 0)
	assert.False(t, eng.May(p, world.OpEditChannelInfo, ch))
}
