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

package store_test

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/soliloque-go/voiced/internal/store"
	"github.com/soliloque-go/voiced/internal/store/migrations"
	"github.com/soliloque-go/voiced/internal/store/models"
)

func makeTestStore(t *testing.T) store.RegistrationStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(""), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, migrations.Migrate(db))

	s := store.New(db)
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func TestRegisterAndLoadChannel(t *testing.T) {
	t.Parallel()
	s := makeTestStore(t)
	ctx := context.Background()

	err := s.RegisterChannel(ctx, models.Channel{ID: 1, ServerID: 1, Name: "Lobby"})
	assert.NoError(t, err)

	snap, err := s.LoadAll(ctx, 1)
	assert.NoError(t, err)
	assert.Len(t, snap.Channels, 1)
	assert.Equal(t, "Lobby", snap.Channels[0].Name)
}

func TestUpdateChannel(t *testing.T) {
	t.Parallel()
	s := makeTestStore(t)
	ctx := context.Background()

	assert.NoError(t, s.RegisterChannel(ctx, models.Channel{ID: 1, ServerID: 1, Name: "Lobby", MaxUsers: 10}))
	assert.NoError(t, s.UpdateChannel(ctx, models.Channel{ID: 1, ServerID: 1, Name: "Lobby", MaxUsers: 20}))

	snap, err := s.LoadAll(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, 20, snap.Channels[0].MaxUsers)
}

func TestUnregisterChannelAlsoClearsPrivileges(t *testing.T) {
	t.Parallel()
	s := makeTestStore(t)
	ctx := context.Background()

	assert.NoError(t, s.RegisterChannel(ctx, models.Channel{ID: 1, ServerID: 1, Name: "Lobby"}))
	assert.NoError(t, s.SetPrivilege(ctx, models.PlayerChannelPrivilege{ServerID: 1, ChannelID: 1, RegistrationID: 5, Privileges: 1}))

	assert.NoError(t, s.UnregisterChannel(ctx, 1, 1))

	snap, err := s.LoadAll(ctx, 1)
	assert.NoError(t, err)
	assert.Empty(t, snap.Channels)
	assert.Empty(t, snap.Privileges)
}

func TestRegisterPlayerAssignsID(t *testing.T) {
	t.Parallel()
	s := makeTestStore(t)
	ctx := context.Background()

	reg, err := s.RegisterPlayer(ctx, models.Registration{ServerID: 1, Name: "alice", PasswordHash: "hashed"})
	assert.NoError(t, err)
	assert.NotZero(t, reg.ID)

	snap, err := s.LoadAll(ctx, 1)
	assert.NoError(t, err)
	assert.Len(t, snap.Regs, 1)
	assert.Equal(t, "alice", snap.Regs[0].Name)
}

func TestUnregisterPlayerAlsoClearsPrivileges(t *testing.T) {
	t.Parallel()
	s := makeTestStore(t)
	ctx := context.Background()

	reg, err := s.RegisterPlayer(ctx, models.Registration{ServerID: 1, Name: "bob"})
	assert.NoError(t, err)
	assert.NoError(t, s.SetPrivilege(ctx, models.PlayerChannelPrivilege{ServerID: 1, ChannelID: 1, RegistrationID: reg.ID, Privileges: 2}))

	assert.NoError(t, s.UnregisterPlayer(ctx, 1, reg.ID))

	snap, err := s.LoadAll(ctx, 1)
	assert.NoError(t, err)
	assert.Empty(t, snap.Regs)
	assert.Empty(t, snap.Privileges)
}

func TestSetPrivilegeOverwritesExisting(t *testing.T) {
	t.Parallel()
	s := makeTestStore(t)
	ctx := context.Background()

	priv := models.PlayerChannelPrivilege{ServerID: 1, ChannelID: 2, RegistrationID: 3, Privileges: 1}
	assert.NoError(t, s.SetPrivilege(ctx, priv))
	priv.Privileges = 7
	assert.NoError(t, s.SetPrivilege(ctx, priv))

	snap, err := s.LoadAll(ctx, 1)
	assert.NoError(t, err)
	assert.Len(t, snap.Privileges, 1)
	assert.Equal(t, uint8(7), snap.Privileges[0].Privileges)
}

func TestClearPrivilege(t *testing.T) {
	t.Parallel()
	s := makeTestStore(t)
	ctx := context.Background()

	assert.NoError(t, s.SetPrivilege(ctx, models.PlayerChannelPrivilege{ServerID: 1, ChannelID: 2, RegistrationID: 3, Privileges: 1}))
	assert.NoError(t, s.ClearPrivilege(ctx, 1, 2, 3))

	snap, err := s.LoadAll(ctx, 1)
	assert.NoError(t, err)
	assert.Empty(t, snap.Privileges)
}

func TestLoadAllScopesByServer(t *testing.T) {
	t.Parallel()
	s := makeTestStore(t)
	ctx := context.Background()

	assert.NoError(t, s.RegisterChannel(ctx, models.Channel{ID: 1, ServerID: 1, Name: "server-one-lobby"}))
	assert.NoError(t, s.RegisterChannel(ctx, models.Channel{ID: 2, ServerID: 2, Name: "server-two-lobby"}))

	snap, err := s.LoadAll(ctx, 1)
	assert.NoError(t, err)
	assert.Len(t, snap.Channels, 1)
	assert.Equal(t, "server-one-lobby", snap.Channels[0].Name)
}
