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

// Package store persists the subset of the domain model that must
// survive a restart: registered channels, registrations, and the
// channel privileges bound to them. Connected players, sessions, and
// unregistered channels live only in internal/world's arenas and are
// never written here.
package store

import (
	"context"

	"github.com/soliloque-go/voiced/internal/store/models"
)

// Snapshot is everything RegistrationStore.LoadAll hands back so a
// freshly started server can rehydrate internal/world before it opens
// its socket.
type Snapshot struct {
	Servers    []models.Server
	Channels   []models.Channel
	Regs       []models.Registration
	Privileges []models.PlayerChannelPrivilege
}

// RegistrationStore is the persistence boundary internal/voiceserver's
// handlers call into after a domain mutation succeeds. Every method is
// synchronous from the caller's perspective; an implementation is free
// to batch internally. A non-nil error means the caller must roll back
// the in-memory mutation it just made and treat the command as failed.
type RegistrationStore interface {
	RegisterChannel(ctx context.Context, ch models.Channel) error
	UnregisterChannel(ctx context.Context, serverID, channelID uint32) error
	UpdateChannel(ctx context.Context, ch models.Channel) error

	RegisterPlayer(ctx context.Context, reg models.Registration) (models.Registration, error)
	UnregisterPlayer(ctx context.Context, serverID, registrationID uint32) error
	UpdatePlayer(ctx context.Context, reg models.Registration) error

	SetPrivilege(ctx context.Context, priv models.PlayerChannelPrivilege) error
	ClearPrivilege(ctx context.Context, serverID, channelID, registrationID uint32) error

	LoadAll(ctx context.Context, serverID uint32) (Snapshot, error)

	Close() error
}
