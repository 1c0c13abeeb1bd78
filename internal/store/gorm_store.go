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

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/soliloque-go/voiced/internal/store/models"
)

// callDeadline bounds every RegistrationStore call: a handler that
// blocks past this is treated as failed, per the core's "persistence
// calls bounded by a 5s deadline" rule.
const callDeadline = 5 * time.Second

// gormStore is the gorm-backed RegistrationStore. It works against
// either glebarez/sqlite or gorm.io/driver/postgres, whichever db/MakeDB
// opened.
type gormStore struct {
	db *gorm.DB
}

// New wraps an already-open *gorm.DB (with migrations already applied
// by internal/store/migrations) as a RegistrationStore.
func New(db *gorm.DB) RegistrationStore {
	return &gormStore{db: db}
}

func (s *gormStore) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, callDeadline)
}

func (s *gormStore) RegisterChannel(ctx context.Context, ch models.Channel) error {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()
	if err := s.db.WithContext(ctx).Create(&ch).Error; err != nil {
		return fmt.Errorf("store: register channel %d: %w", ch.ID, err)
	}
	return nil
}

func (s *gormStore) UnregisterChannel(ctx context.Context, serverID, channelID uint32) error {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("server_id = ? AND channel_id = ?", serverID, channelID).
			Delete(&models.PlayerChannelPrivilege{}).Error; err != nil {
			return fmt.Errorf("store: unregister channel %d: clearing privileges: %w", channelID, err)
		}
		if err := tx.Where("server_id = ? AND id = ?", serverID, channelID).
			Delete(&models.Channel{}).Error; err != nil {
			return fmt.Errorf("store: unregister channel %d: %w", channelID, err)
		}
		return nil
	})
}

func (s *gormStore) UpdateChannel(ctx context.Context, ch models.Channel) error {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()
	if err := s.db.WithContext(ctx).Model(&models.Channel{}).
		Where("server_id = ? AND id = ?", ch.ServerID, ch.ID).
		Updates(&ch).Error; err != nil {
		return fmt.Errorf("store: update channel %d: %w", ch.ID, err)
	}
	return nil
}

func (s *gormStore) RegisterPlayer(ctx context.Context, reg models.Registration) (models.Registration, error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()
	if err := s.db.WithContext(ctx).Create(&reg).Error; err != nil {
		return models.Registration{}, fmt.Errorf("store: register player %q: %w", reg.Name, err)
	}
	return reg, nil
}

func (s *gormStore) UnregisterPlayer(ctx context.Context, serverID, registrationID uint32) error {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("server_id = ? AND registration_id = ?", serverID, registrationID).
			Delete(&models.PlayerChannelPrivilege{}).Error; err != nil {
			return fmt.Errorf("store: unregister player %d: clearing privileges: %w", registrationID, err)
		}
		if err := tx.Where("server_id = ? AND id = ?", serverID, registrationID).
			Delete(&models.Registration{}).Error; err != nil {
			return fmt.Errorf("store: unregister player %d: %w", registrationID, err)
		}
		return nil
	})
}

func (s *gormStore) UpdatePlayer(ctx context.Context, reg models.Registration) error {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()
	if err := s.db.WithContext(ctx).Model(&models.Registration{}).
		Where("server_id = ? AND id = ?", reg.ServerID, reg.ID).
		Updates(&reg).Error; err != nil {
		return fmt.Errorf("store: update player %d: %w", reg.ID, err)
	}
	return nil
}

func (s *gormStore) SetPrivilege(ctx context.Context, priv models.PlayerChannelPrivilege) error {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()
	if err := s.db.WithContext(ctx).Save(&priv).Error; err != nil {
		return fmt.Errorf("store: set privilege (channel %d, registration %d): %w",
			priv.ChannelID, priv.RegistrationID, err)
	}
	return nil
}

func (s *gormStore) ClearPrivilege(ctx context.Context, serverID, channelID, registrationID uint32) error {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()
	if err := s.db.WithContext(ctx).
		Where("server_id = ? AND channel_id = ? AND registration_id = ?", serverID, channelID, registrationID).
		Delete(&models.PlayerChannelPrivilege{}).Error; err != nil {
		return fmt.Errorf("store: clear privilege (channel %d, registration %d): %w", channelID, registrationID, err)
	}
	return nil
}

func (s *gormStore) LoadAll(ctx context.Context, serverID uint32) (Snapshot, error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	var snap Snapshot
	if err := s.db.WithContext(ctx).Find(&snap.Servers, "id = ?", serverID).Error; err != nil {
		return Snapshot{}, fmt.Errorf("store: load servers: %w", err)
	}
	if err := s.db.WithContext(ctx).Find(&snap.Channels, "server_id = ?", serverID).Error; err != nil {
		return Snapshot{}, fmt.Errorf("store: load channels: %w", err)
	}
	if err := s.db.WithContext(ctx).Find(&snap.Regs, "server_id = ?", serverID).Error; err != nil {
		return Snapshot{}, fmt.Errorf("store: load registrations: %w", err)
	}
	if err := s.db.WithContext(ctx).Find(&snap.Privileges, "server_id = ?", serverID).Error; err != nil {
		return Snapshot{}, fmt.Errorf("store: load privileges: %w", err)
	}
	return snap, nil
}

func (s *gormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("store: getting underlying sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil && !errors.Is(err, gorm.ErrInvalidDB) {
		return fmt.Errorf("store: closing database: %w", err)
	}
	return nil
}
