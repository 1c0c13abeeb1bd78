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

// Package migrations holds the versioned gormigrate steps for the
// RegistrationStore schema.
package migrations

import (
	"fmt"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/soliloque-go/voiced/internal/store/models"
)

// Migrate brings db up to the latest RegistrationStore schema.
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		initialSchema(),
	})
	if err := m.Migrate(); err != nil {
		return fmt.Errorf("store: running migrations: %w", err)
	}
	return nil
}

func initialSchema() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "202607300100",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(
				&models.Server{},
				&models.Channel{},
				&models.Registration{},
				&models.PlayerChannelPrivilege{},
			); err != nil {
				return fmt.Errorf("could not migrate schema: %w", err)
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			if err := tx.Migrator().DropTable(
				&models.PlayerChannelPrivilege{},
				&models.Registration{},
				&models.Channel{},
				&models.Server{},
			); err != nil {
				return fmt.Errorf("could not drop tables: %w", err)
			}
			return nil
		},
	}
}
