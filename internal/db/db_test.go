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

package db_test

import (
	"path/filepath"
	"testing"

	"github.com/USA-RedDragon/configulator"
	"github.com/stretchr/testify/assert"

	"github.com/soliloque-go/voiced/internal/config"
	"github.com/soliloque-go/voiced/internal/db"
)

func defaultTestConfig(t *testing.T) config.Config {
	t.Helper()
	defConfig, err := configulator.New[config.Config]().Default()
	assert.NoError(t, err)
	defConfig.Database.Database = ""
	defConfig.Database.ExtraParameters = ""
	return defConfig
}

func TestMakeDBInMemoryDatabase(t *testing.T) {
	t.Parallel()
	cfg := defaultTestConfig(t)

	database, err := db.MakeDB(&cfg)
	assert.NoError(t, err)
	assert.NotNil(t, database)
}

func TestMakeDBReopensExistingDatabase(t *testing.T) {
	t.Parallel()

	// A file-backed sqlite database so MakeDB can be called twice
	// against the same schema, exercising the migration's idempotency.
	cfg := defaultTestConfig(t)
	cfg.Database.Database = filepath.Join(t.TempDir(), "test.db")

	db1, err := db.MakeDB(&cfg)
	assert.NoError(t, err)
	assert.NotNil(t, db1)
	sqlDB1, err := db1.DB()
	assert.NoError(t, err)
	assert.NoError(t, sqlDB1.Close())

	db2, err := db.MakeDB(&cfg)
	assert.NoError(t, err)
	assert.NotNil(t, db2)
}

func TestMakeDBUnsupportedDriver(t *testing.T) {
	t.Parallel()
	cfg := defaultTestConfig(t)
	cfg.Database.Driver = config.DatabaseDriver("mysql")

	_, err := db.MakeDB(&cfg)
	assert.Error(t, err)
}
