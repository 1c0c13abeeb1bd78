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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soliloque-go/voiced/internal/db"
	"github.com/soliloque-go/voiced/internal/kv"
	"github.com/soliloque-go/voiced/internal/store"
	"github.com/soliloque-go/voiced/internal/store/models"
	"github.com/soliloque-go/voiced/internal/testutils"
)

// TestRegistrationStoreAcrossBackends runs the same RegistrationStore
// exercise against every backend a deployment can choose: in-memory
// SQLite for CI's default path, and a real Postgres+Redis pair when
// Docker is available, matching the driver switch MakeDB implements.
func TestRegistrationStoreAcrossBackends(t *testing.T) {
	for _, backend := range []testutils.Backend{testutils.SQLiteMemoryBackend(), testutils.PostgresRedisBackend()} {
		t.Run(backend.Name, func(t *testing.T) {
			cfg := defaultTestConfig(t)
			backend.Setup(t, &cfg)

			database, err := db.MakeDB(&cfg)
			require.NoError(t, err)
			sqlDB, err := database.DB()
			require.NoError(t, err)
			t.Cleanup(func() { _ = sqlDB.Close() })

			regStore := store.New(database)
			ctx := context.Background()

			assert.NoError(t, regStore.RegisterChannel(ctx, models.Channel{ID: 1, ServerID: 1, Name: "Lobby"}))
			snap, err := regStore.LoadAll(ctx, 1)
			require.NoError(t, err)
			assert.Len(t, snap.Channels, 1)
			assert.Equal(t, "Lobby", snap.Channels[0].Name)

			kvStore, err := kv.MakeKV(ctx, &cfg)
			require.NoError(t, err)
			t.Cleanup(func() { _ = kvStore.Close() })

			require.NoError(t, kvStore.Set(ctx, "backend-test-key", []byte("ok")))
			got, err := kvStore.Get(ctx, "backend-test-key")
			require.NoError(t, err)
			assert.Equal(t, []byte("ok"), got)
		})
	}
}
