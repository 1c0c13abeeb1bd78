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

// Package db opens the RegistrationStore's backing *gorm.DB and brings
// its schema up to date. internal/store owns what tables look like;
// this package only owns how the connection is dialed.
package db

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/soliloque-go/voiced/internal/config"
	"github.com/soliloque-go/voiced/internal/store/migrations"
)

// connsPerCPU and maxIdleTime size the pool relative to the number of
// available cores, matching the pool internal/kv's and internal/pubsub's
// Redis backends use for the same deployment.
const (
	connsPerCPU = 10
	maxIdleTime = 10 * time.Minute
)

// MakeDB opens the database driver cfg selects, migrates it to the
// current RegistrationStore schema, and tunes its connection pool.
func MakeDB(cfg *config.Config) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	switch cfg.Database.Driver {
	case config.DatabaseDriverSQLite:
		slog.Info("opening sqlite database", "path", cfg.Database.Database)
		db, err = gorm.Open(sqlite.Open(cfg.Database.Database), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("db: opening sqlite: %w", err)
		}
	case config.DatabaseDriverPostgres:
		slog.Info("opening postgres database", "host", cfg.Database.Host, "database", cfg.Database.Database)
		db, err = gorm.Open(postgres.Open(postgresDSN(cfg)), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("db: opening postgres: %w", err)
		}
	default:
		return nil, fmt.Errorf("db: unsupported database driver %q", cfg.Database.Driver)
	}

	if cfg.Metrics.OTLPEndpoint != "" {
		if err := db.Use(otelgorm.NewPlugin()); err != nil {
			return nil, fmt.Errorf("db: tracing database: %w", err)
		}
	}

	if err := migrations.Migrate(db); err != nil {
		return nil, fmt.Errorf("db: migrating: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db: getting underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(runtime.GOMAXPROCS(0))
	sqlDB.SetMaxOpenConns(runtime.GOMAXPROCS(0) * connsPerCPU)
	sqlDB.SetConnMaxIdleTime(maxIdleTime)

	return db, nil
}

func postgresDSN(cfg *config.Config) string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.Username, cfg.Database.Password, cfg.Database.Database)
	if extra := strings.TrimSpace(cfg.Database.ExtraParameters); extra != "" {
		dsn = dsn + " " + extra
	}
	return dsn
}
