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

package config_test

import (
	"errors"
	"testing"

	"github.com/soliloque-go/voiced/internal/config"
)

func makeValidConfig() config.Config {
	return config.Config{
		LogLevel:     config.LogLevelInfo,
		PasswordSalt: "testsalt",
		Voice: config.Voice{
			Bind:               "0.0.0.0",
			Port:               8767,
			DefaultChannelName: "Lobby",
			PingTimeoutSeconds: 60,
		},
		Database: config.Database{
			Driver:   config.DatabaseDriverSQLite,
			Database: "test.db",
		},
	}
}

func TestRedisValidateDisabled(t *testing.T) {
	t.Parallel()
	r := config.Redis{Enabled: false}
	if err := r.Validate(); err != nil {
		t.Errorf("Expected nil error for disabled Redis, got %v", err)
	}
}

func TestRedisValidateEmptyHost(t *testing.T) {
	t.Parallel()
	r := config.Redis{Enabled: true, Host: "", Port: 6379}
	if !errors.Is(r.Validate(), config.ErrInvalidRedisHost) {
		t.Errorf("Expected ErrInvalidRedisHost, got %v", r.Validate())
	}
}

func TestRedisValidateInvalidPort(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		port int
	}{
		{"zero", 0},
		{"negative", -1},
		{"too high", 70000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := config.Redis{Enabled: true, Host: "localhost", Port: tt.port}
			if !errors.Is(r.Validate(), config.ErrInvalidRedisPort) {
				t.Errorf("Expected ErrInvalidRedisPort for port %d, got %v", tt.port, r.Validate())
			}
		})
	}
}

func TestRedisValidateValid(t *testing.T) {
	t.Parallel()
	r := config.Redis{Enabled: true, Host: "localhost", Port: 6379}
	if err := r.Validate(); err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
}

func TestDatabaseValidateInvalidDriver(t *testing.T) {
	t.Parallel()
	d := config.Database{Driver: "invalid", Database: "test"}
	if !errors.Is(d.Validate(), config.ErrInvalidDatabaseDriver) {
		t.Errorf("Expected ErrInvalidDatabaseDriver, got %v", d.Validate())
	}
}

func TestDatabaseValidateSQLiteNoHost(t *testing.T) {
	t.Parallel()
	d := config.Database{Driver: config.DatabaseDriverSQLite, Database: "test.db"}
	if err := d.Validate(); err != nil {
		t.Errorf("Expected nil error for SQLite without host, got %v", err)
	}
}

func TestDatabaseValidatePostgresEmptyHost(t *testing.T) {
	t.Parallel()
	d := config.Database{Driver: config.DatabaseDriverPostgres, Host: "", Port: 5432, Database: "test"}
	if !errors.Is(d.Validate(), config.ErrInvalidDatabaseHost) {
		t.Errorf("Expected ErrInvalidDatabaseHost, got %v", d.Validate())
	}
}

func TestDatabaseValidatePostgresInvalidPort(t *testing.T) {
	t.Parallel()
	d := config.Database{Driver: config.DatabaseDriverPostgres, Host: "localhost", Port: 0, Database: "test"}
	if !errors.Is(d.Validate(), config.ErrInvalidDatabasePort) {
		t.Errorf("Expected ErrInvalidDatabasePort, got %v", d.Validate())
	}
}

func TestDatabaseValidateEmptyName(t *testing.T) {
	t.Parallel()
	d := config.Database{Driver: config.DatabaseDriverSQLite, Database: ""}
	if !errors.Is(d.Validate(), config.ErrInvalidDatabaseName) {
		t.Errorf("Expected ErrInvalidDatabaseName, got %v", d.Validate())
	}
}

func TestDatabaseValidatePostgresValid(t *testing.T) {
	t.Parallel()
	d := config.Database{Driver: config.DatabaseDriverPostgres, Host: "localhost", Port: 5432, Database: "test"}
	if err := d.Validate(); err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
}

func TestVoiceValidateEmptyBind(t *testing.T) {
	t.Parallel()
	v := config.Voice{Bind: "", Port: 8767, DefaultChannelName: "Lobby", PingTimeoutSeconds: 60}
	if !errors.Is(v.Validate(), config.ErrInvalidVoiceBind) {
		t.Errorf("Expected ErrInvalidVoiceBind, got %v", v.Validate())
	}
}

func TestVoiceValidateInvalidPort(t *testing.T) {
	t.Parallel()
	v := config.Voice{Bind: "0.0.0.0", Port: 0, DefaultChannelName: "Lobby", PingTimeoutSeconds: 60}
	if !errors.Is(v.Validate(), config.ErrInvalidVoicePort) {
		t.Errorf("Expected ErrInvalidVoicePort, got %v", v.Validate())
	}
}

func TestVoiceValidateEmptyDefaultChannelName(t *testing.T) {
	t.Parallel()
	v := config.Voice{Bind: "0.0.0.0", Port: 8767, DefaultChannelName: "", PingTimeoutSeconds: 60}
	if !errors.Is(v.Validate(), config.ErrInvalidDefaultChannelName) {
		t.Errorf("Expected ErrInvalidDefaultChannelName, got %v", v.Validate())
	}
}

func TestVoiceValidateNonPositivePingTimeout(t *testing.T) {
	t.Parallel()
	v := config.Voice{Bind: "0.0.0.0", Port: 8767, DefaultChannelName: "Lobby", PingTimeoutSeconds: 0}
	if !errors.Is(v.Validate(), config.ErrInvalidPingTimeout) {
		t.Errorf("Expected ErrInvalidPingTimeout, got %v", v.Validate())
	}
}

func TestVoiceValidateValid(t *testing.T) {
	t.Parallel()
	v := config.Voice{Bind: "0.0.0.0", Port: 8767, DefaultChannelName: "Lobby", PingTimeoutSeconds: 60}
	if err := v.Validate(); err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
}

func TestMetricsValidateDisabled(t *testing.T) {
	t.Parallel()
	m := config.Metrics{Enabled: false}
	if err := m.Validate(); err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
}

func TestMetricsValidateValid(t *testing.T) {
	t.Parallel()
	m := config.Metrics{Enabled: true, Bind: "0.0.0.0", Port: 9090}
	if err := m.Validate(); err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
}

func TestConfigValidateInvalidLogLevel(t *testing.T) {
	t.Parallel()
	c := makeValidConfig()
	c.LogLevel = "invalid"
	if !errors.Is(c.Validate(), config.ErrInvalidLogLevel) {
		t.Errorf("Expected ErrInvalidLogLevel, got %v", c.Validate())
	}
}

func TestConfigValidateEmptyPasswordSalt(t *testing.T) {
	t.Parallel()
	c := makeValidConfig()
	c.PasswordSalt = ""
	if !errors.Is(c.Validate(), config.ErrPasswordSaltRequired) {
		t.Errorf("Expected ErrPasswordSaltRequired, got %v", c.Validate())
	}
}

func TestConfigValidateValid(t *testing.T) {
	t.Parallel()
	c := makeValidConfig()
	if err := c.Validate(); err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
}

func TestConfigValidateAllLogLevels(t *testing.T) {
	t.Parallel()
	levels := []config.LogLevel{config.LogLevelDebug, config.LogLevelInfo, config.LogLevelWarn, config.LogLevelError}
	for _, level := range levels {
		t.Run(string(level), func(t *testing.T) {
			t.Parallel()
			c := makeValidConfig()
			c.LogLevel = level
			if err := c.Validate(); err != nil {
				t.Errorf("Expected nil error for log level %s, got %v", level, err)
			}
		})
	}
}
