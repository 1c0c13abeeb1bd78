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

// Package config defines the application's configuration shape, loaded
// through configulator from environment variables, flags, and/or a
// config file, and validated by Config.Validate before the server
// starts accepting traffic.
package config

// Config is the root configuration object.
type Config struct {
	LogLevel LogLevel `name:"log-level" description:"Logging level" default:"info"`

	// PasswordSalt is mixed into the pbkdf2 hash applied to registration
	// passwords at rest in internal/store; it is unrelated to the wire
	// protocol's cleartext credential exchange (spec Non-goals).
	PasswordSalt string `name:"password-salt" description:"Salt used when hashing registration passwords at rest"`

	Voice    Voice    `name:"voice"`
	Redis    Redis    `name:"redis"`
	Database Database `name:"database"`
	Metrics  Metrics  `name:"metrics"`
}

// Voice configures the UDP control-plane listener and the server's own
// domain defaults.
type Voice struct {
	Bind string `name:"bind" description:"Address to bind the UDP control socket to" default:"0.0.0.0"`
	Port int    `name:"port" description:"UDP port for the control protocol" default:"8767"`

	WelcomeMessage     string `name:"welcome-message" description:"Message sent to a player on successful login"`
	Password           string `name:"password" description:"Server-wide join password, empty disables it"`
	MaxUsers           int    `name:"max-users" description:"Maximum connected players, 0 for unlimited" default:"0"`
	DefaultChannelName string `name:"default-channel-name" description:"Name of the channel new players are placed into" default:"Lobby"`
	PingTimeoutSeconds int    `name:"ping-timeout-seconds" description:"Seconds without a PING before a session is reaped" default:"60"`
}

// Redis configures the optional shared-state backend for internal/kv and
// internal/pubsub, used for multi-instance deployments.
type Redis struct {
	Enabled  bool   `name:"enabled" description:"Use Redis instead of the in-process KV/pubsub backends"`
	Host     string `name:"host" description:"Redis host"`
	Port     int    `name:"port" description:"Redis port" default:"6379"`
	Password string `name:"password" description:"Redis password"`
}

// Database configures the RegistrationStore's backing SQL database.
type Database struct {
	Driver          DatabaseDriver `name:"driver" description:"Database driver" default:"sqlite"`
	Host            string         `name:"host" description:"Database host, unused for sqlite"`
	Port            int            `name:"port" description:"Database port, unused for sqlite"`
	Username        string         `name:"username" description:"Database username, unused for sqlite"`
	Password        string         `name:"password" description:"Database password, unused for sqlite"`
	Database        string         `name:"database" description:"Database name, or file path for sqlite" default:"voiced.sqlite3"`
	ExtraParameters string         `name:"extra-parameters" description:"Extra DSN parameters"`
}

// Metrics configures the Prometheus metrics server and optional OTLP
// trace export.
type Metrics struct {
	Enabled      bool   `name:"enabled" description:"Expose a Prometheus /metrics endpoint"`
	Bind         string `name:"bind" description:"Address to bind the metrics server to" default:"0.0.0.0"`
	Port         int    `name:"port" description:"Port for the metrics server" default:"9090"`
	OTLPEndpoint string `name:"otlp-endpoint" description:"OTLP gRPC collector endpoint; empty disables tracing"`
}
