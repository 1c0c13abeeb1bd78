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

package models

// RawPacket is the wire-envelope internal/broadcast publishes to
// internal/pubsub: the undecoded frame bytes plus where they came from,
// so the relay goroutine on the other side can re-parse, personalise,
// and hand off to internal/reliability without a second socket read.
//
//go:generate msgp
type RawPacket struct {
	Data       []byte `msg:"data"`
	RemoteIP   string `msg:"remote_ip"`
	RemotePort int    `msg:"remote_port"`
}
