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

// Server is the persisted row for the server-wide configuration a
// deployment starts from. Unlike world.Server (the live singleton),
// this record only exists so the UDP port and join policy survive a
// restart; registered channels have rows of their own, and connected
// players are never persisted.
type Server struct {
	ID             uint32 `json:"id" gorm:"primaryKey"`
	UDPPort        int    `json:"udp_port"`
	Name           string `json:"name"`
	WelcomeMessage string `json:"welcome_message"`
	Password       string `json:"-"`
	MaxUsers       int    `json:"max_users"`
}
