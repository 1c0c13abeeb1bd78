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

// Registration is a persisted identity a player can log into. The wire
// protocol still exchanges the credential in cleartext; PasswordHash is
// only how internal/store compares it at rest.
type Registration struct {
	ID           uint32 `json:"id" gorm:"primaryKey"`
	ServerID     uint32 `json:"server_id" gorm:"index"`
	Name         string `json:"name" gorm:"index"`
	PasswordHash string `json:"-"`
}

// PlayerChannelPrivilege is the persisted row for a channel-scoped
// right bound to a Registration (never to a live Player — session
// privileges bound to a connected player don't outlive the session).
type PlayerChannelPrivilege struct {
	ServerID       uint32 `json:"server_id" gorm:"primaryKey"`
	ChannelID      uint32 `json:"channel_id" gorm:"primaryKey"`
	RegistrationID uint32 `json:"registration_id" gorm:"primaryKey"`
	Privileges     uint8  `json:"privileges_bits"`
}
