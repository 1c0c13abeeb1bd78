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

// Channel is the persisted row backing a non-UNREGISTERED channel.
// ParentID of 0 means a root channel. Flags, MaxUsers and SortOrder
// mirror world.Channel's fields one-for-one; the live arena is always
// the source of truth while the server is running, this row only
// matters for what's restored on the next boot.
type Channel struct {
	ID          uint32 `json:"id" gorm:"primaryKey"`
	ServerID    uint32 `json:"server_id" gorm:"index"`
	ParentID    uint32 `json:"parent_id"`
	Name        string `json:"name"`
	Topic       string `json:"topic"`
	Description string `json:"description"`
	Flags       uint16 `json:"flags"`
	MaxUsers    int    `json:"max_users"`
	SortOrder   int    `json:"sort_order"`
	Password    string `json:"-"`
}
