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

package world

// Registration is a persisted identity, loaded from internal/store and
// cached here for the lifetime of the server process. PasswordHash is
// named for the at-rest hashing internal/store applies; the wire
// protocol itself carries a cleartext credential compared against it.
type Registration struct {
	ID           RegistrationID
	ServerID     uint32
	Name         string
	PasswordHash string
}
