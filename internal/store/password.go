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

package store

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"

	"golang.org/x/crypto/pbkdf2"
)

const (
	hashIterations = 4096
	hashKeyLen     = 32
)

// HashPassword derives the at-rest form of a registration password. The
// wire protocol itself still carries the credential in cleartext; this
// is only how it's compared once it reaches the store.
func HashPassword(salt, password string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), hashIterations, hashKeyLen, sha256.New)
	return base64.StdEncoding.EncodeToString(key)
}

// ComparePassword reports whether password hashes to hash under salt,
// using a constant-time comparison of the derived keys.
func ComparePassword(salt, password, hash string) bool {
	return subtle.ConstantTimeCompare([]byte(HashPassword(salt, password)), []byte(hash)) == 1
}
