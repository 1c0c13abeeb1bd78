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

package voiceserver

import (
	"net"
	"sync"

	"github.com/soliloque-go/voiced/internal/world"
)

// sessionTable tracks UNAUTHENTICATED players, keyed by remote address,
// before they have a private_id the live player table can be indexed by.
// Grounded on the teacher's RPTL/RPTK login handshake: a repeater gets a
// Redis-backed pending record ("RPTL-RECEIVED" / "CHALLENGE_SENT") before
// it is ever treated as connected; here the pending record is this table
// entry instead of a KV row, since it never needs to survive a restart.
type sessionTable struct {
	mu      sync.Mutex
	pending map[string]*world.Player
}

func newSessionTable() *sessionTable {
	return &sessionTable{pending: make(map[string]*world.Player)}
}

// start returns the pending session for addr, creating one if this is
// the first packet seen from it.
func (t *sessionTable) start(addr *net.UDPAddr) *world.Player {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := addr.String()
	if p, ok := t.pending[key]; ok {
		return p
	}
	p := world.NewPlayer(addr)
	t.pending[key] = p
	return p
}

// lookup returns the pending session for addr, if one exists.
func (t *sessionTable) lookup(addr *net.UDPAddr) *world.Player {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending[addr.String()]
}

// promote removes addr's pending entry once its player has been
// admitted into world.Server's live player table by Login.
func (t *sessionTable) promote(addr *net.UDPAddr) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pending, addr.String())
}
