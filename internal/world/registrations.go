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

// Registration returns the cached registration with the given id, if any.
func (s *Server) Registration(id RegistrationID) (*Registration, bool) {
	return s.registrations.Load(id)
}

// RegistrationByName finds a cached registration by its login name. O(n)
// over registrations; consulted once per LOGIN, never in a hot path.
func (s *Server) RegistrationByName(name string) (*Registration, bool) {
	var found *Registration
	s.registrations.Range(func(_ RegistrationID, r *Registration) bool {
		if r.Name == name {
			found = r
			return false
		}
		return true
	})
	return found, found != nil
}

// AddRegistration caches a registration rehydrated from
// RegistrationStore.LoadAll, either at startup or by the periodic
// resync job in cmd/root.go.
//
// Caller must hold s.Lock() for the duration of the call.
func (s *Server) AddRegistration(r *Registration) {
	s.registrations.Store(r.ID, r)
}

// RemoveRegistration drops a cached registration.
//
// Caller must hold s.Lock() for the duration of the call.
func (s *Server) RemoveRegistration(id RegistrationID) {
	s.registrations.Delete(id)
}

// EachRegistration calls fn for every cached registration.
func (s *Server) EachRegistration(fn func(*Registration) bool) {
	s.registrations.Range(func(_ RegistrationID, r *Registration) bool {
		return fn(r)
	})
}
