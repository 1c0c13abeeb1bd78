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
	"fmt"
	"net"
)

// udpSocket is the production Socket, backed by a real UDP connection.
// Grounded on the teacher's mmdvm.Server.Start: ListenUDP, then size the
// read/write buffers up for a busy server.
type udpSocket struct {
	conn *net.UDPConn
}

const socketBufferSize = 1 << 20 // 1MB, matches the teacher's bufferSize

// Listen opens a UDP socket on bind:port as the production Socket.
func Listen(bind string, port int) (Socket, error) {
	addr := &net.UDPAddr{IP: net.ParseIP(bind), Port: port}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("voiceserver: opening UDP socket: %w", err)
	}
	if err := conn.SetReadBuffer(socketBufferSize); err != nil {
		return nil, fmt.Errorf("voiceserver: setting read buffer: %w", err)
	}
	if err := conn.SetWriteBuffer(socketBufferSize); err != nil {
		return nil, fmt.Errorf("voiceserver: setting write buffer: %w", err)
	}
	return &udpSocket{conn: conn}, nil
}

func (u *udpSocket) RecvFrom(buf []byte) (int, *net.UDPAddr, error) {
	return u.conn.ReadFromUDP(buf)
}

func (u *udpSocket) SendTo(addr net.Addr, data []byte) error {
	udpAddr, ok := addr.(*net.UDPAddr)
	if !ok {
		return fmt.Errorf("voiceserver: SendTo expects a *net.UDPAddr, got %T", addr)
	}
	_, err := u.conn.WriteToUDP(data, udpAddr)
	return err
}

func (u *udpSocket) Close() error {
	return u.conn.Close()
}
