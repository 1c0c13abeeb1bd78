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

package wire

import (
	"fmt"

	"github.com/soliloque-go/voiced/internal/voiceconst"
)

// Header field offsets within the fixed 24-byte control header.
const (
	OffsetClass       = 0
	OffsetCommand     = 2
	OffsetPrivateID   = 4
	OffsetPublicID    = 8
	OffsetCounter     = 12
	OffsetProtoVer    = 16
	OffsetCRC         = 20
)

// MaxDatagramSize is the largest control datagram the framer accepts;
// anything larger is rejected rather than fragmented.
const MaxDatagramSize = 512

// Frame is a parsed control-packet header plus its payload slice.
type Frame struct {
	Class     voiceconst.PacketClass
	Command   voiceconst.Command
	PrivateID uint32
	PublicID  uint32
	Counter   uint32
	ProtoVer  uint32 // reserved, always 0 on the wire
	Payload   []byte
}

// ParseFrame validates and decodes a received datagram. It rejects
// packets shorter than the header, with an unrecognized class, with a
// bad CRC, or larger than MaxDatagramSize.
func ParseFrame(data []byte) (*Frame, error) {
	if len(data) > MaxDatagramSize {
		return nil, fmt.Errorf("wire: datagram of %d bytes exceeds max %d", len(data), MaxDatagramSize)
	}
	if len(data) < voiceconst.HeaderSize {
		return nil, fmt.Errorf("%w: header needs %d bytes, got %d", ErrShortBuffer, voiceconst.HeaderSize, len(data))
	}

	ok, err := VerifyCRC(data, OffsetCRC)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("wire: CRC mismatch")
	}

	r := NewReader(data)
	class, _ := r.U16()
	cmd, _ := r.U16()
	privateID, _ := r.U32()
	publicID, _ := r.U32()
	counter, _ := r.U32()
	protoVer, _ := r.U32()
	r.Skip(4) // CRC field, already verified

	f := &Frame{
		Class:     voiceconst.PacketClass(class),
		Command:   voiceconst.Command(cmd),
		PrivateID: privateID,
		PublicID:  publicID,
		Counter:   counter,
		ProtoVer:  protoVer,
		Payload:   data[voiceconst.HeaderSize:],
	}

	switch f.Class {
	case voiceconst.ClassControl, voiceconst.ClassAck:
	default:
		return nil, fmt.Errorf("wire: unrecognized packet class %s", f.Class)
	}

	return f, nil
}

// Encode serialises the frame to a fresh buffer with the CRC spliced in.
func (f *Frame) Encode() []byte {
	w := NewWriter(voiceconst.HeaderSize + len(f.Payload))
	w.U16(uint16(f.Class))
	w.U16(uint16(f.Command))
	w.U32(f.PrivateID)
	w.U32(f.PublicID)
	w.U32(f.Counter)
	w.U32(f.ProtoVer)
	w.Zero(4) // CRC, spliced below
	w.Raw(f.Payload)

	buf := w.Bytes()
	_ = SpliceCRC(buf, OffsetCRC)
	return buf
}

// RewriteRecipient overwrites the per-recipient header words (private_id,
// public_id, counter) in an already-encoded buffer and resplices the CRC.
// This is the broadcast engine's personalise step: a template is built
// once with these three words and the CRC left zero, then this
// function stamps in each recipient's values before send.
func RewriteRecipient(buf []byte, privateID, publicID, counter uint32) error {
	if len(buf) < voiceconst.HeaderSize {
		return fmt.Errorf("%w: frame too short to rewrite", ErrShortBuffer)
	}
	putU32(buf, OffsetPrivateID, privateID)
	putU32(buf, OffsetPublicID, publicID)
	putU32(buf, OffsetCounter, counter)
	return SpliceCRC(buf, OffsetCRC)
}

func putU32(buf []byte, offset int, v uint32) {
	buf[offset] = byte(v)
	buf[offset+1] = byte(v >> 8)
	buf[offset+2] = byte(v >> 16)
	buf[offset+3] = byte(v >> 24)
}
