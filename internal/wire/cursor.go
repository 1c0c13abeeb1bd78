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

// Package wire implements the little-endian byte codec, the 24-byte
// control header, and the per-command packet layouts.
package wire

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/soliloque-go/voiced/internal/voiceconst"
)

// ErrShortBuffer means a decode was attempted against fewer bytes than
// the format requires.
var ErrShortBuffer = fmt.Errorf("wire: buffer too short")

// Reader is a byte-cursor over a fixed buffer, advancing as fields are
// consumed. All multi-byte integers are little-endian on the wire.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for sequential decoding.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

func (r *Reader) need(n int) error {
	if r.Remaining() < n {
		return fmt.Errorf("%w: need %d, have %d at offset %d", ErrShortBuffer, n, r.Remaining(), r.pos)
	}
	return nil
}

// Skip advances the cursor n bytes without reading them.
func (r *Reader) Skip(n int) {
	r.pos += n
}

// U16 reads a little-endian uint16.
func (r *Reader) U16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

// U32 reads a little-endian uint32.
func (r *Reader) U32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

// Byte reads a single byte.
func (r *Reader) Byte() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

// Raw reads n raw bytes.
func (r *Reader) Raw(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	v := r.buf[r.pos : r.pos+n]
	r.pos += n
	return v, nil
}

// String reads a length-prefixed field: one length byte followed by a
// fixed voiceconst.MaxStringFieldLen bytes of character data, of which
// only the first `length` bytes are significant.
func (r *Reader) String() (string, error) {
	n, err := r.Byte()
	if err != nil {
		return "", err
	}
	field, err := r.Raw(voiceconst.MaxStringFieldLen)
	if err != nil {
		return "", err
	}
	if int(n) > len(field) {
		n = byte(len(field))
	}
	return string(field[:n]), nil
}

// Writer is a byte-cursor over a growable buffer for sequential encoding.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer that pre-allocates size bytes.
func NewWriter(size int) *Writer {
	return &Writer{buf: make([]byte, 0, size)}
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// U16 appends a little-endian uint16.
func (w *Writer) U16(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

// U32 appends a little-endian uint32.
func (w *Writer) U32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

// Byte appends a single byte.
func (w *Writer) Byte(v byte) {
	w.buf = append(w.buf, v)
}

// Raw appends raw bytes verbatim.
func (w *Writer) Raw(b []byte) {
	w.buf = append(w.buf, b...)
}

// Zero appends n zero bytes, used for fields filled in by a later pass
// (the CRC field, or per-recipient header words in a broadcast template).
func (w *Writer) Zero(n int) {
	for i := 0; i < n; i++ {
		w.buf = append(w.buf, 0)
	}
}

// String appends a length-prefixed field: one length byte followed by
// voiceconst.MaxStringFieldLen bytes, zero-padded, truncating s if needed.
func (w *Writer) String(s string) {
	if len(s) > voiceconst.MaxStringFieldLen {
		s = s[:voiceconst.MaxStringFieldLen]
	}
	w.Byte(byte(len(s)))
	field := make([]byte, voiceconst.MaxStringFieldLen)
	copy(field, s)
	w.buf = append(w.buf, field...)
}

// crcTable uses the IEEE polynomial, matching the reference client's CRC.
var crcTable = crc32.MakeTable(crc32.IEEE)

// SpliceCRC computes the CRC-32 of data with the 4 bytes at crcOffset
// zeroed, then writes the result (little-endian) back into those 4
// bytes in place.
func SpliceCRC(data []byte, crcOffset int) error {
	if crcOffset < 0 || crcOffset+4 > len(data) {
		return fmt.Errorf("%w: crc offset %d out of range for %d-byte packet", ErrShortBuffer, crcOffset, len(data))
	}
	saved := [4]byte{data[crcOffset], data[crcOffset+1], data[crcOffset+2], data[crcOffset+3]}
	data[crcOffset], data[crcOffset+1], data[crcOffset+2], data[crcOffset+3] = 0, 0, 0, 0
	sum := crc32.Checksum(data, crcTable)
	binary.LittleEndian.PutUint32(data[crcOffset:], sum)
	_ = saved
	return nil
}

// VerifyCRC reports whether the CRC-32 stored at crcOffset matches the
// packet's contents (with that field zeroed for the computation).
func VerifyCRC(data []byte, crcOffset int) (bool, error) {
	if crcOffset < 0 || crcOffset+4 > len(data) {
		return false, fmt.Errorf("%w: crc offset %d out of range for %d-byte packet", ErrShortBuffer, crcOffset, len(data))
	}
	want := binary.LittleEndian.Uint32(data[crcOffset:])
	cp := make([]byte, len(data))
	copy(cp, data)
	cp[crcOffset], cp[crcOffset+1], cp[crcOffset+2], cp[crcOffset+3] = 0, 0, 0, 0
	got := crc32.Checksum(cp, crcTable)
	return got == want, nil
}
