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

import "github.com/soliloque-go/voiced/internal/voiceconst"

// LoginRequest is the payload of a LOGIN / LOGIN_EXISTING command.
type LoginRequest struct {
	Nickname      string
	ClientVersion uint32
	Login         string
	Password      string
}

// DecodeLoginRequest parses a LOGIN payload.
func DecodeLoginRequest(payload []byte) (*LoginRequest, error) {
	r := NewReader(payload)
	nickname, err := r.String()
	if err != nil {
		return nil, err
	}
	version, err := r.U32()
	if err != nil {
		return nil, err
	}
	login, err := r.String()
	if err != nil {
		return nil, err
	}
	password, err := r.String()
	if err != nil {
		return nil, err
	}
	return &LoginRequest{Nickname: nickname, ClientVersion: version, Login: login, Password: password}, nil
}

// Encode serialises a LOGIN payload.
func (l *LoginRequest) Encode() []byte {
	w := NewWriter(2*(1+voiceconst.MaxStringFieldLen) + 4)
	w.String(l.Nickname)
	w.U32(l.ClientVersion)
	w.String(l.Login)
	w.String(l.Password)
	return w.Bytes()
}

// LoginOK is the payload of a LOGIN_OK reply: the assigned identifiers.
type LoginOK struct {
	PublicID  uint32
	PrivateID uint32
}

// Encode serialises a LOGIN_OK payload.
func (l *LoginOK) Encode() []byte {
	w := NewWriter(8)
	w.U32(l.PublicID)
	w.U32(l.PrivateID)
	return w.Bytes()
}

// DecodeLoginOK parses a LOGIN_OK payload.
func DecodeLoginOK(payload []byte) (*LoginOK, error) {
	r := NewReader(payload)
	publicID, err := r.U32()
	if err != nil {
		return nil, err
	}
	privateID, err := r.U32()
	if err != nil {
		return nil, err
	}
	return &LoginOK{PublicID: publicID, PrivateID: privateID}, nil
}

// LoginFail carries a rejection reason code.
type LoginFail struct {
	Reason uint32
}

// Encode serialises a LOGIN_FAIL payload.
func (l *LoginFail) Encode() []byte {
	w := NewWriter(4)
	w.U32(l.Reason)
	return w.Bytes()
}

// DecodeLoginFail parses a LOGIN_FAIL payload.
func DecodeLoginFail(payload []byte) (*LoginFail, error) {
	r := NewReader(payload)
	reason, err := r.U32()
	if err != nil {
		return nil, err
	}
	return &LoginFail{Reason: reason}, nil
}

// DisconnectNotify announces a player's removal to survivors.
type DisconnectNotify struct {
	PublicID uint32
	Reason   uint32
}

// Encode serialises a DISCONNECT payload.
func (d *DisconnectNotify) Encode() []byte {
	w := NewWriter(8)
	w.U32(d.PublicID)
	w.U32(d.Reason)
	return w.Bytes()
}

// DecodeDisconnectNotify parses a DISCONNECT payload.
func DecodeDisconnectNotify(payload []byte) (*DisconnectNotify, error) {
	r := NewReader(payload)
	publicID, err := r.U32()
	if err != nil {
		return nil, err
	}
	reason, err := r.U32()
	if err != nil {
		return nil, err
	}
	return &DisconnectNotify{PublicID: publicID, Reason: reason}, nil
}

// SwitchChanRequest is the payload of an inbound SWITCHCHAN command.
type SwitchChanRequest struct {
	TargetChannelID uint32
	Password        string
}

// DecodeSwitchChanRequest parses a SWITCHCHAN request payload.
func DecodeSwitchChanRequest(payload []byte) (*SwitchChanRequest, error) {
	r := NewReader(payload)
	targetID, err := r.U32()
	if err != nil {
		return nil, err
	}
	password, err := r.String()
	if err != nil {
		return nil, err
	}
	return &SwitchChanRequest{TargetChannelID: targetID, Password: password}, nil
}

// SwitchChanNotify is the broadcast payload for a completed channel move:
// (actor.public_id, from.id, to.id, the mover's new channel-privilege bits).
type SwitchChanNotify struct {
	ActorPublicID uint32
	FromChannelID uint32
	ToChannelID   uint32
	NewPrivileges voiceconst.ChannelPrivilege
}

// Encode serialises a SWITCHCHAN notification payload.
func (s *SwitchChanNotify) Encode() []byte {
	w := NewWriter(14)
	w.U32(s.ActorPublicID)
	w.U32(s.FromChannelID)
	w.U32(s.ToChannelID)
	w.U16(uint16(s.NewPrivileges))
	return w.Bytes()
}

// DecodeSwitchChanNotify parses a SWITCHCHAN notification payload.
func DecodeSwitchChanNotify(payload []byte) (*SwitchChanNotify, error) {
	r := NewReader(payload)
	actor, err := r.U32()
	if err != nil {
		return nil, err
	}
	from, err := r.U32()
	if err != nil {
		return nil, err
	}
	to, err := r.U32()
	if err != nil {
		return nil, err
	}
	priv, err := r.U16()
	if err != nil {
		return nil, err
	}
	return &SwitchChanNotify{ActorPublicID: actor, FromChannelID: from, ToChannelID: to, NewPrivileges: voiceconst.ChannelPrivilege(priv)}, nil
}

// CreateChRequest describes a channel to create.
type CreateChRequest struct {
	ParentID    uint32
	Name        string
	Topic       string
	Description string
	Password    string
	MaxUsers    uint16
	SortOrder   uint16
	Flags       voiceconst.ChannelFlag
}

// DecodeCreateChRequest parses a CREATE_CH request payload.
func DecodeCreateChRequest(payload []byte) (*CreateChRequest, error) {
	r := NewReader(payload)
	req := &CreateChRequest{}
	var err error
	if req.ParentID, err = r.U32(); err != nil {
		return nil, err
	}
	if req.Name, err = r.String(); err != nil {
		return nil, err
	}
	if req.Topic, err = r.String(); err != nil {
		return nil, err
	}
	if req.Description, err = r.String(); err != nil {
		return nil, err
	}
	if req.Password, err = r.String(); err != nil {
		return nil, err
	}
	if req.MaxUsers, err = r.U16(); err != nil {
		return nil, err
	}
	if req.SortOrder, err = r.U16(); err != nil {
		return nil, err
	}
	flags, err := r.U16()
	if err != nil {
		return nil, err
	}
	req.Flags = voiceconst.ChannelFlag(flags)
	return req, nil
}

// Encode serialises a CREATE_CH request payload.
func (c *CreateChRequest) Encode() []byte {
	w := NewWriter(4 + 4*(1+voiceconst.MaxStringFieldLen) + 6)
	w.U32(c.ParentID)
	w.String(c.Name)
	w.String(c.Topic)
	w.String(c.Description)
	w.String(c.Password)
	w.U16(c.MaxUsers)
	w.U16(c.SortOrder)
	w.U16(uint16(c.Flags))
	return w.Bytes()
}

// CreateChNotify announces a newly created channel to all connected players.
type CreateChNotify struct {
	ChannelID uint32
	ParentID  uint32
	Name      string
	Flags     voiceconst.ChannelFlag
}

// Encode serialises a CREATE_CH notification payload.
func (c *CreateChNotify) Encode() []byte {
	w := NewWriter(4 + 4 + 1 + voiceconst.MaxStringFieldLen + 2)
	w.U32(c.ChannelID)
	w.U32(c.ParentID)
	w.String(c.Name)
	w.U16(uint16(c.Flags))
	return w.Bytes()
}

// DecodeCreateChNotify parses a CREATE_CH notification payload.
func DecodeCreateChNotify(payload []byte) (*CreateChNotify, error) {
	r := NewReader(payload)
	id, err := r.U32()
	if err != nil {
		return nil, err
	}
	parent, err := r.U32()
	if err != nil {
		return nil, err
	}
	name, err := r.String()
	if err != nil {
		return nil, err
	}
	flags, err := r.U16()
	if err != nil {
		return nil, err
	}
	return &CreateChNotify{ChannelID: id, ParentID: parent, Name: name, Flags: voiceconst.ChannelFlag(flags)}, nil
}

// encodeChanDeleteIDOverlap reproduces the reference client's packing bug
// for CHANDELETE notifications: the writer advances only 2 bytes after
// the 4-byte deleted-id, so the trailing uint32(1) field overlaps the
// id's high 2 bytes. Implementers MUST NOT "fix" this; the reference
// client's decoder was written against the bug, not the intent.
// See s_notify_channel_deleted in the reference control-packet layout.
func encodeChanDeleteIDOverlap(w *Writer, deletedID uint32) {
	w.U32(deletedID)
	// The reference writer rewinds 2 bytes before writing the trailing
	// field, so only the low 16 bits of deletedID survive in the packet;
	// the high 16 bits are overwritten by the low 16 bits of the
	// following uint32(1).
	buf := w.Bytes()
	w.buf = buf[:len(buf)-2]
	w.U32(1)
}

// ChanDeleteNotify announces a channel's removal.
type ChanDeleteNotify struct {
	ChannelID uint32
}

// Encode serialises a CHANDELETE notification, deliberately preserving
// the reference client's overlapping-offset byte layout.
func (c *ChanDeleteNotify) Encode() []byte {
	w := NewWriter(8)
	encodeChanDeleteIDOverlap(w, c.ChannelID)
	return w.Bytes()
}

// DecodeChanDeleteNotify parses a CHANDELETE notification payload,
// recovering the deleted channel id from the low 16 bits written by the
// overlapping encode (see Encode).
func DecodeChanDeleteNotify(payload []byte) (*ChanDeleteNotify, error) {
	r := NewReader(payload)
	lowWord, err := r.U16()
	if err != nil {
		return nil, err
	}
	// Skip the remaining bytes of the overlapping uint32(1) field.
	r.Skip(4)
	return &ChanDeleteNotify{ChannelID: uint32(lowWord)}, nil
}

// chanDeleteErrorConstant is a literal observed at a fixed offset in the
// reference CHANDELETE_ERROR layout (s_resp_cannot_delete_channel,
// offset 20, immediately before the packet counter). Its meaning is not
// documented upstream; it is reproduced rather than omitted since an
// unmodified reference client may key off it. See DESIGN.md.
const chanDeleteErrorConstant uint32 = 0x00d1

// ChanDeleteError is the reply sent when a CHANDELETE is denied because
// the channel is non-empty; it carries the originating packet's counter
// for client-side correlation.
type ChanDeleteError struct {
	ChannelID        uint32
	OriginalCounter  uint32
}

// Encode serialises a CHANDELETE_ERROR payload.
func (c *ChanDeleteError) Encode() []byte {
	w := NewWriter(12)
	w.U32(c.ChannelID)
	w.U32(chanDeleteErrorConstant)
	w.U32(c.OriginalCounter)
	return w.Bytes()
}

// DecodeChanDeleteError parses a CHANDELETE_ERROR payload.
func DecodeChanDeleteError(payload []byte) (*ChanDeleteError, error) {
	r := NewReader(payload)
	id, err := r.U32()
	if err != nil {
		return nil, err
	}
	r.Skip(4) // reserved constant, see chanDeleteErrorConstant
	counter, err := r.U32()
	if err != nil {
		return nil, err
	}
	return &ChanDeleteError{ChannelID: id, OriginalCounter: counter}, nil
}

// ChangePlPrivRequest is the shared payload shape of CHANGE_PL_CHPRIV and
// CHANGE_PL_SVPRIV: a target player, the grant/revoke convention, and the
// bit offset of the right being toggled.
type ChangePlPrivRequest struct {
	TargetPublicID uint32
	OnOff          voiceconst.OnOff
	RightOffset    byte
}

// DecodeChangePlPrivRequest parses a CHANGE_PL_CHPRIV/SVPRIV request payload.
func DecodeChangePlPrivRequest(payload []byte) (*ChangePlPrivRequest, error) {
	r := NewReader(payload)
	target, err := r.U32()
	if err != nil {
		return nil, err
	}
	onOff, err := r.Byte()
	if err != nil {
		return nil, err
	}
	right, err := r.Byte()
	if err != nil {
		return nil, err
	}
	return &ChangePlPrivRequest{TargetPublicID: target, OnOff: voiceconst.OnOff(onOff), RightOffset: right}, nil
}

// Encode serialises a CHANGE_PL_CHPRIV/SVPRIV request payload.
func (c *ChangePlPrivRequest) Encode() []byte {
	w := NewWriter(6)
	w.U32(c.TargetPublicID)
	w.Byte(byte(c.OnOff))
	w.Byte(c.RightOffset)
	return w.Bytes()
}

// ChangePlPrivNotify is the broadcast payload for both CHANGE_PL_CHPRIV
// and CHANGE_PL_SVPRIV: (target, on_off, right, actor).
type ChangePlPrivNotify struct {
	TargetPublicID uint32
	OnOff          voiceconst.OnOff
	RightOffset    byte
	ActorPublicID  uint32
}

// Encode serialises a CHANGE_PL_CHPRIV/SVPRIV notification payload.
func (c *ChangePlPrivNotify) Encode() []byte {
	w := NewWriter(10)
	w.U32(c.TargetPublicID)
	w.Byte(byte(c.OnOff))
	w.Byte(c.RightOffset)
	w.U32(c.ActorPublicID)
	return w.Bytes()
}

// DecodeChangePlPrivNotify parses a CHANGE_PL_CHPRIV/SVPRIV notification payload.
func DecodeChangePlPrivNotify(payload []byte) (*ChangePlPrivNotify, error) {
	r := NewReader(payload)
	target, err := r.U32()
	if err != nil {
		return nil, err
	}
	onOff, err := r.Byte()
	if err != nil {
		return nil, err
	}
	right, err := r.Byte()
	if err != nil {
		return nil, err
	}
	actor, err := r.U32()
	if err != nil {
		return nil, err
	}
	return &ChangePlPrivNotify{
		TargetPublicID: target,
		OnOff:          voiceconst.OnOff(onOff),
		RightOffset:    right,
		ActorPublicID:  actor,
	}, nil
}

// ChangePlStatusNotify broadcasts a player's updated attribute bitfield.
// The target is always the sender itself.
type ChangePlStatusNotify struct {
	PublicID      uint32
	NewAttributes voiceconst.PlayerAttribute
}

// Encode serialises a CHANGE_PL_STATUS payload.
func (c *ChangePlStatusNotify) Encode() []byte {
	w := NewWriter(6)
	w.U32(c.PublicID)
	w.U16(uint16(c.NewAttributes))
	return w.Bytes()
}

// DecodeChangePlStatusNotify parses a CHANGE_PL_STATUS payload.
func DecodeChangePlStatusNotify(payload []byte) (*ChangePlStatusNotify, error) {
	r := NewReader(payload)
	id, err := r.U32()
	if err != nil {
		return nil, err
	}
	attrs, err := r.U16()
	if err != nil {
		return nil, err
	}
	return &ChangePlStatusNotify{PublicID: id, NewAttributes: voiceconst.PlayerAttribute(attrs)}, nil
}

// ChangeChInfoRequest edits a channel's descriptive fields.
type ChangeChInfoRequest struct {
	ChannelID   uint32
	Topic       string
	Description string
	Password    string
	MaxUsers    uint16
	Flags       voiceconst.ChannelFlag
}

// DecodeChangeChInfoRequest parses a CHANGE_CH_INFO request payload.
func DecodeChangeChInfoRequest(payload []byte) (*ChangeChInfoRequest, error) {
	r := NewReader(payload)
	req := &ChangeChInfoRequest{}
	var err error
	if req.ChannelID, err = r.U32(); err != nil {
		return nil, err
	}
	if req.Topic, err = r.String(); err != nil {
		return nil, err
	}
	if req.Description, err = r.String(); err != nil {
		return nil, err
	}
	if req.Password, err = r.String(); err != nil {
		return nil, err
	}
	if req.MaxUsers, err = r.U16(); err != nil {
		return nil, err
	}
	flags, err := r.U16()
	if err != nil {
		return nil, err
	}
	req.Flags = voiceconst.ChannelFlag(flags)
	return req, nil
}

// Encode serialises a CHANGE_CH_INFO request payload.
func (c *ChangeChInfoRequest) Encode() []byte {
	w := NewWriter(4 + 3*(1+voiceconst.MaxStringFieldLen) + 4)
	w.U32(c.ChannelID)
	w.String(c.Topic)
	w.String(c.Description)
	w.String(c.Password)
	w.U16(c.MaxUsers)
	w.U16(uint16(c.Flags))
	return w.Bytes()
}

// KickRequest names a target player for KICK_SERVER/KICK_CHANNEL.
type KickRequest struct {
	TargetPublicID uint32
	Reason         string
}

// DecodeKickRequest parses a KICK_SERVER/KICK_CHANNEL request payload.
func DecodeKickRequest(payload []byte) (*KickRequest, error) {
	r := NewReader(payload)
	target, err := r.U32()
	if err != nil {
		return nil, err
	}
	reason, err := r.String()
	if err != nil {
		return nil, err
	}
	return &KickRequest{TargetPublicID: target, Reason: reason}, nil
}

// Encode serialises a KICK_SERVER/KICK_CHANNEL request payload.
func (k *KickRequest) Encode() []byte {
	w := NewWriter(4 + 1 + voiceconst.MaxStringFieldLen)
	w.U32(k.TargetPublicID)
	w.String(k.Reason)
	return w.Bytes()
}

// KickNotify is the broadcast counterpart of KickRequest: (target, actor, reason).
type KickNotify struct {
	TargetPublicID uint32
	ActorPublicID  uint32
	Reason         string
}

// Encode serialises a KICK_SERVER/KICK_CHANNEL notification payload.
func (k *KickNotify) Encode() []byte {
	w := NewWriter(8 + 1 + voiceconst.MaxStringFieldLen)
	w.U32(k.TargetPublicID)
	w.U32(k.ActorPublicID)
	w.String(k.Reason)
	return w.Bytes()
}

// DecodeKickNotify parses a KICK_SERVER/KICK_CHANNEL notification payload.
func DecodeKickNotify(payload []byte) (*KickNotify, error) {
	r := NewReader(payload)
	target, err := r.U32()
	if err != nil {
		return nil, err
	}
	actor, err := r.U32()
	if err != nil {
		return nil, err
	}
	reason, err := r.String()
	if err != nil {
		return nil, err
	}
	return &KickNotify{TargetPublicID: target, ActorPublicID: actor, Reason: reason}, nil
}

// MessageTarget selects the recipient scope for a MESSAGE_* command.
type MessageTarget byte

const (
	MessageTargetPlayer MessageTarget = iota
	MessageTargetChannel
	MessageTargetServer
)

// Message carries text addressed to a player, a channel's members, or
// the whole server, depending on which command carried it.
type Message struct {
	TargetID uint32 // public_id or channel id; ignored for server-wide
	Text     string
}

// Encode serialises a MESSAGE_* payload. Text longer than the wire field
// width is truncated by Writer.String.
func (m *Message) Encode() []byte {
	w := NewWriter(4 + 1 + voiceconst.MaxStringFieldLen)
	w.U32(m.TargetID)
	w.String(m.Text)
	return w.Bytes()
}

// DecodeMessage parses a MESSAGE_* payload.
func DecodeMessage(payload []byte) (*Message, error) {
	r := NewReader(payload)
	target, err := r.U32()
	if err != nil {
		return nil, err
	}
	text, err := r.String()
	if err != nil {
		return nil, err
	}
	return &Message{TargetID: target, Text: text}, nil
}

// PingPong is the empty-payload body of PING/PONG; kept as a type for
// symmetry with the rest of the command table even though it carries no
// fields beyond the common header's counter.
type PingPong struct{}

// Encode returns an empty payload.
func (PingPong) Encode() []byte { return nil }

// AckPayload is the payload of an ACK-class packet: the counter value
// of the control packet being acknowledged.
type AckPayload struct {
	Counter uint32
}

// Encode serialises an ACK payload.
func (a *AckPayload) Encode() []byte {
	w := NewWriter(4)
	w.U32(a.Counter)
	return w.Bytes()
}

// DecodeAckPayload parses an ACK payload.
func DecodeAckPayload(payload []byte) (*AckPayload, error) {
	r := NewReader(payload)
	counter, err := r.U32()
	if err != nil {
		return nil, err
	}
	return &AckPayload{Counter: counter}, nil
}

// ChanListEntry is one channel's row in a CHANLIST snapshot.
type ChanListEntry struct {
	ID        uint32
	ParentID  uint32
	Name      string
	Topic     string
	MaxUsers  uint16
	SortOrder uint16
	Flags     voiceconst.ChannelFlag
}

// ChanListSnapshot is the full channel-table reply sent to a player on
// login, per §4.F's LOGIN handler note.
type ChanListSnapshot struct {
	Channels []ChanListEntry
}

// Encode serialises a CHANLIST snapshot as a count prefix followed by
// one fixed-layout entry per channel.
func (c *ChanListSnapshot) Encode() []byte {
	w := NewWriter(2 + len(c.Channels)*(4+4+2*(1+voiceconst.MaxStringFieldLen)+2+2+2))
	w.U16(uint16(len(c.Channels)))
	for _, ch := range c.Channels {
		w.U32(ch.ID)
		w.U32(ch.ParentID)
		w.String(ch.Name)
		w.String(ch.Topic)
		w.U16(ch.MaxUsers)
		w.U16(ch.SortOrder)
		w.U16(uint16(ch.Flags))
	}
	return w.Bytes()
}

// DecodeChanListSnapshot parses a CHANLIST snapshot payload.
func DecodeChanListSnapshot(payload []byte) (*ChanListSnapshot, error) {
	r := NewReader(payload)
	count, err := r.U16()
	if err != nil {
		return nil, err
	}
	entries := make([]ChanListEntry, 0, count)
	for i := 0; i < int(count); i++ {
		var e ChanListEntry
		if e.ID, err = r.U32(); err != nil {
			return nil, err
		}
		if e.ParentID, err = r.U32(); err != nil {
			return nil, err
		}
		if e.Name, err = r.String(); err != nil {
			return nil, err
		}
		if e.Topic, err = r.String(); err != nil {
			return nil, err
		}
		if e.MaxUsers, err = r.U16(); err != nil {
			return nil, err
		}
		if e.SortOrder, err = r.U16(); err != nil {
			return nil, err
		}
		flags, err := r.U16()
		if err != nil {
			return nil, err
		}
		e.Flags = voiceconst.ChannelFlag(flags)
		entries = append(entries, e)
	}
	return &ChanListSnapshot{Channels: entries}, nil
}

// PlayerListEntry is one player's row in a PLAYERLIST snapshot.
type PlayerListEntry struct {
	PublicID   uint32
	InChannel  uint32
	Nickname   string
	Attributes voiceconst.PlayerAttribute
}

// PlayerListSnapshot is the full connected-player reply sent to a
// player on login, per §4.F's LOGIN handler note.
type PlayerListSnapshot struct {
	Players []PlayerListEntry
}

// Encode serialises a PLAYERLIST snapshot as a count prefix followed by
// one fixed-layout entry per connected player.
func (p *PlayerListSnapshot) Encode() []byte {
	w := NewWriter(2 + len(p.Players)*(4+4+1+voiceconst.MaxStringFieldLen+2))
	w.U16(uint16(len(p.Players)))
	for _, pl := range p.Players {
		w.U32(pl.PublicID)
		w.U32(pl.InChannel)
		w.String(pl.Nickname)
		w.U16(uint16(pl.Attributes))
	}
	return w.Bytes()
}

// DecodePlayerListSnapshot parses a PLAYERLIST snapshot payload.
func DecodePlayerListSnapshot(payload []byte) (*PlayerListSnapshot, error) {
	r := NewReader(payload)
	count, err := r.U16()
	if err != nil {
		return nil, err
	}
	entries := make([]PlayerListEntry, 0, count)
	for i := 0; i < int(count); i++ {
		var e PlayerListEntry
		if e.PublicID, err = r.U32(); err != nil {
			return nil, err
		}
		if e.InChannel, err = r.U32(); err != nil {
			return nil, err
		}
		if e.Nickname, err = r.String(); err != nil {
			return nil, err
		}
		attrs, err := r.U16()
		if err != nil {
			return nil, err
		}
		e.Attributes = voiceconst.PlayerAttribute(attrs)
		entries = append(entries, e)
	}
	return &PlayerListSnapshot{Players: entries}, nil
}
