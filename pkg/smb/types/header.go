package types

import (
	"errors"

	"github.com/croxford/smbls/internal/encoding"
)

// Header is the fixed 64-byte SMB2 message header. The fields a share
// enumeration session cares about sit at fixed offsets: status at 8,
// command at 12, message id at 24, tree id at 36, session id at 40.
type Header struct {
	CreditCharge  uint16
	Status        NTStatus // response only; zero on requests
	Command       Command
	CreditRequest uint16
	Flags         HeaderFlags
	NextCommand   uint32
	MessageID     uint64
	TreeID        uint32
	SessionID     uint64
}

// NewHeader builds a request header for one command with the session's
// current message id.
func NewHeader(cmd Command, messageID uint64) *Header {
	return &Header{
		CreditCharge:  1,
		CreditRequest: 1,
		Command:       cmd,
		MessageID:     messageID,
	}
}

// Marshal serializes the header into its 64-byte wire form.
func (h *Header) Marshal() []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[0:4], ProtocolID[:])
	encoding.PutUint16(buf[4:6], HeaderSize)
	encoding.PutUint16(buf[6:8], h.CreditCharge)
	encoding.PutUint32(buf[8:12], uint32(h.Status))
	encoding.PutUint16(buf[12:14], uint16(h.Command))
	encoding.PutUint16(buf[14:16], h.CreditRequest)
	encoding.PutUint32(buf[16:20], uint32(h.Flags))
	encoding.PutUint32(buf[20:24], h.NextCommand)
	encoding.PutUint64(buf[24:32], h.MessageID)
	// 32:36 reserved / async id high part
	encoding.PutUint32(buf[36:40], h.TreeID)
	encoding.PutUint64(buf[40:48], h.SessionID)
	// 48:64 signature, always zero here (signing is out of scope)
	return buf
}

// Unmarshal parses a 64-byte header, validating magic and structure size.
func (h *Header) Unmarshal(buf []byte) error {
	if len(buf) < HeaderSize {
		return errors.New("short buffer for SMB2 header")
	}
	if [4]byte{buf[0], buf[1], buf[2], buf[3]} != ProtocolID {
		return errors.New("bad SMB2 protocol id")
	}
	if encoding.Uint16(buf[4:6]) != HeaderSize {
		return errors.New("bad SMB2 header structure size")
	}
	h.CreditCharge = encoding.Uint16(buf[6:8])
	h.Status = NTStatus(encoding.Uint32(buf[8:12]))
	h.Command = Command(encoding.Uint16(buf[12:14]))
	h.CreditRequest = encoding.Uint16(buf[14:16])
	h.Flags = HeaderFlags(encoding.Uint32(buf[16:20]))
	h.NextCommand = encoding.Uint32(buf[20:24])
	h.MessageID = encoding.Uint64(buf[24:32])
	h.TreeID = encoding.Uint32(buf[36:40])
	h.SessionID = encoding.Uint64(buf[40:48])
	return nil
}

// IsResponse reports whether the server-to-client flag is set.
func (h *Header) IsResponse() bool {
	return h.Flags&FlagsServerToRedir != 0
}

// IsInterim reports whether this frame is a discardable async interim
// reply. Servers answer a slow request with STATUS_PENDING first and send
// the real response afterwards, sometimes in the same TCP segment.
func (h *Header) IsInterim() bool {
	return h.Status == StatusPending && h.Flags&FlagsAsyncCommand != 0
}
