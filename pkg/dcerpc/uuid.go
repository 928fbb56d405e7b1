package dcerpc

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/croxford/smbls/internal/encoding"
)

// UUID is a DCE UUID in wire order: the first three groups little-endian,
// the rest big-endian.
type UUID [16]byte

// String renders the UUID in the usual dashed display form.
func (u UUID) String() string {
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		encoding.Uint32(u[0:4]),
		encoding.Uint16(u[4:6]),
		encoding.Uint16(u[6:8]),
		u[8:10],
		u[10:16])
}

// ParseUUID parses a display-form UUID (dashes optional) into wire order.
func ParseUUID(s string) (UUID, error) {
	s = strings.ReplaceAll(s, "-", "")
	if len(s) != 32 {
		return UUID{}, fmt.Errorf("invalid UUID length %d", len(s))
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return UUID{}, fmt.Errorf("invalid UUID: %w", err)
	}

	var u UUID
	u[0], u[1], u[2], u[3] = raw[3], raw[2], raw[1], raw[0]
	u[4], u[5] = raw[5], raw[4]
	u[6], u[7] = raw[7], raw[6]
	copy(u[8:16], raw[8:16])
	return u, nil
}

// MustParseUUID is ParseUUID for compile-time constants.
func MustParseUUID(s string) UUID {
	u, err := ParseUUID(s)
	if err != nil {
		panic(err)
	}
	return u
}

// SyntaxID pairs an interface or transfer syntax UUID with its version.
// The version word packs major in the low half and minor in the high half.
type SyntaxID struct {
	UUID    UUID
	Version uint32
}

// Marshal serializes the 20-byte syntax identifier.
func (s *SyntaxID) Marshal() []byte {
	buf := make([]byte, 20)
	copy(buf[0:16], s.UUID[:])
	encoding.PutUint32(buf[16:20], s.Version)
	return buf
}

// Unmarshal parses a syntax identifier.
func (s *SyntaxID) Unmarshal(buf []byte) error {
	if len(buf) < 20 {
		return ErrShortBuffer
	}
	copy(s.UUID[:], buf[0:16])
	s.Version = encoding.Uint32(buf[16:20])
	return nil
}

// NDRSyntax is the transfer syntax every bind in this module proposes.
var NDRSyntax = SyntaxID{
	UUID:    MustParseUUID("8a885d04-1ceb-11c9-9fe8-08002b104860"),
	Version: 2,
}
