package auth

import (
	"github.com/croxford/smbls/internal/encoding"
)

// signature opens every NTLMSSP message.
var signature = [8]byte{'N', 'T', 'L', 'M', 'S', 'S', 'P', 0}

// Message type field values.
const (
	typeNegotiate    uint32 = 1
	typeChallenge    uint32 = 2
	typeAuthenticate uint32 = 3
)

// Negotiate flags this client advertises and honors.
const (
	FlagUnicode          uint32 = 0x00000001
	FlagRequestTarget    uint32 = 0x00000004
	FlagNTLM             uint32 = 0x00000200
	FlagAlwaysSign       uint32 = 0x00008000
	FlagExtendedSecurity uint32 = 0x00080000
	FlagTargetInfo       uint32 = 0x00800000
	FlagVersion          uint32 = 0x02000000
	Flag128              uint32 = 0x20000000
	FlagKeyExchange      uint32 = 0x40000000
	Flag56               uint32 = 0x80000000
)

// negotiateFlags is the flag set sent in the initial message.
const negotiateFlags = FlagUnicode | FlagRequestTarget | FlagNTLM |
	FlagAlwaysSign | FlagExtendedSecurity | FlagTargetInfo |
	FlagVersion | Flag128 | FlagKeyExchange | Flag56

// secBuffer is the length/maxlength/offset triple NTLMSSP uses to point at
// variable payload fields.
type secBuffer struct {
	Len    uint16
	MaxLen uint16
	Offset uint32
}

func putSecBuffer(b []byte, s secBuffer) {
	encoding.PutUint16(b[0:2], s.Len)
	encoding.PutUint16(b[2:4], s.MaxLen)
	encoding.PutUint32(b[4:8], s.Offset)
}

func getSecBuffer(b []byte) secBuffer {
	return secBuffer{
		Len:    encoding.Uint16(b[0:2]),
		MaxLen: encoding.Uint16(b[2:4]),
		Offset: encoding.Uint32(b[4:8]),
	}
}

// version is the 8-byte Version field; a current Windows 10 build keeps
// picky servers happy.
var version = [8]byte{10, 0, 0x61, 0x4a, 0, 0, 0, 15} // build 19041, revision 15

// AV pair ids found in the challenge target info.
const (
	AvEOL             uint16 = 0x0000
	AvNbComputerName  uint16 = 0x0001
	AvNbDomainName    uint16 = 0x0002
	AvDnsComputerName uint16 = 0x0003
	AvDnsDomainName   uint16 = 0x0004
	AvTimestamp       uint16 = 0x0007
)

// AvPair is one entry of the challenge's target information list.
type AvPair struct {
	ID    uint16
	Value []byte
}

// ParseAvPairs walks a target info buffer up to the EOL marker.
func ParseAvPairs(data []byte) []AvPair {
	var pairs []AvPair
	for offset := 0; offset+4 <= len(data); {
		id := encoding.Uint16(data[offset : offset+2])
		length := int(encoding.Uint16(data[offset+2 : offset+4]))
		offset += 4
		if id == AvEOL || offset+length > len(data) {
			break
		}
		pairs = append(pairs, AvPair{ID: id, Value: data[offset : offset+length]})
		offset += length
	}
	return pairs
}

// FindAvPair returns the pair with the given id, or nil.
func FindAvPair(pairs []AvPair, id uint16) *AvPair {
	for i := range pairs {
		if pairs[i].ID == id {
			return &pairs[i]
		}
	}
	return nil
}
