package auth

import (
	"errors"

	"github.com/croxford/smbls/internal/encoding"
)

// ChallengeMessage is the parsed second handshake message: the server's
// 8-byte nonce plus its target information block.
type ChallengeMessage struct {
	Flags           uint32
	ServerChallenge [8]byte
	TargetName      []byte
	TargetInfo      []byte
	AvPairs         []AvPair
}

// ParseChallengeMessage decodes a challenge from its wire form.
func ParseChallengeMessage(data []byte) (*ChallengeMessage, error) {
	if len(data) < 32 {
		return nil, errors.New("challenge message too short")
	}
	if [8]byte{data[0], data[1], data[2], data[3], data[4], data[5], data[6], data[7]} != signature {
		return nil, errors.New("bad NTLMSSP signature")
	}
	if encoding.Uint32(data[8:12]) != typeChallenge {
		return nil, errors.New("not a challenge message")
	}

	m := &ChallengeMessage{}
	targetName := getSecBuffer(data[12:20])
	m.Flags = encoding.Uint32(data[20:24])
	copy(m.ServerChallenge[:], data[24:32])

	if len(data) >= 48 {
		targetInfo := getSecBuffer(data[40:48])
		if b, ok := slice(data, targetInfo); ok {
			m.TargetInfo = b
			m.AvPairs = ParseAvPairs(b)
		}
	}
	if b, ok := slice(data, targetName); ok {
		m.TargetName = b
	}
	return m, nil
}

// Timestamp returns the server's FILETIME AV pair value, or nil. Using
// the server's clock in the v2 blob avoids skew rejections.
func (m *ChallengeMessage) Timestamp() []byte {
	if pair := FindAvPair(m.AvPairs, AvTimestamp); pair != nil {
		return pair.Value
	}
	return nil
}

// TargetNameString decodes the target name field.
func (m *ChallengeMessage) TargetNameString() string {
	return encoding.ParseUTF16(m.TargetName)
}

func slice(data []byte, s secBuffer) ([]byte, bool) {
	start, end := int(s.Offset), int(s.Offset)+int(s.Len)
	if s.Len == 0 || start < 0 || end > len(data) {
		return nil, false
	}
	out := make([]byte, s.Len)
	copy(out, data[start:end])
	return out, true
}
