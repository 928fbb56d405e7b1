package auth

import (
	"crypto/rand"

	"github.com/croxford/smbls/internal/encoding"
)

// AuthenticateOptions configures the third handshake message. Exactly one
// of Password or NTLMv2Hash supplies key material; both empty yields an
// anonymous response. ClientChallenge and Timestamp are sampled when unset
// and exist so tests can pin the output.
type AuthenticateOptions struct {
	Domain      string
	Username    string
	Workstation string
	Password    string
	NTLMv2Hash  []byte

	ClientChallenge []byte
	Timestamp       []byte
}

// AuthenticateMessage is the third handshake message carrying the
// credential-derived responses.
type AuthenticateMessage struct {
	Flags          uint32
	LmResponse     []byte
	NtResponse     []byte
	DomainName     []byte
	UserName       []byte
	Workstation    []byte
	SessionKeyBlob []byte // RC4-sealed exported key when key exchange is on

	sessionBaseKey []byte
}

// NewAuthenticateMessage computes the NTLMv2 responses for a parsed
// challenge. The result is fully determined by the challenge and the
// options.
func NewAuthenticateMessage(challenge *ChallengeMessage, opts AuthenticateOptions) *AuthenticateMessage {
	m := &AuthenticateMessage{
		Flags:       challenge.Flags,
		DomainName:  encoding.UTF16(opts.Domain),
		UserName:    encoding.UTF16(opts.Username),
		Workstation: encoding.UTF16(opts.Workstation),
	}

	var v2Hash []byte
	switch {
	case len(opts.NTLMv2Hash) > 0:
		v2Hash = opts.NTLMv2Hash
	case opts.Password != "" || opts.Username != "":
		v2Hash = NTLMv2Hash(NTHash(opts.Password), opts.Username, opts.Domain)
	default:
		// anonymous: empty responses
		return m
	}

	clientChallenge := opts.ClientChallenge
	if len(clientChallenge) != 8 {
		clientChallenge = NewClientChallenge()
	}
	timestamp := opts.Timestamp
	if len(timestamp) != 8 {
		timestamp = challenge.Timestamp()
	}

	m.NtResponse, m.sessionBaseKey = NTLMv2Response(
		v2Hash, challenge.ServerChallenge[:], clientChallenge, timestamp, challenge.TargetInfo)
	m.LmResponse = LMv2Response(v2Hash, challenge.ServerChallenge[:], clientChallenge)

	if m.Flags&FlagKeyExchange != 0 {
		exported := make([]byte, 16)
		rand.Read(exported)
		m.SessionKeyBlob = rc4Seal(m.sessionBaseKey, exported)
	}
	return m
}

// fixed part of the authenticate message, MIC included.
const authFixedLen = 88

// Marshal serializes the message: six field descriptors over a shared
// payload region, flags, version, and a zero MIC.
func (m *AuthenticateMessage) Marshal() []byte {
	fields := [][]byte{
		m.LmResponse, m.NtResponse, m.DomainName,
		m.UserName, m.Workstation, m.SessionKeyBlob,
	}
	total := authFixedLen
	for _, f := range fields {
		total += len(f)
	}
	buf := make([]byte, total)

	copy(buf[0:8], signature[:])
	encoding.PutUint32(buf[8:12], typeAuthenticate)

	offset := uint32(authFixedLen)
	for i, f := range fields {
		putSecBuffer(buf[12+i*8:], secBuffer{
			Len:    uint16(len(f)),
			MaxLen: uint16(len(f)),
			Offset: offset,
		})
		copy(buf[offset:], f)
		offset += uint32(len(f))
	}

	encoding.PutUint32(buf[60:64], m.Flags)
	copy(buf[64:72], version[:])
	// 72:88 MIC, zero
	return buf
}

// SessionBaseKey returns the key derived alongside the NT response; empty
// for anonymous authentication.
func (m *AuthenticateMessage) SessionBaseKey() []byte {
	return m.sessionBaseKey
}
