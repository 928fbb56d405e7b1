package auth

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/rand"
	"crypto/rc4"
	"strings"
	"time"

	"golang.org/x/crypto/md4"

	"github.com/croxford/smbls/internal/encoding"
)

// NTHash computes MD4(UTF-16LE(password)).
func NTHash(password string) []byte {
	h := md4.New()
	h.Write(encoding.UTF16(password))
	return h.Sum(nil)
}

// NTLMv2Hash computes HMAC-MD5(NT hash, UTF-16LE(UPPER(user) + domain)).
func NTLMv2Hash(ntHash []byte, username, domain string) []byte {
	return hmacMD5(ntHash, encoding.UTF16(strings.ToUpper(username)+domain))
}

// NTLMv2Response derives the NT challenge response and the session base
// key from the v2 hash, the server nonce, a client nonce, a FILETIME
// timestamp and the server's target info. All inputs determine the output;
// nothing is sampled here.
func NTLMv2Response(ntlmv2Hash, serverChallenge, clientChallenge, timestamp, targetInfo []byte) (response, sessionBaseKey []byte) {
	blob := ntlmv2Blob(clientChallenge, timestamp, targetInfo)
	proof := hmacMD5(ntlmv2Hash, append(append([]byte(nil), serverChallenge...), blob...))
	response = append(proof, blob...)
	sessionBaseKey = hmacMD5(ntlmv2Hash, proof)
	return response, sessionBaseKey
}

// LMv2Response computes the legacy LM response over both nonces.
func LMv2Response(ntlmv2Hash, serverChallenge, clientChallenge []byte) []byte {
	proof := hmacMD5(ntlmv2Hash, append(append([]byte(nil), serverChallenge...), clientChallenge...))
	return append(proof, clientChallenge...)
}

// ntlmv2Blob builds the client "temp" structure hashed into the proof:
// resp type pair, timestamp, client nonce, target info, with the reserved
// words zeroed.
func ntlmv2Blob(clientChallenge, timestamp, targetInfo []byte) []byte {
	if len(timestamp) != 8 {
		timestamp = make([]byte, 8)
		// FILETIME, 100ns intervals since 1601-01-01
		encoding.PutUint64(timestamp, uint64(time.Now().UnixNano()/100+116444736000000000))
	}
	blob := make([]byte, 28+len(targetInfo)+4)
	blob[0] = 0x01 // RespType
	blob[1] = 0x01 // HiRespType
	copy(blob[8:16], timestamp)
	copy(blob[16:24], clientChallenge)
	copy(blob[28:], targetInfo)
	return blob
}

// NewClientChallenge samples an 8-byte client nonce.
func NewClientChallenge() []byte {
	nonce := make([]byte, 8)
	rand.Read(nonce)
	return nonce
}

func hmacMD5(key, data []byte) []byte {
	h := hmac.New(md5.New, key)
	h.Write(data)
	return h.Sum(nil)
}

// rc4Seal encrypts the exported session key under the base key for the
// key-exchange field of the authenticate message.
func rc4Seal(key, plaintext []byte) []byte {
	cipher, err := rc4.NewCipher(key)
	if err != nil {
		return plaintext
	}
	out := make([]byte, len(plaintext))
	cipher.XORKeyStream(out, plaintext)
	return out
}
