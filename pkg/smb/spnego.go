package smb

import (
	"bytes"
	"encoding/asn1"
)

// RFC 4178 negotiation token wrapping for NTLMSSP. Kerberos tokens arrive
// pre-wrapped from gokrb5 and bypass these helpers.

var (
	oidSPNEGO  = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 2}
	oidNTLMSSP = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 311, 2, 2, 10}
)

type negTokenInit struct {
	MechTypes []asn1.ObjectIdentifier `asn1:"explicit,tag:0"`
	MechToken []byte                  `asn1:"explicit,tag:2"`
}

type negTokenResp struct {
	NegState      asn1.Enumerated `asn1:"optional,explicit,tag:0"`
	ResponseToken []byte          `asn1:"optional,explicit,tag:2"`
}

// wrapTokenInit builds the initial GSS-API token: an APPLICATION 0 blob
// holding the SPNEGO OID and a NegTokenInit carrying the NTLMSSP message.
func wrapTokenInit(mechToken []byte) ([]byte, error) {
	initBytes, err := asn1.Marshal(negTokenInit{
		MechTypes: []asn1.ObjectIdentifier{oidNTLMSSP},
		MechToken: mechToken,
	})
	if err != nil {
		return nil, err
	}
	// negotiationToken CHOICE: negTokenInit is context tag [0]
	choice, err := asn1.Marshal(asn1.RawValue{
		Class:      asn1.ClassContextSpecific,
		Tag:        0,
		IsCompound: true,
		Bytes:      initBytes,
	})
	if err != nil {
		return nil, err
	}
	oidBytes, err := asn1.Marshal(oidSPNEGO)
	if err != nil {
		return nil, err
	}
	return asn1.Marshal(asn1.RawValue{
		Class:      asn1.ClassApplication,
		Tag:        0,
		IsCompound: true,
		Bytes:      append(oidBytes, choice...),
	})
}

// wrapTokenResp builds a NegTokenResp (context tag [1]) for the second and
// later legs of the exchange. NegState 1 is accept-incomplete.
func wrapTokenResp(responseToken []byte) ([]byte, error) {
	respBytes, err := asn1.Marshal(negTokenResp{
		NegState:      1,
		ResponseToken: responseToken,
	})
	if err != nil {
		return nil, err
	}
	return asn1.Marshal(asn1.RawValue{
		Class:      asn1.ClassContextSpecific,
		Tag:        1,
		IsCompound: true,
		Bytes:      respBytes,
	})
}

var ntlmsspSignature = []byte("NTLMSSP\x00")

// unwrapToken pulls the embedded NTLMSSP message out of a negotiation
// token. Servers differ in how much GSS framing they emit, so rather than
// walking the ASN.1 structure we locate the NTLMSSP signature directly.
func unwrapToken(data []byte) []byte {
	i := bytes.Index(data, ntlmsspSignature)
	if i < 0 {
		return nil
	}
	return data[i:]
}
