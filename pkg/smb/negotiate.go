package smb

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/croxford/smbls/pkg/smb/types"
)

// NegotiateResult records what dialect negotiation settled on.
type NegotiateResult struct {
	Dialect         types.Dialect
	ServerGUID      [16]byte
	MaxTransactSize uint32
	MaxReadSize     uint32
	MaxWriteSize    uint32
	RequiresSigning bool
}

// Negotiate runs the NEGOTIATE step. It must be the first exchange on the
// connection and uses message id 0.
func (s *Session) Negotiate(ctx context.Context) (*NegotiateResult, error) {
	req := types.NewNegotiateRequest()
	rand.Read(req.ClientGUID[:])

	_, payload, err := s.request(types.CommandNegotiate, 0, req.Marshal(), types.StatusSuccess)
	if err != nil {
		return nil, fmt.Errorf("negotiate: %w", err)
	}

	var resp types.NegotiateResponse
	if err := resp.Unmarshal(payload); err != nil {
		return nil, fmt.Errorf("negotiate: %w", err)
	}
	if resp.Dialect == types.DialectWildcard {
		return nil, errors.New("negotiate: server answered with wildcard dialect")
	}
	log.Debugf("negotiated dialect %s\n", DialectName(resp.Dialect))

	result := &NegotiateResult{
		Dialect:         resp.Dialect,
		ServerGUID:      resp.ServerGUID,
		MaxTransactSize: resp.MaxTransactSize,
		MaxReadSize:     resp.MaxReadSize,
		MaxWriteSize:    resp.MaxWriteSize,
		RequiresSigning: resp.RequiresSigning(),
	}
	s.negotiated = result
	return result, nil
}

// DialectName renders a dialect for display.
func DialectName(d types.Dialect) string {
	switch d {
	case types.DialectSMB2_0_2:
		return "SMB 2.0.2"
	case types.DialectSMB2_1:
		return "SMB 2.1"
	case types.DialectSMB3_0:
		return "SMB 3.0"
	case types.DialectSMB3_0_2:
		return "SMB 3.0.2"
	}
	return fmt.Sprintf("unknown (0x%04X)", uint16(d))
}
