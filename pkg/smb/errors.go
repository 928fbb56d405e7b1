package smb

import (
	"errors"
	"fmt"

	"github.com/croxford/smbls/pkg/smb/types"
)

// Sentinel errors for the conditions callers branch on.
var (
	ErrNotConnected   = errors.New("not connected")
	ErrAuthFailed     = errors.New("authentication failed")
	ErrAccessDenied   = errors.New("access denied")
	ErrBadNetworkName = errors.New("bad network name")
	ErrNotSupported   = errors.New("operation not supported")
)

// StatusError reports a response whose status differed from the one the
// step expected. Known codes unwrap to a sentinel; everything else is
// surfaced as raw hex alongside the expected code.
type StatusError struct {
	Status   types.NTStatus
	Expected types.NTStatus
}

// Error implements error.
func (e *StatusError) Error() string {
	if e.Status.Known() {
		return fmt.Sprintf("server returned %s (expected %s)", e.Status, e.Expected)
	}
	return fmt.Sprintf("server returned 0x%08X (expected %s)", uint32(e.Status), e.Expected)
}

// Unwrap maps the known status table onto sentinel errors so callers can
// use errors.Is without knowing raw codes.
func (e *StatusError) Unwrap() error {
	switch e.Status {
	case types.StatusAccessDenied:
		return ErrAccessDenied
	case types.StatusLogonFailure, types.StatusAccountDisabled, types.StatusNoLogonServers:
		return ErrAuthFailed
	case types.StatusBadNetworkName:
		return ErrBadNetworkName
	case types.StatusNotSupported:
		return ErrNotSupported
	}
	return nil
}

// newStatusError wraps an unexpected status for one step.
func newStatusError(got, want types.NTStatus) error {
	return &StatusError{Status: got, Expected: want}
}
