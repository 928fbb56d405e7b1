package dcerpc

import (
	"errors"
	"fmt"
)

var (
	ErrShortBuffer = errors.New("buffer too small")
	ErrBindFailed  = errors.New("bind rejected")
)

// FaultError reports a FAULT PDU in place of the expected response.
type FaultError struct {
	Status uint32
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("rpc fault 0x%08X", e.Status)
}
