package types

import "fmt"

// NTStatus is the 32-bit result code in the header of every response.
type NTStatus uint32

const (
	StatusSuccess           NTStatus = 0x00000000
	StatusPending           NTStatus = 0x00000103
	StatusBufferOverflow    NTStatus = 0x80000005
	StatusInvalidParameter  NTStatus = 0xC000000D
	StatusMoreProcessingReq NTStatus = 0xC0000016
	StatusAccessDenied      NTStatus = 0xC0000022
	StatusNoLogonServers    NTStatus = 0xC000005E
	StatusLogonFailure      NTStatus = 0xC000006D
	StatusAccountDisabled   NTStatus = 0xC0000072
	StatusNotSupported      NTStatus = 0xC00000BB
	StatusBadNetworkName    NTStatus = 0xC00000CC
)

// statusNames is the fixed table of codes we report symbolically. Anything
// outside it is surfaced as a raw hex code.
var statusNames = map[NTStatus]string{
	StatusSuccess:           "STATUS_SUCCESS",
	StatusPending:           "STATUS_PENDING",
	StatusBufferOverflow:    "STATUS_BUFFER_OVERFLOW",
	StatusInvalidParameter:  "STATUS_INVALID_PARAMETER",
	StatusMoreProcessingReq: "STATUS_MORE_PROCESSING_REQUIRED",
	StatusAccessDenied:      "STATUS_ACCESS_DENIED",
	StatusNoLogonServers:    "STATUS_NO_LOGON_SERVERS",
	StatusLogonFailure:      "STATUS_LOGON_FAILURE",
	StatusAccountDisabled:   "STATUS_ACCOUNT_DISABLED",
	StatusNotSupported:      "STATUS_NOT_SUPPORTED",
	StatusBadNetworkName:    "STATUS_BAD_NETWORK_NAME",
}

// Known reports whether the status belongs to the symbolic name table.
func (s NTStatus) Known() bool {
	_, ok := statusNames[s]
	return ok
}

// String returns the symbolic name, or the raw code in hex.
func (s NTStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("0x%08X", uint32(s))
}
