// Package types defines the SMB2 message layouts used for share
// enumeration: the 64-byte header and the fixed-size command bodies for
// NEGOTIATE, SESSION_SETUP, TREE_CONNECT, CREATE, READ, WRITE, IOCTL and
// CLOSE. Every structure carries its wire offsets in Marshal/Unmarshal so a
// layout change cannot silently corrupt a frame.
package types

// Command is the opcode at header offset 12.
type Command uint16

const (
	CommandNegotiate    Command = 0x0000
	CommandSessionSetup Command = 0x0001
	CommandLogoff       Command = 0x0002
	CommandTreeConnect  Command = 0x0003
	CommandTreeDisc     Command = 0x0004
	CommandCreate       Command = 0x0005
	CommandClose        Command = 0x0006
	CommandRead         Command = 0x0008
	CommandWrite        Command = 0x0009
	CommandIoctl        Command = 0x000B
)

// String returns the command mnemonic for logging.
func (c Command) String() string {
	switch c {
	case CommandNegotiate:
		return "NEGOTIATE"
	case CommandSessionSetup:
		return "SESSION_SETUP"
	case CommandLogoff:
		return "LOGOFF"
	case CommandTreeConnect:
		return "TREE_CONNECT"
	case CommandTreeDisc:
		return "TREE_DISCONNECT"
	case CommandCreate:
		return "CREATE"
	case CommandClose:
		return "CLOSE"
	case CommandRead:
		return "READ"
	case CommandWrite:
		return "WRITE"
	case CommandIoctl:
		return "IOCTL"
	}
	return "UNKNOWN"
}

// Dialect identifies an SMB2 protocol revision.
type Dialect uint16

const (
	DialectSMB2_0_2 Dialect = 0x0202
	DialectSMB2_1   Dialect = 0x0210
	DialectSMB3_0   Dialect = 0x0300
	DialectSMB3_0_2 Dialect = 0x0302
	DialectWildcard Dialect = 0x02FF
)

// HeaderFlags for the header flags word at offset 16.
type HeaderFlags uint32

const (
	FlagsServerToRedir HeaderFlags = 0x00000001
	FlagsAsyncCommand  HeaderFlags = 0x00000002
	FlagsSigned        HeaderFlags = 0x00000008
)

// AccessMask holds the desired-access bits of a CREATE request.
type AccessMask uint32

const (
	FileReadData        AccessMask = 0x00000001
	FileWriteData       AccessMask = 0x00000002
	FileAppendData      AccessMask = 0x00000004
	FileReadEA          AccessMask = 0x00000008
	FileWriteEA         AccessMask = 0x00000010
	FileReadAttributes  AccessMask = 0x00000080
	FileWriteAttributes AccessMask = 0x00000100
	ReadControl         AccessMask = 0x00020000
	Synchronize         AccessMask = 0x00100000
)

// ShareAccess bits of a CREATE request.
type ShareAccess uint32

const (
	FileShareRead  ShareAccess = 0x00000001
	FileShareWrite ShareAccess = 0x00000002
)

// CreateDisposition values; pipes always use FileOpen.
type CreateDisposition uint32

const (
	FileOpen CreateDisposition = 1
)

// TreeType is the share type byte of a TREE_CONNECT response.
type TreeType uint8

const (
	TreeTypeDisk TreeType = 0x01
	TreeTypePipe TreeType = 0x02
)

// SecurityMode flags of NEGOTIATE and SESSION_SETUP.
type SecurityMode uint8

const (
	SigningEnabled  SecurityMode = 0x01
	SigningRequired SecurityMode = 0x02
)

// Capabilities advertised in NEGOTIATE.
type Capabilities uint32

const (
	CapDFS      Capabilities = 0x00000001
	CapLargeMTU Capabilities = 0x00000004
)

// ProtocolID is the magic at the start of every SMB2 frame.
var ProtocolID = [4]byte{0xFE, 'S', 'M', 'B'}

// HeaderSize is the fixed SMB2 header length.
const HeaderSize = 64
