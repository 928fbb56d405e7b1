package srvsvc

import (
	"fmt"

	"github.com/croxford/smbls/internal/encoding"
)

// ShareType is the low byte of the SHARE_INFO_1 type word.
type ShareType uint8

const (
	ShareTypeDisk       ShareType = 0
	ShareTypePrintQueue ShareType = 1
	ShareTypeDevice     ShareType = 2
	ShareTypeIPC        ShareType = 3
)

func (t ShareType) String() string {
	switch t {
	case ShareTypeDisk:
		return "Disk"
	case ShareTypePrintQueue:
		return "Print Queue"
	case ShareTypeDevice:
		return "Device"
	case ShareTypeIPC:
		return "IPC"
	}
	return fmt.Sprintf("Unknown (%d)", uint8(t))
}

// High bits of the SHARE_INFO_1 type word.
const (
	shareFlagTemporary uint32 = 0x40000000
	shareFlagHidden    uint32 = 0x80000000
)

// ShareInfo is one share as reported by NetShareEnumAll.
type ShareInfo struct {
	Name      string
	Type      ShareType
	Hidden    bool
	Temporary bool
	Remark    string
}

// Fixed offsets into the NetShareEnumAll response stub. The level, switch
// value, container referent, entry count and array referent each occupy
// four little-endian bytes before the entry array begins.
const (
	countOffset   = 12
	entriesOffset = 24
	entrySize     = 12
)

// parseShares decodes the response stub into share records, in server
// order. The array decodes in two passes: the fixed 12-byte entries first
// (type word at entry offset 4, name and remark referents either side of
// it), then the deferred string data in entry order.
func parseShares(stub []byte) ([]ShareInfo, error) {
	if len(stub) < entriesOffset {
		return nil, fmt.Errorf("share stub too short: %d bytes", len(stub))
	}
	count := int(encoding.Uint32(stub[countOffset : countOffset+4]))
	if count == 0 {
		return nil, nil
	}
	if entriesOffset+count*entrySize > len(stub) {
		return nil, fmt.Errorf("share stub truncated: %d entries in %d bytes", count, len(stub))
	}

	shares := make([]ShareInfo, count)
	type referents struct{ name, remark uint32 }
	refs := make([]referents, count)

	for i := 0; i < count; i++ {
		entry := stub[entriesOffset+i*entrySize:]
		typeWord := encoding.Uint32(entry[4:8])
		shares[i].Type = ShareType(typeWord & 0xFF)
		shares[i].Hidden = typeWord&shareFlagHidden != 0
		shares[i].Temporary = typeWord&shareFlagTemporary != 0
		refs[i].name = encoding.Uint32(entry[0:4])
		refs[i].remark = encoding.Uint32(entry[8:12])
	}

	offset := entriesOffset + count*entrySize
	for i := 0; i < count; i++ {
		var err error
		if refs[i].name != 0 {
			if shares[i].Name, offset, err = parseShareString(stub, offset); err != nil {
				return nil, fmt.Errorf("share %d name: %w", i, err)
			}
		}
		if refs[i].remark != 0 {
			if shares[i].Remark, offset, err = parseShareString(stub, offset); err != nil {
				return nil, fmt.Errorf("share %d remark: %w", i, err)
			}
		}
	}
	return shares, nil
}

// parseShareString decodes one deferred string at offset: a 12-byte
// descriptor whose character count (terminating null included) sits at
// descriptor offset 8, then the text of count*2 - 2 bytes. The cursor
// advances past the text by count*2 bytes when count is even and
// count*2 + 2 when odd, which is the padding servers are observed to emit;
// anything that does not fit this shape is an error rather than something
// to renormalize.
func parseShareString(stub []byte, offset int) (string, int, error) {
	if offset+12 > len(stub) {
		return "", 0, fmt.Errorf("string descriptor out of bounds at %d", offset)
	}
	maxCount := encoding.Uint32(stub[offset : offset+4])
	textOffset := encoding.Uint32(stub[offset+4 : offset+8])
	count := int(encoding.Uint32(stub[offset+8 : offset+12]))
	if textOffset != 0 {
		return "", 0, fmt.Errorf("unexpected string text offset %d", textOffset)
	}
	if count == 0 || int(maxCount) < count {
		return "", 0, fmt.Errorf("inconsistent string counts max=%d actual=%d", maxCount, count)
	}

	textLen := count*2 - 2
	advance := count * 2
	if count%2 != 0 {
		advance += 2
	}
	start := offset + 12
	if start+advance > len(stub) {
		return "", 0, fmt.Errorf("string text out of bounds at %d", start)
	}
	return encoding.ParseUTF16(stub[start : start+textLen]), start + advance, nil
}
