package encoding

import "unicode/utf16"

// UTF16 encodes s as UTF-16LE without a terminator. SMB2 carries all
// string fields (share paths, pipe names, NTLM identity fields) this way.
func UTF16(s string) []byte {
	units := utf16.Encode([]rune(s))
	b := make([]byte, len(units)*2)
	for i, u := range units {
		b[i*2] = byte(u)
		b[i*2+1] = byte(u >> 8)
	}
	return b
}

// UTF16Null encodes s as UTF-16LE with a terminating null pair.
func UTF16Null(s string) []byte {
	return append(UTF16(s), 0, 0)
}

// ParseUTF16 decodes UTF-16LE bytes, dropping a trailing odd byte and any
// terminating null units.
func ParseUTF16(b []byte) string {
	if len(b)%2 != 0 {
		b = b[:len(b)-1]
	}
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = uint16(b[i*2]) | uint16(b[i*2+1])<<8
	}
	for len(units) > 0 && units[len(units)-1] == 0 {
		units = units[:len(units)-1]
	}
	return string(utf16.Decode(units))
}
