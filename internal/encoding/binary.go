// Package encoding provides the byte-order and string helpers shared by the
// SMB2 and DCERPC codecs. Message bodies are little-endian throughout; only
// the stream framing prefix is big-endian.
package encoding

import "encoding/binary"

// PutUint16 writes v into b in little-endian order.
func PutUint16(b []byte, v uint16) {
	binary.LittleEndian.PutUint16(b, v)
}

// PutUint32 writes v into b in little-endian order.
func PutUint32(b []byte, v uint32) {
	binary.LittleEndian.PutUint32(b, v)
}

// PutUint64 writes v into b in little-endian order.
func PutUint64(b []byte, v uint64) {
	binary.LittleEndian.PutUint64(b, v)
}

// Uint16 reads a little-endian uint16 from b.
func Uint16(b []byte) uint16 {
	return binary.LittleEndian.Uint16(b)
}

// Uint32 reads a little-endian uint32 from b.
func Uint32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

// Uint64 reads a little-endian uint64 from b.
func Uint64(b []byte) uint64 {
	return binary.LittleEndian.Uint64(b)
}

// PutUint32BE writes v into b in big-endian order. Only the 4-byte length
// prefix of the direct TCP framing uses this.
func PutUint32BE(b []byte, v uint32) {
	binary.BigEndian.PutUint32(b, v)
}

// Uint32BE reads a big-endian uint32 from b.
func Uint32BE(b []byte) uint32 {
	return binary.BigEndian.Uint32(b)
}
