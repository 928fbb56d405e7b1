package types

import (
	"errors"

	"github.com/croxford/smbls/internal/encoding"
)

// ReadRequest reads from a pipe handle. Only the handle field is patched;
// pipes always read at offset zero.
type ReadRequest struct {
	Length uint32
	Offset uint64
	FileID FileID
}

// NewReadRequest builds a READ for up to length bytes.
func NewReadRequest(fileID FileID, offset uint64, length uint32) *ReadRequest {
	return &ReadRequest{Length: length, Offset: offset, FileID: fileID}
}

// Marshal serializes the 49-byte READ body.
func (r *ReadRequest) Marshal() []byte {
	buf := make([]byte, 49)
	encoding.PutUint16(buf[0:2], 49) // structure size
	buf[2] = 0x50                    // expected read response data offset
	encoding.PutUint32(buf[4:8], r.Length)
	encoding.PutUint64(buf[8:16], r.Offset)
	copy(buf[16:32], r.FileID.Marshal())
	return buf
}

// ReadResponse carries the data returned by READ.
type ReadResponse struct {
	Data []byte
}

// Unmarshal parses a READ response body; the data offset is counted from
// the start of the SMB2 header.
func (r *ReadResponse) Unmarshal(buf []byte) error {
	if len(buf) < 16 {
		return errors.New("short buffer for read response")
	}
	if encoding.Uint16(buf[0:2]) != 17 {
		return errors.New("bad read response structure size")
	}
	dataOffset := int(buf[2]) - HeaderSize
	dataLen := int(encoding.Uint32(buf[4:8]))
	if dataLen == 0 {
		return nil
	}
	if dataOffset < 0 || dataOffset+dataLen > len(buf) {
		return errors.New("read response data out of bounds")
	}
	r.Data = append([]byte(nil), buf[dataOffset:dataOffset+dataLen]...)
	return nil
}

// WriteRequest writes a payload to a pipe handle. The length and handle
// fields are patched; the payload is appended after the fixed body.
type WriteRequest struct {
	Offset uint64
	FileID FileID
	Data   []byte
}

// NewWriteRequest builds a WRITE carrying data.
func NewWriteRequest(fileID FileID, offset uint64, data []byte) *WriteRequest {
	return &WriteRequest{Offset: offset, FileID: fileID, Data: data}
}

// Marshal serializes the WRITE body: 48 fixed bytes, one buffer byte
// position, then the payload.
func (r *WriteRequest) Marshal() []byte {
	buf := make([]byte, 49+len(r.Data))
	encoding.PutUint16(buf[0:2], 49)            // structure size
	encoding.PutUint16(buf[2:4], HeaderSize+49) // data offset
	encoding.PutUint32(buf[4:8], uint32(len(r.Data)))
	encoding.PutUint64(buf[8:16], r.Offset)
	copy(buf[16:32], r.FileID.Marshal())
	copy(buf[49:], r.Data)
	return buf
}

// WriteResponse reports how much the server accepted.
type WriteResponse struct {
	Count uint32
}

// Unmarshal parses a WRITE response body.
func (r *WriteResponse) Unmarshal(buf []byte) error {
	if len(buf) < 16 {
		return errors.New("short buffer for write response")
	}
	if encoding.Uint16(buf[0:2]) != 17 {
		return errors.New("bad write response structure size")
	}
	r.Count = encoding.Uint32(buf[4:8])
	return nil
}
