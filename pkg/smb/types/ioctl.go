package types

import (
	"errors"

	"github.com/croxford/smbls/internal/encoding"
)

// FSCTLPipeTransceive writes to a pipe and reads the reply in one round
// trip; it is how the RPC call travels once the pipe is bound.
const FSCTLPipeTransceive uint32 = 0x0011C017

// IoctlIsFsctl marks the control code as a filesystem control.
const IoctlIsFsctl uint32 = 0x00000001

// IoctlRequest issues a device control against a file handle. The input
// length and handle fields are patched; the input payload is appended
// after the fixed body.
type IoctlRequest struct {
	CtlCode   uint32
	FileID    FileID
	Input     []byte
	MaxOutput uint32
}

// NewTransceiveRequest builds a pipe transceive carrying an RPC PDU.
func NewTransceiveRequest(fileID FileID, input []byte) *IoctlRequest {
	return &IoctlRequest{
		CtlCode:   FSCTLPipeTransceive,
		FileID:    fileID,
		Input:     input,
		MaxOutput: 65536,
	}
}

// Marshal serializes the IOCTL body: 56 fixed bytes, then the input.
func (r *IoctlRequest) Marshal() []byte {
	buf := make([]byte, 56+len(r.Input))
	encoding.PutUint16(buf[0:2], 57) // structure size
	encoding.PutUint32(buf[4:8], r.CtlCode)
	copy(buf[8:24], r.FileID.Marshal())
	encoding.PutUint32(buf[24:28], HeaderSize+56) // input offset
	encoding.PutUint32(buf[28:32], uint32(len(r.Input)))
	// 32:40 max input response / output offset for reserved output
	encoding.PutUint32(buf[36:40], HeaderSize+56)
	encoding.PutUint32(buf[44:48], r.MaxOutput)
	encoding.PutUint32(buf[48:52], IoctlIsFsctl)
	copy(buf[56:], r.Input)
	return buf
}

// IoctlResponse carries the output payload of a device control. The output
// is located through the offset/count pair at fixed positions in the body.
type IoctlResponse struct {
	CtlCode uint32
	FileID  FileID
	Output  []byte
}

// Unmarshal parses an IOCTL response body.
func (r *IoctlResponse) Unmarshal(buf []byte) error {
	if len(buf) < 48 {
		return errors.New("short buffer for ioctl response")
	}
	if encoding.Uint16(buf[0:2]) != 49 {
		return errors.New("bad ioctl response structure size")
	}
	r.CtlCode = encoding.Uint32(buf[4:8])
	if err := r.FileID.Unmarshal(buf[8:24]); err != nil {
		return err
	}
	outOffset := int(encoding.Uint32(buf[32:36])) - HeaderSize
	outCount := int(encoding.Uint32(buf[36:40]))
	if outCount == 0 {
		return nil
	}
	if outOffset < 0 || outOffset+outCount > len(buf) {
		return errors.New("ioctl response output out of bounds")
	}
	r.Output = append([]byte(nil), buf[outOffset:outOffset+outCount]...)
	return nil
}
