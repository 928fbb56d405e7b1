package types

import (
	"errors"

	"github.com/croxford/smbls/internal/encoding"
)

// FileID is the opaque 16-byte handle returned by CREATE. Both halves are
// echoed verbatim into READ, WRITE, IOCTL and CLOSE.
type FileID struct {
	Persistent [8]byte
	Volatile   [8]byte
}

// Marshal serializes the handle.
func (f *FileID) Marshal() []byte {
	buf := make([]byte, 16)
	copy(buf[0:8], f.Persistent[:])
	copy(buf[8:16], f.Volatile[:])
	return buf
}

// Unmarshal reads the handle from buf.
func (f *FileID) Unmarshal(buf []byte) error {
	if len(buf) < 16 {
		return errors.New("short buffer for file id")
	}
	copy(f.Persistent[:], buf[0:8])
	copy(f.Volatile[:], buf[8:16])
	return nil
}

// Impersonation level sent in every CREATE.
const impersonationLevel = 2 // SECURITY_IMPERSONATION

// CreateRequest opens a file or pipe. The name length field is patched
// from the encoded name.
type CreateRequest struct {
	DesiredAccess     AccessMask
	FileAttributes    uint32
	ShareAccess       ShareAccess
	CreateDisposition CreateDisposition
	CreateOptions     uint32
	Name              []byte // UTF-16LE, no leading backslash
}

// NewPipeCreateRequest opens a named pipe on IPC$. Pipes take zero file
// attributes and no create options, unlike regular files.
func NewPipeCreateRequest(name []byte, access AccessMask) *CreateRequest {
	return &CreateRequest{
		DesiredAccess:     access,
		ShareAccess:       FileShareRead | FileShareWrite,
		CreateDisposition: FileOpen,
		Name:              name,
	}
}

// Marshal serializes the request: 56 fixed bytes, then the name. CREATE
// requires at least one buffer byte even for an empty name.
func (r *CreateRequest) Marshal() []byte {
	nameLen := len(r.Name)
	bodyLen := 56 + nameLen
	if nameLen == 0 {
		bodyLen++
	}
	buf := make([]byte, bodyLen)
	encoding.PutUint16(buf[0:2], 57) // structure size
	encoding.PutUint32(buf[4:8], impersonationLevel)
	encoding.PutUint32(buf[24:28], uint32(r.DesiredAccess))
	encoding.PutUint32(buf[28:32], r.FileAttributes)
	encoding.PutUint32(buf[32:36], uint32(r.ShareAccess))
	encoding.PutUint32(buf[36:40], uint32(r.CreateDisposition))
	encoding.PutUint32(buf[40:44], r.CreateOptions)
	encoding.PutUint16(buf[44:46], HeaderSize+56) // name offset
	encoding.PutUint16(buf[46:48], uint16(nameLen))
	copy(buf[56:], r.Name)
	return buf
}

// CreateResponse yields the file handle used by every later step.
type CreateResponse struct {
	OplockLevel    uint8
	CreateAction   uint32
	EndOfFile      uint64
	FileAttributes uint32
	FileID         FileID
}

// Unmarshal parses a CREATE response body.
func (r *CreateResponse) Unmarshal(buf []byte) error {
	if len(buf) < 88 {
		return errors.New("short buffer for create response")
	}
	if encoding.Uint16(buf[0:2]) != 89 {
		return errors.New("bad create response structure size")
	}
	r.OplockLevel = buf[2]
	r.CreateAction = encoding.Uint32(buf[4:8])
	r.EndOfFile = encoding.Uint64(buf[48:56])
	r.FileAttributes = encoding.Uint32(buf[56:60])
	return r.FileID.Unmarshal(buf[64:80])
}

// CloseRequest releases a file handle. Only the handle field varies.
type CloseRequest struct {
	FileID FileID
}

// Marshal serializes the 24-byte CLOSE body.
func (r *CloseRequest) Marshal() []byte {
	buf := make([]byte, 24)
	encoding.PutUint16(buf[0:2], 24) // structure size
	copy(buf[8:24], r.FileID.Marshal())
	return buf
}
