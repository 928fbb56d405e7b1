package smb

import (
	"context"
	"errors"
	"fmt"

	"github.com/croxford/smbls/internal/encoding"
	"github.com/croxford/smbls/pkg/smb/types"
)

// File is an open handle on a tree, usually a named pipe under IPC$.
type File struct {
	tree   *Tree
	id     types.FileID
	name   string
	closed bool
}

// Name returns the path the handle was opened with, relative to the tree.
func (f *File) Name() string { return f.name }

// OpenPipe opens a named pipe for reading and writing. The name is given
// without a leading backslash ("srvsvc").
func (t *Tree) OpenPipe(ctx context.Context, name string) (*File, error) {
	if t.session == nil {
		return nil, errors.New("tree is disconnected")
	}
	access := types.FileReadData | types.FileWriteData |
		types.FileAppendData | types.FileReadEA | types.FileWriteEA |
		types.FileReadAttributes | types.FileWriteAttributes |
		types.ReadControl | types.Synchronize

	req := types.NewPipeCreateRequest(encoding.UTF16(name), access)
	_, payload, err := t.session.request(types.CommandCreate, t.id, req.Marshal(), types.StatusSuccess)
	if err != nil {
		return nil, fmt.Errorf("open pipe %s: %w", name, err)
	}

	var resp types.CreateResponse
	if err := resp.Unmarshal(payload); err != nil {
		return nil, fmt.Errorf("open pipe %s: %w", name, err)
	}
	log.Debugf("opened pipe %s\n", name)

	return &File{tree: t, id: resp.FileID, name: name}, nil
}

// Write sends data to the pipe at offset zero and verifies the server
// accepted all of it.
func (f *File) Write(ctx context.Context, data []byte) error {
	if f.closed {
		return errors.New("file is closed")
	}
	req := types.NewWriteRequest(f.id, 0, data)
	_, payload, err := f.tree.session.request(types.CommandWrite, f.tree.id, req.Marshal(), types.StatusSuccess)
	if err != nil {
		return fmt.Errorf("write %s: %w", f.name, err)
	}
	var resp types.WriteResponse
	if err := resp.Unmarshal(payload); err != nil {
		return fmt.Errorf("write %s: %w", f.name, err)
	}
	if int(resp.Count) != len(data) {
		return fmt.Errorf("write %s: short write (%d of %d bytes)", f.name, resp.Count, len(data))
	}
	return nil
}

// Read reads up to maxLen bytes from the pipe at offset zero.
func (f *File) Read(ctx context.Context, maxLen uint32) ([]byte, error) {
	if f.closed {
		return nil, errors.New("file is closed")
	}
	req := types.NewReadRequest(f.id, 0, maxLen)
	_, payload, err := f.tree.session.request(types.CommandRead, f.tree.id, req.Marshal(), types.StatusSuccess)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.name, err)
	}
	var resp types.ReadResponse
	if err := resp.Unmarshal(payload); err != nil {
		return nil, fmt.Errorf("read %s: %w", f.name, err)
	}
	return resp.Data, nil
}

// Transceive runs FSCTL_PIPE_TRANSCEIVE: one write and the matching read
// in a single round trip.
func (f *File) Transceive(ctx context.Context, input []byte) ([]byte, error) {
	if f.closed {
		return nil, errors.New("file is closed")
	}
	req := types.NewTransceiveRequest(f.id, input)
	_, payload, err := f.tree.session.request(types.CommandIoctl, f.tree.id, req.Marshal(), types.StatusSuccess)
	if err != nil {
		return nil, fmt.Errorf("transceive %s: %w", f.name, err)
	}
	var resp types.IoctlResponse
	if err := resp.Unmarshal(payload); err != nil {
		return nil, fmt.Errorf("transceive %s: %w", f.name, err)
	}
	return resp.Output, nil
}

// Close releases the handle. Safe to call more than once.
func (f *File) Close(ctx context.Context) error {
	if f.closed {
		return nil
	}
	req := types.CloseRequest{FileID: f.id}
	_, _, err := f.tree.session.request(types.CommandClose, f.tree.id, req.Marshal(), types.StatusSuccess)
	if err != nil {
		return fmt.Errorf("close %s: %w", f.name, err)
	}
	f.closed = true
	return nil
}
