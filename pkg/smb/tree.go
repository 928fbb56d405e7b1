package smb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/croxford/smbls/internal/encoding"
	"github.com/croxford/smbls/pkg/smb/types"
)

// Tree is one connected share. All file operations ride on a tree id.
type Tree struct {
	session *Session
	id      uint32
	name    string
	typ     types.TreeType
}

// Name returns the share path used to connect, e.g. \\host\IPC$.
func (t *Tree) Name() string { return t.name }

// IsPipe reports whether the share is a named pipe share.
func (t *Tree) IsPipe() bool { return t.typ == types.TreeTypePipe }

// TreeConnect binds a share by name. The share may be bare ("IPC$") or a
// full UNC path; bare names are qualified with the connected host.
func (s *Session) TreeConnect(ctx context.Context, share string) (*Tree, error) {
	if !s.authenticated {
		return nil, ErrNotConnected
	}
	path := share
	if !strings.HasPrefix(path, `\\`) {
		path = fmt.Sprintf(`\\%s\%s`, s.transport.RemoteHost(), share)
	}

	req := types.NewTreeConnectRequest(encoding.UTF16(path))
	header, payload, err := s.request(types.CommandTreeConnect, 0, req.Marshal(), types.StatusSuccess)
	if err != nil {
		return nil, fmt.Errorf("tree connect %s: %w", path, err)
	}

	var resp types.TreeConnectResponse
	if err := resp.Unmarshal(payload); err != nil {
		return nil, fmt.Errorf("tree connect %s: %w", path, err)
	}
	log.Debugf("connected %s as tree %d (type 0x%02X)\n", path, header.TreeID, uint8(resp.Type))

	return &Tree{
		session: s,
		id:      header.TreeID,
		name:    path,
		typ:     resp.Type,
	}, nil
}

// Disconnect releases the tree id. The tree must not be used afterwards.
func (t *Tree) Disconnect(ctx context.Context) error {
	if t.session == nil {
		return errors.New("tree already disconnected")
	}
	var req types.TreeDisconnectRequest
	_, _, err := t.session.request(types.CommandTreeDisc, t.id, req.Marshal(), types.StatusSuccess)
	if err != nil {
		return fmt.Errorf("tree disconnect %s: %w", t.name, err)
	}
	t.session = nil
	return nil
}
