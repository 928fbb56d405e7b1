package srvsvc

import (
	"context"

	"github.com/croxford/smbls/pkg/smb"
)

// ListShares runs one complete enumeration against the target described by
// opts: dial, negotiate, authenticate, connect IPC$, open the srvsvc pipe,
// bind, NetShareEnumAll, then tear everything down. The connection never
// outlives the call; any failure closes it and returns no partial result.
func ListShares(ctx context.Context, opts smb.Options) ([]ShareInfo, error) {
	client, err := smb.Dial(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer client.Close(ctx)

	if err := client.Authenticate(ctx); err != nil {
		return nil, err
	}

	tree, err := client.IPCTree(ctx)
	if err != nil {
		return nil, err
	}
	defer tree.Disconnect(ctx)

	pipe, err := tree.OpenPipe(ctx, PipeName)
	if err != nil {
		return nil, err
	}
	defer pipe.Close(ctx)

	rpc := NewClient(pipe)
	if err := rpc.Bind(ctx); err != nil {
		return nil, err
	}
	return rpc.NetShareEnumAll(ctx, opts.Host)
}
