package syncer

import (
	"context"
	"fmt"

	"github.com/fabricdb/corekv/pkg/fabric"
)

// Initiator drives the initiator side of one anti-entropy conversation.
type Initiator struct {
	Transport Transport
	Cookies   *fabric.CookieAllocator
	// Apply persists one key/value pair received from the peer into local
	// storage. It is called once per SyncSend, in log order.
	Apply func(vnode fabric.VNodeId, key []byte, value fabric.Cube) error
}

// Run exchanges sync messages with peer for vnode until the peer signals
// completion, applying every received key/value pair via Apply. clocksInPeer
// is the initiator's belief of what the peer has already seen; it is opaque
// to this package and forwarded verbatim. Run returns the peer's advanced
// version vector on success.
func (in *Initiator) Run(ctx context.Context, peer string, vnode fabric.VNodeId, target *fabric.NodeId, clocksInPeer fabric.VersionVector) (fabric.VersionVector, error) {
	cookie := in.Cookies.Next()

	reply, err := in.Transport.Send(ctx, peer, fabric.SyncStart{
		VNode:        vnode,
		Cookie:       cookie,
		ClocksInPeer: clocksInPeer,
		Target:       target,
	})
	if err != nil {
		return nil, fmt.Errorf("syncer: sync_start to %s: %w", peer, err)
	}

	for {
		switch m := reply.(type) {
		case fabric.SyncSend:
			if m.Cookie != cookie {
				return nil, fmt.Errorf("syncer: cookie mismatch in sync_send from %s", peer)
			}
			if err := in.Apply(vnode, m.Key, m.Value); err != nil {
				return nil, fmt.Errorf("syncer: apply key %q from %s: %w", m.Key, peer, err)
			}
			reply, err = in.Transport.Send(ctx, peer, fabric.SyncAck{VNode: vnode, Cookie: cookie, Seq: m.Seq})
			if err != nil {
				return nil, fmt.Errorf("syncer: sync_ack to %s: %w", peer, err)
			}

		case fabric.SyncFin:
			if m.Cookie != cookie {
				return nil, fmt.Errorf("syncer: cookie mismatch in sync_fin from %s", peer)
			}
			if m.Result.Err != "" {
				return nil, fmt.Errorf("syncer: %s reported %w", peer, m.Result.Err)
			}
			return m.Result.NewClocksInPeer, nil

		default:
			return nil, fmt.Errorf("syncer: unexpected %T from %s", reply, peer)
		}
	}
}
