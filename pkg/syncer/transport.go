// Package syncer drives anti-entropy synchronization between vnode replicas:
// the SyncStart -> {SyncSend -> SyncAck}* -> SyncFin conversation defined by
// pkg/fabric. The background driver loop is grounded on the corpus's own
// cluster health monitor (periodic ticker, context-cancelled background
// goroutine, callback on outcome) rather than on anything sync-specific, since
// that shape is the idiom the corpus uses for "keep doing this to a changing
// set of peers until told to stop."
package syncer

import (
	"context"

	"github.com/fabricdb/corekv/pkg/fabric"
)

// Transport delivers a fabric message to a peer and returns its correlated
// reply. How bytes actually reach the peer process is deliberately out of
// scope here; callers wire this to their own RPC or networking layer.
type Transport interface {
	Send(ctx context.Context, peer string, msg fabric.Message) (fabric.Message, error)
}
