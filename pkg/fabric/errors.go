package fabric

// Error is the closed taxonomy of fabric-level failures.
// The zero value is not a valid error; callers distinguish success from
// failure via the surrounding Result/Ack struct, not via Error("").
type Error string

const (
	// ErrNoRoute means the routing layer could not map the target;
	// fabric-level, non-retryable at this node.
	ErrNoRoute Error = "no_route"
	// ErrCookieNotFound means a reply arrived for a conversation no longer
	// tracked; dropped at the initiator.
	ErrCookieNotFound Error = "cookie_not_found"
	// ErrBadVNodeStatus means the target vnode is bootstrapping or handing
	// off and cannot serve the request; the caller may retry later.
	ErrBadVNodeStatus Error = "bad_vnode_status"
	// ErrNotReady is transient and retryable with backoff.
	ErrNotReady Error = "not_ready"
	// ErrSyncInterrupted means the peer aborted a sync; the initiator
	// discards partial progress since sync is idempotent via the version
	// vector exchanged in SyncFin.
	ErrSyncInterrupted Error = "sync_interrupted"
	// ErrStorageError means the underlying engine failed; fatal for the
	// operation that triggered it.
	ErrStorageError Error = "storage_error"
)

func (e Error) Error() string { return string(e) }
