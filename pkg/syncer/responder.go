package syncer

import (
	"fmt"
	"sync"

	"github.com/fabricdb/corekv/pkg/fabric"
	"github.com/fabricdb/corekv/pkg/storage"
)

// stream holds the server-side cursor for one in-flight conversation: the
// position in the operation log the responder has streamed up to.
type stream struct {
	it     *storage.LogIterator
	ns     *storage.Namespace
	vnode  fabric.VNodeId
	clocks fabric.VersionVector
}

// Responder drives the responder side of anti-entropy. It walks a
// namespace's operation log from the requested origin and streams the
// current value of every logged key, skipping entries whose key has since
// been deleted from the main store (the log only records that a key
// changed, not what it changed to).
//
// The origin is SyncStart.Target, or prefix 0 when no target is given; log
// entries under other prefixes are not streamed. Each stream starts at seq 0:
// ClocksInPeer is not used to skip entries the peer already has, and is
// echoed back unchanged in SyncFin.
type Responder struct {
	namespaceFor func(fabric.VNodeId) *storage.Namespace
	codec        *fabric.Codec

	mu      sync.Mutex
	streams map[fabric.Cookie]*stream
}

// NewResponder constructs a Responder ready to Handle messages.
func NewResponder(namespaceFor func(fabric.VNodeId) *storage.Namespace, codec *fabric.Codec) *Responder {
	return &Responder{
		namespaceFor: namespaceFor,
		codec:        codec,
		streams:      make(map[fabric.Cookie]*stream),
	}
}

// Handle processes one incoming sync message and returns the reply to send
// back to the initiator.
func (r *Responder) Handle(msg fabric.Message) (fabric.Message, error) {
	switch m := msg.(type) {
	case fabric.SyncStart:
		ns := r.namespaceFor(m.VNode)
		if ns == nil {
			return fabric.SyncFin{VNode: m.VNode, Cookie: m.Cookie, Result: fabric.SyncFinResult{Err: fabric.ErrBadVNodeStatus}}, nil
		}

		var origin uint64
		if m.Target != nil {
			origin = uint64(*m.Target)
		}

		st := &stream{it: ns.LogIterator(origin, 0), ns: ns, vnode: m.VNode, clocks: m.ClocksInPeer}
		r.mu.Lock()
		r.streams[m.Cookie] = st
		r.mu.Unlock()
		return r.advance(m.Cookie, st)

	case fabric.SyncAck:
		r.mu.Lock()
		st, ok := r.streams[m.Cookie]
		r.mu.Unlock()
		if !ok {
			return nil, fmt.Errorf("syncer: sync_ack for unknown cookie %d", m.Cookie)
		}
		return r.advance(m.Cookie, st)

	default:
		return nil, fmt.Errorf("syncer: responder cannot handle %T", msg)
	}
}

// advance emits the next non-deleted logged key as a SyncSend, or closes the
// stream and returns SyncFin once the log is exhausted.
func (r *Responder) advance(cookie fabric.Cookie, st *stream) (fabric.Message, error) {
	for st.it.Next() {
		_, seq := st.it.LogKey()
		key := append([]byte(nil), st.it.Value()...)

		var raw []byte
		found, err := st.ns.Get(key, func(v []byte) { raw = append([]byte(nil), v...) })
		if err != nil {
			r.closeStream(cookie, st)
			return nil, fmt.Errorf("syncer: lookup key %q: %w", key, err)
		}
		if !found {
			continue
		}

		value, err := r.codec.DecodeCube(raw)
		if err != nil {
			r.closeStream(cookie, st)
			return nil, fmt.Errorf("syncer: decode value for key %q: %w", key, err)
		}

		return fabric.SyncSend{VNode: st.vnode, Cookie: cookie, Seq: seq, Key: key, Value: value}, nil
	}

	err := st.it.Err()
	r.closeStream(cookie, st)
	if err != nil {
		return fabric.SyncFin{VNode: st.vnode, Cookie: cookie, Result: fabric.SyncFinResult{Err: fabric.ErrStorageError}}, nil
	}
	return fabric.SyncFin{VNode: st.vnode, Cookie: cookie, Result: fabric.SyncFinResult{NewClocksInPeer: st.clocks}}, nil
}

func (r *Responder) closeStream(cookie fabric.Cookie, st *stream) {
	st.it.Close()
	r.mu.Lock()
	delete(r.streams, cookie)
	r.mu.Unlock()
}
