package nodeserver

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fabricdb/corekv/pkg/dht"
	"github.com/fabricdb/corekv/pkg/fabric"
	"github.com/fabricdb/corekv/pkg/metrics"
	"github.com/fabricdb/corekv/pkg/storage"
	"github.com/fabricdb/corekv/pkg/syncer"
)

// Server answers fabric messages addressed to this node: CRUD reads and
// writes go straight to a Namespace, Sync and DHT messages are routed to the
// responders that already know how to drive those conversations.
//
// A RemoteSet replaces the stored container for its key with the encoded
// Value; it is not merged with the container already stored.
type Server struct {
	NodeID       fabric.NodeId
	NamespaceFor func(fabric.VNodeId) *storage.Namespace
	Codec        *fabric.Codec
	Metrics      *metrics.Metrics
	Sync         *syncer.Responder
	DHT          *dht.Responder

	mu      sync.Mutex
	logSeqs map[fabric.VNodeId]*atomic.Uint64
}

// New constructs a Server ready to Handle messages.
func New(nodeID fabric.NodeId, namespaceFor func(fabric.VNodeId) *storage.Namespace, codec *fabric.Codec, m *metrics.Metrics, syncResponder *syncer.Responder, dhtResponder *dht.Responder) *Server {
	return &Server{
		NodeID:       nodeID,
		NamespaceFor: namespaceFor,
		Codec:        codec,
		Metrics:      m,
		Sync:         syncResponder,
		DHT:          dhtResponder,
		logSeqs:      make(map[fabric.VNodeId]*atomic.Uint64),
	}
}

// Handle dispatches msg by its protocol category and returns the reply to
// send back to the caller.
func (s *Server) Handle(msg fabric.Message) (fabric.Message, error) {
	switch msg.Type().Category() {
	case fabric.CategoryCRUD:
		return s.handleCRUD(msg)
	case fabric.CategorySync:
		return s.Sync.Handle(msg)
	case fabric.CategoryDHT:
		return s.DHT.Handle(msg)
	default:
		return nil, fmt.Errorf("nodeserver: unroutable message %T", msg)
	}
}

func (s *Server) handleCRUD(msg fabric.Message) (fabric.Message, error) {
	switch m := msg.(type) {
	case fabric.RemoteGet:
		return s.handleGet(m), nil
	case fabric.RemoteSet:
		return s.handleSet(m), nil
	default:
		return nil, fmt.Errorf("nodeserver: unexpected crud message %T", msg)
	}
}

func (s *Server) handleGet(m fabric.RemoteGet) fabric.Message {
	start := time.Now()
	ns := s.NamespaceFor(m.VNode)
	if ns == nil {
		s.Metrics.RecordStorageOp("get", "bad_vnode", time.Since(start).Seconds())
		return fabric.RemoteGetAck{VNode: m.VNode, Cookie: m.Cookie, Result: fabric.RemoteGetResult{Err: fabric.ErrBadVNodeStatus}}
	}

	var value fabric.Cube
	var decodeErr error
	found, err := ns.Get(m.Key, func(raw []byte) {
		value, decodeErr = s.Codec.DecodeCube(append([]byte(nil), raw...))
	})
	switch {
	case err != nil:
		s.Metrics.RecordStorageOp("get", "error", time.Since(start).Seconds())
		return fabric.RemoteGetAck{VNode: m.VNode, Cookie: m.Cookie, Result: fabric.RemoteGetResult{Err: fabric.ErrStorageError}}
	case decodeErr != nil:
		s.Metrics.RecordStorageOp("get", "error", time.Since(start).Seconds())
		return fabric.RemoteGetAck{VNode: m.VNode, Cookie: m.Cookie, Result: fabric.RemoteGetResult{Err: fabric.ErrStorageError}}
	case !found:
		s.Metrics.RecordStorageOp("get", "not_found", time.Since(start).Seconds())
		return fabric.RemoteGetAck{VNode: m.VNode, Cookie: m.Cookie}
	default:
		s.Metrics.RecordStorageOp("get", "ok", time.Since(start).Seconds())
		return fabric.RemoteGetAck{VNode: m.VNode, Cookie: m.Cookie, Result: fabric.RemoteGetResult{Value: value}}
	}
}

func (s *Server) handleSet(m fabric.RemoteSet) fabric.Message {
	start := time.Now()
	ns := s.NamespaceFor(m.VNode)
	if ns == nil {
		s.Metrics.RecordStorageOp("set", "bad_vnode", time.Since(start).Seconds())
		return s.setAck(m, fabric.RemoteSetResult{Err: fabric.ErrBadVNodeStatus})
	}

	var previous fabric.Cube
	if m.Reply && m.ReplyResult {
		ns.Get(m.Key, func(raw []byte) {
			previous, _ = s.Codec.DecodeCube(append([]byte(nil), raw...))
		})
	}

	encoded, err := s.Codec.EncodeCube(m.Value)
	if err != nil {
		s.Metrics.RecordStorageOp("set", "error", time.Since(start).Seconds())
		return s.setAck(m, fabric.RemoteSetResult{Err: fabric.ErrStorageError})
	}

	b := ns.BatchNew(2)
	b.Set(m.Key, encoded)
	b.LogSet(uint64(s.NodeID), s.nextLogSeq(m.VNode), m.Key)
	if err := ns.BatchWrite(b); err != nil {
		s.Metrics.RecordStorageOp("set", "error", time.Since(start).Seconds())
		return s.setAck(m, fabric.RemoteSetResult{Err: fabric.ErrStorageError})
	}

	s.Metrics.RecordStorageOp("set", "ok", time.Since(start).Seconds())
	if !m.Reply {
		return nil
	}
	return s.setAck(m, fabric.RemoteSetResult{PreviousValue: previous})
}

func (s *Server) setAck(m fabric.RemoteSet, result fabric.RemoteSetResult) fabric.Message {
	return fabric.RemoteSetAck{VNode: m.VNode, Cookie: m.Cookie, Result: result}
}

// nextLogSeq hands out a monotonically increasing sequence number for vnode's
// log stream under this node's own origin prefix.
func (s *Server) nextLogSeq(vnode fabric.VNodeId) uint64 {
	s.mu.Lock()
	counter, ok := s.logSeqs[vnode]
	if !ok {
		counter = new(atomic.Uint64)
		s.logSeqs[vnode] = counter
	}
	s.mu.Unlock()
	return counter.Add(1)
}
