package fabric

// MsgType tags each message variant in the closed fabric family.
type MsgType string

const (
	MsgRemoteGet    MsgType = "remote_get"
	MsgRemoteGetAck MsgType = "remote_get_ack"
	MsgRemoteSet    MsgType = "remote_set"
	MsgRemoteSetAck MsgType = "remote_set_ack"
	MsgSyncStart    MsgType = "sync_start"
	MsgSyncSend     MsgType = "sync_send"
	MsgSyncAck      MsgType = "sync_ack"
	MsgSyncFin      MsgType = "sync_fin"
	MsgDHTAE        MsgType = "dht_ae"
	MsgDHTSync      MsgType = "dht_sync"
	// MsgUnknown exists only so Decode has somewhere to land a tag outside
	// the closed set above; Encode never produces it.
	MsgUnknown MsgType = "unknown"
)

// Category is one of the three protocol categories a message belongs to,
// plus Unknown for the forward-compatibility sentinel.
type Category int

const (
	CategoryCRUD Category = iota
	CategorySync
	CategoryDHT
	CategoryUnknown
)

// Category derives t's protocol category purely from the variant tag.
func (t MsgType) Category() Category {
	switch t {
	case MsgRemoteGet, MsgRemoteGetAck, MsgRemoteSet, MsgRemoteSetAck:
		return CategoryCRUD
	case MsgSyncStart, MsgSyncSend, MsgSyncAck, MsgSyncFin:
		return CategorySync
	case MsgDHTAE, MsgDHTSync:
		return CategoryDHT
	default:
		return CategoryUnknown
	}
}

// Message is implemented by every concrete payload type in the fabric
// family, including the Unknown sentinel.
type Message interface {
	Type() MsgType
}

// RemoteGet requests the conflict container stored for Key in VNode.
type RemoteGet struct {
	VNode  VNodeId
	Cookie Cookie
	Key    []byte
}

func (RemoteGet) Type() MsgType { return MsgRemoteGet }

// RemoteGetResult is the outcome carried by RemoteGetAck.
type RemoteGetResult struct {
	Value Cube
	Err   Error // zero value means success
}

// RemoteGetAck answers a RemoteGet.
type RemoteGetAck struct {
	VNode  VNodeId
	Cookie Cookie
	Result RemoteGetResult
}

func (RemoteGetAck) Type() MsgType { return MsgRemoteGetAck }

// RemoteSet asks the responder to merge Value into the conflict container
// stored for Key in VNode. If Reply is false, no acknowledgement is sent.
// If Reply is true and ReplyResult is false, the ack carries no value. If
// both are true, the ack carries the pre-merge container.
type RemoteSet struct {
	VNode       VNodeId
	Cookie      Cookie
	Key         []byte
	Value       Cube
	Reply       bool
	ReplyResult bool
}

func (RemoteSet) Type() MsgType { return MsgRemoteSet }

// RemoteSetResult is the outcome carried by RemoteSetAck. PreviousValue is
// nil unless the request had both Reply and ReplyResult set.
type RemoteSetResult struct {
	PreviousValue Cube
	Err           Error
}

// RemoteSetAck answers a RemoteSet when one was requested.
type RemoteSetAck struct {
	VNode  VNodeId
	Cookie Cookie
	Result RemoteSetResult
}

func (RemoteSetAck) Type() MsgType { return MsgRemoteSetAck }

// SyncStart opens an anti-entropy conversation: the initiator tells the
// peer what it believes the peer has already seen (ClocksInPeer), and
// optionally narrows the sync to one node's logical stream (Target).
type SyncStart struct {
	VNode        VNodeId
	Cookie       Cookie
	ClocksInPeer VersionVector
	Target       *NodeId
}

func (SyncStart) Type() MsgType { return MsgSyncStart }

// SyncSend streams one log entry beyond what the initiator already has,
// tagged with a monotonically increasing per-stream Seq.
type SyncSend struct {
	VNode  VNodeId
	Cookie Cookie
	Seq    uint64
	Key    []byte
	Value  Cube
}

func (SyncSend) Type() MsgType { return MsgSyncSend }

// SyncAck acknowledges receipt up to Seq, used by the peer for backpressure
// and progress tracking. The protocol permits selective or cumulative ack
// semantics; this type only carries the watermark.
type SyncAck struct {
	VNode  VNodeId
	Cookie Cookie
	Seq    uint64
}

func (SyncAck) Type() MsgType { return MsgSyncAck }

// SyncFinResult is the outcome carried by SyncFin: either the advanced
// version vector to merge into the initiator's state, or one of the closed
// sync failure kinds.
type SyncFinResult struct {
	NewClocksInPeer VersionVector // nil on error
	Err             Error
}

// SyncFin closes an anti-entropy conversation once the peer has exhausted
// its stream.
type SyncFin struct {
	VNode  VNodeId
	Cookie Cookie
	Result SyncFinResult
}

func (SyncFin) Type() MsgType { return MsgSyncFin }

// DHTAE is an anti-entropy probe carrying the sender's DHT version vector.
type DHTAE struct {
	VV VersionVector
}

func (DHTAE) Type() MsgType { return MsgDHTAE }

// DHTSync answers a DHTAE with an opaque serialized delta when the
// responder's knowledge is more recent.
type DHTSync struct {
	Payload []byte
}

func (DHTSync) Type() MsgType { return MsgDHTSync }

// Unknown is the sentinel any unrecognized wire tag decodes to. It must
// never be produced by Encode, only observed after Decode.
type Unknown struct{}

func (Unknown) Type() MsgType { return MsgUnknown }
