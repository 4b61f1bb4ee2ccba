package fabric

import (
	"encoding/json"
	"fmt"
)

// Codec (de)serializes Messages to the wire envelope
// {type, vnode, cookie, payload}, the same shape as the corpus's
// cluster.BroadcastRequest{Path, Payload}. Cube and VersionVector are
// opaque to this package, so encoding/decoding them is delegated to the
// four function fields; DefaultCodec wires up the RawCube/RawVersionVector
// passthrough, and real deployments supply their own.
type Codec struct {
	EncodeCube func(Cube) ([]byte, error)
	DecodeCube func([]byte) (Cube, error)
	EncodeVV   func(VersionVector) ([]byte, error)
	DecodeVV   func([]byte) (VersionVector, error)
}

// DefaultCodec returns a Codec whose Cube/VersionVector fields round-trip
// through RawCube/RawVersionVector. It is good enough to exercise message
// plumbing in tests, not a substitute for a real collaborator's codec.
func DefaultCodec() *Codec {
	return &Codec{
		EncodeCube: func(c Cube) ([]byte, error) {
			if c == nil {
				return nil, nil
			}
			return c.MarshalBinary()
		},
		DecodeCube: func(b []byte) (Cube, error) {
			return RawCube(b), nil
		},
		EncodeVV: func(v VersionVector) ([]byte, error) {
			if v == nil {
				return nil, nil
			}
			return v.MarshalBinary()
		},
		DecodeVV: func(b []byte) (VersionVector, error) {
			return RawVersionVector(b), nil
		},
	}
}

type envelope struct {
	Type    MsgType         `json:"type"`
	VNode   VNodeId         `json:"vnode,omitempty"`
	Cookie  Cookie          `json:"cookie,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type remoteGetPayload struct {
	Key []byte `json:"key"`
}

type remoteGetAckPayload struct {
	Value []byte `json:"value,omitempty"`
	Found bool   `json:"found"`
	Err   Error  `json:"err,omitempty"`
}

type remoteSetPayload struct {
	Key         []byte `json:"key"`
	Value       []byte `json:"value"`
	Reply       bool   `json:"reply"`
	ReplyResult bool   `json:"reply_result"`
}

type remoteSetAckPayload struct {
	PreviousValue []byte `json:"previous_value,omitempty"`
	HasPrevious   bool   `json:"has_previous"`
	Err           Error  `json:"err,omitempty"`
}

type syncStartPayload struct {
	ClocksInPeer []byte  `json:"clocks_in_peer,omitempty"`
	Target       *NodeId `json:"target,omitempty"`
}

type syncSendPayload struct {
	Seq   uint64 `json:"seq"`
	Key   []byte `json:"key"`
	Value []byte `json:"value"`
}

type syncAckPayload struct {
	Seq uint64 `json:"seq"`
}

type syncFinPayload struct {
	NewClocksInPeer []byte `json:"new_clocks_in_peer,omitempty"`
	Err             Error  `json:"err,omitempty"`
}

type dhtAEPayload struct {
	VV []byte `json:"vv,omitempty"`
}

type dhtSyncPayload struct {
	Payload []byte `json:"payload,omitempty"`
}

// Encode serializes msg into the wire envelope.
func (c *Codec) Encode(msg Message) ([]byte, error) {
	env := envelope{Type: msg.Type()}

	var payload any
	switch m := msg.(type) {
	case RemoteGet:
		env.VNode, env.Cookie = m.VNode, m.Cookie
		payload = remoteGetPayload{Key: m.Key}
	case RemoteGetAck:
		env.VNode, env.Cookie = m.VNode, m.Cookie
		value, err := c.EncodeCube(m.Result.Value)
		if err != nil {
			return nil, fmt.Errorf("fabric: encode remote_get_ack value: %w", err)
		}
		payload = remoteGetAckPayload{Value: value, Found: m.Result.Value != nil, Err: m.Result.Err}
	case RemoteSet:
		env.VNode, env.Cookie = m.VNode, m.Cookie
		value, err := c.EncodeCube(m.Value)
		if err != nil {
			return nil, fmt.Errorf("fabric: encode remote_set value: %w", err)
		}
		payload = remoteSetPayload{Key: m.Key, Value: value, Reply: m.Reply, ReplyResult: m.ReplyResult}
	case RemoteSetAck:
		env.VNode, env.Cookie = m.VNode, m.Cookie
		prev, err := c.EncodeCube(m.Result.PreviousValue)
		if err != nil {
			return nil, fmt.Errorf("fabric: encode remote_set_ack previous value: %w", err)
		}
		payload = remoteSetAckPayload{PreviousValue: prev, HasPrevious: m.Result.PreviousValue != nil, Err: m.Result.Err}
	case SyncStart:
		env.VNode, env.Cookie = m.VNode, m.Cookie
		vv, err := c.EncodeVV(m.ClocksInPeer)
		if err != nil {
			return nil, fmt.Errorf("fabric: encode sync_start clocks: %w", err)
		}
		payload = syncStartPayload{ClocksInPeer: vv, Target: m.Target}
	case SyncSend:
		env.VNode, env.Cookie = m.VNode, m.Cookie
		value, err := c.EncodeCube(m.Value)
		if err != nil {
			return nil, fmt.Errorf("fabric: encode sync_send value: %w", err)
		}
		payload = syncSendPayload{Seq: m.Seq, Key: m.Key, Value: value}
	case SyncAck:
		env.VNode, env.Cookie = m.VNode, m.Cookie
		payload = syncAckPayload{Seq: m.Seq}
	case SyncFin:
		env.VNode, env.Cookie = m.VNode, m.Cookie
		vv, err := c.EncodeVV(m.Result.NewClocksInPeer)
		if err != nil {
			return nil, fmt.Errorf("fabric: encode sync_fin clocks: %w", err)
		}
		payload = syncFinPayload{NewClocksInPeer: vv, Err: m.Result.Err}
	case DHTAE:
		vv, err := c.EncodeVV(m.VV)
		if err != nil {
			return nil, fmt.Errorf("fabric: encode dht_ae vv: %w", err)
		}
		payload = dhtAEPayload{VV: vv}
	case DHTSync:
		payload = dhtSyncPayload{Payload: m.Payload}
	case Unknown:
		return nil, fmt.Errorf("fabric: cannot encode Unknown")
	default:
		return nil, fmt.Errorf("fabric: cannot encode message of type %T", msg)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("fabric: marshal %s payload: %w", env.Type, err)
	}
	env.Payload = raw

	return json.Marshal(env)
}

// Decode parses a wire envelope into its concrete Message. An unrecognized
// type tag decodes to Unknown rather than returning an error, since the
// wire format is meant to tolerate newer peers.
func (c *Codec) Decode(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("fabric: unmarshal envelope: %w", err)
	}

	switch env.Type {
	case MsgRemoteGet:
		var p remoteGetPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("fabric: unmarshal remote_get payload: %w", err)
		}
		return RemoteGet{VNode: env.VNode, Cookie: env.Cookie, Key: p.Key}, nil

	case MsgRemoteGetAck:
		var p remoteGetAckPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("fabric: unmarshal remote_get_ack payload: %w", err)
		}
		var value Cube
		if p.Found {
			var err error
			value, err = c.DecodeCube(p.Value)
			if err != nil {
				return nil, fmt.Errorf("fabric: decode remote_get_ack value: %w", err)
			}
		}
		return RemoteGetAck{VNode: env.VNode, Cookie: env.Cookie, Result: RemoteGetResult{Value: value, Err: p.Err}}, nil

	case MsgRemoteSet:
		var p remoteSetPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("fabric: unmarshal remote_set payload: %w", err)
		}
		value, err := c.DecodeCube(p.Value)
		if err != nil {
			return nil, fmt.Errorf("fabric: decode remote_set value: %w", err)
		}
		return RemoteSet{VNode: env.VNode, Cookie: env.Cookie, Key: p.Key, Value: value, Reply: p.Reply, ReplyResult: p.ReplyResult}, nil

	case MsgRemoteSetAck:
		var p remoteSetAckPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("fabric: unmarshal remote_set_ack payload: %w", err)
		}
		var prev Cube
		if p.HasPrevious {
			var err error
			prev, err = c.DecodeCube(p.PreviousValue)
			if err != nil {
				return nil, fmt.Errorf("fabric: decode remote_set_ack previous value: %w", err)
			}
		}
		return RemoteSetAck{VNode: env.VNode, Cookie: env.Cookie, Result: RemoteSetResult{PreviousValue: prev, Err: p.Err}}, nil

	case MsgSyncStart:
		var p syncStartPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("fabric: unmarshal sync_start payload: %w", err)
		}
		vv, err := c.DecodeVV(p.ClocksInPeer)
		if err != nil {
			return nil, fmt.Errorf("fabric: decode sync_start clocks: %w", err)
		}
		return SyncStart{VNode: env.VNode, Cookie: env.Cookie, ClocksInPeer: vv, Target: p.Target}, nil

	case MsgSyncSend:
		var p syncSendPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("fabric: unmarshal sync_send payload: %w", err)
		}
		value, err := c.DecodeCube(p.Value)
		if err != nil {
			return nil, fmt.Errorf("fabric: decode sync_send value: %w", err)
		}
		return SyncSend{VNode: env.VNode, Cookie: env.Cookie, Seq: p.Seq, Key: p.Key, Value: value}, nil

	case MsgSyncAck:
		var p syncAckPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("fabric: unmarshal sync_ack payload: %w", err)
		}
		return SyncAck{VNode: env.VNode, Cookie: env.Cookie, Seq: p.Seq}, nil

	case MsgSyncFin:
		var p syncFinPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("fabric: unmarshal sync_fin payload: %w", err)
		}
		var vv VersionVector
		if p.Err == "" {
			var err error
			vv, err = c.DecodeVV(p.NewClocksInPeer)
			if err != nil {
				return nil, fmt.Errorf("fabric: decode sync_fin clocks: %w", err)
			}
		}
		return SyncFin{VNode: env.VNode, Cookie: env.Cookie, Result: SyncFinResult{NewClocksInPeer: vv, Err: p.Err}}, nil

	case MsgDHTAE:
		var p dhtAEPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("fabric: unmarshal dht_ae payload: %w", err)
		}
		vv, err := c.DecodeVV(p.VV)
		if err != nil {
			return nil, fmt.Errorf("fabric: decode dht_ae vv: %w", err)
		}
		return DHTAE{VV: vv}, nil

	case MsgDHTSync:
		var p dhtSyncPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("fabric: unmarshal dht_sync payload: %w", err)
		}
		return DHTSync{Payload: p.Payload}, nil

	default:
		return Unknown{}, nil
	}
}
