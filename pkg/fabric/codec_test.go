package fabric_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabricdb/corekv/pkg/fabric"
)

func roundTrip(t *testing.T, codec *fabric.Codec, msg fabric.Message) fabric.Message {
	t.Helper()
	wire, err := codec.Encode(msg)
	require.NoError(t, err)
	decoded, err := codec.Decode(wire)
	require.NoError(t, err)
	return decoded
}

func TestRemoteGetRoundTrip(t *testing.T) {
	codec := fabric.DefaultCodec()
	msg := fabric.RemoteGet{VNode: 3, Cookie: 7, Key: []byte("k1")}

	decoded := roundTrip(t, codec, msg)

	assert.Equal(t, msg, decoded)
	assert.Equal(t, fabric.CategoryCRUD, decoded.Type().Category())
}

func TestRemoteGetAckRoundTripFound(t *testing.T) {
	codec := fabric.DefaultCodec()
	msg := fabric.RemoteGetAck{
		VNode:  3,
		Cookie: 7,
		Result: fabric.RemoteGetResult{Value: fabric.RawCube("cube-bytes")},
	}

	decoded := roundTrip(t, codec, msg)

	ack, ok := decoded.(fabric.RemoteGetAck)
	require.True(t, ok)
	assert.Equal(t, msg.VNode, ack.VNode)
	assert.Equal(t, msg.Cookie, ack.Cookie)
	require.NotNil(t, ack.Result.Value)
	assert.Equal(t, fabric.RawCube("cube-bytes"), ack.Result.Value)
}

func TestRemoteGetAckRoundTripNotFound(t *testing.T) {
	codec := fabric.DefaultCodec()
	msg := fabric.RemoteGetAck{VNode: 1, Cookie: 2, Result: fabric.RemoteGetResult{}}

	decoded := roundTrip(t, codec, msg)

	ack, ok := decoded.(fabric.RemoteGetAck)
	require.True(t, ok)
	assert.Nil(t, ack.Result.Value)
}

func TestRemoteSetRoundTrip(t *testing.T) {
	codec := fabric.DefaultCodec()
	msg := fabric.RemoteSet{
		VNode:       5,
		Cookie:      9,
		Key:         []byte("k2"),
		Value:       fabric.RawCube("value-bytes"),
		Reply:       true,
		ReplyResult: true,
	}

	decoded := roundTrip(t, codec, msg)

	set, ok := decoded.(fabric.RemoteSet)
	require.True(t, ok)
	assert.Equal(t, msg.Key, set.Key)
	assert.Equal(t, msg.Value, set.Value)
	assert.True(t, set.Reply)
	assert.True(t, set.ReplyResult)
}

func TestSyncStartRoundTripWithTarget(t *testing.T) {
	codec := fabric.DefaultCodec()
	target := fabric.NodeId(42)
	msg := fabric.SyncStart{
		VNode:        2,
		Cookie:       4,
		ClocksInPeer: fabric.RawVersionVector("vv-bytes"),
		Target:       &target,
	}

	decoded := roundTrip(t, codec, msg)

	start, ok := decoded.(fabric.SyncStart)
	require.True(t, ok)
	require.NotNil(t, start.Target)
	assert.Equal(t, target, *start.Target)
	assert.Equal(t, fabric.RawVersionVector("vv-bytes"), start.ClocksInPeer)
	assert.Equal(t, fabric.CategorySync, start.Type().Category())
}

func TestSyncFinRoundTripError(t *testing.T) {
	codec := fabric.DefaultCodec()
	msg := fabric.SyncFin{
		VNode:  2,
		Cookie: 4,
		Result: fabric.SyncFinResult{Err: fabric.ErrSyncInterrupted},
	}

	decoded := roundTrip(t, codec, msg)

	fin, ok := decoded.(fabric.SyncFin)
	require.True(t, ok)
	assert.Equal(t, fabric.ErrSyncInterrupted, fin.Result.Err)
	assert.Nil(t, fin.Result.NewClocksInPeer)
}

func TestDHTRoundTrip(t *testing.T) {
	codec := fabric.DefaultCodec()

	ae := fabric.DHTAE{VV: fabric.RawVersionVector("dht-vv")}
	decodedAE := roundTrip(t, codec, ae)
	gotAE, ok := decodedAE.(fabric.DHTAE)
	require.True(t, ok)
	assert.Equal(t, fabric.RawVersionVector("dht-vv"), gotAE.VV)
	assert.Equal(t, fabric.CategoryDHT, gotAE.Type().Category())

	sync := fabric.DHTSync{Payload: []byte("delta")}
	decodedSync := roundTrip(t, codec, sync)
	gotSync, ok := decodedSync.(fabric.DHTSync)
	require.True(t, ok)
	assert.Equal(t, []byte("delta"), gotSync.Payload)
}

func TestDecodeUnknownTypeYieldsUnknown(t *testing.T) {
	codec := fabric.DefaultCodec()

	decoded, err := codec.Decode([]byte(`{"type":"future_msg","payload":{}}`))
	require.NoError(t, err)
	assert.Equal(t, fabric.Unknown{}, decoded)
	assert.Equal(t, fabric.CategoryUnknown, decoded.Type().Category())
}

func TestEncodeUnknownFails(t *testing.T) {
	codec := fabric.DefaultCodec()

	_, err := codec.Encode(fabric.Unknown{})
	assert.Error(t, err)
}

func TestCookieAllocatorNeverRepeatsOrZero(t *testing.T) {
	var alloc fabric.CookieAllocator
	seen := make(map[fabric.Cookie]bool)
	for i := 0; i < 1000; i++ {
		c := alloc.Next()
		assert.NotEqual(t, fabric.Cookie(0), c)
		assert.False(t, seen[c], "cookie %d repeated", c)
		seen[c] = true
	}
}
