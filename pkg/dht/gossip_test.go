package dht_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabricdb/corekv/pkg/dht"
	"github.com/fabricdb/corekv/pkg/fabric"
)

type loopbackTransport struct {
	responder *dht.Responder
}

func (lt *loopbackTransport) Send(_ context.Context, _ string, msg fabric.Message) (fabric.Message, error) {
	return lt.responder.Handle(msg)
}

func TestProbeMergesDeltaWhenPeerKnowsMore(t *testing.T) {
	responder := &dht.Responder{
		Delta: func(peerVV fabric.VersionVector) ([]byte, bool) {
			return []byte("delta"), true
		},
	}

	var merged []byte
	g := &dht.Gossiper{
		Transport: &loopbackTransport{responder: responder},
		LocalVV:   func() fabric.VersionVector { return fabric.RawVersionVector("local") },
		Merge: func(peer string, payload []byte) error {
			merged = payload
			return nil
		},
	}

	err := g.Probe(context.Background(), "peer-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("delta"), merged)
}

func TestProbeSkipsMergeWhenNoDelta(t *testing.T) {
	responder := &dht.Responder{
		Delta: func(peerVV fabric.VersionVector) ([]byte, bool) { return nil, false },
	}

	mergeCalled := false
	g := &dht.Gossiper{
		Transport: &loopbackTransport{responder: responder},
		LocalVV:   func() fabric.VersionVector { return fabric.RawVersionVector("local") },
		Merge: func(peer string, payload []byte) error {
			mergeCalled = true
			return nil
		},
	}

	err := g.Probe(context.Background(), "peer-1")
	require.NoError(t, err)
	assert.False(t, mergeCalled)
}

func TestResponderRejectsNonAEMessages(t *testing.T) {
	responder := &dht.Responder{Delta: func(fabric.VersionVector) ([]byte, bool) { return nil, false }}

	_, err := responder.Handle(fabric.SyncAck{})
	assert.Error(t, err)
}
