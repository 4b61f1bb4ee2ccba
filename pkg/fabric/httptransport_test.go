package fabric_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabricdb/corekv/pkg/fabric"
)

func TestHTTPTransportRoundTripsThroughHandler(t *testing.T) {
	codec := fabric.DefaultCodec()
	handler := &fabric.HTTPHandler{
		Codec: codec,
		Handle: func(msg fabric.Message) (fabric.Message, error) {
			get, ok := msg.(fabric.RemoteGet)
			require.True(t, ok)
			return fabric.RemoteGetAck{VNode: get.VNode, Cookie: get.Cookie, Result: fabric.RemoteGetResult{Value: fabric.RawCube("hit")}}, nil
		},
	}
	srv := httptest.NewServer(handler)
	defer srv.Close()

	transport := fabric.NewHTTPTransport(codec)
	reply, err := transport.Send(context.Background(), srv.URL, fabric.RemoteGet{VNode: 1, Cookie: 9, Key: []byte("k")})
	require.NoError(t, err)

	ack, ok := reply.(fabric.RemoteGetAck)
	require.True(t, ok)
	assert.EqualValues(t, 9, ack.Cookie)
	raw, err := ack.Result.Value.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, "hit", string(raw))
}

func TestHTTPTransportHandlesNoContentReply(t *testing.T) {
	codec := fabric.DefaultCodec()
	handler := &fabric.HTTPHandler{
		Codec: codec,
		Handle: func(msg fabric.Message) (fabric.Message, error) {
			return nil, nil
		},
	}
	srv := httptest.NewServer(handler)
	defer srv.Close()

	transport := fabric.NewHTTPTransport(codec)
	reply, err := transport.Send(context.Background(), srv.URL, fabric.RemoteSet{VNode: 1, Cookie: 1, Key: []byte("k"), Value: fabric.RawCube("v")})
	require.NoError(t, err)
	assert.Nil(t, reply)
}

func TestHTTPTransportSurfacesHandlerError(t *testing.T) {
	codec := fabric.DefaultCodec()
	handler := &fabric.HTTPHandler{
		Codec: codec,
		Handle: func(msg fabric.Message) (fabric.Message, error) {
			return nil, assert.AnError
		},
	}
	srv := httptest.NewServer(handler)
	defer srv.Close()

	transport := fabric.NewHTTPTransport(codec)
	_, err := transport.Send(context.Background(), srv.URL, fabric.RemoteGet{VNode: 1, Cookie: 1, Key: []byte("k")})
	assert.Error(t, err)
}
