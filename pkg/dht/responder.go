package dht

import (
	"fmt"

	"github.com/fabricdb/corekv/pkg/fabric"
)

// Responder answers incoming DHTAE probes with whatever delta the local
// DHT collaborator computes for the probing peer's version vector.
type Responder struct {
	// Delta returns the serialized state the peer is missing given its
	// vector, or ok=false if the peer already has everything.
	Delta func(peerVV fabric.VersionVector) (payload []byte, ok bool)
}

// Handle processes one incoming DHTAE and returns the DHTSync to send back.
func (r *Responder) Handle(msg fabric.Message) (fabric.Message, error) {
	ae, ok := msg.(fabric.DHTAE)
	if !ok {
		return nil, fmt.Errorf("dht: responder cannot handle %T", msg)
	}

	payload, hasDelta := r.Delta(ae.VV)
	if !hasDelta {
		return fabric.DHTSync{}, nil
	}
	return fabric.DHTSync{Payload: payload}, nil
}
