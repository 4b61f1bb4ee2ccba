package dht

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fabricdb/corekv/pkg/fabric"
)

// Transport delivers a fabric message to a peer and returns its reply.
type Transport interface {
	Send(ctx context.Context, peer string, msg fabric.Message) (fabric.Message, error)
}

// Gossiper periodically probes a changing set of peers with DHTAE and merges
// whatever delta they send back in a DHTSync reply.
type Gossiper struct {
	Transport Transport
	LocalVV   func() fabric.VersionVector
	// Merge applies a delta payload received from peer into local DHT
	// state. The payload format is owned by the DHT collaborator, not by
	// this package.
	Merge    func(peer string, payload []byte) error
	Interval time.Duration
	Log      *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Start begins periodic gossip rounds in a background goroutine.
// peerProvider is consulted fresh on every tick.
func (g *Gossiper) Start(ctx context.Context, peerProvider func() []string) {
	ctx, cancel := context.WithCancel(ctx)
	g.cancel = cancel

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()

		ticker := time.NewTicker(g.Interval)
		defer ticker.Stop()

		g.runRound(ctx, peerProvider())
		for {
			select {
			case <-ticker.C:
				g.runRound(ctx, peerProvider())
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop cancels the background loop and waits for the in-flight round to
// finish.
func (g *Gossiper) Stop() {
	if g.cancel != nil {
		g.cancel()
	}
	g.wg.Wait()
}

func (g *Gossiper) runRound(ctx context.Context, peers []string) {
	for _, peer := range peers {
		if err := g.Probe(ctx, peer); err != nil && g.Log != nil {
			g.Log.Warn("dht gossip probe failed", "peer", peer, "error", err)
		}
	}
}

// Probe runs one DHTAE/DHTSync exchange against peer, merging any delta the
// peer sends back. Exported so callers can trigger an out-of-band probe
// (e.g. right after a new peer joins) without waiting for the next tick.
func (g *Gossiper) Probe(ctx context.Context, peer string) error {
	reply, err := g.Transport.Send(ctx, peer, fabric.DHTAE{VV: g.LocalVV()})
	if err != nil {
		return fmt.Errorf("dht: ae to %s: %w", peer, err)
	}

	sync, ok := reply.(fabric.DHTSync)
	if !ok {
		return fmt.Errorf("dht: unexpected %T from %s", reply, peer)
	}
	if len(sync.Payload) == 0 {
		return nil
	}
	if err := g.Merge(peer, sync.Payload); err != nil {
		return fmt.Errorf("dht: merge delta from %s: %w", peer, err)
	}
	return nil
}
