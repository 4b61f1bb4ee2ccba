package syncer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fabricdb/corekv/pkg/fabric"
)

// Peer identifies one replica this node should periodically run anti-entropy
// against for one vnode.
type Peer struct {
	Addr   string
	VNode  fabric.VNodeId
	Target *fabric.NodeId
}

// Driver periodically drives anti-entropy rounds against a changing set of
// peers: the same background-ticker-with-context-cancellation shape the
// corpus uses for its cluster health monitor, aimed at sync rounds instead
// of health probes.
type Driver struct {
	Initiator  *Initiator
	ClocksFor  func(vnode fabric.VNodeId, peerAddr string) fabric.VersionVector
	OnComplete func(vnode fabric.VNodeId, peerAddr string, newClocks fabric.VersionVector)
	Interval   time.Duration
	Log        *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Start begins periodic anti-entropy rounds in a background goroutine.
// peerProvider is consulted fresh on every tick so membership changes take
// effect without a restart.
func (d *Driver) Start(ctx context.Context, peerProvider func() []Peer) {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ticker := time.NewTicker(d.Interval)
		defer ticker.Stop()

		d.runRound(ctx, peerProvider())
		for {
			select {
			case <-ticker.C:
				d.runRound(ctx, peerProvider())
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop cancels the background loop and waits for the in-flight round to
// finish.
func (d *Driver) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
	d.wg.Wait()
}

func (d *Driver) runRound(ctx context.Context, peers []Peer) {
	for _, p := range peers {
		clocks := d.ClocksFor(p.VNode, p.Addr)
		newClocks, err := d.Initiator.Run(ctx, p.Addr, p.VNode, p.Target, clocks)
		if err != nil {
			if d.Log != nil {
				d.Log.Warn("anti-entropy round failed", "peer", p.Addr, "vnode", p.VNode, "error", err)
			}
			continue
		}
		if d.OnComplete != nil {
			d.OnComplete(p.VNode, p.Addr, newClocks)
		}
	}
}
