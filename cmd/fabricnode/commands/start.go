package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/fabricdb/corekv/internal/logger"
	"github.com/fabricdb/corekv/pkg/adminserver"
	"github.com/fabricdb/corekv/pkg/config"
	"github.com/fabricdb/corekv/pkg/dht"
	"github.com/fabricdb/corekv/pkg/fabric"
	"github.com/fabricdb/corekv/pkg/metrics"
	"github.com/fabricdb/corekv/pkg/nodeserver"
	"github.com/fabricdb/corekv/pkg/storage"
	"github.com/fabricdb/corekv/pkg/syncer"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the fabricdb node",
	Long: `Start the fabricdb node with the specified configuration.

Use --config to specify a custom configuration file; without it,
./fabricnode.yaml is used if present. Built-in defaults fill in anything the
file leaves unset, and environment variables (FABRICDB_*) override keys the
file sets. Without a config file, only the built-in defaults apply.`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	engine, err := storage.Open(cfg.Storage.Path,
		storage.WithBlockCacheSize(cfg.Storage.BlockCacheSize),
		storage.WithMemTableSize(cfg.Storage.MemTableSize, cfg.Storage.NumMemtables),
		storage.WithNumCompactors(cfg.Storage.NumCompactors),
		storage.WithSyncWrites(cfg.Storage.SyncWrites),
		storage.WithValueLogGC(cfg.Storage.ValueLogGCInterval, cfg.Storage.ValueLogGCDiscardRatio),
	)
	if err != nil {
		return fmt.Errorf("open storage engine: %w", err)
	}

	namespaces := make(map[fabric.VNodeId]*storage.Namespace, len(cfg.VNodes))
	for _, v := range cfg.VNodes {
		namespaces[fabric.VNodeId(v)] = engine.OpenNamespace(v)
	}
	namespaceFor := func(vnode fabric.VNodeId) *storage.Namespace {
		return namespaces[vnode]
	}

	defer func() {
		for _, ns := range namespaces {
			ns.Close()
		}
		if err := engine.Close(); err != nil {
			logger.Error("storage engine close failed", "error", err)
		}
	}()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	codec := fabric.DefaultCodec()
	syncResponder := syncer.NewResponder(namespaceFor, codec)
	dhtResponder := &dht.Responder{Delta: func(fabric.VersionVector) ([]byte, bool) { return nil, false }}
	node := nodeserver.New(fabric.NodeId(cfg.NodeID), namespaceFor, codec, m, syncResponder, dhtResponder)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ready := func() error {
		if len(namespaces) == 0 {
			return fmt.Errorf("no vnodes configured")
		}
		return nil
	}

	adminServer := &http.Server{Addr: cfg.Admin.Addr, Handler: adminserver.NewRouter(ready, reg)}
	adminDone := make(chan error, 1)
	go func() {
		logger.Info("admin server listening", "addr", cfg.Admin.Addr)
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			adminDone <- err
			return
		}
		adminDone <- nil
	}()

	fabricMux := http.NewServeMux()
	fabricMux.Handle("/fabric", &fabric.HTTPHandler{Codec: codec, Handle: node.Handle})
	fabricServer := &http.Server{Addr: cfg.Fabric.Addr, Handler: fabricMux}
	fabricDone := make(chan error, 1)
	go func() {
		logger.Info("fabric server listening", "addr", cfg.Fabric.Addr)
		if err := fabricServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fabricDone <- err
			return
		}
		fabricDone <- nil
	}()

	transport := fabric.NewHTTPTransport(codec)

	syncDriver := &syncer.Driver{
		Initiator: &syncer.Initiator{
			Transport: transport,
			Cookies:   &fabric.CookieAllocator{},
			Apply: func(vnode fabric.VNodeId, key []byte, value fabric.Cube) error {
				ns := namespaceFor(vnode)
				if ns == nil {
					return fmt.Errorf("no namespace for vnode %d", vnode)
				}
				encoded, err := codec.EncodeCube(value)
				if err != nil {
					return err
				}
				return ns.Set(key, encoded)
			},
		},
		ClocksFor:  func(fabric.VNodeId, string) fabric.VersionVector { return fabric.RawVersionVector(nil) },
		OnComplete: func(vnode fabric.VNodeId, peer string, _ fabric.VersionVector) {
			logger.Info("anti-entropy round complete", "vnode", vnode, "peer", peer)
		},
		Interval: cfg.Syncer.Interval,
	}
	syncDriver.Start(ctx, func() []syncer.Peer {
		peers := make([]syncer.Peer, 0, len(cfg.Peers)*len(cfg.VNodes))
		for _, addr := range cfg.Peers {
			for _, v := range cfg.VNodes {
				peers = append(peers, syncer.Peer{Addr: addr, VNode: fabric.VNodeId(v)})
			}
		}
		return peers
	})
	defer syncDriver.Stop()

	gossiper := &dht.Gossiper{
		Transport: transport,
		LocalVV:   func() fabric.VersionVector { return fabric.RawVersionVector(nil) },
		Merge:     func(string, []byte) error { return nil },
		Interval:  cfg.DHT.Interval,
	}
	gossiper.Start(ctx, func() []string { return cfg.Peers })
	defer gossiper.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("fabricnode is running", "node_id", cfg.NodeID, "vnodes", cfg.VNodes)

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received, draining servers")
	case err := <-adminDone:
		if err != nil {
			logger.Error("admin server failed", "error", err)
		}
	case err := <-fabricDone:
		if err != nil {
			logger.Error("fabric server failed", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = adminServer.Shutdown(shutdownCtx)
	_ = fabricServer.Shutdown(shutdownCtx)

	logger.Info("fabricnode stopped")
	return nil
}
