// Command memgraphd is the storage engine's process entry point: it
// wires configuration, durability, the transaction engine, the graph
// store, the reactor, and (in master mode) the RPC transport into a
// running process.
package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/memgraph-go/memgraph/internal/rpctransport"
	"github.com/memgraph-go/memgraph/internal/wal"
	"github.com/memgraph-go/memgraph/pkg/config"
	"github.com/memgraph-go/memgraph/pkg/graph"
	"github.com/memgraph-go/memgraph/pkg/iter"
	"github.com/memgraph-go/memgraph/pkg/metrics"
	"github.com/memgraph-go/memgraph/pkg/reactor"
	"github.com/memgraph-go/memgraph/pkg/statsd"
	"github.com/memgraph-go/memgraph/pkg/txn"
)

var version = "0.1.0"

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "memgraphd",
		Short: "memgraphd is an in-memory MVCC graph storage engine",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (defaults overlaid by MEMGRAPH_* env vars)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("memgraphd v%s\n", version)
		},
	})

	var metricsAddress string
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "run the storage engine, serving RPC in master mode if configured",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return runServe(cfg, metricsAddress)
		},
	}
	serveCmd.Flags().StringVar(&metricsAddress, "metrics-address", ":9090", "address to serve Prometheus /metrics on, empty to disable")
	rootCmd.AddCommand(serveCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "snapshot-dump",
		Short: "walk the current graph and print every visible vertex and edge",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return runSnapshotDump(cfg)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	var base *config.Config
	if path != "" {
		fileCfg, err := config.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		base = fileCfg
	}
	return config.LoadFromEnv(base)
}

func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Str("component", "memgraphd").Logger()
}

// openDurability opens the WAL (if durability is enabled) and rebuilds
// a transaction engine from its replayed records, so a crash never
// silently resets the id space or forgets which transactions had
// committed.
func openDurability(cfg *config.Config, log zerolog.Logger) (*wal.Log, *txn.Engine, error) {
	if !cfg.DurabilityEnabled {
		return nil, txn.NewEngine(nil), nil
	}

	w, err := wal.Open(wal.Options{Dir: cfg.DataDirectory, SyncWrites: true})
	if err != nil {
		return nil, nil, fmt.Errorf("memgraphd: open wal: %w", err)
	}

	recovered, nextID, err := wal.Recover(w)
	if err != nil {
		w.Close()
		return nil, nil, fmt.Errorf("memgraphd: recover wal: %w", err)
	}
	log.Info().Uint64("next_id", uint64(nextID)).Msg("recovered transaction log from wal")

	return w, txn.NewRecoveredEngine(w, recovered, nextID), nil
}

func newStatsdClient(cfg *config.Config, log zerolog.Logger) *statsd.Client {
	if cfg.StatsdAddress == "" {
		return statsd.NoopClient()
	}
	client, err := statsd.Dial(cfg.StatsdAddress, "memgraph")
	if err != nil {
		log.Warn().Err(err).Msg("statsd unavailable, metrics disabled")
		return statsd.NoopClient()
	}
	return client
}

// fanoutMetrics reports every Incr to both the best-effort StatsD
// emitter and the pull-based Prometheus collector, so txn.Engine and
// reactor.Reactor each take a single Metrics sink without having to
// know both exist.
type fanoutMetrics struct {
	statsd     *statsd.Client
	prometheus *metrics.Collector
}

func (f fanoutMetrics) Incr(name string) {
	f.statsd.Incr(name)
	f.prometheus.Incr(name)
}

func runServe(cfg *config.Config, metricsAddress string) error {
	log := newLogger()
	log.Info().Str("config", cfg.String()).Msg("starting memgraphd")

	if err := os.MkdirAll(cfg.DataDirectory, 0o755); err != nil {
		return fmt.Errorf("memgraphd: create data directory: %w", err)
	}

	w, engine, err := openDurability(cfg, log)
	if err != nil {
		return err
	}
	if w != nil {
		defer w.Close()
	}

	statsdClient := newStatsdClient(cfg, log)
	defer statsdClient.Close()

	registry := prometheus.NewRegistry()
	reporting := fanoutMetrics{statsd: statsdClient, prometheus: metrics.NewCollector(registry)}
	engine.SetMetrics(reporting)

	if metricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(registry))
		metricsSrv := &http.Server{Addr: metricsAddress, Handler: mux}
		go func() {
			log.Info().Str("addr", metricsAddress).Msg("serving prometheus metrics")
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("metrics server stopped")
			}
		}()
		defer metricsSrv.Close()
	}

	r := reactor.New("memgraphd")
	r.SetMetrics(reporting)
	go r.RunEventLoop()

	var grpcSrv *grpc.Server
	if cfg.IsMaster && cfg.RPCAddress != "" {
		master := txn.NewMasterEngine(engine)
		lis, err := net.Listen("tcp", cfg.RPCAddress)
		if err != nil {
			return fmt.Errorf("memgraphd: listen on %s: %w", cfg.RPCAddress, err)
		}
		grpcSrv = rpctransport.NewServer(master)
		go func() {
			log.Info().Str("addr", cfg.RPCAddress).Msg("serving transaction engine rpc")
			if err := grpcSrv.Serve(lis); err != nil {
				log.Error().Err(err).Msg("rpc server stopped")
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutting down")
	r.CloseAllConnectors()
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	return nil
}

func runSnapshotDump(cfg *config.Config) error {
	log := newLogger()

	w, engine, err := openDurability(cfg, log)
	if err != nil {
		return err
	}
	if w != nil {
		defer w.Close()
	}

	store := graph.NewStore(engine)
	tx, err := engine.Begin()
	if err != nil {
		return fmt.Errorf("memgraphd: begin snapshot transaction: %w", err)
	}
	defer engine.Abort(tx)

	vertices := iter.Fill(store.Vertices(tx))
	iter.ForAll(vertices, func(v *graph.VertexAccessor) {
		fmt.Printf("vertex %v labels=%v degree=%d\n", v.Addr, v.Labels(), v.Degree())
	})

	edges := iter.Fill(store.Edges(tx))
	iter.ForAll(edges, func(e *graph.EdgeAccessor) {
		fmt.Printf("edge %v type=%v from=%v to=%v\n", e.Addr, e.Type(), e.From().Addr, e.To().Addr)
	})

	return nil
}
