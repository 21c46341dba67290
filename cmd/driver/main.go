package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"blockmvcc/pkg/config"
	"blockmvcc/pkg/exec"
	"blockmvcc/pkg/metrics"
	"blockmvcc/pkg/mvcc"
	"blockmvcc/pkg/workerpool"
)

const supplyKey = mvcc.Key("total_supply")

func main() {
	configPath := flag.String("config", "", "path to yaml config; defaults apply when empty")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			panic(err)
		}
		cfg = loaded
	}

	logger := buildLogger(cfg.Logging)
	defer logger.Sync()

	var met *metrics.Metrics
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		met = metrics.New(reg)
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
				logger.Error("metrics server stopped", zap.Error(err))
			}
		}()
		logger.Info("metrics listening", zap.String("addr", cfg.Metrics.Addr))
	}

	// Pre-block state: every account starts at 1000, supply matches.
	base := exec.NewMemState()
	for i := 0; i < cfg.Driver.Accounts; i++ {
		base.Set(accountKey(i), mvcc.NumericValue(1000))
	}
	base.Set(supplyKey, mvcc.NumericValue(uint64(cfg.Driver.Accounts)*1000))

	store := mvcc.NewMultiVersionStore(mvcc.Options{
		ShardCount: cfg.Store.Shards,
		Logger:     logger,
		Metrics:    met,
	})

	// Phase 1: execute the block. Every transaction credits one account;
	// every delta_every-th one also bumps the shared supply counter with a
	// delta, so none of them serialize on the counter's concrete value.
	pool := workerpool.New(workerpool.Config{
		Name:      "executors",
		Workers:   cfg.Driver.Workers,
		QueueSize: cfg.Driver.Transactions,
		Logger:    logger,
	})
	for i := 0; i < cfg.Driver.Transactions; i++ {
		idx := mvcc.TxnIndex(i)
		pool.Submit(func(context.Context) error {
			key := accountKey(int(idx) % cfg.Driver.Accounts)
			balance := readBalance(store, base, key, idx)
			store.Write(key, mvcc.Version{Index: idx}, mvcc.NumericValue(balance+1))
			if int(idx)%cfg.Driver.DeltaEvery == 0 {
				store.RecordDelta(supplyKey, idx, mvcc.Add(1))
			}
			return nil
		})
	}
	pool.Wait()
	logger.Info("block executed",
		zap.Uint64("completed", pool.Completed()),
		zap.Uint64("failed", pool.Failed()))

	// Phase 2: invalidate one early write the way validation would, show
	// that readers above it see a dependency, then re-execute it with a
	// bumped incarnation.
	victim := accountKey(0)
	victimIdx := mvcc.TxnIndex(0)
	if err := store.MarkStale(victim, victimIdx); err != nil {
		panic(err)
	}
	if _, err := store.Read(victim, mvcc.TxnIndex(1)); err != nil {
		if dep, ok := mvcc.Dependency(err); ok {
			logger.Info("read blocked as expected", zap.Int("depends_on", int(dep)))
		} else {
			panic(err)
		}
	}
	store.Write(victim, mvcc.Version{Index: victimIdx, Incarnation: 1}, mvcc.NumericValue(1001))
	res, err := store.Read(victim, mvcc.TxnIndex(1))
	if err != nil {
		panic(err)
	}
	logger.Info("read after re-execution",
		zap.Int("writer", int(res.Version.Index)),
		zap.Uint("incarnation", uint(res.Version.Incarnation)))

	// Phase 3: commit. Resolve every delta-bearing key against storage.
	for _, key := range store.TakeDeltaKeys() {
		baseValue, err := base.Get(key)
		if err != nil {
			panic(err)
		}
		n, ok := baseValue.AsUint64()
		if !ok {
			panic(fmt.Sprintf("storage value for %q is not numeric", key))
		}
		resolved := store.MaterializeDeltas(key, &n)
		last := resolved[len(resolved)-1]
		logger.Info("materialized",
			zap.String("key", string(key)),
			zap.Int("deltas", len(resolved)),
			zap.Uint64("final", last.Value))
	}
}

func accountKey(i int) mvcc.Key {
	return mvcc.Key(fmt.Sprintf("account/%04d", i))
}

// readBalance resolves the balance transaction idx observes for key,
// falling back to storage for the first access and for unresolved deltas.
func readBalance(store *mvcc.MultiVersionStore, base *exec.MemState, key mvcc.Key, idx mvcc.TxnIndex) uint64 {
	res, err := store.Read(key, idx)
	if err != nil {
		// NotFound is just the first touch of the key; dependencies do
		// not happen here because each account is written in index order
		// by construction.
		fromStorage, serr := base.Get(key)
		if serr != nil {
			panic(serr)
		}
		n, _ := fromStorage.AsUint64()
		return n
	}
	switch res.Kind {
	case mvcc.ReadVersioned:
		n, _ := res.Value.AsUint64()
		return n
	case mvcc.ReadResolved:
		return res.Resolved
	default:
		fromStorage, serr := base.Get(key)
		if serr != nil {
			panic(serr)
		}
		n, _ := fromStorage.AsUint64()
		resolved, rerr := res.ResolveBase(n)
		if rerr != nil {
			panic(rerr)
		}
		return resolved
	}
}

func buildLogger(cfg config.LoggingConfig) *zap.Logger {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		panic(err)
	}
	var zcfg zap.Config
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = level
	logger, err := zcfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
