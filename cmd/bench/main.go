// Command bench runs a synthetic workload against the cache and exposes optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/moeryomenko/synx"
	"github.com/spf13/cobra"

	"github.com/IvanBrykalov/shardttl/cache"
	"github.com/IvanBrykalov/shardttl/clock"
	pmet "github.com/IvanBrykalov/shardttl/metrics/prom"
	"github.com/IvanBrykalov/shardttl/policy"
	"github.com/IvanBrykalov/shardttl/policy/random"
	"github.com/IvanBrykalov/shardttl/policy/roundrobin"
)

type config struct {
	capacity int
	ttl      time.Duration
	shards   int
	policy   string
	sample   int
	coarse   bool

	workers  int
	duration time.Duration
	readPct  int

	keys    int
	zipfS   float64
	zipfV   float64
	seed    int64
	preload int

	pprofAddr   string
	metricsAddr string
}

func main() {
	var cfg config

	rootCmd := &cobra.Command{
		Use:   "bench",
		Short: "Synthetic read/write workload against a sharded TTL cache",
		Long: "bench drives a zipf-distributed read/write mix against the cache and reports " +
			"throughput, hit rate and stale rate. Metrics are served for Prometheus while it runs.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cfg)
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	f := rootCmd.Flags()
	f.IntVar(&cfg.capacity, "cap", 100_000, "cache capacity (entries)")
	f.DurationVar(&cfg.ttl, "ttl", 2*time.Second, "entry time-to-live")
	f.IntVar(&cfg.shards, "shards", 0, "number of shards (0=auto)")
	f.StringVar(&cfg.policy, "policy", "random", "eviction sampling: random | roundrobin")
	f.IntVar(&cfg.sample, "sample", policy.DefaultSampleSize, "eviction sample size")
	f.BoolVar(&cfg.coarse, "coarse-clock", false, "read real time once every clock.DefaultStride operations")
	f.IntVar(&cfg.workers, "workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
	f.DurationVar(&cfg.duration, "duration", 10*time.Second, "benchmark duration")
	f.IntVar(&cfg.readPct, "reads", 80, "read percentage [0..100]")
	f.IntVar(&cfg.keys, "keys", 1_000_000, "keyspace size")
	f.Float64Var(&cfg.zipfS, "zipf_s", 1.1, "Zipf s > 1 (skew)")
	f.Float64Var(&cfg.zipfV, "zipf_v", 1.0, "Zipf v")
	f.Int64Var(&cfg.seed, "seed", time.Now().UnixNano(), "random seed")
	f.IntVar(&cfg.preload, "preload", 0, "preload entries (0 = cap/2)")
	f.StringVar(&cfg.pprofAddr, "pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
	f.StringVar(&cfg.metricsAddr, "http", ":8080", "serve Prometheus metrics at addr; empty = disabled")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildPolicy(name string, sample int) (policy.Policy, error) {
	switch name {
	case "random":
		return random.New(sample), nil
	case "roundrobin", "rr":
		return roundrobin.New(sample), nil
	default:
		return nil, fmt.Errorf("unknown policy %q (use random or roundrobin)", name)
	}
}

func run(ctx context.Context, cfg config) error {
	if cfg.keys < 1 {
		return fmt.Errorf("keys must be >= 1, got %d", cfg.keys)
	}
	pol, err := buildPolicy(cfg.policy, cfg.sample)
	if err != nil {
		return err
	}

	// ---- pprof server (on DefaultServeMux) ----
	if cfg.pprofAddr != "" {
		go func() {
			log.Printf("pprof: serving at %s", cfg.pprofAddr)
			log.Println(http.ListenAndServe(cfg.pprofAddr, nil))
		}()
	}

	// ---- Build cache ----
	opt := cache.Options[string, string]{
		Capacity: cfg.capacity,
		TTL:      cfg.ttl,
		Shards:   cfg.shards,
		Policy:   pol,
	}
	if cfg.coarse {
		opt.Clock = clock.NewCoarse(clock.DefaultStride)
	}
	if cfg.metricsAddr != "" {
		opt.Metrics = pmet.New(nil, "shardttl", "bench", nil)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			log.Printf("metrics: serving at %s", cfg.metricsAddr)
			log.Println(http.ListenAndServe(cfg.metricsAddr, mux))
		}()
	}
	c, err := cache.New(opt)
	if err != nil {
		return fmt.Errorf("build cache: %w", err)
	}

	// ---- Preload half capacity to get a realistic hit-rate ----
	pl := cfg.preload
	if pl == 0 {
		pl = cfg.capacity / 2
	}
	for i := 0; i < pl; i++ {
		c.Insert("k:"+strconv.Itoa(i), "v"+strconv.Itoa(i))
	}

	workers := cfg.workers
	if workers <= 0 {
		workers = 1
	}

	// ---- Load generation ----
	var reads, writes, hits, stale, misses, total atomic.Uint64
	ctx, cancel := context.WithTimeout(ctx, cfg.duration)
	defer cancel()

	start := time.Now()
	g := synx.NewErrGroup(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func(ctx context.Context) error {
			// Each worker gets its own RNG + Zipf (rand.Rand is NOT goroutine-safe).
			r := rand.New(rand.NewSource(cfg.seed + int64(w)*9973))
			zipf := rand.NewZipf(r, cfg.zipfS, cfg.zipfV, uint64(cfg.keys-1))
			key := func() string { return "k:" + strconv.FormatUint(zipf.Uint64(), 10) }

			for ctx.Err() == nil {
				total.Add(1)
				if int(r.Int31n(100)) < cfg.readPct {
					reads.Add(1)
					v, ok := c.Get(key())
					switch {
					case !ok:
						misses.Add(1)
					case v.IsExpired():
						stale.Add(1)
					default:
						hits.Add(1)
					}
					continue
				}
				writes.Add(1)
				c.Insert(key(), "v"+strconv.Itoa(r.Int()))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("worker: %w", err)
	}
	elapsed := time.Since(start)

	// ---- Report ----
	readsN := reads.Load()
	pct := func(n uint64) float64 {
		if readsN == 0 {
			return 0
		}
		return float64(n) / float64(readsN) * 100
	}

	fmt.Printf("policy=%s sample=%d cap=%d ttl=%v shards=%d coarse=%v workers=%d keys=%d dur=%v seed=%d\n",
		cfg.policy, cfg.sample, cfg.capacity, cfg.ttl, cfg.shards, cfg.coarse, workers, cfg.keys, elapsed, cfg.seed)
	fmt.Printf("ops=%d (%.0f ops/s)  reads=%d  writes=%d\n",
		total.Load(), float64(total.Load())/elapsed.Seconds(), readsN, writes.Load())
	fmt.Printf("hits=%d (%.2f%%)  stale=%d (%.2f%%)  misses=%d (%.2f%%)\n",
		hits.Load(), pct(hits.Load()), stale.Load(), pct(stale.Load()), misses.Load(), pct(misses.Load()))
	st := c.Stats()
	fmt.Printf("Len()=%d  evictions=%d\n", c.Len(), st.Evictions)
	return nil
}
