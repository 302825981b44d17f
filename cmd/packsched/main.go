// Command packsched runs a standalone demonstration of the transaction
// pack scheduler: it generates a synthetic stream of transactions (wire
// parsing, signature verification, and networking ingress are external
// collaborators per the scheduler's own design and are not implemented
// here), inserts them into a Scheduler, and repeatedly drives
// schedule_next_microblock, logging the emitted counts and final stats.
//
// Usage:
//
//	packsched [flags]
//
// Flags:
//
//	--pack-depth       max resident transactions (default: 8192)
//	--gap              pipeline depth for conflict checks (default: 4)
//	--max-txn-per-mb   max transactions per microblock (default: 64)
//	--small-set-width  account-identity bitset width K (default: 65536)
//	--cu-limit         compute-unit budget per microblock (default: 1500000)
//	--vote-fraction    fraction of cu-limit reserved for votes (default: 0.25)
//	--txn-count        synthetic transactions to generate (default: 20000)
//	--microblocks      scheduling rounds to run (default: 400)
//	--seed             PRNG seed for the synthetic generator (default: 1)
//	--verbosity               log level 0-5 (default: 3)
//	--log-format              log rendering: slog-json, text, json, color (default: slog-json)
//	--metrics                 log a metrics snapshot at exit (default: false)
//	--metrics-addr            if set, serve Prometheus text format on this address
//	--metrics-report-interval if >0, log a metrics snapshot on this interval
//	--version                 print version and exit
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/firedancer-go/packsched/log"
	"github.com/firedancer-go/packsched/metrics"
	"github.com/firedancer-go/packsched/pack"
)

var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// cliConfig collects every flag-bound value, including the knobs that are
// not part of pack.Config (the synthetic workload generator's own
// parameters).
type cliConfig struct {
	pack.Config
	CULimit             uint64
	VoteFraction        float64
	TxnCount            int
	Microblocks         int
	Seed                int64
	Verbosity           int
	LogFormat           string
	Metrics             bool
	MetricsAddr         string
	MetricsReportPeriod time.Duration
}

func defaultCLIConfig() cliConfig {
	return cliConfig{
		Config:       pack.DefaultConfig(),
		CULimit:      1_500_000,
		VoteFraction: 0.25,
		TxnCount:     20_000,
		Microblocks:  400,
		Seed:         1,
		Verbosity:    3,
		LogFormat:    "slog-json",
	}
}

// run is the actual entry point, returning an exit code. Accepts CLI
// arguments (without the program name) so it can be tested in isolation.
func run(args []string) int {
	cfg, exit, code := parseFlags(args)
	if exit {
		return code
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	level := verbosityToLevel(cfg.Verbosity)
	if formatter := log.FormatterByName(cfg.LogFormat); formatter != nil {
		log.SetDefault(log.NewWithFormatter(level, formatter))
	} else {
		log.SetDefault(log.New(level))
	}
	logger := log.Default().Module("cmd")

	if err := cfg.Config.Validate(); err != nil {
		logger.Error("invalid configuration", "err", err)
		return 1
	}

	logger.Info("packsched starting", "version", version,
		"pack_depth", cfg.PackDepth, "gap", cfg.Gap,
		"max_txn_per_microblock", cfg.MaxTxnPerMicroblock,
		"cu_limit", cfg.CULimit, "vote_fraction", cfg.VoteFraction)

	sched, err := pack.NewScheduler(cfg.Config, pack.WireParser{}, pack.DefaultComputeBudgetDecoder{})
	if err != nil {
		logger.Error("failed to construct scheduler", "err", err)
		return 1
	}

	cpuTracker := metrics.NewCPUTracker()
	sysMetrics := metrics.NewSystemMetrics()
	sysMetrics.SetResidentTxnFunc(sched.AvailTxnCnt)
	sysMetrics.SetMicroblockRateFunc(func() float64 { return sched.Stats().EmitRate1 })
	sysMetrics.SetBacklogPressureFunc(func() float64 {
		if cfg.PackDepth <= 0 {
			return 0
		}
		return float64(sched.AvailTxnCnt()) / float64(cfg.PackDepth)
	})

	if cfg.MetricsAddr != "" {
		exporter := metrics.NewPrometheusExporter(metrics.DefaultRegistry, metrics.DefaultPrometheusConfig())
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: exporter.Handler()}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", "err", err)
			}
		}()
		defer srv.Close()
		logger.Info("serving prometheus metrics", "addr", cfg.MetricsAddr)
	}

	if cfg.MetricsReportPeriod > 0 {
		reporter := metrics.NewMetricsReporter(cfg.MetricsReportPeriod)
		reporter.RegisterBackend("log", &logReportBackend{log: logger})
		reporter.Start()
		defer reporter.Stop()
	}

	cpuDone := make(chan struct{})
	go func() {
		defer close(cpuDone)
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cpuTracker.RecordCPU()
				metrics.PackHostCPUPercent.Set(int64(cpuTracker.Usage()))
			}
		}
	}()
	defer func() { stop(); <-cpuDone }()

	gen := newSyntheticGenerator(cfg.Seed)
	inserted, rejected := 0, 0
	for i := 0; i < cfg.TxnCount; i++ {
		payload := gen.next()
		if err := sched.Insert(payload); err != nil {
			rejected++
			continue
		}
		inserted++
	}
	logger.Info("synthetic load generated", "inserted", inserted, "rejected", rejected)

	out := make([]pack.OutputEntry, cfg.MaxTxnPerMicroblock)
	totalEmitted := 0
	for i := 0; i < cfg.Microblocks; i++ {
		if ctx.Err() != nil {
			logger.Info("shutdown signal received, stopping early", "microblock", i)
			break
		}
		n := sched.ScheduleNextMicroblock(cfg.CULimit, cfg.VoteFraction, out)
		totalEmitted += n
		if sched.AvailTxnCnt() == 0 {
			logger.Info("pool drained", "microblock", i)
			break
		}
	}

	stats := sched.Stats()
	logger.Info("scheduling complete",
		"microblocks_run", stats.MicroblockCount,
		"total_emitted", totalEmitted,
		"avail_txn_cnt", stats.AvailTxnCnt,
		"block_cost_total", stats.BlockCostTotal,
		"block_vote_cost", stats.BlockVoteCost,
		"insert_rate_1m", stats.InsertRate1,
		"emit_rate_1m", stats.EmitRate1)

	logger.Info("deferral reasons", "counts", sched.DeferralReasonCounts(),
		"microblock_size_p50", sched.MicroblockSizeP50())

	if sysJSON, err := sysMetrics.ExportJSON(); err == nil {
		logger.Debug("system metrics", "snapshot", string(sysJSON))
	}

	if cfg.Metrics {
		snap := metrics.DefaultRegistry.Snapshot()
		for name, v := range snap {
			logger.Info("metric", "name", name, "value", v)
		}
	}

	return 0
}

// logReportBackend adapts the process logger into a metrics.ReportBackend,
// used when --metrics-report-interval periodically logs a registry
// snapshot instead of (or alongside) serving Prometheus text format.
type logReportBackend struct {
	log *log.Logger
}

// Report implements metrics.ReportBackend. It ignores the values the
// MetricsReporter accumulated via RecordMetric (packsched never calls it)
// and instead logs a fresh pull of the full registry, so every tick
// reflects current counters/gauges/histograms rather than a stale manual
// snapshot.
func (b *logReportBackend) Report(_ map[string]float64) error {
	for name, v := range metrics.DefaultRegistry.Snapshot() {
		b.log.Info("metric", "name", name, "value", v)
	}
	return nil
}

func verbosityToLevel(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelError + 4 // effectively silent
	case v == 1:
		return slog.LevelError
	case v == 2:
		return slog.LevelWarn
	case v == 3:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// parseFlags parses CLI arguments into a cliConfig. Returns the config,
// whether the caller should exit immediately, and the exit code.
func parseFlags(args []string) (cliConfig, bool, int) {
	cfg := defaultCLIConfig()
	fs := newFlagSet(&cfg)

	showVersion := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cfg, true, 2
	}

	if *showVersion {
		fmt.Printf("packsched %s (commit %s)\n", version, commit)
		return cfg, true, 0
	}

	return cfg, false, 0
}

// newFlagSet creates a flag.FlagSet that binds all CLI flags to cfg.
func newFlagSet(cfg *cliConfig) *flagSet {
	fs := newCustomFlagSet("packsched")
	fs.IntVar(&cfg.PackDepth, "pack-depth", cfg.PackDepth, "max resident transactions")
	fs.IntVar(&cfg.Gap, "gap", cfg.Gap, "pipeline depth for conflict checks")
	fs.IntVar(&cfg.MaxTxnPerMicroblock, "max-txn-per-mb", cfg.MaxTxnPerMicroblock, "max transactions per microblock")
	fs.UintVar(&cfg.SmallSetWidth, "small-set-width", cfg.SmallSetWidth, "account-identity bitset width")
	fs.Uint64Var(&cfg.CULimit, "cu-limit", cfg.CULimit, "compute-unit budget per microblock")
	fs.Float64Var(&cfg.VoteFraction, "vote-fraction", cfg.VoteFraction, "fraction of cu-limit reserved for votes")
	fs.IntVar(&cfg.TxnCount, "txn-count", cfg.TxnCount, "synthetic transactions to generate")
	fs.IntVar(&cfg.Microblocks, "microblocks", cfg.Microblocks, "scheduling rounds to run")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "PRNG seed for the synthetic generator")
	fs.IntVar(&cfg.Verbosity, "verbosity", cfg.Verbosity, "log level 0-5 (0=silent, 4-5=debug)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log rendering: slog-json, text, json, color")
	fs.BoolVar(&cfg.Metrics, "metrics", cfg.Metrics, "log a metrics snapshot at exit")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "if set, serve Prometheus text format on this address")
	fs.DurationVar(&cfg.MetricsReportPeriod, "metrics-report-interval", cfg.MetricsReportPeriod, "if >0, log a metrics snapshot on this interval")
	return fs
}

// syntheticGenerator produces wire-encoded transactions over a fixed
// account universe, standing in for the external wire-parsing collaborator
// (spec §1) so this command is self-contained. rng is seeded explicitly so
// a run is reproducible, matching §5's determinism guarantee for the
// scheduler itself.
type syntheticGenerator struct {
	rng     *rand.Rand
	nextSig uint64
}

func newSyntheticGenerator(seed int64) *syntheticGenerator {
	return &syntheticGenerator{rng: rand.New(rand.NewSource(seed))}
}

// syntheticAccountUniverse bounds the pool of distinct accounts the
// generator draws from; keeping it well under 256 (one byte per identity,
// matching WireParser's account-key layout) produces a realistic rate of
// write-write conflicts among otherwise independent transactions.
const syntheticAccountUniverse = 200

func (g *syntheticGenerator) next() []byte {
	sigID := uint32(g.nextSig)
	g.nextSig++
	if g.rng.Float64() < 0.05 {
		return encodeVoteTxn(sigID, byte(g.rng.Intn(syntheticAccountUniverse)))
	}

	numWrite := 1 + g.rng.Intn(3)
	writeAccts := make([]byte, numWrite)
	for i := range writeAccts {
		writeAccts[i] = byte(g.rng.Intn(syntheticAccountUniverse))
	}
	numRead := g.rng.Intn(3)
	readAccts := make([]byte, numRead)
	for i := range readAccts {
		readAccts[i] = byte(g.rng.Intn(syntheticAccountUniverse))
	}

	cuUnits := uint32(200 + g.rng.Intn(50_000))
	microLamports := uint64(g.rng.Intn(20_000))
	payerByte := byte(syntheticAccountUniverse + int(g.nextSig%56))
	return encodeTxn(sigID, payerByte, writeAccts, readAccts, cuUnits, microLamports)
}
