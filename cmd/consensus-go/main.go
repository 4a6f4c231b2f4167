package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/marketpriors/consensus-go/pkg/config"
	"github.com/marketpriors/consensus-go/pkg/consensus"
	"github.com/marketpriors/consensus-go/pkg/document"
	"github.com/marketpriors/consensus-go/pkg/logging"
	"github.com/marketpriors/consensus-go/pkg/metrics"
	"github.com/marketpriors/consensus-go/pkg/sampler"
	"github.com/marketpriors/consensus-go/pkg/version"
)

var (
	configFile   = flag.String("config", "", "Path to configuration file (optional)")
	inputPath    = flag.String("in", "", "Input document path (overrides config)")
	outputPath   = flag.String("out", "", "Output document path (overrides config)")
	draws        = flag.Int("draws", 0, "Posterior draws per chain (overrides config)")
	tune         = flag.Int("tune", 0, "Warmup iterations (overrides config)")
	chains       = flag.Int("chains", 0, "Number of chains (overrides config)")
	targetAccept = flag.Float64("target-accept", 0, "Target acceptance rate (overrides config)")
	seed         = flag.Uint64("seed", 0, "Sampler seed (overrides config)")
	fallbackOnly = flag.Bool("fallback-only", false, "Skip sampling, always use the fallback estimator")
	showVer      = flag.Bool("version", false, "Show version and exit")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("consensus-go version %s\n", version.Version)
		os.Exit(0)
	}

	// Load configuration
	var cfg *config.Config
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	// Apply flag overrides
	if *inputPath != "" {
		cfg.Input = *inputPath
	}
	if *outputPath != "" {
		cfg.Output = *outputPath
	}
	if *draws > 0 {
		cfg.Sampling.Draws = *draws
	}
	if *tune > 0 {
		cfg.Sampling.Tune = *tune
	}
	if *chains > 0 {
		cfg.Sampling.Chains = *chains
	}
	if *targetAccept > 0 {
		cfg.Sampling.TargetAccept = *targetAccept
	}
	if *seed > 0 {
		cfg.Sampling.Seed = *seed
	}
	if *fallbackOnly {
		cfg.Sampling.FallbackOnly = true
	}

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logging
	logger, err := logging.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)

	// Initialize metrics
	metrics.Init()
	if cfg.Metrics.Enabled {
		go func() {
			logger.Info("Starting metrics server", "addr", cfg.Metrics.Addr, "path", cfg.Metrics.Path)
			if err := metrics.ServeHTTP(cfg.Metrics.Addr, cfg.Metrics.Path); err != nil {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Batch failed", "error", err)
	}
}

func run(cfg *config.Config, logger *logging.Logger) error {
	doc, err := document.ReadFile(cfg.Input)
	if err != nil {
		return err
	}

	var fitter consensus.Fitter
	if !cfg.Sampling.FallbackOnly {
		fitter = sampler.New(logger, consensus.FitConfig{
			Draws:        cfg.Sampling.Draws,
			Tune:         cfg.Sampling.Tune,
			Chains:       cfg.Sampling.Chains,
			TargetAccept: cfg.Sampling.TargetAccept,
			Seed:         cfg.Sampling.Seed,
			MaxLeapfrog:  cfg.Sampling.MaxLeapfrog,
		})
	}
	pipe := consensus.NewPipeline(logger, fitter)

	start := time.Now()
	snapshots := 0
	computed := 0
	for _, event := range doc.Events {
		for _, snap := range event.Snapshots {
			snapshots++
			posterior := buildOne(pipe, snap, cfg.Sampling.Timeout.ToDuration())
			snap.SetPosterior(posterior)
			if posterior != nil {
				computed++
			}
		}
	}

	if err := doc.WriteFile(cfg.Output, time.Now()); err != nil {
		return err
	}
	logger.Info("Batch complete",
		"events", len(doc.Events),
		"snapshots", snapshots,
		"posteriors", computed,
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
		"output", cfg.Output)
	return nil
}

// buildOne computes a single snapshot's posterior under the configured
// wall-clock budget. Expiry cancels the sampler mid-fit, which surfaces as a
// fitter error and lands on the fallback path inside the pipeline.
func buildOne(pipe *consensus.Pipeline, snap *document.Snapshot, timeout time.Duration) *consensus.Posterior {
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return pipe.BuildPosterior(ctx, snap.Data())
}
