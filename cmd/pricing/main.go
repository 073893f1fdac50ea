package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/wyfcoding/hpcmontecarlo/internal/pricing/application"
	"github.com/wyfcoding/hpcmontecarlo/internal/pricing/domain"
	"github.com/wyfcoding/hpcmontecarlo/internal/pricing/interfaces/console"
	"github.com/wyfcoding/hpcmontecarlo/pkg/config"
	"github.com/wyfcoding/hpcmontecarlo/pkg/logger"
	"github.com/wyfcoding/hpcmontecarlo/pkg/metrics"
)

const BootstrapName = "pricing"

func main() {
	fs := pflag.NewFlagSet(BootstrapName, pflag.ExitOnError)
	configPath := fs.String("config", "configs/pricing/config.toml", "path to config file")
	detailed := fs.Bool("detailed", false, "print reference prices, confidence intervals and run info")
	config.RegisterFlags(fs)
	_ = fs.Parse(os.Args[1:])

	if err := run(*configPath, fs, *detailed); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", BootstrapName, err)
		os.Exit(1)
	}
}

func run(configPath string, fs *pflag.FlagSet, detailed bool) error {
	// 1. Config
	cfg, err := config.Load(configPath, fs)
	if err != nil {
		return err
	}

	// 2. Logger
	if err := logger.Init(cfg.Logger); err != nil {
		return fmt.Errorf("init logger failed: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Metrics
	var recorder metrics.Recorder = metrics.Noop{}
	reg := prometheus.NewRegistry()
	if cfg.Metrics.Enabled {
		m := metrics.New(BootstrapName)
		if err := m.Register(reg); err != nil {
			return fmt.Errorf("register metrics failed: %w", err)
		}
		recorder = metrics.NewPrometheusRecorder(m)
	}

	// 4. Application
	svc := application.NewPricingService(domain.NewEngine(), recorder)
	report, err := svc.PriceAll(ctx, application.PriceAllCommand{
		Market: domain.MarketParameters{
			Spot:       cfg.Market.Spot,
			Strike:     cfg.Market.Strike,
			Rate:       cfg.Market.Rate,
			Volatility: cfg.Market.Volatility,
			Maturity:   cfg.Market.Maturity,
		},
		Simulation: domain.SimulationConfig{
			NumSims:    cfg.Simulation.NumSims,
			NumPeriods: cfg.Simulation.NumPeriods,
			Threads:    cfg.Simulation.Threads,
			BlockSize:  cfg.Simulation.BlockSize,
			Seed:       cfg.Simulation.Seed,
		},
		Precompute: cfg.Simulation.Precompute,
	})
	if err != nil {
		return err
	}

	// 5. Report
	if err := console.NewReportWriter(os.Stdout).Write(report, detailed); err != nil {
		return fmt.Errorf("write report failed: %w", err)
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Textfile != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.Textfile, reg); err != nil {
			logger.Warn(ctx, "failed to write metrics textfile", "path", cfg.Metrics.Textfile, "error", err)
		}
	}
	return nil
}
