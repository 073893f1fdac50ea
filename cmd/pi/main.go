package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/wyfcoding/hpcmontecarlo/internal/estimation/domain"
	"github.com/wyfcoding/hpcmontecarlo/pkg/logger"
	"github.com/wyfcoding/hpcmontecarlo/pkg/parallel"
)

func main() {
	fs := pflag.NewFlagSet("pi", pflag.ExitOnError)
	samples := fs.Int("samples", 10_000, "number of sampled points")
	threads := fs.Int("threads", 0, "parallelism hint (0 = GOMAXPROCS)")
	seed := fs.Uint64("seed", 0, "random seed (0 = time based)")
	blockSize := fs.Int("block-size", parallel.DefaultBlockSize, "points per reduction block")
	logLevel := fs.String("log-level", "warn", "log level")
	_ = fs.Parse(os.Args[1:])

	if err := logger.Init(logger.Config{Level: *logLevel, Format: "text", Output: "stderr"}); err != nil {
		fmt.Fprintf(os.Stderr, "pi: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s := *seed
	if s == 0 {
		s = uint64(time.Now().UnixNano())
	}
	done := logger.LogDuration(ctx, "pi estimated", "samples", *samples, "seed", s)
	est, err := domain.EstimatePi(ctx, *samples, s, parallel.Options{Workers: *threads, BlockSize: *blockSize})
	done()
	if err != nil {
		logger.Error(ctx, "pi estimation failed", "error", err)
		stop()
		os.Exit(1)
	}

	fmt.Printf("PI estimated at %v in %d simulations\n", est.Value, est.Samples)
	fmt.Printf("Standard error:  %v\n", est.StdError)
}
