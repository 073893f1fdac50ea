package domain

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/wyfcoding/hpcmontecarlo/pkg/parallel"
)

func TestEstimatePi(t *testing.T) {
	est, err := EstimatePi(context.Background(), 1_000_000, 11, parallel.Options{Workers: 4})
	if err != nil {
		t.Fatal(err)
	}
	if est.Samples != 1_000_000 || est.Inside <= 0 || est.Inside > est.Samples {
		t.Fatalf("estimate = %+v", est)
	}
	if math.Abs(est.Value-math.Pi) > 5*est.StdError {
		t.Errorf("pi = %v ± %v, too far from %v", est.Value, est.StdError, math.Pi)
	}
	// 4·sqrt(p(1−p)/N)，p ≈ π/4
	if est.StdError < 0.0015 || est.StdError > 0.0018 {
		t.Errorf("std error = %v", est.StdError)
	}
}

func TestEstimatePiWorkerIndependent(t *testing.T) {
	ctx := context.Background()
	base, err := EstimatePi(ctx, 100_000, 5, parallel.Options{Workers: 1, BlockSize: 1000})
	if err != nil {
		t.Fatal(err)
	}
	for _, w := range []int{2, 7, 64} {
		got, err := EstimatePi(ctx, 100_000, 5, parallel.Options{Workers: w, BlockSize: 1000})
		if err != nil {
			t.Fatal(err)
		}
		if got != base {
			t.Errorf("workers=%d: %+v, want %+v", w, got, base)
		}
	}
}

func TestEstimatePiErrors(t *testing.T) {
	for _, n := range []int{0, -1} {
		if _, err := EstimatePi(context.Background(), n, 1, parallel.Options{}); !errors.Is(err, ErrInvalidSampleCount) {
			t.Errorf("samples=%d: err = %v", n, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := EstimatePi(ctx, 10, 1, parallel.Options{}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
