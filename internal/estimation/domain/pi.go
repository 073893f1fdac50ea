// Package domain 蒙特卡洛 π 估计
package domain

import (
	"context"
	"errors"
	"math"

	"github.com/wyfcoding/hpcmontecarlo/pkg/parallel"
	"github.com/wyfcoding/hpcmontecarlo/pkg/rng"
)

// ErrInvalidSampleCount 样本数必须为正
var ErrInvalidSampleCount = errors.New("sample count must be > 0")

// PiEstimate 一次 π 估计的结果
type PiEstimate struct {
	Value    float64
	Inside   int
	Samples  int
	StdError float64
}

// EstimatePi 在 [-1,1)² 内均匀撒点，统计落入单位圆的比例。
// 每块使用独立随机流，结果只取决于 seed、样本数和块大小。
func EstimatePi(ctx context.Context, samples int, seed uint64, opts parallel.Options) (PiEstimate, error) {
	if samples <= 0 {
		return PiEstimate{}, ErrInvalidSampleCount
	}
	inside, err := parallel.MapReduce(ctx, samples, opts, func(blk parallel.Block) int {
		src := rng.Stream(seed, uint64(blk.Index))
		n := 0
		for range blk.Len() {
			x := 2*src.Float64() - 1
			y := 2*src.Float64() - 1
			if x*x+y*y <= 1 {
				n++
			}
		}
		return n
	}, func(a, b int) int { return a + b })
	if err != nil {
		return PiEstimate{}, err
	}

	p := float64(inside) / float64(samples)
	return PiEstimate{
		Value:    4 * p,
		Inside:   inside,
		Samples:  samples,
		StdError: 4 * math.Sqrt(p*(1-p)/float64(samples)),
	}, nil
}
