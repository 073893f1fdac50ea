// Package rng 提供可分流的均匀随机源与 Box–Muller 标准正态采样器
package rng

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/wyfcoding/hpcmontecarlo/pkg/parallel"
)

// Uniform 产生 [0,1) 上的均匀随机数
type Uniform interface {
	Float64() float64
}

// Stream 返回 (seed, lane) 对应的独立 PCG 随机源。
// 相同的 seed 与 lane 总是得到相同的序列。
func Stream(seed, lane uint64) *rand.Rand {
	return rand.New(rand.NewPCG(splitmix64(seed), splitmix64(seed^(lane+1)*0x9e3779b97f4a7c15)))
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// BoxMuller 极坐标形式的 Box–Muller 采样器，非并发安全，每个 worker 各持一个。
type BoxMuller struct {
	src      Uniform
	spare    float64
	hasSpare bool
}

// NewBoxMuller 基于均匀随机源创建采样器
func NewBoxMuller(src Uniform) *BoxMuller {
	return &BoxMuller{src: src}
}

// Next 返回一个标准正态变量。
// 在单位圆内拒绝采样，s == 0、s >= 1 或结果非有限时重新抽取；
// 每次接受产生一对独立变量，第二个留给下一次调用。
func (b *BoxMuller) Next() float64 {
	if b.hasSpare {
		b.hasSpare = false
		return b.spare
	}
	for {
		x := 2*b.src.Float64() - 1
		y := 2*b.src.Float64() - 1
		s := x*x + y*y
		if s == 0 || s >= 1 {
			continue
		}
		f := math.Sqrt(-2 * math.Log(s) / s)
		zx, zy := x*f, y*f
		if !finite(zx) || !finite(zy) {
			continue
		}
		b.spare, b.hasSpare = zy, true
		return zx
	}
}

// Fill 用标准正态变量填满 buf
func (b *BoxMuller) Fill(buf []float64) {
	for i := range buf {
		buf[i] = b.Next()
	}
}

// GenerateVariates 并行生成 n 个标准正态变量。
// 每个块使用 Stream(seed, 块序号)，输出与并发度无关。
func GenerateVariates(ctx context.Context, n int, seed uint64, opts parallel.Options) ([]float64, error) {
	buf := make([]float64, max(n, 0))
	err := parallel.ForEach(ctx, n, opts, func(blk parallel.Block) {
		NewBoxMuller(Stream(seed, uint64(blk.Index))).Fill(buf[blk.Start:blk.End])
	})
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
