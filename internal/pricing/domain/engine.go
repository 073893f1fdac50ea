package domain

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/wyfcoding/hpcmontecarlo/pkg/parallel"
	"github.com/wyfcoding/hpcmontecarlo/pkg/rng"
)

// normal 标准正态变量来源
type normal interface {
	Next() float64
}

// bufferCursor 顺序读取预生成的变量缓冲区
type bufferCursor struct {
	buf []float64
	pos int
}

func (c *bufferCursor) Next() float64 {
	z := c.buf[c.pos]
	c.pos++
	return z
}

// pathSpec 一类路径的预计算常量。
// 欧式：start = S·exp(T(r−½v²))，diffusion = sqrt(v²T)。
// 亚式：start = S，drift = (r−½v²)dt，diffusion = sqrt(v²dt)。
type pathSpec struct {
	model     PathModel
	kind      OptionType
	strike    float64
	periods   int
	start     float64
	drift     float64
	diffusion float64
}

func newPathSpec(model PathModel, kind OptionType, m MarketParameters, periods int) pathSpec {
	v2 := m.Volatility * m.Volatility
	spec := pathSpec{model: model, kind: kind, strike: m.Strike, periods: periods}
	if model == PathTerminal {
		spec.periods = 1
		spec.start = m.Spot * math.Exp(m.Maturity*(m.Rate-0.5*v2))
		spec.diffusion = math.Sqrt(v2 * m.Maturity)
		return spec
	}
	dt := m.Maturity / float64(periods)
	spec.start = m.Spot
	spec.drift = (m.Rate - 0.5*v2) * dt
	spec.diffusion = math.Sqrt(v2 * dt)
	return spec
}

// payoff 模拟一条路径并返回未折现收益
func (s pathSpec) payoff(z normal) float64 {
	if s.model == PathTerminal {
		return s.kind.Payoff(s.start*math.Exp(s.diffusion*z.Next()), s.strike)
	}
	cur, sum := s.start, 0.0
	for range s.periods {
		cur *= math.Exp(s.diffusion*z.Next() + s.drift)
		sum += cur
	}
	return s.kind.Payoff(sum/float64(s.periods), s.strike)
}

// Engine 蒙特卡洛定价引擎，可被多个协程同时使用
type Engine struct {
	seed func() uint64
}

// EngineOption 引擎选项
type EngineOption func(*Engine)

// WithSeedSource 指定 SimulationConfig.Seed 为 0 时的取种函数
func WithSeedSource(f func() uint64) EngineOption {
	return func(e *Engine) {
		e.seed = f
	}
}

// NewEngine 创建引擎，默认按纳秒时间取种
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{seed: func() uint64 { return uint64(time.Now().UnixNano()) }}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ResolveSeed 返回本次运行实际使用的种子
func (e *Engine) ResolveSeed(sim SimulationConfig) uint64 {
	if sim.Seed != 0 {
		return sim.Seed
	}
	return e.seed()
}

// PriceEuropean 欧式期权定价，变量按块从独立随机流中即时抽取
func (e *Engine) PriceEuropean(ctx context.Context, kind OptionType, m MarketParameters, sim SimulationConfig) (PriceResult, error) {
	return e.priceInline(ctx, PathTerminal, kind, m, sim)
}

// PriceAsian 算术平均亚式期权定价，每条路径每期抽取一个新变量
func (e *Engine) PriceAsian(ctx context.Context, kind OptionType, m MarketParameters, sim SimulationConfig) (PriceResult, error) {
	return e.priceInline(ctx, PathAveragedTrajectory, kind, m, sim)
}

// PriceEuropeanFromVariates 使用预生成的变量定价欧式期权，len(z) 即路径数
func (e *Engine) PriceEuropeanFromVariates(ctx context.Context, kind OptionType, m MarketParameters, z []float64, threads int) (PriceResult, error) {
	sim := SimulationConfig{NumSims: len(z), NumPeriods: 1, Threads: threads}
	return e.priceBuffer(ctx, PathTerminal, kind, m, sim, z)
}

// PriceAsianFromVariates 使用预生成的变量矩阵定价亚式期权。
// z 按行存放，路径 i 第 j 期位于 z[i*periods+j]，路径数为 len(z)/periods。
func (e *Engine) PriceAsianFromVariates(ctx context.Context, kind OptionType, m MarketParameters, z []float64, periods, threads int) (PriceResult, error) {
	if periods <= 0 {
		return PriceResult{}, &ParameterError{Field: "num_periods", Value: periods, Reason: "must be > 0"}
	}
	if len(z)%periods != 0 {
		return PriceResult{}, &ParameterError{Field: "variates", Value: len(z), Reason: "length must be a multiple of num_periods"}
	}
	sim := SimulationConfig{NumSims: len(z) / periods, NumPeriods: periods, Threads: threads}
	return e.priceBuffer(ctx, PathAveragedTrajectory, kind, m, sim, z)
}

// GenerateVariates 生成 NumSims×perPath 个标准正态变量。
// perPath 为 1 且分块大小相同时，与 PriceEuropean 在同一种子下抽到的变量逐个相同。
func (e *Engine) GenerateVariates(ctx context.Context, sim SimulationConfig, perPath int) ([]float64, error) {
	if perPath <= 0 {
		return nil, &ParameterError{Field: "per_path", Value: perPath, Reason: "must be > 0"}
	}
	if sim.NumSims <= 0 {
		return nil, &ParameterError{Field: "num_sims", Value: sim.NumSims, Reason: "must be > 0"}
	}
	opts := parallel.Options{Workers: sim.Threads, BlockSize: sim.BlockSize}
	return rng.GenerateVariates(ctx, sim.NumSims*perPath, e.ResolveSeed(sim), opts)
}

func (e *Engine) priceInline(ctx context.Context, model PathModel, kind OptionType, m MarketParameters, sim SimulationConfig) (PriceResult, error) {
	if err := validate(model, kind, m, sim); err != nil {
		return PriceResult{}, err
	}
	seed := e.ResolveSeed(sim)
	return simulate(ctx, newPathSpec(model, kind, m, sim.NumPeriods), m, sim, func(blk parallel.Block) normal {
		return rng.NewBoxMuller(rng.Stream(seed, uint64(blk.Index)))
	})
}

func (e *Engine) priceBuffer(ctx context.Context, model PathModel, kind OptionType, m MarketParameters, sim SimulationConfig, z []float64) (PriceResult, error) {
	if err := validate(model, kind, m, sim); err != nil {
		return PriceResult{}, err
	}
	spec := newPathSpec(model, kind, m, sim.NumPeriods)
	return simulate(ctx, spec, m, sim, func(blk parallel.Block) normal {
		return &bufferCursor{buf: z[blk.Start*spec.periods : blk.End*spec.periods]}
	})
}

func validate(model PathModel, kind OptionType, m MarketParameters, sim SimulationConfig) error {
	var errs []error
	if !kind.Valid() {
		errs = append(errs, &ParameterError{Field: "option_type", Value: kind, Reason: "must be CALL or PUT"})
	}
	if err := m.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := sim.Validate(model); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// simulate 统一的路径模拟与归约：逐块累加收益，按块序合并后乘以 1/N 与折现因子
func simulate(ctx context.Context, spec pathSpec, m MarketParameters, sim SimulationConfig, source func(parallel.Block) normal) (PriceResult, error) {
	opts := parallel.Options{Workers: sim.Threads, BlockSize: sim.BlockSize}
	acc, err := parallel.MapReduce(ctx, sim.NumSims, opts, func(blk parallel.Block) Accumulator {
		z := source(blk)
		var a Accumulator
		for range blk.Len() {
			a.Add(spec.payoff(z))
		}
		return a
	}, Merge)
	if err != nil {
		return PriceResult{}, err
	}
	return acc.Result(m.DiscountFactor()), nil
}
