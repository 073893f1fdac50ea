package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/hpcmontecarlo/internal/pricing/domain"
	"github.com/wyfcoding/hpcmontecarlo/pkg/logger"
	"github.com/wyfcoding/hpcmontecarlo/pkg/metrics"
)

// PricingCommandService 处理定价命令：校验、取种、调用引擎并记录指标
type PricingCommandService struct {
	engine   *domain.Engine
	recorder metrics.Recorder
}

// NewPricingCommandService 创建新的 PricingCommandService 实例，recorder 为 nil 时不记录指标
func NewPricingCommandService(engine *domain.Engine, recorder metrics.Recorder) *PricingCommandService {
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	return &PricingCommandService{
		engine:   engine,
		recorder: recorder,
	}
}

// PriceOption 按风格为单个期权定价
func (c *PricingCommandService) PriceOption(ctx context.Context, style domain.Style, cmd PriceOptionCommand) (*PriceDTO, error) {
	ctx = withRunID(ctx)
	model, err := pathModel(style)
	if err != nil {
		return nil, err
	}
	kind, err := domain.ParseOptionType(cmd.OptionType)
	if err != nil {
		c.reject(ctx, style, err)
		return nil, err
	}

	sim := cmd.Simulation
	sim.Seed = c.engine.ResolveSeed(sim)

	var z []float64
	if cmd.Precompute {
		if err := validateInputs(model, cmd.Market, sim); err != nil {
			c.reject(ctx, style, err)
			return nil, err
		}
		if z, err = c.generate(ctx, model, sim); err != nil {
			return nil, err
		}
	}
	return c.price(ctx, model, kind, cmd.Market, sim, z)
}

// PriceAll 以同一种子计算欧式与亚式的看涨、看跌价格。
// 开启预生成时，看涨与看跌共用同一组变量。
func (c *PricingCommandService) PriceAll(ctx context.Context, cmd PriceAllCommand) (*ReportDTO, error) {
	ctx = withRunID(ctx)
	start := time.Now()

	// 四个价格全部校验通过后才开始模拟
	if err := validateInputs(domain.PathTerminal, cmd.Market, cmd.Simulation); err != nil {
		c.reject(ctx, domain.StyleEuropean, err)
		return nil, err
	}
	if err := validateInputs(domain.PathAveragedTrajectory, cmd.Market, cmd.Simulation); err != nil {
		c.reject(ctx, domain.StyleAsian, err)
		return nil, err
	}

	sim := cmd.Simulation
	sim.Seed = c.engine.ResolveSeed(sim)
	logger.Info(ctx, "pricing run started",
		"num_sims", sim.NumSims,
		"num_periods", sim.NumPeriods,
		"threads", sim.Threads,
		"seed", sim.Seed,
		"precompute", cmd.Precompute,
	)

	report := &ReportDTO{
		RunID:      logger.RunID(ctx),
		Seed:       sim.Seed,
		Market:     cmd.Market,
		Simulation: sim,
	}

	targets := []struct {
		model domain.PathModel
		call  **PriceDTO
		put   **PriceDTO
	}{
		{domain.PathTerminal, &report.Call, &report.Put},
		{domain.PathAveragedTrajectory, &report.AsianCall, &report.AsianPut},
	}
	for _, t := range targets {
		var z []float64
		if cmd.Precompute {
			var err error
			if z, err = c.generate(ctx, t.model, sim); err != nil {
				return nil, err
			}
		}
		call, err := c.price(ctx, t.model, domain.OptionTypeCall, cmd.Market, sim, z)
		if err != nil {
			return nil, err
		}
		put, err := c.price(ctx, t.model, domain.OptionTypePut, cmd.Market, sim, z)
		if err != nil {
			return nil, err
		}
		*t.call, *t.put = call, put
	}

	gap := domain.ParityGap(report.Call.Raw.Price, report.Put.Raw.Price, cmd.Market)
	report.ParityGap = decimal.NewFromFloat(gap).Round(displayPlaces)
	report.Duration = time.Since(start)

	logger.Info(ctx, "pricing run finished",
		"parity_gap", gap,
		"duration", report.Duration,
	)
	return report, nil
}

func (c *PricingCommandService) price(ctx context.Context, model domain.PathModel, kind domain.OptionType, m domain.MarketParameters, sim domain.SimulationConfig, z []float64) (*PriceDTO, error) {
	style := model.Style()
	start := time.Now()

	var (
		res domain.PriceResult
		err error
	)
	switch {
	case model == domain.PathTerminal && z != nil:
		res, err = c.engine.PriceEuropeanFromVariates(ctx, kind, m, z, sim.Threads)
	case model == domain.PathTerminal:
		res, err = c.engine.PriceEuropean(ctx, kind, m, sim)
	case z != nil:
		res, err = c.engine.PriceAsianFromVariates(ctx, kind, m, z, sim.NumPeriods, sim.Threads)
	default:
		res, err = c.engine.PriceAsian(ctx, kind, m, sim)
	}
	if err != nil {
		if errors.Is(err, domain.ErrInvalidParameter) {
			c.reject(ctx, style, err)
		} else {
			logger.Error(ctx, "pricing failed", "style", style, "option_type", kind, "error", err)
		}
		return nil, err
	}

	elapsed := time.Since(start)
	c.recorder.RecordRun(string(style), string(kind), res.Paths, elapsed.Seconds(), res.StdError)

	dto := newPriceDTO(logger.RunID(ctx), style, kind, sim.Seed, res, elapsed)
	if model == domain.PathTerminal {
		ref := domain.CalculateBlackScholes(kind, m).Price.Round(displayPlaces)
		dto.Reference = &ref
	}
	logger.Debug(ctx, "option priced",
		"style", style,
		"option_type", kind,
		"price", res.Price,
		"std_error", res.StdError,
		"paths", res.Paths,
		"duration", elapsed,
	)
	return dto, nil
}

func (c *PricingCommandService) generate(ctx context.Context, model domain.PathModel, sim domain.SimulationConfig) ([]float64, error) {
	perPath := 1
	if model == domain.PathAveragedTrajectory {
		perPath = sim.NumPeriods
	}
	defer logger.LogDuration(ctx, "variates generated", "style", model.Style(), "count", sim.NumSims*perPath)()
	z, err := c.engine.GenerateVariates(ctx, sim, perPath)
	if err != nil {
		logger.Error(ctx, "variate generation failed", "style", model.Style(), "error", err)
		return nil, err
	}
	return z, nil
}

func (c *PricingCommandService) reject(ctx context.Context, style domain.Style, err error) {
	c.recorder.RecordRejected(string(style))
	logger.Warn(ctx, "pricing request rejected", "style", style, "error", err)
}

func validateInputs(model domain.PathModel, m domain.MarketParameters, sim domain.SimulationConfig) error {
	return errors.Join(m.Validate(), sim.Validate(model))
}

func pathModel(style domain.Style) (domain.PathModel, error) {
	switch style {
	case domain.StyleEuropean:
		return domain.PathTerminal, nil
	case domain.StyleAsian:
		return domain.PathAveragedTrajectory, nil
	default:
		return 0, &domain.ParameterError{Field: "style", Value: style, Reason: fmt.Sprintf("must be %s or %s", domain.StyleEuropean, domain.StyleAsian)}
	}
}

// withRunID 为没有运行 ID 的上下文分配一个
func withRunID(ctx context.Context) context.Context {
	if logger.RunID(ctx) != "" {
		return ctx
	}
	return logger.ContextWithRunID(ctx, uuid.NewString())
}
