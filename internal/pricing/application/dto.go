package application

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/hpcmontecarlo/internal/pricing/domain"
)

// PriceDTO 一次定价的输出
type PriceDTO struct {
	RunID      string          `json:"run_id"`
	Style      domain.Style    `json:"style"`
	OptionType string          `json:"option_type"`
	Price      decimal.Decimal `json:"price"`
	StdError   decimal.Decimal `json:"std_error"`
	CILower    decimal.Decimal `json:"ci_lower"`
	CIUpper    decimal.Decimal `json:"ci_upper"`
	Paths      int             `json:"paths"`
	Seed       uint64          `json:"seed"`
	Duration   time.Duration   `json:"duration"`

	// 欧式期权附带 Black-Scholes 参照价，亚式为 nil
	Reference *decimal.Decimal   `json:"reference,omitempty"`
	Raw       domain.PriceResult `json:"-"`
}

// ReportDTO 四个价格的汇总报告
type ReportDTO struct {
	RunID      string                  `json:"run_id"`
	Seed       uint64                  `json:"seed"`
	Market     domain.MarketParameters `json:"market"`
	Simulation domain.SimulationConfig `json:"simulation"`
	Call       *PriceDTO               `json:"call"`
	Put        *PriceDTO               `json:"put"`
	AsianCall  *PriceDTO               `json:"asian_call"`
	AsianPut   *PriceDTO               `json:"asian_put"`
	// 欧式看涨看跌蒙特卡洛价格的平价偏差
	ParityGap decimal.Decimal `json:"parity_gap"`
	Duration  time.Duration   `json:"duration"`
}

const displayPlaces = 6

func newPriceDTO(runID string, style domain.Style, kind domain.OptionType, seed uint64, res domain.PriceResult, elapsed time.Duration) *PriceDTO {
	lo, hi := res.ConfidenceInterval95()
	return &PriceDTO{
		RunID:      runID,
		Style:      style,
		OptionType: string(kind),
		Price:      res.Decimal(displayPlaces),
		StdError:   decimal.NewFromFloat(res.StdError).Round(displayPlaces),
		CILower:    decimal.NewFromFloat(lo).Round(displayPlaces),
		CIUpper:    decimal.NewFromFloat(hi).Round(displayPlaces),
		Paths:      res.Paths,
		Seed:       seed,
		Duration:   elapsed,
		Raw:        res,
	}
}
