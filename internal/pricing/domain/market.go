package domain

import (
	"errors"
	"math"
)

// MarketParameters 市场参数，创建后不再修改
type MarketParameters struct {
	Spot       float64 // 标的资产价格 S
	Strike     float64 // 执行价格 K
	Rate       float64 // 无风险利率 r
	Volatility float64 // 波动率 v
	Maturity   float64 // 到期时间 T（年）
}

// Validate 检查 S > 0, K > 0, v >= 0, T > 0，且全部为有限值
func (m MarketParameters) Validate() error {
	var errs []error
	check := func(field string, v float64, ok bool, reason string) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			errs = append(errs, &ParameterError{Field: field, Value: v, Reason: "must be finite"})
			return
		}
		if !ok {
			errs = append(errs, &ParameterError{Field: field, Value: v, Reason: reason})
		}
	}
	check("spot", m.Spot, m.Spot > 0, "must be > 0")
	check("strike", m.Strike, m.Strike > 0, "must be > 0")
	check("rate", m.Rate, true, "")
	check("volatility", m.Volatility, m.Volatility >= 0, "must be >= 0")
	check("maturity", m.Maturity, m.Maturity > 0, "must be > 0")
	return errors.Join(errs...)
}

// DiscountFactor 折现因子 exp(-rT)
func (m MarketParameters) DiscountFactor() float64 {
	return math.Exp(-m.Rate * m.Maturity)
}

// SimulationConfig 模拟参数
type SimulationConfig struct {
	// 模拟路径数
	NumSims int
	// 亚式期权的平均期数，欧式定价忽略
	NumPeriods int
	// 并发度提示，<= 0 时取 GOMAXPROCS；不影响结果
	Threads int
	// 归约分块大小，0 取默认值；同一 Seed 下改变分块会改变抽样
	BlockSize int
	// 随机种子，0 表示由引擎取种
	Seed uint64
}

// Validate 按路径模型检查模拟参数
func (c SimulationConfig) Validate(model PathModel) error {
	var errs []error
	if c.NumSims <= 0 {
		errs = append(errs, &ParameterError{Field: "num_sims", Value: c.NumSims, Reason: "must be > 0"})
	}
	if model == PathAveragedTrajectory && c.NumPeriods <= 0 {
		errs = append(errs, &ParameterError{Field: "num_periods", Value: c.NumPeriods, Reason: "must be > 0"})
	}
	if c.BlockSize < 0 {
		errs = append(errs, &ParameterError{Field: "block_size", Value: c.BlockSize, Reason: "must be >= 0"})
	}
	return errors.Join(errs...)
}
