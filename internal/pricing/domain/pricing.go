package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// z95 双侧 95% 置信区间的正态分位数
const z95 = 1.959963984540054

// PriceResult 一次蒙特卡洛定价的结果
type PriceResult struct {
	// 折现后的收益均值
	Price float64
	// 折现后的样本标准误差
	StdError float64
	// 模拟路径数
	Paths int
}

// ConfidenceInterval95 价格的 95% 置信区间
func (r PriceResult) ConfidenceInterval95() (lo, hi float64) {
	half := z95 * r.StdError
	return r.Price - half, r.Price + half
}

// Decimal 按给定小数位四舍五入的价格
func (r PriceResult) Decimal(places int32) decimal.Decimal {
	return decimal.NewFromFloat(r.Price).Round(places)
}

// Accumulator 收益的均值与离差平方和（Welford），用于分块归约。
// 收益量级大而方差小时也不会因相减抵消丢失精度。
type Accumulator struct {
	N    int
	Mean float64
	M2   float64
}

// Add 累加一条路径的收益
func (a *Accumulator) Add(payoff float64) {
	a.N++
	delta := payoff - a.Mean
	a.Mean += delta / float64(a.N)
	a.M2 += delta * (payoff - a.Mean)
}

// Merge 合并两个局部结果（Chan 等人的成对合并公式）
func Merge(a, b Accumulator) Accumulator {
	switch {
	case a.N == 0:
		return b
	case b.N == 0:
		return a
	}
	n := a.N + b.N
	na, nb := float64(a.N), float64(b.N)
	delta := b.Mean - a.Mean
	return Accumulator{
		N:    n,
		Mean: a.Mean + delta*nb/float64(n),
		M2:   a.M2 + b.M2 + delta*delta*na*nb/float64(n),
	}
}

// Result 以折现因子 df 计算价格与标准误差
func (a Accumulator) Result(df float64) PriceResult {
	if a.N == 0 {
		return PriceResult{}
	}
	n := float64(a.N)
	res := PriceResult{Price: a.Mean * df, Paths: a.N}
	if a.N > 1 && a.M2 > 0 {
		res.StdError = df * math.Sqrt(a.M2/(n-1)/n)
	}
	return res
}
