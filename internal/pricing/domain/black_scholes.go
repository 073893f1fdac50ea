package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// BlackScholesResult Black-Scholes 闭式解，作为蒙特卡洛估计的参照
type BlackScholesResult struct {
	Price decimal.Decimal
	Delta decimal.Decimal
	Gamma decimal.Decimal
	Theta decimal.Decimal
	Vega  decimal.Decimal
	Rho   decimal.Decimal
}

// PriceFloat 价格的 float64 形式
func (r *BlackScholesResult) PriceFloat() float64 {
	return r.Price.InexactFloat64()
}

// CalculateBlackScholes 计算欧式期权 Black-Scholes 价格和 Greeks。
// 调用方需先通过 MarketParameters.Validate；v == 0 时退化为折现的远期内在价值。
func CalculateBlackScholes(optionType OptionType, m MarketParameters) *BlackScholesResult {
	S, K, T, r, v := m.Spot, m.Strike, m.Maturity, m.Rate, m.Volatility
	sqrtT := math.Sqrt(T)
	volSqrtT := v * sqrtT
	df := math.Exp(-r * T)

	var d1, d2 float64
	if volSqrtT > 0 {
		d1 = (math.Log(S/K) + (r+0.5*v*v)*T) / volSqrtT
		d2 = d1 - volSqrtT
	} else {
		d1 = signedInf(math.Log(S/K) + r*T)
		d2 = d1
	}

	var gamma, vega float64
	if volSqrtT > 0 {
		gamma = normPdf(d1) / (S * volSqrtT)
		vega = S * sqrtT * normPdf(d1)
	}

	var price, delta, theta, rho float64
	if optionType == OptionTypeCall {
		price = S*normCdf(d1) - K*df*normCdf(d2)
		delta = normCdf(d1)
		theta = -S*normPdf(d1)*v/(2*sqrtT) - r*K*df*normCdf(d2)
		rho = K * T * df * normCdf(d2)
	} else {
		price = K*df*normCdf(-d2) - S*normCdf(-d1)
		delta = normCdf(d1) - 1
		theta = -S*normPdf(d1)*v/(2*sqrtT) + r*K*df*normCdf(-d2)
		rho = -K * T * df * normCdf(-d2)
	}

	return &BlackScholesResult{
		Price: decimal.NewFromFloat(max(price, 0)),
		Delta: decimal.NewFromFloat(delta),
		Gamma: decimal.NewFromFloat(gamma),
		Theta: decimal.NewFromFloat(theta),
		Vega:  decimal.NewFromFloat(vega),
		Rho:   decimal.NewFromFloat(rho),
	}
}

// ParityGap 看涨减看跌与 S − K·exp(−rT) 之差，理论值为 0
func ParityGap(call, put float64, m MarketParameters) float64 {
	return call - put - (m.Spot - m.Strike*m.DiscountFactor())
}

func signedInf(x float64) float64 {
	switch {
	case x > 0:
		return math.Inf(1)
	case x < 0:
		return math.Inf(-1)
	default:
		return 0
	}
}

// normCdf 标准正态分布累积分布函数
func normCdf(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// normPdf 标准正态分布概率密度函数
func normPdf(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}
