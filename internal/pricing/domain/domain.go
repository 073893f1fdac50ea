// Package domain 蒙特卡洛期权定价的领域模型与计算内核
package domain

import "strings"

// OptionType 期权类型
type OptionType string

const (
	OptionTypeCall OptionType = "CALL" // 看涨期权
	OptionTypePut  OptionType = "PUT"  // 看跌期权
)

// ParseOptionType 解析期权类型，大小写不敏感
func ParseOptionType(s string) (OptionType, error) {
	t := OptionType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", &ParameterError{Field: "option_type", Value: s, Reason: "must be CALL or PUT"}
	}
	return t, nil
}

// Valid 是否为已知类型
func (t OptionType) Valid() bool {
	return t == OptionTypeCall || t == OptionTypePut
}

// Payoff 给定标的价格（终值或均值）的到期收益
func (t OptionType) Payoff(underlying, strike float64) float64 {
	if t == OptionTypePut {
		return max(strike-underlying, 0)
	}
	return max(underlying-strike, 0)
}

// Style 期权风格
type Style string

const (
	StyleEuropean Style = "european" // 欧式，只看终值
	StyleAsian    Style = "asian"    // 亚式，看路径算术均值
)

// PathModel 路径状态模型
type PathModel int

const (
	// PathTerminal 单步直接模拟到期价格
	PathTerminal PathModel = iota
	// PathAveragedTrajectory 分期步进并取路径均值
	PathAveragedTrajectory
)

// Style 路径模型对应的期权风格
func (m PathModel) Style() Style {
	if m == PathAveragedTrajectory {
		return StyleAsian
	}
	return StyleEuropean
}
