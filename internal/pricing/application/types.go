package application

import "github.com/wyfcoding/hpcmontecarlo/internal/pricing/domain"

// PriceOptionCommand 单个期权定价命令
type PriceOptionCommand struct {
	OptionType string
	Market     domain.MarketParameters
	Simulation domain.SimulationConfig
	// 先生成全部正态变量再定价
	Precompute bool
}

// PriceAllCommand 同一组参数下计算欧式与亚式的看涨、看跌四个价格
type PriceAllCommand struct {
	Market     domain.MarketParameters
	Simulation domain.SimulationConfig
	Precompute bool
}
