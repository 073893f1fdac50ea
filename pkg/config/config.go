// Package config 提供 TOML 配置加载、环境变量与命令行参数覆盖及校验
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/wyfcoding/hpcmontecarlo/pkg/logger"
)

// EnvPrefix 环境变量前缀，例如 MC_SIMULATION_NUM_SIMS
const EnvPrefix = "MC"

// Config 定价程序配置
type Config struct {
	// 服务名称
	ServiceName string `mapstructure:"service_name"`
	// 环境：dev, staging, prod
	Environment string `mapstructure:"environment"`
	// 市场参数
	Market MarketConfig `mapstructure:"market"`
	// 模拟参数
	Simulation SimulationConfig `mapstructure:"simulation"`
	// 日志配置
	Logger logger.Config `mapstructure:"logger"`
	// 指标配置
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// MarketConfig 市场参数
type MarketConfig struct {
	Spot       float64 `mapstructure:"spot"`
	Strike     float64 `mapstructure:"strike"`
	Rate       float64 `mapstructure:"rate"`
	Volatility float64 `mapstructure:"volatility"`
	Maturity   float64 `mapstructure:"maturity"`
}

// SimulationConfig 模拟参数
type SimulationConfig struct {
	// 模拟路径数
	NumSims int `mapstructure:"num_sims"`
	// 亚式期权的平均期数
	NumPeriods int `mapstructure:"num_periods"`
	// 并发度提示，0 表示 GOMAXPROCS
	Threads int `mapstructure:"threads"`
	// 随机种子，0 表示按时间取种
	Seed uint64 `mapstructure:"seed"`
	// 归约分块大小
	BlockSize int `mapstructure:"block_size"`
	// 是否先生成正态变量缓冲区再定价，看涨与看跌共用同一缓冲区
	Precompute bool `mapstructure:"precompute"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	// 是否启用
	Enabled bool `mapstructure:"enabled"`
	// node-exporter textfile 输出路径，为空则不写出
	Textfile string `mapstructure:"textfile"`
}

// Load 依次应用默认值、配置文件、环境变量与命令行参数。
// configPath 为空或文件不存在时只使用默认值。
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// RegisterFlags 注册可覆盖配置的命令行参数。
// 参数名与配置键一致，仅在显式指定时生效。
func RegisterFlags(fs *pflag.FlagSet) {
	fs.Int("num-sims", 0, "number of simulated paths")
	fs.Int("num-periods", 0, "averaging periods for Asian options")
	fs.Int("threads", 0, "parallelism hint (0 = GOMAXPROCS)")
	fs.Uint64("seed", 0, "random seed (0 = time based)")
	fs.Bool("precompute", false, "pre-generate variate buffers shared by call and put")
	fs.Int("block-size", 0, "paths per reduction block")
	fs.Float64("spot", 0, "spot price S")
	fs.Float64("strike", 0, "strike price K")
	fs.Float64("rate", 0, "risk-free rate r")
	fs.Float64("volatility", 0, "volatility v")
	fs.Float64("maturity", 0, "maturity T in years")
	fs.String("log-level", "", "log level")
}

var flagKeys = map[string]string{
	"num-sims":    "simulation.num_sims",
	"num-periods": "simulation.num_periods",
	"threads":     "simulation.threads",
	"seed":        "simulation.seed",
	"precompute":  "simulation.precompute",
	"block-size":  "simulation.block_size",
	"spot":        "market.spot",
	"strike":      "market.strike",
	"rate":        "market.rate",
	"volatility":  "market.volatility",
	"maturity":    "market.maturity",
	"log-level":   "logger.level",
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || err != nil {
			return
		}
		err = v.BindPFlag(key, f)
	})
	if err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}
	return nil
}

// Validate 校验配置。市场参数的业务约束由定价领域层负责。
func (c *Config) Validate() error {
	var errs []error
	if c.ServiceName == "" {
		errs = append(errs, errors.New("service_name is required"))
	}
	if c.Environment == "" {
		c.Environment = "dev"
	}
	if c.Simulation.Threads < 0 {
		errs = append(errs, fmt.Errorf("simulation.threads must be >= 0, got %d", c.Simulation.Threads))
	}
	if c.Simulation.BlockSize < 0 {
		errs = append(errs, fmt.Errorf("simulation.block_size must be >= 0, got %d", c.Simulation.BlockSize))
	}
	switch c.Logger.Output {
	case "stdout", "stderr", "file", "both":
	default:
		errs = append(errs, fmt.Errorf("logger.output must be stdout, stderr, file or both, got %q", c.Logger.Output))
	}
	if (c.Logger.Output == "file" || c.Logger.Output == "both") && c.Logger.FilePath == "" {
		errs = append(errs, errors.New("logger.file_path is required for file output"))
	}
	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "pricing")
	v.SetDefault("environment", "dev")

	v.SetDefault("market.spot", 100.0)
	v.SetDefault("market.strike", 100.0)
	v.SetDefault("market.rate", 0.05)
	v.SetDefault("market.volatility", 0.2)
	v.SetDefault("market.maturity", 1.0)

	v.SetDefault("simulation.num_sims", 10_000_000)
	v.SetDefault("simulation.num_periods", 10)
	v.SetDefault("simulation.threads", 0)
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.block_size", 4096)
	v.SetDefault("simulation.precompute", false)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "text")
	v.SetDefault("logger.output", "stderr")
	v.SetDefault("logger.file_path", "logs/pricing.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 10)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.with_caller", false)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.textfile", "")
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}
