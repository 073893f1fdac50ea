// Package metrics 提供定价运行的 Prometheus 指标与记录器接口
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wyfcoding/hpcmontecarlo/pkg/logger"
)

// Metrics 指标集合
type Metrics struct {
	// 定价运行次数，按期权风格与类型区分
	PricingRunsTotal *prometheus.CounterVec
	// 已模拟路径数
	PathsSimulatedTotal *prometheus.CounterVec
	// 单次定价耗时
	PricingDuration *prometheus.HistogramVec
	// 因参数非法被拒绝的请求数
	RejectedTotal *prometheus.CounterVec
	// 最近一次估计的标准误差
	LastStdError *prometheus.GaugeVec
}

// New 创建指标实例
func New(subsystem string) *Metrics {
	return &Metrics{
		PricingRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "montecarlo",
			Subsystem: subsystem,
			Name:      "runs_total",
			Help:      "Total Monte Carlo runs",
		}, []string{"style", "type"}),
		PathsSimulatedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "montecarlo",
			Subsystem: subsystem,
			Name:      "paths_simulated_total",
			Help:      "Total simulated paths",
		}, []string{"style"}),
		PricingDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "montecarlo",
			Subsystem: subsystem,
			Name:      "run_duration_seconds",
			Help:      "Monte Carlo run duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"style"}),
		RejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "montecarlo",
			Subsystem: subsystem,
			Name:      "rejected_total",
			Help:      "Runs rejected by parameter validation",
		}, []string{"style"}),
		LastStdError: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "montecarlo",
			Subsystem: subsystem,
			Name:      "last_std_error",
			Help:      "Standard error of the most recent estimate",
		}, []string{"style", "type"}),
	}
}

// Register 在给定 registerer 上注册全部指标
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.PricingRunsTotal,
		m.PathsSimulatedTotal,
		m.PricingDuration,
		m.RejectedTotal,
		m.LastStdError,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			logger.Error(context.Background(), "Failed to register metric", "error", err)
			return err
		}
	}
	return nil
}

// WriteTextfile 将 gatherer 的当前值写成 node-exporter textfile 格式
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}

// Recorder 定价指标记录接口
type Recorder interface {
	// 记录一次完成的运行
	RecordRun(style, optionType string, paths int, seconds, stdError float64)
	// 记录一次被拒绝的运行
	RecordRejected(style string)
}

// PrometheusRecorder 基于 Metrics 的记录器
type PrometheusRecorder struct {
	metrics *Metrics
}

// NewPrometheusRecorder 创建记录器
func NewPrometheusRecorder(m *Metrics) *PrometheusRecorder {
	return &PrometheusRecorder{metrics: m}
}

// RecordRun 实现 Recorder
func (r *PrometheusRecorder) RecordRun(style, optionType string, paths int, seconds, stdError float64) {
	r.metrics.PricingRunsTotal.WithLabelValues(style, optionType).Inc()
	r.metrics.PathsSimulatedTotal.WithLabelValues(style).Add(float64(paths))
	r.metrics.PricingDuration.WithLabelValues(style).Observe(seconds)
	r.metrics.LastStdError.WithLabelValues(style, optionType).Set(stdError)
}

// RecordRejected 实现 Recorder
func (r *PrometheusRecorder) RecordRejected(style string) {
	r.metrics.RejectedTotal.WithLabelValues(style).Inc()
}

// Noop 不记录任何指标
type Noop struct{}

func (Noop) RecordRun(string, string, int, float64, float64) {}

func (Noop) RecordRejected(string) {}
