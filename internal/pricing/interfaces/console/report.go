// Package console 以终端文本形式输出定价报告
package console

import (
	"fmt"
	"io"

	"github.com/wyfcoding/hpcmontecarlo/internal/pricing/application"
)

const labelWidth = 19

// ReportWriter 向 io.Writer 输出定价报告，遇到第一个写错误后停止
type ReportWriter struct {
	w   io.Writer
	err error
}

// NewReportWriter 创建报告输出器
func NewReportWriter(w io.Writer) *ReportWriter {
	return &ReportWriter{w: w}
}

func (rw *ReportWriter) line(label string, value any) {
	if rw.err != nil {
		return
	}
	_, rw.err = fmt.Fprintf(rw.w, "%-*s%v\n", labelWidth, label+":", value)
}

func (rw *ReportWriter) blank() {
	if rw.err != nil {
		return
	}
	_, rw.err = fmt.Fprintln(rw.w)
}

// Write 输出参数回显与四个价格；detailed 为 true 时追加参照价、置信区间和标准误差
func (rw *ReportWriter) Write(r *application.ReportDTO, detailed bool) error {
	m, sim := r.Market, r.Simulation
	rw.line("Number of Paths", sim.NumSims)
	rw.line("Underlying", m.Spot)
	rw.line("Strike", m.Strike)
	rw.line("Risk-Free Rate", m.Rate)
	rw.line("Volatility", m.Volatility)
	rw.line("Maturity", m.Maturity)
	rw.line("T Divisions", sim.NumPeriods)
	rw.blank()

	prices := []struct {
		label string
		dto   *application.PriceDTO
	}{
		{"Call Price", r.Call},
		{"Put Price", r.Put},
		{"Asian Call Price", r.AsianCall},
		{"Asian Put Price", r.AsianPut},
	}
	for _, p := range prices {
		rw.line(p.label, p.dto.Price)
	}
	if !detailed {
		return rw.err
	}

	rw.blank()
	for _, p := range prices {
		if p.dto.Reference != nil {
			rw.line(p.label+" (BS)", p.dto.Reference)
		}
	}
	for _, p := range prices {
		rw.line(p.label+" 95% CI", fmt.Sprintf("[%s, %s]", p.dto.CILower, p.dto.CIUpper))
		rw.line(p.label+" SE", p.dto.StdError)
	}
	rw.line("Parity Gap", r.ParityGap)
	rw.line("Seed", r.Seed)
	rw.line("Run ID", r.RunID)
	rw.line("Elapsed", r.Duration)
	return rw.err
}
