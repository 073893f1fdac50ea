package domain

import (
	"context"
	"errors"
	"math"
	"testing"
)

var atm = MarketParameters{Spot: 100, Strike: 100, Rate: 0.05, Volatility: 0.2, Maturity: 1}

func fixedEngine() *Engine {
	return NewEngine(WithSeedSource(func() uint64 { return 20240617 }))
}

func TestEngine_RejectsInvalidParameters(t *testing.T) {
	tests := []struct {
		name   string
		kind   OptionType
		market MarketParameters
		sim    SimulationConfig
		asian  bool
		field  string
	}{
		{name: "zero sims", kind: OptionTypeCall, market: atm, sim: SimulationConfig{NumSims: 0}, field: "num_sims"},
		{name: "negative sims", kind: OptionTypePut, market: atm, sim: SimulationConfig{NumSims: -5}, field: "num_sims"},
		{name: "zero periods", kind: OptionTypeCall, market: atm, sim: SimulationConfig{NumSims: 10}, asian: true, field: "num_periods"},
		{name: "zero spot", kind: OptionTypeCall, market: MarketParameters{Strike: 100, Volatility: 0.2, Maturity: 1}, sim: SimulationConfig{NumSims: 10}, field: "spot"},
		{name: "negative strike", kind: OptionTypeCall, market: MarketParameters{Spot: 100, Strike: -1, Volatility: 0.2, Maturity: 1}, sim: SimulationConfig{NumSims: 10}, field: "strike"},
		{name: "negative volatility", kind: OptionTypeCall, market: MarketParameters{Spot: 100, Strike: 100, Volatility: -0.1, Maturity: 1}, sim: SimulationConfig{NumSims: 10}, field: "volatility"},
		{name: "zero maturity", kind: OptionTypeCall, market: MarketParameters{Spot: 100, Strike: 100, Volatility: 0.2}, sim: SimulationConfig{NumSims: 10}, field: "maturity"},
		{name: "nan rate", kind: OptionTypeCall, market: MarketParameters{Spot: 100, Strike: 100, Rate: math.NaN(), Volatility: 0.2, Maturity: 1}, sim: SimulationConfig{NumSims: 10}, field: "rate"},
		{name: "unknown type", kind: OptionType("STRADDLE"), market: atm, sim: SimulationConfig{NumSims: 10}, field: "option_type"},
		{name: "negative block size", kind: OptionTypeCall, market: atm, sim: SimulationConfig{NumSims: 10, BlockSize: -1}, field: "block_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seeded := 0
			e := NewEngine(WithSeedSource(func() uint64 {
				seeded++
				return 1
			}))

			var err error
			if tt.asian {
				_, err = e.PriceAsian(context.Background(), tt.kind, tt.market, tt.sim)
			} else {
				_, err = e.PriceEuropean(context.Background(), tt.kind, tt.market, tt.sim)
			}
			if !errors.Is(err, ErrInvalidParameter) {
				t.Fatalf("err = %v, want ErrInvalidParameter", err)
			}
			var pe *ParameterError
			if !errors.As(err, &pe) || pe.Field != tt.field {
				t.Errorf("err = %v, want field %q", err, tt.field)
			}
			if seeded != 0 {
				t.Error("simulation started before validation finished")
			}
		})
	}
}

func TestEngine_ReportsAllViolations(t *testing.T) {
	_, err := fixedEngine().PriceEuropean(context.Background(), OptionTypeCall,
		MarketParameters{Spot: -1, Strike: 0, Volatility: 0.2, Maturity: 1},
		SimulationConfig{NumSims: 0})
	fields := map[string]bool{}
	for _, target := range []string{"spot", "strike", "num_sims"} {
		fields[target] = false
	}
	var walk func(error)
	walk = func(e error) {
		var pe *ParameterError
		if errors.As(e, &pe) && e == error(pe) {
			fields[pe.Field] = true
		}
		if j, ok := e.(interface{ Unwrap() []error }); ok {
			for _, inner := range j.Unwrap() {
				walk(inner)
			}
		}
	}
	walk(err)
	for f, seen := range fields {
		if !seen {
			t.Errorf("violation %q not reported in %v", f, err)
		}
	}
}

func TestEngine_NonNegativeAndNearBlackScholes(t *testing.T) {
	e := fixedEngine()
	sim := SimulationConfig{NumSims: 400_000, Seed: 11}

	for _, kind := range []OptionType{OptionTypeCall, OptionTypePut} {
		res, err := e.PriceEuropean(context.Background(), kind, atm, sim)
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		if res.Price < 0 {
			t.Errorf("%s: negative price %v", kind, res.Price)
		}
		if res.Paths != sim.NumSims {
			t.Errorf("%s: paths = %d, want %d", kind, res.Paths, sim.NumSims)
		}
		bs := CalculateBlackScholes(kind, atm).PriceFloat()
		if diff := math.Abs(res.Price - bs); diff > 4*res.StdError {
			t.Errorf("%s: MC %v vs BS %v, |diff| %v > 4 SE (%v)", kind, res.Price, bs, diff, res.StdError)
		}
	}
}

func TestEngine_PutCallParity(t *testing.T) {
	e := fixedEngine()
	sim := SimulationConfig{NumSims: 400_000, Seed: 5}

	call, err := e.PriceEuropean(context.Background(), OptionTypeCall, atm, sim)
	if err != nil {
		t.Fatal(err)
	}
	put, err := e.PriceEuropean(context.Background(), OptionTypePut, atm, sim)
	if err != nil {
		t.Fatal(err)
	}
	if gap := ParityGap(call.Price, put.Price, atm); math.Abs(gap) > 0.15 {
		t.Errorf("parity gap = %v (call %v, put %v)", gap, call.Price, put.Price)
	}
}

func TestEngine_MonotoneInVolatility(t *testing.T) {
	e := fixedEngine()
	sim := SimulationConfig{NumSims: 100_000, Seed: 3}
	low, high := atm, atm
	low.Volatility, high.Volatility = 0.1, 0.4

	for _, kind := range []OptionType{OptionTypeCall, OptionTypePut} {
		a, err := e.PriceEuropean(context.Background(), kind, low, sim)
		if err != nil {
			t.Fatal(err)
		}
		b, err := e.PriceEuropean(context.Background(), kind, high, sim)
		if err != nil {
			t.Fatal(err)
		}
		if b.Price <= a.Price {
			t.Errorf("%s: price at v=0.4 (%v) not above v=0.1 (%v)", kind, b.Price, a.Price)
		}
	}
}

func TestEngine_StdErrorScalesWithSqrtN(t *testing.T) {
	e := fixedEngine()
	small, err := e.PriceEuropean(context.Background(), OptionTypeCall, atm, SimulationConfig{NumSims: 10_000, Seed: 8})
	if err != nil {
		t.Fatal(err)
	}
	large, err := e.PriceEuropean(context.Background(), OptionTypeCall, atm, SimulationConfig{NumSims: 160_000, Seed: 9})
	if err != nil {
		t.Fatal(err)
	}
	ratio := small.StdError / large.StdError
	if ratio < 3.5 || ratio > 4.5 {
		t.Errorf("SE ratio for 16x paths = %v, want ~4", ratio)
	}
	lo, hi := large.ConfidenceInterval95()
	if hi-lo >= func() float64 { l, h := small.ConfidenceInterval95(); return h - l }() {
		t.Error("confidence interval did not tighten with more paths")
	}
}

func TestEngine_DeterministicAcrossThreads(t *testing.T) {
	e := fixedEngine()
	ctx := context.Background()
	z, err := e.GenerateVariates(ctx, SimulationConfig{NumSims: 50_000, Seed: 77}, 1)
	if err != nil {
		t.Fatal(err)
	}

	base, err := e.PriceEuropeanFromVariates(ctx, OptionTypeCall, atm, z, 1)
	if err != nil {
		t.Fatal(err)
	}
	for _, threads := range []int{2, 3, 8, 0} {
		for range 2 {
			got, err := e.PriceEuropeanFromVariates(ctx, OptionTypeCall, atm, z, threads)
			if err != nil {
				t.Fatal(err)
			}
			if got != base {
				t.Errorf("threads=%d: %+v, want %+v", threads, got, base)
			}
		}
	}

	inline1, err := e.PriceAsian(ctx, OptionTypePut, atm, SimulationConfig{NumSims: 20_000, NumPeriods: 12, Threads: 1, Seed: 4})
	if err != nil {
		t.Fatal(err)
	}
	inline8, err := e.PriceAsian(ctx, OptionTypePut, atm, SimulationConfig{NumSims: 20_000, NumPeriods: 12, Threads: 8, Seed: 4})
	if err != nil {
		t.Fatal(err)
	}
	if inline1 != inline8 {
		t.Errorf("inline Asian differs across threads: %+v vs %+v", inline1, inline8)
	}
}

func TestEngine_BufferMatchesInlineEuropean(t *testing.T) {
	e := fixedEngine()
	ctx := context.Background()
	sim := SimulationConfig{NumSims: 30_000, Seed: 123}

	inline, err := e.PriceEuropean(ctx, OptionTypeCall, atm, sim)
	if err != nil {
		t.Fatal(err)
	}
	z, err := e.GenerateVariates(ctx, sim, 1)
	if err != nil {
		t.Fatal(err)
	}
	buffered, err := e.PriceEuropeanFromVariates(ctx, OptionTypeCall, atm, z, 4)
	if err != nil {
		t.Fatal(err)
	}
	if inline != buffered {
		t.Errorf("inline %+v != buffered %+v", inline, buffered)
	}
}

func TestEngine_AsianSinglePeriodEqualsEuropean(t *testing.T) {
	e := fixedEngine()
	ctx := context.Background()
	z, err := e.GenerateVariates(ctx, SimulationConfig{NumSims: 20_000, Seed: 55}, 1)
	if err != nil {
		t.Fatal(err)
	}

	for _, kind := range []OptionType{OptionTypeCall, OptionTypePut} {
		eu, err := e.PriceEuropeanFromVariates(ctx, kind, atm, z, 0)
		if err != nil {
			t.Fatal(err)
		}
		as, err := e.PriceAsianFromVariates(ctx, kind, atm, z, 1, 0)
		if err != nil {
			t.Fatal(err)
		}
		if rel := math.Abs(eu.Price-as.Price) / eu.Price; rel > 1e-9 {
			t.Errorf("%s: european %v vs single-period asian %v (rel %v)", kind, eu.Price, as.Price, rel)
		}
	}
}

func TestEngine_AsianCheaperThanEuropean(t *testing.T) {
	e := fixedEngine()
	ctx := context.Background()
	eu, err := e.PriceEuropean(ctx, OptionTypeCall, atm, SimulationConfig{NumSims: 100_000, Seed: 2})
	if err != nil {
		t.Fatal(err)
	}
	as, err := e.PriceAsian(ctx, OptionTypeCall, atm, SimulationConfig{NumSims: 100_000, NumPeriods: 10, Seed: 2})
	if err != nil {
		t.Fatal(err)
	}
	if as.Price <= 0 || as.Price >= eu.Price {
		t.Errorf("asian call %v, european call %v: want 0 < asian < european", as.Price, eu.Price)
	}
	if as.StdError >= eu.StdError {
		t.Errorf("asian SE %v not below european SE %v", as.StdError, eu.StdError)
	}
}

func TestEngine_AsianVariateMatrixLayout(t *testing.T) {
	e := fixedEngine()
	ctx := context.Background()
	m := MarketParameters{Spot: 100, Strike: 90, Rate: 0, Volatility: 0.5, Maturity: 1}

	// 两条路径，每条两期：路径 0 全为 0，路径 1 全为 1
	z := []float64{0, 0, 1, 1}
	got, err := e.PriceAsianFromVariates(ctx, OptionTypeCall, m, z, 2, 1)
	if err != nil {
		t.Fatal(err)
	}

	dt := 0.5
	step := func(z float64) float64 { return math.Exp(0.5*math.Sqrt(dt)*z - 0.5*0.25*dt) }
	avg := func(z float64) float64 {
		s1 := 100 * step(z)
		s2 := s1 * step(z)
		return (s1 + s2) / 2
	}
	want := (max(avg(0)-90, 0) + max(avg(1)-90, 0)) / 2
	if math.Abs(got.Price-want) > 1e-9 {
		t.Errorf("price = %v, want %v", got.Price, want)
	}

	if _, err := e.PriceAsianFromVariates(ctx, OptionTypeCall, m, z[:3], 2, 1); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("ragged matrix: err = %v, want ErrInvalidParameter", err)
	}
}

func TestEngine_ZeroVolatility(t *testing.T) {
	m := atm
	m.Volatility = 0
	res, err := fixedEngine().PriceEuropean(context.Background(), OptionTypeCall, m, SimulationConfig{NumSims: 1000, Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	want := m.Spot - m.Strike*m.DiscountFactor()
	if math.Abs(res.Price-want) > 1e-9 {
		t.Errorf("price = %v, want %v", res.Price, want)
	}
	if res.StdError > 1e-6 {
		t.Errorf("std error = %v, want ~0", res.StdError)
	}
	if bs := CalculateBlackScholes(OptionTypeCall, m).PriceFloat(); math.Abs(bs-want) > 1e-9 {
		t.Errorf("black-scholes at v=0 = %v, want %v", bs, want)
	}
}

func TestEngine_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := fixedEngine().PriceEuropean(ctx, OptionTypeCall, atm, SimulationConfig{NumSims: 100_000})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestEngine_ReferenceScenario(t *testing.T) {
	if testing.Short() {
		t.Skip("10M-path scenario skipped in short mode")
	}
	e := fixedEngine()
	sim := SimulationConfig{NumSims: 10_000_000, Seed: 17}

	call, err := e.PriceEuropean(context.Background(), OptionTypeCall, atm, sim)
	if err != nil {
		t.Fatal(err)
	}
	put, err := e.PriceEuropean(context.Background(), OptionTypePut, atm, sim)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(call.Price-10.4506) > 0.05 {
		t.Errorf("call = %v, want ~10.45", call.Price)
	}
	if math.Abs(put.Price-5.5735) > 0.05 {
		t.Errorf("put = %v, want ~5.57", put.Price)
	}
}
