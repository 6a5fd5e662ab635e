// Package valuation implements the cash-flow valuation and IRR model:
// two ten-year price forecasts, a WACC-discounted fair value, an IRR
// with sensitivity grid and a quality checklist.
package valuation

import (
	"math"
	"strconv"
	"time"

	"github.com/samber/lo"

	"github.com/getvalue/getvalue/internal/domain"
	"github.com/getvalue/getvalue/internal/fmp"
	"github.com/getvalue/getvalue/internal/insights"
)

const (
	defaultHorizon     = 10
	defaultGrowthPct   = 10.0
	defaultExitMult    = 15.0
	defaultExitYield   = 4.0
	defaultMarginPct   = 25.0
	defaultRiskFree    = 0.042
	defaultEquityRiskP = 0.046
)

// Assumptions are the editable model inputs. Instances are immutable
// value objects: every change produces a new set with a bumped Version,
// so downstream results can always be tied to the inputs that produced
// them.
type Assumptions struct {
	Version           int       `json:"version"`
	BaseYear          int       `json:"baseYear"`
	EBITDAGrowthPct   []float64 `json:"ebitdaGrowthPct"`
	ExitMultiple      float64   `json:"exitMultiple"`
	FCFGrowthPct      []float64 `json:"fcfGrowthPct"`
	ExitYieldPct      float64   `json:"exitYieldPct"`
	MarginOfSafetyPct float64   `json:"marginOfSafetyPct"`
	RiskFreeRate      float64   `json:"riskFreeRate"`
	EquityRiskPremium float64   `json:"equityRiskPremium"`
	Beta              float64   `json:"beta"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Defaults seeds assumptions from the company's own history: growth from
// the 5-year CAGR, the exit multiple from the average historical
// EV/EBITDA and beta from the profile.
func Defaults(data *fmp.CompanyData) Assumptions {
	agent := insights.New(data)
	hist := BuildEBITDAHistory(data)

	ebitdaGrowth := growthDefault(agent.EBITDACAGR(5))
	fcfGrowth := growthDefault(agent.AdjFCFCAGR(5))

	exitMult := defaultExitMult
	if hist.AvgMultiple != nil && *hist.AvgMultiple > 0 {
		exitMult = math.Round(*hist.AvgMultiple*10) / 10
	}

	return Assumptions{
		Version:           1,
		BaseYear:          baseYear(data),
		EBITDAGrowthPct:   repeat(ebitdaGrowth, defaultHorizon),
		ExitMultiple:      exitMult,
		FCFGrowthPct:      repeat(fcfGrowth, defaultHorizon),
		ExitYieldPct:      defaultExitYield,
		MarginOfSafetyPct: defaultMarginPct,
		RiskFreeRate:      defaultRiskFree,
		EquityRiskPremium: defaultEquityRiskP,
		Beta:              agent.WACCComponents().Beta,
		UpdatedAt:         time.Now().UTC(),
	}
}

// growthDefault converts a historical CAGR into a per-year growth
// percentage, keeping only plausible values.
func growthDefault(c domain.Metric) float64 {
	if c.State != domain.OK || c.Val <= -1 || c.Val >= 10 {
		return defaultGrowthPct
	}
	return math.Round(c.Val*1000) / 10
}

func baseYear(data *fmp.CompanyData) int {
	if len(data.AnnualIncome) > 0 {
		if y, err := strconv.Atoi(data.AnnualIncome[0].YearLabel()); err == nil {
			return y
		}
	}
	return time.Now().Year()
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// Horizon is the forecast length in years, taken from the growth
// schedules.
func (a Assumptions) Horizon() int {
	if n := len(a.FCFGrowthPct); n > 0 {
		return n
	}
	if n := len(a.EBITDAGrowthPct); n > 0 {
		return n
	}
	return defaultHorizon
}

// Overrides carries partial assumption edits; nil fields keep the
// current value.
type Overrides struct {
	EBITDAGrowthPct   []float64 `json:"ebitdaGrowthPct,omitempty"`
	ExitMultiple      *float64  `json:"exitMultiple,omitempty"`
	FCFGrowthPct      []float64 `json:"fcfGrowthPct,omitempty"`
	ExitYieldPct      *float64  `json:"exitYieldPct,omitempty"`
	MarginOfSafetyPct *float64  `json:"marginOfSafetyPct,omitempty"`
	RiskFreeRate      *float64  `json:"riskFreeRate,omitempty"`
	EquityRiskPremium *float64  `json:"equityRiskPremium,omitempty"`
	Beta              *float64  `json:"beta,omitempty"`
}

// Merge applies overrides onto a copy of the assumptions, bumping the
// version. The receiver is unchanged.
func (a Assumptions) Merge(o Overrides) Assumptions {
	next := a
	next.EBITDAGrowthPct = append([]float64(nil), a.EBITDAGrowthPct...)
	next.FCFGrowthPct = append([]float64(nil), a.FCFGrowthPct...)

	if o.EBITDAGrowthPct != nil {
		next.EBITDAGrowthPct = append([]float64(nil), o.EBITDAGrowthPct...)
	}
	if o.FCFGrowthPct != nil {
		next.FCFGrowthPct = append([]float64(nil), o.FCFGrowthPct...)
	}
	next.ExitMultiple = lo.FromPtrOr(o.ExitMultiple, a.ExitMultiple)
	next.ExitYieldPct = lo.FromPtrOr(o.ExitYieldPct, a.ExitYieldPct)
	next.MarginOfSafetyPct = lo.FromPtrOr(o.MarginOfSafetyPct, a.MarginOfSafetyPct)
	next.RiskFreeRate = lo.FromPtrOr(o.RiskFreeRate, a.RiskFreeRate)
	next.EquityRiskPremium = lo.FromPtrOr(o.EquityRiskPremium, a.EquityRiskPremium)
	next.Beta = lo.FromPtrOr(o.Beta, a.Beta)

	next.Version = a.Version + 1
	next.UpdatedAt = time.Now().UTC()
	return next
}
