package valuation

import (
	"math"

	"github.com/getvalue/getvalue/internal/fmp"
	"github.com/getvalue/getvalue/internal/insights"
)

// Result is one full model run: both forecasts, the discounted fair
// value, the expected IRR with its sensitivity grid and the quality
// checklist, all tied to the assumptions that produced them.
type Result struct {
	Ticker      string      `json:"ticker"`
	Price       *float64    `json:"price"`
	Assumptions Assumptions `json:"assumptions"`

	NetDebt        float64      `json:"netDebt"`
	EBITDAForecast []EBITDAYear `json:"ebitdaForecast"`
	FCFForecast    []FCFYear    `json:"fcfForecast"`

	EBITDATarget  *float64 `json:"ebitdaTarget"`
	FCFTarget     *float64 `json:"fcfTarget"`
	BlendedTarget *float64 `json:"blendedTarget"`

	CostOfCapital CostOfCapital `json:"costOfCapital"`
	FairValue     *float64      `json:"fairValue"`
	BuyPrice      *float64      `json:"buyPrice"`
	OnSale        *bool         `json:"onSale"`

	IRR         *float64        `json:"irr"`
	Sensitivity SensitivityGrid `json:"sensitivity"`
	Checklist   Checklist       `json:"checklist"`
}

// Evaluate runs the valuation model over raw company data with the
// given assumptions.
func Evaluate(data *fmp.CompanyData, a Assumptions) Result {
	agent := insights.New(data)
	components := agent.WACCComponents()

	var netDebt float64
	if debt := ttmBS(data.QuarterlyBalance, "totalDebt"); debt != nil {
		netDebt = *debt
	}
	if cash := ttmBS(data.QuarterlyBalance, "cashAndCashEquivalents"); cash != nil {
		netDebt -= *cash
	}

	var baseEBITDA *float64
	if len(data.AnnualIncome) > 0 {
		baseEBITDA = data.AnnualIncome[0].Number("ebitda")
	}
	shares := ttmShares(data.QuarterlyIncome)

	r := Result{
		Ticker:      data.Ticker,
		Assumptions: a,
		NetDebt:     netDebt,
	}
	if data.Overview != nil {
		r.Price = data.Overview.Number("price")
	}

	r.EBITDAForecast = ForecastEBITDA(baseEBITDA, a.EBITDAGrowthPct, a.ExitMultiple, netDebt, shares, a.BaseYear)

	basePerShare := agent.AdjFCFPerShareTTM()
	var cashflows []float64
	r.FCFForecast, cashflows = ForecastFCF(basePerShare, a.FCFGrowthPct, a.ExitYieldPct, a.BaseYear)

	if n := len(r.EBITDAForecast); n > 0 {
		r.EBITDATarget = r.EBITDAForecast[n-1].FairValuePerShare
	}
	if n := len(r.FCFForecast); n > 0 {
		// The exit price implied by the terminal yield.
		target := r.FCFForecast[n-1].AdjFCFPerShare / effectiveYield(a.ExitYieldPct)
		r.FCFTarget = &target
	}
	if r.EBITDATarget != nil && r.FCFTarget != nil {
		blended := (*r.EBITDATarget + *r.FCFTarget) / 2
		r.BlendedTarget = &blended
	}

	r.CostOfCapital = ComputeWACC(components, a.RiskFreeRate, a.Beta, a.EquityRiskPremium)
	if r.BlendedTarget != nil && r.CostOfCapital.WACC > -1 {
		fair := *r.BlendedTarget / math.Pow(1+r.CostOfCapital.WACC, float64(a.Horizon()))
		r.FairValue = &fair
	}
	if r.FairValue != nil {
		buy := *r.FairValue * (1 - a.MarginOfSafetyPct/100)
		r.BuyPrice = &buy
	}
	if r.Price != nil && r.BuyPrice != nil {
		onSale := *r.Price < *r.BuyPrice
		r.OnSale = &onSale
	}

	if r.Price != nil && *r.Price > 0 && len(cashflows) > 0 {
		r.IRR = IRR(append([]float64{-*r.Price}, cashflows...))
	}

	perShare := make([]float64, len(r.FCFForecast))
	for i, y := range r.FCFForecast {
		perShare[i] = y.AdjFCFPerShare
	}
	r.Sensitivity = SensitivityIRR(r.Price, perShare, a.ExitYieldPct)
	r.Checklist = BuildChecklist(agent, r.IRR)

	return r
}
