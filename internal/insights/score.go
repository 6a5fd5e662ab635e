package insights

import (
	"math"

	"github.com/getvalue/getvalue/internal/domain"
)

// Piotroski computes the 9-point F-Score from the two most recent annual
// periods. Companies with less than two periods of any statement get no
// score.
func (a *Agent) Piotroski() *int {
	if len(a.isL) < 2 || len(a.bsL) < 2 || len(a.cfL) < 2 {
		return nil
	}
	score := 0

	// Profitability
	ni := ann(a.isL, "netIncome", 0)
	cfo := ann(a.cfL, "operatingCashFlow", 0)
	roa0 := domain.SafeDivide(ni, ann(a.bsL, "totalAssets", 0))
	roa1 := domain.SafeDivide(ann(a.isL, "netIncome", 1), ann(a.bsL, "totalAssets", 1))
	if roa0 != nil && *roa0 > 0 {
		score++
	}
	if cfo != nil && *cfo > 0 {
		score++
	}
	if roa0 != nil && roa1 != nil && *roa0 > *roa1 {
		score++
	}
	if ni != nil && cfo != nil && *cfo > *ni {
		score++
	}

	// Leverage and liquidity
	ltd0 := ann(a.bsL, "longTermDebt", 0)
	ltd1 := ann(a.bsL, "longTermDebt", 1)
	cr0 := domain.SafeDivide(ann(a.bsL, "totalCurrentAssets", 0), ann(a.bsL, "totalCurrentLiabilities", 0))
	cr1 := domain.SafeDivide(ann(a.bsL, "totalCurrentAssets", 1), ann(a.bsL, "totalCurrentLiabilities", 1))
	sh0 := ann(a.isL, "weightedAverageShsOut", 0)
	sh1 := ann(a.isL, "weightedAverageShsOut", 1)
	if ltd0 != nil && ltd1 != nil && *ltd0 < *ltd1 {
		score++
	}
	if cr0 != nil && cr1 != nil && *cr0 > *cr1 {
		score++
	}
	// Flat share count still scores: the test is "no net issuance".
	if sh0 != nil && sh1 != nil && *sh0 <= *sh1 {
		score++
	}

	// Efficiency
	gm0 := domain.SafeDivide(ann(a.isL, "grossProfit", 0), ann(a.isL, "revenue", 0))
	gm1 := domain.SafeDivide(ann(a.isL, "grossProfit", 1), ann(a.isL, "revenue", 1))
	at0 := domain.SafeDivide(ann(a.isL, "revenue", 0), ann(a.bsL, "totalAssets", 0))
	at1 := domain.SafeDivide(ann(a.isL, "revenue", 1), ann(a.bsL, "totalAssets", 1))
	if gm0 != nil && gm1 != nil && *gm0 > *gm1 {
		score++
	}
	if at0 != nil && at1 != nil && *at0 > *at1 {
		score++
	}

	return &score
}

// WACCComponents carries the raw inputs for a weighted-average cost of
// capital calculation.
type WACCComponents struct {
	TaxRate          float64 `json:"taxRate"`
	InterestExpense  float64 `json:"interestExpense"`
	InterestCoverage float64 `json:"interestCoverage"`
	EquityValue      float64 `json:"equityValue"`
	DebtValue        float64 `json:"debtValue"`
	Beta             float64 `json:"beta"`
}

// WACCComponents assembles cost-of-capital inputs from TTM data and the
// company profile. A company with no interest expense is treated as
// maximally covered; one with interest but no EBITDA as uncovered.
func (a *Agent) WACCComponents() WACCComponents {
	c := WACCComponents{
		TaxRate: a.taxRate(),
		Beta:    1.0,
	}

	if beta := a.ov.Number("beta"); beta != nil && *beta > 0 {
		c.Beta = *beta
	}
	if mkt := a.ov.Number("mktCap"); mkt != nil {
		c.EquityValue = *mkt
	}
	if debt := a.ttmBS("totalDebt"); debt != nil {
		c.DebtValue = *debt
	}

	if intExp := ttmFlow(a.qIS, "interestExpense"); intExp != nil {
		c.InterestExpense = *intExp
	}
	switch ebitdaTTM := ttmFlow(a.qIS, "ebitda"); {
	case c.InterestExpense == 0:
		c.InterestCoverage = 10.0
	case ebitdaTTM == nil:
		c.InterestCoverage = 0
	default:
		c.InterestCoverage = *ebitdaTTM / math.Abs(c.InterestExpense)
	}

	return c
}
