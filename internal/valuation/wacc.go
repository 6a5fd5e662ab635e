package valuation

import "github.com/getvalue/getvalue/internal/insights"

// CostOfCapital is a fully assembled WACC breakdown.
type CostOfCapital struct {
	CreditSpread float64 `json:"creditSpread"`
	CostOfDebt   float64 `json:"costOfDebt"`
	CostOfEquity float64 `json:"costOfEquity"`
	DebtWeight   float64 `json:"debtWeight"`
	EquityWeight float64 `json:"equityWeight"`
	WACC         float64 `json:"wacc"`
}

// ComputeWACC combines the company's capital structure with market
// assumptions. Cost of debt is the risk-free rate plus the synthetic
// credit spread, after tax; cost of equity follows CAPM. Weights come
// from market equity value and TTM total debt.
func ComputeWACC(c insights.WACCComponents, riskFree, beta, erp float64) CostOfCapital {
	spread := DamodaranSpread(c.InterestCoverage)
	costOfDebt := (riskFree + spread) * (1 - c.TaxRate)
	costOfEquity := riskFree + beta*erp

	var debtWeight, equityWeight float64
	if total := c.EquityValue + c.DebtValue; total != 0 {
		debtWeight = c.DebtValue / total
		equityWeight = c.EquityValue / total
	}

	return CostOfCapital{
		CreditSpread: spread,
		CostOfDebt:   costOfDebt,
		CostOfEquity: costOfEquity,
		DebtWeight:   debtWeight,
		EquityWeight: equityWeight,
		WACC:         debtWeight*costOfDebt + equityWeight*costOfEquity,
	}
}
