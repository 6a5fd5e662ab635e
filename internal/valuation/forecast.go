package valuation

// EBITDAYear is one forecast year of the EV/EBITDA method.
type EBITDAYear struct {
	Year              int      `json:"year"`
	GrowthPct         float64  `json:"growthPct"`
	EBITDA            float64  `json:"ebitda"`
	EV                float64  `json:"ev"`
	FairValuePerShare *float64 `json:"fairValuePerShare"`
}

// ForecastEBITDA compounds the base EBITDA through the per-year growth
// schedule and prices each year at the exit multiple, net of debt. The
// horizon is the length of the schedule. No base EBITDA, no forecast.
func ForecastEBITDA(baseEBITDA *float64, growthPct []float64, exitMultiple, netDebt float64, shares *float64, baseYear int) []EBITDAYear {
	if baseEBITDA == nil || len(growthPct) == 0 {
		return nil
	}
	mult := exitMultiple
	if mult <= 0 {
		mult = defaultExitMult
	}

	years := make([]EBITDAYear, 0, len(growthPct))
	ebitda := *baseEBITDA
	for i, g := range growthPct {
		ebitda *= 1 + g/100
		ev := ebitda * mult

		var fairValue *float64
		if shares != nil && *shares != 0 {
			v := (ev - netDebt) / *shares
			fairValue = &v
		}

		years = append(years, EBITDAYear{
			Year:              baseYear + i + 1,
			GrowthPct:         g,
			EBITDA:            ebitda,
			EV:                ev,
			FairValuePerShare: fairValue,
		})
	}
	return years
}

// FCFYear is one forecast year of the adjusted-FCF-per-share method.
type FCFYear struct {
	Year           int     `json:"year"`
	GrowthPct      float64 `json:"growthPct"`
	AdjFCFPerShare float64 `json:"adjFcfPerShare"`
}

// ForecastFCF compounds the TTM adjusted FCF per share through the
// growth schedule. The returned cash flows feed the IRR: one entry per
// year, with the terminal value (final FCF/s divided by the exit yield)
// folded into the last year.
func ForecastFCF(basePerShare *float64, growthPct []float64, exitYieldPct float64, baseYear int) ([]FCFYear, []float64) {
	if basePerShare == nil || len(growthPct) == 0 {
		return nil, nil
	}
	yield := effectiveYield(exitYieldPct)

	years := make([]FCFYear, 0, len(growthPct))
	cashflows := make([]float64, 0, len(growthPct))
	ps := *basePerShare
	for i, g := range growthPct {
		ps *= 1 + g/100
		if i == len(growthPct)-1 {
			cashflows = append(cashflows, ps+ps/yield)
		} else {
			cashflows = append(cashflows, ps)
		}
		years = append(years, FCFYear{
			Year:           baseYear + i + 1,
			GrowthPct:      g,
			AdjFCFPerShare: ps,
		})
	}
	return years, cashflows
}

// effectiveYield converts the exit yield percentage to a fraction,
// substituting the default for non-positive inputs and flooring at 0.1%
// so terminal values stay finite.
func effectiveYield(pct float64) float64 {
	yield := pct / 100
	if pct <= 0 {
		yield = defaultExitYield / 100
	}
	return max(yield, 0.001)
}
