package valuation

import (
	"github.com/getvalue/getvalue/internal/domain"
	"github.com/getvalue/getvalue/internal/insights"
)

// Verdict is the checklist outcome.
type Verdict string

const (
	VerdictPass       Verdict = "PASS"
	VerdictFail       Verdict = "FAIL"
	VerdictIncomplete Verdict = "INCOMPLETE"
)

// Check is one quality gate: a metric against a threshold. Passed is nil
// when the underlying value could not be computed.
type Check struct {
	Label         string        `json:"label"`
	Threshold     float64       `json:"threshold"`
	LowerIsBetter bool          `json:"lowerIsBetter"`
	Value         domain.Metric `json:"value"`
	Passed        *bool         `json:"passed"`
}

// Checklist aggregates the quality gates into a verdict: PASS when every
// gate clears, FAIL when any misses, INCOMPLETE when nothing missed but
// some could not be evaluated.
type Checklist struct {
	Checks  []Check `json:"checks"`
	Verdict Verdict `json:"verdict"`
}

// BuildChecklist runs the six quality gates against company history and
// the model's own IRR.
func BuildChecklist(agent *insights.Agent, irr *float64) Checklist {
	checks := []Check{
		newCheck("Revenue CAGR 10yr", 0.07, false, agent.RevenueCAGR10()),
		newCheck("EBITDA CAGR 10yr", 0.10, false, agent.EBITDACAGR(10)),
		newCheck("Adj. FCF CAGR 10yr", 0.10, false, agent.AdjFCFCAGR(10)),
		newCheck("Adj. FCF Margin TTM", 0.10, false, domain.FromPtr(agent.AdjFCFMarginTTM())),
		newCheck("Net Debt / EBITDA", 3.0, true, domain.FromPtr(agent.NetDebtToEBITDATTM())),
		newCheck("Expected IRR", 0.12, false, domain.FromPtr(irr)),
	}

	verdict := VerdictPass
	incomplete := false
	for _, c := range checks {
		switch {
		case c.Passed == nil:
			incomplete = true
		case !*c.Passed:
			verdict = VerdictFail
		}
	}
	if verdict == VerdictPass && incomplete {
		verdict = VerdictIncomplete
	}
	return Checklist{Checks: checks, Verdict: verdict}
}

func newCheck(label string, threshold float64, lowerIsBetter bool, value domain.Metric) Check {
	c := Check{
		Label:         label,
		Threshold:     threshold,
		LowerIsBetter: lowerIsBetter,
		Value:         value,
	}
	if value.State == domain.OK {
		var passed bool
		if lowerIsBetter {
			passed = value.Val < threshold
		} else {
			passed = value.Val >= threshold
		}
		c.Passed = &passed
	}
	return c
}
