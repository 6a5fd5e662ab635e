package valuation

import "math"

const (
	irrGuess   = 0.10
	irrTol     = 1e-7
	irrMaxIter = 300
)

// IRR solves for the internal rate of return of the cash flow series by
// Newton-Raphson iteration. The first cash flow is the entry and must be
// strictly negative. Returns nil when the iteration fails to converge or
// lands outside the plausible (-1, 10) range.
func IRR(cashflows []float64) *float64 {
	if len(cashflows) == 0 || cashflows[0] >= 0 || math.IsNaN(cashflows[0]) {
		return nil
	}

	r := irrGuess
	for range irrMaxIter {
		var npv, dnpv float64
		for t, cf := range cashflows {
			ft := float64(t)
			npv += cf / math.Pow(1+r, ft)
			dnpv += -ft * cf / math.Pow(1+r, ft+1)
		}
		if math.IsNaN(npv) || math.IsInf(npv, 0) || math.IsNaN(dnpv) || math.IsInf(dnpv, 0) {
			return nil
		}
		if math.Abs(dnpv) < 1e-12 {
			break
		}
		next := r - npv/dnpv
		if math.Abs(next-r) < irrTol {
			return acceptIRR(next)
		}
		r = next
	}
	return acceptIRR(r)
}

func acceptIRR(r float64) *float64 {
	if math.IsNaN(r) || math.IsInf(r, 0) || r <= -1 || r >= 10 {
		return nil
	}
	return &r
}

// DamodaranSpread maps an interest-coverage ratio onto a synthetic
// credit spread, after Damodaran's published rating lookup.
func DamodaranSpread(coverage float64) float64 {
	switch {
	case coverage > 8.5:
		return 0.0067
	case coverage > 6.5:
		return 0.0082
	case coverage > 5.5:
		return 0.0103
	case coverage > 4.25:
		return 0.0114
	case coverage > 3.0:
		return 0.0129
	case coverage > 2.5:
		return 0.0159
	case coverage > 2.25:
		return 0.0193
	case coverage > 2.0:
		return 0.0223
	case coverage > 1.75:
		return 0.0330
	case coverage > 1.5:
		return 0.0405
	case coverage > 1.25:
		return 0.0486
	case coverage > 0.8:
		return 0.0632
	case coverage > 0.65:
		return 0.0801
	default:
		return 0.1000
	}
}
