// Package insights computes ratio and trend metrics from raw statement
// data: growth rates, valuation multiples, margins, returns, liquidity,
// dividend and efficiency measures.
package insights

import (
	"math"

	"github.com/getvalue/getvalue/internal/domain"
	"github.com/getvalue/getvalue/internal/fmp"
)

// Agent computes insight metrics for one company. All methods are pure
// reads over the captured raw data.
type Agent struct {
	isL []fmp.Record // annual income statements, newest first
	bsL []fmp.Record // annual balance sheets
	cfL []fmp.Record // annual cash flows
	qIS []fmp.Record // quarterly income statements
	qBS []fmp.Record // quarterly balance sheets
	qCF []fmp.Record // quarterly cash flows
	rtL []fmp.Record // annual ratios dataset
	kmL []fmp.Record // annual key-metrics dataset
	ov  fmp.Record   // company profile
}

// New creates an insights agent over raw company data.
func New(data *fmp.CompanyData) *Agent {
	ov := data.Overview
	if ov == nil {
		ov = fmp.Record{}
	}
	return &Agent{
		isL: data.AnnualIncome,
		bsL: data.AnnualBalance,
		cfL: data.AnnualCashFlow,
		qIS: data.QuarterlyIncome,
		qBS: data.QuarterlyBalance,
		qCF: data.QuarterlyCashFlow,
		rtL: data.AnnualRatios,
		kmL: data.AnnualKeyMetrics,
		ov:  ov,
	}
}

// ttmFlow sums a flow item over the last four quarters. Missing quarters
// contribute nothing; all-missing yields nil.
func ttmFlow(quarters []fmp.Record, key string) *float64 {
	if len(quarters) == 0 {
		return nil
	}
	recent := quarters
	if len(recent) > 4 {
		recent = recent[:4]
	}
	var sum float64
	var n int
	for _, q := range recent {
		if v := q.Number(key); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return &sum
}

// ttmBS reads a balance-sheet item from the most recent quarter.
func (a *Agent) ttmBS(key string) *float64 {
	if len(a.qBS) == 0 {
		return nil
	}
	return a.qBS[0].Number(key)
}

// ann reads an annual value at index idx (0 = most recent).
func ann(records []fmp.Record, key string, idx int) *float64 {
	if idx < 0 || idx >= len(records) {
		return nil
	}
	return records[idx].Number(key)
}

// annAny reads an annual value trying several keys in order.
func annAny(records []fmp.Record, idx int, keys ...string) *float64 {
	for _, key := range keys {
		if v := ann(records, key, idx); v != nil {
			return v
		}
	}
	return nil
}

// ratioAvg averages a precomputed field over the first n annual ratios
// records.
func (a *Agent) ratioAvg(key string, n int) *float64 {
	return fieldAvg(a.rtL, key, n)
}

// kmAvg averages a precomputed field over the first n annual key-metrics
// records.
func (a *Agent) kmAvg(key string, n int) *float64 {
	return fieldAvg(a.kmL, key, n)
}

func fieldAvg(records []fmp.Record, key string, n int) *float64 {
	if n > len(records) {
		n = len(records)
	}
	values := make([]*float64, 0, n)
	for _, r := range records[:n] {
		values = append(values, r.Number(key))
	}
	return domain.SafeAverage(values)
}

// sharesAt reads the annual share count, preferring the diluted figure.
func (a *Agent) sharesAt(idx int) *float64 {
	return annAny(a.isL, idx, "weightedAverageShsOutDil", "weightedAverageShsOut")
}

// ttmShares computes the TTM share count, preferring the diluted figure.
func (a *Agent) ttmShares() *float64 {
	if v := ttmFlow(a.qIS, "weightedAverageShsOutDil"); v != nil {
		return v
	}
	return ttmFlow(a.qIS, "weightedAverageShsOut")
}

// adjFCF is free cash flow less stock-based compensation for annual
// period idx. SBC lives in the cash flow statement for most companies
// but some providers report it on the income statement.
func (a *Agent) adjFCF(idx int) *float64 {
	fcf := ann(a.cfL, "freeCashFlow", idx)
	if fcf == nil {
		return nil
	}
	sbc := ann(a.cfL, "stockBasedCompensation", idx)
	if sbc == nil {
		sbc = ann(a.isL, "stockBasedCompensation", idx)
	}
	adj := *fcf
	if sbc != nil {
		adj -= *sbc
	}
	return &adj
}

// ttmAdjFCF is the TTM adjusted free cash flow.
func (a *Agent) ttmAdjFCF() *float64 {
	fcf := ttmFlow(a.qCF, "freeCashFlow")
	if fcf == nil {
		return nil
	}
	sbc := ttmFlow(a.qCF, "stockBasedCompensation")
	if sbc == nil {
		sbc = ttmFlow(a.qIS, "stockBasedCompensation")
	}
	adj := *fcf
	if sbc != nil {
		adj -= *sbc
	}
	return &adj
}

// EnterpriseValue is market cap plus TTM total debt less TTM cash.
// Without a market cap there is no EV.
func (a *Agent) EnterpriseValue() *float64 {
	mkt := a.ov.Number("mktCap")
	if mkt == nil {
		return nil
	}
	ev := *mkt
	if debt := a.ttmBS("totalDebt"); debt != nil {
		ev += *debt
	}
	if cash := a.ttmBS("cashAndCashEquivalents"); cash != nil {
		ev -= *cash
	}
	return &ev
}

// AdjFCFPerShareTTM is the TTM adjusted free cash flow per share, the
// base input for yield-based forecasting.
func (a *Agent) AdjFCFPerShareTTM() *float64 {
	return domain.SafeDivide(a.ttmAdjFCF(), a.ttmShares())
}

// orValue mimics coalescing on truthiness: a nil or zero first operand
// falls through to the second.
func orValue(a, b *float64) *float64 {
	if a != nil && *a != 0 {
		return a
	}
	return b
}

func absPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	abs := math.Abs(*v)
	return &abs
}
