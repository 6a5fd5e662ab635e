package valuation

import (
	"github.com/getvalue/getvalue/internal/domain"
	"github.com/getvalue/getvalue/internal/fmp"
)

const historyYears = 10

// EBITDARow is one period of the EV/EBITDA history table.
type EBITDARow struct {
	Period          string   `json:"period"`
	Revenue         *float64 `json:"revenue"`
	EBITDA          *float64 `json:"ebitda"`
	MarketCap       *float64 `json:"marketCap"`
	TotalDebt       *float64 `json:"totalDebt"`
	Cash            *float64 `json:"cash"`
	EV              *float64 `json:"ev"`
	EVToEBITDA      *float64 `json:"evToEbitda"`
	NetDebtToEBITDA *float64 `json:"netDebtToEbitda"`
}

// EBITDAHistory is the historical EV/EBITDA table: annual rows oldest
// first, then a trailing-twelve-month row, with per-column averages over
// the annual periods.
type EBITDAHistory struct {
	Rows        []EBITDARow   `json:"rows"`
	Averages    EBITDARow     `json:"averages"`
	RevenueCAGR domain.Metric `json:"revenueCagr"`
	EBITDACAGR  domain.Metric `json:"ebitdaCagr"`

	// AvgMultiple is the mean historical EV/EBITDA, the seed for the
	// exit multiple assumption.
	AvgMultiple *float64 `json:"avgMultiple"`
}

// BuildEBITDAHistory assembles up to ten years of enterprise-value
// history from the annual statements and key metrics.
func BuildEBITDAHistory(data *fmp.CompanyData) EBITDAHistory {
	n := min(historyYears, len(data.AnnualIncome))

	rows := make([]EBITDARow, 0, n+1)
	for i := n - 1; i >= 0; i-- {
		is := data.AnnualIncome[i]
		row := EBITDARow{
			Period:  is.YearLabel(),
			Revenue: is.Number("revenue"),
			EBITDA:  is.Number("ebitda"),
		}
		if i < len(data.AnnualKeyMetrics) {
			row.MarketCap = data.AnnualKeyMetrics[i].Number("marketCap")
		}
		if i < len(data.AnnualBalance) {
			row.TotalDebt = data.AnnualBalance[i].Number("totalDebt")
			row.Cash = data.AnnualBalance[i].Number("cashAndCashEquivalents")
		}
		fillDerived(&row)
		rows = append(rows, row)
	}

	ttm := EBITDARow{
		Period:    "TTM",
		Revenue:   ttmFlow(data.QuarterlyIncome, "revenue"),
		EBITDA:    ttmFlow(data.QuarterlyIncome, "ebitda"),
		TotalDebt: ttmBS(data.QuarterlyBalance, "totalDebt"),
		Cash:      ttmBS(data.QuarterlyBalance, "cashAndCashEquivalents"),
	}
	if data.Overview != nil {
		ttm.MarketCap = data.Overview.Number("mktCap")
	}
	fillDerived(&ttm)
	rows = append(rows, ttm)

	annual := rows[:len(rows)-1]
	hist := EBITDAHistory{
		Rows:        rows,
		Averages:    averageEBITDARow(annual),
		AvgMultiple: columnAverage(annual, func(r EBITDARow) *float64 { return r.EVToEBITDA }),
	}
	if n >= 2 {
		years := float64(n - 1)
		hist.RevenueCAGR = domain.CAGR(annual[n-1].Revenue, annual[0].Revenue, years)
		hist.EBITDACAGR = domain.CAGR(annual[n-1].EBITDA, annual[0].EBITDA, years)
	} else {
		hist.RevenueCAGR = domain.NM()
		hist.EBITDACAGR = domain.NM()
	}
	return hist
}

// fillDerived computes EV and the leverage multiples from the raw
// columns. EV needs a market cap; missing debt or cash count as zero.
func fillDerived(r *EBITDARow) {
	if r.MarketCap != nil {
		ev := *r.MarketCap
		if r.TotalDebt != nil {
			ev += *r.TotalDebt
		}
		if r.Cash != nil {
			ev -= *r.Cash
		}
		r.EV = &ev
	}
	r.EVToEBITDA = domain.SafeDivide(r.EV, r.EBITDA)
	if r.TotalDebt != nil {
		nd := *r.TotalDebt
		if r.Cash != nil {
			nd -= *r.Cash
		}
		r.NetDebtToEBITDA = domain.SafeDivide(&nd, r.EBITDA)
	}
}

func averageEBITDARow(rows []EBITDARow) EBITDARow {
	col := func(at func(EBITDARow) *float64) *float64 { return columnAverage(rows, at) }
	return EBITDARow{
		Period:          "Avg",
		Revenue:         col(func(r EBITDARow) *float64 { return r.Revenue }),
		EBITDA:          col(func(r EBITDARow) *float64 { return r.EBITDA }),
		MarketCap:       col(func(r EBITDARow) *float64 { return r.MarketCap }),
		TotalDebt:       col(func(r EBITDARow) *float64 { return r.TotalDebt }),
		Cash:            col(func(r EBITDARow) *float64 { return r.Cash }),
		EV:              col(func(r EBITDARow) *float64 { return r.EV }),
		EVToEBITDA:      col(func(r EBITDARow) *float64 { return r.EVToEBITDA }),
		NetDebtToEBITDA: col(func(r EBITDARow) *float64 { return r.NetDebtToEBITDA }),
	}
}

func columnAverage(rows []EBITDARow, at func(EBITDARow) *float64) *float64 {
	values := make([]*float64, 0, len(rows))
	for _, r := range rows {
		values = append(values, at(r))
	}
	return domain.SafeAverage(values)
}

// FCFRow is one period of the adjusted-FCF-per-share history table.
type FCFRow struct {
	Period         string   `json:"period"`
	FCF            *float64 `json:"fcf"`
	SBC            *float64 `json:"sbc"`
	AdjFCF         *float64 `json:"adjFcf"`
	Shares         *float64 `json:"shares"`
	AdjFCFPerShare *float64 `json:"adjFcfPerShare"`
	Price          *float64 `json:"price"`
	Yield          *float64 `json:"yield"`
}

// FCFHistory is the adjusted-FCF history: annual rows oldest first, a
// TTM row last. Only the per-share and yield columns are averaged; the
// dollar columns scale with company size and an average would mislead.
type FCFHistory struct {
	Rows        []FCFRow      `json:"rows"`
	AvgPerShare *float64      `json:"avgPerShare"`
	AvgYield    *float64      `json:"avgYield"`
	AdjFCFCAGR  domain.Metric `json:"adjFcfCagr"`
}

// BuildFCFHistory assembles up to ten years of adjusted free cash flow
// per share with the yield at each period's price.
func BuildFCFHistory(data *fmp.CompanyData) FCFHistory {
	n := min(historyYears, len(data.AnnualCashFlow))

	rows := make([]FCFRow, 0, n+1)
	for i := n - 1; i >= 0; i-- {
		cf := data.AnnualCashFlow[i]
		row := FCFRow{
			Period: cf.YearLabel(),
			FCF:    cf.Number("freeCashFlow"),
			SBC:    cf.Number("stockBasedCompensation"),
		}
		if row.SBC == nil && i < len(data.AnnualIncome) {
			row.SBC = data.AnnualIncome[i].Number("stockBasedCompensation")
		}
		if i < len(data.AnnualIncome) {
			is := data.AnnualIncome[i]
			row.Shares = is.Number("weightedAverageShsOutDil")
			if row.Shares == nil {
				row.Shares = is.Number("weightedAverageShsOut")
			}
		}
		if i < len(data.AnnualKeyMetrics) {
			row.Price = data.AnnualKeyMetrics[i].Number("stockPrice")
		}
		fillFCFDerived(&row)
		rows = append(rows, row)
	}

	ttm := FCFRow{
		Period: "TTM",
		FCF:    ttmFlow(data.QuarterlyCashFlow, "freeCashFlow"),
		SBC:    ttmFlow(data.QuarterlyCashFlow, "stockBasedCompensation"),
		Shares: ttmShares(data.QuarterlyIncome),
	}
	if ttm.SBC == nil {
		ttm.SBC = ttmFlow(data.QuarterlyIncome, "stockBasedCompensation")
	}
	if data.Overview != nil {
		ttm.Price = data.Overview.Number("price")
	}
	fillFCFDerived(&ttm)
	rows = append(rows, ttm)

	annual := rows[:len(rows)-1]
	perShare := func(r FCFRow) *float64 { return r.AdjFCFPerShare }
	yieldCol := func(r FCFRow) *float64 { return r.Yield }
	hist := FCFHistory{
		Rows:        rows,
		AvgPerShare: fcfColumnAverage(annual, perShare),
		AvgYield:    fcfColumnAverage(annual, yieldCol),
	}
	if n >= 2 {
		hist.AdjFCFCAGR = domain.CAGR(annual[n-1].AdjFCF, annual[0].AdjFCF, float64(n-1))
	} else {
		hist.AdjFCFCAGR = domain.NM()
	}
	return hist
}

func fillFCFDerived(r *FCFRow) {
	if r.FCF != nil {
		adj := *r.FCF
		if r.SBC != nil {
			adj -= *r.SBC
		}
		r.AdjFCF = &adj
	}
	r.AdjFCFPerShare = domain.SafeDivide(r.AdjFCF, r.Shares)
	r.Yield = domain.SafeDivide(r.AdjFCFPerShare, r.Price)
}

func fcfColumnAverage(rows []FCFRow, at func(FCFRow) *float64) *float64 {
	values := make([]*float64, 0, len(rows))
	for _, r := range rows {
		values = append(values, at(r))
	}
	return domain.SafeAverage(values)
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
func ttmBS(quarters []fmp.Record, key string) *float64 {
	if len(quarters) == 0 {
		return nil
	}
	return quarters[0].Number(key)
}

// ttmShares computes the TTM share count, preferring the diluted figure.
func ttmShares(quarterlyIncome []fmp.Record) *float64 {
	if v := ttmFlow(quarterlyIncome, "weightedAverageShsOutDil"); v != nil {
		return v
	}
	return ttmFlow(quarterlyIncome, "weightedAverageShsOut")
}
