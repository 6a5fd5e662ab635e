package insights

import (
	"github.com/getvalue/getvalue/internal/domain"
)

// CAGRRow holds growth rates for one line item over three horizons.
type CAGRRow struct {
	Label string        `json:"label"`
	Y3    domain.Metric `json:"3yr"`
	Y5    domain.Metric `json:"5yr"`
	Y10   domain.Metric `json:"10yr"`
}

// Row is one metric with its TTM value and 5/10-year averages.
type Row struct {
	Label string   `json:"label"`
	TTM   *float64 `json:"ttm"`
	Avg5  *float64 `json:"avg5yr"`
	Avg10 *float64 `json:"avg10yr"`
}

// Categories bundles every insight table for one company.
type Categories struct {
	CAGR          []CAGRRow `json:"cagr"`
	Valuation     []Row     `json:"valuation"`
	Profitability []Row     `json:"profitability"`
	Returns       []Row     `json:"returns"`
	Liquidity     []Row     `json:"liquidity"`
	Dividends     []Row     `json:"dividends"`
	Efficiency    []Row     `json:"efficiency"`
	Piotroski     *int      `json:"piotroskiScore"`
}

// All computes every insight category.
func (a *Agent) All() Categories {
	return Categories{
		CAGR:          a.CAGRRows(),
		Valuation:     a.ValuationRows(),
		Profitability: a.ProfitabilityRows(),
		Returns:       a.ReturnsRows(),
		Liquidity:     a.LiquidityRows(),
		Dividends:     a.DividendRows(),
		Efficiency:    a.EfficiencyRows(),
		Piotroski:     a.Piotroski(),
	}
}

// CAGRRows computes 3, 5 and 10-year growth rates for the headline line
// items. The start value for an n-year rate is the annual record n
// periods back; a history shorter than that yields no rate.
func (a *Agent) CAGRRows() []CAGRRow {
	row := func(label string, at func(idx int) *float64) CAGRRow {
		end := at(0)
		return CAGRRow{
			Label: label,
			Y3:    domain.CAGR(end, at(3), 3),
			Y5:    domain.CAGR(end, at(5), 5),
			Y10:   domain.CAGR(end, at(10), 10),
		}
	}

	isVal := func(key string) func(int) *float64 {
		return func(idx int) *float64 { return ann(a.isL, key, idx) }
	}

	return []CAGRRow{
		row("Revenues", isVal("revenue")),
		row("Operating income", isVal("operatingIncome")),
		row("EBITDA", isVal("ebitda")),
		row("EPS Diluted", isVal("epsDiluted")),
		row("Adj. FCF", a.adjFCF),
		row("Shares outs.", a.sharesAt),
	}
}

// RevenueCAGR10 returns the 10-year revenue growth rate.
func (a *Agent) RevenueCAGR10() domain.Metric {
	return domain.CAGR(ann(a.isL, "revenue", 0), ann(a.isL, "revenue", 10), 10)
}

// EBITDACAGR returns the EBITDA growth rate over the given horizon.
func (a *Agent) EBITDACAGR(years int) domain.Metric {
	return domain.CAGR(ann(a.isL, "ebitda", 0), ann(a.isL, "ebitda", years), float64(years))
}

// AdjFCFCAGR returns the adjusted-FCF growth rate over the given horizon.
func (a *Agent) AdjFCFCAGR(years int) domain.Metric {
	return domain.CAGR(a.adjFCF(0), a.adjFCF(years), float64(years))
}

// epsCAGR3 feeds the PEG ratio.
func (a *Agent) epsCAGR3() domain.Metric {
	return domain.CAGR(ann(a.isL, "epsDiluted", 0), ann(a.isL, "epsDiluted", 3), 3)
}

// ValuationRows computes market-price multiples against TTM fundamentals.
func (a *Agent) ValuationRows() []Row {
	ev := a.EnterpriseValue()
	mkt := a.ov.Number("mktCap")

	revTTM := ttmFlow(a.qIS, "revenue")
	ebitdaTTM := ttmFlow(a.qIS, "ebitda")
	niTTM := ttmFlow(a.qIS, "netIncome")
	fcfTTM := ttmFlow(a.qCF, "freeCashFlow")
	adjFCFTTM := a.ttmAdjFCF()
	bookTTM := a.ttmBS("totalStockholdersEquity")

	peTTM := domain.SafeDivide(mkt, niTTM)

	// PEG only makes sense against positive trailing EPS growth.
	var pegTTM *float64
	if eps3 := a.epsCAGR3(); peTTM != nil && eps3.State == domain.OK && eps3.Val > 0 {
		peg := *peTTM / (eps3.Val * 100)
		pegTTM = &peg
	}

	var piotroskiTTM *float64
	if score := a.Piotroski(); score != nil {
		f := float64(*score)
		piotroskiTTM = &f
	}

	return []Row{
		{Label: "EV / EBITDA", TTM: domain.SafeDivide(ev, ebitdaTTM), Avg5: a.kmAvg("enterpriseValueMultiple", 5), Avg10: a.kmAvg("enterpriseValueMultiple", 10)},
		{Label: "EV / Adj. FCF", TTM: domain.SafeDivide(ev, adjFCFTTM)},
		{Label: "P/E", TTM: peTTM, Avg5: a.kmAvg("peRatio", 5), Avg10: a.kmAvg("peRatio", 10)},
		{Label: "P/S", TTM: domain.SafeDivide(mkt, revTTM), Avg5: a.kmAvg("priceToSalesRatio", 5), Avg10: a.kmAvg("priceToSalesRatio", 10)},
		{Label: "P/B", TTM: domain.SafeDivide(mkt, bookTTM), Avg5: a.kmAvg("pbRatio", 5), Avg10: a.kmAvg("pbRatio", 10)},
		{Label: "P/FCF", TTM: domain.SafeDivide(mkt, fcfTTM), Avg5: a.kmAvg("pfcfRatio", 5), Avg10: a.kmAvg("pfcfRatio", 10)},
		{Label: "PEG", TTM: pegTTM},
		{Label: "Earnings Yield", TTM: domain.SafeDivide(niTTM, mkt)},
		{Label: "Adj. FCF Yield", TTM: domain.SafeDivide(adjFCFTTM, mkt)},
		{Label: "Piotroski F-Score", TTM: piotroskiTTM},
	}
}

// ProfitabilityRows computes margins on TTM revenue plus historical
// averages. Averages are means of each year's margin, not margins of
// averaged dollars.
func (a *Agent) ProfitabilityRows() []Row {
	revTTM := ttmFlow(a.qIS, "revenue")

	margin := func(num *float64) *float64 { return domain.SafeDivide(num, revTTM) }

	annMargin := func(key string, n int) *float64 {
		var values []*float64
		for i := range n {
			values = append(values, domain.SafeDivide(ann(a.isL, key, i), ann(a.isL, "revenue", i)))
		}
		return domain.SafeAverage(values)
	}
	cfMargin := func(key string, n int) *float64 {
		var values []*float64
		for i := range n {
			values = append(values, domain.SafeDivide(ann(a.cfL, key, i), ann(a.isL, "revenue", i)))
		}
		return domain.SafeAverage(values)
	}
	adjFCFMargin := func(n int) *float64 {
		var values []*float64
		for i := range n {
			values = append(values, domain.SafeDivide(a.adjFCF(i), ann(a.isL, "revenue", i)))
		}
		return domain.SafeAverage(values)
	}

	return []Row{
		{Label: "Gross profit", TTM: margin(ttmFlow(a.qIS, "grossProfit")), Avg5: annMargin("grossProfit", 5), Avg10: annMargin("grossProfit", 10)},
		{Label: "EBIT", TTM: margin(ttmFlow(a.qIS, "operatingIncome")), Avg5: annMargin("operatingIncome", 5), Avg10: annMargin("operatingIncome", 10)},
		{Label: "EBITDA", TTM: margin(ttmFlow(a.qIS, "ebitda")), Avg5: annMargin("ebitda", 5), Avg10: annMargin("ebitda", 10)},
		{Label: "Net Income", TTM: margin(ttmFlow(a.qIS, "netIncome")), Avg5: annMargin("netIncome", 5), Avg10: annMargin("netIncome", 10)},
		{Label: "FCF", TTM: margin(ttmFlow(a.qCF, "freeCashFlow")), Avg5: cfMargin("freeCashFlow", 5), Avg10: cfMargin("freeCashFlow", 10)},
		{Label: "Adj. FCF", TTM: margin(a.ttmAdjFCF()), Avg5: adjFCFMargin(5), Avg10: adjFCFMargin(10)},
	}
}

// AdjFCFMarginTTM is the TTM adjusted-FCF margin, used by the checklist.
func (a *Agent) AdjFCFMarginTTM() *float64 {
	return domain.SafeDivide(a.ttmAdjFCF(), ttmFlow(a.qIS, "revenue"))
}

// ReturnsRows computes capital-efficiency measures. Equity and asset
// bases average the TTM balance with the latest annual one.
func (a *Agent) ReturnsRows() []Row {
	niTTM := ttmFlow(a.qIS, "netIncome")
	cfoTTM := ttmFlow(a.qCF, "operatingCashFlow")
	capexTTM := ttmFlow(a.qCF, "capitalExpenditure")
	ebitTTM := ttmFlow(a.qIS, "operatingIncome")

	avgEquity := domain.SafeAverage([]*float64{a.ttmBS("totalStockholdersEquity"), ann(a.bsL, "totalStockholdersEquity", 0)})
	avgAssets := domain.SafeAverage([]*float64{a.ttmBS("totalAssets"), ann(a.bsL, "totalAssets", 0)})

	// NOPAT on the effective TTM tax rate, defaulting to the statutory
	// 21% when the rate cannot be derived.
	var nopat *float64
	if ebitTTM != nil {
		rate := a.taxRate()
		v := *ebitTTM * (1 - rate)
		nopat = &v
	}

	var investedCapital *float64
	eq := a.ttmBS("totalStockholdersEquity")
	debt := a.ttmBS("totalDebt")
	if eq != nil || debt != nil {
		var ic float64
		if eq != nil {
			ic += *eq
		}
		if debt != nil {
			ic += *debt
		}
		investedCapital = &ic
	}

	var fcfNum *float64
	if cfoTTM != nil {
		v := *cfoTTM
		if capexTTM != nil {
			v -= *absPtr(capexTTM)
		}
		fcfNum = &v
	}

	var capEmployed *float64
	if assets := a.ttmBS("totalAssets"); assets != nil {
		v := *assets
		if cl := a.ttmBS("totalCurrentLiabilities"); cl != nil {
			v -= *cl
		}
		capEmployed = &v
	}

	return []Row{
		{Label: "ROIC", TTM: domain.SafeDivide(nopat, investedCapital), Avg5: a.ratioAvg("returnOnInvestedCapitalTTM", 5), Avg10: a.ratioAvg("returnOnInvestedCapitalTTM", 10)},
		{Label: "FCF ROC", TTM: domain.SafeDivide(fcfNum, investedCapital)},
		{Label: "ROE", TTM: domain.SafeDivide(niTTM, avgEquity), Avg5: a.ratioAvg("returnOnEquityTTM", 5), Avg10: a.ratioAvg("returnOnEquityTTM", 10)},
		{Label: "ROA", TTM: domain.SafeDivide(niTTM, avgAssets), Avg5: a.ratioAvg("returnOnAssetsTTM", 5), Avg10: a.ratioAvg("returnOnAssetsTTM", 10)},
		{Label: "ROCE", TTM: domain.SafeDivide(ebitTTM, capEmployed)},
	}
}

// taxRate derives the effective TTM tax rate clamped to [0, 0.5],
// defaulting to the US statutory rate.
func (a *Agent) taxRate() float64 {
	taxTTM := ttmFlow(a.qIS, "incomeTaxExpense")
	ebtTTM := ttmFlow(a.qIS, "incomeBeforeTax")
	if taxTTM == nil || ebtTTM == nil || *ebtTTM == 0 {
		return 0.21
	}
	rate := *taxTTM / *ebtTTM
	return min(max(rate, 0), 0.5)
}

// LiquidityRows computes balance-sheet strength measures.
func (a *Agent) LiquidityRows() []Row {
	ca := a.ttmBS("totalCurrentAssets")
	cl := a.ttmBS("totalCurrentLiabilities")
	cash := a.ttmBS("cashAndCashEquivalents")
	debt := a.ttmBS("totalDebt")
	ebitdaTTM := ttmFlow(a.qIS, "ebitda")
	intExp := ttmFlow(a.qIS, "interestExpense")

	var netDebt *float64
	if debt != nil && cash != nil {
		v := *debt - *cash
		netDebt = &v
	}

	var intCov *float64
	if intExp != nil && *intExp != 0 {
		intCov = domain.SafeDivide(ebitdaTTM, absPtr(intExp))
	}

	annRatio := func(fn func(i int) *float64, n int) *float64 {
		var values []*float64
		for i := range n {
			values = append(values, fn(i))
		}
		return domain.SafeAverage(values)
	}
	bsDiv := func(numKey, denKey string) func(int) *float64 {
		return func(i int) *float64 {
			return domain.SafeDivide(ann(a.bsL, numKey, i), ann(a.bsL, denKey, i))
		}
	}
	debtToEBITDA := func(i int) *float64 {
		return domain.SafeDivide(ann(a.bsL, "totalDebt", i), ann(a.isL, "ebitda", i))
	}

	return []Row{
		{Label: "Current Ratio", TTM: domain.SafeDivide(ca, cl), Avg5: annRatio(bsDiv("totalCurrentAssets", "totalCurrentLiabilities"), 5), Avg10: annRatio(bsDiv("totalCurrentAssets", "totalCurrentLiabilities"), 10)},
		{Label: "D/E", TTM: domain.SafeDivide(debt, a.ttmBS("totalStockholdersEquity")), Avg5: annRatio(bsDiv("totalDebt", "totalStockholdersEquity"), 5), Avg10: annRatio(bsDiv("totalDebt", "totalStockholdersEquity"), 10)},
		{Label: "D/EBITDA", TTM: domain.SafeDivide(debt, ebitdaTTM), Avg5: annRatio(debtToEBITDA, 5), Avg10: annRatio(debtToEBITDA, 10)},
		{Label: "Net D/EBITDA", TTM: domain.SafeDivide(netDebt, ebitdaTTM)},
		{Label: "Interest Coverage", TTM: intCov, Avg5: a.ratioAvg("interestCoverageTTM", 5), Avg10: a.ratioAvg("interestCoverageTTM", 10)},
		{Label: "Cash to Debt", TTM: domain.SafeDivide(cash, debt), Avg5: annRatio(bsDiv("cashAndCashEquivalents", "totalDebt"), 5), Avg10: annRatio(bsDiv("cashAndCashEquivalents", "totalDebt"), 10)},
	}
}

// NetDebtToEBITDATTM is the TTM net-debt leverage multiple, used by the
// checklist.
func (a *Agent) NetDebtToEBITDATTM() *float64 {
	debt := a.ttmBS("totalDebt")
	if debt == nil {
		return nil
	}
	nd := *debt
	if cash := a.ttmBS("cashAndCashEquivalents"); cash != nil {
		nd -= *cash
	}
	return domain.SafeDivide(&nd, ttmFlow(a.qIS, "ebitda"))
}

// DividendRows computes shareholder-return measures. Dividends and
// buybacks are reported as negative outflows upstream, so magnitudes are
// normalized before use.
func (a *Agent) DividendRows() []Row {
	mkt := a.ov.Number("mktCap")
	niTTM := ttmFlow(a.qIS, "netIncome")
	fcfTTM := ttmFlow(a.qCF, "freeCashFlow")
	divAbs := absPtr(ttmFlow(a.qCF, "dividendsPaid"))
	rpAbs := absPtr(ttmFlow(a.qCF, "commonStockRepurchased"))
	shares := a.ttmShares()

	var totalYield *float64
	if mkt != nil && *mkt != 0 {
		var total float64
		if divAbs != nil {
			total += *divAbs
		}
		if rpAbs != nil {
			total += *rpAbs
		}
		v := total / *mkt
		totalYield = &v
	}

	var combined float64
	if divAbs != nil {
		combined += *divAbs
	}
	if rpAbs != nil {
		combined += *rpAbs
	}

	var dps *float64
	if shares != nil && *shares != 0 {
		dps = domain.SafeDivide(divAbs, shares)
	}

	payoutAnn := func(n int) *float64 {
		var values []*float64
		for i := range n {
			d := absPtr(ann(a.cfL, "dividendsPaid", i))
			if d != nil && *d == 0 {
				d = nil
			}
			values = append(values, domain.SafeDivide(d, ann(a.isL, "netIncome", i)))
		}
		return domain.SafeAverage(values)
	}

	return []Row{
		{Label: "Dividend Yield", TTM: domain.SafeDivide(divAbs, mkt), Avg5: a.kmAvg("dividendYield", 5), Avg10: a.kmAvg("dividendYield", 10)},
		{Label: "Payout Ratio", TTM: domain.SafeDivide(divAbs, niTTM), Avg5: payoutAnn(5), Avg10: payoutAnn(10)},
		{Label: "Buyback Yield", TTM: domain.SafeDivide(rpAbs, mkt)},
		{Label: "Total Shareholder Yield", TTM: totalYield},
		{Label: "Div.&Repurch./FCF", TTM: domain.SafeDivide(&combined, fcfTTM)},
		{Label: "DPS", TTM: dps},
	}
}

// EfficiencyRows computes turnover and cycle measures. Balance-sheet
// bases average the TTM quarter with the latest annual figure.
func (a *Agent) EfficiencyRows() []Row {
	revTTM := ttmFlow(a.qIS, "revenue")
	cogsTTM := ttmFlow(a.qIS, "costOfRevenue")
	sbcTTM := ttmFlow(a.qIS, "stockBasedCompensation")
	fcfTTM := ttmFlow(a.qCF, "freeCashFlow")

	bsAvg := func(key string) *float64 {
		return domain.SafeAverage([]*float64{a.ttmBS(key), ann(a.bsL, key, 0)})
	}

	arAvg := bsAvg("netReceivables")
	invAvg := bsAvg("inventory")
	apAvg := bsAvg("accountPayables")
	taAvg := bsAvg("totalAssets")
	ppeAvg := bsAvg("propertyPlantEquipmentNet")
	caAvg := bsAvg("totalCurrentAssets")
	clAvg := bsAvg("totalCurrentLiabilities")

	var nwcAvg *float64
	if caAvg != nil {
		v := *caAvg
		if clAvg != nil {
			v -= *clAvg
		}
		nwcAvg = &v
	}

	receivableTurns := domain.SafeDivide(revTTM, arAvg)
	inventoryTurns := domain.SafeDivide(orValue(cogsTTM, revTTM), invAvg)
	payableTurns := domain.SafeDivide(orValue(cogsTTM, revTTM), apAvg)

	days := func(turns *float64) *float64 {
		if turns == nil || *turns == 0 {
			return nil
		}
		v := 365 / *turns
		return &v
	}
	dso := days(receivableTurns)
	dio := days(inventoryTurns)
	dpo := days(payableTurns)

	var opCycle *float64
	if dso != nil || dio != nil {
		var v float64
		if dso != nil {
			v += *dso
		}
		if dio != nil {
			v += *dio
		}
		opCycle = &v
	}
	var cashCycle *float64
	if opCycle != nil && dpo != nil {
		v := *opCycle - *dpo
		cashCycle = &v
	}

	employees := a.ov.Number("fullTimeEmployees")
	var revPerEmployee *float64
	if employees != nil && *employees != 0 {
		revPerEmployee = domain.SafeDivide(revTTM, employees)
	}

	return []Row{
		{Label: "Receivable turnover", TTM: receivableTurns, Avg5: a.ratioAvg("receivablesTurnoverTTM", 5), Avg10: a.ratioAvg("receivablesTurnoverTTM", 10)},
		{Label: "Avg. receivables collection day (DSO)", TTM: dso, Avg5: a.ratioAvg("daysSalesOutstandingTTM", 5), Avg10: a.ratioAvg("daysSalesOutstandingTTM", 10)},
		{Label: "Inventory turnover", TTM: inventoryTurns, Avg5: a.ratioAvg("inventoryTurnoverTTM", 5), Avg10: a.ratioAvg("inventoryTurnoverTTM", 10)},
		{Label: "Avg. days inventory in stock (DIO)", TTM: dio, Avg5: a.ratioAvg("daysOfInventoryOnHandTTM", 5), Avg10: a.ratioAvg("daysOfInventoryOnHandTTM", 10)},
		{Label: "Payables turnover", TTM: payableTurns, Avg5: a.ratioAvg("payablesTurnoverTTM", 5), Avg10: a.ratioAvg("payablesTurnoverTTM", 10)},
		{Label: "Avg. days payables outstanding (DPO)", TTM: dpo, Avg5: a.ratioAvg("daysPayableOutstandingTTM", 5), Avg10: a.ratioAvg("daysPayableOutstandingTTM", 10)},
		{Label: "Operating cycle", TTM: opCycle},
		{Label: "Cash cycle (CCC)", TTM: cashCycle},
		{Label: "Working capital turnover", TTM: domain.SafeDivide(revTTM, nwcAvg)},
		{Label: "Fixed asset turnover", TTM: domain.SafeDivide(revTTM, ppeAvg), Avg5: a.ratioAvg("fixedAssetTurnoverTTM", 5), Avg10: a.ratioAvg("fixedAssetTurnoverTTM", 10)},
		{Label: "Asset turnover", TTM: domain.SafeDivide(revTTM, taAvg), Avg5: a.ratioAvg("assetTurnoverTTM", 5), Avg10: a.ratioAvg("assetTurnoverTTM", 10)},
		{Label: "SBC / FCF", TTM: domain.SafeDivide(sbcTTM, fcfTTM)},
		{Label: "Revenue / Employee", TTM: revPerEmployee},
	}
}
