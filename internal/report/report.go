package report

import (
	"fmt"
	"strings"

	"github.com/getvalue/getvalue/internal/fmp"
	"github.com/getvalue/getvalue/internal/insights"
	"github.com/getvalue/getvalue/internal/normalize"
	"github.com/getvalue/getvalue/internal/valuation"
)

// Overview renders the company profile header.
func Overview(ov fmp.Record) string {
	var b strings.Builder
	name := ov.String("companyName")
	if name == "" {
		name = ov.String("symbol")
	}
	fmt.Fprintf(&b, "%s (%s)\n", name, ov.String("symbol"))

	currency := ov.String("currency")
	if currency == "" {
		currency = "USD"
	}
	fmt.Fprintf(&b, "Price:      %s %s", Ratio(ov.Number("price")), currency)
	if chg := ov.Number("changePercentage"); chg != nil {
		fmt.Fprintf(&b, " (%+.2f%%)", *chg)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Market cap: %s\n", Abbrev(ov.Number("mktCap")))
	fmt.Fprintf(&b, "Beta:       %s\n", Ratio(ov.Number("beta")))
	if emp := ov.Number("fullTimeEmployees"); emp != nil {
		fmt.Fprintf(&b, "Employees:  %.0f\n", *emp)
	}
	return b.String()
}

// Statements renders one normalized statement view.
func Statements(d *normalize.Data, view normalize.View) string {
	table := d.TableFor(view)
	rows := make([][]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		cells := make([]string, 0, len(row.Values)+2)
		cells = append(cells, row.Label, Abbrev(row.TTM))
		for _, v := range row.Values {
			cells = append(cells, Abbrev(v))
		}
		rows = append(rows, cells)
	}
	return Section(fmt.Sprintf("Statements (%s)", view), RenderTable(table.Headers(), rows))
}

// Insights renders every insight category.
func Insights(c insights.Categories) string {
	var b strings.Builder

	cagrRows := make([][]string, 0, len(c.CAGR))
	for _, r := range c.CAGR {
		cagrRows = append(cagrRows, []string{r.Label, Metric(r.Y3), Metric(r.Y5), Metric(r.Y10)})
	}
	b.WriteString(Section("Growth (CAGR)", RenderTable([]string{"Item", "3yr", "5yr", "10yr"}, cagrRows)))

	percentCategories := map[string]bool{
		"Profitability": true,
		"Returns":       true,
		"Dividends":     true,
	}
	category := func(title string, rows []insights.Row) {
		pct := percentCategories[title]
		cells := make([][]string, 0, len(rows))
		for _, r := range rows {
			f := Ratio
			if pct {
				f = Percent
			}
			cells = append(cells, []string{r.Label, f(r.TTM), f(r.Avg5), f(r.Avg10)})
		}
		b.WriteString(Section(title, RenderTable([]string{"Item", "TTM", "5yr avg", "10yr avg"}, cells)))
	}

	category("Valuation", c.Valuation)
	category("Profitability", c.Profitability)
	category("Returns", c.Returns)
	category("Liquidity", c.Liquidity)
	category("Dividends", c.Dividends)
	category("Efficiency", c.Efficiency)

	if c.Piotroski != nil {
		fmt.Fprintf(&b, "Piotroski F-Score: %d/9\n", *c.Piotroski)
	}
	return b.String()
}

// Valuation renders the full model run: forecasts, pricing, checklist
// and the IRR sensitivity grid.
func Valuation(r valuation.Result) string {
	var b strings.Builder

	if len(r.EBITDAForecast) > 0 {
		rows := make([][]string, 0, len(r.EBITDAForecast))
		for _, y := range r.EBITDAForecast {
			rows = append(rows, []string{
				fmt.Sprintf("%d", y.Year),
				fmt.Sprintf("%.1f%%", y.GrowthPct),
				Abbrev(&y.EBITDA),
				Abbrev(&y.EV),
				Ratio(y.FairValuePerShare),
			})
		}
		b.WriteString(Section("EBITDA forecast", RenderTable([]string{"Year", "Growth", "EBITDA", "EV", "Value/sh"}, rows)))
	}

	if len(r.FCFForecast) > 0 {
		rows := make([][]string, 0, len(r.FCFForecast))
		for _, y := range r.FCFForecast {
			rows = append(rows, []string{
				fmt.Sprintf("%d", y.Year),
				fmt.Sprintf("%.1f%%", y.GrowthPct),
				Ratio(&y.AdjFCFPerShare),
			})
		}
		b.WriteString(Section("Adj. FCF forecast", RenderTable([]string{"Year", "Growth", "FCF/sh"}, rows)))
	}

	var p strings.Builder
	fmt.Fprintf(&p, "Current price:    %s\n", Ratio(r.Price))
	fmt.Fprintf(&p, "EBITDA target:    %s\n", Ratio(r.EBITDATarget))
	fmt.Fprintf(&p, "FCF target:       %s\n", Ratio(r.FCFTarget))
	fmt.Fprintf(&p, "Blended target:   %s\n", Ratio(r.BlendedTarget))
	fmt.Fprintf(&p, "WACC:             %s\n", Percent(&r.CostOfCapital.WACC))
	fmt.Fprintf(&p, "Fair value:       %s\n", Ratio(r.FairValue))
	fmt.Fprintf(&p, "Buy below:        %s\n", Ratio(r.BuyPrice))
	if r.OnSale != nil {
		fmt.Fprintf(&p, "On sale:          %t\n", *r.OnSale)
	}
	fmt.Fprintf(&p, "Expected IRR:     %s\n", Percent(r.IRR))
	b.WriteString(Section("Pricing", p.String()))

	checkRows := make([][]string, 0, len(r.Checklist.Checks))
	for _, c := range r.Checklist.Checks {
		status := blank
		if c.Passed != nil {
			if *c.Passed {
				status = "PASS"
			} else {
				status = "FAIL"
			}
		}
		checkRows = append(checkRows, []string{c.Label, RatioMetric(c.Value), Ratio(&c.Threshold), status})
	}
	checklist := RenderTable([]string{"Check", "Value", "Threshold", "Status"}, checkRows)
	checklist += fmt.Sprintf("Verdict: %s\n", r.Checklist.Verdict)
	b.WriteString(Section("Checklist", checklist))

	if len(r.Sensitivity.Cells) > 0 {
		rows := make([][]string, 0, len(r.Sensitivity.Cells))
		for i, cells := range r.Sensitivity.Cells {
			row := []string{r.Sensitivity.RowLabels[i]}
			for _, cell := range cells {
				row = append(row, Percent(cell))
			}
			rows = append(rows, row)
		}
		headers := append([]string{"Entry \\ Yield"}, r.Sensitivity.ColLabels...)
		b.WriteString(Section("IRR sensitivity", RenderTable(headers, rows)))
	}

	return b.String()
}

// History renders the historical EV/EBITDA and adjusted-FCF tables.
func History(ebitda valuation.EBITDAHistory, fcf valuation.FCFHistory) string {
	var b strings.Builder

	rows := make([][]string, 0, len(ebitda.Rows)+1)
	for _, r := range ebitda.Rows {
		rows = append(rows, []string{
			r.Period, Abbrev(r.Revenue), Abbrev(r.EBITDA), Abbrev(r.MarketCap),
			Abbrev(r.EV), Ratio(r.EVToEBITDA), Ratio(r.NetDebtToEBITDA),
		})
	}
	avg := ebitda.Averages
	rows = append(rows, []string{
		avg.Period, Abbrev(avg.Revenue), Abbrev(avg.EBITDA), Abbrev(avg.MarketCap),
		Abbrev(avg.EV), Ratio(avg.EVToEBITDA), Ratio(avg.NetDebtToEBITDA),
	})
	b.WriteString(Section("EV/EBITDA history",
		RenderTable([]string{"Period", "Revenue", "EBITDA", "Mkt cap", "EV", "EV/EBITDA", "ND/EBITDA"}, rows)))

	fcfRows := make([][]string, 0, len(fcf.Rows))
	for _, r := range fcf.Rows {
		fcfRows = append(fcfRows, []string{
			r.Period, Abbrev(r.FCF), Abbrev(r.SBC), Abbrev(r.AdjFCF),
			Ratio(r.AdjFCFPerShare), Ratio(r.Price), Percent(r.Yield),
		})
	}
	fcfTable := RenderTable([]string{"Period", "FCF", "SBC", "Adj. FCF", "FCF/sh", "Price", "Yield"}, fcfRows)
	fcfTable += fmt.Sprintf("Avg FCF/sh: %s  Avg yield: %s\n", Ratio(fcf.AvgPerShare), Percent(fcf.AvgYield))
	b.WriteString(Section("Adj. FCF history", fcfTable))

	return b.String()
}

// Company assembles the full text report for one ticker using default
// assumptions.
func Company(data *fmp.CompanyData, view normalize.View) string {
	var b strings.Builder

	if data.Overview != nil {
		b.WriteString(Overview(data.Overview))
		b.WriteString("\n")
	}
	b.WriteString(Statements(normalize.New(data), view))
	b.WriteString(Insights(insights.New(data).All()))
	b.WriteString(History(valuation.BuildEBITDAHistory(data), valuation.BuildFCFHistory(data)))
	b.WriteString(Valuation(valuation.Evaluate(data, valuation.Defaults(data))))

	return b.String()
}
