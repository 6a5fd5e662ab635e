// Package export builds spreadsheet workbooks from analysis results and
// writes them to Excel files or Google Sheets.
package export

import (
	"context"
	"fmt"

	"github.com/getvalue/getvalue/internal/domain"
	"github.com/getvalue/getvalue/internal/fmp"
	"github.com/getvalue/getvalue/internal/insights"
	"github.com/getvalue/getvalue/internal/normalize"
	"github.com/getvalue/getvalue/internal/valuation"
)

// Sheet is one tab of cell rows.
type Sheet struct {
	Name string
	Rows [][]any
}

// Writer writes a workbook to a spreadsheet destination.
type Writer interface {
	Write(ctx context.Context, ticker string, sheets []Sheet) error
}

// BuildWorkbook assembles the full analysis workbook for one company:
// profile, both statement views, insights, history and the valuation
// run under default assumptions.
func BuildWorkbook(data *fmp.CompanyData) []Sheet {
	norm := normalize.New(data)
	result := valuation.Evaluate(data, valuation.Defaults(data))

	return []Sheet{
		overviewSheet(data),
		statementSheet("ANNUAL", norm.AnnualTable()),
		statementSheet("QUARTERLY", norm.QuarterlyTable()),
		insightsSheet(insights.New(data).All()),
		historySheet(valuation.BuildEBITDAHistory(data), valuation.BuildFCFHistory(data)),
		valuationSheet(result),
	}
}

func overviewSheet(data *fmp.CompanyData) Sheet {
	ov := data.Overview
	if ov == nil {
		ov = fmp.Record{}
	}
	return Sheet{
		Name: "OVERVIEW",
		Rows: [][]any{
			{"Ticker", data.Ticker},
			{"Name", ov.String("companyName")},
			{"Currency", ov.String("currency")},
			{"Price", cell(ov.Number("price"))},
			{"Change %", cell(ov.Number("changePercentage"))},
			{"Market cap", cell(ov.Number("mktCap"))},
			{"Beta", cell(ov.Number("beta"))},
			{"Employees", cell(ov.Number("fullTimeEmployees"))},
		},
	}
}

func statementSheet(name string, table normalize.Table) Sheet {
	rows := make([][]any, 0, len(table.Rows)+1)

	header := make([]any, 0, len(table.Periods)+2)
	for _, h := range table.Headers() {
		header = append(header, h)
	}
	rows = append(rows, header)

	for _, row := range table.Rows {
		cells := make([]any, 0, len(row.Values)+2)
		cells = append(cells, row.Label, cell(row.TTM))
		for _, v := range row.Values {
			cells = append(cells, cell(v))
		}
		rows = append(rows, cells)
	}
	return Sheet{Name: name, Rows: rows}
}

func insightsSheet(c insights.Categories) Sheet {
	rows := [][]any{
		{"Growth (CAGR)"},
		{"Item", "3yr", "5yr", "10yr"},
	}
	for _, r := range c.CAGR {
		rows = append(rows, []any{r.Label, metricCell(r.Y3), metricCell(r.Y5), metricCell(r.Y10)})
	}

	category := func(title string, items []insights.Row) {
		rows = append(rows, []any{}, []any{title}, []any{"Item", "TTM", "5yr avg", "10yr avg"})
		for _, r := range items {
			rows = append(rows, []any{r.Label, cell(r.TTM), cell(r.Avg5), cell(r.Avg10)})
		}
	}
	category("Valuation", c.Valuation)
	category("Profitability", c.Profitability)
	category("Returns", c.Returns)
	category("Liquidity", c.Liquidity)
	category("Dividends", c.Dividends)
	category("Efficiency", c.Efficiency)

	rows = append(rows, []any{}, []any{"Piotroski F-Score", intCell(c.Piotroski)})
	return Sheet{Name: "INSIGHTS", Rows: rows}
}

func historySheet(ebitda valuation.EBITDAHistory, fcf valuation.FCFHistory) Sheet {
	rows := [][]any{
		{"EV/EBITDA history"},
		{"Period", "Revenue", "EBITDA", "Market cap", "Debt", "Cash", "EV", "EV/EBITDA", "ND/EBITDA"},
	}
	writeEBITDARow := func(r valuation.EBITDARow) {
		rows = append(rows, []any{
			r.Period, cell(r.Revenue), cell(r.EBITDA), cell(r.MarketCap),
			cell(r.TotalDebt), cell(r.Cash), cell(r.EV), cell(r.EVToEBITDA), cell(r.NetDebtToEBITDA),
		})
	}
	for _, r := range ebitda.Rows {
		writeEBITDARow(r)
	}
	writeEBITDARow(ebitda.Averages)

	rows = append(rows, []any{},
		[]any{"Adj. FCF history"},
		[]any{"Period", "FCF", "SBC", "Adj. FCF", "Shares", "FCF/sh", "Price", "Yield"})
	for _, r := range fcf.Rows {
		rows = append(rows, []any{
			r.Period, cell(r.FCF), cell(r.SBC), cell(r.AdjFCF),
			cell(r.Shares), cell(r.AdjFCFPerShare), cell(r.Price), cell(r.Yield),
		})
	}
	rows = append(rows, []any{"Avg", nil, nil, nil, nil, cell(fcf.AvgPerShare), nil, cell(fcf.AvgYield)})
	return Sheet{Name: "HISTORY", Rows: rows}
}

func valuationSheet(r valuation.Result) Sheet {
	rows := [][]any{
		{"Assumptions", fmt.Sprintf("v%d", r.Assumptions.Version)},
		{"Exit multiple", r.Assumptions.ExitMultiple},
		{"Exit yield %", r.Assumptions.ExitYieldPct},
		{"Margin of safety %", r.Assumptions.MarginOfSafetyPct},
		{"Risk-free rate", r.Assumptions.RiskFreeRate},
		{"Equity risk premium", r.Assumptions.EquityRiskPremium},
		{"Beta", r.Assumptions.Beta},
		{},
		{"EBITDA forecast"},
		{"Year", "Growth %", "EBITDA", "EV", "Value/sh"},
	}
	for _, y := range r.EBITDAForecast {
		rows = append(rows, []any{y.Year, y.GrowthPct, y.EBITDA, y.EV, cell(y.FairValuePerShare)})
	}

	rows = append(rows, []any{}, []any{"Adj. FCF forecast"}, []any{"Year", "Growth %", "FCF/sh"})
	for _, y := range r.FCFForecast {
		rows = append(rows, []any{y.Year, y.GrowthPct, y.AdjFCFPerShare})
	}

	rows = append(rows, []any{},
		[]any{"Pricing"},
		[]any{"Current price", cell(r.Price)},
		[]any{"EBITDA target", cell(r.EBITDATarget)},
		[]any{"FCF target", cell(r.FCFTarget)},
		[]any{"Blended target", cell(r.BlendedTarget)},
		[]any{"WACC", r.CostOfCapital.WACC},
		[]any{"Fair value", cell(r.FairValue)},
		[]any{"Buy below", cell(r.BuyPrice)},
		[]any{"Expected IRR", cell(r.IRR)},
	)

	rows = append(rows, []any{}, []any{"Checklist", string(r.Checklist.Verdict)},
		[]any{"Check", "Value", "Threshold", "Passed"})
	for _, c := range r.Checklist.Checks {
		rows = append(rows, []any{c.Label, metricCell(c.Value), c.Threshold, boolCell(c.Passed)})
	}
	return Sheet{Name: "VALUATION", Rows: rows}
}

func cell(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func metricCell(m domain.Metric) any {
	switch m.State {
	case domain.OK:
		return m.Val
	case domain.NotMeaningful:
		return "N/M"
	default:
		return nil
	}
}

func intCell(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func boolCell(v *bool) any {
	if v == nil {
		return nil
	}
	return *v
}
