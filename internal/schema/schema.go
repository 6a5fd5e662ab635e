// Package schema defines the fixed list of financial line items the
// engine reports on, with their upstream field keys and TTM semantics.
package schema

import "github.com/samber/lo"

// Statement identifies which of the three financial statements a line
// item belongs to.
type Statement int

const (
	Income Statement = iota
	Balance
	CashFlow
)

// String returns the upstream endpoint path segment for the statement.
func (s Statement) String() string {
	switch s {
	case Income:
		return "income-statement"
	case Balance:
		return "balance-sheet-statement"
	case CashFlow:
		return "cash-flow-statement"
	}
	return "unknown"
}

// Kind determines how a trailing-twelve-month value is derived.
type Kind int

const (
	// Flow items accumulate over time: TTM is the sum of the last four
	// quarters (income statement and cash flow items).
	Flow Kind = iota
	// Stock items are point-in-time: TTM is the most recent quarter
	// (balance sheet items).
	Stock
)

// Item is one reportable line item.
type Item struct {
	Key       string
	Label     string
	Statement Statement
	Kind      Kind
}

// Items lists every line item in report order.
var Items = []Item{
	{"revenue", "Revenue", Income, Flow},
	{"costOfRevenue", "Cost of Revenue", Income, Flow},
	{"grossProfit", "Gross Profit", Income, Flow},
	{"grossProfitRatio", "Gross Margin %", Income, Flow},
	{"operatingExpenses", "Operating Expenses", Income, Flow},
	{"operatingIncome", "Operating Income", Income, Flow},
	{"operatingIncomeRatio", "Operating Margin %", Income, Flow},
	{"ebitda", "EBITDA", Income, Flow},
	{"incomeBeforeTax", "Pre-tax Income", Income, Flow},
	{"incomeTaxExpense", "Income Tax", Income, Flow},
	{"netIncome", "Net Income", Income, Flow},
	{"netIncomeRatio", "Net Margin %", Income, Flow},
	{"eps", "EPS", Income, Flow},
	{"epsdiluted", "EPS Diluted", Income, Flow},
	{"weightedAverageShsOutDil", "Diluted Shares", Income, Flow},

	{"cashAndCashEquivalents", "Cash & Equivalents", Balance, Stock},
	{"shortTermInvestments", "Short-term Investments", Balance, Stock},
	{"netReceivables", "Receivables", Balance, Stock},
	{"totalCurrentAssets", "Current Assets", Balance, Stock},
	{"totalNonCurrentAssets", "Non-current Assets", Balance, Stock},
	{"totalAssets", "Total Assets", Balance, Stock},
	{"totalCurrentLiabilities", "Current Liabilities", Balance, Stock},
	{"totalNonCurrentLiabilities", "Non-current Liabilities", Balance, Stock},
	{"totalLiabilities", "Total Liabilities", Balance, Stock},
	{"shortTermDebt", "Short-term Debt", Balance, Stock},
	{"longTermDebt", "Long-term Debt", Balance, Stock},
	{"totalDebt", "Total Debt", Balance, Stock},
	{"totalStockholdersEquity", "Shareholders' Equity", Balance, Stock},
	{"retainedEarnings", "Retained Earnings", Balance, Stock},

	{"operatingCashFlow", "Operating Cash Flow", CashFlow, Flow},
	{"capitalExpenditure", "CapEx", CashFlow, Flow},
	{"freeCashFlow", "Free Cash Flow", CashFlow, Flow},
	{"dividendsPaid", "Dividends Paid", CashFlow, Flow},
	{"commonStockRepurchased", "Share Buybacks", CashFlow, Flow},
	{"netCashUsedForInvestingActivites", "Investing Cash Flow", CashFlow, Flow},
	{"netCashUsedProvidedByFinancingActivities", "Financing Cash Flow", CashFlow, Flow},
	{"netChangeInCash", "Net Change in Cash", CashFlow, Flow},
}

// ByKey indexes items by their upstream field key.
var ByKey = lo.KeyBy(Items, func(i Item) string { return i.Key })

// Statements lists the three statement types in merge order.
var Statements = []Statement{Income, Balance, CashFlow}

// ForStatement returns the items belonging to one statement, preserving
// report order.
func ForStatement(s Statement) []Item {
	return lo.Filter(Items, func(i Item, _ int) bool { return i.Statement == s })
}
