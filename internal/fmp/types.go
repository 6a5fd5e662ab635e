package fmp

import (
	"github.com/getvalue/getvalue/internal/domain"
	"github.com/getvalue/getvalue/internal/schema"
)

// Record is one statement period as returned by the upstream API. Fields
// are accessed by key because the engine's schema drives which ones
// matter; everything else rides along untouched.
type Record map[string]any

// fieldAliases maps keys whose spelling differs between API versions.
// Lookups fall through to the alias when the primary key is absent.
var fieldAliases = map[string]string{
	"epsdiluted":          "epsDiluted",
	"epsDiluted":          "epsdiluted",
	"dividendsPaid":       "commonDividendsPaid",
	"commonDividendsPaid": "dividendsPaid",
}

// Number reads a numeric field, tolerating missing keys, provider
// spelling variants and non-numeric junk.
func (r Record) Number(key string) *float64 {
	if v, ok := r[key]; ok {
		if f := domain.SafeNumber(v); f != nil {
			return f
		}
	}
	if alias, ok := fieldAliases[key]; ok {
		if v, ok := r[alias]; ok {
			return domain.SafeNumber(v)
		}
	}
	return nil
}

// String reads a text field, returning "" when absent.
func (r Record) String(key string) string {
	if v, ok := r[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Date returns the record's period end date in YYYY-MM-DD form.
func (r Record) Date() string {
	return r.String("date")
}

// YearLabel extracts a 4-character fiscal year label, trying the explicit
// fiscal year fields before falling back to the date prefix.
func (r Record) YearLabel() string {
	if y := r.String("fiscalYear"); y != "" {
		return y
	}
	if y := r.String("calendarYear"); y != "" {
		return y
	}
	if d := r.Date(); len(d) >= 4 {
		return d[:4]
	}
	return "N/A"
}

// CompanyData bundles everything fetched for one ticker: the three
// statements in both views, the precomputed ratio datasets and the
// company profile.
type CompanyData struct {
	Ticker            string   `json:"ticker"`
	AnnualIncome      []Record `json:"annualIncome"`
	AnnualBalance     []Record `json:"annualBalance"`
	AnnualCashFlow    []Record `json:"annualCashFlow"`
	QuarterlyIncome   []Record `json:"quarterlyIncome"`
	QuarterlyBalance  []Record `json:"quarterlyBalance"`
	QuarterlyCashFlow []Record `json:"quarterlyCashFlow"`
	AnnualRatios      []Record `json:"annualRatios"`
	AnnualKeyMetrics  []Record `json:"annualKeyMetrics"`
	Overview          Record   `json:"overview"`
}

// Annual returns the annual records for one statement type.
func (d *CompanyData) Annual(s schema.Statement) []Record {
	switch s {
	case schema.Income:
		return d.AnnualIncome
	case schema.Balance:
		return d.AnnualBalance
	default:
		return d.AnnualCashFlow
	}
}

// Quarterly returns the quarterly records for one statement type.
func (d *CompanyData) Quarterly(s schema.Statement) []Record {
	switch s {
	case schema.Income:
		return d.QuarterlyIncome
	case schema.Balance:
		return d.QuarterlyBalance
	default:
		return d.QuarterlyCashFlow
	}
}
