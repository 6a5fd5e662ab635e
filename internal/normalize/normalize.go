// Package normalize turns raw statement records into period tables:
// rows are schema line items, columns are fiscal periods, with a
// trailing-twelve-month column derived from the quarterly view.
package normalize

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/samber/lo"

	"github.com/getvalue/getvalue/internal/fmp"
	"github.com/getvalue/getvalue/internal/schema"
)

// View selects the reporting granularity.
type View string

const (
	Annual    View = "annual"
	Quarterly View = "quarterly"
)

// quarterlyPeriods caps the quarterly table width.
const quarterlyPeriods = 10

// Data normalizes one company's raw statements. TTM values are computed
// once per instance and reused by every table build.
type Data struct {
	src *fmp.CompanyData

	ttmOnce sync.Once
	ttm     map[string]*float64
}

// New wraps raw company data for normalization.
func New(src *fmp.CompanyData) *Data {
	return &Data{src: src}
}

// Source exposes the underlying raw data for downstream engines.
func (d *Data) Source() *fmp.CompanyData {
	return d.src
}

// Row is one line item across all periods of a table. Values align with
// the table's period labels; nil marks a period without data.
type Row struct {
	Key    string     `json:"key"`
	Label  string     `json:"label"`
	TTM    *float64   `json:"ttm"`
	Values []*float64 `json:"values"`
}

// Table is a full statement view: ordered period labels plus one row per
// schema item.
type Table struct {
	View    View     `json:"view"`
	Periods []string `json:"periods"`
	Rows    []Row    `json:"rows"`
}

// Headers returns the ordered column headers including the item column.
func (t Table) Headers() []string {
	return append([]string{"Item", "TTM"}, t.Periods...)
}

// period is one merged reporting period across the three statements.
type period struct {
	label  string
	date   string
	fields fmp.Record
}

// quarterLabel converts "2024-06-30" into "Q2 2024".
func quarterLabel(date string) string {
	if len(date) < 7 {
		return date
	}
	month, err := strconv.Atoi(date[5:7])
	if err != nil || month < 1 || month > 12 {
		return date
	}
	return fmt.Sprintf("Q%d %s", (month-1)/3+1, date[:4])
}

func periodLabel(date string, view View) string {
	if view == Annual {
		if len(date) >= 4 {
			return date[:4]
		}
		return date
	}
	return quarterLabel(date)
}

// merge folds the three statements into one period list keyed by label.
// When two statements report the same period, later fields win. Sorted
// newest first by raw date.
func (d *Data) merge(view View, count int) []period {
	byLabel := make(map[string]*period)
	for _, stmt := range schema.Statements {
		records := d.src.Annual(stmt)
		if view == Quarterly {
			records = d.src.Quarterly(stmt)
		}
		for _, r := range records {
			label := periodLabel(r.Date(), view)
			p, ok := byLabel[label]
			if !ok {
				p = &period{label: label, date: r.Date(), fields: fmp.Record{}}
				byLabel[label] = p
			}
			for k, v := range r {
				p.fields[k] = v
			}
		}
	}

	merged := lo.MapToSlice(byLabel, func(_ string, p *period) period { return *p })
	sort.Slice(merged, func(i, j int) bool { return merged[i].date > merged[j].date })
	if count > 0 && len(merged) > count {
		merged = merged[:count]
	}
	return merged
}

// TTM returns the trailing-twelve-month value for every schema item.
// Flow items sum the most recent quarters (up to four, partial sums
// allowed); stock items take the latest quarter. No quarterly data means
// no value.
func (d *Data) TTM() map[string]*float64 {
	d.ttmOnce.Do(func() {
		d.ttm = make(map[string]*float64, len(schema.Items))
		for _, item := range schema.Items {
			quarters := d.src.Quarterly(item.Statement)
			if len(quarters) == 0 {
				d.ttm[item.Key] = nil
				continue
			}

			if item.Kind == schema.Stock {
				d.ttm[item.Key] = quarters[0].Number(item.Key)
				continue
			}

			recent := quarters
			if len(recent) > 4 {
				recent = recent[:4]
			}
			values := lo.Map(recent, func(q fmp.Record, _ int) *float64 {
				return q.Number(item.Key)
			})
			d.ttm[item.Key] = sumNonNil(values)
		}
	})
	return d.ttm
}

func sumNonNil(values []*float64) *float64 {
	var sum float64
	var n int
	for _, v := range values {
		if v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return &sum
}

// AnnualTable builds the annual view: TTM plus one column per fiscal year.
func (d *Data) AnnualTable() Table {
	return d.buildTable(Annual, d.merge(Annual, 0))
}

// QuarterlyTable builds the quarterly view, capped at ten quarters. TTM
// values are identical to those in the annual table.
func (d *Data) QuarterlyTable() Table {
	return d.buildTable(Quarterly, d.merge(Quarterly, quarterlyPeriods))
}

// TableFor builds the table for the requested view.
func (d *Data) TableFor(view View) Table {
	if view == Quarterly {
		return d.QuarterlyTable()
	}
	return d.AnnualTable()
}

func (d *Data) buildTable(view View, periods []period) Table {
	ttm := d.TTM()
	table := Table{
		View:    view,
		Periods: lo.Map(periods, func(p period, _ int) string { return p.label }),
		Rows:    make([]Row, 0, len(schema.Items)),
	}

	for _, item := range schema.Items {
		row := Row{
			Key:    item.Key,
			Label:  item.Label,
			TTM:    ttm[item.Key],
			Values: make([]*float64, len(periods)),
		}
		for i, p := range periods {
			row.Values[i] = p.fields.Number(item.Key)
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}
