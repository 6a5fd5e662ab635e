// Package report renders analysis results as fixed-width text tables.
package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/getvalue/getvalue/internal/domain"
)

// blank marks cells without data.
const blank = "—"

var abbrevSteps = []struct {
	limit  decimal.Decimal
	suffix string
}{
	{decimal.New(1, 12), "T"},
	{decimal.New(1, 9), "B"},
	{decimal.New(1, 6), "M"},
	{decimal.New(1, 3), "K"},
}

// Abbrev renders a dollar amount with a T/B/M/K suffix at two decimal
// places. Decimal division keeps 999,999,999,999 from rounding up into
// the wrong magnitude bucket.
func Abbrev(v *float64) string {
	if v == nil {
		return blank
	}
	d := decimal.NewFromFloat(*v)
	abs := d.Abs()
	for _, step := range abbrevSteps {
		if abs.GreaterThanOrEqual(step.limit) {
			return d.Div(step.limit).StringFixed(2) + step.suffix
		}
	}
	return d.StringFixed(2)
}

// Ratio renders a plain ratio at two decimal places.
func Ratio(v *float64) string {
	if v == nil {
		return blank
	}
	return decimal.NewFromFloat(*v).StringFixed(2)
}

// Percent renders a fraction as a percentage at one decimal place.
func Percent(v *float64) string {
	if v == nil {
		return blank
	}
	return decimal.NewFromFloat(*v * 100).StringFixed(1) + "%"
}

// Metric renders a three-state metric as a percentage.
func Metric(m domain.Metric) string {
	switch m.State {
	case domain.OK:
		return Percent(&m.Val)
	case domain.NotMeaningful:
		return "N/M"
	default:
		return blank
	}
}

// RatioMetric renders a three-state metric as a plain ratio.
func RatioMetric(m domain.Metric) string {
	switch m.State {
	case domain.OK:
		return Ratio(&m.Val)
	case domain.NotMeaningful:
		return "N/M"
	default:
		return blank
	}
}

// RenderTable lays out rows under headers with fixed-width columns. The
// first column is left-aligned, the rest right-aligned.
func RenderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len([]rune(h))
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len([]rune(cell)) > widths[i] {
				widths[i] = len([]rune(cell))
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i, w := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if i > 0 {
				b.WriteString("  ")
			}
			pad := w - len([]rune(cell))
			if i == 0 {
				b.WriteString(cell)
				b.WriteString(strings.Repeat(" ", pad))
			} else {
				b.WriteString(strings.Repeat(" ", pad))
				b.WriteString(cell)
			}
		}
		b.WriteString("\n")
	}

	writeRow(headers)
	total := 0
	for i, w := range widths {
		if i > 0 {
			total += 2
		}
		total += w
	}
	b.WriteString(strings.Repeat("-", total))
	b.WriteString("\n")
	for _, row := range rows {
		writeRow(row)
	}
	return b.String()
}

// Section renders a titled block.
func Section(title, body string) string {
	return fmt.Sprintf("== %s ==\n%s\n", title, body)
}
