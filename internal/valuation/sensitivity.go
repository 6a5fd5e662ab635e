package valuation

import "fmt"

var (
	entryFactors = []float64{-0.20, -0.10, 0, 0.10, 0.20}
	yieldOffsets = []float64{-2, -1, 0, 1, 2}
)

// SensitivityGrid is an IRR matrix over perturbed entry prices (rows)
// and exit yields (columns).
type SensitivityGrid struct {
	RowLabels []string     `json:"rowLabels"`
	ColLabels []string     `json:"colLabels"`
	Cells     [][]*float64 `json:"cells"`
}

// SensitivityIRR recomputes the IRR across a 5x5 grid: entry price
// shifted by up to 20% either way, exit yield by up to two percentage
// points. perShare is the forecast adjusted FCF per share without the
// terminal value; the terminal is rebuilt per column from the perturbed
// yield. Cells with a non-positive entry price or a floored yield stay
// empty.
func SensitivityIRR(price *float64, perShare []float64, exitYieldPct float64) SensitivityGrid {
	grid := SensitivityGrid{
		RowLabels: make([]string, len(entryFactors)),
		ColLabels: make([]string, len(yieldOffsets)),
		Cells:     make([][]*float64, len(entryFactors)),
	}
	for j, d := range yieldOffsets {
		grid.ColLabels[j] = fmt.Sprintf("%.1f%%", max(exitYieldPct+d, 0.1))
	}

	for i, f := range entryFactors {
		grid.Cells[i] = make([]*float64, len(yieldOffsets))

		var entry float64
		if price != nil {
			entry = *price * (1 + f)
		}
		grid.RowLabels[i] = fmt.Sprintf("%.2f", entry)
		if price == nil || entry <= 0 {
			continue
		}

		for j, d := range yieldOffsets {
			yield := max(exitYieldPct+d, 0.1) / 100
			if yield <= 0.001 {
				continue
			}
			grid.Cells[i][j] = irrAtYield(entry, perShare, yield)
		}
	}
	return grid
}

func irrAtYield(entry float64, perShare []float64, yield float64) *float64 {
	if len(perShare) == 0 {
		return nil
	}
	cashflows := make([]float64, 0, len(perShare)+1)
	cashflows = append(cashflows, -entry)
	cashflows = append(cashflows, perShare...)
	last := len(cashflows) - 1
	cashflows[last] += perShare[len(perShare)-1] / yield
	return IRR(cashflows)
}
