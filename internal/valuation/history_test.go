package valuation

import (
	"math"
	"testing"

	"github.com/getvalue/getvalue/internal/fmp"
)

func historyCompany() *fmp.CompanyData {
	return &fmp.CompanyData{
		Ticker: "TEST",
		AnnualIncome: []fmp.Record{
			{"date": "2023-12-31", "fiscalYear": "2023", "revenue": 1200.0, "ebitda": 300.0, "weightedAverageShsOutDil": 100.0},
			{"date": "2022-12-31", "fiscalYear": "2022", "revenue": 1100.0, "ebitda": 250.0, "weightedAverageShsOutDil": 105.0},
			{"date": "2021-12-31", "fiscalYear": "2021", "revenue": 1000.0, "ebitda": 200.0, "weightedAverageShsOutDil": 110.0},
		},
		AnnualBalance: []fmp.Record{
			{"date": "2023-12-31", "totalDebt": 400.0, "cashAndCashEquivalents": 100.0},
			{"date": "2022-12-31", "totalDebt": 450.0, "cashAndCashEquivalents": 50.0},
			{"date": "2021-12-31", "totalDebt": 500.0, "cashAndCashEquivalents": 100.0},
		},
		AnnualCashFlow: []fmp.Record{
			{"date": "2023-12-31", "fiscalYear": "2023", "freeCashFlow": 150.0, "stockBasedCompensation": 30.0},
			{"date": "2022-12-31", "fiscalYear": "2022", "freeCashFlow": 120.0, "stockBasedCompensation": 20.0},
			{"date": "2021-12-31", "fiscalYear": "2021", "freeCashFlow": 100.0, "stockBasedCompensation": 20.0},
		},
		AnnualKeyMetrics: []fmp.Record{
			{"date": "2023-12-31", "marketCap": 3000.0, "stockPrice": 30.0},
			{"date": "2022-12-31", "marketCap": 2400.0, "stockPrice": 24.0},
			{"date": "2021-12-31", "marketCap": 2000.0, "stockPrice": 20.0},
		},
		QuarterlyIncome: []fmp.Record{
			{"date": "2024-03-31", "revenue": 330.0, "ebitda": 80.0, "weightedAverageShsOutDil": 25.0},
			{"date": "2023-12-31", "revenue": 320.0, "ebitda": 80.0, "weightedAverageShsOutDil": 25.0},
			{"date": "2023-09-30", "revenue": 310.0, "ebitda": 80.0, "weightedAverageShsOutDil": 25.0},
			{"date": "2023-06-30", "revenue": 300.0, "ebitda": 80.0, "weightedAverageShsOutDil": 25.0},
		},
		QuarterlyBalance: []fmp.Record{
			{"date": "2024-03-31", "totalDebt": 380.0, "cashAndCashEquivalents": 120.0},
		},
		QuarterlyCashFlow: []fmp.Record{
			{"date": "2024-03-31", "freeCashFlow": 40.0, "stockBasedCompensation": 8.0},
			{"date": "2023-12-31", "freeCashFlow": 40.0, "stockBasedCompensation": 8.0},
			{"date": "2023-09-30", "freeCashFlow": 40.0, "stockBasedCompensation": 8.0},
			{"date": "2023-06-30", "freeCashFlow": 40.0, "stockBasedCompensation": 8.0},
		},
		Overview: fmp.Record{"symbol": "TEST", "price": 31.0, "mktCap": 3100.0},
	}
}

func TestBuildEBITDAHistory(t *testing.T) {
	hist := BuildEBITDAHistory(historyCompany())

	if len(hist.Rows) != 4 {
		t.Fatalf("rows = %d, want 3 annual + TTM", len(hist.Rows))
	}
	if hist.Rows[0].Period != "2021" || hist.Rows[2].Period != "2023" {
		t.Errorf("rows run %s..%s, want oldest first", hist.Rows[0].Period, hist.Rows[2].Period)
	}

	// 2021: EV = 2000 + 500 - 100 = 2400, EV/EBITDA = 12, ND/EBITDA = 2.
	oldest := hist.Rows[0]
	if oldest.EV == nil || *oldest.EV != 2400 {
		t.Fatalf("2021 EV = %v, want 2400", oldest.EV)
	}
	if *oldest.EVToEBITDA != 12 {
		t.Errorf("2021 EV/EBITDA = %v, want 12", *oldest.EVToEBITDA)
	}
	if *oldest.NetDebtToEBITDA != 2 {
		t.Errorf("2021 ND/EBITDA = %v, want 2", *oldest.NetDebtToEBITDA)
	}

	// TTM: EV = 3100 + 380 - 120 = 3360 over 320 of EBITDA.
	ttm := hist.Rows[3]
	if ttm.Period != "TTM" {
		t.Fatalf("last row = %s, want TTM", ttm.Period)
	}
	if *ttm.Revenue != 1260 || *ttm.EBITDA != 320 {
		t.Errorf("TTM rev/ebitda = %v/%v, want 1260/320", *ttm.Revenue, *ttm.EBITDA)
	}
	if *ttm.EV != 3360 {
		t.Errorf("TTM EV = %v, want 3360", *ttm.EV)
	}

	// Averages cover the annual rows only. 2022 EV = 2800 (11.2x),
	// 2023 EV = 3300 (11x).
	wantAvg := (12.0 + 2800.0/250.0 + 11.0) / 3
	if hist.AvgMultiple == nil || math.Abs(*hist.AvgMultiple-wantAvg) > 1e-9 {
		t.Fatalf("avg multiple = %v, want %v", hist.AvgMultiple, wantAvg)
	}
	if *hist.Averages.Revenue != 1100 {
		t.Errorf("avg revenue = %v, want 1100", *hist.Averages.Revenue)
	}

	// Table CAGR spans n-1 = 2 years.
	wantCAGR := math.Sqrt(1200.0/1000.0) - 1
	if got := hist.RevenueCAGR.Float(); got == nil || math.Abs(*got-wantCAGR) > 1e-9 {
		t.Errorf("revenue CAGR = %v, want %v", got, wantCAGR)
	}
}

func TestBuildFCFHistory(t *testing.T) {
	hist := BuildFCFHistory(historyCompany())

	if len(hist.Rows) != 4 {
		t.Fatalf("rows = %d, want 3 annual + TTM", len(hist.Rows))
	}

	// 2021: adj FCF = 100 - 20 = 80, per share 80/110, yield /20.
	oldest := hist.Rows[0]
	if *oldest.AdjFCF != 80 {
		t.Errorf("2021 adj FCF = %v, want 80", *oldest.AdjFCF)
	}
	wantPS := 80.0 / 110.0
	if math.Abs(*oldest.AdjFCFPerShare-wantPS) > 1e-9 {
		t.Errorf("2021 adj FCF/share = %v, want %v", *oldest.AdjFCFPerShare, wantPS)
	}
	if math.Abs(*oldest.Yield-wantPS/20) > 1e-9 {
		t.Errorf("2021 yield = %v, want %v", *oldest.Yield, wantPS/20)
	}

	// TTM: adj FCF = 160 - 32 = 128 over 100 shares at price 31.
	ttm := hist.Rows[3]
	if *ttm.AdjFCF != 128 {
		t.Errorf("TTM adj FCF = %v, want 128", *ttm.AdjFCF)
	}
	if *ttm.AdjFCFPerShare != 1.28 {
		t.Errorf("TTM adj FCF/share = %v, want 1.28", *ttm.AdjFCFPerShare)
	}
	if math.Abs(*ttm.Yield-1.28/31) > 1e-9 {
		t.Errorf("TTM yield = %v, want %v", *ttm.Yield, 1.28/31)
	}

	if hist.AvgPerShare == nil || hist.AvgYield == nil {
		t.Fatal("per-share and yield averages must be present")
	}
	// Adj FCF CAGR over 2 years: 120/80.
	want := math.Sqrt(120.0/80.0) - 1
	if got := hist.AdjFCFCAGR.Float(); got == nil || math.Abs(*got-want) > 1e-9 {
		t.Errorf("adj FCF CAGR = %v, want %v", got, want)
	}
}

func TestBuildHistoryEmptyData(t *testing.T) {
	hist := BuildEBITDAHistory(&fmp.CompanyData{Ticker: "TEST"})
	if len(hist.Rows) != 1 || hist.Rows[0].Period != "TTM" {
		t.Errorf("empty data should yield only an empty TTM row, got %d rows", len(hist.Rows))
	}
	if hist.AvgMultiple != nil {
		t.Errorf("avg multiple = %v, want nil", *hist.AvgMultiple)
	}

	fcf := BuildFCFHistory(&fmp.CompanyData{Ticker: "TEST"})
	if len(fcf.Rows) != 1 || fcf.AvgPerShare != nil {
		t.Error("empty data should yield an empty FCF history")
	}
}
