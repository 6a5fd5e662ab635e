package domain

import (
	"math"
	"testing"
)

func TestSafeNumber(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want *float64
	}{
		{"nil", nil, nil},
		{"float", 42.5, Ptr(42.5)},
		{"int", 7, Ptr(7)},
		{"numeric string", "3.14", Ptr(3.14)},
		{"garbage string", "abc", nil},
		{"nan", math.NaN(), nil},
		{"positive inf", math.Inf(1), nil},
		{"negative inf", math.Inf(-1), nil},
		{"bool", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SafeNumber(tt.in)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("SafeNumber(%v) = %v, want %v", tt.in, got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("SafeNumber(%v) = %v, want %v", tt.in, *got, *tt.want)
			}
		})
	}
}

func TestSafeDivide(t *testing.T) {
	if got := SafeDivide(Ptr(10), Ptr(4)); got == nil || *got != 2.5 {
		t.Errorf("10/4 = %v, want 2.5", got)
	}
	if got := SafeDivide(Ptr(10), Ptr(0)); got != nil {
		t.Errorf("division by zero should return nil, got %v", *got)
	}
	if got := SafeDivide(nil, Ptr(4)); got != nil {
		t.Errorf("nil numerator should return nil, got %v", *got)
	}
	if got := SafeDivide(Ptr(10), nil); got != nil {
		t.Errorf("nil denominator should return nil, got %v", *got)
	}
}

func TestSafeAverage(t *testing.T) {
	if got := SafeAverage([]*float64{Ptr(1), nil, Ptr(3)}); got == nil || *got != 2 {
		t.Errorf("average of [1, nil, 3] = %v, want 2", got)
	}
	if got := SafeAverage([]*float64{nil, nil}); got != nil {
		t.Errorf("average of all-nil should be nil, got %v", *got)
	}
	if got := SafeAverage(nil); got != nil {
		t.Errorf("average of empty should be nil, got %v", *got)
	}
}

func TestSafeSum(t *testing.T) {
	if got := SafeSum([]*float64{Ptr(1), nil, Ptr(2.5)}); got == nil || *got != 3.5 {
		t.Errorf("sum of [1, nil, 2.5] = %v, want 3.5", got)
	}
	if got := SafeSum([]*float64{nil, nil, nil}); got != nil {
		t.Errorf("sum of all-nil should be nil, got %v", *got)
	}
}

func TestCAGR(t *testing.T) {
	got := CAGR(Ptr(125), Ptr(100), 5)
	if got.State != OK {
		t.Fatalf("CAGR(125, 100, 5) state = %v, want OK", got.State)
	}
	if math.Abs(got.Val-0.0456) > 0.0005 {
		t.Errorf("CAGR(125, 100, 5) = %v, want ~0.0456", got.Val)
	}

	tests := []struct {
		name  string
		end   *float64
		start *float64
		years float64
		want  State
	}{
		{"missing end", nil, Ptr(100), 5, NotMeaningful},
		{"missing start", Ptr(125), nil, 5, NotMeaningful},
		{"both missing", nil, nil, 5, NotMeaningful},
		{"zero years", Ptr(125), Ptr(100), 0, NotMeaningful},
		{"negative end", Ptr(-125), Ptr(100), 5, NotMeaningful},
		{"zero start", Ptr(125), Ptr(0), 5, NotMeaningful},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CAGR(tt.end, tt.start, tt.years); got.State != tt.want {
				t.Errorf("state = %v, want %v", got.State, tt.want)
			}
		})
	}
}

func TestMetricJSON(t *testing.T) {
	tests := []struct {
		name string
		m    Metric
		want string
	}{
		{"value", Value(1.5), "1.5"},
		{"not available", NA(), "null"},
		{"not meaningful", NM(), `"N/M"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.m.MarshalJSON()
			if err != nil {
				t.Fatalf("MarshalJSON: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("MarshalJSON = %s, want %s", data, tt.want)
			}

			var back Metric
			if err := back.UnmarshalJSON(data); err != nil {
				t.Fatalf("UnmarshalJSON: %v", err)
			}
			if back.State != tt.m.State || back.Val != tt.m.Val {
				t.Errorf("round trip = %+v, want %+v", back, tt.m)
			}
		})
	}
}

func TestMetricUnmarshalRejectsUnknownStrings(t *testing.T) {
	for _, in := range []string{`"garbage"`, `"n/m"`, `""`} {
		var m Metric
		if err := m.UnmarshalJSON([]byte(in)); err == nil {
			t.Errorf("UnmarshalJSON(%s) accepted, want error", in)
		}
	}
}
