package domain

import (
	"encoding/json"
	"math"
	"strconv"
)

// SafeNumber coerces an arbitrary JSON-decoded value into an optional
// float. NaN, infinities, non-numeric strings and unsupported types all
// collapse to nil rather than an error.
func SafeNumber(v any) *float64 {
	var f float64
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// SafeDivide divides a by b, returning nil when either operand is missing
// or the denominator is zero.
func SafeDivide(a, b *float64) *float64 {
	if a == nil || b == nil || *b == 0 {
		return nil
	}
	r := *a / *b
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return nil
	}
	return &r
}

// SafeAverage returns the mean of the non-nil values, or nil when every
// value is missing.
func SafeAverage(values []*float64) *float64 {
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
	avg := sum / float64(n)
	return &avg
}

// SafeSum adds the non-nil values. Returns nil only when every value is
// missing, so a partial sum over sparse data is still produced.
func SafeSum(values []*float64) *float64 {
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

// CAGR computes the compound annual growth rate (end/start)^(1/years)-1.
// A missing or non-positive endpoint, or a non-positive year count, makes
// the rate undefined, so all of those yield NotMeaningful.
func CAGR(end, start *float64, years float64) Metric {
	if end == nil || start == nil || years <= 0 || *end <= 0 || *start <= 0 {
		return NM()
	}
	r := math.Pow(*end / *start, 1.0/years) - 1.0
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return NM()
	}
	return Value(r)
}

// Ptr is a convenience for building optional floats in literals.
func Ptr(f float64) *float64 {
	return &f
}
