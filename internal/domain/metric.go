package domain

import (
	"encoding/json"
	"fmt"
)

// State classifies a computed metric value.
type State int

const (
	// OK means the metric carries a usable numeric value.
	OK State = iota
	// NotAvailable means the inputs were missing, so no value exists.
	NotAvailable
	// NotMeaningful means the inputs exist but the computation has no
	// defined result, e.g. a growth rate over a non-positive base.
	NotMeaningful
)

// Metric is the result of a ratio or growth computation. Consumers must
// check State before reading Val.
type Metric struct {
	Val   float64
	State State
}

// Value wraps a plain float in an OK metric.
func Value(f float64) Metric {
	return Metric{Val: f, State: OK}
}

// NA returns a not-available metric.
func NA() Metric {
	return Metric{State: NotAvailable}
}

// NM returns a not-meaningful metric.
func NM() Metric {
	return Metric{State: NotMeaningful}
}

// FromPtr converts an optional float into a metric: nil becomes NA.
func FromPtr(p *float64) Metric {
	if p == nil {
		return NA()
	}
	return Value(*p)
}

// Float returns the value as an optional float. Both NA and NM map to nil.
func (m Metric) Float() *float64 {
	if m.State != OK {
		return nil
	}
	v := m.Val
	return &v
}

// MarshalJSON renders OK values as numbers, NA as null and NM as "N/M",
// matching the display channel the engine's consumers expect.
func (m Metric) MarshalJSON() ([]byte, error) {
	switch m.State {
	case OK:
		return json.Marshal(m.Val)
	case NotMeaningful:
		return json.Marshal("N/M")
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a number, null or the string "N/M".
func (m *Metric) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = NA()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "N/M" {
			return fmt.Errorf("invalid metric value %q", s)
		}
		*m = NM()
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*m = Value(f)
	return nil
}
