package util

import (
	"bytes"
	"encoding/json"
	"math"
)

// Days is a day count where +Inf means "never" (no measurement recorded, no scheduled interval).
// JSON has no infinity, so +Inf travels as null.
type Days float64

// Never is the infinite day count.
func Never() Days {
	return Days(math.Inf(1))
}

// IsNever reports whether d is infinite.
func (d Days) IsNever() bool {
	return math.IsInf(float64(d), 1)
}

// MarshalJSON implements json.Marshaler.
func (d Days) MarshalJSON() ([]byte, error) {
	if d.IsNever() || math.IsNaN(float64(d)) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(d))
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Days) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = Never()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*d = Days(v)
	return nil
}
