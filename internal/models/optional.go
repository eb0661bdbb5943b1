package models

import (
	"bytes"
	"encoding/json"
)

// Optional distinguishes an absent value from a present one, including a present null.
//
// When used as a struct field decoded by encoding/json, a missing key leaves the Optional unset
// while an explicit null sets it with the zero value of T.
type Optional[T any] struct {
	value T
	set   bool
	null  bool
}

// Some returns a set Optional holding value
func Some[T any](value T) Optional[T] {
	return Optional[T]{value: value, set: true}
}

// Null returns a set Optional holding an explicit null
func Null[T any]() Optional[T] {
	return Optional[T]{set: true, null: true}
}

// IsSet reports whether the value was provided at all
func (o Optional[T]) IsSet() bool {
	return o.set
}

// Get returns the value and whether it was provided
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// UnmarshalJSON implements json.Unmarshaler
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.value = zero
		o.null = true
		return nil
	}
	o.null = false
	return json.Unmarshal(data, &o.value)
}

// MarshalJSON implements json.Marshaler
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set || o.null {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}
