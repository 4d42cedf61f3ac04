package board

import (
	"encoding/json"
	"fmt"
)

// Optional holds either a value or nothing. The zero value is empty.
type Optional[T any] struct {
	value T
	ok    bool
}

// Some wraps v
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, ok: true}
}

// None returns the empty Optional
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether one is present
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.ok
}

// IsNone reports whether o is empty
func (o Optional[T]) IsNone() bool {
	return !o.ok
}

// OrElse returns the value, or def when o is empty
func (o Optional[T]) OrElse(def T) T {
	if o.ok {
		return o.value
	}
	return def
}

func (o Optional[T]) String() string {
	if !o.ok {
		return "none"
	}
	return fmt.Sprint(o.value)
}

// MarshalJSON encodes an empty Optional as null
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON decodes null as the empty Optional
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = None[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
