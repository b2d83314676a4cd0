package types

import (
	"bytes"
	"encoding/json"
	"time"
)

// OptionalTime distinguishes an absent JSON field from an explicit null.
type OptionalTime struct {
	Set   bool
	Value *time.Time
}

func (o *OptionalTime) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}

	var value time.Time
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	o.Value = &value
	return nil
}

func (o OptionalTime) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Clears reports whether the field was sent as an explicit null.
func (o OptionalTime) Clears() bool {
	return o.Set && o.Value == nil
}

func SomeTime(t time.Time) OptionalTime {
	return OptionalTime{Set: true, Value: &t}
}

func NullTime() OptionalTime {
	return OptionalTime{Set: true}
}
