package config

import (
	"encoding/json"
	"errors"
	"time"
)

// Duration reads either a Go duration string ("1500ms") or a number of
// nanoseconds from JSON.
type Duration struct{ time.Duration }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return errors.New("invalid duration")
	}
}

// Ptr returns nil for a nil receiver, so optional JSON durations can feed
// APIs that take *time.Duration.
func (d *Duration) Ptr() *time.Duration {
	if d == nil {
		return nil
	}
	v := d.Duration
	return &v
}
