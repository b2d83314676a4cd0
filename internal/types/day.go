package types

import (
	"encoding/json"
	"time"
	"topup/internal/utils"
)

// Day is a date sent by a client, either a full timestamp or a zoneless
// form such as "2025-03-10". Zoneless forms stay unresolved until In places
// them in the calendar location.
type Day struct {
	raw   string
	value time.Time
}

func DayOf(t time.Time) Day {
	return Day{value: t}
}

func DaysOf(times ...time.Time) []Day {
	days := make([]Day, len(times))
	for i, t := range times {
		days[i] = DayOf(t)
	}
	return days
}

func (d *Day) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if _, err := utils.ParseDate(raw, time.UTC); err != nil {
		return err
	}
	d.raw = raw
	d.value = time.Time{}
	return nil
}

func (d Day) MarshalJSON() ([]byte, error) {
	if d.raw != "" {
		return json.Marshal(d.raw)
	}
	return json.Marshal(d.value)
}

func (d Day) IsZero() bool {
	return d.raw == "" && d.value.IsZero()
}

// In resolves the day in loc. Zoneless input is read as local to loc.
func (d Day) In(loc *time.Location) time.Time {
	if d.raw == "" {
		if d.value.IsZero() {
			return d.value
		}
		return d.value.In(loc)
	}
	parsed, err := utils.ParseDate(d.raw, loc)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func DaysIn(days []Day, loc *time.Location) []time.Time {
	times := make([]time.Time, len(days))
	for i, day := range days {
		times[i] = day.In(loc)
	}
	return times
}
