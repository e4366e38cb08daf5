package domain

import "time"

// TimeOfDay buckets the wall-clock hour for the fallback background.
type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"
	Afternoon TimeOfDay = "afternoon"
	Evening   TimeOfDay = "evening"
	Night     TimeOfDay = "night"
)

// TimeOfDayAt buckets t by its local hour: 5-11 morning, 12-16 afternoon,
// 17-19 evening, otherwise night.
func TimeOfDayAt(t time.Time) TimeOfDay {
	switch h := t.Hour(); {
	case h >= 5 && h < 12:
		return Morning
	case h >= 12 && h < 17:
		return Afternoon
	case h >= 17 && h < 20:
		return Evening
	default:
		return Night
	}
}

// CurrentTimeOfDay reads the package clock once.
func CurrentTimeOfDay() TimeOfDay {
	return TimeOfDayAt(clock.Now())
}
