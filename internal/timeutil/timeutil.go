// Package timeutil provides utility functions for working with
// time-related operations.
package timeutil

import (
	"fmt"
	"math"
	"time"
)

const (
	secondsInAMinute = 60
	minutesInAnHour  = 60
)

// Round rounds a time value in seconds, minutes, or hours to the nearest
// integer.
func Round(t float64) int {
	return int(math.Round(t))
}

// SecsToMinsAndSecs splits a seconds value into minutes and seconds.
func SecsToMinsAndSecs(secs float64) (mins, s int) {
	total := Round(secs)
	mins = total / secondsInAMinute
	s = total % secondsInAMinute

	return
}

// FormatRemainder renders a countdown remainder as MM:SS, or H:MM:SS once
// it exceeds an hour.
func FormatRemainder(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	mins, secs := SecsToMinsAndSecs(d.Seconds())

	if mins >= minutesInAnHour {
		return fmt.Sprintf(
			"%d:%02d:%02d", mins/minutesInAnHour, mins%minutesInAnHour, secs,
		)
	}

	return fmt.Sprintf("%02d:%02d", mins, secs)
}

// RoundToStart resets the given time to the start of the day.
func RoundToStart(t time.Time) time.Time {
	return time.Date(
		t.Year(),
		t.Month(),
		t.Day(),
		0,
		0,
		0,
		0,
		t.Location(),
	)
}

// ToKey converts a time value to a database key for Bolt.
func ToKey(t time.Time) []byte {
	return []byte(t.Format(time.RFC3339Nano))
}
