package utils

import (
	"time"
)

// GetCurrentTimeMillis returns current time in milliseconds since epoch
func GetCurrentTimeMillis() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}

// MillisToTime converts milliseconds since epoch to time.Time
func MillisToTime(millis int64) time.Time {
	return time.Unix(0, millis*int64(time.Millisecond))
}

// TimeToMillis converts time.Time to milliseconds since epoch
func TimeToMillis(t time.Time) int64 {
	return t.UnixNano() / int64(time.Millisecond)
}

// FormatTime formats time in ISO 8601 format
func FormatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

// ParseTime parses ISO 8601 formatted time string
func ParseTime(timeStr string) (time.Time, error) {
	return time.Parse(time.RFC3339, timeStr)
}

// HoursSinceMillis returns the number of whole hours elapsed since the given
// epoch-millisecond timestamp.
func HoursSinceMillis(millis int64) int64 {
	elapsed := GetCurrentTimeMillis() - millis
	if elapsed < 0 {
		return 0
	}
	return elapsed / (60 * 60 * 1000)
}

// MillisAgo returns the epoch-millisecond timestamp for the given number of
// hours before now.
func MillisAgo(hours int64) int64 {
	return GetCurrentTimeMillis() - hours*60*60*1000
}
