package entries

import (
	"strconv"
	"strings"
	"time"
)

const (
	InvalidTimestamp = "Invalid timestamp"
	readableLayout   = "2006-01-02 15:04:05"

	// Bounds of years 1-9999 in epoch milliseconds, padded by two days so the
	// location offset is settled by the year check below.
	minMillis = -62135596800000 - 2*86400000
	maxMillis = 253402300799999 + 2*86400000
)

// ReadableTime renders an epoch-millisecond string as a calendar date-time in
// loc. Anything that is not a base-10 integer, or that lands outside years
// 1-9999, yields InvalidTimestamp.
func ReadableTime(timestamp string, loc *time.Location) string {
	millis, err := strconv.ParseInt(strings.TrimSpace(timestamp), 10, 64)
	if err != nil || millis < minMillis || millis > maxMillis {
		return InvalidTimestamp
	}
	if loc == nil {
		loc = time.Local
	}

	t := time.UnixMilli(millis).In(loc)
	if t.Year() < 1 || t.Year() > 9999 {
		return InvalidTimestamp
	}
	return t.Format(readableLayout)
}

// ToRow derives the display row for e.
func ToRow(e Entry, loc *time.Location) Row {
	return Row{
		AppName:      e.AppName,
		Username:     e.Username,
		Timestamp:    e.Timestamp,
		ReadableTime: ReadableTime(e.Timestamp, loc),
	}
}
