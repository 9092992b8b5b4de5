// Package rartime converts the timestamp encodings used across the RAR
// format generations (DOS packed datetime, Windows FILETIME, Unix epoch
// seconds and nanoseconds) into time.Time values.
//
// Conversion never panics. A value whose encoded components do not form a
// valid calendar time is reported as a RangeError; the Time wrapper keeps
// the raw on-disk integer around so no information is lost.
package rartime

import (
	"fmt"
	"math"
	"time"
)

// Time is a decoded timestamp. When the on-disk value could not be
// converted, Valid is false and Raw holds the original integer.
type Time struct {
	time.Time

	Raw   uint64
	Valid bool
}

// AddNanos returns the timestamp shifted forward by ns nanoseconds.
// Invalid timestamps are returned unchanged.
func (t Time) AddNanos(ns int64) Time {
	if !t.Valid {
		return t
	}
	t.Time = t.Time.Add(time.Duration(ns) * time.Nanosecond)
	return t
}

// AddSecond returns the timestamp shifted forward by one second.
// Invalid timestamps are returned unchanged.
func (t Time) AddSecond() Time {
	if !t.Valid {
		return t
	}
	t.Time = t.Time.Add(time.Second)
	return t
}

func (t Time) String() string {
	if !t.Valid {
		return fmt.Sprintf("invalid(%#x)", t.Raw)
	}
	return t.Time.Format(time.RFC3339Nano)
}

// RangeError reports a timestamp whose encoded components are out of range.
type RangeError struct {
	// Raw is the original on-disk value.
	Raw uint64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("timestamp out of range: %#x", e.Raw)
}

func wrap(t time.Time, raw uint64, err error) Time {
	if err != nil {
		return Time{Raw: raw}
	}
	return Time{Time: t, Raw: raw, Valid: true}
}

// Calendar range accepted by the converters. Mirrors the validity window
// used by unrar's own date handling.
const (
	minYear = -9999
	maxYear = 9999
)

func checkYear(t time.Time, raw uint64) (time.Time, error) {
	if y := t.Year(); y < minYear || y > maxYear {
		return time.Time{}, &RangeError{Raw: raw}
	}
	return t, nil
}

// ParseDOSDateTime converts an MS-DOS packed datetime.
//
// The layout, from the least significant bit: 5 bits of seconds divided by
// two, 6 bits of minutes, 5 bits of hours, 5 bits of day, 4 bits of month
// and 7 bits of years since 1980. The seconds field only has a precision of
// two seconds.
// https://learn.microsoft.com/en-us/windows/win32/sysinfo/ms-dos-date-and-time
func ParseDOSDateTime(v uint32) (time.Time, error) {
	sec := int(v&0x1f) * 2
	min := int(v>>5) & 0x3f
	hour := int(v>>11) & 0x1f
	day := int(v>>16) & 0x1f
	month := int(v>>21) & 0x0f
	year := int(v>>25) + 1980

	if sec > 59 || min > 59 || hour > 23 || month < 1 || month > 12 || day < 1 {
		return time.Time{}, &RangeError{Raw: uint64(v)}
	}

	t := time.Date(year, time.Month(month), day, hour, min, sec, 0, time.UTC)
	// time.Date normalizes impossible dates like February 30 instead of
	// failing; a round-trip mismatch means the day was out of range.
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, &RangeError{Raw: uint64(v)}
	}
	return t, nil
}

// DOS converts an MS-DOS packed datetime, keeping the raw value on failure.
func DOS(v uint32) Time {
	t, err := ParseDOSDateTime(v)
	return wrap(t, uint64(v), err)
}

// Number of 100ns FILETIME ticks per second and the offset between the
// Windows epoch (1601-01-01) and the Unix epoch, in seconds.
// https://stackoverflow.com/questions/6161776/convert-windows-filetime-to-second-in-unix-linux
const (
	filetimeTicksPerSec  = 10_000_000
	windowsEpochDiffSecs = 11_644_473_600
)

// ParseWindowsFiletime converts a Windows FILETIME value: the number of
// 100-nanosecond ticks since 1601-01-01T00:00:00Z.
// https://learn.microsoft.com/en-us/windows/win32/api/minwinbase/ns-minwinbase-filetime
func ParseWindowsFiletime(v uint64) (time.Time, error) {
	secs := int64(v/filetimeTicksPerSec) - windowsEpochDiffSecs
	nanos := int64(v%filetimeTicksPerSec) * 100
	return checkYear(time.Unix(secs, nanos).UTC(), v)
}

// Filetime converts a Windows FILETIME, keeping the raw value on failure.
func Filetime(v uint64) Time {
	t, err := ParseWindowsFiletime(v)
	return wrap(t, v, err)
}

// ParseUnixSec converts seconds since the Unix epoch.
func ParseUnixSec(v uint32) (time.Time, error) {
	return checkYear(time.Unix(int64(v), 0).UTC(), uint64(v))
}

// UnixSec converts seconds since the Unix epoch, keeping the raw value on
// failure.
func UnixSec(v uint32) Time {
	t, err := ParseUnixSec(v)
	return wrap(t, uint64(v), err)
}

// ParseUnixNanos converts nanoseconds since the Unix epoch.
func ParseUnixNanos(v uint64) (time.Time, error) {
	if v > math.MaxInt64 {
		return time.Time{}, &RangeError{Raw: v}
	}
	return checkYear(time.Unix(0, int64(v)).UTC(), v)
}

// UnixNanos converts nanoseconds since the Unix epoch, keeping the raw
// value on failure.
func UnixNanos(v uint64) Time {
	t, err := ParseUnixNanos(v)
	return wrap(t, v, err)
}
