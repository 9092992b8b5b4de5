package rartime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func dosRaw(year, month, day, hour, min, sec int) uint32 {
	return uint32(year-1980)<<25 |
		uint32(month)<<21 |
		uint32(day)<<16 |
		uint32(hour)<<11 |
		uint32(min)<<5 |
		uint32(sec/2)
}

func TestParseDOSDateTime(t *testing.T) {
	got, err := ParseDOSDateTime(dosRaw(2010, 6, 15, 12, 34, 56))
	require.NoError(t, err)
	require.Equal(t, time.Date(2010, time.June, 15, 12, 34, 56, 0, time.UTC), got)
}

func TestParseDOSDateTimeOutOfRange(t *testing.T) {
	for _, raw := range []uint32{
		0,                              // month 0
		dosRaw(1990, 2, 30, 0, 0, 0),   // February 30
		dosRaw(2000, 13, 1, 0, 0, 0),   // month 13
		dosRaw(2000, 1, 1, 0, 0, 2*31), // second 62
	} {
		_, err := ParseDOSDateTime(raw)
		var rangeErr *RangeError
		require.ErrorAs(t, err, &rangeErr)
		require.Equal(t, uint64(raw), rangeErr.Raw)
	}
}

func TestDOSKeepsRawOnFailure(t *testing.T) {
	raw := dosRaw(1990, 2, 30, 0, 0, 0)
	got := DOS(raw)
	require.False(t, got.Valid)
	require.Equal(t, uint64(raw), got.Raw)

	// Invalid timestamps pass through the adjustment helpers unchanged.
	require.Equal(t, got, got.AddSecond())
	require.Equal(t, got, got.AddNanos(100))
}

func TestParseWindowsFiletime(t *testing.T) {
	got, err := ParseWindowsFiletime(0)
	require.NoError(t, err)
	require.Equal(t, time.Date(1601, time.January, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseWindowsFiletime(128166372003061629)
	require.NoError(t, err)
	require.Equal(t, time.Date(2007, time.February, 22, 17, 0, 0, 306162900, time.UTC), got)
}

func TestFiletimeWrapper(t *testing.T) {
	got := Filetime(128166372003061629)
	require.True(t, got.Valid)
	require.Equal(t, uint64(128166372003061629), got.Raw)
	require.Equal(t, "2007-02-22T17:00:00.3061629Z", got.String())
}

func TestParseUnixSec(t *testing.T) {
	got, err := ParseUnixSec(1172163600)
	require.NoError(t, err)
	require.Equal(t, time.Date(2007, time.February, 22, 17, 0, 0, 0, time.UTC), got)
}

func TestParseUnixNanos(t *testing.T) {
	got, err := ParseUnixNanos(1_000_000_001)
	require.NoError(t, err)
	require.Equal(t, time.Date(1970, time.January, 1, 0, 0, 1, 1, time.UTC), got)

	_, err = ParseUnixNanos(^uint64(0))
	var rangeErr *RangeError
	require.ErrorAs(t, err, &rangeErr)
	require.Equal(t, ^uint64(0), rangeErr.Raw)

	wrapped := UnixNanos(^uint64(0))
	require.False(t, wrapped.Valid)
	require.Equal(t, ^uint64(0), wrapped.Raw)
}
