package rar15

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/javi11/rarmeta/rartime"
)

func dosRaw(year, month, day, hour, min, sec int) uint32 {
	return uint32(year-1980)<<25 |
		uint32(month)<<21 |
		uint32(day)<<16 |
		uint32(hour)<<11 |
		uint32(min)<<5 |
		uint32(sec/2)
}

func extTimeArea(flags uint16, rest ...byte) *bytes.Reader {
	buf := binary.LittleEndian.AppendUint16(nil, flags)
	return bytes.NewReader(append(buf, rest...))
}

func TestReadExtendedTimeIncrements(t *testing.T) {
	base := rartime.DOS(dosRaw(2020, 3, 14, 15, 9, 26))
	require.True(t, base.Valid)

	// Modification nibble: present, add one second, three increment bytes.
	ext, err := readExtendedTime(extTimeArea(0xf000, 0xff, 0xee, 0xdd), base)
	require.NoError(t, err)

	want := base.Time.Add(time.Second + time.Duration(0xddeeff)*100*time.Nanosecond)
	require.True(t, ext.ModificationTime.Valid)
	require.Equal(t, want, ext.ModificationTime.Time)
	require.Nil(t, ext.CreationTime)
	require.Nil(t, ext.AccessTime)
	require.Nil(t, ext.ArchiveTime)
}

func TestReadExtendedTimeShortIncrement(t *testing.T) {
	base := rartime.DOS(dosRaw(2020, 3, 14, 15, 9, 26))

	// A single increment byte carries the most significant 100ns digits.
	ext, err := readExtendedTime(extTimeArea(0x9000, 0xff), base)
	require.NoError(t, err)

	want := base.Time.Add(time.Duration(0xff0000) * 100 * time.Nanosecond)
	require.Equal(t, want, ext.ModificationTime.Time)
}

func TestReadExtendedTimeCreationTime(t *testing.T) {
	base := rartime.DOS(dosRaw(2020, 3, 14, 15, 9, 26))
	ctime := dosRaw(2019, 12, 31, 23, 59, 58)

	area := binary.LittleEndian.AppendUint32(nil, ctime)
	ext, err := readExtendedTime(extTimeArea(0x0800, area...), base)
	require.NoError(t, err)

	// The modification nibble is clear, so the base passes through.
	require.Equal(t, base, ext.ModificationTime)
	require.NotNil(t, ext.CreationTime)
	require.Equal(t, time.Date(2019, time.December, 31, 23, 59, 58, 0, time.UTC), ext.CreationTime.Time)
	require.Nil(t, ext.AccessTime)
}

func TestReadExtendedTimeAbsent(t *testing.T) {
	base := rartime.DOS(dosRaw(2020, 3, 14, 15, 9, 26))

	ext, err := readExtendedTime(extTimeArea(0), base)
	require.NoError(t, err)
	require.Equal(t, base, ext.ModificationTime)
	require.Nil(t, ext.CreationTime)
	require.Nil(t, ext.AccessTime)
	require.Nil(t, ext.ArchiveTime)
}
