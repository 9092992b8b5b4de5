package rar15

// Extended time works around the two-second precision of the DOS
// timestamps that rar15 blocks store.
//
// It starts with a u16 holding one 4-bit field per timestamp, ordered
// {modification, creation, access, archive} from the most significant
// nibble down. In each nibble, 0x8 means the timestamp is present, 0x4
// means one second is added to it and the low two bits give the byte size
// of a sub-second increment that follows.
//
// For each present timestamp except the modification time (whose DOS base
// was already read earlier in the header) a u32 DOS timestamp is read
// first. The increment is then read as 0-3 raw bytes, left shifted to a
// fixed 100ns scale and added on top.

import (
	"io"

	"github.com/javi11/rarmeta/internal/parse"
	"github.com/javi11/rarmeta/rartime"
)

// ExtendedTime carries the high-precision timestamps of a file or service
// block. Timestamps other than the modification time may be absent.
type ExtendedTime struct {
	ModificationTime rartime.Time
	CreationTime     *rartime.Time
	AccessTime       *rartime.Time

	// ArchiveTime is the time the entry was added to the archive.
	// unrar says this is never used, but it doesn't hurt to try.
	ArchiveTime *rartime.Time
}

type extTimeFlags uint8

const (
	extTimeExists        extTimeFlags = 0x8
	extTimeAddSecond     extTimeFlags = 0x4
	extTimePrecisionMask extTimeFlags = 0x3

	extTimeMaxPrecision = 3
)

func extTimeShifted(all uint16, shift uint) extTimeFlags {
	return extTimeFlags(all>>(shift*4)) & 0xf
}

func (f extTimeFlags) exists() bool    { return f&extTimeExists != 0 }
func (f extTimeFlags) addSecond() bool { return f&extTimeAddSecond != 0 }
func (f extTimeFlags) precision() int  { return int(f & extTimePrecisionMask) }

// readExtendedTime decodes the extended time area. modificationTime is the
// DOS-encoded base already read earlier in the header.
func readExtendedTime(r io.Reader, modificationTime rartime.Time) (*ExtendedTime, error) {
	allFlags, err := parse.ReadU16(r)
	if err != nil {
		return nil, err
	}

	// The modification time nibble has no DOS base of its own.
	flags := extTimeShifted(allFlags, 3)
	if flags.exists() && modificationTime.Valid {
		modificationTime, err = readTimeIncrements(r, modificationTime, flags)
		if err != nil {
			return nil, err
		}
	}

	creationTime, err := readExtTimestamp(r, extTimeShifted(allFlags, 2))
	if err != nil {
		return nil, err
	}
	accessTime, err := readExtTimestamp(r, extTimeShifted(allFlags, 1))
	if err != nil {
		return nil, err
	}
	archiveTime, err := readExtTimestamp(r, extTimeShifted(allFlags, 0))
	if err != nil {
		return nil, err
	}

	return &ExtendedTime{
		ModificationTime: modificationTime,
		CreationTime:     creationTime,
		AccessTime:       accessTime,
		ArchiveTime:      archiveTime,
	}, nil
}

// readExtTimestamp reads a u32 DOS base and applies the increments.
func readExtTimestamp(r io.Reader, flags extTimeFlags) (*rartime.Time, error) {
	if !flags.exists() {
		return nil, nil
	}

	raw, err := parse.ReadU32(r)
	if err != nil {
		return nil, err
	}

	t := rartime.DOS(raw)
	if t.Valid {
		t, err = readTimeIncrements(r, t, flags)
		if err != nil {
			return nil, err
		}
	}
	return &t, nil
}

func readTimeIncrements(r io.Reader, t rartime.Time, flags extTimeFlags) (rartime.Time, error) {
	if flags.addSecond() {
		t = t.AddSecond()
	}

	n := flags.precision()
	raw, err := parse.ReadUintN(r, n)
	if err != nil {
		return t, err
	}
	hundredNanos := uint32(raw) << ((extTimeMaxPrecision - n) * 8)

	return t.AddNanos(int64(hundredNanos) * 100), nil
}
