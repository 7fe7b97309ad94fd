package internal

import (
	"encoding/binary"
	"time"
)

const (
	// 100ns intervals between 1601-01-01 and the Unix epoch
	filetimeEpoch  = 116444736000000000
	ticksPerSecond = 10000000
)

// Filetime is a Windows FILETIME.
type Filetime uint64

// ReadFiletime reads a little endian FILETIME from the front of data.
func ReadFiletime(data []byte) Filetime {
	return Filetime(binary.LittleEndian.Uint64(data))
}

// Time converts ft to a UTC time, or the zero time when ft is unset.
func (ft Filetime) Time() time.Time {
	if ft == 0 || ft < filetimeEpoch {
		return time.Time{}
	}
	// split before scaling, nanoseconds overflow int64 past 2262
	ticks := uint64(ft - filetimeEpoch)
	return time.Unix(int64(ticks/ticksPerSecond), int64(ticks%ticksPerSecond)*100).UTC()
}
