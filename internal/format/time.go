package format

import "time"

// Windows FILETIME counts 100ns ticks since 1601-01-01 UTC. Hive headers and
// NK records store last-write times in this form.
const (
	ticksPerSecond    = 10_000_000
	nsPerTick         = 100
	epochDeltaSeconds = 11644473600 // seconds between 1601-01-01 and 1970-01-01
)

// FiletimeToTime converts a FILETIME tick count to a UTC time.Time. Ticks
// below the Unix epoch delta are legitimate 1601-era instants and convert to
// the corresponding pre-1970 time; forensic output must not collapse them.
func FiletimeToTime(v uint64) time.Time {
	ticks := int64(v)
	sec := ticks/ticksPerSecond - epochDeltaSeconds
	nsec := (ticks % ticksPerSecond) * nsPerTick
	return time.Unix(sec, nsec).UTC()
}

// TimeToFiletime converts a time.Time to a FILETIME tick count. Times before
// 1601 are clamped to zero, the format's origin.
func TimeToFiletime(t time.Time) uint64 {
	sec := t.Unix() + epochDeltaSeconds
	if sec < 0 {
		return 0
	}
	return uint64(sec)*ticksPerSecond + uint64(t.Nanosecond())/nsPerTick
}
