package xmlexport

import (
	"github.com/joshuapare/hivexml/internal/format"
)

// iso8601 is second-granular UTC, matching what forensic tooling expects
// from hive timestamps.
const iso8601 = "2006-01-02T15:04:05Z"

// filetimeToISO8601 renders a FILETIME tick count as ISO-8601 UTC. A zero
// tick count means the timestamp is absent, reported via ok=false; callers
// omit the element entirely in that case.
func filetimeToISO8601(ticks uint64) (string, bool) {
	if ticks == 0 {
		return "", false
	}
	return format.FiletimeToTime(ticks).Format(iso8601), true
}
