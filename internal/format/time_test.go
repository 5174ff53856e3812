package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFiletimeRoundTrip(t *testing.T) {
	times := []time.Time{
		time.Date(1601, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(1969, time.December, 31, 0, 0, 0, 0, time.UTC),
		time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2009, time.June, 23, 14, 0, 1, 500, time.UTC),
		time.Date(2100, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, want := range times {
		got := FiletimeToTime(TimeToFiletime(want))
		require.True(t, want.Equal(got), "want %s got %s", want, got)
	}
}

func TestFiletimeToTimeZeroIsFormatOrigin(t *testing.T) {
	require.Equal(t, time.Date(1601, time.January, 1, 0, 0, 0, 0, time.UTC), FiletimeToTime(0))
}

func TestFiletimePreUnixEpoch(t *testing.T) {
	// One day before the Unix epoch must stay one day before it.
	const ticks = uint64(116443872000000000)
	got := FiletimeToTime(ticks)
	require.Equal(t, time.Date(1969, time.December, 31, 0, 0, 0, 0, time.UTC), got)
	require.EqualValues(t, -86400, got.Unix())
}

func TestFiletimeKnownValue(t *testing.T) {
	// 2009-06-23T14:00:00Z as FILETIME ticks.
	const ticks = uint64(128902392000000000)
	require.Equal(t, time.Date(2009, time.June, 23, 14, 0, 0, 0, time.UTC), FiletimeToTime(ticks))
}

func TestTimeToFiletimeClampsPre1601(t *testing.T) {
	require.EqualValues(t, 0, TimeToFiletime(time.Date(1500, time.January, 1, 0, 0, 0, 0, time.UTC)))
}

func TestEncodingRoundTrip(t *testing.T) {
	buf := make([]byte, 18)
	PutU16(buf, 0, 0xBEEF)
	PutU32(buf, 2, 0xDEADBEEF)
	PutI32(buf, 6, -64)
	PutU64(buf, 10, 0x0102030405060708)

	require.Equal(t, uint16(0xBEEF), ReadU16(buf, 0))
	require.Equal(t, uint32(0xDEADBEEF), ReadU32(buf, 2))
	require.Equal(t, int32(-64), ReadI32(buf, 6))
	require.Equal(t, uint64(0x0102030405060708), ReadU64(buf, 10))
}
