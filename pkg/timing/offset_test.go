package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNormalizeOffset(t *testing.T) {
	cases := []struct {
		in, fallback, want string
	}{
		{"+05:00", "+03:00", "+05:00"},
		{"  -04:30 ", "+03:00", "-04:30"},
		{"+5", "+03:00", "+03:00"},
		{"", "+01:00", "+01:00"},
		{"+15:00", "+03:00", "+03:00"},
		{"garbage", "also garbage", DefaultOffset},
	}

	for _, c := range cases {
		require.Equal(t, c.want, NormalizeOffset(c.in, c.fallback), "input %q", c.in)
	}
}

func TestLocation(t *testing.T) {
	loc := Location("+03:00")
	_, off := time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Zone()
	require.Equal(t, 3*3600, off)

	_, off = time.Date(2024, 1, 1, 0, 0, 0, 0, Location("-02:30")).Zone()
	require.Equal(t, -(2*3600 + 30*60), off)
}

func TestNowISO(t *testing.T) {
	now := time.Date(2024, 5, 1, 8, 15, 30, 999, time.UTC)
	require.Equal(t, "2024-05-01T11:15:30+03:00", NowISO(now, "+03:00"))
	require.Equal(t, "2024-05-01T08:15:30+00:00", NowISO(now, "+00:00"))
}

func TestParseISO(t *testing.T) {
	want := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	for _, in := range []string{
		"2024-05-01T11:00:00+03:00",
		"2024-05-01T08:00:00Z",
		"2024-05-01T11:00+03:00",
		"2024-05-01T11:00:00",
		"2024-05-01T11:00",
		"2024-05-01 11:00:00",
		"2024-05-01 11:00",
	} {
		got, err := ParseISO(in, "+03:00")
		require.NoError(t, err, in)
		require.True(t, want.Equal(got), "%s parsed as %s", in, got)
	}

	_, err := ParseISO("tomorrow", "+03:00")
	require.Error(t, err)

	_, err = ParseISO("", "+03:00")
	require.Error(t, err)
}

func TestFormatLocal(t *testing.T) {
	ts := time.Date(2024, 12, 31, 21, 5, 0, 0, time.UTC)
	require.Equal(t, "01.01 00:05", FormatLocal(ts, "+03:00"))
	require.Equal(t, "00:05", Clock(ts, "+03:00"))
}

func TestNextTimeOfDay(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) // 12:00 at +03:00

	next, err := NextTimeOfDay(now, "+03:00", "19:00")
	require.NoError(t, err)
	require.Equal(t, "2024-05-01T19:00:00+03:00", next.Format(ISOLayout))

	next, err = NextTimeOfDay(now, "+03:00", "08:00")
	require.NoError(t, err)
	require.Equal(t, "2024-05-02T08:00:00+03:00", next.Format(ISOLayout))

	next, err = NextTimeOfDay(now, "+03:00", "12:00")
	require.NoError(t, err)
	require.Equal(t, "2024-05-02T12:00:00+03:00", next.Format(ISOLayout))

	_, err = NextTimeOfDay(now, "+03:00", "25:00")
	require.Error(t, err)
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("9:05")
	require.NoError(t, err)
	require.Equal(t, 9, h)
	require.Equal(t, 5, m)

	_, _, err = ParseClock("0905")
	require.Error(t, err)
}
