package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// local builds a time at +03:00.
func local(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, Location("+03:00"))
}

func TestNextFireDaily(t *testing.T) {
	rule := Rule{Repeat: RepeatDaily, Anchor: local(2024, 1, 1, 9, 0), Offset: "+03:00"}

	next, ok := NextFire(rule, local(2024, 5, 1, 8, 59))
	require.True(t, ok)
	require.True(t, local(2024, 5, 1, 9, 0).Equal(next))

	next, _ = NextFire(rule, local(2024, 5, 1, 9, 0).Add(30*time.Second))
	require.True(t, local(2024, 5, 2, 9, 0).Equal(next))
}

func TestNextFireWeekly(t *testing.T) {
	// 2024-05-01 is a Wednesday.
	rule := Rule{Repeat: RepeatWeekly, Anchor: local(2024, 1, 1, 19, 0), Offset: "+03:00", DayOfWeek: 3}

	next, ok := NextFire(rule, local(2024, 5, 1, 18, 0))
	require.True(t, ok)
	require.True(t, local(2024, 5, 1, 19, 0).Equal(next))

	next, _ = NextFire(rule, local(2024, 5, 1, 19, 0))
	require.True(t, local(2024, 5, 8, 19, 0).Equal(next))

	rule.DayOfWeek = 1
	next, _ = NextFire(rule, local(2024, 5, 1, 18, 0))
	require.True(t, local(2024, 5, 6, 19, 0).Equal(next))

	rule.DayOfWeek = 0
	next, _ = NextFire(rule, local(2024, 5, 1, 18, 0))
	require.True(t, local(2024, 5, 6, 19, 0).Equal(next), "missing weekday defaults to Monday")
}

func TestNextFireMonthly(t *testing.T) {
	rule := Rule{Repeat: RepeatMonthly, Anchor: local(2024, 1, 1, 18, 0), Offset: "+03:00", DayOfMonth: 5}

	next, ok := NextFire(rule, local(2024, 5, 1, 12, 0))
	require.True(t, ok)
	require.True(t, local(2024, 5, 5, 18, 0).Equal(next))

	next, _ = NextFire(rule, local(2024, 5, 5, 18, 0))
	require.True(t, local(2024, 6, 5, 18, 0).Equal(next))

	next, _ = NextFire(rule, local(2024, 12, 6, 0, 0))
	require.True(t, local(2025, 1, 5, 18, 0).Equal(next))
}

func TestNextFireMonthlyClampsToLastDay(t *testing.T) {
	rule := Rule{Repeat: RepeatMonthly, Anchor: local(2024, 1, 31, 10, 0), Offset: "+03:00", DayOfMonth: 31}

	next, _ := NextFire(rule, local(2024, 2, 1, 0, 0))
	require.True(t, local(2024, 2, 29, 10, 0).Equal(next))

	next, _ = NextFire(rule, local(2024, 2, 29, 10, 0))
	require.True(t, local(2024, 3, 31, 10, 0).Equal(next))

	next, _ = NextFire(rule, local(2024, 4, 30, 11, 0))
	require.True(t, local(2024, 5, 31, 10, 0).Equal(next))
}

func TestNextFireNone(t *testing.T) {
	_, ok := NextFire(Rule{Repeat: RepeatNone}, time.Now())
	require.False(t, ok)
}

func TestNextFireReturnsUTC(t *testing.T) {
	rule := Rule{Repeat: RepeatDaily, Anchor: local(2024, 1, 1, 9, 0), Offset: "+03:00"}
	next, _ := NextFire(rule, local(2024, 5, 1, 8, 0))
	require.Equal(t, time.UTC, next.Location())
	require.Equal(t, 6, next.Hour())
}

func TestFirstFire(t *testing.T) {
	now := local(2024, 5, 1, 12, 0) // Wednesday

	// Anchor on a matching future day is kept.
	rule := Rule{Repeat: RepeatWeekly, Anchor: local(2024, 5, 8, 19, 0), Offset: "+03:00", DayOfWeek: 3}
	first, ok := FirstFire(rule, now)
	require.True(t, ok)
	require.True(t, local(2024, 5, 8, 19, 0).Equal(first))

	// Anchor on a non-matching day moves to the next matching slot.
	rule = Rule{Repeat: RepeatWeekly, Anchor: local(2024, 5, 2, 19, 0), Offset: "+03:00", DayOfWeek: 3}
	first, _ = FirstFire(rule, now)
	require.True(t, local(2024, 5, 1, 19, 0).Equal(first))

	// Past anchor only contributes its time of day.
	rule = Rule{Repeat: RepeatDaily, Anchor: local(2024, 4, 1, 9, 0), Offset: "+03:00"}
	first, _ = FirstFire(rule, now)
	require.True(t, local(2024, 5, 2, 9, 0).Equal(first))

	_, ok = FirstFire(Rule{Repeat: RepeatNone}, now)
	require.False(t, ok)
}

func TestParseRepeatAndWeekday(t *testing.T) {
	require.Equal(t, RepeatWeekly, ParseRepeat(" Weekly "))
	require.Equal(t, RepeatNone, ParseRepeat("yearly"))
	require.True(t, RepeatMonthly.IsRecurring())
	require.False(t, RepeatNone.IsRecurring())

	d, ok := ParseWeekday("wed")
	require.True(t, ok)
	require.Equal(t, 3, d)

	d, ok = ParseWeekday("Воскресенье")
	require.True(t, ok)
	require.Equal(t, 7, d)

	_, ok = ParseWeekday("someday")
	require.False(t, ok)

	require.Equal(t, "Ср", WeekdayLabel(3))
	require.Equal(t, "?", WeekdayLabel(9))
	require.Equal(t, 7, ISOWeekday(local(2024, 5, 5, 0, 0)))
}
