package timing

import (
	"strings"
	"time"
)

type Repeat string

const (
	RepeatNone    Repeat = "none"
	RepeatDaily   Repeat = "daily"
	RepeatWeekly  Repeat = "weekly"
	RepeatMonthly Repeat = "monthly"
)

// ParseRepeat maps free-form values to a Repeat; anything unknown is RepeatNone.
func ParseRepeat(s string) Repeat {
	switch Repeat(strings.ToLower(strings.TrimSpace(s))) {
	case RepeatDaily:
		return RepeatDaily
	case RepeatWeekly:
		return RepeatWeekly
	case RepeatMonthly:
		return RepeatMonthly
	default:
		return RepeatNone
	}
}

func (r Repeat) IsRecurring() bool {
	return r == RepeatDaily || r == RepeatWeekly || r == RepeatMonthly
}

var weekdayShort = [...]string{"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"}

// WeekdayLabel returns the short russian name for an ISO weekday (1 = Monday).
func WeekdayLabel(isoDay int) string {
	if isoDay < 1 || isoDay > 7 {
		return "?"
	}

	return weekdayShort[isoDay-1]
}

var weekdayNames = map[string]int{
	"mon": 1, "monday": 1, "пн": 1, "понедельник": 1,
	"tue": 2, "tuesday": 2, "вт": 2, "вторник": 2,
	"wed": 3, "wednesday": 3, "ср": 3, "среда": 3,
	"thu": 4, "thursday": 4, "чт": 4, "четверг": 4,
	"fri": 5, "friday": 5, "пт": 5, "пятница": 5,
	"sat": 6, "saturday": 6, "сб": 6, "суббота": 6,
	"sun": 7, "sunday": 7, "вс": 7, "воскресенье": 7,
}

// ParseWeekday understands english and russian names and abbreviations.
func ParseWeekday(s string) (int, bool) {
	d, ok := weekdayNames[strings.ToLower(strings.TrimSpace(s))]
	return d, ok
}

func ISOWeekday(t time.Time) int {
	return (int(t.Weekday())+6)%7 + 1
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Rule describes a recurring schedule anchored at a local time of day.
type Rule struct {
	Repeat     Repeat
	Anchor     time.Time
	Offset     string
	DayOfWeek  int
	DayOfMonth int
}

func (r Rule) weekday() int {
	if r.DayOfWeek < 1 || r.DayOfWeek > 7 {
		return 1
	}

	return r.DayOfWeek
}

func (r Rule) monthDay() int {
	if r.DayOfMonth < 1 || r.DayOfMonth > 31 {
		return 1
	}

	return r.DayOfMonth
}

// NextFire returns the earliest occurrence strictly after `after`, compared at
// minute precision. RepeatNone has no next occurrence.
func NextFire(r Rule, after time.Time) (time.Time, bool) {
	if !r.Repeat.IsRecurring() {
		return time.Time{}, false
	}

	loc := Location(r.Offset)
	now := after.In(loc).Truncate(time.Minute)

	anchor := now
	if !r.Anchor.IsZero() {
		anchor = r.Anchor.In(loc)
	}

	at := func(year int, month time.Month, day int) time.Time {
		return time.Date(year, month, day, anchor.Hour(), anchor.Minute(), 0, 0, loc)
	}

	var next time.Time
	switch r.Repeat {
	case RepeatDaily:
		next = at(now.Year(), now.Month(), now.Day())
		if !next.After(now) {
			next = next.AddDate(0, 0, 1)
		}
	case RepeatWeekly:
		delta := (r.weekday() - ISOWeekday(now) + 7) % 7
		next = at(now.Year(), now.Month(), now.Day()).AddDate(0, 0, delta)
		if !next.After(now) {
			next = next.AddDate(0, 0, 7)
		}
	case RepeatMonthly:
		year, month := now.Year(), now.Month()
		next = at(year, month, min(r.monthDay(), daysIn(year, month)))
		if !next.After(now) {
			year, month = nextMonth(year, month)
			next = at(year, month, min(r.monthDay(), daysIn(year, month)))
		}
	}

	return next.UTC(), true
}

func nextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}

	return year, month + 1
}

// Matches reports whether t falls on a day the rule fires at its anchor time.
func Matches(r Rule, t time.Time) bool {
	local := t.In(Location(r.Offset))
	switch r.Repeat {
	case RepeatDaily:
		return true
	case RepeatWeekly:
		return ISOWeekday(local) == r.weekday()
	case RepeatMonthly:
		return local.Day() == min(r.monthDay(), daysIn(local.Year(), local.Month()))
	default:
		return false
	}
}

// FirstFire is the first occurrence of a freshly created rule: its anchor when that
// is still ahead and on a matching day, otherwise the next slot after now.
func FirstFire(r Rule, now time.Time) (time.Time, bool) {
	if !r.Repeat.IsRecurring() {
		return time.Time{}, false
	}

	if !r.Anchor.IsZero() && r.Anchor.After(now) && Matches(r, r.Anchor) {
		return r.Anchor.UTC(), true
	}

	return NextFire(r, now)
}
