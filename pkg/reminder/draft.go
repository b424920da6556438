package reminder

import (
	"strings"
	"time"

	"rembot/pkg/timing"

	"github.com/pkg/errors"
)

const (
	missingTime    = "time"
	missingWeekday = "weekday"
	missingDay     = "day"

	bestGuessClock = "08:00"
)

// Draft collects reminder fields across clarification rounds.
type Draft struct {
	Title         string `json:"title,omitempty"`
	Description   string `json:"description,omitempty"`
	Timezone      string `json:"timezone,omitempty"`
	FixedDatetime string `json:"fixed_datetime,omitempty"`
	Repeat        string `json:"repeat,omitempty"`
	DayOfWeek     int    `json:"day_of_week,omitempty"`
	DayOfMonth    int    `json:"day_of_month,omitempty"`
}

// Upsert copies the non-empty fields of an intent. A draft that is already
// recurring is not turned back into a one-shot by an answer that omits the period.
func (d *Draft) Upsert(in *Intent) {
	if in.Title != "" {
		d.Title = in.Title
	}
	if in.Description != "" {
		d.Description = in.Description
	}
	if in.Timezone != "" {
		d.Timezone = in.Timezone
	}
	if in.FixedDatetime != "" {
		d.FixedDatetime = in.FixedDatetime
	}
	if repeat := timing.ParseRepeat(in.Repeat); repeat.IsRecurring() || d.Repeat == "" {
		d.Repeat = string(repeat)
	}
	if in.DayOfWeek > 0 {
		d.DayOfWeek = int(in.DayOfWeek)
	}
	if in.DayOfMonth > 0 {
		d.DayOfMonth = int(in.DayOfMonth)
	}
}

func (d *Draft) Apply(opt Option) {
	if iso := strings.TrimSpace(opt.ISODatetime); iso != "" {
		d.FixedDatetime = iso
	}
	if opt.DayOfWeek >= 1 && opt.DayOfWeek <= 7 {
		d.DayOfWeek = int(opt.DayOfWeek)
	}
	if opt.DayOfMonth >= 1 && opt.DayOfMonth <= 31 {
		d.DayOfMonth = int(opt.DayOfMonth)
	}
}

func (d *Draft) repeat() timing.Repeat {
	return timing.ParseRepeat(d.Repeat)
}

func (d *Draft) offset(fallback string) string {
	return timing.NormalizeOffset(d.Timezone, fallback)
}

// Missing lists what prevents the draft from being saved.
func (d *Draft) Missing(fallbackOffset string) []string {
	var missing []string

	if _, err := timing.ParseISO(d.FixedDatetime, d.offset(fallbackOffset)); d.FixedDatetime == "" || err != nil {
		missing = append(missing, missingTime)
	}

	switch d.repeat() {
	case timing.RepeatWeekly:
		if d.DayOfWeek < 1 || d.DayOfWeek > 7 {
			missing = append(missing, missingWeekday)
		}
	case timing.RepeatMonthly:
		if d.DayOfMonth < 1 || d.DayOfMonth > 31 {
			missing = append(missing, missingDay)
		}
	}

	return missing
}

func (d *Draft) Ready(fallbackOffset string) bool {
	return len(d.Missing(fallbackOffset)) == 0
}

// FillBestGuess completes the draft after the clarification budget is spent:
// the next 08:00, Monday, the 1st.
func (d *Draft) FillBestGuess(now time.Time, fallbackOffset string) {
	for _, m := range d.Missing(fallbackOffset) {
		switch m {
		case missingTime:
			next, err := timing.NextTimeOfDay(now, d.offset(fallbackOffset), bestGuessClock)
			if err == nil {
				d.FixedDatetime = next.Format(timing.ISOLayout)
			}
		case missingWeekday:
			d.DayOfWeek = 1
		case missingDay:
			d.DayOfMonth = 1
		}
	}
}

// Reminder converts a ready draft. Recurring reminders start at their first slot
// that is not in the past.
func (d *Draft) Reminder(userID, chatID int64, fallbackOffset string, now time.Time) (*Reminder, error) {
	offset := d.offset(fallbackOffset)

	when, err := timing.ParseISO(d.FixedDatetime, offset)
	if err != nil {
		return nil, errors.Wrap(err, "draft has no usable time")
	}

	title := strings.TrimSpace(d.Title)
	if title == "" {
		title = defaultTitle
	}

	r := &Reminder{
		UserID:      userID,
		ChatID:      chatID,
		Title:       title,
		Description: d.Description,
		TZ:          offset,
		Repeat:      d.repeat(),
		State:       StateActive,
		CreatedAt:   now.UTC(),
	}

	switch r.Repeat {
	case timing.RepeatWeekly:
		r.DayOfWeek = d.DayOfWeek
	case timing.RepeatMonthly:
		r.DayOfMonth = d.DayOfMonth
	}

	when = when.UTC()
	r.When = &when
	if r.Repeat.IsRecurring() {
		first, _ := timing.FirstFire(r.Rule(), now)
		r.When = &first
	}

	return r, nil
}
