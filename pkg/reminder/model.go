package reminder

import (
	"database/sql"
	"time"

	"rembot/pkg/timing"
)

type State string

const (
	StateActive    State = "active"
	StateDone      State = "done"
	StateCancelled State = "cancelled"
)

const defaultTitle = "Напоминание"

type Reminder struct {
	ID          int64
	UserID      int64
	ChatID      int64
	Title       string
	Description string
	When        *time.Time
	TZ          string
	Repeat      timing.Repeat
	DayOfWeek   int
	DayOfMonth  int
	State       State
	CreatedAt   time.Time
	FiredAt     *time.Time
}

func (r *Reminder) Rule() timing.Rule {
	rule := timing.Rule{
		Repeat:     r.Repeat,
		Offset:     r.TZ,
		DayOfWeek:  r.DayOfWeek,
		DayOfMonth: r.DayOfMonth,
	}
	if r.When != nil {
		rule.Anchor = *r.When
	}

	return rule
}

// row mirrors the reminders table, times are unix seconds.
type row struct {
	ID          int64         `db:"id"`
	UserID      int64         `db:"user_id"`
	ChatID      int64         `db:"chat_id"`
	Title       string        `db:"title"`
	Description string        `db:"description"`
	WhenTS      sql.NullInt64 `db:"when_ts"`
	TZ          string        `db:"tz"`
	Repeat      string        `db:"repeat"`
	DayOfWeek   sql.NullInt64 `db:"day_of_week"`
	DayOfMonth  sql.NullInt64 `db:"day_of_month"`
	State       string        `db:"state"`
	CreatedAt   int64         `db:"created_at"`
	FiredAt     sql.NullInt64 `db:"fired_at"`
}

func toRow(r *Reminder) row {
	return row{
		ID:          r.ID,
		UserID:      r.UserID,
		ChatID:      r.ChatID,
		Title:       r.Title,
		Description: r.Description,
		WhenTS:      unixOrNull(r.When),
		TZ:          r.TZ,
		Repeat:      string(r.Repeat),
		DayOfWeek:   intOrNull(r.DayOfWeek),
		DayOfMonth:  intOrNull(r.DayOfMonth),
		State:       string(r.State),
		CreatedAt:   r.CreatedAt.Unix(),
		FiredAt:     unixOrNull(r.FiredAt),
	}
}

func (rw row) toReminder() Reminder {
	return Reminder{
		ID:          rw.ID,
		UserID:      rw.UserID,
		ChatID:      rw.ChatID,
		Title:       rw.Title,
		Description: rw.Description,
		When:        timeOrNil(rw.WhenTS),
		TZ:          timing.NormalizeOffset(rw.TZ, timing.DefaultOffset),
		Repeat:      timing.ParseRepeat(rw.Repeat),
		DayOfWeek:   int(rw.DayOfWeek.Int64),
		DayOfMonth:  int(rw.DayOfMonth.Int64),
		State:       State(rw.State),
		CreatedAt:   time.Unix(rw.CreatedAt, 0).UTC(),
		FiredAt:     timeOrNil(rw.FiredAt),
	}
}

func unixOrNull(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}

	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func intOrNull(v int) sql.NullInt64 {
	if v == 0 {
		return sql.NullInt64{}
	}

	return sql.NullInt64{Int64: int64(v), Valid: true}
}

func timeOrNil(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}

	t := time.Unix(v.Int64, 0).UTC()
	return &t
}
