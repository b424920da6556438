package reminder

import (
	"context"
	"database/sql"
	"time"

	"rembot/pkg/timing"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	logging "github.com/sirupsen/logrus"
)

const columns = `id, user_id, chat_id, title, description, when_ts, tz, repeat,
	day_of_week, day_of_month, state, created_at, fired_at`

type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) Create(ctx context.Context, r *Reminder) (int64, error) {
	if r.State == "" {
		r.State = StateActive
	}
	if r.Repeat == "" {
		r.Repeat = timing.RepeatNone
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now().UTC()
	}

	res, err := s.db.NamedExecContext(ctx, `
		INSERT INTO reminders (user_id, chat_id, title, description, when_ts, tz, repeat,
			day_of_week, day_of_month, state, created_at, fired_at)
		VALUES (:user_id, :chat_id, :title, :description, :when_ts, :tz, :repeat,
			:day_of_week, :day_of_month, :state, :created_at, :fired_at)`,
		toRow(r),
	)
	if err != nil {
		return 0, errors.Wrap(err, "failed to insert reminder")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "failed to read inserted reminder id")
	}
	r.ID = id

	logging.WithContext(ctx).Infof("saved reminder #%d %q for user %d", id, r.Title, r.UserID)

	return id, nil
}

func (s *Store) Get(ctx context.Context, id int64) (*Reminder, bool, error) {
	var rw row
	err := s.db.GetContext(ctx, &rw, `SELECT `+columns+` FROM reminders WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "failed to load reminder #%d", id)
	}

	r := rw.toReminder()
	return &r, true, nil
}

func (s *Store) selectReminders(ctx context.Context, query string, args ...interface{}) ([]Reminder, error) {
	var rows []row
	err := s.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load reminders")
	}

	result := make([]Reminder, 0, len(rows))
	for _, rw := range rows {
		result = append(result, rw.toReminder())
	}

	return result, nil
}

// ListActive returns the user's active reminders, soonest first.
func (s *Store) ListActive(ctx context.Context, userID int64) ([]Reminder, error) {
	return s.selectReminders(ctx, `SELECT `+columns+` FROM reminders
		WHERE user_id = ? AND state = ?
		ORDER BY when_ts IS NULL, when_ts ASC, id ASC`,
		userID, string(StateActive),
	)
}

// Due returns active reminders whose time has come.
func (s *Store) Due(ctx context.Context, now time.Time) ([]Reminder, error) {
	return s.selectReminders(ctx, `SELECT `+columns+` FROM reminders
		WHERE state = ? AND when_ts IS NOT NULL AND when_ts <= ?
		ORDER BY when_ts ASC, id ASC`,
		string(StateActive), now.Unix(),
	)
}

// CountActive returns the number of active reminders of all users.
func (s *Store) CountActive(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM reminders WHERE state = ?`, string(StateActive))
	if err != nil {
		return 0, errors.Wrap(err, "failed to count active reminders")
	}

	return count, nil
}

func (s *Store) Reschedule(ctx context.Context, id int64, when time.Time) error {
	_, err := s.db.ExecContext(ctx, `UPDATE reminders SET when_ts = ?, state = ? WHERE id = ?`,
		when.Unix(), string(StateActive), id)

	return errors.Wrapf(err, "failed to reschedule reminder #%d", id)
}

func (s *Store) MarkDone(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE reminders SET state = ? WHERE id = ?`, string(StateDone), id)

	return errors.Wrapf(err, "failed to mark reminder #%d done", id)
}

// AfterFire moves a fired reminder on: recurring ones to their next slot, one-shots
// to done. It returns the next fire time if there is one.
func (s *Store) AfterFire(ctx context.Context, r *Reminder, now time.Time) (*time.Time, error) {
	next, ok := timing.NextFire(r.Rule(), now)
	if !ok {
		_, err := s.db.ExecContext(ctx, `UPDATE reminders SET state = ?, fired_at = ? WHERE id = ?`,
			string(StateDone), now.Unix(), r.ID)

		return nil, errors.Wrapf(err, "failed to close reminder #%d", r.ID)
	}

	_, err := s.db.ExecContext(ctx, `UPDATE reminders SET when_ts = ?, fired_at = ? WHERE id = ?`,
		next.Unix(), now.Unix(), r.ID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to advance reminder #%d", r.ID)
	}

	return &next, nil
}

// Cancel cancels an active reminder that belongs to chatID.
func (s *Store) Cancel(ctx context.Context, id, chatID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE reminders SET state = ? WHERE id = ? AND chat_id = ? AND state = ?`,
		string(StateCancelled), id, chatID, string(StateActive))
	if err != nil {
		return false, errors.Wrapf(err, "failed to cancel reminder #%d", id)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "failed to read affected rows")
	}

	return affected > 0, nil
}

// Snooze makes a reminder fire again `minutes` after now. A one-shot reminder is
// reactivated, a recurring one gets a one-shot copy so its series stays intact.
// The returned reminder is the one that will fire.
func (s *Store) Snooze(ctx context.Context, id, chatID int64, minutes int, now time.Time) (*Reminder, bool, error) {
	r, found, err := s.Get(ctx, id)
	if err != nil || !found {
		return nil, false, err
	}
	if r.ChatID != chatID || r.State == StateCancelled {
		return nil, false, nil
	}

	when := now.Add(time.Duration(minutes) * time.Minute).Truncate(time.Second).UTC()

	if !r.Repeat.IsRecurring() {
		err = s.Reschedule(ctx, r.ID, when)
		if err != nil {
			return nil, false, err
		}
		r.When = &when
		r.State = StateActive

		return r, true, nil
	}

	snoozed := &Reminder{
		UserID:      r.UserID,
		ChatID:      r.ChatID,
		Title:       r.Title,
		Description: r.Description,
		When:        &when,
		TZ:          r.TZ,
		Repeat:      timing.RepeatNone,
		State:       StateActive,
	}
	_, err = s.Create(ctx, snoozed)
	if err != nil {
		return nil, false, err
	}

	return snoozed, true, nil
}

func (s *Store) SetUserTZ(ctx context.Context, userID int64, tz string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_settings (user_id, tz, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET tz = excluded.tz, updated_at = excluded.updated_at`,
		userID, tz, s.now().Unix(),
	)

	return errors.Wrapf(err, "failed to save timezone of user %d", userID)
}

func (s *Store) UserTZ(ctx context.Context, userID int64) (string, bool, error) {
	var tz string
	err := s.db.GetContext(ctx, &tz, `SELECT tz FROM user_settings WHERE user_id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "failed to load timezone of user %d", userID)
	}

	return tz, true, nil
}
