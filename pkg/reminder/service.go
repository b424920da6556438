package reminder

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"rembot/pkg/monitoring"
	"rembot/pkg/msg"
	"rembot/pkg/timing"

	"github.com/pkg/errors"
	logging "github.com/sirupsen/logrus"
)

const clarifyPrefix = "\nОтвет на уточнение: "

var (
	defaultClockOptions = []string{"08:00", "12:00", "19:00"}
	defaultDayOptions   = []int{1, 5, 10, 15, 20, 25}
)

type IntentParser interface {
	Parse(ctx context.Context, text, offset string, followup bool) (*Intent, error)
}

// Service turns parsed text into saved reminders, asking clarifying questions
// while a draft is incomplete.
type Service struct {
	cfg     *Config
	store   *Store
	parser  IntentParser
	pending *PendingStore
	metrics *monitoring.Metrics
	now     func() time.Time

	// telebot runs handlers concurrently, a user's draft is updated by one update at a time
	userLocks sync.Map
}

func NewService(cfg *Config, store *Store, parser IntentParser, pending *PendingStore, metrics *monitoring.Metrics) *Service {
	return &Service{
		cfg:     cfg,
		store:   store,
		parser:  parser,
		pending: pending,
		metrics: metrics,
		now:     time.Now,
	}
}

func (s *Service) lockUser(userID int64) func() {
	l, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	mu := l.(*sync.Mutex)
	mu.Lock()

	return mu.Unlock
}

// UserOffset is the user's saved offset or the configured default.
func (s *Service) UserOffset(ctx context.Context, userID int64) string {
	tz, found, err := s.store.UserTZ(ctx, userID)
	if err != nil {
		logging.WithContext(ctx).Errorf("failed to load user timezone: %v", err)
	}
	if !found {
		return s.cfg.DefaultTZ
	}

	return timing.NormalizeOffset(tz, s.cfg.DefaultTZ)
}

func (s *Service) HandleText(ctx context.Context, userID, chatID int64, text string) (*msg.Response, error) {
	defer s.lockUser(userID)()

	text = strings.TrimSpace(text)
	offset := s.UserOffset(ctx, userID)

	pending, found, err := s.pending.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	var in *Intent
	if found {
		in, err = s.parser.Parse(ctx, pending.OriginalText+clarifyPrefix+text, offset, true)
	} else {
		pending = &Pending{OriginalText: text}
		in, err = s.parser.Parse(ctx, text, offset, false)
	}
	if errors.Is(err, ErrNotUnderstood) {
		return msg.NewResponse(notUnderstoodText, msg.Error, nil), nil
	}
	if err != nil {
		return nil, err
	}

	if in.Intent == IntentChat {
		return msg.NewResponse(notUnderstoodText, msg.Error, nil), nil
	}

	pending.Draft.Upsert(in)

	return s.advance(ctx, userID, chatID, offset, pending, in, false)
}

// PickOption applies a clarification button to the pending draft.
func (s *Service) PickOption(ctx context.Context, userID, chatID int64, idx int) (*msg.Response, error) {
	defer s.lockUser(userID)()

	editOpts := (&msg.Options{}).WithEditOriginal()

	pending, found, err := s.pending.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !found || idx < 0 || idx >= len(pending.Options) {
		return msg.NewResponse("Уточнение устарело, напиши задачу ещё раз.", msg.Error, editOpts), nil
	}

	pending.Draft.Apply(pending.Options[idx])

	return s.advance(ctx, userID, chatID, s.UserOffset(ctx, userID), pending, nil, true)
}

func (s *Service) CancelDraft(ctx context.Context, userID int64) (bool, error) {
	defer s.lockUser(userID)()

	_, found, err := s.pending.Load(ctx, userID)
	if err != nil || !found {
		return false, err
	}

	return true, s.pending.Drop(ctx, userID)
}

// advance saves a ready draft, forces a best guess once the clarification budget
// is spent, or asks the next question.
func (s *Service) advance(
	ctx context.Context,
	userID, chatID int64,
	offset string,
	pending *Pending,
	in *Intent,
	edit bool,
) (*msg.Response, error) {
	log := logging.WithContext(ctx)
	askRequested := in != nil && in.Intent == IntentClarify
	draft := &pending.Draft

	if !askRequested && draft.Ready(offset) {
		return s.save(ctx, userID, chatID, offset, draft, edit)
	}

	if pending.ClarifyCount >= s.cfg.ClarifyMaxRounds {
		log.Infof("clarification limit reached for user %d, saving the best guess", userID)
		draft.FillBestGuess(s.now(), offset)
		return s.save(ctx, userID, chatID, offset, draft, edit)
	}

	pending.ClarifyCount++
	question, options := s.question(draft, offset, in)
	pending.Options = options

	err := s.pending.Save(ctx, userID, pending)
	if err != nil {
		return nil, err
	}
	s.metrics.IncClarification()

	opts := optionsKeyboard(options)
	if edit {
		opts.WithEditOriginal()
	}

	return msg.NewResponse(question, msg.Prompt, opts), nil
}

func (s *Service) question(draft *Draft, offset string, in *Intent) (string, []Option) {
	question := ""
	var options []Option
	if in != nil {
		question = strings.TrimSpace(in.Question)
		options = in.Options
	}

	missing := draft.Missing(offset)
	if len(options) == 0 && len(missing) > 0 {
		var defaultQuestion string
		defaultQuestion, options = s.defaultOptions(missing[0], draft.offset(offset))
		if question == "" {
			question = defaultQuestion
		}
	}

	if question == "" {
		question = "Уточни, пожалуйста:"
	}

	return question, options
}

func (s *Service) defaultOptions(missing, offset string) (string, []Option) {
	var options []Option

	switch missing {
	case missingWeekday:
		for d := 1; d <= 7; d++ {
			options = append(options, Option{Label: timing.WeekdayLabel(d), DayOfWeek: flexInt(d)})
		}
		return "Выбери день недели:", options
	case missingDay:
		for _, d := range defaultDayOptions {
			options = append(options, Option{Label: strconv.Itoa(d), DayOfMonth: flexInt(d)})
		}
		return "Выбери число месяца:", options
	default:
		now := s.now()
		for _, clock := range defaultClockOptions {
			next, err := timing.NextTimeOfDay(now, offset, clock)
			if err != nil {
				continue
			}
			options = append(options, Option{Label: clock, ISODatetime: next.Format(timing.ISOLayout)})
		}
		return "Уточни время:", options
	}
}

func (s *Service) save(ctx context.Context, userID, chatID int64, offset string, draft *Draft, edit bool) (*msg.Response, error) {
	r, err := draft.Reminder(userID, chatID, offset, s.now())
	if err != nil {
		return nil, err
	}

	_, err = s.store.Create(ctx, r)
	if err != nil {
		return nil, err
	}
	s.metrics.IncReminderCreated(string(r.Repeat))

	err = s.pending.Drop(ctx, userID)
	if err != nil {
		logging.WithContext(ctx).Errorf("failed to drop clarification draft: %v", err)
	}

	if edit {
		return msg.NewResponse(ConfirmText(r), msg.Success, (&msg.Options{}).WithEditOriginal()), nil
	}

	return msg.NewResponse(ConfirmText(r), msg.Success, MainMenu()), nil
}
