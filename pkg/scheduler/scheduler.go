package scheduler

import (
	"context"
	"time"

	"rembot/pkg/errs"
	"rembot/pkg/logging"
	"rembot/pkg/monitoring"
	"rembot/pkg/msg"
	"rembot/pkg/reminder"

	"github.com/go-co-op/gocron/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const tickJobName = "reminders-tick"

type Sender interface {
	Send(ctx context.Context, chatID int64, m *msg.ResponseMessage) error
}

type ReminderSource interface {
	Due(ctx context.Context, now time.Time) ([]reminder.Reminder, error)
	AfterFire(ctx context.Context, r *reminder.Reminder, now time.Time) (*time.Time, error)
}

// Scheduler fires due reminders on a fixed interval.
type Scheduler struct {
	cfg       *Config
	scheduler gocron.Scheduler
	source    ReminderSource
	sender    Sender
	metrics   *monitoring.Metrics
	now       func() time.Time
}

func NewScheduler(cfg *Config, source ReminderSource, sender Sender, metrics *monitoring.Metrics) (*Scheduler, error) {
	validationErr := cfg.Validate()
	if validationErr.HasErrors() {
		return nil, validationErr
	}

	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create gocron scheduler")
	}

	return &Scheduler{
		cfg:       cfg,
		scheduler: s,
		source:    source,
		sender:    sender,
		metrics:   metrics,
		now:       time.Now,
	}, nil
}

// Start registers the tick job and starts the scheduler. Ticks never overlap, a
// slow tick makes the next one wait.
func (s *Scheduler) Start(ctx context.Context) error {
	startAt := gocron.WithStartImmediately()
	if s.cfg.FirstRun > 0 {
		startAt = gocron.WithStartDateTime(time.Now().Add(s.cfg.FirstRun))
	}

	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.cfg.Interval),
		gocron.NewTask(s.runTick, ctx),
		gocron.WithName(tickJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(startAt),
	)
	if err != nil {
		return errors.Wrap(err, "failed to create reminders tick job")
	}

	logrus.Infof("starting scheduler, interval %s, first run in %s", s.cfg.Interval, s.cfg.FirstRun)
	s.scheduler.Start()

	return nil
}

func (s *Scheduler) Stop() error {
	logrus.Info("stopping scheduler")
	return s.scheduler.Shutdown()
}

func (s *Scheduler) runTick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	err := s.Tick(logging.WithTrackingId(ctx))
	if err != nil {
		errs.Handle(err, false)
	}
}

// Tick sends every due reminder and moves it on. A failed send is logged and the
// reminder still advances, so a blocked chat cannot stall the queue.
func (s *Scheduler) Tick(ctx context.Context) error {
	started := time.Now()
	defer func() {
		s.metrics.ObserveTick(time.Since(started))
	}()

	log := logrus.WithContext(ctx)
	now := s.now()

	due, err := s.source.Due(ctx, now)
	if err != nil {
		return err
	}
	if len(due) > 0 {
		log.Infof("%d reminder(s) due", len(due))
	}

	for i := range due {
		r := &due[i]
		rCtx := logging.WithChatID(ctx, r.ChatID)

		sendErr := s.sender.Send(rCtx, r.ChatID, reminder.FiredMessage(r))
		s.metrics.IncReminderFired(sendErr)
		if sendErr != nil {
			logrus.WithContext(rCtx).Errorf("Send reminder #%d failed: %v", r.ID, sendErr)
		}

		next, err := s.source.AfterFire(rCtx, r, now)
		if err != nil {
			logrus.WithContext(rCtx).Errorf("failed to advance reminder #%d: %v", r.ID, err)
			continue
		}
		if next != nil {
			logrus.WithContext(rCtx).Debugf("reminder #%d next fires at %s", r.ID, next.Format(time.RFC3339))
		}
	}

	return nil
}
