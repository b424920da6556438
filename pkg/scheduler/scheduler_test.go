package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"rembot/pkg/monitoring"
	"rembot/pkg/msg"
	"rembot/pkg/reminder"
	"rembot/pkg/timing"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

type fakeSource struct {
	mu       sync.Mutex
	due      []reminder.Reminder
	advanced []int64
	dueErr   error
}

func (f *fakeSource) Due(context.Context, time.Time) ([]reminder.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	due := f.due
	f.due = nil

	return due, f.dueErr
}

func (f *fakeSource) AfterFire(_ context.Context, r *reminder.Reminder, now time.Time) (*time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.advanced = append(f.advanced, r.ID)
	next, ok := timing.NextFire(r.Rule(), now)
	if !ok {
		return nil, nil
	}

	return &next, nil
}

func (f *fakeSource) advancedIDs() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]int64(nil), f.advanced...)
}

type sent struct {
	chatID int64
	text   string
}

type fakeSender struct {
	mu     sync.Mutex
	sent   []sent
	failOn int64
}

func (f *fakeSender) Send(_ context.Context, chatID int64, m *msg.ResponseMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if chatID == f.failOn {
		return errors.New("bot was blocked by the user")
	}
	f.sent = append(f.sent, sent{chatID: chatID, text: m.Message})

	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.sent)
}

func newTestScheduler(t *testing.T, cfg *Config, source ReminderSource, sender Sender, m *monitoring.Metrics) *Scheduler {
	t.Helper()

	s, err := NewScheduler(cfg, source, sender, m)
	require.NoError(t, err)
	s.now = func() time.Time { return testNow }

	return s
}

func TestTickSendsAndAdvances(t *testing.T) {
	when := testNow.Add(-time.Minute)
	source := &fakeSource{due: []reminder.Reminder{
		{ID: 1, ChatID: 10, Title: "чай", When: &when, TZ: "+03:00"},
		{ID: 2, ChatID: 20, Title: "зал", When: &when, TZ: "+03:00", Repeat: timing.RepeatDaily},
		{ID: 3, ChatID: 30, Title: "баня", When: &when, TZ: "+03:00"},
	}}
	sender := &fakeSender{failOn: 20}
	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)

	s := newTestScheduler(t, &Config{Interval: time.Minute}, source, sender, metrics)

	require.NoError(t, s.Tick(context.Background()))

	require.Equal(t, []sent{
		{chatID: 10, text: "📅 Напоминание: чай\n⏱ 01.05 12:59"},
		{chatID: 30, text: "📅 Напоминание: баня\n⏱ 01.05 12:59"},
	}, sender.sent)
	require.Equal(t, []int64{1, 2, 3}, source.advancedIDs())

	require.InDelta(t, 2, firedCount(t, reg, monitoring.OutcomeSuccess), 0.001)
	require.InDelta(t, 1, firedCount(t, reg, monitoring.OutcomeFailure), 0.001)
}

func firedCount(t *testing.T, reg *prometheus.Registry, result string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, f := range families {
		if f.GetName() != "rembot_reminders_fired_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "result" && l.GetValue() == result {
					return m.GetCounter().GetValue()
				}
			}
		}
	}

	return 0
}

func TestTickReturnsSourceError(t *testing.T) {
	source := &fakeSource{dueErr: errors.New("database is locked")}
	s := newTestScheduler(t, &Config{Interval: time.Minute}, source, &fakeSender{}, nil)

	require.Error(t, s.Tick(context.Background()))
}

func TestSchedulerRunsTicks(t *testing.T) {
	when := testNow
	source := &fakeSource{due: []reminder.Reminder{{ID: 1, ChatID: 1, Title: "x", When: &when, TZ: "+03:00"}}}
	sender := &fakeSender{}

	s := newTestScheduler(t, &Config{Interval: 20 * time.Millisecond}, source, sender, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	defer func() {
		require.NoError(t, s.Stop())
	}()

	require.Eventually(t, func() bool {
		return sender.count() == 1
	}, 5*time.Second, 10*time.Millisecond)
}

func TestConfigValidate(t *testing.T) {
	require.True(t, (&Config{}).Validate().HasErrors())
	require.False(t, (&Config{Interval: time.Second}).Validate().HasErrors())

	_, err := NewScheduler(&Config{}, &fakeSource{}, &fakeSender{}, nil)
	require.Error(t, err)
}
