package monitoring

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "rembot"

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics is safe to use through a nil pointer, which turns every call into a no-op.
type Metrics struct {
	updates        *prom.CounterVec
	created        *prom.CounterVec
	fired          *prom.CounterVec
	llmRequests    *prom.CounterVec
	llmDuration    prom.Histogram
	clarifications prom.Counter
	voice          *prom.CounterVec
	tickDuration   prom.Histogram
}

func NewMetrics(reg prom.Registerer) *Metrics {
	if reg == nil {
		reg = prom.NewRegistry()
	}

	m := &Metrics{
		updates: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "updates_total",
			Help:      "Telegram updates received by kind",
		}, []string{"kind"}),
		created: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_created_total",
			Help:      "Reminders created by repeat mode",
		}, []string{"repeat"}),
		fired: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_fired_total",
			Help:      "Reminder deliveries by result",
		}, []string{"result"}),
		llmRequests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "LLM completion requests by outcome",
		}, []string{"outcome"}),
		llmDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "LLM completion latency",
			Buckets:   prom.DefBuckets,
		}),
		clarifications: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "clarifications_total",
			Help:      "Clarifying questions asked",
		}),
		voice: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "voice_transcriptions_total",
			Help:      "Voice note transcriptions by outcome",
		}, []string{"outcome"}),
		tickDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Duration of one scheduler tick",
			Buckets:   prom.DefBuckets,
		}),
	}

	reg.MustRegister(m.updates, m.created, m.fired, m.llmRequests, m.llmDuration, m.clarifications, m.voice, m.tickDuration)

	return m
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}

	return OutcomeSuccess
}

func (m *Metrics) IncUpdate(kind string) {
	if m == nil {
		return
	}
	m.updates.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncReminderCreated(repeat string) {
	if m == nil {
		return
	}
	m.created.WithLabelValues(repeat).Inc()
}

func (m *Metrics) IncReminderFired(err error) {
	if m == nil {
		return
	}
	m.fired.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) ObserveLLM(started time.Time, err error) {
	if m == nil {
		return
	}
	m.llmRequests.WithLabelValues(outcome(err)).Inc()
	m.llmDuration.Observe(time.Since(started).Seconds())
}

func (m *Metrics) IncClarification() {
	if m == nil {
		return
	}
	m.clarifications.Inc()
}

func (m *Metrics) IncVoice(err error) {
	if m == nil {
		return
	}
	m.voice.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) ObserveTick(d time.Duration) {
	if m == nil {
		return
	}
	m.tickDuration.Observe(d.Seconds())
}
