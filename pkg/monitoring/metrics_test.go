package monitoring

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecord(t *testing.T) {
	reg := prom.NewRegistry()
	m := NewMetrics(reg)

	m.IncUpdate("text")
	m.IncUpdate("text")
	m.IncReminderCreated("daily")
	m.IncReminderFired(nil)
	m.IncReminderFired(errors.New("blocked"))
	m.ObserveLLM(time.Now(), nil)
	m.IncClarification()
	m.IncVoice(nil)
	m.ObserveTick(20 * time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(m.updates.WithLabelValues("text")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.created.WithLabelValues("daily")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.fired.WithLabelValues(OutcomeFailure)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.clarifications))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mfs)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.IncUpdate("text")
	m.IncReminderCreated("none")
	m.IncReminderFired(nil)
	m.ObserveLLM(time.Now(), nil)
	m.IncClarification()
	m.IncVoice(nil)
	m.ObserveTick(time.Second)
}

func TestServeDisabledWithoutAddr(t *testing.T) {
	require.NoError(t, Serve(context.Background(), "", prom.NewRegistry()))
}
