package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestFormatterAddsContextFields(t *testing.T) {
	ctx := WithChatID(WithTrackingId(context.Background()), 42)
	require.NotEmpty(t, TrackingID(ctx))

	buf := new(bytes.Buffer)
	logger := logrus.New()
	logger.SetOutput(buf)
	logger.SetFormatter(&trackingIDFormatter{TextFormatter: logrus.TextFormatter{DisableTimestamp: true}})

	logger.WithContext(ctx).Info("tick")

	out := buf.String()
	require.Contains(t, out, "trackingID="+TrackingID(ctx))
	require.Contains(t, out, "chatID=42")
}

func TestTrackingIDMissing(t *testing.T) {
	require.Empty(t, TrackingID(context.Background()))
}

func TestInitFallsBackToInfo(t *testing.T) {
	Init(&Config{Level: "nonsense"})
	require.Equal(t, logrus.InfoLevel, logrus.GetLevel())

	Init(&Config{Level: "debug"})
	require.Equal(t, logrus.DebugLevel, logrus.GetLevel())
}
