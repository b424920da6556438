package logging

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type loggingContextKey string

const (
	TrackingIDKey loggingContextKey = "trackingID"
	ChatIDKey     loggingContextKey = "chatID"
)

type Config struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

func LoadConfig() (*Config, error) {
	cfg := new(Config)
	err := envconfig.Process("log", cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load logging config")
	}

	return cfg, nil
}

// WithTrackingId marks everything logged for one incoming update with the same id.
func WithTrackingId(ctx context.Context) context.Context {
	return context.WithValue(ctx, TrackingIDKey, uuid.New().String())
}

func WithChatID(ctx context.Context, chatID int64) context.Context {
	return context.WithValue(ctx, ChatIDKey, chatID)
}

func TrackingID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(TrackingIDKey).(string)

	return id
}

type trackingIDFormatter struct {
	logrus.TextFormatter
}

func (f *trackingIDFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	if entry.Context == nil {
		return f.TextFormatter.Format(entry)
	}

	if trackingID := TrackingID(entry.Context); trackingID != "" {
		entry.Data["trackingID"] = trackingID
	}
	if chatID, ok := entry.Context.Value(ChatIDKey).(int64); ok {
		entry.Data["chatID"] = chatID
	}

	return f.TextFormatter.Format(entry)
}

func Init(cfg *Config) {
	level := logrus.InfoLevel
	if cfg != nil {
		parsed, err := logrus.ParseLevel(strings.TrimSpace(cfg.Level))
		if err == nil {
			level = parsed
		}
	}

	logrus.SetLevel(level)
	logrus.SetFormatter(&trackingIDFormatter{
		TextFormatter: logrus.TextFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
			FullTimestamp:   true,
		},
	})
}
