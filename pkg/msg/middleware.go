package msg

import (
	"context"

	"rembot/pkg/logging"
	"rembot/pkg/monitoring"

	"github.com/sirupsen/logrus"
)

// WithTracking tags every request context with a tracking id and the chat id so
// all log lines of one update can be correlated.
func WithTracking() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) (*Response, error) {
			ctx = logging.WithTrackingId(ctx)
			ctx = logging.WithChatID(ctx, req.ChatID)

			logrus.WithContext(ctx).Debugf("got %s from user %d", req.Kind(), req.Sender.GetID())

			return next(ctx, req)
		}
	}
}

func WithMetrics(m *monitoring.Metrics) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) (*Response, error) {
			m.IncUpdate(req.Kind())
			return next(ctx, req)
		}
	}
}
