package cmd

import (
	"context"
	"testing"

	"rembot/pkg/db"
	"rembot/pkg/migrate"
	"rembot/pkg/monitoring"
	"rembot/pkg/msg"
	"rembot/pkg/prompts"
	"rembot/pkg/reminder"
	"rembot/pkg/storage"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func buildTestRouter(t *testing.T) *msg.Router {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_APIKEY", "")

	ctx := context.Background()
	conn, err := db.NewConn(ctx, &db.Config{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrate.Execute(ctx, conn.DB))

	r, err := BuildMessageRouter(
		reminder.NewStore(conn),
		storage.NewMemoryClient(),
		prompts.NewStaticStore(&prompts.Pack{System: "parse reminders"}),
		monitoring.NewMetrics(prom.NewRegistry()),
	)
	require.NoError(t, err)

	return r
}

func route(t *testing.T, r *msg.Router, text string) msg.ResponseMessage {
	t.Helper()

	resp, err := r.Handle(context.Background(), &msg.Request{
		Sender:  &msg.Sender{ID: 11},
		ChatID:  11,
		Message: text,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Messages)

	return resp.Messages[0]
}

func TestRouterWiring(t *testing.T) {
	r := buildTestRouter(t)

	helpMsg := route(t, r, "/help")
	require.Contains(t, helpMsg.Message, helpIntro)
	require.Contains(t, helpMsg.Message, "/list")
	require.Contains(t, helpMsg.Message, "/reload")

	start := route(t, r, "/start")
	require.Contains(t, start.Message, reminder.ExamplesText)

	list := route(t, r, reminder.MenuList)
	require.Equal(t, msg.Success, list.Type)

	unknown := route(t, r, "/nope")
	require.Equal(t, msg.Error, unknown.Type)

	notUnderstood := route(t, r, "завтра в 9 позвонить маме")
	require.Equal(t, msg.Error, notUnderstood.Type)
}
