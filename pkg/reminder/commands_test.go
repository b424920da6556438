package reminder

import (
	"context"
	"io"
	"strings"
	"testing"

	"rembot/pkg/msg"
	"rembot/pkg/prompts"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func textRequest(userID int64, text string) *msg.Request {
	return &msg.Request{Sender: &msg.Sender{ID: userID}, ChatID: userID, Message: text}
}

func handle(t *testing.T, h msg.Handler, req *msg.Request) *msg.Response {
	t.Helper()

	ok, err := h.CanHandle(context.Background(), req)
	require.NoError(t, err)
	require.True(t, ok, req.Message)

	resp, err := h.Handle(context.Background(), req)
	require.NoError(t, err)

	return resp
}

func TestStartRemembersDefaultTZ(t *testing.T) {
	svc, store := newTestService(t, &scriptedParser{})
	h := &StartHandler{Service: svc, Store: store, Config: svc.cfg}

	resp := handle(t, h, textRequest(5, "/start"))
	require.Contains(t, resp.Messages[0].Message, ExamplesText)
	require.Contains(t, resp.Messages[0].Message, "UTC+03:00")
	require.Equal(t, MainMenu(), resp.Messages[0].Options)

	tz, found, err := store.UserTZ(context.Background(), 5)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "+03:00", tz)
}

func TestListHandler(t *testing.T) {
	svc, store := newTestService(t, &scriptedParser{})
	h := &ListHandler{Store: store}

	resp := handle(t, h, textRequest(1, MenuList))
	require.Equal(t, emptyListText, resp.Messages[0].Message)

	r := &Reminder{UserID: 1, ChatID: 1, Title: "падел", When: timePtr(testNow), TZ: svc.cfg.DefaultTZ}
	_, err := store.Create(context.Background(), r)
	require.NoError(t, err)

	resp = handle(t, h, textRequest(1, "/list"))
	require.Len(t, resp.Messages, 1)
	require.Equal(t, "• падел\n   ⏱ 01.05 13:00", resp.Messages[0].Message)
	require.Equal(t, "del:"+itoa64(r.ID), resp.Messages[0].Options.GetInlineKeyboard()[0][0].Data)
}

func TestSettingsHandler(t *testing.T) {
	svc, store := newTestService(t, &scriptedParser{})
	h := &SettingsHandler{Service: svc, Store: store}

	resp := handle(t, h, textRequest(1, MenuSettings))
	require.Contains(t, resp.Messages[0].Message, "UTC+03:00")
	keyboard := resp.Messages[0].Options.GetInlineKeyboard()
	require.Len(t, keyboard, 3)
	require.Equal(t, "tz:-05:00", keyboard[0][0].Data)

	resp = handle(t, h, textRequest(1, "/tz 5"))
	require.Equal(t, msg.Error, resp.Messages[0].Type)

	resp = handle(t, h, textRequest(1, "/tz +05:00"))
	require.Equal(t, "Часовой пояс установлен: UTC+05:00", resp.Messages[0].Message)
	require.Equal(t, "+05:00", svc.UserOffset(context.Background(), 1))
}

type fakeReloader struct {
	err   error
	calls int
}

func (r *fakeReloader) Reload() (*prompts.Pack, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}

	return &prompts.Pack{System: "s"}, nil
}

func TestReloadHandler(t *testing.T) {
	reloader := &fakeReloader{}
	h := &ReloadHandler{Prompts: reloader, Config: &Config{AdminIDs: []int64{7}}}

	resp := handle(t, h, textRequest(1, "/reload"))
	require.Equal(t, msg.Error, resp.Messages[0].Type)
	require.Zero(t, reloader.calls)

	resp = handle(t, h, textRequest(7, "/reload"))
	require.Equal(t, "🔄 Промпты перезагружены.", resp.Messages[0].Message)

	reloader.err = errors.New("bad yaml")
	resp = handle(t, h, textRequest(7, "/reload"))
	require.Equal(t, "Ошибка загрузки промптов: bad yaml", resp.Messages[0].Message)

	reloader.err = nil
	open := &ReloadHandler{Prompts: reloader, Config: &Config{}}
	resp = handle(t, open, textRequest(1, "/reload"))
	require.Equal(t, "🔄 Промпты перезагружены.", resp.Messages[0].Message)
}

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) TranscribeVoice(_ context.Context, _ string, ogg io.ReadCloser) (string, error) {
	_ = ogg.Close()
	return f.text, f.err
}

func TestCreateHandlerVoice(t *testing.T) {
	parser := &scriptedParser{intents: []*Intent{
		{Intent: IntentCreate, Title: "зарядка", FixedDatetime: "2024-05-02T09:00:00+03:00"},
	}}
	svc, _ := newTestService(t, parser)
	h := &CreateHandler{Service: svc, Transcriber: &fakeTranscriber{text: "завтра в 9 зарядка"}}

	req := textRequest(1, "")
	req.File = &msg.File{FileID: "f1", Format: msg.FormatVoice, Reader: io.NopCloser(strings.NewReader("ogg"))}

	resp := handle(t, h, req)
	require.Equal(t, "📅 Окей, напомню: зарядка\n⏱ 02.05 09:00", resp.Messages[0].Message)
	require.Equal(t, "завтра в 9 зарядка", parser.calls[0].text)

	h.Transcriber = &fakeTranscriber{err: errors.New("ffmpeg missing")}
	req.File.Reader = io.NopCloser(strings.NewReader("ogg"))
	resp = handle(t, h, req)
	require.Equal(t, msg.Error, resp.Messages[0].Type)
}

func TestCommandRouting(t *testing.T) {
	svc, _ := newTestService(t, &scriptedParser{})
	create := &CreateHandler{Service: svc}
	cancel := &CancelHandler{Service: svc}
	unknown := &UnknownCommandHandler{}

	ok, err := create.CanHandle(context.Background(), textRequest(1, "/foo"))
	require.NoError(t, err)
	require.False(t, ok)

	resp := handle(t, cancel, textRequest(1, "/cancel"))
	require.Equal(t, "Нечего отменять.", resp.Messages[0].Message)

	resp = handle(t, unknown, textRequest(1, "/foo"))
	require.Equal(t, msg.Error, resp.Messages[0].Type)
}

func TestStatsHandler(t *testing.T) {
	svc, store := newTestService(t, &scriptedParser{})
	h := &StatsHandler{Store: store, Pending: svc.pending, Config: &Config{AdminIDs: []int64{7}}}
	ctx := context.Background()

	resp := handle(t, h, textRequest(1, "/stats"))
	require.Equal(t, msg.Error, resp.Messages[0].Type)

	_, err := store.Create(ctx, &Reminder{UserID: 1, ChatID: 1, Title: "падел", When: timePtr(testNow), TZ: "+03:00"})
	require.NoError(t, err)
	require.NoError(t, svc.pending.Save(ctx, 2, &Pending{OriginalText: "купить хлеб"}))

	resp = handle(t, h, textRequest(7, "/stats"))
	require.Equal(t, "Активных напоминаний: 1\nУточнений в процессе: 1", resp.Messages[0].Message)
}
