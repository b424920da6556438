package reminder

import (
	"context"
	"fmt"
	"strings"

	"rembot/pkg/help"
	"rembot/pkg/msg"
	"rembot/pkg/prompts"
	"rembot/pkg/timing"

	logging "github.com/sirupsen/logrus"
)

const ExamplesText = `Примеры:
• завтра в 11 падел
• через 10 минут позвонить
• каждый день в 9 пить таблетки
• раз в неделю в среду в 19 — зал
• каждое 5 число месяца в 18 — баня`

var tzOptions = []string{
	"-05:00", "+00:00", "+01:00", "+02:00",
	"+03:00", "+04:00", "+05:00", "+06:00",
	"+07:00", "+08:00", "+09:00", "+10:00",
}

type StartHandler struct {
	Service *Service
	Store   *Store
	Config  *Config
}

func (h *StartHandler) CanHandle(_ context.Context, req *msg.Request) (bool, error) {
	return msg.MatchCommand(req.Message, []string{"start"}), nil
}

func (h *StartHandler) Handle(ctx context.Context, req *msg.Request) (*msg.Response, error) {
	userID := req.Sender.GetID()

	_, found, err := h.Store.UserTZ(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		err = h.Store.SetUserTZ(ctx, userID, h.Config.DefaultTZ)
		if err != nil {
			return nil, err
		}
	}

	text := fmt.Sprintf(
		"Привет! Я напоминалка. Напиши что и когда напомнить.\n\n%s\n\nЧасовой пояс: UTC%s\n"+
			"Кнопки меню снизу активированы. Можешь нажать или просто написать задачу 👇",
		ExamplesText,
		h.Service.UserOffset(ctx, userID),
	)

	return msg.NewResponse(text, msg.Success, MainMenu()), nil
}

type ListHandler struct {
	Store *Store
}

func (h *ListHandler) CanHandle(_ context.Context, req *msg.Request) (bool, error) {
	return msg.MatchCommand(req.Message, []string{"list"}) || strings.TrimSpace(req.Message) == MenuList, nil
}

func (h *ListHandler) GetHelp(context.Context, *msg.Request) help.Result {
	return help.Result{Text: "/list или «" + MenuList + "»: активные напоминания"}
}

func (h *ListHandler) Handle(ctx context.Context, req *msg.Request) (*msg.Response, error) {
	reminders, err := h.Store.ListActive(ctx, req.Sender.GetID())
	if err != nil {
		return nil, err
	}

	if len(reminders) == 0 {
		return msg.NewResponse(emptyListText, msg.Success, MainMenu()), nil
	}

	resp := &msg.Response{}
	for i := range reminders {
		r := &reminders[i]
		opts := (&msg.Options{}).WithInlineRow(msg.Button{Text: "🗑 Удалить", Data: idData(cbDel, r.ID)})
		resp.Add(ListItemText(r), msg.Success, opts)
	}

	return resp, nil
}

// SettingsHandler shows and changes the user's UTC offset.
type SettingsHandler struct {
	Service *Service
	Store   *Store
}

func (h *SettingsHandler) CanHandle(_ context.Context, req *msg.Request) (bool, error) {
	return msg.MatchCommand(req.Message, []string{"settings", "tz"}) || strings.TrimSpace(req.Message) == MenuSettings, nil
}

func (h *SettingsHandler) GetHelp(context.Context, *msg.Request) help.Result {
	return help.Result{Text: "/settings или «" + MenuSettings + "»: часовой пояс\n/tz +05:00: сменить часовой пояс"}
}

func (h *SettingsHandler) Handle(ctx context.Context, req *msg.Request) (*msg.Response, error) {
	userID := req.Sender.GetID()

	name, args := msg.ParseCommand(req.Message)
	if name == "tz" && args != "" {
		if !timing.ValidOffset(args) {
			return msg.NewResponse("Формат: /tz +05:00", msg.Error, nil), nil
		}

		err := h.Store.SetUserTZ(ctx, userID, args)
		if err != nil {
			return nil, err
		}

		return msg.NewResponse(tzChangedText(args), msg.Success, MainMenu()), nil
	}

	opts := &msg.Options{}
	for i := 0; i < len(tzOptions); i += 4 {
		row := make([]msg.Button, 0, 4)
		for _, offset := range tzOptions[i:min(i+4, len(tzOptions))] {
			row = append(row, msg.Button{Text: "UTC" + offset, Data: cbTZ + ":" + offset})
		}
		opts.WithInlineRow(row...)
	}

	text := fmt.Sprintf("Часовой пояс: UTC%s\nВыбери свой или отправь /tz +05:00", h.Service.UserOffset(ctx, userID))

	return msg.NewResponse(text, msg.Success, opts), nil
}

const adminOnlyText = "Команда доступна только администраторам."

func tzChangedText(offset string) string {
	return "Часовой пояс установлен: UTC" + offset
}

type Reloader interface {
	Reload() (*prompts.Pack, error)
}

type ReloadHandler struct {
	Prompts Reloader
	Config  *Config
}

func (h *ReloadHandler) CanHandle(_ context.Context, req *msg.Request) (bool, error) {
	return msg.MatchCommand(req.Message, []string{"reload"}), nil
}

func (h *ReloadHandler) GetHelp(_ context.Context, req *msg.Request) help.Result {
	if !h.Config.IsAdmin(req.Sender.GetID()) {
		return help.Result{}
	}

	return help.Result{Text: "/reload: перечитать промпты"}
}

func (h *ReloadHandler) Handle(ctx context.Context, req *msg.Request) (*msg.Response, error) {
	if !h.Config.IsAdmin(req.Sender.GetID()) {
		logging.WithContext(ctx).Warnf("user %d is not allowed to reload prompts", req.Sender.GetID())
		return msg.NewResponse(adminOnlyText, msg.Error, nil), nil
	}

	_, err := h.Prompts.Reload()
	if err != nil {
		return msg.NewResponse(fmt.Sprintf("Ошибка загрузки промптов: %v", err), msg.Error, nil), nil
	}

	return msg.NewResponse("🔄 Промпты перезагружены.", msg.Success, nil), nil
}

// StatsHandler reports the bot's load to admins.
type StatsHandler struct {
	Store   *Store
	Pending *PendingStore
	Config  *Config
}

func (h *StatsHandler) CanHandle(_ context.Context, req *msg.Request) (bool, error) {
	return msg.MatchCommand(req.Message, []string{"stats"}), nil
}

func (h *StatsHandler) GetHelp(_ context.Context, req *msg.Request) help.Result {
	if !h.Config.IsAdmin(req.Sender.GetID()) {
		return help.Result{}
	}

	return help.Result{Text: "/stats: активные напоминания и незавершённые уточнения"}
}

func (h *StatsHandler) Handle(ctx context.Context, req *msg.Request) (*msg.Response, error) {
	if !h.Config.IsAdmin(req.Sender.GetID()) {
		return msg.NewResponse(adminOnlyText, msg.Error, nil), nil
	}

	active, err := h.Store.CountActive(ctx)
	if err != nil {
		return nil, err
	}

	pending, err := h.Pending.Count(ctx)
	if err != nil {
		return nil, err
	}

	return msg.NewResponse(
		fmt.Sprintf("Активных напоминаний: %d\nУточнений в процессе: %d", active, pending),
		msg.Success,
		nil,
	), nil
}

type CancelHandler struct {
	Service *Service
}

func (h *CancelHandler) CanHandle(_ context.Context, req *msg.Request) (bool, error) {
	return msg.MatchCommand(req.Message, []string{"cancel"}), nil
}

func (h *CancelHandler) GetHelp(context.Context, *msg.Request) help.Result {
	return help.Result{Text: "/cancel: отменить уточнение"}
}

func (h *CancelHandler) Handle(ctx context.Context, req *msg.Request) (*msg.Response, error) {
	found, err := h.Service.CancelDraft(ctx, req.Sender.GetID())
	if err != nil {
		return nil, err
	}

	if !found {
		return msg.NewResponse("Нечего отменять.", msg.Success, nil), nil
	}

	return msg.NewResponse("Ок, отменил.", msg.Success, MainMenu()), nil
}

type UnknownCommandHandler struct{}

func (h *UnknownCommandHandler) CanHandle(_ context.Context, req *msg.Request) (bool, error) {
	return msg.IsCommand(req.Message), nil
}

func (h *UnknownCommandHandler) Handle(_ context.Context, req *msg.Request) (*msg.Response, error) {
	return msg.NewResponse(fmt.Sprintf("Неизвестная команда %q. Список команд: /help", req.Message), msg.Error, nil), nil
}
