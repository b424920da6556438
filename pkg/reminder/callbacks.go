package reminder

import (
	"context"
	"strconv"
	"strings"
	"time"

	"rembot/pkg/msg"
	"rembot/pkg/timing"

	logging "github.com/sirupsen/logrus"
)

const (
	cbSnooze  = "snooze"
	cbDone    = "done"
	cbDel     = "del"
	cbClarify = "clarify"
	cbTZ      = "tz"
)

// CallbackHandler reacts to inline buttons: snooze:<min>:<id>, done:<id>,
// del:<id>, clarify:<idx>, tz:<offset>.
type CallbackHandler struct {
	Service *Service
	Store   *Store
	Now     func() time.Time
}

func (h *CallbackHandler) CanHandle(_ context.Context, req *msg.Request) (bool, error) {
	return req.Callback != nil, nil
}

func (h *CallbackHandler) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}

	return h.Now()
}

func edited(text string) *msg.Response {
	return msg.NewResponse(text, msg.Success, (&msg.Options{}).WithEditOriginal())
}

func (h *CallbackHandler) Handle(ctx context.Context, req *msg.Request) (*msg.Response, error) {
	log := logging.WithContext(ctx)
	data := req.Callback.GetData()

	action, payload, _ := strings.Cut(data, ":")
	switch action {
	case cbSnooze:
		rawMinutes, rawID, _ := strings.Cut(payload, ":")
		minutes, errM := strconv.Atoi(rawMinutes)
		id, errID := strconv.ParseInt(rawID, 10, 64)
		if errM != nil || errID != nil || minutes <= 0 {
			break
		}
		return h.snooze(ctx, req.ChatID, id, minutes)
	case cbDone:
		id, err := strconv.ParseInt(payload, 10, 64)
		if err != nil {
			break
		}
		return h.done(ctx, req.ChatID, id)
	case cbDel:
		id, err := strconv.ParseInt(payload, 10, 64)
		if err != nil {
			break
		}
		cancelled, err := h.Store.Cancel(ctx, id, req.ChatID)
		if err != nil {
			return nil, err
		}
		if !cancelled {
			return edited(notFoundText), nil
		}
		return edited("🗑 Удалено"), nil
	case cbClarify:
		idx, err := strconv.Atoi(payload)
		if err != nil {
			break
		}
		return h.Service.PickOption(ctx, req.Sender.GetID(), req.ChatID, idx)
	case cbTZ:
		if !timing.ValidOffset(payload) {
			break
		}
		err := h.Store.SetUserTZ(ctx, req.Sender.GetID(), payload)
		if err != nil {
			return nil, err
		}
		return edited(tzChangedText(payload)), nil
	}

	log.Warnf("ignoring malformed callback %q", data)

	return &msg.Response{}, nil
}

func (h *CallbackHandler) snooze(ctx context.Context, chatID, id int64, minutes int) (*msg.Response, error) {
	r, found, err := h.Store.Snooze(ctx, id, chatID, minutes, h.now())
	if err != nil {
		return nil, err
	}
	if !found {
		return edited(notFoundText), nil
	}

	return edited(SnoozedText(r)), nil
}

// done closes a one-shot reminder, a recurring one keeps its schedule.
func (h *CallbackHandler) done(ctx context.Context, chatID, id int64) (*msg.Response, error) {
	r, found, err := h.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found || r.ChatID != chatID {
		return edited(notFoundText), nil
	}

	if !r.Repeat.IsRecurring() && r.State == StateActive {
		err = h.Store.MarkDone(ctx, id)
		if err != nil {
			return nil, err
		}
	}

	return edited("✅ Выполнено"), nil
}
