package reminder

import (
	"fmt"
	"strconv"

	"rembot/pkg/msg"
	"rembot/pkg/timing"
)

const (
	MenuList     = "📋 Список напоминаний"
	MenuSettings = "⚙️ Настройки"

	notUnderstoodText = "Не понял. Пример: «завтра в 6 падел»."
	notFoundText      = "Не нашёл напоминание"
	emptyListText     = "Пока нет активных напоминаний."
)

const (
	snoozeShort = 10
	snoozeLong  = 60
)

func MainMenu() *msg.Options {
	o := &msg.Options{}
	return o.WithReplyRow(MenuList).WithReplyRow(MenuSettings)
}

func whenLocal(r *Reminder) string {
	if r.When == nil {
		return "-"
	}

	return timing.FormatLocal(*r.When, r.TZ)
}

// periodLabel is used in confirmations: "каждый день", "еженедельно, Ср".
func periodLabel(r *Reminder) string {
	switch r.Repeat {
	case timing.RepeatDaily:
		return "каждый день"
	case timing.RepeatWeekly:
		return "еженедельно, " + timing.WeekdayLabel(r.DayOfWeek)
	case timing.RepeatMonthly:
		return fmt.Sprintf("каждое %d число", r.DayOfMonth)
	default:
		return ""
	}
}

// listSuffix is appended to list entries.
func listSuffix(r *Reminder) string {
	switch r.Repeat {
	case timing.RepeatDaily:
		return " (каждый день)"
	case timing.RepeatWeekly:
		return fmt.Sprintf(" (еженедельно, %s)", timing.WeekdayLabel(r.DayOfWeek))
	case timing.RepeatMonthly:
		return fmt.Sprintf(" (ежемесячно, %d числа)", r.DayOfMonth)
	default:
		return ""
	}
}

func ConfirmText(r *Reminder) string {
	text := fmt.Sprintf("📅 Окей, напомню: %s\n⏱ %s", r.Title, whenLocal(r))
	if label := periodLabel(r); label != "" {
		text += " (" + label + ")"
	}

	return text
}

func ListItemText(r *Reminder) string {
	return fmt.Sprintf("• %s\n   ⏱ %s%s", r.Title, whenLocal(r), listSuffix(r))
}

func SnoozedText(r *Reminder) string {
	return fmt.Sprintf("🕒 Отложено до %s — %s", whenLocal(r), r.Title)
}

func idData(prefix string, id int64) string {
	return prefix + ":" + strconv.FormatInt(id, 10)
}

// FiredMessage is what the user receives when a reminder is due.
func FiredMessage(r *Reminder) *msg.ResponseMessage {
	opts := &msg.Options{}
	opts.WithInlineRow(
		msg.Button{Text: "⏰ через 10 мин", Data: fmt.Sprintf("%s:%d:%d", cbSnooze, snoozeShort, r.ID)},
		msg.Button{Text: "🕒 через 1 час", Data: fmt.Sprintf("%s:%d:%d", cbSnooze, snoozeLong, r.ID)},
		msg.Button{Text: "✅ Готово", Data: idData(cbDone, r.ID)},
	)

	return &msg.ResponseMessage{
		Message: fmt.Sprintf("📅 Напоминание: %s\n⏱ %s", r.Title, whenLocal(r)),
		Type:    msg.Success,
		Options: opts,
	}
}

func optionsKeyboard(options []Option) *msg.Options {
	opts := &msg.Options{}

	row := make([]msg.Button, 0, 3)
	for i, opt := range options {
		label := opt.Label
		if label == "" {
			label = "…"
		}
		row = append(row, msg.Button{Text: label, Data: fmt.Sprintf("%s:%d", cbClarify, i)})
		if len(row) == 3 {
			opts.WithInlineRow(row...)
			row = make([]msg.Button, 0, 3)
		}
	}
	opts.WithInlineRow(row...)

	return opts
}
