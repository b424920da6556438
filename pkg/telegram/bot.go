package telegram

import (
	"context"
	"strconv"
	"time"

	"rembot/pkg/errs"
	"rembot/pkg/msg"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	logging "github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const (
	platform                 = "telegram"
	unexpectedErrorText      = "Что-то пошло не так, попробуй ещё раз."
	defaultRetryInitInterval = 500 * time.Millisecond
)

type Bot struct {
	conf          *Config
	baseBot       *telebot.Bot
	msgHandler    msg.Handler
	retryInterval time.Duration
}

func NewBot(c *Config, h msg.Handler) (*Bot, error) {
	if err := c.Validate().ErrOrNil(); err != nil {
		return nil, err
	}

	botApi, err := telebot.NewBot(telebot.Settings{
		Token:  c.APIToken,
		Poller: &telebot.LongPoller{Timeout: c.PollTimeout},
		OnError: func(err error, c telebot.Context) {
			errs.Handle(err, false)
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create telegram bot")
	}

	return newBot(c, botApi, h), nil
}

func newBot(c *Config, botApi *telebot.Bot, h msg.Handler) *Bot {
	return &Bot{conf: c, baseBot: botApi, msgHandler: h, retryInterval: defaultRetryInitInterval}
}

func (b *Bot) botMsgToRequest(c telebot.Context) (*msg.Request, error) {
	sender := new(msg.Sender)
	if telegramSender := c.Sender(); telegramSender != nil {
		sender.ID = telegramSender.ID
		sender.UserName = telegramSender.Username
		sender.LastName = telegramSender.LastName
		sender.FirstName = telegramSender.FirstName
	}

	req := &msg.Request{
		Platform: platform,
		Sender:   sender,
		Meta:     map[string]interface{}{},
	}

	if chat := c.Chat(); chat != nil {
		req.ChatID = chat.ID
	}

	if cb := c.Callback(); cb != nil {
		req.ID = cb.ID
		req.Callback = &msg.Callback{ID: cb.ID, Data: cb.Data}
		return req, nil
	}

	telegramMsg := c.Message()
	if telegramMsg == nil {
		return req, nil
	}

	req.ID = strconv.Itoa(telegramMsg.ID)
	req.Message = telegramMsg.Text
	req.Meta["timestamp"] = telegramMsg.Unixtime

	if voice := telegramMsg.Voice; voice != nil {
		reader, err := b.baseBot.File(&voice.File)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to download voice %s", voice.FileID)
		}

		req.File = &msg.File{FileID: voice.FileID, Format: msg.FormatVoice, Reader: reader}
	}

	return req, nil
}

func guessParseMode(o *msg.Options) telebot.ParseMode {
	switch o.GetFormat() {
	case msg.OutputFormatMarkdown1:
		return telebot.ModeMarkdown
	case msg.OutputFormatMarkdown2:
		return telebot.ModeMarkdownV2
	case msg.OutputFormatHTML:
		return telebot.ModeHTML
	default:
		return telebot.ModeDefault
	}
}

// replyMarkup renders keyboards. Telegram attaches one markup per message, an
// inline keyboard wins over the reply menu.
func replyMarkup(o *msg.Options) *telebot.ReplyMarkup {
	if inline := o.GetInlineKeyboard(); len(inline) > 0 {
		rows := make([][]telebot.InlineButton, 0, len(inline))
		for _, row := range inline {
			buttons := make([]telebot.InlineButton, 0, len(row))
			for _, btn := range row {
				buttons = append(buttons, telebot.InlineButton{Text: btn.Text, Data: btn.Data})
			}
			rows = append(rows, buttons)
		}

		return &telebot.ReplyMarkup{InlineKeyboard: rows}
	}

	if reply := o.GetReplyKeyboard(); len(reply) > 0 {
		rows := make([][]telebot.ReplyButton, 0, len(reply))
		for _, row := range reply {
			buttons := make([]telebot.ReplyButton, 0, len(row))
			for _, label := range row {
				buttons = append(buttons, telebot.ReplyButton{Text: label})
			}
			rows = append(rows, buttons)
		}

		return &telebot.ReplyMarkup{ReplyKeyboard: rows, ResizeKeyboard: true}
	}

	return nil
}

func sendOptions(m *msg.ResponseMessage) *telebot.SendOptions {
	return &telebot.SendOptions{
		ParseMode:   guessParseMode(m.Options),
		ReplyMarkup: replyMarkup(m.Options),
	}
}

func (b *Bot) processResponse(ctx context.Context, c telebot.Context, resp *msg.Response) error {
	log := logging.WithContext(ctx)

	if resp == nil || len(resp.Messages) == 0 {
		log.Debug("response is empty, will send nothing to the sender")
		return nil
	}

	for i := range resp.Messages {
		m := &resp.Messages[i]
		if m.Message == "" {
			continue
		}

		log.Debugf("telegram message:\n%q", m.Message)

		cb := c.Callback()
		if m.Options.IsEditOriginal() && cb != nil && cb.Message != nil {
			_, err := b.baseBot.Edit(cb.Message, m.Message, sendOptions(m))
			if errors.Is(err, telebot.ErrSameMessageContent) {
				continue
			}
			if err != nil {
				return errors.Wrapf(err, "failed to edit message %d", cb.Message.ID)
			}
			continue
		}

		chatID := int64(0)
		if chat := c.Chat(); chat != nil {
			chatID = chat.ID
		}

		err := b.Send(ctx, chatID, m)
		if err != nil {
			return err
		}
	}

	return nil
}

func isPermanent(err error) bool {
	var flood telebot.FloodError
	if errors.As(err, &flood) {
		return false
	}

	var tgErr *telebot.Error
	if errors.As(err, &tgErr) {
		return tgErr.Code < 500
	}

	return false
}

// Send delivers a message to a chat, retrying transient failures such as network
// errors, flood limits and 5xx answers.
func (b *Bot) Send(ctx context.Context, chatID int64, m *msg.ResponseMessage) error {
	log := logging.WithContext(ctx)
	opts := sendOptions(m)

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = b.retryInterval
	policy.MaxElapsedTime = b.conf.SendRetryMax

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		_, err := b.baseBot.Send(telebot.ChatID(chatID), m.Message, opts)
		if err == nil {
			return nil
		}
		if isPermanent(err) {
			return backoff.Permanent(err)
		}

		log.Warnf("send attempt %d to chat %d failed: %v", attempt, chatID, err)
		return err
	}, backoff.WithContext(policy, ctx))
	if err != nil {
		return errors.Wrapf(err, "failed to send message to chat %d", chatID)
	}

	return nil
}

func (b *Bot) handle(ctx context.Context, c telebot.Context) error {
	log := logging.WithContext(ctx)

	if c.Callback() != nil {
		defer func() {
			if err := c.Respond(); err != nil {
				log.Warnf("failed to answer callback: %v", err)
			}
		}()
	}

	req, err := b.botMsgToRequest(c)
	if err != nil {
		_ = c.Send(unexpectedErrorText)
		return err
	}

	resp, err := b.msgHandler.Handle(ctx, req)
	if err != nil {
		_, sendErr := b.baseBot.Send(c.Recipient(), unexpectedErrorText)
		if sendErr != nil {
			log.Errorf("failed to send error message to the sender: %v", sendErr)
		}

		return err
	}

	return b.processResponse(ctx, c, resp)
}

func (b *Bot) onUpdate(c telebot.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	return b.handle(ctx, c)
}

// Start blocks while polling telegram for updates.
func (b *Bot) Start() {
	b.baseBot.Handle(telebot.OnText, b.onUpdate)
	b.baseBot.Handle(telebot.OnVoice, b.onUpdate)
	b.baseBot.Handle(telebot.OnCallback, b.onUpdate)

	logging.Info("Bot starting… polling enabled")
	b.baseBot.Start()
}

func (b *Bot) Stop() {
	logging.Info("will stop telegram bot")
	b.baseBot.Stop()
	logging.Info("stopped telegram bot")
}
