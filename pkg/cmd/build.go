package cmd

import (
	"rembot/pkg/help"
	"rembot/pkg/llm"
	"rembot/pkg/monitoring"
	"rembot/pkg/msg"
	"rembot/pkg/prompts"
	"rembot/pkg/reminder"
	"rembot/pkg/storage"
)

const helpIntro = "Я бот-напоминалка. Напиши или надиктуй задачу, например «завтра в 9 позвонить маме»."

func BuildMessageRouter(
	store *reminder.Store,
	cache storage.Client,
	promptStore *prompts.Store,
	metrics *monitoring.Metrics,
) (*msg.Router, error) {
	reminderCfg, err := reminder.LoadConfig()
	if err != nil {
		return nil, err
	}

	llmCfg, err := llm.LoadConfig()
	if err != nil {
		return nil, err
	}

	validationErr := reminderCfg.Validate()
	validationErr.Merge(llmCfg.Validate())
	if validationErr.HasErrors() {
		return nil, validationErr
	}

	llmClient := llm.NewClient(llmCfg, metrics)
	parser := reminder.NewParser(llmClient, promptStore)
	pending := reminder.NewPendingStore(cache, reminderCfg.ClarifyTTL)
	service := reminder.NewService(reminderCfg, store, parser, pending, metrics)

	startHandler := &reminder.StartHandler{Service: service, Store: store, Config: reminderCfg}
	listHandler := &reminder.ListHandler{Store: store}
	settingsHandler := &reminder.SettingsHandler{Service: service, Store: store}
	reloadHandler := &reminder.ReloadHandler{Prompts: promptStore, Config: reminderCfg}
	cancelHandler := &reminder.CancelHandler{Service: service}
	statsHandler := &reminder.StatsHandler{Store: store, Pending: pending, Config: reminderCfg}
	callbackHandler := &reminder.CallbackHandler{Service: service, Store: store}
	createHandler := &reminder.CreateHandler{
		Service:     service,
		Transcriber: llm.NewVoiceTranscriber(llmClient, llm.ConvertOggToMp3, metrics),
	}

	helpHandler := &help.Handler{
		Intro: helpIntro,
		Providers: []help.Provider{
			listHandler,
			settingsHandler,
			cancelHandler,
			reloadHandler,
			statsHandler,
		},
	}

	r := &msg.Router{
		Handlers: []msg.Handler{
			callbackHandler,
			startHandler,
			helpHandler,
			listHandler,
			settingsHandler,
			reloadHandler,
			statsHandler,
			cancelHandler,
			&reminder.UnknownCommandHandler{},
			createHandler,
		},
	}

	r.Use(msg.WithTracking())
	r.Use(msg.WithMetrics(metrics))

	return r, nil
}
