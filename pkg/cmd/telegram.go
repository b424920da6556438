package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"rembot/pkg/db"
	"rembot/pkg/errs"
	"rembot/pkg/logging"
	"rembot/pkg/migrate"
	"rembot/pkg/monitoring"
	"rembot/pkg/prompts"
	"rembot/pkg/reminder"
	"rembot/pkg/scheduler"
	"rembot/pkg/storage"
	"rembot/pkg/telegram"

	"github.com/pkg/errors"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var telegramCmd = &cobra.Command{
	Use:   "telegram",
	Short: "Starts the Telegram reminder bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logCfg, err := logging.LoadConfig()
		if err != nil {
			return err
		}
		logging.Init(logCfg)

		conn, err := db.Build(ctx)
		if err != nil {
			return err
		}
		defer conn.Close()

		err = migrate.Execute(ctx, conn.DB)
		if err != nil {
			return err
		}

		cache, err := storage.BuildClient()
		if err != nil {
			return err
		}
		defer func() {
			errs.Handle(errors.Wrap(cache.Close(), "failed to close state storage"), false)
		}()

		promptStore, err := buildPrompts(ctx)
		if err != nil {
			return err
		}

		registry := prom.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics := monitoring.NewMetrics(registry)

		metricsCfg, err := monitoring.LoadConfig()
		if err != nil {
			return err
		}
		go func() {
			errs.Handle(monitoring.Serve(ctx, metricsCfg.Addr, registry), false)
		}()

		store := reminder.NewStore(conn)

		msgRouter, err := BuildMessageRouter(store, cache, promptStore, metrics)
		if err != nil {
			return err
		}

		bot, err := telegram.BuildBot(msgRouter)
		if err != nil {
			return err
		}

		schedulerCfg, err := scheduler.LoadConfig()
		if err != nil {
			return err
		}

		sched, err := scheduler.NewScheduler(schedulerCfg, store, bot, metrics)
		if err != nil {
			return err
		}

		err = sched.Start(ctx)
		if err != nil {
			return err
		}

		go bot.Start()

		logrus.Info("started telegram bot")

		<-ctx.Done()
		logrus.Info("got one of stop signals, shutting down gracefully")

		bot.Stop()
		errs.Handle(sched.Stop(), false)

		return nil
	},
}

func initTelegramCmd() {
	rootCmd.AddCommand(telegramCmd)
}

// buildPrompts loads the prompt pack and, unless disabled, reloads it whenever
// the file changes until ctx is done.
func buildPrompts(ctx context.Context) (*prompts.Store, error) {
	cfg, err := prompts.LoadConfig()
	if err != nil {
		return nil, err
	}

	store, err := prompts.NewStore(cfg.Path)
	if err != nil {
		return nil, err
	}

	if !cfg.Watch {
		return store, nil
	}

	watcher, err := prompts.NewWatcher(store)
	if err != nil {
		return nil, err
	}

	err = watcher.Start(ctx)
	if err != nil {
		return nil, err
	}

	go func() {
		<-ctx.Done()
		errs.Handle(watcher.Stop(), false)
	}()

	return store, nil
}
