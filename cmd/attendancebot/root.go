//
// Tencent is pleased to support the open source community by making trpc-attendance-bot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-attendance-bot is licensed under the Apache License Version 2.0.
//
//

package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"trpc.group/trpc-go/trpc-attendance-bot/airtable"
	"trpc.group/trpc-go/trpc-attendance-bot/config"
	itelemetry "trpc.group/trpc-go/trpc-attendance-bot/internal/telemetry"
	"trpc.group/trpc-go/trpc-attendance-bot/log"
	"trpc.group/trpc-go/trpc-attendance-bot/menu"
	"trpc.group/trpc-go/trpc-attendance-bot/queue"
	"trpc.group/trpc-go/trpc-attendance-bot/server/ops"
	"trpc.group/trpc-go/trpc-attendance-bot/session/inmemory"
	"trpc.group/trpc-go/trpc-attendance-bot/telegram"
	"trpc.group/trpc-go/trpc-attendance-bot/telemetry"
	"trpc.group/trpc-go/trpc-attendance-bot/telemetry/metric"
)

type rootOptions struct {
	configPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "attendancebot",
		Short:         "Telegram menu for recording attendance",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newVersionCommand())
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", itelemetry.ServiceName, itelemetry.ServiceVersion)
		},
	}
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot, the submission queue and the ops server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			log.SetFormat(cfg.Log.Format)
			log.SetLevel(cfg.Log.Level)
			if err := cfg.Validate(); err != nil {
				log.Errorf("%v", err)
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if err := serve(ctx, cfg); err != nil {
				log.Errorf("attendancebot: %v", err)
				return err
			}
			return nil
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	cleanTelemetry, err := telemetry.Start(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		if err := cleanTelemetry(); err != nil {
			log.Warnf("telemetry shutdown: %v", err)
		}
	}()
	recorder, err := metric.NewRecorder(metric.Meter)
	if err != nil {
		return err
	}

	store := airtable.New(cfg.Airtable)
	submissions := queue.New(store, store,
		queue.WithInterval(cfg.Queue.Interval),
		queue.WithLineInterval(cfg.Queue.LineInterval),
		queue.WithCallTimeout(cfg.CallTimeout),
		queue.WithRecorder(recorder),
	)
	sessions := inmemory.NewSessionService(
		inmemory.WithCapacity(len(cfg.AllowedUsers)),
		inmemory.WithOnReset(func(int64) { recorder.SessionReset(ctx) }),
	)

	api, err := telegram.Connect(cfg.BotToken)
	if err != nil {
		return err
	}
	nav := menu.NewNavigator(sessions, store, submissions,
		menu.WithAllowedUsers(cfg.AllowedUsers...),
		menu.WithBroadcaster(telegram.NewChatNotifier(api, cfg.SecondaryChatID)),
		menu.WithCallTimeout(cfg.CallTimeout),
		menu.WithLocale(cfg.Language()),
		menu.WithRecorder(recorder),
	)
	bot, err := telegram.NewBot(api, nav, telegram.WithWorkers(cfg.Workers))
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return bot.Run(ctx) })
	g.Go(func() error { return submissions.Run(ctx) })
	if cfg.Ops.Addr != "" {
		srv := ops.New(sessions, submissions)
		g.Go(func() error { return srv.ListenAndServe(ctx, cfg.Ops.Addr) })
	}
	log.Infof("attendancebot: serving %d users", len(cfg.AllowedUsers))
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Infof("attendancebot: stopped, %d submissions left undelivered", submissions.Stats().Pending)
	return nil
}
