//
// Tencent is pleased to support the open source community by making trpc-attendance-bot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-attendance-bot is licensed under the Apache License Version 2.0.
//
//

// Package telegram connects the menu to the Telegram Bot API: it long-polls
// updates, dispatches them to a worker pool and turns views into inline
// keyboards.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/panjf2000/ants/v2"

	"trpc.group/trpc-go/trpc-attendance-bot/log"
	"trpc.group/trpc-go/trpc-attendance-bot/menu"
)

const (
	defaultWorkers     = 16
	defaultPollTimeout = 30
	releaseTimeout     = 5 * time.Second

	textAccessDenied = "Access to the bot is denied"
	textFetchFailed  = "Could not load data, please try again"
)

// API is the part of *tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Handler is the menu the bot drives.
type Handler interface {
	Start(ctx context.Context, user menu.User) (menu.View, error)
	Handle(ctx context.Context, user menu.User, data string) (menu.Result, error)
}

// Connect logs into the Bot API with token.
func Connect(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: connect: %w", err)
	}
	log.Infof("telegram: authorized as @%s", api.Self.UserName)
	return api, nil
}

// Bot dispatches updates to the menu.
type Bot struct {
	api     API
	handler Handler
	pool    *ants.Pool
	opts    options
}

type options struct {
	workers     int
	pollTimeout int
}

// Option configures a Bot.
type Option func(*options)

// WithWorkers bounds the number of updates handled concurrently.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithPollTimeout sets the long-poll timeout in seconds.
func WithPollTimeout(seconds int) Option {
	return func(o *options) {
		if seconds >= 0 {
			o.pollTimeout = seconds
		}
	}
}

// NewBot creates a bot. Updates are handled on an ants pool; updates of
// one user serialize on the menu's session lock.
func NewBot(api API, handler Handler, opts ...Option) (*Bot, error) {
	o := options{workers: defaultWorkers, pollTimeout: defaultPollTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	pool, err := ants.NewPool(o.workers, ants.WithPanicHandler(func(p any) {
		log.Errorf("telegram: worker panic: %v", p)
	}))
	if err != nil {
		return nil, fmt.Errorf("telegram: create worker pool: %w", err)
	}
	return &Bot{api: api, handler: handler, pool: pool, opts: o}, nil
}

// Run polls updates until ctx is done, then waits briefly for in-flight
// handlers.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = b.opts.pollTimeout
	updates := b.api.GetUpdatesChan(cfg)
	log.Infof("telegram: polling with %d workers", b.opts.workers)

	defer func() {
		b.api.StopReceivingUpdates()
		if err := b.pool.ReleaseTimeout(releaseTimeout); err != nil {
			log.Warnf("telegram: release workers: %v", err)
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if err := b.pool.Submit(func() { b.dispatch(ctx, update) }); err != nil {
				log.Errorf("telegram: submit update %d: %v", update.UpdateID, err)
			}
		}
	}
}

// dispatch handles one update. Errors and panics are logged by origin and
// never escape.
func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("telegram: update %d: panic: %v", update.UpdateID, r)
		}
	}()

	var err error
	switch {
	case update.CallbackQuery != nil:
		err = b.onCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		err = b.onCommand(ctx, update.Message)
	}
	if err != nil {
		logFailure(update.UpdateID, err)
	}
}

func (b *Bot) onCommand(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil || msg.Command() != "start" {
		return nil
	}
	view, err := b.handler.Start(ctx, userOf(msg.From))
	if errors.Is(err, menu.ErrAccessDenied) {
		log.Infof("telegram: denied /start from %q", msg.From.UserName)
		_, err = b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, textAccessDenied))
		return err
	}
	if err != nil {
		return err
	}
	_, err = b.api.Send(newMessage(msg.Chat.ID, view))
	return err
}

func (b *Bot) onCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb.From == nil {
		return nil
	}
	res, err := b.handler.Handle(ctx, userOf(cb.From), cb.Data)
	switch {
	case errors.Is(err, menu.ErrAccessDenied):
		log.Infof("telegram: denied callback from %q", cb.From.UserName)
		b.answer(cb.ID, textAccessDenied)
		return nil
	case errors.Is(err, menu.ErrFetch):
		b.answer(cb.ID, textFetchFailed)
		return err
	case err != nil:
		b.answer(cb.ID, "")
		return err
	}

	if cb.Message != nil {
		edit := editMessage(cb.Message.Chat.ID, cb.Message.MessageID, res.View)
		if _, err := b.api.Send(edit); err != nil {
			logFailure(0, fmt.Errorf("%w: %w", ErrRender, err))
		}
	}
	b.answer(cb.ID, res.Answer)
	if res.Followup != nil && cb.Message != nil {
		if _, err := b.api.Send(newMessage(cb.Message.Chat.ID, *res.Followup)); err != nil {
			return fmt.Errorf("send followup: %w", err)
		}
	}
	return nil
}

func (b *Bot) answer(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		log.Debugf("telegram: answer callback %s: %v", id, err)
	}
}

func userOf(u *tgbotapi.User) menu.User {
	return menu.User{ID: u.ID, Name: u.UserName}
}
