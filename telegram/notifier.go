//
// Tencent is pleased to support the open source community by making trpc-attendance-bot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-attendance-bot is licensed under the Apache License Version 2.0.
//
//

package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ChatNotifier posts plain text lines into a fixed chat.
type ChatNotifier struct {
	api    API
	chatID int64
}

// NewChatNotifier creates a notifier for chatID. A zero chatID disables it.
func NewChatNotifier(api API, chatID int64) *ChatNotifier {
	return &ChatNotifier{api: api, chatID: chatID}
}

// Notify sends text to the chat.
func (n *ChatNotifier) Notify(ctx context.Context, text string) error {
	if n.chatID == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := n.api.Send(tgbotapi.NewMessage(n.chatID, text)); err != nil {
		return fmt.Errorf("telegram: notify chat %d: %w", n.chatID, err)
	}
	return nil
}
