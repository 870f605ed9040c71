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
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"trpc.group/trpc-go/trpc-attendance-bot/menu"
)

// keyboard converts view rows into inline keyboard markup. A view without
// rows yields nil, which removes the keyboard on edit.
func keyboard(v menu.View) *tgbotapi.InlineKeyboardMarkup {
	if len(v.Rows) == 0 {
		return nil
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(v.Rows))
	for _, r := range v.Rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(r))
		for _, b := range r {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		rows = append(rows, buttons)
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

func newMessage(chatID int64, v menu.View) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, v.Text)
	if kb := keyboard(v); kb != nil {
		msg.ReplyMarkup = kb
	}
	return msg
}

func editMessage(chatID int64, messageID int, v menu.View) tgbotapi.EditMessageTextConfig {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, v.Text)
	edit.ReplyMarkup = keyboard(v)
	return edit
}
