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
	"errors"
	"net"
	"net/url"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"trpc.group/trpc-go/trpc-attendance-bot/log"
)

// ErrRender marks a message edit the Bot API rejected.
var ErrRender = errors.New("telegram: render rejected")

// Origin says where a handler error came from.
type Origin int

// Error origins.
const (
	OriginUnknown Origin = iota
	// OriginProtocol is an error answer from the Bot API.
	OriginProtocol
	// OriginConnectivity means the Bot API could not be reached.
	OriginConnectivity
)

func (o Origin) String() string {
	switch o {
	case OriginProtocol:
		return "protocol"
	case OriginConnectivity:
		return "connectivity"
	default:
		return "unknown"
	}
}

// Classify returns the origin of err.
func Classify(err error) Origin {
	if err == nil {
		return OriginUnknown
	}
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return OriginProtocol
	}
	var apiVal tgbotapi.Error
	if errors.As(err, &apiVal) {
		return OriginProtocol
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return OriginConnectivity
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return OriginConnectivity
	}
	return OriginUnknown
}

// notModified reports the Bot API's answer to an edit that changes nothing.
func notModified(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}

func logFailure(updateID int, err error) {
	switch origin := Classify(err); {
	case notModified(err):
		log.Debugf("telegram: update %d: %v", updateID, err)
	case origin == OriginProtocol:
		log.Errorf("telegram: update %d: request error: %v", updateID, err)
	case origin == OriginConnectivity:
		log.Errorf("telegram: update %d: could not contact Telegram: %v", updateID, err)
	default:
		log.Errorf("telegram: update %d: %v", updateID, err)
	}
}
