//
// Tencent is pleased to support the open source community by making trpc-attendance-bot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-attendance-bot is licensed under the Apache License Version 2.0.
//
//

package menu

import "errors"

var (
	// ErrAccessDenied is returned for users outside the allow-list. No
	// session exists for them afterwards.
	ErrAccessDenied = errors.New("menu: access denied")
	// ErrFetch wraps a failed read from the record store. The session is
	// left as it was before the event.
	ErrFetch = errors.New("menu: fetch failed")
)
