//
// Tencent is pleased to support the open source community by making trpc-attendance-bot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-attendance-bot is licensed under the Apache License Version 2.0.
//
//

// Command attendancebot runs the attendance menu bot.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
