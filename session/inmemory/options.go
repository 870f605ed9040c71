//
// Tencent is pleased to support the open source community by making trpc-attendance-bot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-attendance-bot is licensed under the Apache License Version 2.0.
//
//

package inmemory

const defaultCapacity = 16

// serviceOpts is the options for session service.
type serviceOpts struct {
	// capacity pre-sizes the session map.
	capacity int
	// onReset is invoked after a session has been reset.
	onReset func(userID int64)
}

var defaultOptions = serviceOpts{
	capacity: defaultCapacity,
}

// ServiceOpt is the option for the in-memory session service.
type ServiceOpt func(*serviceOpts)

// WithCapacity pre-sizes the session map for the expected number of users.
func WithCapacity(n int) ServiceOpt {
	return func(opts *serviceOpts) {
		if n > 0 {
			opts.capacity = n
		}
	}
}

// WithOnReset registers a hook called after every Reset.
func WithOnReset(fn func(userID int64)) ServiceOpt {
	return func(opts *serviceOpts) {
		opts.onReset = fn
	}
}
