//
// Tencent is pleased to support the open source community by making trpc-attendance-bot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-attendance-bot is licensed under the Apache License Version 2.0.
//
//

package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageCount(t *testing.T) {
	cases := map[int]int{0: 1, 1: 1, 7: 1, 8: 2, 14: 2, 15: 3, 50: 8}
	for n, want := range cases {
		assert.Equal(t, want, PageCount(n), "n=%d", n)
	}
}

func TestNavigationAffordances(t *testing.T) {
	for _, n := range []int{1, 6, 7, 8, 13, 14, 15, 22} {
		pages := PageCount(n)
		for p := 0; p < pages; p++ {
			assert.Equal(t, p != 0, HasPrev(p), "n=%d page=%d prev", n, p)
			assert.Equal(t, p != pages-1, HasNext(n, p), "n=%d page=%d next", n, p)
		}
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		n, page    int
		start, end int
	}{
		{n: 0, page: 0, start: 0, end: 0},
		{n: 5, page: 0, start: 0, end: 5},
		{n: 10, page: 1, start: 7, end: 10},
		{n: 10, page: 9, start: 7, end: 10},
		{n: 14, page: 1, start: 7, end: 14},
		{n: 14, page: -3, start: 0, end: 7},
	}
	for _, tt := range tests {
		start, end := Window(tt.n, tt.page)
		assert.Equal(t, tt.start, start, "n=%d page=%d", tt.n, tt.page)
		assert.Equal(t, tt.end, end, "n=%d page=%d", tt.n, tt.page)
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, Clamp(0, 3))
	assert.Equal(t, 1, Clamp(8, 5))
	assert.Equal(t, 0, Clamp(8, -1))
	assert.Equal(t, 1, Clamp(8, 1))
}

func TestSlice(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i"}
	assert.Equal(t, items[:7], Slice(items, 0))
	assert.Equal(t, []string{"h", "i"}, Slice(items, 1))
	assert.Empty(t, Slice([]string{}, 0))
}
