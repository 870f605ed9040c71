//
// Tencent is pleased to support the open source community by making trpc-attendance-bot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-attendance-bot is licensed under the Apache License Version 2.0.
//
//

// Package pagination slices an ordered option list into fixed-size pages.
package pagination

// Size is the number of options shown on one page.
const Size = 7

// PageCount returns ceil(n/Size). An empty list still has one (empty) page.
func PageCount(n int) int {
	if n <= 0 {
		return 1
	}
	return (n + Size - 1) / Size
}

// Clamp moves page into [0, PageCount(n)-1].
func Clamp(n, page int) int {
	if page < 0 {
		return 0
	}
	if last := PageCount(n) - 1; page > last {
		return last
	}
	return page
}

// Window returns the half-open range [start, end) of page within a list of
// n options. page is clamped first.
func Window(n, page int) (start, end int) {
	page = Clamp(n, page)
	start = page * Size
	end = start + Size
	if end > n {
		end = n
	}
	if start > end {
		start = end
	}
	return start, end
}

// HasPrev reports whether a "previous" control belongs on page.
func HasPrev(page int) bool { return page > 0 }

// HasNext reports whether a "next" control belongs on page.
func HasNext(n, page int) bool { return (page+1)*Size < n }

// Slice returns the items shown on page.
func Slice[T any](items []T, page int) []T {
	start, end := Window(len(items), page)
	return items[start:end]
}
