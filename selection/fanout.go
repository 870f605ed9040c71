//
// Tencent is pleased to support the open source community by making trpc-attendance-bot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-attendance-bot is licensed under the Apache License Version 2.0.
//
//

package selection

import "strings"

// Tally is an ordered snapshot of positive counters. It is what a
// discounted-group record carries into the submission queue.
type Tally struct {
	Names  []string `json:"names"`
	Counts []int    `json:"counts"`
}

// Tally freezes the current positive counters in option order.
func (c *CounterSet) Tally() Tally {
	var t Tally
	for _, name := range c.Chosen() {
		t.Names = append(t.Names, name)
		t.Counts = append(t.Counts, c.counts[name])
	}
	return t
}

// Max returns the largest count in the tally.
func (t Tally) Max() int {
	top := 0
	for _, n := range t.Counts {
		if n > top {
			top = n
		}
	}
	return top
}

// Rank returns the names whose count is at least rank, in tally order.
func (t Tally) Rank(rank int) []string {
	var out []string
	for i, name := range t.Names {
		if t.Counts[i] >= rank {
			out = append(out, name)
		}
	}
	return out
}

// FanOut expands a tally into one line per rank, highest rank first.
// For rank i in 1..Max the line lists every name with count >= i; the
// prefix is prepended verbatim. Counts {A:2, B:1} yield "A" then "A, B".
func FanOut(prefix string, t Tally) []string {
	var lines []string
	for rank := t.Max(); rank >= 1; rank-- {
		names := t.Rank(rank)
		if len(names) == 0 {
			continue
		}
		lines = append(lines, prefix+strings.Join(names, separator))
	}
	return lines
}
