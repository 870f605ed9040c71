//
// Tencent is pleased to support the open source community by making trpc-attendance-bot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-attendance-bot is licensed under the Apache License Version 2.0.
//
//

// Package selection models what a user has picked on the people screen.
//
// Two variants exist. A ToggleSet keeps each option independently on or off
// and is used for group and personal sessions. A CounterSet keeps a
// non-negative repeat count per option and is used for discounted-group
// sessions, where the same person may attend several times.
package selection

import (
	"fmt"
	"strings"
)

// separator joins names in summaries and outbound lines.
const separator = ", "

// Selection is the capability shared by both selection variants.
type Selection interface {
	// Apply records a tap on name: toggles it or increments its counter.
	Apply(name string) bool
	// Remove decrements the counter of name. It is a no-op for toggle sets
	// and for counters already at zero.
	Remove(name string) bool
	// Contains reports whether name is part of the option universe.
	Contains(name string) bool
	// Chosen returns the chosen names in option order.
	Chosen() []string
	// Summarize renders the chosen options for humans.
	Summarize() string
	// IsEmpty reports whether nothing is chosen.
	IsEmpty() bool
	// Label renders the button text for name.
	Label(name string) string
}

var (
	_ Selection = (*ToggleSet)(nil)
	_ Selection = (*CounterSet)(nil)
)

// ToggleSet is a set of independently chosen options.
type ToggleSet struct {
	options []string
	chosen  map[string]bool
}

// NewToggleSet builds an empty toggle set over options.
func NewToggleSet(options []string) *ToggleSet {
	chosen := make(map[string]bool, len(options))
	for _, o := range options {
		chosen[o] = false
	}
	return &ToggleSet{options: append([]string(nil), options...), chosen: chosen}
}

// Apply flips membership of name. Names outside the option universe are
// ignored and reported as false.
func (t *ToggleSet) Apply(name string) bool {
	on, ok := t.chosen[name]
	if !ok {
		return false
	}
	t.chosen[name] = !on
	return true
}

// Remove is a no-op for toggle sets.
func (t *ToggleSet) Remove(string) bool { return false }

// Contains reports whether name is one of the options.
func (t *ToggleSet) Contains(name string) bool {
	_, ok := t.chosen[name]
	return ok
}

// IsOn reports whether name is currently chosen.
func (t *ToggleSet) IsOn(name string) bool { return t.chosen[name] }

// Chosen returns the chosen names in option order.
func (t *ToggleSet) Chosen() []string {
	var out []string
	for _, o := range t.options {
		if t.chosen[o] {
			out = append(out, o)
		}
	}
	return out
}

// Summarize lists the chosen names.
func (t *ToggleSet) Summarize() string { return strings.Join(t.Chosen(), separator) }

// IsEmpty reports whether no option is on.
func (t *ToggleSet) IsEmpty() bool { return len(t.Chosen()) == 0 }

// Label marks chosen options with a check mark.
func (t *ToggleSet) Label(name string) string {
	if t.chosen[name] {
		return name + " ✅"
	}
	return name
}

// CounterSet is a multiset of options with non-negative counts.
type CounterSet struct {
	options []string
	counts  map[string]int
}

// NewCounterSet builds a counter set with every count at zero.
func NewCounterSet(options []string) *CounterSet {
	counts := make(map[string]int, len(options))
	for _, o := range options {
		counts[o] = 0
	}
	return &CounterSet{options: append([]string(nil), options...), counts: counts}
}

// Apply increments the counter of name. Counters are unbounded above.
func (c *CounterSet) Apply(name string) bool {
	if _, ok := c.counts[name]; !ok {
		return false
	}
	c.counts[name]++
	return true
}

// Remove decrements the counter of name, floored at zero.
func (c *CounterSet) Remove(name string) bool {
	n, ok := c.counts[name]
	if !ok || n == 0 {
		return false
	}
	c.counts[name] = n - 1
	return true
}

// Contains reports whether name is one of the options.
func (c *CounterSet) Contains(name string) bool {
	_, ok := c.counts[name]
	return ok
}

// Count returns the counter of name.
func (c *CounterSet) Count(name string) int { return c.counts[name] }

// Counts returns a copy of the positive counters.
func (c *CounterSet) Counts() map[string]int {
	out := make(map[string]int)
	for name, n := range c.counts {
		if n > 0 {
			out[name] = n
		}
	}
	return out
}

// Chosen returns the names with a positive count in option order.
func (c *CounterSet) Chosen() []string {
	var out []string
	for _, o := range c.options {
		if c.counts[o] > 0 {
			out = append(out, o)
		}
	}
	return out
}

// Summarize lists "<count>x <name>" for every positive counter.
func (c *CounterSet) Summarize() string {
	chosen := c.Chosen()
	parts := make([]string, 0, len(chosen))
	for _, name := range chosen {
		parts = append(parts, fmt.Sprintf("%dx %s", c.counts[name], name))
	}
	return strings.Join(parts, separator)
}

// IsEmpty reports whether every counter is zero.
func (c *CounterSet) IsEmpty() bool { return len(c.Chosen()) == 0 }

// Label prefixes the name with its current count.
func (c *CounterSet) Label(name string) string {
	return fmt.Sprintf("(%d) %s", c.counts[name], name)
}

// Clone returns an independent copy of t.
func (t *ToggleSet) Clone() *ToggleSet {
	c := &ToggleSet{
		options: append([]string(nil), t.options...),
		chosen:  make(map[string]bool, len(t.chosen)),
	}
	for k, v := range t.chosen {
		c.chosen[k] = v
	}
	return c
}

// Clone returns an independent copy of c.
func (c *CounterSet) Clone() *CounterSet {
	out := &CounterSet{
		options: append([]string(nil), c.options...),
		counts:  make(map[string]int, len(c.counts)),
	}
	for k, v := range c.counts {
		out.counts[k] = v
	}
	return out
}
