//
// Tencent is pleased to support the open source community by making trpc-attendance-bot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-attendance-bot is licensed under the Apache License Version 2.0.
//
//

package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-attendance-bot/record"
	"trpc.group/trpc-go/trpc-attendance-bot/selection"
)

func TestLoadOptions_PicksVariantByFormat(t *testing.T) {
	sess := New(1)
	sess.Format = record.FormatDiscountedGroup
	sess.LoadOptions([]string{"A", "B"})
	_, ok := sess.Selection.(*selection.CounterSet)
	assert.True(t, ok)

	sess.Format = record.FormatGroup
	sess.LoadOptions([]string{"A", "B"})
	_, ok = sess.Selection.(*selection.ToggleSet)
	assert.True(t, ok)
}

func TestLoadOptions_DropsStaleKeys(t *testing.T) {
	sess := New(1)
	sess.Format = record.FormatDiscountedGroup
	sess.LoadOptions([]string{"Old", "Both"})
	sess.Selection.Apply("Old")
	sess.Selection.Apply("Both")
	sess.Page = 3

	sess.Format = record.FormatPersonal
	sess.LoadOptions([]string{"Both", "New"})

	assert.True(t, sess.Selection.IsEmpty())
	assert.False(t, sess.Selection.Contains("Old"))
	assert.Equal(t, 0, sess.Page)
}

func TestSetPage_Clamps(t *testing.T) {
	sess := New(1)
	sess.LoadOptions([]string{"a", "b", "c", "d", "e", "f", "g", "h"})
	sess.SetPage(5)
	assert.Equal(t, 1, sess.Page)
	sess.SetPage(-1)
	assert.Equal(t, 0, sess.Page)
}

func TestClone_RestoresPriorState(t *testing.T) {
	sess := New(1)
	sess.Format = record.FormatGroup
	sess.LoadOptions([]string{"A"})
	sess.Selection.Apply("A")
	before := sess.Clone()

	sess.Screen = ScreenAwaitingSelection
	sess.Selection.Apply("A")
	sess.Options = append(sess.Options, "B")

	sess.Restore(before)
	require.NotNil(t, sess.Selection)
	assert.Equal(t, []string{"A"}, sess.Selection.Chosen())
	assert.Equal(t, []string{"A"}, sess.Options)
	assert.Equal(t, ScreenAwaitingDate, sess.Screen)
}

func TestSnapshot(t *testing.T) {
	sess := New(9)
	sess.Format = record.FormatDiscountedGroup
	sess.LoadOptions([]string{"X"})
	sess.Selection.Apply("X")

	snap := sess.Snapshot()
	assert.Equal(t, int64(9), snap.UserID)
	assert.Equal(t, "1x X", snap.Selected)
	assert.Equal(t, 1, snap.Options)
	assert.Equal(t, "unknown", Screen(99).String())
}
