//
// Tencent is pleased to support the open source community by making trpc-attendance-bot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-attendance-bot is licensed under the Apache License Version 2.0.
//
//

package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnOrAfter_IgnoresYear(t *testing.T) {
	assert.True(t, OnOrAfter("31.12", "01.01"))
	assert.True(t, OnOrAfter("01.01", "01.01"))
	assert.False(t, OnOrAfter("03.01", "28.12"), "year boundaries are not handled")
	assert.False(t, OnOrAfter("garbage", "01.01"))
	assert.False(t, OnOrAfter("01.01", "x.y"))
}

func TestParseDayMonth(t *testing.T) {
	got, err := ParseDayMonth("05.06")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2000, time.June, 5, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDayMonth("0506")
	assert.Error(t, err)
}

func TestSince_FiltersAndSorts(t *testing.T) {
	entries := []Entry{
		{Date: "10.03", Coach: "a"},
		{Date: "31.12", Coach: "b"},
		{Date: "01.02", Coach: "c"},
		{Date: "15.01", Coach: "d"},
	}
	got := Since(entries, "01.02")
	require.Len(t, got, 3)
	assert.Equal(t, []string{"01.02", "10.03", "31.12"}, []string{got[0].Date, got[1].Date, got[2].Date})
}

func TestTotalAndBreakdown(t *testing.T) {
	entries := []Entry{
		{Date: "01.02", Coach: "me", SecondCoach: "mentor", Expense: 1000, SecondExpense: 200},
		{Date: "02.02", Coach: "other", SecondCoach: "me", Expense: 900, SecondExpense: 150},
		{Date: "03.02", Coach: "other", SecondCoach: "me", Expense: 900, SecondExpense: 0},
	}
	assert.Equal(t, 1150.0, Total(entries, "me"))
	assert.Len(t, AsCoach(entries, "me"), 1)
	mentor := AsMentor(entries, "me")
	require.Len(t, mentor, 1)
	assert.Equal(t, "02.02", mentor[0].Date)
}

func TestAmount(t *testing.T) {
	assert.Equal(t, "1500", Amount(1500))
	assert.Equal(t, "12.5", Amount(12.5))
	assert.Equal(t, "0", Amount(0))
}

func TestRecentDays(t *testing.T) {
	now := time.Date(2025, time.March, 2, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, []string{"02.03", "01.03", "28.02", "27.02", "26.02"}, RecentDays(now, 5))
}

func TestLastMondays(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		last string
	}{
		{name: "monday", now: time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC), last: "03.03"},
		{name: "sunday", now: time.Date(2025, time.March, 9, 9, 0, 0, 0, time.UTC), last: "03.03"},
		{name: "wednesday", now: time.Date(2025, time.March, 5, 9, 0, 0, 0, time.UTC), last: "03.03"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LastMondays(tt.now, 8)
			require.Len(t, got, 8)
			assert.Equal(t, tt.last, got[7])
			assert.Equal(t, "24.02", got[6])
			assert.Equal(t, "13.01", got[0])
		})
	}
}
