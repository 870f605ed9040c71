//
// Tencent is pleased to support the open source community by making trpc-attendance-bot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-attendance-bot is licensed under the Apache License Version 2.0.
//
//

package menu

import (
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"

	"trpc.group/trpc-go/trpc-attendance-bot/ledger"
	"trpc.group/trpc-go/trpc-attendance-bot/record"
	"trpc.group/trpc-go/trpc-attendance-bot/session"
)

// fixedNow is a Thursday.
var fixedNow = time.Date(2025, time.June, 5, 10, 0, 0, 0, time.UTC)

var nineNames = []string{"Anna", "Boris", "Clara", "Dmitry", "Elena", "Fedor", "Galina", "Hugo", "Irina"}

func assertGolden(t *testing.T, name string, v View) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(v.String()))
}

func TestRender_Golden(t *testing.T) {
	tests := []struct {
		name  string
		build func() *session.Session
	}{
		{
			name:  "date_initial",
			build: func() *session.Session { return session.New(1) },
		},
		{
			name: "format",
			build: func() *session.Session {
				s := session.New(1)
				s.Date = "05.06"
				s.Screen = session.ScreenAwaitingFormat
				return s
			},
		},
		{
			name: "location",
			build: func() *session.Session {
				s := session.New(1)
				s.Date, s.Format = "05.06", record.FormatGroup
				s.Locations = []session.Place{{Label: "Studio A", Key: "studio_a"}, {Label: "Парк", Key: "park"}}
				s.Screen = session.ScreenAwaitingLocation
				return s
			},
		},
		{
			name: "selection_counted",
			build: func() *session.Session {
				s := session.New(1)
				s.Date, s.Format = "05.06", record.FormatDiscountedGroup
				s.LoadOptions(nineNames)
				s.Selection.Apply("Boris")
				s.Selection.Apply("Boris")
				s.Screen = session.ScreenAwaitingSelection
				return s
			},
		},
		{
			name: "selection_toggle_last_page",
			build: func() *session.Session {
				s := session.New(1)
				s.Date, s.Format, s.Location = "01.01", record.FormatPersonal, "studio_a"
				s.Locations = []session.Place{{Label: "Studio A", Key: "studio_a"}}
				s.LoadOptions(nineNames)
				s.Selection.Apply("Hugo")
				s.SetPage(1)
				s.Screen = session.ScreenAwaitingSelection
				return s
			},
		},
		{
			name: "earnings_period",
			build: func() *session.Session {
				s := session.New(1)
				s.Screen = session.ScreenEarningsPeriod
				return s
			},
		},
		{
			name: "earnings_breakdown",
			build: func() *session.Session {
				s := session.New(1)
				s.Earnings = breakdownEntries()
				s.Screen = session.ScreenEarningsBreakdown
				return s
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertGolden(t, tt.name, Render(tt.build(), "coach", fixedNow))
		})
	}
}

func breakdownEntries() []ledger.Entry {
	return []ledger.Entry{
		{Date: "02.06", Coach: "coach", Format: "group", Place: "gym", Expense: 1500},
		{Date: "03.06", Coach: "coach", Format: "discounted-group", Place: "gym", Expense: 800.5},
		{Date: "04.06", Coach: "other", SecondCoach: "coach", Format: "personal", Place: "pool", Expense: 2000, SecondExpense: 500},
	}
}

func TestRender_EarningsSummary(t *testing.T) {
	s := session.New(1)
	s.Earnings = breakdownEntries()
	s.EarningsSince = "02.06"
	s.Screen = session.ScreenEarningsSummary

	v := Render(s, "coach", fixedNow)
	assert.Equal(t, "Total earnings since 02.06: 2800.5 ₽", v.Text)
	assert.Equal(t, [][]Button{
		{{Text: "Detailed breakdown (2800.5 ₽)", Data: DataBreakdown}},
		{{Text: "↩️ Back to main menu", Data: DataBackToStart}},
	}, v.Rows)
}

func TestRender_BreakdownWithoutCoachEntries(t *testing.T) {
	s := session.New(1)
	s.Screen = session.ScreenEarningsBreakdown
	v := Render(s, "coach", fixedNow)
	assert.Equal(t, "Your earnings as coach:\nNo data", v.Text)
}

func TestRender_Pagination(t *testing.T) {
	names := make([]string, 15)
	for i := range names {
		names[i] = string(rune('A' + i))
	}
	s := session.New(1)
	s.Format = record.FormatGroup
	s.LoadOptions(names)
	s.Screen = session.ScreenAwaitingSelection

	navRow := func(v View) []string {
		var out []string
		for _, b := range v.Rows[0] {
			out = append(out, b.Data)
		}
		return out
	}

	assert.Equal(t, []string{"next_0"}, navRow(Render(s, "u", fixedNow)))
	s.SetPage(1)
	assert.Equal(t, []string{"prev_1", "next_1"}, navRow(Render(s, "u", fixedNow)))
	s.SetPage(2)
	v := Render(s, "u", fixedNow)
	assert.Equal(t, []string{"prev_2"}, navRow(v))
	// nav row, one option, back/done row.
	assert.Len(t, v.Rows, 3)
}

func TestRender_NoOptions(t *testing.T) {
	s := session.New(1)
	s.Format = record.FormatGroup
	s.LoadOptions(nil)
	s.Screen = session.ScreenAwaitingSelection

	v := Render(s, "u", fixedNow)
	assert.Contains(t, v.Text, "Nobody is assigned to you.")
	assert.Equal(t, [][]Button{{
		{Text: "⬅️ Back", Data: DataBackToLocation},
		{Text: "DONE ✅", Data: DataDone},
	}}, v.Rows)
}
