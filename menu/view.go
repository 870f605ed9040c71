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
	"fmt"
	"strings"
	"time"

	"trpc.group/trpc-go/trpc-attendance-bot/ledger"
	"trpc.group/trpc-go/trpc-attendance-bot/pagination"
	"trpc.group/trpc-go/trpc-attendance-bot/record"
	"trpc.group/trpc-go/trpc-attendance-bot/session"
)

const (
	unset = "---"

	recentDays   = 5
	earningWeeks = 8
	mondaysInRow = 4
)

// Button is one inline keyboard button.
type Button struct {
	Text string `json:"text"`
	Data string `json:"data"`
}

// View is a transport-neutral screen: text plus keyboard rows.
type View struct {
	Text string     `json:"text"`
	Rows [][]Button `json:"rows,omitempty"`
}

// String dumps the view in a stable line format.
func (v View) String() string {
	var b strings.Builder
	b.WriteString(v.Text)
	b.WriteString("\n--\n")
	for _, row := range v.Rows {
		cells := make([]string, len(row))
		for i, btn := range row {
			cells[i] = fmt.Sprintf("[%s | %s]", btn.Text, btn.Data)
		}
		b.WriteString(strings.Join(cells, " "))
		b.WriteString("\n")
	}
	return b.String()
}

func btn(text, data string) Button { return Button{Text: text, Data: data} }

func row(buttons ...Button) []Button { return buttons }

// Render derives the screen of s from its fields alone.
func Render(s *session.Session, user string, now time.Time) View {
	switch s.Screen {
	case session.ScreenAwaitingFormat:
		return formatView(s)
	case session.ScreenAwaitingLocation:
		return locationView(s)
	case session.ScreenAwaitingSelection:
		return selectionView(s)
	case session.ScreenEarningsPeriod:
		return earningsPeriodView(now)
	case session.ScreenEarningsSummary:
		return earningsSummaryView(s, user)
	case session.ScreenEarningsBreakdown:
		return earningsBreakdownView(s, user)
	default:
		return dateView(s, now)
	}
}

func orUnset(v string) string {
	if v == "" {
		return unset
	}
	return v
}

func header(s *session.Session) string {
	var b strings.Builder
	b.WriteString("Entered data:\n")
	fmt.Fprintf(&b, "📅 Date: %s\n", orUnset(s.Date))
	fmt.Fprintf(&b, "🤸 Format: %s\n", orUnset(string(s.Format)))
	if !s.Format.Counted() {
		fmt.Fprintf(&b, "📍 Location: %s\n", orUnset(locationLabel(s)))
	}
	people := ""
	if s.Screen == session.ScreenAwaitingSelection && s.Selection != nil {
		people = s.Selection.Summarize()
	}
	fmt.Fprintf(&b, "👥 People: %s", orUnset(people))
	return b.String()
}

func locationLabel(s *session.Session) string {
	for _, p := range s.Locations {
		if p.Key == s.Location {
			return p.Label
		}
	}
	return s.Location
}

func dateView(s *session.Session, now time.Time) View {
	days := ledger.RecentDays(now, recentDays)
	older := make([]Button, 0, recentDays-1)
	for i := recentDays - 1; i > 0; i-- {
		older = append(older, btn(days[i], days[i]))
	}
	return View{
		Text: header(s) + "\n\nChoose a date:",
		Rows: [][]Button{
			row(btn(days[0], days[0])),
			older,
			row(btn("🔄 Refresh dates", DataRefreshDates)),
			row(btn("💰 View earnings", DataViewEarnings)),
		},
	}
}

func formatView(s *session.Session) View {
	rows := make([][]Button, 0, len(record.Formats)+1)
	for _, f := range record.Formats {
		rows = append(rows, row(btn(string(f), string(f))))
	}
	rows = append(rows, row(btn("⬅️ Back", DataBackToDates)))
	return View{Text: header(s) + "\n\nChoose a format:", Rows: rows}
}

func locationView(s *session.Session) View {
	rows := make([][]Button, 0, len(s.Locations)+1)
	for _, p := range s.Locations {
		rows = append(rows, row(btn(p.Label, locationData(p.Key))))
	}
	rows = append(rows, row(btn("⬅️ Back", DataBackToFormat)))
	return View{Text: header(s) + "\n\nChoose a location:", Rows: rows}
}

func selectionView(s *session.Session) View {
	var rows [][]Button
	n := len(s.Options)

	var nav []Button
	if pagination.HasPrev(s.Page) {
		nav = append(nav, btn("⬅️ Previous", prevData(s.Page)))
	}
	if pagination.HasNext(n, s.Page) {
		nav = append(nav, btn("More people ➡️", nextData(s.Page)))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	for _, name := range pagination.Slice(s.Options, s.Page) {
		label := name
		if s.Selection != nil {
			label = s.Selection.Label(name)
		}
		if s.Format.Counted() {
			rows = append(rows, row(btn("➖", minusData(name)), btn(label, name)))
			continue
		}
		rows = append(rows, row(btn(label, name)))
	}
	rows = append(rows, row(btn("⬅️ Back", DataBackToLocation), btn("DONE ✅", DataDone)))

	text := header(s) + "\n\nChoose people:"
	if n == 0 {
		text += "\nNobody is assigned to you."
	}
	return View{Text: text, Rows: rows}
}

func earningsPeriodView(now time.Time) View {
	mondays := ledger.LastMondays(now, earningWeeks)
	var rows [][]Button
	for i := 0; i < len(mondays); i += mondaysInRow {
		end := min(i+mondaysInRow, len(mondays))
		r := make([]Button, 0, mondaysInRow)
		for _, d := range mondays[i:end] {
			r = append(r, btn(d, earningsDateData(d)))
		}
		rows = append(rows, r)
	}
	rows = append(rows, row(btn("⬅️ Back", DataBackToDates)))
	return View{Text: "Choose the date to start the report from:", Rows: rows}
}

func earningsSummaryView(s *session.Session, user string) View {
	total := ledger.Amount(ledger.Total(s.Earnings, user))
	return View{
		Text: fmt.Sprintf("Total earnings since %s: %s ₽", s.EarningsSince, total),
		Rows: [][]Button{
			row(btn(fmt.Sprintf("Detailed breakdown (%s ₽)", total), DataBreakdown)),
			row(btn("↩️ Back to main menu", DataBackToStart)),
		},
	}
}

func earningsBreakdownView(s *session.Session, user string) View {
	var coach []string
	for _, e := range ledger.AsCoach(s.Earnings, user) {
		coach = append(coach, fmt.Sprintf("Date: %s, Format: %s%s, Amount: %s ₽",
			e.Date, e.Format, placeSuffix(e), ledger.Amount(e.Expense)))
	}
	var mentor []string
	for _, e := range ledger.AsMentor(s.Earnings, user) {
		mentor = append(mentor, fmt.Sprintf("Date: %s, Coach: %s, Format: %s%s, Amount: %s ₽",
			e.Date, e.Coach, e.Format, placeSuffix(e), ledger.Amount(e.SecondExpense)))
	}

	text := "Your earnings as coach:\n"
	if len(coach) == 0 {
		text += "No data"
	} else {
		text += strings.Join(coach, "\n")
	}
	if len(mentor) > 0 {
		text += "\n\nYour earnings as mentor:\n" + strings.Join(mentor, "\n")
	}
	return View{
		Text: text,
		Rows: [][]Button{row(btn("↩️ Back to main menu", DataBackToStart))},
	}
}

func placeSuffix(e ledger.Entry) string {
	if e.Format == string(record.FormatDiscountedGroup) {
		return ""
	}
	return ", Location: " + e.Place
}

func summaryView(rec record.Record) View {
	return View{Text: rec.SummaryLine()}
}
