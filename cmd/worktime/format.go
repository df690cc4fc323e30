package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/username/worktime/internal/calendar"
	"github.com/username/worktime/internal/schedule"
	"github.com/username/worktime/internal/worktime"
)

var (
	colorGreen  = lipgloss.Color("#8ec07c")
	colorYellow = lipgloss.Color("#fabd2f")
	colorRed    = lipgloss.Color("#fb4934")
	colorBlue   = lipgloss.Color("#83a598")
	colorDim    = lipgloss.Color("#928374")
	colorFg     = lipgloss.Color("#ebdbb2")
	colorHeader = lipgloss.Color("#fe8019")
)

var (
	styleGreen  = lipgloss.NewStyle().Foreground(colorGreen)
	styleYellow = lipgloss.NewStyle().Foreground(colorYellow)
	styleRed    = lipgloss.NewStyle().Foreground(colorRed)
	styleBlue   = lipgloss.NewStyle().Foreground(colorBlue)
	styleDim    = lipgloss.NewStyle().Foreground(colorDim)
	styleHeader = lipgloss.NewStyle().Foreground(colorHeader).Bold(true)
	styleBold   = lipgloss.NewStyle().Foreground(colorFg).Bold(true)
)

// Success renders a confirmation line
func Success(msg string) string {
	return styleGreen.Render("✔ " + msg)
}

// renderBox wraps content in a rounded border with a title
func renderBox(title, content string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	return box.Render(styleHeader.Render(title) + "\n\n" + content)
}

// renderTable aligns columns by visible width
func renderTable(headers []string, rows [][]string) string {
	const colGap = 2

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(headers) && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string, style *lipgloss.Style) {
		for i := range headers {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if style != nil {
				cell = style.Render(cell)
			}
			b.WriteString(cell)
			if i < len(headers)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)+colGap))
			}
		}
		b.WriteString("\n")
	}

	writeRow(headers, &styleHeader)
	for i, w := range widths {
		b.WriteString(styleDim.Render(strings.Repeat("─", w)))
		if i < len(widths)-1 {
			b.WriteString(strings.Repeat(" ", colGap))
		}
	}
	b.WriteString("\n")
	for _, row := range rows {
		writeRow(row, nil)
	}

	return strings.TrimRight(b.String(), "\n")
}

func dayNote(d worktime.DaySummary) string {
	switch {
	case d.IsMakeupDay:
		note := "调休上班"
		if d.HolidayName != "" {
			note += " (" + d.HolidayName + ")"
		}
		return styleYellow.Render(note)
	case d.IsRestDay && d.HolidayName != "":
		return styleBlue.Render(d.HolidayName)
	case d.IsRestDay:
		return styleDim.Render("休息")
	default:
		return ""
	}
}

func remainingStyled(remaining string) string {
	if remaining == "0.0" {
		return styleGreen.Render(remaining)
	}
	return styleRed.Render(remaining)
}

// FormatWeek renders a week summary as a day table followed by the logged items
func FormatWeek(s *worktime.WeekSummary) string {
	rows := make([][]string, 0, len(s.Days))
	for _, d := range s.Days {
		name := d.Name
		if d.IsToday {
			name = styleBold.Render(name + " •")
		}
		rows = append(rows, []string{
			name,
			d.DayDate,
			d.TotalHours,
			remainingStyled(d.RemainingHours),
			dayNote(d),
		})
	}

	var b strings.Builder
	b.WriteString(renderTable([]string{"DAY", "DATE", "LOGGED", "REMAINING", "NOTE"}, rows))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Logged %s / %d h, remaining %s h",
		styleBold.Render(s.TotalHours), s.TargetHours, remainingStyled(s.RemainingHours)))

	var items strings.Builder
	for _, d := range s.Days {
		for _, item := range d.Items {
			label := item.Title
			if label == "" {
				label = styleDim.Render("(untitled)")
			}
			items.WriteString(fmt.Sprintf("  %s %s  %.1fh  %s\n", d.DayDate, label, item.Hours, styleDim.Render(item.ID)))
			if item.Link != "" {
				items.WriteString("      " + styleDim.Render(item.Link) + "\n")
			}
		}
	}
	if items.Len() > 0 {
		b.WriteString("\n\n")
		b.WriteString(strings.TrimRight(items.String(), "\n"))
	}

	title := fmt.Sprintf("Week %d · %s", s.WeekNumber, s.DateRange)
	if s.IsCurrentWeek {
		title += " (this week)"
	}
	return renderBox(title, b.String())
}

// FormatWeekList renders one row per saved week
func FormatWeekList(weeks []*worktime.WeekSummary) string {
	if len(weeks) == 0 {
		return styleDim.Render("No saved weeks")
	}

	rows := make([][]string, 0, len(weeks))
	for _, w := range weeks {
		key := w.WeekKey
		if w.IsCurrentWeek {
			key = styleBold.Render(key)
		}
		rows = append(rows, []string{
			key,
			fmt.Sprintf("%d", w.WeekNumber),
			w.DateRange,
			w.TotalHours,
			fmt.Sprintf("%d", w.TargetHours),
			remainingStyled(w.RemainingHours),
		})
	}
	return renderTable([]string{"WEEK", "NO.", "RANGE", "LOGGED", "TARGET", "REMAINING"}, rows)
}

// FormatItemAdded confirms a new item
func FormatItemAdded(date string, item schedule.WorkItem) string {
	label := item.Title
	if label == "" {
		label = "item"
	}
	return Success(fmt.Sprintf("Logged %.1fh on %s: %s", item.Hours, date, label)) + "\n" + styleDim.Render("id "+item.ID)
}

// FormatItemUpdated confirms an edited item
func FormatItemUpdated(item schedule.WorkItem) string {
	return Success(fmt.Sprintf("Updated %s: %s %.1fh", item.ID, item.Title, item.Hours))
}

// FormatHolidays renders the classification of each date
func FormatHolidays(h *calendar.Holidays, dates []string) string {
	rows := make([][]string, 0, len(dates))
	for _, date := range dates {
		info := h.DayInfo(date)
		if info == nil {
			rows = append(rows, []string{date, styleRed.Render("invalid date"), ""})
			continue
		}

		name, _ := h.HolidayName(date)
		rows = append(rows, []string{date, info.Type.String(), name})
	}
	return renderTable([]string{"DATE", "TYPE", "NAME"}, rows)
}

// FormatLink renders the parsed title and validity of a task link
func FormatLink(link string) string {
	title, ok := worktime.ParseYunxiaoLink(link)
	if !ok {
		title = styleDim.Render("(none)")
	}

	valid := styleRed.Render("no")
	if worktime.IsValidYunxiaoLink(link) {
		valid = styleGreen.Render("yes")
	}

	return fmt.Sprintf("Title: %s\nValid: %s", title, valid)
}
