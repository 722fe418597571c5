package ux

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/felixgeelhaar/taskplan/internal/plan"
)

var scheduleHeaders = []string{"#", "Task", "Start", "End", "Hours", "Due", "Status"}

// RenderSchedule renders a schedule as a table followed by totals and
// warnings.
func RenderSchedule(resp *plan.ScheduleResponse, s Styles) string {
	var b strings.Builder

	b.WriteString(s.Title.Render("Schedule"))
	b.WriteString("\n\n")

	if len(resp.ScheduledTasks) == 0 {
		b.WriteString(s.Muted.Render("No tasks scheduled"))
		b.WriteString("\n")
	} else {
		b.WriteString(scheduleTable(resp, s))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s → %s\n", s.Muted.Render("Project:"), resp.ProjectStartDate, resp.ProjectEndDate)
	fmt.Fprintf(&b, "%s %d days, %s hours\n", s.Muted.Render("Total:  "),
		resp.TotalEstimatedDays, formatHours(resp.TotalEstimatedHours))

	if len(resp.Warnings) > 0 {
		b.WriteString("\n")
		b.WriteString(s.Warning.Render(fmt.Sprintf("Warnings (%d)", len(resp.Warnings))))
		for _, w := range resp.Warnings {
			b.WriteString("\n  - ")
			b.WriteString(w)
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func scheduleTable(resp *plan.ScheduleResponse, s Styles) string {
	rows := make([][]string, 0, len(resp.ScheduledTasks))
	for _, st := range resp.ScheduledTasks {
		due := "-"
		if st.DueDate != nil {
			due = st.DueDate.String()
		}
		status := "ok"
		if st.HasConflict {
			status = "conflict"
		}
		rows = append(rows, []string{
			strconv.Itoa(st.Order),
			st.Title,
			st.SuggestedStartDate.String(),
			st.SuggestedEndDate.String(),
			formatHours(st.EstimatedHours),
			due,
			status,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(s.Border)).
		Headers(scheduleHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.Header
			}
			if col == len(scheduleHeaders)-1 && row >= 0 && row < len(rows) {
				if rows[row][col] == "conflict" {
					return s.Cell.Inherit(s.Error)
				}
				return s.Cell.Inherit(s.Success)
			}
			return s.Cell
		})

	return t.String()
}

// RenderValidation renders the outcome of a dependency check.
func RenderValidation(resp *plan.ValidationResponse, s Styles) string {
	var b strings.Builder

	if resp.Valid {
		b.WriteString(s.Success.Render("✓ " + resp.Message))
		if len(resp.RecommendedOrder) > 0 {
			b.WriteString("\n\n")
			b.WriteString(s.Muted.Render("Recommended order:"))
			for i, title := range resp.RecommendedOrder {
				fmt.Fprintf(&b, "\n  %d. %s", i+1, title)
			}
		}
		return b.String()
	}

	b.WriteString(s.Error.Render("✗ " + resp.Message))
	if len(resp.CyclePath) > 0 {
		b.WriteString("\n\n")
		b.WriteString(s.Muted.Render("Cycle: "))
		b.WriteString(strings.Join(resp.CyclePath, " → "))
	}
	return b.String()
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}
