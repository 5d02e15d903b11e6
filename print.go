package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/harrisonrobin/dayplan/pkg/dates"
	"github.com/harrisonrobin/dayplan/pkg/model"
	"github.com/harrisonrobin/dayplan/pkg/notify"
	"github.com/harrisonrobin/dayplan/pkg/task"
)

const shortIDLen = 8

var (
	faintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Strikethrough(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	bannerStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#F15BB5")).
			Padding(0, 1)
)

var priorityMarks = map[model.Priority]string{
	model.PriorityHigh:   "!!!",
	model.PriorityMedium: "!! ",
	model.PriorityLow:    "!  ",
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

func categoryTag(c model.Category) string {
	info := c.Info()
	return lipgloss.NewStyle().Foreground(lipgloss.Color(info.Color)).Render("● " + info.Label)
}

func formatTask(t model.Task) string {
	check := "[ ]"
	title := t.Title
	if t.IsCompleted {
		check = "[x]"
		title = doneStyle.Render(title)
	}
	span := fmt.Sprintf("%s - %s", dates.FormatTime(t.StartTime), dates.FormatTime(t.EndTime))

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s %-19s %s %s  %s",
		faintStyle.Render(shortID(t.ID)),
		check,
		span,
		priorityMarks[t.Priority],
		title,
		categoryTag(t.Category),
	)
	if t.Description != "" {
		fmt.Fprintf(&sb, "\n%s", faintStyle.Render(strings.Repeat(" ", shortIDLen+5)+t.Description))
	}
	return sb.String()
}

func printDay(date string, tasks []model.Task, now time.Time) {
	fmt.Println(headerStyle.Render(dates.FormatDate(date, now)))
	if len(tasks) == 0 {
		fmt.Println(faintStyle.Render("  no tasks"))
		return
	}
	for _, t := range tasks {
		fmt.Println("  " + formatTask(t))
	}
}

func printStats(s task.Stats) {
	fmt.Println(headerStyle.Render("Tasks"))
	fmt.Printf("  %-12s %d\n", "Todo:", s.Todo)
	fmt.Printf("  %-12s %d\n", "In progress:", s.InProgress)
	fmt.Printf("  %-12s %d\n", "Done:", s.Done)
	fmt.Printf("  %-12s %d\n", "TOTAL:", s.Total)
}

func printNotification(p notify.Payload) {
	fmt.Println(bannerStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Render(p.Title),
		p.Body,
	)))
}
