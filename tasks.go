package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/dayplan/pkg/dates"
	"github.com/harrisonrobin/dayplan/pkg/model"
	"github.com/harrisonrobin/dayplan/pkg/task"
)

// taskFlags binds the flags shared by add and edit.
func taskFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("desc", "d", "", "Task description")
	cmd.Flags().String("date", "", "Date as YYYY-MM-DD (default today)")
	cmd.Flags().StringP("start", "s", "", "Start time as HH:MM (default now)")
	cmd.Flags().StringP("end", "e", "", "End time as HH:MM (default start + 1h)")
	cmd.Flags().StringP("category", "c", "", "Category: "+categoryNames())
	cmd.Flags().StringP("priority", "p", "", "Priority: LOW, MEDIUM or HIGH")
}

func categoryNames() string {
	var names []string
	for _, c := range model.Categories() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

func inputFromFlags(cmd *cobra.Command, title string) (task.Input, error) {
	in := task.Input{Title: title}
	in.Description, _ = cmd.Flags().GetString("desc")
	in.Date, _ = cmd.Flags().GetString("date")
	in.StartTime, _ = cmd.Flags().GetString("start")
	in.EndTime, _ = cmd.Flags().GetString("end")

	if s, _ := cmd.Flags().GetString("category"); s != "" {
		c, ok := model.ParseCategory(s)
		if !ok {
			return in, fmt.Errorf("unknown category %q, want one of %s", s, categoryNames())
		}
		in.Category = c
	}
	if s, _ := cmd.Flags().GetString("priority"); s != "" {
		p, ok := model.ParsePriority(s)
		if !ok {
			return in, fmt.Errorf("unknown priority %q, want LOW, MEDIUM or HIGH", s)
		}
		in.Priority = p
	}
	return in, nil
}

// resolveID expands a unique id prefix as printed by list.
func resolveID(tasks []model.Task, prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", errors.New("task id is required")
	}
	var match string
	for _, t := range tasks {
		if t.ID == prefix {
			return t.ID, nil
		}
		if strings.HasPrefix(t.ID, prefix) {
			if match != "" {
				return "", fmt.Errorf("task id %q is ambiguous", prefix)
			}
			match = t.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", task.ErrNotFound, prefix)
	}
	return match, nil
}

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := inputFromFlags(cmd, strings.Join(args, " "))
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), func(a *app) error {
				t, err := a.tasks.CreateTask(cmd.Context(), in)
				if err != nil {
					if errors.Is(err, task.ErrEmptyTitle) {
						return errors.New("a task needs a title")
					}
					return err
				}
				fmt.Println(successStyle.Render("Task created"))
				fmt.Println(formatTask(t))
				if t.NotificationID != "" {
					fmt.Println(faintStyle.Render("Reminder set for " + dates.FormatTime(t.StartTime)))
				} else {
					fmt.Println(warnStyle.Render("No reminder scheduled for this task"))
				}
				return nil
			})
		},
	}
	taskFlags(cmd)
	return cmd
}

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks for a day or week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, _ := cmd.Flags().GetString("date")
			week, _ := cmd.Flags().GetBool("week")

			return withApp(cmd.Context(), func(a *app) error {
				now := time.Now()
				day := now
				if date != "" {
					parsed, err := time.ParseInLocation(dates.DateLayout, date, time.Local)
					if err != nil {
						return fmt.Errorf("invalid date %q: want YYYY-MM-DD", date)
					}
					day = parsed
				}

				if !week {
					printDay(dates.CurrentDate(day), a.tasks.TasksOn(dates.CurrentDate(day)), now)
					return nil
				}

				fmt.Printf("Week %d\n", dates.WeekNumber(day))
				byDay := make(map[string][]model.Task)
				for _, t := range a.tasks.TasksInWeek(day) {
					byDay[t.Date] = append(byDay[t.Date], t)
				}
				for _, d := range dates.WeekDays(day) {
					key := dates.CurrentDate(d)
					printDay(key, byDay[key], now)
				}
				return nil
			})
		},
	}
	cmd.Flags().String("date", "", "Day to list as YYYY-MM-DD (default today)")
	cmd.Flags().BoolP("week", "w", false, "List the whole week containing the day")
	return cmd
}

func doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done [id]",
		Short: "Toggle a task's completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				id, err := resolveID(a.tasks.Tasks(), args[0])
				if err != nil {
					return err
				}
				t, ok := a.tasks.ToggleComplete(cmd.Context(), id)
				if !ok {
					return fmt.Errorf("%w: %s", task.ErrNotFound, args[0])
				}
				fmt.Println(formatTask(t))
				return nil
			})
		},
	}
}

func editCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Change a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title, _ := cmd.Flags().GetString("title")
			in, err := inputFromFlags(cmd, title)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), func(a *app) error {
				id, err := resolveID(a.tasks.Tasks(), args[0])
				if err != nil {
					return err
				}
				t, err := a.tasks.UpdateTask(cmd.Context(), id, in)
				if err != nil {
					return err
				}
				fmt.Println(successStyle.Render("Task updated"))
				fmt.Println(formatTask(t))
				return nil
			})
		},
	}
	cmd.Flags().StringP("title", "t", "", "New title")
	taskFlags(cmd)
	return cmd
}

func rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				id, err := resolveID(a.tasks.Tasks(), args[0])
				if err != nil {
					return err
				}
				if err := a.tasks.DeleteTask(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Println(successStyle.Render("Task deleted"))
				return nil
			})
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show task counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				printStats(a.tasks.Stats(time.Now()))
				return nil
			})
		},
	}
}
