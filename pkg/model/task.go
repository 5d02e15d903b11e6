package model

import (
	"strings"
	"time"

	"github.com/harrisonrobin/dayplan/pkg/dates"
)

// Task is a dated, timed reminder created by the user.
type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Date        string   `json:"date"`      // YYYY-MM-DD
	StartTime   string   `json:"startTime"` // HH:MM, device local
	EndTime     string   `json:"endTime"`   // HH:MM, expected after StartTime
	Category    Category `json:"category"`
	Priority    Priority `json:"priority"`
	IsCompleted bool     `json:"isCompleted"`
	// NotificationID links the task to its pending local notification, if any.
	NotificationID string `json:"notificationId,omitempty"`
}

// Start is the instant the task begins in loc.
func (t Task) Start(loc *time.Location) (time.Time, error) {
	return dates.Combine(t.Date, t.StartTime, loc)
}

// End is the instant the task ends in loc.
func (t Task) End(loc *time.Location) (time.Time, error) {
	return dates.Combine(t.Date, t.EndTime, loc)
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// ParsePriority accepts any casing of LOW, MEDIUM or HIGH.
func ParsePriority(s string) (Priority, bool) {
	switch p := Priority(strings.ToUpper(strings.TrimSpace(s))); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, true
	}
	return "", false
}

// Project is tracked independently of tasks.
type Project struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Color         string  `json:"color"`
	Progress      int     `json:"progress"`      // percent
	HoursProgress float64 `json:"hoursProgress"` // accumulated hours
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}
