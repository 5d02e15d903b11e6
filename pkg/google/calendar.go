// Package google syncs planner tasks to Google Calendar.
package google

import (
	"context"

	"github.com/harrisonrobin/dayplan/pkg/model"
)

const primaryCalendar = "primary"

// Calendar is the calendar sync capability. Every operation degrades to a
// negative or empty result on failure; none of them return errors.
type Calendar interface {
	// IsAuthenticated reports whether an access token is held, loading a persisted one if needed.
	IsAuthenticated(ctx context.Context) bool
	// Authenticate runs the interactive authorization flow. False on cancel or failure.
	Authenticate(ctx context.Context) bool
	// CreateCalendarEvent creates an event for task on the primary calendar.
	CreateCalendarEvent(ctx context.Context, task model.Task) bool
	// SyncCalendarEvent patches the event previously created for task, creating one if none exists.
	SyncCalendarEvent(ctx context.Context, task model.Task) bool
	// DeleteCalendarEvent removes the event created for the task with taskID.
	DeleteCalendarEvent(ctx context.Context, taskID string) bool
	// RefreshAccessToken mints a new access token from the stored refresh token.
	RefreshAccessToken(ctx context.Context) bool
	// SignOut revokes the token where possible and always clears credential state.
	SignOut(ctx context.Context)
	// GetCalendarList lists the user's calendars, empty on any failure.
	GetCalendarList(ctx context.Context) []CalendarEntry
}

// CalendarEntry is one calendar of the signed-in user.
type CalendarEntry struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
	Primary bool   `json:"primary"`
}
