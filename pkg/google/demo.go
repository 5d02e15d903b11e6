package google

import (
	"context"

	"github.com/harrisonrobin/dayplan/pkg/auth"
	"github.com/harrisonrobin/dayplan/pkg/logger"
	"github.com/harrisonrobin/dayplan/pkg/model"
)

// DemoToken stands in for OAuth credentials in demo mode.
const DemoToken = "demo_token"

// Demo is the calendar for platforms without OAuth support. It never touches
// the network and only logs the events it would have created.
type Demo struct {
	session *auth.Session
	l       logger.Logger
}

var _ Calendar = (*Demo)(nil)

func NewDemo(session *auth.Session, l logger.Logger) *Demo {
	return &Demo{session: session, l: l}
}

func (d *Demo) IsAuthenticated(ctx context.Context) bool {
	token, err := d.session.AccessToken(ctx)
	if err != nil {
		d.l.Error("error loading stored tokens", "error", err)
		return false
	}
	return token != ""
}

func (d *Demo) Authenticate(ctx context.Context) bool {
	if err := d.session.Set(ctx, DemoToken, ""); err != nil {
		d.l.Warn("demo token held in memory only", "error", err)
	}
	d.l.Info("demo mode enabled, calendar events will be logged")
	return true
}

func (d *Demo) CreateCalendarEvent(ctx context.Context, task model.Task) bool {
	if !d.IsAuthenticated(ctx) {
		d.l.Info("user not authenticated with Google Calendar")
		return false
	}
	d.l.Info("demo: calendar event would be created",
		"title", task.Title,
		"date", task.Date,
		"startTime", task.StartTime,
		"endTime", task.EndTime,
	)
	return true
}

func (d *Demo) SyncCalendarEvent(ctx context.Context, task model.Task) bool {
	if !d.IsAuthenticated(ctx) {
		return false
	}
	d.l.Info("demo: calendar event would be updated", "title", task.Title, "date", task.Date)
	return true
}

func (d *Demo) DeleteCalendarEvent(ctx context.Context, taskID string) bool {
	if !d.IsAuthenticated(ctx) {
		return false
	}
	d.l.Info("demo: calendar event would be deleted", "task", taskID)
	return true
}

func (d *Demo) RefreshAccessToken(context.Context) bool {
	return true
}

func (d *Demo) SignOut(ctx context.Context) {
	if err := d.session.Clear(ctx); err != nil {
		d.l.Error("error clearing demo token", "error", err)
	}
}

func (d *Demo) GetCalendarList(ctx context.Context) []CalendarEntry {
	if !d.IsAuthenticated(ctx) {
		return []CalendarEntry{}
	}
	return []CalendarEntry{
		{ID: "primary", Summary: "Main Calendar", Primary: true},
		{ID: "work", Summary: "Work Calendar", Primary: false},
	}
}
