// Package notify schedules one-shot local notifications for task start times.
package notify

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/harrisonrobin/dayplan/pkg/logger"
	"github.com/harrisonrobin/dayplan/pkg/model"
)

const notificationTitle = "Upcoming Task"

// Payload is delivered when a notification fires.
type Payload struct {
	TaskID string `json:"taskId"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// Service is the platform notification facility.
type Service interface {
	PermissionGranted(ctx context.Context) (bool, error)
	RequestPermission(ctx context.Context) (bool, error)
	ScheduleOneShot(ctx context.Context, after time.Duration, p Payload) (string, error)
	Cancel(ctx context.Context, id string) error
}

// Scheduler decides whether a task gets a notification.
//
// Schedule never fails: any fault degrades to ok == false, which callers treat as
// "no notification". Cancel is best-effort and only logs failures.
type Scheduler interface {
	Schedule(ctx context.Context, task model.Task) (id string, ok bool)
	Cancel(ctx context.Context, id string)
}

type Option func(*scheduler)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *scheduler) { s.now = now }
}

// WithLocation sets the timezone task dates and times are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(s *scheduler) { s.loc = loc }
}

type scheduler struct {
	svc Service
	now func() time.Time
	loc *time.Location
	l   logger.Logger
}

var _ Scheduler = (*scheduler)(nil)

func NewScheduler(svc Service, l logger.Logger, opts ...Option) Scheduler {
	s := &scheduler{
		svc: svc,
		now: time.Now,
		loc: time.Local,
		l:   l,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *scheduler) Schedule(ctx context.Context, task model.Task) (string, bool) {
	start, err := task.Start(s.loc)
	if err != nil {
		s.l.Warn("not scheduling notification", "task", task.ID, "error", err)
		return "", false
	}

	seconds := int64(math.Floor(start.Sub(s.now()).Seconds()))
	if seconds <= 0 {
		s.l.Debug("task start already passed, no notification", "task", task.ID, "start", start)
		return "", false
	}

	granted, err := s.ensurePermission(ctx)
	if err != nil {
		s.l.Error("error checking notification permission", "error", err)
		return "", false
	}
	if !granted {
		s.l.Info("notification permission denied", "task", task.ID)
		return "", false
	}

	id, err := s.svc.ScheduleOneShot(ctx, time.Duration(seconds)*time.Second, Payload{
		TaskID: task.ID,
		Title:  notificationTitle,
		Body:   fmt.Sprintf("%s is about to start!", task.Title),
	})
	if err != nil {
		s.l.Error("error scheduling notification", "task", task.ID, "error", err)
		return "", false
	}
	s.l.Debug("scheduled notification", "task", task.ID, "id", id, "seconds", seconds)
	return id, true
}

func (s *scheduler) ensurePermission(ctx context.Context) (bool, error) {
	granted, err := s.svc.PermissionGranted(ctx)
	if err != nil {
		return false, err
	}
	if granted {
		return true, nil
	}
	return s.svc.RequestPermission(ctx)
}

func (s *scheduler) Cancel(ctx context.Context, id string) {
	if id == "" {
		return
	}
	if err := s.svc.Cancel(ctx, id); err != nil {
		s.l.Error("error canceling notification", "id", id, "error", err)
	}
}

// demoScheduler stands in on platforms without local notifications.
type demoScheduler struct {
	l logger.Logger
}

func NewDemoScheduler(l logger.Logger) Scheduler {
	return &demoScheduler{l: l}
}

func (d *demoScheduler) Schedule(_ context.Context, task model.Task) (string, bool) {
	d.l.Debug("demo mode: local notifications unavailable", "task", task.ID)
	return "", false
}

func (d *demoScheduler) Cancel(context.Context, string) {}
