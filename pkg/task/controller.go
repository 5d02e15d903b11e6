// Package task owns the in-memory task collection and its lifecycle: creation,
// completion, edits and deletion, with notifications and calendar sync as side effects.
package task

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harrisonrobin/dayplan/pkg/dates"
	"github.com/harrisonrobin/dayplan/pkg/google"
	"github.com/harrisonrobin/dayplan/pkg/logger"
	"github.com/harrisonrobin/dayplan/pkg/model"
	"github.com/harrisonrobin/dayplan/pkg/notify"
	"github.com/harrisonrobin/dayplan/pkg/storage"
)

const (
	defaultLength = time.Hour
	lastMinute    = "23:59"
)

var (
	ErrEmptyTitle      = errors.New("task title is required")
	ErrNotFound        = errors.New("task not found")
	ErrInvalidSchedule = errors.New("invalid task date or time")
)

// Input describes a task to create or the fields to change on an existing one.
// Empty fields take defaults on create and keep the current value on update.
type Input struct {
	Title       string
	Description string
	Date        string // YYYY-MM-DD
	StartTime   string // HH:MM
	EndTime     string // HH:MM
	Category    model.Category
	Priority    model.Priority
}

// Stats counts tasks by progress.
type Stats struct {
	Total      int
	Todo       int
	InProgress int
	Done       int
}

type Option func(*Controller)

// WithCalendar enables calendar sync through cal.
func WithCalendar(cal google.Calendar) Option {
	return func(c *Controller) { c.calendar = cal }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithIDGenerator replaces the uuid based task id generator.
func WithIDGenerator(newID func() string) Option {
	return func(c *Controller) { c.newID = newID }
}

func WithLocation(loc *time.Location) Option {
	return func(c *Controller) { c.loc = loc }
}

// Controller serialises every mutation of the task collection behind one mutex.
type Controller struct {
	repo     *storage.Repo
	notifier notify.Scheduler
	calendar google.Calendar
	l        logger.Logger
	now      func() time.Time
	newID    func() string
	loc      *time.Location

	mu    sync.Mutex
	tasks []model.Task
}

func NewController(repo *storage.Repo, notifier notify.Scheduler, l logger.Logger, opts ...Option) *Controller {
	c := &Controller{
		repo:     repo,
		notifier: notifier,
		l:        l,
		now:      time.Now,
		newID:    uuid.NewString,
		loc:      time.Local,
		tasks:    []model.Task{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load replaces the in-memory collection with the persisted one. A read
// failure leaves the collection empty.
func (c *Controller) Load(ctx context.Context) {
	tasks, err := c.repo.GetTasks(ctx)
	if err != nil {
		c.l.Error("error loading tasks", "error", err)
		tasks = []model.Task{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = tasks
}

func (c *Controller) CreateTask(ctx context.Context, in Input) (model.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return model.Task{}, ErrEmptyTitle
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now().In(c.loc)
	task := model.Task{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Date:        coalesce(in.Date, dates.CurrentDate(now)),
		StartTime:   coalesce(in.StartTime, dates.CurrentTime(now)),
		Category:    model.Category(coalesce(string(in.Category), string(model.CategoryPersonal))),
		Priority:    model.Priority(coalesce(string(in.Priority), string(model.PriorityMedium))),
	}
	start, err := task.Start(c.loc)
	if err != nil {
		return model.Task{}, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	task.EndTime = coalesce(in.EndTime, defaultEnd(task.Date, start))
	if _, err := task.End(c.loc); err != nil {
		return model.Task{}, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	task.ID = c.allocateID()

	c.tasks = append(c.tasks, task)
	c.persist(ctx)

	if id, ok := c.notifier.Schedule(ctx, task); ok {
		task.NotificationID = id
		c.tasks[len(c.tasks)-1] = task
		c.persist(ctx)
	}

	if c.calendar != nil && !c.calendar.CreateCalendarEvent(ctx, task) {
		c.l.Info("task not synced to calendar", "task", task.ID)
	}

	c.l.Debug("created task", "task", task.ID, "date", task.Date, "start", task.StartTime)
	return task, nil
}

// ToggleComplete flips the completion flag of the task with id. Completing a
// task cancels its notification, reopening it schedules a new one. It reports
// false and changes nothing when no task has that id.
func (c *Controller) ToggleComplete(ctx context.Context, id string) (model.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		c.l.Debug("toggle of unknown task ignored", "task", id)
		return model.Task{}, false
	}

	task := &c.tasks[i]
	task.IsCompleted = !task.IsCompleted
	if task.IsCompleted {
		c.cancelNotification(ctx, task)
	} else {
		c.scheduleNotification(ctx, task)
	}
	c.persist(ctx)

	if c.calendar != nil && !c.calendar.SyncCalendarEvent(ctx, *task) {
		c.l.Info("task completion not synced to calendar", "task", task.ID)
	}
	return *task, true
}

// UpdateTask applies the non-empty fields of in to the task with id and
// reschedules its notification.
func (c *Controller) UpdateTask(ctx context.Context, id string, in Input) (model.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return model.Task{}, ErrNotFound
	}

	updated := c.tasks[i]
	if title := strings.TrimSpace(in.Title); title != "" {
		updated.Title = title
	}
	if in.Description != "" {
		updated.Description = strings.TrimSpace(in.Description)
	}
	updated.Date = coalesce(in.Date, updated.Date)
	updated.StartTime = coalesce(in.StartTime, updated.StartTime)
	updated.EndTime = coalesce(in.EndTime, updated.EndTime)
	updated.Category = model.Category(coalesce(string(in.Category), string(updated.Category)))
	updated.Priority = model.Priority(coalesce(string(in.Priority), string(updated.Priority)))

	if _, err := updated.Start(c.loc); err != nil {
		return model.Task{}, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	if _, err := updated.End(c.loc); err != nil {
		return model.Task{}, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}

	c.cancelNotification(ctx, &updated)
	if !updated.IsCompleted {
		c.scheduleNotification(ctx, &updated)
	}
	c.tasks[i] = updated
	c.persist(ctx)

	if c.calendar != nil && !c.calendar.SyncCalendarEvent(ctx, updated) {
		c.l.Info("task update not synced to calendar", "task", updated.ID)
	}
	return updated, nil
}

// DeleteTask removes the task with id, cancels its notification and deletes
// its calendar event when sync is enabled.
func (c *Controller) DeleteTask(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	task := c.tasks[i]
	c.cancelNotification(ctx, &task)
	c.tasks = slices.Delete(c.tasks, i, i+1)
	c.persist(ctx)

	if c.calendar != nil && !c.calendar.DeleteCalendarEvent(ctx, task.ID) {
		c.l.Info("calendar event not deleted", "task", task.ID)
	}
	return nil
}

// Get returns the task with id.
func (c *Controller) Get(id string) (model.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(id); i >= 0 {
		return c.tasks[i], true
	}
	return model.Task{}, false
}

// Tasks returns a copy of the collection in creation order.
func (c *Controller) Tasks() []model.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.tasks)
}

// TasksOn returns the tasks dated date, ordered by start time.
func (c *Controller) TasksOn(date string) []model.Task {
	return c.filter(func(t model.Task) bool { return t.Date == date })
}

// TasksInWeek returns the tasks in the Sunday-started week containing t,
// ordered by date and start time.
func (c *Controller) TasksInWeek(t time.Time) []model.Task {
	week := make(map[string]bool, 7)
	for _, day := range dates.WeekDays(t.In(c.loc)) {
		week[dates.CurrentDate(day)] = true
	}
	return c.filter(func(task model.Task) bool { return week[task.Date] })
}

// Stats counts tasks relative to now: done, started but not done, and not yet started.
func (c *Controller) Stats(now time.Time) Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{Total: len(c.tasks)}
	for _, task := range c.tasks {
		switch {
		case task.IsCompleted:
			s.Done++
		case c.started(task, now):
			s.InProgress++
		default:
			s.Todo++
		}
	}
	return s
}

func (c *Controller) started(task model.Task, now time.Time) bool {
	start, err := task.Start(c.loc)
	return err == nil && !start.After(now)
}

func (c *Controller) filter(keep func(model.Task) bool) []model.Task {
	c.mu.Lock()
	out := []model.Task{}
	for _, task := range c.tasks {
		if keep(task) {
			out = append(out, task)
		}
	}
	c.mu.Unlock()

	slices.SortStableFunc(out, func(a, b model.Task) int {
		if n := strings.Compare(a.Date, b.Date); n != 0 {
			return n
		}
		return strings.Compare(a.StartTime, b.StartTime)
	})
	return out
}

func (c *Controller) scheduleNotification(ctx context.Context, task *model.Task) {
	if id, ok := c.notifier.Schedule(ctx, *task); ok {
		task.NotificationID = id
	}
}

func (c *Controller) cancelNotification(ctx context.Context, task *model.Task) {
	if task.NotificationID == "" {
		return
	}
	c.notifier.Cancel(ctx, task.NotificationID)
	task.NotificationID = ""
}

// persist writes the whole collection. Failures are logged; the in-memory
// collection stays authoritative for this session.
func (c *Controller) persist(ctx context.Context) {
	if err := c.repo.SaveTasks(ctx, c.tasks); err != nil {
		c.l.Error("error saving tasks", "error", err)
	}
}

// allocateID returns an id not used by any task in the collection.
func (c *Controller) allocateID() string {
	for {
		id := c.newID()
		if id != "" && c.indexOf(id) < 0 {
			return id
		}
		c.l.Warn("task id collision, regenerating", "id", id)
	}
}

func (c *Controller) indexOf(id string) int {
	return slices.IndexFunc(c.tasks, func(t model.Task) bool { return t.ID == id })
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// defaultEnd is start plus defaultLength, kept on the task's own date.
func defaultEnd(date string, start time.Time) string {
	end := start.Add(defaultLength)
	if dates.CurrentDate(end) != date {
		return lastMinute
	}
	return dates.TimeOf(end)
}
