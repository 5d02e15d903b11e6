// Package util converts planner tasks into Google Calendar events.
package util

import (
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/harrisonrobin/dayplan/pkg/model"
)

const (
	// TaskIDProperty is the private extended property linking an event to its task.
	TaskIDProperty = "dayplan_task_id"

	// DefaultDuration applies when a task's end time is missing or not after its start.
	DefaultDuration = 30 * time.Minute
)

// ConvertTaskToCalendarEvent builds the event payload for task, interpreting its
// date and times in loc.
func ConvertTaskToCalendarEvent(task model.Task, loc *time.Location) (*calendar.Event, error) {
	if loc == nil {
		loc = time.Local
	}
	start, err := task.Start(loc)
	if err != nil {
		return nil, fmt.Errorf("task %s has no usable start: %w", task.ID, err)
	}
	end, err := task.End(loc)
	if err != nil || !end.After(start) {
		end = start.Add(DefaultDuration)
	}

	summary := task.Title
	if task.IsCompleted {
		summary = "✓ " + task.Title
	}

	event := &calendar.Event{
		Summary:     summary,
		Description: task.Description,
		ColorId:     task.Category.CalendarColorID(),
		Start:       eventTime(start, loc),
		End:         eventTime(end, loc),
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{
				TaskIDProperty: task.ID,
			},
		},
	}
	return event, nil
}

func eventTime(t time.Time, loc *time.Location) *calendar.EventDateTime {
	dt := &calendar.EventDateTime{DateTime: t.Format(time.RFC3339)}
	// "Local" is not an IANA zone name; the offset in DateTime is enough.
	if name := loc.String(); name != "Local" {
		dt.TimeZone = name
	}
	return dt
}

// TaskIDFromEvent returns the task id stored on an event created by ConvertTaskToCalendarEvent.
func TaskIDFromEvent(event *calendar.Event) (string, bool) {
	if event == nil || event.ExtendedProperties == nil {
		return "", false
	}
	id, ok := event.ExtendedProperties.Private[TaskIDProperty]
	return id, ok && id != ""
}

// EventNeedsUpdate returns a patch event if the fields the planner owns differ
// between the event on the calendar and the freshly converted target.
func EventNeedsUpdate(existingEvent *calendar.Event, targetEvent *calendar.Event) (*calendar.Event, error) {
	patch := &calendar.Event{}
	needsUpdate := false

	if existingEvent.Summary != targetEvent.Summary {
		patch.Summary = targetEvent.Summary
		needsUpdate = true
	}

	if existingEvent.Description != targetEvent.Description {
		patch.Description = targetEvent.Description
		needsUpdate = true
	}

	if existingEvent.ColorId != targetEvent.ColorId {
		patch.ColorId = targetEvent.ColorId
		needsUpdate = true
	}

	if existingEvent.Start == nil || existingEvent.End == nil {
		patch.Start = targetEvent.Start
		patch.End = targetEvent.End
		return patch, nil
	}
	existingStartTime, err := time.Parse(time.RFC3339, existingEvent.Start.DateTime)
	if err != nil {
		return nil, err
	}
	targetStartTime, err := time.Parse(time.RFC3339, targetEvent.Start.DateTime)
	if err != nil {
		return nil, err
	}
	existingEndTime, err := time.Parse(time.RFC3339, existingEvent.End.DateTime)
	if err != nil {
		return nil, err
	}
	targetEndTime, err := time.Parse(time.RFC3339, targetEvent.End.DateTime)
	if err != nil {
		return nil, err
	}

	if !existingStartTime.Equal(targetStartTime) || !existingEndTime.Equal(targetEndTime) {
		patch.Start = targetEvent.Start
		patch.End = targetEvent.End
		needsUpdate = true
	}

	if needsUpdate {
		return patch, nil
	}
	return nil, nil
}
