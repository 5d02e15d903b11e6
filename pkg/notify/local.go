package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harrisonrobin/dayplan/pkg/logger"
	"github.com/harrisonrobin/dayplan/pkg/pending"
)

// Permission policies for Local.
const (
	PermissionGranted = "granted"
	PermissionDenied  = "denied"
	// PermissionPrompt defers to the Prompt callback on first request.
	PermissionPrompt = "prompt"
)

var ErrUnknownNotification = errors.New("unknown notification")

// Local is an in-process notification Service. Notifications fire from timers
// while the process is alive; the pending table lets a long-running process
// pick up notifications scheduled elsewhere.
type Local struct {
	Deliver func(Payload)
	// Prompt asks the user for permission when the policy is PermissionPrompt.
	Prompt func() bool

	policy  string
	granted bool
	table   *pending.Table
	now     func() time.Time
	l       logger.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
}

var _ Service = (*Local)(nil)

func NewLocal(table *pending.Table, policy string, l logger.Logger) *Local {
	return &Local{
		policy:  policy,
		granted: policy == PermissionGranted,
		table:   table,
		now:     time.Now,
		l:       l,
		timers:  make(map[string]*time.Timer),
	}
}

func (n *Local) PermissionGranted(context.Context) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.granted, nil
}

func (n *Local) RequestPermission(context.Context) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.policy == PermissionPrompt && n.Prompt != nil {
		n.granted = n.Prompt()
	}
	return n.granted, nil
}

func (n *Local) ScheduleOneShot(ctx context.Context, after time.Duration, p Payload) (string, error) {
	id := uuid.NewString()
	n.table.Put(id, pending.Entry{
		TaskID: p.TaskID,
		Title:  p.Title,
		Body:   p.Body,
		FireAt: n.now().Add(after),
	})
	if err := n.table.Save(ctx); err != nil {
		n.table.Remove(id)
		return "", err
	}
	n.arm(id, after, p)
	return id, nil
}

func (n *Local) Cancel(ctx context.Context, id string) error {
	n.mu.Lock()
	t, armed := n.timers[id]
	if armed {
		t.Stop()
		delete(n.timers, id)
	}
	n.mu.Unlock()

	if err := n.table.Load(ctx); err != nil {
		return err
	}
	if _, ok := n.table.Get(id); !ok {
		if armed {
			return nil
		}
		return ErrUnknownNotification
	}
	n.table.Remove(id)
	return n.table.Save(ctx)
}

// Sync reloads the pending table, drops notifications whose time has passed and
// arms the ones this process does not know about yet.
func (n *Local) Sync(ctx context.Context) error {
	if err := n.table.Load(ctx); err != nil {
		return err
	}
	now := n.now()
	for id := range n.table.Sweep(now) {
		n.disarm(id)
		n.l.Debug("dropping missed notification", "id", id)
	}
	if err := n.table.Save(ctx); err != nil {
		return err
	}

	entries := n.table.Snapshot()
	for id, e := range entries {
		n.mu.Lock()
		_, armed := n.timers[id]
		n.mu.Unlock()
		if armed {
			continue
		}
		n.arm(id, e.FireAt.Sub(now), Payload{TaskID: e.TaskID, Title: e.Title, Body: e.Body})
	}

	// cancelled by another process
	n.mu.Lock()
	for id, t := range n.timers {
		if _, ok := entries[id]; !ok {
			t.Stop()
			delete(n.timers, id)
		}
	}
	n.mu.Unlock()
	return nil
}

// Armed reports how many notifications have live timers in this process.
func (n *Local) Armed() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.timers)
}

// Stop disarms every timer without touching the pending table.
func (n *Local) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for id, t := range n.timers {
		t.Stop()
		delete(n.timers, id)
	}
}

func (n *Local) arm(id string, after time.Duration, p Payload) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.timers[id] = time.AfterFunc(after, func() { n.fire(id, p) })
}

func (n *Local) disarm(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if t, ok := n.timers[id]; ok {
		t.Stop()
		delete(n.timers, id)
	}
}

func (n *Local) fire(id string, p Payload) {
	n.mu.Lock()
	delete(n.timers, id)
	n.mu.Unlock()

	n.table.Remove(id)
	if err := n.table.Save(context.Background()); err != nil {
		n.l.Warn("could not remove fired notification", "id", id, "error", err)
	}

	n.l.Info("notification fired", "id", id, "task", p.TaskID)
	if n.Deliver != nil {
		n.Deliver(p)
	}
}
