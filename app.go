package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrisonrobin/dayplan/pkg/auth"
	"github.com/harrisonrobin/dayplan/pkg/colors"
	"github.com/harrisonrobin/dayplan/pkg/config"
	"github.com/harrisonrobin/dayplan/pkg/google"
	"github.com/harrisonrobin/dayplan/pkg/index"
	"github.com/harrisonrobin/dayplan/pkg/logger"
	"github.com/harrisonrobin/dayplan/pkg/notify"
	"github.com/harrisonrobin/dayplan/pkg/pending"
	"github.com/harrisonrobin/dayplan/pkg/storage"
	"github.com/harrisonrobin/dayplan/pkg/task"
)

// app holds the collaborators shared by every command.
type app struct {
	cfg      *config.Config
	l        logger.Logger
	store    storage.Store
	repo     *storage.Repo
	session  *auth.Session
	calendar google.Calendar
	// calendarErr explains why calendar is nil.
	calendarErr error
	local       *notify.Local
	tasks       *task.Controller
	projects    *task.Projects

	closers []io.Closer
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	a := &app{cfg: cfg}
	if err := a.openLogger(); err != nil {
		return nil, err
	}
	if err := a.openStore(); err != nil {
		a.Close()
		return nil, err
	}
	a.repo = storage.NewRepo(a.store)
	palette, err := colors.NewCache(ctx, a.store)
	if err != nil {
		a.l.Warn("project colors unavailable", "error", err)
	}
	a.projects = task.NewProjects(a.repo, palette)
	// refresh tokens are only kept where a real OAuth flow issued them
	a.session = auth.NewSession(a.store, !cfg.Demo)

	var notifier notify.Scheduler
	if cfg.Demo {
		notifier = notify.NewDemoScheduler(a.l)
		a.calendar = google.NewDemo(a.session, a.l)
	} else {
		table, err := pending.NewTable(ctx, a.store)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to load pending notifications: %w", err)
		}
		a.local = notify.NewLocal(table, cfg.Notifications, a.l)
		a.local.Deliver = printNotification
		a.local.Prompt = func() bool {
			granted := promptPermission()
			a.rememberPermission(granted)
			return granted
		}
		notifier = notify.NewScheduler(a.local, a.l)
		a.calendar, a.calendarErr = a.newCalendarClient(ctx)
		if a.calendarErr != nil {
			a.l.Warn("calendar sync unavailable", "error", a.calendarErr)
		}
	}

	var opts []task.Option
	if cfg.CalendarSync && a.calendar != nil {
		opts = append(opts, task.WithCalendar(a.calendar))
	}
	a.tasks = task.NewController(a.repo, notifier, a.l, opts...)
	a.tasks.Load(ctx)
	return a, nil
}

func (a *app) openLogger() error {
	if err := os.MkdirAll(filepath.Dir(a.cfg.LogPath), 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(a.cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	a.closers = append(a.closers, f)
	a.l = logger.New(logger.Options{Writer: f, Level: a.cfg.LogLevel, Prefix: "dayplan"})
	return nil
}

func (a *app) openStore() error {
	switch a.cfg.Store {
	case config.StoreMemory:
		a.store = storage.NewMemory()
	case config.StoreFile:
		s, err := storage.OpenFile(filepath.Join(a.cfg.DataDir, "dayplan.json"))
		if err != nil {
			return fmt.Errorf("failed to open file store: %w", err)
		}
		a.store = s
	default:
		s, err := storage.OpenSQLite(filepath.Join(a.cfg.DataDir, "dayplan.db"))
		if err != nil {
			return fmt.Errorf("failed to open sqlite store: %w", err)
		}
		a.store = s
		a.closers = append(a.closers, s)
	}
	return nil
}

func (a *app) newCalendarClient(ctx context.Context) (google.Calendar, error) {
	oauthCfg, err := auth.LoadConfig(a.cfg.ClientSecrets, auth.Google, a.cfg.AuthPort, a.l)
	if err != nil {
		return nil, err
	}
	idx, err := index.NewEventIndex(ctx, a.store)
	if err != nil {
		return nil, fmt.Errorf("failed to load event index: %w", err)
	}
	codes := auth.NewLoopback(a.cfg.AuthPort, a.l)
	return google.NewClient(oauthCfg, auth.Google, a.session, codes, a.l, google.WithIndex(idx)), nil
}

// requireCalendar returns the calendar or the reason it is unavailable.
func (a *app) requireCalendar() (google.Calendar, error) {
	if a.calendar != nil {
		return a.calendar, nil
	}
	if a.calendarErr != nil {
		return nil, fmt.Errorf("calendar unavailable: %w", a.calendarErr)
	}
	return nil, errors.New("calendar unavailable")
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i].Close()
	}
}

// withApp runs fn with a fully wired app and closes it afterwards.
func withApp(ctx context.Context, fn func(*app) error) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// rememberPermission stores the user's answer so later runs do not ask again.
func (a *app) rememberPermission(granted bool) {
	policy := notify.PermissionDenied
	if granted {
		policy = notify.PermissionGranted
	}
	fileCfg, err := config.LoadFile()
	if err != nil {
		a.l.Warn("could not read config to store notification permission", "error", err)
		return
	}
	fileCfg.Notifications = policy
	if err := config.Save(fileCfg); err != nil {
		a.l.Warn("could not store notification permission", "error", err)
	}
}

func promptPermission() bool {
	fmt.Print("Allow dayplan to show task reminders? [y/N] ")
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
