package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stay running and show task reminders as they come due",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			interval, _ := cmd.Flags().GetDuration("interval")
			if interval <= 0 {
				return fmt.Errorf("invalid interval %s", interval)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return withApp(ctx, func(a *app) error {
				if a.local == nil {
					return errors.New("reminders are not available in demo mode")
				}
				defer a.local.Stop()
				return watch(ctx, a, interval)
			})
		},
	}
	cmd.Flags().Duration("interval", 30*time.Second, "How often to pick up reminders scheduled by other commands")
	return cmd
}

func watch(ctx context.Context, a *app, interval time.Duration) error {
	if err := a.local.Sync(ctx); err != nil {
		return fmt.Errorf("failed to load pending reminders: %w", err)
	}
	fmt.Printf("Watching %d pending reminders, press Ctrl+C to stop\n", a.local.Armed())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := a.local.Sync(ctx); err != nil {
				a.l.Error("error syncing pending reminders", "error", err)
			}
		}
	}
}
