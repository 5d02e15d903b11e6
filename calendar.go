package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func calendarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Google Calendar sync",
	}

	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with Google Calendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				cal, err := a.requireCalendar()
				if err != nil {
					return err
				}
				if !cal.Authenticate(cmd.Context()) {
					return errors.New("authentication failed, see the log for details")
				}
				fmt.Println(successStyle.Render("Authentication successful!"))
				if !a.cfg.CalendarSync {
					fmt.Println(faintStyle.Render("Turn on sync with: dayplan config set calendar_sync true"))
				}
				return nil
			})
		},
	}

	signOut := &cobra.Command{
		Use:   "signout",
		Short: "Sign out and forget stored tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				cal, err := a.requireCalendar()
				if err != nil {
					return err
				}
				cal.SignOut(cmd.Context())
				fmt.Println("Signed out of Google Calendar")
				return nil
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List your calendars",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				cal, err := a.requireCalendar()
				if err != nil {
					return err
				}
				entries := cal.GetCalendarList(cmd.Context())
				if len(entries) == 0 {
					fmt.Println(faintStyle.Render("no calendars (are you signed in?)"))
				}
				for _, e := range entries {
					marker := " "
					if e.Primary {
						marker = "*"
					}
					fmt.Printf("%s %s %s\n", marker, e.Summary, faintStyle.Render(e.ID))
				}
				return nil
			})
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show calendar sync status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				mode := "Google"
				if a.cfg.Demo {
					mode = "demo (events are only logged)"
				}
				fmt.Printf("  %-15s %s\n", "Mode:", mode)
				fmt.Printf("  %-15s %v\n", "Sync on create:", a.cfg.CalendarSync)

				cal, err := a.requireCalendar()
				if err != nil {
					fmt.Printf("  %-15s %s\n", "Status:", warnStyle.Render(err.Error()))
					return nil
				}
				state := warnStyle.Render("not signed in")
				if cal.IsAuthenticated(cmd.Context()) {
					state = successStyle.Render("signed in")
				}
				fmt.Printf("  %-15s %s\n", "Status:", state)
				return nil
			})
		},
	}

	cmd.AddCommand(authCmd, signOut, list, status)
	return cmd
}
