package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:          "dayplan",
		Short:        "Plan your day: dated tasks, reminders and Google Calendar sync",
		Version:      Version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(doneCmd())
	rootCmd.AddCommand(editCmd())
	rootCmd.AddCommand(rmCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(projectCmd())
	rootCmd.AddCommand(profileCmd())
	rootCmd.AddCommand(calendarCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
