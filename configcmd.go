package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/dayplan/pkg/config"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
	}

	set := &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Store a setting in config.json",
		Long:  "Store a setting in config.json. DAYPLAN_* environment variables and dayplan.env still take precedence.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile()
			if err != nil {
				return err
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := config.Save(cfg); err != nil {
				return fmt.Errorf("error saving config: %w", err)
			}
			fmt.Printf("%s set to: %s\n", args[0], args[1])
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			path, err := config.GetConfigPath()
			if err != nil {
				return err
			}
			values := map[string]string{
				"data_dir":       cfg.DataDir,
				"store":          cfg.Store,
				"log_level":      cfg.LogLevel,
				"log_path":       cfg.LogPath,
				"demo":           fmt.Sprint(cfg.Demo),
				"calendar_sync":  fmt.Sprint(cfg.CalendarSync),
				"client_secrets": cfg.ClientSecrets,
				"auth_port":      cfg.AuthPort,
				"notifications":  cfg.Notifications,
			}
			fmt.Println(faintStyle.Render(path))
			for _, key := range config.Keys {
				fmt.Printf("  %-15s %s\n", key, values[key])
			}
			return nil
		},
	}

	cmd.AddCommand(set, show)
	return cmd
}
