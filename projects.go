package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/harrisonrobin/dayplan/pkg/model"
)

func projectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	add := &cobra.Command{
		Use:   "add [name]",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			color, _ := cmd.Flags().GetString("color")
			return withApp(cmd.Context(), func(a *app) error {
				p, err := a.projects.Add(cmd.Context(), args[0], color)
				if err != nil {
					return err
				}
				fmt.Printf("%s %s\n", successStyle.Render("Project created"), formatProject(p))
				return nil
			})
		},
	}
	add.Flags().String("color", "", "Hex color, e.g. #3A86FF")

	list := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				projects, err := a.projects.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(projects) == 0 {
					fmt.Println(faintStyle.Render("no projects"))
				}
				for _, p := range projects {
					fmt.Println(formatProject(p))
				}
				return nil
			})
		},
	}

	progress := &cobra.Command{
		Use:   "progress [id]",
		Short: "Record a project's progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			percent, _ := cmd.Flags().GetInt("percent")
			hours, _ := cmd.Flags().GetFloat64("hours")
			return withApp(cmd.Context(), func(a *app) error {
				p, err := a.projects.SetProgress(cmd.Context(), args[0], percent, hours)
				if err != nil {
					return err
				}
				fmt.Println(formatProject(p))
				return nil
			})
		},
	}
	progress.Flags().Int("percent", 0, "Completion percentage")
	progress.Flags().Float64("hours", 0, "Hours worked")

	rm := &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				if err := a.projects.Remove(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Println(successStyle.Render("Project deleted"))
				return nil
			})
		},
	}

	cmd.AddCommand(add, list, progress, rm)
	return cmd
}

func formatProject(p model.Project) string {
	name := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Color)).Render("● " + p.Name)
	return fmt.Sprintf("%s %s %3d%% %.1fh", faintStyle.Render(p.ID), name, p.Progress, p.HoursProgress)
}

func profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or change the local user profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				user, err := a.repo.GetUser(cmd.Context())
				if err != nil {
					return err
				}
				if user == nil {
					fmt.Println(faintStyle.Render("no profile, set one with: dayplan profile set --name NAME --email EMAIL"))
					return nil
				}
				fmt.Printf("%s <%s>\n", user.Name, user.Email)
				return nil
			})
		},
	}

	set := &cobra.Command{
		Use:   "set",
		Short: "Set the profile name and email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			return withApp(cmd.Context(), func(a *app) error {
				user, err := a.repo.GetUser(cmd.Context())
				if err != nil {
					return err
				}
				if user == nil {
					user = &model.User{ID: uuid.NewString()}
				}
				if name != "" {
					user.Name = name
				}
				if email != "" {
					user.Email = email
				}
				if err := a.repo.SaveUser(cmd.Context(), *user); err != nil {
					return err
				}
				fmt.Println(successStyle.Render("Profile saved"))
				return nil
			})
		},
	}
	set.Flags().String("name", "", "Display name")
	set.Flags().String("email", "", "Email address")

	cmd.AddCommand(set)
	return cmd
}
