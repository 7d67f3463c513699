package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/promptflow/internal/cli"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage persisted conversations",
	Long:  `List, inspect, and remove conversations kept in the configured store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all active sessions",
	Run: func(cmd *cobra.Command, args []string) {
		withApp(cmd, func(ctx context.Context, app *cli.App) error {
			return cli.ListSessions(ctx, os.Stdout, app.Sessions)
		})
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <conversation-id>",
	Short: "Inspect the state of a conversation",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		user, _ := cmd.Flags().GetString("user")
		if user == "" {
			user = args[0]
		}
		withApp(cmd, func(ctx context.Context, app *cli.App) error {
			return cli.InspectSession(ctx, os.Stdout, app.Sessions, args[0], user)
		})
	},
}

var sessionRmCmd = &cobra.Command{
	Use:     "rm <conversation-id>...",
	Aliases: []string{"delete"},
	Short:   "Remove one or more conversations",
	Args:    cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		profiles, _ := cmd.Flags().GetBool("profiles")
		withApp(cmd, func(ctx context.Context, app *cli.App) error {
			return cli.RemoveSessions(ctx, os.Stdout, app.Sessions, args, profiles)
		})
	},
}

// withApp runs fn against a wired App and exits non-zero on error.
func withApp(cmd *cobra.Command, fn func(context.Context, *cli.App) error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	app := openApp(ctx, mustLoadConfig(cmd))
	err := fn(ctx, app)
	_ = app.Close(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)

	sessionInspectCmd.Flags().String("user", "", "Include this user's profile (defaults to the conversation ID)")
	sessionRmCmd.Flags().Bool("profiles", false, "Also delete the profile stored under each ID")
}
