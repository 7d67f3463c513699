package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/promptflow/internal/cli"
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Starts a conversation on stdin/stdout. Send any message to receive the first
question. Use --conversation to resume a conversation kept in a persistent store.`,
	RunE: runChat,
}

func addChatFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("conversation", "c", "", "Conversation ID (generated when empty)")
	cmd.Flags().StringP("user", "u", "", "User ID owning the profile (defaults to the conversation ID)")
	cmd.Flags().Bool("json", false, "Read and write JSON Lines instead of text")
	cmd.Flags().Bool("plain", false, "Disable the banner and markdown rendering")
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig(cmd)
	// Chat owns stdout; keep logs quiet unless asked.
	if !cmd.Flags().Changed("log-level") && os.Getenv("PROMPTFLOW_LOG_LEVEL") == "" {
		cfg.LogLevel = "warn"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := openApp(ctx, cfg)
	defer app.Close(context.Background())

	conversation, _ := cmd.Flags().GetString("conversation")
	user, _ := cmd.Flags().GetString("user")
	jsonMode, _ := cmd.Flags().GetBool("json")
	plain, _ := cmd.Flags().GetBool("plain")

	return cli.RunChat(ctx, app, cli.ChatOptions{
		ConversationID: conversation,
		UserID:         user,
		JSON:           jsonMode,
		Plain:          plain,
	})
}

func init() {
	rootCmd.AddCommand(chatCmd)
	addChatFlags(chatCmd)
}
