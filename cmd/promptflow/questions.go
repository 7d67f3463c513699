package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aretw0/promptflow/internal/cli"
)

// questionsCmd represents the questions command
var questionsCmd = &cobra.Command{
	Use:     "questions",
	Aliases: []string{"graph"},
	Short:   "Show the question sequence",
	Long: `Prints the configured question table. With --mermaid it outputs a Mermaid
diagram (graph TD) instead; --conversation highlights its progress.`,
	Run: func(cmd *cobra.Command, args []string) {
		mermaid, _ := cmd.Flags().GetBool("mermaid")
		conversation, _ := cmd.Flags().GetString("conversation")
		user, _ := cmd.Flags().GetString("user")

		withApp(cmd, func(ctx context.Context, app *cli.App) error {
			if mermaid || conversation != "" {
				return cli.WriteGraph(ctx, os.Stdout, app, conversation, user)
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tID\tKIND\tPROMPT")
			for i, step := range app.Engine.Sequence().Steps() {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, step.Question, step.Kind, step.Prompt)
			}
			return tw.Flush()
		})
	},
}

func init() {
	rootCmd.AddCommand(questionsCmd)
	questionsCmd.Flags().Bool("mermaid", false, "Output a Mermaid flowchart")
	questionsCmd.Flags().String("conversation", "", "Highlight the progress of this conversation")
	questionsCmd.Flags().String("user", "", "Profile used for answered questions (defaults to the conversation ID)")
}
