package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/promptflow/internal/cli"
	"github.com/aretw0/promptflow/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "promptflow",
	Short: "promptflow asks a fixed sequence of questions and checks the answers",
	Long: `promptflow runs a slot-filling conversation: it asks for your name and a
series of arithmetic questions, validates every answer and remembers it.

Without a subcommand it starts an interactive chat.`,
	SilenceUsage: true,
	RunE:         runChat,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	pf := rootCmd.PersistentFlags()
	pf.String("env-file", ".env", "Dotenv file with PROMPTFLOW_* settings")
	pf.String("store", "", "State store: memory, file, redis, sqlite or postgres")
	pf.String("store-dir", "", "Directory for the file and sqlite stores")
	pf.String("redis-addr", "", "Redis address")
	pf.String("sql-dsn", "", "Database DSN for the postgres store")
	pf.String("flow", "", "YAML file overriding the question table")
	pf.String("locale", "", "Locale used to recognize numbers")
	pf.String("log-level", "", "Log level: debug, info, warn or error")
	pf.String("log-format", "", "Log format: text or json")
	pf.String("trace-output", "", "Write OpenTelemetry spans to stdout, stderr or a file")

	addChatFlags(rootCmd)
}

// flagFields maps persistent flags onto config keys.
var flagFields = map[string]string{
	"store":        "store",
	"store-dir":    "store_dir",
	"redis-addr":   "redis_addr",
	"sql-dsn":      "sql_dsn",
	"flow":         "flow_file",
	"locale":       "locale",
	"log-level":    "log_level",
	"log-format":   "log_format",
	"trace-output": "trace_output",
}

// loadConfig reads the dotenv file and environment, then applies explicit flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(envFile)
	if err != nil {
		return cfg, err
	}

	values := make(map[string]any)
	for flag, field := range flagFields {
		if cmd.Flags().Changed(flag) {
			v, _ := cmd.Flags().GetString(flag)
			values[field] = v
		}
	}
	if len(values) == 0 {
		return cfg, nil
	}
	return cfg.Merge(values)
}

// openApp wires an App from cfg, exiting on failure. The caller must Close it.
func openApp(ctx context.Context, cfg config.Config) *cli.App {
	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing promptflow: %v\n", err)
		os.Exit(1)
	}
	return app
}

// mustLoadConfig is loadConfig for commands that cannot continue without one.
func mustLoadConfig(cmd *cobra.Command) config.Config {
	cfg, err := loadConfig(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
