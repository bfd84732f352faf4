package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pillar-dev/pillar"
	"github.com/pillar-dev/pillar/internal/config"
	"github.com/pillar-dev/pillar/internal/tokenstore"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// configPath is the --config flag, empty for the default location.
var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "pillar",
		Short: "Command-line client for the column blog API",
		Long: `Pillar is a command-line client for a column/post blog backend.

It keeps a local cache of columns and posts, a persisted login token,
and talks to the same HTTP API the web client uses. Repeated reads are
served from the cache; writes go straight to the server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (default ~/.pillar/config.yaml)")

	rootCmd.AddCommand(
		loginCmd(),
		logoutCmd(),
		whoamiCmd(),
		columnsCmd(),
		postsCmd(),
		postCmd(),
		mockCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// openStore builds a Store from the CLI config, with the SQLite-backed
// token store so logins survive between invocations.
func openStore(ctx context.Context) (*pillar.Store, config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, cfg, err
	}

	tokens, err := tokenstore.OpenSQLite(ctx, cfg.TokenDB)
	if err != nil {
		return nil, cfg, err
	}

	store, err := pillar.New(ctx,
		pillar.WithBaseURL(cfg.BaseURL),
		pillar.WithTokenStore(tokens),
	)
	if err != nil {
		return nil, cfg, err
	}
	return store, cfg, nil
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
