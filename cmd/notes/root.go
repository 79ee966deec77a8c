package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	authservice "github.com/AlibekovAA/notes/internal/auth/service"
	"github.com/AlibekovAA/notes/internal/common/clock"
	"github.com/AlibekovAA/notes/internal/common/config"
	"github.com/AlibekovAA/notes/internal/common/logger"
	noteservice "github.com/AlibekovAA/notes/internal/notes/service"
	"github.com/AlibekovAA/notes/internal/sdk"
	"github.com/AlibekovAA/notes/internal/session"
	"github.com/AlibekovAA/notes/internal/ui/root"
	"github.com/AlibekovAA/notes/internal/ui/terminal"
)

var (
	configPath string
	serverURL  string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "notes",
	Short: "Keep short text notes on a notes backend",
	Long: `notes is an interactive terminal client for the notes backend.
Sign in or register, then list, write, edit and delete your notes.
The session is remembered between runs until you log out.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "path to the client config file")
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "backend URL, overrides the config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output")
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "notes.yaml"
	}
	return filepath.Join(home, ".config", "notes", "config.yaml")
}

func run(ctx context.Context) error {
	cfg, err := config.LoadClientConfig(configPath)
	if err != nil {
		return err
	}
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}

	out, err := logger.RotatingFile(cfg.LogDir)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	log := logger.NewWithWriter(out, "notes", cfg.LogLevel)
	if verbose {
		log.SetLevel("debug")
	}

	client := sdk.New(sdk.Config{
		BaseURL:  cfg.ServerURL,
		Timeout:  cfg.Timeout,
		Sessions: sdk.NewSessionFile(cfg.SessionFile),
	}, log)

	auth := authservice.NewAuthGateway(client, client, clock.NewRealClock(), log)
	notes := noteservice.NewNoteGateway(client, log)

	term := terminal.New(os.Stdin, os.Stdout, log)
	ctrl := root.New(session.NewObserver(client), auth, notes, term, log)
	ctrl.Start(ctx)
	defer ctrl.Stop()

	if err := client.Restore(ctx); err != nil {
		log.WithFields(ctx, logger.Fields{"action": "session_restore"}).Warnf("could not restore session: %v", err)
		fmt.Fprintf(os.Stderr, "could not reach %s: %v\n", cfg.ServerURL, err)
	}

	log.Infof("client started against %s", cfg.ServerURL)
	return term.Run(ctx, ctrl)
}
