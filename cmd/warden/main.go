// Package main implements the warden CLI: the hook entry point the host
// invokes on every tool event, plus operator commands for the quality
// gate, the task backlog, session state, and process metrics.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/warden/internal/config"
	"github.com/fyrsmithlabs/warden/internal/gitinfo"
	"github.com/fyrsmithlabs/warden/internal/logging"
	"github.com/fyrsmithlabs/warden/internal/session"
)

var (
	// global flags
	flagConfig   string
	flagStateDir string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "warden",
	Short: "Admission control for agentic coding sessions",
	Long: `warden gates host tool events against workflow policy and keeps the
task backlog atomic. The hook subcommand is what the host's PreToolUse
hook invokes; the rest are operator commands over the same state.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.config/warden/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagStateDir, "state-dir", "", "state directory (default ~/.config/warden)")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the warden version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("warden %s\n", version)
	},
}

// loadConfig loads configuration for operator commands, honoring the
// global flags. Unlike the hook path, a load failure here is a hard
// error: an operator asking a direct question deserves the real answer.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithFile(flagConfig)
	if err != nil {
		return nil, err
	}
	applyStateFlag(cfg)
	return cfg, nil
}

// applyStateFlag overrides the state directory after load so the flag
// beats both the config file and WARDEN_STATE_DIR.
func applyStateFlag(cfg *config.Config) {
	if flagStateDir != "" {
		cfg.State.Dir = flagStateDir
	}
}

// newLogger builds the process logger. stdout carries protocol and
// report output only; logs go to the configured file or stderr.
func newLogger(cfg *config.Config) *logging.Logger {
	logger, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

// workspace resolves the directory session records are keyed on: the
// repository root when inside one, the working directory otherwise.
// The repo is nil outside a repository.
func workspace() (string, *gitinfo.Repo) {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	repo, err := gitinfo.Open(cwd)
	if err != nil {
		return cwd, nil
	}
	return repo.Root(), repo
}

func newSessionStore(cfg *config.Config, logger *logging.Logger) *session.Store {
	root, _ := workspace()
	return session.NewStore(cfg.State.Dir, root, cfg.Session, logger)
}

func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
