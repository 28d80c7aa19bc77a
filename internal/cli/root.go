// Package cli implements the babylog CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rcliao/babylog/internal/config"
	"github.com/rcliao/babylog/internal/logger"
	"github.com/rcliao/babylog/internal/model"
	"github.com/rcliao/babylog/internal/store"
)

var (
	dbPath      string
	configPath  string
	formatFlag  string
	profileFlag string

	cfg *config.Config
	log *slog.Logger
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "babylog",
	Short: "Track feeding, sleep, diapers, medicine and growth",
	Long:  "A small baby-care log. Records feedings, sleep, diapers, medicine and growth per baby profile in a local SQLite file.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		loadConfig()
	},
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $BABYLOG_DB_PATH or ~/.babylog/babylog.db)")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ~/.babylog/config.yaml if present)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "text", "Output format: json or text")
	RootCmd.PersistentFlags().StringVarP(&profileFlag, "profile", "p", "", "Profile ID, ID prefix or name (default: active profile)")
}

func loadConfig() {
	path := configPath
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, ".babylog", "config.yaml")
		}
	}
	c, err := config.Load(path)
	if err != nil {
		exitErr("load config", err)
	}
	cfg = c
	log = logger.New(os.Stderr, cfg.App.Env, cfg.App.LogLevel)
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if cfg != nil && cfg.DB.Path != "" {
		return cfg.DB.Path
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".babylog", "babylog.db")
}

func openStore(opts ...store.Option) (*store.Store, error) {
	b, err := store.NewSQLiteBackend(getDBPath())
	if err != nil {
		return nil, err
	}
	if log != nil {
		opts = append([]store.Option{store.WithLogger(log)}, opts...)
	}
	return store.New(b, opts...), nil
}

// currentProfile resolves --profile, falling back to the active profile.
func currentProfile(cmd *cobra.Command, s *store.Store) *model.Profile {
	p, err := s.ResolveProfile(cmd.Context(), profileFlag)
	if err != nil {
		if profileFlag == "" {
			exitErr("profile", fmt.Errorf("%w (create one with `babylog profile add <name>`)", err))
		}
		exitErr("profile", err)
	}
	return p
}

// output writes v as JSON, or calls text when --format is text.
func output(cmd *cobra.Command, v any, text func(w io.Writer)) {
	w := cmd.OutOrStdout()
	if formatFlag == "json" || text == nil {
		b, _ := json.MarshalIndent(v, "", "  ")
		fmt.Fprintln(w, string(b))
		return
	}
	text(w)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
