package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	appconfig "github.com/doeshing/gitbrew/internal/application/config"
	"github.com/doeshing/gitbrew/internal/application/doctor"
	"github.com/doeshing/gitbrew/internal/domain"
	"github.com/doeshing/gitbrew/internal/infrastructure/config"
	"github.com/doeshing/gitbrew/internal/infrastructure/history"
	"github.com/doeshing/gitbrew/internal/version"
)

var errHistoryUnavailable = errors.New("history store unavailable (is history.enabled set?)")

func newHistoryCommand(s *session) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect executed commands",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List recent history entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.listHistory(cmd.Context(), limit, "")
		},
	}
	list.Flags().IntVar(&limit, "limit", domain.DefaultHistoryLimit, "Max entries to show")

	var searchLimit int
	search := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search commands and intents for a keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.listHistory(cmd.Context(), searchLimit, args[0])
		},
	}
	search.Flags().IntVar(&searchLimit, "limit", domain.DefaultHistorySearchLimit, "Limit search results")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all history",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := s.historyStore()
			if err != nil {
				return err
			}
			if err := store.Clear(cmd.Context()); err != nil {
				return err
			}
			s.renderer.Info("History cleared.")
			return nil
		},
	}

	export := &cobra.Command{
		Use:   "export <path|->",
		Short: "Export history as JSON lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.exportHistory(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}

	var days int
	retain := &cobra.Command{
		Use:   "retain",
		Short: "Prune history older than N days and keep that as the retention policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return fmt.Errorf("--days must be > 0")
			}
			return s.retainHistory(cmd.Context(), days)
		},
	}
	retain.Flags().IntVar(&days, "days", domain.DefaultHistoryRetainDays, "Days of history to keep")

	historyCmd.AddCommand(list, search, clearCmd, export, retain)
	return historyCmd
}

func (s *session) historyStore() (*history.SQLiteStore, error) {
	if s.container == nil || s.container.HistoryStore == nil {
		return nil, errHistoryUnavailable
	}
	return s.container.HistoryStore, nil
}

func (s *session) listHistory(ctx context.Context, limit int, search string) error {
	store, err := s.historyStore()
	if err != nil {
		return err
	}
	records, err := store.Records(ctx, limit, search)
	if err != nil {
		return err
	}
	s.renderer.History(records)
	return nil
}

func (s *session) exportHistory(ctx context.Context, stdout io.Writer, path string) error {
	store, err := s.historyStore()
	if err != nil {
		return err
	}
	if path == "-" {
		_, err := store.ExportJSON(ctx, stdout)
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, domain.SecureFilePermissions)
	if err != nil {
		return err
	}
	n, err := store.ExportJSON(ctx, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	s.renderer.Info("Exported %d record(s) to %s", n, path)
	return nil
}

func (s *session) retainHistory(ctx context.Context, days int) error {
	store, err := s.historyStore()
	if err != nil {
		return err
	}
	pruned, err := store.Prune(ctx, days)
	if err != nil {
		return err
	}
	cfg := s.container.Config
	cfg.History.RetentionDays = days
	if err := s.container.ConfigLoader.Save(cfg); err != nil {
		return fmt.Errorf("save retention policy: %w", err)
	}
	s.renderer.Info("Removed %d record(s); keeping %d day(s) from now on.", pruned, days)
	return nil
}

func newConfigCommand(s *session) *cobra.Command {
	configCmd := &cobra.Command{
		Use:         "config",
		Short:       "Inspect and reset the configuration file",
		Annotations: skipAnnotation(),
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := s.loader().Load(cmd.Context())
			if err != nil {
				return err
			}
			raw, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(raw)
			return err
		},
	}

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration for mistakes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := s.loader().Load(cmd.Context())
			if err != nil {
				return err
			}
			if err := appconfig.Validate(cfg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration valid")
			return nil
		},
	}

	path := &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), s.loader().Path())
			return nil
		},
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Back up the configuration and restore the defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := s.loader()
			backup, err := loader.Backup()
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			if _, err := loader.Reset(); err != nil {
				return err
			}
			if backup != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Previous config saved to %s\n", backup)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Defaults written to %s\n", loader.Path())
			return nil
		},
	}

	configCmd.AddCommand(show, validate, path, reset)
	return configCmd
}

func (s *session) loader() *config.FileLoader {
	return config.NewFileLoader(s.configPath)
}

func newDoctorCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:         "doctor",
		Short:       "Diagnose environment setup",
		Annotations: skipAnnotation(),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			loader := s.loader()
			svc := &doctor.Service{
				ConfigProvider: loader,
				LookPath:       exec.LookPath,
				Getenv:         s.opts.Getenv,
			}
			if cfg, err := loader.Load(ctx); err == nil && cfg.History.Enabled {
				if store, err := history.NewSQLiteStore(cfg.History.Path); err == nil {
					defer store.Close()
					svc.History = store
				}
			}

			report, err := svc.Run(ctx)
			s.renderer.Health(report)
			if err != nil {
				return fmt.Errorf("diagnostics completed with errors: %w", err)
			}
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show gitbrew version information",
		Annotations: skipAnnotation(),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "gitbrew version %s\n", version.Version)
			if version.Commit != "" {
				fmt.Fprintf(out, "Commit: %s\n", version.Commit)
			}
			if version.BuildDate != "" {
				fmt.Fprintf(out, "Built: %s\n", version.BuildDate)
			}
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			return nil
		},
	}
}
