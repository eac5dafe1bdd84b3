// Package cli implements the archrepo command line.
package cli

import (
	"archrepo/internal/config"
	"archrepo/internal/core"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries state shared by every subcommand of one root command.
type app struct {
	v        *viper.Viper
	cfg      config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *core.Metrics
}

// NewRootCommand builds the archrepo command tree. Each call has its own
// configuration state.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New(), registry: prometheus.NewRegistry()}
	root := &cobra.Command{
		Use:           "archrepo",
		Short:         "Enterprise architecture repository with governance gating",
		Long:          "archrepo validates, imports and exports architecture repository snapshots and enforces the repository's governance mode and architecture scope.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.writeMetrics(cmd)
		},
	}
	root.PersistentFlags().String("config", "", "config file (default .archrepo.yaml)")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().String("metrics-file", "", "write Prometheus metrics to this file after the command")
	_ = a.v.BindPFlag("log.level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(
		newValidateCommand(a),
		newImportCommand(a),
		newExportCommand(a),
		newShowCommand(a),
		newScopeCommand(a),
		newWatchCommand(a),
	)
	return root
}

// Execute runs the root command against os.Args.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) init(cmd *cobra.Command) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	if err := config.Init(a.v, cfgFile); err != nil {
		return err
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	logger, err := newLogger(cmd.ErrOrStderr(), cfg.Log)
	if err != nil {
		return err
	}
	a.logger = logger
	a.metrics = core.NewMetrics(a.registry, cfg.Metrics.Namespace)
	return nil
}

func newLogger(w io.Writer, cfg config.LogConfig) (*slog.Logger, error) {
	var level slog.Level
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.Level))); err != nil {
			return nil, fmt.Errorf("log.level: %w", err)
		}
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func (a *app) writeMetrics(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("metrics-file")
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, a.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
