package cli

import (
	"archrepo/internal/core"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newExportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write the stored repository as a snapshot file (- for stdout)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, closeFn, err := a.restore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = closeFn() }()
			data, err := s.ExportSnapshot()
			if err != nil {
				return err
			}
			if args[0] == "-" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			if err := os.WriteFile(args[0], data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", args[0], err)
			}
			return nil
		},
	}
}

// restore opens a persisted session and loads the stored repository.
func (a *app) restore(ctx context.Context) (*core.Session, func() error, error) {
	s, closeFn, err := a.openSession(ctx, true)
	if err != nil {
		return nil, closeFn, err
	}
	if err := s.Restore(ctx); err != nil {
		_ = closeFn()
		return nil, closeFn, err
	}
	if s.Metadata().IsZero() {
		_ = closeFn()
		return nil, closeFn, errNoRepository
	}
	return s, closeFn, nil
}
