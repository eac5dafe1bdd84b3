package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"
)

func newValidateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Report governance debt for a snapshot file",
		Long:  "Loads a snapshot file without touching storage and prints its governance debt. Exits non-zero when Strict governance would block the save.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.validateFile(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
}

func (a *app) validateFile(ctx context.Context, w io.Writer, path string) error {
	s, _, err := a.openSession(ctx, false)
	if err != nil {
		return err
	}
	if err := s.ImportFile(ctx, path); err != nil {
		return err
	}
	writeReport(w, s)
	if s.Decision().AllowPersist {
		return nil
	}
	return errBlocked
}
