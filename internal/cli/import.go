package cli

import (
	"archrepo/internal/blob"
	"fmt"

	"github.com/spf13/cobra"
)

func newImportCommand(a *app) *cobra.Command {
	var fromBlob bool
	cmd := &cobra.Command{
		Use:   "import <file|key>",
		Short: "Load a snapshot into the configured storage",
		Long:  "Replaces the stored repository with the snapshot. Strict governance withholds the save while debt remains. With --blob the argument is a key in the configured blob store.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, closeFn, err := a.openSession(ctx, true)
			if err != nil {
				return err
			}
			defer func() { _ = closeFn() }()

			if fromBlob {
				store, err := blob.Open(ctx, a.blobOptions())
				if err != nil {
					return fmt.Errorf("open blob store: %w", err)
				}
				err = s.ImportBlob(ctx, store, args[0])
				if err != nil {
					return err
				}
			} else if err := s.ImportFile(ctx, args[0]); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			writeReport(out, s)
			if !s.Decision().AllowPersist {
				return errBlocked
			}
			if err := s.LastPersistError(); err != nil {
				return fmt.Errorf("persist repository: %w", err)
			}
			fmt.Fprintf(out, "stored in %s slot %q\n", a.cfg.Storage.Driver, a.cfg.Storage.SlotName)
			return nil
		},
	}
	cmd.Flags().BoolVar(&fromBlob, "blob", false, "read the snapshot from the configured blob store")
	return cmd
}
