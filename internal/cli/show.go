package cli

import (
	"github.com/spf13/cobra"
)

func newShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Summarize the stored repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, closeFn, err := a.restore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = closeFn() }()
			out := cmd.OutOrStdout()
			writeReport(out, s)
			writeCollections(out, s)
			return nil
		},
	}
}
