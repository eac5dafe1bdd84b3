package cli

import (
	"archrepo/internal/core"
	"archrepo/pkg/domain"
	"fmt"

	"github.com/spf13/cobra"
)

func newScopeCommand(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scope <scope> <type>",
		Short: "Report whether an element type is editable under an architecture scope",
		Example: `  archrepo scope "Business Unit" Technology
  archrepo scope Programme Project`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope := domain.ArchitectureScope(args[0])
			switch scope {
			case domain.ScopeEnterprise, domain.ScopeBusinessUnit, domain.ScopeDomain, domain.ScopeProgramme:
			default:
				return fmt.Errorf("unknown architecture scope %q", args[0])
			}
			typ := domain.ObjectType(args[1])
			if reason, readOnly := core.ReadOnlyReason(scope, typ); readOnly {
				fmt.Fprintln(cmd.OutOrStdout(), reason)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s elements are writable in %s scope.\n", typ, scope)
			return nil
		},
	}
}
