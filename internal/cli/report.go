package cli

import (
	"archrepo/internal/core"
	"archrepo/pkg/domain"
	"errors"
	"fmt"
	"io"
)

// errBlocked is returned when Strict governance withholds persistence.
var errBlocked = errors.New("save blocked by Strict governance")

// errNoRepository is returned when the configured slot is empty.
var errNoRepository = errors.New("no repository stored")

func governanceLabel(m domain.GovernanceMode) string {
	if m == domain.GovernanceNone {
		return "None"
	}
	return string(m)
}

func writeReport(w io.Writer, s *core.Session) {
	meta := s.Metadata()
	debt := s.Debt()
	sum := debt.Summary
	fmt.Fprintf(w, "repository: %s (%s, %s scope, %s governance)\n",
		meta.RepositoryName, meta.OrganizationName, meta.ArchitectureScope, governanceLabel(meta.GovernanceMode))
	fmt.Fprintf(w, "debt: total=%d mandatory=%d relationship_errors=%d relationship_warnings=%d invalid_relationships=%d lifecycle_tags=%d\n",
		sum.Total, sum.MandatoryFindingCount, sum.RelationshipErrorCount, sum.RelationshipWarningCount,
		sum.InvalidRelationshipInsertCount, sum.LifecycleTagMissingCount)
	for _, line := range debt.Highlights(10) {
		fmt.Fprintf(w, "  - %s\n", line)
	}
	decision := s.Decision()
	switch {
	case decision.State == core.GateBlocked:
		fmt.Fprintf(w, "status: blocked: %s\n", decision.Notice)
	case decision.Warning != "":
		fmt.Fprintf(w, "status: warned: %s\n", decision.Warning)
	default:
		fmt.Fprintln(w, "status: compliant")
	}
}

func writeCollections(w io.Writer, s *core.Session) {
	for _, c := range domain.Collections() {
		fmt.Fprintf(w, "%-16s %d\n", c, len(s.ElementsByType(c)))
	}
}
