package domain

import (
	"strings"
	"time"
)

// ArchitectureScope restricts which element layers are editable.
type ArchitectureScope string

// Supported architecture scopes.
const (
	ScopeEnterprise   ArchitectureScope = "Enterprise"
	ScopeBusinessUnit ArchitectureScope = "Business Unit"
	ScopeDomain       ArchitectureScope = "Domain"
	ScopeProgramme    ArchitectureScope = "Programme"
)

// ReferenceFramework names the modelling framework the repository follows.
type ReferenceFramework string

// Supported reference frameworks.
const (
	FrameworkTOGAF     ReferenceFramework = "TOGAF"
	FrameworkArchiMate ReferenceFramework = "ArchiMate"
	FrameworkCustom    ReferenceFramework = "Custom"
)

// GovernanceMode selects how governance debt affects persistence.
type GovernanceMode string

// Governance modes. GovernanceNone disables gating entirely.
const (
	GovernanceStrict   GovernanceMode = "Strict"
	GovernanceAdvisory GovernanceMode = "Advisory"
	GovernanceNone     GovernanceMode = ""
)

// LifecycleCoverage states which architecture states the repository models.
type LifecycleCoverage string

// Supported lifecycle coverage modes.
const (
	CoverageAsIs LifecycleCoverage = "As-Is"
	CoverageToBe LifecycleCoverage = "To-Be"
	CoverageBoth LifecycleCoverage = "Both"
)

// TimeHorizon is the planning horizon declared for the repository.
type TimeHorizon string

// Supported time horizons.
const (
	HorizonCurrent   TimeHorizon = "Current"
	HorizonShort     TimeHorizon = "1-3 years"
	HorizonMedium    TimeHorizon = "3-5 years"
	HorizonStrategic TimeHorizon = "5+ years"
)

// Metadata describes a repository. It only changes through new-repository or
// reload actions.
type Metadata struct {
	RepositoryName     string             `json:"repositoryName"`
	OrganizationName   string             `json:"organizationName"`
	ArchitectureScope  ArchitectureScope  `json:"architectureScope"`
	ReferenceFramework ReferenceFramework `json:"referenceFramework"`
	GovernanceMode     GovernanceMode     `json:"governanceMode"`
	LifecycleCoverage  LifecycleCoverage  `json:"lifecycleCoverage"`
	TimeHorizon        TimeHorizon        `json:"timeHorizon"`
	CreatedAt          string             `json:"createdAt"`
}

// IsZero reports whether no metadata has been set.
func (m Metadata) IsZero() bool { return m == Metadata{} }

// Validate checks every field and reports all problems at once.
func (m Metadata) Validate() error {
	var problems []string
	if strings.TrimSpace(m.RepositoryName) == "" {
		problems = append(problems, "repositoryName is required")
	}
	if strings.TrimSpace(m.OrganizationName) == "" {
		problems = append(problems, "organizationName is required")
	}
	switch m.ArchitectureScope {
	case ScopeEnterprise, ScopeBusinessUnit, ScopeDomain, ScopeProgramme:
	default:
		problems = append(problems, "architectureScope "+quote(string(m.ArchitectureScope))+" is not supported")
	}
	switch m.ReferenceFramework {
	case FrameworkTOGAF, FrameworkArchiMate, FrameworkCustom:
	default:
		problems = append(problems, "referenceFramework "+quote(string(m.ReferenceFramework))+" is not supported")
	}
	switch m.GovernanceMode {
	case GovernanceStrict, GovernanceAdvisory, GovernanceNone:
	default:
		problems = append(problems, "governanceMode "+quote(string(m.GovernanceMode))+" is not supported")
	}
	switch m.LifecycleCoverage {
	case CoverageAsIs, CoverageToBe, CoverageBoth:
	default:
		problems = append(problems, "lifecycleCoverage "+quote(string(m.LifecycleCoverage))+" is not supported")
	}
	switch m.TimeHorizon {
	case HorizonCurrent, HorizonShort, HorizonMedium, HorizonStrategic:
	default:
		problems = append(problems, "timeHorizon "+quote(string(m.TimeHorizon))+" is not supported")
	}
	if _, err := time.Parse(time.RFC3339, m.CreatedAt); err != nil {
		problems = append(problems, "createdAt must be an RFC3339 timestamp")
	}
	if len(problems) > 0 {
		return &InvalidMetadataError{Problems: problems}
	}
	return nil
}

func quote(s string) string { return "\"" + s + "\"" }
