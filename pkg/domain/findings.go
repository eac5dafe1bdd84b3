package domain

// Severity captures how a finding affects governance.
type Severity string

// Finding severities.
const (
	// SeverityError is structural and blocks Strict-mode persistence.
	SeverityError Severity = "error"
	// SeverityWarning is advisory only.
	SeverityWarning Severity = "warning"
)

// Finding reports one validation issue against an element or relationship.
type Finding struct {
	Rule      string   `json:"rule"`
	SubjectID string   `json:"subjectId"`
	Field     string   `json:"field,omitempty"`
	Message   string   `json:"message"`
	Severity  Severity `json:"severity"`
}

// ScanResult aggregates findings from one or more scans.
type ScanResult struct {
	Findings   []Finding        `json:"findings"`
	BySeverity map[Severity]int `json:"bySeverity"`
}

// Add records a finding and updates the severity counts.
func (r *ScanResult) Add(f Finding) {
	r.Findings = append(r.Findings, f)
	if r.BySeverity == nil {
		r.BySeverity = make(map[Severity]int, 2)
	}
	r.BySeverity[f.Severity]++
}

// Merge appends findings from another result.
func (r *ScanResult) Merge(other ScanResult) {
	for _, f := range other.Findings {
		r.Add(f)
	}
}

// Count returns the number of findings with severity s.
func (r ScanResult) Count(s Severity) int {
	return r.BySeverity[s]
}

// HasErrors reports whether any Error finding is present.
func (r ScanResult) HasErrors() bool {
	return r.BySeverity[SeverityError] > 0
}
