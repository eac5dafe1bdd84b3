package core

import (
	"archrepo/pkg/domain"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Governance audit entry types.
const (
	LogSaveBlocked = "save.blocked"
	LogSaveWarned  = "save.warned"
)

// highlightLimit caps the highlight lines attached to audit entries.
const highlightLimit = 5

// GateState is the persistence state of a repository under governance.
type GateState string

// Gate states. Only Strict mode ever enters GateBlocked.
const (
	GateCompliant GateState = "compliant"
	GateBlocked   GateState = "blocked"
)

// GateDecision is the outcome of one settle.
type GateDecision struct {
	State        GateState
	AllowPersist bool
	// Notice is the blocking notice currently shown, empty when none.
	Notice string
	// NoticeChanged is set when Notice was opened, replaced or dismissed.
	NoticeChanged bool
	// Warning is a one-shot advisory message, empty when nothing new.
	Warning string
	// Entry is the audit entry appended during this settle, if any.
	Entry *GovernanceLogEntry
}

// GovernanceGate applies the repository governance mode to debt. It
// deduplicates notices and audit entries by debt fingerprint.
type GovernanceGate struct {
	log   AuditLog
	now   func() time.Time
	newID func() string

	state        GateState
	notice       string
	blockedFP    DebtFingerprint
	hasBlockedFP bool
	warnedFP     DebtFingerprint
	hasWarnedFP  bool
}

// NewGovernanceGate returns a gate writing audit entries to log. A nil log
// discards entries.
func NewGovernanceGate(log AuditLog) *GovernanceGate {
	if log == nil {
		log = discardAuditLog{}
	}
	return &GovernanceGate{
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
		state: GateCompliant,
	}
}

// Reset returns the gate to Compliant and forgets notified fingerprints.
func (g *GovernanceGate) Reset() {
	g.state = GateCompliant
	g.notice = ""
	g.hasBlockedFP = false
	g.hasWarnedFP = false
}

// State returns the current gate state.
func (g *GovernanceGate) State() GateState { return g.state }

// Blocked reports whether persistence is withheld.
func (g *GovernanceGate) Blocked() bool { return g.state == GateBlocked }

// Notice returns the blocking notice currently shown.
func (g *GovernanceGate) Notice() string { return g.notice }

// Settle evaluates debt for meta. The returned error reports an audit log
// failure; the decision is valid regardless.
func (g *GovernanceGate) Settle(ctx context.Context, meta domain.Metadata, debt GovernanceDebt) (GateDecision, error) {
	summary := debt.Summary
	fp := summary.Fingerprint()

	switch meta.GovernanceMode {
	case domain.GovernanceStrict:
		if summary.Total > 0 {
			g.state = GateBlocked
			decision := GateDecision{State: GateBlocked}
			if g.hasBlockedFP && g.blockedFP == fp {
				decision.Notice = g.notice
				return decision, nil
			}
			g.blockedFP, g.hasBlockedFP = fp, true
			g.notice = blockedNotice(summary)
			decision.Notice = g.notice
			decision.NoticeChanged = true
			entry := g.entry(LogSaveBlocked, meta, debt)
			decision.Entry = &entry
			return decision, g.log.Append(ctx, entry)
		}
		decision := GateDecision{State: GateCompliant, AllowPersist: true}
		if g.state == GateBlocked {
			decision.NoticeChanged = true
		}
		g.state = GateCompliant
		g.notice = ""
		g.hasBlockedFP = false
		return decision, nil

	case domain.GovernanceAdvisory:
		g.state = GateCompliant
		decision := GateDecision{State: GateCompliant, AllowPersist: true}
		// zero debt leaves the last warned fingerprint in place
		if summary.Total == 0 {
			return decision, nil
		}
		if g.hasWarnedFP && g.warnedFP == fp {
			return decision, nil
		}
		g.warnedFP, g.hasWarnedFP = fp, true
		decision.Warning = warnedMessage(summary)
		entry := g.entry(LogSaveWarned, meta, debt)
		decision.Entry = &entry
		return decision, g.log.Append(ctx, entry)
	}

	g.state = GateCompliant
	g.notice = ""
	return GateDecision{State: GateCompliant, AllowPersist: true}, nil
}

func (g *GovernanceGate) entry(kind string, meta domain.Metadata, debt GovernanceDebt) GovernanceLogEntry {
	return GovernanceLogEntry{
		ID:                g.newID(),
		Type:              kind,
		GovernanceMode:    meta.GovernanceMode,
		RepositoryName:    meta.RepositoryName,
		ArchitectureScope: meta.ArchitectureScope,
		Summary:           debt.Summary,
		Highlights:        debt.Highlights(highlightLimit),
		RecordedAt:        g.now(),
	}
}

func blockedNotice(s GovernanceDebtSummary) string {
	return fmt.Sprintf("Save blocked by Strict governance: %d issue(s) to resolve (%s).", s.Total, breakdown(s))
}

func warnedMessage(s GovernanceDebtSummary) string {
	return fmt.Sprintf("Governance debt detected: %d issue(s) (%s). Changes were saved.", s.Total, breakdown(s))
}

func breakdown(s GovernanceDebtSummary) string {
	return fmt.Sprintf("%d mandatory, %d relationship errors, %d relationship warnings, %d invalid relationships, %d missing lifecycle tags",
		s.MandatoryFindingCount, s.RelationshipErrorCount, s.RelationshipWarningCount,
		s.InvalidRelationshipInsertCount, s.LifecycleTagMissingCount)
}
