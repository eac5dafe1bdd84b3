package core

import (
	"archrepo/internal/blob"
	"archrepo/pkg/domain"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound indicates the requested object does not exist in the model.
type ErrNotFound struct {
	Entity string
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// SessionOptions configures a Session. Every field is optional.
type SessionOptions struct {
	// Slot receives best-effort snapshot saves. Nil disables persistence.
	Slot domain.SnapshotSlot
	// AuditLog receives governance gate entries.
	AuditLog AuditLog
	Logger   *slog.Logger
	Metrics  *Metrics
	Now      func() time.Time
	// Semantics overrides the storage relationship rules.
	Semantics *SemanticsTable
}

// ApplyResult describes the outcome of a model update.
type ApplyResult struct {
	// Changed is true when the committed model differs from the previous one.
	Changed bool
	// ScopeViolation is set when the update was reverted by the scope policy.
	ScopeViolation *domain.ScopeViolationError
	// Warning is the user-facing message accompanying a reverted update.
	Warning  string
	Decision GateDecision
}

// Session owns one live repository: its model, history, governance gate and
// persistence slot. All methods are safe for concurrent use; mutations are
// serialized by a single writer lock.
type Session struct {
	mu sync.Mutex

	id        string
	slot      domain.SnapshotSlot
	logger    *slog.Logger
	metrics   *Metrics
	now       func() time.Time
	semantics *SemanticsTable

	model    domain.Model
	history  *History
	gate     *GovernanceGate
	debt     GovernanceDebt
	decision GateDecision

	persistedCanon []byte
	lastPersistErr error
}

// NewSession returns a session holding an empty repository without metadata.
func NewSession(opts SessionOptions) *Session {
	s := &Session{
		id:        uuid.NewString(),
		slot:      opts.Slot,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		now:       opts.Now,
		semantics: opts.Semantics,
		gate:      NewGovernanceGate(opts.AuditLog),
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.semantics == nil {
		s.semantics = StorageSemantics()
	}
	s.gate.now = s.now
	_ = s.clearLocked()
	return s
}

func emptyModel(meta domain.Metadata) domain.Model {
	return domain.Model{Metadata: meta, Objects: []domain.Object{}, Relationships: []domain.Relationship{}}
}

// ID returns the session identifier used in log records.
func (s *Session) ID() string { return s.id }

// NewRepository replaces the current repository with an empty one described
// by meta. CreatedAt defaults to the current time.
func (s *Session) NewRepository(ctx context.Context, meta domain.Metadata) error {
	if meta.CreatedAt == "" {
		meta.CreatedAt = s.now().UTC().Format(time.RFC3339)
	}
	if err := meta.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.resetLocked(emptyModel(meta)); err != nil {
		return err
	}
	s.logger.Info("repository created", "session", s.id, "repository", meta.RepositoryName, "scope", meta.ArchitectureScope, "governance", meta.GovernanceMode)
	return s.settleLocked(ctx)
}

// LoadSnapshot replaces the repository with the decoded snapshot. A malformed
// document leaves the current state untouched.
func (s *Session) LoadSnapshot(ctx context.Context, data []byte) error {
	return s.load(ctx, data, false)
}

func (s *Session) load(ctx context.Context, data []byte, persisted bool) error {
	snap, err := domain.DecodeSnapshot(data)
	if err != nil {
		return err
	}
	m := snap.Model()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.resetLocked(m); err != nil {
		return err
	}
	if persisted {
		s.persistedCanon = s.history.Current()
	}
	s.logger.Info("repository loaded", "session", s.id, "repository", snap.Metadata.RepositoryName, "objects", len(m.Objects), "relationships", len(m.Relationships))
	return s.settleLocked(ctx)
}

// ImportFile reads path and loads it as a snapshot.
func (s *Session) ImportFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read snapshot %s: %w", path, err)
	}
	return s.LoadSnapshot(ctx, data)
}

// ImportBlob reads key from store and loads it as a snapshot.
func (s *Session) ImportBlob(ctx context.Context, store blob.Store, key string) error {
	data, err := blob.ReadAll(ctx, store, key)
	if err != nil {
		return fmt.Errorf("read snapshot %s: %w", key, err)
	}
	return s.LoadSnapshot(ctx, data)
}

// Restore loads the repository from the persistence slot. An absent slot
// yields an empty repository without metadata.
func (s *Session) Restore(ctx context.Context) error {
	var (
		data []byte
		ok   bool
	)
	if s.slot != nil {
		var err error
		if data, ok, err = s.slot.Load(ctx); err != nil {
			return fmt.Errorf("restore: %w", err)
		}
	}
	if !ok {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.clearLocked()
	}
	if err := s.load(ctx, data, true); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	return nil
}

// Clear drops the repository, its history and the persisted slot. Slot
// errors are logged.
func (s *Session) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.clearLocked()
	if s.slot == nil {
		return
	}
	if err := s.slot.Clear(ctx); err != nil {
		s.lastPersistErr = err
		s.logger.Warn("clear persisted repository failed", "session", s.id, "err", err)
	}
}

func (s *Session) clearLocked() error {
	if err := s.resetLocked(emptyModel(domain.Metadata{})); err != nil {
		return err
	}
	s.debt = BuildDebt(s.model, s.now(), DebtOptions{Semantics: s.semantics})
	s.decision = GateDecision{State: GateCompliant, AllowPersist: true}
	s.metrics.ObserveDebt(s.debt.Summary)
	return nil
}

func (s *Session) resetLocked(m domain.Model) error {
	canon, err := domain.Canonical(m)
	if err != nil {
		return fmt.Errorf("serialize model: %w", err)
	}
	s.model = m
	if s.history == nil {
		s.history = NewHistory(canon)
	} else {
		s.history.Reset(canon)
	}
	s.gate.Reset()
	s.persistedCanon = nil
	return nil
}

// Apply runs mutate against a copy of the model and commits the result.
// Metadata changes made by mutate are discarded. An error from mutate aborts
// without touching the model. A change touching read-only types under the
// active scope is reverted and reported through ApplyResult, not as an error.
func (s *Session) Apply(ctx context.Context, mutate func(*domain.Model) error) (ApplyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(ctx, mutate)
}

func (s *Session) applyLocked(ctx context.Context, mutate func(*domain.Model) error) (ApplyResult, error) {
	before := s.model
	next := before.Clone()
	if err := mutate(&next); err != nil {
		return ApplyResult{}, err
	}
	next.Metadata = before.Metadata
	if err := next.CheckRecords(); err != nil {
		return ApplyResult{}, err
	}

	if err := CheckScope(before.Metadata.ArchitectureScope, before, next); err != nil {
		var violation *domain.ScopeViolationError
		if errors.As(err, &violation) {
			s.metrics.IncrementScopeViolation()
			s.logger.Warn("change reverted", "session", s.id, "scope", violation.Scope, "types", violation.Types)
			return ApplyResult{ScopeViolation: violation, Warning: violation.Message, Decision: s.decision}, nil
		}
		return ApplyResult{}, err
	}

	canon, err := domain.Canonical(next)
	if err != nil {
		return ApplyResult{}, fmt.Errorf("serialize model: %w", err)
	}
	if !s.history.Record(canon) {
		return ApplyResult{Decision: s.decision}, nil
	}
	s.model = next
	if err := s.settleLocked(ctx); err != nil {
		return ApplyResult{Changed: true, Decision: s.decision}, err
	}
	return ApplyResult{Changed: true, Decision: s.decision}, nil
}

// AddObject appends obj. Ids are unique across the whole model.
func (s *Session) AddObject(ctx context.Context, obj domain.Object) (ApplyResult, error) {
	return s.Apply(ctx, func(m *domain.Model) error {
		if m.FindObject(obj.ID) >= 0 {
			return &domain.DuplicateIDError{ID: obj.ID}
		}
		m.Objects = append(m.Objects, obj.Clone())
		return nil
	})
}

// UpdateAttributes merges attrs into the object with id. Null values remove
// the key.
func (s *Session) UpdateAttributes(ctx context.Context, id string, attrs domain.Attributes) (ApplyResult, error) {
	return s.Apply(ctx, func(m *domain.Model) error {
		idx := m.FindObject(id)
		if idx < 0 {
			return ErrNotFound{Entity: "object", ID: id}
		}
		obj := &m.Objects[idx]
		if obj.Attributes == nil {
			obj.Attributes = domain.Attributes{}
		}
		for k, v := range attrs {
			if v.IsNull() {
				delete(obj.Attributes, k)
				continue
			}
			obj.Attributes[k] = v.Clone()
		}
		return nil
	})
}

// SetAttribute sets a single attribute on the object with id.
func (s *Session) SetAttribute(ctx context.Context, id, key string, value domain.Value) (ApplyResult, error) {
	return s.UpdateAttributes(ctx, id, domain.Attributes{key: value})
}

// SoftDelete flags the object with id as deleted.
func (s *Session) SoftDelete(ctx context.Context, id string) (ApplyResult, error) {
	return s.SetAttribute(ctx, id, domain.AttrDeleted, domain.Bool(true))
}

// AddRelationship appends rel after checking its endpoints and type against
// the semantics table.
func (s *Session) AddRelationship(ctx context.Context, rel domain.Relationship) (ApplyResult, error) {
	return s.Apply(ctx, func(m *domain.Model) error {
		if err := s.checkRelationship(*m, rel); err != nil {
			return err
		}
		m.Relationships = append(m.Relationships, rel.Clone())
		return nil
	})
}

func (s *Session) checkRelationship(m domain.Model, rel domain.Relationship) error {
	endpoint := func(id string) (domain.Object, bool) {
		idx := m.FindObject(id)
		if idx < 0 || m.Objects[idx].Deleted() {
			return domain.Object{}, false
		}
		return m.Objects[idx], true
	}
	from, ok := endpoint(rel.FromID)
	if !ok {
		return &domain.UnknownEndpointError{Type: rel.Type, SourceID: rel.FromID, TargetID: rel.ToID, Missing: rel.FromID}
	}
	to, ok := endpoint(rel.ToID)
	if !ok {
		return &domain.UnknownEndpointError{Type: rel.Type, SourceID: rel.FromID, TargetID: rel.ToID, Missing: rel.ToID}
	}
	if !s.semantics.IsKnownType(rel.Type) {
		return &domain.UnknownRelationshipTypeError{Type: rel.Type}
	}
	sourceType, okFrom := CollectionFor(from.Type)
	targetType, okTo := CollectionFor(to.Type)
	if !okFrom || !okTo || !s.semantics.Allows(rel.Type, sourceType, targetType) {
		if !okFrom {
			sourceType = domain.Collection(from.Type)
		}
		if !okTo {
			targetType = domain.Collection(to.Type)
		}
		return &domain.EndpointTypeMismatchError{Type: rel.Type, SourceID: rel.FromID, TargetID: rel.ToID, SourceType: sourceType, TargetType: targetType}
	}
	return nil
}

// RemoveRelationship deletes the first relationship matching from, to and typ.
func (s *Session) RemoveRelationship(ctx context.Context, from, to, typ string) (ApplyResult, error) {
	return s.Apply(ctx, func(m *domain.Model) error {
		for i, r := range m.Relationships {
			if r.FromID == from && r.ToID == to && r.Type == typ {
				m.Relationships = append(m.Relationships[:i], m.Relationships[i+1:]...)
				return nil
			}
		}
		return ErrNotFound{Entity: "relationship", ID: typ + " " + from + " -> " + to}
	})
}

// Undo restores the previous committed model. It reports false when there is
// nothing to undo.
func (s *Session) Undo(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moveLocked(ctx, "undo", s.history.Undo)
}

// Redo re-applies the most recently undone model.
func (s *Session) Redo(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moveLocked(ctx, "redo", s.history.Redo)
}

func (s *Session) moveLocked(ctx context.Context, direction string, step func() ([]byte, bool)) bool {
	canon, ok := step()
	if !ok {
		return false
	}
	m, err := domain.ModelFromCanonical(canon)
	if err != nil {
		s.logger.Error("history entry unreadable", "session", s.id, "direction", direction, "err", err)
		return false
	}
	s.model = m
	s.metrics.IncrementHistory(direction)
	if err := s.settleLocked(ctx); err != nil {
		s.logger.Warn("settle after "+direction, "session", s.id, "err", err)
	}
	return true
}

// CanUndo reports whether Undo would succeed.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

// CanRedo reports whether Redo would succeed.
func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo()
}

// HistoryDepth returns the undo and redo stack sizes.
func (s *Session) HistoryDepth() (undo, redo int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.UndoDepth(), s.history.RedoDepth()
}

// Settle recomputes governance debt, runs the gate and persists when the
// gate allows it. The returned error is a context cancellation or an audit
// log failure; persistence failures are logged and kept in LastPersistError.
func (s *Session) Settle(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settleLocked(ctx)
}

func (s *Session) settleLocked(ctx context.Context) error {
	start := time.Now()
	defer s.metrics.ObserveSettle(start)

	meta := s.model.Metadata
	debt, err := BuildDebtContext(ctx, s.model, s.now(), DebtOptions{
		LifecycleCoverage: meta.LifecycleCoverage,
		Semantics:         s.semantics,
	})
	if err != nil {
		return err
	}
	s.debt = debt
	s.metrics.ObserveDebt(debt.Summary)

	decision, auditErr := s.gate.Settle(ctx, meta, debt)
	s.decision = decision
	mode := string(meta.GovernanceMode)
	if mode == "" {
		mode = "none"
	}
	switch {
	case decision.State == GateBlocked:
		s.metrics.IncrementGate(mode, "blocked")
		if decision.NoticeChanged {
			s.logger.Warn("save blocked", "session", s.id, "repository", meta.RepositoryName, "total", debt.Summary.Total, "notice", decision.Notice)
		}
	case decision.Warning != "":
		s.metrics.IncrementGate(mode, "warned")
		s.logger.Warn("save warned", "session", s.id, "repository", meta.RepositoryName, "total", debt.Summary.Total, "warning", decision.Warning)
	default:
		s.metrics.IncrementGate(mode, "persisted")
		if decision.NoticeChanged {
			s.logger.Info("save unblocked", "session", s.id, "repository", meta.RepositoryName)
		}
	}
	if auditErr != nil {
		s.logger.Error("append governance log", "session", s.id, "err", auditErr)
	}

	if decision.AllowPersist {
		s.persistLocked(ctx)
	}
	return auditErr
}

func (s *Session) persistLocked(ctx context.Context) {
	if s.slot == nil || s.model.Metadata.IsZero() {
		return
	}
	canon := s.history.Current()
	if s.persistedCanon != nil && string(canon) == string(s.persistedCanon) {
		return
	}
	data, err := domain.EncodeSnapshot(s.model, s.now())
	if err == nil {
		err = s.slot.Save(ctx, data)
	}
	if err != nil {
		s.lastPersistErr = err
		reason := "error"
		if errors.Is(err, domain.ErrStorageQuotaExceeded) {
			reason = "quota"
		}
		s.metrics.IncrementPersistFailure(reason)
		s.logger.Warn("persist repository failed", "session", s.id, "reason", reason, "err", err)
		return
	}
	s.lastPersistErr = nil
	s.persistedCanon = canon
}

// LastPersistError returns the error from the most recent failed save, or
// nil once a save succeeds.
func (s *Session) LastPersistError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPersistErr
}

// Model returns a deep copy of the live model.
func (s *Session) Model() domain.Model {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model.Clone()
}

// Metadata returns the repository metadata.
func (s *Session) Metadata() domain.Metadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model.Metadata
}

// Debt returns the governance debt computed at the last settle.
func (s *Session) Debt() GovernanceDebt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.debt
}

// Decision returns the gate decision from the last settle.
func (s *Session) Decision() GateDecision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decision
}

// ElementsByType returns the typed elements of collection c.
func (s *Session) ElementsByType(c domain.Collection) []domain.Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.debt.ElementsByType(c)
}

// IsWritable reports whether objects of type t are editable under the
// current scope.
func (s *Session) IsWritable(t domain.ObjectType) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return IsWritable(s.model.Metadata.ArchitectureScope, t)
}

// ReadOnlyReason explains why type t is not editable, if it is not.
func (s *Session) ReadOnlyReason(t domain.ObjectType) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ReadOnlyReason(s.model.Metadata.ArchitectureScope, t)
}

// ExportSnapshot encodes the live model as a snapshot document.
func (s *Session) ExportSnapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.EncodeSnapshot(s.model, s.now())
}
