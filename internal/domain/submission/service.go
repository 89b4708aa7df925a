// Package submission orchestrates registry writes: persistence, the validation
// pipeline, code assignment and the audit trail.
package submission

import (
	"context"
	"fmt"
	"strings"

	"tourreg/internal/core/apperror"
	appctx "tourreg/internal/core/context"
	"tourreg/internal/core/id"
	"tourreg/internal/core/tx"
	"tourreg/internal/domain/audit"
	"tourreg/internal/domain/registry"
	"tourreg/internal/domain/validation"
	"tourreg/pkg/logger"
)

// DefaultHistoryLimit caps History when the caller passes no limit.
const DefaultHistoryLimit = 50

// Config configures the Service.
type Config struct {
	Repo      registry.Repository
	TxManager tx.Manager // nil means no transactions (memory driver)
	Pipeline  *validation.Pipeline
	Audit     audit.Log // optional
}

// Service is the entry point for registry writes.
type Service struct {
	repo      registry.Repository
	txManager tx.Manager
	pipeline  *validation.Pipeline
	audit     audit.Log
}

// NewService creates a new Service.
func NewService(cfg Config) *Service {
	txm := cfg.TxManager
	if txm == nil {
		txm = tx.NoopManager{}
	}
	return &Service{
		repo:      cfg.Repo,
		txManager: txm,
		pipeline:  cfg.Pipeline,
		audit:     cfg.Audit,
	}
}

// Result is a stored record with the pipeline outcome that produced its scores.
type Result struct {
	Record  *registry.Record    `json:"record"`
	Outcome *validation.Outcome `json:"validation"`
}

// Create stores a new draft record, scores it and assigns a code if eligible.
func (s *Service) Create(ctx context.Context, rec *registry.Record, acknowledgeDuplicates bool) (*Result, error) {
	if id.IsNil(rec.ID) {
		rec.ID = id.New()
	}
	normalize(rec)
	rec.Status = registry.StatusDraft
	rec.RegistryCode = nil
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	compliance, completeness := s.pipeline.Score(rec)
	rec.CompletenessScore = &completeness
	rec.ComplianceScore = &compliance.Score

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, rec); err != nil {
			return fmt.Errorf("create registry record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Allocation writes outside of any transaction.
	out, err := s.pipeline.Run(ctx, rec, validation.RunOptions{
		ExcludeID:             rec.ID,
		Allocate:              true,
		AcknowledgeDuplicates: acknowledgeDuplicates,
	})
	if err != nil {
		return nil, err
	}

	if err := s.persistOutcome(ctx, rec, out, audit.ActionCreate, nil); err != nil {
		return nil, err
	}
	return &Result{Record: rec, Outcome: out}, nil
}

// Update applies patch, rescores the record and assigns a code on the first valid pass.
// An existing registry code is never changed.
func (s *Service) Update(ctx context.Context, recordID id.ID, patch registry.Patch, acknowledgeDuplicates bool) (*Result, error) {
	before, err := s.repo.Get(ctx, recordID)
	if err != nil {
		return nil, err
	}

	preview := before.Clone()
	patch.Apply(preview)
	if err := preview.Validate(); err != nil {
		return nil, err
	}

	var after *registry.Record
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		after, err = s.repo.Update(ctx, recordID, patch)
		if err != nil {
			return fmt.Errorf("update registry record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out, err := s.pipeline.Run(ctx, after, validation.RunOptions{
		ExcludeID:             recordID,
		Allocate:              true,
		AcknowledgeDuplicates: acknowledgeDuplicates,
	})
	if err != nil {
		return nil, err
	}

	changes := audit.Diff(audit.Snapshot(before), audit.Snapshot(after))
	if err := s.persistOutcome(ctx, after, out, audit.ActionUpdate, changes); err != nil {
		return nil, err
	}
	return &Result{Record: after, Outcome: out}, nil
}

// Get returns a record by id.
func (s *Service) Get(ctx context.Context, recordID id.ID) (*registry.Record, error) {
	return s.repo.Get(ctx, recordID)
}

// List returns records matching f.
func (s *Service) List(ctx context.Context, f registry.Filter) ([]*registry.Record, error) {
	return s.repo.Query(ctx, f)
}

// Validate runs the pipeline without writing anything.
func (s *Service) Validate(ctx context.Context, rec *registry.Record) (*validation.Outcome, error) {
	normalize(rec)
	return s.pipeline.Run(ctx, rec, validation.RunOptions{ExcludeID: rec.ID})
}

// Duplicates screens a stored record against the rest of the registry.
func (s *Service) Duplicates(ctx context.Context, recordID id.ID) ([]validation.DuplicateCandidate, error) {
	rec, err := s.repo.Get(ctx, recordID)
	if err != nil {
		return nil, err
	}
	return s.pipeline.Duplicates(ctx, rec, recordID)
}

// AllocateCode assigns a code to a stored record on explicit request.
// Unlike the implicit path it reports why a record is not eligible.
func (s *Service) AllocateCode(ctx context.Context, recordID id.ID, acknowledgeDuplicates bool) (*Result, error) {
	rec, err := s.repo.Get(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if rec.HasRegistryCode() {
		return nil, apperror.NewAlreadyAssigned(recordID.String(), *rec.RegistryCode)
	}

	out, err := s.pipeline.Run(ctx, rec, validation.RunOptions{ExcludeID: recordID})
	if err != nil {
		return nil, err
	}
	if !out.Compliance.IsValid {
		return nil, apperror.NewComplianceViolation("record does not pass compliance rules").
			WithDetail("errors", out.Compliance.Errors)
	}
	if len(out.Duplicates) > 0 && !acknowledgeDuplicates {
		return nil, apperror.NewDuplicateConflict(len(out.Duplicates)).
			WithDetail("duplicates", out.Duplicates)
	}

	code, err := s.pipeline.Allocate(ctx, rec)
	if err != nil {
		return nil, err
	}
	out.RegistryCode = &code

	if err := s.persistOutcome(ctx, rec, out, audit.ActionAllocate, nil); err != nil {
		return nil, err
	}
	return &Result{Record: rec, Outcome: out}, nil
}

// Rescore recomputes the stored scores of a record. It never allocates codes.
// Returns true when the scores changed.
func (s *Service) Rescore(ctx context.Context, recordID id.ID) (bool, error) {
	rec, err := s.repo.Get(ctx, recordID)
	if err != nil {
		return false, err
	}
	compliance, completeness := s.pipeline.Score(rec)
	if sameScore(rec.CompletenessScore, completeness) && sameScore(rec.ComplianceScore, compliance.Score) {
		return false, nil
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.SetScores(ctx, recordID, completeness, compliance.Score); err != nil {
			return err
		}
		return s.appendAudit(ctx, recordID, audit.ActionRescore, summary{
			CompletenessScore: completeness,
			ComplianceScore:   compliance.Score,
			IsValid:           compliance.IsValid,
			Errors:            len(compliance.Errors),
			Warnings:          len(compliance.Warnings),
			PreviousScores:    previousScores(rec),
		})
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// History returns the audit trail of a record, newest first.
func (s *Service) History(ctx context.Context, recordID id.ID, limit int) ([]audit.Entry, error) {
	if _, err := s.repo.Get(ctx, recordID); err != nil {
		return nil, err
	}
	if s.audit == nil {
		return []audit.Entry{}, nil
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.audit.History(ctx, recordID, limit)
}

// persistOutcome stores the outcome of an implicit run. When a concurrent write
// assigned a code first, the stored code wins: the outcome is saved without the
// new code and rec is reloaded.
func (s *Service) persistOutcome(ctx context.Context, rec *registry.Record, out *validation.Outcome, action audit.Action, changes map[string]any) error {
	err := s.storeOutcome(ctx, rec, out, action, changes)
	if err == nil || !out.Allocated() || action == audit.ActionAllocate ||
		!apperror.HasCode(err, apperror.CodeAlreadyAssigned) {
		return err
	}

	logger.Warn(ctx, "registry code assigned concurrently, keeping stored code",
		"record_id", rec.ID, "discarded", *out.RegistryCode)
	out.RegistryCode = nil
	if err := s.storeOutcome(ctx, rec, out, action, changes); err != nil {
		return err
	}
	stored, err := s.repo.Get(ctx, rec.ID)
	if err != nil {
		return err
	}
	*rec = *stored
	return nil
}

// storeOutcome stores scores, the new code (if any) and the audit entry, and
// mirrors them onto rec.
func (s *Service) storeOutcome(ctx context.Context, rec *registry.Record, out *validation.Outcome, action audit.Action, changes map[string]any) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.SetScores(ctx, rec.ID, out.CompletenessScore, out.Compliance.Score); err != nil {
			return err
		}
		if out.Allocated() {
			if err := s.repo.AssignRegistryCode(ctx, rec.ID, *out.RegistryCode); err != nil {
				return err
			}
		}
		sum := summary{
			CompletenessScore: out.CompletenessScore,
			ComplianceScore:   out.Compliance.Score,
			IsValid:           out.Compliance.IsValid,
			Errors:            len(out.Compliance.Errors),
			Warnings:          len(out.Compliance.Warnings),
			Duplicates:        len(out.Duplicates),
			Changes:           changes,
		}
		if out.Allocated() {
			sum.RegistryCode = *out.RegistryCode
		}
		return s.appendAudit(ctx, rec.ID, action, sum)
	})
	if err != nil {
		if out.Allocated() {
			// The reservation stays; the sequence simply skips this value.
			logger.Error(ctx, "allocated registry code could not be stored",
				"record_id", rec.ID, "code", *out.RegistryCode, "error", err)
		}
		return err
	}

	completeness, compliance := out.CompletenessScore, out.Compliance.Score
	rec.CompletenessScore = &completeness
	rec.ComplianceScore = &compliance
	if out.Allocated() {
		code := *out.RegistryCode
		rec.RegistryCode = &code
		logger.Info(ctx, "registry code assigned", "record_id", rec.ID, "code", *out.RegistryCode)
	}
	return nil
}

type summary struct {
	CompletenessScore int            `json:"completenessScore"`
	ComplianceScore   int            `json:"complianceScore"`
	IsValid           bool           `json:"isValid"`
	Errors            int            `json:"errors"`
	Warnings          int            `json:"warnings"`
	Duplicates        int            `json:"duplicates"`
	RegistryCode      string         `json:"registryCode,omitempty"`
	PreviousScores    map[string]any `json:"previousScores,omitempty"`
	Changes           map[string]any `json:"changes,omitempty"`
}

func (s *Service) appendAudit(ctx context.Context, recordID id.ID, action audit.Action, sum summary) error {
	if s.audit == nil {
		return nil
	}
	e, err := audit.NewEntry(recordID, action, appctx.GetOperatorID(ctx), sum)
	if err != nil {
		return apperror.NewInternal(err)
	}
	return s.audit.Append(ctx, e)
}

func normalize(rec *registry.Record) {
	rec.Name = strings.TrimSpace(rec.Name)
	rec.Region = strings.ToUpper(strings.TrimSpace(rec.Region))
	rec.CategoryID = strings.ToLower(strings.TrimSpace(rec.CategoryID))
}

func sameScore(stored *int, v int) bool {
	return stored != nil && *stored == v
}

func previousScores(rec *registry.Record) map[string]any {
	m := map[string]any{}
	if rec.CompletenessScore != nil {
		m["completenessScore"] = *rec.CompletenessScore
	}
	if rec.ComplianceScore != nil {
		m["complianceScore"] = *rec.ComplianceScore
	}
	return m
}
