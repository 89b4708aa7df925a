// Package registry_repo provides the PostgreSQL registry.Repository.
package registry_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tourreg/internal/core/apperror"
	"tourreg/internal/core/id"
	"tourreg/internal/domain/regcode"
	"tourreg/internal/domain/registry"
	"tourreg/internal/infrastructure/storage/postgres"
)

const (
	recordsTable      = "registry_records"
	reservationsTable = "registry_code_reservations"

	recordCodeConstraint = "registry_records_code_uq"
)

// Columns that Update never writes: identity, lock, and pipeline-owned fields.
var immutableColumns = []string{
	"id", "version", "created_at", "updated_at",
	"registry_code", "completeness_score", "compliance_score",
}

var _ registry.Repository = (*Repo)(nil)

// Repo implements registry.Repository on registry_records.
type Repo struct {
	txm        *postgres.TxManager
	selectCols []string
	now        func() time.Time
}

// New creates a repository. Queries join the transaction in ctx when present.
func New(txm *postgres.TxManager) *Repo {
	return &Repo{
		txm:        txm,
		selectCols: postgres.Columns[registry.Record](),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Builder returns a squirrel builder with PostgreSQL placeholders.
func (r *Repo) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Get retrieves a record by id.
func (r *Repo) Get(ctx context.Context, recordID id.ID) (*registry.Record, error) {
	return r.get(ctx, recordID, false)
}

func (r *Repo) get(ctx context.Context, recordID id.ID, forUpdate bool) (*registry.Record, error) {
	q := r.Builder().
		Select(r.selectCols...).
		From(recordsTable).
		Where(squirrel.Eq{"id": recordID}).
		Limit(1)
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("build query: %w", err))
	}

	var rec registry.Record
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &rec, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("registry record", recordID.String())
		}
		return nil, postgres.WrapErr("registry.get", err)
	}
	return &rec, nil
}

// Query lists records matching f ordered by name.
func (r *Repo) Query(ctx context.Context, f registry.Filter) ([]*registry.Record, error) {
	sql, args, err := r.querySelect(f).ToSql()
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("build query: %w", err))
	}

	out := make([]*registry.Record, 0)
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, postgres.WrapErr("registry.query", err)
	}
	return out, nil
}

func (r *Repo) querySelect(f registry.Filter) squirrel.SelectBuilder {
	q := r.Builder().
		Select(r.selectCols...).
		From(recordsTable)

	if !id.IsNil(f.ExcludeID) {
		q = q.Where(squirrel.NotEq{"id": f.ExcludeID})
	}
	if f.Region != "" {
		q = q.Where(squirrel.Eq{"region": strings.ToUpper(f.Region)})
	}
	if f.CategoryID != "" {
		q = q.Where(squirrel.Eq{"category_id": f.CategoryID})
	}
	if f.Status != "" {
		q = q.Where(squirrel.Eq{"status": f.Status})
	}
	if f.HasRegistryCode != nil {
		if *f.HasRegistryCode {
			q = q.Where(squirrel.NotEq{"registry_code": nil})
		} else {
			q = q.Where(squirrel.Eq{"registry_code": nil})
		}
	}
	if f.Search != "" {
		q = q.Where(squirrel.ILike{"name": "%" + f.Search + "%"})
	}

	q = q.OrderBy("name", "id")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	return q
}

// Create inserts rec with version 1.
func (r *Repo) Create(ctx context.Context, rec *registry.Record) error {
	if id.IsNil(rec.ID) {
		rec.ID = id.New()
	}
	now := r.now()
	rec.Version = 1
	rec.CreatedAt, rec.UpdatedAt = now, now

	sql, args, err := r.Builder().
		Insert(recordsTable).
		SetMap(postgres.ToMap(rec)).
		ToSql()
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("build insert: %w", err))
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err, "") {
			return apperror.NewConflict("registry record already exists").WithDetail("id", rec.ID.String())
		}
		return postgres.WrapErr("registry.create", err)
	}
	return nil
}

// Update locks the row, applies patch and bumps the version.
func (r *Repo) Update(ctx context.Context, recordID id.ID, patch registry.Patch) (*registry.Record, error) {
	var updated *registry.Record
	err := r.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		rec, err := r.get(ctx, recordID, true)
		if err != nil {
			return err
		}
		if patch.Version != 0 && patch.Version != rec.Version {
			return apperror.NewConcurrentModification("registry record", recordID.String())
		}
		patch.Apply(rec)
		rec.UpdatedAt = r.now()

		data := postgres.ToMap(rec, immutableColumns...)
		sql, args, err := r.Builder().
			Update(recordsTable).
			SetMap(data).
			Set("version", squirrel.Expr("version + 1")).
			Set("updated_at", rec.UpdatedAt).
			Where(squirrel.Eq{"id": recordID}).
			Where(squirrel.Eq{"version": rec.Version}).
			ToSql()
		if err != nil {
			return apperror.NewInternal(fmt.Errorf("build update: %w", err))
		}

		res, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
		if err != nil {
			return postgres.WrapErr("registry.update", err)
		}
		if res.RowsAffected() == 0 {
			return apperror.NewConcurrentModification("registry record", recordID.String())
		}
		rec.Version++
		updated = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetScores writes both pipeline scores.
func (r *Repo) SetScores(ctx context.Context, recordID id.ID, completeness, compliance int) error {
	sql, args, err := r.Builder().
		Update(recordsTable).
		Set("completeness_score", completeness).
		Set("compliance_score", compliance).
		Where(squirrel.Eq{"id": recordID}).
		ToSql()
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("build update: %w", err))
	}

	res, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.WrapErr("registry.set_scores", err)
	}
	if res.RowsAffected() == 0 {
		return apperror.NewNotFound("registry record", recordID.String())
	}
	return nil
}

// AssignRegistryCode sets registry_code only while it is NULL.
func (r *Repo) AssignRegistryCode(ctx context.Context, recordID id.ID, code string) error {
	sql, args, err := r.Builder().
		Update(recordsTable).
		Set("registry_code", code).
		Where(squirrel.Eq{"id": recordID}).
		Where(squirrel.Eq{"registry_code": nil}).
		ToSql()
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("build update: %w", err))
	}

	res, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		if postgres.IsUniqueViolation(err, recordCodeConstraint) {
			return apperror.NewCodeTaken(code)
		}
		return postgres.WrapErr("registry.assign_code", err)
	}
	if res.RowsAffected() > 0 {
		return nil
	}

	existing, err := r.Get(ctx, recordID)
	if err != nil {
		return err
	}
	return apperror.NewAlreadyAssigned(recordID.String(), *existing.RegistryCode)
}

// FindMaxSequence returns the highest reserved sequence for the pair.
func (r *Repo) FindMaxSequence(ctx context.Context, region, categoryCode string) (int, error) {
	sql, args, err := r.Builder().
		Select("COALESCE(MAX(sequence), 0)").
		From(reservationsTable).
		Where(squirrel.Eq{"region": region, "category_code": categoryCode}).
		ToSql()
	if err != nil {
		return 0, apperror.NewInternal(fmt.Errorf("build query: %w", err))
	}

	var highest int
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&highest); err != nil {
		return 0, postgres.WrapErr("regcode.find_max_sequence", err)
	}
	return highest, nil
}

// ReserveCode inserts a reservation; the primary key rejects a taken sequence.
func (r *Repo) ReserveCode(ctx context.Context, code regcode.Code) error {
	sql, args, err := r.Builder().
		Insert(reservationsTable).
		Columns("region", "category_code", "sequence", "code").
		Values(code.Region, code.Category, code.Sequence, code.String()).
		ToSql()
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("build insert: %w", err))
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err, "") {
			return apperror.NewCodeTaken(code.String())
		}
		return postgres.WrapErr("regcode.reserve", err)
	}
	return nil
}
