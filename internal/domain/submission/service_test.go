package submission

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourreg/internal/core/apperror"
	appctx "tourreg/internal/core/context"
	"tourreg/internal/core/id"
	"tourreg/internal/domain/audit"
	"tourreg/internal/domain/regcode"
	"tourreg/internal/domain/registry"
	"tourreg/internal/domain/validation"
	"tourreg/internal/infrastructure/storage/memory"
)

func ptr[T any](v T) *T { return &v }

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	alloc, err := regcode.NewAllocator(store, store, regcode.Options{}, nil)
	require.NoError(t, err)

	pipeline := validation.NewPipeline(
		validation.NewCompletenessScorer(),
		validation.NewComplianceScorer(),
		validation.NewDuplicateDetector(store, validation.DetectorOptions{}),
		alloc,
		nil,
	)
	return NewService(Config{Repo: store, Pipeline: pipeline, Audit: store}), store
}

// validRecord passes every compliance rule. Only recommended fields are left empty.
func validRecord(name string) *registry.Record {
	r := registry.NewRecord(name, "natural", "ms")
	r.ID = id.ID{}
	r.Description = ptr("Flooded limestone cave")
	r.Address = ptr("Rural Rd 10")
	r.City = ptr("Bonito")
	r.Phone = ptr("6799998888")
	r.Email = ptr("contact@example.com")
	r.Latitude, r.Longitude = ptr(-21.1268), ptr(-56.5831)
	return r
}

func TestService_CreateAllocatesCode(t *testing.T) {
	svc, store := newTestService(t)
	ctx := appctx.WithOperator(context.Background(), &appctx.OperatorContext{OperatorID: "op-1"})

	res, err := svc.Create(ctx, validRecord("Blue Lagoon Cave"), false)
	require.NoError(t, err)

	rec := res.Record
	assert.False(t, id.IsNil(rec.ID))
	assert.Equal(t, "MS", rec.Region)
	require.NotNil(t, rec.RegistryCode)
	assert.Equal(t, "REGISTRY-MS-NAT-0001", *rec.RegistryCode)
	assert.True(t, res.Outcome.Compliance.IsValid)
	assert.Equal(t, 86, res.Outcome.Compliance.Score)

	stored, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "REGISTRY-MS-NAT-0001", *stored.RegistryCode)
	assert.Equal(t, res.Outcome.CompletenessScore, *stored.CompletenessScore)

	history, err := svc.History(ctx, rec.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, audit.ActionCreate, history[0].Action)
	assert.Equal(t, "op-1", history[0].OperatorID)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(history[0].Payload, &payload))
	assert.Equal(t, "REGISTRY-MS-NAT-0001", payload["registryCode"])
}

func TestService_CreateInvalidKeepsDraftWithoutCode(t *testing.T) {
	svc, _ := newTestService(t)
	rec := validRecord("Blue Lagoon Cave")
	rec.Description, rec.City = nil, nil

	res, err := svc.Create(context.Background(), rec, false)
	require.NoError(t, err)

	assert.False(t, res.Outcome.Compliance.IsValid)
	assert.Nil(t, res.Record.RegistryCode)
	assert.Equal(t, registry.StatusDraft, res.Record.Status)
	assert.Equal(t, 66, *res.Record.ComplianceScore)
	assert.Equal(t, 30, *res.Record.CompletenessScore)
}

func TestService_CreateRejectsMalformedRegion(t *testing.T) {
	for _, region := range []string{"MSX", "M1", "1S"} {
		t.Run(region, func(t *testing.T) {
			svc, store := newTestService(t)
			ctx := context.Background()
			rec := validRecord("Blue Lagoon Cave")
			rec.Region = region

			res, err := svc.Create(ctx, rec, false)
			assert.Nil(t, res)
			assert.True(t, apperror.HasCode(err, apperror.CodeFieldValidation))

			// nothing is stored, so a retry cannot leave a second draft behind
			stored, err := store.Query(ctx, registry.Filter{})
			require.NoError(t, err)
			assert.Empty(t, stored)
		})
	}
}

func TestService_DuplicateBlocksAllocation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, validRecord("Blue Lagoon Cave"), false)
	require.NoError(t, err)

	second, err := svc.Create(ctx, validRecord("Blue Lagoon Cave"), false)
	require.NoError(t, err)
	require.Len(t, second.Outcome.Duplicates, 1)
	assert.Equal(t, first.Record.ID, second.Outcome.Duplicates[0].RecordID)
	assert.Equal(t, first.Record.RegistryCode, second.Outcome.Duplicates[0].RegistryCode)
	assert.Nil(t, second.Record.RegistryCode)

	_, err = svc.AllocateCode(ctx, second.Record.ID, false)
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicateConflict))

	res, err := svc.AllocateCode(ctx, second.Record.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "REGISTRY-MS-NAT-0002", *res.Record.RegistryCode)

	_, err = svc.AllocateCode(ctx, second.Record.ID, true)
	assert.True(t, apperror.HasCode(err, apperror.CodeAlreadyAssigned))
}

func TestService_AllocateCodeRejectsInvalid(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	rec := validRecord("Blue Lagoon Cave")
	rec.Email = ptr("broken")

	res, err := svc.Create(ctx, rec, false)
	require.NoError(t, err)

	_, err = svc.AllocateCode(ctx, res.Record.ID, true)
	assert.True(t, apperror.HasCode(err, apperror.CodeComplianceViolation))
}

func TestService_UpdateAllocatesOnFirstValidPass(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	rec := validRecord("Blue Lagoon Cave")
	rec.City = nil

	created, err := svc.Create(ctx, rec, false)
	require.NoError(t, err)
	require.Nil(t, created.Record.RegistryCode)

	res, err := svc.Update(ctx, created.Record.ID, registry.Patch{City: ptr("Bonito")}, false)
	require.NoError(t, err)
	require.NotNil(t, res.Record.RegistryCode)
	code := *res.Record.RegistryCode
	assert.Equal(t, 2, res.Record.Version)

	res, err = svc.Update(ctx, created.Record.ID, registry.Patch{Website: ptr("https://bluelagoon.example")}, false)
	require.NoError(t, err)
	assert.Equal(t, code, *res.Record.RegistryCode, "codes are never reassigned")
	assert.False(t, res.Outcome.Allocated())

	history, err := svc.History(ctx, created.Record.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, audit.ActionUpdate, history[0].Action)

	var payload struct {
		Changes map[string]any `json:"changes"`
	}
	require.NoError(t, json.Unmarshal(history[0].Payload, &payload))
	assert.Contains(t, payload.Changes, "website")
}

func TestService_UpdateErrors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Update(ctx, id.New(), registry.Patch{}, false)
	assert.True(t, apperror.IsNotFound(err))

	created, err := svc.Create(ctx, validRecord("Blue Lagoon Cave"), false)
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.Record.ID, registry.Patch{Capacity: ptr(-4)}, false)
	assert.True(t, apperror.HasCode(err, apperror.CodeFieldValidation))

	_, err = svc.Update(ctx, created.Record.ID, registry.Patch{Region: ptr("M1")}, false)
	assert.True(t, apperror.HasCode(err, apperror.CodeFieldValidation))
	stored, err := svc.Get(ctx, created.Record.ID)
	require.NoError(t, err)
	assert.Equal(t, "MS", stored.Region)
	assert.Equal(t, 1, stored.Version)

	_, err = svc.Update(ctx, created.Record.ID, registry.Patch{Version: 7, City: ptr("Jardim")}, false)
	assert.True(t, apperror.IsConcurrentModification(err))
}

func TestService_ValidateIsDryRun(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	out, err := svc.Validate(ctx, validRecord("Blue Lagoon Cave"))
	require.NoError(t, err)
	assert.True(t, out.Compliance.IsValid)
	assert.False(t, out.Allocated())

	all, err := store.Query(ctx, registry.Filter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestService_Rescore(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validRecord("Blue Lagoon Cave"), false)
	require.NoError(t, err)

	changed, err := svc.Rescore(ctx, created.Record.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, store.SetScores(ctx, created.Record.ID, 1, 1))
	changed, err = svc.Rescore(ctx, created.Record.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	got, err := svc.Get(ctx, created.Record.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Outcome.CompletenessScore, *got.CompletenessScore)

	history, err := svc.History(ctx, created.Record.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, audit.ActionRescore, history[0].Action)
}

func TestService_Duplicates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, validRecord("Blue Lagoon Cave"), false)
	require.NoError(t, err)
	second, err := svc.Create(ctx, validRecord("Blue Lagoon Caves"), false)
	require.NoError(t, err)

	dups, err := svc.Duplicates(ctx, first.Record.ID)
	require.NoError(t, err)
	require.Len(t, dups, 1)
	assert.Equal(t, second.Record.ID, dups[0].RecordID)

	_, err = svc.Duplicates(ctx, id.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestService_HistoryOfUnknownRecord(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.History(context.Background(), id.New(), 0)
	assert.True(t, apperror.IsNotFound(err))
}

// racingRepo lets another writer assign a code right before the service does.
type racingRepo struct {
	*memory.Store
	winner string
}

func (r *racingRepo) AssignRegistryCode(ctx context.Context, recordID id.ID, code string) error {
	if r.winner != "" {
		if err := r.Store.AssignRegistryCode(ctx, recordID, r.winner); err != nil {
			return err
		}
		r.winner = ""
	}
	return r.Store.AssignRegistryCode(ctx, recordID, code)
}

func TestService_UpdateKeepsConcurrentlyAssignedCode(t *testing.T) {
	store := memory.New()
	repo := &racingRepo{Store: store}
	alloc, err := regcode.NewAllocator(store, store, regcode.Options{}, nil)
	require.NoError(t, err)
	pipeline := validation.NewPipeline(
		validation.NewCompletenessScorer(),
		validation.NewComplianceScorer(),
		validation.NewDuplicateDetector(store, validation.DetectorOptions{}),
		alloc,
		nil,
	)
	svc := NewService(Config{Repo: repo, Pipeline: pipeline, Audit: store})
	ctx := context.Background()

	rec := validRecord("Blue Lagoon Cave")
	rec.City = nil
	created, err := svc.Create(ctx, rec, false)
	require.NoError(t, err)
	require.Nil(t, created.Record.RegistryCode)

	repo.winner = "REGISTRY-MS-NAT-0042"
	res, err := svc.Update(ctx, created.Record.ID, registry.Patch{City: ptr("Bonito")}, false)
	require.NoError(t, err)

	require.NotNil(t, res.Record.RegistryCode)
	assert.Equal(t, "REGISTRY-MS-NAT-0042", *res.Record.RegistryCode)
	assert.False(t, res.Outcome.Allocated())
	require.NotNil(t, res.Record.ComplianceScore)
	assert.Equal(t, res.Outcome.Compliance.Score, *res.Record.ComplianceScore)

	history, err := svc.History(ctx, created.Record.ID, 10)
	require.NoError(t, err)
	require.NotEmpty(t, history)
	assert.Equal(t, audit.ActionUpdate, history[0].Action)
	assert.NotContains(t, string(history[0].Payload), "registryCode")
}

func TestService_AllocateCodeReportsConcurrentAssignment(t *testing.T) {
	store := memory.New()
	repo := &racingRepo{Store: store}
	alloc, err := regcode.NewAllocator(store, store, regcode.Options{}, nil)
	require.NoError(t, err)
	pipeline := validation.NewPipeline(
		validation.NewCompletenessScorer(),
		validation.NewComplianceScorer(),
		validation.NewDuplicateDetector(store, validation.DetectorOptions{}),
		alloc,
		nil,
	)
	svc := NewService(Config{Repo: repo, Pipeline: pipeline, Audit: store})
	ctx := context.Background()

	first, err := svc.Create(ctx, validRecord("Blue Lagoon Cave"), false)
	require.NoError(t, err)
	second, err := svc.Create(ctx, validRecord("Blue Lagoon Cave"), false)
	require.NoError(t, err)
	require.Nil(t, second.Record.RegistryCode)
	require.NotNil(t, first.Record.RegistryCode)

	repo.winner = "REGISTRY-MS-NAT-0042"
	_, err = svc.AllocateCode(ctx, second.Record.ID, true)
	assert.True(t, apperror.HasCode(err, apperror.CodeAlreadyAssigned))
}

type failingTx struct{ err error }

func (f failingTx) RunInTransaction(context.Context, func(ctx context.Context) error) error {
	return f.err
}

func TestService_TransactionFailure(t *testing.T) {
	store := memory.New()
	pipeline := validation.NewPipeline(
		validation.NewCompletenessScorer(),
		validation.NewComplianceScorer(),
		nil,
		nil,
		nil,
	)
	boom := errors.New("tx begin failed")
	svc := NewService(Config{Repo: store, TxManager: failingTx{err: boom}, Pipeline: pipeline})

	_, err := svc.Create(context.Background(), validRecord("Blue Lagoon Cave"), false)
	assert.ErrorIs(t, err, boom)
}
