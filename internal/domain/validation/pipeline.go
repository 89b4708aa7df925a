package validation

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"tourreg/internal/core/apperror"
	"tourreg/internal/core/id"
	"tourreg/internal/domain/regcode"
	"tourreg/internal/domain/registry"
	"tourreg/pkg/logger"
)

var tracer = otel.Tracer("tourreg/validation")

// Allocator mints registry codes. *regcode.Allocator satisfies it.
type Allocator interface {
	Allocate(ctx context.Context, region, categoryID string) (regcode.Code, error)
}

// Recorder receives pipeline measurements. Implemented by the metrics package.
type Recorder interface {
	ObserveValidation(outcome string, compliance, completeness int)
	ObserveDuplicates(found int)
	ObserveStage(stage string, d time.Duration)
}

// RunOptions controls a pipeline run.
type RunOptions struct {
	// ExcludeID is skipped during duplicate screening (the record itself on update).
	ExcludeID id.ID

	// Allocate permits code allocation when the record is eligible.
	// Dry runs leave it false.
	Allocate bool

	// AcknowledgeDuplicates lets a record with duplicate candidates receive a code.
	AcknowledgeDuplicates bool
}

// Outcome bundles everything computed for one record.
type Outcome struct {
	Compliance        Result               `json:"compliance"`
	CompletenessScore int                  `json:"completenessScore"`
	Duplicates        []DuplicateCandidate `json:"duplicates"`

	// RegistryCode is set only when this run allocated a new code.
	RegistryCode *string `json:"registryCode,omitempty"`
}

// Allocated reports whether the run minted a code.
func (o *Outcome) Allocated() bool {
	return o.RegistryCode != nil
}

// Pipeline runs scoring, duplicate screening and code allocation for a record.
type Pipeline struct {
	completeness *CompletenessScorer
	compliance   *ComplianceScorer
	duplicates   *DuplicateDetector
	allocator    Allocator
	recorder     Recorder
}

// NewPipeline wires the pipeline components. recorder may be nil.
func NewPipeline(
	completeness *CompletenessScorer,
	compliance *ComplianceScorer,
	duplicates *DuplicateDetector,
	allocator Allocator,
	recorder Recorder,
) *Pipeline {
	return &Pipeline{
		completeness: completeness,
		compliance:   compliance,
		duplicates:   duplicates,
		allocator:    allocator,
		recorder:     recorder,
	}
}

// Score runs the two pure scorers.
func (p *Pipeline) Score(rec *registry.Record) (Result, int) {
	return p.compliance.Evaluate(rec), p.completeness.Score(rec)
}

// Run validates rec and, when allowed and eligible, allocates its registry code.
// rec is not modified. Store failures and allocation conflicts are returned as errors.
func (p *Pipeline) Run(ctx context.Context, rec *registry.Record, opts RunOptions) (*Outcome, error) {
	ctx, span := tracer.Start(ctx, "validation.pipeline",
		trace.WithAttributes(
			attribute.String("record.region", rec.Region),
			attribute.String("record.category", rec.CategoryID),
			attribute.Bool("allocate", opts.Allocate),
		))
	defer span.End()

	log := logger.FromContext(ctx).WithComponent("validation")

	start := time.Now()
	compliance, completeness := p.Score(rec)
	p.stage("score", start)
	log.Debugw("record scored",
		"compliance", compliance.Score,
		"completeness", completeness,
		"errors", len(compliance.Errors),
		"warnings", len(compliance.Warnings))

	out := &Outcome{
		Compliance:        compliance,
		CompletenessScore: completeness,
	}

	start = time.Now()
	dups, err := p.Duplicates(ctx, rec, opts.ExcludeID)
	p.stage("duplicates", start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "duplicate screening failed")
		log.Errorw("duplicate screening failed", "error", err)
		p.observe("error", out)
		return nil, err
	}
	out.Duplicates = dups
	if p.recorder != nil {
		p.recorder.ObserveDuplicates(len(dups))
	}
	if len(dups) > 0 {
		log.Warnw("possible duplicates found",
			"count", len(dups),
			"best_match", dups[0].RecordID,
			"similarity", dups[0].Similarity)
	}

	if opts.Allocate && p.allocator != nil && Eligible(rec, out, opts.AcknowledgeDuplicates) {
		code, err := p.Allocate(ctx, rec)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "allocation failed")
			log.Errorw("registry code allocation failed", "error", err)
			p.observe("error", out)
			return nil, err
		}
		out.RegistryCode = &code
		span.SetAttributes(attribute.String("registry.code", code))
	}

	span.SetAttributes(
		attribute.Int("score.compliance", compliance.Score),
		attribute.Int("score.completeness", completeness),
		attribute.Int("duplicates", len(dups)),
	)
	p.observe(outcomeLabel(out), out)
	return out, nil
}

// Allocate mints a code for rec without any eligibility checks.
func (p *Pipeline) Allocate(ctx context.Context, rec *registry.Record) (string, error) {
	if p.allocator == nil {
		return "", apperror.NewInternal(errors.New("validation: pipeline has no allocator"))
	}
	ctx, span := tracer.Start(ctx, "validation.allocate")
	defer span.End()

	start := time.Now()
	code, err := p.allocator.Allocate(ctx, rec.Region, rec.CategoryID)
	p.stage("allocate", start)
	if err != nil {
		return "", err
	}
	return code.String(), nil
}

// Eligible reports whether a record may receive a registry code now.
func Eligible(rec *registry.Record, out *Outcome, acknowledged bool) bool {
	if rec.HasRegistryCode() || !out.Compliance.IsValid {
		return false
	}
	return len(out.Duplicates) == 0 || acknowledged
}

// Duplicates runs duplicate screening only.
func (p *Pipeline) Duplicates(ctx context.Context, rec *registry.Record, exclude id.ID) ([]DuplicateCandidate, error) {
	if p.duplicates == nil {
		return []DuplicateCandidate{}, nil
	}
	ctx, span := tracer.Start(ctx, "validation.duplicates")
	defer span.End()
	return p.duplicates.FindDuplicates(ctx, rec, exclude)
}

func (p *Pipeline) stage(name string, start time.Time) {
	if p.recorder != nil {
		p.recorder.ObserveStage(name, time.Since(start))
	}
}

func (p *Pipeline) observe(outcome string, out *Outcome) {
	if p.recorder != nil {
		p.recorder.ObserveValidation(outcome, out.Compliance.Score, out.CompletenessScore)
	}
}

func outcomeLabel(out *Outcome) string {
	switch {
	case !out.Compliance.IsValid:
		return "invalid"
	case len(out.Duplicates) > 0:
		return "duplicates"
	default:
		return "valid"
	}
}
