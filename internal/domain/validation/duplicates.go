package validation

import (
	"context"
	"fmt"
	"math"
	"sort"

	"tourreg/internal/core/apperror"
	"tourreg/internal/core/id"
	"tourreg/internal/domain/registry"
)

// Duplicate scoring weights and thresholds.
const (
	nameThreshold    = 0.8
	nameWeight       = 50.0
	addressThreshold = 0.7
	addressWeight    = 30.0
	proximityKm      = 0.1
	proximityWeight  = 20.0

	// ReportThreshold is the combined similarity a candidate must exceed.
	ReportThreshold = 50.0
	// MaxCandidates caps the ranked result.
	MaxCandidates = 5
)

// CandidateSource loads records to compare against. registry.Repository satisfies it.
type CandidateSource interface {
	Query(ctx context.Context, f registry.Filter) ([]*registry.Record, error)
}

// DuplicateCandidate is an existing record that may be the same place.
type DuplicateCandidate struct {
	RecordID       id.ID    `json:"recordId"`
	Name           string   `json:"name"`
	RegistryCode   *string  `json:"registryCode,omitempty"`
	Similarity     float64  `json:"similarity"`
	MatchedReasons []string `json:"matchedReasons"`
}

// DetectorOptions tunes candidate loading.
type DetectorOptions struct {
	// SameRegionOnly restricts the scan to records in the submitted record's region.
	SameRegionOnly bool
}

// DuplicateDetector compares a record against the stored registry.
// The scan is O(n) over candidates.
type DuplicateDetector struct {
	source CandidateSource
	opts   DetectorOptions
}

// NewDuplicateDetector creates a detector reading from source.
func NewDuplicateDetector(source CandidateSource, opts DetectorOptions) *DuplicateDetector {
	return &DuplicateDetector{source: source, opts: opts}
}

// FindDuplicates returns up to MaxCandidates records with combined similarity
// above ReportThreshold, best first. excludeID (may be nil) is never returned.
func (d *DuplicateDetector) FindDuplicates(ctx context.Context, rec *registry.Record, excludeID id.ID) ([]DuplicateCandidate, error) {
	f := registry.Filter{ExcludeID: excludeID}
	if d.opts.SameRegionOnly {
		f.Region = rec.Region
	}

	others, err := d.source.Query(ctx, f)
	if err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.NewExternalService("duplicates.query", err)
	}

	out := make([]DuplicateCandidate, 0)
	for _, other := range others {
		if other == nil || (!id.IsNil(excludeID) && other.ID == excludeID) {
			continue
		}
		score, reasons := Compare(rec, other)
		if score > ReportThreshold {
			out = append(out, DuplicateCandidate{
				RecordID:       other.ID,
				Name:           other.Name,
				RegistryCode:   other.RegistryCode,
				Similarity:     score,
				MatchedReasons: reasons,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Similarity > out[j].Similarity
	})
	if len(out) > MaxCandidates {
		out = out[:MaxCandidates]
	}
	return out, nil
}

// Compare returns the combined similarity (0..100) of two records and the signals that matched.
func Compare(a, b *registry.Record) (float64, []string) {
	var (
		total   float64
		reasons []string
	)

	if text(a.Name) && text(b.Name) {
		if s := Similarity(a.Name, b.Name); s > nameThreshold {
			total += s * nameWeight
			reasons = append(reasons, fmt.Sprintf("similar name (%.0f%%)", s*100))
		}
	}

	if optText(a.Address) && optText(b.Address) {
		if s := Similarity(*a.Address, *b.Address); s > addressThreshold {
			total += s * addressWeight
			reasons = append(reasons, fmt.Sprintf("similar address (%.0f%%)", s*100))
		}
	}

	if a.HasCoordinates() && b.HasCoordinates() {
		km := DistanceKm(*a.Latitude, *a.Longitude, *b.Latitude, *b.Longitude)
		if km < proximityKm {
			total += proximityWeight
			reasons = append(reasons, fmt.Sprintf("within 100 m (%d m)", int(math.Round(km*1000))))
		}
	}

	return math.Min(total, 100), reasons
}
