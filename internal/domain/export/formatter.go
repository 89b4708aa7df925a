package export

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"tourreg/internal/core/apperror"
	"tourreg/internal/domain/registry"
)

// Format is an output serialization.
type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
	FormatXLSX Format = "xlsx"
)

// MIME types per format.
const (
	MimeJSON = "application/json"
	MimeXML  = "application/xml"
	MimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ParseFormat accepts json, xml or xlsx (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatXML, FormatXLSX:
		return f, nil
	case "":
		return FormatJSON, nil
	default:
		return "", apperror.NewValidation("unsupported export format").
			WithDetail("format", s).
			WithDetail("supported", []string{string(FormatJSON), string(FormatXML), string(FormatXLSX)})
	}
}

// Options fills the envelope.
type Options struct {
	Version string
	Origin  string
	Region  string
	State   string
}

// File is a rendered export.
type File struct {
	Content  []byte
	Filename string
	MimeType string
}

// Formatter renders records. It never mutates its input.
type Formatter struct {
	opts Options
	now  func() time.Time
}

// NewFormatter creates a formatter using the wall clock.
func NewFormatter(opts Options) *Formatter {
	if opts.Version == "" {
		opts.Version = "1.0"
	}
	return &Formatter{opts: opts, now: time.Now}
}

// WithClock returns a copy using now for generatedAt and filenames.
func (f *Formatter) WithClock(now func() time.Time) *Formatter {
	c := *f
	c.now = now
	return &c
}

// WithRegion returns a copy whose envelope reports region.
func (f *Formatter) WithRegion(region string) *Formatter {
	c := *f
	if region != "" {
		c.opts.Region = strings.ToUpper(region)
	}
	return &c
}

// Build maps records into the envelope.
func (f *Formatter) Build(records []*registry.Record) Document {
	return f.build(records, f.now().UTC())
}

func (f *Formatter) build(records []*registry.Record, at time.Time) Document {
	items := make([]Item, 0, len(records))
	for _, rec := range records {
		if rec != nil {
			items = append(items, ToItem(rec))
		}
	}
	return Document{
		Version:     f.opts.Version,
		GeneratedAt: at.Format(time.RFC3339),
		Origin:      f.opts.Origin,
		Region:      f.opts.Region,
		State:       f.opts.State,
		TotalItems:  len(items),
		Items:       items,
	}
}

// Export renders records in the requested format.
func (f *Formatter) Export(records []*registry.Record, format Format) (*File, error) {
	at := f.now().UTC()
	doc := f.build(records, at)

	var (
		content []byte
		mime    string
		err     error
	)
	switch format {
	case FormatJSON:
		content, err = json.MarshalIndent(doc, "", "  ")
		mime = MimeJSON
	case FormatXML:
		content = renderXML(doc)
		mime = MimeXML
	case FormatXLSX:
		content, err = renderXLSX(doc)
		mime = MimeXLSX
	default:
		return nil, apperror.NewValidation("unsupported export format").WithDetail("format", string(format))
	}
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("render %s export: %w", format, err))
	}

	return &File{
		Content:  content,
		Filename: f.filename(at, format),
		MimeType: mime,
	}, nil
}

func (f *Formatter) filename(at time.Time, format Format) string {
	state := strings.ToLower(f.opts.State)
	if state == "" {
		state = "all"
	}
	return fmt.Sprintf("tourism-registry-%s-%s.%s", state, at.Format("20060102-150405"), format)
}
