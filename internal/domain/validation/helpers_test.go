package validation

import (
	"context"
	"time"

	"tourreg/internal/core/id"
	"tourreg/internal/domain/registry"
)

func ptr[T any](v T) *T { return &v }

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// blueLagoon is the reference submission: no description, no city,
// every recommended field empty.
func blueLagoon() *registry.Record {
	r := registry.NewRecord("Blue Lagoon Cave", "natural", "MS")
	r.ID = id.New()
	r.Address = ptr("Rural Rd 10")
	r.Phone = ptr("6799998888")
	r.Email = ptr("a@b.com")
	r.Latitude = ptr(-20.4)
	r.Longitude = ptr(-56.4)
	return r
}

// complete fills every tracked and recommended field with valid data.
func complete() *registry.Record {
	r := blueLagoon()
	r.Description = ptr("Flooded limestone cave with turquoise water")
	r.ShortDescription = ptr("Turquoise cave lake")
	r.City = ptr("Bonito")
	r.PostalCode = ptr("79290-000")
	r.Website = ptr("https://bluelagoon.example")
	r.OpeningHours = ptr("08:00-17:00")
	r.PriceRange = ptr(registry.PriceModerate)
	r.Capacity = ptr(40)
	r.LegalName = ptr("Blue Lagoon Turismo Ltda")
	r.RegistrationNumber = ptr("11.222.333/0001-81")
	r.LicenseNumber = ptr("LIC-2024-001")
	r.LicenseExpiryDate = ptr(mustDate("2027-12-31"))
	r.ResponsibleName = ptr("Ana Souza")
	r.ResponsiblePhone = ptr("67999887766")
	r.ResponsibleEmail = ptr("ana@bluelagoon.example")
	r.AccessibilityFeatures = []string{"ramp"}
	r.PaymentMethods = []string{"cash", "card"}
	r.LanguagesSpoken = []string{"pt", "en"}
	r.Certifications = []string{"cadastur"}
	r.LastVerifiedDate = ptr(mustDate("2025-01-15"))
	return r
}

type stubSource struct {
	records []*registry.Record
	err     error
	filters []registry.Filter
}

func (s *stubSource) Query(_ context.Context, f registry.Filter) ([]*registry.Record, error) {
	s.filters = append(s.filters, f)
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}
