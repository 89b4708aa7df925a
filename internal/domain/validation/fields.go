package validation

import (
	"strings"
	"time"

	"tourreg/internal/domain/registry"
)

// Tier groups tracked fields for completeness scoring.
type Tier string

const (
	TierCore        Tier = "core"
	TierGeolocation Tier = "geolocation"
	TierOperational Tier = "operational"
	TierCompliance  Tier = "compliance"
)

// Field is a tracked record field with its presence check.
type Field struct {
	Name   string
	Tier   Tier
	Filled func(r *registry.Record) bool
}

// TrackedFields is the static field-tier table (27 fields).
var TrackedFields = []Field{
	{"name", TierCore, func(r *registry.Record) bool { return text(r.Name) }},
	{"description", TierCore, func(r *registry.Record) bool { return optText(r.Description) }},
	{"address", TierCore, func(r *registry.Record) bool { return optText(r.Address) }},
	{"city", TierCore, func(r *registry.Record) bool { return optText(r.City) }},
	{"region", TierCore, func(r *registry.Record) bool { return text(r.Region) }},
	{"categoryId", TierCore, func(r *registry.Record) bool { return text(r.CategoryID) }},
	{"phone", TierCore, func(r *registry.Record) bool { return optText(r.Phone) }},
	{"email", TierCore, func(r *registry.Record) bool { return optText(r.Email) }},

	{"latitude", TierGeolocation, func(r *registry.Record) bool { return r.Latitude != nil }},
	{"longitude", TierGeolocation, func(r *registry.Record) bool { return r.Longitude != nil }},
	{"postalCode", TierGeolocation, func(r *registry.Record) bool { return optText(r.PostalCode) }},

	{"openingHours", TierOperational, func(r *registry.Record) bool { return optText(r.OpeningHours) }},
	{"priceRange", TierOperational, func(r *registry.Record) bool { return r.PriceRange != nil && *r.PriceRange != "" }},
	{"capacity", TierOperational, func(r *registry.Record) bool { return r.Capacity != nil }},
	{"website", TierOperational, func(r *registry.Record) bool { return optText(r.Website) }},

	{"legalName", TierCompliance, func(r *registry.Record) bool { return optText(r.LegalName) }},
	{"registrationNumber", TierCompliance, func(r *registry.Record) bool { return optText(r.RegistrationNumber) }},
	{"licenseNumber", TierCompliance, func(r *registry.Record) bool { return optText(r.LicenseNumber) }},
	{"licenseExpiryDate", TierCompliance, func(r *registry.Record) bool { return date(r.LicenseExpiryDate) }},
	{"responsibleName", TierCompliance, func(r *registry.Record) bool { return optText(r.ResponsibleName) }},
	{"responsiblePhone", TierCompliance, func(r *registry.Record) bool { return optText(r.ResponsiblePhone) }},
	{"responsibleEmail", TierCompliance, func(r *registry.Record) bool { return optText(r.ResponsibleEmail) }},
	{"accessibilityFeatures", TierCompliance, func(r *registry.Record) bool { return list(r.AccessibilityFeatures) }},
	{"paymentMethods", TierCompliance, func(r *registry.Record) bool { return list(r.PaymentMethods) }},
	{"languagesSpoken", TierCompliance, func(r *registry.Record) bool { return list(r.LanguagesSpoken) }},
	{"certifications", TierCompliance, func(r *registry.Record) bool { return list(r.Certifications) }},
	{"lastVerifiedDate", TierCompliance, func(r *registry.Record) bool { return date(r.LastVerifiedDate) }},
}

// RequiredFields are the core fields penalized by the compliance scorer.
var RequiredFields = fieldsOfTier(TierCore)

// RecommendedFields are penalized lightly (warning, -1 each) when missing.
var RecommendedFields = []Field{
	{"shortDescription", TierCore, func(r *registry.Record) bool { return optText(r.ShortDescription) }},
	fieldByName("postalCode"),
	fieldByName("website"),
	fieldByName("openingHours"),
	fieldByName("priceRange"),
	fieldByName("capacity"),
	fieldByName("legalName"),
	fieldByName("registrationNumber"),
	fieldByName("licenseNumber"),
	fieldByName("responsibleName"),
	fieldByName("responsiblePhone"),
	fieldByName("accessibilityFeatures"),
	fieldByName("paymentMethods"),
	fieldByName("languagesSpoken"),
}

func fieldsOfTier(t Tier) []Field {
	var out []Field
	for _, f := range TrackedFields {
		if f.Tier == t {
			out = append(out, f)
		}
	}
	return out
}

func fieldByName(name string) Field {
	for _, f := range TrackedFields {
		if f.Name == name {
			return f
		}
	}
	panic("validation: unknown tracked field " + name)
}

func text(s string) bool { return strings.TrimSpace(s) != "" }

func optText(s *string) bool { return s != nil && text(*s) }

func list(s []string) bool {
	for _, v := range s {
		if text(v) {
			return true
		}
	}
	return false
}

func date(t *time.Time) bool { return t != nil && !t.IsZero() }
