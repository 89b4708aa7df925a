// Package registry provides the tourism registry record and its storage contract.
// A record describes one attraction, lodging or service submitted to the municipal catalog.
package registry

import (
	"strings"
	"time"

	"tourreg/internal/core/apperror"
	"tourreg/internal/core/id"
	"tourreg/internal/domain/regcode"
)

// Status is the workflow state of a record. Transitions are driven externally.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// PriceRange is the coarse price level of a venue.
type PriceRange string

const (
	PriceFree     PriceRange = "free"
	PriceBudget   PriceRange = "budget"
	PriceModerate PriceRange = "moderate"
	PriceUpscale  PriceRange = "upscale"
	PriceLuxury   PriceRange = "luxury"
)

// IsValid reports whether p is a known price range.
func (p PriceRange) IsValid() bool {
	switch p {
	case PriceFree, PriceBudget, PriceModerate, PriceUpscale, PriceLuxury:
		return true
	}
	return false
}

// VerificationStatus tracks the last on-site or documentary verification.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationExpired  VerificationStatus = "expired"
	VerificationFailed   VerificationStatus = "failed"
)

// IsValid reports whether v is a known verification status.
func (v VerificationStatus) IsValid() bool {
	switch v {
	case VerificationPending, VerificationVerified, VerificationExpired, VerificationFailed:
		return true
	}
	return false
}

// Record is a single registry entry.
// Optional fields are pointers (nil = not provided); collections are nil or empty when absent.
type Record struct {
	ID id.ID `db:"id" json:"id"`

	Name             string  `db:"name" json:"name"`
	Description      *string `db:"description" json:"description,omitempty"`
	ShortDescription *string `db:"short_description" json:"shortDescription,omitempty"`
	CategoryID       string  `db:"category_id" json:"categoryId"`

	// Location
	Address    *string  `db:"address" json:"address,omitempty"`
	City       *string  `db:"city" json:"city,omitempty"`
	Region     string   `db:"region" json:"region"`
	Country    *string  `db:"country" json:"country,omitempty"`
	PostalCode *string  `db:"postal_code" json:"postalCode,omitempty"`
	Latitude   *float64 `db:"latitude" json:"latitude,omitempty"`
	Longitude  *float64 `db:"longitude" json:"longitude,omitempty"`

	// Contact
	Phone   *string `db:"phone" json:"phone,omitempty"`
	Email   *string `db:"email" json:"email,omitempty"`
	Website *string `db:"website" json:"website,omitempty"`

	// Business
	OpeningHours *string     `db:"opening_hours" json:"openingHours,omitempty"`
	PriceRange   *PriceRange `db:"price_range" json:"priceRange,omitempty"`
	Capacity     *int        `db:"capacity" json:"capacity,omitempty"`
	Amenities    []string    `db:"amenities" json:"amenities,omitempty"`

	// Media and SEO
	Images          []string `db:"images" json:"images,omitempty"`
	Videos          []string `db:"videos" json:"videos,omitempty"`
	Tags            []string `db:"tags" json:"tags,omitempty"`
	MetaTitle       *string  `db:"meta_title" json:"metaTitle,omitempty"`
	MetaDescription *string  `db:"meta_description" json:"metaDescription,omitempty"`

	// Lifecycle
	Status     Status `db:"status" json:"status"`
	IsActive   bool   `db:"is_active" json:"isActive"`
	IsFeatured bool   `db:"is_featured" json:"isFeatured"`

	// Compliance block
	LegalName             *string             `db:"legal_name" json:"legalName,omitempty"`
	RegistrationNumber    *string             `db:"registration_number" json:"registrationNumber,omitempty"`
	LicenseNumber         *string             `db:"license_number" json:"licenseNumber,omitempty"`
	LicenseExpiryDate     *time.Time          `db:"license_expiry_date" json:"licenseExpiryDate,omitempty"`
	ResponsibleName       *string             `db:"responsible_name" json:"responsibleName,omitempty"`
	ResponsiblePhone      *string             `db:"responsible_phone" json:"responsiblePhone,omitempty"`
	ResponsibleEmail      *string             `db:"responsible_email" json:"responsibleEmail,omitempty"`
	AccessibilityFeatures []string            `db:"accessibility_features" json:"accessibilityFeatures,omitempty"`
	PaymentMethods        []string            `db:"payment_methods" json:"paymentMethods,omitempty"`
	LanguagesSpoken       []string            `db:"languages_spoken" json:"languagesSpoken,omitempty"`
	Certifications        []string            `db:"certifications" json:"certifications,omitempty"`
	LastVerifiedDate      *time.Time          `db:"last_verified_date" json:"lastVerifiedDate,omitempty"`
	VerificationStatus    *VerificationStatus `db:"verification_status" json:"verificationStatus,omitempty"`

	// Pipeline-owned
	RegistryCode      *string `db:"registry_code" json:"registryCode,omitempty"`
	CompletenessScore *int    `db:"completeness_score" json:"completenessScore,omitempty"`
	ComplianceScore   *int    `db:"compliance_score" json:"complianceScore,omitempty"`

	Version   int       `db:"version" json:"version"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewRecord creates a draft record with a fresh identifier.
func NewRecord(name, categoryID, region string) *Record {
	return &Record{
		ID:         id.New(),
		Name:       name,
		CategoryID: categoryID,
		Region:     region,
		Status:     StatusDraft,
		IsActive:   true,
	}
}

// HasCoordinates reports whether both coordinates are set.
func (r *Record) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// HasRegistryCode reports whether a registry code was already assigned.
func (r *Record) HasRegistryCode() bool {
	return r.RegistryCode != nil && *r.RegistryCode != ""
}

// Validate checks structural constraints (enum values, region shape).
// Missing or malformed business data is not an error here: it is reported by the scorers.
func (r *Record) Validate() error {
	if !r.Status.IsValid() {
		return apperror.NewFieldValidation("status", "invalid status").
			WithDetail("value", string(r.Status))
	}
	if r.PriceRange != nil && !r.PriceRange.IsValid() {
		return apperror.NewFieldValidation("priceRange", "invalid price range").
			WithDetail("value", string(*r.PriceRange))
	}
	if r.VerificationStatus != nil && !r.VerificationStatus.IsValid() {
		return apperror.NewFieldValidation("verificationStatus", "invalid verification status").
			WithDetail("value", string(*r.VerificationStatus))
	}
	if r.Capacity != nil && *r.Capacity < 0 {
		return apperror.NewFieldValidation("capacity", "capacity cannot be negative")
	}
	if strings.TrimSpace(r.Region) != "" {
		if _, err := regcode.NormalizeRegion(r.Region); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy so callers can mutate without aliasing.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.Description = clonePtr(r.Description)
	c.ShortDescription = clonePtr(r.ShortDescription)
	c.Address = clonePtr(r.Address)
	c.City = clonePtr(r.City)
	c.Country = clonePtr(r.Country)
	c.PostalCode = clonePtr(r.PostalCode)
	c.Latitude = clonePtr(r.Latitude)
	c.Longitude = clonePtr(r.Longitude)
	c.Phone = clonePtr(r.Phone)
	c.Email = clonePtr(r.Email)
	c.Website = clonePtr(r.Website)
	c.OpeningHours = clonePtr(r.OpeningHours)
	c.PriceRange = clonePtr(r.PriceRange)
	c.Capacity = clonePtr(r.Capacity)
	c.Amenities = cloneSlice(r.Amenities)
	c.Images = cloneSlice(r.Images)
	c.Videos = cloneSlice(r.Videos)
	c.Tags = cloneSlice(r.Tags)
	c.MetaTitle = clonePtr(r.MetaTitle)
	c.MetaDescription = clonePtr(r.MetaDescription)
	c.LegalName = clonePtr(r.LegalName)
	c.RegistrationNumber = clonePtr(r.RegistrationNumber)
	c.LicenseNumber = clonePtr(r.LicenseNumber)
	c.LicenseExpiryDate = clonePtr(r.LicenseExpiryDate)
	c.ResponsibleName = clonePtr(r.ResponsibleName)
	c.ResponsiblePhone = clonePtr(r.ResponsiblePhone)
	c.ResponsibleEmail = clonePtr(r.ResponsibleEmail)
	c.AccessibilityFeatures = cloneSlice(r.AccessibilityFeatures)
	c.PaymentMethods = cloneSlice(r.PaymentMethods)
	c.LanguagesSpoken = cloneSlice(r.LanguagesSpoken)
	c.Certifications = cloneSlice(r.Certifications)
	c.LastVerifiedDate = clonePtr(r.LastVerifiedDate)
	c.VerificationStatus = clonePtr(r.VerificationStatus)
	c.RegistryCode = clonePtr(r.RegistryCode)
	c.CompletenessScore = clonePtr(r.CompletenessScore)
	c.ComplianceScore = clonePtr(r.ComplianceScore)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneSlice(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
