// Package export renders validated registry records in the interchange format
// consumed by the national statistics authority.
package export

import (
	"time"

	"tourreg/internal/domain/regcode"
	"tourreg/internal/domain/registry"
)

const dateLayout = "2006-01-02"

// Document is the top-level envelope.
type Document struct {
	Version     string `json:"version"`
	GeneratedAt string `json:"generatedAt"`
	Origin      string `json:"origin"`
	Region      string `json:"region"`
	State       string `json:"state"`
	TotalItems  int    `json:"totalItems"`
	Items       []Item `json:"items"`
}

// Item is one record in interchange form.
type Item struct {
	RegistryCode     string          `json:"registryCode"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	ShortDescription string          `json:"shortDescription"`
	Category         CategoryRef     `json:"category"`
	Location         Location        `json:"location"`
	Contact          Contact         `json:"contact"`
	BusinessInfo     BusinessInfo    `json:"businessInfo"`
	Media            Media           `json:"media"`
	SEO              SEO             `json:"seo"`
	Status           StatusInfo      `json:"status"`
	Compliance       *ComplianceInfo `json:"compliance,omitempty"`
}

type CategoryRef struct {
	Code string `json:"code"`
	ID   string `json:"id"`
}

type Location struct {
	Address     string       `json:"address"`
	City        string       `json:"city"`
	Region      string       `json:"region"`
	Country     string       `json:"country"`
	PostalCode  string       `json:"postalCode"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Contact struct {
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Website string `json:"website"`
}

type BusinessInfo struct {
	OpeningHours string   `json:"openingHours"`
	PriceRange   string   `json:"priceRange"`
	Capacity     *int     `json:"capacity,omitempty"`
	Amenities    []string `json:"amenities"`
}

type Media struct {
	Images []string `json:"images"`
	Videos []string `json:"videos"`
}

type SEO struct {
	MetaTitle       string   `json:"metaTitle"`
	MetaDescription string   `json:"metaDescription"`
	Tags            []string `json:"tags"`
}

type StatusInfo struct {
	Status     string `json:"status"`
	IsActive   bool   `json:"isActive"`
	IsFeatured bool   `json:"isFeatured"`
}

// ComplianceInfo is present only when the record carries compliance data.
type ComplianceInfo struct {
	LegalName             string      `json:"legalName"`
	RegistrationNumber    string      `json:"registrationNumber"`
	LicenseNumber         string      `json:"licenseNumber"`
	LicenseExpiryDate     string      `json:"licenseExpiryDate"`
	Responsible           Responsible `json:"responsible"`
	AccessibilityFeatures []string    `json:"accessibilityFeatures"`
	PaymentMethods        []string    `json:"paymentMethods"`
	LanguagesSpoken       []string    `json:"languagesSpoken"`
	Certifications        []string    `json:"certifications"`
	CompletenessScore     *int        `json:"completenessScore,omitempty"`
	ComplianceScore       *int        `json:"complianceScore,omitempty"`
	LastVerifiedDate      string      `json:"lastVerifiedDate"`
	VerificationStatus    string      `json:"verificationStatus"`
}

type Responsible struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// ToItem maps a record into the interchange schema. rec is not modified.
func ToItem(rec *registry.Record) Item {
	item := Item{
		RegistryCode:     str(rec.RegistryCode),
		Name:             rec.Name,
		Description:      str(rec.Description),
		ShortDescription: str(rec.ShortDescription),
		Category: CategoryRef{
			Code: regcode.CategoryCode(rec.CategoryID),
			ID:   rec.CategoryID,
		},
		Location: Location{
			Address:    str(rec.Address),
			City:       str(rec.City),
			Region:     rec.Region,
			Country:    str(rec.Country),
			PostalCode: str(rec.PostalCode),
		},
		Contact: Contact{
			Phone:   str(rec.Phone),
			Email:   str(rec.Email),
			Website: str(rec.Website),
		},
		BusinessInfo: BusinessInfo{
			OpeningHours: str(rec.OpeningHours),
			Capacity:     copyInt(rec.Capacity),
			Amenities:    list(rec.Amenities),
		},
		Media: Media{
			Images: list(rec.Images),
			Videos: list(rec.Videos),
		},
		SEO: SEO{
			MetaTitle:       str(rec.MetaTitle),
			MetaDescription: str(rec.MetaDescription),
			Tags:            list(rec.Tags),
		},
		Status: StatusInfo{
			Status:     string(rec.Status),
			IsActive:   rec.IsActive,
			IsFeatured: rec.IsFeatured,
		},
	}
	if rec.PriceRange != nil {
		item.BusinessInfo.PriceRange = string(*rec.PriceRange)
	}
	if rec.HasCoordinates() {
		item.Location.Coordinates = &Coordinates{Latitude: *rec.Latitude, Longitude: *rec.Longitude}
	}
	if hasCompliance(rec) {
		item.Compliance = toCompliance(rec)
	}
	return item
}

func toCompliance(rec *registry.Record) *ComplianceInfo {
	c := &ComplianceInfo{
		LegalName:          str(rec.LegalName),
		RegistrationNumber: str(rec.RegistrationNumber),
		LicenseNumber:      str(rec.LicenseNumber),
		LicenseExpiryDate:  day(rec.LicenseExpiryDate),
		Responsible: Responsible{
			Name:  str(rec.ResponsibleName),
			Phone: str(rec.ResponsiblePhone),
			Email: str(rec.ResponsibleEmail),
		},
		AccessibilityFeatures: list(rec.AccessibilityFeatures),
		PaymentMethods:        list(rec.PaymentMethods),
		LanguagesSpoken:       list(rec.LanguagesSpoken),
		Certifications:        list(rec.Certifications),
		CompletenessScore:     copyInt(rec.CompletenessScore),
		ComplianceScore:       copyInt(rec.ComplianceScore),
		LastVerifiedDate:      day(rec.LastVerifiedDate),
	}
	if rec.VerificationStatus != nil {
		c.VerificationStatus = string(*rec.VerificationStatus)
	}
	return c
}

func hasCompliance(rec *registry.Record) bool {
	return rec.LegalName != nil || rec.RegistrationNumber != nil || rec.LicenseNumber != nil ||
		rec.LicenseExpiryDate != nil || rec.ResponsibleName != nil || rec.ResponsiblePhone != nil ||
		rec.ResponsibleEmail != nil || len(rec.AccessibilityFeatures) > 0 ||
		len(rec.PaymentMethods) > 0 || len(rec.LanguagesSpoken) > 0 ||
		len(rec.Certifications) > 0 || rec.LastVerifiedDate != nil ||
		rec.VerificationStatus != nil || rec.CompletenessScore != nil || rec.ComplianceScore != nil
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func day(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateLayout)
}

func list(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
