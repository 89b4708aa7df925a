package registry

import (
	"strings"
	"time"
)

// Patch is a partial update. Nil fields are left untouched.
// An empty string clears an optional text field; an empty slice clears a collection.
// Pipeline-owned fields (registry code, scores) are not patchable.
type Patch struct {
	// Version is the version the caller read. Zero skips the optimistic check.
	Version int `json:"version,omitempty"`

	Name             *string `json:"name,omitempty"`
	Description      *string `json:"description,omitempty"`
	ShortDescription *string `json:"shortDescription,omitempty"`
	CategoryID       *string `json:"categoryId,omitempty"`

	Address          *string  `json:"address,omitempty"`
	City             *string  `json:"city,omitempty"`
	Region           *string  `json:"region,omitempty"`
	Country          *string  `json:"country,omitempty"`
	PostalCode       *string  `json:"postalCode,omitempty"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
	ClearCoordinates bool     `json:"clearCoordinates,omitempty"`

	Phone   *string `json:"phone,omitempty"`
	Email   *string `json:"email,omitempty"`
	Website *string `json:"website,omitempty"`

	OpeningHours *string     `json:"openingHours,omitempty"`
	PriceRange   *PriceRange `json:"priceRange,omitempty"`
	Capacity     *int        `json:"capacity,omitempty"`
	Amenities    *[]string   `json:"amenities,omitempty"`

	Images          *[]string `json:"images,omitempty"`
	Videos          *[]string `json:"videos,omitempty"`
	Tags            *[]string `json:"tags,omitempty"`
	MetaTitle       *string   `json:"metaTitle,omitempty"`
	MetaDescription *string   `json:"metaDescription,omitempty"`

	Status     *Status `json:"status,omitempty"`
	IsActive   *bool   `json:"isActive,omitempty"`
	IsFeatured *bool   `json:"isFeatured,omitempty"`

	LegalName             *string             `json:"legalName,omitempty"`
	RegistrationNumber    *string             `json:"registrationNumber,omitempty"`
	LicenseNumber         *string             `json:"licenseNumber,omitempty"`
	LicenseExpiryDate     *time.Time          `json:"licenseExpiryDate,omitempty"`
	ResponsibleName       *string             `json:"responsibleName,omitempty"`
	ResponsiblePhone      *string             `json:"responsiblePhone,omitempty"`
	ResponsibleEmail      *string             `json:"responsibleEmail,omitempty"`
	AccessibilityFeatures *[]string           `json:"accessibilityFeatures,omitempty"`
	PaymentMethods        *[]string           `json:"paymentMethods,omitempty"`
	LanguagesSpoken       *[]string           `json:"languagesSpoken,omitempty"`
	Certifications        *[]string           `json:"certifications,omitempty"`
	LastVerifiedDate      *time.Time          `json:"lastVerifiedDate,omitempty"`
	VerificationStatus    *VerificationStatus `json:"verificationStatus,omitempty"`
}

// Apply writes the patch onto r in place.
func (p *Patch) Apply(r *Record) {
	setString(&r.Name, p.Name)
	setOptional(&r.Description, p.Description)
	setOptional(&r.ShortDescription, p.ShortDescription)
	setString(&r.CategoryID, p.CategoryID)

	setOptional(&r.Address, p.Address)
	setOptional(&r.City, p.City)
	if p.Region != nil {
		r.Region = strings.ToUpper(strings.TrimSpace(*p.Region))
	}
	setOptional(&r.Country, p.Country)
	setOptional(&r.PostalCode, p.PostalCode)
	if p.ClearCoordinates {
		r.Latitude, r.Longitude = nil, nil
	}
	setValue(&r.Latitude, p.Latitude)
	setValue(&r.Longitude, p.Longitude)

	setOptional(&r.Phone, p.Phone)
	setOptional(&r.Email, p.Email)
	setOptional(&r.Website, p.Website)

	setOptional(&r.OpeningHours, p.OpeningHours)
	if p.PriceRange != nil {
		if *p.PriceRange == "" {
			r.PriceRange = nil
		} else {
			v := *p.PriceRange
			r.PriceRange = &v
		}
	}
	setValue(&r.Capacity, p.Capacity)
	setSlice(&r.Amenities, p.Amenities)

	setSlice(&r.Images, p.Images)
	setSlice(&r.Videos, p.Videos)
	setSlice(&r.Tags, p.Tags)
	setOptional(&r.MetaTitle, p.MetaTitle)
	setOptional(&r.MetaDescription, p.MetaDescription)

	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.IsActive != nil {
		r.IsActive = *p.IsActive
	}
	if p.IsFeatured != nil {
		r.IsFeatured = *p.IsFeatured
	}

	setOptional(&r.LegalName, p.LegalName)
	setOptional(&r.RegistrationNumber, p.RegistrationNumber)
	setOptional(&r.LicenseNumber, p.LicenseNumber)
	setValue(&r.LicenseExpiryDate, p.LicenseExpiryDate)
	setOptional(&r.ResponsibleName, p.ResponsibleName)
	setOptional(&r.ResponsiblePhone, p.ResponsiblePhone)
	setOptional(&r.ResponsibleEmail, p.ResponsibleEmail)
	setSlice(&r.AccessibilityFeatures, p.AccessibilityFeatures)
	setSlice(&r.PaymentMethods, p.PaymentMethods)
	setSlice(&r.LanguagesSpoken, p.LanguagesSpoken)
	setSlice(&r.Certifications, p.Certifications)
	setValue(&r.LastVerifiedDate, p.LastVerifiedDate)
	if p.VerificationStatus != nil {
		if *p.VerificationStatus == "" {
			r.VerificationStatus = nil
		} else {
			v := *p.VerificationStatus
			r.VerificationStatus = &v
		}
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setOptional(dst **string, v *string) {
	if v == nil {
		return
	}
	if strings.TrimSpace(*v) == "" {
		*dst = nil
		return
	}
	s := *v
	*dst = &s
}

func setValue[T any](dst **T, v *T) {
	if v == nil {
		return
	}
	x := *v
	*dst = &x
}

func setSlice(dst *[]string, v *[]string) {
	if v == nil {
		return
	}
	if len(*v) == 0 {
		*dst = nil
		return
	}
	*dst = cloneSlice(*v)
}
