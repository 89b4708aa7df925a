package export

import (
	"strconv"
	"strings"
)

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// EscapeXML escapes the five predefined XML entities.
func EscapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

type xmlWriter struct {
	b     strings.Builder
	depth int
}

func (w *xmlWriter) indent() {
	w.b.WriteString(strings.Repeat("  ", w.depth))
}

func (w *xmlWriter) open(name string) {
	w.indent()
	w.b.WriteString("<" + name + ">\n")
	w.depth++
}

func (w *xmlWriter) close(name string) {
	w.depth--
	w.indent()
	w.b.WriteString("</" + name + ">\n")
}

func (w *xmlWriter) leaf(name, value string) {
	w.indent()
	if value == "" {
		w.b.WriteString("<" + name + "/>\n")
		return
	}
	w.b.WriteString("<" + name + ">" + EscapeXML(value) + "</" + name + ">\n")
}

func (w *xmlWriter) list(name, elem string, values []string) {
	if len(values) == 0 {
		w.leaf(name, "")
		return
	}
	w.open(name)
	for _, v := range values {
		w.leaf(elem, v)
	}
	w.close(name)
}

func renderXML(doc Document) []byte {
	w := &xmlWriter{}
	w.b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	w.open("tourismRegistry")
	w.leaf("version", doc.Version)
	w.leaf("generatedAt", doc.GeneratedAt)
	w.leaf("origin", doc.Origin)
	w.leaf("region", doc.Region)
	w.leaf("state", doc.State)
	w.leaf("totalItems", strconv.Itoa(doc.TotalItems))
	w.open("items")
	for _, item := range doc.Items {
		writeItem(w, item)
	}
	w.close("items")
	w.close("tourismRegistry")
	return []byte(w.b.String())
}

func writeItem(w *xmlWriter, it Item) {
	w.open("item")
	w.leaf("registryCode", it.RegistryCode)
	w.leaf("name", it.Name)
	w.leaf("description", it.Description)
	w.leaf("shortDescription", it.ShortDescription)

	w.open("category")
	w.leaf("code", it.Category.Code)
	w.leaf("id", it.Category.ID)
	w.close("category")

	w.open("location")
	w.leaf("address", it.Location.Address)
	w.leaf("city", it.Location.City)
	w.leaf("region", it.Location.Region)
	w.leaf("country", it.Location.Country)
	w.leaf("postalCode", it.Location.PostalCode)
	if c := it.Location.Coordinates; c != nil {
		w.open("coordinates")
		w.leaf("latitude", formatFloat(c.Latitude))
		w.leaf("longitude", formatFloat(c.Longitude))
		w.close("coordinates")
	}
	w.close("location")

	w.open("contact")
	w.leaf("phone", it.Contact.Phone)
	w.leaf("email", it.Contact.Email)
	w.leaf("website", it.Contact.Website)
	w.close("contact")

	w.open("businessInfo")
	w.leaf("openingHours", it.BusinessInfo.OpeningHours)
	w.leaf("priceRange", it.BusinessInfo.PriceRange)
	w.leaf("capacity", formatIntPtr(it.BusinessInfo.Capacity))
	w.list("amenities", "amenity", it.BusinessInfo.Amenities)
	w.close("businessInfo")

	w.open("media")
	w.list("images", "image", it.Media.Images)
	w.list("videos", "video", it.Media.Videos)
	w.close("media")

	w.open("seo")
	w.leaf("metaTitle", it.SEO.MetaTitle)
	w.leaf("metaDescription", it.SEO.MetaDescription)
	w.list("tags", "tag", it.SEO.Tags)
	w.close("seo")

	w.open("status")
	w.leaf("status", it.Status.Status)
	w.leaf("isActive", strconv.FormatBool(it.Status.IsActive))
	w.leaf("isFeatured", strconv.FormatBool(it.Status.IsFeatured))
	w.close("status")

	if c := it.Compliance; c != nil {
		w.open("compliance")
		w.leaf("legalName", c.LegalName)
		w.leaf("registrationNumber", c.RegistrationNumber)
		w.leaf("licenseNumber", c.LicenseNumber)
		w.leaf("licenseExpiryDate", c.LicenseExpiryDate)
		w.open("responsible")
		w.leaf("name", c.Responsible.Name)
		w.leaf("phone", c.Responsible.Phone)
		w.leaf("email", c.Responsible.Email)
		w.close("responsible")
		w.list("accessibilityFeatures", "feature", c.AccessibilityFeatures)
		w.list("paymentMethods", "method", c.PaymentMethods)
		w.list("languagesSpoken", "language", c.LanguagesSpoken)
		w.list("certifications", "certification", c.Certifications)
		w.leaf("completenessScore", formatIntPtr(c.CompletenessScore))
		w.leaf("complianceScore", formatIntPtr(c.ComplianceScore))
		w.leaf("lastVerifiedDate", c.LastVerifiedDate)
		w.leaf("verificationStatus", c.VerificationStatus)
		w.close("compliance")
	}
	w.close("item")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatIntPtr(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}
