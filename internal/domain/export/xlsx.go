package export

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the flat export.
const SheetName = "Registry"

var xlsxHeader = []any{
	"registryCode", "name", "categoryCode", "categoryId", "address", "city", "region",
	"country", "postalCode", "latitude", "longitude", "phone", "email", "website",
	"openingHours", "priceRange", "capacity", "status", "isActive", "isFeatured",
	"legalName", "registrationNumber", "licenseNumber", "licenseExpiryDate",
	"completenessScore", "complianceScore", "verificationStatus",
}

func renderXLSX(doc Document) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(SheetName, "A1", &xlsxHeader); err != nil {
		return nil, err
	}

	for i, it := range doc.Items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := flatRow(it)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func flatRow(it Item) []any {
	var lat, lon any = "", ""
	if c := it.Location.Coordinates; c != nil {
		lat, lon = c.Latitude, c.Longitude
	}
	var capacity any = ""
	if it.BusinessInfo.Capacity != nil {
		capacity = *it.BusinessInfo.Capacity
	}

	row := []any{
		it.RegistryCode, it.Name, it.Category.Code, it.Category.ID,
		it.Location.Address, it.Location.City, it.Location.Region, it.Location.Country,
		it.Location.PostalCode, lat, lon,
		it.Contact.Phone, it.Contact.Email, it.Contact.Website,
		it.BusinessInfo.OpeningHours, it.BusinessInfo.PriceRange, capacity,
		it.Status.Status, it.Status.IsActive, it.Status.IsFeatured,
	}

	c := it.Compliance
	if c == nil {
		return append(row, "", "", "", "", "", "", "")
	}
	return append(row,
		c.LegalName, c.RegistrationNumber, c.LicenseNumber, c.LicenseExpiryDate,
		intCell(c.CompletenessScore), intCell(c.ComplianceScore), strings.TrimSpace(c.VerificationStatus),
	)
}

func intCell(p *int) any {
	if p == nil {
		return ""
	}
	return *p
}
