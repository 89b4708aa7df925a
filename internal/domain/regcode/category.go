package regcode

import "strings"

// FallbackCategoryCode is used for categories missing from the table.
const FallbackCategoryCode = "GEN"

// Category describes one tourism category known to the registry.
type Category struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// categories is the static category -> code table. Order is display order.
var categories = []Category{
	{ID: "natural", Code: "NAT", Name: "Natural attraction"},
	{ID: "cultural", Code: "CUL", Name: "Cultural attraction"},
	{ID: "historical", Code: "HIS", Name: "Historical site"},
	{ID: "adventure", Code: "AVT", Name: "Adventure tourism"},
	{ID: "gastronomy", Code: "GAS", Name: "Gastronomy"},
	{ID: "lodging", Code: "HOS", Name: "Lodging"},
	{ID: "events", Code: "EVT", Name: "Events venue"},
	{ID: "shopping", Code: "COM", Name: "Shopping"},
	{ID: "services", Code: "SRV", Name: "Tourism services"},
	{ID: "religious", Code: "REL", Name: "Religious tourism"},
	{ID: "rural", Code: "RUR", Name: "Rural tourism"},
	{ID: "nightlife", Code: "NGT", Name: "Nightlife"},
	{ID: "sports", Code: "ESP", Name: "Sports"},
	{ID: "beach", Code: "PRA", Name: "Beach"},
}

var categoryByID = func() map[string]Category {
	m := make(map[string]Category, len(categories))
	for _, c := range categories {
		m[c.ID] = c
	}
	return m
}()

// Categories returns a copy of the category table.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// CategoryCode resolves the 3-letter code for a category id.
// Lookup is case-insensitive; unknown ids map to FallbackCategoryCode.
func CategoryCode(categoryID string) string {
	if c, ok := categoryByID[strings.ToLower(strings.TrimSpace(categoryID))]; ok {
		return c.Code
	}
	return FallbackCategoryCode
}

// LookupCategory returns the table entry for a category id.
func LookupCategory(categoryID string) (Category, bool) {
	c, ok := categoryByID[strings.ToLower(strings.TrimSpace(categoryID))]
	return c, ok
}
