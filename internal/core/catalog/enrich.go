package catalog

import (
	"strings"

	"github.com/niksmo/storefront/internal/core/classifier"
	"github.com/niksmo/storefront/internal/core/domain"
)

// Enrich fills derivable fields a raw feed record left empty:
// category from the category path and title, brand from the title,
// tags from the path and description, and gender for apparel.
// Fields already set are kept.
func Enrich(p domain.Product) domain.Product {
	path := strings.Join(p.Categories, "|")

	if p.Category == "" {
		p.Category = classifier.Classify(path + " " + p.Title)
	}
	if p.Brand == "" && p.Title != "" {
		p.Brand = classifier.ExtractBrand(p.Title)
	}
	if p.Tags == nil {
		p.Tags = classifier.ExtractTags(path, p.Description)
	}
	if p.Gender == "" && p.Category.Apparel() {
		p.Gender = classifier.DeriveGender(append([]string{p.Title}, p.Categories...)...)
	}
	return p
}
