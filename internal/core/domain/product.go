package domain

import "strings"

// A Product is an immutable catalog record.
//
// Optional fields are absent when they hold their zero value:
// an empty string for Discount, Gender, ImageURL and URL,
// a nil slice for Sizes and Colors.
type Product struct {
	ID          string
	Title       string
	Brand       string
	Description string
	Category    Category
	Categories  []string
	Tags        []string
	Price       string
	FinalPrice  string
	Rating      float64
	ReviewCount int
	Discount    string
	Gender      Gender

	AvailableForDelivery bool
	AvailableForPickup   bool

	Sizes    []string
	Colors   []string
	ImageURL string
	URL      string
}

const (
	MinRating = 0
	MaxRating = 5
)

// reducedPriceMarker is the Discount text used by the catalog feed
// for products on sale.
const reducedPriceMarker = "reduced price"

// Rated reports whether the product has a rating at all.
func (p Product) Rated() bool {
	return p.Rating > MinRating
}

// OnSale reports whether the Discount marker flags a reduced price.
func (p Product) OnSale() bool {
	return strings.Contains(strings.ToLower(p.Discount), reducedPriceMarker)
}

// InCategory reports whether the product is labelled with name
// or lists it in its category path.
func (p Product) InCategory(name string) bool {
	if string(p.Category) == name {
		return true
	}
	for _, c := range p.Categories {
		if c == name {
			return true
		}
	}
	return false
}

// HasTag reports whether tag is stored on the product as is.
func (p Product) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Normalized returns a copy of p that satisfies the load invariants:
// lowercase trimmed tags without empties and a rating within range.
func (p Product) Normalized() Product {
	if p.Rating < MinRating {
		p.Rating = MinRating
	}
	if p.Rating > MaxRating {
		p.Rating = MaxRating
	}
	if p.ReviewCount < 0 {
		p.ReviewCount = 0
	}

	if p.Tags != nil {
		tags := make([]string, 0, len(p.Tags))
		for _, t := range p.Tags {
			t = strings.ToLower(strings.TrimSpace(t))
			if t != "" {
				tags = append(tags, t)
			}
		}
		p.Tags = tags
	}
	return p
}

// A CategoryCount is a facet entry for catalog browsing.
type CategoryCount struct {
	Name  string
	Count int
}

// AllCategories is the category name that selects the whole catalog.
const AllCategories = "All"
