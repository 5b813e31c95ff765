// Package classifier maps free category labels and query text
// to normalized catalog categories.
//
// Matching is case-insensitive substring containment against ordered
// keyword tables. Tables are walked top to bottom and the first entry
// containing a matching keyword wins, so reordering them changes results.
package classifier

import (
	"strings"

	"github.com/niksmo/storefront/internal/core/domain"
)

type rule struct {
	category domain.Category
	keywords []string
}

// departments is evaluated in order. Shoes and Electronics must stay
// above Clothing: "Women's Running Shoes" is Shoes and "laptop" holds "top".
var departments = []rule{
	{domain.Beauty, []string{
		"beauty", "makeup", "skincare", "cosmetic", "lipstick",
		"mascara", "foundation", "perfume",
	}},
	{domain.Shoes, []string{
		"shoes", "shoe", "footwear", "sneakers", "boots", "sandals", "heels",
	}},
	{domain.Electronics, []string{
		"electronics", "laptop", "smartwatch", "headphone", "tech",
		"gadget", "phone", "camera", "tv",
	}},
	{domain.Home, []string{
		"home", "decor", "furniture", "kitchen", "bedding", "cookware",
	}},
	{domain.Sports, []string{"sports", "fitness", "exercise", "yoga", "gym"}},
	{domain.Toys, []string{"toys", "games", "entertainment"}},
	{domain.Office, []string{"books", "stationery", "office"}},
	{domain.Automotive, []string{"automotive", "vehicle"}},
	{domain.Garden, []string{"garden", "outdoor", "lawn"}},
	{domain.Accessories, []string{
		"accessories", "jewelry", "watch", "handbag", "backpack", "sunglasses",
	}},
	{domain.Clothing, []string{
		"clothing", "clothes", "apparel", "fashion",
		"t-shirt", "tshirt", "shirt", "tops", "blouse", "blazer",
		"jeans", "pants", "trousers", "shorts", "skirt",
		"dress", "jacket", "coat", "hoodie", "sweater",
		"kurta", "saree", "ethnic",
	}},
}

// clothingMarkers catch labels that are apparel without naming a garment,
// e.g. "Innerwear" or "Cloth Masks".
var clothingMarkers = []string{"cloth", "apparel", "fashion", "wear"}

type garmentRule struct {
	keyword string
	garment domain.GarmentType
}

// garments is evaluated in order, first match wins.
var garments = []garmentRule{
	{"tshirt", domain.Tops},
	{"t-shirt", domain.Tops},
	{"shirt", domain.Tops},
	{"top", domain.Tops},
	{"blouse", domain.Tops},
	{"jeans", domain.Bottoms},
	{"pants", domain.Bottoms},
	{"trousers", domain.Bottoms},
	{"shorts", domain.Bottoms},
	{"skirt", domain.Bottoms},
	{"dress", domain.Dresses},
	{"jacket", domain.Jackets},
	{"blazer", domain.Jackets},
	{"coat", domain.Jackets},
	{"hoodie", domain.Outerwear},
	{"sweater", domain.Outerwear},
	{"shoes", domain.Footwear},
	{"sneakers", domain.Footwear},
	{"boots", domain.Footwear},
	{"accessories", domain.Accessory},
	{"jewelry", domain.Accessory},
	{"hat", domain.Accessory},
	{"bag", domain.Accessory},
	{"watch", domain.Accessory},
	{"ethnic", domain.Ethnic},
	{"kurta", domain.Ethnic},
	{"saree", domain.Ethnic},
}

// Classify returns the category of a raw label or a free text query.
//
// It returns [domain.OtherClothing] for apparel labels naming no department
// and [domain.Unclassified] when nothing matches.
func Classify(text string) domain.Category {
	lower := strings.ToLower(text)
	if lower == "" {
		return domain.Unclassified
	}

	for _, r := range departments {
		if containsAny(lower, r.keywords) {
			return r.category
		}
	}

	if containsAny(lower, clothingMarkers) {
		return domain.OtherClothing
	}
	return domain.Unclassified
}

// Describe classifies text and, for apparel, derives gender and garment type.
func Describe(text string) domain.Classification {
	c := domain.Classification{Category: Classify(text)}
	if !c.Category.Apparel() {
		return c
	}
	c.Gender = DeriveGender(text)
	c.Type = garmentType(strings.ToLower(text))
	return c
}

// IsCategoryQuery reports whether text names any known department keyword.
func IsCategoryQuery(text string) bool {
	lower := strings.ToLower(text)
	for _, r := range departments {
		if containsAny(lower, r.keywords) {
			return true
		}
	}
	return false
}

// DeriveGender checks the women keywords first: "women" contains "men".
func DeriveGender(texts ...string) domain.Gender {
	lower := strings.ToLower(strings.Join(texts, " "))
	switch {
	case containsAny(lower, []string{"women", "ladies", "girl"}):
		return domain.Women
	case containsAny(lower, []string{"men", "boy"}):
		return domain.Men
	}
	return domain.Unisex
}

func garmentType(lower string) domain.GarmentType {
	for _, g := range garments {
		if strings.Contains(lower, g.keyword) {
			return g.garment
		}
	}
	return domain.OtherGarment
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
