package domain

// A Category is one normalized catalog department.
type Category string

const (
	Beauty        Category = "Beauty"
	Shoes         Category = "Shoes"
	Electronics   Category = "Electronics"
	Home          Category = "Home"
	Sports        Category = "Sports"
	Toys          Category = "Toys"
	Office        Category = "Office"
	Automotive    Category = "Automotive"
	Garden        Category = "Garden"
	Accessories   Category = "Accessories"
	Clothing      Category = "Clothing"
	OtherClothing Category = "Other Clothing"

	// Unclassified is returned when no keyword matches.
	// It is displayed as its own "Other" group.
	Unclassified Category = "Other"
)

// Apparel reports whether the category belongs to the clothing family,
// where gender and garment type are meaningful.
func (c Category) Apparel() bool {
	switch c {
	case Clothing, Shoes, Accessories, OtherClothing:
		return true
	}
	return false
}

type Gender string

const (
	Men    Gender = "Men"
	Women  Gender = "Women"
	Unisex Gender = "Unisex"
)

// A GarmentType is the fine grained axis inside the clothing family.
type GarmentType string

const (
	Tops         GarmentType = "Tops"
	Bottoms      GarmentType = "Bottoms"
	Dresses      GarmentType = "Dresses"
	Jackets      GarmentType = "Jackets"
	Outerwear    GarmentType = "Outerwear"
	Footwear     GarmentType = "Shoes"
	Accessory    GarmentType = "Accessories"
	Ethnic       GarmentType = "Ethnic"
	OtherGarment GarmentType = "Other"
)

// A Classification is the result of classifying a label or query.
//
// Gender and Type are empty unless Category is apparel.
type Classification struct {
	Category Category
	Gender   Gender
	Type     GarmentType
}
