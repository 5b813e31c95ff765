package schema

import (
	"time"

	"github.com/hamba/avro/v2"
)

// CatalogSchemaTextV1 is the cached catalog snapshot.
const CatalogSchemaTextV1 = `{
	"type": "record",
	"namespace": "storefront",
	"name": "catalog",
	"fields": [
		{"name": "created_at", "type": {"type": "long", "logicalType": "timestamp-millis"}},
		{"name": "products", "type": {"type": "array", "items": {
			"type": "record",
			"name": "product",
			"fields": [
				{"name": "id", "type": "string"},
				{"name": "title", "type": "string"},
				{"name": "brand", "type": "string"},
				{"name": "description", "type": "string"},
				{"name": "category", "type": "string"},
				{"name": "categories", "type": {"type": "array", "items": "string"}},
				{"name": "tags", "type": {"type": "array", "items": "string"}},
				{"name": "price", "type": "string"},
				{"name": "final_price", "type": "string"},
				{"name": "rating", "type": "double"},
				{"name": "review_count", "type": "long"},
				{"name": "discount", "type": "string"},
				{"name": "gender", "type": "string"},
				{"name": "available_for_delivery", "type": "boolean"},
				{"name": "available_for_pickup", "type": "boolean"},
				{"name": "sizes", "type": {"type": "array", "items": "string"}},
				{"name": "colors", "type": {"type": "array", "items": "string"}},
				{"name": "image_url", "type": "string"},
				{"name": "url", "type": "string"}
			]
		}}}
	]
}`

type (
	CatalogV1 struct {
		CreatedAt time.Time   `avro:"created_at"`
		Products  []ProductV1 `avro:"products"`
	}

	ProductV1 struct {
		ID                   string   `avro:"id"`
		Title                string   `avro:"title"`
		Brand                string   `avro:"brand"`
		Description          string   `avro:"description"`
		Category             string   `avro:"category"`
		Categories           []string `avro:"categories"`
		Tags                 []string `avro:"tags"`
		Price                string   `avro:"price"`
		FinalPrice           string   `avro:"final_price"`
		Rating               float64  `avro:"rating"`
		ReviewCount          int64    `avro:"review_count"`
		Discount             string   `avro:"discount"`
		Gender               string   `avro:"gender"`
		AvailableForDelivery bool     `avro:"available_for_delivery"`
		AvailableForPickup   bool     `avro:"available_for_pickup"`
		Sizes                []string `avro:"sizes"`
		Colors               []string `avro:"colors"`
		ImageURL             string   `avro:"image_url"`
		URL                  string   `avro:"url"`
	}
)

func CatalogV1Avro() avro.Schema {
	return avro.MustParse(CatalogSchemaTextV1)
}
