// Package snapshot encodes the product collection as an avro catalog
// snapshot for the cache.
package snapshot

import (
	"fmt"
	"time"

	"github.com/hamba/avro/v2"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/schema"
)

var _ port.CatalogCodec = (*Codec)(nil)

type Codec struct {
	avroSchema avro.Schema
	now        func() time.Time
}

func NewCodec() Codec {
	return Codec{
		avroSchema: schema.CatalogV1Avro(),
		now:        time.Now,
	}
}

func (c Codec) EncodeCatalog(ps []domain.Product) ([]byte, error) {
	const op = "Codec.EncodeCatalog"

	s := schema.CatalogV1{
		CreatedAt: c.now().UTC(),
		Products:  make([]schema.ProductV1, len(ps)),
	}
	for i, p := range ps {
		s.Products[i] = productToSchemaV1(p)
	}

	data, err := avro.Marshal(c.avroSchema, s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return data, nil
}

func (c Codec) DecodeCatalog(data []byte) ([]domain.Product, error) {
	const op = "Codec.DecodeCatalog"

	var s schema.CatalogV1
	if err := avro.Unmarshal(c.avroSchema, data, &s); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ps := make([]domain.Product, len(s.Products))
	for i, v := range s.Products {
		ps[i] = productFromSchemaV1(v)
	}
	return ps, nil
}

func productToSchemaV1(v domain.Product) (s schema.ProductV1) {
	s.ID = v.ID
	s.Title = v.Title
	s.Brand = v.Brand
	s.Description = v.Description
	s.Category = string(v.Category)
	s.Categories = orEmpty(v.Categories)
	s.Tags = orEmpty(v.Tags)
	s.Price = v.Price
	s.FinalPrice = v.FinalPrice
	s.Rating = v.Rating
	s.ReviewCount = int64(v.ReviewCount)
	s.Discount = v.Discount
	s.Gender = string(v.Gender)
	s.AvailableForDelivery = v.AvailableForDelivery
	s.AvailableForPickup = v.AvailableForPickup
	s.Sizes = orEmpty(v.Sizes)
	s.Colors = orEmpty(v.Colors)
	s.ImageURL = v.ImageURL
	s.URL = v.URL
	return
}

func productFromSchemaV1(s schema.ProductV1) (v domain.Product) {
	v.ID = s.ID
	v.Title = s.Title
	v.Brand = s.Brand
	v.Description = s.Description
	v.Category = domain.Category(s.Category)
	v.Categories = orNil(s.Categories)
	v.Tags = orNil(s.Tags)
	v.Price = s.Price
	v.FinalPrice = s.FinalPrice
	v.Rating = s.Rating
	v.ReviewCount = int(s.ReviewCount)
	v.Discount = s.Discount
	v.Gender = domain.Gender(s.Gender)
	v.AvailableForDelivery = s.AvailableForDelivery
	v.AvailableForPickup = s.AvailableForPickup
	v.Sizes = orNil(s.Sizes)
	v.Colors = orNil(s.Colors)
	v.ImageURL = s.ImageURL
	v.URL = s.URL
	return
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// orNil keeps the absent slice convention: avro has no null arrays here.
func orNil(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}
