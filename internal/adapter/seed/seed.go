// Package seed provides the static product dataset the catalog falls
// back to when no cached snapshot is usable.
package seed

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"gopkg.in/yaml.v3"
)

var _ port.SeedSource = (*Source)(nil)

//go:embed products.yaml
var embedded []byte

type document struct {
	Products []record `yaml:"products"`
}

type record struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Brand       string   `yaml:"brand"`
	Description string   `yaml:"description"`
	Category    string   `yaml:"category"`
	Categories  []string `yaml:"categories"`
	Tags        []string `yaml:"tags"`
	Price       string   `yaml:"price"`
	FinalPrice  string   `yaml:"final_price"`
	Rating      float64  `yaml:"rating"`
	ReviewCount int      `yaml:"review_count"`
	Discount    string   `yaml:"discount"`
	Gender      string   `yaml:"gender"`
	Delivery    bool     `yaml:"delivery"`
	Pickup      bool     `yaml:"pickup"`
	Sizes       []string `yaml:"sizes"`
	Colors      []string `yaml:"colors"`
	ImageURL    string   `yaml:"image_url"`
	URL         string   `yaml:"url"`
}

func (r record) toDomain() domain.Product {
	return domain.Product{
		ID:                   r.ID,
		Title:                r.Title,
		Brand:                r.Brand,
		Description:          r.Description,
		Category:             domain.Category(r.Category),
		Categories:           r.Categories,
		Tags:                 r.Tags,
		Price:                r.Price,
		FinalPrice:           r.FinalPrice,
		Rating:               r.Rating,
		ReviewCount:          r.ReviewCount,
		Discount:             r.Discount,
		Gender:               domain.Gender(r.Gender),
		AvailableForDelivery: r.Delivery,
		AvailableForPickup:   r.Pickup,
		Sizes:                r.Sizes,
		Colors:               r.Colors,
		ImageURL:             r.ImageURL,
		URL:                  r.URL,
	}
}

// A Source reads products from a YAML document.
type Source struct {
	name string
	data []byte
}

// Embedded returns the dataset compiled into the binary.
func Embedded() Source {
	return Source{name: "embedded", data: embedded}
}

// FromFile reads the dataset from path.
func FromFile(path string) (Source, error) {
	const op = "seed.FromFile"

	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("%s: %w", op, err)
	}
	return Source{name: path, data: data}, nil
}

func (s Source) SeedProducts() ([]domain.Product, error) {
	const op = "Source.SeedProducts"

	var doc document
	if err := yaml.Unmarshal(s.data, &doc); err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, s.name, err)
	}

	ps := make([]domain.Product, len(doc.Products))
	for i, r := range doc.Products {
		ps[i] = r.toDomain()
	}
	return ps, nil
}
