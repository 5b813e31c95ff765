// Package matcher filters product collections by category, tags and text.
//
// All functions are pure: they never modify the input slice and return
// products in input order unless stated otherwise.
package matcher

import (
	"cmp"
	"slices"
	"strings"

	"github.com/niksmo/storefront/internal/core/domain"
)

type Query struct {
	Category string
	Tags     []string
	Text     string
}

// ByCategory keeps products labelled with name or listing it in their
// category path. [domain.AllCategories] keeps everything.
func ByCategory(ps []domain.Product, name string) []domain.Product {
	if name == domain.AllCategories {
		return slices.Clone(ps)
	}
	return filter(ps, func(p domain.Product) bool {
		return p.InCategory(name)
	})
}

func ByTag(ps []domain.Product, tag string) []domain.Product {
	return filter(ps, func(p domain.Product) bool {
		return p.HasTag(tag)
	})
}

// ByTags keeps products carrying every tag.
func ByTags(ps []domain.Product, tags []string) []domain.Product {
	out := slices.Clone(ps)
	for _, tag := range tags {
		out = ByTag(out, tag)
	}
	return out
}

// ByTitle keeps products whose title contains text, ignoring case.
func ByTitle(ps []domain.Product, text string) []domain.Product {
	text = strings.ToLower(text)
	return filter(ps, func(p domain.Product) bool {
		return strings.Contains(strings.ToLower(p.Title), text)
	})
}

// ByText keeps products whose searchable text contains every
// whitespace separated token of text. Blank text keeps everything.
func ByText(ps []domain.Product, text string) []domain.Product {
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return slices.Clone(ps)
	}
	return filter(ps, func(p domain.Product) bool {
		haystack := searchable(p)
		for _, tok := range tokens {
			if !strings.Contains(haystack, tok) {
				return false
			}
		}
		return true
	})
}

// Match applies category, tags and text in that order and sorts the
// result by ID so identical queries yield identical sequences.
// Zero fields of q are skipped.
func Match(ps []domain.Product, q Query) []domain.Product {
	out := ps
	if q.Category != "" {
		out = ByCategory(out, q.Category)
	}
	if len(q.Tags) != 0 {
		out = ByTags(out, q.Tags)
	}
	out = ByText(out, q.Text)

	slices.SortStableFunc(out, func(a, b domain.Product) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

func WithDelivery(ps []domain.Product) []domain.Product {
	return filter(ps, func(p domain.Product) bool {
		return p.AvailableForDelivery
	})
}

func WithPickup(ps []domain.Product) []domain.Product {
	return filter(ps, func(p domain.Product) bool {
		return p.AvailableForPickup
	})
}

func searchable(p domain.Product) string {
	fields := make([]string, 0, 3+len(p.Tags))
	fields = append(fields, p.Title, p.Brand, string(p.Category))
	fields = append(fields, p.Tags...)
	return strings.ToLower(strings.Join(fields, " "))
}

func filter(ps []domain.Product, keep func(domain.Product) bool) []domain.Product {
	out := make([]domain.Product, 0, len(ps))
	for _, p := range ps {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
