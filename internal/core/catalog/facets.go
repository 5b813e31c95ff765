package catalog

import (
	"cmp"
	"slices"

	"github.com/niksmo/storefront/internal/core/domain"
)

// Categories counts products per category label.
//
// The first entry is [domain.AllCategories] with the total,
// the rest are ordered by count desc, then name asc.
func Categories(ps []domain.Product) []domain.CategoryCount {
	counts := make(map[string]int)
	for _, p := range ps {
		counts[string(p.Category)]++
	}

	out := make([]domain.CategoryCount, 0, len(counts)+1)
	for name, n := range counts {
		out = append(out, domain.CategoryCount{Name: name, Count: n})
	}
	slices.SortFunc(out, func(a, b domain.CategoryCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	all := domain.CategoryCount{Name: domain.AllCategories, Count: len(ps)}
	return append([]domain.CategoryCount{all}, out...)
}

// Tags returns the sorted set of tags used in ps.
func Tags(ps []domain.Product) []string {
	var out []string
	for _, p := range ps {
		out = append(out, p.Tags...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
