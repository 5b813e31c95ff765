// Package ranker orders products and groups them into recommendation buckets.
package ranker

import (
	"cmp"
	"slices"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/matcher"
)

const (
	hiddenGemMinRating  = 4.5
	hiddenGemMinReviews = 100
	trendingMinReviews  = 50
)

// Buckets groups ps into three independent lists of at most
// [domain.BucketSize] products. A product may appear in several buckets.
func Buckets(ps []domain.Product) domain.Buckets {
	return domain.Buckets{
		HiddenGems:  hiddenGems(ps),
		ValueVault:  valueVault(ps),
		TrendingNow: trendingNow(ps),
	}
}

func hiddenGems(ps []domain.Product) []domain.Product {
	out := keep(ps, func(p domain.Product) bool {
		return p.Rating >= hiddenGemMinRating && p.ReviewCount >= hiddenGemMinReviews
	})
	slices.SortStableFunc(out, byRatingDesc)
	return head(out, domain.BucketSize)
}

func valueVault(ps []domain.Product) []domain.Product {
	type discounted struct {
		p      domain.Product
		amount float64
	}

	ds := make([]discounted, 0, len(ps))
	for _, p := range ps {
		if amount, ok := discount(p); ok {
			ds = append(ds, discounted{p, amount})
		}
	}
	slices.SortStableFunc(ds, func(a, b discounted) int {
		return cmp.Compare(b.amount, a.amount)
	})

	out := make([]domain.Product, 0, min(len(ds), domain.BucketSize))
	for _, d := range head(ds, domain.BucketSize) {
		out = append(out, d.p)
	}
	return out
}

func trendingNow(ps []domain.Product) []domain.Product {
	out := keep(ps, func(p domain.Product) bool {
		return p.ReviewCount >= trendingMinReviews
	})
	slices.SortStableFunc(out, func(a, b domain.Product) int {
		return cmp.Compare(b.ReviewCount, a.ReviewCount)
	})
	return head(out, domain.BucketSize)
}

// TopRated returns up to n rated products, highest rating first.
// Ties keep input order.
func TopRated(ps []domain.Product, n int) []domain.Product {
	if n <= 0 {
		return []domain.Product{}
	}
	out := keep(ps, domain.Product.Rated)
	slices.SortStableFunc(out, byRatingDesc)
	return head(out, n)
}

// Discounted returns every product whose final price is below its price,
// in input order. Products with unparsable prices are skipped.
func Discounted(ps []domain.Product) []domain.Product {
	return keep(ps, func(p domain.Product) bool {
		_, ok := discount(p)
		return ok
	})
}

// BestSellers returns the top n rated products of a category.
func BestSellers(ps []domain.Product, category string, n int) []domain.Product {
	return TopRated(matcher.ByCategory(ps, category), n)
}

// OnSale returns products flagged by the feed's reduced price marker.
func OnSale(ps []domain.Product) []domain.Product {
	return keep(ps, domain.Product.OnSale)
}

func byRatingDesc(a, b domain.Product) int {
	return cmp.Compare(b.Rating, a.Rating)
}

func keep(ps []domain.Product, fn func(domain.Product) bool) []domain.Product {
	out := make([]domain.Product, 0, len(ps))
	for _, p := range ps {
		if fn(p) {
			out = append(out, p)
		}
	}
	return out
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n:n]
	}
	return s
}
