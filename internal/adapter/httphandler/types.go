package httphandler

import "github.com/niksmo/storefront/internal/core/domain"

// Result slices are never nil so they encode as [].

type (
	Product struct {
		ID                   string   `json:"id"`
		Title                string   `json:"title"`
		Brand                string   `json:"brand"`
		Description          string   `json:"description"`
		Category             string   `json:"category"`
		Categories           []string `json:"categories"`
		Tags                 []string `json:"tags"`
		Price                string   `json:"price"`
		FinalPrice           string   `json:"final_price"`
		Rating               float64  `json:"rating"`
		ReviewCount          int      `json:"review_count"`
		Discount             string   `json:"discount,omitempty"`
		Gender               string   `json:"gender,omitempty"`
		AvailableForDelivery bool     `json:"available_for_delivery"`
		AvailableForPickup   bool     `json:"available_for_pickup"`
		Sizes                []string `json:"sizes,omitempty"`
		Colors               []string `json:"colors,omitempty"`
		ImageURL             string   `json:"image_url,omitempty"`
		URL                  string   `json:"url,omitempty"`
	}

	Buckets struct {
		HiddenGems  []Product `json:"hidden_gems"`
		ValueVault  []Product `json:"value_vault"`
		TrendingNow []Product `json:"trending_now"`
	}

	Reply struct {
		Text     string    `json:"text"`
		Products []Product `json:"products"`
		Buckets  *Buckets  `json:"buckets,omitempty"`
	}

	CategoryCount struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	TrendingSearch struct {
		Query string `json:"query"`
		Count int64  `json:"count"`
	}
)

type ChatSession struct {
	SessionID string `json:"session_id"`
	Reply     Reply  `json:"reply"`
}

type MessageRequest struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toProduct(p domain.Product) Product {
	return Product{
		ID:                   p.ID,
		Title:                p.Title,
		Brand:                p.Brand,
		Description:          p.Description,
		Category:             string(p.Category),
		Categories:           orEmpty(p.Categories),
		Tags:                 orEmpty(p.Tags),
		Price:                p.Price,
		FinalPrice:           p.FinalPrice,
		Rating:               p.Rating,
		ReviewCount:          p.ReviewCount,
		Discount:             p.Discount,
		Gender:               string(p.Gender),
		AvailableForDelivery: p.AvailableForDelivery,
		AvailableForPickup:   p.AvailableForPickup,
		Sizes:                p.Sizes,
		Colors:               p.Colors,
		ImageURL:             p.ImageURL,
		URL:                  p.URL,
	}
}

func toProducts(ps []domain.Product) []Product {
	out := make([]Product, 0, len(ps))
	for _, p := range ps {
		out = append(out, toProduct(p))
	}
	return out
}

func toBuckets(b domain.Buckets) Buckets {
	return Buckets{
		HiddenGems:  toProducts(b.HiddenGems),
		ValueVault:  toProducts(b.ValueVault),
		TrendingNow: toProducts(b.TrendingNow),
	}
}

func toReply(r domain.Reply) Reply {
	out := Reply{Text: r.Text, Products: toProducts(r.Products)}
	if r.Buckets != nil {
		b := toBuckets(*r.Buckets)
		out.Buckets = &b
	}
	return out
}

func toCategoryCounts(cs []domain.CategoryCount) []CategoryCount {
	out := make([]CategoryCount, 0, len(cs))
	for _, c := range cs {
		out = append(out, CategoryCount{Name: c.Name, Count: c.Count})
	}
	return out
}

func toTrendingSearches(ts []domain.TrendingSearch) []TrendingSearch {
	out := make([]TrendingSearch, 0, len(ts))
	for _, t := range ts {
		out = append(out, TrendingSearch{Query: t.Query, Count: t.Count})
	}
	return out
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
