package port

import (
	"context"
	"sync"

	"github.com/niksmo/storefront/internal/core/domain"
)

type (
	runnerContextWg interface {
		Run(context.Context, context.CancelFunc, *sync.WaitGroup)
	}

	closer interface {
		Close()
	}
)

// A Cache is a fallible key-value store for serialized catalog snapshots.
//
// Get returns [domain.ErrCacheMiss] when the key is absent.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type CatalogCodec interface {
	EncodeCatalog([]domain.Product) ([]byte, error)
	DecodeCatalog([]byte) ([]domain.Product, error)
}

// A SeedSource provides the static fallback product collection.
type SeedSource interface {
	SeedProducts() ([]domain.Product, error)
}

// A ProductSource is the read side of a loaded product store.
type ProductSource interface {
	All() []domain.Product
	Product(id string) (domain.Product, error)
}

// A ProductsQuery selects catalog products. Zero fields do not filter.
type ProductsQuery struct {
	Category string
	Tags     []string
	Text     string
	Delivery bool
	Pickup   bool
}

type CatalogBrowser interface {
	Products(context.Context, ProductsQuery) ([]domain.Product, error)
	Product(ctx context.Context, id string) (domain.Product, error)
	Categories(context.Context) ([]domain.CategoryCount, error)
	Tags(context.Context) ([]string, error)
}

type Recommender interface {
	TopRated(ctx context.Context, limit int) ([]domain.Product, error)
	Deals(context.Context) ([]domain.Product, error)
	BestSellers(ctx context.Context, category string, limit int) ([]domain.Product, error)
	Recommendations(ctx context.Context, query string) (domain.Buckets, error)
	Relevant(ctx context.Context, query string) ([]domain.Product, error)
}

type Assistant interface {
	StartConversation(context.Context) (sessionID string, welcome domain.Reply, err error)
	SendMessage(ctx context.Context, sessionID, text string) (domain.Reply, error)
	ResetConversation(ctx context.Context, sessionID string) (domain.Reply, error)
	Suggestions(context.Context) ([]string, error)
}

type SearchTrends interface {
	TrendingSearches(ctx context.Context, limit int) ([]domain.TrendingSearch, error)
}

type SearchEventsProducer interface {
	ProduceSearchEvent(context.Context, domain.SearchEvent) error
}

// A SearchCounter reads aggregated search counters.
type SearchCounter interface {
	SearchCounts(context.Context) ([]domain.TrendingSearch, error)
}

type SearchTrendsProcessor interface {
	runnerContextWg
	closer
}

// A SearchEventsHandler receives batches of consumed search events.
type SearchEventsHandler interface {
	HandleSearchEvents(context.Context, []domain.SearchEvent) error
}
