package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type productSource []domain.Product

func (s productSource) All() []domain.Product {
	return append([]domain.Product(nil), s...)
}

func (s productSource) Product(id string) (domain.Product, error) {
	for _, p := range s {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, domain.ErrNotFound
}

type MockEventsProducer struct {
	mock.Mock
}

func (m *MockEventsProducer) ProduceSearchEvent(ctx context.Context, ev domain.SearchEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

type MockCounter struct {
	mock.Mock
}

func (m *MockCounter) SearchCounts(ctx context.Context) ([]domain.TrendingSearch, error) {
	args := m.Called(ctx)
	ts, _ := args.Get(0).([]domain.TrendingSearch)
	return ts, args.Error(1)
}

func testSource() productSource {
	return productSource{
		{
			ID: "b-lip", Title: "Velvet Lipstick", Brand: "Glow", Category: domain.Beauty,
			Tags: []string{"lipstick", "red"}, Rating: 4.7, ReviewCount: 320,
			Price: "$12.00", FinalPrice: "$9.00", Discount: "Reduced price",
		},
		{
			ID: "b-mascara", Title: "Volume Mascara", Brand: "Glow", Category: domain.Beauty,
			Tags: []string{"mascara"}, Rating: 4.1, ReviewCount: 80,
			Price: "$10.00", FinalPrice: "$10.00",
		},
		{
			ID: "c-dress", Title: "Red Summer Dress", Brand: "Sunny", Category: domain.Clothing,
			Tags: []string{"dress", "red"}, Rating: 4.6, ReviewCount: 150,
			Price: "$40.00", FinalPrice: "$25.00",
		},
		{
			ID: "h-lamp", Title: "Desk Lamp", Brand: "Lumo", Category: domain.Home,
			Tags: []string{"lamp"}, Rating: 3.9, ReviewCount: 20,
			Price: "$30.00", FinalPrice: "$30.00",
		},
	}
}

func ids(ps []domain.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestServiceCatalog(t *testing.T) {
	s := service.New(testSource())
	ctx := t.Context()

	t.Run("products", func(t *testing.T) {
		ps, err := s.Products(ctx, port.ProductsQuery{Text: "red"})
		require.NoError(t, err)
		assert.Equal(t, []string{"b-lip", "c-dress"}, ids(ps))

		ps, err = s.Products(ctx, port.ProductsQuery{Category: "Beauty", Tags: []string{"mascara"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"b-mascara"}, ids(ps))
	})

	t.Run("product", func(t *testing.T) {
		p, err := s.Product(ctx, "h-lamp")
		require.NoError(t, err)
		assert.Equal(t, "Desk Lamp", p.Title)

		_, err = s.Product(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("categories", func(t *testing.T) {
		cs, err := s.Categories(ctx)
		require.NoError(t, err)
		assert.Equal(t, []domain.CategoryCount{
			{Name: "All", Count: 4},
			{Name: "Beauty", Count: 2},
			{Name: "Clothing", Count: 1},
			{Name: "Home", Count: 1},
		}, cs)
	})

	t.Run("tags", func(t *testing.T) {
		tags, err := s.Tags(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"dress", "lamp", "lipstick", "mascara", "red"}, tags)
	})

	t.Run("rankings", func(t *testing.T) {
		top, err := s.TopRated(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"b-lip", "c-dress"}, ids(top))

		deals, err := s.Deals(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"b-lip", "c-dress"}, ids(deals))

		best, err := s.BestSellers(ctx, "Beauty", 5)
		require.NoError(t, err)
		assert.Equal(t, []string{"b-lip", "b-mascara"}, ids(best))

		best, err = s.BestSellers(ctx, "", 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"b-lip"}, ids(best))
	})

	t.Run("canceled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := s.Deals(cctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestServiceRecommendations(t *testing.T) {
	s := service.New(testSource())

	t.Run("named category", func(t *testing.T) {
		b, err := s.Recommendations(t.Context(), "beauty products")
		require.NoError(t, err)
		assert.Equal(t, []string{"b-lip"}, ids(b.HiddenGems))
		assert.Equal(t, []string{"b-lip"}, ids(b.ValueVault))
		assert.Equal(t, []string{"b-lip", "b-mascara"}, ids(b.TrendingNow))
	})

	t.Run("whole catalog", func(t *testing.T) {
		b, err := s.Recommendations(t.Context(), "surprise me")
		require.NoError(t, err)
		assert.Equal(t, []string{"b-lip", "c-dress"}, ids(b.HiddenGems))
		assert.Equal(t, []string{"c-dress", "b-lip"}, ids(b.ValueVault))
	})
}

func TestServiceRelevant(t *testing.T) {
	s := service.New(testSource())
	tests := []struct {
		query string
		want  []string
	}{
		{"makeup please", []string{"b-lip", "b-mascara"}},
		{"any deals?", []string{"b-lip", "c-dress"}},
		{"tech sale", []string{"b-lip", "c-dress"}},
		{"home decor", []string{"h-lamp"}},
		{"best rated", []string{"b-lip", "c-dress", "b-mascara", "h-lamp"}},
		{"lamp", []string{"h-lamp"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			ps, err := s.Relevant(t.Context(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(ps))
		})
	}
}

func TestServiceConversation(t *testing.T) {
	s := service.New(testSource())
	ctx := t.Context()

	id, welcome, err := s.StartConversation(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.NotEmpty(t, welcome.Text)

	reply, err := s.SendMessage(ctx, id, "Show me today's deals")
	require.NoError(t, err)
	assert.Equal(t, []string{"b-lip", "c-dress"}, ids(reply.Products))

	_, err = s.SendMessage(ctx, id, "  ")
	assert.ErrorIs(t, err, domain.ErrEmptyMessage)

	reply, err = s.SendMessage(ctx, id, "clothing")
	require.NoError(t, err)
	require.NotNil(t, reply.Buckets)
	assert.Equal(t, []string{"c-dress"}, ids(reply.Buckets.HiddenGems))

	_, err = s.ResetConversation(ctx, id)
	require.NoError(t, err)

	reply, err = s.SendMessage(ctx, id, "clothing")
	require.NoError(t, err)
	assert.False(t, reply.HasResults())

	_, err = s.SendMessage(ctx, "unknown", "hi")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, err = s.ResetConversation(ctx, "unknown")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestServiceSessionEviction(t *testing.T) {
	t.Run("least recently used over limit", func(t *testing.T) {
		s := service.New(testSource(), service.SessionsOpt(time.Hour, 2))
		ctx := t.Context()

		first, _, err := s.StartConversation(ctx)
		require.NoError(t, err)
		second, _, err := s.StartConversation(ctx)
		require.NoError(t, err)

		_, err = s.SendMessage(ctx, first, "hello")
		require.NoError(t, err)

		third, _, err := s.StartConversation(ctx)
		require.NoError(t, err)

		_, err = s.SendMessage(ctx, second, "hello")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
		_, err = s.SendMessage(ctx, first, "hello")
		assert.NoError(t, err)
		_, err = s.SendMessage(ctx, third, "hello")
		assert.NoError(t, err)
	})

	t.Run("idle sessions expire", func(t *testing.T) {
		s := service.New(testSource(), service.SessionsOpt(time.Millisecond, 0))
		ctx := t.Context()

		id, _, err := s.StartConversation(ctx)
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)

		_, err = s.SendMessage(ctx, id, "hello")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
		_, err = s.ResetConversation(ctx, id)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})
}

func TestServiceSearchEvents(t *testing.T) {
	t.Run("published with classification", func(t *testing.T) {
		events := new(MockEventsProducer)
		events.On("ProduceSearchEvent", mock.Anything, mock.MatchedBy(func(ev domain.SearchEvent) bool {
			return ev.Query == "red dress" && ev.Category == domain.Clothing &&
				ev.Results == 1 && ev.SessionID == "" && !ev.At.IsZero()
		})).Return(nil).Once()

		s := service.New(testSource(), service.SearchEventsOpt(events))
		_, err := s.Products(t.Context(), port.ProductsQuery{Text: "red dress"})
		require.NoError(t, err)
		s.Close()
		events.AssertExpectations(t)
	})

	t.Run("publish failure is not returned", func(t *testing.T) {
		events := new(MockEventsProducer)
		events.On("ProduceSearchEvent", mock.Anything, mock.Anything).
			Return(errors.New("broker down")).Once()

		s := service.New(testSource(), service.SearchEventsOpt(events))
		ps, err := s.Relevant(t.Context(), "lamp")
		require.NoError(t, err)
		assert.Len(t, ps, 1)
		s.Close()
		events.AssertExpectations(t)
	})

	t.Run("chat messages carry session", func(t *testing.T) {
		events := new(MockEventsProducer)
		s := service.New(testSource(), service.SearchEventsOpt(events))
		id, _, err := s.StartConversation(t.Context())
		require.NoError(t, err)

		events.On("ProduceSearchEvent", mock.Anything, mock.MatchedBy(func(ev domain.SearchEvent) bool {
			return ev.SessionID == id && ev.Results == 2
		})).Return(nil).Once()

		_, err = s.SendMessage(t.Context(), id, "best deals")
		require.NoError(t, err)
		s.Close()
		events.AssertExpectations(t)
	})

	t.Run("slow broker does not delay queries", func(t *testing.T) {
		release := make(chan time.Time)
		events := new(MockEventsProducer)
		events.On("ProduceSearchEvent", mock.Anything, mock.Anything).
			WaitUntil(release).Return(nil).Once()

		s := service.New(testSource(), service.SearchEventsOpt(events))

		start := time.Now()
		ps, err := s.Products(t.Context(), port.ProductsQuery{Text: "red"})
		require.NoError(t, err)
		assert.Len(t, ps, 2)
		assert.Less(t, time.Since(start), time.Second)

		close(release)
		s.Close()
		events.AssertExpectations(t)
	})

	t.Run("publish outlives request context", func(t *testing.T) {
		events := new(MockEventsProducer)
		events.On("ProduceSearchEvent", mock.MatchedBy(func(ctx context.Context) bool {
			return ctx.Err() == nil
		}), mock.Anything).Return(nil).Once()

		s := service.New(testSource(), service.SearchEventsOpt(events))
		ctx, cancel := context.WithCancel(t.Context())
		_, err := s.Relevant(ctx, "lamp")
		require.NoError(t, err)
		cancel()

		s.Close()
		events.AssertExpectations(t)
	})

	t.Run("structured queries are not published", func(t *testing.T) {
		events := new(MockEventsProducer)
		s := service.New(testSource(), service.SearchEventsOpt(events))
		_, err := s.Products(t.Context(), port.ProductsQuery{Category: "Beauty"})
		require.NoError(t, err)
		events.AssertNotCalled(t, "ProduceSearchEvent", mock.Anything, mock.Anything)
	})
}

func TestServiceTrendingSearches(t *testing.T) {
	t.Run("unavailable without counter", func(t *testing.T) {
		s := service.New(testSource())
		_, err := s.TrendingSearches(t.Context(), 10)
		assert.ErrorIs(t, err, domain.ErrUnavailable)
	})

	t.Run("ordered and limited", func(t *testing.T) {
		counter := new(MockCounter)
		counter.On("SearchCounts", mock.Anything).Return([]domain.TrendingSearch{
			{Query: "shoes", Count: 3},
			{Query: "lipstick", Count: 9},
			{Query: "dress", Count: 3},
		}, nil)

		s := service.New(testSource(), service.SearchTrendsOpt(counter, nil))

		ts, err := s.TrendingSearches(t.Context(), 2)
		require.NoError(t, err)
		assert.Equal(t, []domain.TrendingSearch{
			{Query: "lipstick", Count: 9},
			{Query: "dress", Count: 3},
		}, ts)
	})

	t.Run("counter error", func(t *testing.T) {
		counter := new(MockCounter)
		errView := errors.New("view not ready")
		counter.On("SearchCounts", mock.Anything).Return(nil, errView)

		s := service.New(testSource(), service.SearchTrendsOpt(counter, nil))
		_, err := s.TrendingSearches(t.Context(), 2)
		assert.ErrorIs(t, err, errView)
	})
}

func TestServiceFulfilmentFilters(t *testing.T) {
	src := testSource()
	src[0].AvailableForDelivery = true
	src[2].AvailableForDelivery = true
	src[2].AvailableForPickup = true
	s := service.New(src)

	ps, err := s.Products(t.Context(), port.ProductsQuery{Delivery: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"b-lip", "c-dress"}, ids(ps))

	ps, err = s.Products(t.Context(), port.ProductsQuery{Delivery: true, Pickup: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"c-dress"}, ids(ps))
}

func TestServiceSuggestions(t *testing.T) {
	s := service.New(testSource())

	got, err := s.Suggestions(t.Context())
	require.NoError(t, err)
	require.NotEmpty(t, got)

	got[0] = "changed"
	again, err := s.Suggestions(t.Context())
	require.NoError(t, err)
	assert.NotEqual(t, "changed", again[0])
}
