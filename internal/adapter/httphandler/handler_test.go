package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Products(ctx context.Context, q port.ProductsQuery) ([]domain.Product, error) {
	args := m.Called(ctx, q)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}

func (m *MockService) Product(ctx context.Context, id string) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockService) Categories(ctx context.Context) ([]domain.CategoryCount, error) {
	args := m.Called(ctx)
	cs, _ := args.Get(0).([]domain.CategoryCount)
	return cs, args.Error(1)
}

func (m *MockService) Tags(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	tags, _ := args.Get(0).([]string)
	return tags, args.Error(1)
}

func (m *MockService) TopRated(ctx context.Context, limit int) ([]domain.Product, error) {
	args := m.Called(ctx, limit)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}

func (m *MockService) Deals(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}

func (m *MockService) BestSellers(ctx context.Context, category string, limit int) ([]domain.Product, error) {
	args := m.Called(ctx, category, limit)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}

func (m *MockService) Recommendations(ctx context.Context, query string) (domain.Buckets, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(domain.Buckets), args.Error(1)
}

func (m *MockService) Relevant(ctx context.Context, query string) ([]domain.Product, error) {
	args := m.Called(ctx, query)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}

func (m *MockService) StartConversation(ctx context.Context) (string, domain.Reply, error) {
	args := m.Called(ctx)
	return args.String(0), args.Get(1).(domain.Reply), args.Error(2)
}

func (m *MockService) SendMessage(ctx context.Context, sessionID, text string) (domain.Reply, error) {
	args := m.Called(ctx, sessionID, text)
	return args.Get(0).(domain.Reply), args.Error(1)
}

func (m *MockService) ResetConversation(ctx context.Context, sessionID string) (domain.Reply, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(domain.Reply), args.Error(1)
}

func (m *MockService) Suggestions(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).([]string)
	return s, args.Error(1)
}

func (m *MockService) TrendingSearches(ctx context.Context, limit int) ([]domain.TrendingSearch, error) {
	args := m.Called(ctx, limit)
	ts, _ := args.Get(0).([]domain.TrendingSearch)
	return ts, args.Error(1)
}

func newTestMux(s *MockService) http.Handler {
	mux := http.NewServeMux()
	RegisterCatalog(mux, s, s)
	RegisterChat(mux, s)
	RegisterSearches(mux, s)
	return AllowJSON(mux)
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

var lipstick = domain.Product{
	ID: "b-lip", Title: "Velvet Lipstick", Category: domain.Beauty,
	Price: "$12.00", FinalPrice: "$9.00", Rating: 4.7, ReviewCount: 320,
}

func TestCatalogHandler(t *testing.T) {
	t.Run("products query", func(t *testing.T) {
		s := new(MockService)
		s.On("Products", mock.Anything, port.ProductsQuery{
			Category: "Beauty",
			Tags:     []string{"red", "matte"},
			Text:     "lipstick",
			Delivery: true,
		}).Return([]domain.Product{lipstick}, nil)

		w := serve(newTestMux(s), http.MethodGet,
			"/v1/products?category=Beauty&tag=red&tag=matte&q=lipstick&delivery=true", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var got []Product
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "b-lip", got[0].ID)
		assert.Equal(t, "$9.00", got[0].FinalPrice)
		assert.Equal(t, []string{}, got[0].Tags)
	})

	t.Run("empty result encodes as array", func(t *testing.T) {
		s := new(MockService)
		s.On("Products", mock.Anything, mock.Anything).Return(nil, nil)

		w := serve(newTestMux(s), http.MethodGet, "/v1/products?q=nothing", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("invalid delivery flag", func(t *testing.T) {
		w := serve(newTestMux(new(MockService)), http.MethodGet, "/v1/products?delivery=maybe", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("product not found", func(t *testing.T) {
		s := new(MockService)
		s.On("Product", mock.Anything, "nope").
			Return(domain.Product{}, domain.ErrNotFound)

		w := serve(newTestMux(s), http.MethodGet, "/v1/products/nope", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"product not found"}`, w.Body.String())
	})

	t.Run("top uses default limit", func(t *testing.T) {
		s := new(MockService)
		s.On("TopRated", mock.Anything, defaultTopLimit).Return([]domain.Product{lipstick}, nil)

		w := serve(newTestMux(s), http.MethodGet, "/v1/products/top", "")
		assert.Equal(t, http.StatusOK, w.Code)
		s.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		for _, limit := range []string{"-1", "ten"} {
			w := serve(newTestMux(new(MockService)), http.MethodGet, "/v1/products/top?limit="+limit, "")
			assert.Equal(t, http.StatusBadRequest, w.Code, limit)
		}
	})

	t.Run("best sellers", func(t *testing.T) {
		s := new(MockService)
		s.On("BestSellers", mock.Anything, "Beauty", 2).Return([]domain.Product{lipstick}, nil)

		w := serve(newTestMux(s), http.MethodGet, "/v1/products/best-sellers?category=Beauty&limit=2", "")
		assert.Equal(t, http.StatusOK, w.Code)
		s.AssertExpectations(t)
	})

	t.Run("recommendations", func(t *testing.T) {
		s := new(MockService)
		s.On("Recommendations", mock.Anything, "beauty").
			Return(domain.Buckets{HiddenGems: []domain.Product{lipstick}}, nil)

		w := serve(newTestMux(s), http.MethodGet, "/v1/recommendations?q=beauty", "")
		require.Equal(t, http.StatusOK, w.Code)

		var got Buckets
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Len(t, got.HiddenGems, 1)
		assert.NotNil(t, got.ValueVault)
		assert.Empty(t, got.ValueVault)
	})

	t.Run("categories", func(t *testing.T) {
		s := new(MockService)
		s.On("Categories", mock.Anything).Return([]domain.CategoryCount{
			{Name: "All", Count: 1}, {Name: "Beauty", Count: 1},
		}, nil)

		w := serve(newTestMux(s), http.MethodGet, "/v1/categories", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[{"name":"All","count":1},{"name":"Beauty","count":1}]`, w.Body.String())
	})

	t.Run("internal error", func(t *testing.T) {
		s := new(MockService)
		s.On("Deals", mock.Anything).Return(nil, errors.New("boom"))

		w := serve(newTestMux(s), http.MethodGet, "/v1/products/deals", "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestChatHandler(t *testing.T) {
	t.Run("start session", func(t *testing.T) {
		s := new(MockService)
		s.On("StartConversation", mock.Anything).
			Return("sid-1", domain.Reply{Text: "Hi!"}, nil)

		w := serve(newTestMux(s), http.MethodPost, "/v1/chat/sessions", "")
		require.Equal(t, http.StatusCreated, w.Code)

		var got ChatSession
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "sid-1", got.SessionID)
		assert.Equal(t, "Hi!", got.Reply.Text)
		assert.Nil(t, got.Reply.Buckets)
	})

	t.Run("send message", func(t *testing.T) {
		s := new(MockService)
		s.On("SendMessage", mock.Anything, "sid-1", "best deals").
			Return(domain.Reply{Text: "deals", Products: []domain.Product{lipstick}}, nil)

		w := serve(newTestMux(s), http.MethodPost, "/v1/chat/sessions/sid-1/messages", `{"text":"best deals"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var got Reply
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Len(t, got.Products, 1)
	})

	t.Run("error statuses", func(t *testing.T) {
		tests := []struct {
			name string
			err  error
			want int
		}{
			{"empty message", domain.ErrEmptyMessage, http.StatusBadRequest},
			{"unknown session", domain.ErrSessionNotFound, http.StatusNotFound},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				s := new(MockService)
				s.On("SendMessage", mock.Anything, "sid", mock.Anything).
					Return(domain.Reply{}, tt.err)

				w := serve(newTestMux(s), http.MethodPost, "/v1/chat/sessions/sid/messages", `{"text":" "}`)
				assert.Equal(t, tt.want, w.Code)
			})
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		w := serve(newTestMux(new(MockService)), http.MethodPost, "/v1/chat/sessions/sid/messages", `{"text":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("wrong media type", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/v1/chat/sessions/sid/messages", strings.NewReader("text=hi"))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		newTestMux(new(MockService)).ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	})

	t.Run("reset", func(t *testing.T) {
		s := new(MockService)
		s.On("ResetConversation", mock.Anything, "sid-1").Return(domain.Reply{Text: "Hi!"}, nil)

		w := serve(newTestMux(s), http.MethodPost, "/v1/chat/sessions/sid-1/reset", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestSearchesHandler(t *testing.T) {
	t.Run("trending", func(t *testing.T) {
		s := new(MockService)
		s.On("TrendingSearches", mock.Anything, 3).
			Return([]domain.TrendingSearch{{Query: "lipstick", Count: 9}}, nil)

		w := serve(newTestMux(s), http.MethodGet, "/v1/searches/trending?limit=3", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[{"query":"lipstick","count":9}]`, w.Body.String())
	})

	t.Run("broker disabled", func(t *testing.T) {
		s := new(MockService)
		s.On("TrendingSearches", mock.Anything, defaultTrendingLimit).
			Return(nil, domain.ErrUnavailable)

		w := serve(newTestMux(s), http.MethodGet, "/v1/searches/trending", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
