package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

const (
	defaultTopLimit      = 10
	defaultBestLimit     = 5
	defaultTrendingLimit = 10
)

var errInvalidLimit = errors.New("limit must be a non-negative integer")

// GET v1/products?category=&tag=&q=&delivery=&pickup= (200 OK, 400 Bad request)
// GET v1/products/{id} (200 OK, 404 Not found)
// GET v1/products/top?limit=
// GET v1/products/deals
// GET v1/products/best-sellers?category=&limit=
// GET v1/products/relevant?q=
// GET v1/recommendations?q=
// GET v1/categories
// GET v1/tags

type CatalogHandler struct {
	browser     port.CatalogBrowser
	recommender port.Recommender
}

func RegisterCatalog(
	mux *http.ServeMux, b port.CatalogBrowser, r port.Recommender,
) {
	h := CatalogHandler{browser: b, recommender: r}
	mux.HandleFunc("GET /v1/products", h.GetProducts)
	mux.HandleFunc("GET /v1/products/{id}", h.GetProduct)
	mux.HandleFunc("GET /v1/products/top", h.GetTopRated)
	mux.HandleFunc("GET /v1/products/deals", h.GetDeals)
	mux.HandleFunc("GET /v1/products/best-sellers", h.GetBestSellers)
	mux.HandleFunc("GET /v1/products/relevant", h.GetRelevant)
	mux.HandleFunc("GET /v1/recommendations", h.GetRecommendations)
	mux.HandleFunc("GET /v1/categories", h.GetCategories)
	mux.HandleFunc("GET /v1/tags", h.GetTags)
}

func (h CatalogHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetProducts"
	log := slog.With("op", op)

	q := r.URL.Query()
	delivery, err := parseBool(q.Get("delivery"))
	if err != nil {
		writeError(w, log, http.StatusBadRequest, "invalid delivery flag")
		return
	}
	pickup, err := parseBool(q.Get("pickup"))
	if err != nil {
		writeError(w, log, http.StatusBadRequest, "invalid pickup flag")
		return
	}

	ps, err := h.browser.Products(r.Context(), port.ProductsQuery{
		Category: q.Get("category"),
		Tags:     q["tag"],
		Text:     q.Get("q"),
		Delivery: delivery,
		Pickup:   pickup,
	})
	if err != nil {
		handleServiceErr(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, toProducts(ps))
}

func (h CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetProduct"
	log := slog.With("op", op)

	p, err := h.browser.Product(r.Context(), r.PathValue("id"))
	if err != nil {
		handleServiceErr(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, toProduct(p))
}

func (h CatalogHandler) GetTopRated(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetTopRated"
	log := slog.With("op", op)

	limit, err := parseLimit(r, defaultTopLimit)
	if err != nil {
		writeError(w, log, http.StatusBadRequest, err.Error())
		return
	}

	ps, err := h.recommender.TopRated(r.Context(), limit)
	if err != nil {
		handleServiceErr(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, toProducts(ps))
}

func (h CatalogHandler) GetDeals(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetDeals"
	log := slog.With("op", op)

	ps, err := h.recommender.Deals(r.Context())
	if err != nil {
		handleServiceErr(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, toProducts(ps))
}

func (h CatalogHandler) GetBestSellers(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetBestSellers"
	log := slog.With("op", op)

	limit, err := parseLimit(r, defaultBestLimit)
	if err != nil {
		writeError(w, log, http.StatusBadRequest, err.Error())
		return
	}

	ps, err := h.recommender.BestSellers(
		r.Context(), r.URL.Query().Get("category"), limit,
	)
	if err != nil {
		handleServiceErr(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, toProducts(ps))
}

func (h CatalogHandler) GetRelevant(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetRelevant"
	log := slog.With("op", op)

	ps, err := h.recommender.Relevant(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		handleServiceErr(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, toProducts(ps))
}

func (h CatalogHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetRecommendations"
	log := slog.With("op", op)

	b, err := h.recommender.Recommendations(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		handleServiceErr(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, toBuckets(b))
}

func (h CatalogHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetCategories"
	log := slog.With("op", op)

	cs, err := h.browser.Categories(r.Context())
	if err != nil {
		handleServiceErr(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, toCategoryCounts(cs))
}

func (h CatalogHandler) GetTags(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetTags"
	log := slog.With("op", op)

	tags, err := h.browser.Tags(r.Context())
	if err != nil {
		handleServiceErr(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, orEmpty(tags))
}

// POST v1/chat/sessions (201 Created)
// POST v1/chat/sessions/{id}/messages JSON {"text" string} (200 OK, 400 Bad request, 404 Not found)
// POST v1/chat/sessions/{id}/reset (200 OK, 404 Not found)
// GET v1/chat/suggestions

type ChatHandler struct {
	assistant port.Assistant
}

func RegisterChat(mux *http.ServeMux, a port.Assistant) {
	h := ChatHandler{a}
	mux.HandleFunc("POST /v1/chat/sessions", h.PostSession)
	mux.HandleFunc("POST /v1/chat/sessions/{id}/messages", h.PostMessage)
	mux.HandleFunc("POST /v1/chat/sessions/{id}/reset", h.PostReset)
	mux.HandleFunc("GET /v1/chat/suggestions", h.GetSuggestions)
}

func (h ChatHandler) PostSession(w http.ResponseWriter, r *http.Request) {
	const op = "ChatHandler.PostSession"
	log := slog.With("op", op)

	id, welcome, err := h.assistant.StartConversation(r.Context())
	if err != nil {
		handleServiceErr(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusCreated, ChatSession{
		SessionID: id,
		Reply:     toReply(welcome),
	})
}

func (h ChatHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	const op = "ChatHandler.PostMessage"
	log := slog.With("op", op)

	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse JSON", "err", err)
		writeError(w, log, http.StatusBadRequest, "invalid JSON data")
		return
	}

	reply, err := h.assistant.SendMessage(r.Context(), r.PathValue("id"), req.Text)
	if err != nil {
		handleServiceErr(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, toReply(reply))
}

func (h ChatHandler) PostReset(w http.ResponseWriter, r *http.Request) {
	const op = "ChatHandler.PostReset"
	log := slog.With("op", op)

	welcome, err := h.assistant.ResetConversation(r.Context(), r.PathValue("id"))
	if err != nil {
		handleServiceErr(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, toReply(welcome))
}

func (h ChatHandler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	const op = "ChatHandler.GetSuggestions"
	log := slog.With("op", op)

	s, err := h.assistant.Suggestions(r.Context())
	if err != nil {
		handleServiceErr(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, orEmpty(s))
}

// GET v1/searches/trending?limit= (200 OK, 503 Service unavailable)

type SearchesHandler struct {
	trends port.SearchTrends
}

func RegisterSearches(mux *http.ServeMux, t port.SearchTrends) {
	h := SearchesHandler{t}
	mux.HandleFunc("GET /v1/searches/trending", h.GetTrending)
}

func (h SearchesHandler) GetTrending(w http.ResponseWriter, r *http.Request) {
	const op = "SearchesHandler.GetTrending"
	log := slog.With("op", op)

	limit, err := parseLimit(r, defaultTrendingLimit)
	if err != nil {
		writeError(w, log, http.StatusBadRequest, err.Error())
		return
	}

	ts, err := h.trends.TrendingSearches(r.Context(), limit)
	if err != nil {
		handleServiceErr(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, toTrendingSearches(ts))
}

func parseLimit(r *http.Request, def int) (int, error) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errInvalidLimit
	}
	return n, nil
}

func parseBool(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}

func handleServiceErr(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, log, http.StatusNotFound, "product not found")
	case errors.Is(err, domain.ErrSessionNotFound):
		writeError(w, log, http.StatusNotFound, "session not found")
	case errors.Is(err, domain.ErrEmptyMessage):
		writeError(w, log, http.StatusBadRequest, "message text is empty")
	case errors.Is(err, domain.ErrUnavailable):
		writeError(w, log, http.StatusServiceUnavailable, "temporarily unavailable")
	default:
		log.Error("failed to serve request", "err", err)
		writeError(w, log, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, log *slog.Logger, status int, msg string) {
	writeJSON(w, log, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to write response body", "err", err)
	}
}
