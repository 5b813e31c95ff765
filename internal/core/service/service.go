package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/niksmo/storefront/internal/core/catalog"
	"github.com/niksmo/storefront/internal/core/classifier"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/matcher"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/internal/core/ranker"
	"github.com/niksmo/storefront/internal/core/router"
)

var _ port.CatalogBrowser = (*Service)(nil)
var _ port.Recommender = (*Service)(nil)
var _ port.Assistant = (*Service)(nil)
var _ port.SearchTrends = (*Service)(nil)

const (
	relevantLimit = 5

	DefaultSessionTTL  = 30 * time.Minute
	DefaultMaxSessions = 10000

	publishTimeout  = 5 * time.Second
	maxPendingLimit = 64
)

var (
	dealWords = []string{"discount", "sale", "deal"}
	topWords  = []string{"top", "best"}
)

// Departments recognized by Relevant, checked in order before deal
// and top keywords.
var relevantDepartments = []struct {
	category domain.Category
	keywords []string
}{
	{domain.Beauty, []string{"beauty", "makeup"}},
	{domain.Home, []string{"home", "decor"}},
	{domain.Clothing, []string{"clothing", "clothes"}},
	{domain.Electronics, []string{"electronics", "tv"}},
	{domain.Shoes, []string{"shoes", "footwear"}},
}

type Opt func(*Service)

// SearchEventsOpt publishes every text query to p in the background.
// Events are dropped while too many publishes are pending.
func SearchEventsOpt(p port.SearchEventsProducer) Opt {
	return func(s *Service) {
		s.events = p
	}
}

// SearchTrendsOpt serves trending searches from c. The processor is
// optional and is run by [Service.Run].
func SearchTrendsOpt(c port.SearchCounter, proc port.SearchTrendsProcessor) Opt {
	return func(s *Service) {
		s.counter = c
		s.trendsProc = proc
	}
}

// ScriptOpt replaces the assistant script.
func ScriptOpt(script router.Script) Opt {
	return func(s *Service) {
		s.script = script
	}
}

// SessionsOpt limits chat sessions. A session idle for ttl is evicted,
// and starting a session over limit evicts the least recently used one.
// Non-positive values keep the defaults.
func SessionsOpt(ttl time.Duration, limit int) Opt {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
		if limit > 0 {
			s.maxSessions = limit
		}
	}
}

type session struct {
	conv     *router.Conversation
	lastUsed time.Time
	seq      uint64
}

type Service struct {
	products   port.ProductSource
	script     router.Script
	events     port.SearchEventsProducer
	counter    port.SearchCounter
	trendsProc port.SearchTrendsProcessor

	pending   chan struct{}
	publishWg sync.WaitGroup

	mu          sync.Mutex
	router      router.Router
	sessions    map[string]*session
	sessionTTL  time.Duration
	maxSessions int
	seq         uint64
}

// New returns the catalog service over a loaded product source.
func New(products port.ProductSource, opts ...Opt) *Service {
	if products == nil {
		panic("service.New: nil product source") // develop mistake
	}

	s := &Service{
		products:    products,
		script:      router.DefaultScript(),
		pending:     make(chan struct{}, maxPendingLimit),
		sessions:    make(map[string]*session),
		sessionTTL:  DefaultSessionTTL,
		maxSessions: DefaultMaxSessions,
	}
	for _, opt := range opts {
		opt(s)
	}
	// Every conversation shares one read-only copy of the catalog.
	s.router = router.New(s.script, products.All())
	return s
}

// Run runs the services components in separate goroutines.
//
// Blocks current goroutine while components is preparing to ready state.
func (s *Service) Run(ctx context.Context, stopFn context.CancelFunc) {
	if s.trendsProc == nil {
		return
	}
	var wg sync.WaitGroup
	wg.Add(1)
	go s.trendsProc.Run(ctx, stopFn, &wg)
	wg.Wait()
}

// Close waits for pending search event publishes and closes the processor.
func (s *Service) Close() {
	s.publishWg.Wait()
	if s.trendsProc != nil {
		s.trendsProc.Close()
	}
}

func (s *Service) Products(
	ctx context.Context, q port.ProductsQuery,
) ([]domain.Product, error) {
	const op = "Service.Products"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ps := matcher.Match(s.products.All(), matcher.Query{
		Category: q.Category,
		Tags:     q.Tags,
		Text:     q.Text,
	})
	if q.Delivery {
		ps = matcher.WithDelivery(ps)
	}
	if q.Pickup {
		ps = matcher.WithPickup(ps)
	}

	if strings.TrimSpace(q.Text) != "" {
		s.publishSearch(ctx, "", q.Text, len(ps))
	}
	return ps, nil
}

func (s *Service) Product(ctx context.Context, id string) (domain.Product, error) {
	const op = "Service.Product"

	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	p, err := s.products.Product(id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (s *Service) Categories(ctx context.Context) ([]domain.CategoryCount, error) {
	const op = "Service.Categories"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return catalog.Categories(s.products.All()), nil
}

func (s *Service) Tags(ctx context.Context) ([]string, error) {
	const op = "Service.Tags"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return catalog.Tags(s.products.All()), nil
}

func (s *Service) TopRated(ctx context.Context, limit int) ([]domain.Product, error) {
	const op = "Service.TopRated"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ranker.TopRated(s.products.All(), limit), nil
}

func (s *Service) Deals(ctx context.Context) ([]domain.Product, error) {
	const op = "Service.Deals"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ranker.Discounted(s.products.All()), nil
}

func (s *Service) BestSellers(
	ctx context.Context, category string, limit int,
) ([]domain.Product, error) {
	const op = "Service.BestSellers"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if category == "" {
		category = domain.AllCategories
	}
	return ranker.BestSellers(s.products.All(), category, limit), nil
}

// Recommendations buckets the category the query names,
// or the whole catalog when it names none.
func (s *Service) Recommendations(
	ctx context.Context, query string,
) (domain.Buckets, error) {
	const op = "Service.Recommendations"

	if err := ctx.Err(); err != nil {
		return domain.Buckets{}, fmt.Errorf("%s: %w", op, err)
	}

	all := s.products.All()
	ps := all
	if c := classifier.Classify(query); c != domain.Unclassified {
		ps = matcher.ByCategory(all, string(c))
	}
	b := ranker.Buckets(ps)

	if strings.TrimSpace(query) != "" {
		s.publishSearch(ctx, "", query, len(ps))
	}
	return b, nil
}

// Relevant returns up to five products for a free form request:
// best sellers of a named department, deals, top rated, or a text search.
// Only the five main departments are named here, so "tech sale" is deals.
func (s *Service) Relevant(ctx context.Context, query string) ([]domain.Product, error) {
	const op = "Service.Relevant"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	all := s.products.All()
	lower := strings.ToLower(query)

	var ps []domain.Product
	switch c, ok := relevantDepartment(lower); {
	case ok:
		ps = ranker.BestSellers(all, string(c), relevantLimit)
	case containsAny(lower, dealWords):
		ps = firstN(ranker.Discounted(all), relevantLimit)
	case containsAny(lower, topWords):
		ps = ranker.TopRated(all, relevantLimit)
	default:
		ps = firstN(matcher.ByText(all, query), relevantLimit)
	}

	if strings.TrimSpace(query) != "" {
		s.publishSearch(ctx, "", query, len(ps))
	}
	return ps, nil
}

func (s *Service) StartConversation(
	ctx context.Context,
) (sessionID string, welcome domain.Reply, err error) {
	const op = "Service.StartConversation"

	if err := ctx.Err(); err != nil {
		return "", domain.Reply{}, fmt.Errorf("%s: %w", op, err)
	}

	sessionID = uuid.NewString()
	now := time.Now()

	s.mu.Lock()
	s.evictSessions(now)
	s.seq++
	s.sessions[sessionID] = &session{
		conv:     router.NewConversation(s.router),
		lastUsed: now,
		seq:      s.seq,
	}
	s.mu.Unlock()

	slog.Debug("conversation started", "op", op, "session_id", sessionID)
	return sessionID, router.Welcome(), nil
}

func (s *Service) SendMessage(
	ctx context.Context, sessionID, text string,
) (domain.Reply, error) {
	const op = "Service.SendMessage"

	if err := ctx.Err(); err != nil {
		return domain.Reply{}, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	c, ok := s.session(sessionID, time.Now())
	if !ok {
		s.mu.Unlock()
		return domain.Reply{}, fmt.Errorf("%s: %w", op, domain.ErrSessionNotFound)
	}
	reply, accepted := c.Send(text)
	s.mu.Unlock()

	if !accepted {
		return domain.Reply{}, fmt.Errorf("%s: %w", op, domain.ErrEmptyMessage)
	}

	s.publishSearch(ctx, sessionID, text, resultCount(reply))
	return reply, nil
}

func (s *Service) ResetConversation(
	ctx context.Context, sessionID string,
) (domain.Reply, error) {
	const op = "Service.ResetConversation"

	if err := ctx.Err(); err != nil {
		return domain.Reply{}, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.session(sessionID, time.Now())
	if !ok {
		return domain.Reply{}, fmt.Errorf("%s: %w", op, domain.ErrSessionNotFound)
	}
	c.Reset()
	return router.Welcome(), nil
}

// session returns a live conversation and marks it used.
// Must be called with s.mu held.
func (s *Service) session(id string, now time.Time) (*router.Conversation, bool) {
	ss, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if now.Sub(ss.lastUsed) > s.sessionTTL {
		delete(s.sessions, id)
		return nil, false
	}
	s.seq++
	ss.lastUsed = now
	ss.seq = s.seq
	return ss.conv, true
}

// evictSessions drops idle sessions and makes room for one more.
// Must be called with s.mu held.
func (s *Service) evictSessions(now time.Time) {
	const op = "Service.evictSessions"

	for id, ss := range s.sessions {
		if now.Sub(ss.lastUsed) > s.sessionTTL {
			delete(s.sessions, id)
		}
	}
	for len(s.sessions) >= s.maxSessions {
		var (
			oldestID  string
			oldestSeq uint64
		)
		for id, ss := range s.sessions {
			if oldestID == "" || ss.seq < oldestSeq {
				oldestID, oldestSeq = id, ss.seq
			}
		}
		delete(s.sessions, oldestID)
		slog.Debug("conversation evicted", "op", op, "session_id", oldestID)
	}
}

// Suggestions returns the quick replies offered to the user.
func (s *Service) Suggestions(ctx context.Context) ([]string, error) {
	const op = "Service.Suggestions"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return slices.Clone(router.Suggestions), nil
}

// TrendingSearches returns the most frequent queries, count desc then
// query asc. A non-positive limit returns all.
func (s *Service) TrendingSearches(
	ctx context.Context, limit int,
) ([]domain.TrendingSearch, error) {
	const op = "Service.TrendingSearches"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if s.counter == nil {
		return nil, fmt.Errorf("%s: %w", op, domain.ErrUnavailable)
	}

	ts, err := s.counter.SearchCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	slices.SortFunc(ts, func(a, b domain.TrendingSearch) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Query, b.Query)
	})
	if limit > 0 && len(ts) > limit {
		ts = ts[:limit]
	}
	return ts, nil
}

func (s *Service) publishSearch(
	ctx context.Context, sessionID, query string, results int,
) {
	const op = "Service.publishSearch"

	if s.events == nil {
		return
	}

	select {
	case s.pending <- struct{}{}:
	default:
		slog.Warn("search event dropped, too many pending publishes", "op", op)
		return
	}

	ev := domain.SearchEvent{
		SessionID: sessionID,
		Query:     query,
		Category:  classifier.Classify(query),
		Results:   results,
		At:        time.Now().UTC(),
	}

	// The request context ends with the response, the publish must not.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	s.publishWg.Add(1)
	go func() {
		defer func() {
			cancel()
			<-s.pending
			s.publishWg.Done()
		}()
		if err := s.events.ProduceSearchEvent(pubCtx, ev); err != nil {
			slog.Warn("failed to publish search event", "op", op, "err", err)
		}
	}()
}

func resultCount(r domain.Reply) int {
	n := len(r.Products)
	if r.Buckets != nil {
		n += len(r.Buckets.HiddenGems) + len(r.Buckets.ValueVault) + len(r.Buckets.TrendingNow)
	}
	return n
}

func relevantDepartment(lower string) (domain.Category, bool) {
	for _, d := range relevantDepartments {
		if containsAny(lower, d.keywords) {
			return d.category, true
		}
	}
	return "", false
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func firstN(ps []domain.Product, n int) []domain.Product {
	if len(ps) > n {
		return ps[:n]
	}
	return ps
}
