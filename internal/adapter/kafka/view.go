package kafka

import (
	"context"
	"crypto/tls"
	"log/slog"

	"github.com/lovoo/goka"
	"github.com/lovoo/goka/codec"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.SearchCounter = (*SearchCountsView)(nil)

// A SearchCountsViewConfig used for setup [SearchCountsView].
//
// TLSConfig, User and Pass are optional.
type SearchCountsViewConfig struct {
	SeedBrokers []string
	Group       string
	TLSConfig   *tls.Config
	User        string
	Pass        string
}

// A SearchCountsView reads the table of [TrendingProcessor].
type SearchCountsView struct {
	gv *goka.View
}

func NewSearchCountsView(
	config SearchCountsViewConfig,
) (*SearchCountsView, error) {
	const op = "NewSearchCountsView"

	applySASLTLS(config.TLSConfig, config.User, config.Pass)

	gv, err := goka.NewView(
		config.SeedBrokers,
		goka.GroupTable(goka.Group(config.Group)),
		new(codec.Int64),
	)
	if err != nil {
		return nil, opErr(err, op)
	}
	return &SearchCountsView{gv}, nil
}

// Run blocks until ctx is done.
func (v *SearchCountsView) Run(ctx context.Context) {
	const op = "SearchCountsView.Run"
	log := slog.With("op", op)

	if err := v.gv.Run(ctx); err != nil {
		log.Error("unexpected fail on run", "err", err)
	}
}

// SearchCounts returns every counter of the table.
// It fails with [domain.ErrUnavailable] until the view is recovered.
func (v *SearchCountsView) SearchCounts(
	ctx context.Context,
) ([]domain.TrendingSearch, error) {
	const op = "SearchCountsView.SearchCounts"

	if err := ctx.Err(); err != nil {
		return nil, opErr(err, op)
	}
	if !v.gv.Recovered() {
		return nil, opErr(domain.ErrUnavailable, op)
	}

	it, err := v.gv.Iterator()
	if err != nil {
		return nil, opErr(err, op)
	}
	defer it.Release()

	var ts []domain.TrendingSearch
	for it.Next() {
		if err := ctx.Err(); err != nil {
			return nil, opErr(err, op)
		}
		val, err := it.Value()
		if err != nil {
			return nil, opErr(err, op)
		}
		n, ok := val.(int64)
		if !ok {
			continue
		}
		ts = append(ts, domain.TrendingSearch{Query: it.Key(), Count: n})
	}
	return ts, nil
}
