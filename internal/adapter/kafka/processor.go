package kafka

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"sync"

	"github.com/lovoo/goka"
	"github.com/lovoo/goka/codec"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/schema"
)

var _ port.SearchTrendsProcessor = (*TrendingProcessor)(nil)

// A processor is used for composition.
//
// Running and closing the underlying [goka.Processor]
type processor struct {
	opPrefix string
	gp       *goka.Processor
}

func (p *processor) run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	const op = "run"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer wg.Done()

	go p.runProc(ctx, stopFn)

	log.Info("preparing...")
	p.waitForReady(ctx)
	log.Info("running")
}

func (p *processor) runProc(ctx context.Context, stopFn context.CancelFunc) {
	const op = "run"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer stopFn()

	if err := p.gp.Run(ctx); err != nil {
		log.Error("stopped", "err", err)
		return
	}
	log.Info("stopped")
}

func (p *processor) waitForReady(ctx context.Context) {
	const op = "waitForReady"
	log := slog.With("op", makeOp(p.opPrefix, op))

	err := p.gp.WaitForReadyContext(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("fall down while preparing", "err", err)
	}
}

func (p *processor) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))

	log.Info("closing processor...")
	p.gp.Stop()
	log.Info("processor is closed")
}

// A searchEventCodec used for serde [schema.SearchEventV1]
type searchEventCodec struct {
	serde Serde
}

func newSearchEventCodec(s Serde) searchEventCodec {
	return searchEventCodec{s}
}

func (c searchEventCodec) Encode(v any) ([]byte, error) {
	const op = "searchEventCodec.Encode"
	if _, ok := v.(schema.SearchEventV1); !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return c.serde.Encode(v)
}

func (c searchEventCodec) Decode(data []byte) (any, error) {
	const op = "searchEventCodec.Decode"
	var s schema.SearchEventV1
	if err := c.serde.Decode(data, &s); err != nil {
		return nil, opErr(err, op)
	}
	return s, nil
}

// A TrendingProcessorConfig used for setup [TrendingProcessor].
//
// TLSConfig, User and Pass are optional.
type TrendingProcessorConfig struct {
	SeedBrokers []string
	InputStream string
	Group       string
	Serde       Serde
	TLSConfig   *tls.Config
	User        string
	Pass        string
}

// A TrendingProcessor counts search events per normalized query
// into the group table.
type TrendingProcessor struct {
	opPrefix string
	proc     processor
}

func NewTrendingProcessor(
	config TrendingProcessorConfig,
) (*TrendingProcessor, error) {
	const op = "NewTrendingProcessor"

	applySASLTLS(config.TLSConfig, config.User, config.Pass)

	p := TrendingProcessor{opPrefix: "TrendingProcessor"}

	gg := goka.DefineGroup(goka.Group(config.Group),
		goka.Input(
			goka.Stream(config.InputStream),
			newSearchEventCodec(config.Serde),
			p.processFn,
		),
		goka.Persist(new(codec.Int64)),
	)

	gp, err := goka.NewProcessor(config.SeedBrokers, gg, withNonlogProcOpt())
	if err != nil {
		return nil, opErr(err, op)
	}

	p.proc = processor{
		opPrefix: p.opPrefix,
		gp:       gp,
	}
	return &p, nil
}

func (p *TrendingProcessor) Run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	p.proc.run(ctx, stopFn, wg)
}

func (p *TrendingProcessor) Close() {
	p.proc.close()
}

func (p *TrendingProcessor) processFn(ctx goka.Context, msg any) {
	const op = "processFn"
	log := slog.With("op", makeOp(p.opPrefix, op))

	event, _ := msg.(schema.SearchEventV1)
	if event.Query == "" {
		log.Warn("skip empty query")
		return
	}

	n := increment(ctx.Value())
	ctx.SetValue(n)
	log.Debug("search counted", "query", event.Query, "count", n)
}

func increment(v any) int64 {
	n, _ := v.(int64)
	return n + 1
}
