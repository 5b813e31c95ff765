package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

const slowDownDelay = time.Second

type ConsumerOpt func(*consumerOpts) error

// ConsumerClientOpt joins group on topic. An empty group
// consumes from the end of the topic without committing.
func ConsumerClientOpt(cfg ClientConfig, topic, group string) ConsumerOpt {
	return func(co *consumerOpts) error {
		kopts := append(cfg.Opts(), kgo.ConsumeTopics(topic))
		if group != "" {
			kopts = append(kopts, kgo.ConsumerGroup(group), kgo.DisableAutoCommit())
		} else {
			kopts = append(kopts, kgo.ConsumeResetOffset(kgo.NewOffset().AtEnd()))
		}
		cl, err := kgo.NewClient(kopts...)
		if err != nil {
			return err
		}
		co.cl = cl
		co.commit = group != ""
		return nil
	}
}

// ConsumerRawClientOpt uses an already configured client.
func ConsumerRawClientOpt(cl ConsumerClient, commit bool) ConsumerOpt {
	return func(co *consumerOpts) error {
		if cl == nil {
			return errors.New("consumer client is nil")
		}
		co.cl = cl
		co.commit = commit
		return nil
	}
}

func ConsumerDecoderOpt(decoder Decoder) ConsumerOpt {
	return func(co *consumerOpts) error {
		if decoder == nil {
			return errors.New("decoder is nil")
		}
		co.decoder = decoder
		return nil
	}
}

func ConsumerHandlerOpt(h port.SearchEventsHandler) ConsumerOpt {
	return func(co *consumerOpts) error {
		if h == nil {
			return errors.New("search events handler is nil")
		}
		co.handler = h
		return nil
	}
}

type consumerOpts struct {
	cl      ConsumerClient
	commit  bool
	decoder Decoder
	handler port.SearchEventsHandler
}

func (co *consumerOpts) apply(opts ...ConsumerOpt) error {
	for _, opt := range opts {
		if err := opt(co); err != nil {
			return err
		}
	}
	return nil
}

// A SearchEventsConsumer polls the search events topic and passes
// decoded batches to the handler.
type SearchEventsConsumer struct {
	opPrefix      string
	cl            ConsumerClient
	commitEnabled bool
	decoder       Decoder
	handler       port.SearchEventsHandler
	slowDownTimer *time.Timer
}

func NewSearchEventsConsumer(opts ...ConsumerOpt) (*SearchEventsConsumer, error) {
	const op = "NewSearchEventsConsumer"

	if len(opts) != 3 {
		panic(opErr(ErrTooFewOpts, op)) // develop mistake
	}

	var options consumerOpts
	if err := options.apply(opts...); err != nil {
		return nil, opErr(err, op)
	}

	timer := time.NewTimer(slowDownDelay)
	timer.Stop()

	return &SearchEventsConsumer{
		opPrefix:      "SearchEventsConsumer",
		cl:            options.cl,
		commitEnabled: options.commit,
		decoder:       options.decoder,
		handler:       options.handler,
		slowDownTimer: timer,
	}, nil
}

// Run blocks until ctx is done.
func (c *SearchEventsConsumer) Run(ctx context.Context) {
	const op = "Run"
	log := slog.With("op", makeOp(c.opPrefix, op))

	log.Info("running")

	for {
		select {
		case <-ctx.Done():
			return
		default:
			if err := c.consume(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					continue
				}
				log.Error("failed to consume", "err", err)
				c.slowDown(ctx)
			}
		}
	}
}

func (c *SearchEventsConsumer) Close() {
	const op = "Close"
	log := slog.With("op", makeOp(c.opPrefix, op))

	log.Info("closing consumer...")
	c.cl.Close()
	log.Info("consumer is closed")
}

func (c *SearchEventsConsumer) consume(ctx context.Context) error {
	const op = "consume"

	fetches, err := c.pollFetches(ctx)
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}

	if fetches.Empty() {
		return nil
	}

	evs := c.decodeFetches(fetches)
	if len(evs) != 0 {
		if err := c.handler.HandleSearchEvents(ctx, evs); err != nil {
			return opErr(err, c.opPrefix, op)
		}
	}

	if err := c.commit(ctx); err != nil {
		return opErr(err, c.opPrefix, op)
	}
	return nil
}

func (c *SearchEventsConsumer) pollFetches(ctx context.Context) (kgo.Fetches, error) {
	const op = "pollFetches"

	fetches := c.cl.PollFetches(ctx)
	if err := fetches.Err0(); err != nil {
		return nil, opErr(err, c.opPrefix, op)
	}

	if err := c.handleFetchesErrs(fetches); err != nil {
		return nil, opErr(err, c.opPrefix, op)
	}
	return fetches, nil
}

func (c *SearchEventsConsumer) handleFetchesErrs(fetches kgo.Fetches) error {
	var errsMessages []string
	fetches.EachError(func(t string, p int32, err error) {
		if err != nil {
			errsMessages = append(errsMessages,
				fmt.Sprintf("topic %q partition %d: %q", t, p, err))
		}
	})

	if len(errsMessages) != 0 {
		return errors.New(strings.Join(errsMessages, "; "))
	}
	return nil
}

// decodeFetches skips records that fail to decode.
func (c *SearchEventsConsumer) decodeFetches(fetches kgo.Fetches) []domain.SearchEvent {
	const op = "decodeFetches"
	log := slog.With("op", makeOp(c.opPrefix, op))

	var evs []domain.SearchEvent
	fetches.EachRecord(func(r *kgo.Record) {
		var s schema.SearchEventV1
		if err := c.decoder.Decode(r.Value, &s); err != nil {
			log.Warn("skip undecodable record",
				"partition", r.Partition, "offset", r.Offset, "err", err)
			return
		}
		evs = append(evs, schemaV1ToSearchEvent(s))
	})
	return evs
}

func (c *SearchEventsConsumer) slowDown(ctx context.Context) {
	c.slowDownTimer.Reset(slowDownDelay)
	select {
	case <-ctx.Done():
		c.slowDownTimer.Stop()
	case <-c.slowDownTimer.C:
	}
}

func (c *SearchEventsConsumer) commit(ctx context.Context) error {
	const op = "commit"

	if !c.commitEnabled {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return opErr(err, c.opPrefix, op)
	}
	if err := c.cl.CommitUncommittedOffsets(ctx); err != nil {
		return opErr(err, c.opPrefix, op)
	}
	return nil
}
