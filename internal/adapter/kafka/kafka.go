package kafka

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/lovoo/goka"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl/plain"
)

var (
	ErrTooFewOpts       = errors.New("too few options")
	ErrInvalidValueType = errors.New("invalid value type")
)

// A ClientConfig is the broker connection shared by every client.
//
// TLSConfig, User and Pass are optional.
type ClientConfig struct {
	SeedBrokers []string
	TLSConfig   *tls.Config
	User        string
	Pass        string
}

// Opts returns the client options of the connection.
func (c ClientConfig) Opts() []kgo.Opt {
	opts := []kgo.Opt{kgo.SeedBrokers(c.SeedBrokers...)}
	if c.TLSConfig != nil {
		opts = append(opts, kgo.DialTLSConfig(c.TLSConfig))
	}
	if c.User != "" {
		auth := plain.Auth{User: c.User, Pass: c.Pass}
		opts = append(opts, kgo.SASL(auth.AsMechanism()))
	}
	return opts
}

// applySASLTLS replaces the global goka config used by processors
// and views created afterwards.
func applySASLTLS(tlsConfig *tls.Config, user, pass string) {
	if tlsConfig == nil && user == "" {
		return
	}
	cfg := goka.DefaultConfig()
	if tlsConfig != nil {
		cfg.Net.TLS.Enable = true
		cfg.Net.TLS.Config = tlsConfig
	}
	if user != "" {
		cfg.Net.SASL.Enable = true
		cfg.Net.SASL.User = user
		cfg.Net.SASL.Password = pass
	}
	goka.ReplaceGlobalConfig(cfg)
}

type ProducerOpt func(*producerOpts) error

type producerOpts struct {
	cl      ProducerClient
	encoder Encoder
}

func ProducerClientOpt(
	ctx context.Context, cfg ClientConfig, topic string,
) ProducerOpt {
	return func(opts *producerOpts) error {
		kopts := append(cfg.Opts(),
			kgo.DefaultProduceTopicAlways(),
			kgo.DefaultProduceTopic(topic),
			kgo.RequiredAcks(kgo.AllISRAcks()),
			kgo.AllowAutoTopicCreation(),
		)
		cl, err := kgo.NewClient(kopts...)
		if err != nil {
			return err
		}

		if err := cl.Ping(ctx); err != nil {
			cl.Close()
			return err
		}
		opts.cl = cl
		return nil
	}
}

// ProducerRawClientOpt uses an already configured client.
func ProducerRawClientOpt(cl ProducerClient) ProducerOpt {
	return func(opts *producerOpts) error {
		if cl == nil {
			return errors.New("producer client is nil")
		}
		opts.cl = cl
		return nil
	}
}

func ProducerEncoderOpt(encoder Encoder) ProducerOpt {
	return func(opts *producerOpts) error {
		if encoder == nil {
			return errors.New("encoder is nil")
		}
		opts.encoder = encoder
		return nil
	}
}

type ProducerClient interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

type ConsumerClient interface {
	PollFetches(context.Context) kgo.Fetches
	CommitUncommittedOffsets(context.Context) error
	Close()
}

type Encoder interface {
	Encode(v any) ([]byte, error)
}

type Decoder interface {
	Decode(b []byte, v any) error
}

type Serde interface {
	Encoder
	Decoder
}

func withNonlogProcOpt() goka.ProcessorOption {
	return goka.WithLogger(log.New(io.Discard, "", 0))
}

func makeOp(s ...string) string {
	return strings.Join(s, ".")
}

func opErr(err error, op ...string) error {
	return fmt.Errorf("%s: %w", makeOp(op...), err)
}

func searchEventToSchemaV1(v domain.SearchEvent) (s schema.SearchEventV1) {
	s.SessionID = v.SessionID
	s.Query = v.Key()
	s.Category = string(v.Category)
	s.Results = int64(v.Results)
	s.At = v.At
	return
}

func schemaV1ToSearchEvent(s schema.SearchEventV1) (v domain.SearchEvent) {
	v.SessionID = s.SessionID
	v.Query = s.Query
	v.Category = domain.Category(s.Category)
	v.Results = int(s.Results)
	v.At = s.At
	return
}
