package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

type MockProducerClient struct {
	mock.Mock
}

func (m *MockProducerClient) ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	args := m.Called(ctx, rs)
	return args.Get(0).(kgo.ProduceResults)
}

func (m *MockProducerClient) Close() {
	m.Called()
}

type MockConsumerClient struct {
	mock.Mock
}

func (m *MockConsumerClient) PollFetches(ctx context.Context) kgo.Fetches {
	args := m.Called(ctx)
	return args.Get(0).(kgo.Fetches)
}

func (m *MockConsumerClient) CommitUncommittedOffsets(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockConsumerClient) Close() {
	m.Called()
}

type MockSerde struct {
	mock.Mock
}

func (m *MockSerde) Encode(v any) ([]byte, error) {
	args := m.Called(v)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (m *MockSerde) Decode(b []byte, v any) error {
	args := m.Called(b, v)
	return args.Error(0)
}

type MockHandler struct {
	mock.Mock
}

func (m *MockHandler) HandleSearchEvents(ctx context.Context, evs []domain.SearchEvent) error {
	args := m.Called(ctx, evs)
	return args.Error(0)
}

var testAt = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func TestSearchEventSchemaConversion(t *testing.T) {
	ev := domain.SearchEvent{
		SessionID: "s-1",
		Query:     "  Red   DRESS ",
		Category:  domain.Clothing,
		Results:   4,
		At:        testAt,
	}

	s := searchEventToSchemaV1(ev)
	assert.Equal(t, schema.SearchEventV1{
		SessionID: "s-1",
		Query:     "red dress",
		Category:  "Clothing",
		Results:   4,
		At:        testAt,
	}, s)

	back := schemaV1ToSearchEvent(s)
	assert.Equal(t, "red dress", back.Query)
	assert.Equal(t, domain.Clothing, back.Category)
	assert.Equal(t, 4, back.Results)
}

func TestSearchEventsProducer(t *testing.T) {
	ev := domain.SearchEvent{Query: "Lipstick", Category: domain.Beauty, Results: 2, At: testAt}

	t.Run("record keyed by normalized query", func(t *testing.T) {
		cl := new(MockProducerClient)
		serde := new(MockSerde)
		serde.On("Encode", searchEventToSchemaV1(ev)).Return([]byte("payload"), nil)
		cl.On("ProduceSync", mock.Anything, mock.MatchedBy(func(rs []*kgo.Record) bool {
			return len(rs) == 1 && string(rs[0].Key) == "lipstick" &&
				string(rs[0].Value) == "payload"
		})).Return(kgo.ProduceResults{{}})

		p, err := NewSearchEventsProducer(ProducerRawClientOpt(cl), ProducerEncoderOpt(serde))
		require.NoError(t, err)

		require.NoError(t, p.ProduceSearchEvent(t.Context(), ev))
		cl.AssertExpectations(t)
		serde.AssertExpectations(t)
	})

	t.Run("produce error", func(t *testing.T) {
		errBroker := errors.New("not leader")
		cl := new(MockProducerClient)
		serde := new(MockSerde)
		serde.On("Encode", mock.Anything).Return([]byte("payload"), nil)
		cl.On("ProduceSync", mock.Anything, mock.Anything).
			Return(kgo.ProduceResults{{Err: errBroker}})

		p, err := NewSearchEventsProducer(ProducerRawClientOpt(cl), ProducerEncoderOpt(serde))
		require.NoError(t, err)

		err = p.ProduceSearchEvent(t.Context(), ev)
		assert.ErrorIs(t, err, errBroker)
	})

	t.Run("encode error skips produce", func(t *testing.T) {
		errEncode := errors.New("bad schema")
		cl := new(MockProducerClient)
		serde := new(MockSerde)
		serde.On("Encode", mock.Anything).Return(nil, errEncode)

		p, err := NewSearchEventsProducer(ProducerRawClientOpt(cl), ProducerEncoderOpt(serde))
		require.NoError(t, err)

		err = p.ProduceSearchEvent(t.Context(), ev)
		assert.ErrorIs(t, err, errEncode)
		cl.AssertNotCalled(t, "ProduceSync", mock.Anything, mock.Anything)
	})

	t.Run("nil encoder", func(t *testing.T) {
		_, err := NewSearchEventsProducer(ProducerRawClientOpt(new(MockProducerClient)), ProducerEncoderOpt(nil))
		assert.Error(t, err)
	})

	t.Run("too few options", func(t *testing.T) {
		assert.Panics(t, func() {
			_, _ = NewSearchEventsProducer(ProducerEncoderOpt(new(MockSerde)))
		})
	})
}

func TestSearchEventCodec(t *testing.T) {
	s := schema.SearchEventV1{Query: "shoes", Results: 1, At: testAt}

	t.Run("encode rejects other types", func(t *testing.T) {
		c := newSearchEventCodec(new(MockSerde))
		_, err := c.Encode("shoes")
		assert.ErrorIs(t, err, ErrInvalidValueType)
	})

	t.Run("encode", func(t *testing.T) {
		serde := new(MockSerde)
		serde.On("Encode", s).Return([]byte{1, 2}, nil)
		b, err := newSearchEventCodec(serde).Encode(s)
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 2}, b)
	})

	t.Run("decode", func(t *testing.T) {
		serde := new(MockSerde)
		serde.On("Decode", []byte{1, 2}, mock.AnythingOfType("*schema.SearchEventV1")).
			Run(func(args mock.Arguments) {
				*args.Get(1).(*schema.SearchEventV1) = s
			}).Return(nil)

		v, err := newSearchEventCodec(serde).Decode([]byte{1, 2})
		require.NoError(t, err)
		assert.Equal(t, s, v)
	})

	t.Run("decode error", func(t *testing.T) {
		serde := new(MockSerde)
		serde.On("Decode", mock.Anything, mock.Anything).Return(errors.New("short buffer"))
		_, err := newSearchEventCodec(serde).Decode(nil)
		assert.Error(t, err)
	})
}

func TestIncrement(t *testing.T) {
	assert.Equal(t, int64(1), increment(nil))
	assert.Equal(t, int64(8), increment(int64(7)))
}

func testFetches(values ...string) kgo.Fetches {
	var rs []*kgo.Record
	for i, v := range values {
		rs = append(rs, &kgo.Record{Topic: "search-events", Value: []byte(v), Offset: int64(i)})
	}
	return kgo.Fetches{{Topics: []kgo.FetchTopic{{
		Topic:      "search-events",
		Partitions: []kgo.FetchPartition{{Partition: 0, Records: rs}},
	}}}}
}

func TestSearchEventsConsumer(t *testing.T) {
	newDecoder := func() *MockSerde {
		serde := new(MockSerde)
		serde.On("Decode", []byte("bad"), mock.Anything).Return(errors.New("magic byte"))
		serde.On("Decode", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				s := args.Get(1).(*schema.SearchEventV1)
				s.Query = string(args.Get(0).([]byte))
			}).Return(nil)
		return serde
	}

	t.Run("decoded batch is handled and committed", func(t *testing.T) {
		cl := new(MockConsumerClient)
		cl.On("PollFetches", mock.Anything).Return(testFetches("dress", "bad", "shoes"))
		cl.On("CommitUncommittedOffsets", mock.Anything).Return(nil).Once()

		h := new(MockHandler)
		h.On("HandleSearchEvents", mock.Anything, mock.MatchedBy(func(evs []domain.SearchEvent) bool {
			return len(evs) == 2 && evs[0].Query == "dress" && evs[1].Query == "shoes"
		})).Return(nil).Once()

		c, err := NewSearchEventsConsumer(
			ConsumerRawClientOpt(cl, true), ConsumerDecoderOpt(newDecoder()), ConsumerHandlerOpt(h),
		)
		require.NoError(t, err)

		require.NoError(t, c.consume(t.Context()))
		cl.AssertExpectations(t)
		h.AssertExpectations(t)
	})

	t.Run("handler error skips commit", func(t *testing.T) {
		cl := new(MockConsumerClient)
		cl.On("PollFetches", mock.Anything).Return(testFetches("dress"))

		errSink := errors.New("closed pipe")
		h := new(MockHandler)
		h.On("HandleSearchEvents", mock.Anything, mock.Anything).Return(errSink)

		c, err := NewSearchEventsConsumer(
			ConsumerRawClientOpt(cl, true), ConsumerDecoderOpt(newDecoder()), ConsumerHandlerOpt(h),
		)
		require.NoError(t, err)

		assert.ErrorIs(t, c.consume(t.Context()), errSink)
		cl.AssertNotCalled(t, "CommitUncommittedOffsets", mock.Anything)
	})

	t.Run("no commit without group", func(t *testing.T) {
		cl := new(MockConsumerClient)
		cl.On("PollFetches", mock.Anything).Return(testFetches("dress"))

		h := new(MockHandler)
		h.On("HandleSearchEvents", mock.Anything, mock.Anything).Return(nil)

		c, err := NewSearchEventsConsumer(
			ConsumerRawClientOpt(cl, false), ConsumerDecoderOpt(newDecoder()), ConsumerHandlerOpt(h),
		)
		require.NoError(t, err)

		require.NoError(t, c.consume(t.Context()))
		cl.AssertNotCalled(t, "CommitUncommittedOffsets", mock.Anything)
	})

	t.Run("partition errors", func(t *testing.T) {
		errPartition := errors.New("offset out of range")
		cl := new(MockConsumerClient)
		cl.On("PollFetches", mock.Anything).Return(kgo.Fetches{{Topics: []kgo.FetchTopic{{
			Topic:      "search-events",
			Partitions: []kgo.FetchPartition{
				{Partition: 0},
				{Partition: 2, Err: errPartition},
			},
		}}}})

		c, err := NewSearchEventsConsumer(
			ConsumerRawClientOpt(cl, true), ConsumerDecoderOpt(newDecoder()), ConsumerHandlerOpt(new(MockHandler)),
		)
		require.NoError(t, err)

		err = c.consume(t.Context())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "partition 2")
	})
}

func TestClientConfigOpts(t *testing.T) {
	assert.Len(t, ClientConfig{SeedBrokers: []string{"localhost:9092"}}.Opts(), 1)
	assert.Len(t, ClientConfig{SeedBrokers: []string{"b:9092"}, User: "u", Pass: "p"}.Opts(), 2)
}

func TestOpErr(t *testing.T) {
	err := opErr(ErrTooFewOpts, "SearchEventsProducer", "createRecord")
	assert.EqualError(t, err, "SearchEventsProducer.createRecord: too few options")
	assert.ErrorIs(t, err, ErrTooFewOpts)
}
