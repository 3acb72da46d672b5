package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync/atomic"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/protocol/metadata"
	"github.com/segmentio/kafka-go/protocol/produce"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/water-safety-service/internal/config"
	"github.com/couchcryptid/water-safety-service/internal/domain"
)

func testEvent() domain.VerdictEvent {
	return domain.VerdictEvent{
		ResolutionID: "res-1",
		InputKind:    "address",
		Coordinates:  domain.Coordinates{Lat: 39.78, Lon: -89.65},
		Utility:      domain.UtilityMatch{SystemID: "IL1234567", Name: "SPRINGFIELD", Candidates: 1},
		Tier:         domain.TierRed,
		Verdict:      "Do Not Drink",
		AsOf:         "2025-06-15",
		ResolvedAt:   time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC),
	}
}

func TestSerializeToMessage(t *testing.T) {
	event := testEvent()

	msg, err := serializeToMessage(event)
	require.NoError(t, err)

	assert.Equal(t, []byte("IL1234567"), msg.Key)
	assert.Contains(t, string(msg.Value), `"tier":"RED"`)
	assert.Contains(t, string(msg.Value), `"pwsid":"IL1234567"`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "tier", msg.Headers[0].Key)
	assert.Equal(t, []byte("RED"), msg.Headers[0].Value)
	assert.Equal(t, "resolved_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2025-06-15T09:30:00Z"), msg.Headers[1].Value)

	var back domain.VerdictEvent
	require.NoError(t, json.Unmarshal(msg.Value, &back))
	assert.Equal(t, event, back)
}

func TestPublishVerdict_UnreachableBroker(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"127.0.0.1:1"}, KafkaVerdictTopic: "verdicts"}
	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := w.PublishVerdict(ctx, testEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "res-1")
}

// instantBroker answers metadata and produce requests in-process, as a single
// broker leading partition 0 of every requested topic.
type instantBroker struct {
	produced atomic.Int32
}

func (b *instantBroker) RoundTrip(_ context.Context, _ net.Addr, req kafkago.Request) (kafkago.Response, error) {
	switch r := req.(type) {
	case *metadata.Request:
		res := &metadata.Response{
			Brokers: []metadata.ResponseBroker{{NodeID: 1, Host: "127.0.0.1", Port: 9092}},
		}
		for _, name := range r.TopicNames {
			res.Topics = append(res.Topics, metadata.ResponseTopic{
				Name: name,
				Partitions: []metadata.ResponsePartition{{
					PartitionIndex: 0,
					LeaderID:       1,
					ReplicaNodes:   []int32{1},
					IsrNodes:       []int32{1},
				}},
			})
		}
		return res, nil
	case *produce.Request:
		n := b.produced.Add(1)
		res := &produce.Response{}
		for _, topic := range r.Topics {
			rt := produce.ResponseTopic{Topic: topic.Topic}
			for _, p := range topic.Partitions {
				rt.Partitions = append(rt.Partitions, produce.ResponsePartition{
					Partition:  p.Partition,
					BaseOffset: int64(n - 1),
				})
			}
			res.Topics = append(res.Topics, rt)
		}
		return res, nil
	default:
		return nil, fmt.Errorf("unexpected request %T", req)
	}
}

func TestPublishVerdict_FlushesWithoutBatchDelay(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"127.0.0.1:9092"}, KafkaVerdictTopic: "verdicts"}
	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	broker := &instantBroker{}
	w.writer.Transport = broker
	defer w.Close()

	for i := range 3 {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		start := time.Now()
		err := w.PublishVerdict(ctx, testEvent())
		elapsed := time.Since(start)
		cancel()

		require.NoError(t, err, "publish %d", i)
		assert.Less(t, elapsed, 250*time.Millisecond, "publish %d waited on batching", i)
	}
	assert.EqualValues(t, 3, broker.produced.Load())
}
