package telemetry_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/farm-geo-service/internal/domain"
	"github.com/farm-geo-service/internal/telemetry"
	telemetryworker "github.com/farm-geo-service/internal/worker/telemetry"
)

const (
	testStream = "stream:smartfarm:sensors"
	testGroup  = "farm-geo-telemetry"
)

// MockStreamRepository is a mock of StreamRepository
type MockStreamRepository struct {
	mock.Mock
}

func (m *MockStreamRepository) ConsumeStream(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) AckMessage(ctx context.Context, stream, group, messageID string) error {
	args := m.Called(ctx, stream, group, messageID)
	return args.Error(0)
}

func (m *MockStreamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	args := m.Called(ctx, stream, group)
	return args.Error(0)
}

func (m *MockStreamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	args := m.Called(ctx, stream, data)
	return args.Error(0)
}

func TestTelemetryWorker_ConsumerName(t *testing.T) {
	w := telemetryworker.NewTelemetryWorker(&MockStreamRepository{}, telemetry.NewFeed(zap.NewNop()), testStream, testGroup, zap.NewNop())

	assert.Equal(t, "telemetry", w.Name())
	assert.True(t, strings.HasPrefix(w.ConsumerName(), "farm-geo-"))
}

func TestTelemetryWorker_PublishesAndAcks(t *testing.T) {
	streamRepo := &MockStreamRepository{}
	feed := telemetry.NewFeed(zap.NewNop())
	w := telemetryworker.NewTelemetryWorker(streamRepo, feed, testStream, testGroup, zap.NewNop())

	messages := make(chan domain.StreamMessage, 2)
	messages <- domain.StreamMessage{ID: "1-0", Data: `{"id":"node-1","ts":1700000000,"payload":{"temp":27.5,"ph":6.4}}`}
	messages <- domain.StreamMessage{ID: "2-0", Data: `not json`}

	acked := make(chan string, 2)
	streamRepo.On("CreateConsumerGroup", mock.Anything, testStream, testGroup).Return(nil)
	streamRepo.On("ConsumeStream", mock.Anything, testStream, testGroup, w.ConsumerName()).
		Return((<-chan domain.StreamMessage)(messages), nil)
	streamRepo.On("AckMessage", mock.Anything, testStream, testGroup, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { acked <- args.String(3) }).
		Return(nil)

	done := make(chan error, 1)
	go func() {
		done <- w.Start(context.Background())
	}()

	for _, id := range []string{"1-0", "2-0"} {
		select {
		case got := <-acked:
			assert.Equal(t, id, got)
		case <-time.After(time.Second):
			t.Fatalf("message %s was not acked", id)
		}
	}

	latest, ok := feed.Latest()
	require.True(t, ok)
	assert.Equal(t, "node-1", latest.ID)
	assert.Equal(t, 27.5, latest.Payload.Temp)
	assert.Contains(t, feed.Status().LastError, "invalid data format")

	require.NoError(t, w.Stop())
	require.NoError(t, <-done)
	assert.False(t, feed.Status().Connected)
}

func TestTelemetryWorker_GroupCreationFails(t *testing.T) {
	streamRepo := &MockStreamRepository{}
	feed := telemetry.NewFeed(zap.NewNop())
	streamRepo.On("CreateConsumerGroup", mock.Anything, testStream, testGroup).Return(errors.New("connection refused"))

	w := telemetryworker.NewTelemetryWorker(streamRepo, feed, testStream, testGroup, zap.NewNop())
	err := w.Start(context.Background())

	require.Error(t, err)
	assert.Equal(t, "connection refused", feed.Status().LastError)
	assert.False(t, feed.Status().Connected)
}
