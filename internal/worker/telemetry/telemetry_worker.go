package telemetry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farm-geo-service/internal/domain"
	"github.com/farm-geo-service/internal/domain/repository"
	"github.com/farm-geo-service/internal/telemetry"
	"github.com/farm-geo-service/internal/worker"
)

// TelemetryWorker читает показания датчиков из Redis Stream и публикует их в Feed
type TelemetryWorker struct {
	*worker.BaseWorker
	streamRepo    repository.StreamRepository
	feed          *telemetry.Feed
	stream        string
	consumerGroup string
	consumerName  string
}

// NewTelemetryWorker создает новый TelemetryWorker с уникальным именем консьюмера
func NewTelemetryWorker(
	streamRepo repository.StreamRepository,
	feed *telemetry.Feed,
	stream string,
	consumerGroup string,
	logger *zap.Logger,
) *TelemetryWorker {
	return &TelemetryWorker{
		BaseWorker:    worker.NewBaseWorker("telemetry", logger),
		streamRepo:    streamRepo,
		feed:          feed,
		stream:        stream,
		consumerGroup: consumerGroup,
		consumerName:  "farm-geo-" + uuid.NewString(),
	}
}

func (w *TelemetryWorker) ConsumerName() string {
	return w.consumerName
}

// Start подключает Feed и обрабатывает сообщения до остановки
func (w *TelemetryWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting telemetry worker",
		zap.String("stream", w.stream),
		zap.String("consumer_group", w.consumerGroup),
		zap.String("consumer_name", w.consumerName))

	if err := w.streamRepo.CreateConsumerGroup(ctx, w.stream, w.consumerGroup); err != nil {
		w.feed.ReportError(err)
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	consumeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	messages, err := w.streamRepo.ConsumeStream(consumeCtx, w.stream, w.consumerGroup, w.consumerName)
	if err != nil {
		w.feed.ReportError(err)
		return fmt.Errorf("failed to consume stream: %w", err)
	}

	w.feed.Connect()
	defer w.feed.Close()

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			return ctx.Err()

		case msg, ok := <-messages:
			if !ok {
				logger.Info("Stream channel closed")
				return nil
			}
			w.handleMessage(ctx, msg)
		}
	}
}

// handleMessage декодирует показание и публикует его. Битое сообщение подтверждается,
// чтобы не застревать в PEL.
func (w *TelemetryWorker) handleMessage(ctx context.Context, msg domain.StreamMessage) {
	logger := w.Logger()

	var reading domain.SensorReading
	if err := json.Unmarshal([]byte(msg.Data), &reading); err != nil {
		logger.Warn("Failed to decode sensor reading, skipping",
			zap.String("message_id", msg.ID),
			zap.Error(err))
		w.feed.ReportError(fmt.Errorf("invalid data format: %w", err))
	} else {
		w.feed.Publish(reading)
		logger.Debug("Sensor reading received",
			zap.String("message_id", msg.ID),
			zap.String("device", reading.ID))
	}

	if err := w.streamRepo.AckMessage(ctx, w.stream, w.consumerGroup, msg.ID); err != nil {
		logger.Error("Failed to ack message", zap.String("message_id", msg.ID), zap.Error(err))
	}
}
