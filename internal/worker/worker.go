package worker

import (
	"context"
)

// Worker интерфейс для всех фоновых воркеров сервиса
type Worker interface {
	// Start блокирует до остановки воркера или отмены ctx
	Start(ctx context.Context) error

	// Stop сигнализирует о завершении, не дожидаясь его
	Stop() error

	Name() string
}
