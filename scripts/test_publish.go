//go:build ignore
// +build ignore

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/farm-geo-service/internal/domain"
	redisRepo "github.com/farm-geo-service/internal/repository/redis"
)

// Публикует тестовые показания датчиков в стрим телеметрии.
//
//	go run scripts/test_publish.go -redis localhost:6379 -count 5
func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	stream := flag.String("stream", domain.StreamSensorData, "Sensor stream name")
	count := flag.Int("count", 1, "Number of readings to publish")
	interval := flag.Duration("interval", time.Second, "Delay between readings")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	streamRepo := redisRepo.NewStreamRepository(client, zap.NewNop())

	for i := 0; i < *count; i++ {
		// Датчик в районе Бандунга, значения со случайным разбросом
		reading := domain.SensorReading{
			ID:        uuid.NewString(),
			Timestamp: time.Now().UnixMilli(),
			Lat:       -6.9 + rand.Float64()*0.01,
			Lon:       106.9 + rand.Float64()*0.01,
			Message:   "test reading",
			Payload: domain.SensorPayload{
				Temp:  24 + rand.Float64()*6,
				Hum:   60 + rand.Float64()*30,
				Moist: 30 + rand.Float64()*40,
				PH:    5.5 + rand.Float64()*2,
				N:     rand.Float64() * 100,
				P:     rand.Float64() * 100,
				K:     rand.Float64() * 100,
				Water: rand.Float64() * 100,
			},
		}

		if err := streamRepo.PublishToStream(ctx, *stream, reading); err != nil {
			log.Fatalf("Failed to publish reading: %v", err)
		}

		fmt.Printf("Reading published: stream=%s id=%s temp=%.1f moist=%.1f\n",
			*stream, reading.ID, reading.Payload.Temp, reading.Payload.Moist)

		if i < *count-1 {
			time.Sleep(*interval)
		}
	}
}
