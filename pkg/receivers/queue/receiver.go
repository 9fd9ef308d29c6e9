// Package queue bridges helpdesk events pushed onto a Redis list into the
// engine's event bus. Helpdesk services that cannot speak Kafka push JSON
// events here instead.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/deskflow/deskflow/pkg/eventbus"
	"github.com/deskflow/deskflow/pkg/events"
)

const (
	DefaultQueue   = "deskflow:events"
	popTimeout     = 1 * time.Second
	connectTimeout = 5 * time.Second
)

type Config struct {
	Addr     string
	Password string
	DB       int
	Queue    string
}

type Receiver struct {
	config   Config
	eventBus eventbus.EventBus
	logger   *slog.Logger

	client redis.UniversalClient
	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewReceiver(config Config, eventBus eventbus.EventBus, logger *slog.Logger) (*Receiver, error) {
	if config.Addr == "" {
		config.Addr = "localhost:6379"
	}

	if config.Queue == "" {
		config.Queue = DefaultQueue
	}

	return &Receiver{
		config:   config,
		eventBus: eventBus,
		logger:   logger.With("module", "queue_receiver", "queue", config.Queue),
		stopCh:   make(chan struct{}),
	}, nil
}

func (r *Receiver) Start(ctx context.Context) error {
	r.client = redis.NewClient(&redis.Options{
		Addr:     r.config.Addr,
		Password: r.config.Password,
		DB:       r.config.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := r.client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	r.logger.InfoContext(ctx, "Connected to Redis", "addr", r.config.Addr, "db", r.config.DB)

	r.wg.Add(1)

	go r.consume(ctx)

	return nil
}

func (r *Receiver) Stop(ctx context.Context) error {
	close(r.stopCh)
	r.wg.Wait()

	if r.client != nil {
		if err := r.client.Close(); err != nil {
			r.logger.ErrorContext(ctx, "Error closing Redis client", "error", err)
		}
	}

	r.logger.InfoContext(ctx, "Queue receiver stopped")

	return nil
}

func (r *Receiver) consume(ctx context.Context) {
	defer r.wg.Done()

	r.logger.InfoContext(ctx, "Starting queue consumer")

	for {
		select {
		case <-r.stopCh:
			return
		case <-ctx.Done():
			return
		default:
			if err := r.processMessage(ctx); err != nil {
				r.logger.ErrorContext(ctx, "Error processing queue message", "error", err)
				time.Sleep(1 * time.Second)
			}
		}
	}
}

func (r *Receiver) processMessage(ctx context.Context) error {
	result, err := r.client.BLPop(ctx, popTimeout, r.config.Queue).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
			return nil
		}

		return fmt.Errorf("failed to pop message from queue: %w", err)
	}

	if len(result) < 2 {
		return nil
	}

	var event events.ResourceEvent
	if err := json.Unmarshal([]byte(result[1]), &event); err != nil {
		r.logger.ErrorContext(ctx, "Dropping malformed queue message", "error", err)

		return nil
	}

	if event.TenantID == "" || event.Type == "" {
		r.logger.ErrorContext(ctx, "Dropping queue message without tenant or type")

		return nil
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	return r.eventBus.Publish(ctx, &event)
}
