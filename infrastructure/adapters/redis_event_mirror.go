package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Shogun05/VoiceFrame/application/ports/outbound"
	"github.com/Shogun05/VoiceFrame/config"
	"github.com/Shogun05/VoiceFrame/domain"
	"github.com/go-redis/redis/v8"
)

const (
	mirrorBufferSize   = 256
	mirrorWriteTimeout = 2 * time.Second
)

// RedisEventMirror copies progress events to a per-run list and channel. Writes happen on a single
// background goroutine; events are dropped when the buffer is full.
type RedisEventMirror struct {
	logger outbound.LoggerPort
	client *redis.Client
	ttl    time.Duration
	events chan domain.ProgressEvent
	done   chan struct{}
	mu     sync.RWMutex
	closed bool
}

func NewRedisClient(redisConfig *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     redisConfig.Addr,
		Password: redisConfig.Password,
		DB:       redisConfig.DB,
	})
}

func NewRedisEventMirror(logger outbound.LoggerPort, client *redis.Client, ttl time.Duration) *RedisEventMirror {
	m := &RedisEventMirror{
		logger: logger,
		client: client,
		ttl:    ttl,
		events: make(chan domain.ProgressEvent, mirrorBufferSize),
		done:   make(chan struct{}),
	}
	go m.consume()
	return m
}

func runEventsKey(runID string) string {
	return fmt.Sprintf("run:%s:events", runID)
}

func (m *RedisEventMirror) Mirror(event domain.ProgressEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return
	}
	select {
	case m.events <- event:
	default:
		m.logger.WarnWithFields("Event mirror buffer full, dropping event", map[string]interface{}{
			"run_id":   event.RunID,
			"sequence": event.Sequence,
		})
	}
}

// Close stops accepting events and waits for buffered ones to be written.
func (m *RedisEventMirror) Close() {
	m.mu.Lock()
	if !m.closed {
		m.closed = true
		close(m.events)
	}
	m.mu.Unlock()
	<-m.done
}

func (m *RedisEventMirror) consume() {
	defer close(m.done)
	for event := range m.events {
		if err := m.write(event); err != nil {
			m.logger.ErrorWithFields(err, "Failed to mirror progress event", map[string]interface{}{
				"run_id":   event.RunID,
				"sequence": event.Sequence,
			})
		}
	}
}

func (m *RedisEventMirror) write(event domain.ProgressEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), mirrorWriteTimeout)
	defer cancel()

	key := runEventsKey(event.RunID)
	_, err = m.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, payload)
		pipe.Expire(ctx, key, m.ttl)
		pipe.Publish(ctx, key, payload)
		return nil
	})
	return err
}
