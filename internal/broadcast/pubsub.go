package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/logger"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/protocol"
)

// PubSub carries room emissions between server instances. Implementations
// must invoke the subscribed handler for every published message, including
// the publisher's own.
type PubSub interface {
	Publish(ctx context.Context, room, event string, payload interface{}) error
	Subscribe(ctx context.Context, handler func(room string, msg protocol.OutboundMessage)) error
	Close()
}

// roomEnvelope is the cross-instance wire format
type roomEnvelope struct {
	Room  string          `json:"room"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// RedisPubSub broadcasts room emissions over a Redis channel
type RedisPubSub struct {
	rdb  *redis.Client
	sub  *redis.PubSub
	wg   sync.WaitGroup
	once sync.Once
}

// NewRedisPubSub creates the Redis-backed adapter
func NewRedisPubSub(rdb *redis.Client) *RedisPubSub {
	return &RedisPubSub{rdb: rdb}
}

// Publish sends a room emission to every subscribed instance
func (p *RedisPubSub) Publish(ctx context.Context, room, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode broadcast payload: %w", err)
	}
	envelope, err := json.Marshal(roomEnvelope{Room: room, Event: event, Data: data})
	if err != nil {
		return fmt.Errorf("failed to encode broadcast envelope: %w", err)
	}
	if err := p.rdb.Publish(ctx, BroadcastChannel, envelope).Err(); err != nil {
		return fmt.Errorf("failed to publish broadcast: %w", err)
	}
	return nil
}

// Subscribe starts the consume loop. The handler runs on a dedicated
// goroutine until Close.
func (p *RedisPubSub) Subscribe(ctx context.Context, handler func(room string, msg protocol.OutboundMessage)) error {
	p.sub = p.rdb.Subscribe(ctx, BroadcastChannel)
	if _, err := p.sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to broadcast channel: %w", err)
	}

	ch := p.sub.Channel()
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		log := logger.FromContext(ctx)
		for msg := range ch {
			var envelope roomEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
				log.Warn(LogMsgBadEnvelope, "error", err)
				continue
			}
			handler(envelope.Room, protocol.OutboundMessage{
				Event: envelope.Event,
				Data:  envelope.Data,
			})
		}
	}()
	return nil
}

// Close stops the consume loop
func (p *RedisPubSub) Close() {
	p.once.Do(func() {
		if p.sub != nil {
			_ = p.sub.Close()
		}
		p.wg.Wait()
	})
}

// LoopbackPubSub is a single-instance adapter: publishes are delivered
// directly to the local handler. Used in tests and single-node deployments.
type LoopbackPubSub struct {
	mu      sync.RWMutex
	handler func(room string, msg protocol.OutboundMessage)
}

// NewLoopbackPubSub creates the in-process adapter
func NewLoopbackPubSub() *LoopbackPubSub {
	return &LoopbackPubSub{}
}

// Publish delivers the message synchronously to the subscribed handler
func (p *LoopbackPubSub) Publish(_ context.Context, room, event string, payload interface{}) error {
	p.mu.RLock()
	handler := p.handler
	p.mu.RUnlock()
	if handler != nil {
		handler(room, protocol.OutboundMessage{Event: event, Data: payload})
	}
	return nil
}

// Subscribe registers the local delivery handler
func (p *LoopbackPubSub) Subscribe(_ context.Context, handler func(room string, msg protocol.OutboundMessage)) error {
	p.mu.Lock()
	p.handler = handler
	p.mu.Unlock()
	return nil
}

// Close detaches the handler
func (p *LoopbackPubSub) Close() {
	p.mu.Lock()
	p.handler = nil
	p.mu.Unlock()
}
