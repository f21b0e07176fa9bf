// Package events announces party changes to other services.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Gobusters/ectologger"

	appctx "github.com/Ramsey-B/poppy/pkg/context"
	"github.com/Ramsey-B/poppy/pkg/tracing"
)

// Event types
const (
	PartyCreated             = "party.created"
	PartyDeleted             = "party.deleted"
	PartyMemberRemoved       = "party.member_removed"
	CustomizedPokemonCreated = "customized_pokemon.created"
	CustomizedPokemonUpdated = "customized_pokemon.updated"
	CustomizedPokemonDeleted = "customized_pokemon.deleted"
	MoveAdded                = "customized_pokemon.move_added"
	MoveRemoved              = "customized_pokemon.move_removed"
	DatabaseReset            = "database.reset"
)

// Event is the message body published for every change.
type Event struct {
	Type      string         `json:"type"`
	Key       string         `json:"key"`
	RequestID string         `json:"request_id,omitempty"`
	TraceID   string         `json:"trace_id,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Publisher writes an encoded event. *kafka.Producer implements it.
type Publisher interface {
	Publish(ctx context.Context, key string, value []byte, headers map[string]string) error
}

// Emitter announces a change after it has been committed.
type Emitter interface {
	Emit(ctx context.Context, eventType, key string, data map[string]any)
}

// PartyKey keys events by party so they stay ordered per party.
func PartyKey(partyID int64) string {
	return fmt.Sprintf("party:%d", partyID)
}

// CustomizedPokemonKey keys events by customized pokemon.
func CustomizedPokemonKey(customizedPokemonID int64) string {
	return fmt.Sprintf("customized_pokemon:%d", customizedPokemonID)
}

// PublishingEmitter publishes each event in the background so a slow or
// unreachable broker never holds up the response.
type PublishingEmitter struct {
	publisher Publisher
	logger    ectologger.Logger
	timeout   time.Duration
	inflight  sync.WaitGroup
}

// NewEmitter publishes events through publisher, giving each publish at most
// timeout. A failed publish is logged and never reaches the caller since the
// change is already committed.
func NewEmitter(publisher Publisher, logger ectologger.Logger, timeout time.Duration) *PublishingEmitter {
	return &PublishingEmitter{publisher: publisher, logger: logger, timeout: timeout}
}

// Emit encodes the event and returns. Publishing continues after the request
// context is canceled.
func (e *PublishingEmitter) Emit(ctx context.Context, eventType, key string, data map[string]any) {
	event := Event{
		Type:      eventType,
		Key:       key,
		RequestID: appctx.GetRequestID(ctx),
		TraceID:   tracing.GetTraceID(ctx),
		Data:      data,
		Timestamp: time.Now().UTC(),
	}

	value, err := json.Marshal(event)
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).Errorf("Failed to encode %s event", eventType)
		return
	}

	ctx = context.WithoutCancel(ctx)
	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		e.publish(ctx, event, value)
	}()
}

func (e *PublishingEmitter) publish(ctx context.Context, event Event, value []byte) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	ctx, span := tracing.StartSpan(ctx, "Emitter.Publish")
	defer span.End()

	log := e.logger.WithContext(ctx).WithFields(map[string]any{
		"type": event.Type,
		"key":  event.Key,
	})
	if err := e.publisher.Publish(ctx, event.Key, value, map[string]string{"type": event.Type}); err != nil {
		span.RecordError(err)
		log.WithError(err).Warn("Failed to publish event")
		return
	}
	log.Debug("Published event")
}

// Close waits for events still being published, or for ctx to end.
func (e *PublishingEmitter) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type noopEmitter struct{}

// NewNoopEmitter drops every event. It is used when Kafka is disabled.
func NewNoopEmitter() Emitter {
	return noopEmitter{}
}

func (noopEmitter) Emit(context.Context, string, string, map[string]any) {}
