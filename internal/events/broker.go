// Package events fans out change notifications to live subscribers so that
// dashboards update on write instead of polling.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Event types.
const (
	TypeRecordAdded      = "health_record.added"
	TypeNotification     = "notification.created"
	TypeNotificationRead = "notification.read"
	TypeProfileCompleted = "profile.completed"
)

const defaultBuffer = 64

// Event is one change delivered to subscribers of Topic.
type Event struct {
	Type      string          `json:"type"`
	Topic     string          `json:"topic"`
	PatientID string          `json:"patientId,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewEvent encodes data into an event for topic.
func NewEvent(eventType, topic, patientID string, data interface{}) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s event: %w", eventType, err)
	}
	return Event{
		Type:      eventType,
		Topic:     topic,
		PatientID: patientID,
		Timestamp: time.Now().UTC(),
		Data:      raw,
	}, nil
}

// DoctorTopic is the topic a doctor's dashboard listens on.
func DoctorTopic(doctorID string) string { return "doctor:" + doctorID }

// PatientTopic is the topic a patient's own views listen on.
func PatientTopic(patientID string) string { return "patient:" + patientID }

// Publisher delivers events. Publish never blocks on slow subscribers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type subscriber struct {
	ch     chan Event
	topics []string
}

// Broker is an in-process topic fan-out. All methods are safe for
// concurrent use.
type Broker struct {
	mu     sync.RWMutex
	topics map[string]map[*subscriber]struct{}
	buffer int
	log    zerolog.Logger
}

// NewBroker creates a broker whose subscriptions buffer up to buffer events.
func NewBroker(log zerolog.Logger, buffer int) *Broker {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Broker{
		topics: make(map[string]map[*subscriber]struct{}),
		buffer: buffer,
		log:    log.With().Str("component", "events").Logger(),
	}
}

// Subscribe registers for events on the given topics. The returned cancel
// function unregisters and closes the channel; calling it twice is safe.
func (b *Broker) Subscribe(topics ...string) (<-chan Event, func()) {
	sub := &subscriber{ch: make(chan Event, b.buffer), topics: topics}

	b.mu.Lock()
	for _, topic := range topics {
		if b.topics[topic] == nil {
			b.topics[topic] = make(map[*subscriber]struct{})
		}
		b.topics[topic][sub] = struct{}{}
	}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for _, topic := range sub.topics {
				if subs, ok := b.topics[topic]; ok {
					delete(subs, sub)
					if len(subs) == 0 {
						delete(b.topics, topic)
					}
				}
			}
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Publish delivers event to every subscriber of event.Topic. A subscriber
// whose buffer is full misses the event.
func (b *Broker) Publish(_ context.Context, event Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.topics[event.Topic] {
		select {
		case sub.ch <- event:
		default:
			b.log.Warn().
				Str("topic", event.Topic).
				Str("type", event.Type).
				Msg("subscriber buffer full, event dropped")
		}
	}
	return nil
}

// SubscriberCount returns the number of live subscriptions on topic.
func (b *Broker) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}
