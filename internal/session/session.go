// Package session persists what outlives one wizard run: the signed-in actor
// (a JetStream key-value entry) and the journal of wizard activity (an
// append-only JetStream stream, reduced into a History on read).
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/mark3labs/rentr/internal/logger"
	"github.com/mark3labs/rentr/internal/nats"
	"github.com/nats-io/nats.go/jetstream"
)

// Event is one journal entry.
type Event struct {
	ID         string    `json:"id"`        // NATS message sequence ID
	Timestamp  time.Time `json:"timestamp"` // When the event occurred
	PropertyID string    `json:"property_id,omitempty"`
	Kind       string    `json:"kind"`           // persisted, failed, validation, uploaded, slots, completed
	Step       string    `json:"step,omitempty"` // Step id, e.g. "commercials"
	Slot       string    `json:"slot,omitempty"` // Media field name
	Ref        string    `json:"ref,omitempty"`  // Uploaded media reference
	Fields     []string  `json:"fields,omitempty"`
	Diff       string    `json:"diff,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// Store appends to and replays the wizard journal.
type Store struct {
	js     jetstream.JetStream // JetStream context for operations
	stream jetstream.Stream    // The rentr_journal stream
}

// NewStore creates a new Store instance with the given JetStream context and stream.
func NewStore(js jetstream.JetStream, stream jetstream.Stream) *Store {
	return &Store{
		js:     js,
		stream: stream,
	}
}

// PublishEvent appends an event to the journal under
// rentr.journal.{property}.{kind}.
func (s *Store) PublishEvent(ctx context.Context, event Event) (*jetstream.PubAck, error) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal event: %v", err)
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := nats.SubjectForEvent(event.PropertyID, event.Kind)
	logger.Debug("Publishing journal event: property=%s kind=%s step=%s", event.PropertyID, event.Kind, event.Step)

	ack, err := s.js.Publish(ctx, subject, data)
	if err != nil {
		logger.Error("Failed to publish event to subject %s: %v", subject, err)
		return nil, fmt.Errorf("failed to publish event: %w", err)
	}
	return ack, nil
}

// StepRecord summarises the saves of one step.
type StepRecord struct {
	Step      string    `json:"step"`
	Saves     int       `json:"saves"`
	LastSaved time.Time `json:"last_saved"`
	LastDiff  string    `json:"last_diff,omitempty"`
}

// History is the journal of one property reduced to its current summary.
type History struct {
	PropertyID string                 `json:"property_id"`
	Steps      map[string]*StepRecord `json:"steps"`
	Media      map[string]string      `json:"media"` // field name -> latest reference
	Failures   int                    `json:"failures"`
	Rejections int                    `json:"rejections"` // validation failures
	Completed  bool                   `json:"completed"`
	Events     []Event                `json:"events"` // in stream order
}

// Apply folds one event into the history.
func (h *History) Apply(event Event) {
	h.Events = append(h.Events, event)
	switch event.Kind {
	case nats.KindPersisted:
		rec, ok := h.Steps[event.Step]
		if !ok {
			rec = &StepRecord{Step: event.Step}
			h.Steps[event.Step] = rec
		}
		rec.Saves++
		rec.LastSaved = event.Timestamp
		if event.Diff != "" {
			rec.LastDiff = event.Diff
		}
	case nats.KindUploaded:
		h.Media[event.Slot] = event.Ref
	case nats.KindSlots:
		// Dropped slots are unreachable from the draft.
		for _, slot := range event.Fields {
			delete(h.Media, slot)
		}
	case nats.KindFailed:
		h.Failures++
	case nats.KindValidation:
		h.Rejections++
	case nats.KindCompleted:
		h.Completed = true
	}
}

// SavedSteps returns the step ids saved at least once, ordered by first save.
func (h *History) SavedSteps() []string {
	var out []string
	seen := make(map[string]bool)
	for _, e := range h.Events {
		if e.Kind == nats.KindPersisted && !seen[e.Step] {
			seen[e.Step] = true
			out = append(out, e.Step)
		}
	}
	return out
}

// MediaSlots returns the field names holding a reference, sorted.
func (h *History) MediaSlots() []string {
	out := make([]string, 0, len(h.Media))
	for slot := range h.Media {
		out = append(out, slot)
	}
	sort.Strings(out)
	return out
}

// LoadHistory replays every journal entry of a property.
func (s *Store) LoadHistory(ctx context.Context, propertyID string) (*History, error) {
	logger.Debug("Loading journal for property: %s", propertyID)

	consumer, err := s.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		FilterSubject: nats.SubjectForProperty(propertyID),
		DeliverPolicy: jetstream.DeliverAllPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		logger.Error("Failed to create consumer for property %s: %v", propertyID, err)
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	h := &History{
		PropertyID: propertyID,
		Steps:      make(map[string]*StepRecord),
		Media:      make(map[string]string),
	}

	const batchSize = 500
	malformed := 0
	for {
		msgs, err := consumer.FetchNoWait(batchSize)
		if err != nil {
			break
		}

		count := 0
		for msg := range msgs.Messages() {
			count++
			var event Event
			if err := json.Unmarshal(msg.Data(), &event); err != nil {
				malformed++
				meta, _ := msg.Metadata()
				logger.Warn("Skipping malformed journal entry (seq=%d): %v", meta.Sequence.Stream, err)
				_ = msg.Ack()
				continue
			}
			if event.ID == "" {
				meta, _ := msg.Metadata()
				event.ID = fmt.Sprintf("%d", meta.Sequence.Stream)
			}
			h.Apply(event)
			_ = msg.Ack()
		}

		if count < batchSize {
			break
		}
	}

	if malformed > 0 {
		fmt.Fprintf(os.Stderr, "Warning: Skipped %d malformed journal entries\n", malformed)
	}
	logger.Debug("Journal loaded: %d events, %d steps saved", len(h.Events), len(h.Steps))
	return h, nil
}
