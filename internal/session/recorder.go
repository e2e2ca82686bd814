package session

import (
	"context"
	"time"

	"github.com/mark3labs/rentr/internal/listing"
	"github.com/mark3labs/rentr/internal/logger"
	"github.com/mark3labs/rentr/internal/nats"
)

// publishTimeout bounds one journal append made from a controller callback.
const publishTimeout = 2 * time.Second

var eventKinds = map[listing.EventKind]string{
	listing.EventPersisted:        nats.KindPersisted,
	listing.EventPersistFailed:    nats.KindFailed,
	listing.EventUploadFailed:     nats.KindFailed,
	listing.EventValidationFailed: nats.KindValidation,
	listing.EventUploaded:         nats.KindUploaded,
	listing.EventSlotsChanged:     nats.KindSlots,
	listing.EventCompleted:        nats.KindCompleted,
}

// Recorder journals controller events. It implements listing.Observer.
// Journal failures are logged and never interrupt the wizard.
type Recorder struct {
	store *Store
}

// NewRecorder returns an observer that appends to store.
func NewRecorder(store *Store) *Recorder {
	return &Recorder{store: store}
}

// Notify implements listing.Observer.
func (r *Recorder) Notify(e listing.Event) {
	kind, ok := eventKinds[e.Kind]
	if !ok {
		return
	}
	event := Event{
		Timestamp:  e.Time,
		PropertyID: e.PropertyID,
		Kind:       kind,
		Step:       e.Step.ID(),
		Slot:       e.Slot,
		Ref:        string(e.Ref),
		Fields:     e.Fields,
		Diff:       e.Diff,
	}
	if e.Err != nil {
		event.Error = e.Err.Error()
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if _, err := r.store.PublishEvent(ctx, event); err != nil {
		logger.Warn("Journal write dropped: %v", err)
	}
}
