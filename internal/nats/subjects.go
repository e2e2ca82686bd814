package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/gosimple/slug"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	journalStream = "rentr_journal"
	sessionBucket = "rentr_session"

	// unsavedToken stands in for the property id before the first save.
	unsavedToken = "unsaved"

	// JournalRetention bounds how long wizard activity is kept.
	JournalRetention = 90 * 24 * time.Hour
)

// Journal event kinds, used as the last subject token.
const (
	KindPersisted  = "persisted"
	KindFailed     = "failed"
	KindValidation = "validation"
	KindUploaded   = "uploaded"
	KindSlots      = "slots"
	KindCompleted  = "completed"
)

// propertyToken turns a property id into a single subject token.
func propertyToken(propertyID string) string {
	if t := slug.Make(propertyID); t != "" {
		return t
	}
	return unsavedToken
}

// SubjectForProperty returns the wildcard subject for every journal entry of
// a property. Example: "rentr.journal.p1.>"
func SubjectForProperty(propertyID string) string {
	return fmt.Sprintf("rentr.journal.%s.>", propertyToken(propertyID))
}

// SubjectForEvent returns the subject of one journal entry kind.
// Example: "rentr.journal.p1.persisted"
func SubjectForEvent(propertyID, kind string) string {
	return fmt.Sprintf("rentr.journal.%s.%s", propertyToken(propertyID), kind)
}

// SetupJournal creates or updates the journal stream.
func SetupJournal(ctx context.Context, js jetstream.JetStream) (jetstream.Stream, error) {
	return js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     journalStream,
		Subjects: []string{"rentr.journal.>"},
		Storage:  jetstream.FileStorage,
		MaxAge:   JournalRetention,
	})
}

// SetupSessionBucket creates or updates the key-value bucket holding the
// signed-in actor.
func SetupSessionBucket(ctx context.Context, js jetstream.JetStream) (jetstream.KeyValue, error) {
	return js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      sessionBucket,
		Description: "rentr signed-in identity",
		Storage:     jetstream.FileStorage,
		History:     1,
	})
}
