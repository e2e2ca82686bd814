package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/rentr/internal/listing"
	"github.com/mark3labs/rentr/internal/logger"
	"github.com/nats-io/nats.go/jetstream"
)

const actorKey = "actor"

// ErrNoActor means nobody is signed in.
var ErrNoActor = errors.New("not signed in")

// ActorStore keeps the signed-in identity in a key-value bucket.
type ActorStore struct {
	kv jetstream.KeyValue
}

// NewActorStore wraps the session bucket.
func NewActorStore(kv jetstream.KeyValue) *ActorStore {
	return &ActorStore{kv: kv}
}

// Save stores actor, replacing any previous identity.
func (s *ActorStore) Save(ctx context.Context, actor listing.Actor) error {
	if !actor.Valid() {
		return errors.New("actor needs a user id, username and role")
	}
	data, err := json.Marshal(actor)
	if err != nil {
		return fmt.Errorf("failed to marshal actor: %w", err)
	}
	if _, err := s.kv.Put(ctx, actorKey, data); err != nil {
		return fmt.Errorf("failed to store actor: %w", err)
	}
	logger.Info("Signed in as %s (%s)", actor.Username, actor.Role)
	return nil
}

// Load returns the signed-in identity, or ErrNoActor.
func (s *ActorStore) Load(ctx context.Context) (listing.Actor, error) {
	entry, err := s.kv.Get(ctx, actorKey)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return listing.Actor{}, ErrNoActor
	}
	if err != nil {
		return listing.Actor{}, fmt.Errorf("failed to read actor: %w", err)
	}
	var actor listing.Actor
	if err := json.Unmarshal(entry.Value(), &actor); err != nil {
		return listing.Actor{}, fmt.Errorf("stored actor is corrupt: %w", err)
	}
	if !actor.Valid() {
		return listing.Actor{}, ErrNoActor
	}
	return actor, nil
}

// Clear signs out. Clearing when nobody is signed in is not an error.
func (s *ActorStore) Clear(ctx context.Context) error {
	err := s.kv.Delete(ctx, actorKey)
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("failed to clear actor: %w", err)
	}
	return nil
}
