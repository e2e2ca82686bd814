package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mark3labs/rentr/internal/listing"
	"github.com/mark3labs/rentr/internal/nats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openBus(t *testing.T) *nats.Bus {
	t.Helper()
	bus, err := nats.Open(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = bus.Close() })
	return bus
}

func TestJournal(t *testing.T) {
	ctx := context.Background()
	bus := openBus(t)
	store := NewStore(bus.JS, bus.Journal)

	publish := func(t *testing.T, e Event) {
		t.Helper()
		if _, err := store.PublishEvent(ctx, e); err != nil {
			t.Fatalf("PublishEvent failed: %v", err)
		}
	}

	publish(t, Event{PropertyID: "p1", Kind: nats.KindPersisted, Step: "basic-details"})
	publish(t, Event{PropertyID: "p1", Kind: nats.KindPersisted, Step: "location"})
	publish(t, Event{PropertyID: "p1", Kind: nats.KindFailed, Step: "features", Error: "503"})
	publish(t, Event{PropertyID: "p1", Kind: nats.KindPersisted, Step: "features"})
	publish(t, Event{PropertyID: "p1", Kind: nats.KindPersisted, Step: "location", Diff: "-a\n+b\n"})
	publish(t, Event{PropertyID: "p1", Kind: nats.KindUploaded, Slot: "bedroom1", Ref: "https://cdn/b1.jpg"})
	publish(t, Event{PropertyID: "p1", Kind: nats.KindUploaded, Slot: "bedroom2", Ref: "https://cdn/b2.jpg"})
	publish(t, Event{PropertyID: "p1", Kind: nats.KindSlots, Step: "features", Fields: []string{"bedroom2"}})
	publish(t, Event{PropertyID: "p1", Kind: nats.KindValidation, Step: "commercials", Fields: []string{"Monthly Rent"}})
	publish(t, Event{PropertyID: "other", Kind: nats.KindPersisted, Step: "basic-details"})

	t.Run("replays one property only", func(t *testing.T) {
		h, err := store.LoadHistory(ctx, "p1")
		require.NoError(t, err)
		assert.Len(t, h.Events, 9)
		for _, e := range h.Events {
			assert.Equal(t, "p1", e.PropertyID)
			assert.NotEmpty(t, e.ID)
			assert.False(t, e.Timestamp.IsZero())
		}
	})

	t.Run("reduces saves per step", func(t *testing.T) {
		h, err := store.LoadHistory(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, []string{"basic-details", "location", "features"}, h.SavedSteps())
		require.Contains(t, h.Steps, "location")
		assert.Equal(t, 2, h.Steps["location"].Saves)
		assert.Equal(t, "-a\n+b\n", h.Steps["location"].LastDiff)
		assert.Equal(t, 1, h.Failures)
		assert.Equal(t, 1, h.Rejections)
		assert.False(t, h.Completed)
	})

	t.Run("dropped slots leave the media map", func(t *testing.T) {
		h, err := store.LoadHistory(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, []string{"bedroom1"}, h.MediaSlots())
		assert.Equal(t, "https://cdn/b1.jpg", h.Media["bedroom1"])
	})

	t.Run("unknown property is empty", func(t *testing.T) {
		h, err := store.LoadHistory(ctx, "nope")
		require.NoError(t, err)
		assert.Empty(t, h.Events)
		assert.Empty(t, h.SavedSteps())
	})

	t.Run("completion", func(t *testing.T) {
		publish(t, Event{PropertyID: "p1", Kind: nats.KindCompleted, Step: "review"})
		h, err := store.LoadHistory(ctx, "p1")
		require.NoError(t, err)
		assert.True(t, h.Completed)
	})
}

func TestHistory_Apply(t *testing.T) {
	h := &History{Steps: map[string]*StepRecord{}, Media: map[string]string{}}
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	h.Apply(Event{Kind: nats.KindPersisted, Step: "commercials", Timestamp: at, Diff: "x"})
	h.Apply(Event{Kind: nats.KindPersisted, Step: "commercials", Timestamp: at.Add(time.Minute)})

	rec := h.Steps["commercials"]
	require.NotNil(t, rec)
	assert.Equal(t, 2, rec.Saves)
	assert.Equal(t, at.Add(time.Minute), rec.LastSaved)
	assert.Equal(t, "x", rec.LastDiff, "a save without changes keeps the last diff")
}

func TestActorStore(t *testing.T) {
	ctx := context.Background()
	bus := openBus(t)
	actors := NewActorStore(bus.Session)

	t.Run("load before login", func(t *testing.T) {
		_, err := actors.Load(ctx)
		assert.True(t, errors.Is(err, ErrNoActor))
	})

	t.Run("save rejects incomplete identity", func(t *testing.T) {
		err := actors.Save(ctx, listing.Actor{Username: "asha"})
		assert.Error(t, err)
	})

	t.Run("save and load", func(t *testing.T) {
		want := listing.Actor{UserID: "u1", Username: "asha", FullName: "Asha Rao", Role: "owner", Token: "tok"}
		require.NoError(t, actors.Save(ctx, want))
		got, err := actors.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("save replaces", func(t *testing.T) {
		require.NoError(t, actors.Save(ctx, listing.Actor{UserID: "u2", Username: "ravi", Role: "employee"}))
		got, err := actors.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "ravi", got.Username)
	})

	t.Run("clear", func(t *testing.T) {
		require.NoError(t, actors.Clear(ctx))
		_, err := actors.Load(ctx)
		assert.True(t, errors.Is(err, ErrNoActor))
		assert.NoError(t, actors.Clear(ctx), "clearing twice is fine")
	})
}

type stubPersister struct{}

func (stubPersister) CreateProperty(ctx context.Context, actor listing.Actor, info listing.BasicInfo) (string, error) {
	return "p9", nil
}

func (stubPersister) SaveStep(ctx context.Context, actor listing.Actor, step listing.Step, propertyID string, slice any) error {
	return nil
}

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	bus := openBus(t)
	store := NewStore(bus.JS, bus.Journal)

	actor := listing.Actor{UserID: "u1", Username: "asha", Role: "owner"}
	c, err := listing.New(actor, stubPersister{}, listing.WithObserver(NewRecorder(store)))
	require.NoError(t, err)

	_, err = c.Advance(ctx)
	var verr *listing.ValidationError
	require.ErrorAs(t, err, &verr)

	c.SetBasicInfo(listing.BasicInfo{
		PropertyType:     listing.PropertyTypes[0],
		Configuration:    listing.Configurations[0],
		FurnishingStatus: listing.FurnishingStatuses[0],
		Facing:           listing.Facings[0],
	})
	res, err := c.Advance(ctx)
	require.NoError(t, err)
	require.Equal(t, "p9", res.PropertyID)

	h, err := store.LoadHistory(ctx, "p9")
	require.NoError(t, err)
	assert.Equal(t, []string{"basic-details"}, h.SavedSteps())

	unsaved, err := store.LoadHistory(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, unsaved.Rejections)
}
