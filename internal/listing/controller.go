package listing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/aymanbagabas/go-udiff"
	"github.com/mark3labs/rentr/internal/logger"
)

// DefaultTimeout bounds every persistence call when no timeout is configured.
const DefaultTimeout = 15 * time.Second

// Persister is the backend collaborator that stores step slices.
type Persister interface {
	// CreateProperty stores the basic-details slice of a new listing and
	// returns the server-assigned property id.
	CreateProperty(ctx context.Context, actor Actor, info BasicInfo) (string, error)
	// SaveStep upserts the slice of step for an existing property.
	SaveStep(ctx context.Context, actor Actor, step Step, propertyID string, slice any) error
}

// EventKind classifies controller notifications.
type EventKind string

const (
	EventPersisted        EventKind = "persisted"
	EventPersistFailed    EventKind = "persist_failed"
	EventValidationFailed EventKind = "validation_failed"
	EventUploaded         EventKind = "uploaded"
	EventUploadFailed     EventKind = "upload_failed"
	EventSlotsChanged     EventKind = "slots_changed"
	EventCompleted        EventKind = "completed"
)

// Event is a controller notification delivered to observers.
type Event struct {
	Kind       EventKind
	Time       time.Time
	Step       Step
	PropertyID string
	Slot       string   // wire field name, media events only
	Ref        MediaRef // uploaded reference
	Fields     []string // validation failures, or dropped slots
	Diff       string   // unified diff against the previous save of the step
	Err        error
}

// Observer receives controller events. Notify is called without any
// controller lock held, possibly from an upload goroutine.
type Observer interface {
	Notify(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Notify(e Event) { f(e) }

// AdvanceResult describes a successful Advance.
type AdvanceResult struct {
	From       Step
	To         Step
	PropertyID string
	Persisted  bool   // false when the save was skipped
	Completed  bool   // true when the review step was confirmed
	Diff       string // set when a previously saved slice was re-sent with changes
}

// Option configures a Controller.
type Option func(*Controller)

// WithTimeout bounds each step persistence call.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithObserver registers an observer. May be given more than once.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// WithUploader enables the media pipeline.
func WithUploader(u Uploader) Option {
	return func(c *Controller) { c.media.uploader = u }
}

// WithMaxUploadBytes sets the per-slot file size ceiling.
func WithMaxUploadBytes(n int64) Option {
	return func(c *Controller) {
		if n > 0 {
			c.media.maxBytes = n
		}
	}
}

// WithUploadTimeout bounds each upload call.
func WithUploadTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.media.timeout = d
		}
	}
}

// snapshot is the payload last sent for a step.
type snapshot struct {
	propertyID string
	payload    []byte
}

// Controller drives the listing wizard. It owns the draft, the step pointer
// and the property id, and is the only component that performs step saves.
// It is safe for concurrent use.
type Controller struct {
	mu sync.Mutex

	actor     Actor
	persister Persister
	timeout   time.Duration
	observers []Observer
	media     *Pipeline

	steps      []Step
	index      int
	draft      Draft
	propertyID string
	snapshots  map[Step]snapshot
	advancing  bool
	completed  bool
}

// New starts a wizard session for actor. A missing actor identity is a
// PreconditionError: no persistence call is ever made without one.
func New(actor Actor, persister Persister, opts ...Option) (*Controller, error) {
	if !actor.Valid() {
		return nil, &PreconditionError{Reason: "no signed-in user"}
	}
	if persister == nil {
		return nil, errors.New("listing: persister is required")
	}
	c := &Controller{
		actor:     actor,
		persister: persister,
		timeout:   DefaultTimeout,
		steps:     Steps(),
		draft:     NewDraft(),
		snapshots: make(map[Step]snapshot),
	}
	c.media = newPipeline(c)
	for _, opt := range opts {
		opt(c)
	}
	logger.Debug("Listing wizard started for user %s", actor.Username)
	return c, nil
}

// Actor returns the identity the session was started with.
func (c *Controller) Actor() Actor {
	return c.actor
}

// Media returns the media pipeline bound to this wizard.
func (c *Controller) Media() *Pipeline {
	return c.media
}

// Current returns the active step.
func (c *Controller) Current() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.steps[c.index]
}

// Index returns the active step index.
func (c *Controller) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// PropertyID returns the server-assigned id, or "" before the first save.
func (c *Controller) PropertyID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.propertyID
}

// Draft returns a copy of the draft.
func (c *Controller) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.Clone()
}

// Completed reports whether the review step was confirmed.
func (c *Controller) Completed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completed
}

// Advancing reports whether an Advance is waiting on the backend.
func (c *Controller) Advancing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.advancing
}

// Saved reports whether step has been persisted at least once.
func (c *Controller) Saved(step Step) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.snapshots[step]
	return ok
}

// SetBasicInfo replaces the basic-details slice.
func (c *Controller) SetBasicInfo(v BasicInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.BasicInfo = v
}

// SetLocation replaces the location slice.
func (c *Controller) SetLocation(v Location) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v.Latitude = clonePtr(v.Latitude)
	v.Longitude = clonePtr(v.Longitude)
	c.draft.Location = v
}

// SetFeatures replaces the features slice and regenerates the media slot set.
// It returns the slots that are no longer addressable.
func (c *Controller) SetFeatures(v Features) []SlotKey {
	c.mu.Lock()
	v.ExtraRooms = NormalizeSet(v.ExtraRooms)
	v.FloorNumber = clonePtr(v.FloorNumber)
	c.draft.Features = v
	dropped := c.draft.Media.regenerate(DeriveSlots(v))
	id := c.propertyID
	c.mu.Unlock()

	if len(dropped) > 0 {
		names := make([]string, len(dropped))
		for i, k := range dropped {
			names[i] = k.FieldName()
		}
		logger.Debug("Media slots dropped: %v", names)
		c.notify(Event{Kind: EventSlotsChanged, Step: StepFeatures, PropertyID: id, Fields: names})
	}
	return dropped
}

// SetSocietyAmenities replaces the society-amenities slice. The power backup
// type is cleared when the Power Backup amenity is not selected.
func (c *Controller) SetSocietyAmenities(v SocietyAmenities) {
	v.Amenities = NormalizeSet(v.Amenities)
	if !slices.Contains(v.Amenities, AmenityPowerBackup) {
		v.PowerBackup = ""
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.SocietyAmenities = v
}

// SetFlatAmenities replaces the flat-amenities slice.
func (c *Controller) SetFlatAmenities(v FlatAmenities) {
	v.Amenities = NormalizeSet(v.Amenities)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.FlatAmenities = v
}

// SetRestrictions replaces the restrictions slice.
func (c *Controller) SetRestrictions(v Restrictions) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Restrictions = v
}

// SetCommercials replaces the commercials slice.
func (c *Controller) SetCommercials(v Commercials) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Commercials = v
}

// SetAvailability replaces the availability slice.
func (c *Controller) SetAvailability(v Availability) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Availability = v
}

// SetSliceJSON decodes raw into the slice owned by step and applies it
// through that slice's setter. Unknown fields are rejected.
func (c *Controller) SetSliceJSON(step Step, raw []byte) error {
	switch step {
	case StepBasicDetails:
		return setJSON(raw, c.SetBasicInfo)
	case StepLocation:
		return setJSON(raw, c.SetLocation)
	case StepFeatures:
		return setJSON(raw, func(v Features) { c.SetFeatures(v) })
	case StepSocietyAmenities:
		return setJSON(raw, c.SetSocietyAmenities)
	case StepFlatAmenities:
		return setJSON(raw, c.SetFlatAmenities)
	case StepRestrictions:
		return setJSON(raw, c.SetRestrictions)
	case StepCommercials:
		return setJSON(raw, c.SetCommercials)
	case StepAvailability:
		return setJSON(raw, c.SetAvailability)
	}
	return fmt.Errorf("step %s has no editable slice", step)
}

func setJSON[T any](raw []byte, set func(T)) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var v T
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("invalid slice: %w", err)
	}
	set(v)
	return nil
}

// Advance validates the active slice, persists it and moves to the next
// step. At the review step it marks the wizard completed instead. On any
// failure the step pointer and the draft are left unchanged.
func (c *Controller) Advance(ctx context.Context) (AdvanceResult, error) {
	c.mu.Lock()
	if c.completed {
		c.mu.Unlock()
		return AdvanceResult{}, ErrCompleted
	}
	if c.advancing {
		c.mu.Unlock()
		return AdvanceResult{}, ErrAdvanceInProgress
	}
	step := c.steps[c.index]
	propertyID := c.propertyID

	if fields := Validate(step, c.draft); len(fields) > 0 {
		c.mu.Unlock()
		logger.Debug("Validation failed on %s: %v", step, fields)
		err := &ValidationError{Step: step, Fields: fields}
		c.notify(Event{Kind: EventValidationFailed, Step: step, PropertyID: propertyID, Fields: fields, Err: err})
		return AdvanceResult{From: step, To: step}, err
	}

	if step == StepMedia || step == StepReview {
		if n := len(c.media.inflight); n > 0 {
			c.mu.Unlock()
			return AdvanceResult{From: step, To: step}, &PendingUploadsError{Count: n}
		}
	}

	if step != StepBasicDetails && propertyID == "" {
		c.mu.Unlock()
		logger.Error("Reached %s without a property id", step)
		return AdvanceResult{From: step, To: step}, &PreconditionError{Reason: "the listing was never created; start again from " + StepBasicDetails.Title()}
	}

	slice := c.draft.Slice(step)
	var payload []byte
	persist := false
	prev, hadPrev := c.snapshots[step]
	if step.Persisted() {
		var err error
		payload, err = json.MarshalIndent(slice, "", "  ")
		if err != nil {
			c.mu.Unlock()
			return AdvanceResult{From: step, To: step}, fmt.Errorf("encode %s: %w", step, err)
		}
		persist = !hadPrev || prev.propertyID != propertyID || !bytes.Equal(prev.payload, payload)
	}
	c.advancing = true
	c.mu.Unlock()

	var newID string
	if persist {
		var err error
		newID, err = c.persist(ctx, step, propertyID, slice)
		if err != nil {
			c.mu.Lock()
			c.advancing = false
			c.mu.Unlock()
			c.notify(Event{Kind: EventPersistFailed, Step: step, PropertyID: propertyID, Err: err})
			return AdvanceResult{From: step, To: step}, err
		}
	} else if step.Persisted() {
		logger.Debug("Skipping save of unchanged %s", step)
	}

	c.mu.Lock()
	c.advancing = false
	if newID != "" {
		c.propertyID = newID
	}
	result := AdvanceResult{From: step, PropertyID: c.propertyID, Persisted: persist}
	if persist {
		if hadPrev {
			result.Diff = udiff.Unified(step.ID()+" (saved)", step.ID(), string(prev.payload), string(payload))
		}
		c.snapshots[step] = snapshot{propertyID: c.propertyID, payload: payload}
	}
	if step == StepReview {
		c.completed = true
		result.Completed = true
	} else {
		c.index++
	}
	result.To = c.steps[c.index]
	c.mu.Unlock()

	if persist {
		c.notify(Event{Kind: EventPersisted, Step: step, PropertyID: result.PropertyID, Diff: result.Diff})
	}
	if result.Completed {
		logger.Info("Listing %s completed", result.PropertyID)
		c.notify(Event{Kind: EventCompleted, Step: step, PropertyID: result.PropertyID})
	}
	return result, nil
}

// persist performs the step's network call under the configured timeout.
// Every failure, including a timeout, is returned as a PersistenceError.
func (c *Controller) persist(ctx context.Context, step Step, propertyID string, slice any) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var id string
	var err error
	if step == StepBasicDetails && propertyID == "" {
		logger.Debug("Creating property")
		id, err = c.persister.CreateProperty(ctx, c.actor, slice.(BasicInfo))
		if err == nil && id == "" {
			err = errors.New("backend returned no property id")
		}
	} else {
		logger.Debug("Saving %s for property %s", step, propertyID)
		err = c.persister.SaveStep(ctx, c.actor, step, propertyID, slice)
	}
	if err != nil {
		logger.Error("Saving %s failed: %v", step, err)
		return "", &PersistenceError{Op: "save", Step: step, Retryable: isRetryableCause(err), Err: err}
	}
	return id, nil
}

// Retreat moves back one step without validation or network calls. It is a
// no-op on the first step.
func (c *Controller) Retreat() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.navigableLocked(); err != nil {
		return err
	}
	if c.index > 0 {
		c.index--
	}
	return nil
}

// JumpTo moves back to step. Steps after the current one are rejected with
// ErrJumpAhead.
func (c *Controller) JumpTo(step Step) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.navigableLocked(); err != nil {
		return err
	}
	target := -1
	for i, s := range c.steps {
		if s == step {
			target = i
			break
		}
	}
	if target < 0 {
		return fmt.Errorf("unknown step %s", step)
	}
	if target > c.index {
		return ErrJumpAhead
	}
	c.index = target
	return nil
}

func (c *Controller) navigableLocked() error {
	if c.completed {
		return ErrCompleted
	}
	if c.advancing {
		return ErrAdvanceInProgress
	}
	return nil
}

func (c *Controller) notify(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	for _, o := range c.observers {
		o.Notify(e)
	}
}
