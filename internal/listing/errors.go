package listing

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAdvanceInProgress is returned when Advance is called while a
	// previous Advance is still waiting on the backend.
	ErrAdvanceInProgress = errors.New("a save is already in progress for this step")

	// ErrJumpAhead is returned by JumpTo for steps beyond the current one.
	ErrJumpAhead = errors.New("cannot jump ahead of the current step")

	// ErrUnknownSlot is returned for media slots that are not addressable
	// under the current features.
	ErrUnknownSlot = errors.New("unknown media slot")

	// ErrCompleted is returned once the wizard has reached completion.
	ErrCompleted = errors.New("listing wizard already completed")

	// ErrSuperseded is returned by an upload whose result was discarded
	// because a newer upload to the same slot was started.
	ErrSuperseded = errors.New("upload superseded by a newer upload to the same slot")
)

// ValidationError lists every missing or invalid field of a step.
type ValidationError struct {
	Step   Step
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: please fill in %s", e.Step.Title(), strings.Join(e.Fields, ", "))
}

// PersistenceError is a network or server failure on a step save or media
// upload. The draft is left untouched so the same action can be retried.
type PersistenceError struct {
	Op        string // "save" or "upload"
	Step      Step
	Slot      string // wire field name, uploads only
	Retryable bool
	Err       error
}

func (e *PersistenceError) Error() string {
	target := e.Step.Title()
	if e.Slot != "" {
		target = e.Slot
	}
	return fmt.Sprintf("%s %s failed: %v", e.Op, target, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// PreconditionError is fatal to the wizard session: the actor identity is
// missing, or a later step was reached without a property id.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return "cannot continue listing: " + e.Reason
}

// SizeLimitError rejects a file larger than the per-slot ceiling.
type SizeLimitError struct {
	Slot  string
	Size  int64
	Limit int64
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("%s: file is %s, limit is %s", e.Slot, humanBytes(e.Size), humanBytes(e.Limit))
}

// EncodeError is a failure turning a local file into a data URI.
type EncodeError struct {
	File string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.File, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// PendingUploadsError blocks advancing while uploads are still in flight.
type PendingUploadsError struct {
	Count int
}

func (e *PendingUploadsError) Error() string {
	if e.Count == 1 {
		return "1 photo upload is still in progress"
	}
	return fmt.Sprintf("%d photo uploads are still in progress", e.Count)
}

// IsRetryable reports whether err is a failure the user can retry as-is.
func IsRetryable(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe) && pe.Retryable
}

// retryable lets collaborators mark an error as not worth retrying.
type retryable interface {
	Retryable() bool
}

func isRetryableCause(err error) bool {
	var r retryable
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return true
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
