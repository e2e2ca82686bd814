package listing

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/rentr/internal/logger"
)

// DefaultMaxUploadBytes is the per-slot file size ceiling.
const DefaultMaxUploadBytes int64 = 2 << 20

// DefaultUploadTimeout bounds each upload call when no timeout is configured.
const DefaultUploadTimeout = 60 * time.Second

// UploadRequest is the body of a photo upload.
type UploadRequest struct {
	PropertyID string `json:"propertyId"`
	FileName   string `json:"fileName"`
	Base64Data string `json:"base64Data"`
	FieldName  string `json:"fieldName"`
}

// Uploader is the backend collaborator that stores encoded media and returns
// a reference to it.
type Uploader interface {
	UploadPhoto(ctx context.Context, actor Actor, req UploadRequest) (MediaRef, error)
}

// File is a local file selected for upload.
type File struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// OpenFile describes the file at path without reading it.
func OpenFile(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, &EncodeError{File: path, Err: err}
	}
	if info.IsDir() {
		return File{}, &EncodeError{File: path, Err: errors.New("is a directory")}
	}
	return File{
		Name: filepath.Base(path),
		Size: info.Size(),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// FileFromBytes wraps in-memory content as a File.
func FileFromBytes(name string, data []byte) File {
	return File{
		Name: name,
		Size: int64(len(data)),
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

// EncodeDataURI reads f and returns it as a base64 data URI. The MIME type
// comes from the file extension, falling back to content sniffing. Reading
// more than limit bytes fails with a SizeLimitError.
func EncodeDataURI(f File, limit int64) (string, error) {
	if f.Open == nil {
		return "", &EncodeError{File: f.Name, Err: errors.New("file has no content")}
	}
	rc, err := f.Open()
	if err != nil {
		return "", &EncodeError{File: f.Name, Err: err}
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return "", &EncodeError{File: f.Name, Err: err}
	}
	if int64(len(data)) > limit {
		return "", &SizeLimitError{Slot: f.Name, Size: int64(len(data)), Limit: limit}
	}
	if len(data) == 0 {
		return "", &EncodeError{File: f.Name, Err: errors.New("file is empty")}
	}
	return "data:" + mediaType(f.Name, data) + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func mediaType(name string, data []byte) string {
	t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if t == "" {
		t = http.DetectContentType(data)
	}
	t, _, _ = strings.Cut(t, ";")
	return strings.TrimSpace(t)
}

// upload tracks the in-flight upload of one slot.
type upload struct {
	gen    uint64
	cancel context.CancelFunc
}

// Pipeline uploads media for the wizard and writes the returned references
// into the draft. Uploads to distinct slots run independently. A second
// upload to a slot supersedes the first: the older one is cancelled and its
// result is discarded.
type Pipeline struct {
	c        *Controller
	uploader Uploader
	maxBytes int64
	timeout  time.Duration

	// Guarded by c.mu.
	gen      uint64
	inflight map[SlotKey]*upload
}

func newPipeline(c *Controller) *Pipeline {
	return &Pipeline{
		c:        c,
		maxBytes: DefaultMaxUploadBytes,
		timeout:  DefaultUploadTimeout,
		inflight: make(map[SlotKey]*upload),
	}
}

// MaxBytes returns the per-slot size ceiling.
func (p *Pipeline) MaxBytes() int64 {
	return p.maxBytes
}

// Pending returns the number of uploads in flight.
func (p *Pipeline) Pending() int {
	p.c.mu.Lock()
	defer p.c.mu.Unlock()
	return len(p.inflight)
}

// InFlight reports whether key has an upload in flight.
func (p *Pipeline) InFlight(key SlotKey) bool {
	p.c.mu.Lock()
	defer p.c.mu.Unlock()
	_, ok := p.inflight[key]
	return ok
}

// UploadSlot encodes f and uploads it to key. On success the returned
// reference replaces whatever the slot held; on any failure the slot keeps
// its previous reference.
func (p *Pipeline) UploadSlot(ctx context.Context, key SlotKey, f File) (MediaRef, error) {
	ref, err := p.uploadSlot(ctx, key, f)
	c := p.c
	if err != nil {
		if !errors.Is(err, ErrSuperseded) {
			c.notify(Event{Kind: EventUploadFailed, Step: StepMedia, PropertyID: c.PropertyID(), Slot: key.FieldName(), Err: err})
		}
		return "", err
	}
	c.notify(Event{Kind: EventUploaded, Step: StepMedia, PropertyID: c.PropertyID(), Slot: key.FieldName(), Ref: ref})
	return ref, nil
}

func (p *Pipeline) uploadSlot(ctx context.Context, key SlotKey, f File) (MediaRef, error) {
	field := key.FieldName()
	if f.Size > p.maxBytes {
		logger.Warn("Rejecting %s for %s: %d bytes", f.Name, field, f.Size)
		return "", &SizeLimitError{Slot: field, Size: f.Size, Limit: p.maxBytes}
	}
	if p.uploader == nil {
		return "", &PreconditionError{Reason: "photo uploads are not configured"}
	}

	c := p.c
	c.mu.Lock()
	if !c.draft.Media.Has(key) {
		c.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrUnknownSlot, field)
	}
	propertyID := c.propertyID
	if propertyID == "" {
		c.mu.Unlock()
		return "", &PreconditionError{Reason: "photos can only be added after the listing is created"}
	}
	p.gen++
	gen := p.gen
	if prev, ok := p.inflight[key]; ok {
		logger.Debug("Superseding upload %d for %s", prev.gen, field)
		prev.cancel()
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	p.inflight[key] = &upload{gen: gen, cancel: cancel}
	c.mu.Unlock()

	ref, err := p.send(ctx, propertyID, field, f)

	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := p.inflight[key]; !ok || cur.gen != gen {
		return "", ErrSuperseded
	}
	delete(p.inflight, key)
	if err != nil {
		return "", err
	}
	if err := c.draft.Media.set(key, ref); err != nil {
		// The slot was dropped by a features change while uploading.
		return "", err
	}
	logger.Debug("Uploaded %s for property %s", field, propertyID)
	return ref, nil
}

// send encodes f and calls the uploader. It runs without the controller lock.
func (p *Pipeline) send(ctx context.Context, propertyID, field string, f File) (MediaRef, error) {
	data, err := EncodeDataURI(f, p.maxBytes)
	if err != nil {
		var sle *SizeLimitError
		if errors.As(err, &sle) {
			sle.Slot = field
		}
		return "", err
	}
	ref, err := p.uploader.UploadPhoto(ctx, p.c.actor, UploadRequest{
		PropertyID: propertyID,
		FileName:   f.Name,
		Base64Data: data,
		FieldName:  field,
	})
	if err == nil && ref == "" {
		err = errors.New("backend returned no file url")
	}
	if err != nil {
		logger.Error("Upload of %s failed: %v", field, err)
		return "", &PersistenceError{Op: "upload", Step: StepMedia, Slot: field, Retryable: isRetryableCause(err), Err: err}
	}
	return ref, nil
}
