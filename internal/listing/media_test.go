package listing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUploader returns a ref per call. When gate is set, each call waits for
// a value on it before returning.
type fakeUploader struct {
	mu    sync.Mutex
	reqs  []UploadRequest
	err   error
	gate  chan MediaRef
	start chan struct{}
}

func (f *fakeUploader) UploadPhoto(ctx context.Context, actor Actor, req UploadRequest) (MediaRef, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	err := f.err
	f.mu.Unlock()
	if f.start != nil {
		f.start <- struct{}{}
	}
	if f.gate != nil {
		select {
		case ref := <-f.gate:
			return ref, err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	return MediaRef("https://cdn.example.com/" + req.FieldName + ".jpg"), nil
}

func (f *fakeUploader) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reqs)
}

var jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

// mediaController returns a controller parked on the media step.
func mediaController(t *testing.T, up Uploader, opts ...Option) *Controller {
	t.Helper()
	opts = append([]Option{WithUploader(up)}, opts...)
	c := newTestController(t, &fakeBackend{id: "p1"}, opts...)
	advanceTo(t, c, StepMedia)
	return c
}

func TestUploadSlot(t *testing.T) {
	up := &fakeUploader{}
	var uploaded []Event
	c := mediaController(t, up, WithObserver(ObserverFunc(func(e Event) {
		if e.Kind == EventUploaded {
			uploaded = append(uploaded, e)
		}
	})))
	key := SlotKey{Category: CategoryBedroom, Index: 1}

	ref, err := c.Media().UploadSlot(context.Background(), key, FileFromBytes("bed.jpg", jpegHeader))
	require.NoError(t, err)
	assert.Equal(t, MediaRef("https://cdn.example.com/bedroom1.jpg"), ref)
	assert.Equal(t, ref, c.Draft().Media.Ref(key))

	require.Len(t, up.reqs, 1)
	req := up.reqs[0]
	assert.Equal(t, "p1", req.PropertyID)
	assert.Equal(t, "bed.jpg", req.FileName)
	assert.Equal(t, "bedroom1", req.FieldName)
	assert.True(t, strings.HasPrefix(req.Base64Data, "data:image/jpeg;base64,"), req.Base64Data)
	assert.Len(t, uploaded, 1)
	assert.Equal(t, 0, c.Media().Pending())
}

func TestUploadSlotReplacesPreviousRef(t *testing.T) {
	up := &fakeUploader{}
	c := mediaController(t, up)
	key := SlotKey{Category: CategoryKitchen}

	_, err := c.Media().UploadSlot(context.Background(), key, FileFromBytes("a.png", []byte("\x89PNG\r\n\x1a\n")))
	require.NoError(t, err)
	up.gate = make(chan MediaRef, 1)
	up.gate <- "https://cdn.example.com/kitchen-v2.jpg"
	_, err = c.Media().UploadSlot(context.Background(), key, FileFromBytes("b.png", []byte("\x89PNG\r\n\x1a\n")))
	require.NoError(t, err)
	assert.Equal(t, MediaRef("https://cdn.example.com/kitchen-v2.jpg"), c.Draft().Media.Ref(key))
}

func TestUploadSlotSizeLimit(t *testing.T) {
	up := &fakeUploader{}
	c := mediaController(t, up, WithMaxUploadBytes(8))
	key := SlotKey{Category: CategoryExterior}

	_, err := c.Media().UploadSlot(context.Background(), key, FileFromBytes("big.jpg", make([]byte, 9)))
	var sle *SizeLimitError
	require.ErrorAs(t, err, &sle)
	assert.Equal(t, "exterior", sle.Slot)
	assert.EqualValues(t, 8, sle.Limit)
	assert.Equal(t, 0, up.count())
	assert.Empty(t, c.Draft().Media.Ref(key))
}

func TestUploadSlotFailureKeepsRef(t *testing.T) {
	up := &fakeUploader{}
	c := mediaController(t, up)
	key := SlotKey{Category: CategoryDining}
	_, err := c.Media().UploadSlot(context.Background(), key, FileFromBytes("d.jpg", jpegHeader))
	require.NoError(t, err)
	before := c.Draft().Media.Ref(key)

	up.err = errors.New("503 service unavailable")
	_, err = c.Media().UploadSlot(context.Background(), key, FileFromBytes("d2.jpg", jpegHeader))
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "upload", pe.Op)
	assert.Equal(t, "dining", pe.Slot)
	assert.True(t, pe.Retryable)
	assert.Equal(t, before, c.Draft().Media.Ref(key))
}

func TestUploadSlotUnknownSlot(t *testing.T) {
	up := &fakeUploader{}
	c := mediaController(t, up)
	_, err := c.Media().UploadSlot(context.Background(), SlotKey{Category: CategoryBedroom, Index: 9}, FileFromBytes("x.jpg", jpegHeader))
	assert.ErrorIs(t, err, ErrUnknownSlot)
	assert.Equal(t, 0, up.count())
}

func TestUploadSlotRequiresPropertyID(t *testing.T) {
	up := &fakeUploader{}
	c := newTestController(t, &fakeBackend{id: "p1"}, WithUploader(up))
	_, err := c.Media().UploadSlot(context.Background(), SlotKey{Category: CategoryExterior}, FileFromBytes("x.jpg", jpegHeader))
	var pe *PreconditionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 0, up.count())
}

func TestUploadSlotEmptyFile(t *testing.T) {
	up := &fakeUploader{}
	c := mediaController(t, up)
	_, err := c.Media().UploadSlot(context.Background(), SlotKey{Category: CategoryExterior}, FileFromBytes("x.jpg", nil))
	var ee *EncodeError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 0, up.count())
}

func TestUploadSlotSuperseded(t *testing.T) {
	up := &fakeUploader{gate: make(chan MediaRef), start: make(chan struct{}, 2)}
	c := mediaController(t, up)
	key := SlotKey{Category: CategoryLivingRoom}

	first := make(chan error, 1)
	go func() {
		_, err := c.Media().UploadSlot(context.Background(), key, FileFromBytes("old.jpg", jpegHeader))
		first <- err
	}()
	<-up.start

	second := make(chan error, 1)
	go func() {
		_, err := c.Media().UploadSlot(context.Background(), key, FileFromBytes("new.jpg", jpegHeader))
		second <- err
	}()
	<-up.start

	// The first upload was cancelled when the second started.
	assert.ErrorIs(t, <-first, ErrSuperseded)
	assert.Equal(t, 1, c.Media().Pending())

	up.gate <- "https://cdn.example.com/new.jpg"
	require.NoError(t, <-second)
	assert.Equal(t, MediaRef("https://cdn.example.com/new.jpg"), c.Draft().Media.Ref(key))
	assert.Equal(t, 0, c.Media().Pending())
}

func TestUploadsToDistinctSlotsRunConcurrently(t *testing.T) {
	up := &fakeUploader{gate: make(chan MediaRef), start: make(chan struct{}, 2)}
	c := mediaController(t, up)
	keys := []SlotKey{{Category: CategoryBedroom, Index: 1}, {Category: CategoryBedroom, Index: 2}}

	errs := make(chan error, 2)
	for _, k := range keys {
		go func() {
			_, err := c.Media().UploadSlot(context.Background(), k, FileFromBytes("r.jpg", jpegHeader))
			errs <- err
		}()
	}
	<-up.start
	<-up.start
	assert.Equal(t, 2, c.Media().Pending())

	up.gate <- "https://cdn.example.com/a.jpg"
	up.gate <- "https://cdn.example.com/b.jpg"
	require.NoError(t, <-errs)
	require.NoError(t, <-errs)
	assert.Equal(t, 2, c.Draft().Media.Uploaded())
}

func TestAdvanceBlocksOnPendingUploads(t *testing.T) {
	up := &fakeUploader{gate: make(chan MediaRef), start: make(chan struct{}, 1)}
	c := mediaController(t, up)

	done := make(chan error, 1)
	go func() {
		_, err := c.Media().UploadSlot(context.Background(), SlotKey{Category: CategoryExterior}, FileFromBytes("e.jpg", jpegHeader))
		done <- err
	}()
	<-up.start

	_, err := c.Advance(context.Background())
	var pu *PendingUploadsError
	require.ErrorAs(t, err, &pu)
	assert.Equal(t, 1, pu.Count)
	assert.Equal(t, StepMedia, c.Current())

	up.gate <- "https://cdn.example.com/e.jpg"
	require.NoError(t, <-done)
	_, err = c.Advance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StepReview, c.Current())
}

func TestUploadTimeout(t *testing.T) {
	up := &fakeUploader{gate: make(chan MediaRef)}
	c := mediaController(t, up, WithUploadTimeout(20*time.Millisecond))
	_, err := c.Media().UploadSlot(context.Background(), SlotKey{Category: CategoryExterior}, FileFromBytes("e.jpg", jpegHeader))
	assert.True(t, IsRetryable(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOpenFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\nrest"), 0o644))

	f, err := OpenFile(path)
	require.NoError(t, err)
	assert.Equal(t, "plan.png", f.Name)
	assert.EqualValues(t, 12, f.Size)

	uri, err := EncodeDataURI(f, DefaultMaxUploadBytes)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"), uri)

	_, err = OpenFile(filepath.Join(dir, "missing.png"))
	var ee *EncodeError
	assert.ErrorAs(t, err, &ee)
}

func TestEncodeDataURISniffsContent(t *testing.T) {
	uri, err := EncodeDataURI(FileFromBytes("photo", jpegHeader), DefaultMaxUploadBytes)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/jpeg;base64,"), uri)
}
