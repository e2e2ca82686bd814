package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/rentr/internal/listing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu      sync.Mutex
	saves   []listing.Step
	failing error
}

func (f *fakeBackend) CreateProperty(ctx context.Context, actor listing.Actor, info listing.BasicInfo) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing != nil {
		return "", f.failing
	}
	f.saves = append(f.saves, listing.StepBasicDetails)
	return "p1", nil
}

func (f *fakeBackend) SaveStep(ctx context.Context, actor listing.Actor, step listing.Step, propertyID string, slice any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing != nil {
		return f.failing
	}
	f.saves = append(f.saves, step)
	return nil
}

func (f *fakeBackend) UploadPhoto(ctx context.Context, actor listing.Actor, req listing.UploadRequest) (listing.MediaRef, error) {
	return listing.MediaRef("https://cdn.example.com/" + req.FieldName + ".png"), nil
}

// setupTestServer creates a server over a fresh wizard.
func setupTestServer(t *testing.T) (*Server, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{}
	actor := listing.Actor{UserID: "u1", Username: "asha", Role: "owner"}
	ctrl, err := listing.New(actor, backend, listing.WithUploader(backend))
	if err != nil {
		t.Fatalf("failed to start wizard: %v", err)
	}
	return New(ctrl, 0), backend
}

// extractText extracts text from CallToolResult.Content[0]
func extractText(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}
	if textContent, ok := result.Content[0].(mcp.TextContent); ok {
		return textContent.Text
	}
	return ""
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), name string, args map[string]any) string {
	t.Helper()
	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("%s returned error: %v", name, err)
	}
	return extractText(result)
}

const (
	basicJSON    = `{"propertyType":"Apartment","propertyConfiguration":"2 BHK","furnishingStatus":"Unfurnished","facing":"North"}`
	locationJSON = `{"flatNo":"A-402","addressLine1":"12th Main Road","locality":"Indiranagar","area":"Bengaluru East","pinCode":"560038"}`
)

func TestHandleSet(t *testing.T) {
	srv, _ := setupTestServer(t)

	t.Run("valid slice", func(t *testing.T) {
		text := call(t, srv.handleSet, "listing-set", map[string]any{"step": "basic-details", "data": basicJSON})
		assert.Equal(t, "Updated basic-details", text)
		assert.Equal(t, "2 BHK", srv.ctrl.Draft().BasicInfo.Configuration)
	})

	t.Run("partial slice reports what is missing", func(t *testing.T) {
		text := call(t, srv.handleSet, "listing-set", map[string]any{"step": "commercials", "data": `{"monthlyRent":35000}`})
		assert.Contains(t, text, "Still missing or invalid: Maintenance, Security Deposit")
	})

	t.Run("features changes the slot count", func(t *testing.T) {
		text := call(t, srv.handleSet, "listing-set", map[string]any{"step": "features", "data": `{"bedrooms":3}`})
		assert.Contains(t, text, "media slots: 10")
	})

	t.Run("unknown field", func(t *testing.T) {
		text := call(t, srv.handleSet, "listing-set", map[string]any{"step": "location", "data": `{"city":"Pune"}`})
		assert.True(t, strings.HasPrefix(text, "error:"), text)
	})

	t.Run("unknown step", func(t *testing.T) {
		text := call(t, srv.handleSet, "listing-set", map[string]any{"step": "garden", "data": `{}`})
		assert.Contains(t, text, `unknown step "garden"`)
	})

	t.Run("media has no slice", func(t *testing.T) {
		text := call(t, srv.handleSet, "listing-set", map[string]any{"step": "media", "data": `{}`})
		assert.Contains(t, text, "no editable slice")
	})

	t.Run("missing data", func(t *testing.T) {
		text := call(t, srv.handleSet, "listing-set", map[string]any{"step": "location"})
		assert.Equal(t, "error: missing or empty 'data' parameter", text)
	})

	t.Run("no arguments", func(t *testing.T) {
		text := call(t, srv.handleSet, "listing-set", nil)
		assert.Equal(t, "error: no arguments provided", text)
	})
}

func TestHandleAdvance(t *testing.T) {
	srv, backend := setupTestServer(t)

	t.Run("validation lists every field", func(t *testing.T) {
		text := call(t, srv.handleAdvance, "listing-advance", nil)
		assert.Equal(t, "Cannot leave basic-details. Missing or invalid: Property Type, Configuration, Furnishing Status, Facing", text)
		assert.Empty(t, backend.saves)
	})

	t.Run("first save creates the listing", func(t *testing.T) {
		call(t, srv.handleSet, "listing-set", map[string]any{"step": "basic-details", "data": basicJSON})
		text := call(t, srv.handleAdvance, "listing-advance", nil)
		assert.Equal(t, "Created listing p1. Now on location (Location)", text)
	})

	t.Run("backend failure is retryable", func(t *testing.T) {
		call(t, srv.handleSet, "listing-set", map[string]any{"step": "location", "data": locationJSON})
		backend.failing = errors.New("connection reset")
		text := call(t, srv.handleAdvance, "listing-advance", nil)
		assert.Contains(t, text, "call the same tool again to retry")
		assert.Equal(t, listing.StepLocation, srv.ctrl.Current())

		backend.failing = nil
		text = call(t, srv.handleAdvance, "listing-advance", nil)
		assert.Equal(t, "Saved location. Now on features (Features)", text)
	})

	t.Run("unchanged re-advance", func(t *testing.T) {
		call(t, srv.handleRetreat, "listing-retreat", nil)
		text := call(t, srv.handleAdvance, "listing-advance", nil)
		assert.Equal(t, "No changes on location. Now on features (Features)", text)
	})

	t.Run("changed re-advance shows a diff", func(t *testing.T) {
		call(t, srv.handleRetreat, "listing-retreat", nil)
		changed := strings.Replace(locationJSON, "A-402", "B-101", 1)
		call(t, srv.handleSet, "listing-set", map[string]any{"step": "location", "data": changed})
		text := call(t, srv.handleAdvance, "listing-advance", nil)
		assert.Contains(t, text, "Saved location")
		assert.Contains(t, text, `-  "flatNo": "A-402",`)
		assert.Contains(t, text, `+  "flatNo": "B-101",`)
	})
}

func TestHandleNavigation(t *testing.T) {
	srv, _ := setupTestServer(t)
	call(t, srv.handleSet, "listing-set", map[string]any{"step": "basic-details", "data": basicJSON})
	call(t, srv.handleAdvance, "listing-advance", nil)
	call(t, srv.handleSet, "listing-set", map[string]any{"step": "location", "data": locationJSON})
	call(t, srv.handleAdvance, "listing-advance", nil)
	require.Equal(t, listing.StepFeatures, srv.ctrl.Current())

	t.Run("jump back", func(t *testing.T) {
		assert.Equal(t, "Now on basic-details", call(t, srv.handleJump, "listing-jump", map[string]any{"step": "basic-details"}))
	})

	t.Run("jump ahead is rejected", func(t *testing.T) {
		text := call(t, srv.handleJump, "listing-jump", map[string]any{"step": "commercials"})
		assert.Equal(t, "error: "+listing.ErrJumpAhead.Error(), text)
		assert.Equal(t, listing.StepBasicDetails, srv.ctrl.Current())
	})

	t.Run("retreat on the first step stays", func(t *testing.T) {
		assert.Equal(t, "Now on basic-details", call(t, srv.handleRetreat, "listing-retreat", nil))
	})

	t.Run("jump needs a step", func(t *testing.T) {
		text := call(t, srv.handleJump, "listing-jump", map[string]any{})
		assert.Equal(t, "error: missing or invalid 'step' parameter", text)
	})
}

func TestHandleUpload(t *testing.T) {
	srv, _ := setupTestServer(t)
	path := filepath.Join(t.TempDir(), "kitchen.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\nrest"), 0644))

	t.Run("before the listing exists", func(t *testing.T) {
		text := call(t, srv.handleUpload, "listing-upload", map[string]any{"slot": "kitchen", "path": path})
		assert.True(t, strings.HasPrefix(text, "error: cannot continue listing"), text)
	})

	call(t, srv.handleSet, "listing-set", map[string]any{"step": "basic-details", "data": basicJSON})
	call(t, srv.handleAdvance, "listing-advance", nil)

	t.Run("success", func(t *testing.T) {
		text := call(t, srv.handleUpload, "listing-upload", map[string]any{"slot": "kitchen", "path": path})
		assert.Equal(t, "Uploaded Kitchen: https://cdn.example.com/kitchen.png", text)
		assert.Equal(t, map[string]listing.MediaRef{"kitchen": "https://cdn.example.com/kitchen.png"}, srv.ctrl.Draft().Media.FieldMap())
	})

	t.Run("unknown slot", func(t *testing.T) {
		text := call(t, srv.handleUpload, "listing-upload", map[string]any{"slot": "bedroom9", "path": path})
		assert.Equal(t, "error: unknown media slot: bedroom9", text)
	})

	t.Run("missing file", func(t *testing.T) {
		text := call(t, srv.handleUpload, "listing-upload", map[string]any{"slot": "kitchen", "path": filepath.Join(t.TempDir(), "nope.png")})
		assert.True(t, strings.HasPrefix(text, "error: reading"), text)
	})

	t.Run("missing path", func(t *testing.T) {
		text := call(t, srv.handleUpload, "listing-upload", map[string]any{"slot": "kitchen"})
		assert.Equal(t, "error: missing or invalid 'path' parameter", text)
	})
}

func TestHandleStatus(t *testing.T) {
	srv, _ := setupTestServer(t)
	call(t, srv.handleSet, "listing-set", map[string]any{"step": "basic-details", "data": basicJSON})
	call(t, srv.handleAdvance, "listing-advance", nil)

	text := call(t, srv.handleStatus, "listing-status", nil)
	assert.Contains(t, text, `"step": "location"`)
	assert.Contains(t, text, `"index": 2`)
	assert.Contains(t, text, `"propertyId": "p1"`)
	assert.Contains(t, text, `"saved": [`)
	assert.Contains(t, text, `"basic-details"`)
	assert.Contains(t, text, `"Flat No"`)
	assert.Contains(t, text, `"field": "exterior"`)
}

func TestHandlePreview(t *testing.T) {
	srv, _ := setupTestServer(t)
	call(t, srv.handleSet, "listing-set", map[string]any{"step": "basic-details", "data": basicJSON})

	text := call(t, srv.handlePreview, "listing-preview", nil)
	assert.Contains(t, text, "Apartment")
	assert.Contains(t, text, "_Not selected_")
}

func TestHandleRules(t *testing.T) {
	srv, _ := setupTestServer(t)

	t.Run("defaults to the current step", func(t *testing.T) {
		text := call(t, srv.handleRules, "listing-rules", nil)
		assert.True(t, strings.HasPrefix(text, "Basic Details:"), text)
		assert.Contains(t, text, "Property Type")
	})

	t.Run("named step", func(t *testing.T) {
		text := call(t, srv.handleRules, "listing-rules", map[string]any{"step": "commercials"})
		assert.Contains(t, text, "Maintenance Amount: required when maintenance is Excluded")
	})

	t.Run("step without rules", func(t *testing.T) {
		assert.Equal(t, "No rules for media", call(t, srv.handleRules, "listing-rules", map[string]any{"step": "media"}))
	})
}

func TestServerStartStop(t *testing.T) {
	srv, _ := setupTestServer(t)

	port, err := srv.Start(context.Background())
	require.NoError(t, err)
	assert.Greater(t, port, 0)
	assert.Equal(t, fmt.Sprintf("http://localhost:%d/mcp", port), srv.URL())

	_, err = srv.Start(context.Background())
	assert.Error(t, err, "second start")

	require.NoError(t, srv.Stop())
	require.NoError(t, srv.Stop(), "stopping twice")
}
