package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/rentr/internal/listing"
)

type slotStatus struct {
	Field string `json:"field"`
	Label string `json:"label"`
	Ref   string `json:"ref,omitempty"`
}

type status struct {
	Step           string       `json:"step"`
	Title          string       `json:"title"`
	Index          int          `json:"index"`
	Steps          int          `json:"steps"`
	PropertyID     string       `json:"propertyId,omitempty"`
	Saved          []string     `json:"saved"`
	Missing        []string     `json:"missing,omitempty"`
	PendingUploads int          `json:"pendingUploads"`
	Completed      bool         `json:"completed"`
	Slots          []slotStatus `json:"slots"`
}

// describeError turns a controller error into guidance for the agent.
func describeError(err error) string {
	var verr *listing.ValidationError
	var perr *listing.PersistenceError
	var pending *listing.PendingUploadsError
	var precond *listing.PreconditionError
	switch {
	case errors.As(err, &verr):
		return fmt.Sprintf("Cannot leave %s. Missing or invalid: %s", verr.Step.ID(), strings.Join(verr.Fields, ", "))
	case errors.As(err, &pending):
		return pending.Error() + ". Wait for them to finish, then advance again."
	case errors.As(err, &perr):
		if perr.Retryable {
			return "error: " + perr.Error() + ". Nothing was lost; call the same tool again to retry."
		}
		return "error: " + perr.Error()
	case errors.As(err, &precond):
		return "error: " + precond.Error()
	}
	return "error: " + err.Error()
}

// stepArg parses the named step argument, falling back to def when absent.
func stepArg(args map[string]any, name string, def *listing.Step) (listing.Step, error) {
	raw, _ := args[name].(string)
	if raw == "" {
		if def != nil {
			return *def, nil
		}
		return 0, fmt.Errorf("missing or invalid '%s' parameter", name)
	}
	return listing.ParseStep(raw)
}

// handleStatus reports where the wizard stands.
func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	current := s.ctrl.Current()
	d := s.ctrl.Draft()

	st := status{
		Step:           current.ID(),
		Title:          current.Title(),
		Index:          s.ctrl.Index() + 1,
		Steps:          len(listing.Steps()),
		PropertyID:     s.ctrl.PropertyID(),
		Saved:          []string{},
		Missing:        listing.Validate(current, d),
		PendingUploads: s.ctrl.Media().Pending(),
		Completed:      s.ctrl.Completed(),
	}
	for _, step := range listing.Steps() {
		if s.ctrl.Saved(step) {
			st.Saved = append(st.Saved, step.ID())
		}
	}
	for _, key := range d.Media.Slots() {
		st.Slots = append(st.Slots, slotStatus{
			Field: key.FieldName(),
			Label: key.Label(),
			Ref:   string(d.Media.Ref(key)),
		})
	}

	output, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("error: failed to marshal status: %v", err)), nil
	}
	return mcp.NewToolResultText(string(output)), nil
}

// handleSet replaces one step's slice.
func (s *Server) handleSet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	if args == nil {
		return mcp.NewToolResultText("error: no arguments provided"), nil
	}

	step, err := stepArg(args, "step", nil)
	if err != nil {
		return mcp.NewToolResultText("error: " + err.Error()), nil
	}

	data, ok := args["data"].(string)
	if !ok || strings.TrimSpace(data) == "" {
		return mcp.NewToolResultText("error: missing or empty 'data' parameter"), nil
	}

	before := len(s.ctrl.Draft().Media.Slots())
	if err := s.ctrl.SetSliceJSON(step, []byte(data)); err != nil {
		return mcp.NewToolResultText("error: " + err.Error()), nil
	}

	result := fmt.Sprintf("Updated %s", step.ID())
	if step == listing.StepFeatures {
		if after := len(s.ctrl.Draft().Media.Slots()); after != before {
			result += fmt.Sprintf(" (media slots: %d)", after)
		}
	}
	if missing := listing.Validate(step, s.ctrl.Draft()); len(missing) > 0 {
		result += ". Still missing or invalid: " + strings.Join(missing, ", ")
	}
	return mcp.NewToolResultText(result), nil
}

// handleAdvance saves the current step and moves on.
func (s *Server) handleAdvance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.ctrl.Advance(ctx)
	if err != nil {
		return mcp.NewToolResultText(describeError(err)), nil
	}

	var b strings.Builder
	switch {
	case res.Completed:
		fmt.Fprintf(&b, "Listing %s completed", res.PropertyID)
		return mcp.NewToolResultText(b.String()), nil
	case res.Persisted && res.From == listing.StepBasicDetails && res.Diff == "":
		fmt.Fprintf(&b, "Created listing %s", res.PropertyID)
	case res.Persisted:
		fmt.Fprintf(&b, "Saved %s", res.From.ID())
	default:
		fmt.Fprintf(&b, "No changes on %s", res.From.ID())
	}
	fmt.Fprintf(&b, ". Now on %s (%s)", res.To.ID(), res.To.Title())
	if res.Diff != "" {
		b.WriteString("\n\n")
		b.WriteString(res.Diff)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// handleRetreat moves back one step.
func (s *Server) handleRetreat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.ctrl.Retreat(); err != nil {
		return mcp.NewToolResultText(describeError(err)), nil
	}
	return mcp.NewToolResultText("Now on " + s.ctrl.Current().ID()), nil
}

// handleJump moves back to an earlier step.
func (s *Server) handleJump(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	if args == nil {
		return mcp.NewToolResultText("error: no arguments provided"), nil
	}
	step, err := stepArg(args, "step", nil)
	if err != nil {
		return mcp.NewToolResultText("error: " + err.Error()), nil
	}
	if err := s.ctrl.JumpTo(step); err != nil {
		return mcp.NewToolResultText(describeError(err)), nil
	}
	return mcp.NewToolResultText("Now on " + step.ID()), nil
}

// handleUpload uploads a local file into a media slot and waits for the result.
func (s *Server) handleUpload(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	if args == nil {
		return mcp.NewToolResultText("error: no arguments provided"), nil
	}

	slot, ok := args["slot"].(string)
	if !ok || slot == "" {
		return mcp.NewToolResultText("error: missing or invalid 'slot' parameter"), nil
	}
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return mcp.NewToolResultText("error: missing or invalid 'path' parameter"), nil
	}

	key, ok := s.ctrl.Draft().Media.Lookup(slot)
	if !ok {
		return mcp.NewToolResultText(fmt.Sprintf("error: %v: %s", listing.ErrUnknownSlot, slot)), nil
	}
	file, err := listing.OpenFile(path)
	if err != nil {
		return mcp.NewToolResultText("error: " + err.Error()), nil
	}

	ref, err := s.ctrl.Media().UploadSlot(ctx, key, file)
	if err != nil {
		return mcp.NewToolResultText(describeError(err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Uploaded %s: %s", key.Label(), ref)), nil
}

// handlePreview renders the draft.
func (s *Server) handlePreview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(listing.Markdown(s.ctrl.Draft())), nil
}

// handleRules lists the validation rules of a step.
func (s *Server) handleRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	current := s.ctrl.Current()
	step, err := stepArg(request.GetArguments(), "step", &current)
	if err != nil {
		return mcp.NewToolResultText("error: " + err.Error()), nil
	}

	rules := listing.Rules(step)
	if len(rules) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No rules for %s", step.ID())), nil
	}
	lines := []string{step.Title() + ":"}
	for _, r := range rules {
		lines = append(lines, fmt.Sprintf("  %s: %s", r.Field, r.Desc))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}
