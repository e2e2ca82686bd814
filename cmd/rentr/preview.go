package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"charm.land/glamour/v2"
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/mark3labs/rentr/internal/backend"
	"github.com/mark3labs/rentr/internal/listing"
	"github.com/spf13/cobra"
)

var previewFlags struct {
	draft string
	plain bool
	width int
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render the preview of a draft file",
	Long: `Render the review-step preview of a draft file without contacting
the backend. Write a draft with 'rentr list --save-draft'.`,
	RunE: runPreview,
}

var payloadFlags struct {
	draft string
	step  string
	plain bool
}

var payloadCmd = &cobra.Command{
	Use:   "payload",
	Short: "Print the request body a step of a draft would send",
	Long: `Print the JSON body the wizard sends when saving one step of a draft
file. The body carries the signed-in identity when there is one and is
checked against the backend's request contract, but nothing is sent.`,
	RunE: runPayload,
}

func init() {
	previewCmd.Flags().StringVarP(&previewFlags.draft, "draft", "d", "", "Draft file (YAML)")
	previewCmd.Flags().BoolVar(&previewFlags.plain, "plain", false, "Print markdown without styling")
	previewCmd.Flags().IntVarP(&previewFlags.width, "width", "w", 100, "Wrap width")
	_ = previewCmd.MarkFlagRequired("draft")

	payloadCmd.Flags().StringVarP(&payloadFlags.draft, "draft", "d", "", "Draft file (YAML)")
	payloadCmd.Flags().StringVarP(&payloadFlags.step, "step", "s", "", "Step id, e.g. commercials")
	payloadCmd.Flags().BoolVar(&payloadFlags.plain, "plain", false, "Print JSON without highlighting")
	_ = payloadCmd.MarkFlagRequired("draft")
	_ = payloadCmd.MarkFlagRequired("step")
}

func runPreview(cmd *cobra.Command, args []string) error {
	draft, _, err := listing.LoadDraft(previewFlags.draft)
	if err != nil {
		return err
	}

	md := listing.Markdown(draft)
	if previewFlags.plain {
		fmt.Fprintln(cmd.OutOrStdout(), md)
		return nil
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(previewFlags.width),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render preview: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func runPayload(cmd *cobra.Command, args []string) error {
	step, err := listing.ParseStep(payloadFlags.step)
	if err != nil {
		return err
	}
	if !step.Persisted() {
		return fmt.Errorf("step %s is not saved on its own; photos are uploaded one by one", step)
	}
	draft, propertyID, err := listing.LoadDraft(payloadFlags.draft)
	if err != nil {
		return err
	}

	actor := payloadActor(cmd.Context())
	body, err := backend.StepBody(actor, step, propertyID, draft.Slice(step))
	if err != nil {
		return err
	}

	out, err := formatJSON(body, !payloadFlags.plain)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

// placeholderActor fills the identity fields when nobody is signed in.
var placeholderActor = listing.Actor{
	UserID:   "user-id",
	Username: "username",
	FullName: "Full Name",
	Role:     "owner",
}

// payloadActor returns the signed-in identity, or the placeholder when the
// session store is unavailable or empty.
func payloadActor(ctx context.Context) listing.Actor {
	rt, err := openRuntime(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Using placeholder identity: %v\n", err)
		return placeholderActor
	}
	defer rt.Close()

	actor, err := rt.actor(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Using placeholder identity: not signed in")
		return placeholderActor
	}
	return actor
}

// formatJSON indents body and, when highlight is set, colours it for a
// 256-colour terminal.
func formatJSON(body []byte, highlight bool) (string, error) {
	var indented bytes.Buffer
	if err := json.Indent(&indented, body, "", "  "); err != nil {
		return "", fmt.Errorf("failed to format payload: %w", err)
	}
	if !highlight {
		return indented.String(), nil
	}
	return highlightJSON(indented.String())
}

// highlightJSON applies chroma JSON highlighting.
func highlightJSON(source string) (string, error) {
	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return "", errors.New("no terminal formatter available")
	}

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return "", fmt.Errorf("failed to tokenise payload: %w", err)
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return "", fmt.Errorf("failed to highlight payload: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
