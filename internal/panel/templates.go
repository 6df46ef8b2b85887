// ABOUTME: Message template CRUD backed by the session cache
// ABOUTME: Listings are ordered by name using locale-aware collation

package panel

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/2389/delegate-panel/internal/cache"
	"github.com/2389/delegate-panel/internal/gateway"
)

// Template is a saved reply text.
type Template struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Text string `json:"text"`
}

type templateInput struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

func (c *Client) fetchTemplates(ctx context.Context) ([]Template, bool) {
	var out []Template
	if !c.api.Fetch(ctx, "/api/templates", http.MethodGet, nil, &out) {
		return nil, false
	}
	sortByName(out, func(t Template) string { return t.Name })
	return out, true
}

// Templates lists templates ordered by name.
func (c *Client) Templates(ctx context.Context) ([]Template, error) {
	out, ok := c.templates.Load(ctx)
	if !ok {
		return nil, gateway.ErrReported
	}
	return out, nil
}

// CreateTemplate adds a template and returns its ID.
func (c *Client) CreateTemplate(ctx context.Context, name, text string) (int64, error) {
	in, err := newTemplateInput(name, text)
	if err != nil {
		return 0, err
	}
	var resp struct {
		gateway.Ack
		ID int64 `json:"id"`
	}
	if err := gateway.Mutate(ctx, c.api, "/api/templates", http.MethodPost, in, &resp); err != nil {
		return 0, fmt.Errorf("creating template %q: %w", in.Name, err)
	}
	c.registry.Invalidate(cache.Templates)
	return resp.ID, nil
}

// UpdateTemplate replaces a template's name and text.
func (c *Client) UpdateTemplate(ctx context.Context, id int64, name, text string) error {
	in, err := newTemplateInput(name, text)
	if err != nil {
		return err
	}
	if err := gateway.Mutate(ctx, c.api, fmt.Sprintf("/api/templates/%d", id), http.MethodPut, in, nil); err != nil {
		return fmt.Errorf("updating template %d: %w", id, err)
	}
	c.registry.Invalidate(cache.Templates)
	return nil
}

// DeleteTemplate removes a template.
func (c *Client) DeleteTemplate(ctx context.Context, id int64) error {
	if err := gateway.Mutate(ctx, c.api, fmt.Sprintf("/api/templates/%d", id), http.MethodDelete, nil, nil); err != nil {
		return fmt.Errorf("deleting template %d: %w", id, err)
	}
	c.registry.Invalidate(cache.Templates)
	return nil
}

func newTemplateInput(name, text string) (templateInput, error) {
	in := templateInput{Name: strings.TrimSpace(name), Text: strings.TrimSpace(text)}
	if in.Name == "" || in.Text == "" {
		return templateInput{}, fmt.Errorf("template name and text: %w", ErrMissingField)
	}
	return in, nil
}

// sortByName orders items by a display name. Collators keep internal
// buffers, so each sort gets its own.
func sortByName[T any](items []T, name func(T) string) {
	col := collate.New(language.Und, collate.IgnoreCase)
	slices.SortStableFunc(items, func(a, b T) int {
		return col.CompareString(name(a), name(b))
	})
}
