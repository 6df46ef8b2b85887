// ABOUTME: Typed clients for the panel features that sit on top of the request gateway
// ABOUTME: Status, terms, templates, auto-replies, tariffs, wallet and user settings

package panel

import (
	"errors"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/2389/delegate-panel/internal/cache"
	"github.com/2389/delegate-panel/internal/gateway"
)

// ErrMissingField is returned when a required input field is blank.
var ErrMissingField = errors.New("required field is empty")

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithTTL sets the lifetime of cached listings.
func WithTTL(ttl time.Duration) Option {
	return func(c *Client) { c.ttl = ttl }
}

// Client groups the panel feature calls.
type Client struct {
	api       gateway.Caller
	registry  *cache.Registry
	templates *cache.Collection[Template]
	ttl       time.Duration
	logger    *slog.Logger
}

// NewClient creates a panel client and registers its cached collections.
func NewClient(api gateway.Caller, registry *cache.Registry, opts ...Option) *Client {
	c := &Client{api: api, registry: registry}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("component", "panel")

	c.templates = cache.NewCollection(cache.Templates, c.fetchTemplates,
		cache.WithTTL(c.ttl), cache.WithLogger(c.logger))
	if registry != nil {
		registry.Register(cache.Templates, c.templates)
	}
	return c
}

var strictPolicy = bluemonday.StrictPolicy()

// plainText strips markup from server-provided text for terminal display.
func plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}
