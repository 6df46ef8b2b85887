// ABOUTME: User settings: timezone selection and the full account reset
// ABOUTME: Timezones are ordered by GMT offset parsed from their labels

package panel

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/2389/delegate-panel/internal/cache"
	"github.com/2389/delegate-panel/internal/gateway"
)

// Timezone is a selectable zone, e.g. {"Europe/Moscow", "Moscow (GMT+3)"}.
type Timezone struct {
	Value string
	Label string
}

// Offset returns the GMT hour offset parsed from the label, or 99 when the
// label carries none so such zones sort last.
func (t Timezone) Offset() int {
	m := gmtOffsetRe.FindStringSubmatch(t.Label)
	if m == nil {
		return 99
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 99
	}
	return n
}

var gmtOffsetRe = regexp.MustCompile(`GMT([+-]\d+)`)

// Settings holds the operator's preferences.
type Settings struct {
	// Timezone is empty when not set.
	Timezone  string
	Available []Timezone
}

// Label returns the display label of the current timezone.
func (s Settings) Label() string {
	for _, tz := range s.Available {
		if tz.Value == s.Timezone {
			return tz.Label
		}
	}
	return s.Timezone
}

// Has reports whether value is a selectable timezone.
func (s Settings) Has(value string) bool {
	return slices.ContainsFunc(s.Available, func(tz Timezone) bool { return tz.Value == value })
}

type settingsWire struct {
	Timezone  *string           `json:"timezone"`
	Available map[string]string `json:"available_timezones"`
}

// Settings fetches the current preferences.
func (c *Client) Settings(ctx context.Context) (Settings, error) {
	var w settingsWire
	if !c.api.Fetch(ctx, "/api/user/settings", http.MethodGet, nil, &w) {
		return Settings{}, gateway.ErrReported
	}

	s := Settings{Available: make([]Timezone, 0, len(w.Available))}
	if w.Timezone != nil {
		s.Timezone = *w.Timezone
	}
	for value, label := range w.Available {
		s.Available = append(s.Available, Timezone{Value: value, Label: label})
	}
	sortTimezones(s.Available)
	return s, nil
}

func sortTimezones(zones []Timezone) {
	slices.SortFunc(zones, func(a, b Timezone) int {
		if d := a.Offset() - b.Offset(); d != 0 {
			return d
		}
		if c := strings.Compare(a.Label, b.Label); c != 0 {
			return c
		}
		return strings.Compare(a.Value, b.Value)
	})
}

// SetTimezone saves the timezone. When settings are given, the value must be
// one of their available zones; the server enforces this either way.
func (c *Client) SetTimezone(ctx context.Context, value string, settings *Settings) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("timezone: %w", ErrMissingField)
	}
	if settings != nil && !settings.Has(value) {
		return "", fmt.Errorf("timezone %q is not available", value)
	}

	var ack gateway.Ack
	if err := gateway.Mutate(ctx, c.api, "/api/user/settings/timezone", http.MethodPost, map[string]string{"timezone": value}, &ack); err != nil {
		return "", fmt.Errorf("saving timezone: %w", err)
	}
	return ack.Message, nil
}

// FullReset deletes every account, rule and template the operator owns.
// All cached collections are dropped.
func (c *Client) FullReset(ctx context.Context) error {
	if err := gateway.Mutate(ctx, c.api, "/api/avito-accounts/full-reset", http.MethodPost, nil, nil); err != nil {
		return fmt.Errorf("full reset: %w", err)
	}
	c.logger.Warn("full reset completed")
	c.registry.Invalidate(cache.Accounts, cache.DelegationRules, cache.Templates)
	return nil
}
