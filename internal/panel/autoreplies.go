// ABOUTME: Per-account auto-reply rules: listing, creation, update and deletion
// ABOUTME: Normalizes keyword input and applies the server's delay and cooldown defaults

package panel

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/2389/delegate-panel/internal/gateway"
	"github.com/2389/delegate-panel/internal/roster"
)

// MatchType selects how incoming messages trigger an auto-reply.
type MatchType string

const (
	MatchContainsAny MatchType = "contains_any"
	MatchExact       MatchType = "exact"
	MatchAlways      MatchType = "always"
)

// DefaultCooldownSeconds is applied when no positive cooldown is given.
const DefaultCooldownSeconds = 3600

// ParseMatchType validates a match type. Empty means contains_any.
func ParseMatchType(s string) (MatchType, error) {
	switch m := MatchType(strings.TrimSpace(strings.ToLower(s))); m {
	case "":
		return MatchContainsAny, nil
	case MatchContainsAny, MatchExact, MatchAlways:
		return m, nil
	default:
		return "", fmt.Errorf("unknown match type %q (want contains_any, exact or always)", s)
	}
}

// AutoReply is an automatic answer rule on one account.
type AutoReply struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Active       bool      `json:"is_active"`
	Keywords     []string  `json:"keywords_list"`
	ReplyText    string    `json:"reply_text"`
	MatchType    MatchType `json:"match_type"`
	DelaySeconds int       `json:"delay_seconds"`
}

// AutoReplyInput is the editable part of an auto-reply.
type AutoReplyInput struct {
	Name            string    `json:"name"`
	MatchType       MatchType `json:"match_type"`
	Keywords        []string  `json:"trigger_keywords"`
	ReplyText       string    `json:"reply_text"`
	DelaySeconds    int       `json:"delay_seconds"`
	CooldownSeconds int       `json:"cooldown_seconds"`
	Active          bool      `json:"is_active"`
}

// ParseKeywords splits comma-separated input into trimmed, non-empty keywords.
func ParseKeywords(raw string) []string {
	out := []string{}
	for _, kw := range strings.Split(raw, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// normalize trims fields, applies defaults and checks required fields.
func (in AutoReplyInput) normalize() (AutoReplyInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.ReplyText = strings.TrimSpace(in.ReplyText)
	if in.Name == "" || in.ReplyText == "" {
		return AutoReplyInput{}, fmt.Errorf("auto-reply name and reply text: %w", ErrMissingField)
	}

	mt, err := ParseMatchType(string(in.MatchType))
	if err != nil {
		return AutoReplyInput{}, err
	}
	in.MatchType = mt

	keywords := make([]string, 0, len(in.Keywords))
	for _, kw := range in.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	in.Keywords = keywords

	if in.DelaySeconds < 0 {
		in.DelaySeconds = 0
	}
	if in.CooldownSeconds <= 0 {
		in.CooldownSeconds = DefaultCooldownSeconds
	}
	return in, nil
}

// AutoReplies lists an account's rules ordered by name.
func (c *Client) AutoReplies(ctx context.Context, account roster.AccountID) ([]AutoReply, error) {
	var out []AutoReply
	if !c.api.Fetch(ctx, fmt.Sprintf("/api/avito-accounts/%d/autoreplies", account), http.MethodGet, nil, &out) {
		return nil, gateway.ErrReported
	}
	sortByName(out, func(r AutoReply) string { return r.Name })
	return out, nil
}

// CreateAutoReply adds a rule to an account and returns its ID.
func (c *Client) CreateAutoReply(ctx context.Context, account roster.AccountID, in AutoReplyInput) (uuid.UUID, error) {
	in, err := in.normalize()
	if err != nil {
		return uuid.Nil, err
	}
	var resp struct {
		gateway.Ack
		ID string `json:"id"`
	}
	if err := gateway.Mutate(ctx, c.api, fmt.Sprintf("/api/avito-accounts/%d/autoreplies", account), http.MethodPost, in, &resp); err != nil {
		return uuid.Nil, fmt.Errorf("creating auto-reply %q: %w", in.Name, err)
	}
	id, err := uuid.Parse(resp.ID)
	if err != nil {
		c.logger.Warn("auto-reply created without a valid id", "id", resp.ID)
		return uuid.Nil, nil
	}
	return id, nil
}

// UpdateAutoReply replaces a rule.
func (c *Client) UpdateAutoReply(ctx context.Context, id uuid.UUID, in AutoReplyInput) error {
	in, err := in.normalize()
	if err != nil {
		return err
	}
	if err := gateway.Mutate(ctx, c.api, fmt.Sprintf("/api/autoreplies/%s", id), http.MethodPut, in, nil); err != nil {
		return fmt.Errorf("updating auto-reply %s: %w", id, err)
	}
	return nil
}

// DeleteAutoReply removes a rule.
func (c *Client) DeleteAutoReply(ctx context.Context, id uuid.UUID) error {
	if err := gateway.Mutate(ctx, c.api, fmt.Sprintf("/api/autoreplies/%s", id), http.MethodDelete, nil, nil); err != nil {
		return fmt.Errorf("deleting auto-reply %s: %w", id, err)
	}
	return nil
}
