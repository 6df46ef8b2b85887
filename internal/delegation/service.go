// ABOUTME: Delegation rule service: listing, permission edits, invite issuance and revocation
// ABOUTME: Reads rules and the roster through the session cache and mutates through the gateway

package delegation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/2389/delegate-panel/internal/cache"
	"github.com/2389/delegate-panel/internal/gateway"
	"github.com/2389/delegate-panel/internal/roster"
)

var (
	// ErrEmptyLabel is returned when an invite is issued without a label.
	ErrEmptyLabel = errors.New("invite label is required")
	// ErrUnknownRule is returned when a rule ID is not in the listing.
	ErrUnknownRule = errors.New("unknown delegation rule")
)

// RosterSource provides the current account roster.
type RosterSource interface {
	Roster(ctx context.Context) ([]roster.Account, bool)
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithTTL sets the rule listing lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// Service manages delegation rules.
type Service struct {
	api      gateway.Caller
	accounts RosterSource
	registry *cache.Registry
	rules    *cache.Collection[Rule]
	ttl      time.Duration
	logger   *slog.Logger
}

// NewService creates a delegation service and registers its collection.
func NewService(api gateway.Caller, accounts RosterSource, registry *cache.Registry, opts ...Option) *Service {
	s := &Service{api: api, accounts: accounts, registry: registry}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "delegation")

	s.rules = cache.NewCollection(cache.DelegationRules, s.fetch,
		cache.WithTTL(s.ttl), cache.WithLogger(s.logger))
	if registry != nil {
		registry.Register(cache.DelegationRules, s.rules)
	}
	return s
}

// Collection exposes the cached rule listing.
func (s *Service) Collection() *cache.Collection[Rule] {
	return s.rules
}

func (s *Service) fetch(ctx context.Context) ([]Rule, bool) {
	var wire []ruleWire
	if !s.api.Fetch(ctx, "/api/forwarding-rules", http.MethodGet, nil, &wire) {
		return nil, false
	}
	rules := make([]Rule, 0, len(wire))
	for _, w := range wire {
		r, err := toRule(w)
		if err != nil {
			s.logger.Warn("skipping malformed rule", "error", err)
			continue
		}
		rules = append(rules, r)
	}
	return rules, true
}

// Rules returns the rule listing, from cache when possible.
func (s *Service) Rules(ctx context.Context) ([]Rule, error) {
	rules, ok := s.rules.Load(ctx)
	if !ok {
		return nil, gateway.ErrReported
	}
	return rules, nil
}

// Rule returns one rule from the listing.
func (s *Service) Rule(ctx context.Context, id uuid.UUID) (Rule, error) {
	rules, err := s.Rules(ctx)
	if err != nil {
		return Rule{}, err
	}
	return findRule(rules, id)
}

func findRule(rules []Rule, id uuid.UUID) (Rule, error) {
	for _, r := range rules {
		if r.ID == id {
			return r, nil
		}
	}
	return Rule{}, fmt.Errorf("rule %s: %w", id, ErrUnknownRule)
}

// Editor is everything a permission editor needs for one rule.
type Editor struct {
	Rule      Rule
	Roster    []roster.Account
	Selection Selection
}

// Editor loads the rule and the roster in one pass, fetching both
// concurrently when they are not cached, and expands the rule's scope into a
// selection.
func (s *Service) Editor(ctx context.Context, id uuid.UUID) (Editor, error) {
	var (
		wg                sync.WaitGroup
		rules             []Rule
		accounts          []roster.Account
		rulesOK, rosterOK bool
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		rules, rulesOK = s.rules.Load(ctx)
	}()
	go func() {
		defer wg.Done()
		accounts, rosterOK = s.accounts.Roster(ctx)
	}()
	wg.Wait()

	if !rulesOK || !rosterOK {
		return Editor{}, gateway.ErrReported
	}

	rule, err := findRule(rules, id)
	if err != nil {
		return Editor{}, err
	}

	return Editor{
		Rule:      rule,
		Roster:    accounts,
		Selection: ToSelection(rule.Permissions, accounts),
	}, nil
}

// Save submits the scope derived from sel against accounts as one PUT. Only
// the rule listing is invalidated; a permission edit never changes accounts.
func (s *Service) Save(ctx context.Context, id uuid.UUID, sel Selection, accounts []roster.Account) (Scope, error) {
	scope := sel.Scope(accounts)
	if err := s.SaveScope(ctx, id, scope); err != nil {
		return Scope{}, err
	}
	return scope, nil
}

// SaveScope submits scope for the rule as-is.
func (s *Service) SaveScope(ctx context.Context, id uuid.UUID, scope Scope) error {
	if err := gateway.Mutate(ctx, s.api, fmt.Sprintf("/api/forwarding-rules/%s/permissions", id), http.MethodPut, scope, nil); err != nil {
		return fmt.Errorf("saving permissions for rule %s: %w", id, err)
	}

	s.logger.Info("permissions saved", "rule", id, "can_reply", scope.CanReply, "accounts", scope.Accounts.String())
	s.registry.Invalidate(cache.DelegationRules)
	return nil
}

// Invite describes a new delegation invite.
type Invite struct {
	Label string
	// Secret is an optional password the delegate must enter to accept.
	Secret string
	// CanReply is sent only when set; otherwise the server default applies.
	CanReply *bool
}

// Invitation is the outcome of issuing an invite.
type Invitation struct {
	Link string
	// Code is the one-time identifier carried by Link.
	Code string
}

type inviteRequest struct {
	Label    string  `json:"custom_rule_name"`
	Secret   *string `json:"invite_password"`
	CanReply *bool   `json:"can_reply,omitempty"`
}

// IssueInvite creates a pending rule and returns its invite link. Issuing an
// invite grants nothing until the delegate accepts it.
func (s *Service) IssueInvite(ctx context.Context, inv Invite) (Invitation, error) {
	label := strings.TrimSpace(inv.Label)
	if label == "" {
		return Invitation{}, ErrEmptyLabel
	}

	req := inviteRequest{Label: label, CanReply: inv.CanReply}
	if secret := strings.TrimSpace(inv.Secret); secret != "" {
		req.Secret = &secret
	}

	var resp struct {
		gateway.Ack
		InviteLink string `json:"invite_link"`
	}
	if !s.api.Fetch(ctx, "/api/forwarding-rules", http.MethodPost, req, &resp) {
		return Invitation{}, gateway.ErrReported
	}
	if !resp.OK() || resp.InviteLink == "" {
		return Invitation{}, fmt.Errorf("issuing invite %q: %w", label, gateway.ErrRejected)
	}

	s.registry.Invalidate(cache.DelegationRules)

	out := Invitation{Link: resp.InviteLink}
	if code, err := InviteCode(resp.InviteLink); err == nil {
		out.Code = code
	} else {
		s.logger.Warn("invite link carries no code", "link", resp.InviteLink)
	}
	return out, nil
}

// Revoke deletes a rule, withdrawing a pending invite or removing a delegate.
func (s *Service) Revoke(ctx context.Context, id uuid.UUID) error {
	if err := gateway.Mutate(ctx, s.api, fmt.Sprintf("/api/forwarding-rules/%s", id), http.MethodDelete, nil, nil); err != nil {
		return fmt.Errorf("revoking rule %s: %w", id, err)
	}
	s.registry.Invalidate(cache.DelegationRules)
	return nil
}
