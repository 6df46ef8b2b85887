// ABOUTME: Roster service listing and mutating connected external accounts through the gateway
// ABOUTME: Owns the "accounts" cache collection and invalidates it after every mutation

package roster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/2389/delegate-panel/internal/cache"
	"github.com/2389/delegate-panel/internal/gateway"
)

// ErrUnknownAccount is returned when an account ID is not in the roster.
var ErrUnknownAccount = errors.New("unknown account")

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithTTL sets the roster snapshot lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// Service lists and mutates the operator's external accounts.
type Service struct {
	api      gateway.Caller
	registry *cache.Registry
	accounts *cache.Collection[Account]
	ttl      time.Duration
	logger   *slog.Logger
}

// NewService creates a roster service and registers its collection.
func NewService(api gateway.Caller, registry *cache.Registry, opts ...Option) *Service {
	s := &Service{api: api, registry: registry}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "roster")

	s.accounts = cache.NewCollection(cache.Accounts, s.fetch,
		cache.WithTTL(s.ttl), cache.WithLogger(s.logger))
	if registry != nil {
		registry.Register(cache.Accounts, s.accounts)
	}
	return s
}

// Collection exposes the cached roster.
func (s *Service) Collection() *cache.Collection[Account] {
	return s.accounts
}

func (s *Service) fetch(ctx context.Context) ([]Account, bool) {
	var wire []accountWire
	if !s.api.Fetch(ctx, "/api/avito-accounts", http.MethodGet, nil, &wire) {
		return nil, false
	}
	accounts := make([]Account, 0, len(wire))
	for _, w := range wire {
		accounts = append(accounts, toAccount(w))
	}
	return accounts, true
}

// List returns the roster, from cache when possible.
func (s *Service) List(ctx context.Context) ([]Account, error) {
	accounts, ok := s.accounts.Load(ctx)
	if !ok {
		return nil, gateway.ErrReported
	}
	return accounts, nil
}

// Roster satisfies delegation.RosterSource.
func (s *Service) Roster(ctx context.Context) ([]Account, bool) {
	return s.accounts.Load(ctx)
}

// Refresh re-fetches the roster.
func (s *Service) Refresh(ctx context.Context) ([]Account, error) {
	accounts, ok := s.accounts.Refresh(ctx)
	if !ok {
		return nil, gateway.ErrReported
	}
	return accounts, nil
}

// Find returns the account with id from the cached roster.
func (s *Service) Find(ctx context.Context, id AccountID) (Account, error) {
	accounts, err := s.List(ctx)
	if err != nil {
		return Account{}, err
	}
	for _, a := range accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return Account{}, fmt.Errorf("account %d: %w", id, ErrUnknownAccount)
}

// SetAlias renames an account. An empty alias clears it.
func (s *Service) SetAlias(ctx context.Context, id AccountID, alias string) error {
	body := map[string]string{"alias": strings.TrimSpace(alias)}
	if err := gateway.Mutate(ctx, s.api, fmt.Sprintf("/api/avito-accounts/%d/alias", id), http.MethodPut, body, nil); err != nil {
		return fmt.Errorf("setting alias for account %d: %w", id, err)
	}
	s.registry.Invalidate(cache.Accounts)
	return nil
}

// SyncResult is the answer to a chat sync.
type SyncResult struct {
	Message   string
	ChatCount int
}

// Sync asks the server to recount the account's chats.
func (s *Service) Sync(ctx context.Context, id AccountID) (SyncResult, error) {
	var out struct {
		gateway.Ack
		ChatsCount int `json:"chats_count"`
	}
	if err := gateway.Mutate(ctx, s.api, fmt.Sprintf("/api/avito-accounts/%d/sync-chats", id), http.MethodPost, nil, &out); err != nil {
		return SyncResult{}, fmt.Errorf("syncing account %d: %w", id, err)
	}
	s.registry.Invalidate(cache.Accounts)
	return SyncResult{Message: out.Message, ChatCount: out.ChatsCount}, nil
}

// Disconnect removes an account. Delegation scopes may reference it, so the
// rule listing is invalidated as well.
func (s *Service) Disconnect(ctx context.Context, id AccountID) error {
	if err := gateway.Mutate(ctx, s.api, fmt.Sprintf("/api/avito-accounts/%d", id), http.MethodDelete, nil, nil); err != nil {
		return fmt.Errorf("disconnecting account %d: %w", id, err)
	}
	s.registry.Invalidate(cache.Accounts, cache.DelegationRules)
	return nil
}
