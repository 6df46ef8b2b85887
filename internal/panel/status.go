// ABOUTME: Main status screen data and terms-of-service acceptance
// ABOUTME: Terms text arrives with markup and is reduced to plain text

package panel

import (
	"context"
	"net/http"

	"github.com/2389/delegate-panel/internal/gateway"
)

// Status is the operator's overview. AuthURL starts linking a new external
// account.
type Status struct {
	Tariff        string
	TariffExpires string
	Balance       string
	AuthURL       string
	AgreedToTerms bool
	Terms         string
}

type statusWire struct {
	Tariff        string `json:"current_tariff_display"`
	TariffExpires string `json:"tariff_expires_at_display"`
	Balance       string `json:"user_balance_rub_str"`
	AuthURL       string `json:"auth_url"`
	AgreedToTerms bool   `json:"has_agreed_to_terms"`
	TermsText     string `json:"terms_text"`
}

// Status fetches the overview.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var w statusWire
	if !c.api.Fetch(ctx, "/api/main-status", http.MethodGet, nil, &w) {
		return Status{}, gateway.ErrReported
	}
	return Status{
		Tariff:        w.Tariff,
		TariffExpires: w.TariffExpires,
		Balance:       w.Balance,
		AuthURL:       w.AuthURL,
		AgreedToTerms: w.AgreedToTerms,
		Terms:         plainText(w.TermsText),
	}, nil
}

// AcceptTerms records the operator's agreement. Accepting twice is harmless.
func (c *Client) AcceptTerms(ctx context.Context) error {
	return gateway.Mutate(ctx, c.api, "/api/user/accept-terms", http.MethodPost, nil, nil)
}
