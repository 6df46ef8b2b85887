// ABOUTME: Tariff plans, tariff purchase and the wallet transaction history
// ABOUTME: Amounts stay as server-formatted display strings

package panel

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/2389/delegate-panel/internal/gateway"
)

// Feature is one line of a tariff's feature list.
type Feature struct {
	Text   string `json:"text"`
	Active bool   `json:"is_active"`
}

// Tariff is a purchasable plan.
type Tariff struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	PriceRub     float64   `json:"price_rub"`
	DurationDays *int      `json:"duration_days"`
	Description  string    `json:"description"`
	Features     []Feature `json:"features"`
	Current      bool      `json:"is_current"`
}

// Tariffs lists the available plans in server order.
func (c *Client) Tariffs(ctx context.Context) ([]Tariff, error) {
	var out []Tariff
	if !c.api.Fetch(ctx, "/api/tariffs", http.MethodGet, nil, &out) {
		return nil, gateway.ErrReported
	}
	for i := range out {
		out[i].Description = plainText(out[i].Description)
		for j := range out[i].Features {
			out[i].Features[j].Text = plainText(out[i].Features[j].Text)
		}
	}
	return out, nil
}

// CurrentTariff returns the plan marked current, if any.
func CurrentTariff(tariffs []Tariff) (Tariff, bool) {
	for _, t := range tariffs {
		if t.Current {
			return t, true
		}
	}
	return Tariff{}, false
}

// PurchaseTariff buys a plan from the wallet balance and returns the
// server's confirmation text. Insufficient funds come back as an HTTP notice.
func (c *Client) PurchaseTariff(ctx context.Context, tariffID string) (string, error) {
	tariffID = strings.TrimSpace(tariffID)
	if tariffID == "" {
		return "", fmt.Errorf("tariff id: %w", ErrMissingField)
	}
	var ack gateway.Ack
	body := map[string]string{"tariff_id": tariffID}
	if err := gateway.Mutate(ctx, c.api, "/api/tariffs/purchase", http.MethodPost, body, &ack); err != nil {
		return "", fmt.Errorf("purchasing tariff %s: %w", tariffID, err)
	}
	return ack.Message, nil
}

// Transaction is one wallet entry.
type Transaction struct {
	ID              string `json:"id"`
	CreatedAt       string `json:"created_at_display"`
	Description     string `json:"description"`
	FullDescription string `json:"full_description"`
	Amount          string `json:"amount_rub_str"`
	BalanceAfter    string `json:"balance_after_rub_str"`
}

// Credit reports whether the entry added money.
func (t Transaction) Credit() bool {
	return strings.HasPrefix(t.Amount, "+")
}

// Wallet is the balance plus recent transactions, newest first.
type Wallet struct {
	Balance      string        `json:"current_balance_rub_str"`
	Transactions []Transaction `json:"transactions"`
}

// Wallet fetches the balance and history.
func (c *Client) Wallet(ctx context.Context) (Wallet, error) {
	var w Wallet
	if !c.api.Fetch(ctx, "/api/wallet", http.MethodGet, nil, &w) {
		return Wallet{}, gateway.ErrReported
	}
	return w, nil
}
