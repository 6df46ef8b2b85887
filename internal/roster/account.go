// ABOUTME: ExternalAccount model and its wire mapping
// ABOUTME: Resolves display names and token status severity from the server listing

package roster

import (
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// AccountID identifies a connected external account. IDs are issued by the
// server; the client never invents them.
type AccountID int64

// Severity classifies an account's token status.
type Severity string

const (
	SeverityOK      Severity = "ok"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeverityUnknown Severity = "unknown"
)

// Status is the server's token status for an account.
type Status struct {
	Label    string
	Severity Severity
}

// Account is a connected external account as seen by the client.
type Account struct {
	ID              AccountID
	DisplayName     string
	Alias           string
	ProfileName     string
	ProfileID       string
	IsActiveDefault bool
	Status          Status
	// ChatCount is nil when the server does not know it yet.
	ChatCount *int
}

// accountWire mirrors an element of GET /api/avito-accounts.
type accountWire struct {
	ID               AccountID `json:"id"`
	CustomAlias      *string   `json:"custom_alias"`
	ProfileName      *string   `json:"avito_profile_name"`
	ProfileID        any       `json:"avito_user_id"`
	IsActiveTG       bool      `json:"is_active_tg_setting"`
	TokenStatusText  string    `json:"token_status_text"`
	TokenStatusClass string    `json:"token_status_class"`
	ChatsCount       *int      `json:"chats_count"`
}

// Names are shown verbatim in a terminal; strip any markup the server lets through.
var textPolicy = bluemonday.StrictPolicy()

func plain(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(*s)))
}

func toAccount(w accountWire) Account {
	a := Account{
		ID:              w.ID,
		Alias:           plain(w.CustomAlias),
		ProfileName:     plain(w.ProfileName),
		ProfileID:       profileID(w.ProfileID),
		IsActiveDefault: w.IsActiveTG,
		Status: Status{
			Label:    w.TokenStatusText,
			Severity: severityOf(w.TokenStatusClass),
		},
		ChatCount: w.ChatsCount,
	}

	switch {
	case a.Alias != "":
		a.DisplayName = a.Alias
	case a.ProfileName != "":
		a.DisplayName = a.ProfileName
	default:
		a.DisplayName = fmt.Sprintf("Profile %s", a.ProfileID)
	}
	return a
}

// profileID renders avito_user_id, which the server sends as a number or a string.
func profileID(v any) string {
	switch id := v.(type) {
	case nil:
		return "?"
	case float64:
		return fmt.Sprintf("%.0f", id)
	case string:
		if id == "" {
			return "?"
		}
		return id
	default:
		return fmt.Sprint(id)
	}
}

func severityOf(class string) Severity {
	switch class {
	case "status-ok":
		return SeverityOK
	case "status-warning":
		return SeverityWarning
	case "status-error":
		return SeverityError
	default:
		return SeverityUnknown
	}
}

// IDs returns the account IDs in roster order.
func IDs(accounts []Account) []AccountID {
	ids := make([]AccountID, len(accounts))
	for i, a := range accounts {
		ids[i] = a.ID
	}
	return ids
}
