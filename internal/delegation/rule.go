// ABOUTME: DelegationRule model and its wire mapping
// ABOUTME: Extracts the one-time invite code from an issued invite link

package delegation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// invitePrefix marks a delegation invite in the bot's start parameter.
const invitePrefix = "fw_accept_"

// ErrBadInviteLink is returned by InviteCode for links that carry no invite.
var ErrBadInviteLink = errors.New("not a delegation invite link")

// Rule grants a delegate access to some of the operator's accounts.
type Rule struct {
	ID       uuid.UUID
	Label    string
	Accepted bool
	// DelegateDisplayName is nil until the invite has been accepted.
	DelegateDisplayName *string
	InviteSecret        *string
	InviteLink          *string
	Permissions         Scope
	// Summary is the server's one-line description of the account scope.
	Summary string
}

type ruleWire struct {
	ID                  uuid.UUID       `json:"id"`
	Label               string          `json:"custom_rule_name"`
	DelegateDisplayName *string         `json:"target_tg_user_display_name"`
	Summary             string          `json:"source_avito_account_display_name"`
	CanReply            *bool           `json:"can_reply"`
	Accepted            bool            `json:"target_user_accepted"`
	InviteSecret        *string         `json:"invite_password"`
	InviteLink          *string         `json:"invite_link"`
	Permissions         json.RawMessage `json:"permissions"`
}

func toRule(w ruleWire) (Rule, error) {
	r := Rule{
		ID:           w.ID,
		Label:        w.Label,
		Accepted:     w.Accepted,
		InviteSecret: w.InviteSecret,
		InviteLink:   w.InviteLink,
		Summary:      w.Summary,
	}
	if w.Accepted {
		r.DelegateDisplayName = w.DelegateDisplayName
	}

	perms := strings.TrimSpace(string(w.Permissions))
	if perms == "" || perms == "null" {
		if w.CanReply != nil {
			r.Permissions.CanReply = *w.CanReply
		}
		return r, nil
	}
	if err := json.Unmarshal(w.Permissions, &r.Permissions); err != nil {
		return Rule{}, fmt.Errorf("rule %s permissions: %w", w.ID, err)
	}
	return r, nil
}

// InviteCode extracts the one-time code from an invite link such as
// https://t.me/bot?start=fw_accept_<code>.
func InviteCode(link string) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("parsing invite link: %w", err)
	}
	start := u.Query().Get("start")
	code, ok := strings.CutPrefix(start, invitePrefix)
	if !ok || code == "" {
		return "", ErrBadInviteLink
	}
	return code, nil
}
