// ABOUTME: AccessScope for delegation rules with the All | Subset tagged union
// ABOUTME: Wire form stays bit-compatible: null means every account, an array means exactly those

package delegation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/2389/delegate-panel/internal/roster"
)

// Allowed is the set of accounts a rule may act on: either All, which
// follows the roster as it grows, or an explicit Subset frozen at the IDs it
// names. The zero value is All.
type Allowed struct {
	subset bool
	ids    map[roster.AccountID]struct{}
}

// All allows every current and future account.
func All() Allowed {
	return Allowed{}
}

// Subset allows exactly ids. Subset() with no IDs allows nothing.
func Subset(ids ...roster.AccountID) Allowed {
	set := make(map[roster.AccountID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return Allowed{subset: true, ids: set}
}

// IsAll reports whether a is the All sentinel.
func (a Allowed) IsAll() bool {
	return !a.subset
}

// IDs returns the subset in ascending order, or nil for All.
func (a Allowed) IDs() []roster.AccountID {
	if !a.subset {
		return nil
	}
	ids := make([]roster.AccountID, 0, len(a.ids))
	for id := range a.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Len returns the subset size; -1 for All.
func (a Allowed) Len() int {
	if !a.subset {
		return -1
	}
	return len(a.ids)
}

// Permits reports whether the account is covered.
func (a Allowed) Permits(id roster.AccountID) bool {
	if !a.subset {
		return true
	}
	_, ok := a.ids[id]
	return ok
}

// Equal compares two values structurally. All never equals a Subset, even
// one that lists every account on the roster.
func (a Allowed) Equal(b Allowed) bool {
	if a.subset != b.subset {
		return false
	}
	if !a.subset {
		return true
	}
	if len(a.ids) != len(b.ids) {
		return false
	}
	for id := range a.ids {
		if _, ok := b.ids[id]; !ok {
			return false
		}
	}
	return true
}

func (a Allowed) String() string {
	if !a.subset {
		return "all"
	}
	parts := make([]string, 0, len(a.ids))
	for _, id := range a.IDs() {
		parts = append(parts, fmt.Sprint(int64(id)))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// MarshalJSON encodes All as null and a Subset as a sorted array.
func (a Allowed) MarshalJSON() ([]byte, error) {
	if !a.subset {
		return []byte("null"), nil
	}
	ids := a.IDs()
	if ids == nil {
		ids = []roster.AccountID{}
	}
	return json.Marshal(ids)
}

// UnmarshalJSON accepts null (All) or an array of integer IDs.
func (a *Allowed) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*a = All()
		return nil
	}
	var ids []roster.AccountID
	if err := json.Unmarshal(data, &ids); err != nil {
		return fmt.Errorf("allowed_accounts: %w", err)
	}
	*a = Subset(ids...)
	return nil
}

// Scope is the permission payload of a delegation rule.
type Scope struct {
	CanReply bool    `json:"can_reply"`
	Accounts Allowed `json:"allowed_accounts"`
}

// Equal compares two scopes.
func (s Scope) Equal(o Scope) bool {
	return s.CanReply == o.CanReply && s.Accounts.Equal(o.Accounts)
}
