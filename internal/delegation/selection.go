// ABOUTME: Mapping between a stored AccessScope and checkbox-style selection state
// ABOUTME: Collapses "every known account checked" to All on the way back

package delegation

import (
	"slices"

	"github.com/2389/delegate-panel/internal/roster"
)

// IDSet is a set of account IDs.
type IDSet map[roster.AccountID]struct{}

// NewIDSet builds a set from ids.
func NewIDSet(ids ...roster.AccountID) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s IDSet) Has(id roster.AccountID) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in ascending order.
func (s IDSet) Sorted() []roster.AccountID {
	ids := make([]roster.AccountID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Selection is the editable form of a Scope.
type Selection struct {
	CanReply bool
	Checked  IDSet
}

// ToSelection expands scope against the current roster for display. All
// checks every roster member. A Subset checks only members still on the
// roster; stale IDs are hidden here but stay in the stored scope until the
// next save.
func ToSelection(scope Scope, accounts []roster.Account) Selection {
	checked := make(IDSet, len(accounts))
	for _, a := range accounts {
		if scope.Accounts.Permits(a.ID) {
			checked[a.ID] = struct{}{}
		}
	}
	return Selection{CanReply: scope.CanReply, Checked: checked}
}

// FromSelection turns checked IDs back into an Allowed value. Only IDs on
// the roster count; anything else is dropped. When every roster account is
// checked the result is All, so accounts connected later are included
// automatically. An empty roster therefore also yields All.
func FromSelection(checked IDSet, accounts []roster.Account) Allowed {
	kept := make([]roster.AccountID, 0, len(accounts))
	for _, a := range accounts {
		if checked.Has(a.ID) {
			kept = append(kept, a.ID)
		}
	}
	if len(kept) == len(accounts) {
		return All()
	}
	return Subset(kept...)
}

// Scope converts the selection into the scope that Save submits.
func (s Selection) Scope(accounts []roster.Account) Scope {
	return Scope{CanReply: s.CanReply, Accounts: FromSelection(s.Checked, accounts)}
}

// Toggle flips one account in the selection. A zero Selection is usable.
func (s *Selection) Toggle(id roster.AccountID) {
	if s.Checked == nil {
		s.Checked = IDSet{}
	}
	if s.Checked.Has(id) {
		delete(s.Checked, id)
		return
	}
	s.Checked[id] = struct{}{}
}
