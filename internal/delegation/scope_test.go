// ABOUTME: Tests for the Allowed tagged union and its wire form
// ABOUTME: null and arrays must round-trip bit-compatibly with the server

package delegation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/delegate-panel/internal/roster"
)

func TestAllowed_ZeroValueIsAll(t *testing.T) {
	var a Allowed
	assert.True(t, a.IsAll())
	assert.True(t, a.Permits(12345))
	assert.Equal(t, -1, a.Len())
	assert.Nil(t, a.IDs())
	assert.Equal(t, "all", a.String())
}

func TestAllowed_Subset(t *testing.T) {
	a := Subset(3, 1, 2, 1)
	assert.False(t, a.IsAll())
	assert.Equal(t, 3, a.Len())
	assert.Equal(t, []roster.AccountID{1, 2, 3}, a.IDs())
	assert.True(t, a.Permits(2))
	assert.False(t, a.Permits(4))
	assert.Equal(t, "[1,2,3]", a.String())

	empty := Subset()
	assert.False(t, empty.IsAll())
	assert.False(t, empty.Permits(1))
}

func TestAllowed_Equal(t *testing.T) {
	assert.True(t, All().Equal(Allowed{}))
	assert.True(t, Subset(1, 2).Equal(Subset(2, 1)))
	assert.False(t, Subset(1, 2).Equal(Subset(1)))
	assert.False(t, Subset(1, 2).Equal(Subset(1, 3)))
	assert.False(t, All().Equal(Subset()), "All is not the empty subset")
	assert.False(t, Subset(1, 2, 3).Equal(All()), "a full enumeration is not All")
}

func TestScope_MarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		scope Scope
		want  string
	}{
		{"all", Scope{CanReply: true, Accounts: All()}, `{"can_reply":true,"allowed_accounts":null}`},
		{"zero", Scope{}, `{"can_reply":false,"allowed_accounts":null}`},
		{"subset sorted", Scope{Accounts: Subset(9, 2)}, `{"can_reply":false,"allowed_accounts":[2,9]}`},
		{"empty subset", Scope{Accounts: Subset()}, `{"can_reply":false,"allowed_accounts":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.scope)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}

func TestScope_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Scope
	}{
		{"null", `{"can_reply":true,"allowed_accounts":null}`, Scope{CanReply: true, Accounts: All()}},
		{"missing", `{"can_reply":false}`, Scope{Accounts: All()}},
		{"array", `{"allowed_accounts":[1,2]}`, Scope{Accounts: Subset(1, 2)}},
		{"empty array", `{"allowed_accounts":[]}`, Scope{Accounts: Subset()}},
		{"empty object", `{}`, Scope{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Scope
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.True(t, tt.want.Equal(got), "want %v got %v", tt.want.Accounts, got.Accounts)
			assert.Equal(t, tt.want.CanReply, got.CanReply)
		})
	}
}

func TestScope_UnmarshalOverwritesSubsetWithNull(t *testing.T) {
	s := Scope{Accounts: Subset(1)}
	require.NoError(t, json.Unmarshal([]byte(`{"allowed_accounts":null}`), &s))
	assert.True(t, s.Accounts.IsAll())
}

func TestScope_UnmarshalRejectsGarbage(t *testing.T) {
	var s Scope
	err := json.Unmarshal([]byte(`{"allowed_accounts":"everything"}`), &s)
	assert.Error(t, err)
}
