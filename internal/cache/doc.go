// Package cache holds session-long snapshots of server collections.
//
// A Collection[T] is populated by a Loader that issues the listing through
// the request gateway. Readers always receive a copy of a complete snapshot:
// either the previous one or the new one, never a mix. Concurrent refreshes
// of the same key are not coalesced; whichever completes last is kept.
//
// Services register their collections in a Registry so that a mutation can
// invalidate dependent collections by key (for example, disconnecting an
// account drops both "accounts" and "delegationRules").
package cache
