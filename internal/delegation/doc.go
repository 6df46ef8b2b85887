// Package delegation models which connected accounts a delegate may act on.
//
// A Rule grants a delegate an access Scope: whether they may reply, and an
// Allowed set of accounts. Allowed is a tagged union. All follows the roster
// as it grows; a Subset is frozen at the IDs it names, even when those happen
// to be every account connected today. On the wire All is null and a Subset
// is an array of IDs.
//
// Editing goes through a Selection (checkbox state). ToSelection expands a
// scope for display against the current roster; FromSelection maps the
// checked IDs back, collapsing "as many checked as the roster holds" to All.
//
// Service lists rules through the session cache, saves scopes, issues
// invites and revokes rules. Saving invalidates only the rule listing.
package delegation
