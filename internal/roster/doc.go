// Package roster lists and manages the operator's connected external accounts.
//
// The roster is cached per session under cache.Accounts. Every mutation
// (alias, chat sync, disconnect) invalidates it; disconnect also drops the
// delegation rule listing, whose scopes may name the removed account.
package roster
