// Package gateway is the single chokepoint for panel API calls.
//
// # Overview
//
// Every feature (roster, delegation rules, templates, billing) talks to the
// server through a *Gateway. The gateway:
//
//   - checks its preconditions (session credential, server URL, path prefix)
//   - acquires the busy indicator and releases it on every exit path
//   - encodes a JSON body for POST, PUT and DELETE
//   - adds the credential header to every request
//   - classifies the response and reports failures as user notices
//
// # Contract
//
// Call returns a *Result or nil. nil means the failure was already reported
// to the user exactly once; callers render an empty state and stop:
//
//	res := gw.Call(ctx, "/api/avito-accounts", http.MethodGet, nil)
//	if res == nil {
//	    return // already reported
//	}
//
// A Result with an empty Body stands for a bare success (HTTP 204 or an empty
// 2xx body). Fetch decodes a Result into a typed value:
//
//	var accounts []accountWire
//	if !gw.Fetch(ctx, "/api/avito-accounts", http.MethodGet, nil, &accounts) {
//	    return
//	}
//
// # Failure classes
//
//   - auth: no session credential, nothing sent
//   - config: server URL or path prefix missing, nothing sent
//   - http: non-2xx; the notice carries the status and the server's "detail"
//   - network: no HTTP response (refused, timeout, DNS, TLS, cancelled)
//   - protocol: a body could not be encoded or decoded
//
// Calls are never retried.
package gateway
