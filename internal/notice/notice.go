// ABOUTME: User-facing notice taxonomy shared by the gateway and its consumers
// ABOUTME: Defines notice kinds, the Notice value, and the Notifier sink interface

package notice

import "fmt"

// Kind classifies why a call failed. Consumers never branch on it; it exists
// so the notice text and tests can tell failure classes apart.
type Kind string

const (
	// KindAuth means the session credential was missing; no request was sent.
	KindAuth Kind = "auth"
	// KindConfig means the client is not configured (server URL or path prefix).
	KindConfig Kind = "config"
	// KindHTTP means the server answered with a non-2xx status.
	KindHTTP Kind = "http"
	// KindNetwork means the request never produced an HTTP response.
	KindNetwork Kind = "network"
	// KindProtocol means a request or response body could not be encoded or decoded.
	KindProtocol Kind = "protocol"
)

// Notice is a single user-visible failure report.
type Notice struct {
	Kind     Kind
	Method   string
	Endpoint string
	Status   int    // HTTP status, only for KindHTTP
	Detail   string // server detail or underlying error text
	Text     string // localized message shown to the user
}

// String returns the localized text, falling back to an English rendering.
func (n Notice) String() string {
	if n.Text != "" {
		return n.Text
	}
	return fallbackText(n)
}

// Notifier receives notices. Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a plain function to the Notifier interface.
type NotifierFunc func(n Notice)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notice) { f(n) }

// Discard drops every notice.
var Discard Notifier = NotifierFunc(func(Notice) {})

func fallbackText(n Notice) string {
	switch n.Kind {
	case KindAuth:
		return "Authentication error. Please fully close and reopen the app."
	case KindConfig:
		return fmt.Sprintf("App configuration error (%s).", n.Detail)
	case KindHTTP:
		return fmt.Sprintf("API error (%d): %s", n.Status, n.Detail)
	case KindNetwork:
		return fmt.Sprintf("Network error: %s. Check your internet connection.", n.Detail)
	case KindProtocol:
		return fmt.Sprintf("Unexpected server response: %s", n.Detail)
	default:
		return n.Detail
	}
}
