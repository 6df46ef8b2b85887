// ABOUTME: Authenticated request gateway, the only component that touches the network
// ABOUTME: Injects the session credential, shapes JSON bodies, classifies outcomes and reports failures

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/2389/delegate-panel/internal/busy"
	"github.com/2389/delegate-panel/internal/notice"
)

const (
	// DefaultCredentialHeader carries the host-supplied init data.
	DefaultCredentialHeader = "X-Telegram-Init-Data"

	// DefaultTimeout bounds a single call when no HTTP client is supplied.
	DefaultTimeout = 30 * time.Second

	// maxErrorBody caps how much of a failed response is read for its detail.
	maxErrorBody = 64 << 10
)

// Options configures a Gateway.
type Options struct {
	// ServerURL is the scheme and host of the panel, e.g. "https://bot.example.com".
	ServerURL string
	// PathPrefix is the deployment prefix joined before every /api route, e.g.
	// "/panel". Use "/" for a panel mounted at the server root; empty means
	// not configured.
	PathPrefix string
	// Credential is the opaque session credential supplied by the host shell.
	Credential string
	// CredentialHeader overrides DefaultCredentialHeader.
	CredentialHeader string

	HTTPClient *http.Client
	Timeout    time.Duration

	// RateLimit caps outgoing requests per second. Zero disables throttling.
	RateLimit float64

	Busy     busy.Indicator
	Notifier notice.Notifier
	Catalog  *notice.Catalog
	Logger   *slog.Logger
}

// Gateway issues every panel API call. A call either returns a *Result or
// nil; nil means the failure has already been reported through the Notifier.
type Gateway struct {
	serverURL  string
	prefix     string
	credential string
	header     string

	client   *http.Client
	limiter  *rate.Limiter
	busy     busy.Indicator
	notifier notice.Notifier
	catalog  *notice.Catalog
	logger   *slog.Logger
}

// New creates a Gateway. Missing credential or configuration is not an error
// here: every call re-checks its preconditions and reports them to the user.
func New(opts Options) *Gateway {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	header := opts.CredentialHeader
	if header == "" {
		header = DefaultCredentialHeader
	}

	indicator := opts.Busy
	if indicator == nil {
		indicator = busy.NewFlag(nil)
	}

	notifier := opts.Notifier
	if notifier == nil {
		notifier = notice.Discard
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Gateway{
		serverURL:  strings.TrimRight(opts.ServerURL, "/"),
		prefix:     opts.PathPrefix,
		credential: opts.Credential,
		header:     header,
		client:     client,
		limiter:    limiter,
		busy:       indicator,
		notifier:   notifier,
		catalog:    opts.Catalog,
		logger:     logger.With("component", "gateway"),
	}
}

// Call sends method to endpoint (an "/api/..." route) with an optional JSON
// body. The body is only sent for POST, PUT and DELETE.
//
// It returns nil on any failure, after reporting exactly one notice.
func (g *Gateway) Call(ctx context.Context, endpoint, method string, body any) *Result {
	g.busy.Acquire()
	defer g.busy.Release()

	if method == "" {
		method = http.MethodGet
	}
	method = strings.ToUpper(method)

	if g.credential == "" {
		g.report(notice.Notice{Kind: notice.KindAuth, Method: method, Endpoint: endpoint,
			Detail: "missing session credential"})
		return nil
	}
	if g.serverURL == "" || g.prefix == "" {
		g.report(notice.Notice{Kind: notice.KindConfig, Method: method, Endpoint: endpoint,
			Detail: "server URL or path prefix not configured"})
		return nil
	}

	var reader io.Reader
	hasBody := body != nil && carriesBody(method)
	if hasBody {
		data, err := json.Marshal(body)
		if err != nil {
			g.report(notice.Notice{Kind: notice.KindProtocol, Method: method, Endpoint: endpoint,
				Detail: fmt.Sprintf("encoding request body: %v", err)})
			return nil
		}
		reader = bytes.NewReader(data)
	}

	url := g.url(endpoint)
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		g.report(notice.Notice{Kind: notice.KindConfig, Method: method, Endpoint: endpoint,
			Detail: fmt.Sprintf("invalid request URL %q", url)})
		return nil
	}

	requestID := uuid.New().String()
	req.Header.Set(g.header, g.credential)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}

	logger := g.logger.With("method", method, "url", url, "request_id", requestID)

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			g.report(notice.Notice{Kind: notice.KindNetwork, Method: method, Endpoint: endpoint,
				Detail: err.Error()})
			return nil
		}
	}

	start := time.Now()
	logger.Debug("api call")

	resp, err := g.client.Do(req)
	if err != nil {
		logger.Debug("api call failed", "error", err, "duration", time.Since(start))
		g.report(notice.Notice{Kind: notice.KindNetwork, Method: method, Endpoint: endpoint,
			Detail: err.Error()})
		return nil
	}
	defer resp.Body.Close()

	logger = logger.With("status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := errorDetail(resp)
		logger.Debug("api error", "detail", detail)
		g.report(notice.Notice{Kind: notice.KindHTTP, Method: method, Endpoint: endpoint,
			Status: resp.StatusCode, Detail: detail})
		return nil
	}

	if resp.StatusCode == http.StatusNoContent {
		logger.Debug("api call done")
		return &Result{Status: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Debug("reading response failed", "error", err)
		g.report(notice.Notice{Kind: notice.KindNetwork, Method: method, Endpoint: endpoint,
			Detail: err.Error()})
		return nil
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		logger.Debug("api call done", "empty", true)
		return &Result{Status: resp.StatusCode}
	}

	if !json.Valid(data) {
		logger.Debug("response is not JSON")
		g.report(notice.Notice{Kind: notice.KindProtocol, Method: method, Endpoint: endpoint,
			Status: resp.StatusCode, Detail: "response body is not valid JSON"})
		return nil
	}

	logger.Debug("api call done", "bytes", len(data))
	return &Result{Status: resp.StatusCode, Body: json.RawMessage(data)}
}

// Fetch is Call followed by decoding the response into out (a pointer). An
// empty response leaves out untouched. A decode failure is reported once.
func (g *Gateway) Fetch(ctx context.Context, endpoint, method string, body, out any) bool {
	res := g.Call(ctx, endpoint, method, body)
	if res == nil {
		return false
	}
	if res.Empty() || out == nil {
		return true
	}
	if err := res.Decode(out); err != nil {
		g.logger.Debug("decoding response failed", "endpoint", endpoint, "error", err)
		g.report(notice.Notice{Kind: notice.KindProtocol, Method: strings.ToUpper(method), Endpoint: endpoint,
			Status: res.Status, Detail: err.Error()})
		return false
	}
	return true
}

// url joins the server URL, the path prefix and the endpoint.
// "/panel" + "/api/main-status" = "/panel/api/main-status".
func (g *Gateway) url(endpoint string) string {
	prefix := strings.TrimRight(g.prefix, "/")
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return g.serverURL + prefix + endpoint
}

// report is the single user-facing record of a failure; call sites only
// log at debug level.
func (g *Gateway) report(n notice.Notice) {
	n.Text = g.catalog.Message(n)
	g.notifier.Notify(n)
}

// carriesBody reports whether method may carry a JSON body. DELETE may.
func carriesBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

// errorDetail extracts {"detail": ...} from a failed response. A string
// detail is used as-is, any other JSON value is rendered compactly, and an
// unreadable body falls back to "HTTP <code>: <status text>".
func errorDetail(resp *http.Response) string {
	fallback := fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return fallback
	}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return fallback
	}

	raw := bytes.TrimSpace(payload.Detail)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return fallback
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return fallback
		}
		return s
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return fallback
	}
	return compact.String()
}
