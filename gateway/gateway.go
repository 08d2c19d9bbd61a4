// Package gateway wraps all API traffic of a badgr client: it injects the
// bearer header, silently refreshes an expired token before a call, and
// validates the server's response envelope, translating server-reported
// failures into typed errors.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// TokenSource supplies and refreshes the bearer token used on
// authenticated calls.
type TokenSource interface {
	// NeedsRefresh reports whether the token has expired.
	NeedsRefresh() bool
	// Authenticate refreshes the session. The gateway calls it with empty
	// credentials, which runs a refresh-token grant.
	Authenticate(ctx context.Context, username, password string) error
	// AccessToken returns the current bearer token.
	AccessToken() string
}

// Request describes one API call.
type Request struct {
	Endpoint string
	Method   string // defaults to GET
	Params   url.Values
	Body     any
	// SkipAuth suppresses the bearer header, for unauthenticated endpoints
	// such as account creation.
	SkipAuth bool
}

// Status is the success marker carried by badgr response envelopes.
type Status struct {
	Success     bool   `json:"success"`
	Description string `json:"description"`
}

// Envelope is the structured body returned by every badgr endpoint.
// Callers read Result; Status and Error are consumed during validation.
type Envelope struct {
	Result []json.RawMessage `json:"result"`
	Status *Status           `json:"status"`
	Error  json.RawMessage   `json:"error"`
}

// Gateway issues API calls for one client instance. It is not safe for
// concurrent use: a call may refresh the shared session as a side effect.
type Gateway struct {
	baseURL string
	client  *http.Client
	tokens  TokenSource
	log     zerolog.Logger
}

// Option defines a function type to modify the Gateway instance.
type Option func(*Gateway)

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(client *http.Client) Option {
	return func(g *Gateway) {
		g.client = client
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(g *Gateway) {
		g.log = log
	}
}

// New creates a Gateway for the given server and token source.
func New(baseURL string, tokens TokenSource, options ...Option) *Gateway {
	g := &Gateway{
		baseURL: baseURL,
		client:  http.DefaultClient,
		tokens:  tokens,
		log:     zerolog.Nop(),
	}

	for _, opt := range options {
		opt(g)
	}
	return g
}

// Do sends one request and returns the validated envelope. An expired
// session is refreshed exactly once before the call; if the refreshed token
// is rejected the failure surfaces to the caller, there is no retry loop.
func (g *Gateway) Do(ctx context.Context, req Request) (*Envelope, error) {
	if !req.SkipAuth && g.tokens.NeedsRefresh() {
		if err := g.tokens.Authenticate(ctx, "", ""); err != nil {
			return nil, errors.Wrap(err, "[Gateway.Do] token refresh")
		}
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return nil, errors.Wrap(err, "[Gateway.Do] encode body")
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, g.baseURL+req.Endpoint, body)
	if err != nil {
		return nil, errors.Wrap(err, "[Gateway.Do] build request")
	}
	if len(req.Params) > 0 {
		httpReq.URL.RawQuery = req.Params.Encode()
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if !req.SkipAuth {
		httpReq.Header.Set("Authorization", "Bearer "+g.tokens.AccessToken())
	}

	requestID := uuid.New().String()
	g.log.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("endpoint", req.Endpoint).
		Msg("api call")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "[Gateway.Do] send request")
	}
	defer resp.Body.Close()

	envelope, err := decodeEnvelope(resp)
	if err != nil {
		g.log.Error().
			Str("request_id", requestID).
			Int("status", resp.StatusCode).
			Err(err).
			Msg("api call failed")
		return nil, err
	}
	return envelope, nil
}

func decodeEnvelope(resp *http.Response) (*Envelope, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "[Gateway] read body")
	}

	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, errors.Wrapf(ErrDecode, "%v", err)
	}

	if resp.StatusCode >= 300 && len(envelope.Error) > 0 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: rawMessageString(envelope.Error)}
	}
	if envelope.Status != nil && !envelope.Status.Success {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: envelope.Status.Description}
	}
	return &envelope, nil
}

// rawMessageString renders an error field that may be a JSON string or any
// other JSON value.
func rawMessageString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
