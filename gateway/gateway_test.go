package gateway_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-badgr-client/gateway"
)

type fakeTokens struct {
	token        string
	needsRefresh bool
	refreshes    int
	refreshErr   error
}

func (f *fakeTokens) NeedsRefresh() bool { return f.needsRefresh }

func (f *fakeTokens) Authenticate(_ context.Context, _, _ string) error {
	f.refreshes++
	if f.refreshErr != nil {
		return f.refreshErr
	}
	f.needsRefresh = false
	f.token = "refreshed_token"
	return nil
}

func (f *fakeTokens) AccessToken() string { return f.token }

type recordedRequest struct {
	method string
	path   string
	query  url.Values
	header http.Header
	body   []byte
}

// newRecordingServer serves a fixed body and records every request it sees.
func newRecordingServer(t *testing.T, status int, body string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()

	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		requests = append(requests, recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.Query(),
			header: r.Header.Clone(),
			body:   raw,
		})
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

const okEnvelope = `{"result": [], "status": {"success": true}}`

func TestBearerHeaderInjected(t *testing.T) {
	srv, requests := newRecordingServer(t, http.StatusOK, okEnvelope)
	g := gateway.New(srv.URL, &fakeTokens{token: "mock_token"})

	_, err := g.Do(context.Background(), gateway.Request{Endpoint: "/v2/issuers"})
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	require.Equal(t, http.MethodGet, req.method)
	require.Equal(t, "/v2/issuers", req.path)
	require.Equal(t, "Bearer mock_token", req.header.Get("Authorization"))
}

func TestSkipAuthStripsHeader(t *testing.T) {
	srv, requests := newRecordingServer(t, http.StatusOK, okEnvelope)
	tokens := &fakeTokens{token: "mock_token", needsRefresh: true}
	g := gateway.New(srv.URL, tokens)

	_, err := g.Do(context.Background(), gateway.Request{
		Endpoint: "/v1/user/profile",
		Method:   http.MethodPost,
		Body:     map[string]string{"email": "jane@example.com"},
		SkipAuth: true,
	})
	require.NoError(t, err)

	require.Empty(t, (*requests)[0].header.Get("Authorization"))
	require.Zero(t, tokens.refreshes, "unauthenticated calls must not refresh the session")
}

func TestExpiredSessionRefreshedOnce(t *testing.T) {
	srv, requests := newRecordingServer(t, http.StatusOK, okEnvelope)
	tokens := &fakeTokens{token: "stale_token", needsRefresh: true}
	g := gateway.New(srv.URL, tokens)

	_, err := g.Do(context.Background(), gateway.Request{Endpoint: "/v2/backpack/assertions"})
	require.NoError(t, err)

	require.Equal(t, 1, tokens.refreshes)
	require.Len(t, *requests, 1)
	require.Equal(t, "Bearer refreshed_token", (*requests)[0].header.Get("Authorization"))
}

func TestRefreshFailureSurfacesWithoutCall(t *testing.T) {
	srv, requests := newRecordingServer(t, http.StatusOK, okEnvelope)
	refreshErr := errors.New("refresh token expired")
	g := gateway.New(srv.URL, &fakeTokens{needsRefresh: true, refreshErr: refreshErr})

	_, err := g.Do(context.Background(), gateway.Request{Endpoint: "/v2/issuers"})
	require.ErrorIs(t, err, refreshErr)
	require.Empty(t, *requests)
}

func TestParamsAndBodyEncoding(t *testing.T) {
	srv, requests := newRecordingServer(t, http.StatusOK, okEnvelope)
	g := gateway.New(srv.URL, &fakeTokens{token: "mock_token"})

	params := url.Values{}
	params.Set("recipient", "jane@example.com")

	_, err := g.Do(context.Background(), gateway.Request{
		Endpoint: "/v2/badgeclasses/abc/assertions",
		Method:   http.MethodPost,
		Params:   params,
		Body:     map[string]any{"notify": true},
	})
	require.NoError(t, err)

	req := (*requests)[0]
	require.Equal(t, "jane@example.com", req.query.Get("recipient"))
	require.Equal(t, "application/json", req.header.Get("Content-Type"))
	require.JSONEq(t, `{"notify": true}`, string(req.body))
}

func TestDecodeError(t *testing.T) {
	srv, _ := newRecordingServer(t, http.StatusOK, "<html>not json</html>")
	g := gateway.New(srv.URL, &fakeTokens{token: "mock_token"})

	_, err := g.Do(context.Background(), gateway.Request{Endpoint: "/v2/issuers"})
	require.ErrorIs(t, err, gateway.ErrDecode)
}

func TestErrorFieldOnFailureStatus(t *testing.T) {
	srv, _ := newRecordingServer(t, http.StatusNotFound, `{"error": "entity not found"}`)
	g := gateway.New(srv.URL, &fakeTokens{token: "mock_token"})

	_, err := g.Do(context.Background(), gateway.Request{Endpoint: "/v2/issuers/nope"})

	var apiErr *gateway.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	require.Equal(t, "entity not found", apiErr.Message)
}

func TestUnsuccessfulStatusEnvelope(t *testing.T) {
	srv, _ := newRecordingServer(t, http.StatusOK,
		`{"result": [], "status": {"success": false, "description": "issuer not editable"}}`)
	g := gateway.New(srv.URL, &fakeTokens{token: "mock_token"})

	_, err := g.Do(context.Background(), gateway.Request{Endpoint: "/v2/issuers/abc"})

	var apiErr *gateway.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "issuer not editable", apiErr.Message)
}

func TestEnvelopeResultReturned(t *testing.T) {
	srv, _ := newRecordingServer(t, http.StatusOK,
		`{"result": [{"entityType": "Issuer", "entityId": "abc"}], "status": {"success": true}}`)
	g := gateway.New(srv.URL, &fakeTokens{token: "mock_token"})

	envelope, err := g.Do(context.Background(), gateway.Request{Endpoint: "/v2/issuers/abc"})
	require.NoError(t, err)
	require.Len(t, envelope.Result, 1)

	var item map[string]any
	require.NoError(t, json.Unmarshal(envelope.Result[0], &item))
	require.Equal(t, "abc", item["entityId"])
}
