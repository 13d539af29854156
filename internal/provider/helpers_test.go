package provider_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// ---------------------------------------------------------------------------
// Helpers - request recording and transport counting
// ---------------------------------------------------------------------------

// countingTransport counts round trips before delegating to http.DefaultTransport.
type countingTransport struct {
	mu    sync.Mutex
	count int
}

func (c *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.mu.Lock()
	c.count++
	c.mu.Unlock()
	return http.DefaultTransport.RoundTrip(req)
}

func (c *countingTransport) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

func (c *countingTransport) Client() *http.Client {
	return &http.Client{Transport: c}
}

// urlTransport records full request URLs and answers every request with
// body, without touching the network.
type urlTransport struct {
	mu   sync.Mutex
	urls []string
	body any
}

func (u *urlTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	u.mu.Lock()
	u.urls = append(u.urls, req.URL.String())
	u.mu.Unlock()

	raw, err := json.Marshal(u.body)
	if err != nil {
		return nil, err
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(raw)),
		Request:    req,
	}, nil
}

func (u *urlTransport) URLs() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.urls...)
}

func (u *urlTransport) Client() *http.Client {
	return &http.Client{Transport: u}
}

// recordedRequest captures what a mock server received.
type recordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   map[string]any
}

// mockResponse is one canned reply.
type mockResponse struct {
	status int
	body   any
}

// mockServer replays responses in order, repeating the last one.
type mockServer struct {
	*httptest.Server
	mu        sync.Mutex
	requests  []recordedRequest
	responses []mockResponse
}

func newMockServer(t *testing.T, responses ...mockResponse) *mockServer {
	t.Helper()

	m := &mockServer{responses: responses}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)

		m.mu.Lock()
		idx := len(m.requests)
		m.requests = append(m.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   body,
		})
		resp := mockResponse{status: http.StatusInternalServerError, body: map[string]any{}}
		switch {
		case idx < len(m.responses):
			resp = m.responses[idx]
		case len(m.responses) > 0:
			resp = m.responses[len(m.responses)-1]
		}
		m.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.status)
		_ = json.NewEncoder(w).Encode(resp.body)
	}))
	t.Cleanup(m.Close)
	return m
}

func (m *mockServer) Requests() []recordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]recordedRequest(nil), m.requests...)
}

// closedServerURL returns the URL of a server that no longer accepts connections.
func closedServerURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}
