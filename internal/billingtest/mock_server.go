// Package billingtest provides a mock billing API server for testing
// provider clients. It simulates provider responses including errors,
// rate limits, and slow endpoints.
package billingtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// Response defines a mock response for one endpoint path.
type Response struct {
	StatusCode int
	Body       any
	Delay      time.Duration
	Headers    map[string]string
}

// Server is a mock billing API server keyed by request path.
type Server struct {
	server *httptest.Server

	mu        sync.Mutex
	responses map[string]Response
	requests  []*http.Request
}

// NewServer creates and starts a mock billing server. Callers must
// Close it.
func NewServer() *Server {
	s := &Server{responses: make(map[string]Response)}
	s.server = httptest.NewServer(http.HandlerFunc(s.handler))
	return s
}

// URL returns the server's base URL, suitable as a client BaseURL.
func (s *Server) URL() string {
	return s.server.URL
}

// Close shuts the server down.
func (s *Server) Close() {
	s.server.Close()
}

// SetResponse configures the response for a request path.
func (s *Server) SetResponse(path string, response Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[path] = response
}

// RequestCount returns the number of requests served so far.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// LastRequest returns the most recent request, or nil.
func (s *Server) LastRequest() *http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return nil
	}
	return s.requests[len(s.requests)-1]
}

func (s *Server) handler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.Clone(r.Context()))
	resp, ok := s.responses[r.URL.Path]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}

	code := resp.StatusCode
	if code == 0 {
		code = http.StatusOK
	}

	if resp.Body == nil {
		w.WriteHeader(code)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp.Body)
}
