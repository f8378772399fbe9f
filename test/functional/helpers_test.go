//go:build functional

// Package functional provides black-box tests for the contact directory
// server, run in-process against an ephemeral port.
package functional

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"contactbook/internal/config"
	"contactbook/internal/notify"
	"contactbook/internal/server"
	"contactbook/internal/store"
)

// Environment variable names for test configuration.
const (
	EnvTestServerHost = "TEST_SERVER_HOST"
	EnvTestUndoWindow = "TEST_UNDO_WINDOW"
)

// Default test configuration values.
const (
	DefaultTestHost        = "localhost"
	DefaultTestTimeout     = 30 * time.Second
	DefaultRequestTimeout  = 5 * time.Second
	DefaultShutdownTimeout = 5 * time.Second
	DefaultTestUndoWindow  = 150 * time.Millisecond
	DefaultNotificationTTL = 50 * time.Millisecond
)

// testUndoWindow returns the undo window used by the test server.
func testUndoWindow() time.Duration {
	if val := os.Getenv(EnvTestUndoWindow); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return DefaultTestUndoWindow
}

// testHost returns the host used by the test server.
func testHost() string {
	if host := os.Getenv(EnvTestServerHost); host != "" {
		return host
	}
	return DefaultTestHost
}

// TestServer wraps the server for testing purposes.
type TestServer struct {
	Server   *server.Server
	BaseURL  string
	WSURL    string
	Port     int
	listener net.Listener
	t        *testing.T
	mu       sync.Mutex
	started  bool
}

// NewTestServer creates a new test server instance with a fresh engine.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	host := testHost()

	// Find an available port
	listener, err := net.Listen("tcp", fmt.Sprintf("%s:0", host))
	if err != nil {
		t.Fatalf("Failed to find available port: %v", err)
	}

	port := listener.Addr().(*net.TCPAddr).Port

	cfg := &config.Config{
		ServerPort:      port,
		LogLevel:        "error",
		ShutdownTimeout: DefaultShutdownTimeout,
		MetricsEnabled:  false,
		UndoWindow:      testUndoWindow(),
		NotificationTTL: DefaultNotificationTTL,
	}

	// Use nop logger for tests to reduce noise
	logger := zap.NewNop()

	scheduler := notify.NewScheduler()
	hub := notify.NewHub(scheduler, logger)
	directory := store.NewDirectory(scheduler, hub, logger,
		cfg.UndoWindow, cfg.NotificationTTL, nil)

	srv := server.New(cfg, logger, directory, hub, scheduler)

	return &TestServer{
		Server:   srv,
		BaseURL:  fmt.Sprintf("http://%s:%d", host, port),
		WSURL:    fmt.Sprintf("ws://%s:%d", host, port),
		Port:     port,
		listener: listener,
		t:        t,
	}
}

// Start starts the test server.
func (ts *TestServer) Start() {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.started {
		return
	}

	// Close the listener we used to find the port
	ts.listener.Close()

	go func() {
		if err := ts.Server.Start(); err != nil && err != http.ErrServerClosed {
			ts.t.Logf("Server error: %v", err)
		}
	}()

	ts.waitForReady()
	ts.started = true
}

// waitForReady waits for the server to be ready to accept connections.
func (ts *TestServer) waitForReady() {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTestTimeout)
	defer cancel()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			ts.t.Fatalf("Server did not become ready within timeout")
		case <-ticker.C:
			resp, err := http.Get(ts.BaseURL + "/health")
			if err == nil {
				resp.Body.Close()
				if resp.StatusCode == http.StatusOK {
					return
				}
			}
		}
	}
}

// Stop stops the test server.
func (ts *TestServer) Stop() {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if !ts.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()

	if err := ts.Server.Shutdown(ctx); err != nil {
		ts.t.Logf("Server shutdown error: %v", err)
	}

	ts.started = false
}

// HTTPClient provides a configured HTTP client for tests.
type HTTPClient struct {
	client  *http.Client
	baseURL string
	t       *testing.T
}

// NewHTTPClient creates a new HTTP client for testing.
func NewHTTPClient(t *testing.T, baseURL string) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: DefaultRequestTimeout,
		},
		baseURL: baseURL,
		t:       t,
	}
}

// Response represents an HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Do executes an HTTP request and returns the response.
func (c *HTTPClient) Do(ctx context.Context, method, path string, body interface{}) (*Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       respBody,
	}, nil
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request.
func (c *HTTPClient) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

// Put performs a PUT request.
func (c *HTTPClient) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, body)
}

// Delete performs a DELETE request.
func (c *HTTPClient) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil)
}

// APIResponse represents a generic API response structure.
type APIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ErrorResponse represents an error response structure.
type ErrorResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ContactResponse represents a contact in API responses.
type ContactResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Location   *string `json:"location,omitempty"`
	Address    *string `json:"address,omitempty"`
	Birthday   *string `json:"birthday,omitempty"`
	IsFavorite bool    `json:"is_favorite"`
}

// ContactRequest represents a create/update contact payload.
type ContactRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Phone    string  `json:"phone"`
	Location *string `json:"location,omitempty"`
	Address  *string `json:"address,omitempty"`
	Birthday *string `json:"birthday,omitempty"`
}

// ParseAPIResponse parses an API response from bytes.
func ParseAPIResponse(body []byte) (*APIResponse, error) {
	var resp APIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse API response: %w", err)
	}
	return &resp, nil
}

// ParseErrorResponse parses an error response from bytes.
func ParseErrorResponse(body []byte) (*ErrorResponse, error) {
	var resp ErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse error response: %w", err)
	}
	return &resp, nil
}

// ParseContact parses a contact from API response data.
func ParseContact(data json.RawMessage) (*ContactResponse, error) {
	var contact ContactResponse
	if err := json.Unmarshal(data, &contact); err != nil {
		return nil, fmt.Errorf("failed to parse contact: %w", err)
	}
	return &contact, nil
}

// ParseContacts parses a list of contacts from API response data.
func ParseContacts(data json.RawMessage) ([]ContactResponse, error) {
	// Handle empty or nil data (empty list case)
	if len(data) == 0 || string(data) == "null" {
		return []ContactResponse{}, nil
	}

	var contacts []ContactResponse
	if err := json.Unmarshal(data, &contacts); err != nil {
		return nil, fmt.Errorf("failed to parse contacts: %w", err)
	}
	return contacts, nil
}

// AssertStatusCode asserts that the response has the expected status code.
func AssertStatusCode(t *testing.T, resp *Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("Expected status code %d, got %d. Body: %s", expected, resp.StatusCode, string(resp.Body))
	}
}

// AssertSuccess asserts that the API response indicates success.
func AssertSuccess(t *testing.T, apiResp *APIResponse) {
	t.Helper()
	if !apiResp.Success {
		t.Errorf("Expected success=true, got false. Error: %s", apiResp.Error)
	}
}

// AssertViewOrder asserts the names in the view, in order.
func AssertViewOrder(t *testing.T, contacts []ContactResponse, want ...string) {
	t.Helper()
	if len(contacts) != len(want) {
		t.Fatalf("View has %d contacts, want %d: %+v", len(contacts), len(want), contacts)
	}
	for i, name := range want {
		if contacts[i].Name != name {
			names := make([]string, 0, len(contacts))
			for _, c := range contacts {
				names = append(names, c.Name)
			}
			t.Fatalf("View order = %v, want %v", names, want)
		}
	}
}

// createContact adds a contact and returns the created record.
func createContact(t *testing.T, client *HTTPClient, req ContactRequest) *ContactResponse {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), DefaultRequestTimeout)
	defer cancel()

	resp, err := client.Post(ctx, "/api/v1/contacts", req)
	if err != nil {
		t.Fatalf("Create request failed: %v", err)
	}
	AssertStatusCode(t, resp, http.StatusCreated)

	apiResp, err := ParseAPIResponse(resp.Body)
	if err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	AssertSuccess(t, apiResp)

	contact, err := ParseContact(apiResp.Data)
	if err != nil {
		t.Fatalf("Failed to parse contact: %v", err)
	}
	return contact
}

// fetchView returns the current derived view.
func fetchView(t *testing.T, client *HTTPClient, query string) []ContactResponse {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), DefaultRequestTimeout)
	defer cancel()

	resp, err := client.Get(ctx, "/api/v1/contacts"+query)
	if err != nil {
		t.Fatalf("View request failed: %v", err)
	}
	AssertStatusCode(t, resp, http.StatusOK)

	apiResp, err := ParseAPIResponse(resp.Body)
	if err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	AssertSuccess(t, apiResp)

	contacts, err := ParseContacts(apiResp.Data)
	if err != nil {
		t.Fatalf("Failed to parse contacts: %v", err)
	}
	return contacts
}
