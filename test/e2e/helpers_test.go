//go:build e2e

// Package e2e_test exercises a running contact directory server end to end.
// Point E2E_SERVER_URL at the server under test; tests are skipped when it
// is unreachable.
package e2e_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

// Environment variable names.
const (
	EnvServerURL = "E2E_SERVER_URL"
)

// Default configuration values.
const (
	DefaultServerURL = "http://localhost:8080"
	DefaultTimeout   = 10 * time.Second
)

// e2eServerURL returns the base URL of the server under test.
func e2eServerURL() string {
	if url := os.Getenv(EnvServerURL); url != "" {
		return url
	}
	return DefaultServerURL
}

// newHTTPClient creates an HTTP client for E2E tests.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: DefaultTimeout}
}

// skipIfServerUnavailable skips the test when the server cannot be reached.
func skipIfServerUnavailable(t *testing.T) {
	t.Helper()

	client := newHTTPClient()
	resp, err := client.Get(e2eServerURL() + "/health")
	if err != nil {
		t.Skipf("Server unavailable at %s: %v", e2eServerURL(), err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Skipf("Server not healthy at %s: status %d", e2eServerURL(), resp.StatusCode)
	}
}

// doRequest performs an HTTP request and returns status and body.
func doRequest(t *testing.T, client *http.Client, method, url string, body interface{}) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}

	return resp.StatusCode, respBody
}

// apiResponse is the generic response envelope.
type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// contactResponse is a contact as returned by the API.
type contactResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	IsFavorite bool   `json:"is_favorite"`
}

// contactRequest is a create/update payload.
type contactRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// createContact adds a contact and fails the test on any error.
func createContact(t *testing.T, client *http.Client, base string, req contactRequest) contactResponse {
	t.Helper()

	status, body := doRequest(t, client, http.MethodPost, base+"/api/v1/contacts", req)
	if status != http.StatusCreated {
		t.Fatalf("Create: expected 201, got %d. Body: %s", status, body)
	}

	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	var contact contactResponse
	if err := json.Unmarshal(resp.Data, &contact); err != nil {
		t.Fatalf("Failed to parse contact: %v", err)
	}
	return contact
}

// deleteContact removes a contact, opening its undo window.
func deleteContact(t *testing.T, client *http.Client, base, id string) {
	t.Helper()

	url := fmt.Sprintf("%s/api/v1/contacts/%s", base, id)
	status, body := doRequest(t, client, http.MethodDelete, url, nil)
	if status != http.StatusAccepted {
		t.Fatalf("Delete: expected 202, got %d. Body: %s", status, body)
	}
}
