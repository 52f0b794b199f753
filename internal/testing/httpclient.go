package testing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/db"
	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/identity"
)

// TestClient provides an HTTP client for testing with authentication
type TestClient struct {
	Server   *httptest.Server
	Queries  *db.Queries
	Token    string
	UserID   string
	Username string
}

// NewTestClient creates a test client around an already-built server
func NewTestClient(t *testing.T, server *httptest.Server, queries *db.Queries) *TestClient {
	t.Helper()
	return &TestClient{
		Server:  server,
		Queries: queries,
	}
}

// Authenticate creates a test user with the given grants and stores its token
func (tc *TestClient) Authenticate(ctx context.Context, username, password string, roles, permissions []string) error {
	user, err := CreateTestUser(ctx, tc.Queries, username, password, roles, permissions)
	if err != nil {
		return err
	}

	token, err := identity.GenerateToken(user.ID, user.Username, user.Roles, user.Permissions)
	if err != nil {
		return err
	}

	tc.Token = token
	tc.UserID = user.ID
	tc.Username = user.Username

	return nil
}

// AuthenticateAsAdmin creates an admin user and stores its token
func (tc *TestClient) AuthenticateAsAdmin(ctx context.Context, username, password string) error {
	return tc.Authenticate(ctx, username, password,
		[]string{"admin"}, []string{"saved:read", "saved:write"})
}

// Do performs an HTTP request
func (tc *TestClient) Do(method, path string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, tc.Server.URL+path, reqBody)
	if err != nil {
		return nil, err
	}

	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if tc.Token != "" {
		req.Header.Set("Authorization", "Bearer "+tc.Token)
	}

	return http.DefaultClient.Do(req)
}

// Get performs a GET request
func (tc *TestClient) Get(path string) (*http.Response, error) {
	return tc.Do("GET", path, nil)
}

// Post performs a POST request
func (tc *TestClient) Post(path string, body interface{}) (*http.Response, error) {
	return tc.Do("POST", path, body)
}

// Delete performs a DELETE request
func (tc *TestClient) Delete(path string) (*http.Response, error) {
	return tc.Do("DELETE", path, nil)
}

// ParseResponse parses a JSON response
func ParseResponse(t *testing.T, resp *http.Response, v interface{}) error {
	t.Helper()

	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(v)
}

// AssertStatus asserts the response status code
func AssertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()

	if resp.StatusCode != expected {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status %d, got %d. Body: %s", expected, resp.StatusCode, string(body))
	}
}
