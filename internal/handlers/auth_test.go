package handlers

import (
	"context"
	"net/http"
	"testing"

	testutil "github.com/RuseCristian/reddit-business-ideas-explorer/internal/testing"
)

func TestAuthHandlers_Register(t *testing.T) {
	tdb := testutil.SetupTestDB(t)
	defer tdb.CleanupTestDB(t)

	server := SetupTestServer(tdb.Queries)
	defer server.Close()
	client := testutil.NewTestClient(t, server, tdb.Queries)

	ctx := context.Background()

	tests := []struct {
		name           string
		request        map[string]interface{}
		expectedStatus int
		checkResponse  func(*testing.T, *http.Response)
	}{
		{
			name: "successful registration",
			request: map[string]interface{}{
				"username": "testuser",
				"password": "password123",
			},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp *http.Response) {
				var authResp map[string]interface{}
				if err := testutil.ParseResponse(t, resp, &authResp); err != nil {
					t.Fatalf("Failed to parse response: %v", err)
				}
				if authResp["token"] == nil {
					t.Error("Expected token in response")
				}
				if authResp["user_id"] == nil {
					t.Error("Expected user_id in response")
				}
			},
		},
		{
			name: "missing username",
			request: map[string]interface{}{
				"password": "password123",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "password too short",
			request: map[string]interface{}{
				"username": "shortpw",
				"password": "12345",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate username",
			request: map[string]interface{}{
				"username": "existing",
				"password": "password123",
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.name == "duplicate username" {
				_, err := testutil.CreateTestUser(ctx, tdb.Queries, "existing", "password123", nil, nil)
				if err != nil {
					t.Fatalf("Failed to create test user: %v", err)
				}
			}

			resp, err := client.Post("/api/v1/auth/register", tt.request)
			if err != nil {
				t.Fatalf("Request failed: %v", err)
			}
			defer resp.Body.Close()

			testutil.AssertStatus(t, resp, tt.expectedStatus)

			if tt.checkResponse != nil {
				tt.checkResponse(t, resp)
			}
		})
	}
}

func TestAuthHandlers_Login(t *testing.T) {
	tdb := testutil.SetupTestDB(t)
	defer tdb.CleanupTestDB(t)

	server := SetupTestServer(tdb.Queries)
	defer server.Close()
	client := testutil.NewTestClient(t, server, tdb.Queries)

	ctx := context.Background()
	_, err := testutil.CreateTestUser(ctx, tdb.Queries, "alice", "password123",
		[]string{"member"}, []string{"saved:read"})
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	tests := []struct {
		name           string
		request        map[string]interface{}
		expectedStatus int
	}{
		{
			name: "successful login",
			request: map[string]interface{}{
				"username": "alice",
				"password": "password123",
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "wrong password",
			request: map[string]interface{}{
				"username": "alice",
				"password": "wrongpassword",
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "unknown user",
			request: map[string]interface{}{
				"username": "nobody",
				"password": "password123",
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "missing password",
			request: map[string]interface{}{
				"username": "alice",
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := client.Post("/api/v1/auth/login", tt.request)
			if err != nil {
				t.Fatalf("Request failed: %v", err)
			}
			defer resp.Body.Close()

			testutil.AssertStatus(t, resp, tt.expectedStatus)
		})
	}
}

func TestAuthHandlers_GetCurrentUser(t *testing.T) {
	tdb := testutil.SetupTestDB(t)
	defer tdb.CleanupTestDB(t)

	server := SetupTestServer(tdb.Queries)
	defer server.Close()
	client := testutil.NewTestClient(t, server, tdb.Queries)

	ctx := context.Background()

	/* Anonymous request is rejected by the guard */
	resp, err := client.Get("/api/v1/auth/me")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	testutil.AssertStatus(t, resp, http.StatusUnauthorized)
	resp.Body.Close()

	if err := client.Authenticate(ctx, "bob", "password123",
		[]string{"member"}, []string{"saved:read", "saved:write"}); err != nil {
		t.Fatalf("Failed to authenticate: %v", err)
	}

	resp, err = client.Get("/api/v1/auth/me")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	var me map[string]interface{}
	if err := testutil.ParseResponse(t, resp, &me); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if me["username"] != "bob" {
		t.Errorf("username = %v, want bob", me["username"])
	}
	if me["user_id"] != client.UserID {
		t.Errorf("user_id = %v, want %v", me["user_id"], client.UserID)
	}
}

func TestAuthHandlers_RefreshThrottled(t *testing.T) {
	tdb := testutil.SetupTestDB(t)
	defer tdb.CleanupTestDB(t)

	server := SetupTestServer(tdb.Queries)
	defer server.Close()
	client := testutil.NewTestClient(t, server, tdb.Queries)

	ctx := context.Background()
	if err := client.Authenticate(ctx, "carol", "password123", []string{"member"}, nil); err != nil {
		t.Fatalf("Failed to authenticate: %v", err)
	}

	/* Five refreshes per hour are allowed, the sixth is throttled */
	for i := 0; i < 5; i++ {
		resp, err := client.Post("/api/v1/auth/refresh", nil)
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		testutil.AssertStatus(t, resp, http.StatusOK)
		resp.Body.Close()
	}

	resp, err := client.Post("/api/v1/auth/refresh", nil)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	testutil.AssertStatus(t, resp, http.StatusTooManyRequests)
	resp.Body.Close()
}
