package handlers

import (
	"context"
	"net/http"
	"testing"

	testutil "github.com/RuseCristian/reddit-business-ideas-explorer/internal/testing"
)

func TestSavedHandlers_PermissionGates(t *testing.T) {
	tdb := testutil.SetupTestDB(t)
	defer tdb.CleanupTestDB(t)

	server := SetupTestServer(tdb.Queries)
	defer server.Close()
	client := testutil.NewTestClient(t, server, tdb.Queries)

	ctx := context.Background()

	/* A read-only user can list but not create */
	if err := client.Authenticate(ctx, "reader", "password123",
		[]string{"member"}, []string{"saved:read"}); err != nil {
		t.Fatalf("Failed to authenticate: %v", err)
	}

	resp, err := client.Get("/api/v1/saved")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	oppID, err := testutil.SeedOpportunity(ctx, tdb, "AI bookkeeping tool", "saas", "startups", 8.5)
	if err != nil {
		t.Fatalf("Failed to seed opportunity: %v", err)
	}

	resp, err = client.Post("/api/v1/saved", map[string]interface{}{
		"opportunity_id": oppID,
	})
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	/* Write needs both saved:read and saved:write; all-of fails here */
	testutil.AssertStatus(t, resp, http.StatusForbidden)
	resp.Body.Close()
}

func TestSavedHandlers_Lifecycle(t *testing.T) {
	tdb := testutil.SetupTestDB(t)
	defer tdb.CleanupTestDB(t)

	server := SetupTestServer(tdb.Queries)
	defer server.Close()
	client := testutil.NewTestClient(t, server, tdb.Queries)

	ctx := context.Background()
	if err := client.Authenticate(ctx, "saver", "password123",
		[]string{"member"}, []string{"saved:read", "saved:write"}); err != nil {
		t.Fatalf("Failed to authenticate: %v", err)
	}

	oppID, err := testutil.SeedOpportunity(ctx, tdb, "AI bookkeeping tool", "saas", "startups", 8.5)
	if err != nil {
		t.Fatalf("Failed to seed opportunity: %v", err)
	}

	/* Create */
	resp, err := client.Post("/api/v1/saved", map[string]interface{}{
		"opportunity_id": oppID,
		"note":           "worth a look",
	})
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	testutil.AssertStatus(t, resp, http.StatusCreated)

	var saved map[string]interface{}
	if err := testutil.ParseResponse(t, resp, &saved); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	savedID, _ := saved["id"].(string)
	if savedID == "" {
		t.Fatal("Expected saved id in response")
	}

	/* Creating against a missing opportunity fails */
	resp, err = client.Post("/api/v1/saved", map[string]interface{}{
		"opportunity_id": "00000000-0000-0000-0000-000000000000",
	})
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	testutil.AssertStatus(t, resp, http.StatusNotFound)
	resp.Body.Close()

	/* List shows the bookmark */
	resp, err = client.Get("/api/v1/saved")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	var list map[string]interface{}
	if err := testutil.ParseResponse(t, resp, &list); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if count, _ := list["count"].(float64); count != 1 {
		t.Errorf("count = %v, want 1", list["count"])
	}

	/* Another user cannot delete it */
	other := testutil.NewTestClient(t, server, tdb.Queries)
	if err := other.Authenticate(ctx, "intruder", "password123",
		[]string{"member"}, []string{"saved:read", "saved:write"}); err != nil {
		t.Fatalf("Failed to authenticate: %v", err)
	}
	resp, err = other.Delete("/api/v1/saved/" + savedID)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	testutil.AssertStatus(t, resp, http.StatusNotFound)
	resp.Body.Close()

	/* The owner can */
	resp, err = client.Delete("/api/v1/saved/" + savedID)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()
}
