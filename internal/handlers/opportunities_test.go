package handlers

import (
	"context"
	"net/http"
	"testing"

	testutil "github.com/RuseCristian/reddit-business-ideas-explorer/internal/testing"
)

func TestOpportunityHandlers_List(t *testing.T) {
	tdb := testutil.SetupTestDB(t)
	defer tdb.CleanupTestDB(t)

	server := SetupTestServer(tdb.Queries)
	defer server.Close()
	client := testutil.NewTestClient(t, server, tdb.Queries)

	ctx := context.Background()
	if err := testutil.SeedSubreddit(ctx, tdb, "startups", 100000); err != nil {
		t.Fatalf("Failed to seed subreddit: %v", err)
	}
	if _, err := testutil.SeedOpportunity(ctx, tdb, "AI bookkeeping tool", "saas", "startups", 8.5); err != nil {
		t.Fatalf("Failed to seed opportunity: %v", err)
	}
	if _, err := testutil.SeedOpportunity(ctx, tdb, "Dog walking marketplace", "marketplace", "startups", 6.2); err != nil {
		t.Fatalf("Failed to seed opportunity: %v", err)
	}

	/* Works anonymously */
	resp, err := client.Get("/api/v1/opportunities")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	var listResp map[string]interface{}
	if err := testutil.ParseResponse(t, resp, &listResp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if count, _ := listResp["count"].(float64); count != 2 {
		t.Errorf("count = %v, want 2", listResp["count"])
	}

	/* Category filter narrows the result */
	resp, err = client.Get("/api/v1/opportunities?category=saas")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if err := testutil.ParseResponse(t, resp, &listResp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if count, _ := listResp["count"].(float64); count != 1 {
		t.Errorf("filtered count = %v, want 1", listResp["count"])
	}

	/* Min score filter */
	resp, err = client.Get("/api/v1/opportunities?min_score=7")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if err := testutil.ParseResponse(t, resp, &listResp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if count, _ := listResp["count"].(float64); count != 1 {
		t.Errorf("min_score count = %v, want 1", listResp["count"])
	}
}

func TestOpportunityHandlers_Get(t *testing.T) {
	tdb := testutil.SetupTestDB(t)
	defer tdb.CleanupTestDB(t)

	server := SetupTestServer(tdb.Queries)
	defer server.Close()
	client := testutil.NewTestClient(t, server, tdb.Queries)

	ctx := context.Background()
	id, err := testutil.SeedOpportunity(ctx, tdb, "AI bookkeeping tool", "saas", "startups", 8.5)
	if err != nil {
		t.Fatalf("Failed to seed opportunity: %v", err)
	}

	resp, err := client.Get("/api/v1/opportunities/" + id)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	var opp map[string]interface{}
	if err := testutil.ParseResponse(t, resp, &opp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if opp["title"] != "AI bookkeeping tool" {
		t.Errorf("title = %v", opp["title"])
	}

	/* Unknown but well-formed ID */
	resp, err = client.Get("/api/v1/opportunities/00000000-0000-0000-0000-000000000000")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	testutil.AssertStatus(t, resp, http.StatusNotFound)
	resp.Body.Close()

	/* Malformed ID */
	resp, err = client.Get("/api/v1/opportunities/not-a-uuid")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	testutil.AssertStatus(t, resp, http.StatusBadRequest)
	resp.Body.Close()
}

func TestOpportunityHandlers_StatsAndSubreddits(t *testing.T) {
	tdb := testutil.SetupTestDB(t)
	defer tdb.CleanupTestDB(t)

	server := SetupTestServer(tdb.Queries)
	defer server.Close()
	client := testutil.NewTestClient(t, server, tdb.Queries)

	ctx := context.Background()
	if err := testutil.SeedSubreddit(ctx, tdb, "startups", 100000); err != nil {
		t.Fatalf("Failed to seed subreddit: %v", err)
	}
	if _, err := testutil.SeedOpportunity(ctx, tdb, "AI bookkeeping tool", "saas", "startups", 8.5); err != nil {
		t.Fatalf("Failed to seed opportunity: %v", err)
	}

	resp, err := client.Get("/api/v1/opportunities/stats")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	var stats map[string]interface{}
	if err := testutil.ParseResponse(t, resp, &stats); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if total, _ := stats["total"].(float64); total != 1 {
		t.Errorf("total = %v, want 1", stats["total"])
	}

	resp, err = client.Get("/api/v1/subreddits")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	var subs map[string]interface{}
	if err := testutil.ParseResponse(t, resp, &subs); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if count, _ := subs["count"].(float64); count != 1 {
		t.Errorf("subreddit count = %v, want 1", subs["count"])
	}
}

func TestDashboardHandlers_RequireAuth(t *testing.T) {
	tdb := testutil.SetupTestDB(t)
	defer tdb.CleanupTestDB(t)

	server := SetupTestServer(tdb.Queries)
	defer server.Close()
	client := testutil.NewTestClient(t, server, tdb.Queries)

	resp, err := client.Get("/api/v1/dashboard/summary")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	testutil.AssertStatus(t, resp, http.StatusUnauthorized)
	resp.Body.Close()

	ctx := context.Background()
	if err := client.Authenticate(ctx, "dave", "password123", []string{"member"}, nil); err != nil {
		t.Fatalf("Failed to authenticate: %v", err)
	}

	resp, err = client.Get("/api/v1/dashboard/summary")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	var summary map[string]interface{}
	if err := testutil.ParseResponse(t, resp, &summary); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if _, ok := summary["total_opportunities"]; !ok {
		t.Error("Expected total_opportunities in summary")
	}

	resp, err = client.Get("/api/v1/dashboard/trends?days=7")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	var trends map[string]interface{}
	if err := testutil.ParseResponse(t, resp, &trends); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if days, _ := trends["days"].(float64); days != 7 {
		t.Errorf("days = %v, want 7", trends["days"])
	}
}
