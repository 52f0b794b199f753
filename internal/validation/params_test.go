package validation

import (
	"net/url"
	"testing"

	"github.com/google/uuid"
)

func TestValidateUUID(t *testing.T) {
	if err := ValidateUUID("id", uuid.New().String()); err != nil {
		t.Errorf("valid UUID rejected: %v", err)
	}

	err := ValidateUUID("id", "not-a-uuid")
	if err == nil {
		t.Fatal("invalid UUID accepted")
	}
	verr, ok := err.(*Error)
	if !ok {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if verr.Field != "id" {
		t.Errorf("Field = %q, want id", verr.Field)
	}
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", 20, 0},
		{"explicit", "limit=50&offset=10", 50, 10},
		{"limit clamped high", "limit=500", 100, 0},
		{"limit clamped low", "limit=0", 1, 0},
		{"negative offset ignored", "offset=-5", 20, 0},
		{"garbage ignored", "limit=abc&offset=xyz", 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, _ := url.ParseQuery(tt.query)
			p := ParsePagination(values)
			if p.Limit != tt.wantLimit || p.Offset != tt.wantOffset {
				t.Errorf("ParsePagination(%q) = %+v, want limit %d offset %d",
					tt.query, p, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestParseFloat(t *testing.T) {
	values, _ := url.ParseQuery("min_score=7.5&bad=abc")

	if got := ParseFloat(values, "min_score"); got != 7.5 {
		t.Errorf("ParseFloat(min_score) = %v, want 7.5", got)
	}
	if got := ParseFloat(values, "bad"); got != 0 {
		t.Errorf("ParseFloat(bad) = %v, want 0", got)
	}
	if got := ParseFloat(values, "missing"); got != 0 {
		t.Errorf("ParseFloat(missing) = %v, want 0", got)
	}
}
