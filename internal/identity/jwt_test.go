package identity

import (
	"testing"
)

func TestGenerateAndValidateToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key")

	token, err := GenerateToken("user-123", "alice", []string{"member"}, []string{"saved:read"})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	if claims.UserID != "user-123" {
		t.Errorf("UserID = %q, want %q", claims.UserID, "user-123")
	}
	if claims.Username != "alice" {
		t.Errorf("Username = %q, want %q", claims.Username, "alice")
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "member" {
		t.Errorf("Roles = %v, want [member]", claims.Roles)
	}
	if len(claims.Permissions) != 1 || claims.Permissions[0] != "saved:read" {
		t.Errorf("Permissions = %v, want [saved:read]", claims.Permissions)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-one")
	token, err := GenerateToken("user-123", "alice", nil, nil)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	t.Setenv("JWT_SECRET", "secret-two")
	if _, err := ValidateToken(token); err == nil {
		t.Error("token signed with a different secret should not validate")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key")

	if _, err := ValidateToken("not-a-token"); err == nil {
		t.Error("garbage token should not validate")
	}
}

func TestGenerateTokenRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := GenerateToken("user-123", "alice", nil, nil); err == nil {
		t.Error("expected error when JWT_SECRET is unset")
	}
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"bearer prefix", "Bearer abc.def.ghi", "abc.def.ghi", false},
		{"case insensitive prefix", "bearer abc.def.ghi", "abc.def.ghi", false},
		{"bare token", "abc.def.ghi", "abc.def.ghi", false},
		{"empty", "", "", true},
		{"too many parts", "Bearer abc def", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractToken(tt.header)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractToken(%q) error = %v, wantErr %v", tt.header, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ExtractToken(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}
