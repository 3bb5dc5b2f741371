package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("changeme")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == "" {
		t.Fatal("HashPassword returned empty hash")
	}
	if !strings.HasPrefix(hash, "$2a$10$") {
		t.Errorf("hash %q does not use bcrypt cost 10", hash)
	}
}

func TestHashPassword_Salted(t *testing.T) {
	h1, err := HashPassword("changeme")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	h2, err := HashPassword("changeme")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password should differ")
	}
}

func TestCheckPassword_Correct(t *testing.T) {
	hash, err := HashPassword("changeme")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	valid, err := CheckPassword("changeme", hash)
	if err != nil {
		t.Fatalf("CheckPassword error: %v", err)
	}
	if !valid {
		t.Fatal("Correct password was rejected")
	}
}

func TestCheckPassword_Wrong(t *testing.T) {
	hash, err := HashPassword("changeme")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	valid, err := CheckPassword("wrongpassword", hash)
	if err != nil {
		t.Fatalf("CheckPassword error: %v", err)
	}
	if valid {
		t.Fatal("Wrong password was accepted")
	}
}

func TestCheckPassword_InvalidHash(t *testing.T) {
	valid, err := CheckPassword("changeme", "not-a-hash")
	if err == nil {
		t.Fatal("expected error for malformed hash")
	}
	if valid {
		t.Fatal("malformed hash should never validate")
	}
}

func TestNewHasher_CostBounds(t *testing.T) {
	tests := []struct {
		cost int
		want int
	}{
		{cost: 0, want: DefaultCost},
		{cost: bcrypt.MaxCost + 1, want: DefaultCost},
		{cost: bcrypt.MinCost, want: bcrypt.MinCost},
		{cost: 12, want: 12},
	}

	for _, tt := range tests {
		if got := NewHasher(tt.cost).Cost(); got != tt.want {
			t.Errorf("NewHasher(%d).Cost() = %d, want %d", tt.cost, got, tt.want)
		}
	}
}

func TestGenerateRememberToken(t *testing.T) {
	a, err := GenerateRememberToken()
	if err != nil {
		t.Fatalf("GenerateRememberToken error: %v", err)
	}
	b, err := GenerateRememberToken()
	if err != nil {
		t.Fatalf("GenerateRememberToken error: %v", err)
	}

	if len(a) != RememberTokenBytes*2 {
		t.Errorf("token length = %d, want %d", len(a), RememberTokenBytes*2)
	}
	if a == b {
		t.Error("tokens should be unique")
	}
}
