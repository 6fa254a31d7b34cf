package auth

import (
	"testing"
	"time"

	"github.com/MikeMC777/inventory-api/internal/apperr"
)

func TestIssueAndParse(t *testing.T) {
	t.Parallel()

	m := NewManager("test-secret", time.Hour)
	tok, err := m.Issue(7, "ana@example.com", "ADMIN")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := m.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID != 7 || claims.Email != "ana@example.com" || claims.Role != "ADMIN" {
		t.Fatalf("claims=%+v", claims)
	}
}

func TestParse_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewManager("secret-a", time.Hour).Issue(7, "x@example.com", "USER")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	_, err = NewManager("secret-b", time.Hour).Parse(tok)
	if apperr.KindOf(err) != apperr.KindUnauthenticated {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestParse_Expired(t *testing.T) {
	t.Parallel()

	m := NewManager("test-secret", -time.Minute)
	tok, err := m.Issue(7, "x@example.com", "USER")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := m.Parse(tok); err == nil {
		t.Fatalf("expired token accepted")
	}
}

func TestParse_Garbage(t *testing.T) {
	t.Parallel()

	m := NewManager("test-secret", time.Hour)
	if _, err := m.Parse("not.a.jwt"); apperr.KindOf(err) != apperr.KindUnauthenticated {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}
