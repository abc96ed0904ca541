package auth

import (
	"context"
	"strings"
	"testing"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret")

	token, err := tm.Issue(Identity{ID: 42, Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	id, err := tm.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id.ID != 42 || id.Email != "alice@example.com" {
		t.Errorf("unexpected identity %+v", id)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret")

	if _, err := tm.Verify("not-a-token"); err != ErrUnauthenticated {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a")
	verifier := NewTokenManager("secret-b")

	token, err := issuer.Issue(Identity{ID: 1, Email: "a@example.com"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := verifier.Verify(token); err != ErrUnauthenticated {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	tm := NewTokenManager("test-secret")

	token, err := tm.Issue(Identity{ID: 1, Email: "a@example.com"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected three token segments, got %d", len(parts))
	}
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	if _, err := tm.Verify(tampered); err != ErrUnauthenticated {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAnonymousContext(t *testing.T) {
	ac := Anonymous()
	if ac.IsAuthenticated() {
		t.Error("anonymous context reports authenticated")
	}
	if _, err := ac.Identity(); err != ErrUnauthenticated {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthenticatedContext(t *testing.T) {
	ac := Authenticated(Identity{ID: 7, Email: "bob@example.com"})
	if !ac.IsAuthenticated() {
		t.Error("authenticated context reports anonymous")
	}
	id, err := ac.Identity()
	if err != nil {
		t.Fatalf("Identity: %v", err)
	}
	if id.ID != 7 || id.Email != "bob@example.com" {
		t.Errorf("unexpected identity %+v", id)
	}
}

func TestFromContextDefaultsToAnonymous(t *testing.T) {
	ac := FromContext(context.Background())
	if ac.IsAuthenticated() {
		t.Error("expected anonymous default")
	}
}

func TestContextRoundTrip(t *testing.T) {
	want := Identity{ID: 3, Email: "carol@example.com"}
	ctx := NewContext(context.Background(), Authenticated(want))

	got, err := FromContext(ctx).Identity()
	if err != nil {
		t.Fatalf("Identity: %v", err)
	}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := CheckPassword(hash, "hunter2"); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Error("wrong password accepted")
	}
}
