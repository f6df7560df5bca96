package helpers

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()
	signer := NewTokenSigner("secret", time.Hour)

	token, err := signer.GenerateToken("sess-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := signer.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.SessionID != "sess-1" {
		t.Fatalf("session id = %q", claims.SessionID)
	}
}

func TestValidateToken_Rejects(t *testing.T) {
	t.Parallel()
	signer := NewTokenSigner("secret", time.Hour)
	other := NewTokenSigner("other", time.Hour)

	forged, err := other.GenerateToken("sess-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	expiredSigner := NewTokenSigner("secret", time.Hour)
	expiredSigner.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredSigner.GenerateToken("sess-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	for name, token := range map[string]string{"garbage": "abc", "forged": forged, "expired": expired} {
		if _, err := signer.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestHashPhone(t *testing.T) {
	t.Parallel()
	a := HashPhone("0912345678")
	if a == "" || a == "0912345678" || len(a) != 12 {
		t.Fatalf("unexpected fingerprint %q", a)
	}
	if a != HashPhone("0912345678") {
		t.Fatal("fingerprint must be stable")
	}
	if HashPhone("") != "" {
		t.Fatal("empty phone should stay empty")
	}
}
