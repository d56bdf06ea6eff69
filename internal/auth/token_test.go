package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTokenIssuer_IssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer("test-secret-key", 30*time.Minute)

	token, err := issuer.Issue("alice")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if token == "" {
		t.Fatal("Issue() returned empty token")
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.Subject != "alice" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "alice")
	}
}

func TestTokenIssuer_Verify_Expired(t *testing.T) {
	// TTLを負にして発行時点で期限切れのトークンを作る
	issuer := NewTokenIssuer("test-secret-key", -1*time.Minute)

	token, err := issuer.Issue("alice")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	_, err = issuer.Verify(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Verify() error = %v, want ErrTokenExpired", err)
	}
	if !errors.Is(err, ErrInvalidToken) {
		t.Error("expired error should also match ErrInvalidToken")
	}
}

func TestTokenIssuer_Verify_BadSignature(t *testing.T) {
	issuer := NewTokenIssuer("secret-a", 30*time.Minute)
	other := NewTokenIssuer("secret-b", 30*time.Minute)

	token, err := other.Issue("alice")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	_, err = issuer.Verify(token)
	if !errors.Is(err, ErrTokenSignature) {
		t.Errorf("Verify() error = %v, want ErrTokenSignature", err)
	}
}

func TestTokenIssuer_Verify_TamperedPayload(t *testing.T) {
	issuer := NewTokenIssuer("test-secret-key", 30*time.Minute)

	token, err := issuer.Issue("alice")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// ペイロード部を改ざんする
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token format: %q", token)
	}
	parts[1] = "eyJzdWIiOiJtYWxsb3J5In0"
	tampered := strings.Join(parts, ".")

	_, err = issuer.Verify(tampered)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
	}
}

func TestTokenIssuer_Verify_Malformed(t *testing.T) {
	issuer := NewTokenIssuer("test-secret-key", 30*time.Minute)

	for _, tokenString := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		_, err := issuer.Verify(tokenString)
		if !errors.Is(err, ErrTokenMalformed) {
			t.Errorf("Verify(%q) error = %v, want ErrTokenMalformed", tokenString, err)
		}
	}
}

func TestTokenIssuer_Verify_MissingSubject(t *testing.T) {
	issuer := NewTokenIssuer("test-secret-key", 30*time.Minute)

	// subject空のトークンは発行自体は成功するが検証で拒否される
	token, err := issuer.Issue("")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	_, err = issuer.Verify(token)
	if !errors.Is(err, ErrTokenNoSubject) {
		t.Errorf("Verify() error = %v, want ErrTokenNoSubject", err)
	}
}

func TestTokenIssuer_TTL(t *testing.T) {
	issuer := NewTokenIssuer("test-secret-key", 45*time.Minute)
	if issuer.TTL() != 45*time.Minute {
		t.Errorf("TTL() = %v, want %v", issuer.TTL(), 45*time.Minute)
	}
}
