package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestHMACService_RoundTripCarriesRole(t *testing.T) {
	svc := NewHMACService("secret", time.Minute)
	uid := uuid.New()

	tok, err := svc.GenerateAccessToken(uid, "ADMIN")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	claims, err := svc.ValidateToken(tok)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if claims.UserID != uid {
		t.Fatalf("expected user %s got %s", uid, claims.UserID)
	}
	if claims.Role != "ADMIN" {
		t.Fatalf("expected role ADMIN got %q", claims.Role)
	}
}

func TestHMACService_Expired(t *testing.T) {
	svc := NewHMACService("secret", time.Minute)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	tok, err := svc.GenerateAccessToken(uuid.New(), "EMPLOYER")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	svc.now = time.Now
	if _, err := svc.ValidateToken(tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired got %v", err)
	}
}

func TestHMACService_WrongSecret(t *testing.T) {
	a := NewHMACService("secret-a", time.Minute)
	b := NewHMACService("secret-b", time.Minute)

	tok, err := a.GenerateAccessToken(uuid.New(), "JOB_SEEKER")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := b.ValidateToken(tok); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid got %v", err)
	}
}

func TestHMACService_RejectsMissingRole(t *testing.T) {
	svc := NewHMACService("secret", time.Minute)
	if _, err := svc.GenerateAccessToken(uuid.New(), ""); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid got %v", err)
	}
}
