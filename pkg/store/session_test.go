package store

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestRedisSessionStoreRoundTrip(t *testing.T) {
	redis := miniredis.RunT(t)
	s := NewRedisSessionStore(redis.Addr(), "", time.Minute)

	token := "tok-1"
	if err := s.SaveToken(token, "user-1"); err != nil {
		t.Fatalf("save token: %v", err)
	}
	userID, ok, err := s.GetUserIDByToken(token)
	if err != nil || !ok || userID != "user-1" {
		t.Fatalf("lookup: id=%q ok=%v err=%v", userID, ok, err)
	}

	if err := s.DeleteSession(token); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.GetUserIDByToken(token); ok {
		t.Fatalf("deleted session should miss")
	}
}

func TestRedisSessionStoreExpiry(t *testing.T) {
	redis := miniredis.RunT(t)
	s := NewRedisSessionStore(redis.Addr(), "", time.Second)

	token := "tok-exp"
	if err := s.SaveToken(token, "user-1"); err != nil {
		t.Fatalf("save token: %v", err)
	}
	redis.FastForward(2 * time.Second)
	if _, ok, _ := s.GetUserIDByToken(token); ok {
		t.Fatalf("expired session should miss")
	}
}

func TestMemorySessionStore(t *testing.T) {
	s := NewMemorySessionStore(time.Minute)
	token := "tok-1"
	if err := s.SaveToken(token, "user-1"); err != nil {
		t.Fatalf("save token: %v", err)
	}
	userID, ok, err := s.GetUserIDByToken(token)
	if err != nil || !ok || userID != "user-1" {
		t.Fatalf("lookup: id=%q ok=%v err=%v", userID, ok, err)
	}
	if err := s.DeleteSession(token); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.GetUserIDByToken(token); ok {
		t.Fatalf("deleted session should miss")
	}
}

func TestJWTTokenManagerIssueVerify(t *testing.T) {
	m, err := NewJWTTokenManager("0123456789abcdef", time.Minute)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	token, err := m.Issue("user-1", "seller")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != "seller" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestJWTTokenManagerRejectsForeignToken(t *testing.T) {
	a, _ := NewJWTTokenManager("0123456789abcdef", time.Minute)
	b, _ := NewJWTTokenManager("fedcba9876543210", time.Minute)
	token, err := a.Issue("user-1", "buyer")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := b.Verify(token); err == nil {
		t.Fatalf("token signed with another secret must fail verification")
	}
}

func TestJWTTokenManagerRejectsShortSecret(t *testing.T) {
	if _, err := NewJWTTokenManager("short", time.Minute); err == nil {
		t.Fatalf("expected error for short secret")
	}
}
