package httpapi

import (
	"context"
	"strings"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"bakeryledger/backend/internal/domain"
)

type verifierStub struct {
	password string
}

func (v verifierStub) VerifyLoginPassword(_ context.Context, password string) bool {
	return password == v.password
}

func TestAuthManagerLoginIssuesOperatorToken(t *testing.T) {
	manager := NewAuthManager("test-secret-test-secret-test-secret", time.Hour, verifierStub{password: "counter1"})

	resp, err := manager.Login(context.Background(), domain.LoginRequest{Password: "counter1"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if strings.TrimSpace(resp.AccessToken) == "" {
		t.Fatalf("expected access token")
	}
	if _, err := time.Parse(time.RFC3339, resp.ExpiresAt); err != nil {
		t.Fatalf("expires_at is not RFC3339: %v", err)
	}

	actor, err := manager.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if actor.Username != operatorSubject || actor.Role != operatorRole {
		t.Fatalf("unexpected actor %+v", actor)
	}
}

func TestAuthManagerRejectsWrongPassword(t *testing.T) {
	manager := NewAuthManager("test-secret-test-secret-test-secret", time.Hour, verifierStub{password: "counter1"})

	for _, password := range []string{"", "   ", "counter2"} {
		if _, err := manager.Login(context.Background(), domain.LoginRequest{Password: password}); err == nil {
			t.Fatalf("expected login with %q to fail", password)
		}
	}
}

func TestParseTokenRejectsOtherSecretAndExpired(t *testing.T) {
	issuer := NewAuthManager("secret-one-secret-one-secret-one!", time.Hour, verifierStub{password: "x"})
	checker := NewAuthManager("secret-two-secret-two-secret-two!", time.Hour, verifierStub{password: "x"})

	token, err := issuer.sign(operatorSubject, operatorRole, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := checker.ParseToken(token); err == nil {
		t.Fatalf("expected token signed with another secret to be rejected")
	}

	expired, err := issuer.sign(operatorSubject, operatorRole, time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := issuer.ParseToken(expired); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestParseTokenRejectsNoneAlgorithm(t *testing.T) {
	manager := NewAuthManager("test-secret-test-secret-test-secret", time.Hour, verifierStub{password: "x"})
	claims := sessionClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   operatorSubject,
			Issuer:    tokenIssuer,
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: operatorRole,
	}
	unsigned, err := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, claims).SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("build unsigned token: %v", err)
	}
	if _, err := manager.ParseToken(unsigned); err == nil {
		t.Fatalf("expected alg=none token to be rejected")
	}
}
