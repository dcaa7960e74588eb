package tokens

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/folioview/folioview/internal/config"
	"github.com/folioview/folioview/internal/viewstate"
)

func TestGenerateResumeToken_ValidAndClaims(t *testing.T) {
	cfg := &config.Config{}
	cfg.Sessions.JWTSecret = "test-secret-32-bytes-should-be-long-enough"

	sess := &viewstate.ViewSession{Token: "sess-123", Document: "doc-1"}
	tokenStr, err := GenerateResumeToken(cfg, sess, 2*time.Minute)
	if err != nil {
		t.Fatalf("GenerateResumeToken error: %v", err)
	}

	claims, err := ParseResumeToken(cfg, tokenStr)
	if err != nil {
		t.Fatalf("failed to parse token: %v", err)
	}
	if claims.SessionToken != "sess-123" {
		t.Fatalf("unexpected sub claim: got=%v want=sess-123", claims.SessionToken)
	}
	if claims.Document != "doc-1" {
		t.Fatalf("unexpected doc claim: got=%v want=doc-1", claims.Document)
	}
}

func TestGenerateResumeToken_Expiry(t *testing.T) {
	cfg := &config.Config{}
	cfg.Sessions.JWTSecret = "another-secret-32-bytes-longgggg"
	sess := &viewstate.ViewSession{Token: "s2", Document: "d2"}
	tokenStr, err := GenerateResumeToken(cfg, sess, 1*time.Second)
	if err != nil {
		t.Fatalf("GenerateResumeToken error: %v", err)
	}
	// wait for expiry
	time.Sleep(2 * time.Second)
	if _, err := ParseResumeToken(cfg, tokenStr); err == nil {
		t.Fatalf("expected token parse to fail after expiry")
	}
}

func TestParseResumeToken_WrongSecretFails(t *testing.T) {
	cfg := &config.Config{}
	cfg.Sessions.JWTSecret = "secret-one-32-bytes-xxxxxxxxxxxxxxxx"
	sess := &viewstate.ViewSession{Token: "s3", Document: "d3"}
	tokenStr, err := GenerateResumeToken(cfg, sess, 2*time.Minute)
	if err != nil {
		t.Fatalf("GenerateResumeToken error: %v", err)
	}
	// attempt to parse with a different secret
	other := &config.Config{}
	other.Sessions.JWTSecret = "different-secret-xxxxxxxxxxxxxxxx"
	if _, err := ParseResumeToken(other, tokenStr); err == nil {
		t.Fatalf("expected parse to fail with wrong secret")
	}
}

func TestParseResumeToken_Malformed(t *testing.T) {
	cfg := &config.Config{}
	cfg.Sessions.JWTSecret = "x"
	if _, err := ParseResumeToken(cfg, "not.a.jwt"); err == nil {
		t.Fatalf("expected parse to fail for malformed token")
	}
}

// Rejected when alg=none (unsigned token)
func TestParseResumeToken_AlgNoneRejected(t *testing.T) {
	// header {"alg":"none"}
	payload := `{"sub":"s-none","exp":9999999999}`
	headerEnc := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none"}`))
	payloadEnc := base64.RawURLEncoding.EncodeToString([]byte(payload))
	tok := headerEnc + "." + payloadEnc + "."
	cfg := &config.Config{}
	cfg.Sessions.JWTSecret = "x"
	if _, err := ParseResumeToken(cfg, tok); err == nil {
		t.Fatalf("expected parse to reject alg=none token")
	}
}

// Tampering with payload must fail signature verification
func TestParseResumeToken_TamperedPayload(t *testing.T) {
	cfg := &config.Config{}
	cfg.Sessions.JWTSecret = "tamper-test-secret-32-bytes-xxxxxxx"
	sess := &viewstate.ViewSession{Token: "sess-t", Document: "doc-t"}
	tokenStr, err := GenerateResumeToken(cfg, sess, 5*time.Minute)
	if err != nil {
		t.Fatalf("GenerateResumeToken error: %v", err)
	}
	// tamper payload: replace sub value
	parts := strings.Split(tokenStr, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token parts")
	}
	payloadBytes, _ := base64.RawURLEncoding.DecodeString(parts[1])
	payloadStr := string(payloadBytes)
	payloadStr = strings.Replace(payloadStr, "sess-t", "attacker", 1)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(payloadStr))
	tampered := strings.Join(parts, ".")
	if _, err := ParseResumeToken(cfg, tampered); err == nil {
		t.Fatalf("expected signature verification to fail for tampered token")
	}
}

func TestVerifier_VerifyExposesClaims(t *testing.T) {
	cfg := &config.Config{}
	cfg.Sessions.JWTSecret = "verifier-secret-32-bytes-xxxxxxxxxx"
	sess := &viewstate.ViewSession{Token: "s-ver", Document: "d-ver"}
	tokenStr, err := GenerateResumeToken(cfg, sess, 2*time.Minute)
	if err != nil {
		t.Fatalf("GenerateResumeToken error: %v", err)
	}

	tok, err := NewVerifier(cfg).Verify(context.Background(), tokenStr)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	var claims map[string]interface{}
	if err := tok.Claims(&claims); err != nil {
		t.Fatalf("Claims error: %v", err)
	}
	if claims["sub"] != "s-ver" {
		t.Fatalf("unexpected sub claim: %v", claims["sub"])
	}

	other := &config.Config{}
	other.Sessions.JWTSecret = "some-other-secret-32-bytes-xxxxxxx"
	if _, err := NewVerifier(other).Verify(context.Background(), tokenStr); err == nil {
		t.Fatalf("expected Verify to fail with wrong secret")
	}
}

func TestRemainingValidity(t *testing.T) {
	cfg := &config.Config{}
	cfg.Sessions.JWTSecret = "validity-secret-32-bytes-xxxxxxxxxx"
	sess := &viewstate.ViewSession{Token: "s-v", Document: "d-v"}
	tokenStr, err := GenerateResumeToken(cfg, sess, 10*time.Minute)
	if err != nil {
		t.Fatalf("GenerateResumeToken error: %v", err)
	}
	left := RemainingValidity(tokenStr)
	if left <= 0 || left > 10*time.Minute {
		t.Fatalf("unexpected remaining validity: %v", left)
	}
	if got := RemainingValidity("garbage"); got != 0 {
		t.Fatalf("expected 0 for garbage token, got %v", got)
	}
}
