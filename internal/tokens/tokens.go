package tokens

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/folioview/folioview/internal/config"
	"github.com/folioview/folioview/internal/viewstate"
	"github.com/folioview/folioview/pkg/middleware"
)

// ResumeClaims is what a verified resume token carries.
type ResumeClaims struct {
	SessionToken string
	Document     string
	ExpiresAt    time.Time
}

// GenerateResumeToken creates a signed JWT the viewer presents to pick a
// session back up
func GenerateResumeToken(cfg *config.Config, sess *viewstate.ViewSession, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": sess.Token,
		"doc": sess.Document,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(cfg.Sessions.JWTSecret))
}

func parseHMAC(cfg *config.Config, tokenStr string) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(cfg.Sessions.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid resume token claims")
	}
	return claims, nil
}

// ParseResumeToken verifies the signature and signing method and returns
// the session claims.
func ParseResumeToken(cfg *config.Config, tokenStr string) (*ResumeClaims, error) {
	claims, err := parseHMAC(cfg, tokenStr)
	if err != nil {
		return nil, err
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("resume token missing sub")
	}
	doc, _ := claims["doc"].(string)
	out := &ResumeClaims{SessionToken: sub, Document: doc}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

// claimsToken exposes verified claims through the middleware token interface.
type claimsToken struct {
	claims jwt.MapClaims
}

func (t *claimsToken) Claims(v interface{}) error {
	b, err := json.Marshal(t.claims)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// Verifier checks Bearer resume tokens for the HTTP middleware.
type Verifier struct {
	cfg *config.Config
}

func NewVerifier(cfg *config.Config) *Verifier { return &Verifier{cfg: cfg} }

// Verify validates raw as a resume token and returns a middleware.Token
func (v *Verifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	claims, err := parseHMAC(v.cfg, raw)
	if err != nil {
		return nil, err
	}
	return &claimsToken{claims: claims}, nil
}

// RemainingValidity reports how long until tokenStr expires, without
// verifying the signature. Used to bound revocation TTLs; returns 0 for
// unparseable or already expired tokens.
func RemainingValidity(tokenStr string) time.Duration {
	parser := jwt.NewParser()
	parsed, _, err := parser.ParseUnverified(tokenStr, jwt.MapClaims{})
	if err != nil {
		return 0
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return 0
	}
	left := time.Until(exp.Time)
	if left < 0 {
		return 0
	}
	return left
}
