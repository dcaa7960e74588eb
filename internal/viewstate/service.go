package viewstate

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Service wraps repository operations with business logic
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service { return &Service{repo: r} }

// Open stores a new view session for a document and returns it. The
// session starts at page 0 and expires after ttl.
func (s *Service) Open(ctx context.Context, documentID string, ttl time.Duration) (*ViewSession, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sess := &ViewSession{
		Token:     hex.EncodeToString(b),
		Document:  documentID,
		Page:      0,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Advance records the page the viewer is on.
func (s *Service) Advance(ctx context.Context, token string, page int) error {
	return s.repo.UpdatePage(ctx, token, page, time.Now().UTC())
}

// Resume returns the session if the token is valid and not expired
func (s *Service) Resume(ctx context.Context, token string) (*ViewSession, error) {
	sess, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}
	if time.Now().UTC().After(sess.ExpiresAt) {
		// cleanup expired session
		_ = s.repo.DeleteByToken(ctx, token)
		return nil, nil
	}
	return sess, nil
}

// Close deletes the session for token.
func (s *Service) Close(ctx context.Context, token string) error {
	return s.repo.DeleteByToken(ctx, token)
}
