package viewstate

import (
	"context"
	"testing"
	"time"
)

// fake repo for testing
type fakeRepo struct {
	store map[string]*ViewSession
}

func (f *fakeRepo) Create(ctx context.Context, s *ViewSession) error {
	if f.store == nil {
		f.store = map[string]*ViewSession{}
	}
	f.store[s.Token] = s
	return nil
}
func (f *fakeRepo) GetByToken(ctx context.Context, token string) (*ViewSession, error) {
	if f.store == nil {
		return nil, nil
	}
	s, ok := f.store[token]
	if !ok {
		return nil, nil
	}
	return s, nil
}
func (f *fakeRepo) UpdatePage(ctx context.Context, token string, page int, at time.Time) error {
	s, ok := f.store[token]
	if !ok {
		return ErrNotFound
	}
	s.Page = page
	s.UpdatedAt = at
	return nil
}
func (f *fakeRepo) DeleteByToken(ctx context.Context, token string) error {
	if f.store == nil {
		return nil
	}
	delete(f.store, token)
	return nil
}

func TestOpenAdvanceResume(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)
	ctx := context.Background()
	sess, err := svc.Open(ctx, "doc-1", time.Hour)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if sess.Token == "" {
		t.Fatalf("expected session token")
	}
	if sess.Page != 0 {
		t.Fatalf("expected fresh session at page 0, got %d", sess.Page)
	}
	// advance
	if err := svc.Advance(ctx, sess.Token, 7); err != nil {
		t.Fatalf("advance error: %v", err)
	}
	got, err := svc.Resume(ctx, sess.Token)
	if err != nil {
		t.Fatalf("resume error: %v", err)
	}
	if got == nil || got.Document != "doc-1" || got.Page != 7 {
		t.Fatalf("unexpected session: %v", got)
	}
	// close
	if err := svc.Close(ctx, sess.Token); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	got2, _ := svc.Resume(ctx, sess.Token)
	if got2 != nil {
		t.Fatalf("expected session removed")
	}
}

func TestResumeExpiredSessionCleansUp(t *testing.T) {
	repo := &fakeRepo{store: map[string]*ViewSession{
		"old": {Token: "old", Document: "doc-1", ExpiresAt: time.Now().UTC().Add(-time.Minute)},
	}}
	svc := NewService(repo)
	got, err := svc.Resume(context.Background(), "old")
	if err != nil {
		t.Fatalf("resume error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected expired session to be treated as missing")
	}
	if _, ok := repo.store["old"]; ok {
		t.Fatalf("expected expired session deleted")
	}
}
