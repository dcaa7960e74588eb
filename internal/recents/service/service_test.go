package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/folioview/folioview/internal/recents"
	"github.com/folioview/folioview/internal/recents/store"
	"github.com/folioview/folioview/pkg/metrics"
)

type fakeStore struct {
	out      store.Outcome
	saveErr  error
	listErr  error
	records  []recents.Record
	saves    int
	inited   int
	closed   bool
	lastName string
}

func (f *fakeStore) Initialize(ctx context.Context) error { f.inited++; return nil }

func (f *fakeStore) Save(ctx context.Context, name string, payload []byte) (store.Outcome, error) {
	f.saves++
	f.lastName = name
	if f.saveErr != nil {
		return store.Outcome{}, f.saveErr
	}
	return f.out, nil
}

func (f *fakeStore) ListRecent(ctx context.Context) ([]recents.Record, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.records, nil
}

func (f *fakeStore) Close() error { f.closed = true; return nil }

func TestService_SaveCountsOutcome(t *testing.T) {
	fs := &fakeStore{out: store.Outcome{Replaced: true, Evicted: false}}
	svc := New(fs, "fake")

	before := testutil.ToFloat64(metrics.RecentsSaves.WithLabelValues("fake"))
	beforeRepl := testutil.ToFloat64(metrics.RecentsReplacements.WithLabelValues("fake"))
	beforeEvic := testutil.ToFloat64(metrics.RecentsEvictions.WithLabelValues("fake"))

	require.NoError(t, svc.Save(context.Background(), "report.pdf", []byte("P1")))
	require.Equal(t, 1, fs.saves)
	require.Equal(t, "report.pdf", fs.lastName)

	require.Equal(t, before+1, testutil.ToFloat64(metrics.RecentsSaves.WithLabelValues("fake")))
	require.Equal(t, beforeRepl+1, testutil.ToFloat64(metrics.RecentsReplacements.WithLabelValues("fake")))
	require.Equal(t, beforeEvic, testutil.ToFloat64(metrics.RecentsEvictions.WithLabelValues("fake")))
}

func TestService_SaveErrorKeepsKind(t *testing.T) {
	fs := &fakeStore{saveErr: recents.NewWriteFailed("save", errors.New("disk full"))}
	svc := New(fs, "fake")

	before := testutil.ToFloat64(metrics.RecentsSaves.WithLabelValues("fake"))

	err := svc.Save(context.Background(), "report.pdf", []byte("P1"))
	require.Error(t, err)
	require.True(t, recents.IsKind(err, recents.KindWriteFailed))
	require.Equal(t, before, testutil.ToFloat64(metrics.RecentsSaves.WithLabelValues("fake")))
}

func TestService_ListErrorCounted(t *testing.T) {
	fs := &fakeStore{listErr: recents.NewReadFailed("list", errors.New("connection reset"))}
	svc := New(fs, "fake")

	before := testutil.ToFloat64(metrics.RecentsListErrors.WithLabelValues("fake"))

	_, err := svc.ListRecent(context.Background())
	require.Error(t, err)
	require.True(t, recents.IsKind(err, recents.KindReadFailed))
	require.Equal(t, before+1, testutil.ToFloat64(metrics.RecentsListErrors.WithLabelValues("fake")))
}

func TestService_ListPassesRecordsThrough(t *testing.T) {
	fs := &fakeStore{records: []recents.Record{{ID: "1", Name: "a.pdf"}}}
	svc := New(fs, "fake")

	recs, err := svc.ListRecent(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "a.pdf", recs[0].Name)
}

func TestService_MemoryRoundTrip(t *testing.T) {
	svc := NewMemoryService(0)
	ctx := context.Background()
	require.NoError(t, svc.Initialize(ctx))
	require.NoError(t, svc.Save(ctx, "a.pdf", []byte("a")))

	recs, err := svc.ListRecent(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.NoError(t, svc.Close())
}
