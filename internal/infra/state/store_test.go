package state_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayledger/dayledger/internal/domain"
	"github.com/dayledger/dayledger/internal/infra/state"
)

var fixedNow = time.Date(2026, 5, 4, 8, 30, 0, 0, time.UTC)

func newStore(t *testing.T, backend state.Backend) *state.Store {
	t.Helper()
	return state.New(backend, state.WithClock(func() time.Time { return fixedNow }))
}

// brokenBackend fails every call.
type brokenBackend struct{}

func (brokenBackend) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("disk on fire")
}
func (brokenBackend) Put(context.Context, string, []byte) error { return errors.New("disk on fire") }
func (brokenBackend) Name() string                              { return "broken" }

// ─── Load ───────────────────────────────────────────────────────────────────

func TestStore_Load_AbsentReturnsFresh(t *testing.T) {
	s := newStore(t, state.NewMemoryBackend())

	doc, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fixedNow, doc.CurrentDayStart)
	assert.Equal(t, domain.DefaultObjectives(), doc.ObjectiveCatalog)
	assert.Equal(t, domain.DefaultActivities(), doc.ActivityCatalog)
	assert.Zero(t, doc.RollingTotal)
	assert.Empty(t, doc.History)
}

func TestStore_Load_UnparseableReturnsFresh(t *testing.T) {
	for _, raw := range []string{"{not json", "[1,2,3]", "null", `"text"`} {
		t.Run(raw, func(t *testing.T) {
			backend := state.NewMemoryBackend()
			require.NoError(t, backend.Put(context.Background(), state.DefaultKey, []byte(raw)))

			doc, err := newStore(t, backend).Load(context.Background())
			require.NoError(t, err)
			assert.Len(t, doc.ObjectiveCatalog, domain.DefaultObjectiveCount)
			assert.Equal(t, fixedNow, doc.CurrentDayStart)
		})
	}
}

func TestStore_Load_BackendErrorIsStorageUnavailable(t *testing.T) {
	_, err := newStore(t, brokenBackend{}).Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

// ─── Save ───────────────────────────────────────────────────────────────────

func TestStore_SaveThenLoad_RoundTrip(t *testing.T) {
	backend := state.NewMemoryBackend()
	s := newStore(t, backend)
	ctx := context.Background()

	doc := domain.NewDocument(fixedNow.Add(-time.Hour))
	doc.ObjectiveCatalog = []string{"Read", "Run", "Write"}
	doc.CompletedToday = []int{2, 0}
	doc.AdjustmentsToday = []domain.Adjustment{{Amount: 1.5, Reason: "snack"}}
	doc.ActivityApplicationsToday = []domain.ActivityApplication{
		{CatalogIndex: 1, Label: "10-min breathwork", Points: 1, AppliedAt: fixedNow},
	}
	doc.RollingTotal = -3
	doc.History = []domain.DayRecord{{
		ID:             "abc",
		DayStart:       fixedNow.AddDate(0, 0, -1),
		CompletedCount: 4,
		Adjustments:    []domain.Adjustment{{Amount: 2}},
		Net:            2,
	}}

	require.NoError(t, s.Save(ctx, doc))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, doc.CurrentDayStart.Equal(got.CurrentDayStart))
	assert.Equal(t, doc.ObjectiveCatalog, got.ObjectiveCatalog)
	assert.Equal(t, doc.CompletedToday, got.CompletedToday)
	assert.Equal(t, doc.AdjustmentsToday, got.AdjustmentsToday)
	assert.Equal(t, doc.RollingTotal, got.RollingTotal)
	require.Len(t, got.History, 1)
	assert.Equal(t, "abc", got.History[0].ID)
	assert.Equal(t, 4, got.History[0].CompletedCount)
	require.Len(t, got.ActivityApplicationsToday, 1)
	assert.True(t, fixedNow.Equal(got.ActivityApplicationsToday[0].AppliedAt))
}

func TestStore_Save_UsesConfiguredKey(t *testing.T) {
	backend := state.NewMemoryBackend()
	s := state.New(backend, state.WithKey("custom-key"))
	require.NoError(t, s.Save(context.Background(), domain.NewDocument(fixedNow)))

	_, ok, err := backend.Get(context.Background(), "custom-key")
	require.NoError(t, err)
	assert.True(t, ok)
	_, ok, _ = backend.Get(context.Background(), state.DefaultKey)
	assert.False(t, ok)
}

func TestStore_Save_BackendErrorIsStorageUnavailable(t *testing.T) {
	err := newStore(t, brokenBackend{}).Save(context.Background(), domain.NewDocument(fixedNow))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

func TestStore_ImplementsDocumentStore(t *testing.T) {
	var _ domain.DocumentStore = state.New(state.NewMemoryBackend())
}
