package feedback

import (
	"context"
	"errors"
	"testing"

	"merrylights-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEntityStore keeps counters in memory with the same conditional-write
// semantics the Mongo repos provide.
type fakeEntityStore struct {
	ids      map[string]bool
	counters map[string]map[string]int

	existsErr  error
	adjustErr  error
	adjustCall int
}

func newFakeEntityStore(ids ...string) *fakeEntityStore {
	s := &fakeEntityStore{
		ids:      map[string]bool{},
		counters: map[string]map[string]int{},
	}
	for _, id := range ids {
		s.ids[id] = true
		s.counters[id] = map[string]int{}
	}
	return s
}

func (s *fakeEntityStore) Exists(ctx context.Context, id string) (bool, error) {
	if s.existsErr != nil {
		return false, s.existsErr
	}
	return s.ids[id], nil
}

func (s *fakeEntityStore) AdjustCounter(ctx context.Context, id, field string, delta int) (bool, error) {
	s.adjustCall++
	if s.adjustErr != nil {
		return false, s.adjustErr
	}
	if !s.ids[id] {
		return false, nil
	}
	if delta < 0 && s.counters[id][field] <= 0 {
		return false, nil
	}
	s.counters[id][field] += delta
	return true, nil
}

func (s *fakeEntityStore) counter(id, field string) int {
	return s.counters[id][field]
}

type fakeFeedbackStore struct {
	records map[string]*models.FeedbackRecord

	getErr    error
	createErr error
	deleteErr error

	// forceConflict makes the next CreateIfAbsent lose, simulating a
	// concurrent request inserting between the read and the write.
	forceConflict bool
}

func newFakeFeedbackStore() *fakeFeedbackStore {
	return &fakeFeedbackStore{records: map[string]*models.FeedbackRecord{}}
}

func (s *fakeFeedbackStore) Get(ctx context.Context, id string) (*models.FeedbackRecord, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.records[id], nil
}

func (s *fakeFeedbackStore) CreateIfAbsent(ctx context.Context, rec *models.FeedbackRecord) (bool, error) {
	if s.createErr != nil {
		return false, s.createErr
	}
	if s.forceConflict {
		s.forceConflict = false
		s.records[rec.ID] = rec
		return false, nil
	}
	if _, ok := s.records[rec.ID]; ok {
		return false, nil
	}
	s.records[rec.ID] = rec
	return true, nil
}

func (s *fakeFeedbackStore) Delete(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.records, id)
	return nil
}

func newTestEngine(entities *fakeEntityStore, records *fakeFeedbackStore) *Engine {
	e := NewEngine(records)
	e.RegisterTarget(models.TargetLocation, entities)
	e.RegisterTarget(models.TargetRoute, entities)
	return e
}

func TestToggleAddThenRemove(t *testing.T) {
	entities := newFakeEntityStore("loc-123")
	records := newFakeFeedbackStore()
	e := newTestEngine(entities, records)
	ctx := context.Background()

	result, err := e.Toggle(ctx, "u1", models.TargetLocation, "loc-123", models.FeedbackLike)
	require.NoError(t, err)
	assert.Equal(t, ActionAdded, result.Action)
	assert.True(t, result.Active)
	assert.Equal(t, 1, entities.counter("loc-123", "like_count"))
	assert.Len(t, records.records, 1)

	result, err = e.Toggle(ctx, "u1", models.TargetLocation, "loc-123", models.FeedbackLike)
	require.NoError(t, err)
	assert.Equal(t, ActionRemoved, result.Action)
	assert.False(t, result.Active)
	assert.Equal(t, 0, entities.counter("loc-123", "like_count"))
	assert.Empty(t, records.records)

	// Third call returns to the first state: toggle is its own inverse.
	result, err = e.Toggle(ctx, "u1", models.TargetLocation, "loc-123", models.FeedbackLike)
	require.NoError(t, err)
	assert.Equal(t, ActionAdded, result.Action)
	assert.True(t, result.Active)
	assert.Equal(t, 1, entities.counter("loc-123", "like_count"))
}

func TestToggleCounterNeverNegative(t *testing.T) {
	entities := newFakeEntityStore("loc-1")
	records := newFakeFeedbackStore()
	e := newTestEngine(entities, records)
	ctx := context.Background()

	// Seed a record without its increment, simulating prior drift.
	records.records["like-u1-loc-1"] = &models.FeedbackRecord{
		ID:       "like-u1-loc-1",
		TargetID: "loc-1",
		UserID:   "u1",
		Kind:     models.FeedbackLike,
	}

	result, err := e.Toggle(ctx, "u1", models.TargetLocation, "loc-1", models.FeedbackLike)
	require.NoError(t, err)
	assert.Equal(t, ActionRemoved, result.Action)
	assert.False(t, result.Active)
	assert.Equal(t, 0, entities.counter("loc-1", "like_count"))
	assert.Empty(t, records.records, "record removal is authoritative despite the skipped decrement")
}

func TestToggleLostCreateRace(t *testing.T) {
	entities := newFakeEntityStore("loc-1")
	records := newFakeFeedbackStore()
	records.forceConflict = true
	e := newTestEngine(entities, records)

	result, err := e.Toggle(context.Background(), "u1", models.TargetLocation, "loc-1", models.FeedbackLike)
	require.NoError(t, err)
	assert.Equal(t, ActionAlreadyExists, result.Action)
	assert.True(t, result.Active)
	// The concurrent winner owns the increment; the loser must not touch it.
	assert.Equal(t, 0, entities.counter("loc-1", "like_count"))
	assert.Len(t, records.records, 1, "at most one record per triple")
}

func TestToggleTargetNotFound(t *testing.T) {
	entities := newFakeEntityStore("loc-1")
	records := newFakeFeedbackStore()
	e := newTestEngine(entities, records)

	_, err := e.Toggle(context.Background(), "u1", models.TargetLocation, "nonexistent-loc", models.FeedbackLike)
	assert.ErrorIs(t, err, ErrTargetNotFound)
	assert.Empty(t, records.records, "no store writes on missing target")
	assert.Zero(t, entities.adjustCall)
}

func TestToggleInvalidKind(t *testing.T) {
	entities := newFakeEntityStore("loc-1", "route-1")
	records := newFakeFeedbackStore()
	e := newTestEngine(entities, records)
	ctx := context.Background()

	// save is a route kind, favorite a location kind
	_, err := e.Toggle(ctx, "u1", models.TargetLocation, "loc-1", models.FeedbackSave)
	assert.ErrorIs(t, err, ErrInvalidKind)

	_, err = e.Toggle(ctx, "u1", models.TargetRoute, "route-1", models.FeedbackFavorite)
	assert.ErrorIs(t, err, ErrInvalidKind)

	assert.Empty(t, records.records)
}

func TestToggleUnregisteredTarget(t *testing.T) {
	e := NewEngine(newFakeFeedbackStore())
	_, err := e.Toggle(context.Background(), "u1", models.TargetLocation, "loc-1", models.FeedbackLike)
	assert.Error(t, err)
}

func TestToggleKindsIndependent(t *testing.T) {
	entities := newFakeEntityStore("loc-1")
	records := newFakeFeedbackStore()
	e := newTestEngine(entities, records)
	ctx := context.Background()

	_, err := e.Toggle(ctx, "u1", models.TargetLocation, "loc-1", models.FeedbackLike)
	require.NoError(t, err)
	_, err = e.Toggle(ctx, "u1", models.TargetLocation, "loc-1", models.FeedbackFavorite)
	require.NoError(t, err)

	assert.Equal(t, 1, entities.counter("loc-1", "like_count"))
	assert.Equal(t, 1, entities.counter("loc-1", "favorite_count"))
	assert.Len(t, records.records, 2)

	// Removing the favorite leaves the like untouched.
	result, err := e.Toggle(ctx, "u1", models.TargetLocation, "loc-1", models.FeedbackFavorite)
	require.NoError(t, err)
	assert.Equal(t, ActionRemoved, result.Action)
	assert.Equal(t, 1, entities.counter("loc-1", "like_count"))
	assert.Equal(t, 0, entities.counter("loc-1", "favorite_count"))
}

func TestToggleUsersIndependent(t *testing.T) {
	entities := newFakeEntityStore("loc-1")
	records := newFakeFeedbackStore()
	e := newTestEngine(entities, records)
	ctx := context.Background()

	for _, user := range []string{"u1", "u2", "u3"} {
		result, err := e.Toggle(ctx, user, models.TargetLocation, "loc-1", models.FeedbackLike)
		require.NoError(t, err)
		assert.Equal(t, ActionAdded, result.Action)
	}
	assert.Equal(t, 3, entities.counter("loc-1", "like_count"))

	_, err := e.Toggle(ctx, "u2", models.TargetLocation, "loc-1", models.FeedbackLike)
	require.NoError(t, err)
	assert.Equal(t, 2, entities.counter("loc-1", "like_count"))
	assert.Len(t, records.records, 2)
}

func TestToggleStorageErrors(t *testing.T) {
	storageErr := errors.New("connection reset")

	t.Run("exists check fails", func(t *testing.T) {
		entities := newFakeEntityStore("loc-1")
		entities.existsErr = storageErr
		e := newTestEngine(entities, newFakeFeedbackStore())
		_, err := e.Toggle(context.Background(), "u1", models.TargetLocation, "loc-1", models.FeedbackLike)
		assert.ErrorIs(t, err, storageErr)
	})

	t.Run("record read fails", func(t *testing.T) {
		records := newFakeFeedbackStore()
		records.getErr = storageErr
		e := newTestEngine(newFakeEntityStore("loc-1"), records)
		_, err := e.Toggle(context.Background(), "u1", models.TargetLocation, "loc-1", models.FeedbackLike)
		assert.ErrorIs(t, err, storageErr)
	})

	t.Run("create fails", func(t *testing.T) {
		records := newFakeFeedbackStore()
		records.createErr = storageErr
		e := newTestEngine(newFakeEntityStore("loc-1"), records)
		_, err := e.Toggle(context.Background(), "u1", models.TargetLocation, "loc-1", models.FeedbackLike)
		assert.ErrorIs(t, err, storageErr)
	})

	t.Run("delete fails", func(t *testing.T) {
		records := newFakeFeedbackStore()
		records.records["like-u1-loc-1"] = &models.FeedbackRecord{ID: "like-u1-loc-1"}
		records.deleteErr = storageErr
		e := newTestEngine(newFakeEntityStore("loc-1"), records)
		_, err := e.Toggle(context.Background(), "u1", models.TargetLocation, "loc-1", models.FeedbackLike)
		assert.ErrorIs(t, err, storageErr)
	})
}
