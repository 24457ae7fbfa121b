package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"merrylights-backend/internal/middleware"
	"merrylights-backend/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSuggestionStore struct {
	suggestion *models.Suggestion
	list       []models.Suggestion

	createErr error
	reviewOK  bool
	reviewErr error

	created       []*models.Suggestion
	reviewedWith  []string
	reviewedByIDs []string
}

func (s *fakeSuggestionStore) Create(ctx context.Context, sg *models.Suggestion) error {
	if s.createErr != nil {
		return s.createErr
	}
	sg.ID = "sug-new"
	sg.Status = models.SuggestionPending
	s.created = append(s.created, sg)
	return nil
}

func (s *fakeSuggestionStore) FindByID(ctx context.Context, id string) (*models.Suggestion, error) {
	return s.suggestion, nil
}

func (s *fakeSuggestionStore) ListByStatus(ctx context.Context, status string, limit int64) ([]models.Suggestion, error) {
	return s.list, nil
}

func (s *fakeSuggestionStore) ListBySubmitter(ctx context.Context, userID string, limit int64) ([]models.Suggestion, error) {
	return s.list, nil
}

func (s *fakeSuggestionStore) Review(ctx context.Context, id, status, reviewedBy string) (bool, error) {
	s.reviewedWith = append(s.reviewedWith, status)
	s.reviewedByIDs = append(s.reviewedByIDs, id)
	if s.reviewErr != nil {
		return false, s.reviewErr
	}
	return s.reviewOK, nil
}

type fakeLocationWriter struct {
	createErr error

	created     []*models.Location
	softDeleted []string
}

func (f *fakeLocationWriter) Create(ctx context.Context, loc *models.Location) error {
	if f.createErr != nil {
		return f.createErr
	}
	loc.ID = "loc-new"
	f.created = append(f.created, loc)
	return nil
}

func (f *fakeLocationWriter) SoftDelete(ctx context.Context, id string) error {
	f.softDeleted = append(f.softDeleted, id)
	return nil
}

type noopNotifier struct{}

func (noopNotifier) Publish(ctx context.Context, message string) error { return nil }

func newSuggestionRouter(h *SuggestionHandler, userID string) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if userID != "" {
				req = req.WithContext(middleware.WithUser(req.Context(), userID, userID+"@example.com", true))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Post("/suggestions", h.Submit)
	r.Post("/suggestions/{id}/approve", h.Approve)
	r.Post("/suggestions/{id}/reject", h.Reject)
	r.Get("/users/submissions", h.ListMine)
	return r
}

func pendingSuggestion() *models.Suggestion {
	return &models.Suggestion{
		ID:          "sug-1",
		Address:     "56 Tinsel Rd",
		Description: "Full yard display with music",
		Photos:      []string{},
		Status:      models.SuggestionPending,
		SubmittedBy: "submitter-1",
	}
}

func TestApprovePublishesLocation(t *testing.T) {
	store := &fakeSuggestionStore{suggestion: pendingSuggestion(), reviewOK: true}
	locations := &fakeLocationWriter{}
	h := NewSuggestionHandler(store, locations, noopNotifier{})
	router := newSuggestionRouter(h, "admin-1")

	req := httptest.NewRequest(http.MethodPost, "/suggestions/sug-1/approve", strings.NewReader(`{"lat":40.1,"lng":-75.2}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, locations.created, 1)
	loc := locations.created[0]
	assert.Equal(t, "56 Tinsel Rd", loc.Address)
	assert.Equal(t, "submitter-1", loc.CreatedBy, "the submitter owns the published location")
	assert.Equal(t, []string{models.SuggestionApproved}, store.reviewedWith)
	assert.Empty(t, locations.softDeleted)
}

func TestApproveAlreadyReviewed(t *testing.T) {
	reviewed := pendingSuggestion()
	reviewed.Status = models.SuggestionApproved
	store := &fakeSuggestionStore{suggestion: reviewed}
	locations := &fakeLocationWriter{}
	h := NewSuggestionHandler(store, locations, noopNotifier{})
	router := newSuggestionRouter(h, "admin-1")

	req := httptest.NewRequest(http.MethodPost, "/suggestions/sug-1/approve", strings.NewReader(`{"lat":40.1,"lng":-75.2}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	errBody := decodeBody(t, rec)["error"].(map[string]interface{})
	assert.Equal(t, "ALREADY_REVIEWED", errBody["code"])
	assert.Empty(t, locations.created, "no location for an already-reviewed suggestion")
	assert.Empty(t, store.reviewedWith)
}

func TestApproveLostReviewRaceRetractsLocation(t *testing.T) {
	// The read saw pending but a concurrent reviewer won the conditional
	// write. The location published optimistically must be retracted.
	store := &fakeSuggestionStore{suggestion: pendingSuggestion(), reviewOK: false}
	locations := &fakeLocationWriter{}
	h := NewSuggestionHandler(store, locations, noopNotifier{})
	router := newSuggestionRouter(h, "admin-1")

	req := httptest.NewRequest(http.MethodPost, "/suggestions/sug-1/approve", strings.NewReader(`{"lat":40.1,"lng":-75.2}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	require.Len(t, locations.created, 1)
	assert.Equal(t, []string{"loc-new"}, locations.softDeleted)
}

func TestApproveCreateFailureLeavesSuggestionPending(t *testing.T) {
	// Location create runs before the status flip, so a failure here leaves
	// the suggestion pending and the approval retryable.
	store := &fakeSuggestionStore{suggestion: pendingSuggestion()}
	locations := &fakeLocationWriter{createErr: errors.New("mongo down")}
	h := NewSuggestionHandler(store, locations, noopNotifier{})
	router := newSuggestionRouter(h, "admin-1")

	req := httptest.NewRequest(http.MethodPost, "/suggestions/sug-1/approve", strings.NewReader(`{"lat":40.1,"lng":-75.2}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, store.reviewedWith, "status must not flip when the location create fails")
}

func TestApproveValidatesCoordinates(t *testing.T) {
	store := &fakeSuggestionStore{suggestion: pendingSuggestion(), reviewOK: true}
	locations := &fakeLocationWriter{}
	h := NewSuggestionHandler(store, locations, noopNotifier{})
	router := newSuggestionRouter(h, "admin-1")

	req := httptest.NewRequest(http.MethodPost, "/suggestions/sug-1/approve", strings.NewReader(`{"lat":120,"lng":0}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, locations.created)
}

func TestRejectConflict(t *testing.T) {
	store := &fakeSuggestionStore{suggestion: pendingSuggestion(), reviewOK: false}
	h := NewSuggestionHandler(store, &fakeLocationWriter{}, noopNotifier{})
	router := newSuggestionRouter(h, "admin-1")

	req := httptest.NewRequest(http.MethodPost, "/suggestions/sug-1/reject", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestListMySubmissions(t *testing.T) {
	store := &fakeSuggestionStore{list: []models.Suggestion{
		{ID: "sug-2", Status: models.SuggestionApproved},
		{ID: "sug-1", Status: models.SuggestionRejected},
	}}
	h := NewSuggestionHandler(store, &fakeLocationWriter{}, noopNotifier{})
	router := newSuggestionRouter(h, "u1")

	req := httptest.NewRequest(http.MethodGet, "/users/submissions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]interface{})
	list := data["submissions"].([]interface{})
	require.Len(t, list, 2)
	assert.Equal(t, "sug-2", list[0].(map[string]interface{})["id"])
}
