package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"merrylights-backend/internal/logger"
	"merrylights-backend/internal/middleware"
	"merrylights-backend/internal/models"
	"merrylights-backend/internal/notify"

	"github.com/go-chi/chi/v5"
)

// SuggestionHandler runs the community submission queue: anyone signed in can
// suggest a display, moderators approve (which creates the location) or
// reject.
type SuggestionHandler struct {
	suggestions SuggestionStore
	locations   LocationWriter
	notifier    notify.Notifier
}

func NewSuggestionHandler(suggestions SuggestionStore, locations LocationWriter, notifier notify.Notifier) *SuggestionHandler {
	return &SuggestionHandler{
		suggestions: suggestions,
		locations:   locations,
		notifier:    notifier,
	}
}

type submitSuggestionRequest struct {
	Address     string   `json:"address"`
	Description string   `json:"description"`
	Photos      []string `json:"photos"`
}

// --- POST /suggestions ---

func (h *SuggestionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeUnauthorized(w)
		return
	}

	var req submitSuggestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, map[string]string{"body": "Invalid JSON"})
		return
	}

	details := map[string]string{}
	if req.Address == "" {
		details["address"] = "Address is required"
	}
	if req.Description == "" {
		details["description"] = "Description is required"
	}
	if len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	s := &models.Suggestion{
		Address:          req.Address,
		Description:      req.Description,
		Photos:           req.Photos,
		SubmittedBy:      userID,
		SubmittedByEmail: middleware.GetEmail(r.Context()),
	}
	if err := h.suggestions.Create(r.Context(), s); err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("suggestion create failed")
		writeInternalError(w)
		return
	}

	message := fmt.Sprintf("New display suggestion at %q awaiting review (%s)", s.Address, s.ID)
	go func() {
		if err := h.notifier.Publish(context.Background(), message); err != nil {
			logger.Log.Error().Err(err).Msg("moderation notification failed")
		}
	}()

	writeSuccess(w, http.StatusCreated, s, "Suggestion submitted for review!")
}

// --- GET /suggestions (admin) ---

func (h *SuggestionHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = models.SuggestionPending
	}
	switch status {
	case models.SuggestionPending, models.SuggestionApproved, models.SuggestionRejected:
	default:
		writeValidationError(w, map[string]string{"status": "Unknown status"})
		return
	}

	suggestions, err := h.suggestions.ListByStatus(r.Context(), status, 50)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("suggestion list failed")
		writeInternalError(w)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{"suggestions": suggestions}, "")
}

type approveSuggestionRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// --- POST /suggestions/{id}/approve (admin) ---

func (h *SuggestionHandler) Approve(w http.ResponseWriter, r *http.Request) {
	reviewer := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "id")
	if id == "" {
		writeValidationError(w, map[string]string{"id": "Suggestion ID is required"})
		return
	}

	var req approveSuggestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, map[string]string{"body": "Invalid JSON"})
		return
	}
	if !models.ValidCoordinates(req.Lat, req.Lng) {
		writeValidationError(w, map[string]string{"coordinates": "Latitude must be in [-90, 90], longitude in [-180, 180]"})
		return
	}

	s, err := h.suggestions.FindByID(r.Context(), id)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("suggestion lookup failed")
		writeInternalError(w)
		return
	}
	if s == nil {
		writeNotFound(w, "Suggestion not found")
		return
	}
	if s.Status != models.SuggestionPending {
		writeError(w, http.StatusConflict, "ALREADY_REVIEWED", "Suggestion has already been reviewed", nil)
		return
	}

	// Create the location before flipping the status. A failed create leaves
	// the suggestion pending so the approval can simply be retried; the
	// reverse order would strand an approved suggestion with no location.
	loc := &models.Location{
		Address:     s.Address,
		Lat:         req.Lat,
		Lng:         req.Lng,
		Description: s.Description,
		Photos:      s.Photos,
		CreatedBy:   s.SubmittedBy,
	}
	if err := h.locations.Create(r.Context(), loc); err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("location create from suggestion failed")
		writeInternalError(w)
		return
	}

	applied, err := h.suggestions.Review(r.Context(), id, models.SuggestionApproved, reviewer)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("suggestion review failed")
		writeInternalError(w)
		return
	}
	if !applied {
		// A concurrent reviewer won the pending-conditional write. Retract
		// the location we just published; their decision stands.
		if err := h.locations.SoftDelete(r.Context(), loc.ID); err != nil {
			logger.Ctx(r.Context()).Error().Err(err).Str("location_id", loc.ID).
				Msg("failed to retract location after lost review race")
		}
		writeError(w, http.StatusConflict, "ALREADY_REVIEWED", "Suggestion has already been reviewed", nil)
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]interface{}{
		"suggestionId": id,
		"location":     loc,
	}, "Suggestion approved and published!")
}

// --- POST /suggestions/{id}/reject (admin) ---

func (h *SuggestionHandler) Reject(w http.ResponseWriter, r *http.Request) {
	reviewer := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "id")
	if id == "" {
		writeValidationError(w, map[string]string{"id": "Suggestion ID is required"})
		return
	}

	s, err := h.suggestions.FindByID(r.Context(), id)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("suggestion lookup failed")
		writeInternalError(w)
		return
	}
	if s == nil {
		writeNotFound(w, "Suggestion not found")
		return
	}

	applied, err := h.suggestions.Review(r.Context(), id, models.SuggestionRejected, reviewer)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("suggestion review failed")
		writeInternalError(w)
		return
	}
	if !applied {
		writeError(w, http.StatusConflict, "ALREADY_REVIEWED", "Suggestion has already been reviewed", nil)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{"suggestionId": id}, "Suggestion rejected")
}

// --- GET /users/submissions ---

func (h *SuggestionHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeUnauthorized(w)
		return
	}

	suggestions, err := h.suggestions.ListBySubmitter(r.Context(), userID, 100)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("submission list failed")
		writeInternalError(w)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{"submissions": suggestions}, "")
}
