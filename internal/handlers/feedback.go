package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"merrylights-backend/internal/feedback"
	"merrylights-backend/internal/logger"
	"merrylights-backend/internal/middleware"
	"merrylights-backend/internal/models"

	"github.com/go-chi/chi/v5"
)

// FeedbackHandler exposes the toggle endpoints for likes, favorites and
// saves, plus the per-user status and listing endpoints built on the same
// records.
type FeedbackHandler struct {
	engine    FeedbackToggler
	feedback  FeedbackReader
	locations LocationReader
	routes    RouteReader
}

func NewFeedbackHandler(engine FeedbackToggler, feedbackRepo FeedbackReader, locations LocationReader, routes RouteReader) *FeedbackHandler {
	return &FeedbackHandler{
		engine:    engine,
		feedback:  feedbackRepo,
		locations: locations,
		routes:    routes,
	}
}

type feedbackRequest struct {
	Type string `json:"type"`
}

// toggleStatus maps a toggle outcome to its HTTP status: first-time adds are
// 201, removals and benign races 200.
func toggleStatus(result feedback.Result) int {
	if result.Action == feedback.ActionAdded {
		return http.StatusCreated
	}
	return http.StatusOK
}

// writeToggleError maps engine sentinel errors onto the error taxonomy.
func writeToggleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, feedback.ErrInvalidKind):
		writeValidationError(w, map[string]string{"type": "Unsupported feedback type"})
	case errors.Is(err, feedback.ErrTargetNotFound):
		writeNotFound(w, "Target not found")
	default:
		logger.Ctx(r.Context()).Error().Err(err).Msg("feedback toggle failed")
		writeInternalError(w)
	}
}

// --- POST /locations/{id}/feedback ---

func (h *FeedbackHandler) ToggleLocationFeedback(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeUnauthorized(w)
		return
	}

	locationID := chi.URLParam(r, "id")
	if locationID == "" {
		writeValidationError(w, map[string]string{"id": "Location ID is required"})
		return
	}

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, map[string]string{"body": "Invalid JSON"})
		return
	}
	if req.Type != string(models.FeedbackLike) {
		writeValidationError(w, map[string]string{"type": "Type must be 'like'"})
		return
	}

	result, err := h.engine.Toggle(r.Context(), userID, models.TargetLocation, locationID, models.FeedbackLike)
	if err != nil {
		writeToggleError(w, r, err)
		return
	}
	middleware.CountToggle(string(models.TargetLocation), string(models.FeedbackLike), string(result.Action))

	message := "Location liked!"
	if result.Action == feedback.ActionRemoved {
		message = "Like removed"
	}
	writeSuccess(w, toggleStatus(result), map[string]interface{}{
		"action":     result.Action,
		"liked":      result.Active,
		"locationId": locationID,
	}, message)
}

// --- POST /locations/{id}/favorite ---

func (h *FeedbackHandler) ToggleLocationFavorite(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeUnauthorized(w)
		return
	}

	locationID := chi.URLParam(r, "id")
	if locationID == "" {
		writeValidationError(w, map[string]string{"id": "Location ID is required"})
		return
	}

	result, err := h.engine.Toggle(r.Context(), userID, models.TargetLocation, locationID, models.FeedbackFavorite)
	if err != nil {
		writeToggleError(w, r, err)
		return
	}
	middleware.CountToggle(string(models.TargetLocation), string(models.FeedbackFavorite), string(result.Action))

	var message string
	switch result.Action {
	case feedback.ActionAdded:
		message = "Added to favorites!"
	case feedback.ActionRemoved:
		message = "Removed from favorites"
	case feedback.ActionAlreadyExists:
		message = "Already in favorites"
	}
	writeSuccess(w, toggleStatus(result), map[string]interface{}{
		"action":     result.Action,
		"favorited":  result.Active,
		"locationId": locationID,
	}, message)
}

// --- GET /locations/{id}/feedback/status ---

func (h *FeedbackHandler) LocationFeedbackStatus(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeUnauthorized(w)
		return
	}

	locationID := chi.URLParam(r, "id")
	if locationID == "" {
		writeValidationError(w, map[string]string{"id": "Location ID is required"})
		return
	}

	// Deterministic ids turn the status check into two point reads.
	liked, err := h.feedback.Get(r.Context(), models.FeedbackID(userID, locationID, models.FeedbackLike))
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("feedback status lookup failed")
		writeInternalError(w)
		return
	}
	favorited, err := h.feedback.Get(r.Context(), models.FeedbackID(userID, locationID, models.FeedbackFavorite))
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("feedback status lookup failed")
		writeInternalError(w)
		return
	}

	data := map[string]interface{}{
		"locationId": locationID,
		"liked":      liked != nil,
		"favorited":  favorited != nil,
	}
	if liked != nil {
		data["likedAt"] = liked.CreatedAt
	}
	writeSuccess(w, http.StatusOK, data, "")
}

// --- GET /locations/favorites ---

func (h *FeedbackHandler) ListFavoriteLocations(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeUnauthorized(w)
		return
	}

	records, err := h.feedback.ListByUser(r.Context(), userID, models.TargetLocation, models.FeedbackFavorite)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("favorites listing failed")
		writeInternalError(w)
		return
	}

	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.TargetID)
	}
	locations, err := h.locations.FindByIDs(r.Context(), ids)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("favorites listing failed")
		writeInternalError(w)
		return
	}

	// Preserve most-recently-favorited-first order from the records.
	// Soft-deleted and flagged displays are hidden here like in every other
	// listing; the favorite record stays and resurfaces if the location does.
	byID := make(map[string]models.Location, len(locations))
	for _, loc := range locations {
		byID[loc.ID] = loc
	}
	ordered := make([]models.Location, 0, len(locations))
	for _, rec := range records {
		if loc, ok := byID[rec.TargetID]; ok && loc.Status == models.LocationActive {
			ordered = append(ordered, loc)
		}
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{"locations": ordered}, "")
}

// --- POST /routes/{id}/feedback ---

func (h *FeedbackHandler) ToggleRouteFeedback(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeUnauthorized(w)
		return
	}

	routeID := chi.URLParam(r, "id")
	if routeID == "" {
		writeValidationError(w, map[string]string{"id": "Route ID is required"})
		return
	}

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, map[string]string{"body": "Invalid JSON"})
		return
	}
	if req.Type == "" {
		writeValidationError(w, map[string]string{"type": "Type must be 'like' or 'save'"})
		return
	}

	// Non-active routes accept feedback from their creator only.
	route, err := h.routes.FindByID(r.Context(), routeID)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("route lookup failed")
		writeInternalError(w)
		return
	}
	if route == nil || !route.VisibleTo(userID) {
		writeNotFound(w, "Route not found")
		return
	}

	kind := models.FeedbackKind(req.Type)
	result, err := h.engine.Toggle(r.Context(), userID, models.TargetRoute, routeID, kind)
	if err != nil {
		writeToggleError(w, r, err)
		return
	}
	middleware.CountToggle(string(models.TargetRoute), string(kind), string(result.Action))

	data := map[string]interface{}{
		"action":  result.Action,
		"routeId": routeID,
	}
	var message string
	if kind == models.FeedbackSave {
		data["saved"] = result.Active
		message = "Route saved!"
		if result.Action == feedback.ActionRemoved {
			message = "Route unsaved"
		}
	} else {
		data["liked"] = result.Active
		message = "Route liked!"
		if result.Action == feedback.ActionRemoved {
			message = "Like removed"
		}
	}
	writeSuccess(w, toggleStatus(result), data, message)
}

// --- GET /routes/{id}/feedback/status ---

func (h *FeedbackHandler) RouteFeedbackStatus(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeUnauthorized(w)
		return
	}

	routeID := chi.URLParam(r, "id")
	if routeID == "" {
		writeValidationError(w, map[string]string{"id": "Route ID is required"})
		return
	}

	liked, err := h.feedback.Get(r.Context(), models.FeedbackID(userID, routeID, models.FeedbackLike))
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("feedback status lookup failed")
		writeInternalError(w)
		return
	}
	saved, err := h.feedback.Get(r.Context(), models.FeedbackID(userID, routeID, models.FeedbackSave))
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("feedback status lookup failed")
		writeInternalError(w)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"routeId": routeID,
		"liked":   liked != nil,
		"saved":   saved != nil,
	}, "")
}

// --- GET /routes/saved ---

func (h *FeedbackHandler) ListSavedRoutes(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeUnauthorized(w)
		return
	}

	records, err := h.feedback.ListByUser(r.Context(), userID, models.TargetRoute, models.FeedbackSave)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("saved routes listing failed")
		writeInternalError(w)
		return
	}

	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.TargetID)
	}
	routes, err := h.routes.FindByIDs(r.Context(), ids)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("saved routes listing failed")
		writeInternalError(w)
		return
	}

	// Same visibility rule as the route detail endpoint: a soft-deleted route
	// stays listed for its creator only.
	byID := make(map[string]models.Route, len(routes))
	for _, rt := range routes {
		byID[rt.ID] = rt
	}
	ordered := make([]models.Route, 0, len(routes))
	for _, rec := range records {
		if rt, ok := byID[rec.TargetID]; ok && rt.VisibleTo(userID) {
			ordered = append(ordered, rt)
		}
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{"routes": ordered}, "")
}
