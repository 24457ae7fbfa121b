package handlers

import (
	"encoding/json"
	"net/http"

	"merrylights-backend/internal/logger"
	"merrylights-backend/internal/middleware"
	"merrylights-backend/internal/models"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Route field limits.
const (
	maxRouteNameLen        = 100
	maxRouteDescriptionLen = 500
	maxRouteStops          = 20
)

type RouteHandler struct {
	routes RouteStore
}

func NewRouteHandler(routes RouteStore) *RouteHandler {
	return &RouteHandler{routes: routes}
}

type createRouteRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Stops       []string `json:"stops"`
}

func validateRouteFields(name, description string, stops []string) map[string]string {
	details := map[string]string{}
	if len(name) > maxRouteNameLen {
		details["name"] = "Name must be 100 characters or less"
	}
	if len(description) > maxRouteDescriptionLen {
		details["description"] = "Description must be 500 characters or less"
	}
	if len(stops) > maxRouteStops {
		details["stops"] = "Maximum 20 stops per route"
	}
	return details
}

// --- POST /routes ---

func (h *RouteHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeUnauthorized(w)
		return
	}

	var req createRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, map[string]string{"body": "Invalid JSON"})
		return
	}

	details := validateRouteFields(req.Name, req.Description, req.Stops)
	if req.Name == "" {
		details["name"] = "Name is required"
	}
	if len(req.Stops) == 0 {
		details["stops"] = "At least one stop is required"
	}
	if len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	route := &models.Route{
		Name:        req.Name,
		Description: req.Description,
		Stops:       req.Stops,
		CreatedBy:   userID,
	}
	if err := h.routes.Create(r.Context(), route); err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("route create failed")
		writeInternalError(w)
		return
	}
	writeSuccess(w, http.StatusCreated, route, "Route created!")
}

// --- GET /routes ---

func (h *RouteHandler) List(w http.ResponseWriter, r *http.Request) {
	routes, err := h.routes.List(r.Context(), 100)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("route list failed")
		writeInternalError(w)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{"routes": routes}, "")
}

// --- GET /routes/{id} ---

func (h *RouteHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeUnauthorized(w)
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeValidationError(w, map[string]string{"id": "Route ID is required"})
		return
	}

	route, err := h.routes.FindByID(r.Context(), id)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("route lookup failed")
		writeInternalError(w)
		return
	}
	if route == nil || !route.VisibleTo(userID) {
		writeNotFound(w, "Route not found")
		return
	}
	writeSuccess(w, http.StatusOK, route, "")
}

type updateRouteRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Stops       *[]string `json:"stops"`
}

// --- PUT /routes/{id} ---

// Update is owner-only: admins moderate via delete, not by editing someone
// else's route.
func (h *RouteHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeUnauthorized(w)
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeValidationError(w, map[string]string{"id": "Route ID is required"})
		return
	}

	route, err := h.routes.FindByID(r.Context(), id)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("route lookup failed")
		writeInternalError(w)
		return
	}
	if route == nil {
		writeNotFound(w, "Route not found")
		return
	}
	if route.CreatedBy != userID {
		writeForbidden(w, "You can only update your own routes")
		return
	}

	var req updateRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, map[string]string{"body": "Invalid JSON"})
		return
	}

	updates := bson.M{}
	if req.Name != nil {
		if *req.Name == "" {
			writeValidationError(w, map[string]string{"name": "Name cannot be empty"})
			return
		}
		if len(*req.Name) > maxRouteNameLen {
			writeValidationError(w, map[string]string{"name": "Name must be 100 characters or less"})
			return
		}
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		if len(*req.Description) > maxRouteDescriptionLen {
			writeValidationError(w, map[string]string{"description": "Description must be 500 characters or less"})
			return
		}
		updates["description"] = *req.Description
	}
	if req.Stops != nil {
		if len(*req.Stops) == 0 {
			writeValidationError(w, map[string]string{"stops": "At least one stop is required"})
			return
		}
		if len(*req.Stops) > maxRouteStops {
			writeValidationError(w, map[string]string{"stops": "Maximum 20 stops per route"})
			return
		}
		updates["stops"] = *req.Stops
	}
	if len(updates) == 0 {
		writeValidationError(w, map[string]string{"body": "No updatable fields provided"})
		return
	}

	updated, err := h.routes.Update(r.Context(), id, updates)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("route update failed")
		writeInternalError(w)
		return
	}
	if updated == nil {
		writeNotFound(w, "Route not found")
		return
	}
	writeSuccess(w, http.StatusOK, updated, "Route updated")
}

// --- GET /users/routes ---

func (h *RouteHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeUnauthorized(w)
		return
	}

	routes, err := h.routes.ListByCreator(r.Context(), userID, 100)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("route list failed")
		writeInternalError(w)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{"routes": routes}, "")
}

// --- DELETE /routes/{id} ---

func (h *RouteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeUnauthorized(w)
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeValidationError(w, map[string]string{"id": "Route ID is required"})
		return
	}

	route, err := h.routes.FindByID(r.Context(), id)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("route lookup failed")
		writeInternalError(w)
		return
	}
	if route == nil {
		writeNotFound(w, "Route not found")
		return
	}
	if route.CreatedBy != userID && !middleware.IsAdmin(r.Context()) {
		writeForbidden(w, "Only the route creator can delete it")
		return
	}

	if err := h.routes.SoftDelete(r.Context(), id); err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("route delete failed")
		writeInternalError(w)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{"id": id}, "Route removed")
}
