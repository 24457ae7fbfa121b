package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"merrylights-backend/internal/logger"
	"merrylights-backend/internal/middleware"
	"merrylights-backend/internal/models"
	"merrylights-backend/internal/notify"
	"merrylights-backend/internal/repository"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Locations with this many reports get pulled from public listings.
const reportThreshold = 3

const maxListLimit = 500

type LocationHandler struct {
	locations *repository.LocationRepo
	reports   *repository.ReportRepo
	notifier  notify.Notifier
}

func NewLocationHandler(locations *repository.LocationRepo, reports *repository.ReportRepo, notifier notify.Notifier) *LocationHandler {
	return &LocationHandler{
		locations: locations,
		reports:   reports,
		notifier:  notifier,
	}
}

type createLocationRequest struct {
	Address     string   `json:"address"`
	Lat         float64  `json:"lat"`
	Lng         float64  `json:"lng"`
	Description string   `json:"description"`
	Photos      []string `json:"photos"`
}

// --- POST /locations ---

func (h *LocationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeUnauthorized(w)
		return
	}

	var req createLocationRequest
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
	if !models.ValidCoordinates(req.Lat, req.Lng) {
		details["coordinates"] = "Latitude must be in [-90, 90], longitude in [-180, 180]"
	}
	if len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	loc := &models.Location{
		Address:     req.Address,
		Lat:         req.Lat,
		Lng:         req.Lng,
		Description: req.Description,
		Photos:      req.Photos,
		CreatedBy:   userID,
	}
	if err := h.locations.Create(r.Context(), loc); err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("location create failed")
		writeInternalError(w)
		return
	}

	writeSuccess(w, http.StatusCreated, loc, "Location added!")
}

// --- GET /locations ---

func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = models.LocationActive
	}
	switch status {
	case models.LocationActive, models.LocationInactive, models.LocationFlagged:
	default:
		writeValidationError(w, map[string]string{"status": "Unknown status"})
		return
	}

	sortByLikes := r.URL.Query().Get("sort") == "likes"

	limit := int64(maxListLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			writeValidationError(w, map[string]string{"limit": "Limit must be a positive integer"})
			return
		}
		if parsed < limit {
			limit = parsed
		}
	}

	locations, err := h.locations.List(r.Context(), status, sortByLikes, limit)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("location list failed")
		writeInternalError(w)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{"locations": locations}, "")
}

// --- GET /locations/{id} ---

func (h *LocationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeValidationError(w, map[string]string{"id": "Location ID is required"})
		return
	}

	loc, err := h.locations.FindByID(r.Context(), id)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("location lookup failed")
		writeInternalError(w)
		return
	}
	if loc == nil {
		writeNotFound(w, "Location not found")
		return
	}
	writeSuccess(w, http.StatusOK, loc, "")
}

type updateLocationRequest struct {
	Address     *string   `json:"address"`
	Lat         *float64  `json:"lat"`
	Lng         *float64  `json:"lng"`
	Description *string   `json:"description"`
	Photos      *[]string `json:"photos"`
	Status      *string   `json:"status"`
}

// --- PUT /locations/{id} (admin) ---

func (h *LocationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeValidationError(w, map[string]string{"id": "Location ID is required"})
		return
	}

	var req updateLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, map[string]string{"body": "Invalid JSON"})
		return
	}

	updates := bson.M{}
	if req.Address != nil {
		if *req.Address == "" {
			writeValidationError(w, map[string]string{"address": "Address cannot be empty"})
			return
		}
		updates["address"] = *req.Address
	}
	if req.Lat != nil || req.Lng != nil {
		if req.Lat == nil || req.Lng == nil || !models.ValidCoordinates(*req.Lat, *req.Lng) {
			writeValidationError(w, map[string]string{"coordinates": "Both lat and lng must be provided and in range"})
			return
		}
		updates["lat"] = *req.Lat
		updates["lng"] = *req.Lng
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Photos != nil {
		updates["photos"] = *req.Photos
	}
	if req.Status != nil {
		switch *req.Status {
		case models.LocationActive, models.LocationInactive, models.LocationFlagged:
			updates["status"] = *req.Status
		default:
			writeValidationError(w, map[string]string{"status": "Unknown status"})
			return
		}
	}
	if len(updates) == 0 {
		writeValidationError(w, map[string]string{"body": "No updatable fields provided"})
		return
	}

	loc, err := h.locations.Update(r.Context(), id, updates)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("location update failed")
		writeInternalError(w)
		return
	}
	if loc == nil {
		writeNotFound(w, "Location not found")
		return
	}
	writeSuccess(w, http.StatusOK, loc, "Location updated")
}

// --- DELETE /locations/{id} (admin) ---

func (h *LocationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeValidationError(w, map[string]string{"id": "Location ID is required"})
		return
	}

	loc, err := h.locations.FindByID(r.Context(), id)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("location lookup failed")
		writeInternalError(w)
		return
	}
	if loc == nil {
		writeNotFound(w, "Location not found")
		return
	}

	if err := h.locations.SoftDelete(r.Context(), id); err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("location delete failed")
		writeInternalError(w)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{"id": id}, "Location removed")
}

type reportRequest struct {
	Reason string `json:"reason"`
}

// --- POST /locations/{id}/report ---

func (h *LocationHandler) Report(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeUnauthorized(w)
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeValidationError(w, map[string]string{"id": "Location ID is required"})
		return
	}

	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req.Reason = ""
	}
	if req.Reason == "" {
		req.Reason = "No lights visible"
	}

	loc, err := h.locations.FindByID(r.Context(), id)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("location lookup failed")
		writeInternalError(w)
		return
	}
	if loc == nil {
		writeNotFound(w, "Location not found")
		return
	}

	if err := h.reports.Create(r.Context(), &models.Report{
		LocationID: id,
		UserID:     userID,
		Reason:     req.Reason,
	}); err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("report create failed")
		writeInternalError(w)
		return
	}

	newCount, err := h.locations.IncrementReportCount(r.Context(), id)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("report count increment failed")
		writeInternalError(w)
		return
	}

	flagged := false
	if newCount >= reportThreshold && loc.Status == models.LocationActive {
		flagged, err = h.locations.FlagIfActive(r.Context(), id)
		if err != nil {
			logger.Ctx(r.Context()).Error().Err(err).Msg("location flag failed")
			writeInternalError(w)
			return
		}
		if flagged {
			message := fmt.Sprintf("Location %q (%s) flagged after %d reports", loc.Address, id, newCount)
			go func() {
				if err := h.notifier.Publish(context.Background(), message); err != nil {
					logger.Log.Error().Err(err).Msg("moderation notification failed")
				}
			}()
		}
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"reportCount": newCount,
		"flagged":     flagged,
	}, "Report submitted. Thank you for helping keep our data accurate!")
}

// --- GET /locations/{id}/reports (admin) ---

func (h *LocationHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeValidationError(w, map[string]string{"id": "Location ID is required"})
		return
	}

	loc, err := h.locations.FindByID(r.Context(), id)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("location lookup failed")
		writeInternalError(w)
		return
	}
	if loc == nil {
		writeNotFound(w, "Location not found")
		return
	}

	reports, err := h.reports.ListByLocation(r.Context(), id, 100)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("report list failed")
		writeInternalError(w)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{"reports": reports}, "")
}
