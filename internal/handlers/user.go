package handlers

import (
	"encoding/json"
	"net/http"

	"merrylights-backend/internal/logger"
	"merrylights-backend/internal/middleware"
	"merrylights-backend/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type UserHandler struct {
	userRepo *repository.UserRepo
}

func NewUserHandler(userRepo *repository.UserRepo) *UserHandler {
	return &UserHandler{
		userRepo: userRepo,
	}
}

// --- GET /users/me ---

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userIDHex := middleware.GetUserID(r.Context())
	if userIDHex == "" {
		writeUnauthorized(w)
		return
	}

	userID, err := bson.ObjectIDFromHex(userIDHex)
	if err != nil {
		writeValidationError(w, map[string]string{"id": "Invalid user ID"})
		return
	}

	user, err := h.userRepo.FindByID(r.Context(), userID)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("user lookup failed")
		writeInternalError(w)
		return
	}
	if user == nil {
		writeNotFound(w, "User not found")
		return
	}
	writeSuccess(w, http.StatusOK, user, "")
}

type updateProfileRequest struct {
	DisplayName string `json:"display_name"`
}

// --- PATCH /users/me ---

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userIDHex := middleware.GetUserID(r.Context())
	if userIDHex == "" {
		writeUnauthorized(w)
		return
	}

	userID, err := bson.ObjectIDFromHex(userIDHex)
	if err != nil {
		writeValidationError(w, map[string]string{"id": "Invalid user ID"})
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, map[string]string{"body": "Invalid JSON"})
		return
	}
	if req.DisplayName == "" {
		writeValidationError(w, map[string]string{"display_name": "Display name is required"})
		return
	}

	if err := h.userRepo.UpdateDisplayName(r.Context(), userID, req.DisplayName); err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("profile update failed")
		writeInternalError(w)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{"display_name": req.DisplayName}, "Profile updated")
}
