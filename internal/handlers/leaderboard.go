package handlers

import (
	"net/http"
	"strconv"

	"merrylights-backend/internal/logger"
	"merrylights-backend/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	defaultLeaderboardSize = 10
	maxLeaderboardSize     = 50
)

type LeaderboardHandler struct {
	locations    *repository.LocationRepo
	routes       *repository.RouteRepo
	contributors ContributorSource
	users        UserReader
}

func NewLeaderboardHandler(locations *repository.LocationRepo, routes *repository.RouteRepo, contributors ContributorSource, users UserReader) *LeaderboardHandler {
	return &LeaderboardHandler{
		locations:    locations,
		routes:       routes,
		contributors: contributors,
		users:        users,
	}
}

func leaderboardLimit(r *http.Request) int64 {
	limit := int64(defaultLeaderboardSize)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxLeaderboardSize {
		limit = maxLeaderboardSize
	}
	return limit
}

// --- GET /leaderboard/locations ---

func (h *LeaderboardHandler) Locations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.locations.TopByLikes(r.Context(), leaderboardLimit(r))
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("location leaderboard failed")
		writeInternalError(w)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{"locations": locations}, "")
}

// --- GET /leaderboard/routes ---

func (h *LeaderboardHandler) Routes(w http.ResponseWriter, r *http.Request) {
	routes, err := h.routes.TopByLikes(r.Context(), leaderboardLimit(r))
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("route leaderboard failed")
		writeInternalError(w)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{"routes": routes}, "")
}

// --- GET /leaderboard/contributors ---

// Contributors ranks users by approved suggestions and attaches display names.
func (h *LeaderboardHandler) Contributors(w http.ResponseWriter, r *http.Request) {
	counts, err := h.contributors.TopContributors(r.Context(), leaderboardLimit(r))
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("contributor leaderboard failed")
		writeInternalError(w)
		return
	}

	ids := make([]bson.ObjectID, 0, len(counts))
	for _, c := range counts {
		if oid, err := bson.ObjectIDFromHex(c.UserID); err == nil {
			ids = append(ids, oid)
		}
	}
	users, err := h.users.FindByIDs(r.Context(), ids)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("contributor leaderboard failed")
		writeInternalError(w)
		return
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID.Hex()] = u.DisplayName
	}

	entries := make([]map[string]interface{}, 0, len(counts))
	for i, c := range counts {
		name := names[c.UserID]
		if name == "" {
			name = "Contributor-" + shortID(c.UserID)
		}
		entries = append(entries, map[string]interface{}{
			"rank":                i + 1,
			"userId":              c.UserID,
			"displayName":         name,
			"approvedSubmissions": c.ApprovedCount,
		})
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{"contributors": entries}, "")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
