package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/CG3-Media/dexo-activity/internal/models"
	"github.com/CG3-Media/dexo-activity/internal/services"
	"github.com/CG3-Media/dexo-activity/internal/storage"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type ActivityHandler struct {
	Service *services.ActivityService
}

func NewActivityHandler(service *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{Service: service}
}

// CreateActivityHandler handles POST /api/activities.
func (h *ActivityHandler) CreateActivityHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	activity, err := h.Service.CreateActivity(r.Context(), &req)
	if err != nil {
		if errors.Is(err, models.ErrContentRequired) {
			respondError(w, http.StatusBadRequest, "content is required")
			return
		}
		logrus.WithError(err).Error("Failed to create activity")
		respondError(w, http.StatusInternalServerError, "Database error")
		return
	}

	respondJSON(w, http.StatusCreated, activity)
}

// ListActivitiesHandler handles GET /api/activities.
func (h *ActivityHandler) ListActivitiesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.Filter{
		Search: q.Get("q"),
		Date:   q.Get("date"),
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = v
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil {
		filter.Offset = v
	}

	activities, err := h.Service.ListActivities(r.Context(), filter)
	if err != nil {
		logrus.WithError(err).Error("Failed to list activities")
		respondError(w, http.StatusInternalServerError, "Database error")
		return
	}

	respondJSON(w, http.StatusOK, activities)
}

// GetActivityHandler handles GET /api/activities/{id}.
func (h *ActivityHandler) GetActivityHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusNotFound, "Activity not found")
		return
	}

	activity, err := h.Service.GetActivity(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Activity not found")
			return
		}
		logrus.WithError(err).Error("Failed to fetch activity")
		respondError(w, http.StatusInternalServerError, "Database error")
		return
	}

	respondJSON(w, http.StatusOK, activity)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
