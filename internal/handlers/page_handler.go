package handlers

import (
	"net/http"

	"github.com/CG3-Media/dexo-activity/internal/render"
	"github.com/CG3-Media/dexo-activity/internal/services"
	"github.com/sirupsen/logrus"
)

type PageHandler struct {
	Service  *services.ActivityService
	Renderer *render.Renderer
}

func NewPageHandler(service *services.ActivityService, renderer *render.Renderer) *PageHandler {
	return &PageHandler{Service: service, Renderer: renderer}
}

// TimelineHandler handles GET /, the server-rendered timeline.
func (h *PageHandler) TimelineHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := q.Get("q")
	date := q.Get("date")

	activities, err := h.Service.TimelineActivities(r.Context(), search, date)
	if err != nil {
		logrus.WithError(err).Error("Failed to load timeline")
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	days, err := h.Service.RecentDays(r.Context())
	if err != nil {
		logrus.WithError(err).Error("Failed to load activity days")
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.Renderer.TimelinePage(w, activities, search, date, days); err != nil {
		logrus.WithError(err).Error("Failed to render timeline")
	}
}
