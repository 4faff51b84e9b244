package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/avezhnov/scholarwatch/internal/domain"
	"github.com/avezhnov/scholarwatch/internal/usecase"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Create defaults recovered from the product's original behavior.
const (
	defaultThreshold = 0.75
	defaultLookback  = 30
)

type Handlers struct {
	service *usecase.AlertService
	logger  *zap.Logger
}

func NewHandlers(service *usecase.AlertService, logger *zap.Logger) *Handlers {
	return &Handlers{service: service, logger: logger}
}

// ownerID reads the caller identity. Authentication proper lives in front
// of this service; the header is trusted as-is.
func ownerID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

func (h *Handlers) CreateAlert(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "missing X-User-ID header")
		return
	}

	var req createAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	threshold := defaultThreshold
	if req.SimilarityThreshold != nil {
		threshold = *req.SimilarityThreshold
	}
	lookback := defaultLookback
	if req.LookbackDays != nil {
		lookback = *req.LookbackDays
	}
	frequency := domain.FrequencyWeekly
	if req.Frequency != nil {
		frequency = domain.AlertFrequency(*req.Frequency)
	}

	alert, err := h.service.Create(r.Context(), owner, req.ResearchTitle, req.ResearchAbstract, threshold, lookback, frequency)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapAlertResponse(alert))
}

func (h *Handlers) ListAlerts(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "missing X-User-ID header")
		return
	}

	alerts, err := h.service.List(r.Context(), owner)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapAlertResponses(alerts))
}

func (h *Handlers) GetAlert(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "missing X-User-ID header")
		return
	}

	alert, err := h.service.Get(r.Context(), chi.URLParam(r, "alertID"), owner)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapAlertResponse(alert))
}

func (h *Handlers) UpdateAlert(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "missing X-User-ID header")
		return
	}

	var req updateAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	params := usecase.UpdateAlertParams{
		ResearchTitle:       req.ResearchTitle,
		ResearchAbstract:    req.ResearchAbstract,
		SimilarityThreshold: req.SimilarityThreshold,
		LookbackDays:        req.LookbackDays,
	}
	if req.Frequency != nil {
		frequency := domain.AlertFrequency(*req.Frequency)
		params.Frequency = &frequency
	}
	if req.Status != nil {
		status := domain.AlertStatus(*req.Status)
		params.Status = &status
	}

	alert, err := h.service.Update(r.Context(), chi.URLParam(r, "alertID"), owner, params)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapAlertResponse(alert))
}

func (h *Handlers) DeleteAlert(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "missing X-User-ID header")
		return
	}

	alertID := chi.URLParam(r, "alertID")
	deleted, err := h.service.Delete(r.Context(), alertID, owner)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "alert not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "alert deleted", "alert_id": alertID})
}

func (h *Handlers) ListNotifications(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "missing X-User-ID header")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	notifications, err := h.service.Notifications(r.Context(), owner, limit)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapNotificationResponses(notifications))
}

func (h *Handlers) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "missing X-User-ID header")
		return
	}

	notificationID := chi.URLParam(r, "notificationID")
	marked, err := h.service.MarkNotificationRead(r.Context(), notificationID, owner)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if !marked {
		writeError(w, http.StatusNotFound, "notification not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "notification marked as read", "notification_id": notificationID})
}

// TestAlert runs one alert synchronously, outside its schedule.
func (h *Handlers) TestAlert(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "missing X-User-ID header")
		return
	}

	notification, err := h.service.RunAlertNow(r.Context(), chi.URLParam(r, "alertID"), owner)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if notification == nil {
		writeJSON(w, http.StatusOK, map[string]any{"matched": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"matched": true, "notification": mapNotificationResponse(notification)})
}

func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "missing X-User-ID header")
		return
	}

	stats, err := h.service.Stats(r.Context(), owner)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapStatsResponse(stats))
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrAlertNotFound):
		writeError(w, http.StatusNotFound, "alert not found")
	case errors.Is(err, usecase.ErrInvalidTitle),
		errors.Is(err, usecase.ErrInvalidAbstract),
		errors.Is(err, usecase.ErrInvalidThreshold),
		errors.Is(err, usecase.ErrInvalidLookback),
		errors.Is(err, usecase.ErrInvalidFrequency),
		errors.Is(err, usecase.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
