package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/geotrack/geotrack-go/internal/middleware"
	"github.com/geotrack/geotrack-go/internal/model"
	"github.com/geotrack/geotrack-go/internal/service"
)

// LocationHandler handles HTTP requests for location reports and queries.
type LocationHandler struct {
	service *service.LocationService
}

// NewLocationHandler creates a new LocationHandler.
func NewLocationHandler(svc *service.LocationService) *LocationHandler {
	return &LocationHandler{service: svc}
}

// HandleUpdate handles POST /api/location/update requests.
func (h *LocationHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var req model.UpdateLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	loc, err := h.service.Update(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLocationDeviceRequired),
			errors.Is(err, service.ErrLatitudeRequired),
			errors.Is(err, service.ErrLongitudeRequired):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrNotDeviceOwner):
			writeError(w, http.StatusUnauthorized, err.Error())
		default:
			slog.Error("updating location failed", "error", err)
			writeError(w, http.StatusBadRequest, "Error updating location")
		}
		return
	}

	writeSuccess(w, "Location updated successfully", map[string]any{"location": loc})
}

// HandleCurrent handles GET /api/location/current/{id} requests.
func (h *LocationHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	loc, err := h.service.Current(r.Context(), pathID(r), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotDeviceOwner):
			writeError(w, http.StatusUnauthorized, err.Error())
		case errors.Is(err, service.ErrNoLocationData):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			slog.Error("getting current location failed", "error", err)
			writeError(w, http.StatusBadRequest, "Error getting current location")
		}
		return
	}

	writeSuccess(w, "", map[string]any{"location": loc})
}

// HandleHistory handles GET /api/location/history/{id}?start=&end= requests.
func (h *LocationHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")

	locations, err := h.service.History(r.Context(), pathID(r), userID, start, end)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotDeviceOwner):
			writeError(w, http.StatusUnauthorized, err.Error())
		case errors.Is(err, service.ErrStartRequired),
			errors.Is(err, service.ErrEndRequired),
			errors.Is(err, service.ErrInvalidTimestamp):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			slog.Error("getting location history failed", "error", err)
			writeError(w, http.StatusBadRequest, "Error getting location history")
		}
		return
	}

	if locations == nil {
		locations = []model.Location{}
	}
	writeSuccess(w, "", map[string]any{"locations": locations})
}
