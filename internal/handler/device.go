package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/geotrack/geotrack-go/internal/middleware"
	"github.com/geotrack/geotrack-go/internal/model"
	"github.com/geotrack/geotrack-go/internal/service"
)

// DeviceHandler handles HTTP requests for device management.
type DeviceHandler struct {
	service *service.DeviceService
}

// NewDeviceHandler creates a new DeviceHandler.
func NewDeviceHandler(svc *service.DeviceService) *DeviceHandler {
	return &DeviceHandler{service: svc}
}

// HandleList handles GET /api/devices requests.
func (h *DeviceHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	devices, err := h.service.List(r.Context(), userID)
	if err != nil {
		slog.Error("listing devices failed", "error", err)
		writeError(w, http.StatusBadRequest, "Error getting devices")
		return
	}

	if devices == nil {
		devices = []model.Device{}
	}
	writeSuccess(w, "", map[string]any{"devices": devices})
}

// HandleCreate handles POST /api/devices requests.
func (h *DeviceHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var req model.CreateDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	device, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDeviceNameRequired), errors.Is(err, service.ErrDeviceLabelRequired):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			slog.Error("creating device failed", "error", err)
			writeError(w, http.StatusBadRequest, "Error creating device")
		}
		return
	}

	writeSuccess(w, "Device created successfully", map[string]any{"device": device})
}

// HandleUpdate handles PUT /api/devices/{id} requests.
func (h *DeviceHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	deviceID := pathID(r)

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var req model.UpdateDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	device, err := h.service.Update(r.Context(), deviceID, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoUpdateFields):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrDeviceNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNotDeviceOwner):
			writeError(w, http.StatusUnauthorized, err.Error())
		default:
			slog.Error("updating device failed", "error", err)
			writeError(w, http.StatusBadRequest, "Error updating device")
		}
		return
	}

	writeSuccess(w, "Device updated successfully", map[string]any{"device": device})
}

// HandleDelete handles DELETE /api/devices/{id} requests.
func (h *DeviceHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	err := h.service.Delete(r.Context(), pathID(r), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDeviceNotOwned), errors.Is(err, service.ErrDeviceNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			slog.Error("deleting device failed", "error", err)
			writeError(w, http.StatusBadRequest, "Error deleting device")
		}
		return
	}

	writeSuccess(w, "Device deleted successfully", nil)
}

// pathID parses the {id} path segment. The route pattern restricts it to
// digits, so a parse failure is impossible for routed requests.
func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id
}
