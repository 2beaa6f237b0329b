package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jokker-dev/iot-registry/internal/device"
)

// createDeviceRequest is the JSON body for device creation.
type createDeviceRequest struct {
	MACAddress  string        `json:"mac_address"`
	Name        string        `json:"device_name"`
	Type        string        `json:"device_type"`
	Location    string        `json:"location,omitempty"`
	Description string        `json:"description,omitempty"`
	InstallDate *time.Time    `json:"install_date,omitempty"`
	Status      device.Status `json:"status,omitempty"`
}

// updateDeviceRequest is the JSON body for partial device updates.
// Absent fields are left untouched.
type updateDeviceRequest struct {
	Name        *string        `json:"device_name,omitempty"`
	Type        *string        `json:"device_type,omitempty"`
	Location    *string        `json:"location,omitempty"`
	Description *string        `json:"description,omitempty"`
	Status      *device.Status `json:"status,omitempty"`
}

// updateStatusRequest is the JSON body for status transitions.
type updateStatusRequest struct {
	Status device.Status `json:"status"`
}

// handleListDevices returns all devices, newest first.
//
// Query parameters:
//   - status: filter by status (active, inactive, maintenance)
//   - type: filter by device type
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	filter := device.Filter{
		Status: device.Status(r.URL.Query().Get("status")),
		Type:   r.URL.Query().Get("type"),
	}

	devices, err := s.registry.List(r.Context(), filter)
	if err != nil {
		writeInternalError(w, "failed to list devices")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"devices": devices, "count": len(devices)})
}

// handleGetDevice returns a single device by MAC address.
// The MAC is matched exactly as supplied in the URL.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	mac := chi.URLParam(r, "mac")

	d, err := s.registry.GetByMAC(r.Context(), mac)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		writeInternalError(w, "failed to get device")
		return
	}

	writeJSON(w, http.StatusOK, d)
}

// handleCreateDevice registers a new device.
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var req createDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	d, err := s.registry.Create(r.Context(), device.CreateInput{
		MACAddress:  req.MACAddress,
		Name:        req.Name,
		Type:        req.Type,
		Location:    req.Location,
		Description: req.Description,
		InstallDate: req.InstallDate,
		Status:      req.Status,
	})
	if err != nil {
		s.writeDeviceError(w, err, "failed to create device")
		return
	}

	s.hub.Broadcast(ChannelDeviceCreated, d)
	s.announceDevice(d)

	writeJSON(w, http.StatusCreated, d)
}

// handleUpdateDevice partially updates a device.
func (s *Server) handleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	mac := chi.URLParam(r, "mac")

	var req updateDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	d, err := s.registry.UpdateFields(r.Context(), mac, device.UpdateInput{
		Name:        req.Name,
		Type:        req.Type,
		Location:    req.Location,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		s.writeDeviceError(w, err, "failed to update device")
		return
	}

	s.hub.Broadcast(ChannelDeviceUpdated, d)
	s.announceDevice(d)

	writeJSON(w, http.StatusOK, d)
}

// handleUpdateDeviceStatus performs a single-field status transition.
func (s *Server) handleUpdateDeviceStatus(w http.ResponseWriter, r *http.Request) {
	mac := chi.URLParam(r, "mac")

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := s.registry.UpdateStatus(r.Context(), mac, req.Status); err != nil {
		s.writeDeviceError(w, err, "failed to update device status")
		return
	}

	s.hub.Broadcast(ChannelDeviceUpdated, map[string]any{
		"mac_address": mac,
		"status":      req.Status,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"mac_address": mac,
		"status":      req.Status,
	})
}

// handleDeleteDevice removes a device by MAC address.
// The MAC is matched exactly as supplied in the URL.
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	mac := chi.URLParam(r, "mac")

	// Fetch first so the discovery entry can be cleared with the right
	// component after the row is gone.
	d, err := s.registry.GetByMAC(r.Context(), mac)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		writeInternalError(w, "failed to get device")
		return
	}

	if err := s.registry.Delete(r.Context(), mac); err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		writeInternalError(w, "failed to delete device")
		return
	}

	s.hub.Broadcast(ChannelDeviceDeleted, map[string]any{"mac_address": d.MACAddress})

	if s.announcer != nil {
		if err := s.announcer.RemoveDevice(d.MACAddress, d.Type); err != nil {
			s.logger.Warn("failed to clear discovery entry", "mac", d.MACAddress, "error", err)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// announceDevice publishes a Home Assistant discovery config, best effort.
// Announcement failures never fail the HTTP request; the registry row is
// already committed.
func (s *Server) announceDevice(d *device.Device) {
	if s.announcer == nil {
		return
	}
	if err := s.announcer.AnnounceDevice(d); err != nil {
		s.logger.Warn("failed to announce device", "mac", d.MACAddress, "error", err)
	}
}

// writeDeviceError maps registry errors onto HTTP responses: validation
// failures to 400, duplicates to 409, missing devices to 404, everything
// else to 500.
func (s *Server) writeDeviceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case isValidationError(err):
		writeBadRequest(w, err.Error())
	case errors.Is(err, device.ErrDuplicateMAC), errors.Is(err, device.ErrDuplicateName):
		writeConflict(w, err.Error())
	case errors.Is(err, device.ErrDeviceNotFound):
		writeNotFound(w, "device not found")
	default:
		writeInternalError(w, fallback)
	}
}

// isValidationError checks whether an error is a device validation error.
func isValidationError(err error) bool {
	return errors.Is(err, device.ErrInvalidMAC) ||
		errors.Is(err, device.ErrInvalidName) ||
		errors.Is(err, device.ErrInvalidType) ||
		errors.Is(err, device.ErrInvalidLocation) ||
		errors.Is(err, device.ErrInvalidStatus)
}
