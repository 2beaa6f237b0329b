package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jokker-dev/iot-registry/internal/deviceconfig"
)

// createConfigRequest is the JSON body for config creation. The device
// MAC comes from the URL, not the body.
type createConfigRequest struct {
	ReportInterval    *int           `json:"report_interval,omitempty"`
	AlarmThresholdMin *float64       `json:"alarm_threshold_min,omitempty"`
	AlarmThresholdMax *float64       `json:"alarm_threshold_max,omitempty"`
	ConfigData        map[string]any `json:"config_data,omitempty"`
	UpdatedBy         *string        `json:"updated_by,omitempty"`
}

// updateConfigRequest is the JSON body for partial config updates.
// Absent fields are left untouched; config_data is replaced wholesale
// when present.
type updateConfigRequest struct {
	ReportInterval    *int           `json:"report_interval,omitempty"`
	AlarmThresholdMin *float64       `json:"alarm_threshold_min,omitempty"`
	AlarmThresholdMax *float64       `json:"alarm_threshold_max,omitempty"`
	ConfigData        map[string]any `json:"config_data,omitempty"`
	UpdatedBy         *string        `json:"updated_by,omitempty"`
}

// handleGetConfig returns the stored configuration for a device.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	mac := chi.URLParam(r, "mac")

	cfg, err := s.configs.Get(r.Context(), mac)
	if err != nil {
		if errors.Is(err, deviceconfig.ErrConfigNotFound) {
			writeNotFound(w, "config not found")
			return
		}
		writeInternalError(w, "failed to get config")
		return
	}

	writeJSON(w, http.StatusOK, cfg)
}

// handleCreateConfig stores a new configuration for a device.
func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	mac := chi.URLParam(r, "mac")

	var req createConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	cfg, err := s.configs.Create(r.Context(), deviceconfig.CreateInput{
		DeviceMAC:         mac,
		ReportInterval:    req.ReportInterval,
		AlarmThresholdMin: req.AlarmThresholdMin,
		AlarmThresholdMax: req.AlarmThresholdMax,
		ConfigData:        req.ConfigData,
		UpdatedBy:         req.UpdatedBy,
	})
	if err != nil {
		if errors.Is(err, deviceconfig.ErrInvalidInterval) {
			writeBadRequest(w, err.Error())
			return
		}
		writeInternalError(w, "failed to create config")
		return
	}

	s.hub.Broadcast(ChannelConfigUpdated, cfg)

	writeJSON(w, http.StatusCreated, cfg)
}

// handleUpdateConfig partially updates a device configuration.
func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	mac := chi.URLParam(r, "mac")

	var req updateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	cfg, err := s.configs.Update(r.Context(), mac, deviceconfig.UpdateInput{
		ReportInterval:    req.ReportInterval,
		AlarmThresholdMin: req.AlarmThresholdMin,
		AlarmThresholdMax: req.AlarmThresholdMax,
		ConfigData:        req.ConfigData,
		UpdatedBy:         req.UpdatedBy,
	})
	if err != nil {
		switch {
		case errors.Is(err, deviceconfig.ErrConfigNotFound):
			writeNotFound(w, "config not found")
		case errors.Is(err, deviceconfig.ErrInvalidInterval):
			writeBadRequest(w, err.Error())
		default:
			writeInternalError(w, "failed to update config")
		}
		return
	}

	s.hub.Broadcast(ChannelConfigUpdated, cfg)

	writeJSON(w, http.StatusOK, cfg)
}
