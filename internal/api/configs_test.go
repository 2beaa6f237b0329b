package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jokker-dev/iot-registry/internal/deviceconfig"
)

func TestCreateConfig_Defaults(t *testing.T) {
	srv := testServer(t)
	router := srv.buildRouter()

	d := createTestDevice(t, router, "AA:BB:CC:DD:EE:20", "Configured Sensor")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/configs/"+d.MACAddress, strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	var cfg deviceconfig.Config
	if err := json.Unmarshal(w.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if cfg.ReportInterval != deviceconfig.DefaultReportInterval {
		t.Errorf("report_interval = %d, want %d", cfg.ReportInterval, deviceconfig.DefaultReportInterval)
	}
	if cfg.DeviceMAC != d.MACAddress {
		t.Errorf("device_mac = %q, want %q", cfg.DeviceMAC, d.MACAddress)
	}
}

func TestCreateConfig_InvalidInterval(t *testing.T) {
	srv := testServer(t)
	router := srv.buildRouter()

	body := `{"report_interval": 0}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/configs/AA:BB:CC:DD:EE:21", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d; body: %s", w.Code, http.StatusBadRequest, w.Body.String())
	}
}

func TestGetConfig_NotFound(t *testing.T) {
	srv := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/configs/AA:BB:CC:DD:EE:22", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestUpdateConfig_Partial(t *testing.T) {
	srv := testServer(t)
	router := srv.buildRouter()

	mac := "AA:BB:CC:DD:EE:23"
	body := `{"report_interval": 120, "alarm_threshold_min": 5.5, "config_data": {"unit": "celsius"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/configs/"+mac, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want %d; body: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	// Patch only the max threshold; everything else keeps its value.
	body = `{"alarm_threshold_max": 40.0}`
	req = httptest.NewRequest(http.MethodPatch, "/api/v1/configs/"+mac, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("patch status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var cfg deviceconfig.Config
	if err := json.Unmarshal(w.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if cfg.ReportInterval != 120 {
		t.Errorf("report_interval = %d, want 120", cfg.ReportInterval)
	}
	if cfg.AlarmThresholdMin == nil || *cfg.AlarmThresholdMin != 5.5 {
		t.Errorf("alarm_threshold_min = %v, want 5.5", cfg.AlarmThresholdMin)
	}
	if cfg.AlarmThresholdMax == nil || *cfg.AlarmThresholdMax != 40.0 {
		t.Errorf("alarm_threshold_max = %v, want 40.0", cfg.AlarmThresholdMax)
	}
	if cfg.ConfigData["unit"] != "celsius" {
		t.Errorf("config_data unit = %v, want celsius", cfg.ConfigData["unit"])
	}
}

func TestUpdateConfig_ReplacesConfigData(t *testing.T) {
	srv := testServer(t)
	router := srv.buildRouter()

	mac := "AA:BB:CC:DD:EE:24"
	body := `{"config_data": {"unit": "celsius", "precision": 2}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/configs/"+mac, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want %d", w.Code, http.StatusCreated)
	}

	// config_data is a wholesale replacement, not a merge.
	body = `{"config_data": {"unit": "fahrenheit"}}`
	req = httptest.NewRequest(http.MethodPatch, "/api/v1/configs/"+mac, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("patch status = %d, want %d", w.Code, http.StatusOK)
	}

	var cfg deviceconfig.Config
	if err := json.Unmarshal(w.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if cfg.ConfigData["unit"] != "fahrenheit" {
		t.Errorf("config_data unit = %v, want fahrenheit", cfg.ConfigData["unit"])
	}
	if _, ok := cfg.ConfigData["precision"]; ok {
		t.Error("expected precision to be dropped by wholesale replacement")
	}
}

func TestUpdateConfig_NotFound(t *testing.T) {
	srv := testServer(t)
	router := srv.buildRouter()

	body := `{"report_interval": 30}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/configs/AA:BB:CC:DD:EE:25", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
