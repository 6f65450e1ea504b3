package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/geotrack/geotrack-go/internal/middleware"
	"github.com/geotrack/geotrack-go/internal/model"
	"github.com/geotrack/geotrack-go/internal/repository"
	"github.com/geotrack/geotrack-go/internal/service"
)

const testSecret = "test-secret"

// memStores is an in-memory implementation of the persistence surface,
// enough to drive the full router without a database.
type memStores struct {
	users     map[int64]*model.User
	devices   map[int64]*model.Device
	locations []model.Location
	nextID    int64
}

func newMemStores() *memStores {
	return &memStores{
		users:   make(map[int64]*model.User),
		devices: make(map[int64]*model.Device),
	}
}

func (m *memStores) id() int64 { m.nextID++; return m.nextID }

func (m *memStores) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.PhoneNumber == user.PhoneNumber {
			return repository.ErrDuplicatePhone
		}
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	user.ID = m.id()
	user.CreatedAt = time.Now()
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *memStores) GetByPhone(_ context.Context, phone string) (*model.User, error) {
	for _, u := range m.users {
		if u.PhoneNumber == phone {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memStores) GetByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

type memDeviceStore struct{ m *memStores }

func (s memDeviceStore) Create(_ context.Context, device *model.Device) error {
	device.ID = s.m.id()
	device.IsActive = true
	device.CreatedAt = time.Now()
	stored := *device
	s.m.devices[device.ID] = &stored
	return nil
}

func (s memDeviceStore) ListByUser(_ context.Context, userID int64) ([]model.Device, error) {
	var devices []model.Device
	for _, d := range s.m.devices {
		if d.UserID == userID {
			devices = append(devices, *d)
		}
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].ID < devices[j].ID })
	return devices, nil
}

func (s memDeviceStore) GetByID(_ context.Context, id int64) (*model.Device, error) {
	d, ok := s.m.devices[id]
	if !ok {
		return nil, repository.ErrDeviceNotFound
	}
	copied := *d
	return &copied, nil
}

func (s memDeviceStore) Update(_ context.Context, id int64, name *string, isActive *bool) (*model.Device, error) {
	d, ok := s.m.devices[id]
	if !ok {
		return nil, repository.ErrDeviceNotFound
	}
	if name != nil {
		d.Name = *name
	}
	if isActive != nil {
		d.IsActive = *isActive
	}
	copied := *d
	return &copied, nil
}

func (s memDeviceStore) Delete(_ context.Context, id int64) error {
	if _, ok := s.m.devices[id]; !ok {
		return repository.ErrDeviceNotFound
	}
	delete(s.m.devices, id)
	return nil
}

func (s memDeviceStore) Owned(_ context.Context, deviceID, userID int64) (bool, error) {
	d, ok := s.m.devices[deviceID]
	return ok && d.UserID == userID, nil
}

type memLocationStore struct{ m *memStores }

func (s memLocationStore) Insert(_ context.Context, loc *model.Location) error {
	loc.ID = s.m.id()
	loc.Timestamp = time.Now().UTC()
	s.m.locations = append(s.m.locations, *loc)
	return nil
}

func (s memLocationStore) Current(_ context.Context, deviceID int64) (*model.Location, error) {
	var latest *model.Location
	for i := range s.m.locations {
		l := &s.m.locations[i]
		if l.DeviceID == deviceID && (latest == nil || l.Timestamp.After(latest.Timestamp)) {
			latest = l
		}
	}
	if latest == nil {
		return nil, repository.ErrNoLocation
	}
	copied := *latest
	return &copied, nil
}

func (s memLocationStore) History(_ context.Context, deviceID int64, start, end time.Time) ([]model.Location, error) {
	var locations []model.Location
	for _, l := range s.m.locations {
		if l.DeviceID == deviceID && !l.Timestamp.Before(start) && !l.Timestamp.After(end) {
			locations = append(locations, l)
		}
	}
	sort.Slice(locations, func(i, j int) bool { return locations[i].Timestamp.Before(locations[j].Timestamp) })
	return locations, nil
}

func newTestRouter(rateLimit int) http.Handler {
	m := newMemStores()
	authService := service.NewAuthService(m, testSecret, time.Hour)
	deviceService := service.NewDeviceService(memDeviceStore{m})
	locationService := service.NewLocationService(memDeviceStore{m}, memLocationStore{m})

	return NewRouter(RouterConfig{
		Auth:      NewAuthHandler(authService),
		Devices:   NewDeviceHandler(deviceService),
		Locations: NewLocationHandler(locationService),
		JWTSecret: testSecret,
		Limiter:   middleware.NewWindowLimiter(rateLimit, time.Minute),
	})
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "192.0.2.1:1234"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var envelope map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
		}
	}
	return rec.Code, envelope
}

func registerAndLogin(t *testing.T, router http.Handler, phone, email string) string {
	t.Helper()

	status, _ := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]any{
		"phone_number": phone,
		"name":         "Test User",
		"email":        email,
		"password":     "password123",
	})
	if status != http.StatusOK {
		t.Fatalf("register status = %d, want 200", status)
	}

	status, body := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]any{
		"phone_number": phone,
		"password":     "password123",
	})
	if status != http.StatusOK {
		t.Fatalf("login status = %d, want 200", status)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("login returned no token")
	}
	return token
}

func TestEndToEndScenario(t *testing.T) {
	router := newTestRouter(1000)
	token := registerAndLogin(t, router, "+1234567890", "john@example.com")

	status, body := doJSON(t, router, http.MethodPost, "/api/devices", token, map[string]any{
		"device_name": "Pixel 8",
		"device_id":   "pixel-8-imei",
	})
	if status != http.StatusOK {
		t.Fatalf("create device status = %d, body %v", status, body)
	}
	device := body["device"].(map[string]any)
	deviceID := int64(device["id"].(float64))
	if device["is_active"] != true {
		t.Error("new device should be active")
	}

	status, body = doJSON(t, router, http.MethodPost, "/api/location/update", token, map[string]any{
		"device_id": deviceID,
		"latitude":  51.5074,
		"longitude": -0.1278,
		"accuracy":  5.0,
	})
	if status != http.StatusOK {
		t.Fatalf("location update status = %d, body %v", status, body)
	}

	status, body = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/location/current/%d", deviceID), token, nil)
	if status != http.StatusOK {
		t.Fatalf("current location status = %d, body %v", status, body)
	}
	loc := body["location"].(map[string]any)
	if loc["latitude"] != 51.5074 || loc["longitude"] != -0.1278 {
		t.Errorf("current location = %v, want the posted point", loc)
	}
	if loc["speed"] != nil {
		t.Errorf("speed = %v, want null when not reported", loc["speed"])
	}

	start := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
	end := time.Now().UTC().Add(time.Hour).Format(time.RFC3339)
	status, body = doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/api/location/history/%d?start=%s&end=%s", deviceID, start, end), token, nil)
	if status != http.StatusOK {
		t.Fatalf("history status = %d, body %v", status, body)
	}
	locations := body["locations"].([]any)
	if len(locations) != 1 {
		t.Fatalf("history returned %d points, want 1", len(locations))
	}
}

func TestRegisterValidationMessages(t *testing.T) {
	router := newTestRouter(1000)

	status, body := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]any{
		"phone_number": "+1234567890",
		"name":         "Test User",
		"email":        "short@example.com",
		"password":     "seven77",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("short password status = %d, want 400", status)
	}
	if body["message"] != "Password must be at least 8 characters" {
		t.Errorf("message = %q", body["message"])
	}
	if body["success"] != false {
		t.Error("error envelope must carry success=false")
	}

	registerAndLogin(t, router, "+1111111111", "dup@example.com")
	status, body = doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]any{
		"phone_number": "+1111111111",
		"name":         "Other",
		"email":        "other@example.com",
		"password":     "password123",
	})
	if status != http.StatusBadRequest || body["message"] != "Phone number already registered" {
		t.Errorf("duplicate phone: status = %d, message = %q", status, body["message"])
	}
}

func TestLoginWrongPassword(t *testing.T) {
	router := newTestRouter(1000)
	registerAndLogin(t, router, "+1234567890", "john@example.com")

	status, body := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]any{
		"phone_number": "+1234567890",
		"password":     "wrongpassword",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", status)
	}
	if body["message"] != "Invalid phone number or password" {
		t.Errorf("message = %q", body["message"])
	}
	if _, ok := body["token"]; ok {
		t.Error("failed login must not issue a token")
	}
}

func TestAuthInfoPages(t *testing.T) {
	router := newTestRouter(1000)

	status, body := doJSON(t, router, http.MethodGet, "/api/auth/register", "", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if body["success"] != true {
		t.Error("info page must use the success envelope")
	}
	fields, ok := body["required_fields"].(map[string]any)
	if !ok || fields["phone_number"] == nil {
		t.Errorf("required_fields missing from info payload: %v", body)
	}

	status, body = doJSON(t, router, http.MethodGet, "/api/auth/logout", "", nil)
	if status != http.StatusOK || body["success"] != true {
		t.Errorf("logout info: status = %d, body %v", status, body)
	}
}

func TestLogoutIsStateless(t *testing.T) {
	router := newTestRouter(1000)
	token := registerAndLogin(t, router, "+1234567890", "john@example.com")

	status, body := doJSON(t, router, http.MethodPost, "/api/auth/logout", "", nil)
	if status != http.StatusOK || body["message"] != "Logout successful" {
		t.Fatalf("logout: status = %d, body %v", status, body)
	}

	// Tokens stay valid until expiry; logout revokes nothing.
	status, _ = doJSON(t, router, http.MethodGet, "/api/devices", token, nil)
	if status != http.StatusOK {
		t.Errorf("token rejected after logout: status = %d", status)
	}
}

func TestDeviceRoutesRequireAuth(t *testing.T) {
	router := newTestRouter(1000)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/devices"},
		{http.MethodPost, "/api/devices"},
		{http.MethodPut, "/api/devices/1"},
		{http.MethodDelete, "/api/devices/1"},
		{http.MethodPost, "/api/location/update"},
		{http.MethodGet, "/api/location/current/1"},
		{http.MethodGet, "/api/location/history/1"},
	} {
		status, body := doJSON(t, router, tc.method, tc.path, "", nil)
		if status != http.StatusUnauthorized {
			t.Errorf("%s %s without token: status = %d, want 401", tc.method, tc.path, status)
		}
		if body["message"] != "Unauthorized" {
			t.Errorf("%s %s: message = %q", tc.method, tc.path, body["message"])
		}
	}
}

func TestCrossUserIsolation(t *testing.T) {
	router := newTestRouter(1000)
	tokenA := registerAndLogin(t, router, "+1111111111", "a@example.com")
	tokenB := registerAndLogin(t, router, "+2222222222", "b@example.com")

	status, body := doJSON(t, router, http.MethodPost, "/api/devices", tokenA, map[string]any{
		"device_name": "A's phone",
		"device_id":   "a-phone",
	})
	if status != http.StatusOK {
		t.Fatalf("create device status = %d", status)
	}
	deviceID := int64(body["device"].(map[string]any)["id"].(float64))

	status, body = doJSON(t, router, http.MethodGet, "/api/devices", tokenB, nil)
	if status != http.StatusOK {
		t.Fatalf("list status = %d", status)
	}
	if devices := body["devices"].([]any); len(devices) != 0 {
		t.Errorf("user B sees %d foreign devices", len(devices))
	}

	status, body = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/devices/%d", deviceID), tokenB,
		map[string]any{"device_name": "stolen"})
	if status != http.StatusUnauthorized || body["message"] != "Unauthorized" {
		t.Errorf("foreign update: status = %d, message = %q; want 401 Unauthorized", status, body["message"])
	}

	status, body = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/devices/%d", deviceID), tokenB, nil)
	if status != http.StatusNotFound || body["message"] != "Device not found or unauthorized" {
		t.Errorf("foreign delete: status = %d, message = %q; want 404", status, body["message"])
	}

	status, body = doJSON(t, router, http.MethodPost, "/api/location/update", tokenB, map[string]any{
		"device_id": deviceID,
		"latitude":  1.0,
		"longitude": 2.0,
	})
	if status != http.StatusUnauthorized {
		t.Errorf("foreign location update: status = %d, want 401", status)
	}

	// Nothing was persisted for the rejected report.
	status, _ = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/location/current/%d", deviceID), tokenA, nil)
	if status != http.StatusNotFound {
		t.Errorf("current after rejected report: status = %d, want 404", status)
	}

	// The owner can still update the device.
	status, _ = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/devices/%d", deviceID), tokenA,
		map[string]any{"is_active": false})
	if status != http.StatusOK {
		t.Errorf("owner update: status = %d, want 200", status)
	}
}

func TestHistoryParamErrors(t *testing.T) {
	router := newTestRouter(1000)
	token := registerAndLogin(t, router, "+1234567890", "john@example.com")

	status, body := doJSON(t, router, http.MethodPost, "/api/devices", token, map[string]any{
		"device_name": "Pixel 8", "device_id": "pixel-8-imei",
	})
	if status != http.StatusOK {
		t.Fatalf("create device status = %d", status)
	}
	deviceID := int64(body["device"].(map[string]any)["id"].(float64))

	status, body = doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/api/location/history/%d?end=2024-01-02T00:00:00Z", deviceID), token, nil)
	if status != http.StatusBadRequest || body["message"] != "Start time is required" {
		t.Errorf("missing start: status = %d, message = %q", status, body["message"])
	}

	status, body = doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/api/location/history/%d?start=2024-01-01T00:00:00Z", deviceID), token, nil)
	if status != http.StatusBadRequest || body["message"] != "End time is required" {
		t.Errorf("missing end: status = %d, message = %q", status, body["message"])
	}

	status, body = doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/api/location/history/%d?start=notatime&end=2024-01-02T00:00:00Z", deviceID), token, nil)
	if status != http.StatusBadRequest || body["message"] != "Invalid timestamp format" {
		t.Errorf("malformed start: status = %d, message = %q", status, body["message"])
	}
}

func TestRouteMatching(t *testing.T) {
	router := newTestRouter(1000)
	token := registerAndLogin(t, router, "+1234567890", "john@example.com")

	cases := []struct{ method, path string }{
		{http.MethodPut, "/api/devices/abc"},     // non-numeric id
		{http.MethodDelete, "/api/devices/1x"},   // numeric prefix is not enough
		{http.MethodGet, "/api/location/current/abc"},
		{http.MethodGet, "/api/unknown"},
		{http.MethodDelete, "/api/devices"},      // method not in table
		{http.MethodPut, "/api/auth/register"},
	}
	for _, tc := range cases {
		status, body := doJSON(t, router, tc.method, tc.path, token, nil)
		if status != http.StatusNotFound {
			t.Errorf("%s %s: status = %d, want 404", tc.method, tc.path, status)
		}
		if body["message"] != "Not found" {
			t.Errorf("%s %s: message = %q", tc.method, tc.path, body["message"])
		}
	}
}

func TestRateLimitThroughRouter(t *testing.T) {
	router := newTestRouter(3)

	for i := 0; i < 3; i++ {
		status, _ := doJSON(t, router, http.MethodGet, "/api/auth/login", "", nil)
		if status != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, status)
		}
	}

	status, body := doJSON(t, router, http.MethodGet, "/api/auth/login", "", nil)
	if status != http.StatusTooManyRequests {
		t.Fatalf("over-limit request: status = %d, want 429", status)
	}
	if body["message"] != "Rate limit exceeded" {
		t.Errorf("message = %q", body["message"])
	}

	// OPTIONS bypasses the limiter even when the window is exhausted.
	req := httptest.NewRequest(http.MethodOptions, "/api/devices", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("OPTIONS during exhausted window: status = %d, want 200", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("OPTIONS body = %q, want empty", rec.Body.String())
	}
}

func TestInvalidBodyRejected(t *testing.T) {
	router := newTestRouter(1000)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader([]byte("{not json")))
	req.RemoteAddr = "192.0.2.1:1234"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body["message"] != "Invalid request body" {
		t.Errorf("message = %q", body["message"])
	}
}

func TestDeviceUpdateNoFields(t *testing.T) {
	router := newTestRouter(1000)
	token := registerAndLogin(t, router, "+1234567890", "john@example.com")

	status, body := doJSON(t, router, http.MethodPost, "/api/devices", token, map[string]any{
		"device_name": "Pixel 8", "device_id": "pixel-8-imei",
	})
	if status != http.StatusOK {
		t.Fatalf("create device status = %d", status)
	}
	deviceID := int64(body["device"].(map[string]any)["id"].(float64))

	status, body = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/devices/%d", deviceID), token,
		map[string]any{})
	if status != http.StatusBadRequest {
		t.Errorf("empty update: status = %d, want 400", status)
	}
	if body["message"] != "No fields to update" {
		t.Errorf("message = %q", body["message"])
	}
}
