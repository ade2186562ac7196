package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/azoai/botadmin/internal/auth"
	"github.com/azoai/botadmin/internal/realtime"
	"github.com/azoai/botadmin/internal/status"
	"github.com/azoai/botadmin/internal/store"
)

const (
	testAccessKey = "operator-key"
	testSessionID = "main"
)

type testServer struct {
	handler http.Handler
	store   *store.Store
	monitor *status.Monitor
	token   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:botadmin_router_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.AutoMigrate(
		&store.User{}, &store.Product{}, &store.Order{}, &store.BotTask{}, &store.AdminTask{},
		&store.Transaction{}, &store.AdminEvent{}, &store.BotStatus{}, &store.ChangeLog{}, &store.UpdateLog{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	broker := realtime.NewBroker()
	dataStore, err := store.New(store.Config{
		Database:   db,
		Clock:      time.Now,
		IDProvider: store.NewUUIDProvider(),
		Publisher:  broker,
	})
	if err != nil {
		t.Fatalf("failed to build store: %v", err)
	}

	tokenManager := auth.NewTokenIssuer(auth.TokenIssuerConfig{
		SigningSecret: []byte("test-secret"),
		AccessKey:     testAccessKey,
		TokenTTL:      time.Hour,
	})

	monitor, err := status.NewMonitor(status.Config{
		Source:    dataStore,
		Broker:    broker,
		SessionID: testSessionID,
	})
	if err != nil {
		t.Fatalf("failed to build monitor: %v", err)
	}
	if err := monitor.Start(context.Background()); err != nil {
		t.Fatalf("failed to start monitor: %v", err)
	}
	t.Cleanup(monitor.Close)

	handler, err := NewHTTPHandler(Dependencies{
		TokenManager: tokenManager,
		Store:        dataStore,
		Monitor:      monitor,
		Broker:       broker,
		Clock:        time.Now,
		SessionID:    testSessionID,
	})
	if err != nil {
		t.Fatalf("failed to build handler: %v", err)
	}

	server := &testServer{handler: handler, store: dataStore, monitor: monitor}
	server.token = server.login(t)
	return server
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()
	recorder := s.do(t, http.MethodPost, "/auth/login", map[string]interface{}{"access_key": testAccessKey}, "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", recorder.Code, recorder.Body.String())
	}
	var payload loginResponsePayload
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("login response decode failed: %v", err)
	}
	if payload.TokenType != "Bearer" || payload.AccessToken == "" {
		t.Fatalf("unexpected login payload: %+v", payload)
	}
	return payload.AccessToken
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}
	request := httptest.NewRequest(method, path, reader)
	request.Header.Set("Content-Type", "application/json")
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	s.handler.ServeHTTP(recorder, request)
	return recorder
}

func TestLoginRejectsWrongAccessKey(t *testing.T) {
	server := newTestServer(t)

	recorder := server.do(t, http.MethodPost, "/auth/login", map[string]interface{}{"access_key": "wrong"}, "")
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", recorder.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	server := newTestServer(t)

	recorder := server.do(t, http.MethodGet, "/api/dashboard", nil, "")
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", recorder.Code)
	}

	recorder = server.do(t, http.MethodGet, "/api/dashboard", nil, "garbage-token")
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with invalid token, got %d", recorder.Code)
	}
}

func TestDashboardEmptyDatabase(t *testing.T) {
	server := newTestServer(t)

	recorder := server.do(t, http.MethodGet, "/api/dashboard", nil, server.token)
	if recorder.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d %s", recorder.Code, recorder.Body.String())
	}

	var payload struct {
		Users          int64             `json:"users"`
		Orders         int64             `json:"orders"`
		Revenue        float64           `json:"revenue"`
		WeekdayRevenue []json.RawMessage `json:"weekday_revenue"`
		Timeline       []json.RawMessage `json:"timeline"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if payload.Users != 0 || payload.Orders != 0 || payload.Revenue != 0 {
		t.Fatalf("expected zeroed stats: %+v", payload)
	}
	if len(payload.WeekdayRevenue) != 7 {
		t.Fatalf("expected 7 weekday buckets, got %d", len(payload.WeekdayRevenue))
	}
	if len(payload.Timeline) != 7 {
		t.Fatalf("expected 7 timeline points, got %d", len(payload.Timeline))
	}
}

func TestCreateAndListUsers(t *testing.T) {
	server := newTestServer(t)

	recorder := server.do(t, http.MethodPost, "/api/users", map[string]interface{}{
		"name": "Budi", "phone": "628111", "exp": 250,
	}, server.token)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", recorder.Code, recorder.Body.String())
	}

	recorder = server.do(t, http.MethodPost, "/api/users", map[string]interface{}{
		"name": "Sari", "phone": "628111",
	}, server.token)
	if recorder.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate phone, got %d", recorder.Code)
	}

	recorder = server.do(t, http.MethodGet, "/api/users", nil, server.token)
	if recorder.Code != http.StatusOK {
		t.Fatalf("list failed: %d", recorder.Code)
	}
	var payload struct {
		Users []struct {
			Name  string `json:"name"`
			Exp   int64  `json:"exp"`
			Level int64  `json:"level"`
		} `json:"users"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(payload.Users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(payload.Users))
	}
	if payload.Users[0].Level != 2 {
		t.Fatalf("expected level 2 at 250 exp, got %d", payload.Users[0].Level)
	}
}

func TestProductRoundTrip(t *testing.T) {
	server := newTestServer(t)

	recorder := server.do(t, http.MethodPost, "/api/products", map[string]interface{}{
		"name": "Kopi Susu", "keyword": "KOPI", "price": 15000, "stock": 10,
	}, server.token)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", recorder.Code, recorder.Body.String())
	}
	var created store.Product
	if err := json.Unmarshal(recorder.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if created.Keyword != "kopi" {
		t.Fatalf("expected lowercase keyword, got %q", created.Keyword)
	}
	if created.CreatedBy != "operator" {
		t.Fatalf("expected creator from session, got %q", created.CreatedBy)
	}

	recorder = server.do(t, http.MethodDelete, "/api/products/"+created.ID, nil, server.token)
	if recorder.Code != http.StatusOK {
		t.Fatalf("delete failed: %d", recorder.Code)
	}

	recorder = server.do(t, http.MethodGet, "/api/products", nil, server.token)
	var listed struct {
		Products []store.Product `json:"products"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(listed.Products) != 0 {
		t.Fatalf("expected empty product list, got %d", len(listed.Products))
	}
}

func TestCreateProductRejectsNegativePrice(t *testing.T) {
	server := newTestServer(t)

	recorder := server.do(t, http.MethodPost, "/api/products", map[string]interface{}{
		"name": "Kopi", "keyword": "kopi", "price": -5,
	}, server.token)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative price, got %d", recorder.Code)
	}
}

func TestTaskLifecycleAndDeleteRouting(t *testing.T) {
	server := newTestServer(t)

	recorder := server.do(t, http.MethodPost, "/api/tasks", map[string]interface{}{
		"title": "Audit stock", "due_date": "2026-09-05",
	}, server.token)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", recorder.Code, recorder.Body.String())
	}
	var created store.AdminTask
	if err := json.Unmarshal(recorder.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	recorder = server.do(t, http.MethodGet, "/api/tasks", nil, server.token)
	var listed tasksResponsePayload
	if err := json.Unmarshal(recorder.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(listed.Tasks) != 1 || listed.Tasks[0].ID != "admin-"+created.ID {
		t.Fatalf("unexpected unified list: %+v", listed.Tasks)
	}
	if listed.Stats.Pending != 1 {
		t.Fatalf("expected 1 pending task, got %+v", listed.Stats)
	}

	recorder = server.do(t, http.MethodDelete, "/api/tasks/unknown-"+created.ID, nil, server.token)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown prefix, got %d", recorder.Code)
	}

	recorder = server.do(t, http.MethodDelete, "/api/tasks/admin-"+created.ID, nil, server.token)
	if recorder.Code != http.StatusOK {
		t.Fatalf("delete failed: %d", recorder.Code)
	}
	recorder = server.do(t, http.MethodDelete, "/api/tasks/admin-"+created.ID, nil, server.token)
	if recorder.Code != http.StatusOK {
		t.Fatalf("repeat delete must stay harmless: %d", recorder.Code)
	}

	recorder = server.do(t, http.MethodGet, "/api/tasks", nil, server.token)
	if err := json.Unmarshal(recorder.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(listed.Tasks) != 0 || listed.Stats.Pending != 0 {
		t.Fatalf("stats must be recomputed after delete: %+v", listed)
	}
}

func TestCalendarDeleteRejectsTransactionEntries(t *testing.T) {
	server := newTestServer(t)

	recorder := server.do(t, http.MethodDelete, "/api/calendar/tx-some-id", nil, server.token)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for transaction entry, got %d", recorder.Code)
	}

	recorder = server.do(t, http.MethodDelete, "/api/calendar/bogus-id", nil, server.token)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown prefix, got %d", recorder.Code)
	}
}

func TestEventCreateAppearsInCalendar(t *testing.T) {
	server := newTestServer(t)

	recorder := server.do(t, http.MethodPost, "/api/events", map[string]interface{}{
		"title": "Standup", "event_date": "2026-09-02", "type": "meeting",
	}, server.token)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", recorder.Code, recorder.Body.String())
	}
	var created store.AdminEvent
	if err := json.Unmarshal(recorder.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	recorder = server.do(t, http.MethodGet, "/api/calendar/2026-09-02", nil, server.token)
	if recorder.Code != http.StatusOK {
		t.Fatalf("calendar day failed: %d %s", recorder.Code, recorder.Body.String())
	}
	var day struct {
		Entries []struct {
			ID        string `json:"id"`
			EventType string `json:"event_type"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &day); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(day.Entries) != 1 || day.Entries[0].ID != "evt-"+created.ID {
		t.Fatalf("unexpected calendar entries: %+v", day.Entries)
	}
	if day.Entries[0].EventType != "Meeting" {
		t.Fatalf("expected capitalized type, got %q", day.Entries[0].EventType)
	}

	recorder = server.do(t, http.MethodGet, "/api/calendar/2026-10-02", nil, server.token)
	if err := json.Unmarshal(recorder.Body.Bytes(), &day); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(day.Entries) != 0 {
		t.Fatalf("same day of another month must not match: %+v", day.Entries)
	}

	recorder = server.do(t, http.MethodDelete, "/api/calendar/evt-"+created.ID, nil, server.token)
	if recorder.Code != http.StatusOK {
		t.Fatalf("event delete failed: %d", recorder.Code)
	}
}

func TestHeartbeatUpdatesStatus(t *testing.T) {
	server := newTestServer(t)

	recorder := server.do(t, http.MethodPost, "/bot/heartbeat", map[string]interface{}{
		"access_key": "wrong", "is_online": true,
	}, "")
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong key, got %d", recorder.Code)
	}

	recorder = server.do(t, http.MethodPost, "/bot/heartbeat", map[string]interface{}{
		"access_key":     testAccessKey,
		"is_online":      true,
		"uptime_seconds": 5400,
		"messages_today": 42,
		"version":        "2.1.0",
	}, "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("heartbeat failed: %d %s", recorder.Code, recorder.Body.String())
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		statusRecorder := server.do(t, http.MethodGet, "/api/status", nil, server.token)
		if statusRecorder.Code != http.StatusOK {
			t.Fatalf("status failed: %d", statusRecorder.Code)
		}
		var payload statusResponsePayload
		if err := json.Unmarshal(statusRecorder.Body.Bytes(), &payload); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if payload.Online {
			if payload.Status.MessagesToday != 42 || payload.Status.Version != "2.1.0" {
				t.Fatalf("heartbeat fields missing: %+v", payload.Status)
			}
			if payload.FormattedUptime != "1h 30m" {
				t.Fatalf("unexpected formatted uptime: %q", payload.FormattedUptime)
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("status never reflected the heartbeat")
}

func TestStatusStreamSendsInitialSnapshot(t *testing.T) {
	server := newTestServer(t)

	liveServer := httptest.NewServer(server.handler)
	defer liveServer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, liveServer.URL+"/api/status/stream?access_token="+server.token, nil)
	if err != nil {
		t.Fatalf("request build failed: %v", err)
	}
	response, err := liveServer.Client().Do(request)
	if err != nil {
		t.Fatalf("stream request failed: %v", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		t.Fatalf("unexpected stream status: %d", response.StatusCode)
	}
	if contentType := response.Header.Get("Content-Type"); !strings.HasPrefix(contentType, "text/event-stream") {
		t.Fatalf("unexpected content type: %q", contentType)
	}

	reader := bufio.NewReader(response.Body)
	var eventLine, dataLine string
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("stream read failed: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		if strings.HasPrefix(line, "event: ") {
			eventLine = strings.TrimPrefix(line, "event: ")
		}
		if strings.HasPrefix(line, "data: ") {
			dataLine = strings.TrimPrefix(line, "data: ")
			break
		}
	}
	if eventLine != "status" {
		t.Fatalf("expected initial status event, got %q", eventLine)
	}
	var snapshot store.BotStatus
	if err := json.Unmarshal([]byte(dataLine), &snapshot); err != nil {
		t.Fatalf("initial snapshot decode failed: %v", err)
	}
	if snapshot.SessionID != testSessionID {
		t.Fatalf("unexpected session in snapshot: %q", snapshot.SessionID)
	}
}
