package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandleRoomsAndMetrics(t *testing.T) {
	rm := NewRoomManager()
	defer rm.Close()
	a := newFakeSender()
	defer rm.Disconnect(a)
	_, _, _ = rm.Join(a, "ADMIN", "a")

	rec := httptest.NewRecorder()
	rm.HandleRooms(rec, httptest.NewRequest(http.MethodGet, "/admin/rooms", nil))
	var rooms struct {
		Rooms []RoomSummary `json:"rooms"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &rooms); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rooms.Rooms) != 1 || rooms.Rooms[0].Code != "ADMIN" || rooms.Rooms[0].Occupants != 1 {
		t.Fatalf("rooms = %+v", rooms.Rooms)
	}

	rec = httptest.NewRecorder()
	rm.HandleMetrics(rec, httptest.NewRequest(http.MethodGet, "/metrics?room=admin", nil))
	var m struct {
		Room    string         `json:"room"`
		Metrics map[string]any `json:"metrics"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Code != http.StatusOK || m.Room != "ADMIN" {
		t.Fatalf("metrics status=%d body=%s", rec.Code, rec.Body.String())
	}
	if _, ok := m.Metrics["tick_count"]; !ok {
		t.Fatalf("metrics = %v", m.Metrics)
	}

	rec = httptest.NewRecorder()
	rm.HandleMetrics(rec, httptest.NewRequest(http.MethodGet, "/metrics?room=NOPE", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown room status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	rm.HandleRooms(rec, httptest.NewRequest(http.MethodPost, "/admin/rooms", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST status = %d", rec.Code)
	}
}
