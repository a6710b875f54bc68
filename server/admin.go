package server

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// HandleRooms 列出所有存活房间
// GET /admin/rooms
func (m *RoomManager) HandleRooms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rooms := m.Rooms()
	out := make([]RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, room.Summary())
	}
	writeJSON(w, http.StatusOK, map[string]any{"rooms": out})
}

// HandleMetrics 输出指定房间的运行指标
// GET /metrics?room=ABCDE
func (m *RoomManager) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("room")
	room := m.Room(code)
	if room == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "error": "room not found"})
		return
	}
	summary := room.Summary()
	writeJSON(w, http.StatusOK, map[string]any{
		"room":    summary.Code,
		"tick":    summary.Tick,
		"metrics": room.Metrics().Snapshot(),
	})
}
