package server

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
)

type fakeSender struct {
	id uuid.UUID

	mu     sync.Mutex
	msgs   [][]byte
	closed bool
}

func newFakeSender() *fakeSender {
	return &fakeSender{id: uuid.New()}
}

func (f *fakeSender) ID() uuid.UUID { return f.id }

func (f *fakeSender) Send(b []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrConnClosed
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	f.msgs = append(f.msgs, cp)
	return nil
}

func (f *fakeSender) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSender) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// ofType 按类型筛选收到的消息（原始字节）
func (f *fakeSender) ofType(typ string) [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out [][]byte
	for _, b := range f.msgs {
		var head struct {
			Type string `json:"type"`
		}
		if json.Unmarshal(b, &head) == nil && head.Type == typ {
			out = append(out, b)
		}
	}
	return out
}

// lastOf 解码最近一条指定类型的消息
func lastOf[T any](t *testing.T, f *fakeSender, typ string) T {
	t.Helper()
	var v T
	msgs := f.ofType(typ)
	if len(msgs) == 0 {
		t.Fatalf("no %q message received", typ)
	}
	if err := json.Unmarshal(msgs[len(msgs)-1], &v); err != nil {
		t.Fatalf("decode %q: %v", typ, err)
	}
	return v
}

// stateMsg 与 StateMsg 相同，但 entities 解码为通用结构
type stateMsg struct {
	Tick      int64            `json:"tick"`
	RoomIndex int              `json:"room_index"`
	Players   []PlayerSnapshot `json:"players"`
	Entities  []map[string]any `json:"entities"`
	UI        UIBlock          `json:"ui"`
}

// startedRoom 两名玩家加入并准备完毕的房间（不启动 Tick 循环）
func startedRoom(t *testing.T) (*Room, *fakeSender, *fakeSender) {
	t.Helper()
	r := NewRoom("TESTS")
	a, b := newFakeSender(), newFakeSender()
	if _, err := r.attach(a, "a"); err != nil {
		t.Fatalf("attach a: %v", err)
	}
	if _, err := r.attach(b, "b"); err != nil {
		t.Fatalf("attach b: %v", err)
	}
	r.mu.Lock()
	r.sim.SetReady(1, true)
	r.sim.SetReady(2, true)
	r.mu.Unlock()
	return r, a, b
}
