package server

import (
	"crypto/rand"
	"errors"
	"math/big"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"temple/game"
)

// RoomCodeLen 随机房间号长度
const RoomCodeLen = 5

// ErrAlreadyJoined 同一连接重复加入
var ErrAlreadyJoined = errors.New("connection already joined a room")

// RoomManager 管理多个房间的生命周期；占座、释放与房间创建在同一把锁内串行，
// 该锁从不与房间的模拟锁同时持有
type RoomManager struct {
	mu     sync.Mutex
	rooms  map[string]*Room
	byConn map[uuid.UUID]string

	// newCode 生成随机房间号，测试可替换
	newCode func() string
}

var (
	defaultManager *RoomManager
	once           sync.Once
)

// GetRoomManager 单例房间管理器
func GetRoomManager() *RoomManager {
	once.Do(func() {
		defaultManager = NewRoomManager()
	})
	return defaultManager
}

// NewRoomManager 创建独立的房间管理器
func NewRoomManager() *RoomManager {
	return &RoomManager{
		rooms:   make(map[string]*Room),
		byConn:  make(map[uuid.UUID]string),
		newCode: randomRoomCode,
	}
}

// Join 把连接加入房间。desiredCode 为空时创建一个新房间；
// 房间已满时回复 room_full 且不修改任何状态
func (m *RoomManager) Join(conn Sender, desiredCode, name string) (*Room, *PlayerConn, error) {
	room, pid, err := m.reserve(conn, desiredCode)
	if err != nil {
		return nil, nil, err
	}
	// 座位已在注册表锁内确定，进入房间只需等待房间自身的锁
	pc := room.enter(conn, pid, truncate(strings.TrimSpace(name), maxNameLen))
	return room, pc, nil
}

// reserve 在注册表锁内查找或创建房间并占座，不触碰房间的模拟状态
func (m *RoomManager) reserve(conn Sender, desiredCode string) (*Room, game.PlayerID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byConn[conn.ID()]; ok {
		_ = conn.Send(Encode(NewError(ErrCodeAlreadyJoined, "Already in a room.")))
		return nil, 0, ErrAlreadyJoined
	}

	code := strings.ToUpper(strings.TrimSpace(desiredCode))
	if code == "" {
		for {
			code = m.newCode()
			if _, taken := m.rooms[code]; !taken {
				break
			}
		}
	}

	room, ok := m.rooms[code]
	if !ok {
		room = NewRoom(code)
	}
	pid, err := room.reserve(conn.ID())
	if err != nil {
		_ = conn.Send(Encode(NewError(ErrCodeRoomFull, "Room is full.")))
		Log.Infof("join rejected: room %s is full conn=%s", code, conn.ID())
		return nil, 0, err
	}
	if !ok {
		m.rooms[code] = room
		Log.Infof("room %s created", code)
	}
	m.byConn[conn.ID()] = code
	room.StartTicker()
	return room, pid, nil
}

// Disconnect 移除连接。房间变空时取消其 Tick 循环并删除房间
func (m *RoomManager) Disconnect(conn Sender) {
	if room := m.release(conn.ID()); room != nil {
		room.leave(conn.ID())
	}
}

// release 在注册表锁内释放座位；返回连接所在的房间
func (m *RoomManager) release(connID uuid.UUID) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()

	code, ok := m.byConn[connID]
	if !ok {
		return nil
	}
	delete(m.byConn, connID)
	room, ok := m.rooms[code]
	if !ok {
		return nil
	}
	if empty := room.release(connID); empty {
		room.StopTicker()
		delete(m.rooms, code)
		Log.Infof("room %s closed", code)
	}
	return room
}

// Room 按房间号查找
func (m *RoomManager) Room(code string) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rooms[strings.ToUpper(strings.TrimSpace(code))]
}

// Rooms 按房间号排序的所有房间
func (m *RoomManager) Rooms() []*Room {
	m.mu.Lock()
	out := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r)
	}
	m.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Close 关闭所有连接（进程退出）；各房间随最后一个连接断开而回收
func (m *RoomManager) Close() {
	for _, r := range m.Rooms() {
		r.closeConns()
	}
}

// randomRoomCode 从无歧义字母表中随机取 RoomCodeLen 个字符
func randomRoomCode() string {
	var b strings.Builder
	limit := big.NewInt(int64(len(game.CodeAlphabet)))
	for i := 0; i < RoomCodeLen; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			// 系统随机源不可用时退化为 uuid 的随机字节
			u := uuid.New()
			n = big.NewInt(int64(u[0]) % limit.Int64())
		}
		b.WriteByte(game.CodeAlphabet[n.Int64()])
	}
	return b.String()
}
