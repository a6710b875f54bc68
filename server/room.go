package server

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"temple/game"
)

var (
	// ErrRoomFull 房间已有两名玩家
	ErrRoomFull = errors.New("room is full")
	// ErrRoomClosed 房间已关闭，不再接收意图
	ErrRoomClosed = errors.New("room closed")
)

const (
	// MaxOccupants 每个房间的最大人数
	MaxOccupants = 2
	inboxSize    = 256
	maxPingLabel = 12
	maxChatText  = 32
)

// Room 一局游戏会话。成员变更与模拟状态由 mu 保护；
// 模拟状态只在 Tick 协程中被写入，连接处理器只投递意图
type Room struct {
	Code      string
	CreatedAt time.Time
	Seed      int64

	mu    sync.Mutex
	sim   *game.Sim
	conns map[game.PlayerID]*PlayerConn

	// 座位表由 seatMu 单独保护：注册表据此判断满员与空房，不必等待 Tick
	seatMu sync.Mutex
	seats  map[game.PlayerID]uuid.UUID

	inbox   chan Intent
	metrics *RoomMetrics
	log     *zap.SugaredLogger

	// Tick 循环句柄，由 RoomManager 在其锁内启动与取消
	cancel context.CancelFunc
	done   chan struct{}
	closed chan struct{}
}

// NewRoom 创建房间：由房间号派生种子并生成逃脱密码
func NewRoom(code string) *Room {
	seed := game.SeedFor(code)
	return &Room{
		Code:      code,
		CreatedAt: time.Now(),
		Seed:      seed,
		sim:       game.NewSim(seed),
		conns:     make(map[game.PlayerID]*PlayerConn),
		seats:     make(map[game.PlayerID]uuid.UUID, MaxOccupants),
		inbox:     make(chan Intent, inboxSize), // 足够缓冲，避免网络读阻塞影响 Tick
		metrics:   &RoomMetrics{},
		log:       Log.With("room", code),
		closed:    make(chan struct{}),
	}
}

// Metrics 房间运行指标
func (r *Room) Metrics() *RoomMetrics { return r.metrics }

// Occupants 已占用的座位数
func (r *Room) Occupants() int {
	r.seatMu.Lock()
	defer r.seatMu.Unlock()
	return len(r.seats)
}

// RoomSummary 房间概要（管理接口用）
type RoomSummary struct {
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
	Occupants int       `json:"occupants"`
	Stage     int       `json:"stage"`
	Started   bool      `json:"started"`
	Escaped   bool      `json:"escaped"`
	Tick      int64     `json:"tick"`
}

// Summary 返回房间概要
func (r *Room) Summary() RoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RoomSummary{
		Code:      r.Code,
		CreatedAt: r.CreatedAt,
		Occupants: len(r.conns),
		Stage:     r.sim.Index,
		Started:   r.sim.Started,
		Escaped:   r.sim.Escaped,
		Tick:      r.sim.Tick,
	}
}

// reserve 为连接占一个座位（最小空闲编号）；满员返回 ErrRoomFull
func (r *Room) reserve(connID uuid.UUID) (game.PlayerID, error) {
	r.seatMu.Lock()
	defer r.seatMu.Unlock()
	if len(r.seats) >= MaxOccupants {
		return 0, ErrRoomFull
	}
	pid := game.PlayerID(1)
	if _, taken := r.seats[1]; taken {
		pid = 2
	}
	r.seats[pid] = connID
	return pid, nil
}

// release 释放连接的座位；返回房间是否已无人
func (r *Room) release(connID uuid.UUID) bool {
	r.seatMu.Lock()
	defer r.seatMu.Unlock()
	for pid, id := range r.seats {
		if id == connID {
			delete(r.seats, pid)
		}
	}
	return len(r.seats) == 0
}

// enter 在已预留的座位上创建玩家，回复 joined 并向所有人广播名单。
// 该编号上残留的旧连接（已释放座位但尚未 leave）被替换
func (r *Room) enter(conn Sender, pid game.PlayerID, name string) *PlayerConn {
	r.mu.Lock()
	defer r.mu.Unlock()

	pc := &PlayerConn{
		Conn:     conn,
		PlayerID: pid,
		Role:     game.RoleFor(pid),
		Name:     name,
	}
	r.conns[pid] = pc
	r.sim.AddPlayer(pid)

	roster := r.rosterLocked()
	r.sendTo(pc, Encode(JoinedMsg{
		Type:     "joined",
		RoomCode: r.Code,
		PlayerID: pid,
		Role:     pc.Role,
		Players:  roster,
	}))
	r.broadcastLocked(Encode(NewRosterEvent(roster)))
	r.sim.System("A player joined.")
	r.log.Infof("player %d (%s) joined as %s conn=%s", pid, name, pc.Role, conn.ID())
	return pc
}

// leave 移除连接及其玩家。仍有人时回到等待阶段，
// 剩余玩家需要重新准备（谜题进度保留）
func (r *Room) leave(connID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for pid, pc := range r.conns {
		if pc.Conn.ID() == connID {
			delete(r.conns, pid)
			r.sim.RemovePlayer(pid)
			r.log.Infof("player %d left conn=%s", pid, connID)
		}
	}
	r.sim.System("A player disconnected.")
	if len(r.conns) == 0 {
		return
	}
	r.sim.Unready()
	r.broadcastLocked(Encode(NewRosterEvent(r.rosterLocked())))
}

// attach 占座并进入房间
func (r *Room) attach(conn Sender, name string) (*PlayerConn, error) {
	pid, err := r.reserve(conn.ID())
	if err != nil {
		return nil, err
	}
	return r.enter(conn, pid, name), nil
}

// detach 释放座位并离开房间；返回房间是否已空
func (r *Room) detach(connID uuid.UUID) bool {
	empty := r.release(connID)
	r.leave(connID)
	return empty
}

// Submit 投递意图。输入类意图在收件箱满时直接丢弃（后续输入会覆盖），
// 其余意图等待收件箱腾出空间
func (r *Room) Submit(ctx context.Context, in Intent) error {
	if in.Kind == IntentInput {
		select {
		case r.inbox <- in:
			return nil
		default:
			r.metrics.IncDropped()
			return nil
		}
	}
	select {
	case r.inbox <- in:
		return nil
	case <-r.closed:
		return ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Step 执行一次 Tick：计数、处理意图，已开局时推进模拟并广播
func (r *Room) Step() {
	start := time.Now()
	r.mu.Lock()
	r.sim.Tick++
	r.processIntents()
	if r.sim.Started {
		before, resets := r.sim.Index, r.sim.Resets
		r.sim.Step(game.DT)
		r.metrics.IncSimSteps()
		if r.sim.Index != before {
			r.metrics.IncStageAdvances()
			r.log.Infof("advanced to stage %d at tick %d", r.sim.Index, r.sim.Tick)
		}
		if r.sim.Resets != resets {
			r.metrics.IncStageResets()
			r.log.Infof("stage %d reset: all players down", r.sim.Index)
		}
		r.broadcastStateLocked()
	}
	r.mu.Unlock()
	r.metrics.AddTick(time.Since(start).Nanoseconds())
}

// processIntents 非阻塞地取完收件箱
func (r *Room) processIntents() {
	for {
		select {
		case in := <-r.inbox:
			r.apply(in)
		default:
			return
		}
	}
}

func (r *Room) apply(in Intent) {
	pc := r.conns[in.PlayerID]
	if pc == nil || pc.Conn.ID() != in.ConnID {
		// 发送方已离开，编号可能已被新连接占用
		return
	}
	r.metrics.IncAccepted()
	sim := r.sim
	switch in.Kind {
	case IntentReady:
		wasStarted := sim.Started
		sim.SetReady(in.PlayerID, in.Ready)
		if sim.Started && !wasStarted {
			r.log.Infof("game started on stage %d", sim.Index)
		}
	case IntentInput:
		// 序列号只做追踪：乱序到达的输入照常生效
		pc.LastSeq = max(pc.LastSeq, in.Seq)
		sim.Input(in.PlayerID, in.MoveX, in.MoveY, in.Interact)
	case IntentPing:
		label := truncate(in.Text, maxPingLabel)
		if label == "" {
			label = "PING"
		}
		x := game.Clamp(in.X, 0, game.FieldWidth)
		y := game.Clamp(in.Y, 0, game.FieldHeight)
		sim.Log.Append(game.Event{T: sim.Tick, Kind: game.EventPing, PlayerID: in.PlayerID, X: &x, Y: &y, Text: label})
	case IntentChat:
		sim.Log.Append(game.Event{T: sim.Tick, Kind: game.EventChat, PlayerID: in.PlayerID, Text: truncate(in.Text, maxChatText)})
	case IntentCode:
		if sim.SubmitCode(in.Text) {
			r.log.Infof("final code accepted from player %d", in.PlayerID)
		}
	}
}

// rosterLocked 按编号排序的名单；调用方持有 mu
func (r *Room) rosterLocked() []RosterEntry {
	out := make([]RosterEntry, 0, len(r.conns))
	for pid, pc := range r.conns {
		e := RosterEntry{PlayerID: pid, Role: pc.Role, Name: pc.Name}
		if p := r.sim.Player(pid); p != nil {
			e.Ready = p.Ready
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out
}

// broadcastLocked 向所有连接发送同一份消息
func (r *Room) broadcastLocked(b []byte) {
	for _, pc := range r.conns {
		r.sendTo(pc, b)
	}
}

// sendTo 单个连接发送失败只计数，不影响其他连接
func (r *Room) sendTo(pc *PlayerConn, b []byte) {
	if b == nil {
		return
	}
	if err := pc.Conn.Send(b); err != nil {
		r.metrics.IncSendDropped()
		r.log.Debugf("send to player %d dropped: %v", pc.PlayerID, err)
	}
}

// closeConns 关闭所有连接（进程退出时）；读循环随后走正常断开流程
func (r *Room) closeConns() {
	r.mu.Lock()
	conns := make([]Sender, 0, len(r.conns))
	for _, pc := range r.conns {
		conns = append(conns, pc.Conn)
	}
	r.mu.Unlock()
	for _, c := range conns {
		_ = c.Close()
	}
}
