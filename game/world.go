package game

import "sort"

const (
	// TickRate 模拟频率（20 TPS）
	TickRate = 20
	// DT 每个 Tick 的模拟时长（秒）
	DT = 1.0 / TickRate
)

// World 关卡规则可读写的共享状态：玩家、控制意图与事件日志
type World struct {
	Tick     int64
	Players  map[PlayerID]*PlayerState
	Controls map[PlayerID]*Control
	Log      EventLog
}

func newWorld() World {
	return World{
		Players:  make(map[PlayerID]*PlayerState),
		Controls: make(map[PlayerID]*Control),
	}
}

// Now 以 Tick 计的模拟时间（秒）
func (w *World) Now() float64 {
	return float64(w.Tick) / TickRate
}

// Player 按编号取玩家，不存在返回 nil
func (w *World) Player(id PlayerID) *PlayerState {
	return w.Players[id]
}

// Control 按编号取控制意图，不存在返回 nil
func (w *World) Control(id PlayerID) *Control {
	return w.Controls[id]
}

// Holding 玩家当前是否按住交互键
func (w *World) Holding(id PlayerID) bool {
	c := w.Controls[id]
	return c != nil && c.Interact
}

// Sorted 按编号排序的玩家列表，保证遍历顺序稳定
func (w *World) Sorted() []*PlayerState {
	out := make([]*PlayerState, 0, len(w.Players))
	for _, p := range w.Players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AnyIn 是否有任一玩家站在矩形内
func (w *World) AnyIn(r Rect) bool {
	for _, p := range w.Players {
		if r.Contains(p.X, p.Y) {
			return true
		}
	}
	return false
}

// AllIn 是否所有玩家都站在矩形内；没有玩家时为 false
func (w *World) AllIn(r Rect) bool {
	if len(w.Players) == 0 {
		return false
	}
	for _, p := range w.Players {
		if !r.Contains(p.X, p.Y) {
			return false
		}
	}
	return true
}

// AllDown 是否所有玩家同时倒地；没有玩家时为 false
func (w *World) AllDown() bool {
	if len(w.Players) == 0 {
		return false
	}
	for _, p := range w.Players {
		if !p.Down {
			return false
		}
	}
	return true
}

// System 以当前 Tick 记录系统消息
func (w *World) System(text string) {
	w.Log.System(w.Tick, text)
}

// hazard 对站在区域内的玩家造成伤害
func (w *World) hazard(area Rect, amount int, source string, cooldown float64) {
	for _, p := range w.Sorted() {
		if area.Contains(p.X, p.Y) {
			w.Damage(p, amount, source, cooldown)
		}
	}
}
