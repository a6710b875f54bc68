package server

import (
	"sync/atomic"
)

// RoomMetrics 记录房间运行期的关键指标（用于监控与调试）
type RoomMetrics struct {
	TickCount       int64 // Tick 次数（含等待阶段）
	SimSteps        int64 // 实际执行的模拟步数
	IntentsAccepted int64 // 被房间接受的意图数
	IntentsDropped  int64 // 因收件箱满被丢弃的意图数
	SendsDropped    int64 // 发送失败被丢弃的消息数
	StageAdvances   int64 // 通关次数
	StageResets     int64 // 全员倒地重开次数
	TotalTickNs     int64 // Tick 累计耗时（纳秒）
}

func (m *RoomMetrics) IncAccepted() { atomic.AddInt64(&m.IntentsAccepted, 1) }
func (m *RoomMetrics) IncDropped() { atomic.AddInt64(&m.IntentsDropped, 1) }
func (m *RoomMetrics) IncSendDropped() { atomic.AddInt64(&m.SendsDropped, 1) }
func (m *RoomMetrics) IncStageAdvances() { atomic.AddInt64(&m.StageAdvances, 1) }
func (m *RoomMetrics) IncStageResets() { atomic.AddInt64(&m.StageResets, 1) }
func (m *RoomMetrics) IncSimSteps() { atomic.AddInt64(&m.SimSteps, 1) }
func (m *RoomMetrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *RoomMetrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":       tick,
		"sim_steps":        atomic.LoadInt64(&m.SimSteps),
		"intents_accepted": atomic.LoadInt64(&m.IntentsAccepted),
		"intents_dropped":  atomic.LoadInt64(&m.IntentsDropped),
		"sends_dropped":    atomic.LoadInt64(&m.SendsDropped),
		"stage_advances":   atomic.LoadInt64(&m.StageAdvances),
		"stage_resets":     atomic.LoadInt64(&m.StageResets),
		"avg_tick_ms":      avgMs,
	}
}
