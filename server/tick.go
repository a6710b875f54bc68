package server

import (
	"context"
	"time"

	"temple/game"
)

var tickInterval = time.Second / game.TickRate // 50ms

// StartTicker 启动房间的 Tick 循环（单协程推进世界）；已在运行或已关闭时不做任何事
func (r *Room) StartTicker() {
	if r.cancel != nil {
		return
	}
	select {
	case <-r.closed:
		return
	default:
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})
	go r.run(ctx, r.done)
	r.log.Debugf("tick loop started")
}

// StopTicker 取消 Tick 循环并清除句柄，不等待其退出
func (r *Room) StopTicker() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	r.cancel = nil
	close(r.closed)
	r.log.Debugf("tick loop cancelled")
}

// Running Tick 循环是否已启动且未被取消
func (r *Room) Running() bool {
	return r.cancel != nil
}

// Done Tick 循环退出后关闭；未启动时返回 nil
func (r *Room) Done() <-chan struct{} {
	return r.done
}

// run 固定节奏循环：执行一步后睡眠剩余预算。超时则立即进入下一步，
// 不追帧，过载时退化为尽力而为的实时
func (r *Room) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for {
		start := time.Now()
		// 核心循环：处理意图 → 更新世界 → 广播结果
		r.Step()
		wait := max(0, tickInterval-time.Since(start))
		timer.Reset(wait)
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}
}
