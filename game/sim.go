package game

import "fmt"

// Sim 一局游戏的完整模拟状态：玩家、当前关卡、逃脱密码与事件日志。
// 非并发安全，由房间的 Tick 协程独占写入。
type Sim struct {
	World

	Secret  Secret
	Index   int
	Started bool
	// Escaped 最后一关全员到达出口
	Escaped bool
	// Resets 全员倒地导致的重开次数
	Resets int

	stage Stage
}

// NewSim 以种子生成密码并进入第一关
func NewSim(seed int64) *Sim {
	return &Sim{
		World:  newWorld(),
		Secret: NewSecret(seed),
		stage:  NewStage(0),
	}
}

// Stage 当前关卡
func (s *Sim) Stage() Stage { return s.stage }

// AddPlayer 在出生点加入玩家
func (s *Sim) AddPlayer(id PlayerID) *PlayerState {
	p := NewPlayerState(id)
	s.Players[id] = p
	s.Controls[id] = &Control{}
	return p
}

// RemovePlayer 移除玩家与其控制意图
func (s *Sim) RemovePlayer(id PlayerID) {
	delete(s.Players, id)
	delete(s.Controls, id)
}

// Unready 有人中途离开：回到等待状态并清除所有准备标记，关卡进度保留
func (s *Sim) Unready() {
	s.Started = false
	for _, p := range s.Players {
		p.Ready = false
	}
}

// SetReady 更新准备状态；两名玩家都准备时开局（重置当前关卡）
func (s *Sim) SetReady(id PlayerID, ready bool) {
	p := s.Players[id]
	if p == nil {
		return
	}
	p.Ready = ready
	if len(s.Players) != 2 {
		return
	}
	for _, other := range s.Players {
		if !other.Ready {
			return
		}
	}
	s.Started = true
	s.ResetStage()
	s.System("Game started.")
}

// Input 记录玩家最新的移动方向与交互键
func (s *Sim) Input(id PlayerID, moveX, moveY float64, interact bool) {
	if c := s.Controls[id]; c != nil {
		c.Apply(moveX, moveY, interact)
	}
}

// ResetStage 原地重开当前关卡：全新谜题状态，玩家回满血。
// 位置保留，但门重新关闭，越过门线的玩家被挡回门内。
// 开局也经过这里：等待阶段锁存的按键不带入新一轮
func (s *Sim) ResetStage() {
	s.stage = NewStage(s.Index)
	for _, p := range s.Players {
		p.ResetVitals()
		p.X = min(p.X, DoorGateX)
	}
	for _, c := range s.Controls {
		c.TakePress()
	}
}

// Advance 进入下一关，玩家回到出生点；最后一关时标记逃脱
func (s *Sim) Advance() {
	if s.Index >= StageCount-1 {
		if !s.Escaped {
			s.Escaped = true
			s.System("The temple releases you. Escaped!")
		}
		return
	}
	s.Index++
	s.stage = NewStage(s.Index)
	for _, p := range s.Players {
		p.Respawn()
	}
}

// Step 推进一个模拟步
func (s *Sim) Step(dt float64) {
	rt := s.stage.Runtime()

	for _, p := range s.Sorted() {
		c := s.Controls[p.ID]
		if c == nil || p.Down {
			continue
		}
		speed := p.Role.Speed()
		p.X = Clamp(p.X+c.MoveX*speed*dt, FieldMinX, FieldMaxX)
		p.Y = Clamp(p.Y+c.MoveY*speed*dt, FieldMinY, FieldMaxY)
		if !rt.DoorOpen {
			p.X = min(p.X, DoorGateX)
		}
	}

	s.stage.Tick(&s.World, dt)
	s.awardFragment()

	for _, p := range s.Sorted() {
		c := s.Controls[p.ID]
		if c == nil {
			continue
		}
		if pressed := c.TakePress(); pressed && !p.Down {
			s.stage.Interact(&s.World, p.ID)
		}
	}

	s.Revive(dt)

	if s.AllDown() {
		s.ResetStage()
		s.Resets++
		s.System("Room reset.")
		return
	}

	layout := s.stage.Layout()
	if layout.HasExit && s.stage.Runtime().DoorOpen && s.AllIn(layout.ExitZone) {
		s.Advance()
	}
}

func (s *Sim) awardFragment() {
	rt := s.stage.Runtime()
	if rt.FragmentAwarded || !s.stage.FragmentReady() {
		return
	}
	rt.FragmentAwarded = true
	frag := s.Secret.Fragments[s.Index]
	s.System(fmt.Sprintf("Code fragment found: %s (hint %d)", frag.Text, frag.Hint))
}

// FragmentRevealed 第 i 块碎片是否对客户端可见
func (s *Sim) FragmentRevealed(i int) bool {
	if i < s.Index {
		return true
	}
	return i == s.Index && s.stage.Runtime().FragmentAwarded
}

// SubmitCode 在最终关卡校验逃脱密码；失败原因写入事件日志
func (s *Sim) SubmitCode(raw string) bool {
	gate, ok := s.stage.(CodeGate)
	switch {
	case !ok:
		s.System("Not at the final gate yet.")
		return false
	case !gate.PlatesHeld():
		s.System("Both plates must be held.")
		return false
	case !gate.PanelActive():
		s.System("Interact with the panel first.")
		return false
	case NormalizeCode(raw) != s.Secret.Code:
		s.System("Wrong code.")
		return false
	}
	gate.Unlock()
	s.System("Final code accepted!")
	return true
}

// CanSubmit 当前是否满足提交最终密码的条件
func (s *Sim) CanSubmit() bool {
	gate, ok := s.stage.(CodeGate)
	return ok && gate.CodeReady()
}

// FinalUnlocked 最终密码是否已被接受
func (s *Sim) FinalUnlocked() bool {
	gate, ok := s.stage.(CodeGate)
	return ok && gate.Unlocked()
}
