package game

const finalSpikeCycleTicks = 30 // 1.5 秒周期

// finalGate 最后一关：双压板 + 面板 + 最终密码
type finalGate struct {
	stageBase

	plateL *Entity
	plateR *Entity
	panel  *Entity
	spikes *Entity

	panelActive bool
	platesOK    bool
	unlocked    bool
}

func newFinalGate() Stage {
	s := &finalGate{
		plateL: newEntity("plate_l", KindPlate, 300, 360, 46, 46),
		plateR: newEntity("plate_r", KindPlate, 600, 360, 46, 46),
		panel:  newEntity("panel", KindPanel, 450, 180, 60, 60),
		spikes: newEntity("spikes_5", KindSpikes, 420, 240, 120, 80),
	}
	s.stageBase = newStageBase(4, s.plateL, s.plateR, s.panel, s.spikes)
	return s
}

func (s *finalGate) Interact(w *World, id PlayerID) {
	p := w.Player(id)
	if p == nil {
		return
	}
	if nearest(p, 70, s.panel) != nil {
		s.panelActive = true
	}
}

func (s *finalGate) Tick(w *World, _ float64) {
	phase := float64(w.Tick%finalSpikeCycleTicks) / finalSpikeCycleTicks
	s.spikes.Active = phase < 0.4
	if s.spikes.Active {
		w.hazard(s.spikes.Rect, 1, s.spikes.ID, 0.35)
	}

	s.platesOK = w.AnyIn(s.plateL.Rect) && w.AnyIn(s.plateR.Rect)
	s.panel.Active = s.panelActive

	if s.platesOK && s.unlocked {
		s.rt.OpenDoor()
	}
}

// 最后一块碎片在第一阶段（压板 + 面板）完成时发放，保证输入密码前可集齐
func (s *finalGate) FragmentReady() bool { return s.CodeReady() }

func (s *finalGate) CodeReady() bool { return s.platesOK && s.panelActive }

func (s *finalGate) PlatesHeld() bool { return s.platesOK }

func (s *finalGate) PanelActive() bool { return s.panelActive }

func (s *finalGate) Unlock() { s.unlocked = true }

func (s *finalGate) Unlocked() bool { return s.unlocked }
