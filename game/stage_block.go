package game

const blockSpeed = 120.0

// blockVault 第三关：守护者把石块推上压板关闭地刺，学者按下开关
type blockVault struct {
	stageBase

	block     *Entity
	plate     *Entity
	spikes    *Entity
	switchEnt *Entity

	grabbedBy PlayerID
	switchOn  bool
}

func newBlockVault() Stage {
	s := &blockVault{
		block:     newEntity("block", KindBlock, 360, 300, 50, 50),
		plate:     newEntity("plate", KindPlate, 610, 320, 46, 46),
		spikes:    newEntity("spikes_3", KindSpikes, 520, 210, 220, 80),
		switchEnt: newEntity("switch", KindSwitch, 800, 150, 40, 40),
	}
	s.spikes.Active = true
	s.stageBase = newStageBase(2, s.block, s.plate, s.spikes, s.switchEnt)
	return s
}

func (s *blockVault) Interact(w *World, id PlayerID) {
	p := w.Player(id)
	if p == nil {
		return
	}
	switch p.Role {
	case RoleGuardian:
		if nearest(p, 55, s.block) != nil {
			s.grabbedBy = id
		}
	case RoleScholar:
		if nearest(p, 55, s.switchEnt) != nil && !s.switchOn {
			s.switchOn = true
			w.System("Switch activated.")
			s.check()
		}
	}
}

func (s *blockVault) Tick(w *World, dt float64) {
	// 只有守护者持续按住交互键时石块才跟随
	if c := w.Control(s.grabbedBy); s.grabbedBy == 1 && c != nil && c.Interact {
		s.block.X = Clamp(s.block.X+c.MoveX*blockSpeed*dt, 80, 860)
		s.block.Y = Clamp(s.block.Y+c.MoveY*blockSpeed*dt, 80, 460)
	} else {
		s.grabbedBy = 0
	}

	s.spikes.Active = !s.block.Overlaps(s.plate.Rect)
	if s.spikes.Active {
		w.hazard(s.spikes.Rect, 1, s.spikes.ID, 0.35)
	}

	s.check()
	s.switchEnt.On = s.switchOn
	s.block.Grabbed = s.grabbedBy != 0
}

func (s *blockVault) check() {
	if s.switchOn && !s.spikes.Active {
		s.rt.OpenDoor()
	}
}
