package game

import "strings"

// LeverTarget 拉杆需要达到的目标状态
var LeverTarget = [3]int{2, 0, 1}

var leverLetters = [3]string{"L", "M", "R"}

// leverHall 第二关：学者读壁画获得提示，守护者拨动三根拉杆
type leverHall struct {
	stageBase

	mural     *Entity
	levers    [3]*Entity
	muralRead bool
	solved    bool
}

func newLeverHall() Stage {
	s := &leverHall{
		mural: newEntity("mural", KindMural, 180, 110, 60, 80),
		levers: [3]*Entity{
			newEntity("lever1", KindLever, 520, 110, 30, 60),
			newEntity("lever2", KindLever, 590, 110, 30, 60),
			newEntity("lever3", KindLever, 660, 110, 30, 60),
		},
	}
	s.stageBase = newStageBase(1, s.mural, s.levers[0], s.levers[1], s.levers[2])
	return s
}

func (s *leverHall) Interact(w *World, id PlayerID) {
	p := w.Player(id)
	if p == nil {
		return
	}
	switch p.Role {
	case RoleScholar:
		if nearest(p, 60, s.mural) != nil && !s.muralRead {
			s.muralRead = true
			w.System("Scholar read the mural.")
		}
	case RoleGuardian:
		lever := nearest(p, 55, s.levers[:]...)
		if lever == nil || s.solved {
			return
		}
		lever.State = (lever.State + 1) % 3
		s.check(w)
	}
}

// LeverStates 当前三根拉杆的状态
func (s *leverHall) LeverStates() [3]int {
	return [3]int{s.levers[0].State, s.levers[1].State, s.levers[2].State}
}

func (s *leverHall) check(w *World) {
	if s.LeverStates() == LeverTarget {
		s.solved = true
		s.rt.OpenDoor()
		w.System("Levers solved!")
		return
	}
	// 拨错触发机关箭，打向守护者
	w.Damage(w.Player(1), 1, "arrow_room2", 0.5)
}

func (s *leverHall) Tick(*World, float64) {
	s.mural.Read = s.muralRead
}

func (s *leverHall) PrivateHint(role Role) string {
	if role != RoleScholar || !s.muralRead {
		return ""
	}
	parts := make([]string, len(LeverTarget))
	for i, v := range LeverTarget {
		parts[i] = leverLetters[v]
	}
	return "Levers target: " + strings.Join(parts, "-")
}
