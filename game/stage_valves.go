package game

import (
	"fmt"
	"strings"
)

const (
	waterRisePerMistake = 0.25
	waterDecayPerSecond = 0.05
	waterDangerLevel    = 0.65
	waterMaxHeight      = 160.0
	floorY              = 540.0
)

// ValveOrder 阀门的正确开启顺序
var ValveOrder = [3]string{"v2", "v1", "v3"}

// floodRoom 第四关：学者读管道标记得知顺序，守护者按序开阀；开错水位上涨
type floodRoom struct {
	stageBase

	sign   *Entity
	valves [3]*Entity
	water  *Entity

	revealed bool
	step     int
	level    float64
	solved   bool
}

func newFloodRoom() Stage {
	s := &floodRoom{
		sign: newEntity("sign", KindSign, 160, 110, 60, 80),
		valves: [3]*Entity{
			newEntity("v1", KindValve, 450, 200, 46, 46),
			newEntity("v2", KindValve, 550, 200, 46, 46),
			newEntity("v3", KindValve, 650, 200, 46, 46),
		},
		water: newEntity("water", KindWater, 0, 380, 960, 0),
	}
	s.stageBase = newStageBase(3, s.sign, s.valves[0], s.valves[1], s.valves[2], s.water)
	return s
}

func (s *floodRoom) Interact(w *World, id PlayerID) {
	p := w.Player(id)
	if p == nil {
		return
	}
	switch p.Role {
	case RoleScholar:
		if nearest(p, 60, s.sign) != nil && !s.revealed {
			s.revealed = true
			w.System("Scholar read pipe markings.")
		}
	case RoleGuardian:
		if v := nearest(p, 60, s.valves[:]...); v != nil {
			s.TurnValve(w, v.ID)
		}
	}
}

// TurnValve 开启指定阀门；顺序错误时进度归零并抬高水位
func (s *floodRoom) TurnValve(w *World, valveID string) {
	if s.solved {
		return
	}
	if s.step < len(ValveOrder) && valveID == ValveOrder[s.step] {
		s.step++
		w.System(fmt.Sprintf("Valve OK (%d/%d).", s.step, len(ValveOrder)))
		if s.step >= len(ValveOrder) {
			s.solved = true
			s.rt.OpenDoor()
			w.System("Valves solved!")
		}
		return
	}
	s.level = min(1, s.level+waterRisePerMistake)
	s.step = 0
	w.System("Wrong valve! Water rises.")
}

func (s *floodRoom) Tick(w *World, dt float64) {
	s.sign.Read = s.revealed

	s.level = max(0, s.level-dt*waterDecayPerSecond)
	h := float64(int(waterMaxHeight * s.level))
	s.water.H = h
	s.water.Y = floorY - h

	if s.level > waterDangerLevel && h > 0 {
		w.hazard(s.water.Rect, 1, "water_room4", 0.6)
	}
	if s.solved {
		s.rt.OpenDoor()
	}
}

func (s *floodRoom) PrivateHint(role Role) string {
	if role != RoleScholar || !s.revealed {
		return ""
	}
	parts := make([]string, len(ValveOrder))
	for i, v := range ValveOrder {
		parts[i] = strings.TrimPrefix(v, "v")
	}
	return "Valves order: " + strings.Join(parts, "-")
}
