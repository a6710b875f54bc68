package game

const (
	spikeGateCycleTicks = 40 // 2 秒周期
	spikeGateHoldNeeded = 0.8
)

// spikeGate 第一关：两列错相位地刺 + 双压板同时按住开门
type spikeGate struct {
	stageBase

	plateA  *Entity
	plateB  *Entity
	spikesL *Entity
	spikesR *Entity
	holdT   float64
}

func newSpikeGate() Stage {
	s := &spikeGate{
		plateA:  newEntity("plate_a", KindPlate, 240, 360, 46, 46),
		plateB:  newEntity("plate_b", KindPlate, 690, 150, 46, 46),
		spikesL: newEntity("spikes_1_l", KindSpikes, 410, 20, 110, 500),
		spikesR: newEntity("spikes_1_r", KindSpikes, 560, 20, 110, 500),
	}
	s.stageBase = newStageBase(0, s.plateA, s.plateB, s.spikesL, s.spikesR)
	return s
}

func (s *spikeGate) Interact(*World, PlayerID) {}

func (s *spikeGate) Tick(w *World, dt float64) {
	phase := float64(w.Tick%spikeGateCycleTicks) / spikeGateCycleTicks
	// 两列活跃区间重叠，形成必须卡时机或硬抗的危险窗口
	s.spikesL.Active = phase < 0.7
	s.spikesR.Active = phase > 0.3

	if w.AnyIn(s.plateA.Rect) && w.AnyIn(s.plateB.Rect) {
		s.holdT += dt
	} else {
		s.holdT = max(0, s.holdT-2*dt)
	}

	if s.spikesL.Active {
		w.hazard(s.spikesL.Rect, 1, s.spikesL.ID, 0.28)
	}
	if s.spikesR.Active {
		w.hazard(s.spikesR.Rect, 1, s.spikesR.ID, 0.28)
	}

	if s.holdT >= spikeGateHoldNeeded {
		s.rt.OpenDoor()
	}
}
