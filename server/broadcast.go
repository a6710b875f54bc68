package server

import (
	"temple/game"
)

// buildStateLocked 构建发给指定角色的状态快照；调用方持有 mu
func (r *Room) buildStateLocked(role game.Role) StateMsg {
	sim := r.sim
	players := make([]PlayerSnapshot, 0, len(sim.Players))
	for _, p := range sim.Sorted() {
		players = append(players, PlayerSnapshot{
			PlayerID:       p.ID,
			Role:           p.Role,
			X:              p.X,
			Y:              p.Y,
			HP:             p.HP,
			Down:           p.Down,
			ReviveProgress: p.ReviveProgress,
			Ready:          p.Ready,
		})
	}
	ents := sim.Stage().Runtime().Entities
	views := make([]game.EntityView, 0, len(ents))
	for _, e := range ents {
		views = append(views, e.View())
	}
	return StateMsg{
		Type:      "state",
		Tick:      sim.Tick,
		RoomIndex: sim.Index,
		Players:   players,
		Entities:  views,
		Messages:  sim.Log.Entries(),
		UI:        buildUI(sim, role),
	}
}

// buildUI 信息不对称：碎片发放前不下发文本，私有提示只给学者
func buildUI(sim *game.Sim, role game.Role) UIBlock {
	frags := make([]FragmentUI, 0, game.StageCount)
	for i, f := range sim.Secret.Fragments {
		ui := FragmentUI{Hint: f.Hint}
		if sim.FragmentRevealed(i) {
			text := f.Text
			ui.Awarded = true
			ui.Frag = &text
		}
		frags = append(frags, ui)
	}
	return UIBlock{
		RoomCount:     game.StageCount,
		Fragments:     frags,
		FinalUnlocked: sim.FinalUnlocked(),
		CanSubmit:     sim.CanSubmit(),
		PrivateHint:   sim.Stage().PrivateHint(role),
		Escaped:       sim.Escaped,
	}
}

// broadcastStateLocked 每个连接单独构建并发送；发送失败不影响其他连接
func (r *Room) broadcastStateLocked() {
	byRole := make(map[game.Role][]byte, MaxOccupants)
	for _, pc := range r.conns {
		b, ok := byRole[pc.Role]
		if !ok {
			b = Encode(r.buildStateLocked(pc.Role))
			byRole[pc.Role] = b
		}
		r.sendTo(pc, b)
	}
}
