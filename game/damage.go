package game

import "fmt"

const (
	// ReviveRadius 施救者与倒地者之间的最大距离
	ReviveRadius = 45.0
	// ReviveSeconds 持续施救所需时长
	ReviveSeconds = 3.5
)

// Damage 对玩家造成伤害。同一伤害源在冷却期内不重复生效，
// 不同伤害源的冷却互不影响；已倒地的玩家不再受伤。
// 守护者受到的伤害减 1（至少为 1）。返回是否实际扣血。
func (w *World) Damage(p *PlayerState, amount int, source string, cooldown float64) bool {
	if p == nil || p.Down {
		return false
	}
	now := w.Now()
	if last, ok := p.damageCD[source]; ok && now-last < cooldown {
		return false
	}
	if p.damageCD == nil {
		p.damageCD = make(map[string]float64)
	}
	p.damageCD[source] = now
	p.HP -= Mitigate(p.Role, amount)
	if p.HP <= 0 {
		p.HP = 0
		p.Down = true
		w.System(fmt.Sprintf("Player %d is down!", p.ID))
	}
	return true
}

// Mitigate 按角色折算伤害
func Mitigate(role Role, amount int) int {
	if role == RoleGuardian {
		return max(1, amount-1)
	}
	return amount
}

// Revive 推进倒地玩家的复活进度：搭档未倒地、距离足够近且按住交互键时累加，
// 任一条件不满足则清零。
func (w *World) Revive(dt float64) {
	for _, down := range w.Sorted() {
		if !down.Down {
			down.ReviveProgress = 0
			continue
		}
		helper := w.partnerOf(down.ID)
		if helper == nil || helper.Down || !w.Holding(helper.ID) ||
			Dist2(down.X, down.Y, helper.X, helper.Y) > ReviveRadius*ReviveRadius {
			down.ReviveProgress = 0
			continue
		}
		down.ReviveProgress += dt
		if down.ReviveProgress >= ReviveSeconds {
			down.Down = false
			down.HP = ReviveHP
			down.ReviveProgress = 0
			w.System(fmt.Sprintf("Player %d revived.", down.ID))
		}
	}
}

func (w *World) partnerOf(id PlayerID) *PlayerState {
	for pid, p := range w.Players {
		if pid != id {
			return p
		}
	}
	return nil
}
