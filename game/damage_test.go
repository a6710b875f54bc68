package game

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func newPair() *Sim {
	s := NewSim(SeedFor("TEST1"))
	s.AddPlayer(1)
	s.AddPlayer(2)
	return s
}

func TestMitigate(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.IntRange(1, 10).Draw(t, "raw")
		if got := Mitigate(RoleGuardian, raw); got != max(1, raw-1) {
			t.Fatalf("guardian %d -> %d", raw, got)
		}
		if got := Mitigate(RoleScholar, raw); got != raw {
			t.Fatalf("scholar %d -> %d", raw, got)
		}
	})
}

func TestDamageCooldownPerSource(t *testing.T) {
	s := newPair()
	p := s.Player(2)

	if !s.Damage(p, 1, "spikes", 0.5) {
		t.Fatal("first hit should land")
	}
	s.Tick += 5 // 0.25s
	if s.Damage(p, 1, "spikes", 0.5) {
		t.Fatal("same source inside cooldown must not land")
	}
	if !s.Damage(p, 1, "water", 0.5) {
		t.Fatal("other source has its own cooldown")
	}
	if p.HP != 1 {
		t.Fatalf("hp = %d, want 1", p.HP)
	}
	s.Tick += 5
	if !s.Damage(p, 1, "spikes", 0.5) {
		t.Fatal("hit after cooldown should land")
	}
	if p.HP != 0 || !p.Down {
		t.Fatalf("expected down at 0 hp, got hp=%d down=%v", p.HP, p.Down)
	}
	last, _ := s.Log.Last()
	if last.Text != "Player 2 is down!" {
		t.Fatalf("last event = %q", last.Text)
	}
	s.Tick += 100
	if s.Damage(p, 1, "spikes", 0.5) {
		t.Fatal("down players take no damage")
	}
}

func TestDamageWithinCooldownAtMostOnce(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := newPair()
		id := PlayerID(rapid.IntRange(1, 2).Draw(t, "id"))
		p := s.Player(id)
		amount := rapid.IntRange(1, 3).Draw(t, "amount")
		hits := rapid.IntRange(1, 20).Draw(t, "hits")
		// 冷却 1 秒 = 20 tick，每次间隔不足一个周期
		for i := 0; i < hits; i++ {
			s.Damage(p, amount, "src", 1.0)
			s.Tick += int64(rapid.IntRange(0, 1).Draw(t, "gap"))
			if s.Tick >= 19 {
				break
			}
		}
		want := max(0, MaxHP-Mitigate(p.Role, amount))
		if p.HP != want {
			t.Fatalf("hp = %d, want %d", p.HP, want)
		}
		if p.HP < 0 || p.HP > MaxHP || p.Down != (p.HP == 0) {
			t.Fatalf("invariant broken: hp=%d down=%v", p.HP, p.Down)
		}
	})
}

func TestReviveCompletes(t *testing.T) {
	s := newPair()
	downed := s.Player(2)
	downed.HP, downed.Down = 0, true
	helper := s.Player(1)
	helper.X, helper.Y = downed.X+30, downed.Y
	s.Input(1, 0, 0, true)

	prev := 0.0
	for i := 0; i < 80 && downed.Down; i++ {
		s.Revive(DT)
		if downed.Down && downed.ReviveProgress < prev {
			t.Fatalf("progress decreased: %v -> %v", prev, downed.ReviveProgress)
		}
		prev = downed.ReviveProgress
	}
	if downed.Down || downed.HP != ReviveHP || downed.ReviveProgress != 0 {
		t.Fatalf("not revived: %+v", downed)
	}
	last, _ := s.Log.Last()
	if !strings.Contains(last.Text, "revived") {
		t.Fatalf("last event = %q", last.Text)
	}
}

func TestReviveResetsWhenConditionsLapse(t *testing.T) {
	cases := []struct {
		name  string
		lapse func(s *Sim)
	}{
		{"released interact", func(s *Sim) { s.Input(1, 0, 0, false) }},
		{"walked away", func(s *Sim) { s.Player(1).X += 100 }},
		{"helper down", func(s *Sim) { s.Player(1).HP, s.Player(1).Down = 0, true }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := newPair()
			downed := s.Player(2)
			downed.HP, downed.Down = 0, true
			s.Player(1).X, s.Player(1).Y = downed.X, downed.Y+20
			s.Input(1, 0, 0, true)
			for i := 0; i < 10; i++ {
				s.Revive(DT)
			}
			if downed.ReviveProgress <= 0 {
				t.Fatal("progress should accumulate")
			}
			c.lapse(s)
			s.Revive(DT)
			if downed.ReviveProgress != 0 {
				t.Fatalf("progress = %v, want 0", downed.ReviveProgress)
			}
		})
	}
}
