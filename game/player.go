package game

// PlayerID 房间内玩家编号，固定为 1 或 2
type PlayerID int

// Role 玩家角色，由编号决定
type Role string

const (
	RoleGuardian Role = "guardian"
	RoleScholar  Role = "scholar"
)

const (
	MaxHP = 3

	// ReviveHP 被救起后的血量（不回满）
	ReviveHP = 2

	GuardianSpeed = 135.0
	ScholarSpeed  = 165.0

	// 场地尺寸与可行走边界
	FieldWidth  = 960.0
	FieldHeight = 540.0
	FieldMinX   = 20.0
	FieldMaxX   = 940.0
	FieldMinY   = 20.0
	FieldMaxY   = 520.0

	// DoorGateX 出口门关闭时玩家横向位置上限
	DoorGateX = 871.0
)

// RoleFor 编号到角色的固定映射：1 号守护者，2 号学者
func RoleFor(id PlayerID) Role {
	if id == 1 {
		return RoleGuardian
	}
	return RoleScholar
}

// Speed 角色移动速度（单位/秒）
func (r Role) Speed() float64 {
	if r == RoleGuardian {
		return GuardianSpeed
	}
	return ScholarSpeed
}

// Spawn 角色出生点；所有关卡共用
func Spawn(role Role) (float64, float64) {
	if role == RoleGuardian {
		return 90, 130
	}
	return 90, 210
}

// PlayerState 模拟中的玩家化身（服务端权威状态）
type PlayerState struct {
	ID             PlayerID
	Role           Role
	X              float64
	Y              float64
	HP             int
	Down           bool
	Ready          bool
	ReviveProgress float64

	// 每个伤害源最近一次命中时间（秒），用于独立冷却
	damageCD map[string]float64
}

// NewPlayerState 在角色出生点创建满血玩家
func NewPlayerState(id PlayerID) *PlayerState {
	role := RoleFor(id)
	x, y := Spawn(role)
	return &PlayerState{
		ID:       id,
		Role:     role,
		X:        x,
		Y:        y,
		HP:       MaxHP,
		damageCD: make(map[string]float64),
	}
}

// ResetVitals 重置血量、倒地与复活进度及伤害冷却（进入或重开关卡时）
func (p *PlayerState) ResetVitals() {
	p.HP = MaxHP
	p.Down = false
	p.ReviveProgress = 0
	p.damageCD = make(map[string]float64)
}

// Respawn 回到出生点并重置状态
func (p *PlayerState) Respawn() {
	p.X, p.Y = Spawn(p.Role)
	p.ResetVitals()
}

// Control 玩家当前控制意图：移动方向与交互键
type Control struct {
	MoveX    float64
	MoveY    float64
	Interact bool

	// 自上次 Tick 以来是否出现过一次按下（上升沿），由 Tick 消费
	pressed bool
}

// Apply 写入最新输入；方向会被归一化，交互键上升沿被锁存
func (c *Control) Apply(moveX, moveY float64, interact bool) {
	c.MoveX, c.MoveY = Normalize(moveX, moveY)
	if interact && !c.Interact {
		c.pressed = true
	}
	c.Interact = interact
}

// TakePress 读取并清除按下锁存
func (c *Control) TakePress() bool {
	p := c.pressed
	c.pressed = false
	return p
}
