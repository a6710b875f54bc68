package game

// StageCount 关卡总数
const StageCount = 5

// Layout 关卡静态布局
type Layout struct {
	Index    int
	ExitZone Rect
	HasExit  bool
}

// Runtime 关卡运行期公共状态；各关卡的谜题状态保存在各自实现中
type Runtime struct {
	DoorOpen        bool
	FragmentAwarded bool
	Entities        []*Entity

	door *Entity
}

// OpenDoor 打开出口门并同步门实体
func (rt *Runtime) OpenDoor() {
	rt.DoorOpen = true
	if rt.door != nil {
		rt.door.Open = true
	}
}

// Stage 一个谜题关卡。构造即初始化；Interact 在玩家按下交互键时调用，
// Tick 每个模拟步调用一次。
type Stage interface {
	Layout() Layout
	Runtime() *Runtime
	Interact(w *World, id PlayerID)
	Tick(w *World, dt float64)
	// FragmentReady 本关卡的密码碎片是否满足发放条件
	FragmentReady() bool
	// PrivateHint 指定角色可见的私有提示，不可见时返回空串
	PrivateHint(role Role) string
}

// CodeGate 需要输入最终密码的关卡
type CodeGate interface {
	// CodeReady 是否满足提交密码的前置条件
	CodeReady() bool
	PlatesHeld() bool
	PanelActive() bool
	Unlock()
	Unlocked() bool
}

var stageBuilders = [StageCount]func() Stage{
	newSpikeGate,
	newLeverHall,
	newBlockVault,
	newFloodRoom,
	newFinalGate,
}

// NewStage 构建指定序号关卡的全新状态
func NewStage(index int) Stage {
	if index < 0 {
		index = 0
	}
	if index >= StageCount {
		index = StageCount - 1
	}
	return stageBuilders[index]()
}

// stageBase 提供布局、门与默认碎片条件
type stageBase struct {
	layout Layout
	rt     Runtime
}

func newStageBase(index int, ents ...*Entity) stageBase {
	door := newEntity("door", KindDoor, 885, 240, 30, 80)
	return stageBase{
		layout: Layout{
			Index:    index,
			ExitZone: Rect{X: 900, Y: 200, W: 60, H: 140},
			HasExit:  true,
		},
		rt: Runtime{
			Entities: append(ents, door),
			door:     door,
		},
	}
}

func (b *stageBase) Layout() Layout { return b.layout }

func (b *stageBase) Runtime() *Runtime { return &b.rt }

func (b *stageBase) FragmentReady() bool { return b.rt.DoorOpen }

func (b *stageBase) PrivateHint(Role) string { return "" }
