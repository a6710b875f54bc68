package game

import "encoding/json"

// EntityKind 可渲染实体的类型标签
type EntityKind string

const (
	KindPlate  EntityKind = "plate"
	KindSpikes EntityKind = "spikes"
	KindLever  EntityKind = "lever"
	KindValve  EntityKind = "valve"
	KindSwitch EntityKind = "switch"
	KindBlock  EntityKind = "block"
	KindSign   EntityKind = "sign"
	KindMural  EntityKind = "mural"
	KindPanel  EntityKind = "panel"
	KindWater  EntityKind = "water"
	KindDoor   EntityKind = "door"
)

// Entity 关卡中的矩形实体。Kind 决定哪些字段有意义：
// spikes/panel 用 Active，door 用 Open，block 用 Grabbed，
// mural/sign 用 Read，switch 用 On，lever 用 State
type Entity struct {
	ID   string
	Kind EntityKind
	Rect

	Active  bool
	Open    bool
	Grabbed bool
	Read    bool
	On      bool
	State   int
}

func newEntity(id string, kind EntityKind, x, y, w, h float64) *Entity {
	return &Entity{ID: id, Kind: kind, Rect: Rect{X: x, Y: y, W: w, H: h}}
}

// EntityView 实体的线上表示；与类型无关的字段为空
type EntityView struct {
	ID      string     `json:"id,omitempty"`
	Type    EntityKind `json:"type"`
	X       float64    `json:"x"`
	Y       float64    `json:"y"`
	W       float64    `json:"w"`
	H       float64    `json:"h"`
	Active  *bool      `json:"active,omitempty"`
	Open    *bool      `json:"open,omitempty"`
	Grabbed *bool      `json:"grabbed,omitempty"`
	Read    *bool      `json:"read,omitempty"`
	On      *bool      `json:"on,omitempty"`
	State   *int       `json:"state,omitempty"`
}

// View 只保留与该类型相关的字段
func (e *Entity) View() EntityView {
	out := EntityView{ID: e.ID, Type: e.Kind, X: e.X, Y: e.Y, W: e.W, H: e.H}
	switch e.Kind {
	case KindSpikes, KindPanel:
		out.Active = &e.Active
	case KindDoor:
		out.Open = &e.Open
	case KindBlock:
		out.Grabbed = &e.Grabbed
	case KindMural, KindSign:
		out.Read = &e.Read
	case KindSwitch:
		out.On = &e.On
	case KindLever:
		out.State = &e.State
	}
	return out
}

func (e *Entity) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.View())
}

// nearest 返回离玩家最近且在半径内的实体中心；没有则返回 nil
func nearest(p *PlayerState, radius float64, candidates ...*Entity) *Entity {
	var best *Entity
	bestD := radius * radius
	for _, e := range candidates {
		if e == nil {
			continue
		}
		cx, cy := e.Center()
		if d := Dist2(p.X, p.Y, cx, cy); d <= bestD {
			best, bestD = e, d
		}
	}
	return best
}
