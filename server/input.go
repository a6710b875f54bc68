package server

import (
	"github.com/google/uuid"

	"temple/game"
)

// IntentKind 连接处理器投递给房间的意图类型
type IntentKind int

const (
	IntentReady IntentKind = iota
	IntentInput
	IntentPing
	IntentChat
	IntentCode
)

// Intent 客户端意图，由房间在 Tick 中统一解释并驱动世界状态
type Intent struct {
	Kind     IntentKind
	PlayerID game.PlayerID
	// ConnID 发送方连接；与该编号当前的连接不符时意图作废
	ConnID uuid.UUID

	Ready    bool
	Seq      int64 // 客户端本地序列号，仅用于追踪
	MoveX    float64
	MoveY    float64
	Interact bool
	X        float64
	Y        float64
	Text     string
}

// IntentFrom 把已解码的请求转换为意图；不需要房间处理的请求返回 false
func IntentFrom(pid game.PlayerID, req any) (Intent, bool) {
	switch m := req.(type) {
	case ReadyRequest:
		return Intent{Kind: IntentReady, PlayerID: pid, Ready: m.Ready}, true
	case InputRequest:
		return Intent{Kind: IntentInput, PlayerID: pid, Seq: m.Seq, MoveX: m.MoveX, MoveY: m.MoveY, Interact: m.Interact}, true
	case PingRequest:
		return Intent{Kind: IntentPing, PlayerID: pid, X: m.X, Y: m.Y, Text: m.Label}, true
	case QuickChatRequest:
		return Intent{Kind: IntentChat, PlayerID: pid, Text: m.PresetID}, true
	case CodeSubmitRequest:
		return Intent{Kind: IntentCode, PlayerID: pid, Text: m.Code}, true
	}
	return Intent{}, false
}
