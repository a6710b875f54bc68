package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"temple/game"
)

// ProtocolVersion welcome 消息中的协议版本
const ProtocolVersion = 1

// 入站消息类型
const (
	TypeHello      = "hello"
	TypeJoin       = "join"
	TypeReady      = "ready"
	TypeInput      = "input"
	TypePing       = "ping"
	TypeQuickChat  = "quick_chat"
	TypeCodeSubmit = "code_submit"
)

// error 消息的错误码
const (
	ErrCodeBadType       = "bad_type"
	ErrCodeNotJoined     = "not_joined"
	ErrCodeRoomFull      = "room_full"
	ErrCodeBadMessage    = "bad_message"
	ErrCodeAlreadyJoined = "already_joined"
)

var (
	// ErrBadMessage 入站数据不是 JSON 对象
	ErrBadMessage = errors.New("message is not a JSON object")
	// ErrUnknownType 入站消息类型未知
	ErrUnknownType = errors.New("unknown message type")
)

// 入站请求：按类型解码后的载荷。字段类型不符时取零值而不是报错。

type HelloRequest struct{}

type JoinRequest struct {
	RoomCode   string `json:"room_code,omitempty" jsonschema:"description=room to join; empty creates a new room"`
	PlayerName string `json:"player_name,omitempty" jsonschema:"maxLength=16"`
}

type ReadyRequest struct {
	Ready bool `json:"ready"`
}

type InputRequest struct {
	Seq      int64   `json:"seq"`
	MoveX    float64 `json:"move_x"`
	MoveY    float64 `json:"move_y"`
	Interact bool    `json:"interact"`
}

type PingRequest struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label,omitempty" jsonschema:"maxLength=12"`
}

type QuickChatRequest struct {
	PresetID string `json:"preset_id" jsonschema:"maxLength=32"`
}

type CodeSubmitRequest struct {
	Code string `json:"code"`
}

// fields 宽松读取 JSON 对象字段
type fields map[string]json.RawMessage

func (f fields) str(key string) string {
	raw, ok := f[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

func (f fields) num(key string) float64 {
	raw, ok := f[key]
	if !ok {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	if s := f.str(key); s != "" {
		// ParseFloat 接受 "NaN"/"Inf"，非有限值一律按 0 处理
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			return v
		}
	}
	return 0
}

func (f fields) integer(key string) int64 {
	n := f.num(key)
	if n > 1<<53 || n < -(1<<53) {
		return 0
	}
	return int64(n)
}

func (f fields) boolean(key string) bool {
	raw, ok := f[key]
	if !ok {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	if n := f.num(key); n != 0 {
		return true
	}
	v, _ := strconv.ParseBool(strings.TrimSpace(f.str(key)))
	return v
}

// DecodeRequest 解析一条入站消息，返回其类型与对应请求结构体
func DecodeRequest(b []byte) (string, any, error) {
	var f fields
	if err := json.Unmarshal(b, &f); err != nil || f == nil {
		return "", nil, ErrBadMessage
	}
	typ := f.str("type")
	switch typ {
	case TypeHello:
		return typ, HelloRequest{}, nil
	case TypeJoin:
		return typ, JoinRequest{RoomCode: f.str("room_code"), PlayerName: f.str("player_name")}, nil
	case TypeReady:
		return typ, ReadyRequest{Ready: f.boolean("ready")}, nil
	case TypeInput:
		return typ, InputRequest{
			Seq:      f.integer("seq"),
			MoveX:    f.num("move_x"),
			MoveY:    f.num("move_y"),
			Interact: f.boolean("interact"),
		}, nil
	case TypePing:
		return typ, PingRequest{X: f.num("x"), Y: f.num("y"), Label: f.str("label")}, nil
	case TypeQuickChat:
		return typ, QuickChatRequest{PresetID: f.str("preset_id")}, nil
	case TypeCodeSubmit:
		return typ, CodeSubmitRequest{Code: f.str("code")}, nil
	}
	return typ, nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
}

// 出站消息

type WelcomeMsg struct {
	Type    string `json:"type"`
	Version int    `json:"version"`
}

type RosterEntry struct {
	PlayerID game.PlayerID `json:"player_id"`
	Role     game.Role     `json:"role"`
	Ready    bool          `json:"ready"`
	Name     string        `json:"name,omitempty"`
}

type JoinedMsg struct {
	Type     string        `json:"type"`
	RoomCode string        `json:"room_code"`
	PlayerID game.PlayerID `json:"player_id"`
	Role     game.Role     `json:"role"`
	Players  []RosterEntry `json:"players"`
}

type RosterData struct {
	Players []RosterEntry `json:"players"`
}

type EventMsg struct {
	Type string `json:"type"`
	Name string `json:"name"`
	Data any    `json:"data"`
}

type ErrorMsg struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type PlayerSnapshot struct {
	PlayerID       game.PlayerID `json:"player_id"`
	Role           game.Role     `json:"role"`
	X              float64       `json:"x"`
	Y              float64       `json:"y"`
	HP             int           `json:"hp"`
	Down           bool          `json:"down"`
	ReviveProgress float64       `json:"revive_progress"`
	Ready          bool          `json:"ready"`
}

// FragmentUI 未发放的碎片 Frag 为 null
type FragmentUI struct {
	Hint    int     `json:"hint"`
	Awarded bool    `json:"awarded"`
	Frag    *string `json:"frag"`
}

// UIBlock 按接收者角色裁剪的信息
type UIBlock struct {
	RoomCount     int          `json:"room_count"`
	Fragments     []FragmentUI `json:"fragments"`
	FinalUnlocked bool         `json:"final_unlocked"`
	CanSubmit     bool         `json:"can_submit"`
	PrivateHint   string       `json:"private_hint"`
	Escaped       bool         `json:"escaped"`
}

type StateMsg struct {
	Type      string            `json:"type"`
	Tick      int64             `json:"tick"`
	RoomIndex int               `json:"room_index"`
	Players   []PlayerSnapshot  `json:"players"`
	Entities  []game.EntityView `json:"entities"`
	Messages  []game.Event      `json:"messages"`
	UI        UIBlock           `json:"ui"`
}

func NewWelcome() WelcomeMsg {
	return WelcomeMsg{Type: "welcome", Version: ProtocolVersion}
}

func NewError(code, message string) ErrorMsg {
	return ErrorMsg{Type: "error", Code: code, Message: message}
}

func NewRosterEvent(players []RosterEntry) EventMsg {
	return EventMsg{Type: "event", Name: "roster", Data: RosterData{Players: players}}
}

// Encode 序列化出站消息；失败只记录日志
func Encode(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		Log.Errorf("encode %T: %v", v, err)
		return nil
	}
	return b
}

// truncate 按字符截断
func truncate(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}
