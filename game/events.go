package game

// MaxEvents 事件日志保留的最大条数
const MaxEvents = 25

// EventKind 事件类型
type EventKind string

const (
	EventSystem EventKind = "system"
	EventPing   EventKind = "ping"
	EventChat   EventKind = "chat"
)

// Event 房间事件日志条目（随状态广播给客户端）
type Event struct {
	T        int64     `json:"t"`
	Kind     EventKind `json:"kind"`
	PlayerID PlayerID  `json:"player_id,omitempty"`
	X        *float64  `json:"x,omitempty"`
	Y        *float64  `json:"y,omitempty"`
	Text     string    `json:"text"`
}

// EventLog 有界事件日志，只保留最近 MaxEvents 条
type EventLog struct {
	entries []Event
}

// Append 追加一条事件，超出上限时丢弃最旧的
func (l *EventLog) Append(e Event) {
	l.entries = append(l.entries, e)
	if n := len(l.entries); n > MaxEvents {
		// 拷贝到新切片，避免底层数组无限增长
		trimmed := make([]Event, MaxEvents, MaxEvents*2)
		copy(trimmed, l.entries[n-MaxEvents:])
		l.entries = trimmed
	}
}

// System 追加一条系统消息
func (l *EventLog) System(tick int64, text string) {
	l.Append(Event{T: tick, Kind: EventSystem, Text: text})
}

// Entries 返回日志副本
func (l *EventLog) Entries() []Event {
	out := make([]Event, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len 当前条数
func (l *EventLog) Len() int { return len(l.entries) }

// Last 最近一条事件；日志为空时 ok 为 false
func (l *EventLog) Last() (Event, bool) {
	if len(l.entries) == 0 {
		return Event{}, false
	}
	return l.entries[len(l.entries)-1], true
}
