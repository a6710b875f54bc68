package server

import (
	"errors"

	"github.com/google/uuid"

	"temple/game"
)

//go:generate go tool mockgen -destination=./mocks/sender_mock.go -package=mocks . Sender

var (
	// ErrSendQueueFull 发送队列已满，消息被丢弃
	ErrSendQueueFull = errors.New("send queue is full")
	// ErrConnClosed 连接已关闭
	ErrConnClosed = errors.New("connection closed")
)

// Sender 房间向客户端推送消息的出口；Send 不得阻塞
type Sender interface {
	ID() uuid.UUID
	Send(data []byte) error
	Close() error
}

// maxNameLen 显示名最大长度
const maxNameLen = 16

// PlayerConn 房间内一个连接的传输信息
type PlayerConn struct {
	Conn     Sender
	PlayerID game.PlayerID
	Role     game.Role
	Name     string
	// LastSeq 已见到的最大输入序列号，只增不减
	LastSeq int64
}
