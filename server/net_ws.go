package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = 25 * time.Second
	maxFrameSize = 1 << 20 // 1MB
)

// ClientConn 一个 WebSocket 连接：读协程解析请求，写协程从 send 队列写出
type ClientConn struct {
	id   uuid.UUID
	ws   *websocket.Conn
	send chan []byte

	done      chan struct{}
	closeOnce sync.Once

	// 仅由读协程访问
	room   *Room
	player *PlayerConn
}

func NewClientConn(ws *websocket.Conn, queue int) *ClientConn {
	if queue <= 0 {
		queue = DefaultConfig().SendQueue
	}
	return &ClientConn{
		id:   uuid.New(),
		ws:   ws,
		send: make(chan []byte, queue),
		done: make(chan struct{}),
	}
}

func (c *ClientConn) ID() uuid.UUID { return c.id }

// Send 将要发送的消息压入队列（非阻塞，满则丢弃），不会阻塞 Tick
func (c *ClientConn) Send(b []byte) error {
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}
	select {
	case c.send <- b:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// Close 关闭底层连接；可重复调用
func (c *ClientConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.ws.Close()
	})
	return err
}

// writePump 独立协程，负责从 send 队列写出到 WS，并定时发送 ping 保活
func (c *ClientConn) writePump(ctx context.Context) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			return ErrConnClosed
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}

// readPump 读取客户端消息：hello/join 在连接层处理，其余转为意图投递给房间
func (c *ClientConn) readPump(ctx context.Context, rm *RoomManager) error {
	c.ws.SetReadLimit(maxFrameSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			return err
		}
		if err := c.handle(ctx, rm, payload); err != nil {
			return err
		}
	}
}

// handle 处理一条入站消息；只有房间已关闭或连接被取消时返回错误
func (c *ClientConn) handle(ctx context.Context, rm *RoomManager, payload []byte) error {
	typ, req, err := DecodeRequest(payload)
	if errors.Is(err, ErrBadMessage) {
		_ = c.Send(Encode(NewError(ErrCodeBadMessage, "Invalid JSON.")))
		return nil
	}

	switch typ {
	case TypeHello:
		_ = c.Send(Encode(NewWelcome()))
		return nil
	case TypeJoin:
		jr := req.(JoinRequest)
		room, pc, err := rm.Join(c, jr.RoomCode, jr.PlayerName)
		if err != nil {
			Log.Debugf("join failed conn=%s: %v", c.id, err)
			return nil
		}
		c.room, c.player = room, pc
		return nil
	}

	if c.room == nil {
		_ = c.Send(Encode(NewError(ErrCodeNotJoined, "Send join first.")))
		return nil
	}
	if err != nil {
		_ = c.Send(Encode(NewError(ErrCodeBadType, fmt.Sprintf("Unknown type: %s", typ))))
		return nil
	}

	in, ok := IntentFrom(c.player.PlayerID, req)
	if !ok {
		return nil
	}
	in.ConnID = c.id
	if err := c.room.Submit(ctx, in); err != nil {
		return fmt.Errorf("submit to room %s: %w", c.room.Code, err)
	}
	return nil
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 允许所有来源（生产环境需严格限制）
		return true
	},
}

// NewWSHandler WebSocket 接入：连接后先发 welcome，随后读写协程并行，
// 任一退出即关闭连接并从房间注销
func NewWSHandler(rm *RoomManager, cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			Log.Warnf("upgrade error: %v", err)
			return
		}
		c := NewClientConn(ws, cfg.SendQueue)
		Log.Infof("connected conn=%s remote=%s", c.id, r.RemoteAddr)
		_ = c.Send(Encode(NewWelcome()))

		eg, ctx := errgroup.WithContext(context.Background())
		eg.Go(func() error {
			defer c.Close()
			return c.readPump(ctx, rm)
		})
		eg.Go(func() error {
			defer c.Close()
			return c.writePump(ctx)
		})
		err = eg.Wait()

		rm.Disconnect(c)
		Log.Infof("disconnected conn=%s: %v", c.id, err)
	}
}
