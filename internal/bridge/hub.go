// Package bridge 通过 websocket 把引擎的表现层协作者桥接到浏览器客户端
//
// 出站：每个 Renderer/Voice/Movement/Navigator/Ambience 调用都被编码为
// {"type": ..., "payload": ...} JSON 帧广播给所有客户端。
// 入站：客户端发来的 click/arrived/advance/submit/adjust 等事件进入队列，
// 由宿主循环在引擎线程上调用 Poll() 依次处理。引擎本身从不被网络 goroutine 直接调用。
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/decker502/casefile/pkg/game"
)

const (
	// DefaultEventBuffer 入站事件队列容量，队列满时丢弃新事件
	DefaultEventBuffer = 256

	sendBuffer = 64
	writeWait  = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Event 入站事件
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// outbound 出站帧
type outbound struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub websocket 桥接中心
//
// 出站方法（Renderer 等）必须在引擎线程上调用；网络读写在各客户端的 goroutine 中进行。
type Hub struct {
	mu      sync.Mutex
	clients map[*client]bool
	mounts  map[game.Mount]bool // nil 表示客户端未声明，视为全部存在

	// sticky 保存最近一次的持久状态帧，新客户端连接时重放
	sticky map[string][]byte
	order  []string

	events chan Event

	// 以下字段只在引擎线程上访问
	arrival func()
	walking uint64
}

// NewHub 创建桥接中心
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]bool),
		sticky:  make(map[string][]byte),
		events:  make(chan Event, DefaultEventBuffer),
	}
}

// ServeHTTP 升级为 websocket 连接
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Bridge] upgrade: %v", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.clients[c] = true
	for _, key := range h.order {
		c.send <- h.sticky[key]
		if len(c.send) == cap(c.send) {
			break
		}
	}
	n := len(h.clients)
	h.mu.Unlock()
	log.Printf("[Bridge] 客户端已连接 (%d)", n)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go h.writePump(ctx, c)
	h.readPump(c)

	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	conn.Close()
	log.Printf("[Bridge] 客户端已断开")
}

func (h *Hub) readPump(c *client) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			log.Printf("[Bridge] Warning: 无法解析入站消息: %v", err)
			continue
		}
		if ev.Type == "hello" {
			h.handleHello(ev.Payload)
			continue
		}
		select {
		case h.events <- ev:
		default:
			log.Printf("[Bridge] Warning: 事件队列已满，丢弃 %s", ev.Type)
		}
	}
}

func (h *Hub) writePump(ctx context.Context, c *client) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("[Bridge] send error: %v", err)
				c.conn.Close()
				return
			}
		}
	}
}

// handleHello 客户端声明自己提供的挂载点
func (h *Hub) handleHello(payload json.RawMessage) {
	var hello struct {
		Mounts []game.Mount `json:"mounts"`
	}
	if err := json.Unmarshal(payload, &hello); err != nil {
		log.Printf("[Bridge] Warning: hello: %v", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if hello.Mounts == nil {
		h.mounts = nil
		return
	}
	h.mounts = make(map[game.Mount]bool, len(hello.Mounts))
	for _, m := range hello.Mounts {
		h.mounts[m] = true
	}
}

// Clients 当前连接数
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// broadcast 编码并发送给所有客户端
// sticky 非空时记住该帧，新客户端连接时重放（同一 key 只保留最新一帧）
func (h *Hub) broadcast(typ, sticky string, payload any) {
	data, err := json.Marshal(outbound{Type: typ, Payload: payload})
	if err != nil {
		log.Printf("[Bridge] Warning: 无法编码 %s: %v", typ, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if sticky != "" {
		if _, ok := h.sticky[sticky]; !ok {
			h.order = append(h.order, sticky)
		}
		h.sticky[sticky] = data
	}
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			log.Printf("[Bridge] Warning: 客户端发送队列已满，丢弃 %s", typ)
		}
	}
}

// forget 清除持久状态帧
func (h *Hub) forget(sticky string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sticky, sticky)
	for i, key := range h.order {
		if key == sticky {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}

// Serve 在 addr 上提供 /ws 端点，ctx 取消时关闭服务器
func (h *Hub) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("[Bridge] 监听 %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
