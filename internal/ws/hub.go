package ws

import (
	"context"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/campusjam/CampusJam/internal/pkg/presence"
)

// Event WebSocket 下行事件封包
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Hub 维护活跃的客户端连接
// 房间按用户 ID 划分，同一用户的多个连接（多标签页、多设备）在同一房间，
// 推送给某个用户即推送到其房间内的全部连接
type Hub struct {
	// 注册的客户端
	clients map[*Client]bool

	// 用户房间 userID -> Client 集合
	rooms map[uint]map[*Client]bool

	// 互斥锁，保护 map 的并发读写
	mu sync.RWMutex

	// 注册请求通道
	register chan *Client

	// 注销请求通道
	unregister chan *Client

	// 定向推送通道 (内部使用)
	deliver chan *delivery

	presence *presence.Tracker
	logger   *zap.Logger
}

type delivery struct {
	userID uint
	event  *Event
}

func NewHub(tracker *presence.Tracker, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[uint]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan *delivery, 64),
		presence:   tracker,
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			if _, ok := h.rooms[client.userID]; !ok {
				h.rooms[client.userID] = make(map[*Client]bool)
			}
			h.rooms[client.userID][client] = true
			h.mu.Unlock()
			h.markOnline(client.userID)

		case client := <-h.unregister:
			h.mu.Lock()
			var roomEmpty bool
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				if room, ok := h.rooms[client.userID]; ok {
					delete(room, client)
					if len(room) == 0 {
						delete(h.rooms, client.userID)
						roomEmpty = true
					}
				}
			}
			h.mu.Unlock()
			// 最后一个连接断开才视为离线
			if roomEmpty {
				h.markOffline(client.userID)
			}

		case d := <-h.deliver:
			h.mu.Lock()
			room := h.rooms[d.userID]
			for client := range room {
				select {
				case client.send <- d.event:
				default:
					// 发送缓冲区满视为慢客户端，两张表同时摘除，
					// 否则下一次投递会向已关闭的 channel 发送
					close(client.send)
					delete(h.clients, client)
					delete(room, client)
				}
			}
			var roomEmpty bool
			if room != nil && len(room) == 0 {
				delete(h.rooms, d.userID)
				roomEmpty = true
			}
			h.mu.Unlock()
			if roomEmpty {
				h.markOffline(d.userID)
			}
		}
	}
}

// PublishToUser 向目标用户的全部连接推送事件，用户不在线时静默丢弃
func (h *Hub) PublishToUser(userID uint, event string, payload any) {
	h.deliver <- &delivery{
		userID: userID,
		event:  &Event{Event: event, Data: payload},
	}
}

// IsConnected 用户是否有活跃连接
func (h *Hub) IsConnected(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userID]) > 0
}

func (h *Hub) markOnline(userID uint) {
	if h.presence == nil {
		return
	}
	if err := h.presence.SetOnline(context.Background(), userID); err != nil {
		h.logger.Warn("set presence online failed",
			zap.String("user_id", strconv.FormatUint(uint64(userID), 10)),
			zap.Error(err),
		)
	}
}

func (h *Hub) markOffline(userID uint) {
	if h.presence == nil {
		return
	}
	if err := h.presence.SetOffline(context.Background(), userID); err != nil {
		h.logger.Warn("set presence offline failed",
			zap.String("user_id", strconv.FormatUint(uint64(userID), 10)),
			zap.Error(err),
		)
	}
}
