package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/campusjam/CampusJam/internal/services"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client 代表一个 WebSocket 连接客户端
type Client struct {
	hub *Hub

	// WebSocket 连接
	conn *websocket.Conn

	// 缓冲通道，用于发送事件
	send chan *Event

	// 用户 ID
	userID uint

	// 服务引用，用于处理客户端上行的私信
	messageService *services.MessageService

	// 连接建立时同步未读通知
	notificationService *services.NotificationService
}

// inboundMessage 客户端上行私信帧
type inboundMessage struct {
	RecipientID uint   `json:"recipient_id"`
	Content     string `json:"content"`
}

// readPump 泵送来自 WebSocket 连接的消息
// 客户端可以直接通过连接发私信，与 HTTP 发送路径共用同一个 Service
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		// 收到 Pong，刷新在线状态，异步执行避免阻塞
		go c.hub.markOnline(c.userID)
		return nil
	})

	// 拉取未读通知
	// 异步执行，防止阻塞 readPump 导致心跳超时
	go c.syncNotifications()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
			}
			break
		}

		var req inboundMessage
		if err := json.Unmarshal(raw, &req); err != nil {
			log.Printf("json unmarshal error: %v", err)
			continue
		}

		// 推送由 Service 内部完成，发送方和接收方各收到一条事件
		_, err = c.messageService.SendDirect(context.Background(), c.userID, &services.SendDirectRequest{
			RecipientID: req.RecipientID,
			Content:     req.Content,
		})
		if err != nil {
			c.sendError(err)
		}
	}
}

// syncNotifications 推送最近的未读通知
func (c *Client) syncNotifications() {
	// 防止向已关闭的 channel 发送导致 panic
	defer func() {
		if r := recover(); r != nil {
			log.Printf("recovered from panic in syncNotifications: %v", r)
		}
	}()

	notifications, err := c.notificationService.List(c.userID)
	if err != nil {
		log.Printf("error getting notifications for user %d: %v", c.userID, err)
		return
	}

	for i := range notifications {
		if notifications[i].IsRead {
			continue
		}
		// 阻塞发送，确保不丢失（除非连接断开）
		c.send <- &Event{Event: services.EventNotification, Data: notifications[i]}
	}
}

// sendError 将上行消息的失败原因回给客户端，缓冲区满则丢弃
// Hub 侧随时可能关闭 send，这里同样需要兜住
func (c *Client) sendError(err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("recovered from panic in sendError: %v", r)
		}
	}()
	select {
	case c.send <- &Event{Event: "error", Data: gin.H{"error": err.Error()}}:
	default:
	}
}

// writePump 泵送来自 Hub 的事件到 WebSocket 连接
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub 关闭了通道
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}

			json.NewEncoder(w).Encode(event)

			// 添加队列中的其他事件（如果有）
			n := len(c.send)
			for range n {
				json.NewEncoder(w).Encode(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs 处理 WebSocket 升级请求
// 鉴权由 AuthMiddleware 完成（支持 ?token= 查询参数），连接即加入用户房间
func ServeWs(hub *Hub, messageService *services.MessageService, notificationService *services.NotificationService, c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:                 hub,
		conn:                conn,
		send:                make(chan *Event, 256),
		userID:              userID.(uint),
		messageService:      messageService,
		notificationService: notificationService,
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}
