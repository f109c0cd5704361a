package websocket

import (
	"sync"
)

// documentMessage 发往某个文档订阅者的消息
type documentMessage struct {
	documentID string
	payload    []byte
}

// Hub 管理按文档订阅的 WebSocket 连接
type Hub struct {
	// 文档 ID -> 订阅该文档的客户端
	clients map[string]map[*Client]bool

	broadcast  chan documentMessage
	register   chan *Client
	unregister chan *Client
	stop       chan struct{}
	stopOnce   sync.Once

	mu sync.RWMutex
}

// NewHub 创建新的 Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan documentMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
	}
}

// Run 运行 Hub,直到 Stop 被调用
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			subs, ok := h.clients[client.DocumentID]
			if !ok {
				subs = make(map[*Client]bool)
				h.clients[client.DocumentID] = subs
			}
			subs[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients[msg.documentID] {
				select {
				case client.Send <- msg.payload:
				default:
					// 发送缓冲已满的慢客户端直接断开
					h.remove(client)
				}
			}
			h.mu.Unlock()

		case <-h.stop:
			h.mu.Lock()
			for _, subs := range h.clients {
				for client := range subs {
					h.remove(client)
				}
			}
			h.mu.Unlock()
			return
		}
	}
}

// remove 调用方需持有写锁
func (h *Hub) remove(client *Client) {
	subs, ok := h.clients[client.DocumentID]
	if !ok {
		return
	}
	if _, ok := subs[client]; !ok {
		return
	}
	delete(subs, client)
	close(client.Send)
	if len(subs) == 0 {
		delete(h.clients, client.DocumentID)
	}
}

// Register 注册客户端
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.stop:
		close(client.Send)
	}
}

// Unregister 注销客户端
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stop:
	}
}

// BroadcastDocument 向订阅文档的客户端推送消息,Hub 繁忙时丢弃
func (h *Hub) BroadcastDocument(documentID string, payload []byte) {
	select {
	case h.broadcast <- documentMessage{documentID: documentID, payload: payload}:
	default:
	}
}

// Stop 停止 Hub 并关闭所有客户端
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
}

// GetClientCount 获取客户端数量
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, subs := range h.clients {
		count += len(subs)
	}
	return count
}

// GetSubscriberCount 获取订阅某文档的客户端数量
func (h *Hub) GetSubscriberCount(documentID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[documentID])
}
