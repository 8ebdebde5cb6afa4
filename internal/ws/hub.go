package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ignatzorin/videomarket-backend/internal/domain/entity"
	"github.com/ignatzorin/videomarket-backend/internal/logger"
)

// Hub рассылает изменения дерева категорий подключённым админкам.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	ctx        context.Context
}

// eventMessage сериализуется как {"type": ..., "data": {...}}.
type eventMessage struct {
	Type string    `json:"type"`
	Data eventData `json:"data"`
}

type eventData struct {
	CategoryID int64     `json:"category_id"`
	ParentID   *int64    `json:"parent_id"`
	At         time.Time `json:"at"`
}

// NewHub создаёт новый хаб. Хаб живёт, пока не отменён ctx.
func NewHub(ctx context.Context) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 32),
		ctx:        ctx,
	}
}

// Run запускает главный цикл хаба.
func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case payload := <-h.broadcast:
			h.send(payload)
		}
	}
}

// Register добавляет клиента.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

// Unregister удаляет клиента.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

// Publish ставит событие в очередь рассылки. Не блокирует вызывающего:
// при переполненной очереди событие отбрасывается.
func (h *Hub) Publish(event entity.CategoryEvent) {
	raw, err := encodeEvent(event)
	if err != nil {
		logger.Log.WithError(err).Error("ws: не удалось сериализовать событие")
		return
	}

	select {
	case h.broadcast <- raw:
	default:
		logger.WithCategory(event.CategoryID).Warn("ws: очередь событий переполнена, событие отброшено")
	}
}

// ClientCount возвращает число подключённых клиентов.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func encodeEvent(event entity.CategoryEvent) ([]byte, error) {
	raw, err := json.Marshal(eventMessage{
		Type: string(event.Type),
		Data: eventData{
			CategoryID: event.CategoryID,
			ParentID:   event.ParentID,
			At:         event.At,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("ws: %w", err)
	}
	return raw, nil
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
}

func (h *Hub) send(payload []byte) {
	h.mu.RLock()
	var slow []*Client
	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	// Медленный клиент отключается, админка переподключится и перечитает дерево
	for _, client := range slow {
		h.removeClient(client)
	}
}
