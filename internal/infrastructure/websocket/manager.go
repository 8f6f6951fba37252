package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"chatdash/internal/domain/entity"
	"chatdash/internal/infrastructure/ratelimit"
	"chatdash/internal/usecase"
	"chatdash/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
	sendBufferSize = 64
)

// Services are the use cases a connection drives.
type Services struct {
	Dashboard *usecase.DashboardUseCase
	Users     *usecase.UserUseCase
	Chats     *usecase.ChatUseCase
	Messages  *usecase.MessageUseCase
}

// Client represents a WebSocket connection client
type Client struct {
	ID     string
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte

	user    *entity.User
	session *usecase.Session
	search  *Debouncer
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once

	mu     sync.Mutex
	room   *chatRoom
	closed bool
}

// chatRoom is the chat a client has joined and its latest messages.
type chatRoom struct {
	chat        *entity.Chat
	messages    []*entity.Message
	unsubscribe func()
}

// Manager manages all active WebSocket connections
type Manager struct {
	clients    map[string]*Client
	Register   chan *Client
	Unregister chan *Client
	mutex      sync.RWMutex
	done       chan struct{}

	services    Services
	rateLimiter *ratelimit.RateLimiter
	searchDelay time.Duration
	historySize int
}

func NewManager(services Services, rateLimiter *ratelimit.RateLimiter, searchDelay time.Duration, historySize int) *Manager {
	if searchDelay <= 0 {
		searchDelay = 500 * time.Millisecond
	}
	if historySize <= 0 {
		historySize = usecase.DefaultFeedBatchSize
	}

	return &Manager{
		clients:     make(map[string]*Client),
		Register:    make(chan *Client),
		Unregister:  make(chan *Client),
		done:        make(chan struct{}),
		services:    services,
		rateLimiter: rateLimiter,
		searchDelay: searchDelay,
		historySize: historySize,
	}
}

// Start runs the manager's registration loop until ctx is done.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				m.clients[client.ID] = client
				m.mutex.Unlock()
				logger.Info("Client registered: %s (user %s)", client.ID, client.UserID)

			case client := <-m.Unregister:
				m.mutex.Lock()
				_, ok := m.clients[client.ID]
				delete(m.clients, client.ID)
				m.mutex.Unlock()
				if ok {
					client.close()
					logger.Info("Client unregistered: %s (user %s)", client.ID, client.UserID)
				}

			case <-ctx.Done():
				close(m.done)
				m.mutex.Lock()
				for id, client := range m.clients {
					client.close()
					delete(m.clients, id)
				}
				m.mutex.Unlock()
				return
			}
		}
	}()
}

func newClient(ctx context.Context, conn *websocket.Conn, user *entity.User, searchDelay time.Duration) *Client {
	ctx, cancel := context.WithCancel(ctx)
	return &Client{
		ID:     uuid.New().String(),
		UserID: user.ID,
		Conn:   conn,
		Send:   make(chan []byte, sendBufferSize),
		user:   user,
		search: NewDebouncer(searchDelay),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Serve runs a connection for user until it closes. It opens the user's live
// session, registers the client and blocks in the read loop.
func (m *Manager) Serve(ctx context.Context, conn *websocket.Conn, user *entity.User) error {
	client := newClient(ctx, conn, user, m.searchDelay)

	session, err := m.services.Dashboard.OpenSession(client.ctx, user, client)
	if err != nil {
		client.cancel()
		return err
	}
	client.session = session

	select {
	case m.Register <- client:
	case <-m.done:
		client.close()
		return nil
	}

	go client.WritePump()
	client.ReadPump(m)
	return nil
}

// SendToUser sends a frame to every connection of userID.
func (m *Manager) SendToUser(userID string, message WSMessage) {
	m.mutex.RLock()
	var targets []*Client
	for _, client := range m.clients {
		if client.UserID == userID {
			targets = append(targets, client)
		}
	}
	m.mutex.RUnlock()

	for _, client := range targets {
		client.sendMessage(message)
	}
}

// ConnectedClients returns the number of registered connections.
func (m *Manager) ConnectedClients() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients)
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		select {
		case m.Unregister <- c:
		case <-m.done:
			c.close()
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("WebSocket: read error for %s: %v", c.UserID, err)
			}
			break
		}

		m.HandleClientMessage(c, message)
	}
}

// WritePump sends messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("WebSocket: write error for %s: %v", c.UserID, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// close tears down the session, the joined chat and the pending search.
func (c *Client) close() {
	c.once.Do(func() {
		c.search.Stop()
		c.leaveRoom()
		if c.session != nil {
			c.session.Close()
		}
		c.cancel()

		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.done)
	})
}

func (c *Client) sendMessage(message WSMessage) {
	if message.Timestamp == "" {
		message.Timestamp = time.Now().Format(time.RFC3339)
	}

	payload, err := json.Marshal(message)
	if err != nil {
		logger.Error("WebSocket: failed to marshal %s frame: %v", message.Type, err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	select {
	case c.Send <- payload:
	default:
		logger.Warn("WebSocket: send buffer full for %s, dropping %s frame", c.UserID, message.Type)
	}
}

// ShowChats pushes the visible chat list.
func (c *Client) ShowChats(chatType entity.ChatType, chats []*entity.Chat) {
	c.sendMessage(WSMessage{
		Type: MessageTypeChatList,
		Data: ChatListData{ChatType: chatType, Chats: chats},
	})
}

// ShowPresence pushes the user's own presence transitions.
func (c *Client) ShowPresence(active bool) {
	c.sendMessage(WSMessage{
		Type: MessageTypePresence,
		Data: PresenceData{UserID: c.UserID, Active: active},
	})
}
