package websocket

import (
	"encoding/json"
	"time"

	"chatdash/internal/domain/entity"
	"chatdash/internal/infrastructure/ratelimit"
	"chatdash/internal/usecase"
	"chatdash/pkg/errors"
	"chatdash/pkg/logger"
)

// WebSocket Message Types
const (
	// client -> server
	MessageTypePing           = "ping"
	MessageTypeActivity       = "activity"
	MessageTypeSelectChatType = "select_chat_type"
	MessageTypeSearch         = "search"
	MessageTypeJoinChat       = "join_chat"
	MessageTypeLeaveChat      = "leave_chat"
	MessageTypeSendMessage    = "send_message"
	MessageTypeEditMessage    = "edit_message"
	MessageTypeDeleteMessage  = "delete_message"

	// server -> client
	MessageTypePong          = "pong"
	MessageTypeChatList      = "chat_list"
	MessageTypePresence      = "presence"
	MessageTypeSearchResults = "search_results"
	MessageTypeMessages      = "messages"
	MessageTypeError         = "error"
)

const searchResultLimit = 10

// WebSocket Message Structure
type WSMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

type SelectChatTypeData struct {
	ChatType string `json:"chat_type"`
}

type SearchData struct {
	Text string `json:"text"`
}

type JoinChatData struct {
	ChatType string `json:"chat_type"`
	ChatID   string `json:"chat_id"`
}

type SendMessageData struct {
	Text     string `json:"text"`
	MediaURL string `json:"media_url"`
	Type     string `json:"type"`
}

type EditMessageData struct {
	MessageID string `json:"message_id"`
	Text      string `json:"text"`
}

type DeleteMessageData struct {
	MessageID string `json:"message_id"`
}

type ChatListData struct {
	ChatType entity.ChatType `json:"chat_type"`
	Chats    []*entity.Chat  `json:"chats"`
}

type PresenceData struct {
	UserID string `json:"user_id"`
	Active bool   `json:"active"`
}

type SearchResultsData struct {
	Text  string         `json:"text"`
	Users []*entity.User `json:"users"`
}

type MessagesData struct {
	ChatID   string            `json:"chat_id"`
	Messages []*entity.Message `json:"messages"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func decodeData(data interface{}, out interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// HandleClientMessage processes incoming WebSocket messages
func (m *Manager) HandleClientMessage(client *Client, messageBytes []byte) {
	var wsMessage WSMessage

	if err := json.Unmarshal(messageBytes, &wsMessage); err != nil {
		logger.Warn("WebSocket: Failed to unmarshal message from client %s: %v", client.UserID, err)
		m.sendErrorToClient(client, errors.BadRequest("Invalid message format", err))
		return
	}

	logger.Debug("WebSocket: Received message type '%s' from client %s", wsMessage.Type, client.UserID)

	switch wsMessage.Type {
	case MessageTypePing:
		m.handlePing(client)

	case MessageTypeActivity:
		m.handleActivity(client)

	case MessageTypeSelectChatType:
		m.handleSelectChatType(client, wsMessage.Data)

	case MessageTypeSearch:
		m.handleSearch(client, wsMessage.Data)

	case MessageTypeJoinChat:
		m.handleJoinChat(client, wsMessage.Data)

	case MessageTypeLeaveChat:
		client.leaveRoom()

	case MessageTypeSendMessage:
		m.handleSendMessage(client, wsMessage.Data)

	case MessageTypeEditMessage:
		m.handleEditMessage(client, wsMessage.Data)

	case MessageTypeDeleteMessage:
		m.handleDeleteMessage(client, wsMessage.Data)

	default:
		logger.Warn("WebSocket: Unknown message type '%s' from client %s", wsMessage.Type, client.UserID)
		m.sendErrorToClient(client, errors.BadRequest("Unknown message type", nil))
	}
}

func (m *Manager) handlePing(client *Client) {
	client.sendMessage(WSMessage{
		Type: MessageTypePong,
		Data: map[string]string{"status": "alive"},
	})
}

// handleActivity forwards a pointer, key or scroll event to the presence tracker.
// Throttled events are dropped without an error frame.
func (m *Manager) handleActivity(client *Client) {
	if m.rateLimiter != nil {
		if allowed, _ := m.rateLimiter.Allow(client.UserID, ratelimit.ActionActivity); !allowed {
			return
		}
	}
	client.session.Presence().Interaction()
}

func (m *Manager) handleSelectChatType(client *Client, data interface{}) {
	var payload SelectChatTypeData
	if err := decodeData(data, &payload); err != nil {
		m.sendErrorToClient(client, errors.BadRequest("Invalid select_chat_type format", err))
		return
	}
	client.session.Select(entity.ParseChatType(payload.ChatType))
}

func (m *Manager) handleSearch(client *Client, data interface{}) {
	var payload SearchData
	if err := decodeData(data, &payload); err != nil {
		m.sendErrorToClient(client, errors.BadRequest("Invalid search format", err))
		return
	}

	client.search.Trigger(func() {
		if m.rateLimiter != nil {
			if allowed, _ := m.rateLimiter.Allow(client.UserID, ratelimit.ActionSearch); !allowed {
				m.sendErrorToClient(client, errors.TooManyRequests("Too many searches"))
				return
			}
		}

		users, err := m.services.Users.SearchByFullname(client.ctx, payload.Text, client.UserID, searchResultLimit)
		if err != nil {
			logger.Error("WebSocket: search for %s failed: %v", client.UserID, err)
			m.sendErrorToClient(client, err)
			return
		}

		client.sendMessage(WSMessage{
			Type: MessageTypeSearchResults,
			Data: SearchResultsData{Text: payload.Text, Users: users},
		})
	})
}

func (m *Manager) handleJoinChat(client *Client, data interface{}) {
	var payload JoinChatData
	if err := decodeData(data, &payload); err != nil || payload.ChatID == "" {
		m.sendErrorToClient(client, errors.BadRequest("Invalid join_chat format", err))
		return
	}

	chat, err := m.services.Chats.GetChat(client.ctx, entity.ChatType(payload.ChatType), payload.ChatID, client.UserID)
	if err != nil {
		m.sendErrorToClient(client, err)
		return
	}

	client.leaveRoom()

	room := &chatRoom{chat: chat}
	client.mu.Lock()
	client.room = room
	client.mu.Unlock()

	unsubscribe, err := m.services.Messages.SubscribeMessages(client.ctx, chat, m.historySize,
		func(messages []*entity.Message) {
			client.mu.Lock()
			if client.room != room {
				client.mu.Unlock()
				return
			}
			room.messages = messages
			client.mu.Unlock()

			client.sendMessage(WSMessage{
				Type: MessageTypeMessages,
				Data: MessagesData{ChatID: chat.ID, Messages: messages},
			})
		},
		func(err error) {
			logger.Error("WebSocket: message subscription for chat %s failed: %v", chat.ID, err)
		})
	if err != nil {
		m.sendErrorToClient(client, err)
		return
	}

	client.mu.Lock()
	if client.room == room && !client.closed {
		room.unsubscribe = unsubscribe
		unsubscribe = nil
	}
	client.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// leaveRoom cancels the message subscription of the joined chat, if any.
func (c *Client) leaveRoom() {
	c.mu.Lock()
	room := c.room
	c.room = nil
	c.mu.Unlock()

	if room != nil && room.unsubscribe != nil {
		room.unsubscribe()
	}
}

// joinedRoom returns the joined chat and a copy of its latest messages.
func (c *Client) joinedRoom() (*entity.Chat, []*entity.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.room == nil {
		return nil, nil, false
	}
	messages := make([]*entity.Message, len(c.room.messages))
	copy(messages, c.room.messages)
	return c.room.chat, messages, true
}

func (m *Manager) handleSendMessage(client *Client, data interface{}) {
	var payload SendMessageData
	if err := decodeData(data, &payload); err != nil {
		m.sendErrorToClient(client, errors.BadRequest("Invalid send_message format", err))
		return
	}

	chat, _, ok := client.joinedRoom()
	if !ok {
		m.sendErrorToClient(client, errors.BadRequest("Join a chat before sending messages", nil))
		return
	}

	_, err := m.services.Messages.SendMessage(client.ctx, chat, client.UserID, usecase.SendMessageInput{
		Text:     payload.Text,
		Type:     payload.Type,
		MediaURL: payload.MediaURL,
	})
	if err != nil {
		m.sendErrorToClient(client, err)
	}
}

func (m *Manager) handleEditMessage(client *Client, data interface{}) {
	var payload EditMessageData
	if err := decodeData(data, &payload); err != nil || payload.MessageID == "" {
		m.sendErrorToClient(client, errors.BadRequest("Invalid edit_message format", err))
		return
	}

	chat, messages, ok := client.joinedRoom()
	if !ok {
		m.sendErrorToClient(client, errors.BadRequest("Join a chat before editing messages", nil))
		return
	}

	if _, err := m.services.Messages.EditMessage(client.ctx, chat, messages, payload.MessageID, client.UserID, payload.Text); err != nil {
		m.sendErrorToClient(client, err)
	}
}

func (m *Manager) handleDeleteMessage(client *Client, data interface{}) {
	var payload DeleteMessageData
	if err := decodeData(data, &payload); err != nil || payload.MessageID == "" {
		m.sendErrorToClient(client, errors.BadRequest("Invalid delete_message format", err))
		return
	}

	chat, messages, ok := client.joinedRoom()
	if !ok {
		m.sendErrorToClient(client, errors.BadRequest("Join a chat before deleting messages", nil))
		return
	}

	if _, err := m.services.Messages.DeleteMessage(client.ctx, chat, messages, payload.MessageID, client.UserID); err != nil {
		m.sendErrorToClient(client, err)
	}
}

func (m *Manager) sendErrorToClient(client *Client, err error) {
	data := ErrorData{Code: errors.CodeInternal, Message: "Internal server error"}
	if appErr, ok := err.(*errors.AppError); ok {
		data = ErrorData{Code: appErr.Code, Message: appErr.Message}
	}

	client.sendMessage(WSMessage{
		Type:      MessageTypeError,
		Data:      data,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
