package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatdash/internal/adapter/api"
	"chatdash/internal/adapter/api/handler"
	"chatdash/internal/adapter/api/middleware"
	"chatdash/internal/adapter/repository"
	"chatdash/internal/infrastructure/docstore"
	"chatdash/internal/infrastructure/firebase"
	"chatdash/internal/infrastructure/ratelimit"
	"chatdash/internal/infrastructure/websocket"
	"chatdash/internal/usecase"
	"chatdash/pkg/response"
)

const (
	annToken = "dev:1:ann@example.com:Ann Lee"
	bobToken = "dev:2:bob@example.com:Bob Stone"
)

type envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
}

type listData struct {
	Items json.RawMessage `json:"items"`
	Count int             `json:"count"`
}

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	store := docstore.NewMemoryStore()
	limiter := ratelimit.NewRateLimiter()
	t.Cleanup(limiter.Stop)

	userRepo := repository.NewUserRepository(store)
	chatRepo := repository.NewChatRepository(store)

	users := usecase.NewUserUseCase(userRepo, nil)
	friends := usecase.NewFriendUseCase(repository.NewFriendRepository(store), userRepo, limiter)
	messages := usecase.NewMessageUseCase(repository.NewMessageRepository(store), chatRepo, limiter, 0)
	chats := usecase.NewChatUseCase(chatRepo, userRepo, friends, messages, limiter)
	dashboard := usecase.NewDashboardUseCase(chatRepo, users, 10, usecase.PresenceOptions{})

	wsManager := websocket.NewManager(websocket.Services{
		Dashboard: dashboard,
		Users:     users,
		Chats:     chats,
		Messages:  messages,
	}, limiter, 0, 0)

	handler.Setup(users, friends, chats, messages, usecase.NewMediaUseCase(nil))
	handler.SetupHealthHandler(wsManager, "memory")

	e := echo.New()
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		_ = response.Error(c, err)
	}

	Setup(e, middleware.NewAuthMiddleware(firebase.NewDevIdentityProvider(), users), limiter,
		handler.NewWebSocketHandler(wsManager, nil))
	return e
}

func do(t *testing.T, e *echo.Echo, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec, env
}

func decode(t *testing.T, raw json.RawMessage, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, out))
}

func signUp(t *testing.T, e *echo.Echo, token string) {
	t.Helper()
	rec, _ := do(t, e, http.MethodPost, "/v1/users/me", token, map[string]string{})
	require.Contains(t, []int{http.StatusCreated, http.StatusOK}, rec.Code, rec.Body.String())
}

func TestHealthCheck(t *testing.T) {
	e := newTestServer(t)

	rec, _ := do(t, e, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
	assert.Contains(t, rec.Body.String(), "memory")
}

func TestAuthentication(t *testing.T) {
	e := newTestServer(t)

	rec, env := do(t, e, http.MethodGet, "/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	rec, _ = do(t, e, http.MethodGet, "/v1/users/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// signed in but never registered
	rec, env = do(t, e, http.MethodGet, "/v1/users/me", annToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestEnsureAccountIsIdempotent(t *testing.T) {
	e := newTestServer(t)

	rec, env := do(t, e, http.MethodPost, "/v1/users/me", annToken, map[string]string{"username": "ann"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var user map[string]interface{}
	decode(t, env.Data, &user)
	assert.Equal(t, "1", user["id"])
	assert.Equal(t, "Ann Lee", user["fullname"])
	assert.Equal(t, "online", user["status"])
	assert.Equal(t, "profile.jpg", user["profile_pic"])

	rec, _ = do(t, e, http.MethodPost, "/v1/users/me", annToken, map[string]string{"username": "ann"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, e, http.MethodGet, "/v1/users/me", annToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, env.Data, &user)
	assert.Equal(t, "ann@example.com", user["email"])

	rec, env = do(t, e, http.MethodPost, "/v1/users/me", annToken, map[string]string{"username": "a"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestSearchAndLastActive(t *testing.T) {
	e := newTestServer(t)
	signUp(t, e, annToken)
	signUp(t, e, bobToken)

	rec, env := do(t, e, http.MethodGet, "/v1/users?q=BO", annToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list listData
	decode(t, env.Data, &list)
	assert.Equal(t, 1, list.Count)
	assert.Contains(t, string(list.Items), "bob@example.com")

	// the searcher never finds themselves
	rec, env = do(t, e, http.MethodGet, "/v1/users?q=ann", annToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, env.Data, &list)
	assert.Equal(t, 0, list.Count)

	rec, env = do(t, e, http.MethodGet, "/v1/users?q=", annToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, env.Data, &list)
	assert.Equal(t, 0, list.Count)

	rec, env = do(t, e, http.MethodGet, "/v1/users", annToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, env.Data, &list)
	assert.Equal(t, 2, list.Count)

	rec, env = do(t, e, http.MethodGet, "/v1/users/2/last-active", annToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var lastActive map[string]string
	decode(t, env.Data, &lastActive)
	assert.Equal(t, "Active now", lastActive["last_active"])
}

func TestFriends(t *testing.T) {
	e := newTestServer(t)
	signUp(t, e, annToken)
	signUp(t, e, bobToken)

	rec, _ := do(t, e, http.MethodGet, "/v1/friends/2/status", annToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"friends":false`)

	rec, env := do(t, e, http.MethodPost, "/v1/friends", annToken, map[string]string{"friend_id": "2"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var link map[string]interface{}
	decode(t, env.Data, &link)
	linkID := link["id"].(string)

	rec, env = do(t, e, http.MethodPost, "/v1/friends", bobToken, map[string]string{"friend_id": "1"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	rec, _ = do(t, e, http.MethodPost, "/v1/friends", annToken, map[string]string{"friend_id": "1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, e, http.MethodPost, "/v1/friends", annToken, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = do(t, e, http.MethodGet, "/v1/friends", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list listData
	decode(t, env.Data, &list)
	assert.Equal(t, 1, list.Count)
	assert.Contains(t, string(list.Items), "ann@example.com")

	rec, _ = do(t, e, http.MethodGet, "/v1/friends/1/status", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"friends":true`)

	rec, _ = do(t, e, http.MethodDelete, "/v1/friends/"+linkID, bobToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, e, http.MethodGet, "/v1/friends", annToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, env.Data, &list)
	assert.Equal(t, 0, list.Count)
}

func TestChatsAndMessages(t *testing.T) {
	e := newTestServer(t)
	signUp(t, e, annToken)
	signUp(t, e, bobToken)

	rec, env := do(t, e, http.MethodPost, "/v1/chats", annToken, map[string]string{"type": "channel", "user_id": "2"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	rec, env = do(t, e, http.MethodPost, "/v1/chats", annToken, map[string]string{
		"type":          "private",
		"user_id":       "2",
		"first_message": "hi bob",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var chat map[string]interface{}
	decode(t, env.Data, &chat)
	chatID := chat["id"].(string)
	assert.Equal(t, "Bob Stone", chat["name"])

	// a second private chat for the pair resolves to the first
	rec, env = do(t, e, http.MethodPost, "/v1/chats", annToken, map[string]string{"type": "private", "user_id": "2"})
	require.Equal(t, http.StatusCreated, rec.Code)
	decode(t, env.Data, &chat)
	assert.Equal(t, chatID, chat["id"])

	// so does one started from the other side
	rec, env = do(t, e, http.MethodPost, "/v1/chats", bobToken, map[string]string{"type": "private", "user_id": "1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	decode(t, env.Data, &chat)
	assert.Equal(t, chatID, chat["id"])

	rec, _ = do(t, e, http.MethodPost, "/v1/chats", annToken, map[string]string{"type": "group", "user_id": "2"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var list listData
	rec, env = do(t, e, http.MethodGet, "/v1/chats", annToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, env.Data, &list)
	assert.Equal(t, 2, list.Count)

	rec, env = do(t, e, http.MethodGet, "/v1/chats?type=private", annToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, env.Data, &list)
	assert.Equal(t, 1, list.Count)
	assert.Contains(t, string(list.Items), "hi bob")

	base := "/v1/chats/private/" + chatID + "/messages"

	rec, env = do(t, e, http.MethodPost, base, bobToken, map[string]string{"text": "hey ann"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var message map[string]interface{}
	decode(t, env.Data, &message)
	messageID := message["id"].(string)

	rec, env = do(t, e, http.MethodGet, base, annToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var messages []map[string]interface{}
	decode(t, env.Data, &list)
	decode(t, list.Items, &messages)
	require.Len(t, messages, 2)
	assert.Equal(t, "hey ann", messages[0]["text"])
	assert.Equal(t, "hi bob", messages[1]["text"])

	rec, env = do(t, e, http.MethodPut, base+"/"+messageID, annToken, map[string]string{"text": "not mine"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	rec, env = do(t, e, http.MethodPut, base+"/"+messageID, bobToken, map[string]string{"text": "hey there ann"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, env.Data, &message)
	assert.Equal(t, "hey there ann", message["text"])

	rec, _ = do(t, e, http.MethodDelete, base+"/"+messageID, bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, e, http.MethodDelete, base+"/"+messageID, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	signUp(t, e, "dev:3:eve@example.com:Eve")
	rec, _ = do(t, e, http.MethodGet, base, "dev:3:eve@example.com:Eve", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestOpenPrivateChat(t *testing.T) {
	e := newTestServer(t)
	signUp(t, e, annToken)
	signUp(t, e, bobToken)

	rec, env := do(t, e, http.MethodGet, "/v1/conversations/2", annToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var conversation map[string]interface{}
	decode(t, env.Data, &conversation)
	assert.Equal(t, false, conversation["friends"])
	assert.Nil(t, conversation["chat"])

	rec, _ = do(t, e, http.MethodPost, "/v1/friends", annToken, map[string]string{"friend_id": "2"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec, _ = do(t, e, http.MethodPost, "/v1/chats", annToken, map[string]string{"type": "private", "user_id": "2"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env = do(t, e, http.MethodGet, "/v1/conversations/2", annToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, env.Data, &conversation)
	assert.Equal(t, true, conversation["friends"])
	require.NotNil(t, conversation["chat"])
	chatID := conversation["chat"].(map[string]interface{})["id"]

	rec, env = do(t, e, http.MethodGet, "/v1/conversations/1", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, env.Data, &conversation)
	require.NotNil(t, conversation["chat"])
	assert.Equal(t, chatID, conversation["chat"].(map[string]interface{})["id"])

	// the conversation route leaves the private messages route reachable
	rec, _ = do(t, e, http.MethodGet, "/v1/chats/private/"+chatID.(string)+"/messages", bobToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, e, http.MethodGet, "/v1/conversations/404", annToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMediaUploadRequiresFile(t *testing.T) {
	e := newTestServer(t)
	signUp(t, e, annToken)

	rec, env := do(t, e, http.MethodPost, "/v1/media", annToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", env.Error.Code)
}
