package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"frichat/internal/mocks"
	"frichat/internal/models"
	"frichat/internal/repositories"
	"frichat/internal/service"
	"frichat/internal/ws"
)

func setupChatRouter(handler *ChatHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.POST("/chats", handler.CreateChat)
	r.GET("/chats", handler.ListChats)
	r.GET("/chats/:chat_id", handler.GetChat)
	r.DELETE("/chats/:chat_id", handler.DeleteChat)
	r.GET("/users/search", handler.SearchUsers)
	return r
}

func newChatHandlerForTest() (*ChatHandler, *mocks.ChatRepositoryMock, *mocks.MembershipRepositoryMock, *mocks.UserRepositoryMock) {
	chats := new(mocks.ChatRepositoryMock)
	members := new(mocks.MembershipRepositoryMock)
	users := new(mocks.UserRepositoryMock)
	svc := service.NewChatService(chats, members, users)
	return NewChatHandler(svc, ws.NewHub()), chats, members, users
}

func TestCreateDirectChatReturnsCreated(t *testing.T) {
	handler, chats, _, _ := newChatHandlerForTest()
	router := setupChatRouter(handler)

	chats.On("FindDirectChat", mock.Anything, 1, 2).Return(models.Chat{}, repositories.ErrChatNotFound).Once()
	chats.On("CreateWithMembers", mock.Anything, models.ChatTypeDirect, (*string)(nil), 1, models.RoleMember, []int{2}).
		Return(models.Chat{ID: 10, ChatType: models.ChatTypeDirect}, nil).Once()

	body := bytes.NewBufferString(`{"chat_type":"direct","participants":[2]}`)
	req := httptest.NewRequest(http.MethodPost, "/chats", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	chats.AssertExpectations(t)
}

func TestCreateDirectChatReturnsExisting(t *testing.T) {
	handler, chats, _, _ := newChatHandlerForTest()
	router := setupChatRouter(handler)

	chats.On("FindDirectChat", mock.Anything, 1, 2).Return(models.Chat{ID: 10}, nil).Once()

	body := bytes.NewBufferString(`{"chat_type":"direct","participants":[2]}`)
	req := httptest.NewRequest(http.MethodPost, "/chats", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, false, resp["created"])
}

func TestCreateChatRejectsUnknownType(t *testing.T) {
	handler, _, _, _ := newChatHandlerForTest()
	router := setupChatRouter(handler)

	body := bytes.NewBufferString(`{"chat_type":"broadcast","participants":[2]}`)
	req := httptest.NewRequest(http.MethodPost, "/chats", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetChatForbiddenForNonMember(t *testing.T) {
	handler, _, members, _ := newChatHandlerForTest()
	router := setupChatRouter(handler)

	members.On("IsMember", mock.Anything, 5, 1).Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListChatsIncludesUnreadAndLastMessage(t *testing.T) {
	handler, chats, members, _ := newChatHandlerForTest()
	router := setupChatRouter(handler)

	chats.On("ListVisibleChats", mock.Anything, 1).Return([]models.Chat{{ID: 3, ChatType: models.ChatTypeDirect}}, nil).Once()
	members.On("ListParticipants", mock.Anything, 3).Return([]models.Participant{{UserID: 1}, {UserID: 2}}, nil).Once()
	chats.On("LastMessage", mock.Anything, 3).Return(&models.LastMessage{ID: 9}, nil).Once()
	chats.On("UnreadCount", mock.Anything, 3, 1).Return(4, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"unread_count":4`)
	chats.AssertExpectations(t)
}

func TestDeleteChatHidesForRequesterOnly(t *testing.T) {
	handler, chats, members, _ := newChatHandlerForTest()
	router := setupChatRouter(handler)

	members.On("IsMember", mock.Anything, 5, 1).Return(true, nil).Once()
	chats.On("HideForUser", mock.Anything, 5, 1).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/chats/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	chats.AssertExpectations(t)
}

func TestSearchUsersTooShortQuery(t *testing.T) {
	handler, _, _, _ := newChatHandlerForTest()
	router := setupChatRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/users/search?q=a", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
