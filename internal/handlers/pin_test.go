package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"frichat/internal/mocks"
	"frichat/internal/models"
	"frichat/internal/service"
	"frichat/internal/ws"
)

func setupPinRouter(handler *PinHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.POST("/messages/:message_id/pin", handler.PinMessage)
	r.DELETE("/messages/:message_id/pin", handler.UnpinMessage)
	r.GET("/chats/:chat_id/pins", handler.ListPins)
	return r
}

func newPinHandlerForTest() (*PinHandler, *mocks.PinRepositoryMock, *mocks.MessageRepositoryMock, *mocks.MembershipRepositoryMock) {
	pins := new(mocks.PinRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	members := new(mocks.MembershipRepositoryMock)
	svc := service.NewPinService(pins, messages, members)
	return NewPinHandler(svc, ws.NewHub()), pins, messages, members
}

func TestPinMessageSuccess(t *testing.T) {
	handler, pins, messages, members := newPinHandlerForTest()
	router := setupPinRouter(handler)

	messages.On("GetByID", mock.Anything, 42).Return(models.Message{ID: 42, ChatID: 3}, nil).Once()
	members.On("IsMember", mock.Anything, 3, 1).Return(true, nil).Once()
	pins.On("Upsert", mock.Anything, 42, 3, 1, mock.AnythingOfType("time.Time")).
		Return(models.Pin{MessageID: 42, ChatID: 3, PinnedBy: 1}, nil).Once()
	pins.On("GetView", mock.Anything, 42).Return(models.PinView{
		Pin: models.Pin{MessageID: 42, ChatID: 3, PinnedBy: 1, PinnedUntil: time.Now().Add(24 * time.Hour)},
	}, nil).Once()

	body := bytes.NewBufferString(`{"duration":"24h"}`)
	req := httptest.NewRequest(http.MethodPost, "/messages/42/pin", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	pins.AssertExpectations(t)
}

func TestPinMessageRejectsUnknownDuration(t *testing.T) {
	handler, _, _, _ := newPinHandlerForTest()
	router := setupPinRouter(handler)

	body := bytes.NewBufferString(`{"duration":"90d"}`)
	req := httptest.NewRequest(http.MethodPost, "/messages/42/pin", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnpinMessageSuccess(t *testing.T) {
	handler, pins, _, members := newPinHandlerForTest()
	router := setupPinRouter(handler)

	pins.On("GetByMessageID", mock.Anything, 42).Return(models.Pin{MessageID: 42, ChatID: 3, PinnedBy: 9}, nil).Once()
	members.On("IsMember", mock.Anything, 3, 1).Return(true, nil).Once()
	pins.On("Delete", mock.Anything, 42).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/messages/42/pin", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	pins.AssertExpectations(t)
}

func TestListPinsForbiddenForNonMember(t *testing.T) {
	handler, _, _, members := newPinHandlerForTest()
	router := setupPinRouter(handler)

	members.On("IsMember", mock.Anything, 3, 1).Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats/3/pins", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}
