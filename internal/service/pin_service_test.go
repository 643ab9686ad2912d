package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"frichat/internal/mocks"
	"frichat/internal/models"
	"frichat/internal/repositories"
)

func newPinServiceForTest() (*PinService, *mocks.PinRepositoryMock, *mocks.MessageRepositoryMock, *mocks.MembershipRepositoryMock) {
	pins := &mocks.PinRepositoryMock{}
	messages := &mocks.MessageRepositoryMock{}
	members := &mocks.MembershipRepositoryMock{}
	return NewPinService(pins, messages, members), pins, messages, members
}

func TestPinDefaultsToTwentyFourHours(t *testing.T) {
	svc, pins, messages, members := newPinServiceForTest()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	messages.On("GetByID", mock.Anything, 42).Return(models.Message{ID: 42, ChatID: 1}, nil)
	members.On("IsMember", mock.Anything, 1, 10).Return(true, nil)
	pins.On("Upsert", mock.Anything, 42, 1, 10, now.Add(24*time.Hour)).Return(models.Pin{MessageID: 42, ChatID: 1}, nil)
	pins.On("GetView", mock.Anything, 42).Return(models.PinView{Pin: models.Pin{MessageID: 42, ChatID: 1}}, nil)

	view, err := svc.Pin(context.Background(), 42, 10, "")
	require.NoError(t, err)
	assert.Equal(t, 42, view.MessageID)
	pins.AssertExpectations(t)
}

func TestPinSevenDays(t *testing.T) {
	svc, pins, messages, members := newPinServiceForTest()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	messages.On("GetByID", mock.Anything, 42).Return(models.Message{ID: 42, ChatID: 1}, nil)
	members.On("IsMember", mock.Anything, 1, 10).Return(true, nil)
	pins.On("Upsert", mock.Anything, 42, 1, 10, now.Add(7*24*time.Hour)).Return(models.Pin{MessageID: 42, ChatID: 1}, nil)
	pins.On("GetView", mock.Anything, 42).Return(models.PinView{Pin: models.Pin{MessageID: 42, ChatID: 1}}, nil)

	_, err := svc.Pin(context.Background(), 42, 10, "7d")
	require.NoError(t, err)
	pins.AssertExpectations(t)
}

func TestPinRejectsUnknownDuration(t *testing.T) {
	svc, _, _, _ := newPinServiceForTest()

	_, err := svc.Pin(context.Background(), 42, 10, "2h")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPinMissingMessage(t *testing.T) {
	svc, _, messages, _ := newPinServiceForTest()

	messages.On("GetByID", mock.Anything, 42).Return(models.Message{}, repositories.ErrMessageNotFound)

	_, err := svc.Pin(context.Background(), 42, 10, "24h")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPinRejectsNonMember(t *testing.T) {
	svc, _, messages, members := newPinServiceForTest()

	messages.On("GetByID", mock.Anything, 42).Return(models.Message{ID: 42, ChatID: 1}, nil)
	members.On("IsMember", mock.Anything, 1, 10).Return(false, nil)

	_, err := svc.Pin(context.Background(), 42, 10, "24h")
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestUnpinByAnyMember(t *testing.T) {
	svc, pins, _, members := newPinServiceForTest()

	pins.On("GetByMessageID", mock.Anything, 42).Return(models.Pin{MessageID: 42, ChatID: 1, PinnedBy: 7}, nil)
	members.On("IsMember", mock.Anything, 1, 10).Return(true, nil)
	pins.On("Delete", mock.Anything, 42).Return(nil)

	pin, err := svc.Unpin(context.Background(), 42, 10)
	require.NoError(t, err)
	assert.Equal(t, 7, pin.PinnedBy)
}

func TestUnpinMissingPin(t *testing.T) {
	svc, pins, _, _ := newPinServiceForTest()

	pins.On("GetByMessageID", mock.Anything, 42).Return(models.Pin{}, repositories.ErrPinNotFound)

	_, err := svc.Unpin(context.Background(), 42, 10)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListActiveRequiresMembership(t *testing.T) {
	svc, _, _, members := newPinServiceForTest()

	members.On("IsMember", mock.Anything, 1, 10).Return(false, nil)

	_, err := svc.ListActive(context.Background(), 1, 10)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestListActiveNeverReturnsExpiredPins(t *testing.T) {
	svc, pins, _, members := newPinServiceForTest()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	members.On("IsMember", mock.Anything, 1, 10).Return(true, nil)
	pins.On("ListActive", mock.Anything, 1).Return([]models.PinView{
		{Pin: models.Pin{MessageID: 42, ChatID: 1, PinnedUntil: now.Add(time.Hour)}},
		{Pin: models.Pin{MessageID: 43, ChatID: 1, PinnedUntil: now.Add(-time.Minute)}},
		{Pin: models.Pin{MessageID: 44, ChatID: 1, PinnedUntil: now}},
	}, nil)

	views, err := svc.ListActive(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 42, views[0].MessageID)
}
