package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"frichat/internal/mocks"
	"frichat/internal/models"
	"frichat/internal/repositories"
)

func newChatServiceForTest() (*ChatService, *mocks.ChatRepositoryMock, *mocks.MembershipRepositoryMock, *mocks.UserRepositoryMock) {
	chats := &mocks.ChatRepositoryMock{}
	members := &mocks.MembershipRepositoryMock{}
	users := &mocks.UserRepositoryMock{}
	return NewChatService(chats, members, users), chats, members, users
}

func TestCreateDirectChatIsIdempotent(t *testing.T) {
	svc, chats, _, _ := newChatServiceForTest()

	chats.On("FindDirectChat", mock.Anything, 10, 20).Return(models.Chat{ID: 5, ChatType: models.ChatTypeDirect}, nil)

	chat, created, err := svc.Create(context.Background(), 10, models.ChatTypeDirect, nil, []int{20})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 5, chat.ID)
	chats.AssertNotCalled(t, "CreateWithMembers", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateDirectChatWhenNoneExists(t *testing.T) {
	svc, chats, _, _ := newChatServiceForTest()

	chats.On("FindDirectChat", mock.Anything, 10, 20).Return(models.Chat{}, repositories.ErrChatNotFound)
	chats.On("CreateWithMembers", mock.Anything, models.ChatTypeDirect, (*string)(nil), 10, models.RoleMember, []int{20}).
		Return(models.Chat{ID: 6, ChatType: models.ChatTypeDirect}, nil)

	chat, created, err := svc.Create(context.Background(), 10, models.ChatTypeDirect, nil, []int{20})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 6, chat.ID)
}

func TestCreateDirectChatLostRaceReturnsWinner(t *testing.T) {
	svc, chats, _, _ := newChatServiceForTest()

	// A concurrent create for the same pair lands between the lookup and
	// the insert; the unique pair key rejects the insert and the winner's
	// chat comes back with created=false.
	chats.On("FindDirectChat", mock.Anything, 10, 20).Return(models.Chat{}, repositories.ErrChatNotFound).Once()
	chats.On("CreateWithMembers", mock.Anything, models.ChatTypeDirect, (*string)(nil), 10, models.RoleMember, []int{20}).
		Return(models.Chat{}, repositories.ErrChatExists)
	chats.On("FindDirectChat", mock.Anything, 10, 20).Return(models.Chat{ID: 7, ChatType: models.ChatTypeDirect}, nil).Once()

	chat, created, err := svc.Create(context.Background(), 10, models.ChatTypeDirect, nil, []int{20})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 7, chat.ID)
	chats.AssertExpectations(t)
}

func TestCreateDirectChatWithSelf(t *testing.T) {
	svc, _, _, _ := newChatServiceForTest()

	_, _, err := svc.Create(context.Background(), 10, models.ChatTypeDirect, nil, []int{10})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateDirectChatNeedsExactlyOneParticipant(t *testing.T) {
	svc, _, _, _ := newChatServiceForTest()

	_, _, err := svc.Create(context.Background(), 10, models.ChatTypeDirect, nil, []int{20, 30})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateGroupChatMakesCreatorAdmin(t *testing.T) {
	svc, chats, _, _ := newChatServiceForTest()

	name := "weekend trip"
	chats.On("CreateWithMembers", mock.Anything, models.ChatTypeGroup, &name, 10, models.RoleAdmin, []int{20, 30}).
		Return(models.Chat{ID: 7, ChatType: models.ChatTypeGroup, ChatName: &name}, nil)

	chat, created, err := svc.Create(context.Background(), 10, models.ChatTypeGroup, &name, []int{20, 30})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 7, chat.ID)
}

func TestCreateGroupChatRequiresName(t *testing.T) {
	svc, _, _, _ := newChatServiceForTest()

	_, _, err := svc.Create(context.Background(), 10, models.ChatTypeGroup, nil, []int{20})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateRejectsUnknownChatType(t *testing.T) {
	svc, _, _, _ := newChatServiceForTest()

	_, _, err := svc.Create(context.Background(), 10, "broadcast", nil, []int{20})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetChatRequiresMembership(t *testing.T) {
	svc, _, members, _ := newChatServiceForTest()

	members.On("IsMember", mock.Anything, 5, 10).Return(false, nil)

	_, err := svc.Get(context.Background(), 5, 10)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestAddMemberRequiresAdmin(t *testing.T) {
	svc, _, members, _ := newChatServiceForTest()

	members.On("RoleOf", mock.Anything, 5, 10).Return(models.RoleMember, nil)

	err := svc.AddMember(context.Background(), 5, 10, 20)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestAddMemberUnknownUser(t *testing.T) {
	svc, _, members, users := newChatServiceForTest()

	members.On("RoleOf", mock.Anything, 5, 10).Return(models.RoleAdmin, nil)
	users.On("GetByID", mock.Anything, 20).Return(models.User{}, repositories.ErrUserNotFound)

	err := svc.AddMember(context.Background(), 5, 10, 20)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddMemberAlreadyPresent(t *testing.T) {
	svc, _, members, users := newChatServiceForTest()

	members.On("RoleOf", mock.Anything, 5, 10).Return(models.RoleAdmin, nil)
	users.On("GetByID", mock.Anything, 20).Return(models.User{ID: 20}, nil)
	members.On("IsMember", mock.Anything, 5, 20).Return(true, nil)

	err := svc.AddMember(context.Background(), 5, 10, 20)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSearchUsersRequiresTwoCharacters(t *testing.T) {
	svc, _, _, _ := newChatServiceForTest()

	_, err := svc.SearchUsers(context.Background(), 10, "a")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSearchUsersCapsResults(t *testing.T) {
	svc, _, _, users := newChatServiceForTest()

	users.On("Search", mock.Anything, "an", 10, 20).Return([]models.User{{ID: 1, Username: "ann"}}, nil)

	found, err := svc.SearchUsers(context.Background(), 10, "an")
	require.NoError(t, err)
	assert.Len(t, found, 1)
	users.AssertExpectations(t)
}
