package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"frichat/internal/models"
	"frichat/internal/observability"
	"frichat/internal/repositories"
)

type MembershipRepositoryMock struct {
	mock.Mock
}

func (m *MembershipRepositoryMock) IsMember(ctx context.Context, chatID int, userID int) (bool, error) {
	args := m.Called(ctx, chatID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MembershipRepositoryMock) RoleOf(ctx context.Context, chatID int, userID int) (string, error) {
	args := m.Called(ctx, chatID, userID)
	return args.String(0), args.Error(1)
}

func (m *MembershipRepositoryMock) AddMember(ctx context.Context, chatID int, userID int, role string) error {
	args := m.Called(ctx, chatID, userID, role)
	return args.Error(0)
}

func (m *MembershipRepositoryMock) RemoveMember(ctx context.Context, chatID int, userID int) error {
	args := m.Called(ctx, chatID, userID)
	return args.Error(0)
}

func (m *MembershipRepositoryMock) ListChatIDs(ctx context.Context, userID int) ([]int, error) {
	args := m.Called(ctx, userID)
	var ids []int
	if val := args.Get(0); val != nil {
		ids = val.([]int)
	}
	return ids, args.Error(1)
}

func (m *MembershipRepositoryMock) ListParticipants(ctx context.Context, chatID int) ([]models.Participant, error) {
	args := m.Called(ctx, chatID)
	var participants []models.Participant
	if val := args.Get(0); val != nil {
		participants = val.([]models.Participant)
	}
	return participants, args.Error(1)
}

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) GetByID(ctx context.Context, userID int) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) Search(ctx context.Context, query string, excludeUserID int, limit int) ([]models.User, error) {
	args := m.Called(ctx, query, excludeUserID, limit)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

func (m *UserRepositoryMock) SetPresence(ctx context.Context, userID int, status string) error {
	args := m.Called(ctx, userID, status)
	return args.Error(0)
}

type ChatRepositoryMock struct {
	mock.Mock
}

func (m *ChatRepositoryMock) CreateWithMembers(ctx context.Context, chatType string, chatName *string, createdBy int, creatorRole string, memberIDs []int) (models.Chat, error) {
	args := m.Called(ctx, chatType, chatName, createdBy, creatorRole, memberIDs)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) FindDirectChat(ctx context.Context, userID int, otherID int) (models.Chat, error) {
	args := m.Called(ctx, userID, otherID)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) GetChat(ctx context.Context, chatID int) (models.Chat, error) {
	args := m.Called(ctx, chatID)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) ListVisibleChats(ctx context.Context, userID int) ([]models.Chat, error) {
	args := m.Called(ctx, userID)
	var chats []models.Chat
	if val := args.Get(0); val != nil {
		chats = val.([]models.Chat)
	}
	return chats, args.Error(1)
}

func (m *ChatRepositoryMock) LastMessage(ctx context.Context, chatID int) (*models.LastMessage, error) {
	args := m.Called(ctx, chatID)
	var last *models.LastMessage
	if val := args.Get(0); val != nil {
		last = val.(*models.LastMessage)
	}
	return last, args.Error(1)
}

func (m *ChatRepositoryMock) UnreadCount(ctx context.Context, chatID int, userID int) (int, error) {
	args := m.Called(ctx, chatID, userID)
	return args.Int(0), args.Error(1)
}

func (m *ChatRepositoryMock) Touch(ctx context.Context, chatID int) error {
	args := m.Called(ctx, chatID)
	return args.Error(0)
}

func (m *ChatRepositoryMock) HideForUser(ctx context.Context, chatID int, userID int) error {
	args := m.Called(ctx, chatID, userID)
	return args.Error(0)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Create(ctx context.Context, chatID int, senderID int, messageType string, content *string, fileID *int) (int, error) {
	args := m.Called(ctx, chatID, senderID, messageType, content, fileID)
	return args.Int(0), args.Error(1)
}

func (m *MessageRepositoryMock) GetByID(ctx context.Context, messageID int) (models.Message, error) {
	args := m.Called(ctx, messageID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) GetView(ctx context.Context, messageID int) (models.MessageView, error) {
	args := m.Called(ctx, messageID)
	var view models.MessageView
	if val := args.Get(0); val != nil {
		view = val.(models.MessageView)
	}
	return view, args.Error(1)
}

func (m *MessageRepositoryMock) ListForViewer(ctx context.Context, chatID int, viewerID int, limit int, offset int) ([]models.MessageView, error) {
	args := m.Called(ctx, chatID, viewerID, limit, offset)
	var views []models.MessageView
	if val := args.Get(0); val != nil {
		views = val.([]models.MessageView)
	}
	return views, args.Error(1)
}

func (m *MessageRepositoryMock) UpdateStatus(ctx context.Context, messageID int, status string) error {
	args := m.Called(ctx, messageID, status)
	return args.Error(0)
}

func (m *MessageRepositoryMock) MarkDeletedForEveryone(ctx context.Context, messageID int, deletedBy int) error {
	args := m.Called(ctx, messageID, deletedBy)
	return args.Error(0)
}

func (m *MessageRepositoryMock) HideForUser(ctx context.Context, messageID int, userID int) error {
	args := m.Called(ctx, messageID, userID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) GetFile(ctx context.Context, fileID int) (models.File, error) {
	args := m.Called(ctx, fileID)
	var file models.File
	if val := args.Get(0); val != nil {
		file = val.(models.File)
	}
	return file, args.Error(1)
}

func (m *MessageRepositoryMock) FileInUse(ctx context.Context, fileID int) (bool, error) {
	args := m.Called(ctx, fileID)
	return args.Bool(0), args.Error(1)
}

func (m *MessageRepositoryMock) SaveFile(ctx context.Context, file models.File) (int, error) {
	args := m.Called(ctx, file)
	return args.Int(0), args.Error(1)
}

type ReactionRepositoryMock struct {
	mock.Mock
}

func (m *ReactionRepositoryMock) Upsert(ctx context.Context, messageID int, userID int, emoji string) error {
	args := m.Called(ctx, messageID, userID, emoji)
	return args.Error(0)
}

func (m *ReactionRepositoryMock) Delete(ctx context.Context, messageID int, userID int, emoji string) error {
	args := m.Called(ctx, messageID, userID, emoji)
	return args.Error(0)
}

func (m *ReactionRepositoryMock) ListForMessages(ctx context.Context, messageIDs []int) (map[int][]models.Reaction, error) {
	args := m.Called(ctx, messageIDs)
	var reactions map[int][]models.Reaction
	if val := args.Get(0); val != nil {
		reactions = val.(map[int][]models.Reaction)
	}
	return reactions, args.Error(1)
}

type PinRepositoryMock struct {
	mock.Mock
}

func (m *PinRepositoryMock) Upsert(ctx context.Context, messageID int, chatID int, pinnedBy int, pinnedUntil time.Time) (models.Pin, error) {
	args := m.Called(ctx, messageID, chatID, pinnedBy, pinnedUntil)
	var pin models.Pin
	if val := args.Get(0); val != nil {
		pin = val.(models.Pin)
	}
	return pin, args.Error(1)
}

func (m *PinRepositoryMock) Delete(ctx context.Context, messageID int) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

func (m *PinRepositoryMock) GetByMessageID(ctx context.Context, messageID int) (models.Pin, error) {
	args := m.Called(ctx, messageID)
	var pin models.Pin
	if val := args.Get(0); val != nil {
		pin = val.(models.Pin)
	}
	return pin, args.Error(1)
}

func (m *PinRepositoryMock) GetView(ctx context.Context, messageID int) (models.PinView, error) {
	args := m.Called(ctx, messageID)
	var view models.PinView
	if val := args.Get(0); val != nil {
		view = val.(models.PinView)
	}
	return view, args.Error(1)
}

func (m *PinRepositoryMock) ListActive(ctx context.Context, chatID int) ([]models.PinView, error) {
	args := m.Called(ctx, chatID)
	var views []models.PinView
	if val := args.Get(0); val != nil {
		views = val.([]models.PinView)
	}
	return views, args.Error(1)
}

func (m *PinRepositoryMock) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) PublishJSON(ctx context.Context, routingKey string, message interface{}) error {
	args := m.Called(ctx, routingKey, message)
	return args.Error(0)
}

var _ observability.Publisher = (*PublisherMock)(nil)
var _ repositories.MembershipRepository = (*MembershipRepositoryMock)(nil)
var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.ChatRepository = (*ChatRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.ReactionRepository = (*ReactionRepositoryMock)(nil)
var _ repositories.PinRepository = (*PinRepositoryMock)(nil)
