package service

import (
	"context"
	"errors"

	"frichat/internal/models"
	"frichat/internal/repositories"
)

const (
	searchMinQueryLen = 2
	searchLimit       = 20
)

// ChatService owns chat creation, membership management and chat listing.
type ChatService struct {
	chats   repositories.ChatRepository
	members repositories.MembershipRepository
	users   repositories.UserRepository
}

// NewChatService constructs a ChatService.
func NewChatService(chats repositories.ChatRepository, members repositories.MembershipRepository, users repositories.UserRepository) *ChatService {
	return &ChatService{chats: chats, members: members, users: users}
}

// Create makes a new chat. Direct chats are idempotent on the member pair:
// the existing chat is returned (created=false) regardless of participant
// order. Group chats insert the creator as admin.
func (s *ChatService) Create(ctx context.Context, creatorID int, chatType string, chatName *string, participants []int) (models.Chat, bool, error) {
	switch chatType {
	case models.ChatTypeDirect:
		if len(participants) != 1 {
			return models.Chat{}, false, validationError("direct chat requires exactly one other participant")
		}
		otherID := participants[0]
		if otherID == creatorID {
			return models.Chat{}, false, validationError("cannot chat with yourself")
		}

		existing, err := s.chats.FindDirectChat(ctx, creatorID, otherID)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, repositories.ErrChatNotFound) {
			return models.Chat{}, false, err
		}

		chat, err := s.chats.CreateWithMembers(ctx, chatType, nil, creatorID, models.RoleMember, participants)
		if errors.Is(err, repositories.ErrChatExists) {
			// Lost a create race for the same pair; the winner's chat is
			// the idempotent result.
			existing, err := s.chats.FindDirectChat(ctx, creatorID, otherID)
			return existing, false, err
		}
		return chat, true, err

	case models.ChatTypeGroup:
		if chatName == nil || *chatName == "" {
			return models.Chat{}, false, validationError("group chat requires a name")
		}
		if len(participants) == 0 {
			return models.Chat{}, false, validationError("at least one participant is required")
		}

		chat, err := s.chats.CreateWithMembers(ctx, chatType, chatName, creatorID, models.RoleAdmin, participants)
		return chat, true, err

	default:
		return models.Chat{}, false, validationError("invalid chat type %q", chatType)
	}
}

// Get returns a chat with participants; requester must be a member.
func (s *ChatService) Get(ctx context.Context, chatID int, requesterID int) (models.ChatDetail, error) {
	if err := s.requireMember(ctx, chatID, requesterID); err != nil {
		return models.ChatDetail{}, err
	}

	chat, err := s.chats.GetChat(ctx, chatID)
	if errors.Is(err, repositories.ErrChatNotFound) {
		return models.ChatDetail{}, ErrNotFound
	}
	if err != nil {
		return models.ChatDetail{}, err
	}

	participants, err := s.members.ListParticipants(ctx, chatID)
	if err != nil {
		return models.ChatDetail{}, err
	}
	return models.ChatDetail{Chat: chat, Participants: participants}, nil
}

// List returns the requester's visible chats with participants, last message
// and unread count, most recently active first.
func (s *ChatService) List(ctx context.Context, userID int) ([]models.ChatSummary, error) {
	chats, err := s.chats.ListVisibleChats(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ChatSummary, 0, len(chats))
	for _, chat := range chats {
		participants, err := s.members.ListParticipants(ctx, chat.ID)
		if err != nil {
			return nil, err
		}
		last, err := s.chats.LastMessage(ctx, chat.ID)
		if err != nil {
			return nil, err
		}
		unread, err := s.chats.UnreadCount(ctx, chat.ID, userID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, models.ChatSummary{
			Chat:         chat,
			Participants: participants,
			LastMessage:  last,
			UnreadCount:  unread,
		})
	}
	return summaries, nil
}

// AddMember adds a user to a group chat; only admins may do this.
func (s *ChatService) AddMember(ctx context.Context, chatID int, requesterID int, newUserID int) error {
	if err := s.requireAdmin(ctx, chatID, requesterID); err != nil {
		return err
	}

	if _, err := s.users.GetByID(ctx, newUserID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrNotFound
		}
		return err
	}

	already, err := s.members.IsMember(ctx, chatID, newUserID)
	if err != nil {
		return err
	}
	if already {
		return validationError("user is already a member")
	}
	return s.members.AddMember(ctx, chatID, newUserID, models.RoleMember)
}

// RemoveMember removes a user from a group chat; only admins may do this.
func (s *ChatService) RemoveMember(ctx context.Context, chatID int, requesterID int, userID int) error {
	if err := s.requireAdmin(ctx, chatID, requesterID); err != nil {
		return err
	}
	return s.members.RemoveMember(ctx, chatID, userID)
}

// Hide soft-deletes the chat for the requester only.
func (s *ChatService) Hide(ctx context.Context, chatID int, requesterID int) error {
	if err := s.requireMember(ctx, chatID, requesterID); err != nil {
		return err
	}
	return s.chats.HideForUser(ctx, chatID, requesterID)
}

// SearchUsers finds users by username or full name, excluding the searcher.
func (s *ChatService) SearchUsers(ctx context.Context, requesterID int, query string) ([]models.User, error) {
	if len(query) < searchMinQueryLen {
		return nil, validationError("search query must be at least %d characters", searchMinQueryLen)
	}
	return s.users.Search(ctx, query, requesterID, searchLimit)
}

// requireMember fails closed: a store error counts as not a member.
func (s *ChatService) requireMember(ctx context.Context, chatID int, userID int) error {
	member, err := s.members.IsMember(ctx, chatID, userID)
	if err != nil || !member {
		return ErrAccessDenied
	}
	return nil
}

func (s *ChatService) requireAdmin(ctx context.Context, chatID int, userID int) error {
	role, err := s.members.RoleOf(ctx, chatID, userID)
	if err != nil || role != models.RoleAdmin {
		return ErrAccessDenied
	}
	return nil
}
