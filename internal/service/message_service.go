package service

import (
	"context"
	"errors"
	"time"

	"frichat/internal/models"
	"frichat/internal/repositories"
)

// deleteForEveryoneWindow is how long after sending the sender may still
// retract a message for every member. Past it, deletion only hides the
// message from the requester.
const deleteForEveryoneWindow = 60 * time.Second

const (
	defaultPageLimit = 50
	maxPageLimit     = 100
)

var statusRank = map[string]int{
	models.MessageStatusSent:      1,
	models.MessageStatusDelivered: 2,
	models.MessageStatusRead:      3,
}

// MessageService is the single place message state transitions happen; the
// REST handlers and the ws dispatcher are both thin adapters over it.
type MessageService struct {
	messages  repositories.MessageRepository
	reactions repositories.ReactionRepository
	members   repositories.MembershipRepository
	chats     repositories.ChatRepository
	users     repositories.UserRepository
	now       func() time.Time
}

// NewMessageService constructs a MessageService.
func NewMessageService(messages repositories.MessageRepository, reactions repositories.ReactionRepository, members repositories.MembershipRepository, chats repositories.ChatRepository, users repositories.UserRepository) *MessageService {
	return &MessageService{
		messages:  messages,
		reactions: reactions,
		members:   members,
		chats:     chats,
		users:     users,
		now:       time.Now,
	}
}

// Send persists a message with initial status 'sent', bumps the chat's
// updated_at and returns the fully joined record for broadcasting.
func (s *MessageService) Send(ctx context.Context, chatID int, senderID int, messageType string, content *string, fileID *int) (models.MessageView, error) {
	if err := s.requireMember(ctx, chatID, senderID); err != nil {
		return models.MessageView{}, err
	}

	switch messageType {
	case models.MessageTypeText:
		if content == nil || *content == "" {
			return models.MessageView{}, validationError("text message requires content")
		}
	case models.MessageTypeImage, models.MessageTypeVideo, models.MessageTypeFile:
		if fileID == nil {
			return models.MessageView{}, validationError("%s message requires a file", messageType)
		}
		if err := s.validateFile(ctx, *fileID, senderID); err != nil {
			return models.MessageView{}, err
		}
	default:
		return models.MessageView{}, validationError("invalid message type %q", messageType)
	}

	messageID, err := s.messages.Create(ctx, chatID, senderID, messageType, content, fileID)
	if err != nil {
		return models.MessageView{}, err
	}
	if err := s.chats.Touch(ctx, chatID); err != nil {
		return models.MessageView{}, err
	}

	view, err := s.messages.GetView(ctx, messageID)
	if err != nil {
		return models.MessageView{}, err
	}
	view.Reactions = []models.Reaction{}
	return view, nil
}

// validateFile ties an upload to the message that references it: the sender
// must be the uploader and a file attaches to at most one message.
func (s *MessageService) validateFile(ctx context.Context, fileID int, senderID int) error {
	file, err := s.messages.GetFile(ctx, fileID)
	if errors.Is(err, repositories.ErrFileNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if file.UploadedBy != senderID {
		return validationError("file was uploaded by another user")
	}

	inUse, err := s.messages.FileInUse(ctx, fileID)
	if err != nil {
		return err
	}
	if inUse {
		return validationError("file is already attached to a message")
	}
	return nil
}

// List pages a chat's messages for one viewer: newest-first pagination,
// reversed to oldest-first for display, reactions aggregated, per-viewer
// hidden rows already excluded and global tombstones blanked.
func (s *MessageService) List(ctx context.Context, chatID int, viewerID int, limit int, offset int) ([]models.MessageView, error) {
	if err := s.requireMember(ctx, chatID, viewerID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}

	views, err := s.messages.ListForViewer(ctx, chatID, viewerID, limit, offset)
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.ID)
	}
	reactionsByMessage, err := s.reactions.ListForMessages(ctx, ids)
	if err != nil {
		return nil, err
	}

	// Reverse in place: the query pages newest-first, clients render
	// oldest-first.
	for i, j := 0, len(views)-1; i < j; i, j = i+1, j-1 {
		views[i], views[j] = views[j], views[i]
	}

	for i := range views {
		view := &views[i]
		view.Reactions = reactionsByMessage[view.ID]
		if view.Reactions == nil {
			view.Reactions = []models.Reaction{}
		}
		if view.DeletedForEveryone {
			// Tombstone: members see a placeholder, never the content.
			view.IsDeleted = true
			view.Content = nil
			view.FileID = nil
			view.FileName = nil
			view.FileType = nil
			view.FileSize = nil
			view.UploadPath = nil
		}
	}
	return views, nil
}

// UpdateStatus advances a message's status. The order is strictly monotonic
// (sent < delivered < read); regressions are rejected, repeats are no-ops.
func (s *MessageService) UpdateStatus(ctx context.Context, messageID int, viewerID int, status string) (models.Message, error) {
	newRank, ok := statusRank[status]
	if !ok {
		return models.Message{}, validationError("invalid status %q", status)
	}

	msg, err := s.getMessage(ctx, messageID)
	if err != nil {
		return models.Message{}, err
	}
	if err := s.requireMember(ctx, msg.ChatID, viewerID); err != nil {
		return models.Message{}, err
	}

	currentRank := statusRank[msg.Status]
	if newRank < currentRank {
		return models.Message{}, validationError("status cannot regress from %s to %s", msg.Status, status)
	}
	if newRank == currentRank {
		return msg, nil
	}

	if err := s.messages.UpdateStatus(ctx, messageID, status); err != nil {
		switch {
		case errors.Is(err, repositories.ErrMessageNotFound):
			return models.Message{}, ErrNotFound
		case errors.Is(err, repositories.ErrStatusNotAdvanced):
			// A concurrent writer got there first; report the stored row
			// like a repeat, never the losing write.
			return s.getMessage(ctx, messageID)
		}
		return models.Message{}, err
	}
	msg.Status = status
	return msg, nil
}

// AddReaction upserts the (message, user, emoji) reaction and returns it
// joined with the reactor's username for broadcasting.
func (s *MessageService) AddReaction(ctx context.Context, messageID int, userID int, emoji string) (models.Message, models.Reaction, error) {
	if emoji == "" {
		return models.Message{}, models.Reaction{}, validationError("emoji is required")
	}

	msg, err := s.getMessage(ctx, messageID)
	if err != nil {
		return models.Message{}, models.Reaction{}, err
	}
	if err := s.requireMember(ctx, msg.ChatID, userID); err != nil {
		return models.Message{}, models.Reaction{}, err
	}

	if err := s.reactions.Upsert(ctx, messageID, userID, emoji); err != nil {
		return models.Message{}, models.Reaction{}, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return models.Message{}, models.Reaction{}, err
	}
	return msg, models.Reaction{UserID: userID, Username: user.Username, Emoji: emoji}, nil
}

// RemoveReaction deletes the reaction; removing a missing one succeeds.
func (s *MessageService) RemoveReaction(ctx context.Context, messageID int, userID int, emoji string) (models.Message, error) {
	msg, err := s.getMessage(ctx, messageID)
	if err != nil {
		return models.Message{}, err
	}
	if err := s.requireMember(ctx, msg.ChatID, userID); err != nil {
		return models.Message{}, err
	}
	return msg, s.reactions.Delete(ctx, messageID, userID, emoji)
}

// Delete retracts a message. Within the delete-for-everyone window the
// sender tombstones it for all members; afterwards it is only hidden from
// the requester. The returned flag tells the caller whether to broadcast.
func (s *MessageService) Delete(ctx context.Context, messageID int, requesterID int) (models.Message, bool, error) {
	msg, err := s.getMessage(ctx, messageID)
	if err != nil {
		return models.Message{}, false, err
	}
	if msg.SenderID != requesterID {
		return models.Message{}, false, ErrAccessDenied
	}

	if s.now().Sub(msg.CreatedAt) <= deleteForEveryoneWindow {
		if err := s.messages.MarkDeletedForEveryone(ctx, messageID, requesterID); err != nil {
			return models.Message{}, false, err
		}
		return msg, true, nil
	}

	if err := s.messages.HideForUser(ctx, messageID, requesterID); err != nil {
		return models.Message{}, false, err
	}
	return msg, false, nil
}

func (s *MessageService) getMessage(ctx context.Context, messageID int) (models.Message, error) {
	msg, err := s.messages.GetByID(ctx, messageID)
	if errors.Is(err, repositories.ErrMessageNotFound) {
		return models.Message{}, ErrNotFound
	}
	return msg, err
}

// requireMember fails closed: a store error counts as not a member.
func (s *MessageService) requireMember(ctx context.Context, chatID int, userID int) error {
	member, err := s.members.IsMember(ctx, chatID, userID)
	if err != nil || !member {
		return ErrAccessDenied
	}
	return nil
}
