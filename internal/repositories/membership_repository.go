package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"frichat/internal/models"
)

// MembershipRepository is the authorization source of truth: every chat-scoped
// operation checks it before touching anything else.
type MembershipRepository interface {
	IsMember(ctx context.Context, chatID int, userID int) (bool, error)
	RoleOf(ctx context.Context, chatID int, userID int) (string, error)
	AddMember(ctx context.Context, chatID int, userID int, role string) error
	RemoveMember(ctx context.Context, chatID int, userID int) error
	ListChatIDs(ctx context.Context, userID int) ([]int, error)
	ListParticipants(ctx context.Context, chatID int) ([]models.Participant, error)
}

// MembershipRepo is a sqlx implementation of MembershipRepository.
type MembershipRepo struct {
	db *sqlx.DB
}

// NewMembershipRepo constructs a MembershipRepo.
func NewMembershipRepo(db *sqlx.DB) *MembershipRepo {
	return &MembershipRepo{db: db}
}

// IsMember checks whether a user belongs to the chat.
func (r *MembershipRepo) IsMember(ctx context.Context, chatID int, userID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM chat_members WHERE chat_id=$1 AND user_id=$2)`, chatID, userID)
	return exists, err
}

// RoleOf returns the member's role, or empty string when not a member.
func (r *MembershipRepo) RoleOf(ctx context.Context, chatID int, userID int) (string, error) {
	var role string
	err := r.db.GetContext(ctx, &role, `SELECT role FROM chat_members WHERE chat_id=$1 AND user_id=$2`, chatID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return role, err
}

// AddMember inserts a membership row; re-adding an existing member is an error.
func (r *MembershipRepo) AddMember(ctx context.Context, chatID int, userID int, role string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO chat_members (chat_id, user_id, role) VALUES ($1, $2, $3)`, chatID, userID, role)
	return err
}

// RemoveMember deletes a membership row.
func (r *MembershipRepo) RemoveMember(ctx context.Context, chatID int, userID int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM chat_members WHERE chat_id=$1 AND user_id=$2`, chatID, userID)
	return err
}

// ListChatIDs returns every chat the user belongs to, used to join ws rooms
// on authenticate.
func (r *MembershipRepo) ListChatIDs(ctx context.Context, userID int) ([]int, error) {
	var ids []int
	err := r.db.SelectContext(ctx, &ids, `SELECT chat_id FROM chat_members WHERE user_id=$1`, userID)
	return ids, err
}

// ListParticipants returns chat members joined with user identity.
func (r *MembershipRepo) ListParticipants(ctx context.Context, chatID int) ([]models.Participant, error) {
	var participants []models.Participant
	query := `SELECT u.id AS user_id, u.username, u.full_name, u.avatar_url, u.status, cm.role
        FROM chat_members cm
        JOIN users u ON u.id = cm.user_id
        WHERE cm.chat_id=$1`
	err := r.db.SelectContext(ctx, &participants, query, chatID)
	return participants, err
}
