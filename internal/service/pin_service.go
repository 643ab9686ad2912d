package service

import (
	"context"
	"errors"
	"time"

	"frichat/internal/models"
	"frichat/internal/repositories"
)

// DefaultPinDuration applies when no duration is supplied.
const DefaultPinDuration = "24h"

var pinDurations = map[string]time.Duration{
	"24h": 24 * time.Hour,
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
}

// PinService owns pin creation, removal and active-pin queries.
type PinService struct {
	pins     repositories.PinRepository
	messages repositories.MessageRepository
	members  repositories.MembershipRepository
	now      func() time.Time
}

// NewPinService constructs a PinService.
func NewPinService(pins repositories.PinRepository, messages repositories.MessageRepository, members repositories.MembershipRepository) *PinService {
	return &PinService{pins: pins, messages: messages, members: members, now: time.Now}
}

// Pin pins a message until now + duration. Re-pinning replaces the existing
// pin's owner and expiry in place.
func (s *PinService) Pin(ctx context.Context, messageID int, requesterID int, duration string) (models.PinView, error) {
	if duration == "" {
		duration = DefaultPinDuration
	}
	d, ok := pinDurations[duration]
	if !ok {
		return models.PinView{}, validationError("invalid pin duration %q", duration)
	}

	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			return models.PinView{}, ErrNotFound
		}
		return models.PinView{}, err
	}
	if err := s.requireMember(ctx, msg.ChatID, requesterID); err != nil {
		return models.PinView{}, err
	}

	if _, err := s.pins.Upsert(ctx, messageID, msg.ChatID, requesterID, s.now().Add(d)); err != nil {
		return models.PinView{}, err
	}
	return s.pins.GetView(ctx, messageID)
}

// Unpin removes the pin. Any member of the pin's chat may unpin, not just
// whoever pinned it.
func (s *PinService) Unpin(ctx context.Context, messageID int, requesterID int) (models.Pin, error) {
	pin, err := s.pins.GetByMessageID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repositories.ErrPinNotFound) {
			return models.Pin{}, ErrNotFound
		}
		return models.Pin{}, err
	}
	if err := s.requireMember(ctx, pin.ChatID, requesterID); err != nil {
		return models.Pin{}, err
	}

	if err := s.pins.Delete(ctx, messageID); err != nil {
		if errors.Is(err, repositories.ErrPinNotFound) {
			return models.Pin{}, ErrNotFound
		}
		return models.Pin{}, err
	}
	return pin, nil
}

// ListActive returns a chat's unexpired pins, newest pin first. Expiry is
// decided at query time; the sweeper only does physical cleanup. The query
// filters expired rows, and the result is filtered again against this
// service's clock so a pin expiring mid-request never slips through.
func (s *PinService) ListActive(ctx context.Context, chatID int, requesterID int) ([]models.PinView, error) {
	if err := s.requireMember(ctx, chatID, requesterID); err != nil {
		return nil, err
	}

	views, err := s.pins.ListActive(ctx, chatID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	active := views[:0]
	for _, view := range views {
		if view.PinnedUntil.After(now) {
			active = append(active, view)
		}
	}
	return active, nil
}

// requireMember fails closed: a store error counts as not a member.
func (s *PinService) requireMember(ctx context.Context, chatID int, userID int) error {
	member, err := s.members.IsMember(ctx, chatID, userID)
	if err != nil || !member {
		return ErrAccessDenied
	}
	return nil
}
