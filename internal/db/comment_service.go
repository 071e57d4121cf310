package db

import (
	"context"

	"github.com/folio-site/folio/internal/models"
)

// CreateComment appends a comment to a ticket
func (s *Store) CreateComment(ctx context.Context, comment *models.Comment) error {
	return s.conn(ctx).Create(comment).Error
}

// ListComments returns a ticket's comments, oldest first
func (s *Store) ListComments(ctx context.Context, ticketID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.conn(ctx).
		Where("ticket_id = ?", ticketID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// AppendActivity records one event in a ticket's audit trail
func (s *Store) AppendActivity(ctx context.Context, ticketID uint, kind models.ActivityType, details string) (*models.ActivityEvent, error) {
	event := models.ActivityEvent{TicketID: ticketID, Type: kind, Details: details}
	if err := s.conn(ctx).Create(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// ListActivity returns a ticket's audit trail in commit order
func (s *Store) ListActivity(ctx context.Context, ticketID uint) ([]models.ActivityEvent, error) {
	var events []models.ActivityEvent
	err := s.conn(ctx).
		Where("ticket_id = ?", ticketID).
		Order("id ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
