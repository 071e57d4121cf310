package db

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/folio-site/folio/internal/models"
)

// withCreator selects tickets together with the creator's username
func (s *Store) withCreator(ctx context.Context) *gorm.DB {
	return s.conn(ctx).Model(&models.Ticket{}).
		Select("tickets.*, COALESCE(users.username, '') AS created_by_name").
		Joins("LEFT JOIN users ON users.id = tickets.created_by")
}

// ListTickets returns every ticket, newest first. Clients group by column.
func (s *Store) ListTickets(ctx context.Context) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := s.withCreator(ctx).
		Order("tickets.created_at DESC, tickets.id DESC").
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// GetTicket retrieves a ticket by ID
func (s *Store) GetTicket(ctx context.Context, id uint) (*models.Ticket, error) {
	var ticket models.Ticket
	err := s.withCreator(ctx).Where("tickets.id = ?", id).First(&ticket).Error
	if err != nil {
		return nil, notFound(err, "ticket #%d", id)
	}
	return &ticket, nil
}

// CreateTicket inserts a ticket; ID and timestamps are filled in
func (s *Store) CreateTicket(ctx context.Context, ticket *models.Ticket) error {
	return s.conn(ctx).Omit("Column", "Comments", "Activity").Create(ticket).Error
}

// MoveTicket points a ticket at another column
func (s *Store) MoveTicket(ctx context.Context, id uint, columnID uint) error {
	res := s.conn(ctx).Model(&models.Ticket{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"column_id":  columnID,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "ticket #%d", id)
	}
	return nil
}

// UpdateTicket writes every mutable field of the ticket, including empty ones
func (s *Store) UpdateTicket(ctx context.Context, ticket *models.Ticket) error {
	ticket.UpdatedAt = time.Now()
	res := s.conn(ctx).Model(&models.Ticket{}).
		Where("id = ?", ticket.ID).
		Updates(map[string]any{
			"title":       ticket.Title,
			"description": ticket.Description,
			"priority":    ticket.Priority,
			"assigned_to": ticket.AssignedTo,
			"updated_at":  ticket.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "ticket #%d", ticket.ID)
	}
	return nil
}

// DeleteTicket removes a ticket with its comments and activity. Deleting a
// missing ticket is not an error. Callers should run it in a transaction.
func (s *Store) DeleteTicket(ctx context.Context, id uint) error {
	if err := s.conn(ctx).Where("ticket_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
		return err
	}
	if err := s.conn(ctx).Where("ticket_id = ?", id).Delete(&models.ActivityEvent{}).Error; err != nil {
		return err
	}
	return s.conn(ctx).Delete(&models.Ticket{}, id).Error
}
