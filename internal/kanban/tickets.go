package kanban

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/folio-site/folio/internal/db"
	"github.com/folio-site/folio/internal/models"
	"github.com/folio-site/folio/internal/notify"
)

// unknownColumn names a column that no longer exists
const unknownColumn = "Unknown"

// CreateTicketInput holds the data needed to create a new ticket
type CreateTicketInput struct {
	Title       string
	Description string
	Priority    string // low, medium, high; empty means medium
	ColumnID    *uint  // nil or 0 means the leftmost column
}

// UpdateTicketInput replaces every editable field of a ticket
type UpdateTicketInput struct {
	Title       string
	Description string
	Priority    string
	AssignedTo  *uint
}

// TicketDetail is a ticket with its comment thread and activity log
type TicketDetail struct {
	models.Ticket
	ColumnName string                 `json:"column_name"`
	Comments   []models.Comment       `json:"comments"`
	Activity   []models.ActivityEvent `json:"activity"`
}

// ListTickets returns every ticket, newest first
func (s *Service) ListTickets(ctx context.Context) ([]models.Ticket, error) {
	tickets, err := s.store.ListTickets(ctx)
	if err != nil {
		return nil, wrap("list tickets", err)
	}
	return tickets, nil
}

// GetTicket loads a ticket together with its comments and activity
func (s *Service) GetTicket(ctx context.Context, id uint) (*TicketDetail, error) {
	ticket, err := s.store.GetTicket(ctx, id)
	if err != nil {
		return nil, wrap("get ticket", lookupErr("ticket", id, err))
	}

	detail := &TicketDetail{Ticket: *ticket}
	if detail.ColumnName, err = columnName(ctx, s.store, ticket.ColumnID); err != nil {
		return nil, wrap("get ticket", err)
	}
	if detail.Comments, err = s.store.ListComments(ctx, id); err != nil {
		return nil, wrap("get ticket comments", err)
	}
	if detail.Activity, err = s.store.ListActivity(ctx, id); err != nil {
		return nil, wrap("get ticket activity", err)
	}
	return detail, nil
}

// CreateTicket adds a ticket to the board and records a "created" event
func (s *Service) CreateTicket(ctx context.Context, sess models.Session, in CreateTicketInput) (*models.Ticket, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalid("title", "title is required")
	}
	priority, ok := models.ParsePriority(in.Priority)
	if !ok {
		return nil, invalid("priority", fmt.Sprintf("unknown priority %q (use low, medium or high)", in.Priority))
	}

	var ticket models.Ticket
	err := s.store.Transaction(ctx, func(tx *db.Store) error {
		column, err := resolveColumn(ctx, tx, in.ColumnID)
		if err != nil {
			return err
		}

		ticket = models.Ticket{
			Title:       title,
			Description: in.Description,
			Priority:    priority,
			ColumnID:    &column.ID,
			CreatedBy:   sess.UserRef(),
		}
		if err := tx.CreateTicket(ctx, &ticket); err != nil {
			return err
		}

		details := fmt.Sprintf("%s created the ticket in column %d with priority %s", sess.Actor(), column.ID, priority)
		_, err = tx.AppendActivity(ctx, ticket.ID, models.ActivityCreated, details)
		return err
	})
	if err != nil {
		return nil, wrap("create ticket", err)
	}
	if sess.UserID != 0 {
		ticket.CreatedByName = sess.Username
	}

	s.logger.Info("Ticket created",
		zap.Uint("ticket_id", ticket.ID),
		zap.Uintp("column_id", ticket.ColumnID),
		zap.String("actor", sess.Actor()))

	s.notify(notify.Event{
		Kind:     notify.TicketCreated,
		TicketID: ticket.ID,
		Title:    ticket.Title,
		Actor:    sess.Actor(),
		Priority: string(ticket.Priority),
		At:       ticket.CreatedAt,
	})
	return &ticket, nil
}

// MoveTicket puts a ticket into another column and records a "moved" event.
// Any column may follow any other.
func (s *Service) MoveTicket(ctx context.Context, sess models.Session, id uint, columnID uint) (*models.Ticket, error) {
	var (
		ticket   *models.Ticket
		fromName string
		toName   string
	)
	err := s.store.Transaction(ctx, func(tx *db.Store) error {
		current, err := tx.GetTicket(ctx, id)
		if err != nil {
			return lookupErr("ticket", id, err)
		}
		if fromName, err = columnName(ctx, tx, current.ColumnID); err != nil {
			return err
		}

		dest, err := tx.GetColumn(ctx, columnID)
		if err != nil {
			return lookupErr("column", columnID, err)
		}
		toName = dest.Name

		if err := tx.MoveTicket(ctx, id, dest.ID); err != nil {
			return lookupErr("ticket", id, err)
		}

		details := fmt.Sprintf("%s moved the ticket from \"%s\" to \"%s\"", sess.Actor(), fromName, toName)
		if _, err := tx.AppendActivity(ctx, id, models.ActivityMoved, details); err != nil {
			return err
		}

		ticket, err = tx.GetTicket(ctx, id)
		return err
	})
	if err != nil {
		return nil, wrap("move ticket", err)
	}

	s.logger.Info("Ticket moved",
		zap.Uint("ticket_id", id),
		zap.String("from", fromName),
		zap.String("to", toName),
		zap.String("actor", sess.Actor()))

	s.notify(notify.Event{
		Kind:       notify.TicketMoved,
		TicketID:   ticket.ID,
		Title:      ticket.Title,
		Actor:      sess.Actor(),
		FromColumn: fromName,
		ToColumn:   toName,
		At:         ticket.UpdatedAt,
	})
	return ticket, nil
}

// UpdateTicket overwrites the editable fields of a ticket. It records no
// activity event.
func (s *Service) UpdateTicket(ctx context.Context, sess models.Session, id uint, in UpdateTicketInput) (*models.Ticket, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalid("title", "title is required")
	}
	priority, ok := models.ParsePriority(in.Priority)
	if !ok {
		return nil, invalid("priority", fmt.Sprintf("unknown priority %q (use low, medium or high)", in.Priority))
	}

	var ticket *models.Ticket
	err := s.store.Transaction(ctx, func(tx *db.Store) error {
		current, err := tx.GetTicket(ctx, id)
		if err != nil {
			return lookupErr("ticket", id, err)
		}

		current.Title = title
		current.Description = in.Description
		current.Priority = priority
		current.AssignedTo = in.AssignedTo
		if err := tx.UpdateTicket(ctx, current); err != nil {
			return lookupErr("ticket", id, err)
		}

		ticket, err = tx.GetTicket(ctx, id)
		return err
	})
	if err != nil {
		return nil, wrap("update ticket", err)
	}

	s.logger.Info("Ticket updated", zap.Uint("ticket_id", id), zap.String("actor", sess.Actor()))
	return ticket, nil
}

// DeleteTicket removes a ticket with its comments and activity. Deleting a
// ticket that does not exist succeeds.
func (s *Service) DeleteTicket(ctx context.Context, sess models.Session, id uint) error {
	err := s.store.Transaction(ctx, func(tx *db.Store) error {
		return tx.DeleteTicket(ctx, id)
	})
	if err != nil {
		return wrap("delete ticket", err)
	}
	s.logger.Info("Ticket deleted", zap.Uint("ticket_id", id), zap.String("actor", sess.Actor()))
	return nil
}

// resolveColumn returns the requested column, or the leftmost one when none
// was requested
func resolveColumn(ctx context.Context, tx *db.Store, columnID *uint) (*models.Column, error) {
	if columnID == nil || *columnID == 0 {
		column, err := tx.FirstColumn(ctx)
		if errors.Is(err, db.ErrNotFound) {
			return nil, &NotFoundError{Kind: "column"}
		}
		return column, err
	}

	column, err := tx.GetColumn(ctx, *columnID)
	if err != nil {
		return nil, lookupErr("column", *columnID, err)
	}
	return column, nil
}

// columnName resolves a column's display name, falling back to "Unknown"
// when the ticket has no column or the column is gone
func columnName(ctx context.Context, store *db.Store, columnID *uint) (string, error) {
	if columnID == nil {
		return unknownColumn, nil
	}
	column, err := store.GetColumn(ctx, *columnID)
	if errors.Is(err, db.ErrNotFound) {
		return unknownColumn, nil
	}
	if err != nil {
		return "", err
	}
	return column.Name, nil
}
