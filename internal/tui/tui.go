package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/folio-site/folio/internal/kanban"
	"github.com/folio-site/folio/internal/models"
)

// Board is the part of the workflow engine the terminal UI drives.
// *kanban.Service implements it.
type Board interface {
	ListColumns(ctx context.Context) ([]models.Column, error)
	ListTickets(ctx context.Context) ([]models.Ticket, error)
	GetTicket(ctx context.Context, id uint) (*kanban.TicketDetail, error)
	CreateTicket(ctx context.Context, sess models.Session, in kanban.CreateTicketInput) (*models.Ticket, error)
	MoveTicket(ctx context.Context, sess models.Session, id uint, columnID uint) (*models.Ticket, error)
	UpdateTicket(ctx context.Context, sess models.Session, id uint, in kanban.UpdateTicketInput) (*models.Ticket, error)
	DeleteTicket(ctx context.Context, sess models.Session, id uint) error
}

// RunBoard starts the interactive board
func RunBoard(ctx context.Context, board Board, sess models.Session) error {
	p := tea.NewProgram(NewBoardModel(ctx, board, sess), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// RunEditTicket opens the edit form for a ticket and reports the outcome
func RunEditTicket(ctx context.Context, board Board, sess models.Session, ticket models.Ticket) error {
	p := tea.NewProgram(NewEditModel(ctx, board, sess, ticket), tea.WithAltScreen(), tea.WithContext(ctx))
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	if m, ok := finalModel.(EditModel); ok {
		switch {
		case m.err != nil:
			return m.err
		case m.saved != nil:
			fmt.Printf("✅ Ticket #%d updated: %s\n", m.saved.ID, m.saved.Title)
		default:
			fmt.Println("❌ Edit cancelled.")
		}
	}
	return nil
}
