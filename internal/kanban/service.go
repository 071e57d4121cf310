// Package kanban is the ticket workflow engine behind the board: columns,
// tickets, comments and the per-ticket activity log.
package kanban

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/folio-site/folio/internal/db"
	"github.com/folio-site/folio/internal/models"
	"github.com/folio-site/folio/internal/notify"
)

// Notifier receives workflow events after they are committed
type Notifier interface {
	Dispatch(ev notify.Event)
}

// Service runs board operations. Each mutating operation commits its writes
// in a single transaction and notifies only after the commit.
type Service struct {
	store    *db.Store
	notifier Notifier
	logger   *zap.Logger
}

// NewService wires the workflow engine. notifier may be nil.
func NewService(store *db.Store, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, notifier: notifier, logger: logger.Named("kanban")}
}

// ListColumns returns the board's columns left to right
func (s *Service) ListColumns(ctx context.Context) ([]models.Column, error) {
	columns, err := s.store.ListColumns(ctx)
	if err != nil {
		return nil, wrap("list columns", err)
	}
	return columns, nil
}

// CreateColumn appends a new column at the right edge of the board
func (s *Service) CreateColumn(ctx context.Context, name string) (*models.Column, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "column name is required")
	}

	column, err := s.store.CreateColumn(ctx, name)
	if err != nil {
		return nil, wrap("create column", err)
	}
	s.logger.Info("Column created", zap.Uint("column_id", column.ID), zap.String("name", column.Name))
	return column, nil
}

// notify hands ev to the notifier. A panicking notifier cannot fail the
// operation that already committed.
func (s *Service) notify(ev notify.Event) {
	if s.notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Notifier panicked", zap.Uint("ticket_id", ev.TicketID), zap.Any("panic", r))
		}
	}()
	s.notifier.Dispatch(ev)
}

// lookupErr turns a store miss into a NotFoundError
func lookupErr(kind string, id uint, err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return &NotFoundError{Kind: kind, ID: id}
	}
	return err
}
