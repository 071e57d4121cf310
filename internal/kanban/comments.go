package kanban

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/folio-site/folio/internal/db"
	"github.com/folio-site/folio/internal/models"
	"github.com/folio-site/folio/internal/notify"
)

// activityDetailLimit caps how much of a comment is copied into the activity log
const activityDetailLimit = 140

// AddComment appends a comment to a ticket and records a "commented" event
// whose details are the comment cut to 140 characters.
func (s *Service) AddComment(ctx context.Context, sess models.Session, ticketID uint, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalid("content", "comment content is required")
	}

	var (
		comment models.Comment
		title   string
	)
	err := s.store.Transaction(ctx, func(tx *db.Store) error {
		ticket, err := tx.GetTicket(ctx, ticketID)
		if err != nil {
			return lookupErr("ticket", ticketID, err)
		}
		title = ticket.Title

		comment = models.Comment{TicketID: ticket.ID, Author: sess.Actor(), Content: content}
		if err := tx.CreateComment(ctx, &comment); err != nil {
			return err
		}
		_, err = tx.AppendActivity(ctx, ticket.ID, models.ActivityCommented, truncate(content, activityDetailLimit))
		return err
	})
	if err != nil {
		return nil, wrap("add comment", err)
	}

	s.logger.Info("Comment added",
		zap.Uint("ticket_id", ticketID),
		zap.Uint("comment_id", comment.ID),
		zap.String("actor", sess.Actor()))

	s.notify(notify.Event{
		Kind:     notify.TicketCommented,
		TicketID: ticketID,
		Title:    title,
		Actor:    sess.Actor(),
		Comment:  content,
		At:       comment.CreatedAt,
	})
	return &comment, nil
}

// truncate cuts s to at most n runes
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
