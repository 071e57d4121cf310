package notify

import (
	"fmt"
	"strings"
	"time"
)

// EventKind names the workflow step that produced an event
type EventKind string

const (
	TicketCreated   EventKind = "created"
	TicketMoved     EventKind = "moved"
	TicketCommented EventKind = "commented"
)

// Event describes a board change worth an email
type Event struct {
	Kind     EventKind
	TicketID uint
	Title    string
	Actor    string
	At       time.Time

	// Set depending on Kind
	Priority   string
	FromColumn string
	ToColumn   string
	Comment    string
}

// Subject is the email subject line
func (e Event) Subject() string {
	switch e.Kind {
	case TicketCreated:
		return fmt.Sprintf("[Kanban] New ticket #%d: %s", e.TicketID, e.Title)
	case TicketMoved:
		return fmt.Sprintf("[Kanban] Ticket #%d moved to %s", e.TicketID, e.ToColumn)
	case TicketCommented:
		return fmt.Sprintf("[Kanban] New comment on #%d: %s", e.TicketID, e.Title)
	default:
		return fmt.Sprintf("[Kanban] Ticket #%d updated", e.TicketID)
	}
}

// Body is the plain-text email body
func (e Event) Body() string {
	var b strings.Builder

	switch e.Kind {
	case TicketCreated:
		fmt.Fprintf(&b, "%s created ticket #%d \"%s\" with priority %s.\n", e.Actor, e.TicketID, e.Title, e.Priority)
	case TicketMoved:
		fmt.Fprintf(&b, "%s moved ticket #%d \"%s\" from \"%s\" to \"%s\".\n", e.Actor, e.TicketID, e.Title, e.FromColumn, e.ToColumn)
	case TicketCommented:
		fmt.Fprintf(&b, "%s commented on ticket #%d \"%s\":\n\n%s\n", e.Actor, e.TicketID, e.Title, e.Comment)
	default:
		fmt.Fprintf(&b, "%s updated ticket #%d \"%s\".\n", e.Actor, e.TicketID, e.Title)
	}

	if !e.At.IsZero() {
		fmt.Fprintf(&b, "\n%s\n", e.At.Format(time.RFC1123))
	}
	return b.String()
}
