package models

import (
	"strings"
	"time"
)

// Priority is the urgency of a ticket
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority accepts low/medium/high (or med, 1/2/3) in any case.
// An empty string yields PriorityMedium.
func ParsePriority(s string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return PriorityMedium, true
	case "low", "1":
		return PriorityLow, true
	case "medium", "med", "2":
		return PriorityMedium, true
	case "high", "3":
		return PriorityHigh, true
	default:
		return "", false
	}
}

// ActivityType classifies an entry of a ticket's activity log
type ActivityType string

const (
	ActivityCreated   ActivityType = "created"
	ActivityMoved     ActivityType = "moved"
	ActivityCommented ActivityType = "commented"
)

// Column is a vertical lane of the board
type Column struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Name     string `gorm:"not null" json:"name"`
	Position int    `gorm:"not null;default:0;index" json:"position"`
}

// TableName keeps the table name used by the original site
func (Column) TableName() string {
	return "kanban_columns"
}

// Ticket is a card on the board. Its state is the column it sits in.
type Ticket struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title       string   `gorm:"not null" json:"title"`
	Description string   `json:"description"`
	Priority    Priority `gorm:"type:varchar(16);not null;default:medium" json:"priority"`
	ColumnID    *uint    `gorm:"index" json:"column_id"`
	CreatedBy   *uint    `json:"created_by"`
	AssignedTo  *uint    `json:"assigned_to"`

	// Filled by listing queries from the users table
	CreatedByName string `gorm:"->;-:migration" json:"created_by_name,omitempty"`

	// Relationships
	Column   *Column         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
	Comments []Comment       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"comments,omitempty"`
	Activity []ActivityEvent `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"activity,omitempty"`
}

func (Ticket) TableName() string {
	return "tickets"
}

// Comment is an append-only note on a ticket
type Comment struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	TicketID uint   `gorm:"not null;index" json:"ticket_id"`
	Author   string `json:"author"`
	Content  string `gorm:"not null" json:"content"`
}

func (Comment) TableName() string {
	return "ticket_comments"
}

// ActivityEvent is one line of a ticket's audit trail
type ActivityEvent struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	TicketID uint         `gorm:"not null;index" json:"ticket_id"`
	Type     ActivityType `gorm:"type:varchar(32);not null" json:"type"`
	Details  string       `json:"details"`
}

func (ActivityEvent) TableName() string {
	return "ticket_activity"
}
