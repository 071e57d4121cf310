package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/folio-site/folio/internal/kanban"
	"github.com/folio-site/folio/internal/models"
)

// Field represents an input of the edit form
type Field int

const (
	FieldTitle Field = iota
	FieldDescription
	FieldPriority
	fieldCount
)

var fieldLabels = [fieldCount]string{"Title", "Description", "Priority"}

type savedMsg struct {
	ticket *models.Ticket
	err    error
}

// EditModel is a small form for changing a ticket's editable fields
type EditModel struct {
	ctx    context.Context
	board  Board
	sess   models.Session
	ticket models.Ticket

	inputs  []textinput.Model
	current Field

	validationErr string
	saving        bool
	saved         *models.Ticket
	err           error
	width         int
}

// NewEditModel creates the form prefilled with the ticket's current values
func NewEditModel(ctx context.Context, board Board, sess models.Session, ticket models.Ticket) EditModel {
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].Width = 60
		inputs[i].TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
		inputs[i].PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDisabledText))
		inputs[i].Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))
	}

	inputs[FieldTitle].Placeholder = "Ticket title (required)"
	inputs[FieldTitle].CharLimit = 200
	inputs[FieldTitle].SetValue(ticket.Title)

	inputs[FieldDescription].Placeholder = "Description (optional)"
	inputs[FieldDescription].CharLimit = 2000
	inputs[FieldDescription].SetValue(ticket.Description)

	inputs[FieldPriority].Placeholder = "low/medium/high or 1/2/3"
	inputs[FieldPriority].CharLimit = 10
	inputs[FieldPriority].SetValue(string(ticket.Priority))

	inputs[FieldTitle].Focus()

	return EditModel{
		ctx:    ctx,
		board:  board,
		sess:   sess,
		ticket: ticket,
		inputs: inputs,
	}
}

// Init initializes the model
func (m EditModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m EditModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		w := msg.Width - 20
		if w < 30 {
			w = 30
		}
		if w > 80 {
			w = 80
		}
		for i := range m.inputs {
			m.inputs[i].Width = w
		}
		return m, nil

	case savedMsg:
		m.saving = false
		if msg.err != nil {
			if kanban.IsValidation(msg.err) {
				m.validationErr = msg.err.Error()
				return m, nil
			}
			m.err = msg.err
			return m, tea.Quit
		}
		m.saved = msg.ticket
		return m, tea.Quit

	case tea.KeyMsg:
		if m.saving {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "down":
			return m.focus(m.current + 1)
		case "shift+tab", "up":
			return m.focus(m.current - 1)
		case "ctrl+s":
			return m.save()
		case "enter":
			if m.current == fieldCount-1 {
				return m.save()
			}
			return m.focus(m.current + 1)
		}
	}

	var cmd tea.Cmd
	m.inputs[m.current], cmd = m.inputs[m.current].Update(msg)
	m.validationErr = ""
	return m, cmd
}

func (m EditModel) focus(f Field) (EditModel, tea.Cmd) {
	if f < 0 || f >= fieldCount {
		return m, nil
	}
	m.inputs[m.current].Blur()
	m.current = f
	return m, m.inputs[f].Focus()
}

func (m EditModel) save() (EditModel, tea.Cmd) {
	title := strings.TrimSpace(m.inputs[FieldTitle].Value())
	if title == "" {
		m.validationErr = "Ticket title is required"
		return m, nil
	}
	if _, ok := models.ParsePriority(m.inputs[FieldPriority].Value()); !ok {
		m.validationErr = "Priority must be low, medium or high"
		return m, nil
	}

	m.saving = true
	in := kanban.UpdateTicketInput{
		Title:       title,
		Description: m.inputs[FieldDescription].Value(),
		Priority:    m.inputs[FieldPriority].Value(),
		AssignedTo:  m.ticket.AssignedTo,
	}
	id := m.ticket.ID
	return m, func() tea.Msg {
		ticket, err := m.board.UpdateTicket(m.ctx, m.sess, id, in)
		return savedMsg{ticket: ticket, err: err}
	}
}

// View renders the form
func (m EditModel) View() string {
	if m.saved != nil || m.err != nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAccentBright)).
		Render(fmt.Sprintf("📝 Edit Ticket #%d", m.ticket.ID)))
	b.WriteString("\n\n")

	for i := Field(0); i < fieldCount; i++ {
		label := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText))
		marker := "  "
		if i == m.current {
			label = label.Foreground(lipgloss.Color(ColorAccentBright)).Bold(true)
			marker = "▶ "
		}
		b.WriteString(label.Render(marker + fieldLabels[i]))
		b.WriteString("\n")
		b.WriteString("  " + m.inputs[i].View())
		b.WriteString("\n\n")
	}

	if m.validationErr != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError)).Render("⚠️  " + m.validationErr))
		b.WriteString("\n")
	}
	if m.saving {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText)).Render("Saving..."))
		b.WriteString("\n")
	}

	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelpText)).Italic(true).
		Render("tab/↓ next · shift+tab/↑ prev · enter on last field or ctrl+s save · esc cancel"))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Padding(1).
		Render(b.String())
}
