package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/folio-site/folio/internal/kanban"
	"github.com/folio-site/folio/internal/models"
	"github.com/folio-site/folio/internal/parser"
)

type boardKeyMap struct {
	Left      key.Binding
	Right     key.Binding
	Up        key.Binding
	Down      key.Binding
	MoveLeft  key.Binding
	MoveRight key.Binding
	Add       key.Binding
	Delete    key.Binding
	Refresh   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func (k boardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Up, k.MoveRight, k.Add, k.Help, k.Quit}
}

func (k boardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down},
		{k.MoveLeft, k.MoveRight},
		{k.Add, k.Delete, k.Refresh},
		{k.Help, k.Quit},
	}
}

var boardKeys = boardKeyMap{
	Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev column")),
	Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next column")),
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	MoveLeft:  key.NewBinding(key.WithKeys("<", "H"), key.WithHelp("</H", "move left")),
	MoveRight: key.NewBinding(key.WithKeys(">", "L"), key.WithHelp(">/L", "move right")),
	Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add ticket")),
	Delete:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
	Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
	Quit:      key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

type boardLoadedMsg struct {
	columns []models.Column
	tickets []models.Ticket
	err     error
}

type detailLoadedMsg struct {
	detail *kanban.TicketDetail
	err    error
}

// actionDoneMsg reports a finished mutation. selectID is the ticket to keep
// selected after the reload.
type actionDoneMsg struct {
	status   string
	selectID uint
	err      error
}

// unknownLane collects tickets whose column is missing or was deleted
var unknownLane = models.Column{ID: 0, Name: "Unknown"}

// BoardModel is the interactive kanban board
type BoardModel struct {
	ctx   context.Context
	board Board
	sess  models.Session

	columns []models.Column          // board columns, plus unknownLane when needed
	lanes   map[uint][]models.Ticket // by column id; 0 holds tickets without a column
	col     int
	row     int
	detail  *kanban.TicketDetail

	// Ticket to reselect once the next load arrives
	pendingSelect uint

	adding bool
	input  textinput.Model

	keys   boardKeyMap
	help   help.Model
	status string
	err    error

	width  int
	height int
}

// NewBoardModel creates the board model; data loads in Init
func NewBoardModel(ctx context.Context, board Board, sess models.Session) BoardModel {
	input := textinput.New()
	input.Placeholder = `Title +priority @column (e.g. Fix login +high @"In Progress")`
	input.CharLimit = 200
	input.Width = 60
	input.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
	input.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDisabledText))
	input.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))

	return BoardModel{
		ctx:   ctx,
		board: board,
		sess:  sess,
		lanes: map[uint][]models.Ticket{},
		input: input,
		keys:  boardKeys,
		help:  help.New(),
	}
}

// Init loads the board
func (m BoardModel) Init() tea.Cmd {
	return m.loadBoard()
}

func (m BoardModel) loadBoard() tea.Cmd {
	return func() tea.Msg {
		columns, err := m.board.ListColumns(m.ctx)
		if err != nil {
			return boardLoadedMsg{err: err}
		}
		tickets, err := m.board.ListTickets(m.ctx)
		return boardLoadedMsg{columns: columns, tickets: tickets, err: err}
	}
}

func (m BoardModel) loadDetail(id uint) tea.Cmd {
	return func() tea.Msg {
		detail, err := m.board.GetTicket(m.ctx, id)
		return detailLoadedMsg{detail: detail, err: err}
	}
}

// Update handles messages
func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case boardLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.setBoard(msg.columns, msg.tickets)
		return m, m.detailCmd()

	case detailLoadedMsg:
		if msg.err != nil {
			m.detail = nil
			m.status = "⚠️  " + msg.err.Error()
			return m, nil
		}
		m.detail = msg.detail
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.status = "⚠️  " + msg.err.Error()
			return m, nil
		}
		m.status = msg.status
		m.pendingSelect = msg.selectID
		return m, m.loadBoard()

	case tea.KeyMsg:
		if m.adding {
			return m.updateAdding(msg)
		}
		return m.updateBoard(msg)
	}
	return m, nil
}

func (m BoardModel) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Left):
		return m.selectColumn(m.col - 1)

	case key.Matches(msg, m.keys.Right):
		return m.selectColumn(m.col + 1)

	case key.Matches(msg, m.keys.Up):
		return m.selectRow(m.row - 1)

	case key.Matches(msg, m.keys.Down):
		return m.selectRow(m.row + 1)

	case key.Matches(msg, m.keys.MoveLeft):
		return m, m.moveSelected(-1)

	case key.Matches(msg, m.keys.MoveRight):
		return m, m.moveSelected(1)

	case key.Matches(msg, m.keys.Delete):
		ticket := m.selected()
		if ticket == nil {
			return m, nil
		}
		id, title := ticket.ID, ticket.Title
		return m, func() tea.Msg {
			err := m.board.DeleteTicket(m.ctx, m.sess, id)
			return actionDoneMsg{status: fmt.Sprintf("🗑  Deleted #%d %s", id, title), err: err}
		}

	case key.Matches(msg, m.keys.Refresh):
		if t := m.selected(); t != nil {
			m.pendingSelect = t.ID
		}
		return m, m.loadBoard()

	case key.Matches(msg, m.keys.Add):
		if len(m.boardColumns()) == 0 {
			m.status = "⚠️  Create a column first"
			return m, nil
		}
		m.adding = true
		m.input.SetValue("")
		return m, m.input.Focus()
	}
	return m, nil
}

func (m BoardModel) updateAdding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.adding = false
		m.input.Blur()
		return m, nil

	case tea.KeyEnter:
		parsed := parser.ParseQuickAdd(m.input.Value())
		if len(parsed.Errors) > 0 {
			m.status = "⚠️  " + strings.Join(parsed.Errors, ", ")
			return m, nil
		}

		// the unknown lane has id 0, which lands in the leftmost column
		columnID := m.columns[m.col].ID
		if parsed.Column != "" {
			column, ok := parser.MatchColumn(m.boardColumns(), parsed.Column)
			if !ok {
				m.status = fmt.Sprintf("⚠️  No column named %q", parsed.Column)
				return m, nil
			}
			columnID = column.ID
		}

		m.adding = false
		m.input.Blur()
		in := kanban.CreateTicketInput{Title: parsed.Title, Priority: parsed.Priority, ColumnID: &columnID}
		return m, func() tea.Msg {
			ticket, err := m.board.CreateTicket(m.ctx, m.sess, in)
			if err != nil {
				return actionDoneMsg{err: err}
			}
			return actionDoneMsg{
				status:   fmt.Sprintf("✅ Added #%d %s", ticket.ID, ticket.Title),
				selectID: ticket.ID,
			}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// moveSelected moves the selected ticket one column left (-1) or right (+1)
func (m BoardModel) moveSelected(step int) tea.Cmd {
	ticket := m.selected()
	target := m.col + step
	if ticket == nil || target < 0 || target >= len(m.columns) || m.columns[target].ID == unknownLane.ID {
		return nil
	}
	id, column := ticket.ID, m.columns[target]
	return func() tea.Msg {
		_, err := m.board.MoveTicket(m.ctx, m.sess, id, column.ID)
		return actionDoneMsg{status: fmt.Sprintf("➡️  Moved #%d to %s", id, column.Name), selectID: id, err: err}
	}
}

// setBoard groups tickets into lanes and restores the selection. Tickets
// without a known column go to a trailing "Unknown" lane.
func (m *BoardModel) setBoard(columns []models.Column, tickets []models.Ticket) {
	known := make(map[uint]bool, len(columns))
	for _, c := range columns {
		known[c.ID] = true
	}

	m.columns = columns
	m.lanes = make(map[uint][]models.Ticket, len(columns)+1)
	for _, t := range tickets {
		id := unknownLane.ID
		if t.ColumnID != nil && known[*t.ColumnID] {
			id = *t.ColumnID
		}
		m.lanes[id] = append(m.lanes[id], t)
	}
	if n := len(m.lanes[unknownLane.ID]); n > 0 {
		m.columns = append(append([]models.Column(nil), columns...), unknownLane)
		if m.status == "" {
			m.status = fmt.Sprintf("⚠️  %d ticket(s) have no column; move them with </H", n)
		}
	}

	if m.pendingSelect != 0 {
		for ci, c := range m.columns {
			for ri, t := range m.lanes[c.ID] {
				if t.ID == m.pendingSelect {
					m.col, m.row = ci, ri
				}
			}
		}
		m.pendingSelect = 0
	}
	m.clamp()
}

func (m *BoardModel) clamp() {
	if m.col >= len(m.columns) {
		m.col = len(m.columns) - 1
	}
	if m.col < 0 {
		m.col = 0
	}
	lane := m.lane()
	if m.row >= len(lane) {
		m.row = len(lane) - 1
	}
	if m.row < 0 {
		m.row = 0
	}
}

func (m BoardModel) selectColumn(col int) (tea.Model, tea.Cmd) {
	if col < 0 || col >= len(m.columns) {
		return m, nil
	}
	m.col = col
	m.clamp()
	return m, m.detailCmd()
}

func (m BoardModel) selectRow(row int) (tea.Model, tea.Cmd) {
	if row < 0 || row >= len(m.lane()) {
		return m, nil
	}
	m.row = row
	return m, m.detailCmd()
}

func (m BoardModel) detailCmd() tea.Cmd {
	if t := m.selected(); t != nil {
		return m.loadDetail(t.ID)
	}
	return nil
}

// boardColumns returns the real columns, without the unknown lane
func (m BoardModel) boardColumns() []models.Column {
	if n := len(m.columns); n > 0 && m.columns[n-1].ID == unknownLane.ID {
		return m.columns[:n-1]
	}
	return m.columns
}

func (m BoardModel) lane() []models.Ticket {
	if m.col < 0 || m.col >= len(m.columns) {
		return nil
	}
	return m.lanes[m.columns[m.col].ID]
}

func (m BoardModel) selected() *models.Ticket {
	lane := m.lane()
	if m.row < 0 || m.row >= len(lane) {
		return nil
	}
	return &lane[m.row]
}

// View renders the board
func (m BoardModel) View() string {
	if m.err != nil {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError)).
			Render("Failed to load board: "+m.err.Error()) + "\n\nPress q to quit.\n"
	}
	if m.width == 0 {
		return "Loading..."
	}

	var footer string
	if m.adding {
		footer = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorAccentMain)).
			Width(m.width - 2).
			Render("New ticket: " + m.input.View())
	} else {
		footer = m.help.View(m.keys)
	}

	status := ""
	if m.status != "" {
		status = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText)).Render(m.status)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderLanes(),
		m.renderDetail(),
		status,
		footer,
	)
}

func (m BoardModel) renderLanes() string {
	if len(m.columns) == 0 {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText)).Italic(true).
			Render("No columns yet. Use 'folio columns add <name>'.")
	}

	laneWidth := (m.width - len(m.columns)) / len(m.columns)
	if laneWidth < 18 {
		laneWidth = 18
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAccentBright))
	rendered := make([]string, 0, len(m.columns))
	for ci, column := range m.columns {
		var b strings.Builder
		lane := m.lanes[column.ID]
		b.WriteString(headerStyle.Render(fmt.Sprintf("%s (%d)", column.Name, len(lane))))
		b.WriteString("\n\n")

		for ri, t := range lane {
			b.WriteString(m.renderCard(t, laneWidth-4, ci == m.col && ri == m.row))
			b.WriteString("\n")
		}
		if len(lane) == 0 {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDisabledText)).Italic(true).Render("empty"))
		}

		border := lipgloss.Color(ColorBorder)
		if ci == m.col {
			border = lipgloss.Color(ColorAccentMain)
		}
		rendered = append(rendered, lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Width(laneWidth-2).
			Render(b.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m BoardModel) renderCard(t models.Ticket, width int, selected bool) string {
	title := truncate(t.Title, width-1)
	line := fmt.Sprintf("#%d %s\n%s", t.ID, title, priorityBadge(t.Priority))

	style := lipgloss.NewStyle().Width(width).Foreground(lipgloss.Color(ColorPrimaryText))
	if selected {
		style = style.Bold(true).Background(lipgloss.Color(ColorCardBackground))
	}
	return style.Render(line)
}

func (m BoardModel) renderDetail() string {
	t := m.selected()
	if t == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorPrimaryText)).
		Render(fmt.Sprintf("#%d %s", t.ID, t.Title)))
	b.WriteString("  ")
	b.WriteString(priorityBadge(t.Priority))
	b.WriteString("\n")

	meta := "created " + humanize.Time(t.CreatedAt)
	if t.CreatedByName != "" {
		meta += " by " + t.CreatedByName
	}
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText)).Render(meta))
	b.WriteString("\n")

	if t.Description != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Italic(true).Width(m.width - 4).Render(t.Description))
		b.WriteString("\n")
	}

	if m.detail != nil && m.detail.ID == t.ID && len(m.detail.Activity) > 0 {
		b.WriteString("\n")
		activity := m.detail.Activity
		if len(activity) > 3 {
			activity = activity[len(activity)-3:]
		}
		muted := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDisabledText))
		for _, ev := range activity {
			b.WriteString(muted.Render(fmt.Sprintf("• %s (%s)", ev.Details, humanize.Time(ev.CreatedAt))))
			b.WriteString("\n")
		}
		if n := len(m.detail.Comments); n > 0 {
			b.WriteString(muted.Render(fmt.Sprintf("💬 %d comment(s)", n)))
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Width(m.width - 2).
		Render(strings.TrimRight(b.String(), "\n"))
}

// truncate cuts s to width runes with an ellipsis
func truncate(s string, width int) string {
	r := []rune(s)
	if width < 4 || len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}
