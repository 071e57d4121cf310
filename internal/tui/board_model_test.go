package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folio-site/folio/internal/kanban"
	"github.com/folio-site/folio/internal/models"
)

type fakeBoard struct {
	columns []models.Column
	tickets []models.Ticket
	nextID  uint
}

func newFakeBoard() *fakeBoard {
	todo, done := uint(1), uint(2)
	return &fakeBoard{
		columns: []models.Column{{ID: 1, Name: "To Do"}, {ID: 2, Name: "Done", Position: 1}},
		tickets: []models.Ticket{
			{ID: 10, Title: "Write docs", Priority: models.PriorityLow, ColumnID: &todo},
			{ID: 11, Title: "Fix bug", Priority: models.PriorityHigh, ColumnID: &todo},
			{ID: 12, Title: "Ship", Priority: models.PriorityMedium, ColumnID: &done},
		},
		nextID: 100,
	}
}

func (f *fakeBoard) ListColumns(context.Context) ([]models.Column, error) { return f.columns, nil }

func (f *fakeBoard) ListTickets(context.Context) ([]models.Ticket, error) {
	return append([]models.Ticket(nil), f.tickets...), nil
}

func (f *fakeBoard) GetTicket(_ context.Context, id uint) (*kanban.TicketDetail, error) {
	for _, t := range f.tickets {
		if t.ID == id {
			return &kanban.TicketDetail{Ticket: t}, nil
		}
	}
	return nil, &kanban.NotFoundError{Kind: "ticket", ID: id}
}

func (f *fakeBoard) CreateTicket(_ context.Context, _ models.Session, in kanban.CreateTicketInput) (*models.Ticket, error) {
	p, _ := models.ParsePriority(in.Priority)
	t := models.Ticket{ID: f.nextID, Title: in.Title, Priority: p, ColumnID: in.ColumnID}
	f.nextID++
	f.tickets = append(f.tickets, t)
	return &t, nil
}

func (f *fakeBoard) MoveTicket(_ context.Context, _ models.Session, id uint, columnID uint) (*models.Ticket, error) {
	for i := range f.tickets {
		if f.tickets[i].ID == id {
			c := columnID
			f.tickets[i].ColumnID = &c
			return &f.tickets[i], nil
		}
	}
	return nil, &kanban.NotFoundError{Kind: "ticket", ID: id}
}

func (f *fakeBoard) UpdateTicket(_ context.Context, _ models.Session, id uint, in kanban.UpdateTicketInput) (*models.Ticket, error) {
	for i := range f.tickets {
		if f.tickets[i].ID == id {
			f.tickets[i].Title = in.Title
			f.tickets[i].Description = in.Description
			return &f.tickets[i], nil
		}
	}
	return nil, &kanban.NotFoundError{Kind: "ticket", ID: id}
}

func (f *fakeBoard) DeleteTicket(_ context.Context, _ models.Session, id uint) error {
	for i := range f.tickets {
		if f.tickets[i].ID == id {
			f.tickets = append(f.tickets[:i], f.tickets[i+1:]...)
			break
		}
	}
	return nil
}

// run feeds msg to the model and keeps executing returned commands until
// the model settles
func run(t *testing.T, m tea.Model, msg tea.Msg) tea.Model {
	t.Helper()
	for i := 0; msg != nil && i < 10; i++ {
		var cmd tea.Cmd
		m, cmd = m.Update(msg)
		if cmd == nil {
			return m
		}
		msg = cmd()
	}
	return m
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loadedBoard(t *testing.T, f *fakeBoard) BoardModel {
	t.Helper()
	m := NewBoardModel(context.Background(), f, models.Session{Username: "sam"})
	var model tea.Model = m
	model = run(t, model, tea.WindowSizeMsg{Width: 120, Height: 40})
	model = run(t, model, m.Init()())
	return model.(BoardModel)
}

func TestBoardModel_LoadsLanes(t *testing.T) {
	m := loadedBoard(t, newFakeBoard())

	require.Len(t, m.columns, 2)
	assert.Len(t, m.lanes[1], 2)
	assert.Len(t, m.lanes[2], 1)

	sel := m.selected()
	require.NotNil(t, sel)
	assert.Equal(t, uint(10), sel.ID)
	require.NotNil(t, m.detail)
	assert.Equal(t, uint(10), m.detail.ID)

	view := m.View()
	assert.Contains(t, view, "To Do (2)")
	assert.Contains(t, view, "Done (1)")
}

func TestBoardModel_Navigation(t *testing.T) {
	m := loadedBoard(t, newFakeBoard())

	m = run(t, m, keyPress("j")).(BoardModel)
	assert.Equal(t, uint(11), m.selected().ID)

	m = run(t, m, keyPress("j")).(BoardModel)
	assert.Equal(t, uint(11), m.selected().ID, "selection stops at the last card")

	m = run(t, m, keyPress("l")).(BoardModel)
	assert.Equal(t, 1, m.col)
	assert.Equal(t, uint(12), m.selected().ID)

	m = run(t, m, keyPress("l")).(BoardModel)
	assert.Equal(t, 1, m.col, "selection stops at the last column")
}

func TestBoardModel_MoveKeepsSelection(t *testing.T) {
	f := newFakeBoard()
	m := loadedBoard(t, f)

	m = run(t, m, keyPress("j")).(BoardModel)
	m = run(t, m, keyPress(">")).(BoardModel)

	assert.Equal(t, uint(2), *f.tickets[1].ColumnID)
	assert.Equal(t, 1, m.col)
	assert.Equal(t, uint(11), m.selected().ID)
	assert.Contains(t, m.status, "Moved #11 to Done")

	// already in the rightmost column
	m = run(t, m, keyPress(">")).(BoardModel)
	assert.Equal(t, uint(2), *f.tickets[1].ColumnID)
}

func TestBoardModel_QuickAdd(t *testing.T) {
	f := newFakeBoard()
	m := loadedBoard(t, f)

	m = run(t, m, keyPress("a")).(BoardModel)
	require.True(t, m.adding)
	m.input.SetValue("Plan release +high @Done")
	m = run(t, m, tea.KeyMsg{Type: tea.KeyEnter}).(BoardModel)

	assert.False(t, m.adding)
	created := f.tickets[len(f.tickets)-1]
	assert.Equal(t, "Plan release", created.Title)
	assert.Equal(t, models.PriorityHigh, created.Priority)
	assert.Equal(t, uint(2), *created.ColumnID)
	assert.Equal(t, created.ID, m.selected().ID)
}

func TestBoardModel_QuickAddRejectsUnknownColumn(t *testing.T) {
	f := newFakeBoard()
	m := loadedBoard(t, f)

	m = run(t, m, keyPress("a")).(BoardModel)
	m.input.SetValue("Plan release @Review")
	m = run(t, m, tea.KeyMsg{Type: tea.KeyEnter}).(BoardModel)

	assert.True(t, m.adding)
	assert.Contains(t, m.status, `No column named "Review"`)
	assert.Len(t, f.tickets, 3)
}

func TestBoardModel_Delete(t *testing.T) {
	f := newFakeBoard()
	m := loadedBoard(t, f)

	m = run(t, m, keyPress("x")).(BoardModel)
	assert.Len(t, f.tickets, 2)
	assert.Equal(t, uint(11), m.selected().ID)
}

func TestBoardModel_TicketsWithoutColumnGetUnknownLane(t *testing.T) {
	f := newFakeBoard()
	deleted := uint(99)
	f.tickets = append(f.tickets,
		models.Ticket{ID: 20, Title: "Orphaned", Priority: models.PriorityLow},
		models.Ticket{ID: 21, Title: "Column gone", Priority: models.PriorityLow, ColumnID: &deleted},
	)
	m := loadedBoard(t, f)

	require.Len(t, m.columns, 3)
	assert.Len(t, m.boardColumns(), 2)
	assert.Len(t, m.lanes[unknownLane.ID], 2)
	assert.Contains(t, m.View(), "Unknown (2)")
	assert.Contains(t, m.status, "2 ticket(s) have no column")

	// real tickets cannot be pushed into the unknown lane
	m = run(t, m, keyPress("l")).(BoardModel)
	m = run(t, m, keyPress(">")).(BoardModel)
	assert.Equal(t, uint(2), *f.tickets[2].ColumnID)

	m = run(t, m, keyPress("l")).(BoardModel)
	require.Equal(t, 2, m.col)
	assert.Equal(t, uint(20), m.selected().ID)

	m = run(t, m, keyPress("<")).(BoardModel)
	require.NotNil(t, f.tickets[3].ColumnID)
	assert.Equal(t, uint(2), *f.tickets[3].ColumnID)
	assert.Equal(t, 1, m.col)
	assert.Equal(t, uint(20), m.selected().ID)
	assert.Len(t, m.lanes[unknownLane.ID], 1)
}

func TestEditModel_Save(t *testing.T) {
	f := newFakeBoard()
	var m tea.Model = NewEditModel(context.Background(), f, models.Session{}, f.tickets[0])

	edit := m.(EditModel)
	edit.inputs[FieldTitle].SetValue("  ")
	m = run(t, edit, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Equal(t, "Ticket title is required", m.(EditModel).validationErr)

	edit = m.(EditModel)
	edit.inputs[FieldTitle].SetValue("Write better docs")
	m = run(t, edit, tea.KeyMsg{Type: tea.KeyCtrlS})

	edit = m.(EditModel)
	require.NotNil(t, edit.saved)
	assert.Equal(t, "Write better docs", f.tickets[0].Title)
}
