package web

import (
	"net/http"

	"github.com/folio-site/folio/internal/access"
	"github.com/folio-site/folio/internal/kanban"
	"github.com/folio-site/folio/internal/models"
)

type columnRequest struct {
	Name string `json:"name"`
}

type ticketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	ColumnID    *uint  `json:"column_id"`
	AssignedTo  *uint  `json:"assigned_to"`
}

type moveRequest struct {
	ColumnID *uint `json:"column_id"`
}

type commentRequest struct {
	Content string `json:"content"`
}

// session returns the caller resolved by requireBoard
func session(r *http.Request) models.Session {
	sess, _ := access.SessionFrom(r.Context())
	return sess
}

func (s *Server) listColumns(w http.ResponseWriter, r *http.Request) {
	columns, err := s.board.ListColumns(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, columns)
}

func (s *Server) createColumn(w http.ResponseWriter, r *http.Request) {
	var req columnRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	column, err := s.board.CreateColumn(r.Context(), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, column)
}

func (s *Server) listTickets(w http.ResponseWriter, r *http.Request) {
	tickets, err := s.board.ListTickets(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tickets)
}

func (s *Server) getTicket(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ticket, err := s.board.GetTicket(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (s *Server) createTicket(w http.ResponseWriter, r *http.Request) {
	var req ticketRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ticket, err := s.board.CreateTicket(r.Context(), session(r), kanban.CreateTicketInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		ColumnID:    req.ColumnID,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (s *Server) moveTicket(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req moveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.ColumnID == nil || *req.ColumnID == 0 {
		s.writeError(w, r, &kanban.ValidationError{Field: "column_id", Message: "column_id is required"})
		return
	}

	ticket, err := s.board.MoveTicket(r.Context(), session(r), id, *req.ColumnID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (s *Server) updateTicket(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req ticketRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	ticket, err := s.board.UpdateTicket(r.Context(), session(r), id, kanban.UpdateTicketInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (s *Server) deleteTicket(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.board.DeleteTicket(r.Context(), session(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) addComment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	comment, err := s.board.AddComment(r.Context(), session(r), id, req.Content)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}
