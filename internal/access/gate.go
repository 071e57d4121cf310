// Package access decides who may reach the board and the content admin, and
// resolves incoming requests to a models.Session.
package access

import "github.com/folio-site/folio/internal/models"

// Gate answers authorization questions for a session
type Gate interface {
	CanAccessBoard(sess models.Session) bool
	CanManageContent(sess models.Session) bool
}

// RoleGate authorizes purely by role
type RoleGate struct{}

// CanAccessBoard allows admins and the fiancee account
func (RoleGate) CanAccessBoard(sess models.Session) bool {
	if sess.UserID == 0 {
		return false
	}
	return sess.Role == models.RoleAdmin || sess.Role == models.RoleFiancee
}

// CanManageContent allows admins only
func (RoleGate) CanManageContent(sess models.Session) bool {
	return sess.UserID != 0 && sess.Role == models.RoleAdmin
}
