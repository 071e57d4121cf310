package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/folio-site/folio/internal/kanban"
	"github.com/folio-site/folio/internal/models"
	"github.com/folio-site/folio/internal/tui"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Open the interactive kanban board",
	Long: `Open the kanban board in the terminal.

Keys:
  ←/→ h/l     Switch column
  ↑/↓ k/j     Select ticket
  < > H L     Move the selected ticket left or right
  a           Quick-add a ticket (Title +priority @column)
  x           Delete the selected ticket
  r           Reload
  q           Quit`,
	Args: cobra.NoArgs,
	RunE: withBoard(func(ctx context.Context, svc *kanban.Service, sess models.Session, _ []string) error {
		return tui.RunBoard(ctx, svc, sess)
	}),
}
