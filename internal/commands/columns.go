package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/folio-site/folio/internal/kanban"
	"github.com/folio-site/folio/internal/models"
)

var columnsCmd = &cobra.Command{
	Use:     "columns",
	Aliases: []string{"cols"},
	Short:   "List board columns",
	Args:    cobra.NoArgs,
	RunE:    withBoard(listColumns),
}

var columnsLsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List board columns, left to right",
	Args:    cobra.NoArgs,
	RunE:    withBoard(listColumns),
}

var columnsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Append a column at the right edge of the board",
	Args:  cobra.MinimumNArgs(1),
	RunE: withBoard(func(ctx context.Context, svc *kanban.Service, _ models.Session, args []string) error {
		column, err := svc.CreateColumn(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Printf("✅ Created column #%d: %s (position %d)\n", column.ID, column.Name, column.Position)
		return nil
	}),
}

func listColumns(ctx context.Context, svc *kanban.Service, _ models.Session, _ []string) error {
	columns, err := svc.ListColumns(ctx)
	if err != nil {
		return err
	}
	if len(columns) == 0 {
		fmt.Println("No columns yet. Use 'folio columns add <name>' to create one.")
		return nil
	}

	fmt.Printf("%-4s %-8s %s\n", "ID", "POSITION", "NAME")
	fmt.Println(strings.Repeat("-", 40))
	for _, c := range columns {
		fmt.Printf("%-4d %-8d %s\n", c.ID, c.Position, c.Name)
	}
	return nil
}

func init() {
	columnsCmd.AddCommand(columnsLsCmd)
	columnsCmd.AddCommand(columnsAddCmd)
}
