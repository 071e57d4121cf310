package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/folio-site/folio/internal/kanban"
	"github.com/folio-site/folio/internal/models"
	"github.com/folio-site/folio/internal/parser"
	"github.com/folio-site/folio/internal/tui"
)

var ticketsCmd = &cobra.Command{
	Use:     "tickets",
	Aliases: []string{"t"},
	Short:   "Work with board tickets",
}

var ticketsLsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List tickets, newest first",
	Args:    cobra.NoArgs,
}

func runTicketsLs(ctx context.Context, svc *kanban.Service, _ models.Session, _ []string) error {
	columns, err := svc.ListColumns(ctx)
	if err != nil {
		return err
	}
	tickets, err := svc.ListTickets(ctx)
	if err != nil {
		return err
	}

	names := make(map[uint]string, len(columns))
	for _, c := range columns {
		names[c.ID] = c.Name
	}

	var filter *models.Column
	if name, _ := ticketsLsCmd.Flags().GetString("column"); name != "" {
		column, ok := parser.MatchColumn(columns, name)
		if !ok {
			return fmt.Errorf("no column named %q", name)
		}
		filter = column
	}

	fmt.Printf("%-5s %-14s %-8s %-40s %s\n", "ID", "COLUMN", "PRIORITY", "TITLE", "CREATED")
	fmt.Println(strings.Repeat("-", 86))

	shown := 0
	for _, t := range tickets {
		if filter != nil && (t.ColumnID == nil || *t.ColumnID != filter.ID) {
			continue
		}
		column := "Unknown"
		if t.ColumnID != nil {
			if n, ok := names[*t.ColumnID]; ok {
				column = n
			}
		}
		fmt.Printf("%-5d %-14s %-8s %-40s %s\n",
			t.ID,
			clip(column, 14),
			t.Priority,
			clip(t.Title, 40),
			humanize.Time(t.CreatedAt))
		shown++
	}

	if shown == 0 {
		fmt.Println("No tickets found. Use 'folio tickets add \"title\"' to create one.")
	}
	return nil
}

var ticketsAddCmd = &cobra.Command{
	Use:   "add <ticket description>",
	Short: "Add a ticket",
	Long: `Add a ticket to the board.

Quick-add syntax:
  +priority          low, medium, high (or 1/2/3)
  @Column            Column name
  @"Column Name"     Column name with spaces

Without a column the ticket lands in the leftmost column.

Example:
  folio tickets add "Fix login redirect +high @\"In Progress\""`,
	Args: cobra.MinimumNArgs(1),
}

func runTicketsAdd(ctx context.Context, svc *kanban.Service, sess models.Session, args []string) error {
	parsed := parser.ParseQuickAdd(strings.Join(args, " "))
	if len(parsed.Errors) > 0 {
		return fmt.Errorf("could not parse ticket: %s", strings.Join(parsed.Errors, ", "))
	}

	// Flags take precedence over parsed values
	flags := ticketsAddCmd.Flags()
	if p, _ := flags.GetString("priority"); p != "" {
		parsed.Priority = p
	}
	if c, _ := flags.GetString("column"); c != "" {
		parsed.Column = c
	}
	description, _ := flags.GetString("description")

	in := kanban.CreateTicketInput{
		Title:       parsed.Title,
		Description: description,
		Priority:    parsed.Priority,
	}
	if parsed.Column != "" {
		column, err := findColumn(ctx, svc, parsed.Column)
		if err != nil {
			return err
		}
		in.ColumnID = &column.ID
	}

	ticket, err := svc.CreateTicket(ctx, sess, in)
	if err != nil {
		return err
	}

	fmt.Printf("✅ Created ticket #%d: %s\n", ticket.ID, ticket.Title)
	fmt.Printf("  Priority: %s\n", ticket.Priority)
	if ticket.ColumnID != nil {
		fmt.Printf("  Column: #%d\n", *ticket.ColumnID)
	}
	return nil
}

var ticketsMoveCmd = &cobra.Command{
	Use:   "move <ticket-id> <column>",
	Short: "Move a ticket to another column",
	Long: `Move a ticket to another column, by column name or id.

Usage:
  folio tickets move 42 Done
  folio tickets move #42 "In Progress"`,
	Args: cobra.MinimumNArgs(2),
	RunE: withBoard(func(ctx context.Context, svc *kanban.Service, sess models.Session, args []string) error {
		id, err := parser.ParseTicketRef(args[0])
		if err != nil {
			return err
		}
		column, err := findColumn(ctx, svc, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}

		ticket, err := svc.MoveTicket(ctx, sess, id, column.ID)
		if err != nil {
			return err
		}
		fmt.Printf("➡️  Moved ticket #%d to %s: %s\n", ticket.ID, column.Name, ticket.Title)
		return nil
	}),
}

var ticketsEditCmd = &cobra.Command{
	Use:   "edit <ticket-id>",
	Short: "Edit a ticket's title, description or priority",
	Long: `Edit an existing ticket.

With --title, --description or --priority the change is applied directly.
Without flags an interactive form opens, pre-filled with the current values.

Usage:
  folio tickets edit 42
  folio tickets edit 42 --priority high`,
	Args: cobra.ExactArgs(1),
}

func runTicketsEdit(ctx context.Context, svc *kanban.Service, sess models.Session, args []string) error {
	id, err := parser.ParseTicketRef(args[0])
	if err != nil {
		return err
	}
	detail, err := svc.GetTicket(ctx, id)
	if err != nil {
		return err
	}

	flags := ticketsEditCmd.Flags()
	if !flags.Changed("title") && !flags.Changed("description") && !flags.Changed("priority") {
		return tui.RunEditTicket(ctx, svc, sess, detail.Ticket)
	}

	in := kanban.UpdateTicketInput{
		Title:       detail.Title,
		Description: detail.Description,
		Priority:    string(detail.Priority),
		AssignedTo:  detail.AssignedTo,
	}
	if flags.Changed("title") {
		in.Title, _ = flags.GetString("title")
	}
	if flags.Changed("description") {
		in.Description, _ = flags.GetString("description")
	}
	if flags.Changed("priority") {
		in.Priority, _ = flags.GetString("priority")
	}

	ticket, err := svc.UpdateTicket(ctx, sess, id, in)
	if err != nil {
		return err
	}
	fmt.Printf("✅ Updated ticket #%d: %s (%s)\n", ticket.ID, ticket.Title, ticket.Priority)
	return nil
}

var ticketsCommentCmd = &cobra.Command{
	Use:   "comment <ticket-id> <text>",
	Short: "Comment on a ticket",
	Args:  cobra.MinimumNArgs(2),
	RunE: withBoard(func(ctx context.Context, svc *kanban.Service, sess models.Session, args []string) error {
		id, err := parser.ParseTicketRef(args[0])
		if err != nil {
			return err
		}
		comment, err := svc.AddComment(ctx, sess, id, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Printf("💬 %s commented on ticket #%d\n", comment.Author, id)
		return nil
	}),
}

var ticketsRmCmd = &cobra.Command{
	Use:     "rm <ticket-id>",
	Aliases: []string{"delete"},
	Short:   "Delete a ticket with its comments and activity",
	Args:    cobra.ExactArgs(1),
	RunE: withBoard(func(ctx context.Context, svc *kanban.Service, sess models.Session, args []string) error {
		id, err := parser.ParseTicketRef(args[0])
		if err != nil {
			return err
		}
		if err := svc.DeleteTicket(ctx, sess, id); err != nil {
			return err
		}
		fmt.Printf("🗑  Deleted ticket #%d\n", id)
		return nil
	}),
}

var ticketsShowCmd = &cobra.Command{
	Use:   "show <ticket-id>",
	Short: "Show a ticket with its comments and activity",
	Args:  cobra.ExactArgs(1),
	RunE: withBoard(func(ctx context.Context, svc *kanban.Service, _ models.Session, args []string) error {
		id, err := parser.ParseTicketRef(args[0])
		if err != nil {
			return err
		}
		t, err := svc.GetTicket(ctx, id)
		if err != nil {
			return err
		}

		fmt.Printf("#%d %s\n", t.ID, t.Title)
		fmt.Printf("  Column:   %s\n", t.ColumnName)
		fmt.Printf("  Priority: %s\n", t.Priority)
		created := humanize.Time(t.CreatedAt)
		if t.CreatedByName != "" {
			created += " by " + t.CreatedByName
		}
		fmt.Printf("  Created:  %s\n", created)
		if t.Description != "" {
			fmt.Printf("\n%s\n", t.Description)
		}

		if len(t.Comments) > 0 {
			fmt.Println("\nComments:")
			for _, c := range t.Comments {
				fmt.Printf("  %s (%s): %s\n", c.Author, humanize.Time(c.CreatedAt), c.Content)
			}
		}
		if len(t.Activity) > 0 {
			fmt.Println("\nActivity:")
			for _, ev := range t.Activity {
				fmt.Printf("  [%s] %s (%s)\n", ev.Type, ev.Details, humanize.Time(ev.CreatedAt))
			}
		}
		return nil
	}),
}

// findColumn resolves a column by name or id
func findColumn(ctx context.Context, svc *kanban.Service, name string) (*models.Column, error) {
	columns, err := svc.ListColumns(ctx)
	if err != nil {
		return nil, err
	}
	column, ok := parser.MatchColumn(columns, name)
	if !ok {
		return nil, fmt.Errorf("no column named %q", name)
	}
	return column, nil
}

// clip truncates s to width runes
func clip(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

func init() {
	// RunE is assigned here because these handlers read their own command's flags.
	ticketsLsCmd.RunE = withBoard(runTicketsLs)
	ticketsAddCmd.RunE = withBoard(runTicketsAdd)
	ticketsEditCmd.RunE = withBoard(runTicketsEdit)

	ticketsLsCmd.Flags().String("column", "", "Only show tickets in this column")

	ticketsAddCmd.Flags().StringP("priority", "p", "", "Priority: low, medium, high, or 1-3")
	ticketsAddCmd.Flags().String("column", "", "Column name or id")
	ticketsAddCmd.Flags().StringP("description", "d", "", "Longer description")

	ticketsEditCmd.Flags().String("title", "", "New title")
	ticketsEditCmd.Flags().StringP("description", "d", "", "New description")
	ticketsEditCmd.Flags().StringP("priority", "p", "", "New priority")

	ticketsCmd.AddCommand(ticketsLsCmd)
	ticketsCmd.AddCommand(ticketsAddCmd)
	ticketsCmd.AddCommand(ticketsMoveCmd)
	ticketsCmd.AddCommand(ticketsEditCmd)
	ticketsCmd.AddCommand(ticketsCommentCmd)
	ticketsCmd.AddCommand(ticketsRmCmd)
	ticketsCmd.AddCommand(ticketsShowCmd)
}
