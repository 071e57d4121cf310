package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/folio-site/folio/internal/access"
	"github.com/folio-site/folio/internal/db"
	"github.com/folio-site/folio/internal/models"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage accounts that can sign in",
}

var usersAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Create a user",
	Long: `Create a user that can sign in to the API.

The password is read from --password, the FOLIO_PASSWORD environment
variable, or the first line of stdin, in that order.

Roles:
  admin     Board and content management
  fiancee   Board only`,
	Args: cobra.ExactArgs(1),
	RunE: withStore(func(ctx context.Context, store *db.Store, args []string) error {
		role := models.Role(strings.ToLower(usersRole))
		if !role.Valid() {
			return fmt.Errorf("unknown role %q (use admin or fiancee)", usersRole)
		}

		password, err := readPassword()
		if err != nil {
			return err
		}
		hash, err := access.HashPassword(password)
		if err != nil {
			return err
		}

		user := &models.User{Username: args[0], PasswordHash: hash, Role: role}
		if err := store.CreateUser(ctx, user); err != nil {
			return err
		}
		fmt.Printf("✅ Created %s user #%d: %s\n", user.Role, user.ID, user.Username)
		return nil
	}),
}

var usersLsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List users",
	Args:    cobra.NoArgs,
	RunE: withStore(func(ctx context.Context, store *db.Store, _ []string) error {
		users, err := store.ListUsers(ctx)
		if err != nil {
			return err
		}
		if len(users) == 0 {
			fmt.Println("No users yet. Use 'folio users add <username>' to create one.")
			return nil
		}
		fmt.Printf("%-4s %-20s %s\n", "ID", "USERNAME", "ROLE")
		fmt.Println(strings.Repeat("-", 40))
		for _, u := range users {
			fmt.Printf("%-4d %-20s %s\n", u.ID, u.Username, u.Role)
		}
		return nil
	}),
}

var (
	usersRole     string
	usersPassword string
)

func readPassword() (string, error) {
	if usersPassword != "" {
		return usersPassword, nil
	}
	if v := os.Getenv("FOLIO_PASSWORD"); v != "" {
		return v, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return "", errors.New("password must not be empty")
	}
	return line, nil
}

func init() {
	usersAddCmd.Flags().StringVarP(&usersRole, "role", "r", string(models.RoleAdmin), "Role: admin or fiancee")
	usersAddCmd.Flags().StringVar(&usersPassword, "password", "", "Password (prefer FOLIO_PASSWORD or stdin)")

	usersCmd.AddCommand(usersAddCmd)
	usersCmd.AddCommand(usersLsCmd)
}
