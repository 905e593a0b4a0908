package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	userAdmin    bool
	userCustomer string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage principals",
}

var userAddCmd = &cobra.Command{
	Use:   "add LOGIN",
	Short: "Create a principal",
	Long: `add creates a principal. The password is read from the terminal, or
from the first line of stdin when it is not a terminal. --customer binds the
principal to one customer.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword(cmd.ErrOrStderr(), cmd.InOrStdin())
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		app, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer closeApp(cmd.ErrOrStderr(), app)

		id, err := app.Users.Register(ctx, args[0], password, userAdmin)
		if err != nil {
			return err
		}
		if userCustomer != "" {
			if err := app.Users.BindCustomer(ctx, id, userCustomer); err != nil {
				return fmt.Errorf("user %d created but not bound: %w", id, err)
			}
		}

		role := "viewer"
		if userAdmin {
			role = "admin"
		}
		ok(cmd.OutOrStdout(), "Created %s %q (id %d)\n", role, args[0], id)
		if userCustomer != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "  bound to customer %s\n", userCustomer)
		}
		return nil
	},
}

func readPassword(prompt io.Writer, in io.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(prompt, "Password: ")
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	fmt.Fprint(prompt, "Repeat password: ")
	confirm, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if string(password) != string(confirm) {
		return "", errors.New("passwords do not match")
	}
	return string(password), nil
}

func init() {
	userAddCmd.Flags().BoolVar(&userAdmin, "admin", false, "grant admin rights")
	userAddCmd.Flags().StringVar(&userCustomer, "customer", "", "bind the principal to a customer id")

	userCmd.AddCommand(userAddCmd)
}
