package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrlokans/zeeguu/internal/session"
)

// LoginOptions holds the credentials given on the command line.
type LoginOptions struct {
	Username string
	Email    string
	Password string
}

func addLoginArgs(cmd *cobra.Command, o *LoginOptions) {
	cmd.Flags().StringVarP(&o.Email, "email", "e", "", "Account email.")
	cmd.Flags().StringVarP(&o.Password, "password", "p", "", "Account password. Read from stdin when omitted.")
	_ = cmd.MarkFlagRequired("email")
}

// readPassword takes the password from the flag or the first line of in.
func (o *LoginOptions) readPassword(in io.Reader) error {
	if o.Password != "" {
		return nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read password: %w", err)
	}
	o.Password = strings.TrimRight(line, "\r\n")
	if o.Password == "" {
		return errors.New("a password is required")
	}
	return nil
}

func addLogin(topLevel *cobra.Command, g *GlobalOptions) {
	o := &LoginOptions{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and fetch languages and words.",
		Example: `
zeeguu login --email anna@example.com
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.readPassword(cmd.InOrStdin()); err != nil {
				return err
			}
			r, err := openRunner(cmd, g)
			if err != nil {
				return err
			}
			defer r.close()

			if !r.app.Network.Available() {
				return errors.New("cannot log in while offline")
			}
			return r.run(func(m *session.Manager) {
				m.AcquireSession(o.Email, o.Password)
			})
		},
	}

	addLoginArgs(cmd, o)
	topLevel.AddCommand(cmd)
}

func addSignup(topLevel *cobra.Command, g *GlobalOptions) {
	o := &LoginOptions{}

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in to it.",
		Example: `
zeeguu signup --username anna --email anna@example.com
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.readPassword(cmd.InOrStdin()); err != nil {
				return err
			}
			r, err := openRunner(cmd, g)
			if err != nil {
				return err
			}
			defer r.close()

			return r.run(func(m *session.Manager) {
				m.CreateAccount(o.Username, o.Email, o.Password)
			})
		},
	}

	addLoginArgs(cmd, o)
	cmd.Flags().StringVarP(&o.Username, "username", "u", "", "Display name.")
	_ = cmd.MarkFlagRequired("username")
	topLevel.AddCommand(cmd)
}

func addLogout(topLevel *cobra.Command, g *GlobalOptions) {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored login, languages and words.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRunner(cmd, g)
			if err != nil {
				return err
			}
			defer r.close()

			return r.run(func(m *session.Manager) { m.Logout() })
		},
	}

	topLevel.AddCommand(cmd)
}
