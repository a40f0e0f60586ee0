package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sid-047/reminderApp/modules/auth"
	"github.com/spf13/cobra"
)

func (c *cli) loginCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login [email]",
		Short: "Log in and make the user the active session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEnv(cmd, func(ctx context.Context, e *env) error {
				u, err := e.session.Login(ctx, args[0], password)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "Logged in as %s <%s>\n", u.Name, u.Email)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "demo", "password")
	return cmd
}

func (c *cli) registerCmd() *cobra.Command {
	var password, name string
	cmd := &cobra.Command{
		Use:   "register [email]",
		Short: "Create an account and log in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEnv(cmd, func(ctx context.Context, e *env) error {
				u, err := e.session.Register(ctx, args[0], password, name)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "Welcome, %s! You are logged in as <%s>\n", u.Name, u.Email)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "demo", "password")
	cmd.Flags().StringVarP(&name, "name", "n", "", "display name")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the active session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEnv(cmd, func(ctx context.Context, e *env) error {
				if err := e.session.Logout(ctx); err != nil {
					return err
				}
				fmt.Fprintln(c.out, "Logged out")
				return nil
			})
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the active session user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEnv(cmd, func(ctx context.Context, e *env) error {
				u, err := e.session.Current(ctx)
				if errors.Is(err, auth.ErrNotLoggedIn) {
					fmt.Fprintln(c.out, "Not logged in")
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "%s <%s> (id %s)\n", u.Name, u.Email, u.ID)
				return nil
			})
		},
	}
}
