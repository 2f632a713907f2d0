package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"rfp-assistant/internal/apiclient"
	"rfp-assistant/internal/format"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if email == "" {
				if email, err = a.prompt("Email"); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = a.prompt("Password"); err != nil {
					return err
				}
			}
			if !format.IsValidEmail(email) {
				return errors.New("please provide a valid email address")
			}
			if password == "" {
				return errors.New("password is required")
			}

			r := a.client.Login(cmd.Context(), email, password)
			if !r.OK {
				return errors.New(r.Reason)
			}
			resp := r.Value
			if err := a.session.Save(resp.Token); err != nil {
				return err
			}
			a.client.Cache().Purge()
			a.logger.Info("signed in", "email", email)
			a.printf("Signed in as %s\n", displayUser(resp.User, email))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when empty)")
	return cmd
}

func newSignupCmd(a *app) *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if name == "" {
				if name, err = a.prompt("Name"); err != nil {
					return err
				}
			}
			if email == "" {
				if email, err = a.prompt("Email"); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = a.prompt("Password"); err != nil {
					return err
				}
			}
			if !format.IsValidEmail(email) {
				return errors.New("please provide a valid email address")
			}
			if len(password) < 6 {
				return errors.New("password must be at least 6 characters")
			}

			r := a.client.Signup(cmd.Context(), name, email, password)
			if !r.OK {
				return errors.New(r.Reason)
			}
			resp := r.Value
			if resp.Token != "" {
				if err := a.session.Save(resp.Token); err != nil {
					return err
				}
				a.printf("Account created. Signed in as %s\n", displayUser(resp.User, email))
				return nil
			}
			msg := resp.Message
			if msg == "" {
				msg = "Account created. Run `rfpchat login` to sign in."
			}
			a.printf("%s\n", msg)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when empty)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.session.Clear(); err != nil {
				return err
			}
			a.client.Cache().Purge()
			a.printf("Signed out\n")
			return nil
		},
	}
}

func newWhoAmICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.session.Authenticated() {
				a.printf("Not signed in\n")
				return nil
			}
			id := a.client.WhoAmI(cmd.Context())
			if !id.Authenticated {
				a.printf("Not signed in (stored token was rejected)\n")
				return nil
			}
			a.printf("%s\n", displayUser(id.User, ""))
			return nil
		},
	}
}

func displayUser(u *apiclient.User, fallback string) string {
	if u == nil {
		return fallback
	}
	if u.Name != "" && u.Email != "" {
		return fmt.Sprintf("%s <%s>", u.Name, u.Email)
	}
	if u.Email != "" {
		return u.Email
	}
	if u.Name != "" {
		return u.Name
	}
	return fallback
}
