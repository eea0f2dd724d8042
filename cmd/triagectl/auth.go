package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/pesio-ai/be-tbc-triage/internal/client"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as an administrator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if email == "" {
				var err error
				if email, err = a.prompt.Input(ctx, "Email", "", nil); err != nil {
					return err
				}
			}
			if password == "" {
				password = os.Getenv("TRIAGE_PASSWORD")
			}
			if password == "" {
				field := huh.NewInput().Title("Contraseña").EchoMode(huh.EchoModePassword).Value(&password)
				if err := huh.NewForm(huh.NewGroup(field)).RunWithContext(ctx); err != nil {
					return err
				}
			}

			resp, err := client.NewAuthClient(a.rest).Login(ctx, email, password)
			if err != nil {
				return err
			}
			if err := a.store.Save(resp.AccessToken, resp.User); err != nil {
				return err
			}
			a.log.Debug().Str("session_file", a.store.Path()).Msg("Session saved")
			fmt.Fprintln(cmd.OutOrStdout(), "Sesión iniciada")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "administrator email")
	cmd.Flags().StringVar(&password, "password", "", "password (default $TRIAGE_PASSWORD, else prompted)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Sesión cerrada")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in administrator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.requireSession()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(sess.User) > 0 {
				fmt.Fprintln(out, string(sess.User))
			}
			if sess.ExpiresAt != nil {
				fmt.Fprintf(out, "expira: %s\n", sess.ExpiresAt.Local().Format(time.DateTime))
			}
			return nil
		},
	}
}
