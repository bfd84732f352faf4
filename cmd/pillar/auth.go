package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and persist the auth token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return fmt.Errorf("both --email and --password are required")
			}

			store, _, err := openStore(cmd.Context())
			if err != nil {
				return err
			}

			user, err := store.LoginAndFetch(cmd.Context(), email, password)
			if err != nil {
				return err
			}

			success("logged in as %s <%s>", user.NickName, user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the persisted token",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openStore(cmd.Context())
			if err != nil {
				return err
			}

			if err := store.SignOut(cmd.Context()); err != nil {
				return err
			}
			success("signed out")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the profile behind the current token",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			if store.Token() == "" {
				return fmt.Errorf("not logged in; run 'pillar login' first")
			}

			user, err := store.FetchCurrentUser(cmd.Context())
			if err != nil {
				return err
			}

			info("id:       %s", user.ID)
			info("nickname: %s", user.NickName)
			info("email:    %s", user.Email)
			if user.Column != "" {
				info("column:   %s", user.Column)
			}
			return nil
		},
	}
}
