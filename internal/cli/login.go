package cli

import (
	"github.com/spf13/cobra"
)

func (a *app) loginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				pw, err := getPassword(a.out, a.in)
				if err != nil {
					return err
				}
				password = pw
			}

			c, err := a.client()
			if err != nil {
				return err
			}
			token, err := c.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			if err := saveToken(a.tokenFile, token); err != nil {
				return err
			}
			a.printf("Logged in as %s\n", username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "admin", "admin username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted if empty)")
	return cmd
}
