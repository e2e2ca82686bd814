package main

import (
	"fmt"

	"github.com/mark3labs/rentr/internal/listing"
	"github.com/spf13/cobra"
)

var loginFlags struct {
	userID   string
	username string
	fullName string
	role     string
	token    string
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the identity attached to listings you create",
	Long: `Store the identity attached to every listing request.

rentr does not run the sign-in flow itself. Pass the identity your
account provider returned; it is kept in the local session store until
you run 'rentr logout'.`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored identity",
	RunE:  runLogout,
}

func init() {
	loginCmd.Flags().StringVar(&loginFlags.userID, "user-id", "", "User id")
	loginCmd.Flags().StringVarP(&loginFlags.username, "username", "u", "", "Username")
	loginCmd.Flags().StringVar(&loginFlags.fullName, "full-name", "", "Full name")
	loginCmd.Flags().StringVarP(&loginFlags.role, "role", "r", "owner", "Role (owner or employee)")
	loginCmd.Flags().StringVarP(&loginFlags.token, "token", "t", "", "Bearer token sent with every request")
	_ = loginCmd.MarkFlagRequired("user-id")
	_ = loginCmd.MarkFlagRequired("username")
}

func runLogin(cmd *cobra.Command, args []string) error {
	actor := listing.Actor{
		UserID:   loginFlags.userID,
		Username: loginFlags.username,
		FullName: loginFlags.fullName,
		Role:     loginFlags.role,
		Token:    loginFlags.token,
	}
	if !actor.Valid() {
		return fmt.Errorf("user id, username and role are required")
	}

	rt, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.actors.Save(cmd.Context(), actor); err != nil {
		return fmt.Errorf("failed to save identity: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", actor.Username, actor.Role)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.actors.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("failed to remove identity: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
	return nil
}
