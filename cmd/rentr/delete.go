package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <property-id>",
	Short: "Delete a listing",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	actor, err := rt.actor(cmd.Context())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), rt.cfg.RequestTimeout)
	defer cancel()
	if err := rt.client.DeleteProperty(ctx, actor, args[0]); err != nil {
		return fmt.Errorf("failed to delete listing %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted listing %s\n", args[0])
	return nil
}
