package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rickgao/delivery-planner/internal/api"
	"github.com/rickgao/delivery-planner/internal/model"
	"github.com/rickgao/delivery-planner/internal/stream"
)

func newGetCommand() *cobra.Command {
	var server string
	cmd := &cobra.Command{
		Use:   "get PLAN_ID",
		Short: "fetch a stored plan from the service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid plan id %q: %w", args[0], err)
			}
			plan, err := api.NewClient(serverURL(server)).GetPlan(cmd.Context(), id)
			if err != nil {
				return err
			}
			printPlan(cmd.OutOrStdout(), plan)
			return nil
		},
	}
	cmd.Flags().StringVar(&server, "server", "", "planner service URL (default $PLANNER_URL or "+defaultServer+")")
	return cmd
}

func newWatchCommand() *cobra.Command {
	var server string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "print plans as the service creates them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			url := api.NewClient(serverURL(server)).StreamURL()
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "watching %s\n", url)

			return stream.Watch(cmd.Context(), url, func(p *model.DeliveryPlan) error {
				printSummary(w, p)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&server, "server", "", "planner service URL (default $PLANNER_URL or "+defaultServer+")")
	return cmd
}
