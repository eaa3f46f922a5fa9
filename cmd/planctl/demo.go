package main

import (
	"github.com/spf13/cobra"

	"github.com/rickgao/delivery-planner/internal/api"
	"github.com/rickgao/delivery-planner/internal/model"
)

func demoRequest() api.PlanRequest {
	at := func(lat float64) model.Address {
		return model.Address{Location: model.GeoLocation{Latitude: lat}}
	}
	return api.PlanRequest{
		AgentID: "demo",
		Orders: []api.OrderInput{
			{ID: "O1", CustomerID: "C1", RestaurantID: "R1"},
			{ID: "O2", CustomerID: "C2", RestaurantID: "R2"},
		},
		Customers: []model.Customer{
			{ID: "C1", Name: "Alice", Address: at(3), OrderIDs: []string{"O1"}},
			{ID: "C2", Name: "Bob", Address: at(0), OrderIDs: []string{"O2"}},
		},
		Restaurants: []model.Restaurant{
			{ID: "R1", Name: "Pizza Corner", Address: at(5), AvgPrepMinutes: 1},
			{ID: "R2", Name: "Burger House", Address: at(9), AvgPrepMinutes: 1},
		},
	}
}

func newDemoCommand() *cobra.Command {
	var speed float64
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "plan the built-in two-order scenario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := planLocal(cmd.Context(), demoRequest(), speed, commandLogger(cmd))
			if err != nil {
				return err
			}
			printPlan(cmd.OutOrStdout(), plan)
			return nil
		},
	}
	cmd.Flags().Float64Var(&speed, "speed", 20, "average agent speed in km/h")
	return cmd
}
