package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/rickgao/delivery-planner/internal/api"
	"github.com/rickgao/delivery-planner/internal/eta"
	"github.com/rickgao/delivery-planner/internal/geo"
	"github.com/rickgao/delivery-planner/internal/planner"
	"github.com/rickgao/delivery-planner/internal/travel"
)

// PlanOptions configures the plan command.
type PlanOptions struct {
	// File is the YAML request to plan.
	File string
	// Strategy overrides the request's strategy when set.
	Strategy string
	// SpeedKmh is the average speed used for local planning.
	SpeedKmh float64
	// Server plans through the API instead of locally.
	Server string
	// Logger receives planner logs when planning locally.
	Logger *slog.Logger
}

// AddFlags adds flags for the options to a flagset.
func (o *PlanOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.File, "file", "f", "", "path to a YAML plan request")
	fs.StringVar(&o.Strategy, "strategy", "", "optimizer strategy: heuristic or greedy")
	fs.Float64Var(&o.SpeedKmh, "speed", 20, "average agent speed in km/h (local planning only)")
	fs.StringVar(&o.Server, "server", "", "planner service URL; plans locally when empty")
}

func newPlanCommand() *cobra.Command {
	opts := &PlanOptions{}
	cmd := &cobra.Command{
		Use:   "plan -f REQUEST",
		Short: "plan a delivery route from a YAML request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Logger = commandLogger(cmd)
			return opts.Run(cmd.Context(), cmd.OutOrStdout())
		},
	}
	opts.AddFlags(cmd.Flags())
	return cmd
}

// Run plans the request file and prints the result.
func (o *PlanOptions) Run(ctx context.Context, w io.Writer) error {
	if o.File == "" {
		return errors.New("a request file must be given with -f")
	}
	req, err := readRequest(o.File)
	if err != nil {
		return err
	}
	if o.Strategy != "" {
		req.Strategy = o.Strategy
	}

	var plan *api.PlanResponse
	if o.Server != "" {
		plan, err = api.NewClient(o.Server).CreatePlan(ctx, req)
	} else {
		plan, err = planLocal(ctx, req, o.SpeedKmh, o.Logger)
	}
	if err != nil {
		return err
	}

	printPlan(w, plan)
	return nil
}

func readRequest(path string) (api.PlanRequest, error) {
	var req api.PlanRequest
	data, err := os.ReadFile(path)
	if err != nil {
		return req, fmt.Errorf("read request file: %w", err)
	}
	if err := yaml.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("parse request file: %w", err)
	}
	return req, nil
}

// planLocal plans in-process with Haversine distances at a constant
// speed. A nil logger discards planner logs.
func planLocal(ctx context.Context, body api.PlanRequest, speedKmh float64, logger *slog.Logger) (*api.PlanResponse, error) {
	speed, err := eta.NewAverageSpeed(speedKmh)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	p, err := planner.New(travel.NewService(geo.Haversine{}, speed), planner.Config{}, planner.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	req, err := body.ToRequest()
	if err != nil {
		return nil, err
	}
	plan, err := p.PlanRoute(ctx, req)
	if err != nil {
		return nil, err
	}
	resp := api.NewPlanResponse(plan)
	return &resp, nil
}
