package main

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rickgao/delivery-planner/internal/api"
	"github.com/rickgao/delivery-planner/internal/model"
)

var printer = message.NewPrinter(language.English)

func printPlan(w io.Writer, p *api.PlanResponse) {
	if len(p.Route) == 0 {
		fmt.Fprintln(w, "No delivery route could be planned.")
		return
	}

	fmt.Fprintf(w, "Plan %s (%s)\n", p.ID, p.Strategy)
	fmt.Fprintf(w, "Route: %s\n", strings.Join(p.Route, " -> "))
	for i, s := range p.Stops {
		printer.Fprintf(w, "%2d. %-7s %-4s %-16s order %-6s %10.1f min\n",
			i+1, s.Kind, s.UserID, s.Name, s.OrderID, s.ArrivalMinutes)
	}
	printer.Fprintf(w, "Total: %.1f minutes\n", p.TotalMinutes)
}

func printSummary(w io.Writer, p *model.DeliveryPlan) {
	agent := p.AgentID
	if agent == "" {
		agent = "-"
	}
	printer.Fprintf(w, "%s  agent=%s  stops=%d  total=%.1f min  route=%s\n",
		p.CreatedAt.Format("15:04:05"), agent, len(p.Stops), p.TotalMinutes,
		strings.Join(p.UserIDs(), ","))
}
