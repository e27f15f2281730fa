package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stwalsh4118/luxeestate/internal/models"
	"github.com/stwalsh4118/luxeestate/internal/services"
	"github.com/stwalsh4118/luxeestate/internal/store"
)

func LeadsCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "leads",
		Aliases: []string{"lead"},
		Short:   "Manage customer inquiries",
	}

	cmd.AddCommand(
		leadsListCmd(a),
		leadsAssignCmd(a),
		leadsStatusCmd(a),
	)
	return cmd
}

func leadsListCmd(a *App) *cobra.Command {
	var filter store.LeadFilter
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List leads visible to the acting identity",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, svc *services.Services, _ []string) error {
			filter.Status = models.LeadStatus(strings.ToUpper(status))
			leads, err := svc.Leads.List(ctx, filter)
			if err != nil {
				return err
			}
			return a.print(leads)
		}),
	}

	cmd.Flags().StringVar(&status, "status", "", "NEW, CONTACTED or CLOSED")
	cmd.Flags().StringVar(&filter.PropertyID, "property", "", "Only leads about this property")
	cmd.Flags().StringVar(&filter.AssignedAgentID, "assigned", "", "Only leads assigned to this agent")
	return cmd
}

func leadsAssignCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "assign <lead-id> <agent-id>",
		Short: "Assign a lead to an agent",
		Args:  cobra.ExactArgs(2),
		RunE: a.run(func(ctx context.Context, svc *services.Services, args []string) error {
			l, err := svc.Leads.Assign(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			return a.print(l)
		}),
	}
}

func leadsStatusCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <lead-id> <NEW|CONTACTED|CLOSED>",
		Short: "Set a lead's status",
		Args:  cobra.ExactArgs(2),
		RunE: a.run(func(ctx context.Context, svc *services.Services, args []string) error {
			l, err := svc.Leads.UpdateStatus(ctx, args[0], models.LeadStatus(strings.ToUpper(args[1])))
			if err != nil {
				return err
			}
			return a.print(l)
		}),
	}
}
