package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stwalsh4118/luxeestate/internal/models"
	"github.com/stwalsh4118/luxeestate/internal/services"
	"github.com/stwalsh4118/luxeestate/internal/store"
)

func AgentsCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "agents",
		Aliases: []string{"agent"},
		Short:   "Manage agents",
	}

	cmd.AddCommand(
		agentsListCmd(a),
		agentsDeleteCmd(a),
		agentsReassignCmd(a),
		agentsStatusCmd(a),
	)
	return cmd
}

func agentsListCmd(a *App) *cobra.Command {
	var includeInactive bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List agents with their listing counts",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, svc *services.Services, _ []string) error {
			agents, err := svc.Agents.List(ctx, store.AgentFilter{IncludeInactive: includeInactive})
			if err != nil {
				return err
			}
			out := make([]models.Agent, len(agents))
			for i, ag := range agents {
				out[i] = ag.Public()
			}
			return a.print(out)
		}),
	}

	cmd.Flags().BoolVar(&includeInactive, "include-inactive", false, "Also list blocked agents")
	return cmd
}

func agentsDeleteCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an agent who has no listings",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, svc *services.Services, args []string) error {
			if err := svc.Agents.Delete(ctx, args[0]); err != nil {
				return err
			}
			return a.print(result{Success: true, ID: args[0]})
		}),
	}
}

func agentsReassignCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reassign <from-agent-id> <to-agent-id>",
		Short: "Move every listing of one agent to another",
		Args:  cobra.ExactArgs(2),
		RunE: a.run(func(ctx context.Context, svc *services.Services, args []string) error {
			moved, err := svc.Agents.Reassign(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			return a.print(result{Success: true, Moved: &moved})
		}),
	}
}

func agentsStatusCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <ACTIVE|ON_LEAVE|BLOCKED>",
		Short: "Set an agent's status",
		Args:  cobra.ExactArgs(2),
		RunE: a.run(func(ctx context.Context, svc *services.Services, args []string) error {
			status := models.AgentStatus(strings.ToUpper(args[1]))
			ag, err := svc.Agents.UpdateStatus(ctx, args[0], status)
			if err != nil {
				return err
			}
			return a.print(ag.Public())
		}),
	}
}
