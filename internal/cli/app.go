// Package cli implements the luxectl admin commands on top of the domain
// services. The store behind them is chosen once, the first time a
// command needs it.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/stwalsh4118/luxeestate/internal/logger"
	"github.com/stwalsh4118/luxeestate/internal/models"
	"github.com/stwalsh4118/luxeestate/internal/services"
	"github.com/stwalsh4118/luxeestate/internal/store"
)

// Output formats.
const (
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Opener opens the store the commands run against and returns a function
// that releases it.
type Opener func(ctx context.Context) (store.Store, func() error, error)

// App holds the state shared by every command of one invocation.
type App struct {
	open Opener
	log  *logger.Logger
	out  io.Writer

	output  string
	asAgent string

	svc   *services.Services
	close func() error
}

// New creates an App that writes command results to out.
func New(open Opener, log *logger.Logger, out io.Writer) *App {
	return &App{open: open, log: log, out: out, output: OutputJSON}
}

// RootCmd builds the luxectl command tree.
func (a *App) RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "luxectl",
		Short:         "LuxeEstate administration tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch a.output {
			case OutputJSON, OutputYAML:
				return nil
			}
			return fmt.Errorf("unsupported output format %q (want %s or %s)", a.output, OutputJSON, OutputYAML)
		},
	}

	root.PersistentFlags().StringVarP(&a.output, "output", "o", OutputJSON, "Output format: json or yaml")
	root.PersistentFlags().StringVar(&a.asAgent, "as-agent", "", "Act as the agent with this id instead of as an administrator")

	root.AddCommand(
		PropertiesCmd(a),
		AgentsCmd(a),
		LeadsCmd(a),
		UsersCmd(a),
		BlogCmd(a),
		DashboardCmd(a),
		ModeCmd(a),
	)

	return root
}

// Close releases the store if one was opened.
func (a *App) Close() error {
	if a.close == nil {
		return nil
	}
	err := a.close()
	a.close = nil
	return err
}

// session opens the store on first use.
func (a *App) session(ctx context.Context) (*services.Services, error) {
	if a.svc != nil {
		return a.svc, nil
	}

	st, closeFn, err := a.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	a.svc = services.New(st, a.log)
	a.close = closeFn
	return a.svc, nil
}

// ctx attaches the acting identity selected by --as-agent.
func (a *App) ctx(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if a.asAgent != "" {
		ctx = models.WithActor(ctx, models.Actor{ID: a.asAgent, Role: models.RoleAgent})
	}
	return ctx
}

// print writes v in the selected output format.
func (a *App) print(v interface{}) error {
	if a.output == OutputYAML {
		enc := yaml.NewEncoder(a.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		return enc.Close()
	}

	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

// run adapts fn into a cobra RunE that opens the store first.
func (a *App) run(fn func(ctx context.Context, svc *services.Services, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := a.ctx(cmd)
		svc, err := a.session(ctx)
		if err != nil {
			return err
		}
		return fn(ctx, svc, args)
	}
}
