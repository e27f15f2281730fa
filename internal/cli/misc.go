package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/stwalsh4118/luxeestate/internal/models"
	"github.com/stwalsh4118/luxeestate/internal/services"
	"github.com/stwalsh4118/luxeestate/internal/store"
)

// result is printed by commands that have no entity to show.
type result struct {
	Success bool   `json:"success" yaml:"success"`
	ID      string `json:"id,omitempty" yaml:"id,omitempty"`
	Moved   *int   `json:"moved,omitempty" yaml:"moved,omitempty"`
}

// modeResult is printed by the mode command.
type modeResult struct {
	Mode store.Mode `json:"mode" yaml:"mode"`
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}

func UsersCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Manage site accounts",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List users",
			Args:  cobra.NoArgs,
			RunE: a.run(func(ctx context.Context, svc *services.Services, _ []string) error {
				users, err := svc.Users.List(ctx)
				if err != nil {
					return err
				}
				out := make([]models.User, len(users))
				for i, u := range users {
					out[i] = u.Public()
				}
				return a.print(out)
			}),
		},
		&cobra.Command{
			Use:   "toggle-block <id>",
			Short: "Block an active user or unblock a blocked one",
			Args:  cobra.ExactArgs(1),
			RunE: a.run(func(ctx context.Context, svc *services.Services, args []string) error {
				u, err := svc.Users.ToggleBlock(ctx, args[0])
				if err != nil {
					return err
				}
				return a.print(u.Public())
			}),
		},
	)
	return cmd
}

func BlogCmd(a *App) *cobra.Command {
	var filter store.BlogFilter

	list := &cobra.Command{
		Use:   "list",
		Short: "List blog posts, newest first",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, svc *services.Services, _ []string) error {
			posts, err := svc.Blog.List(ctx, filter)
			if err != nil {
				return err
			}
			return a.print(posts)
		}),
	}
	list.Flags().StringVar(&filter.AuthorID, "author", "", "Only posts by this author")

	cmd := &cobra.Command{
		Use:   "blog",
		Short: "Read blog posts",
	}
	cmd.AddCommand(list)
	return cmd
}

func DashboardCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the dashboard counts",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, svc *services.Services, _ []string) error {
			stats, err := svc.Dashboard.Stats(ctx)
			if err != nil {
				return err
			}
			return a.print(stats)
		}),
	}
}

func ModeCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "mode",
		Short: "Show which store this invocation runs against",
		Args:  cobra.NoArgs,
		RunE: a.run(func(_ context.Context, svc *services.Services, _ []string) error {
			return a.print(modeResult{Mode: svc.Store.Mode()})
		}),
	}
}
