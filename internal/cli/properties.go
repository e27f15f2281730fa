package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/stwalsh4118/luxeestate/internal/models"
	"github.com/stwalsh4118/luxeestate/internal/services"
	"github.com/stwalsh4118/luxeestate/internal/store"
)

func PropertiesCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "properties",
		Aliases: []string{"property", "props"},
		Short:   "Manage property listings",
	}

	cmd.AddCommand(
		propertiesListCmd(a),
		propertiesGetCmd(a),
		propertiesCreateCmd(a),
		propertiesDeleteCmd(a),
	)
	return cmd
}

func propertiesListCmd(a *App) *cobra.Command {
	var (
		minPrice, maxPrice float64
		search, status     string
		agentID, sortBy    string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List properties",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = a.run(func(ctx context.Context, svc *services.Services, _ []string) error {
		filter := store.PropertyFilter{
			Search:  search,
			Status:  models.PropertyStatus(status),
			AgentID: agentID,
			SortBy:  store.SortOrder(sortBy),
		}
		if cmd.Flags().Changed("min-price") {
			filter.MinPrice = &minPrice
		}
		if cmd.Flags().Changed("max-price") {
			filter.MaxPrice = &maxPrice
		}

		props, err := svc.Properties.List(ctx, filter)
		if err != nil {
			return err
		}
		return a.print(props)
	})

	cmd.Flags().Float64Var(&minPrice, "min-price", 0, "Only listings priced at or above this")
	cmd.Flags().Float64Var(&maxPrice, "max-price", 0, "Only listings priced at or below this")
	cmd.Flags().StringVar(&search, "search", "", "Match title, city or type")
	cmd.Flags().StringVar(&status, "status", "", "FOR_SALE, SOLD, PENDING or FOR_RENT")
	cmd.Flags().StringVar(&agentID, "agent", "", "Only listings of this agent")
	cmd.Flags().StringVar(&sortBy, "sort", "", "newest, price_asc or price_desc")
	return cmd
}

func propertiesGetCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <slug-or-id>",
		Short: "Show one property",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, svc *services.Services, args []string) error {
			p, err := svc.Properties.GetBySlug(ctx, args[0])
			if isNotFound(err) {
				p, err = svc.Properties.Get(ctx, args[0])
			}
			if err != nil {
				return err
			}
			return a.print(p)
		}),
	}
}

func propertiesCreateCmd(a *App) *cobra.Command {
	var (
		p         models.Property
		status    string
		propType  string
		amenities []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a property",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, svc *services.Services, _ []string) error {
			p.Status = models.PropertyStatus(status)
			p.Type = models.PropertyType(propType)
			p.Amenities = amenities

			created, err := svc.Properties.Create(ctx, p)
			if err != nil {
				return err
			}
			return a.print(created)
		}),
	}

	f := cmd.Flags()
	f.StringVar(&p.Title, "title", "", "Listing title")
	f.Float64Var(&p.Price, "price", 0, "Asking price")
	f.StringVar(&p.AgentID, "agent", "", "Id of the listing agent")
	f.StringVar(&propType, "type", "", "House, Apartment, Condo, Villa, Land or Penthouse")
	f.StringVar(&status, "status", "", "Market status (default FOR_SALE)")
	f.StringVar(&p.Description, "description", "", "Free-text description")
	f.StringVar(&p.Location.Address, "address", "", "Street address")
	f.StringVar(&p.Location.City, "city", "", "City")
	f.StringVar(&p.Location.State, "state", "", "State or region")
	f.StringVar(&p.Location.Country, "country", "", "Country")
	f.IntVar(&p.Features.Bedrooms, "bedrooms", 0, "Number of bedrooms")
	f.Float64Var(&p.Features.Bathrooms, "bathrooms", 0, "Number of bathrooms, half steps allowed")
	f.IntVar(&p.Features.Sqft, "sqft", 0, "Floor area in square feet")
	f.StringSliceVar(&amenities, "amenity", nil, "Amenity, repeatable")
	return cmd
}

func propertiesDeleteCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a property",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, svc *services.Services, args []string) error {
			if err := svc.Properties.Delete(ctx, args[0]); err != nil {
				return err
			}
			return a.print(result{Success: true, ID: args[0]})
		}),
	}
}
