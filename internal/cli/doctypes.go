package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhg-platform/taxon/internal/api"
	"github.com/dhg-platform/taxon/internal/doctypes"
	"github.com/dhg-platform/taxon/pkg/pagination"
)

// DocTypesCmd lists the document type vocabulary.
func DocTypesCmd() *cobra.Command {
	var categories []string

	cmd := &cobra.Command{
		Use:   "doctypes",
		Short: "List the document type vocabulary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDomain(func(ctx context.Context, domain *api.Domain) error {
				types, err := listTypes(ctx, domain, categories)
				if err != nil {
					return err
				}

				if len(types) == 0 {
					fmt.Println("no document types registered")
					return nil
				}

				for _, dt := range types {
					fmt.Printf("%-12s %-32s %-16s %s\n", dt.ID, dt.Name, dt.Category, dt.Description)
				}
				fmt.Printf("\ntotal: %d\n", len(types))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&categories, "category", nil, "restrict to the given categories")

	return cmd
}

func listTypes(ctx context.Context, domain *api.Domain, categories []string) ([]doctypes.DocumentType, error) {
	if len(categories) > 0 {
		return domain.DocTypes.ListByCategories(ctx, categories)
	}

	var all []doctypes.DocumentType
	page := pagination.PageRequest{Page: 1, PageSize: 100}
	for {
		result, err := domain.DocTypes.List(ctx, page, doctypes.Filters{})
		if err != nil {
			return nil, err
		}
		all = append(all, result.Data...)
		if page.Page >= result.TotalPages {
			return all, nil
		}
		page.Page++
	}
}
