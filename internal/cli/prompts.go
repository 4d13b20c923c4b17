package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhg-platform/taxon/internal/api"
	"github.com/dhg-platform/taxon/internal/prompts"
	"github.com/dhg-platform/taxon/pkg/pagination"
)

// PromptsCmd lists registered prompt templates.
func PromptsCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "List registered prompt templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDomain(func(ctx context.Context, domain *api.Domain) error {
				if name != "" {
					prompt, err := domain.Prompts.FindByName(ctx, name)
					if err != nil {
						return err
					}
					printPrompt(prompt)
					fmt.Printf("\n%s\n", prompt.Template)
					return nil
				}

				page := pagination.PageRequest{Page: 1, PageSize: 100}
				total := 0
				for {
					result, err := domain.Prompts.List(ctx, page, prompts.Filters{})
					if err != nil {
						return err
					}
					for _, p := range result.Data {
						printPrompt(&p)
					}
					total = result.Total
					if page.Page >= result.TotalPages {
						break
					}
					page.Page++
				}

				fmt.Printf("\ntotal: %d\n", total)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "show a single prompt, including its template")

	return cmd
}

func printPrompt(p *prompts.Prompt) {
	scope := "all categories"
	if len(p.Categories) > 0 {
		scope = strings.Join(p.Categories, ", ")
	}
	fmt.Printf("%s  %-32s %s\n", p.ID, p.Name, scope)
}
