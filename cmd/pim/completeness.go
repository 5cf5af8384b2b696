package main

import (
	"fmt"

	"github.com/goliatone/go-pim"
	"github.com/goliatone/go-pim/catalog"
	"github.com/spf13/cobra"
)

var recomputeAll bool

var completenessCmd = &cobra.Command{
	Use:   "completeness",
	Short: "Product completeness jobs",
}

var completenessRecomputeCmd = &cobra.Command{
	Use:   "recompute [identifier...]",
	Short: "Recompute and store product completeness",
	Long: `Recompute the completeness of the given products for every channel and
locale their family requires, or of every product with --all.`,
	RunE: runCompletenessRecompute,
}

func init() {
	completenessRecomputeCmd.Flags().BoolVar(&recomputeAll, "all", false, "Recompute every product")
	completenessCmd.AddCommand(completenessRecomputeCmd)
}

func runCompletenessRecompute(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	module, err := buildModule(ctx)
	if err != nil {
		return err
	}
	defer module.Close()

	msg := pim.RecomputeCompletenessCommand{ProductIdentifiers: args, All: recomputeAll}
	if err := module.RecomputeCompleteness(ctx, msg); err != nil {
		return err
	}

	repos := module.Repositories()
	var products []*catalog.Product
	if recomputeAll {
		products, err = repos.Products.List(ctx)
	} else {
		products, err = repos.Products.ListByIdentifiers(ctx, args)
	}
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, product := range products {
		records, err := repos.Completeness.ListForProduct(ctx, product.ID)
		if err != nil {
			return err
		}
		for _, record := range records {
			fmt.Fprintf(out, "%s\t%s\t%s\t%d%%\t%d/%d\n",
				product.Identifier, record.ChannelCode, record.LocaleCode,
				record.Ratio, record.RequiredCount-record.MissingCount, record.RequiredCount)
		}
	}
	return nil
}
