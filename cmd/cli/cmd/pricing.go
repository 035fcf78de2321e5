// Package cmd - Catalog inspection commands
package cmd

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"arm-cost/adapters/pricing"
	"arm-cost/adapters/terraform/hcl"
	"arm-cost/clouds/azure"
	"arm-cost/core/types"
	"arm-cost/internal/config"
	"arm-cost/internal/errors"
	"arm-cost/internal/logging"
)

var pricingCmd = &cobra.Command{
	Use:   "pricing",
	Short: "Inspect the pricing strategies and the retail catalog",
}

var pricingTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the resource types that can be priced",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "ARM resource types:")
		for _, t := range azure.SupportedResourceTypes() {
			fmt.Fprintf(out, "  %s\n", t)
		}

		fmt.Fprintln(out, "\nTerraform resource types:")
		tbl := table.New().Border(lipgloss.HiddenBorder()).Headers("TERRAFORM", "ARM")
		for _, t := range hcl.SupportedTypes() {
			armType, _ := hcl.ARMType(t)
			tbl.Row(t, armType)
		}
		_, err := fmt.Fprintln(out, tbl.Render())
		return err
	},
}

var pricingLocation string

var pricingQueryCmd = &cobra.Command{
	Use:   "query <resource-type> <state-file|->",
	Short: "Show the catalog query and prices for a resource state",
	Long: `Build the catalog query for a resource state (a JSON object shaped like
the "after" member of a what-if change) and print the matching prices.

Example:
  echo '{"location":"eastus","sku":{"name":"Standard_LRS"}}' | \
    arm-cost pricing query Microsoft.Storage/storageAccounts -`,
	Args: cobra.ExactArgs(2),
	RunE: runPricingQuery,
}

func init() {
	pricingQueryCmd.Flags().StringVarP(&pricingLocation, "location", "l", "", "region used when the state has no location")

	pricingCmd.AddCommand(pricingTypesCmd)
	pricingCmd.AddCommand(pricingQueryCmd)
}

func runPricingQuery(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	var (
		raw []byte
		err error
	)
	if args[1] == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(args[1])
	}
	if err != nil {
		return errors.Wrap(errors.TypeInput, "can't read resource state", err)
	}

	var state types.ResourceState
	if err := json.Unmarshal(raw, &state); err != nil {
		return errors.Parsing("resource state is not a JSON object", err)
	}

	registry, err := azure.NewRegistry(cfg.Pricing.Endpoint, types.Currency(cfg.Pricing.Currency))
	if err != nil {
		return err
	}
	strategy, ok := registry.Lookup(args[0])
	if !ok {
		return errors.Newf(errors.TypeNotSupported, "no pricing strategy for %s", args[0])
	}

	query, err := registry.Query(strategy, nil, state, pricingLocation)
	if err != nil {
		return err
	}

	client := pricing.NewRetailClient(&http.Client{Timeout: cfg.Pricing.Timeout}, logging.Logger,
		pricing.WithUserAgent("arm-cost/"+version))
	records, err := client.Fetch(cmd.Context(), query.URL)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Query: %s\n\n", query.URL)

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("METER", "SKU", "PRODUCT", "UNIT", "TIER", "PRICE")
	for _, r := range records {
		tbl.Row(r.MeterDescription, r.SkuName, r.ProductName, r.UnitOfMeasure,
			r.TierMinimumUnits.String(), r.UnitPrice.String()+" "+r.Currency.String())
	}
	fmt.Fprintln(out, tbl.Render())

	total, ok := strategy.Select(records)
	if !ok {
		fmt.Fprintln(out, "\nNo usable price.")
		return nil
	}
	fmt.Fprintf(out, "\nSelected: %s\n", total.String())
	return nil
}
