// Package cmd - estimate command
package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"arm-cost/adapters/identity"
	"arm-cost/adapters/pricing"
	"arm-cost/adapters/terraform/hcl"
	"arm-cost/clouds/azure"
	"arm-cost/core/cache"
	"arm-cost/core/cost"
	"arm-cost/core/engine"
	"arm-cost/core/output"
	"arm-cost/core/types"
	"arm-cost/core/whatif"
	"arm-cost/internal/config"
	"arm-cost/internal/errors"
	"arm-cost/internal/logging"
	"arm-cost/internal/telemetry"
)

// tokenEnv holds a pre-acquired management token, used instead of the
// default credential chain when set
const tokenEnv = "ARMCOST_ACCESS_TOKEN"

// estimateOptions holds the flags of one estimate command
type estimateOptions struct {
	mode         string
	threshold    string
	parameters   string
	location     string
	currency     string
	format       string
	concurrency  int
	disableCache bool
}

func (o *estimateOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.mode, "mode", string(types.ModeIncremental), "deployment mode (Incremental, Complete)")
	f.StringVar(&o.threshold, "threshold", "", "fail with exit code 2 when the estimated total is above this amount")
	f.StringVarP(&o.parameters, "parameters", "p", "", "deployment parameters file")
	f.StringVarP(&o.location, "location", "l", "", "deployment location; fallback pricing region")
	f.StringVar(&o.currency, "currency", "", "catalog currency code (default from config, USD when unset)")
	f.StringVarP(&o.format, "format", "f", "", "output format (text, json, yaml, markdown)")
	f.IntVar(&o.concurrency, "concurrency", 0, "parallel catalog lookups (default from config)")
	f.BoolVar(&o.disableCache, "disable-cache", false, "always call the what-if API")
}

var rgOptions, subOptions, mgOptions, tenantOptions estimateOptions

// estimateCmd represents the estimate command
var estimateCmd = &cobra.Command{
	Use:   "estimate <template> <subscription-id> <resource-group>",
	Short: "Estimate a resource group deployment",
	Long: `Preview a deployment and estimate the cost of its changes.

The template is an ARM template (.json), a Terraform file (.tf) or a
directory of Terraform files. Terraform configurations are read locally
and every azurerm resource is priced as created.

Exit codes: 0 success, 1 error or failed preview, 2 threshold exceeded.

Examples:
  arm-cost estimate template.json 00000000-0000-0000-0000-000000000000 rg-app
  arm-cost estimate -p params.json --threshold 250 template.json <sub> rg-app`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEstimate(cmd, &rgOptions, types.DeploymentRequest{
			Scope:         types.ScopeResourceGroup,
			ScopeID:       args[1],
			ResourceGroup: args[2],
		}, args[0])
	},
}

var estimateSubCmd = &cobra.Command{
	Use:   "sub <template> <subscription-id>",
	Short: "Estimate a subscription deployment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEstimate(cmd, &subOptions, types.DeploymentRequest{
			Scope:   types.ScopeSubscription,
			ScopeID: args[1],
		}, args[0])
	},
}

var estimateMGCmd = &cobra.Command{
	Use:   "mg <template> <management-group-id>",
	Short: "Estimate a management group deployment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEstimate(cmd, &mgOptions, types.DeploymentRequest{
			Scope:   types.ScopeManagementGroup,
			ScopeID: args[1],
		}, args[0])
	},
}

var estimateTenantCmd = &cobra.Command{
	Use:   "tenant <template>",
	Short: "Estimate a tenant deployment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEstimate(cmd, &tenantOptions, types.DeploymentRequest{
			Scope: types.ScopeTenant,
		}, args[0])
	},
}

func init() {
	rgOptions.bind(estimateCmd)
	subOptions.bind(estimateSubCmd)
	mgOptions.bind(estimateMGCmd)
	tenantOptions.bind(estimateTenantCmd)

	for _, c := range []*cobra.Command{estimateSubCmd, estimateMGCmd, estimateTenantCmd} {
		_ = c.MarkFlagRequired("location")
		estimateCmd.AddCommand(c)
	}
}

func runEstimate(cmd *cobra.Command, opts *estimateOptions, req types.DeploymentRequest, templatePath string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()
	if opts.disableCache {
		cfg.Cache.Enabled = false
	}
	if opts.concurrency > 0 {
		cfg.Pricing.Concurrency = opts.concurrency
	}
	if opts.currency != "" {
		cfg.Pricing.Currency = strings.ToUpper(opts.currency)
	}
	if opts.format != "" {
		cfg.Output.Format = opts.format
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.OrNop(logging.Logger).With(logging.RunID(uuid.NewString()))

	shutdown, err := telemetry.Init(ctx, "arm-cost", version, cfg.Telemetry.Endpoint)
	if err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
	} else {
		defer func() { _ = shutdown(context.Background()) }()
	}

	threshold := cost.NoThreshold()
	if cmd.Flags().Changed("threshold") {
		if threshold, err = cost.ParseThreshold(opts.threshold); err != nil {
			return err
		}
	}

	if req.Mode, err = types.ParseDeploymentMode(opts.mode); err != nil {
		return err
	}
	req.Location = opts.location

	source, err := previewSource(cfg, &req, templatePath, opts.parameters, logger)
	if err != nil {
		return err
	}

	currency := types.Currency(cfg.Pricing.Currency)
	registry, err := azure.NewRegistry(cfg.Pricing.Endpoint, currency)
	if err != nil {
		return err
	}
	if currency == "" {
		currency = types.CurrencyUSD
	}

	client := pricing.NewRetailClient(&http.Client{Timeout: cfg.Pricing.Timeout}, logger,
		pricing.WithUserAgent("arm-cost/"+version))
	aggregator := cost.NewAggregator(registry, client, cost.Options{
		Concurrency: cfg.Pricing.Concurrency,
		Attempts:    cfg.Pricing.Attempts,
		RetryDelay:  cfg.Pricing.RetryDelay,
		Location:    req.Location,
		Currency:    currency,
	}, logger)

	logger.Info("starting cost estimation",
		zap.String("template", templatePath),
		zap.String("scope", req.String()),
		zap.String("threshold", threshold.String()),
	)

	result, err := engine.New(source, aggregator, logger).Estimate(ctx, req, threshold)
	if err != nil {
		return err
	}

	if err := output.Render(cmd.OutOrStdout(), cfg.Output.Format, result); err != nil {
		return err
	}

	switch {
	case result.Failed():
		return &exitError{code: ExitError}
	case result.Outcome == cost.OutcomeThresholdExceeded:
		return &exitError{code: ExitThresholdExceeded}
	}
	return nil
}

// previewSource picks the what-if poller for ARM templates and the local
// parser for Terraform configurations
func previewSource(cfg *config.Config, req *types.DeploymentRequest, templatePath, paramsPath string, logger *zap.Logger) (engine.PreviewSource, error) {
	if hcl.IsTerraform(templatePath) {
		if paramsPath != "" {
			logger.Warn("parameters are ignored for terraform configurations", zap.String("parameters", paramsPath))
		}
		return hcl.NewSource(templatePath, logger), nil
	}

	if !strings.EqualFold(filepath.Ext(templatePath), ".json") {
		return nil, errors.Newf(errors.TypeNotSupported, "unsupported template %s (want .json, .tf or a terraform directory)", templatePath)
	}

	template, err := os.ReadFile(templatePath)
	if err != nil {
		return nil, errors.Wrapf(errors.TypeInput, err, "can't read template %s", templatePath)
	}
	req.Template = string(template)

	if paramsPath != "" {
		params, err := os.ReadFile(paramsPath)
		if err != nil {
			return nil, errors.Wrapf(errors.TypeInput, err, "can't read parameters %s", paramsPath)
		}
		req.Parameters = string(params)
	}

	tokens, err := tokenProvider(cfg)
	if err != nil {
		return nil, err
	}

	store := cache.New(cfg.Cache.Directory, cfg.Cache.Enabled, logger)
	return whatif.New(&http.Client{Timeout: cfg.WhatIf.RequestTimeout}, tokens, whatif.Options{
		Endpoint:          cfg.WhatIf.Endpoint,
		APIVersion:        cfg.WhatIf.APIVersion,
		DeploymentPrefix:  cfg.WhatIf.DeploymentPrefix,
		MaxAttempts:       cfg.WhatIf.MaxAttempts,
		DefaultRetryAfter: cfg.WhatIf.DefaultRetryAfter,
		MaxRetryAfter:     cfg.WhatIf.MaxRetryAfter,
	}, logger, whatif.WithCache(store)), nil
}

func tokenProvider(cfg *config.Config) (whatif.TokenProvider, error) {
	if token := os.Getenv(tokenEnv); token != "" {
		return identity.StaticProvider(token), nil
	}
	provider, err := identity.NewDefaultProvider(cfg.WhatIf.TokenScope, cfg.WhatIf.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to create credential: %w", err)
	}
	return provider, nil
}
