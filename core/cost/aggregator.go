// Package cost prices the changes of a preview and totals them.
// Per-change problems become diagnostics; only cancellation aborts a run.
package cost

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"arm-cost/clouds"
	"arm-cost/core/change"
	"arm-cost/core/types"
	"arm-cost/internal/errors"
	"arm-cost/internal/logging"
	"arm-cost/internal/telemetry"
)

// Fetcher executes one catalog query
type Fetcher interface {
	Fetch(ctx context.Context, catalogURL string) ([]types.PriceRecord, error)
}

// Options contains aggregation settings
type Options struct {
	// Concurrency bounds parallel catalog lookups
	Concurrency int

	// Attempts is how many times a failed lookup is tried
	Attempts int

	// RetryDelay is the pause between lookup attempts
	RetryDelay time.Duration

	// Location is used for resources whose state has no location
	Location string

	// Currency is reported when no record carries one
	Currency types.Currency
}

// DefaultOptions returns the default aggregation settings
func DefaultOptions() Options {
	return Options{
		Concurrency: 4,
		Attempts:    2,
		RetryDelay:  time.Second,
		Currency:    types.CurrencyUSD,
	}
}

// Item is one priced change
type Item struct {
	Index        int                `json:"index" yaml:"index"`
	ResourceID   string             `json:"resourceId" yaml:"resourceId"`
	Name         string             `json:"name" yaml:"name"`
	ResourceType string             `json:"resourceType" yaml:"resourceType"`
	ChangeType   types.ChangeType   `json:"changeType" yaml:"changeType"`
	ResolvedFrom types.StateSource  `json:"resolvedFrom" yaml:"resolvedFrom"`
	Cost         decimal.Decimal    `json:"cost" yaml:"cost"`
	Currency     types.Currency     `json:"currency" yaml:"currency"`
	Meters       []string           `json:"meters,omitempty" yaml:"meters,omitempty"`
	Query        types.PricingQuery `json:"-" yaml:"-"`
}

// Report is the result of pricing a change list
type Report struct {
	Total       decimal.Decimal    `json:"total" yaml:"total"`
	Currency    types.Currency     `json:"currency" yaml:"currency"`
	Items       []Item             `json:"items" yaml:"items"`
	Diagnostics []types.Diagnostic `json:"diagnostics" yaml:"diagnostics"`
}

// Priced returns the number of changes that contributed to the total
func (r *Report) Priced() int {
	return len(r.Items)
}

// Aggregator prices changes through the dispatch table
type Aggregator struct {
	registry *clouds.Registry
	fetcher  Fetcher
	opts     Options
	logger   *zap.Logger
}

// NewAggregator creates an aggregator
func NewAggregator(registry *clouds.Registry, fetcher Fetcher, opts Options, logger *zap.Logger) *Aggregator {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.Attempts <= 0 {
		opts.Attempts = 1
	}
	return &Aggregator{
		registry: registry,
		fetcher:  fetcher,
		opts:     opts,
		logger:   logging.OrNop(logger),
	}
}

type result struct {
	item *Item
	diag *types.Diagnostic
}

// Aggregate prices every change. Lookups run concurrently; results are
// merged after the join in input order, so the total never races.
func (a *Aggregator) Aggregate(ctx context.Context, changes []change.Change) (*Report, error) {
	results := make([]result, len(changes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Concurrency)

	for i := range changes {
		i := i
		g.Go(func() error {
			item, diag, err := a.price(gctx, changes[i])
			if err != nil {
				return err
			}
			results[i] = result{item: item, diag: diag}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{
		Total:       decimal.Zero,
		Currency:    a.opts.Currency,
		Items:       make([]Item, 0, len(changes)),
		Diagnostics: []types.Diagnostic{},
	}
	for _, r := range results {
		if r.diag != nil {
			report.Diagnostics = append(report.Diagnostics, *r.diag)
			continue
		}
		if r.item == nil {
			continue
		}
		report.Total = report.Total.Add(r.item.Cost)
		report.Items = append(report.Items, *r.item)
		if r.item.Currency != "" {
			report.Currency = r.item.Currency
		}
	}

	a.logger.Info("aggregation completed",
		zap.String("total", report.Total.String()),
		zap.Int("priced", len(report.Items)),
		zap.Int("skipped", len(report.Diagnostics)),
	)
	return report, nil
}

// price resolves one change. Only a cancelled context is returned as an error.
func (a *Aggregator) price(ctx context.Context, c change.Change) (*Item, *types.Diagnostic, error) {
	resourceType := c.Identity.ResourceType()
	ctx, span := telemetry.Tracer("arm-cost/cost").Start(ctx, "cost.price")
	defer span.End()
	span.SetAttributes(
		attribute.String("resource.type", resourceType),
		attribute.String("resource.change", string(c.Type())),
	)

	logger := a.logger.With(
		zap.String("resource", c.Identity.Name),
		zap.String("type", resourceType),
		zap.String("change", string(c.Type())),
	)

	skip := func(reason types.DiagnosticReason, msg string) (*Item, *types.Diagnostic, error) {
		logger.Warn("change skipped", zap.String("reason", string(reason)), zap.String("detail", msg))
		span.SetAttributes(attribute.String("cost.skipped", string(reason)))
		return nil, &types.Diagnostic{
			Index:        c.Index,
			ResourceID:   c.Raw.ResourceID,
			ResourceType: resourceType,
			Reason:       reason,
			Message:      msg,
		}, nil
	}

	if c.Type() == types.ChangeIgnore {
		return skip(types.ReasonIgnored, "resource is ignored by the deployment")
	}

	strategy, ok := a.registry.Lookup(resourceType)
	if !ok {
		return skip(types.ReasonUnsupportedType, fmt.Sprintf("no pricing strategy for %s", resourceType))
	}

	query, err := a.registry.Query(strategy, c.Before(), c.After(), a.opts.Location)
	if err != nil {
		switch {
		case stderrors.Is(err, clouds.ErrNoState):
			return skip(types.ReasonMissingState, err.Error())
		case errors.IsType(err, errors.TypeNotSupported):
			return skip(types.ReasonUnsupportedType, err.Error())
		default:
			return skip(types.ReasonMissingField, err.Error())
		}
	}

	records, err := a.fetch(ctx, query.URL, logger)
	if err != nil {
		if ctx.Err() != nil {
			span.SetStatus(codes.Error, "cancelled")
			return nil, nil, errors.Wrap(errors.TypeTimeout, "pricing interrupted", ctx.Err())
		}
		span.RecordError(err)
		return skip(types.ReasonPricingFailed, err.Error())
	}
	if len(records) == 0 {
		return skip(types.ReasonNoPrice, "catalog returned no matching price")
	}

	total, ok := strategy.Select(records)
	if !ok {
		return skip(types.ReasonNoPrice, "no usable price among catalog results")
	}

	item := &Item{
		Index:        c.Index,
		ResourceID:   c.Raw.ResourceID,
		Name:         c.Identity.Name,
		ResourceType: resourceType,
		ChangeType:   c.Type(),
		ResolvedFrom: query.ResolvedFrom,
		Cost:         total,
		Currency:     records[0].Currency,
		Query:        *query,
	}
	for _, r := range records {
		item.Meters = append(item.Meters, r.MeterDescription)
	}

	span.SetAttributes(attribute.String("cost.value", total.String()))
	logger.Debug("change priced",
		zap.String("cost", total.String()),
		zap.String("resolved_from", string(query.ResolvedFrom)),
		zap.Int("records", len(records)),
	)
	return item, nil, nil
}

// fetch runs the catalog query with caller-side retries
func (a *Aggregator) fetch(ctx context.Context, catalogURL string, logger *zap.Logger) ([]types.PriceRecord, error) {
	var lastErr error
	for attempt := 1; attempt <= a.opts.Attempts; attempt++ {
		records, err := a.fetcher.Fetch(ctx, catalogURL)
		if err == nil {
			return records, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt == a.opts.Attempts {
			break
		}

		logger.Debug("catalog lookup failed, retrying", zap.Int("attempt", attempt), zap.Error(err))
		if err := sleep(ctx, a.opts.RetryDelay); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
