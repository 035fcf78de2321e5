// Package engine provides the estimation pipeline.
// CLI is a thin wrapper around this engine.
package engine

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"arm-cost/core/change"
	"arm-cost/core/cost"
	"arm-cost/core/types"
	"arm-cost/internal/errors"
	"arm-cost/internal/logging"
)

// PreviewSource produces the change list of a deployment
type PreviewSource interface {
	Preview(ctx context.Context, req types.DeploymentRequest) (*types.PreviewResponse, error)
}

// Aggregator prices normalized changes
type Aggregator interface {
	Aggregate(ctx context.Context, changes []change.Change) (*cost.Report, error)
}

// Engine is the primary API for cost estimation
type Engine struct {
	source     PreviewSource
	aggregator Aggregator
	logger     *zap.Logger
	now        func() time.Time
}

// New creates an engine
func New(source PreviewSource, aggregator Aggregator, logger *zap.Logger) *Engine {
	return &Engine{
		source:     source,
		aggregator: aggregator,
		logger:     logging.OrNop(logger),
		now:        time.Now,
	}
}

// Result is the outcome of one estimation
type Result struct {
	Request   types.DeploymentRequest `json:"-" yaml:"-"`
	Status    types.PreviewStatus     `json:"status" yaml:"status"`
	Error     *types.PreviewError     `json:"error,omitempty" yaml:"error,omitempty"`
	Changes   []*types.ResourceChange `json:"-" yaml:"-"`
	Report    *cost.Report            `json:"report,omitempty" yaml:"report,omitempty"`
	Threshold cost.Threshold          `json:"threshold" yaml:"threshold"`
	Outcome   cost.Outcome            `json:"outcome" yaml:"outcome"`
	Duration  time.Duration           `json:"-" yaml:"-"`
}

// Failed reports whether the preview itself failed
func (r *Result) Failed() bool {
	return r.Status == types.StatusFailed
}

// Total returns the report total, zero when nothing was priced
func (r *Result) Total() decimal.Decimal {
	if r.Report == nil {
		return decimal.Zero
	}
	return r.Report.Total
}

// Estimate runs preview, normalization, aggregation and the threshold check.
// A Failed preview is returned as a Result without pricing.
func (e *Engine) Estimate(ctx context.Context, req types.DeploymentRequest, threshold cost.Threshold) (*Result, error) {
	start := e.now()

	preview, err := e.source.Preview(ctx, req)
	if err != nil {
		return nil, err
	}
	if preview == nil {
		return nil, errors.Internal("preview source returned no response", nil)
	}

	result := &Result{
		Request:   req,
		Status:    preview.Status,
		Error:     preview.Error,
		Changes:   preview.Changes(),
		Threshold: threshold,
		Outcome:   cost.OutcomeSuccess,
	}

	if preview.IsFailed() {
		e.logger.Error("what-if preview failed", zap.Any("error", preview.Error))
		result.Duration = e.now().Sub(start)
		return result, nil
	}

	if !preview.HasChanges() {
		e.logger.Info("no changes detected")
	}

	changes, diags := change.Normalize(preview, e.logger)
	report, err := e.aggregator.Aggregate(ctx, changes)
	if err != nil {
		return nil, err
	}
	if len(diags) > 0 {
		report.Diagnostics = append(diags, report.Diagnostics...)
		sort.SliceStable(report.Diagnostics, func(i, j int) bool {
			return report.Diagnostics[i].Index < report.Diagnostics[j].Index
		})
	}

	result.Report = report
	result.Outcome = threshold.Evaluate(report.Total)
	result.Duration = e.now().Sub(start)

	e.logger.Info("estimation completed",
		zap.String("total", report.Total.String()),
		zap.String("currency", report.Currency.String()),
		zap.String("threshold", threshold.String()),
		zap.Stringer("outcome", result.Outcome),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}
