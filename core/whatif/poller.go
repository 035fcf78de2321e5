// Package whatif retrieves deployment previews from the management API.
// The preview is a long-running operation: the submission usually answers
// 202 Accepted and the result is polled from the returned Location.
package whatif

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"arm-cost/core/fingerprint"
	"arm-cost/core/types"
	"arm-cost/internal/errors"
	"arm-cost/internal/logging"
	"arm-cost/internal/telemetry"
)

// maxErrorBody bounds how much of a rejected response is surfaced
const maxErrorBody = 16 << 10

// TokenProvider returns a bearer token for the management API
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// Cache is the preview cache consulted before any network call
type Cache interface {
	Get(fp fingerprint.Fingerprint) (*types.PreviewResponse, bool)
	Put(fp fingerprint.Fingerprint, resp *types.PreviewResponse) bool
}

// Waiter suspends for d or until ctx is done
type Waiter func(ctx context.Context, d time.Duration) error

// Options contains the operation contract settings
type Options struct {
	// Endpoint is the management plane base URL
	Endpoint string

	APIVersion       string
	DeploymentPrefix string

	// MaxAttempts bounds the submission plus every poll
	MaxAttempts int

	// DefaultRetryAfter is used when the server sends no usable Retry-After
	DefaultRetryAfter time.Duration

	// MaxRetryAfter caps a server-provided delay; zero means no cap
	MaxRetryAfter time.Duration
}

// DefaultOptions returns the public cloud settings
func DefaultOptions() Options {
	return Options{
		Endpoint:          "https://management.azure.com",
		APIVersion:        "2021-04-01",
		DeploymentPrefix:  "arm-cost",
		MaxAttempts:       5,
		DefaultRetryAfter: 15 * time.Second,
		MaxRetryAfter:     60 * time.Second,
	}
}

// Poller submits what-if requests and polls them to completion
type Poller struct {
	httpClient *http.Client
	tokens     TokenProvider
	cache      Cache
	opts       Options
	logger     *zap.Logger
	wait       Waiter
	newName    func() string
}

// Option configures a Poller
type Option func(*Poller)

// WithCache enables the preview cache
func WithCache(c Cache) Option {
	return func(p *Poller) { p.cache = c }
}

// WithWaiter replaces the suspension step
func WithWaiter(w Waiter) Option {
	return func(p *Poller) { p.wait = w }
}

// WithDeploymentName fixes the deployment name instead of generating one
func WithDeploymentName(name string) Option {
	return func(p *Poller) { p.newName = func() string { return name } }
}

// New creates a poller. httpClient is owned by the caller and may be shared.
func New(httpClient *http.Client, tokens TokenProvider, opts Options, logger *zap.Logger, options ...Option) *Poller {
	defaults := DefaultOptions()
	if opts.Endpoint == "" {
		opts.Endpoint = defaults.Endpoint
	}
	if opts.APIVersion == "" {
		opts.APIVersion = defaults.APIVersion
	}
	if opts.DeploymentPrefix == "" {
		opts.DeploymentPrefix = defaults.DeploymentPrefix
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaults.MaxAttempts
	}
	if opts.DefaultRetryAfter <= 0 {
		opts.DefaultRetryAfter = defaults.DefaultRetryAfter
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	p := &Poller{
		httpClient: httpClient,
		tokens:     tokens,
		cache:      noCache{},
		opts:       opts,
		logger:     logging.OrNop(logger),
		wait:       Sleep,
	}
	p.newName = func() string { return p.opts.DeploymentPrefix + "-" + uuid.NewString() }

	for _, o := range options {
		o(p)
	}
	if p.cache == nil {
		p.cache = noCache{}
	}
	return p
}

// Preview returns the what-if result for req. A preview whose status is
// Failed is returned as data, not as an error.
func (p *Poller) Preview(ctx context.Context, req types.DeploymentRequest) (*types.PreviewResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	fp := fingerprint.Of(req)
	ctx, span := telemetry.Tracer("arm-cost/whatif").Start(ctx, "whatif.preview")
	defer span.End()
	span.SetAttributes(
		attribute.String("whatif.scope", req.Scope.String()),
		attribute.String("whatif.fingerprint", fp.Short()),
	)

	logger := p.logger.With(zap.String("scope", req.String()), logging.Fingerprint(fp.Short()))

	if cached, ok := p.cache.Get(fp); ok {
		span.SetAttributes(attribute.Bool("whatif.cache_hit", true))
		logger.Info("using cached what-if result")
		return cached, nil
	}
	span.SetAttributes(attribute.Bool("whatif.cache_hit", false))

	preview, attempts, err := p.run(ctx, req, logger)
	span.SetAttributes(attribute.Int("whatif.attempts", attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("whatif.status", string(preview.Status)))
	if preview.HasChanges() && !preview.IsFailed() {
		p.cache.Put(fp, preview)
	}
	return preview, nil
}

func (p *Poller) run(ctx context.Context, req types.DeploymentRequest, logger *zap.Logger) (*types.PreviewResponse, int, error) {
	body, err := RequestBody(req)
	if err != nil {
		return nil, 0, err
	}

	submitURL := p.SubmitURL(req, p.newName())
	logger.Info("submitting what-if request", zap.String("mode", string(req.Mode)))

	resp, err := p.do(ctx, http.MethodPost, submitURL, body)
	if err != nil {
		return nil, 1, err
	}
	attempts := 1

	for resp.StatusCode == http.StatusAccepted {
		location := resp.Header.Get("Location")
		delay := p.retryAfter(resp.Header.Get("Retry-After"))
		drain(resp)

		if location == "" {
			return nil, attempts, errors.New(errors.TypeNetwork, "what-if operation accepted without a Location header")
		}
		if attempts >= p.opts.MaxAttempts {
			return nil, attempts, errors.Newf(errors.TypeTimeout,
				"what-if operation still running after %d attempts", attempts).
				WithContext("location", location)
		}

		logger.Info("what-if operation accepted, waiting",
			zap.Int("attempt", attempts),
			zap.Duration("retry_after", delay),
		)
		if err := p.wait(ctx, delay); err != nil {
			return nil, attempts, errors.Wrap(errors.TypeTimeout, "what-if polling interrupted", err)
		}

		resp, err = p.do(ctx, http.MethodGet, location, nil)
		if err != nil {
			return nil, attempts + 1, err
		}
		attempts++
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := "what-if request rejected"
		if attempts > 1 {
			msg = "what-if poll failed"
		}
		return nil, attempts, errors.Newf(errors.TypeNetwork, "%s (%d): %s", msg, resp.StatusCode, strings.TrimSpace(string(raw))).
			WithContext("status", resp.StatusCode)
	}

	var preview types.PreviewResponse
	if err := json.NewDecoder(resp.Body).Decode(&preview); err != nil {
		return nil, attempts, errors.Parsing("failed to decode what-if response", err)
	}

	logger.Info("what-if operation completed",
		zap.String("status", string(preview.Status)),
		zap.Int("changes", len(preview.Changes())),
		zap.Int("attempts", attempts),
	)
	return &preview, attempts, nil
}

func (p *Poller) do(ctx context.Context, method, target string, body []byte) (*http.Response, error) {
	token, err := p.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, errors.Wrap(errors.TypeInput, "invalid what-if URL", err).WithContext("url", target)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, errors.Network(fmt.Sprintf("what-if %s request failed", method), err)
	}
	return resp, nil
}

// retryAfter parses delta-seconds or an HTTP-date
func (p *Poller) retryAfter(header string) time.Duration {
	d := p.opts.DefaultRetryAfter

	header = strings.TrimSpace(header)
	if header != "" {
		if secs, err := strconv.Atoi(header); err == nil {
			d = time.Duration(secs) * time.Second
		} else if at, err := http.ParseTime(header); err == nil {
			d = time.Until(at)
		}
	}

	if d < 0 {
		d = 0
	}
	if p.opts.MaxRetryAfter > 0 && d > p.opts.MaxRetryAfter {
		d = p.opts.MaxRetryAfter
	}
	return d
}

// SubmitURL returns the scope-shaped whatIf URL for a deployment name
func (p *Poller) SubmitURL(req types.DeploymentRequest, deployment string) string {
	var scope string
	switch req.Scope {
	case types.ScopeResourceGroup:
		scope = "/subscriptions/" + url.PathEscape(req.ScopeID) + "/resourcegroups/" + url.PathEscape(req.ResourceGroup)
	case types.ScopeSubscription:
		scope = "/subscriptions/" + url.PathEscape(req.ScopeID)
	case types.ScopeManagementGroup:
		scope = "/providers/Microsoft.Management/managementGroups/" + url.PathEscape(req.ScopeID)
	}

	return strings.TrimSuffix(p.opts.Endpoint, "/") + scope +
		"/providers/Microsoft.Resources/deployments/" + url.PathEscape(deployment) +
		"/whatIf?api-version=" + url.QueryEscape(p.opts.APIVersion)
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()
}

// Sleep waits for d, returning early with ctx.Err() on cancellation
func Sleep(ctx context.Context, d time.Duration) error {
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

type noCache struct{}

func (noCache) Get(fingerprint.Fingerprint) (*types.PreviewResponse, bool) { return nil, false }
func (noCache) Put(fingerprint.Fingerprint, *types.PreviewResponse) bool { return false }
