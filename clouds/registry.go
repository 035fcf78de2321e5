// Package clouds provides the pricing strategy dispatch table.
// Resource types are added by registration, without modifying the core.
package clouds

import (
	"net/url"
	"sort"
	"sync"

	"arm-cost/core/model"
	"arm-cost/core/types"
	"arm-cost/internal/errors"
)

// DefaultCatalogEndpoint is the public retail prices API
const DefaultCatalogEndpoint = "https://prices.azure.com/api/retail/prices"

// ErrNoState is the cause of errors for changes without a usable state
var ErrNoState = errors.New(errors.TypeMissingField, "no usable resource state")

// Registry maps a case-insensitive resource type to its strategy
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
	endpoint   string
	currency   types.Currency
}

// NewRegistry creates an empty registry that builds URLs against endpoint
func NewRegistry(endpoint string, currency types.Currency) *Registry {
	if endpoint == "" {
		endpoint = DefaultCatalogEndpoint
	}
	return &Registry{
		strategies: make(map[string]Strategy),
		endpoint:   endpoint,
		currency:   currency,
	}
}

// Register adds a strategy. Registering a type twice is an error.
func (r *Registry) Register(s Strategy) error {
	key := model.NormalizeType(s.ResourceType())
	if key == "" {
		return errors.Input("strategy has an empty resource type")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.strategies[key]; exists {
		return errors.Newf(errors.TypeInput, "strategy already registered: %s", s.ResourceType())
	}

	r.strategies[key] = s
	return nil
}

// MustRegister registers strategies and panics on a duplicate
func (r *Registry) MustRegister(strategies ...Strategy) {
	for _, s := range strategies {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the strategy for a resource type, in any letter case
func (r *Registry) Lookup(resourceType string) (Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.strategies[model.NormalizeType(resourceType)]
	return s, ok
}

// ResourceTypes returns all registered types, sorted
func (r *Registry) ResourceTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.strategies))
	for _, s := range r.strategies {
		out = append(out, s.ResourceType())
	}
	sort.Strings(out)
	return out
}

// ResolveState picks the state a strategy prices from
func ResolveState(s Strategy, before, after types.ResourceState) (types.ResourceState, types.StateSource, error) {
	if after != nil {
		return after, types.StateAfter, nil
	}
	if s.Requires() == AfterOnly {
		return nil, "", errors.Wrapf(errors.TypeMissingField, ErrNoState,
			"can't generate a catalog query for %s without the desired state", s.ResourceType())
	}
	if before != nil {
		return before, types.StateBefore, nil
	}
	return nil, "", errors.Wrapf(errors.TypeMissingField, ErrNoState,
		"can't generate a catalog query for %s: neither before nor after state is available", s.ResourceType())
}

// Query builds the catalog query for a change. location is used when the
// resolved state carries none.
func (r *Registry) Query(s Strategy, before, after types.ResourceState, location string) (*types.PricingQuery, error) {
	state, source, err := ResolveState(s, before, after)
	if err != nil {
		return nil, err
	}

	catalogURL, err := r.BuildURL(s, state, location)
	if err != nil {
		return nil, err
	}

	return &types.PricingQuery{URL: catalogURL, ResolvedFrom: source}, nil
}

// BuildURL turns a resolved state into a full catalog URL
func (r *Registry) BuildURL(s Strategy, state types.ResourceState, location string) (string, error) {
	if loc := state.Location(); loc != "" {
		location = loc
	}
	if location == "" {
		return "", errors.MissingField(s.ResourceType(), "location")
	}

	filter, err := s.Filter(state, NormalizeRegion(location))
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("$filter", filter.String())
	if r.currency != "" {
		q.Set("currencyCode", "'"+r.currency.String()+"'")
	}
	return r.endpoint + "?" + q.Encode(), nil
}
