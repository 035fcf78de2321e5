// Package identity provides bearer tokens for the management API.
package identity

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"arm-cost/internal/errors"
)

// DefaultScope is the management plane token scope
const DefaultScope = "https://management.azure.com/.default"

// CredentialProvider gets tokens from an azcore credential
type CredentialProvider struct {
	cred  azcore.TokenCredential
	scope string
}

// NewCredentialProvider wraps an existing credential
func NewCredentialProvider(cred azcore.TokenCredential, scope string) *CredentialProvider {
	if scope == "" {
		scope = DefaultScope
	}
	return &CredentialProvider{cred: cred, scope: scope}
}

// NewDefaultProvider uses the environment, workload identity, managed
// identity and developer CLI credentials, in that order. IDE-embedded
// credential sources are not part of the chain.
func NewDefaultProvider(scope, tenantID string) (*CredentialProvider, error) {
	cred, err := azidentity.NewDefaultAzureCredential(&azidentity.DefaultAzureCredentialOptions{
		TenantID: tenantID,
	})
	if err != nil {
		return nil, errors.Wrap(errors.TypeAuth, "failed to create Azure credential", err)
	}
	return NewCredentialProvider(cred, scope), nil
}

// Token returns a bearer token for the configured scope
func (p *CredentialProvider) Token(ctx context.Context) (string, error) {
	tok, err := p.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{p.scope}})
	if err != nil {
		return "", errors.Wrap(errors.TypeAuth, "failed to acquire access token", err).
			WithContext("scope", p.scope)
	}
	return tok.Token, nil
}

// StaticProvider always returns the same token
type StaticProvider string

// Token returns the fixed token
func (p StaticProvider) Token(context.Context) (string, error) {
	if p == "" {
		return "", errors.New(errors.TypeAuth, "empty access token")
	}
	return string(p), nil
}
