package azureiam

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vaultScope = "https://vault.azure.net/.default"

func newTestCredential(t *testing.T, cb TokenCallback) *CallbackCredential {
	cred, err := NewCallbackCredential("test-tenant", cb)
	require.NoError(t, err)
	return cred
}

func TestCallbackCredentialInvokedOncePerResource(t *testing.T) {
	calls := 0
	cred := newTestCredential(t, func(ctx context.Context, authority, resource, scope string) (*TokenResponse, error) {
		calls++
		return &TokenResponse{AccessToken: fmt.Sprintf("token-%d", calls), ExpiresOn: time.Now().Add(time.Hour)}, nil
	})

	tok, err := cred.GetToken(context.Background(), policy.TokenRequestOptions{Scopes: []string{vaultScope}})
	assert.NoError(t, err)
	assert.Equal(t, "token-1", tok.Token)

	// second request for the same resource is served from cache
	tok, err = cred.GetToken(context.Background(), policy.TokenRequestOptions{Scopes: []string{vaultScope}})
	assert.NoError(t, err)
	assert.Equal(t, "token-1", tok.Token)
	assert.Equal(t, 1, calls)

	// a distinct resource triggers a fresh invocation
	_, err = cred.GetToken(context.Background(), policy.TokenRequestOptions{Scopes: []string{"https://management.azure.com/.default"}})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestCallbackCredentialPassesAuthorityResourceScope(t *testing.T) {
	var gotAuthority, gotResource, gotScope string
	cred := newTestCredential(t, func(ctx context.Context, authority, resource, scope string) (*TokenResponse, error) {
		gotAuthority, gotResource, gotScope = authority, resource, scope
		return &TokenResponse{AccessToken: "tok", ExpiresOn: time.Now().Add(time.Hour)}, nil
	})

	_, err := cred.GetToken(context.Background(), policy.TokenRequestOptions{Scopes: []string{vaultScope}})
	assert.NoError(t, err)
	assert.Equal(t, "https://login.microsoftonline.com/test-tenant", gotAuthority)
	assert.Equal(t, "https://vault.azure.net", gotResource)
	assert.Equal(t, vaultScope, gotScope)
}

func TestCallbackCredentialRefreshesNearExpiry(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	cred := newTestCredential(t, func(ctx context.Context, authority, resource, scope string) (*TokenResponse, error) {
		calls++
		return &TokenResponse{AccessToken: fmt.Sprintf("token-%d", calls), ExpiresOn: now.Add(10 * time.Minute)}, nil
	})
	cred.now = func() time.Time { return now }

	_, err := cred.GetToken(context.Background(), policy.TokenRequestOptions{Scopes: []string{vaultScope}})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	// still comfortably before the refresh window
	now = now.Add(5 * time.Minute)
	_, err = cred.GetToken(context.Background(), policy.TokenRequestOptions{Scopes: []string{vaultScope}})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	// inside the refresh window the callback runs again
	now = now.Add(4 * time.Minute)
	tok, err := cred.GetToken(context.Background(), policy.TokenRequestOptions{Scopes: []string{vaultScope}})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "token-2", tok.Token)
}

func TestCallbackCredentialCallbackError(t *testing.T) {
	cred := newTestCredential(t, func(ctx context.Context, authority, resource, scope string) (*TokenResponse, error) {
		return nil, errors.New("identity endpoint unreachable")
	})

	_, err := cred.GetToken(context.Background(), policy.TokenRequestOptions{Scopes: []string{vaultScope}})
	require.Error(t, err)
	var authErr *AuthenticationError
	assert.ErrorAs(t, err, &authErr)
	assert.ErrorContains(t, err, "identity endpoint unreachable")
}

func TestCallbackCredentialMalformedResponse(t *testing.T) {
	for name, resp := range map[string]*TokenResponse{
		"nil response":  nil,
		"empty token":   {AccessToken: "", ExpiresOn: time.Now().Add(time.Hour)},
		"expired token": {AccessToken: "tok", ExpiresOn: time.Now().Add(-time.Minute)},
	} {
		t.Run(name, func(t *testing.T) {
			cred := newTestCredential(t, func(ctx context.Context, authority, resource, scope string) (*TokenResponse, error) {
				return resp, nil
			})
			_, err := cred.GetToken(context.Background(), policy.TokenRequestOptions{Scopes: []string{vaultScope}})
			require.Error(t, err)
			var authErr *AuthenticationError
			assert.ErrorAs(t, err, &authErr)
		})
	}
}

func TestCallbackCredentialRequiresSingleScope(t *testing.T) {
	cred := newTestCredential(t, func(ctx context.Context, authority, resource, scope string) (*TokenResponse, error) {
		t.Fatal("callback should not run")
		return nil, nil
	})
	_, err := cred.GetToken(context.Background(), policy.TokenRequestOptions{})
	assert.Error(t, err)
	_, err = cred.GetToken(context.Background(), policy.TokenRequestOptions{Scopes: []string{vaultScope, "https://management.azure.com/.default"}})
	assert.Error(t, err)
}

func TestCallbackCredentialForwardsCallerContext(t *testing.T) {
	type ctxKey struct{}
	var got any
	cred := newTestCredential(t, func(ctx context.Context, authority, resource, scope string) (*TokenResponse, error) {
		got = ctx.Value(ctxKey{})
		return &TokenResponse{AccessToken: "tok", ExpiresOn: time.Now().Add(time.Hour)}, nil
	})

	ctx := context.WithValue(context.Background(), ctxKey{}, "caller")
	_, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{vaultScope}})
	require.NoError(t, err)
	assert.Equal(t, "caller", got)
}

func TestNewCallbackCredentialValidation(t *testing.T) {
	_, err := NewCallbackCredential("", func(ctx context.Context, authority, resource, scope string) (*TokenResponse, error) { return nil, nil })
	assert.Error(t, err)
	_, err = NewCallbackCredential("test-tenant", nil)
	assert.Error(t, err)
}
