package azureiam

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/jenkins-x/jx-logging/v3/pkg/log"
)

// tokens are refreshed this long before they expire so a request never goes
// out with a token about to lapse mid-flight
const refreshWindow = 2 * time.Minute

const authorityHost = "https://login.microsoftonline.com/"

// TokenResponse is what a TokenCallback hands back: a bearer token and the
// instant it stops being valid.
type TokenResponse struct {
	AccessToken string
	ExpiresOn   time.Time
}

// TokenCallback acquires a raw token for the given authority, resource and
// scope. Implementations may shell out to any token source they like; the
// CallbackCredential never inspects the token beyond its expiry. The context
// is the one passed to the GetToken call that triggered the invocation.
type TokenCallback func(ctx context.Context, authority, resource, scope string) (*TokenResponse, error)

// CallbackCredential is an azcore.TokenCredential backed by a user supplied
// callback. The callback is invoked lazily, once per distinct resource, and
// again only when the cached token nears expiry.
type CallbackCredential struct {
	authority string
	callback  TokenCallback

	mu     sync.Mutex
	tokens map[string]azcore.AccessToken

	// test seam
	now func() time.Time
}

// NewCallbackCredential wires a token callback into the azcore credential
// contract for the given tenant.
func NewCallbackCredential(tenantID string, callback TokenCallback) (*CallbackCredential, error) {
	if tenantID == "" {
		return nil, &AuthenticationError{Err: fmt.Errorf("tenant id must not be empty")}
	}
	if callback == nil {
		return nil, &AuthenticationError{Err: fmt.Errorf("token callback must not be nil")}
	}
	return &CallbackCredential{
		authority: authorityHost + tenantID,
		callback:  callback,
		tokens:    map[string]azcore.AccessToken{},
		now:       time.Now,
	}, nil
}

// GetToken implements azcore.TokenCredential. Exactly one scope is expected,
// which is how the Key Vault clients request tokens.
func (c *CallbackCredential) GetToken(ctx context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	if err := ctx.Err(); err != nil {
		return azcore.AccessToken{}, err
	}
	if len(opts.Scopes) != 1 {
		return azcore.AccessToken{}, &AuthenticationError{Err: fmt.Errorf("expected exactly one scope, got %d", len(opts.Scopes))}
	}
	scope := opts.Scopes[0]
	resource := strings.TrimSuffix(scope, "/.default")

	c.mu.Lock()
	defer c.mu.Unlock()

	if tok, ok := c.tokens[resource]; ok && tok.ExpiresOn.After(c.now().Add(refreshWindow)) {
		return tok, nil
	}

	log.Logger().Debugf("invoking token callback for resource %s", resource)
	resp, err := c.callback(ctx, c.authority, resource, scope)
	if err != nil {
		return azcore.AccessToken{}, &AuthenticationError{Err: fmt.Errorf("token callback failed for resource %s: %w", resource, err)}
	}
	if resp == nil || resp.AccessToken == "" {
		return azcore.AccessToken{}, &AuthenticationError{Err: fmt.Errorf("token callback returned an empty token for resource %s", resource)}
	}
	if !resp.ExpiresOn.After(c.now()) {
		return azcore.AccessToken{}, &AuthenticationError{Err: fmt.Errorf("token callback returned an already expired token for resource %s", resource)}
	}

	tok := azcore.AccessToken{Token: resp.AccessToken, ExpiresOn: resp.ExpiresOn}
	c.tokens[resource] = tok
	return tok, nil
}

// ServicePrincipalCallback adapts an existing TokenCredential into a
// TokenCallback so the callback flow can be demonstrated with a service
// principal as the underlying token source.
func ServicePrincipalCallback(cred azcore.TokenCredential) TokenCallback {
	return func(ctx context.Context, authority, resource, scope string) (*TokenResponse, error) {
		tok, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{scope}})
		if err != nil {
			return nil, err
		}
		return &TokenResponse{AccessToken: tok.Token, ExpiresOn: tok.ExpiresOn}, nil
	}
}
