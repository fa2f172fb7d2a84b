package azureiam

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

// AuthenticationError wraps any failure to acquire credentials or a token,
// whether the cause is bad input, the identity endpoint, or a misbehaving
// token callback.
type AuthenticationError struct {
	Err error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %v", e.Err)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

var keyvaultCredentials azcore.TokenCredential

// GetKeyvaultCredentials gets a TokenCredential for use with Key Vault
// keys and secrets. Note that Key Vault *Vaults* are managed by Azure Resource
// Manager.
func GetKeyvaultCredentials() (azcore.TokenCredential, error) {
	if keyvaultCredentials != nil {
		return keyvaultCredentials, nil
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, &AuthenticationError{Err: err}
	}
	keyvaultCredentials = cred
	return keyvaultCredentials, nil
}

// NewServicePrincipalCredential builds a TokenCredential from a service
// principal's client secret. No retries happen here; a caller that wants to
// retry a transient failure reaching the identity endpoint does so itself.
func NewServicePrincipalCredential(tenantID, clientID, clientSecret string) (azcore.TokenCredential, error) {
	switch {
	case tenantID == "":
		return nil, &AuthenticationError{Err: fmt.Errorf("tenant id must not be empty")}
	case clientID == "":
		return nil, &AuthenticationError{Err: fmt.Errorf("client id must not be empty")}
	case clientSecret == "":
		return nil, &AuthenticationError{Err: fmt.Errorf("client secret must not be empty")}
	}
	cred, err := azidentity.NewClientSecretCredential(tenantID, clientID, clientSecret, nil)
	if err != nil {
		return nil, &AuthenticationError{Err: fmt.Errorf("error creating client secret credential for tenant %s: %w", tenantID, err)}
	}
	return &servicePrincipalCredential{cred: cred}, nil
}

// servicePrincipalCredential converts token acquisition failures, such as a
// revoked secret or an unreachable identity endpoint, into
// AuthenticationError.
type servicePrincipalCredential struct {
	cred azcore.TokenCredential
}

func (c *servicePrincipalCredential) GetToken(ctx context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	tok, err := c.cred.GetToken(ctx, opts)
	if err != nil {
		return azcore.AccessToken{}, &AuthenticationError{Err: err}
	}
	return tok, nil
}
