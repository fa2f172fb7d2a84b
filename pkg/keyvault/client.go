package keyvault

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"github.com/jenkins-x/jx-logging/v3/pkg/log"
)

const (
	sampleSecretName  = "auth-sample-secret"
	sampleSecretValue = "vault is authenticated"

	readyRetryWait  = 10 * time.Second
	readyMaxRetries = 4
)

// VaultURL resolves the data plane URL for a vault name.
func VaultURL(vaultName string) (string, error) {
	vaultURL, err := url.Parse(fmt.Sprintf("https://%s.vault.azure.net", vaultName))
	if err != nil {
		return "", fmt.Errorf("error resolving url for Azure Key Vault %s: %w", vaultName, err)
	}
	return vaultURL.String(), nil
}

// NewSecretsClient returns a secrets client bound to the vault at vaultURL.
// Every request the client issues acquires a token from cred through the SDK
// pipeline, so the caller never handles tokens directly.
func NewSecretsClient(vaultURL string, cred azcore.TokenCredential) (*azsecrets.Client, error) {
	client, err := azsecrets.NewClient(vaultURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to create secret ops client for %s: %w", vaultURL, err)
	}
	return client, nil
}

// ValidateAuthentication proves the authentication path works by writing a
// sample secret and reading it back. Any transport or authorization failure
// propagates unwrapped in meaning: no error means the credential is good.
func ValidateAuthentication(ctx context.Context, client *azsecrets.Client) error {
	value := sampleSecretValue
	params := azsecrets.SetSecretParameters{
		Value: &value,
	}
	_, err := client.SetSecret(ctx, sampleSecretName, params, nil)
	if err != nil {
		return fmt.Errorf("unable to set secret %s: %w", sampleSecretName, err)
	}
	bundle, err := client.GetSecret(ctx, sampleSecretName, "", nil)
	if err != nil {
		return fmt.Errorf("unable to retrieve secret %s: %w", sampleSecretName, err)
	}
	if bundle.Value == nil || *bundle.Value != sampleSecretValue {
		return fmt.Errorf("secret %s round trip returned an unexpected value", sampleSecretName)
	}
	return nil
}

// WaitForVaultReady polls the vault with a list secrets call until it
// answers. A freshly created vault's DNS entry can lag its ARM resource, so
// each attempt sleeps before probing.
func WaitForVaultReady(ctx context.Context, client *azsecrets.Client) error {
	var lastErr error
	for i := 0; i < readyMaxRetries-1; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(readyRetryWait):
		}
		pager := client.NewListSecretPropertiesPager(nil)
		_, err := pager.NextPage(ctx)
		if err == nil {
			return nil
		}
		log.Logger().Infof("vault connection not available")
		lastErr = err
	}
	return lastErr
}
