// Package authentication demonstrates the two ways a sample can authenticate
// to Azure Key Vault: directly with service principal credentials, and
// through a token acquisition callback.
package authentication

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/jenkins-x/jx-logging/v3/pkg/log"

	"github.com/jenkins-x-plugins/azure-keyvault-samples/pkg/config"
	"github.com/jenkins-x-plugins/azure-keyvault-samples/pkg/iam/azureiam"
	"github.com/jenkins-x-plugins/azure-keyvault-samples/pkg/keyvault"
	"github.com/jenkins-x-plugins/azure-keyvault-samples/pkg/samples"
)

// Samples lists the authentication demonstrations in the order they run.
func Samples() []samples.Sample {
	return []samples.Sample{
		{
			Name:        "auth-service-principal",
			Description: "authenticates to Azure Key Vault using service principal credentials",
			Run:         authWithServicePrincipal,
		},
		{
			Name:        "auth-token-callback",
			Description: "authenticates to Azure Key Vault using a token acquisition callback",
			Run:         authWithTokenCallback,
		},
	}
}

func authWithServicePrincipal(ctx context.Context, cfg *config.Config) error {
	cred, err := azureiam.NewServicePrincipalCredential(cfg.TenantID, cfg.ClientID, cfg.ClientSecret)
	if err != nil {
		return fmt.Errorf("unable to create service principal credential: %w", err)
	}
	return validateVaultAccess(ctx, cfg, cred)
}

func authWithTokenCallback(ctx context.Context, cfg *config.Config) error {
	// the callback itself authenticates with the service principal; the
	// credential only sees the resulting bearer token
	spCred, err := azureiam.NewServicePrincipalCredential(cfg.TenantID, cfg.ClientID, cfg.ClientSecret)
	if err != nil {
		return fmt.Errorf("unable to create service principal credential for callback: %w", err)
	}
	cred, err := azureiam.NewCallbackCredential(cfg.TenantID, azureiam.ServicePrincipalCallback(spCred))
	if err != nil {
		return fmt.Errorf("unable to create callback credential: %w", err)
	}
	return validateVaultAccess(ctx, cfg, cred)
}

// validateVaultAccess creates a fresh vault with the given credential's
// service principal authorized, then proves the data plane authentication
// path with a secret round trip.
func validateVaultAccess(ctx context.Context, cfg *config.Config, cred azcore.TokenCredential) error {
	if err := keyvault.EnsureResourceGroup(ctx, cfg, cred); err != nil {
		return fmt.Errorf("unable to ensure sample resource group: %w", err)
	}
	vaultURL, err := keyvault.CreateVault(ctx, cfg, cred)
	if err != nil {
		return fmt.Errorf("unable to create sample vault: %w", err)
	}
	client, err := keyvault.NewSecretsClient(vaultURL, cred)
	if err != nil {
		return fmt.Errorf("unable to create secrets client: %w", err)
	}
	if err := keyvault.WaitForVaultReady(ctx, client); err != nil {
		return fmt.Errorf("vault %s never became reachable: %w", vaultURL, err)
	}
	if err := keyvault.ValidateAuthentication(ctx, client); err != nil {
		return fmt.Errorf("authentication validation failed against %s: %w", vaultURL, err)
	}
	log.Logger().Infof("authenticated to vault %s", vaultURL)
	return nil
}
