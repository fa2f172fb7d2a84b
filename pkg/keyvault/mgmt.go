package keyvault

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/keyvault/armkeyvault"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/jenkins-x/jx-logging/v3/pkg/log"

	"github.com/jenkins-x-plugins/azure-keyvault-samples/pkg/config"
)

// EnsureResourceGroup creates or updates the sample resource group so vaults
// have somewhere to live.
func EnsureResourceGroup(ctx context.Context, cfg *config.Config, cred azcore.TokenCredential) error {
	client, err := armresources.NewResourceGroupsClient(cfg.SubscriptionID, cred, nil)
	if err != nil {
		return fmt.Errorf("unable to create resource groups client: %w", err)
	}
	_, err = client.CreateOrUpdate(ctx, cfg.GroupName, armresources.ResourceGroup{
		Location: to.Ptr(cfg.Location),
	}, nil)
	if err != nil {
		return fmt.Errorf("unable to create resource group %s: %w", cfg.GroupName, err)
	}
	return nil
}

// CreateVault creates a vault with a generated name, granting the sample
// service principal full key, secret and certificate permissions, and returns
// the vault's data plane URI once provisioning completes.
func CreateVault(ctx context.Context, cfg *config.Config, cred azcore.TokenCredential) (string, error) {
	client, err := armkeyvault.NewVaultsClient(cfg.SubscriptionID, cred, nil)
	if err != nil {
		return "", fmt.Errorf("unable to create vaults client: %w", err)
	}

	vaultName := VaultName()
	log.Logger().Infof("creating vault %s", vaultName)

	parameters := armkeyvault.VaultCreateOrUpdateParameters{
		Location: to.Ptr(cfg.Location),
		Properties: &armkeyvault.VaultProperties{
			TenantID: to.Ptr(cfg.TenantID),
			SKU: &armkeyvault.SKU{
				Family: to.Ptr(armkeyvault.SKUFamilyA),
				Name:   to.Ptr(armkeyvault.SKUNameStandard),
			},
			AccessPolicies: []*armkeyvault.AccessPolicyEntry{
				{
					TenantID: to.Ptr(cfg.TenantID),
					ObjectID: to.Ptr(cfg.ClientOID),
					Permissions: &armkeyvault.Permissions{
						Keys:         allKeyPermissions(),
						Secrets:      allSecretPermissions(),
						Certificates: allCertificatePermissions(),
					},
				},
			},
			EnabledForDeployment:         to.Ptr(true),
			EnabledForDiskEncryption:     to.Ptr(true),
			EnabledForTemplateDeployment: to.Ptr(true),
		},
	}

	poller, err := client.BeginCreateOrUpdate(ctx, cfg.GroupName, vaultName, parameters, nil)
	if err != nil {
		return "", fmt.Errorf("unable to create vault %s: %w", vaultName, err)
	}
	resp, err := poller.PollUntilDone(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("error waiting for vault %s to provision: %w", vaultName, err)
	}
	if resp.Properties == nil || resp.Properties.VaultURI == nil {
		return "", fmt.Errorf("vault %s was created without a vault URI", vaultName)
	}

	log.Logger().Infof("created vault %s %s", vaultName, *resp.Properties.VaultURI)
	return *resp.Properties.VaultURI, nil
}

func allKeyPermissions() []*armkeyvault.KeyPermissions {
	perms := armkeyvault.PossibleKeyPermissionsValues()
	out := make([]*armkeyvault.KeyPermissions, 0, len(perms))
	for i := range perms {
		out = append(out, &perms[i])
	}
	return out
}

func allSecretPermissions() []*armkeyvault.SecretPermissions {
	perms := armkeyvault.PossibleSecretPermissionsValues()
	out := make([]*armkeyvault.SecretPermissions, 0, len(perms))
	for i := range perms {
		out = append(out, &perms[i])
	}
	return out
}

func allCertificatePermissions() []*armkeyvault.CertificatePermissions {
	perms := armkeyvault.PossibleCertificatePermissionsValues()
	out := make([]*armkeyvault.CertificatePermissions, 0, len(perms))
	for i := range perms {
		out = append(out, &perms[i])
	}
	return out
}
