package keyvault_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jenkins-x-plugins/azure-keyvault-samples/pkg/keyvault"
)

func TestVaultURL(t *testing.T) {
	u, err := keyvault.VaultURL("my-vault")
	require.NoError(t, err)
	assert.Equal(t, "https://my-vault.vault.azure.net", u)
}

func TestVaultName(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		name := keyvault.VaultName()
		assert.True(t, strings.HasPrefix(name, "vault-"), "name %q should carry the vault prefix", name)
		assert.LessOrEqual(t, len(name), 24, "name %q exceeds the vault name limit", name)
		assert.False(t, strings.HasSuffix(name, "-"), "name %q should not end with a hyphen", name)
		seen[name] = true
	}
	assert.Greater(t, len(seen), 1, "generated names should vary")
}
