package config

import (
	"fmt"
	"os"
	"strings"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
)

const (
	defaultLocation  = "westus"
	defaultGroupName = "azure-sample-group"
)

// Config holds the service principal and subscription settings the samples
// run under. All values come from the environment; flag overrides are applied
// with ApplyOverrides.
type Config struct {
	SubscriptionID string
	TenantID       string
	ClientID       string
	ClientOID      string
	ClientSecret   string
	Location       string
	GroupName      string
}

// FromEnvironment builds a Config from AZURE_* environment variables,
// loading a .env file first if one is present. Callers apply any overrides
// and then Validate, so a value absent here can still arrive via a flag.
func FromEnvironment() *Config {
	// .env is a convenience for local runs only, ignore a missing file
	_ = godotenv.Load()

	c := &Config{
		SubscriptionID: os.Getenv("AZURE_SUBSCRIPTION_ID"),
		TenantID:       os.Getenv("AZURE_TENANT_ID"),
		ClientID:       os.Getenv("AZURE_CLIENT_ID"),
		ClientOID:      os.Getenv("AZURE_CLIENT_OID"),
		ClientSecret:   os.Getenv("AZURE_CLIENT_SECRET"),
		Location:       os.Getenv("AZURE_LOCATION"),
		GroupName:      os.Getenv("AZURE_RESOURCE_GROUP"),
	}
	if c.Location == "" {
		c.Location = defaultLocation
	}
	if c.GroupName == "" {
		c.GroupName = defaultGroupName
	}
	return c
}

// ApplyOverrides merges non-empty fields of o over c, leaving everything else
// untouched.
func (c *Config) ApplyOverrides(o Config) error {
	if err := mergo.Merge(c, o, mergo.WithOverride); err != nil {
		return fmt.Errorf("error applying configuration overrides: %w", err)
	}
	return nil
}

// Validate reports every required setting that is still unset.
func (c *Config) Validate() error {
	var missing []string
	for _, v := range []struct {
		name  string
		value string
	}{
		{"AZURE_SUBSCRIPTION_ID", c.SubscriptionID},
		{"AZURE_TENANT_ID", c.TenantID},
		{"AZURE_CLIENT_ID", c.ClientID},
		{"AZURE_CLIENT_OID", c.ClientOID},
		{"AZURE_CLIENT_SECRET", c.ClientSecret},
	} {
		if v.value == "" {
			missing = append(missing, v.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}
