package main

import (
	"context"
	"os"

	"github.com/jenkins-x/jx-logging/v3/pkg/log"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/jenkins-x-plugins/azure-keyvault-samples/pkg/config"
	"github.com/jenkins-x-plugins/azure-keyvault-samples/pkg/samples"
	"github.com/jenkins-x-plugins/azure-keyvault-samples/pkg/samples/authentication"
)

func main() {
	var overrides config.Config
	var verbose bool

	pflag.StringVar(&overrides.TenantID, "tenant-id", "", "the tenant id of the tenant in which to run the samples")
	pflag.StringVar(&overrides.SubscriptionID, "subscription-id", "", "the subscription id of the subscription in which to run the samples")
	pflag.StringVar(&overrides.ClientID, "client-id", "", "the client id of the service principal to run the samples")
	pflag.StringVar(&overrides.ClientOID, "client-oid", "", "the object id of the service principal to run the samples")
	pflag.StringVar(&overrides.ClientSecret, "client-secret", "", "the authentication secret of the service principal to run the samples")
	pflag.BoolVar(&verbose, "verbose", false, "enable debug logging")
	pflag.Parse()

	if verbose {
		log.Logger().Logger.SetLevel(logrus.DebugLevel)
	}

	cfg := config.FromEnvironment()
	if err := cfg.ApplyOverrides(overrides); err != nil {
		log.Logger().Errorf("error applying flag overrides: %v", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Logger().Errorf("error loading configuration: %v", err)
		os.Exit(1)
	}

	// remaining args name the samples to run; none means all of them
	requested := pflag.Args()

	if err := samples.Run(context.Background(), cfg, authentication.Samples(), requested); err != nil {
		log.Logger().Errorf("error running samples: %v", err)
		os.Exit(1)
	}
}
