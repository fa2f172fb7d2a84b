package samples

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/jenkins-x/jx-logging/v3/pkg/log"

	"github.com/jenkins-x-plugins/azure-keyvault-samples/pkg/config"
)

// Sample is a single runnable demonstration.
type Sample struct {
	Name        string
	Description string
	Run         func(ctx context.Context, cfg *config.Config) error
}

// Select returns the samples matching the requested names, in request order.
// An empty request selects every sample. Any unknown name is an error and no
// sample is selected.
func Select(available []Sample, requested []string) ([]Sample, error) {
	if len(requested) == 0 {
		return available, nil
	}
	byName := make(map[string]Sample, len(available))
	for _, s := range available {
		byName[s.Name] = s
	}
	selected := make([]Sample, 0, len(requested))
	for _, name := range requested {
		s, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown sample %q", name)
		}
		selected = append(selected, s)
	}
	return selected, nil
}

// Run executes the requested samples sequentially. A failing sample does not
// stop the ones after it; every failure is collected and returned together.
func Run(ctx context.Context, cfg *config.Config, available []Sample, requested []string) error {
	selected, err := Select(available, requested)
	if err != nil {
		return err
	}

	for _, s := range selected {
		log.Logger().Infof("%s -- %s", s.Name, s.Description)
	}

	var result *multierror.Error
	for _, s := range selected {
		log.Logger().Infof("--------------------------------------------------------------------")
		log.Logger().Infof("RUNNING: %s", s.Name)
		log.Logger().Infof("--------------------------------------------------------------------")
		if runErr := s.Run(ctx, cfg); runErr != nil {
			log.Logger().Errorf("sample %s failed: %v", s.Name, runErr)
			result = multierror.Append(result, fmt.Errorf("sample %s: %w", s.Name, runErr))
		}
	}
	return result.ErrorOrNil()
}
