package health

import (
	"context"
	"fmt"
	"time"

	"github.com/hellofresh/health-go/v5"
)

const (
	componentName     = "inventory-service"
	databaseCheckName = "database"
	databaseTimeout   = 3 * time.Second
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewReadinessHandler builds the readiness checks of the inventory service.
func NewReadinessHandler(version string, db Pinger) (*health.Health, error) {
	h, err := health.New(
		health.WithComponent(health.Component{
			Name:    componentName,
			Version: version,
		}),
		health.WithSystemInfo(),
		health.WithChecks(
			health.Config{
				Name:      databaseCheckName,
				Timeout:   databaseTimeout,
				SkipOnErr: false,
				Check: func(ctx context.Context) error {
					if err := db.Ping(ctx); err != nil {
						return fmt.Errorf("failed to reach database: %w", err)
					}
					return nil
				},
			},
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create health instance: %w", err)
	}

	return h, nil
}
