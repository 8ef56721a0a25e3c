package synthesis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seeg/onehcm/internal/logger"
)

// DefaultPollInterval is the refresh period used by dashboards.
const DefaultPollInterval = 5 * time.Second

// Loader produces synthesis data for an application.
type Loader interface {
	Load(ctx context.Context, applicationID uuid.UUID) (*Data, error)
}

// Poller reloads the synthesis of an application on a fixed period.
// Stale reads between ticks are expected.
type Poller struct {
	loader   Loader
	interval time.Duration
	logger   *zap.Logger
}

// NewPoller creates a poller. A non-positive interval uses DefaultPollInterval.
func NewPoller(loader Loader, interval time.Duration, l *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		loader:   loader,
		interval: interval,
		logger:   logger.WithFields(l),
	}
}

// Interval returns the refresh period.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Run loads immediately, then on every tick, handing each result to fn.
// Load errors are handed to fn and polling continues. Run returns ctx.Err()
// once ctx is done; the ticker is stopped before returning.
func (p *Poller) Run(ctx context.Context, applicationID uuid.UUID, fn func(*Data, error)) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.refresh(ctx, applicationID, fn)

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("synthesis polling stopped",
				append(logger.RecordFields(applicationID.String(), "", ""), zap.Error(ctx.Err()))...,
			)
			return ctx.Err()
		case <-ticker.C:
			p.refresh(ctx, applicationID, fn)
		}
	}
}

func (p *Poller) refresh(ctx context.Context, applicationID uuid.UUID, fn func(*Data, error)) {
	data, err := p.loader.Load(ctx, applicationID)
	if err != nil && ctx.Err() != nil {
		return
	}
	if err != nil {
		p.logger.Warn("synthesis refresh failed",
			append(logger.RecordFields(applicationID.String(), "", ""), zap.Error(err))...,
		)
	}
	fn(data, err)
}
