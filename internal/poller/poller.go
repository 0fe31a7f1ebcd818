// Package poller runs a periodic update on its own lane.
//
// Each tick runs to completion before the next one is scheduled, so ticks
// never overlap. Errors and panics from a tick are logged and the schedule
// continues.
package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	klog "github.com/Klingon-tech/avash/internal/log"
)

// Updater is the work done on every tick.
type Updater interface {
	HandleUpdate(ctx context.Context) error
}

// UpdaterFunc adapts a function to Updater.
type UpdaterFunc func(ctx context.Context) error

func (f UpdaterFunc) HandleUpdate(ctx context.Context) error { return f(ctx) }

// Service calls an Updater on a fixed interval until stopped.
type Service struct {
	label    string
	interval time.Duration
	updater  Updater
	logger   zerolog.Logger
}

// New creates a service. Nothing runs until Run is called.
func New(label string, interval time.Duration, u Updater) *Service {
	return &Service{
		label:    label,
		interval: interval,
		updater:  u,
		logger:   klog.WithComponent("poller").With().Str("service", label).Logger(),
	}
}

// Interval returns the delay between the end of one tick and the next.
func (s *Service) Interval() time.Duration {
	return s.interval
}

// Run ticks until ctx is done and returns ctx.Err(). The first tick runs
// after initialDelay.
func (s *Service) Run(ctx context.Context, initialDelay time.Duration) error {
	timer := time.NewTimer(initialDelay)
	defer timer.Stop()

	s.logger.Debug().Dur("interval", s.interval).Msg("Poller started")
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug().Msg("Poller stopped")
			return ctx.Err()
		case <-timer.C:
			if err := s.Tick(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("Update failed")
			}
			timer.Reset(s.interval)
		}
	}
}

// Tick runs one update synchronously. A panic in the updater is returned
// as an error.
func (s *Service) Tick(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic in update: %v", s.label, r)
		}
	}()
	return s.updater.HandleUpdate(ctx)
}
