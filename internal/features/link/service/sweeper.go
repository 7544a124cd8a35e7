package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"cardabot-backend/internal/common/metrics"
	chatrepo "cardabot-backend/internal/features/chat/repository"
)

// Sweeper periodically clears every outstanding linking token. It is the
// coarse backstop behind the issuance-timestamp check at consume time: even
// if a token somehow escapes that check, it does not outlive the sweep.
//
// The handle is created in main and stopped on shutdown; there is no ambient
// background-job registry.
type Sweeper struct {
	ctx      context.Context
	cancel   context.CancelFunc
	repo     chatrepo.ChatRepository
	interval time.Duration
	logger   zerolog.Logger
	wg       sync.WaitGroup
}

func NewSweeper(repo chatrepo.ChatRepository, interval time.Duration, logger zerolog.Logger) *Sweeper {
	ctx, cancel := context.WithCancel(context.Background())
	return &Sweeper{
		ctx:      ctx,
		cancel:   cancel,
		repo:     repo,
		interval: interval,
		logger:   logger,
	}
}

func (s *Sweeper) Start() {
	s.logger.Info().Dur("interval", s.interval).Msg("Starting link token sweeper")
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.ctx.Done():
				return
			}
		}
	}()
}

func (s *Sweeper) Stop() {
	s.logger.Info().Msg("Stopping link token sweeper")
	s.cancel()
	s.wg.Wait()
	s.logger.Info().Msg("Link token sweeper stopped")
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(s.ctx, time.Minute)
	defer cancel()

	cleared, err := s.repo.SweepLinkTokens(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Link token sweep failed")
		return
	}
	if cleared > 0 {
		metrics.TokensSwept.Add(float64(cleared))
		s.logger.Info().Int("cleared", cleared).Msg("Swept link tokens")
	}
}
