// Package app provides the core dashboard service that implements the
// dependencies required by the HTTP API: identifier resolution, friend
// rankings, achievement aggregation, and login verification.
package app

import (
	"github.com/Entinus-oss/howmuchtime/internal/adapters/steam"
	"github.com/Entinus-oss/howmuchtime/pkg/logger"
	"github.com/Entinus-oss/howmuchtime/pkg/pacer"
)

// Service aggregates Steam Web API data into dashboard views. It holds
// no per-account state; every call fetches fresh upstream data.
type Service struct {
	steam steam.Client

	// probePace spaces suggestion probes and per-title achievement
	// fetches; detailPace spaces storefront detail fetches.
	probePace  pacer.Pacer
	detailPace pacer.Pacer

	maxSuggestions int
	achievementCap int
	detailCap      int
	summaryBatch   int
	friendFetchers int
	privateShare   float64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithProbePacer sets the scheduler spacing suggestion probes and
// per-title achievement fetches.
func WithProbePacer(p pacer.Pacer) Option {
	return func(s *Service) {
		if p != nil {
			s.probePace = p
		}
	}
}

// WithDetailPacer sets the scheduler spacing storefront detail fetches.
func WithDetailPacer(p pacer.Pacer) Option {
	return func(s *Service) {
		if p != nil {
			s.detailPace = p
		}
	}
}

// WithMaxSuggestions caps the suggestions returned for a failed lookup.
func WithMaxSuggestions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSuggestions = n
		}
	}
}

// WithAchievementCap caps the titles examined per achievement report.
func WithAchievementCap(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.achievementCap = n
		}
	}
}

// WithDetailCap caps the titles enriched with storefront metadata.
func WithDetailCap(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.detailCap = n
		}
	}
}

// WithSummaryBatch sets the ids fetched per summaries call.
func WithSummaryBatch(n int) Option {
	return func(s *Service) {
		if n > 0 && n <= steam.MaxSummaryBatch {
			s.summaryBatch = n
		}
	}
}

// WithFriendConcurrency bounds the concurrent per-friend library fetches.
func WithFriendConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.friendFetchers = n
		}
	}
}

// WithPrivateShare sets the fraction of private titles at which a whole
// profile is flagged as having private game details.
func WithPrivateShare(share float64) Option {
	return func(s *Service) {
		if share >= 0 && share <= 1 {
			s.privateShare = share
		}
	}
}

// New constructs a Service around a Steam client with default tuning.
func New(client steam.Client, opts ...Option) *Service {
	s := &Service{
		steam:          client,
		probePace:      pacer.Nop{},
		detailPace:     pacer.Nop{},
		maxSuggestions: 8,
		achievementCap: 10,
		detailCap:      20,
		summaryBatch:   steam.MaxSummaryBatch,
		friendFetchers: 8,
		privateShare:   0.5,
		logger:         logger.Get().Named("app"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
