package service

import (
	"time"

	"github.com/okian/jobmarket/internal/domain/filter"
	"github.com/okian/jobmarket/internal/domain/generate"
	"github.com/okian/jobmarket/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithQueueSize sets the maximum number of pending triggers.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithInitialFilter sets the filter of the startup cycle.
func WithInitialFilter(st filter.State) Option {
	return func(s *Service) {
		s.initial = st.Clone()
	}
}

// WithDefaults sets the fallback bounds used when parsing raw input.
func WithDefaults(d filter.Defaults) Option {
	return func(s *Service) {
		s.defaults = d
	}
}

// WithRandomSource sets the randomness of the regional matrix.
func WithRandomSource(src generate.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.randomSource = src
		}
	}
}

// WithHistorySource sets the randomness drawn once for the skill history.
func WithHistorySource(src generate.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.historySource = src
		}
	}
}

// WithPublishTimeout bounds how long a single sink may take per dataset.
func WithPublishTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.publishTimeout = d
		}
	}
}

// WithRetention sets how many past cycles the snapshot cache remembers.
func WithRetention(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.retention = n
		}
	}
}
