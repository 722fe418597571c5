package scheduler

import (
	"errors"
	"time"
)

// Service applies request defaults and runs resolution followed by dating.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	clock        func() time.Time
	defaultHours float64
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used to default the start date.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// WithDefaultDailyWorkHours sets the budget used when a request leaves it unset.
func WithDefaultDailyWorkHours(hours float64) Option {
	return func(s *Service) {
		s.defaultHours = hours
	}
}

// NewService creates a Service.
func NewService(opts ...Option) *Service {
	s := &Service{
		clock:        time.Now,
		defaultHours: DefaultDailyWorkHours,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate resolves the dependency order of req and schedules it.
// A cycle rejects the whole request; no partial result is returned.
func (s *Service) Generate(req Request) (*Result, error) {
	hours := req.DailyWorkHours
	if hours == 0 {
		hours = s.defaultHours
	}
	if err := checkDailyWorkHours(hours); err != nil {
		return nil, err
	}

	start := s.today()
	if req.StartDate != nil {
		start = *req.StartDate
	}

	order, err := Resolve(req.Tasks)
	if err != nil {
		return nil, err
	}

	return Compute(order, req.Tasks, start, hours)
}

// Validate checks tasks for cycles without dating them.
func (s *Service) Validate(tasks []TaskSpec) Validation {
	order, err := Resolve(tasks)
	if err != nil {
		var cycle *CycleError
		if errors.As(err, &cycle) {
			return Validation{Valid: false, Cycle: cycle}
		}
		return Validation{Valid: false}
	}
	return Validation{Valid: true, Order: order}
}

// today returns the current UTC date at midnight.
func (s *Service) today() time.Time {
	now := s.clock().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
