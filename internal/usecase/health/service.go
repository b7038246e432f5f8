// Package health reports whether the storage behind the library is reachable.
package health

import (
	"context"
	"slices"
	"time"
)

// Status is the aggregated health of the service.
type Status string

const (
	// Healthy means every check passed.
	Healthy Status = "ok"
	// Degraded means at least one check failed or timed out.
	Degraded Status = "degraded"
)

// CheckResult is the outcome of one named check.
type CheckResult string

const (
	CheckOK    CheckResult = "ok"
	CheckError CheckResult = "error"
)

// Report aggregates check results by name.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

type namedCheck struct {
	name string
	p    Pinger
}

// Service runs the registered checks.
type Service struct {
	checks  []namedCheck
	timeout time.Duration
}

// New creates a Service. Each check is bounded by timeout; zero means one second.
func New(timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = time.Second
	}
	return &Service{timeout: timeout}
}

// WithCheck registers p under name, replacing an earlier check of that name.
func (s *Service) WithCheck(name string, p Pinger) *Service {
	s.checks = slices.DeleteFunc(s.checks, func(c namedCheck) bool { return c.name == name })
	s.checks = append(s.checks, namedCheck{name: name, p: p})
	return s
}

// Check runs every check in registration order. A service with no checks is healthy.
func (s *Service) Check(ctx context.Context) Report {
	r := Report{Status: Healthy, Checks: make(map[string]CheckResult, len(s.checks))}
	for _, c := range s.checks {
		r.Checks[c.name] = s.run(ctx, c.p)
		if r.Checks[c.name] != CheckOK {
			r.Status = Degraded
		}
	}
	return r
}

func (s *Service) run(ctx context.Context, p Pinger) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
