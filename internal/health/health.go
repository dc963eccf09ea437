// Package health aggregates readiness checks of the bot's dependencies.
package health

import (
	"context"
	"fmt"
)

// Checker represents a dependency health check.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

type Service struct {
	checkers []Checker
}

func NewService(checkers ...Checker) *Service {
	return &Service{checkers: checkers}
}

// Ready returns the first failing check.
func (s *Service) Ready(ctx context.Context) error {
	for _, ch := range s.checkers {
		if err := ch.Check(ctx); err != nil {
			return fmt.Errorf("%s: %w", ch.Name(), err)
		}
	}
	return nil
}

// Pinger is anything with a connectivity check, such as the filter store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type pingChecker struct {
	name   string
	pinger Pinger
}

// PingChecker wraps a Pinger as a named Checker.
func PingChecker(name string, p Pinger) Checker {
	return pingChecker{name: name, pinger: p}
}

func (c pingChecker) Name() string { return c.name }

func (c pingChecker) Check(ctx context.Context) error { return c.pinger.Ping(ctx) }
