package gateway

import (
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// CircuitBreakers holds one gobreaker.CircuitBreaker per upstream
// service name, opening after 5 consecutive failures and staying open
// for 60s before allowing a half-open probe request through.
type CircuitBreakers struct {
	breakers map[string]*gobreaker.CircuitBreaker
	logger   *zap.Logger
}

// NewCircuitBreakers builds one breaker per named service.
func NewCircuitBreakers(serviceNames []string, logger *zap.Logger) *CircuitBreakers {
	breakers := make(map[string]*gobreaker.CircuitBreaker, len(serviceNames))
	for _, name := range serviceNames {
		name := name
		settings := gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Interval:    0,
			Timeout:     60 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state change",
					zap.String("service", name), zap.String("from", from.String()), zap.String("to", to.String()))
			},
		}
		breakers[name] = gobreaker.NewCircuitBreaker(settings)
	}
	return &CircuitBreakers{breakers: breakers, logger: logger}
}

// Execute runs fn through the breaker for service, or runs it directly
// if no breaker is registered for that name.
func (c *CircuitBreakers) Execute(service string, fn func() (interface{}, error)) (interface{}, error) {
	b, ok := c.breakers[service]
	if !ok {
		return fn()
	}
	return b.Execute(fn)
}

// State returns the current state of service's breaker, or closed if
// none is registered.
func (c *CircuitBreakers) State(service string) gobreaker.State {
	b, ok := c.breakers[service]
	if !ok {
		return gobreaker.StateClosed
	}
	return b.State()
}
