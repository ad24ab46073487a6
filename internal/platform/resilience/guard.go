package resilience

import crerr "github.com/cockroachdb/errors"

// ErrTransient marks failures that should count against a breaker, such as
// timeouts and 5xx responses. Callers attach it with crerr.Mark.
var ErrTransient = crerr.New("transient dependency failure")

// Guard runs calls through a breaker when enabled. Non-transient failures are
// returned as-is and treated as healthy responses.
type Guard struct {
	breaker *CircuitBreaker
	enabled bool
}

func NewGuard(cfg CircuitBreakerConfig) *Guard {
	return &Guard{
		breaker: NewCircuitBreaker(cfg),
		enabled: cfg.Enabled,
	}
}

func (g *Guard) Do(fn func() error) error {
	if !g.enabled {
		return fn()
	}
	if err := g.breaker.Allow(); err != nil {
		return err
	}

	err := fn()
	if err != nil && crerr.Is(err, ErrTransient) {
		g.breaker.RecordFailure()
		return err
	}
	g.breaker.RecordSuccess()
	return err
}

func (g *Guard) State() CircuitState {
	if !g.enabled {
		return CircuitStateClosed
	}
	return g.breaker.State()
}

func (g *Guard) Snapshot() Snapshot {
	if !g.enabled {
		return Snapshot{State: CircuitStateClosed}
	}
	return g.breaker.Snapshot()
}

// OnStateChange forwards breaker transitions to hook. A disabled guard never
// transitions.
func (g *Guard) OnStateChange(hook StateHook) {
	g.breaker.OnStateChange(hook)
}
