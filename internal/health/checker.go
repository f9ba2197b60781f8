package health

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Status represents the health status of a component.
type Status string

const (
	StatusOK       Status = "ok"
	StatusDegraded Status = "degraded"
	StatusDown     Status = "down"
)

// DefaultCheckTimeout bounds a single checker run.
const DefaultCheckTimeout = 5 * time.Second

// Check represents a health check result.
type Check struct {
	Name        string        `json:"name"`
	Status      Status        `json:"status"`
	Message     string        `json:"message,omitempty"`
	Optional    bool          `json:"optional,omitempty"`
	LastChecked time.Time     `json:"last_checked"`
	Duration    time.Duration `json:"-"`
	DurationMS  float64       `json:"duration_ms"`
}

// Checker is the interface that health checkers must implement.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

type registration struct {
	checker  Checker
	optional bool
}

// Manager manages health checks.
type Manager struct {
	checkers []registration
	results  map[string]*Check
	timeout  time.Duration
	mu       sync.RWMutex
	logger   *logrus.Logger
}

// NewManager creates a new health check manager.
func NewManager(logger *logrus.Logger) *Manager {
	return &Manager{
		results: make(map[string]*Check),
		timeout: DefaultCheckTimeout,
		logger:  logger,
	}
}

// Register adds a checker whose failure takes the service down.
func (m *Manager) Register(checker Checker) {
	m.register(checker, false)
}

// RegisterOptional adds a checker whose failure only degrades the service.
func (m *Manager) RegisterOptional(checker Checker) {
	m.register(checker, true)
}

func (m *Manager) register(checker Checker, optional bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkers = append(m.checkers, registration{checker: checker, optional: optional})
	m.logger.WithFields(logrus.Fields{
		"checker":  checker.Name(),
		"optional": optional,
	}).Debug("Registered health checker")
}

// RunChecks executes all registered health checks concurrently.
func (m *Manager) RunChecks(ctx context.Context) map[string]*Check {
	m.mu.RLock()
	checkers := make([]registration, len(m.checkers))
	copy(checkers, m.checkers)
	m.mu.RUnlock()

	var wg sync.WaitGroup
	resultsChan := make(chan *Check, len(checkers))

	for _, reg := range checkers {
		wg.Add(1)
		go func(reg registration) {
			defer wg.Done()
			resultsChan <- m.run(ctx, reg)
		}(reg)
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	results := make(map[string]*Check, len(checkers))
	for check := range resultsChan {
		results[check.Name] = check
		m.mu.Lock()
		m.results[check.Name] = check
		m.mu.Unlock()
	}

	return results
}

func (m *Manager) run(ctx context.Context, reg registration) *Check {
	checkCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	start := time.Now()
	err := reg.checker.Check(checkCtx)
	duration := time.Since(start)

	check := &Check{
		Name:        reg.checker.Name(),
		Optional:    reg.optional,
		Status:      StatusOK,
		LastChecked: time.Now(),
		Duration:    duration,
		DurationMS:  float64(duration.Milliseconds()),
	}

	log := m.logger.WithFields(logrus.Fields{
		"checker":  check.Name,
		"duration": duration,
	})

	if err == nil {
		log.Debug("Health check passed")
		return check
	}

	check.Status = StatusDown
	if reg.optional {
		check.Status = StatusDegraded
	}
	check.Message = err.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		check.Message = "Health check timed out"
	}
	log.WithError(err).Error("Health check failed")
	return check
}

// GetResults returns copies of the latest health check results.
func (m *Manager) GetResults() map[string]*Check {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make(map[string]*Check, len(m.results))
	for k, v := range m.results {
		checkCopy := *v
		results[k] = &checkCopy
	}
	return results
}

// GetOverallStatus returns the overall system health status. Before any
// check has run the status is down.
func (m *Manager) GetOverallStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.results) == 0 {
		return StatusDown
	}

	overall := StatusOK
	for _, check := range m.results {
		switch check.Status {
		case StatusDown:
			return StatusDown
		case StatusDegraded:
			overall = StatusDegraded
		}
	}
	return overall
}

// StartPeriodicChecks runs health checks every interval until ctx is done.
func (m *Manager) StartPeriodicChecks(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.RunChecks(ctx)

	for {
		select {
		case <-ticker.C:
			m.RunChecks(ctx)
		case <-ctx.Done():
			m.logger.Info("Stopping periodic health checks")
			return
		}
	}
}
