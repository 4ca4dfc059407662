package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/maltedev/shoplens/internal/models"
	"github.com/maltedev/shoplens/internal/persist"
)

var (
	ErrInvalidURL        = errors.New("target url must be an absolute http(s) url")
	ErrInvalidTransition = errors.New("scan cannot change to the requested status")
)

type Config struct {
	// TickInterval is how often progress advances.
	TickInterval time.Duration
	// TimeUnit scales the profile timeout into the simulated scan duration.
	TimeUnit time.Duration
}

func DefaultConfig() Config {
	return Config{
		TickInterval: 500 * time.Millisecond,
		TimeUnit:     100 * time.Millisecond,
	}
}

// Manager starts scans and drives each one from its own goroutine until it
// completes, fails or is stopped.
type Manager struct {
	scans   *persist.ScanStore
	checker Checker
	cfg     Config
	logger  *slog.Logger

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu      sync.Mutex
	running map[string]context.CancelFunc
	rng     *rand.Rand
}

func NewManager(scans *persist.ScanStore, checker Checker, cfg Config, logger *slog.Logger) *Manager {
	def := DefaultConfig()
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = def.TickInterval
	}
	if cfg.TimeUnit <= 0 {
		cfg.TimeUnit = def.TimeUnit
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		scans:   scans,
		checker: checker,
		cfg:     cfg,
		logger:  logger.With("component", "scan_manager"),
		baseCtx: ctx,
		cancel:  cancel,
		running: make(map[string]context.CancelFunc),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start records a new scanning scan and begins driving it in the background.
func (m *Manager) Start(ctx context.Context, target string, profile models.ScanProfile) (models.ScanResult, error) {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return models.ScanResult{}, ErrInvalidURL
	}
	if profile.Name == "" {
		profile = DefaultProfile()
	}

	scan := models.ScanResult{
		ID:              uuid.New().String(),
		URL:             target,
		Status:          models.ScanScanning,
		Vulnerabilities: []models.Vulnerability{},
		StartTime:       time.Now(),
		TotalPages:      profile.Depth * 10,
		Profile:         profile,
	}
	if err := m.scans.Save(ctx, scan); err != nil {
		return models.ScanResult{}, fmt.Errorf("failed to create scan: %w", err)
	}

	runCtx, cancel := context.WithCancel(m.baseCtx)
	m.mu.Lock()
	m.running[scan.ID] = cancel
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.cancelRun(scan.ID)
		m.run(runCtx, scan.ID, target, profile)
	}()

	m.logger.Info("scan started", "id", scan.ID, "url", target, "profile", profile.Name)
	return scan, nil
}

func (m *Manager) Get(ctx context.Context, id string) (models.ScanResult, error) {
	return m.scans.Get(ctx, id)
}

func (m *Manager) List(ctx context.Context) []models.ScanResult {
	return m.scans.List(ctx)
}

func (m *Manager) Pause(ctx context.Context, id string) (models.ScanResult, error) {
	return m.transition(ctx, id, models.ScanScanning, models.ScanPaused)
}

func (m *Manager) Resume(ctx context.Context, id string) (models.ScanResult, error) {
	return m.transition(ctx, id, models.ScanPaused, models.ScanScanning)
}

// Stop ends an unfinished scan as failed.
func (m *Manager) Stop(ctx context.Context, id string) (models.ScanResult, error) {
	invalid := false
	scan, err := m.scans.Update(ctx, id, func(s *models.ScanResult) {
		if s.Finished() {
			invalid = true
			return
		}
		now := time.Now()
		s.Status = models.ScanFailed
		s.EndTime = &now
		s.Error = "stopped by user"
	})
	if err != nil {
		return models.ScanResult{}, err
	}
	if invalid {
		return scan, ErrInvalidTransition
	}

	m.cancelRun(id)
	m.logger.Info("scan stopped", "id", id)
	return scan, nil
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	m.cancelRun(id)
	return m.scans.Remove(ctx, id)
}

// Clear stops every running scan and removes all scan records.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	for id, cancel := range m.running {
		cancel()
		delete(m.running, id)
	}
	m.mu.Unlock()

	if err := m.scans.Clear(ctx); err != nil {
		return err
	}
	m.logger.Info("scans cleared")
	return nil
}

// FailInterrupted marks scans left scanning or paused by a previous process as
// failed. It returns how many were changed.
func (m *Manager) FailInterrupted(ctx context.Context) (int, error) {
	count := 0
	for _, scan := range m.scans.List(ctx) {
		if scan.Finished() || m.isRunning(scan.ID) {
			continue
		}
		_, err := m.scans.Update(ctx, scan.ID, func(s *models.ScanResult) {
			now := time.Now()
			s.Status = models.ScanFailed
			s.EndTime = &now
			s.Error = "interrupted by restart"
		})
		if err != nil {
			return count, err
		}
		count++
	}
	if count > 0 {
		m.logger.Warn("marked interrupted scans as failed", "count", count)
	}
	return count, nil
}

// Shutdown stops driving all scans and waits for their goroutines.
func (m *Manager) Shutdown() {
	m.cancel()
	m.wg.Wait()
}

func (m *Manager) transition(ctx context.Context, id string, from, to models.ScanStatus) (models.ScanResult, error) {
	invalid := false
	scan, err := m.scans.Update(ctx, id, func(s *models.ScanResult) {
		if s.Status != from {
			invalid = true
			return
		}
		s.Status = to
	})
	if err != nil {
		return models.ScanResult{}, err
	}
	if invalid {
		return scan, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, scan.Status, to)
	}

	m.logger.Info("scan status changed", "id", id, "status", to)
	return scan, nil
}

func (m *Manager) run(ctx context.Context, id, target string, profile models.ScanProfile) {
	ticker := time.NewTicker(m.cfg.TickInterval)
	defer ticker.Stop()

	duration := time.Duration(profile.Timeout) * m.cfg.TimeUnit
	var active time.Duration
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		scan, err := m.scans.Get(ctx, id)
		if err != nil {
			m.logger.Warn("scan disappeared, stopping", "id", id, "error", err)
			return
		}

		now := time.Now()
		if scan.Status == models.ScanScanning {
			active += now.Sub(last)
		}
		last = now

		switch {
		case scan.Finished():
			return
		case scan.Status != models.ScanScanning:
			continue
		case active >= duration:
			if m.complete(ctx, id, target, profile) {
				return
			}
		default:
			m.advance(ctx, id)
		}
	}
}

func (m *Manager) advance(ctx context.Context, id string) {
	m.mu.Lock()
	step := m.rng.Float64() * 15
	m.mu.Unlock()

	_, err := m.scans.Update(ctx, id, func(s *models.ScanResult) {
		if s.Status != models.ScanScanning {
			return
		}
		s.Progress = math.Min(math.Round((s.Progress+step)*10)/10, 99)
		s.PagesScanned = int(s.Progress / 100 * float64(s.TotalPages))
	})
	if err != nil {
		m.logger.Error("failed to update scan progress", "id", id, "error", err)
	}
}

// complete runs the checker and records the outcome. It reports false when the
// scan was paused while checking and must keep running.
func (m *Manager) complete(ctx context.Context, id, target string, profile models.ScanProfile) bool {
	vulns, checkErr := m.checker.Check(ctx, target, profile)
	if ctx.Err() != nil {
		return true
	}

	done := true
	scan, err := m.scans.Update(ctx, id, func(s *models.ScanResult) {
		if s.Status != models.ScanScanning {
			done = s.Finished()
			return
		}
		now := time.Now()
		s.EndTime = &now
		if checkErr != nil {
			s.Status = models.ScanFailed
			s.Error = checkErr.Error()
			return
		}
		s.Status = models.ScanCompleted
		s.Vulnerabilities = vulns
		s.Progress = 100
		s.PagesScanned = s.TotalPages
	})
	if err != nil {
		m.logger.Error("failed to record scan result", "id", id, "error", err)
		return true
	}

	switch {
	case checkErr != nil:
		m.logger.Error("scan failed", "id", id, "error", checkErr)
	case scan.Status == models.ScanCompleted:
		m.logger.Info("scan completed", "id", id, "vulnerabilities", len(scan.Vulnerabilities))
	}
	return done
}

func (m *Manager) cancelRun(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cancel, ok := m.running[id]; ok {
		cancel()
		delete(m.running, id)
	}
}

func (m *Manager) isRunning(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.running[id]
	return ok
}
