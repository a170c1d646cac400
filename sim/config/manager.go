package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wricardo/auto-driving-car/sim/engine"
	"github.com/wricardo/auto-driving-car/sim/service"
)

var (
	ErrScenarioNotFound = errors.New("scenario not found")
	ErrInvalidScenario  = errors.New("invalid scenario")
)

const (
	// DefaultDir is the scenario directory used when none is configured
	DefaultDir = "scenarios"

	// DefaultScenarioName is the scenario preferred as default
	DefaultScenarioName = "collision"
)

// Extensions recognised as scenario files, in lookup order
var scenarioExtensions = []string{".json", ".hcl"}

// Manager handles scenario loading and caching
type Manager struct {
	scenarioDir     string
	defaultScenario *engine.Scenario
	scenarios       map[string]*engine.Scenario
	mu              sync.RWMutex
}

// NewManager creates a new scenario manager
func NewManager(scenarioDir string) (*Manager, error) {
	info, err := os.Stat(scenarioDir)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("scenario directory does not exist: %s", scenarioDir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat scenario directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scenario path is not a directory: %s", scenarioDir)
	}

	m := &Manager{
		scenarioDir: scenarioDir,
		scenarios:   make(map[string]*engine.Scenario),
	}

	m.defaultScenario = m.pickDefault()
	return m, nil
}

// Dir returns the managed directory
func (m *Manager) Dir() string {
	return m.scenarioDir
}

// LoadScenario loads a scenario by name
func (m *Manager) LoadScenario(name string) (*engine.Scenario, error) {
	id := scenarioID(name)

	m.mu.RLock()
	if sc, exists := m.scenarios[id]; exists {
		m.mu.RUnlock()
		return sc, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if sc, exists := m.scenarios[id]; exists {
		return sc, nil
	}

	path, err := m.resolve(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	sc, err := engine.DecodeScenario(path, data)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidScenario, filepath.Base(path), err)
	}

	if err := engine.ValidateScenario(sc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}

	m.scenarios[id] = sc
	return sc, nil
}

// ListScenarios returns information about all valid scenarios
func (m *Manager) ListScenarios() ([]*service.ScenarioInfo, error) {
	entries, err := os.ReadDir(m.scenarioDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var infos []*service.ScenarioInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() || !isScenarioFile(entry.Name()) {
			continue
		}

		id := scenarioID(entry.Name())
		if seen[id] {
			continue
		}

		sc, err := m.LoadScenario(id)
		if err != nil {
			// Skip invalid scenarios
			continue
		}
		seen[id] = true

		mode := service.ModeSingle
		if sc.Multi() {
			mode = service.ModeMulti
		}

		infos = append(infos, &service.ScenarioInfo{
			Filename:    entry.Name(),
			ScenarioID:  id,
			Name:        sc.Name,
			Description: sc.Description,
			Width:       sc.Width,
			Height:      sc.Height,
			Cars:        len(sc.Cars),
			Mode:        mode,
		})
	}

	return infos, nil
}

// GetDefault returns the default scenario
func (m *Manager) GetDefault() *engine.Scenario {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultScenario
}

// SetDefault sets the default scenario by name
func (m *Manager) SetDefault(name string) error {
	sc, err := m.LoadScenario(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultScenario = sc
	return nil
}

// RefreshCache drops every cached scenario and picks the default again
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.scenarios = make(map[string]*engine.Scenario)
	m.mu.Unlock()

	def := m.pickDefault()

	m.mu.Lock()
	m.defaultScenario = def
	m.mu.Unlock()
}

// SaveScenario writes a scenario to disk as JSON
func (m *Manager) SaveScenario(name string, sc *engine.Scenario) error {
	if err := engine.ValidateScenario(sc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}

	id := scenarioID(name)
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return fmt.Errorf("%w: bad scenario name %q", ErrInvalidScenario, name)
	}

	data, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scenario: %w", err)
	}

	path := filepath.Join(m.scenarioDir, id+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write scenario file: %w", err)
	}

	m.mu.Lock()
	m.scenarios[id] = sc
	m.mu.Unlock()

	return nil
}

// resolve finds the file backing a scenario name
func (m *Manager) resolve(name string) (string, error) {
	if strings.ContainsAny(name, `/\`) {
		return "", ErrScenarioNotFound
	}

	candidates := []string{name}
	if !isScenarioFile(name) {
		candidates = candidates[:0]
		for _, ext := range scenarioExtensions {
			candidates = append(candidates, name+ext)
		}
	}

	for _, candidate := range candidates {
		path := filepath.Join(m.scenarioDir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrScenarioNotFound
}

// pickDefault prefers the collision scenario, then the first valid file,
// then the built-in example
func (m *Manager) pickDefault() *engine.Scenario {
	if sc, err := m.LoadScenario(DefaultScenarioName); err == nil {
		return sc
	}

	infos, err := m.ListScenarios()
	if err == nil && len(infos) > 0 {
		if sc, err := m.LoadScenario(infos[0].ScenarioID); err == nil {
			return sc
		}
	}

	return engine.DefaultScenario()
}

func isScenarioFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, known := range scenarioExtensions {
		if ext == known {
			return true
		}
	}
	return false
}

// scenarioID strips a known extension from a file or scenario name
func scenarioID(name string) string {
	if isScenarioFile(name) {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}
