package metrics

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	StatusReady     = "ready"
	StatusNotReady  = "not_ready"
)

// CriticalComponents must all be healthy before /ready reports ready
var CriticalComponents = []string{"store", "feed", "livestatus"}

// HealthStatus is the JSON body of /health and /ready
type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components,omitempty"`
	Message    string            `json:"message,omitempty"`
	Version    string            `json:"version,omitempty"`
	Uptime     string            `json:"uptime,omitempty"`
}

// ComponentHealth is the last reported state of one component
type ComponentHealth struct {
	Name    string
	Healthy bool
	Message string
	Updated time.Time
}

// Checker tracks component health for the daemon
type Checker struct {
	mu         sync.RWMutex
	components map[string]ComponentHealth
	critical   []string
	startTime  time.Time
	version    string
}

// NewChecker creates a checker whose readiness waits on critical
func NewChecker(critical ...string) *Checker {
	return &Checker{
		components: make(map[string]ComponentHealth),
		critical:   critical,
		startTime:  time.Now(),
	}
}

var defaultChecker = NewChecker(CriticalComponents...)

// SetVersion sets the version string for health responses
func SetVersion(version string) {
	defaultChecker.SetVersion(version)
}

// RegisterComponent records the state of a component on the default checker
func RegisterComponent(name string, healthy bool, message string) {
	defaultChecker.Set(name, healthy, message)
}

// UpdateComponent is RegisterComponent for an already registered component
func UpdateComponent(name string, healthy bool, message string) {
	defaultChecker.Set(name, healthy, message)
}

// GetHealth returns the overall health of the default checker
func GetHealth() HealthStatus {
	return defaultChecker.Health()
}

// GetReadiness returns the readiness of the default checker
func GetReadiness() HealthStatus {
	return defaultChecker.Readiness()
}

// SetVersion sets the version string for health responses
func (c *Checker) SetVersion(version string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version = version
}

// Set records the state of a component
func (c *Checker) Set(name string, healthy bool, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.components[name] = ComponentHealth{
		Name:    name,
		Healthy: healthy,
		Message: message,
		Updated: time.Now(),
	}
}

// Component returns the last reported state of name
func (c *Checker) Component(name string) (ComponentHealth, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	comp, ok := c.components[name]
	return comp, ok
}

// Health reports unhealthy as soon as any registered component is
func (c *Checker) Health() HealthStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := c.status(StatusHealthy)
	for name, comp := range c.components {
		if comp.Healthy {
			status.Components[name] = StatusHealthy
			continue
		}
		status.Status = StatusUnhealthy
		status.Components[name] = "unhealthy: " + comp.Message
	}
	return status
}

// Readiness reports not_ready until every critical component is registered
// and healthy. The message names the first component, in name order, that
// is still waited on.
func (c *Checker) Readiness() HealthStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	critical := append([]string(nil), c.critical...)
	sort.Strings(critical)

	status := c.status(StatusReady)
	for _, name := range critical {
		comp, ok := c.components[name]
		switch {
		case !ok:
			status.Components[name] = "not registered"
			c.waitFor(&status, name+" initialization")
		case !comp.Healthy:
			status.Components[name] = "not ready: " + comp.Message
			c.waitFor(&status, name)
		default:
			status.Components[name] = StatusReady
		}
	}
	return status
}

func (c *Checker) waitFor(status *HealthStatus, what string) {
	if status.Status == StatusReady {
		status.Status = StatusNotReady
		status.Message = "waiting for " + what
	}
}

func (c *Checker) status(initial string) HealthStatus {
	return HealthStatus{
		Status:     initial,
		Timestamp:  time.Now(),
		Components: make(map[string]string),
		Version:    c.version,
		Uptime:     time.Since(c.startTime).String(),
	}
}

// HealthHandler serves /health from the default checker
func HealthHandler() http.HandlerFunc {
	return defaultChecker.HealthHandler()
}

// ReadyHandler serves /ready from the default checker
func ReadyHandler() http.HandlerFunc {
	return defaultChecker.ReadyHandler()
}

// LivenessHandler serves /live; it answers 200 while the process runs
func LivenessHandler() http.HandlerFunc {
	return defaultChecker.LivenessHandler()
}

// HealthHandler answers 503 while any component is unhealthy
func (c *Checker) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := c.Health()
		writeStatus(w, health, health.Status == StatusHealthy)
	}
}

// ReadyHandler answers 503 until the checker is ready
func (c *Checker) ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ready := c.Readiness()
		writeStatus(w, ready, ready.Status == StatusReady)
	}
}

// LivenessHandler answers 200 with the uptime
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c.mu.RLock()
		uptime := time.Since(c.startTime).String()
		c.mu.RUnlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "alive",
			"uptime": uptime,
		})
	}
}

func writeStatus(w http.ResponseWriter, body HealthStatus, ok bool) {
	w.Header().Set("Content-Type", "application/json")
	if ok {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(body)
}
