package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type componentState struct {
	name    string
	healthy bool
	message string
}

func newChecker(states ...componentState) *Checker {
	c := NewChecker("store", "feed", "livestatus")
	c.SetVersion("1.0.0")
	for _, s := range states {
		c.Set(s.name, s.healthy, s.message)
	}
	return c
}

func TestCheckerHealth(t *testing.T) {
	tests := []struct {
		name       string
		states     []componentState
		wantStatus string
		wantComps  map[string]string
	}{
		{
			name:       "nothing registered",
			wantStatus: StatusHealthy,
			wantComps:  map[string]string{},
		},
		{
			name: "all healthy",
			states: []componentState{
				{"store", true, ""},
				{"livestatus", true, ""},
			},
			wantStatus: StatusHealthy,
			wantComps:  map[string]string{"store": "healthy", "livestatus": "healthy"},
		},
		{
			name: "feed down",
			states: []componentState{
				{"livestatus", true, ""},
				{"feed", false, "replay failed"},
			},
			wantStatus: StatusUnhealthy,
			wantComps:  map[string]string{"livestatus": "healthy", "feed": "unhealthy: replay failed"},
		},
		{
			name: "later update wins",
			states: []componentState{
				{"feed", false, "starting"},
				{"feed", true, "last event initial_host_status web01"},
			},
			wantStatus: StatusHealthy,
			wantComps:  map[string]string{"feed": "healthy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newChecker(tt.states...).Health()
			assert.Equal(t, tt.wantStatus, h.Status)
			assert.Equal(t, tt.wantComps, h.Components)
			assert.Equal(t, "1.0.0", h.Version)
			assert.NotEmpty(t, h.Uptime)
		})
	}
}

func TestCheckerReadiness(t *testing.T) {
	tests := []struct {
		name        string
		states      []componentState
		wantStatus  string
		wantMessage string
	}{
		{
			name: "all critical ready",
			states: []componentState{
				{"store", true, ""},
				{"feed", true, ""},
				{"livestatus", true, ""},
			},
			wantStatus: StatusReady,
		},
		{
			name: "livestatus not registered",
			states: []componentState{
				{"store", true, ""},
				{"feed", true, ""},
			},
			wantStatus:  StatusNotReady,
			wantMessage: "waiting for livestatus initialization",
		},
		{
			name: "feed starting",
			states: []componentState{
				{"store", true, ""},
				{"feed", false, "starting"},
				{"livestatus", true, ""},
			},
			wantStatus:  StatusNotReady,
			wantMessage: "waiting for feed",
		},
		{
			name: "non critical component ignored",
			states: []componentState{
				{"store", true, ""},
				{"feed", true, ""},
				{"livestatus", true, ""},
				{"archive", false, "disk full"},
			},
			wantStatus: StatusReady,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newChecker(tt.states...).Readiness()
			assert.Equal(t, tt.wantStatus, r.Status)
			assert.Equal(t, tt.wantMessage, r.Message)
			assert.Len(t, r.Components, 3)
		})
	}
}

func TestCheckerComponent(t *testing.T) {
	c := newChecker(componentState{"feed", false, "starting"})

	comp, ok := c.Component("feed")
	require.True(t, ok)
	assert.False(t, comp.Healthy)
	assert.Equal(t, "starting", comp.Message)
	assert.False(t, comp.Updated.IsZero())

	_, ok = c.Component("store")
	assert.False(t, ok)
}

func TestCheckerHandlers(t *testing.T) {
	ready := newChecker(
		componentState{"store", true, ""},
		componentState{"feed", true, ""},
		componentState{"livestatus", true, ""},
	)
	starting := newChecker(componentState{"store", false, "opening archive"})

	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantCode   int
		wantStatus string
	}{
		{"health ok", ready.HealthHandler(), http.StatusOK, StatusHealthy},
		{"health failing", starting.HealthHandler(), http.StatusServiceUnavailable, StatusUnhealthy},
		{"ready ok", ready.ReadyHandler(), http.StatusOK, StatusReady},
		{"ready waiting", starting.ReadyHandler(), http.StatusServiceUnavailable, StatusNotReady},
		{"live while starting", starting.LivenessHandler(), http.StatusOK, "alive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantStatus, body["status"])
		})
	}
}

func TestDefaultChecker(t *testing.T) {
	saved := defaultChecker
	defer func() { defaultChecker = saved }()
	defaultChecker = NewChecker(CriticalComponents...)

	SetVersion("dev")
	for _, name := range CriticalComponents {
		RegisterComponent(name, false, "starting")
	}
	assert.Equal(t, StatusNotReady, GetReadiness().Status)

	for _, name := range CriticalComponents {
		UpdateComponent(name, true, "")
	}
	assert.Equal(t, StatusReady, GetReadiness().Status)
	assert.Equal(t, StatusHealthy, GetHealth().Status)
	assert.Equal(t, "dev", GetHealth().Version)

	rec := httptest.NewRecorder()
	ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
