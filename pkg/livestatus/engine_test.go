package livestatus

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/cuemby/livestatus/pkg/events"
	"github.com/cuemby/livestatus/pkg/metrics"
	"github.com/cuemby/livestatus/pkg/store"
	"github.com/cuemby/livestatus/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestEngine serves test_host_0 with test_ok_0 in state 2
func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	s := store.New()
	t.Cleanup(func() { s.Close() })

	svc := types.NewService("test_host_0", "test_ok_0")
	svc.State = 2
	svc.HasBeenChecked = true

	require.NoError(t, s.Apply(events.HostStatus{Host: types.NewHost("test_host_0")}))
	require.NoError(t, s.Apply(events.ServiceStatus{Service: svc}))
	return NewEngine(s, nil)
}

func TestHandleRequest(t *testing.T) {
	tests := []struct {
		name      string
		request   string
		want      string
		keepAlive bool
	}{
		{
			name:    "filter matches",
			request: "GET services\nColumns: host_name description state\nFilter: state = 2\n\n",
			want:    "test_host_0;test_ok_0;2\n",
		},
		{
			name:    "filter matches nothing",
			request: "GET services\nColumns: host_name description state\nFilter: state = 0\n",
			want:    "\n",
		},
		{
			name:    "unknown filter column",
			request: "GET hosts\nColumns: name state\nFilter: serialnumber = localhost\n",
			want:    "Invalid GET request, no such column 'serialnumber'\n",
		},
		{
			name:    "unknown table",
			request: "GET nosuch\n",
			want:    "Invalid GET request, no such table 'nosuch'\n",
		},
		{
			name:    "invalid filter",
			request: "GET hosts\nFilter: name\n",
			want:    "Completely invalid GET request 'invalid Filter header'\n",
		},
		{
			name:    "bad method",
			request: "PUT hosts\n",
			want:    "Invalid request method\n",
		},
		{
			name:    "fixed16",
			request: "GET services\nColumns: host_name description state\nResponseHeader: fixed16\n",
			want:    "200          24\ntest_host_0;test_ok_0;2\n",
		},
		{
			name:    "fixed16 on error",
			request: "GET nosuch\nResponseHeader: fixed16\n",
			want:    "404          44\nInvalid GET request, no such table 'nosuch'\n",
		},
		{
			name:      "keep alive",
			request:   "GET hosts\nColumns: name\nKeepAlive: on\n",
			want:      "test_host_0\n",
			keepAlive: true,
		},
		{
			name:      "keep alive survives an error",
			request:   "GET hosts\nFilter: nosuch = 1\nKeepAlive: on\n",
			want:      "Invalid GET request, no such column 'nosuch'\n",
			keepAlive: true,
		},
		{
			name:    "json",
			request: "GET services\nColumns: description state\nOutputFormat: json\n",
			want:    "[[\"test_ok_0\",2]]\n",
		},
	}

	e := newTestEngine(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, keepAlive := e.HandleRequest(tt.request)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.keepAlive, keepAlive)
		})
	}
}

func TestHandleRequestCounters(t *testing.T) {
	e := newTestEngine(t)

	e.HandleRequest("GET hosts\n")
	e.HandleRequest("GET nosuch\n")
	e.connectionOpened()

	got, _ := e.HandleRequest("GET status\nColumns: requests connections livestatus_version\n")
	assert.Equal(t, "3;1;"+Version+"\n", got)
	assert.Equal(t, int64(3), e.Requests())
	assert.Equal(t, int64(1), e.Connections())
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestHandleRequestMetrics(t *testing.T) {
	e := newTestEngine(t)

	ok := metrics.RequestsTotal.WithLabelValues("services", "200")
	missing := metrics.RequestsTotal.WithLabelValues("unknown", "404")
	okBefore := counterValue(t, ok)
	missingBefore := counterValue(t, missing)

	e.HandleRequest("GET services\nColumns: description\n")
	e.HandleRequest("GET services\nColumns: description\n")
	e.HandleRequest("GET nosuch\n")

	assert.Equal(t, okBefore+2, counterValue(t, ok))
	assert.Equal(t, missingBefore+1, counterValue(t, missing))
}

func TestHandleRequestSeesAppliedEvents(t *testing.T) {
	e := newTestEngine(t)

	require.NoError(t, e.store.Apply(events.ServiceUpdate{
		HostName:    "test_host_0",
		Description: "test_ok_0",
		Patch:       events.Fields(map[string]any{"state_id": 0}),
	}))

	got, _ := e.HandleRequest("GET services\nColumns: description\nFilter: state = 0\n")
	assert.Equal(t, "test_ok_0\n", got)
}

// problemRow is one decoded row of the consistency query below
type problemRow struct {
	isProblem bool
	impacts   []string
	sources   []string
}

func decodeProblemRows(t *testing.T, body string) map[string]problemRow {
	t.Helper()
	var raw [][]any
	require.NoError(t, json.Unmarshal([]byte(body), &raw), body)

	strs := func(v any) []string {
		var out []string
		for _, item := range v.([]any) {
			out = append(out, item.(string))
		}
		return out
	}
	rows := make(map[string]problemRow, len(raw))
	for _, r := range raw {
		rows[r[0].(string)] = problemRow{
			isProblem: r[1].(float64) == 1,
			impacts:   strs(r[2]),
			sources:   strs(r[3]),
		}
	}
	return rows
}

// TestHandleRequestConcurrentWithApply runs queries while the router of four
// hosts flaps between UP and DOWN. Every response must come from one
// consistent state: a problem and its impacts always agree.
func TestHandleRequestConcurrentWithApply(t *testing.T) {
	s := store.New()
	t.Cleanup(func() { s.Close() })

	webs := []string{"web01", "web02", "web03", "web04"}
	require.NoError(t, s.Apply(events.HostStatus{Host: types.NewHost("router")}))
	for _, name := range webs {
		h := types.NewHost(name)
		h.Parents = []string{"router"}
		require.NoError(t, s.Apply(events.HostStatus{Host: h}))
	}
	engine := NewEngine(s, nil)

	const (
		readers = 4
		queries = 200
		writes  = 400
	)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < writes; i++ {
			patch := events.Fields(map[string]any{"state_id": i % 2, "state_type_id": types.StateTypeHard})
			assert.NoError(t, s.Apply(events.HostUpdate{HostName: "router", Patch: patch}))
			if i%10 == 0 {
				h := types.NewHost(webs[i%len(webs)])
				h.Parents = []string{"router"}
				assert.NoError(t, s.Apply(events.HostStatus{Host: h}))
			}
		}
	}()

	for r := 0; r < readers; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < queries; i++ {
				body, _ := engine.HandleRequest("GET hosts\nColumns: name is_problem impacts source_problems\nOutputFormat: json\n")
				rows := decodeProblemRows(t, body)
				if !assert.Len(t, rows, 5) {
					return
				}

				router := rows["router"]
				if router.isProblem {
					assert.ElementsMatch(t, webs, router.impacts)
				} else {
					assert.Empty(t, router.impacts)
				}
				for _, name := range webs {
					if router.isProblem {
						assert.Equal(t, []string{"router"}, rows[name].sources, name)
					} else {
						assert.Empty(t, rows[name].sources, name)
					}
				}

				body, _ = engine.HandleRequest("GET hosts\nColumns: name\nFilter: is_problem = 1\n")
				assert.Contains(t, []string{"\n", "router\n"}, body)
			}
		}()
	}
	wg.Wait()
}
