package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/10thony/CobecDev-sub005/internal/engine"
	"github.com/10thony/CobecDev-sub005/internal/engine/enginetest"
	"github.com/10thony/CobecDev-sub005/internal/metrics"
	"github.com/10thony/CobecDev-sub005/internal/models"
	"github.com/10thony/CobecDev-sub005/internal/server"
)

const testKind models.JobKind = "hunt"

// stepProc waits on release before each unit so tests control pacing.
type stepProc struct {
	total   int
	release chan struct{}
	emit    bool
}

func (p *stepProc) Kind() models.JobKind          { return testKind }
func (p *stepProc) Validate(map[string]any) error { return nil }

func (p *stepProc) Run(ctx context.Context, rt *engine.Runtime) (engine.Result, error) {
	if rt.Job().TotalUnits == 0 {
		if err := rt.SetTotal(ctx, p.total); err != nil {
			return engine.Done, err
		}
	}
	for i := rt.Job().Checkpoint; i < p.total; i++ {
		if p.release != nil {
			<-p.release
		}
		stopping, err := rt.Stopping(ctx)
		if err != nil {
			return engine.Done, err
		}
		if stopping {
			return engine.Stopped, nil
		}
		if p.emit {
			if _, err := rt.AddReviewItem(ctx, models.CandidateLead{
				Agency: "GSA",
				Title:  fmt.Sprintf("Find %d", i),
				URL:    fmt.Sprintf("https://sam.gov/opp/%d", i),
			}); err != nil {
				return engine.Done, err
			}
		}
		if err := rt.RecordUnit(ctx, models.UnitSucceeded, fmt.Sprintf("unit %d", i+1)); err != nil {
			return engine.Done, err
		}
	}
	if p.emit {
		return engine.ReviewBoundary, nil
	}
	return engine.Done, nil
}

type leadLister struct {
	leads []models.Lead
}

func (l *leadLister) ListLeads(_ context.Context, activeOnly bool) ([]models.Lead, error) {
	if !activeOnly {
		return l.leads, nil
	}
	var out []models.Lead
	for _, lead := range l.leads {
		if lead.Status == models.LeadActive {
			out = append(out, lead)
		}
	}
	return out, nil
}

func newTestServer(t *testing.T, proc engine.Processor) (*httptest.Server, *engine.Controller) {
	t.Helper()
	store := enginetest.NewStore()
	ctrl := engine.NewController(store, slog.Default(), nil)
	if proc != nil {
		ctrl.Register(proc)
	}
	srv := server.New(ctrl, &leadLister{}, metrics.NewCollector(), ":0", slog.Default())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, ctrl
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var out map[string]any
	if resp.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(&out)
	}
	return resp, out
}

func TestJobLifecycleOverHTTP(t *testing.T) {
	proc := &stepProc{total: 2}
	ts, ctrl := newTestServer(t, proc)

	resp, created := doJSON(t, http.MethodPost, ts.URL+"/api/jobs", map[string]any{"kind": "hunt"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "pending", created["status"])

	resp, started := doJSON(t, http.MethodPost, ts.URL+"/api/jobs/"+id+"/start", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "running", started["status"])

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/jobs/"+id+"/start", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	ctrl.Wait()

	resp, final := doJSON(t, http.MethodGet, ts.URL+"/api/jobs/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "completed", final["status"])
	assert.Equal(t, float64(2), final["processed_units"])

	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/api/jobs/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/jobs/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateJobValidation(t *testing.T) {
	ts, _ := newTestServer(t, &stepProc{total: 1})

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/jobs", map[string]any{"kind": "transcode"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "unknown job kind")
}

func TestReviewFlowOverHTTP(t *testing.T) {
	proc := &stepProc{total: 1, emit: true}
	ts, ctrl := newTestServer(t, proc)

	_, created := doJSON(t, http.MethodPost, ts.URL+"/api/jobs", map[string]any{"kind": "hunt"})
	id := created["id"].(string)
	doJSON(t, http.MethodPost, ts.URL+"/api/jobs/"+id+"/start", nil)
	ctrl.Wait()

	resp, job := doJSON(t, http.MethodGet, ts.URL+"/api/jobs/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "paused", job["status"])

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/jobs/"+id+"/review", nil)
	require.NoError(t, err)
	listResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer listResp.Body.Close()

	var items []map[string]any
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&items))
	require.Len(t, items, 1)
	itemID := items[0]["id"].(string)

	resp, resolved := doJSON(t, http.MethodPost, ts.URL+"/api/review/"+itemID+"/accept", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "accepted", resolved["status"])

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/review/"+itemID+"/reject", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, job = doJSON(t, http.MethodGet, ts.URL+"/api/jobs/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "completed", job["status"])
}

func TestWatchStreamsUntilTerminal(t *testing.T) {
	proc := &stepProc{total: 3, release: make(chan struct{}, 3)}
	ts, _ := newTestServer(t, proc)

	_, created := doJSON(t, http.MethodPost, ts.URL+"/api/jobs", map[string]any{"kind": "hunt"})
	id := created["id"].(string)
	doJSON(t, http.MethodPost, ts.URL+"/api/jobs/"+id+"/start", nil)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/jobs/" + id + "/watch"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	proc.release <- struct{}{}
	proc.release <- struct{}{}
	proc.release <- struct{}{}

	var last map[string]any
	for {
		var snapshot map[string]any
		if err := conn.ReadJSON(&snapshot); err != nil {
			break
		}
		last = snapshot
	}

	require.NotNil(t, last)
	assert.Equal(t, "completed", last["status"])
	assert.Equal(t, float64(3), last["processed_units"])
}

func TestMetricsEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, &stepProc{total: 1})

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStatusSummary(t *testing.T) {
	ts, _ := newTestServer(t, &stepProc{total: 1, release: make(chan struct{})})

	doJSON(t, http.MethodPost, ts.URL+"/api/jobs", map[string]any{"kind": "hunt"})
	_, second := doJSON(t, http.MethodPost, ts.URL+"/api/jobs", map[string]any{"kind": "hunt"})
	doJSON(t, http.MethodPost, ts.URL+"/api/jobs/"+second["id"].(string)+"/cancel", nil)

	resp, status := doJSON(t, http.MethodGet, ts.URL+"/api/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), status["total"])
	assert.Equal(t, float64(1), status["pending"])
	assert.Equal(t, float64(1), status["active"])
}
