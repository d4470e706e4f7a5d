/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: monitoring_test.go
Description: Tests for the learning metrics collector and status server.
*/

package monitoring_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kleascm/akaylee-learner/pkg/monitoring"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestMetricsCollectorCounts(t *testing.T) {
	mc := monitoring.NewMetricsCollector(quietLogger())
	mc.RecordQuery(3, time.Millisecond)
	mc.RecordQuery(2, time.Millisecond)
	mc.RecordCacheHit()
	mc.RecordEquivalenceQuery(4, true)
	mc.RecordEquivalenceQuery(0, false)
	mc.RecordRound(5)

	s := mc.Snapshot()
	assert.Equal(t, int64(2), s.MembershipQueries)
	assert.Equal(t, int64(5), s.QuerySymbols)
	assert.Equal(t, int64(1), s.CacheHits)
	assert.Equal(t, int64(2), s.EquivalenceQueries)
	assert.Equal(t, int64(1), s.Counterexamples)
	assert.Equal(t, int64(1), s.Rounds)
	assert.Equal(t, int64(5), s.HypothesisStates)

	n, err := testutil.GatherAndCount(mc.Registry(), "akaylee_membership_queries_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n) // target and cache series
}

func TestMetricsCollectorStartStop(t *testing.T) {
	mc := monitoring.NewMetricsCollector(quietLogger())
	mc.SetInterval(5 * time.Millisecond)
	mc.Start(context.Background())
	mc.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	mc.Stop()
	mc.Stop()
}

func TestStatusServerRoutes(t *testing.T) {
	mc := monitoring.NewMetricsCollector(quietLogger())
	mc.RecordRound(3)
	srv := monitoring.NewStatusServer(mc, quietLogger())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/hypothesis")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	srv.SetHypothesis("digraph h {}")
	srv.SetPhase("learning")

	resp, err = http.Get(ts.URL + "/hypothesis")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "digraph h {}", string(body))

	resp, err = http.Get(ts.URL + "/status")
	require.NoError(t, err)
	var status struct {
		Phase string                   `json:"phase"`
		Stats monitoring.LearningStats `json:"stats"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	resp.Body.Close()
	assert.Equal(t, "learning", status.Phase)
	assert.Equal(t, int64(3), status.Stats.HypothesisStates)

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.True(t, strings.Contains(string(body), "akaylee_hypothesis_states 3"))
}

func TestStatusServerStartShutdown(t *testing.T) {
	srv := monitoring.NewStatusServer(monitoring.NewMetricsCollector(quietLogger()), quietLogger())
	addr, err := srv.Start("127.0.0.1:0")
	require.NoError(t, err)

	resp, err := http.Get("http://" + addr + "/status")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
}
