package health

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"youthpolicy/internal/types"
)

// --- Test Doubles ---

type fakeAlerter struct {
	configured bool
	sent       []string
	err        error
}

func (f *fakeAlerter) Configured() bool { return f.configured }

func (f *fakeAlerter) Send(ctx context.Context, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	return nil
}

type fakeSampleWriter struct {
	samples []types.HealthCheckSample
	err     error
}

func (f *fakeSampleWriter) Insert(ctx context.Context, s *types.HealthCheckSample) error {
	if f.err != nil {
		return f.err
	}
	f.samples = append(f.samples, *s)
	return nil
}

// upstreamStub serves a configurable probe response.
type upstreamStub struct {
	status atomic.Int64
	body   atomic.Value
}

func newUpstreamStub(status int, body string) (*upstreamStub, *httptest.Server) {
	stub := &upstreamStub{}
	stub.status.Store(int64(status))
	stub.body.Store(body)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(stub.status.Load()))
		fmt.Fprint(w, stub.body.Load().(string))
	}))
	return stub, srv
}

const healthyBody = `{"pageIndex":1,"totalCnt":100,"policyList":[{"bizId":"R001"}]}`

func newTestMonitor(url string, threshold int, counter FailureCounter, samples SampleWriter, alerter Alerter) *Monitor {
	return NewMonitor(MonitorConfig{
		Source:    "youthcenter",
		BaseURL:   url,
		APIKey:    types.SecretString("test-key"),
		Threshold: threshold,
		Timeout:   2 * time.Second,
		Counter:   counter,
		Samples:   samples,
		Alerter:   alerter,
	})
}

// --- Tests ---

func TestRunCheck_HealthyProbe(t *testing.T) {
	_, srv := newUpstreamStub(http.StatusOK, healthyBody)
	defer srv.Close()

	counter := NewMemoryCounter()
	samples := &fakeSampleWriter{}
	monitor := newTestMonitor(srv.URL, 3, counter, samples, &fakeAlerter{configured: true})

	result, err := monitor.RunCheck(context.Background())

	require.NoError(t, err)
	assert.True(t, result.Healthy)
	assert.Equal(t, types.HealthStateHealthy, result.State)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.False(t, result.AlertSent)

	require.Len(t, samples.samples, 1)
	assert.True(t, samples.samples[0].IsHealthy)
	assert.Nil(t, samples.samples[0].Error)
}

func TestRunCheck_AlertFiresExactlyAtThreshold(t *testing.T) {
	_, srv := newUpstreamStub(http.StatusServiceUnavailable, "down")
	defer srv.Close()

	counter := NewMemoryCounter()
	alerter := &fakeAlerter{configured: true}
	monitor := newTestMonitor(srv.URL, 3, counter, &fakeSampleWriter{}, alerter)

	// Failures 1 and 2: degraded, quiet. Failure 3: alert. Failure 4: quiet.
	var alertsSent []bool
	var states []types.HealthState
	for i := 0; i < 4; i++ {
		result, err := monitor.RunCheck(context.Background())
		require.NoError(t, err)
		assert.False(t, result.Healthy)
		alertsSent = append(alertsSent, result.AlertSent)
		states = append(states, result.State)
	}

	assert.Equal(t, []bool{false, false, true, false}, alertsSent)
	assert.Equal(t, []types.HealthState{
		types.HealthStateDegraded,
		types.HealthStateDegraded,
		types.HealthStateAlerted,
		types.HealthStateAlerted,
	}, states)
	require.Len(t, alerter.sent, 1)
	assert.Contains(t, alerter.sent[0], "3 consecutive probe failures")
}

func TestRunCheck_RecoveryResetsCounter(t *testing.T) {
	stub, srv := newUpstreamStub(http.StatusServiceUnavailable, "down")
	defer srv.Close()

	counter := NewMemoryCounter()
	alerter := &fakeAlerter{configured: true}
	monitor := newTestMonitor(srv.URL, 3, counter, &fakeSampleWriter{}, alerter)

	for i := 0; i < 2; i++ {
		_, err := monitor.RunCheck(context.Background())
		require.NoError(t, err)
	}

	stub.status.Store(http.StatusOK)
	stub.body.Store(healthyBody)
	result, err := monitor.RunCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.HealthStateHealthy, result.State)

	n, err := counter.Get(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	// A fresh incident needs a fresh run of threshold failures to alert.
	stub.status.Store(http.StatusServiceUnavailable)
	stub.body.Store("down")
	for i := 0; i < 3; i++ {
		result, err := monitor.RunCheck(context.Background())
		require.NoError(t, err)
		assert.Equal(t, i == 2, result.AlertSent, "probe %d", i+1)
	}
	assert.Len(t, alerter.sent, 1)
}

func TestRunCheck_MalformedBodyIsUnhealthy(t *testing.T) {
	_, srv := newUpstreamStub(http.StatusOK, "<html>maintenance</html>")
	defer srv.Close()

	samples := &fakeSampleWriter{}
	monitor := newTestMonitor(srv.URL, 3, NewMemoryCounter(), samples, &fakeAlerter{configured: true})

	result, err := monitor.RunCheck(context.Background())

	require.NoError(t, err)
	assert.False(t, result.Healthy)
	assert.Equal(t, types.HealthStateDegraded, result.State)
	assert.Equal(t, 1, result.ConsecutiveFailures)
	assert.Contains(t, result.Error, "malformed")

	require.Len(t, samples.samples, 1)
	assert.False(t, samples.samples[0].IsHealthy)
	require.NotNil(t, samples.samples[0].Error)
}

func TestRunCheck_TransportFailureIsUnhealthy(t *testing.T) {
	// Point at a server that is already closed.
	_, srv := newUpstreamStub(http.StatusOK, healthyBody)
	srv.Close()

	monitor := newTestMonitor(srv.URL, 3, NewMemoryCounter(), &fakeSampleWriter{}, &fakeAlerter{configured: true})

	result, err := monitor.RunCheck(context.Background())

	require.NoError(t, err)
	assert.False(t, result.Healthy)
	assert.Zero(t, result.StatusCode)
	assert.NotEmpty(t, result.Error)
}

func TestRunCheck_NoAlertEndpointIsQuiet(t *testing.T) {
	_, srv := newUpstreamStub(http.StatusServiceUnavailable, "down")
	defer srv.Close()

	alerter := &fakeAlerter{configured: false}
	monitor := newTestMonitor(srv.URL, 1, NewMemoryCounter(), &fakeSampleWriter{}, alerter)

	result, err := monitor.RunCheck(context.Background())

	require.NoError(t, err)
	assert.Equal(t, types.HealthStateAlerted, result.State)
	assert.False(t, result.AlertSent)
	assert.Empty(t, alerter.sent)
}

func TestRunCheck_AlertDeliveryFailureIsSwallowed(t *testing.T) {
	_, srv := newUpstreamStub(http.StatusServiceUnavailable, "down")
	defer srv.Close()

	alerter := &fakeAlerter{configured: true, err: fmt.Errorf("simulated webhook failure")}
	monitor := newTestMonitor(srv.URL, 1, NewMemoryCounter(), &fakeSampleWriter{}, alerter)

	result, err := monitor.RunCheck(context.Background())

	require.NoError(t, err)
	assert.Equal(t, types.HealthStateAlerted, result.State)
	assert.False(t, result.AlertSent)
}

func TestRunCheck_SampleWriteFailureIsSwallowed(t *testing.T) {
	_, srv := newUpstreamStub(http.StatusOK, healthyBody)
	defer srv.Close()

	samples := &fakeSampleWriter{err: fmt.Errorf("simulated insert failure")}
	monitor := newTestMonitor(srv.URL, 3, NewMemoryCounter(), samples, &fakeAlerter{configured: true})

	result, err := monitor.RunCheck(context.Background())

	require.NoError(t, err)
	assert.True(t, result.Healthy)
}
