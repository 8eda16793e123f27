package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passing(context.Context) error { return nil }

func failing(msg string) CheckFunc {
	return func(context.Context) error { return errors.New(msg) }
}

func serve(handler http.HandlerFunc) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func runN(c *check, n int) {
	for range n {
		c.run(context.Background())
	}
}

func TestLiveEndpoint(t *testing.T) {
	h := New()
	h.AddLivenessCheck("goroutines", time.Second, passing)
	h.AddLivenessCheck("db", time.Second, failing("connection refused"))

	w := serve(h.LiveEndpoint)
	assert.Equal(t, http.StatusOK, w.Code, "checks start healthy")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	runN(h.checks[1], FailureThreshold-1)
	assert.Equal(t, http.StatusOK, serve(h.LiveEndpoint).Code, "below threshold")

	runN(h.checks[1], 1)
	w = serve(h.LiveEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unhealthy","checks":{"db":"connection refused"}}`, w.Body.String())
}

func TestReadyEndpoint(t *testing.T) {
	h := New()
	h.AddReadinessCheck("catalog", time.Second, failing("no products available"))
	h.AddLivenessCheck("ignored", time.Second, failing("liveness only"))

	w := serve(h.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unhealthy","checks":{"_readiness":"service is not ready"}}`, w.Body.String())

	h.SetReady(true)
	assert.Equal(t, http.StatusOK, serve(h.ReadyEndpoint).Code)
	assert.True(t, h.IsReady())

	runN(h.checks[0], FailureThreshold)
	runN(h.checks[1], FailureThreshold)
	w = serve(h.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unhealthy","checks":{"catalog":"no products available"}}`, w.Body.String())
	assert.False(t, h.IsReady())

	h.SetReady(false)
	w = serve(h.ReadyEndpoint)
	assert.JSONEq(t, `{"status":"unhealthy","checks":{"_readiness":"service is not ready","catalog":"no products available"}}`, w.Body.String())
}

func TestCheckRecovers(t *testing.T) {
	var broken atomic.Bool
	broken.Store(true)
	h := New()
	h.AddReadinessCheck("flaky", time.Second, func(context.Context) error {
		if broken.Load() {
			return errors.New("down")
		}
		return nil
	})
	h.SetReady(true)

	runN(h.checks[0], FailureThreshold)
	require.False(t, h.IsReady())

	broken.Store(false)
	runN(h.checks[0], SuccessThreshold)
	assert.True(t, h.IsReady())
	assert.Nil(t, h.checks[0].lastErr.Load())
}

func TestCheckTimeout(t *testing.T) {
	h := New()
	h.AddLivenessCheck("slow", 10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	runN(h.checks[0], FailureThreshold)
	w := serve(h.LiveEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "deadline exceeded")
}

func TestStartStop(t *testing.T) {
	var runs atomic.Int32
	h := New()
	h.AddLivenessCheck("count", time.Second, func(context.Context) error {
		runs.Add(1)
		return nil
	})

	h.Start(context.Background(), 5*time.Millisecond)
	h.Start(context.Background(), 5*time.Millisecond)
	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, time.Millisecond)

	h.Stop()
	after := runs.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, runs.Load())

	h.Stop()
}

func TestConcurrentAccess(t *testing.T) {
	h := New()
	h.AddLivenessCheck("a", time.Second, passing)
	h.AddReadinessCheck("b", time.Second, failing("x"))
	h.SetReady(true)
	h.Start(context.Background(), time.Millisecond)
	defer h.Stop()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				serve(h.LiveEndpoint)
				serve(h.ReadyEndpoint)
				h.IsReady()
			}
		}()
	}
	wg.Wait()
}

func TestGoroutineCountCheck(t *testing.T) {
	require.NoError(t, GoroutineCountCheck(1_000_000)(context.Background()))
	require.ErrorContains(t, GoroutineCountCheck(0)(context.Background()), "goroutines running")
}

func TestNonEmpty(t *testing.T) {
	count := func(n int, err error) func(context.Context) (int, error) {
		return func(context.Context) (int, error) { return n, err }
	}

	require.NoError(t, NonEmpty("products", count(6, nil))(context.Background()))
	require.ErrorContains(t, NonEmpty("products", count(0, nil))(context.Background()), "no products available")
	require.ErrorContains(t, NonEmpty("products", count(0, errors.New("db down")))(context.Background()), "db down")
}
