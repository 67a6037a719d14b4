package services

import (
  "context"
  "errors"
  "net/http"
  "net/http/httptest"
  "sync/atomic"
  "testing"
  "time"

  "github.com/dbrainio/presenton/internal/repos/testutil"
)

func newTestGenerator(t *testing.T, srv *httptest.Server, maxRetries int) *openAIGenerator {
  t.Helper()
  return &openAIGenerator{
    log:        testutil.Logger(t).With("service", "OpenAIGenerator"),
    baseURL:    srv.URL,
    apiKey:     "test-key",
    model:      "test-model",
    httpClient: srv.Client(),
    maxRetries: maxRetries,
  }
}

func TestRequestRetryStopsOnCallerCancel(t *testing.T) {
  var calls int32
  srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
    atomic.AddInt32(&calls, 1)
    w.Header().Set("Retry-After", "5")
    w.WriteHeader(http.StatusTooManyRequests)
  }))
  defer srv.Close()

  gen := newTestGenerator(t, srv, 3)
  ctx, cancel := context.WithCancel(context.Background())
  go func() {
    time.Sleep(100 * time.Millisecond)
    cancel()
  }()

  start := time.Now()
  err := gen.do(ctx, http.MethodPost, "/v1/responses", map[string]any{}, nil)
  elapsed := time.Since(start)

  if !errors.Is(err, context.Canceled) {
    t.Fatalf("expected context.Canceled, got %v", err)
  }
  if elapsed > 2*time.Second {
    t.Fatalf("retry loop ignored cancellation, took %s", elapsed)
  }
}

func TestRequestDoesNotRetryClientErrors(t *testing.T) {
  var calls int32
  srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
    atomic.AddInt32(&calls, 1)
    w.WriteHeader(http.StatusBadRequest)
  }))
  defer srv.Close()

  gen := newTestGenerator(t, srv, 3)
  err := gen.do(context.Background(), http.MethodPost, "/v1/responses", map[string]any{}, nil)

  var httpErr *openAIHTTPError
  if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusBadRequest {
    t.Fatalf("expected http 400 error, got %v", err)
  }
  if got := atomic.LoadInt32(&calls); got != 1 {
    t.Fatalf("400 must not be retried: %d calls", got)
  }
}
