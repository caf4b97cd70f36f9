package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mohammed-shakir/maply/internal/core/config"
	"github.com/mohammed-shakir/maply/internal/core/health"
	"github.com/mohammed-shakir/maply/internal/core/router"
	"github.com/mohammed-shakir/maply/pkg/maply"
)

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return errors.New("dial tcp: refused") }

func newHandler(ready map[string]health.Pinger) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rd := router.New(logger, config.Config{H3Res: 7}, maply.StaticKey("k"), nil, nil)
	return NewHandler(logger, rd, ready)
}

func TestRoutes(t *testing.T) {
	srv := httptest.NewServer(newHandler(nil))
	defer srv.Close()

	cases := []struct {
		path string
		code int
		body string
	}{
		{"/healthz", http.StatusOK, "ok"},
		{"/readyz", http.StatusOK, `"status":"ready"`},
		{"/metrics", http.StatusOK, "go_goroutines"},
		{"/maps/m/html", http.StatusOK, `<div id="m"`},
		{"/nope", http.StatusNotFound, ""},
	}
	for _, tc := range cases {
		resp, err := http.Get(srv.URL + tc.path)
		if err != nil {
			t.Fatalf("GET %s: %v", tc.path, err)
		}
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != tc.code {
			t.Fatalf("%s: status=%d want %d", tc.path, resp.StatusCode, tc.code)
		}
		if !strings.Contains(string(b), tc.body) {
			t.Fatalf("%s: body %q missing %q", tc.path, b, tc.body)
		}
		if resp.Header.Get("X-Request-ID") == "" {
			t.Fatalf("%s: missing X-Request-ID", tc.path)
		}
	}
}

func TestReadyz_RedisDown(t *testing.T) {
	rr := httptest.NewRecorder()
	newHandler(map[string]health.Pinger{"redis": downPinger{}}).
		ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d want 503", rr.Code)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, config.Config{Addr: "127.0.0.1:0"}, slog.New(slog.NewTextHandler(io.Discard, nil)), http.NotFoundHandler())
	}()
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}
