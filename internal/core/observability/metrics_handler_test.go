package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func TestMetricsHandler_Smoke(t *testing.T) {
	SetEnv("test")
	ExposeBuildInfo("test")
	ObserveHTTP("GET", "/maps/{id}", 200, 0.001)
	ObserveRender("page", nil, 3, 0.0002)
	ObserveRender("js", errors.New("boom"), 0, 0)
	IncRenderCache("lru", "hit")
	ObserveCacheOp("get", nil, 0.0001)
	IncRenderEvent("queued")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		"app_build_info",
		`http_requests_total{env="test",method="GET",route="/maps/{id}",status="200"}`,
		`maply_renders_total{part="page",result="ok"}`,
		`maply_renders_total{part="js",result="error"}`,
		`maply_render_cache_total{outcome="hit",tier="lru"}`,
		`cache_op_total{op="get",result="ok"}`,
		`maply_render_events_total{outcome="queued"}`,
		"maply_render_markers_bucket",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics payload missing %q; got:\n%s", want, body)
		}
	}
}

func TestCollectors_NotEmpty(t *testing.T) {
	if n := len(Collectors()); n != 9 {
		t.Fatalf("collectors=%d want 9", n)
	}
}
