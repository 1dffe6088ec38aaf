package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestHandlerServesExposition(t *testing.T) {
	m := newTestAppMetrics(t)
	mustNoErr(t, m.SetItemsInCart("42", 5))
	mustNoErr(t, m.ObserveRequest("GET", "/", 200, 0))

	rr := httptest.NewRecorder()
	Handler(m.Registry).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain; version=0.0.4") {
		t.Errorf("Unexpected content type %q", ct)
	}

	body := rr.Body.String()
	for _, want := range []string{
		"# TYPE http_requests_total counter",
		`http_requests_total{method="GET",route="/",status_code="200"} 1`,
		"# TYPE http_request_duration_seconds histogram",
		"active_connections 0",
		`items_in_cart{user_id="42"} 5`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected body to contain %q:\n%s", want, body)
		}
	}

	// promhttp must keep registration order
	if strings.Index(body, "http_requests_total") > strings.Index(body, "active_connections") {
		t.Errorf("Families not in registration order:\n%s", body)
	}
}

func TestHandlerReturns500OnGatherFailure(t *testing.T) {
	failing := prometheus.GathererFunc(func() ([]*dto.MetricFamily, error) {
		return nil, fmt.Errorf("%w: histogram h bucket le=1 is not cumulative", ErrRenderFailure)
	})

	rr := httptest.NewRecorder()
	Handler(failing).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "not cumulative") {
		t.Errorf("Expected error detail in body, got %q", rr.Body.String())
	}
}

func TestHandlerServesEmptyFamiliesBeforeTraffic(t *testing.T) {
	m := newTestAppMetrics(t)

	rr := httptest.NewRecorder()
	Handler(m.Registry).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var want bytes.Buffer
	mustNoErr(t, m.Registry.Render(&want))
	if rr.Body.String() != want.String() {
		t.Errorf("Handler body differs from Render.\nGot:\n%s\nWant:\n%s", rr.Body.String(), want.String())
	}

	for _, name := range []string{"http_requests_total", "http_request_duration_seconds", "items_in_cart"} {
		if !strings.Contains(rr.Body.String(), "# TYPE "+name+" ") {
			t.Errorf("Missing TYPE line for %s:\n%s", name, rr.Body.String())
		}
	}
}

func TestHandlerServesProtobufOnRequest(t *testing.T) {
	m := newTestAppMetrics(t)
	mustNoErr(t, m.ObserveRequest("GET", "/", 200, 0))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Accept", "application/vnd.google.protobuf;proto=io.prometheus.client.MetricFamily;encoding=delimited")
	rr := httptest.NewRecorder()
	Handler(m.Registry).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/vnd.google.protobuf") {
		t.Errorf("Expected protobuf content type, got %q", ct)
	}
}
