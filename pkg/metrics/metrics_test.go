package metrics

import (
	"bytes"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRegistry(t *testing.T) {
	if Registry == nil {
		t.Error("Registry should not be nil")
	}

	if Registry != prometheus.DefaultRegisterer {
		t.Error("Registry should be the default Prometheus registerer")
	}

	if Gatherer != prometheus.DefaultGatherer {
		t.Error("Gatherer should be the default Prometheus gatherer")
	}
}

func TestWriteText(t *testing.T) {
	reg := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_requests_total",
		Help: "Total catalog API requests by resource and status",
	}, []string{"resource", "status"})
	other := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "unrelated_total",
		Help: "Not a catalog metric",
	})
	reg.MustRegister(requests, other)

	requests.WithLabelValues("/api/movies", "200").Add(3)
	other.Inc()

	var buf bytes.Buffer
	if err := WriteText(&buf, reg, Prefix); err != nil {
		t.Fatalf("WriteText() error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, `catalog_requests_total{resource="/api/movies",status="200"} 3`) {
		t.Errorf("Expected request counter in output, got %q", output)
	}
	if strings.Contains(output, "unrelated_total") {
		t.Errorf("Expected unprefixed metrics to be filtered, got %q", output)
	}
}

func TestWriteText_NoPrefix(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "b_total", Help: "b"})
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: "a_value", Help: "a"})
	reg.MustRegister(c, g)

	var buf bytes.Buffer
	if err := WriteText(&buf, reg, ""); err != nil {
		t.Fatalf("WriteText() error: %v", err)
	}

	output := buf.String()
	a, b := strings.Index(output, "a_value"), strings.Index(output, "b_total")
	if a < 0 || b < 0 || a > b {
		t.Errorf("Expected both families sorted by name, got %q", output)
	}
}
