package api

import (
	"net/http"

	"github.com/Entinus-oss/howmuchtime/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// handleHealth serves GET /healthz. The endpoint doubles as the metrics
// scrape target: liveness is implied by a successful scrape of the
// custom registry.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}
