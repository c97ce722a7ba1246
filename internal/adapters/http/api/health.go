package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/busyspot/pkg/metrics"
)

// HandleRoot handles GET / as a liveness banner.
func (s *Server) HandleRoot(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"status": "backend running"})
}

// HandleHealth handles GET /healthz.
func (s *Server) HandleHealth(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"status": "ok"})
}

// HandleMetrics serves the custom Prometheus registry.
func HandleMetrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
}
