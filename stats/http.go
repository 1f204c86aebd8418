package stats

import (
	"net/http"
	_ "net/http/pprof"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/treepedia/streetpoints/log"
)

// StartHttpPProf serves the pprof handlers and the Prometheus metrics
// (/metrics) on bind.
func StartHttpPProf(bind string) {
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Println("[error] http profile server:", http.ListenAndServe(bind, nil))
	}()
}
