// Package metrics exposes optional Prometheus counters for the compile
// pipeline: modules loaded, functions elaborated, and diamond-import
// cache hits. Exposition is entirely opt-in — nothing in this package
// runs unless the driver is given -metrics-addr, so a normal batch
// compile never opens a socket.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles every counter this compiler reports.
type Registry struct {
	reg *prometheus.Registry

	ModulesLoaded       prometheus.Counter
	FunctionsElaborated prometheus.Counter
	CacheHits           prometheus.Counter
	ElaborationErrors   prometheus.Counter
}

// NewRegistry creates and registers every counter.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{
		reg: reg,
		ModulesLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "prometh_modules_loaded_total",
			Help: "Number of source modules parsed during this compile.",
		}),
		FunctionsElaborated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "prometh_functions_elaborated_total",
			Help: "Number of function bodies elaborated to IR.",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "prometh_diamond_import_cache_hits_total",
			Help: "Number of times a module was requested but already loaded.",
		}),
		ElaborationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "prometh_elaboration_errors_total",
			Help: "Number of diagnostics raised during elaboration.",
		}),
	}
	reg.MustRegister(r.ModulesLoaded, r.FunctionsElaborated, r.CacheHits, r.ElaborationErrors)
	return r
}

// Serve starts a /metrics HTTP endpoint on addr and blocks until ctx is
// canceled or the server errors. The driver runs this in its own
// goroutine so compilation proceeds in parallel with exposition.
func (r *Registry) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
