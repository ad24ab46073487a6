package observability

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"runtime"
	"time"

	"github.com/riskibarqy/tournament-reconciler/internal/config"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/logging"
)

const (
	mutexProfileFraction = 5
	blockProfileRateNs   = int(10 * time.Microsecond)
)

// PprofServer serves runtime profiles on their own listener, away from the
// public mux.
type PprofServer struct {
	srv    *http.Server
	addr   net.Addr
	logger *logging.Logger
}

// StartPprofServer binds cfg.PprofAddr before returning so a taken port fails
// startup. It returns nil without error when profiling is disabled.
func StartPprofServer(cfg config.Config, logger *logging.Logger) (*PprofServer, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if !cfg.PprofEnabled {
		logger.Info("pprof disabled", "reason", "PPROF_ENABLED=false")
		return nil, nil
	}

	ln, err := net.Listen("tcp", cfg.PprofAddr)
	if err != nil {
		return nil, fmt.Errorf("listen pprof %s: %w", cfg.PprofAddr, err)
	}

	// Lock contention shows up in the cache and circuit breakers.
	runtime.SetMutexProfileFraction(mutexProfileFraction)
	runtime.SetBlockProfileRate(blockProfileRateNs)

	p := &PprofServer{
		srv: &http.Server{
			Handler:           pprofMux(),
			ReadHeaderTimeout: 5 * time.Second,
		},
		addr:   ln.Addr(),
		logger: logger,
	}
	go func() {
		logger.Info("pprof server starting", "addr", p.addr.String())
		if err := p.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("pprof server failed", "error", err)
		}
	}()
	return p, nil
}

func pprofMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /debug/pprof/", pprof.Index)
	mux.HandleFunc("GET /debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("GET /debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("GET /debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("GET /debug/pprof/trace", pprof.Trace)
	return mux
}

func (p *PprofServer) Addr() string {
	if p == nil {
		return ""
	}
	return p.addr.String()
}

// Stop is a no-op on a nil server.
func (p *PprofServer) Stop(ctx context.Context) error {
	if p == nil {
		return nil
	}
	runtime.SetMutexProfileFraction(0)
	runtime.SetBlockProfileRate(0)
	if err := p.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown pprof server: %w", err)
	}
	p.logger.Info("pprof server stopped")
	return nil
}
