package httpapi

import (
	"net/http"

	"github.com/riskibarqy/tournament-reconciler/internal/platform/logging"
)

// RouterOptions carries the optional pieces of the router.
type RouterOptions struct {
	CORSAllowedOrigins []string
	OpsToken           string
	RequestBodyMaxSize int
	// Metrics, when set, instruments every route and serves GET /metrics.
	Metrics MetricsCollector
}

// MetricsCollector is the HTTP side of the Prometheus collector.
type MetricsCollector interface {
	Handler() http.Handler
	InstrumentHandler(next http.Handler) http.Handler
}

func NewRouter(handler *Handler, logger *logging.Logger, opts RouterOptions) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, opts.Metrics)
	registerOperationRoutes(mux, handler, opts.OpsToken)
	registerAliasRoutes(mux, handler, opts.OpsToken)

	// The collector reads r.Pattern, which the mux sets on the request it is
	// handed, so it must wrap the mux directly.
	var root http.Handler = mux
	if opts.Metrics != nil {
		root = opts.Metrics.InstrumentHandler(root)
	}
	root = CaptureRequestBody(opts.RequestBodyMaxSize, recoverPanic(logger, root))
	return RequestTracing(RequestLogging(logger, CORS(opts.CORSAllowedOrigins, root)))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec, "http_path", r.URL.Path)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
