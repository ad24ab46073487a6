package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/tournament-reconciler/internal/observability"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/logging"
	"github.com/riskibarqy/tournament-reconciler/internal/usecase"
)

const maxRequestBodyBytes = 4 << 20

// strictJSON rejects payload keys the request types do not declare.
var strictJSON = sonic.Config{DisallowUnknownFields: true}.Froze()

type Handler struct {
	enrichment *usecase.EnrichmentService
	social     *usecase.SocialProcessor
	links      *usecase.LinkService
	recurring  *usecase.RecurringAdminService
	operations map[string]operation
	logger     *logging.Logger
	validator  *validator.Validate
}

func NewHandler(
	enrichment *usecase.EnrichmentService,
	social *usecase.SocialProcessor,
	links *usecase.LinkService,
	recurring *usecase.RecurringAdminService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	h := &Handler{
		enrichment: enrichment,
		social:     social,
		links:      links,
		recurring:  recurring,
		logger:     logger,
		validator:  validator.New(),
	}
	h.operations = h.registerOperations()
	return h
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// Operations lists the dispatchable field names.
func (h *Handler) Operations(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Operations")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, operationNames(h.operations))
}

// Dispatch runs the operation named by the {field} path value with the JSON
// request body as its arguments.
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Dispatch")
	defer span.End()

	field := strings.TrimSpace(r.PathValue("field"))
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: read request body: %v", usecase.ErrInvalidInput, err))
		return
	}
	h.run(ctx, w, field, body)
}

func (h *Handler) run(ctx context.Context, w http.ResponseWriter, field string, body []byte) {
	ctx = withOperation(logging.WithFields(ctx, "operation", field), field)
	op, ok := h.operations[field]
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: unknown operation %q", usecase.ErrNotFound, field))
		return
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		body = []byte("{}")
	}

	var (
		out any
		err error
	)
	observability.ProfileOperation(ctx, field, func(ctx context.Context) {
		out, err = op(ctx, body)
	})
	annotateOperation(ctx, field, err)
	if err != nil {
		if isClientError(err) {
			h.logger.WarnContext(ctx, "operation rejected", "error", err)
		} else {
			h.logger.ErrorContext(ctx, "operation failed", "error", err)
		}
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}

// alias serves a REST route by rebuilding the operation arguments from the
// request and dispatching to the named field.
func (h *Handler) alias(field string, args func(r *http.Request, body map[string]any)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.Handler.Alias")
		defer span.End()

		payload := map[string]any{}
		if r.Body != nil && r.Method != http.MethodGet && r.Method != http.MethodDelete {
			raw, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes))
			if err != nil {
				writeError(ctx, w, fmt.Errorf("%w: read request body: %v", usecase.ErrInvalidInput, err))
				return
			}
			if len(strings.TrimSpace(string(raw))) > 0 {
				if err := sonic.Unmarshal(raw, &payload); err != nil {
					writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
					return
				}
			}
		}
		if args != nil {
			args(r, payload)
		}

		body, err := sonic.Marshal(payload)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: encode arguments: %v", usecase.ErrInvalidInput, err))
			return
		}
		h.run(ctx, w, field, body)
	}
}

func (h *Handler) decode(ctx context.Context, body []byte, out any) error {
	if err := strictJSON.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, out)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %w", usecase.ErrInvalidInput, err)
	}

	return nil
}
