// Package rpc is the JSON-over-HTTP transport shared by the downstream save and
// aggregation clients.
package rpc

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/tournament-reconciler/internal/platform/logging"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/resilience"
)

const (
	defaultTimeout  = 10 * time.Second
	maxLoggedBody   = 4096
	maxErrorBodyLen = 4096
)

type Config struct {
	BaseURL        string
	Token          string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	name    string
	http    *fasthttp.Client
	timeout time.Duration
	baseURL string
	token   string
	guard   *resilience.Guard
	logger  *logging.Logger
}

// New validates the base URL up front so a misconfigured dependency fails at
// startup rather than on the first call.
func New(name string, cfg Config, logger *logging.Logger) (*Client, error) {
	baseURL, err := validateHTTPBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, crerr.Wrapf(err, "invalid %s base url", name)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}

	c := &Client{
		name: name,
		http: &fasthttp.Client{
			Name:         "tournament-reconciler/" + name,
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		timeout: timeout,
		baseURL: baseURL,
		token:   strings.TrimSpace(cfg.Token),
		guard:   resilience.NewGuard(cfg.CircuitBreaker),
		logger:  logger,
	}
	c.guard.OnStateChange(func(from, to resilience.CircuitState) {
		c.logger.Warn("rpc circuit state changed", "dependency", name, "from", from, "to", to)
	})
	return c, nil
}

func (c *Client) Name() string {
	return c.name
}

func (c *Client) CircuitState() resilience.CircuitState {
	return c.guard.State()
}

func (c *Client) Circuit() resilience.Snapshot {
	return c.guard.Snapshot()
}

// PostJSON sends payload and decodes a 2xx response into out (which may be nil).
func (c *Client) PostJSON(ctx context.Context, path string, payload, out any) error {
	err := c.guard.Do(func() error {
		return c.post(ctx, path, payload, out)
	})
	if crerr.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "rpc circuit breaker rejected request", "dependency", c.name, "state", c.guard.State())
		return crerr.Wrapf(err, "%s is temporarily unavailable", c.name)
	}
	return err
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	target := c.baseURL + "/" + strings.TrimLeft(strings.TrimSpace(path), "/")

	body, err := sonic.Marshal(payload)
	if err != nil {
		return crerr.Wrapf(err, "marshal %s payload", c.name)
	}
	bodyText := truncateForLog(string(body), maxLoggedBody)
	preview := buildCurlPreview(target, bodyText, c.token != "")

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("rpc.dependency", c.name),
			attribute.String("rpc.url", target),
			attribute.String("rpc.request_body", bodyText),
		)
	}
	c.logger.DebugContext(ctx, "rpc request", "dependency", c.name, "url", target, "curl_preview", preview)

	if err := ctx.Err(); err != nil {
		return crerr.Wrapf(err, "call %s", c.name)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(target)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.SetBodyRaw(body)

	if err := c.http.DoDeadline(req, resp, c.deadline(ctx)); err != nil {
		return crerr.Mark(crerr.Wrapf(err, "call %s url=%s", c.name, target), resilience.ErrTransient)
	}

	statusCode := resp.StatusCode()
	if statusCode/100 != 2 {
		raw := resp.Body()
		if len(raw) > maxErrorBodyLen {
			raw = raw[:maxErrorBodyLen]
		}
		callErr := crerr.Newf("call %s status=%d url=%s body=%s", c.name, statusCode, target, strings.TrimSpace(string(raw)))
		if isRetryableStatus(statusCode) {
			return crerr.Mark(callErr, resilience.ErrTransient)
		}
		return callErr
	}

	if out == nil {
		return nil
	}
	if err := sonic.ConfigStd.Unmarshal(resp.Body(), out); err != nil {
		return crerr.Wrapf(err, "decode %s response", c.name)
	}
	return nil
}

// deadline is the client timeout, shortened to the context deadline when that
// comes first.
func (c *Client) deadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		return ctxDeadline
	}
	return deadline
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}

func buildCurlPreview(target, body string, withToken bool) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("curl -X POST ")
	_, _ = buf.WriteString(shellQuote(target))
	_, _ = buf.WriteString(" -H ")
	_, _ = buf.WriteString(shellQuote("Content-Type: application/json"))
	if withToken {
		_, _ = buf.WriteString(" -H ")
		_, _ = buf.WriteString(shellQuote("Authorization: Bearer ***"))
	}
	_, _ = buf.WriteString(" -d ")
	_, _ = buf.WriteString(shellQuote(body))

	return buf.String()
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "'\"'\"'") + "'"
}

func truncateForLog(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}
	return value[:max] + "...(truncated)"
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == fasthttp.StatusRequestTimeout ||
		statusCode == fasthttp.StatusTooManyRequests ||
		statusCode >= fasthttp.StatusInternalServerError
}

