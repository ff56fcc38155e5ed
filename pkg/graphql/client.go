// Package graphql is a small GraphQL-over-HTTP client built on the shared
// httpclient stack: retries for queries, a circuit breaker, a client-side
// rate limit and OpenTelemetry client spans.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vektah/gqlparser/v2/ast"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/limosnd/Marketplace-go-grahpql/pkg/httpclient"
	"github.com/limosnd/Marketplace-go-grahpql/pkg/logger"
)

const tracerName = "github.com/limosnd/Marketplace-go-grahpql/pkg/graphql"

// ErrGraphQL is wrapped by every *Error.
var ErrGraphQL = errors.New("graphql error")

var operationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "graphql_client_operation_duration_seconds",
		Help:    "Duration of GraphQL operations sent to the backend",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"operation", "outcome"},
)

// Request is the JSON body of a GraphQL HTTP request.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// ErrorItem is one entry of a response's errors list.
type ErrorItem struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Error is returned when the server answered with a non-empty errors list.
type Error struct {
	Operation string
	Errors    []ErrorItem
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, item := range e.Errors {
		msgs = append(msgs, item.Message)
	}
	return fmt.Sprintf("graphql %s: %s", e.Operation, strings.Join(msgs, "; "))
}

func (e *Error) Unwrap() error { return ErrGraphQL }

// Message returns the first error message, the one a user should see.
func (e *Error) Message() string {
	if len(e.Errors) == 0 {
		return ""
	}
	return e.Errors[0].Message
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []ErrorItem     `json:"errors"`
}

// Config configures a Client.
type Config struct {
	Endpoint   string
	Name       string
	Timeout    time.Duration
	MaxRetries int
	// RetryWaitMin and RetryWaitMax bound the query retry backoff; zero keeps
	// the httpclient defaults.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// RateLimit is the sustained requests per second; 0 disables limiting.
	RateLimit float64
	Burst     int
}

// Option customises a Client.
type Option func(*Client)

// WithDoer replaces the transport used for queries, and for mutations
// unless WithMutationDoer is also given.
func WithDoer(d httpclient.Doer) Option {
	return func(c *Client) {
		c.queries = d
		c.mutations = d
	}
}

// WithMutationDoer replaces the transport used for mutations.
func WithMutationDoer(d httpclient.Doer) Option {
	return func(c *Client) { c.mutations = d }
}

// Client executes GraphQL documents against a single endpoint.
type Client struct {
	endpoint  string
	name      string
	queries   httpclient.Doer
	mutations httpclient.Doer
	limiter   *rate.Limiter
	tracer    trace.Tracer
	logger    *slog.Logger
}

// New builds a Client. Queries are retried on network errors and 5xx;
// mutations are sent once, since a retry could apply them twice.
func New(cfg Config, log *slog.Logger, opts ...Option) *Client {
	if cfg.Name == "" {
		cfg.Name = "graphql"
	}

	httpCfg := httpclient.DefaultConfig()
	if cfg.Timeout > 0 {
		httpCfg.Timeout = cfg.Timeout
	}
	httpCfg.MaxRetries = cfg.MaxRetries
	if cfg.RetryWaitMin > 0 {
		httpCfg.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		httpCfg.RetryWaitMax = cfg.RetryWaitMax
	}
	base := httpclient.New(httpCfg)

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = int(cfg.RateLimit) + 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	c := &Client{
		endpoint:  cfg.Endpoint,
		name:      cfg.Name,
		queries:   httpclient.NewCircuitBreakerClient(base, httpclient.DefaultCircuitBreakerConfig(cfg.Name), log),
		mutations: httpclient.NewCircuitBreakerClient(base.WithoutRetries(), httpclient.DefaultCircuitBreakerConfig(cfg.Name+"-mutations"), log),
		limiter:   limiter,
		tracer:    otel.Tracer(tracerName),
		logger:    logger.Component(log, "graphql"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute runs a pre-parsed document and decodes its data into out.
func (c *Client) Execute(ctx context.Context, doc *Document, vars map[string]any, out any) error {
	return c.do(ctx, doc.Request(vars), doc.Operation, out)
}

// Do runs an ad-hoc request. The query is parsed to decide whether it is a
// mutation.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	doc, err := Parse(req.Query)
	if err != nil {
		return err
	}
	if req.OperationName == "" {
		req.OperationName = doc.Name
	}
	return c.do(ctx, req, doc.Operation, out)
}

func (c *Client) do(ctx context.Context, req Request, op ast.Operation, out any) (err error) {
	name := req.OperationName
	if name == "" {
		name = "anonymous"
	}

	ctx, span := c.tracer.Start(ctx, "graphql "+name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("graphql.operation.name", name),
			attribute.String("graphql.operation.type", string(op)),
			attribute.String("server.address", c.endpoint),
		),
	)
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		operationDuration.WithLabelValues(name, outcome).Observe(time.Since(start).Seconds())
		span.End()
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("graphql %s: rate limit: %w", name, err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("graphql %s: encode request: %w", name, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("graphql %s: create request: %w", name, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		httpReq.Header.Set("X-Correlation-ID", id)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	doer := c.queries
	if op == ast.Mutation {
		doer = c.mutations
	}

	resp, err := doer.Do(ctx, httpReq)
	if err != nil {
		return fmt.Errorf("graphql %s: %w", name, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("graphql %s: %w", name, httpclient.ParseResponseError(resp, c.name))
	}
	defer func() { _ = resp.Body.Close() }()

	var envelope response
	if err := json.NewDecoder(io.LimitReader(resp.Body, 16<<20)).Decode(&envelope); err != nil {
		return fmt.Errorf("graphql %s: decode response: %w", name, err)
	}
	if len(envelope.Errors) > 0 {
		c.logger.WarnContext(ctx, "graphql operation returned errors",
			slog.String("operation", name),
			slog.Int("count", len(envelope.Errors)),
			slog.String("first", envelope.Errors[0].Message),
		)
		return &Error{Operation: name, Errors: envelope.Errors}
	}
	if out == nil || len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("graphql %s: decode data: %w", name, err)
	}
	return nil
}
