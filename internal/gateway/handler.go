package gateway

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	meterdomain "github.com/smallbiznis/metr/internal/meter/domain"
	"github.com/smallbiznis/metr/internal/meter/format"
	obscontext "github.com/smallbiznis/metr/internal/observability/context"
	obslogger "github.com/smallbiznis/metr/internal/observability/logger"
	"github.com/smallbiznis/metr/internal/observability/metrics"
	"github.com/smallbiznis/metr/internal/observability/tracing"
	"github.com/smallbiznis/metr/pkg/telemetry/correlation"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	headerContentType = "content-type"
	headerRequestID   = "x-request-id"
)

// Route names used for logs, spans and metrics.
const (
	RouteList   = "list"
	RouteGet    = "get"
	RouteCreate = "create"
	RouteUpdate = "update"
	RouteDelete = "delete"
	RouteRouter = "router"
)

// LambdaFunc is the signature lambda.Start accepts for HTTP API events.
type LambdaFunc func(context.Context, events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)

type Params struct {
	fx.In

	Service     meterdomain.Service
	Log         *zap.Logger
	HTTPMetrics *metrics.HTTPMetrics `optional:"true"`
}

// Handler serves meter requests delivered as API Gateway HTTP API events.
// Failures never escape as Go errors; each one is rendered as a response.
type Handler struct {
	svc     meterdomain.Service
	log     *zap.Logger
	metrics *metrics.HTTPMetrics
	tracer  trace.Tracer
}

func NewHandler(p Params) *Handler {
	return &Handler{
		svc:     p.Service,
		log:     p.Log.Named("gateway"),
		metrics: p.HTTPMetrics,
		tracer:  otel.Tracer("metr/gateway"),
	}
}

// outcome is what an operation produced: a status and an optional body.
type outcome struct {
	status int
	body   any
}

type operation func(ctx context.Context, r request) (outcome, error)

func (h *Handler) ListMeters(ctx context.Context, ev events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return h.serve(ctx, RouteList, ev, func(ctx context.Context, r request) (outcome, error) {
		req, err := decodeList(r)
		if err != nil {
			return outcome{}, err
		}
		resp, err := h.svc.List(ctx, req)
		if err != nil {
			return outcome{}, err
		}
		return outcome{status: http.StatusOK, body: resp}, nil
	})
}

func (h *Handler) GetMeter(ctx context.Context, ev events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return h.serve(ctx, RouteGet, ev, func(ctx context.Context, r request) (outcome, error) {
		id, err := r.meterID()
		if err != nil {
			return outcome{}, err
		}
		resp, err := h.svc.GetByID(ctx, id)
		if err != nil {
			return outcome{}, err
		}
		return outcome{status: http.StatusOK, body: resp}, nil
	})
}

func (h *Handler) CreateMeter(ctx context.Context, ev events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return h.serve(ctx, RouteCreate, ev, func(ctx context.Context, r request) (outcome, error) {
		req, err := decodeCreate(r)
		if err != nil {
			return outcome{}, err
		}
		resp, err := h.svc.Create(ctx, req)
		if err != nil {
			return outcome{}, err
		}
		return outcome{status: http.StatusCreated, body: resp}, nil
	})
}

func (h *Handler) UpdateMeter(ctx context.Context, ev events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return h.serve(ctx, RouteUpdate, ev, func(ctx context.Context, r request) (outcome, error) {
		id, err := r.meterID()
		if err != nil {
			return outcome{}, err
		}
		req, err := decodeUpdate(r, id)
		if err != nil {
			return outcome{}, err
		}
		resp, err := h.svc.Update(ctx, req)
		if err != nil {
			return outcome{}, err
		}
		return outcome{status: http.StatusOK, body: resp}, nil
	})
}

func (h *Handler) DeleteMeter(ctx context.Context, ev events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return h.serve(ctx, RouteDelete, ev, func(ctx context.Context, r request) (outcome, error) {
		id, err := r.meterID()
		if err != nil {
			return outcome{}, err
		}
		if err := h.svc.Delete(ctx, id); err != nil {
			return outcome{}, err
		}
		return outcome{status: http.StatusNoContent}, nil
	})
}

// Route dispatches on method and path so one function can sit behind a
// catch-all integration.
func (h *Handler) Route(ctx context.Context, ev events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	r := newRequest(ev)
	_, id, ok := splitMeterPath(r.rawPath)
	if !ok {
		return h.serve(ctx, RouteRouter, ev, reject(http.StatusNotFound))
	}

	if id == "" {
		switch r.method {
		case http.MethodGet:
			return h.ListMeters(ctx, ev)
		case http.MethodPost:
			return h.CreateMeter(ctx, ev)
		}
		return h.serve(ctx, RouteRouter, ev, reject(http.StatusMethodNotAllowed))
	}

	if ev.PathParameters == nil || ev.PathParameters[pathParamMeterID] == "" {
		params := make(map[string]string, len(ev.PathParameters)+1)
		for k, v := range ev.PathParameters {
			params[k] = v
		}
		params[pathParamMeterID] = id
		ev.PathParameters = params
	}
	switch r.method {
	case http.MethodGet:
		return h.GetMeter(ctx, ev)
	case http.MethodPut:
		return h.UpdateMeter(ctx, ev)
	case http.MethodDelete:
		return h.DeleteMeter(ctx, ev)
	}
	return h.serve(ctx, RouteRouter, ev, reject(http.StatusMethodNotAllowed))
}

// Func returns the handler for a route name, defaulting to the router.
func (h *Handler) Func(route string) LambdaFunc {
	switch strings.ToLower(strings.TrimSpace(route)) {
	case RouteList:
		return h.ListMeters
	case RouteGet:
		return h.GetMeter
	case RouteCreate:
		return h.CreateMeter
	case RouteUpdate:
		return h.UpdateMeter
	case RouteDelete:
		return h.DeleteMeter
	default:
		return h.Route
	}
}

func reject(status int) operation {
	return func(context.Context, request) (outcome, error) {
		return outcome{}, &routeError{status: status}
	}
}

func (h *Handler) serve(ctx context.Context, route string, ev events.APIGatewayV2HTTPRequest, op operation) (events.APIGatewayV2HTTPResponse, error) {
	start := time.Now()
	r := newRequest(ev)

	requestID := r.requestID
	if requestID == "" {
		requestID = r.header(headerRequestID)
	}
	ctx = correlation.ContextWithCorrelationID(ctx, requestID)
	ctx, requestID = correlation.EnsureCorrelationID(ctx)
	ctx = obscontext.WithRequestID(ctx, requestID)
	ctx = obscontext.WithRoute(ctx, route)

	ctx = tracing.ExtractContext(ctx, tracing.MapCarrier(r.headers))
	ctx, span := h.tracer.Start(ctx, "meters."+route, trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()

	resp, opErr := h.execute(ctx, r, op)
	resp.Headers[headerRequestID] = requestID

	span.SetAttributes(tracing.SafeAttributes(
		attribute.String("http.method", r.method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", resp.StatusCode),
		attribute.String("request_id", requestID),
	)...)
	if resp.StatusCode >= http.StatusInternalServerError {
		span.RecordError(tracing.SafeError(opErr))
		span.SetStatus(codes.Error, "request error")
	}

	elapsed := time.Since(start)
	h.metrics.Observe(route, r.method, resp.StatusCode, elapsed)
	h.logRequest(ctx, r, resp.StatusCode, elapsed, opErr)

	return resp, nil
}

func (h *Handler) execute(ctx context.Context, r request, op operation) (resp events.APIGatewayV2HTTPResponse, opErr error) {
	defer func() {
		if rec := recover(); rec != nil {
			obslogger.WithContext(ctx, h.log).Error("handler panic", zap.Any("panic", rec), zap.Stack("stack"))
			opErr = &panicError{value: rec}
			resp = h.errorResponse(opErr)
		}
	}()

	out, err := op(ctx, r)
	if err != nil {
		return h.errorResponse(err), err
	}
	if out.status == http.StatusNoContent || out.body == nil {
		return events.APIGatewayV2HTTPResponse{
			StatusCode: out.status,
			Headers:    map[string]string{},
		}, nil
	}

	doc, err := format.Render(r.header("accept"), out.body)
	if err != nil {
		return h.errorResponse(err), err
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: out.status,
		Headers:    map[string]string{headerContentType: doc.ContentType},
		Body:       doc.Body,
	}, nil
}

// errorResponse renders err as a JSON envelope regardless of Accept.
func (h *Handler) errorResponse(err error) events.APIGatewayV2HTTPResponse {
	status, body := mapError(err)
	doc, renderErr := format.Render(format.JSON, body)
	if renderErr != nil {
		status = http.StatusInternalServerError
		doc = format.Document{
			ContentType: format.JSON,
			Body:        `{"error":"Internal Server Error","message":"internal server error","status_code":500}`,
		}
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{headerContentType: doc.ContentType},
		Body:       doc.Body,
	}
}

func (h *Handler) logRequest(ctx context.Context, r request, status int, elapsed time.Duration, err error) {
	log := obslogger.WithContext(ctx, h.log)
	fields := []zap.Field{
		zap.String("method", r.method),
		zap.String("path", r.rawPath),
		zap.Int("status", status),
		zap.Int64("duration_ms", elapsed.Milliseconds()),
	}
	switch {
	case status >= http.StatusInternalServerError:
		log.Error("gateway_request", append(fields, zap.Error(err))...)
	case err != nil:
		log.Info("gateway_request", append(fields, zap.String("reason", err.Error()))...)
	default:
		log.Info("gateway_request", fields...)
	}
}

type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return "handler panic"
}
