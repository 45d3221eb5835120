package service

import (
	"context"
	"time"

	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/nikolayk812/orderflow/internal/metrics"
	"github.com/nikolayk812/orderflow/internal/port"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/nikolayk812/orderflow/internal/service"

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type usecase struct {
	name    string
	start   time.Time
	span    trace.Span
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func startUsecase(ctx context.Context, logger *zap.Logger, m *metrics.Metrics, name string, attrs ...attribute.KeyValue) (context.Context, *usecase) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "UC."+name,
		trace.WithAttributes(append(attrs, attribute.String("usecase", name))...),
	)

	return ctx, &usecase{
		name:    name,
		start:   time.Now(),
		span:    span,
		logger:  logger,
		metrics: m,
	}
}

// end records the RED metrics, closes the span and logs the outcome.
func (u *usecase) end(err error) {
	latency := time.Since(u.start)

	fields := []zap.Field{
		zap.String("usecase", u.name),
		zap.Duration("latency", latency),
	}

	if sc := u.span.SpanContext(); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}

	if err != nil {
		u.span.RecordError(err)
		u.span.SetStatus(codes.Error, err.Error())
		fields = append(fields, zap.String("outcome", metrics.OutcomeError), zap.Error(err))
	} else {
		u.span.SetStatus(codes.Ok, "")
		fields = append(fields, zap.String("outcome", metrics.OutcomeSuccess))
	}
	u.span.End()

	u.metrics.ObserveUsecase(u.name, u.start, err)
	u.logger.Info("use_case_done", fields...)
}

func publish(ctx context.Context, publisher port.EventPublisher, logger *zap.Logger, event domain.OrderEvent) {
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn("event publish failed",
			zap.String("event_type", string(event.Type)),
			zap.Stringer("order_id", event.OrderID),
			zap.Error(err),
		)
	}
}

func utcNow() time.Time {
	return time.Now().UTC()
}
