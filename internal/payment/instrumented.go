package payment

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/checkout"
)

const instrumentationName = "github.com/Raghupremshahapuram/vedic-cart-creations/internal/payment"

// Instrumented wraps a gateway with tracing and metrics.
type Instrumented struct {
	next     checkout.Gateway
	tracer   trace.Tracer
	attempts metric.Int64Counter
	declines metric.Int64Counter
	duration metric.Float64Histogram
}

var _ checkout.Gateway = (*Instrumented)(nil)

// NewInstrumented decorates next with a span per charge, attempt and decline
// counters and a duration histogram.
func NewInstrumented(next checkout.Gateway, tp trace.TracerProvider, mp metric.MeterProvider) (*Instrumented, error) {
	meter := mp.Meter(instrumentationName)

	attempts, err := meter.Int64Counter("storefront.payment.attempts",
		metric.WithDescription("Charges submitted to the payment gateway"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "attempts counter")
	}
	declines, err := meter.Int64Counter("storefront.payment.declines",
		metric.WithDescription("Charges the payment gateway did not accept"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "declines counter")
	}
	duration, err := meter.Float64Histogram("storefront.payment.duration",
		metric.WithDescription("Time spent waiting for the payment gateway"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "duration histogram")
	}

	return &Instrumented{
		next:     next,
		tracer:   tp.Tracer(instrumentationName),
		attempts: attempts,
		declines: declines,
		duration: duration,
	}, nil
}

func (i *Instrumented) Charge(ctx context.Context, c checkout.Charge) error {
	attrs := metric.WithAttributes(attribute.String("payment.method", string(c.Method)))

	ctx, span := i.tracer.Start(ctx, "payment.Charge", trace.WithAttributes(
		attribute.String("order.reference", c.Reference),
		attribute.String("payment.method", string(c.Method)),
		attribute.String("payment.amount", c.Amount.StringFixed(2)),
	))
	defer span.End()

	start := time.Now()
	i.attempts.Add(ctx, 1, attrs)
	err := i.next.Charge(ctx, c)
	i.duration.Record(ctx, time.Since(start).Seconds(), attrs)

	if err != nil {
		i.declines.Add(ctx, 1, attrs)
		span.RecordError(err)
		span.SetStatus(codes.Error, "charge failed")
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}
