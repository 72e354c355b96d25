// Package repository handles all interactions with the database.
//
// It contains the SQL queries (built with squirrel, executed through sqlx)
// and the methods to fetch, persist, update or delete data, abstracting
// SQL logic away from the service layer. Every query is traced and
// counted with OpenTelemetry, and slow or failing queries are logged.
package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/deppfellow/user-service/internal/repository"

// DefaultSlowQueryThreshold applies when no threshold is configured.
const DefaultSlowQueryThreshold = 100 * time.Millisecond

// statementBuilder picks the placeholder format matching the sqlx driver:
// $1 for postgres/pgx, ? for sqlite.
func statementBuilder(db *sqlx.DB) sq.StatementBuilderType {
	if sqlx.BindType(db.DriverName()) == sqlx.DOLLAR {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

type queryMetrics struct {
	count    metric.Int64Counter
	duration metric.Float64Histogram
	errors   metric.Int64Counter
}

func newQueryMetrics(meter metric.Meter) *queryMetrics {
	count, _ := meter.Int64Counter("users.db.query.count",
		metric.WithDescription("Total number of SQL queries executed"),
		metric.WithUnit("{query}"),
	)

	duration, _ := meter.Float64Histogram("users.db.query.duration",
		metric.WithDescription("Query execution duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000),
	)

	errs, _ := meter.Int64Counter("users.db.query.errors",
		metric.WithDescription("Total number of query errors"),
		metric.WithUnit("{error}"),
	)

	return &queryMetrics{count: count, duration: duration, errors: errs}
}

// queryObserver wraps each repository operation in a span, records
// metrics and logs failures and slow queries.
type queryObserver struct {
	system        string
	tracer        trace.Tracer
	metrics       *queryMetrics
	logger        *zerolog.Logger
	slowThreshold time.Duration
}

func newQueryObserver(system string, logger *zerolog.Logger, slowThreshold time.Duration) *queryObserver {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if slowThreshold <= 0 {
		slowThreshold = DefaultSlowQueryThreshold
	}

	return &queryObserver{
		system:        system,
		tracer:        otel.Tracer(instrumentationName),
		metrics:       newQueryMetrics(otel.Meter(instrumentationName)),
		logger:        logger,
		slowThreshold: slowThreshold,
	}
}

// observe starts a span for operation and returns the context to run the
// query with plus a finish func to call with the query's error.
func (o *queryObserver) observe(ctx context.Context, operation string) (context.Context, func(error)) {
	attrs := []attribute.KeyValue{
		attribute.String("db.operation", operation),
		attribute.String("db.system", o.system),
	}

	ctx, span := o.tracer.Start(ctx, "users."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	start := time.Now()

	return ctx, func(err error) {
		elapsed := time.Since(start)
		defer span.End()

		metricAttrs := metric.WithAttributes(attrs...)
		o.metrics.count.Add(ctx, 1, metricAttrs)
		o.metrics.duration.Record(ctx, durationMillis(elapsed), metricAttrs)

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			o.metrics.errors.Add(ctx, 1, metricAttrs)

			o.logger.Error().
				Err(err).
				Str("operation", operation).
				Dur("duration", elapsed).
				Msg("query failed")
			return
		}

		if elapsed > o.slowThreshold {
			o.logger.Warn().
				Str("operation", operation).
				Dur("duration", elapsed).
				Msg("slow query")
		}
	}
}

// durationMillis keeps sub-millisecond precision for the ms histogram.
func durationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
