// Package fibonacci provides implementations for calculating Fibonacci numbers.
// It exposes a `Calculator` interface that abstracts the underlying calculation
// algorithm, allowing the fast-doubling engine and the iterative reference to
// be used interchangeably. Every engine works over the fixed-capacity decimal
// arithmetic of package bignum.
package fibonacci

//go:generate mockgen -source=calculator.go -destination=mocks/mock_calculator.go -package=mocks

import (
	"context"
	"time"

	"github.com/agbru/fibdrv/internal/bignum"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var (
	calculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fibonacci_calculations_total",
			Help: "The total number of Fibonacci calculations processed",
		},
		[]string{"algorithm", "status"},
	)
	calculationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "fibonacci_calculation_duration_seconds",
			Help: "The duration of Fibonacci calculations in seconds",
		},
		[]string{"algorithm"},
	)
)

// Calculator defines the public interface for a Fibonacci calculator.
// It is the primary abstraction used by the device, the orchestration layer
// and the server to interact with the different engines.
type Calculator interface {
	// Calculate executes the calculation of the n-th Fibonacci number. The
	// context carries tracing information only; a calculation is never
	// interrupted once started.
	//
	// Parameters:
	//   - ctx: The context for tracing.
	//   - n: The index of the Fibonacci number to calculate.
	//   - opts: Configuration options for the calculation.
	//
	// Returns:
	//   - bignum.Decimal: The calculated Fibonacci number.
	//   - error: A bignum overflow error if the capacity is too small.
	Calculate(ctx context.Context, n uint64, opts Options) (bignum.Decimal, error)

	// Name returns the display name of the calculation algorithm (e.g., "Fast Doubling").
	Name() string
}

// coreCalculator defines the internal interface for a pure calculation
// algorithm.
type coreCalculator interface {
	CalculateCore(ctx context.Context, n uint64, opts Options) (bignum.Decimal, error)
	Name() string
}

// FibCalculator is an implementation of the Calculator interface that uses the
// Decorator design pattern.
// It wraps a coreCalculator to add cross-cutting concerns: a tracing span,
// Prometheus metrics and a debug log line per calculation.
type FibCalculator struct {
	core coreCalculator
}

// NewCalculator is a factory function that constructs and returns a new
// FibCalculator. This function panics if the core calculator is nil.
//
// Parameters:
//   - core: The core calculator to be wrapped.
//
// Returns:
//   - Calculator: A new FibCalculator instance implementing the Calculator interface.
func NewCalculator(core coreCalculator) Calculator {
	if core == nil {
		panic("fibonacci: the `coreCalculator` implementation cannot be nil")
	}
	return &FibCalculator{core: core}
}

// Name returns the name of the encapsulated coreCalculator.
func (c *FibCalculator) Name() string {
	return c.core.Name()
}

// Calculate delegates to the wrapped core and records the outcome.
func (c *FibCalculator) Calculate(ctx context.Context, n uint64, opts Options) (result bignum.Decimal, err error) {
	tracer := otel.Tracer("fibonacci")
	ctx, span := tracer.Start(ctx, "Calculate")
	defer span.End()

	algoName := c.core.Name()
	span.SetAttributes(
		attribute.String("fibonacci.algorithm", algoName),
		attribute.Int64("fibonacci.n", int64(n)),
	)

	start := time.Now()
	defer func() {
		duration := time.Since(start).Seconds()
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		calculationsTotal.WithLabelValues(algoName, status).Inc()
		calculationDuration.WithLabelValues(algoName).Observe(duration)

		log.Debug().
			Str("algo", algoName).
			Uint64("n", n).
			Float64("duration", duration).
			Str("status", status).
			Msg("calculation completed")
	}()

	return c.core.CalculateCore(ctx, n, normalizeOptions(opts))
}
