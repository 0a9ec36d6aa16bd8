// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the fee engine.
// It tracks bill generation, payment activity, and outstanding balances.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	billGeneratedTotal *Counter
	paymentTotal       *Counter
	walletTxTotal      *Counter

	// Distribution metrics
	paymentAmount *Histogram

	// Gauge metrics (point-in-time values)
	openBillCount *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	billingProvider BillingMetricsProvider
}

// BillingMetricsProvider provides billing data for periodic metrics
// collection. The interface keeps the telemetry layer from depending on the
// fees domain directly.
type BillingMetricsProvider interface {
	// GetOpenBillCount returns the number of bills not yet paid
	GetOpenBillCount(ctx context.Context) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	BillingProvider BillingMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:           cfg.Meter,
		logger:          logger,
		stopChan:        make(chan struct{}),
		billingProvider: cfg.BillingProvider,
	}

	var err error

	bm.billGeneratedTotal, err = NewCounter(
		cfg.Meter,
		"fees_bill_generated_total",
		"Total number of bills generated",
		"{bills}",
	)
	if err != nil {
		return nil, err
	}

	bm.paymentTotal, err = NewCounter(
		cfg.Meter,
		"fees_payment_total",
		"Total number of payment applications",
		"{payments}",
	)
	if err != nil {
		return nil, err
	}

	bm.walletTxTotal, err = NewCounter(
		cfg.Meter,
		"wallet_transaction_total",
		"Total number of wallet ledger entries",
		"{transactions}",
	)
	if err != nil {
		return nil, err
	}

	bm.paymentAmount, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "fees_payment_amount",
		Description: "Distribution of applied payment amounts",
		Unit:        "{inr}",
		Boundaries:  PaymentAmountBuckets,
	})
	if err != nil {
		return nil, err
	}

	bm.openBillCount, err = NewGauge(
		cfg.Meter,
		"fees_open_bill_count",
		"Number of bills currently awaiting payment",
		"{bills}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// PaymentStatus represents the outcome of a payment for metrics labeling.
type PaymentStatus string

const (
	PaymentStatusSettled PaymentStatus = "settled"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// RecordBillGenerated records a bill generation event.
// This should be called from the application layer when a bill is created.
func (bm *BusinessMetrics) RecordBillGenerated(ctx context.Context, accountType, subject string) {
	bm.billGeneratedTotal.Inc(ctx,
		AttrAccountType.String(accountType),
		AttrBillSubject.String(subject),
	)
}

// RecordPayment records a payment application and its amount.
func (bm *BusinessMetrics) RecordPayment(ctx context.Context, method string, status PaymentStatus, amount decimal.Decimal) {
	bm.paymentTotal.Inc(ctx,
		AttrPaymentMethod.String(method),
		AttrTxSource.String(string(status)),
	)
	bm.paymentAmount.Record(ctx, amount.InexactFloat64(),
		AttrPaymentMethod.String(method),
	)
}

// RecordWalletTransaction records a wallet ledger entry.
func (bm *BusinessMetrics) RecordWalletTransaction(ctx context.Context, txType, source string) {
	bm.walletTxTotal.Inc(ctx,
		AttrTxSource.String(source),
		AttrDBOperation.String(txType),
	)
}

// RecordOpenBillCount records the number of bills awaiting payment.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordOpenBillCount(ctx context.Context, count int64) {
	bm.openBillCount.Record(ctx, count)
}

// StartPeriodicCollection starts periodic collection of gauge metrics.
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go bm.runPeriodicCollection(ctx, interval)
	})
}

func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	bm.collectBillingMetrics(ctx)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectBillingMetrics(ctx)
		}
	}
}

func (bm *BusinessMetrics) collectBillingMetrics(ctx context.Context) {
	if bm.billingProvider == nil {
		bm.logger.Debug("No billing provider configured, skipping billing metrics collection")
		return
	}

	count, err := bm.billingProvider.GetOpenBillCount(ctx)
	if err != nil {
		bm.logger.Warn("Failed to get open bill count", zap.Error(err))
		return
	}
	bm.RecordOpenBillCount(ctx, count)
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
