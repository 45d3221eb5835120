package reconciler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/nikolayk812/orderflow/internal/metrics"
	"github.com/nikolayk812/orderflow/internal/port"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var errOrderCancelled = errors.New("order cancelled")

// Settler applies the payment-confirmed transition.
type Settler interface {
	ConfirmPayment(ctx context.Context, orderID uuid.UUID) (domain.PaymentConfirmation, error)
}

type Config struct {
	Interval    time.Duration
	MaxAttempts int
	Workers     int
}

// Reconciler polls the payment gateway for scheduled orders and settles
// them once the gateway reports success. Progress is persisted per order so
// that polling survives restarts.
type Reconciler struct {
	recs      port.ReconciliationRepository
	orders    port.OrderRepository
	gateway   port.PaymentGateway
	settler   Settler
	queue     port.TaskQueue
	publisher port.EventPublisher
	cfg       Config
	logger    *zap.Logger
	metrics   *metrics.Metrics

	mu       sync.Mutex
	inflight map[uuid.UUID]context.CancelCauseFunc
}

var _ port.ReconcileScheduler = (*Reconciler)(nil)

func New(
	recs port.ReconciliationRepository,
	orders port.OrderRepository,
	gateway port.PaymentGateway,
	settler Settler,
	queue port.TaskQueue,
	publisher port.EventPublisher,
	cfg Config,
	logger *zap.Logger,
	m *metrics.Metrics,
) *Reconciler {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	return &Reconciler{
		recs:      recs,
		orders:    orders,
		gateway:   gateway,
		settler:   settler,
		queue:     queue,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger.With(zap.String("component", "reconciler")),
		metrics:   m,
		inflight:  make(map[uuid.UUID]context.CancelCauseFunc),
	}
}

// Schedule marks the order's reconciliation pending and hands it to a worker.
func (r *Reconciler) Schedule(ctx context.Context, orderID uuid.UUID) error {
	if _, err := r.recs.UpsertPending(ctx, orderID); err != nil {
		return fmt.Errorf("recs.UpsertPending: %w", err)
	}

	if err := r.queue.Enqueue(ctx, domain.ReconcileTask{OrderID: orderID}); err != nil {
		return fmt.Errorf("queue.Enqueue: %w", err)
	}

	return nil
}

// Cancel stops the in-flight polling of the order in this process. It
// reports whether there was one.
func (r *Reconciler) Cancel(orderID uuid.UUID) bool {
	r.mu.Lock()
	cancel, ok := r.inflight[orderID]
	r.mu.Unlock()

	if ok {
		cancel(errOrderCancelled)
	}

	return ok
}

// Resume re-enqueues every pending reconciliation, typically once at startup.
func (r *Reconciler) Resume(ctx context.Context) (int, error) {
	ids, err := r.recs.ListPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("recs.ListPending: %w", err)
	}

	for i, id := range ids {
		if err := r.queue.Enqueue(ctx, domain.ReconcileTask{OrderID: id}); err != nil {
			return i, fmt.Errorf("queue.Enqueue: %w", err)
		}
	}

	if len(ids) > 0 {
		r.logger.Info("pending reconciliations resumed", zap.Int("count", len(ids)))
	}

	return len(ids), nil
}

// Run consumes tasks with cfg.Workers workers until ctx is done.
func (r *Reconciler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for i := range r.cfg.Workers {
		g.Go(func() error {
			r.work(ctx, i)
			return nil
		})
	}

	r.logger.Info("reconciler started", zap.Int("workers", r.cfg.Workers))
	err := g.Wait()
	r.logger.Info("reconciler stopped")

	return err
}

func (r *Reconciler) work(ctx context.Context, worker int) {
	logger := r.logger.With(zap.Int("worker", worker))

	for {
		task, err := r.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}

			logger.Warn("dequeue failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(r.cfg.Interval):
			}
			continue
		}

		r.handle(ctx, logger, task)
	}
}

func (r *Reconciler) handle(ctx context.Context, logger *zap.Logger, task domain.ReconcileTask) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("reconcile panic",
				zap.Stringer("order_id", task.OrderID),
				zap.Any("panic", rec),
				zap.String("stack", string(debug.Stack())),
			)
		}
	}()

	if _, err := r.Reconcile(ctx, task.OrderID); err != nil {
		logger.Error("reconcile failed", zap.Stringer("order_id", task.OrderID), zap.Error(err))
	}
}

// Reconcile polls the gateway for one order until a terminal outcome, the
// attempt budget runs out, or ctx is done. Attempts already recorded for
// the order count against the budget.
func (r *Reconciler) Reconcile(ctx context.Context, orderID uuid.UUID) (domain.ReconcileOutcome, error) {
	pollCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	if !r.register(orderID, cancel) {
		r.metrics.ObserveReconcile(string(domain.ReconcileSkipped))
		return domain.ReconcileSkipped, nil
	}
	defer r.unregister(orderID)

	rec, err := r.recs.GetReconciliation(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("recs.GetReconciliation: %w", err)
	}
	if rec.State != domain.ReconcileStatePending {
		r.metrics.ObserveReconcile(string(domain.ReconcileSkipped))
		return domain.ReconcileSkipped, nil
	}

	logger := r.logger.With(zap.Stringer("order_id", orderID))
	attempts := rec.Attempts
	lastError := rec.LastError

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		if attempts >= r.cfg.MaxAttempts {
			return r.finish(ctx, orderID, domain.ReconcileTimedOut, exhausted(attempts, lastError))
		}

		outcome, done, attemptErr := r.attempt(pollCtx, orderID)
		// a committed confirmation stands even if pollCtx ended meanwhile
		if done && outcome == domain.ReconcileConfirmed {
			return r.finish(ctx, orderID, outcome, nil)
		}
		if pollCtx.Err() != nil {
			return r.stopped(ctx, pollCtx, orderID)
		}
		if done {
			return r.finish(ctx, orderID, outcome, attemptErr)
		}

		attempts++
		lastError = ""
		if attemptErr != nil {
			lastError = attemptErr.Error()
			logger.Warn("poll attempt failed", zap.Int("attempt", attempts), zap.Error(attemptErr))
		}

		if err := r.recs.RecordAttempt(ctx, orderID, attempts, lastError); err != nil {
			logger.Warn("record attempt failed", zap.Error(err))
		}

		if attempts >= r.cfg.MaxAttempts {
			continue
		}

		select {
		case <-pollCtx.Done():
			return r.stopped(ctx, pollCtx, orderID)
		case <-ticker.C:
		}
	}
}

// attempt performs one poll. done reports a terminal outcome.
func (r *Reconciler) attempt(ctx context.Context, orderID uuid.UUID) (domain.ReconcileOutcome, bool, error) {
	order, err := r.orders.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ReconcileFailed, true, fmt.Errorf("orders.GetOrder: %w", err)
		}
		return "", false, fmt.Errorf("orders.GetOrder: %w", err)
	}

	switch {
	case order.IsPaid:
		return domain.ReconcileAlreadyPaid, true, nil
	case order.Status == domain.OrderStatusCancelled:
		return domain.ReconcileCancelled, true, nil
	}

	status, err := r.gateway.QueryTradeStatus(ctx, orderID)
	if err != nil {
		return "", false, fmt.Errorf("gateway.QueryTradeStatus: %w", err)
	}
	if !status.IsPaid() {
		return "", false, nil
	}

	confirmation, err := r.settler.ConfirmPayment(ctx, orderID)
	switch {
	case errors.Is(err, domain.ErrInvalidTransition):
		// cancelled between the status check and the confirmation
		return domain.ReconcileCancelled, true, nil
	case err != nil:
		return domain.ReconcileFailed, true, fmt.Errorf("settler.ConfirmPayment: %w", err)
	case !confirmation.Applied:
		return domain.ReconcileAlreadyPaid, true, nil
	default:
		return domain.ReconcileConfirmed, true, nil
	}
}

func exhausted(attempts int, lastError string) error {
	if lastError == "" {
		return fmt.Errorf("no payment after %d poll attempts", attempts)
	}
	return fmt.Errorf("no payment after %d poll attempts, last error: %s", attempts, lastError)
}

// stopped handles a done pollCtx: an explicit cancel resolves the record,
// anything else leaves it pending for Resume.
func (r *Reconciler) stopped(ctx, pollCtx context.Context, orderID uuid.UUID) (domain.ReconcileOutcome, error) {
	if errors.Is(context.Cause(pollCtx), errOrderCancelled) {
		return r.finish(ctx, orderID, domain.ReconcileCancelled, nil)
	}

	r.metrics.ObserveReconcile(string(domain.ReconcileInterrupted))
	r.logger.Info("reconciliation interrupted", zap.Stringer("order_id", orderID))

	return domain.ReconcileInterrupted, nil
}

func (r *Reconciler) finish(ctx context.Context, orderID uuid.UUID, outcome domain.ReconcileOutcome, cause error) (domain.ReconcileOutcome, error) {
	ctx = context.WithoutCancel(ctx)
	logger := r.logger.With(zap.Stringer("order_id", orderID), zap.String("outcome", string(outcome)))

	var (
		state     domain.ReconcileState
		lastError string
	)
	switch outcome {
	case domain.ReconcileConfirmed, domain.ReconcileAlreadyPaid:
		state = domain.ReconcileStateConfirmed
	case domain.ReconcileCancelled:
		state = domain.ReconcileStateCancelled
	default:
		state = domain.ReconcileStateUnresolved
		if cause != nil {
			lastError = cause.Error()
		}
	}

	if err := r.recs.Resolve(ctx, orderID, state, lastError); err != nil {
		return outcome, fmt.Errorf("recs.Resolve: %w", err)
	}

	r.metrics.ObserveReconcile(string(outcome))

	if state != domain.ReconcileStateUnresolved {
		logger.Info("reconciliation finished")
		return outcome, nil
	}

	logger.Error("reconciliation unresolved, manual follow-up needed", zap.Error(cause))
	r.publishUnresolved(ctx, orderID, lastError)

	return outcome, nil
}

func (r *Reconciler) publishUnresolved(ctx context.Context, orderID uuid.UUID, reason string) {
	now := time.Now().UTC()

	event := domain.OrderEvent{OrderID: orderID}
	if order, err := r.orders.GetOrder(ctx, orderID); err == nil {
		event = domain.NewOrderEvent(domain.EventPaymentUnresolved, order, now)
	}
	event.Type = domain.EventPaymentUnresolved
	event.Reason = reason
	event.OccurredAt = now

	if err := r.publisher.Publish(ctx, event); err != nil {
		r.logger.Warn("event publish failed",
			zap.String("event_type", string(event.Type)),
			zap.Stringer("order_id", orderID),
			zap.Error(err),
		)
	}
}

func (r *Reconciler) register(orderID uuid.UUID, cancel context.CancelCauseFunc) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.inflight[orderID]; ok {
		return false
	}
	r.inflight[orderID] = cancel
	return true
}

func (r *Reconciler) unregister(orderID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inflight, orderID)
}

// InFlight returns the number of orders being polled by this process.
func (r *Reconciler) InFlight() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inflight)
}
