package service

import (
	"context"
	"time"

	"land-steward-backend/internal/queue"
	"land-steward-backend/internal/repository"
	"land-steward-backend/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const reconcileBatchSize = 50

// Reconciler 補救「訂單已 completed 但沒有任何票券」的缺口。正常流程裡標記完成
// 與發券同交易, 不會出現這個狀態; 但它是顯式的恢復路徑, 不靠假設。
type Reconciler struct {
	pool              *pgxpool.Pool
	repository        repository.OrderRepository
	ticketRepository  repository.TicketRepository
	issuer            TicketIssuer
	notificationQueue queue.NotificationQueue
	interval          time.Duration
}

func NewReconciler(
	pool *pgxpool.Pool,
	orderRepository repository.OrderRepository,
	ticketRepository repository.TicketRepository,
	issuer TicketIssuer,
	notificationQueue queue.NotificationQueue,
	interval time.Duration,
) *Reconciler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Reconciler{
		pool:              pool,
		repository:        orderRepository,
		ticketRepository:  ticketRepository,
		issuer:            issuer,
		notificationQueue: notificationQueue,
		interval:          interval,
	}
}

// Start 先跑一輪, 之後依間隔巡檢
func (r *Reconciler) Start(ctx context.Context) {
	go func() {
		r.runOnce(ctx)

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.runOnce(ctx)
			}
		}
	}()
}

func (r *Reconciler) runOnce(ctx context.Context) {
	log := logger.WithComponent("reconciler")

	orders, err := r.repository.FindCompletedWithoutTickets(ctx, reconcileBatchSize)
	if err != nil {
		log.Error("scan failed", zap.Error(err))
		return
	}

	for _, order := range orders {
		if err := r.reissue(ctx, order.ID); err != nil {
			log.Error("reissue failed", zap.Int("order_id", order.ID), zap.Error(err))
			continue
		}
		log.Warn("reissued tickets for completed order", zap.Int("order_id", order.ID), zap.Int("quantity", order.Quantity))

		if err := r.notificationQueue.PublishNotification(ctx, &queue.NotificationJob{OrderID: order.ID}); err != nil {
			log.Warn("publish notification failed", zap.Int("order_id", order.ID), zap.Error(err))
		}
	}
}

func (r *Reconciler) reissue(ctx context.Context, orderID int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// 鎖住訂單列再重查票數, 兩個巡檢實例也不會重複發券
	order, err := r.repository.FindByIDForUpdate(ctx, tx, orderID)
	if err != nil {
		return err
	}

	count, err := r.ticketRepository.CountByOrderIDTx(ctx, tx, order.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if _, err := r.issuer.IssueTickets(ctx, tx, order); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
