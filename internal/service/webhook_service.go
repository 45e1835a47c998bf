package service

import (
	"context"
	"errors"

	"land-steward-backend/internal/model"
	"land-steward-backend/internal/payment"
	"land-steward-backend/internal/queue"
	"land-steward-backend/internal/repository"
	apperrors "land-steward-backend/pkg/app_errors"
	"land-steward-backend/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// WebhookService 是訂單狀態機的唯一推進者。只處理驗章後的事件;
// 簽章與 payload 解析失敗在到達這裡之前就被擋下。
type WebhookService interface {
	HandleEvent(ctx context.Context, event *payment.Event) error
}

type WebhookServiceImpl struct {
	pool              *pgxpool.Pool
	repository        repository.OrderRepository
	ticketRepository  repository.TicketRepository
	issuer            TicketIssuer
	notificationQueue queue.NotificationQueue
}

func NewWebhookService(
	pool *pgxpool.Pool,
	orderRepository repository.OrderRepository,
	ticketRepository repository.TicketRepository,
	issuer TicketIssuer,
	notificationQueue queue.NotificationQueue,
) WebhookService {
	return &WebhookServiceImpl{
		pool:              pool,
		repository:        orderRepository,
		ticketRepository:  ticketRepository,
		issuer:            issuer,
		notificationQueue: notificationQueue,
	}
}

// HandleEvent 依事件類型推進訂單狀態。回傳 nil 代表可以 ack(含 no-op 與忽略);
// 回傳 error 代表內部暫時性故障, handler 以 5xx 回應讓供應商重送。
func (s *WebhookServiceImpl) HandleEvent(ctx context.Context, event *payment.Event) error {
	log := logger.WithComponent("webhook").With(
		zap.String("event_id", event.ID),
		zap.String("event_type", event.Type),
	)

	switch event.Type {
	case payment.EventCheckoutCompleted:
		return s.handleCheckoutCompleted(ctx, event, log)
	case payment.EventPaymentFailed:
		return s.handlePaymentFailed(ctx, event, log)
	case payment.EventChargeRefunded:
		return s.handleRefund(ctx, event, log)
	default:
		// 供應商可能新增事件類型, 一律 ack 後忽略
		log.Info("unhandled event type, ignoring")
		return nil
	}
}

func (s *WebhookServiceImpl) handleCheckoutCompleted(ctx context.Context, event *payment.Event, log *zap.Logger) error {
	sessionID := event.Data.Object.ID

	order, err := s.repository.FindBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrOrderNotFound) {
			// 本地對不上的事件不值得供應商重送, 記錄後 ack
			log.Warn("no order for session, dropping event", zap.String("session_id", sessionID))
			return nil
		}
		return err
	}

	if order.Status != model.OrderStatusPending {
		// at-least-once 投遞: 同一事件可能重送多次, 已完成的訂單不再動作
		log.Info("order already processed, no-op", zap.Int("order_id", order.ID), zap.String("status", string(order.Status)))
		return nil
	}

	var paymentID *string
	if event.Data.Object.PaymentIntent != "" {
		pid := event.Data.Object.PaymentIntent
		paymentID = &pid
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// 只有目前仍是 pending 的那個併發嘗試能走到這裡之後
	updated, err := s.repository.TransitionStatus(ctx, tx, order.ID, model.OrderStatusPending, model.OrderStatusCompleted, paymentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyTransitioned) {
			log.Info("lost transition race, no-op", zap.Int("order_id", order.ID))
			return nil
		}
		return err
	}

	// 付款頁填的信箱可能和下單快照不同, 以付款頁為準, 確認信才寄得到
	if email := event.Data.Object.CustomerEmail; email != "" && email != updated.CustomerEmail {
		if err := s.repository.RefreshCustomerEmail(ctx, tx, updated.ID, email); err != nil {
			return err
		}
		updated.CustomerEmail = email
	}

	// 標記完成與發券是同一個交易: 不會出現已完成卻開票失敗而各走各的狀態
	if _, err := s.issuer.IssueTickets(ctx, tx, updated); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Info("order completed", zap.Int("order_id", updated.ID), zap.Int("quantity", updated.Quantity))

	// 通知走隊列, 寄送失敗只記錄, 不拖慢也不弄髒 webhook 回應
	if err := s.notificationQueue.PublishNotification(ctx, &queue.NotificationJob{OrderID: updated.ID}); err != nil {
		log.Warn("publish notification failed", zap.Int("order_id", updated.ID), zap.Error(err))
	}

	return nil
}

func (s *WebhookServiceImpl) handlePaymentFailed(ctx context.Context, event *payment.Event, log *zap.Logger) error {
	order, err := s.findOrderForFailedPayment(ctx, event)
	if err != nil {
		if errors.Is(err, apperrors.ErrOrderNotFound) {
			log.Warn("no order for failed payment, dropping event")
			return nil
		}
		return err
	}

	if order.Status != model.OrderStatusPending {
		log.Info("order already processed, no-op", zap.Int("order_id", order.ID), zap.String("status", string(order.Status)))
		return nil
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := s.repository.TransitionStatus(ctx, tx, order.ID, model.OrderStatusPending, model.OrderStatusFailed, nil); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyTransitioned) {
			return nil
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Info("order marked failed", zap.Int("order_id", order.ID))
	return nil
}

// findOrderForFailedPayment 失敗事件夾帶的是 payment intent, 不是結帳 session;
// 先試 metadata 裡的訂單編號, 再退回 payment id。
func (s *WebhookServiceImpl) findOrderForFailedPayment(ctx context.Context, event *payment.Event) (*model.Order, error) {
	if orderID := event.Data.Object.Metadata.OrderID; orderID != "" {
		if id, err := parseOrderID(orderID); err == nil {
			return s.repository.FindByID(ctx, id)
		}
	}
	if event.Data.Object.PaymentIntent != "" {
		return s.repository.FindByPaymentID(ctx, event.Data.Object.PaymentIntent)
	}
	if event.Data.Object.ID != "" {
		return s.repository.FindByPaymentID(ctx, event.Data.Object.ID)
	}
	return nil, apperrors.ErrOrderNotFound
}

func (s *WebhookServiceImpl) handleRefund(ctx context.Context, event *payment.Event, log *zap.Logger) error {
	// 退款事件指向扣款(capture), 用 payment id 對回訂單
	paymentID := event.Data.Object.PaymentIntent
	if paymentID == "" {
		log.Warn("refund event without payment id, dropping")
		return nil
	}

	order, err := s.repository.FindByPaymentID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrOrderNotFound) {
			log.Warn("no order for refund, dropping event", zap.String("payment_id", paymentID))
			return nil
		}
		return err
	}

	if order.Status != model.OrderStatusCompleted {
		log.Info("order not refundable, no-op", zap.Int("order_id", order.ID), zap.String("status", string(order.Status)))
		return nil
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := s.repository.TransitionStatus(ctx, tx, order.ID, model.OrderStatusCompleted, model.OrderStatusRefunded, nil); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyTransitioned) {
			return nil
		}
		return err
	}

	// 退款與取消票券必須同交易: 不存在訂單已退款但票還 valid 的狀態
	cancelled, err := s.ticketRepository.CancelByOrderID(ctx, tx, order.ID)
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Info("order refunded, tickets cancelled", zap.Int("order_id", order.ID), zap.Int("cancelled", cancelled))
	return nil
}

func parseOrderID(s string) (int, error) {
	var id int
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, apperrors.ErrInvalidInput
		}
		id = id*10 + int(r-'0')
	}
	if id == 0 {
		return 0, apperrors.ErrInvalidInput
	}
	return id, nil
}
