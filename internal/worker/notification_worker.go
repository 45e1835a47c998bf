package worker

import (
	"context"

	"land-steward-backend/internal/notification"
	"land-steward-backend/internal/queue"
	"land-steward-backend/internal/repository"
	"land-steward-backend/pkg/logger"

	"go.uber.org/zap"
)

type NotificationWorker interface {
	// 訂閱通知隊列
	Start(ctx context.Context) error
}

type NotificationWorkerImpl struct {
	orderRepo  repository.OrderRepository
	ticketRepo repository.TicketRepository
	mailer     notification.Mailer
	queue      queue.NotificationQueue
}

func NewNotificationWorker(
	orderRepo repository.OrderRepository,
	ticketRepo repository.TicketRepository,
	mailer notification.Mailer,
	queue queue.NotificationQueue,
) NotificationWorker {
	return &NotificationWorkerImpl{
		orderRepo:  orderRepo,
		ticketRepo: ticketRepo,
		mailer:     mailer,
		queue:      queue,
	}
}

func (w *NotificationWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.SubscribeNotifications(ctx)
	if err != nil {
		return err
	}

	go func() {
		log := logger.WithComponent("notification-worker")
		for msg := range msgs {
			if err := w.process(ctx, msg.Data); err != nil {
				// 寄送失敗只記錄並重試, 永遠不影響 webhook 回應
				log.Warn("send confirmation failed, will retry",
					zap.Int("order_id", msg.Data.OrderID), zap.Error(err))
				msg.Nack(true)
			} else {
				msg.Ack()
			}
		}
	}()
	return nil
}

func (w *NotificationWorkerImpl) process(ctx context.Context, job *queue.NotificationJob) error {
	order, err := w.orderRepo.FindByID(ctx, job.OrderID)
	if err != nil {
		return err
	}

	tickets, err := w.ticketRepo.FindByOrderID(ctx, order.ID)
	if err != nil {
		return err
	}

	if err := w.mailer.SendOrderConfirmation(ctx, order, tickets); err != nil {
		return err
	}

	logger.WithComponent("notification-worker").Info("confirmation sent",
		zap.Int("order_id", order.ID), zap.Int("tickets", len(tickets)))
	return nil
}
