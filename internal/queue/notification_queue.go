package queue

import (
	"context"
)

// NotificationJob 一筆待寄送的訂單確認通知
type NotificationJob struct {
	OrderID int `json:"order_id"`
}

type Delivery struct {
	Data *NotificationJob
	Ack  func()
	Nack func(requeue bool)
}

type NotificationQueue interface {
	// 發送通知工作到隊列
	PublishNotification(ctx context.Context, job *NotificationJob) error
	// 訂閱通知隊列
	SubscribeNotifications(ctx context.Context) (<-chan Delivery, error)
}

type NotificationQueueImpl struct {
	// 使用 Go channel 來模擬 MQ 隊列
	ch chan *NotificationJob
}

func NewNotificationQueue(bufferSize int) NotificationQueue {
	return &NotificationQueueImpl{
		ch: make(chan *NotificationJob, bufferSize),
	}
}

func (q *NotificationQueueImpl) PublishNotification(ctx context.Context, job *NotificationJob) error {
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *NotificationQueueImpl) SubscribeNotifications(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case job, ok := <-q.ch:
				if !ok {
					return
				}

				out <- Delivery{
					Data: job,
					Ack:  func() { /* 記憶體版不用做特別動作 */ },
					Nack: func(requeue bool) {
						if requeue {
							q.ch <- job // 簡單模擬重回隊列
						}
					},
				}
			}
		}
	}()

	return out, nil
}
