package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"land-steward-backend/internal/model"
	"land-steward-backend/internal/payment"
	"land-steward-backend/internal/queue"
	"land-steward-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 走真實資料庫把整條狀態機跑一遍: 完成發券、重送冪等、退款取消。
// 分支與關聯失敗的快速路徑由 webhook_service_test.go 的 fake 覆蓋。
func TestWebhookService_HandleEvent_Lifecycle(t *testing.T) {
	setupTestWithTruncate(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orderRepo := repository.NewOrderRepository(testDB)
	ticketRepo := repository.NewTicketRepository(testDB)
	notifications := queue.NewNotificationQueue(8)
	svc := NewWebhookService(testDB, orderRepo, ticketRepo, NewTicketIssuer(ticketRepo), notifications)

	order := seedOrder(t, "lifecycle@example.org", "cs_life_1", 3, model.OrderStatusPending)

	completed := &payment.Event{ID: "evt_life_1", Type: payment.EventCheckoutCompleted}
	completed.Data.Object.ID = "cs_life_1"
	completed.Data.Object.PaymentIntent = "pi_life_1"
	completed.Data.Object.CustomerEmail = "payer@example.org"

	// 1. completed 事件: pending -> completed, 發出 quantity 張票
	require.NoError(t, svc.HandleEvent(ctx, completed))

	updated, err := orderRepo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCompleted, updated.Status)
	require.NotNil(t, updated.PaymentID)
	assert.Equal(t, "pi_life_1", *updated.PaymentID)
	// 付款頁實際填寫的信箱覆蓋下單時的快照
	assert.Equal(t, "payer@example.org", updated.CustomerEmail)

	tickets, err := ticketRepo.FindByOrderID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, tickets, 3)
	for _, ticket := range tickets {
		assert.Equal(t, model.TicketStatusValid, ticket.Status)
	}

	deliveries, err := notifications.SubscribeNotifications(ctx)
	require.NoError(t, err)
	select {
	case delivery := <-deliveries:
		assert.Equal(t, order.ID, delivery.Data.OrderID)
		delivery.Ack()
	case <-time.After(time.Second):
		t.Fatal("expected confirmation notification after completion")
	}

	// 2. 同一事件重送: at-least-once 投遞下不多發任何一張票
	require.NoError(t, svc.HandleEvent(ctx, completed))

	tickets, err = ticketRepo.FindByOrderID(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, tickets, 3)

	// 3. 退款事件: completed -> refunded, 全部票券同交易取消
	refunded := &payment.Event{ID: "evt_life_2", Type: payment.EventChargeRefunded}
	refunded.Data.Object.PaymentIntent = "pi_life_1"

	require.NoError(t, svc.HandleEvent(ctx, refunded))

	final, err := orderRepo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusRefunded, final.Status)

	tickets, err = ticketRepo.FindByOrderID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, tickets, 3)
	for _, ticket := range tickets {
		assert.Equal(t, model.TicketStatusCancelled, ticket.Status)
	}

	// 4. 退款重送也是 no-op
	require.NoError(t, svc.HandleEvent(ctx, refunded))

	tickets, err = ticketRepo.FindByOrderID(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, tickets, 3)
}

// 失敗事件靠 payment intent metadata 對回訂單並標記 failed
func TestWebhookService_HandleEvent_PaymentFailedWithDB(t *testing.T) {
	setupTestWithTruncate(t)

	ctx := context.Background()

	orderRepo := repository.NewOrderRepository(testDB)
	ticketRepo := repository.NewTicketRepository(testDB)
	svc := NewWebhookService(testDB, orderRepo, ticketRepo, NewTicketIssuer(ticketRepo), queue.NewNotificationQueue(1))

	order := seedOrder(t, "failed@example.org", "cs_fail_1", 1, model.OrderStatusPending)

	event := &payment.Event{ID: "evt_fail_1", Type: payment.EventPaymentFailed}
	event.Data.Object.ID = "pi_fail_1"
	event.Data.Object.Metadata.OrderID = strconv.Itoa(order.ID)

	require.NoError(t, svc.HandleEvent(ctx, event))

	updated, err := orderRepo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusFailed, updated.Status)

	tickets, err := ticketRepo.FindByOrderID(ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, tickets)
}
