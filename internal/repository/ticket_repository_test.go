package repository

import (
	"context"
	"testing"
	"time"

	"land-steward-backend/internal/model"
	apperrors "land-steward-backend/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTicket(orderID int, code string) *model.Ticket {
	return &model.Ticket{
		OrderID:        orderID,
		EventID:        "evt-oak-grove",
		TicketNumber:   model.GenerateTicketNumber(time.Now()),
		RedemptionCode: code,
		Status:         model.TicketStatusValid,
	}
}

func TestTicketRepository_CreateBatch(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository(testDB)

	t.Run("Success", func(t *testing.T) {
		setupTestWithTruncate(t)
		user := createTestUser(t, "batch@example.org")
		order := createTestOrder(t, user.ID, model.OrderStatusCompleted)

		tickets := []*model.Ticket{
			newTestTicket(order.ID, model.GenerateRedemptionCode()),
			newTestTicket(order.ID, model.GenerateRedemptionCode()),
		}

		tx, err := testDB.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		require.NoError(t, repo.CreateBatch(ctx, tx, tickets))
		require.NoError(t, tx.Commit(ctx))

		assert.NotZero(t, tickets[0].ID)
		assert.NotZero(t, tickets[1].ID)

		found, err := repo.FindByOrderID(ctx, order.ID)
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})

	t.Run("Failed - duplicate redemption code", func(t *testing.T) {
		setupTestWithTruncate(t)
		user := createTestUser(t, "collision@example.org")
		order := createTestOrder(t, user.ID, model.OrderStatusCompleted)

		code := model.GenerateRedemptionCode()
		tickets := []*model.Ticket{
			newTestTicket(order.ID, code),
			newTestTicket(order.ID, code),
		}

		tx, err := testDB.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		// 整批在同交易內, 碰撞時回滾不會留下半批票
		err = repo.CreateBatch(ctx, tx, tickets)
		assert.ErrorIs(t, err, apperrors.ErrCodeCollision)
	})
}

func TestTicketRepository_CancelByOrderID(t *testing.T) {
	setupTestWithTruncate(t)

	ctx := context.Background()
	repo := NewTicketRepository(testDB)
	user := createTestUser(t, "cancel@example.org")
	order := createTestOrder(t, user.ID, model.OrderStatusCompleted)

	tx, err := testDB.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.CreateBatch(ctx, tx, []*model.Ticket{
		newTestTicket(order.ID, model.GenerateRedemptionCode()),
		newTestTicket(order.ID, model.GenerateRedemptionCode()),
	}))
	require.NoError(t, tx.Commit(ctx))

	tx, err = testDB.Begin(ctx)
	require.NoError(t, err)
	cancelled, err := repo.CancelByOrderID(ctx, tx, order.ID)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	assert.Equal(t, 2, cancelled)

	tickets, err := repo.FindByOrderID(ctx, order.ID)
	require.NoError(t, err)
	for _, ticket := range tickets {
		assert.Equal(t, model.TicketStatusCancelled, ticket.Status)
	}

	// 再取消一次不會動到已取消的票
	tx, err = testDB.Begin(ctx)
	require.NoError(t, err)
	cancelled, err = repo.CancelByOrderID(ctx, tx, order.ID)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	assert.Equal(t, 0, cancelled)
}

func TestTicketRepository_CountByOrderIDTx(t *testing.T) {
	setupTestWithTruncate(t)

	ctx := context.Background()
	repo := NewTicketRepository(testDB)
	user := createTestUser(t, "count@example.org")
	order := createTestOrder(t, user.ID, model.OrderStatusCompleted)

	tx, err := testDB.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	count, err := repo.CountByOrderIDTx(ctx, tx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, repo.CreateBatch(ctx, tx, []*model.Ticket{
		newTestTicket(order.ID, model.GenerateRedemptionCode()),
	}))

	// 同交易內看得到剛寫入的票, 補發守門靠這個計數
	count, err = repo.CountByOrderIDTx(ctx, tx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
