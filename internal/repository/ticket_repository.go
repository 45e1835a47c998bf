package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"land-steward-backend/internal/model"
	apperrors "land-steward-backend/pkg/app_errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketRepository interface {
	FindByOrderID(ctx context.Context, orderID int) ([]*model.Ticket, error)

	// Transaction methods
	CreateBatch(ctx context.Context, tx pgx.Tx, tickets []*model.Ticket) error
	CancelByOrderID(ctx context.Context, tx pgx.Tx, orderID int) (int, error)
	CountByOrderIDTx(ctx context.Context, tx pgx.Tx, orderID int) (int, error)
}

type TicketRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &TicketRepositoryImpl{
		pool: pool,
	}
}

func (r *TicketRepositoryImpl) FindByOrderID(ctx context.Context, orderID int) ([]*model.Ticket, error) {
	query := `
		SELECT id, order_id, event_id, ticket_number, redemption_code,
		       status, redeemed_at, created_at, updated_at
		FROM event_tickets
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]*model.Ticket, 0)

	for rows.Next() {
		var ticket model.Ticket
		err := rows.Scan(
			&ticket.ID,
			&ticket.OrderID,
			&ticket.EventID,
			&ticket.TicketNumber,
			&ticket.RedemptionCode,
			&ticket.Status,
			&ticket.RedeemedAt,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, &ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tickets, nil
}

func (r *TicketRepositoryImpl) CountByOrderIDTx(ctx context.Context, tx pgx.Tx, orderID int) (int, error) {
	query := `SELECT COUNT(*) FROM event_tickets WHERE order_id = $1`

	var count int
	if err := tx.QueryRow(ctx, query, orderID).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

// CreateBatch 在呼叫端的交易內寫入整批票券。撞到唯一索引回傳 ErrCodeCollision,
// 交易整體回滾, 由上游重試(webhook 由供應商重送)。
func (r *TicketRepositoryImpl) CreateBatch(ctx context.Context, tx pgx.Tx, tickets []*model.Ticket) error {
	query := `
		INSERT INTO event_tickets (order_id, event_id, ticket_number, redemption_code, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	for _, ticket := range tickets {
		err := tx.QueryRow(ctx, query,
			ticket.OrderID, ticket.EventID, ticket.TicketNumber, ticket.RedemptionCode, ticket.Status,
		).Scan(
			&ticket.ID,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
				return apperrors.ErrCodeCollision
			}
			return fmt.Errorf("failed to create ticket: %w", err)
		}
	}

	return nil
}

// CancelByOrderID 將訂單底下所有尚未取消的票券標記為 cancelled。
// 兌換碼保留不重發, 避免退款後舊碼被重放。
func (r *TicketRepositoryImpl) CancelByOrderID(ctx context.Context, tx pgx.Tx, orderID int) (int, error) {
	query := `
		UPDATE event_tickets
		SET status = $1, updated_at = $2
		WHERE order_id = $3 AND status != $1
	`

	result, err := tx.Exec(ctx, query, model.TicketStatusCancelled, time.Now().UTC(), orderID)
	if err != nil {
		return 0, err
	}

	return int(result.RowsAffected()), nil
}
