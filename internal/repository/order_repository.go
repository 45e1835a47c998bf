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

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) (*model.Order, error)
	AttachSession(ctx context.Context, id int, sessionID string) error
	FindByID(ctx context.Context, id int) (*model.Order, error)
	FindBySessionID(ctx context.Context, sessionID string) (*model.Order, error)
	FindByPaymentID(ctx context.Context, paymentID string) (*model.Order, error)
	FindByUserID(ctx context.Context, userID int) ([]*model.Order, error)
	FindCompletedWithoutTickets(ctx context.Context, limit int) ([]*model.Order, error)

	// Transaction methods
	TransitionStatus(ctx context.Context, tx pgx.Tx, id int, from, to model.OrderStatus, paymentID *string) (*model.Order, error)
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id int) (*model.Order, error)
	RefreshCustomerEmail(ctx context.Context, tx pgx.Tx, id int, email string) error
}

type OrderRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &OrderRepositoryImpl{
		pool: pool,
	}
}

const orderColumns = `id, user_id, session_id, payment_id, total_amount, currency,
		event_id, event_title, event_date, event_venue, quantity,
		customer_email, customer_name, status, created_at, updated_at`

func scanOrder(row pgx.Row, order *model.Order) error {
	return row.Scan(
		&order.ID,
		&order.UserID,
		&order.SessionID,
		&order.PaymentID,
		&order.TotalAmount,
		&order.Currency,
		&order.EventID,
		&order.EventTitle,
		&order.EventDate,
		&order.EventVenue,
		&order.Quantity,
		&order.CustomerEmail,
		&order.CustomerName,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
}

func (r *OrderRepositoryImpl) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	query := `
		INSERT INTO orders (
			user_id, total_amount, currency, event_id, event_title, event_date,
			event_venue, quantity, customer_email, customer_name, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + orderColumns

	row := r.pool.QueryRow(ctx, query,
		order.UserID, order.TotalAmount, order.Currency, order.EventID,
		order.EventTitle, order.EventDate, order.EventVenue, order.Quantity,
		order.CustomerEmail, order.CustomerName, order.Status,
	)

	if err := scanOrder(row, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	return order, nil
}

// AttachSession 將外部結帳 session id 綁上訂單。一個 session 只能對應一筆訂單(唯一索引)。
func (r *OrderRepositoryImpl) AttachSession(ctx context.Context, id int, sessionID string) error {
	query := `
		UPDATE orders
		SET session_id = $1, updated_at = $2
		WHERE id = $3 AND session_id IS NULL
	`

	result, err := r.pool.Exec(ctx, query, sessionID, time.Now().UTC(), id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return apperrors.ErrInvalidInput
		}
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrOrderNotFound
	}

	return nil
}

func (r *OrderRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var order model.Order
	err := scanOrder(r.pool.QueryRow(ctx, query, id), &order)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, err
	}

	return &order, nil
}

func (r *OrderRepositoryImpl) FindBySessionID(ctx context.Context, sessionID string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE session_id = $1`

	var order model.Order
	err := scanOrder(r.pool.QueryRow(ctx, query, sessionID), &order)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, err
	}

	return &order, nil
}

func (r *OrderRepositoryImpl) FindByPaymentID(ctx context.Context, paymentID string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE payment_id = $1`

	var order model.Order
	err := scanOrder(r.pool.QueryRow(ctx, query, paymentID), &order)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, err
	}

	return &order, nil
}

func (r *OrderRepositoryImpl) FindByUserID(ctx context.Context, userID int) ([]*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*model.Order

	for rows.Next() {
		var order model.Order
		if err := scanOrder(rows, &order); err != nil {
			return nil, err
		}
		orders = append(orders, &order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

// FindCompletedWithoutTickets 找出已完成但一張票都沒有的訂單, 供補發巡檢使用。
func (r *OrderRepositoryImpl) FindCompletedWithoutTickets(ctx context.Context, limit int) ([]*model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		WHERE o.status = $1
		  AND NOT EXISTS (SELECT 1 FROM event_tickets t WHERE t.order_id = o.id)
		ORDER BY o.created_at
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, model.OrderStatusCompleted, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*model.Order

	for rows.Next() {
		var order model.Order
		if err := scanOrder(rows, &order); err != nil {
			return nil, err
		}
		orders = append(orders, &order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

// TransitionStatus 只有目前狀態等於 from 的那一次更新會生效, 其餘併發或重送的嘗試
// 拿到 ErrAlreadyTransitioned。狀態機合法性先由 CanTransitionTo 把關。
func (r *OrderRepositoryImpl) TransitionStatus(
	ctx context.Context,
	tx pgx.Tx,
	id int,
	from, to model.OrderStatus,
	paymentID *string,
) (*model.Order, error) {
	if !from.CanTransitionTo(to) {
		return nil, apperrors.ErrInvalidTransition
	}

	query := `
		UPDATE orders
		SET status = $1,
		    payment_id = COALESCE($2, payment_id),
		    updated_at = $3
		WHERE id = $4 AND status = $5
		RETURNING ` + orderColumns

	var order model.Order
	err := scanOrder(tx.QueryRow(ctx, query, to, paymentID, time.Now().UTC(), id, from), &order)
	if err != nil {
		if err == pgx.ErrNoRows {
			// 訂單存在但狀態已經不是 from: 冪等 no-op; 訂單不存在: not found
			current, findErr := r.findByIDTx(ctx, tx, id)
			if findErr != nil {
				return nil, findErr
			}
			if current.Status == to {
				return nil, apperrors.ErrAlreadyTransitioned
			}
			if !current.Status.CanTransitionTo(to) {
				return nil, apperrors.ErrAlreadyTransitioned
			}
			return nil, apperrors.ErrInvalidTransition
		}
		return nil, fmt.Errorf("failed to transition order status: %w", err)
	}

	return &order, nil
}

// RefreshCustomerEmail 以付款頁實際填寫的信箱覆蓋下單時的快照, 確認信才會寄到對的地址
func (r *OrderRepositoryImpl) RefreshCustomerEmail(ctx context.Context, tx pgx.Tx, id int, email string) error {
	query := `
		UPDATE orders
		SET customer_email = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := tx.Exec(ctx, query, email, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrOrderNotFound
	}

	return nil
}

// FindByIDForUpdate 鎖住訂單列直到交易結束, 供補發巡檢與 webhook 互相排隊
func (r *OrderRepositoryImpl) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id int) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`

	var order model.Order
	err := scanOrder(tx.QueryRow(ctx, query, id), &order)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, err
	}

	return &order, nil
}

func (r *OrderRepositoryImpl) findByIDTx(ctx context.Context, tx pgx.Tx, id int) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var order model.Order
	err := scanOrder(tx.QueryRow(ctx, query, id), &order)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, err
	}

	return &order, nil
}
