package model

import "time"

// OrderStatus 訂單狀態類型
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusFailed    OrderStatus = "failed"
	OrderStatusRefunded  OrderStatus = "refunded"
)

// IsValid 驗證狀態是否有效
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusFailed, OrderStatusRefunded:
		return true
	}
	return false
}

// CanTransitionTo 檢查是否可以轉換到目標狀態。
// 只有 refund 能把 completed 往後推, 其餘終態不可離開。
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	transitions := map[OrderStatus][]OrderStatus{
		OrderStatusPending:   {OrderStatusCompleted, OrderStatusFailed},
		OrderStatusCompleted: {OrderStatusRefunded},
		OrderStatusFailed:    {},
		OrderStatusRefunded:  {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == target {
			return true
		}
	}
	return false
}

// Order 一次購票嘗試。事件資訊在結帳時快照到訂單上, 之後事件異動不影響既有訂單。
type Order struct {
	ID            int         `json:"id" db:"id"`
	UserID        *int        `json:"user_id,omitempty" db:"user_id"`
	SessionID     *string     `json:"session_id,omitempty" db:"session_id"`
	PaymentID     *string     `json:"payment_id,omitempty" db:"payment_id"`
	TotalAmount   int64       `json:"total_amount" db:"total_amount"` // minor units
	Currency      string      `json:"currency" db:"currency"`
	EventID       string      `json:"event_id" db:"event_id"`
	EventTitle    string      `json:"event_title" db:"event_title"`
	EventDate     *time.Time  `json:"event_date,omitempty" db:"event_date"`
	EventVenue    string      `json:"event_venue" db:"event_venue"`
	Quantity      int         `json:"quantity" db:"quantity"`
	CustomerEmail string      `json:"customer_email" db:"customer_email"`
	CustomerName  *string     `json:"customer_name,omitempty" db:"customer_name"`
	Status        OrderStatus `json:"status" db:"status"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`

	Tickets []*Ticket `json:"tickets,omitempty" db:"-"`
}

// CreateCheckoutRequest 建立結帳 session 請求
type CreateCheckoutRequest struct {
	Amount        int64  `json:"amount" binding:"required,min=1"`
	Currency      string `json:"currency"`
	SuccessURL    string `json:"successUrl" binding:"required,url"`
	CancelURL     string `json:"cancelUrl" binding:"required,url"`
	EventID       string `json:"eventId" binding:"required"`
	EventTitle    string `json:"eventTitle" binding:"required"`
	EventDate     string `json:"eventDate"`
	EventVenue    string `json:"eventVenue"`
	Quantity      int    `json:"quantity" binding:"omitempty,min=1,max=100"`
	CustomerEmail string `json:"customerEmail" binding:"omitempty,email"`
}

// CheckoutResponse 結帳響應
type CheckoutResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
	OrderID   int    `json:"orderId"`
}

// OrderResponse 訂單響應(含票券)
type OrderResponse struct {
	ID            int              `json:"id"`
	EventID       string           `json:"event_id"`
	EventTitle    string           `json:"event_title"`
	EventDate     *time.Time       `json:"event_date,omitempty"`
	EventVenue    string           `json:"event_venue"`
	Quantity      int              `json:"quantity"`
	TotalAmount   int64            `json:"total_amount"`
	Currency      string           `json:"currency"`
	CustomerEmail string           `json:"customer_email"`
	Status        string           `json:"status"`
	CreatedAt     string           `json:"created_at"`
	Tickets       []TicketResponse `json:"tickets"`
}
