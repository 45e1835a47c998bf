package service

import (
	"context"
	"fmt"
	"time"

	"land-steward-backend/internal/model"
	"land-steward-backend/internal/payment"
	"land-steward-backend/internal/repository"
	apperrors "land-steward-backend/pkg/app_errors"
	"land-steward-backend/pkg/logger"

	"go.uber.org/zap"
)

// PaymentGateway 結帳流程需要的金流能力, 測試時以 mock 替換
type PaymentGateway interface {
	CreateSession(ctx context.Context, params payment.CreateSessionParams) (*payment.CheckoutSession, error)
}

type CheckoutService interface {
	CreateCheckout(ctx context.Context, userID int, req model.CreateCheckoutRequest) (*model.CheckoutResponse, error)
}

type CheckoutServiceImpl struct {
	repository     repository.OrderRepository
	userRepository repository.UserRepository
	gateway        PaymentGateway
}

func NewCheckoutService(
	orderRepository repository.OrderRepository,
	userRepository repository.UserRepository,
	gateway PaymentGateway,
) CheckoutService {
	return &CheckoutServiceImpl{
		repository:     orderRepository,
		userRepository: userRepository,
		gateway:        gateway,
	}
}

// CreateCheckout 先落地 pending 訂單, 再向供應商開 hosted session, 最後把
// session id 綁回訂單。供應商的回呼之後用這個 session id 對回訂單。
func (s *CheckoutServiceImpl) CreateCheckout(ctx context.Context, userID int, req model.CreateCheckoutRequest) (*model.CheckoutResponse, error) {
	user, err := s.userRepository.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	email := req.CustomerEmail
	if email == "" {
		email = user.Email
	}
	if email == "" {
		return nil, apperrors.ErrInvalidInput
	}

	currency := req.Currency
	if currency == "" {
		currency = "usd"
	}

	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	var eventDate *time.Time
	if req.EventDate != "" {
		parsed, err := time.Parse(time.RFC3339, req.EventDate)
		if err != nil {
			return nil, apperrors.ErrInvalidInput
		}
		eventDate = &parsed
	}

	var customerName *string
	if user.Name != "" {
		customerName = &user.Name
	}

	order := &model.Order{
		UserID:        &user.ID,
		TotalAmount:   req.Amount,
		Currency:      currency,
		EventID:       req.EventID,
		EventTitle:    req.EventTitle,
		EventDate:     eventDate,
		EventVenue:    req.EventVenue,
		Quantity:      quantity,
		CustomerEmail: email,
		CustomerName:  customerName,
		Status:        model.OrderStatusPending,
	}

	if _, err := s.repository.Create(ctx, order); err != nil {
		return nil, err
	}

	session, err := s.gateway.CreateSession(ctx, payment.CreateSessionParams{
		Amount:        req.Amount,
		Currency:      currency,
		Quantity:      quantity,
		SuccessURL:    req.SuccessURL,
		CancelURL:     req.CancelURL,
		EventTitle:    req.EventTitle,
		EventVenue:    req.EventVenue,
		CustomerEmail: email,
		OrderID:       order.ID,
	})
	if err != nil {
		// 訂單留在 pending, 不會有人對它回呼; 對呼叫端這是一次可見的失敗
		logger.WithComponent("checkout").Error("create session failed", zap.Int("order_id", order.ID), zap.Error(err))
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	if err := s.repository.AttachSession(ctx, order.ID, session.ID); err != nil {
		return nil, err
	}

	logger.WithComponent("checkout").Info("checkout session created",
		zap.Int("order_id", order.ID), zap.String("session_id", session.ID))

	return &model.CheckoutResponse{
		SessionID: session.ID,
		URL:       session.URL,
		OrderID:   order.ID,
	}, nil
}
