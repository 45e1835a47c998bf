package service

import (
	"context"
	"time"

	"land-steward-backend/internal/model"
	"land-steward-backend/internal/repository"
	apperrors "land-steward-backend/pkg/app_errors"

	"github.com/samber/lo"
)

// OrderService 訂單的唯讀投影(含票券)。狀態變更一律由 WebhookService 負責。
type OrderService interface {
	GetOrderByID(ctx context.Context, userID, id int) (*model.OrderResponse, error)
	ListUserOrders(ctx context.Context, userID int) ([]*model.OrderResponse, error)
}

type OrderServiceImpl struct {
	repository       repository.OrderRepository
	ticketRepository repository.TicketRepository
}

func NewOrderService(
	orderRepository repository.OrderRepository,
	ticketRepository repository.TicketRepository,
) OrderService {
	return &OrderServiceImpl{
		repository:       orderRepository,
		ticketRepository: ticketRepository,
	}
}

// GetOrderByID 回傳訂單與票券。兌換碼視同憑證, 只開放給訂單持有人。
func (s *OrderServiceImpl) GetOrderByID(ctx context.Context, userID, id int) (*model.OrderResponse, error) {
	order, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.UserID == nil || *order.UserID != userID {
		return nil, apperrors.ErrOrderNotFound
	}

	tickets, err := s.ticketRepository.FindByOrderID(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Tickets = tickets

	return toOrderResponse(order), nil
}

func (s *OrderServiceImpl) ListUserOrders(ctx context.Context, userID int) ([]*model.OrderResponse, error) {
	orders, err := s.repository.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]*model.OrderResponse, 0, len(orders))
	for _, order := range orders {
		tickets, err := s.ticketRepository.FindByOrderID(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		order.Tickets = tickets
		responses = append(responses, toOrderResponse(order))
	}

	return responses, nil
}

func toOrderResponse(order *model.Order) *model.OrderResponse {
	return &model.OrderResponse{
		ID:            order.ID,
		EventID:       order.EventID,
		EventTitle:    order.EventTitle,
		EventDate:     order.EventDate,
		EventVenue:    order.EventVenue,
		Quantity:      order.Quantity,
		TotalAmount:   order.TotalAmount,
		Currency:      order.Currency,
		CustomerEmail: order.CustomerEmail,
		Status:        string(order.Status),
		CreatedAt:     order.CreatedAt.Format(time.RFC3339),
		Tickets: lo.Map(order.Tickets, func(t *model.Ticket, _ int) model.TicketResponse {
			return model.TicketResponse{
				ID:             t.ID,
				TicketNumber:   t.TicketNumber,
				RedemptionCode: t.RedemptionCode,
				Status:         string(t.Status),
			}
		}),
	}
}
