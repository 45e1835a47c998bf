package service

import (
	"context"
	"time"

	"land-steward-backend/internal/model"
	"land-steward-backend/internal/repository"
	"land-steward-backend/pkg/logger"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// TicketIssuer 為已付款的訂單鑄出票券。呼叫端(webhook dispatcher / reconciler)
// 負責保證每筆訂單最多進來一次; 這裡只管在同一個交易內產生剛好 quantity 張。
type TicketIssuer interface {
	IssueTickets(ctx context.Context, tx pgx.Tx, order *model.Order) ([]*model.Ticket, error)
}

type TicketIssuerImpl struct {
	ticketRepository repository.TicketRepository
}

func NewTicketIssuer(ticketRepository repository.TicketRepository) TicketIssuer {
	return &TicketIssuerImpl{
		ticketRepository: ticketRepository,
	}
}

func (s *TicketIssuerImpl) IssueTickets(ctx context.Context, tx pgx.Tx, order *model.Order) ([]*model.Ticket, error) {
	now := time.Now().UTC()

	tickets := make([]*model.Ticket, 0, order.Quantity)
	for i := 0; i < order.Quantity; i++ {
		tickets = append(tickets, &model.Ticket{
			OrderID:        order.ID,
			EventID:        order.EventID,
			TicketNumber:   model.GenerateTicketNumber(now),
			RedemptionCode: model.GenerateRedemptionCode(),
			Status:         model.TicketStatusValid,
		})
	}

	// 撞到唯一索引會讓整個交易回滾, 由供應商的 webhook 重送觸發重試
	if err := s.ticketRepository.CreateBatch(ctx, tx, tickets); err != nil {
		return nil, err
	}

	log := logger.WithComponent("ticket-issuer")
	for _, t := range tickets {
		log.Info("ticket issued",
			zap.Int("order_id", order.ID),
			zap.String("ticket_number", t.TicketNumber),
			zap.String("redemption_code", model.RedactCode(t.RedemptionCode)),
		)
	}

	return tickets, nil
}
