package notification

import (
	"context"
	"fmt"
	"strings"

	"land-steward-backend/config"
	"land-steward-backend/internal/model"

	gomail "github.com/wneessen/go-mail"
)

// Mailer 寄送訂單確認信。寄送失敗由呼叫端記錄後重試,
// 不把錯誤往 webhook 回應傳。
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, order *model.Order, tickets []*model.Ticket) error
}

type SMTPMailer struct {
	cfg  config.MailConfig
	from string
}

func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, from: cfg.From}
}

func (m *SMTPMailer) SendOrderConfirmation(ctx context.Context, order *model.Order, tickets []*model.Ticket) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(order.CustomerEmail); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	msg.Subject(fmt.Sprintf("Your tickets for %s", order.EventTitle))
	msg.SetBodyString(gomail.TypeTextPlain, renderOrderConfirmation(order, tickets))

	opts := []gomail.Option{
		gomail.WithPort(m.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.cfg.Username),
		gomail.WithPassword(m.cfg.Password),
	}
	client, err := gomail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	return nil
}

func renderOrderConfirmation(order *model.Order, tickets []*model.Ticket) string {
	var b strings.Builder

	name := "there"
	if order.CustomerName != nil && *order.CustomerName != "" {
		name = *order.CustomerName
	}

	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	fmt.Fprintf(&b, "Thank you for your purchase! Your order #%d is confirmed.\n\n", order.ID)
	fmt.Fprintf(&b, "Event: %s\n", order.EventTitle)
	if order.EventVenue != "" {
		fmt.Fprintf(&b, "Venue: %s\n", order.EventVenue)
	}
	if order.EventDate != nil {
		fmt.Fprintf(&b, "Date: %s\n", order.EventDate.Format("Monday, January 2, 2006 3:04 PM"))
	}
	fmt.Fprintf(&b, "Quantity: %d\n", order.Quantity)
	fmt.Fprintf(&b, "Total: %s %.2f\n\n", strings.ToUpper(order.Currency), float64(order.TotalAmount)/100)

	b.WriteString("Your tickets:\n")
	for _, t := range tickets {
		fmt.Fprintf(&b, "  - %s\n", t.TicketNumber)
	}

	b.WriteString("\nPresent the QR code attached to each ticket at the entrance.\n")
	b.WriteString("\nSee you there!\nThe Land Stewardship Team\n")

	return b.String()
}
