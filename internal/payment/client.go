package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client 封裝外部金流供應商的 hosted checkout API。
// 只負責建立 session 與驗證回呼, 訂單持久化由呼叫端先完成。
type Client struct {
	baseURL       string
	secretKey     string
	webhookSecret string
	httpClient    *http.Client
}

// CheckoutSession 供應商回傳的結帳 session
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreateSessionParams 建立 hosted checkout session 的參數
type CreateSessionParams struct {
	Amount        int64 // minor units
	Currency      string
	Quantity      int
	SuccessURL    string
	CancelURL     string
	EventTitle    string
	EventVenue    string
	CustomerEmail string
	OrderID       int
}

func NewClient(baseURL, secretKey, webhookSecret string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// CreateSession 呼叫供應商建立 hosted checkout session。逾時由 httpClient 限制,
// 失敗直接回錯誤讓結帳請求以 5xx 收場, 不懸掛。
func (c *Client) CreateSession(ctx context.Context, params CreateSessionParams) (*CheckoutSession, error) {
	if c == nil || c.secretKey == "" {
		return nil, fmt.Errorf("payment client not configured")
	}
	if params.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	if params.SuccessURL == "" || params.CancelURL == "" {
		return nil, fmt.Errorf("redirect urls required")
	}
	if params.EventTitle == "" {
		return nil, fmt.Errorf("event title required")
	}

	quantity := params.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	form.Set("customer_email", params.CustomerEmail)
	form.Set("payment_method_types[0]", "card")
	form.Set("line_items[0][price_data][currency]", params.Currency)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(params.Amount, 10))
	form.Set("line_items[0][price_data][product_data][name]", params.EventTitle)
	if params.EventVenue != "" {
		form.Set("line_items[0][price_data][product_data][description]",
			fmt.Sprintf("Event: %s at %s", params.EventTitle, params.EventVenue))
	}
	form.Set("line_items[0][quantity]", strconv.Itoa(quantity))
	form.Set("metadata[order_id]", strconv.Itoa(params.OrderID))
	// payment_intent.payment_failed 事件帶的是 payment intent 而非 session,
	// metadata 要同時掛在 intent 上, 失敗回呼才找得回訂單。
	form.Set("payment_intent_data[metadata][order_id]", strconv.Itoa(params.OrderID))

	endpoint := c.baseURL + "/v1/checkout/sessions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var session CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if session.ID == "" {
		return nil, fmt.Errorf("provider returned empty session id")
	}

	return &session, nil
}
