package service

import (
	"context"
	"errors"
	"testing"

	"land-steward-backend/internal/model"
	"land-steward-backend/internal/payment"
	"land-steward-backend/internal/repository"
	apperrors "land-steward-backend/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 簡單的 Mock 實作, 只覆寫測試用到的方法
type fakeOrderRepo struct {
	repository.OrderRepository
	onCreate        func(order *model.Order) (*model.Order, error)
	onAttachSession func(id int, sessionID string) error
	created         []*model.Order
	attachedSession string
}

func (f *fakeOrderRepo) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	f.created = append(f.created, order)
	if f.onCreate != nil {
		return f.onCreate(order)
	}
	order.ID = len(f.created)
	return order, nil
}

func (f *fakeOrderRepo) AttachSession(ctx context.Context, id int, sessionID string) error {
	f.attachedSession = sessionID
	if f.onAttachSession != nil {
		return f.onAttachSession(id, sessionID)
	}
	return nil
}

type fakeUserRepo struct {
	repository.UserRepository
	user *model.User
	err  error
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id int) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

type fakeGateway struct {
	session *payment.CheckoutSession
	err     error
	params  *payment.CreateSessionParams
}

func (f *fakeGateway) CreateSession(ctx context.Context, params payment.CreateSessionParams) (*payment.CheckoutSession, error) {
	f.params = &params
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func validCheckoutRequest() model.CreateCheckoutRequest {
	return model.CreateCheckoutRequest{
		Amount:     2500,
		Currency:   "usd",
		SuccessURL: "https://example.org/success",
		CancelURL:  "https://example.org/cancel",
		EventID:    "evt-oak-grove",
		EventTitle: "Oak Grove Tour",
		EventVenue: "North Preserve",
		Quantity:   2,
	}
}

func TestCheckoutService_CreateCheckout(t *testing.T) {
	ctx := context.Background()
	user := &model.User{ID: 7, Name: "Alex Rivers", Email: "alex@example.org"}

	t.Run("Success", func(t *testing.T) {
		orders := &fakeOrderRepo{}
		users := &fakeUserRepo{user: user}
		gateway := &fakeGateway{session: &payment.CheckoutSession{ID: "cs_1", URL: "https://pay/cs_1"}}

		svc := NewCheckoutService(orders, users, gateway)

		resp, err := svc.CreateCheckout(ctx, 7, validCheckoutRequest())

		require.NoError(t, err)
		assert.Equal(t, "cs_1", resp.SessionID)
		assert.Equal(t, "https://pay/cs_1", resp.URL)
		assert.NotZero(t, resp.OrderID)

		// 訂單先以 pending 落地, session id 事後補綁
		require.Len(t, orders.created, 1)
		assert.Equal(t, model.OrderStatusPending, orders.created[0].Status)
		assert.Equal(t, "cs_1", orders.attachedSession)

		// 使用者 email 作為預設聯絡信箱
		assert.Equal(t, "alex@example.org", gateway.params.CustomerEmail)
	})

	t.Run("Success - explicit email wins over account email", func(t *testing.T) {
		orders := &fakeOrderRepo{}
		users := &fakeUserRepo{user: user}
		gateway := &fakeGateway{session: &payment.CheckoutSession{ID: "cs_2", URL: "https://pay/cs_2"}}

		svc := NewCheckoutService(orders, users, gateway)

		req := validCheckoutRequest()
		req.CustomerEmail = "gift@example.org"

		_, err := svc.CreateCheckout(ctx, 7, req)

		require.NoError(t, err)
		assert.Equal(t, "gift@example.org", gateway.params.CustomerEmail)
	})

	t.Run("Success - defaults applied", func(t *testing.T) {
		orders := &fakeOrderRepo{}
		users := &fakeUserRepo{user: user}
		gateway := &fakeGateway{session: &payment.CheckoutSession{ID: "cs_3", URL: "https://pay/cs_3"}}

		svc := NewCheckoutService(orders, users, gateway)

		req := validCheckoutRequest()
		req.Currency = ""
		req.Quantity = 0

		_, err := svc.CreateCheckout(ctx, 7, req)

		require.NoError(t, err)
		assert.Equal(t, "usd", gateway.params.Currency)
		assert.Equal(t, 1, gateway.params.Quantity)
	})

	t.Run("Failed - bad event date", func(t *testing.T) {
		orders := &fakeOrderRepo{}
		users := &fakeUserRepo{user: user}
		gateway := &fakeGateway{}

		svc := NewCheckoutService(orders, users, gateway)

		req := validCheckoutRequest()
		req.EventDate = "next tuesday"

		_, err := svc.CreateCheckout(ctx, 7, req)

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		assert.Empty(t, orders.created)
	})

	t.Run("Failed - unknown user", func(t *testing.T) {
		orders := &fakeOrderRepo{}
		users := &fakeUserRepo{err: apperrors.ErrUserNotFound}
		gateway := &fakeGateway{}

		svc := NewCheckoutService(orders, users, gateway)

		_, err := svc.CreateCheckout(ctx, 99, validCheckoutRequest())

		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})

	t.Run("Failed - gateway error leaves order pending", func(t *testing.T) {
		orders := &fakeOrderRepo{}
		users := &fakeUserRepo{user: user}
		gateway := &fakeGateway{err: errors.New("provider unavailable")}

		svc := NewCheckoutService(orders, users, gateway)

		_, err := svc.CreateCheckout(ctx, 7, validCheckoutRequest())

		require.Error(t, err)
		require.Len(t, orders.created, 1)
		assert.Equal(t, model.OrderStatusPending, orders.created[0].Status)
		assert.Empty(t, orders.attachedSession)
	})
}
