package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"land-steward-backend/internal/middleware"
	"land-steward-backend/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCheckoutService struct {
	resp   *model.CheckoutResponse
	err    error
	userID int
	req    *model.CreateCheckoutRequest
}

func (f *fakeCheckoutService) CreateCheckout(ctx context.Context, userID int, req model.CreateCheckoutRequest) (*model.CheckoutResponse, error) {
	f.userID = userID
	f.req = &req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func setupCheckoutRouter(svc *fakeCheckoutService) (*gin.Engine, *middleware.AuthMiddleware) {
	gin.SetMode(gin.TestMode)
	auth := middleware.NewAuthMiddleware("test-secret")
	router := gin.New()
	NewCheckoutHandler(svc, auth).RegisterRoutes(router)
	return router, auth
}

func postCheckout(router *gin.Engine, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func authCookie(t *testing.T, auth *middleware.AuthMiddleware, userID int) *http.Cookie {
	t.Helper()

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	auth.SetAuthCookie(c, userID)

	resp := w.Result()
	require.NotEmpty(t, resp.Cookies())
	return resp.Cookies()[0]
}

const validCheckoutBody = `{
	"amount": 2500,
	"successUrl": "https://example.org/success",
	"cancelUrl": "https://example.org/cancel",
	"eventId": "evt-oak-grove",
	"eventTitle": "Oak Grove Tour",
	"quantity": 2
}`

func TestCheckoutHandler_CreateCheckout(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := &fakeCheckoutService{resp: &model.CheckoutResponse{SessionID: "cs_1", URL: "https://pay/cs_1", OrderID: 9}}
		router, auth := setupCheckoutRouter(svc)

		w := postCheckout(router, validCheckoutBody, authCookie(t, auth, 7))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"sessionId":"cs_1"`)
		assert.Equal(t, 7, svc.userID)
		require.NotNil(t, svc.req)
		assert.Equal(t, int64(2500), svc.req.Amount)
	})

	t.Run("Failed - not logged in", func(t *testing.T) {
		svc := &fakeCheckoutService{}
		router, _ := setupCheckoutRouter(svc)

		w := postCheckout(router, validCheckoutBody, nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Nil(t, svc.req)
	})

	t.Run("Failed - missing amount", func(t *testing.T) {
		svc := &fakeCheckoutService{}
		router, auth := setupCheckoutRouter(svc)

		body := `{"successUrl": "https://example.org/s", "cancelUrl": "https://example.org/c", "eventId": "e", "eventTitle": "T"}`
		w := postCheckout(router, body, authCookie(t, auth, 7))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Nil(t, svc.req)
	})

	t.Run("Failed - bad redirect url", func(t *testing.T) {
		svc := &fakeCheckoutService{}
		router, auth := setupCheckoutRouter(svc)

		body := `{"amount": 100, "successUrl": "not-a-url", "cancelUrl": "https://example.org/c", "eventId": "e", "eventTitle": "T"}`
		w := postCheckout(router, body, authCookie(t, auth, 7))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Failed - quantity above cap", func(t *testing.T) {
		svc := &fakeCheckoutService{}
		router, auth := setupCheckoutRouter(svc)

		body := `{"amount": 100, "successUrl": "https://example.org/s", "cancelUrl": "https://example.org/c", "eventId": "e", "eventTitle": "T", "quantity": 101}`
		w := postCheckout(router, body, authCookie(t, auth, 7))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
